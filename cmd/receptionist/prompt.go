package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	promptCmd := &cobra.Command{
		Use:   "prompt",
		Short: "Inspect composed system prompts",
	}

	var (
		externalID   string
		appendixFile string
	)
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Print the system prompt composed for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			var appendix string
			if appendixFile != "" {
				data, err := os.ReadFile(appendixFile)
				if err != nil {
					return fmt.Errorf("failed to read appendix: %w", err)
				}
				appendix = string(data)
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			assembled, err := a.prompts.Build(cmd.Context(), externalID, appendix)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# model: %s  temperature: %.2f\n", assembled.Model, assembled.Temperature)
			for _, m := range assembled.Modules {
				fmt.Fprintf(out, "# %s: %s\n", m.Slug, m.Tier)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, assembled.SystemPrompt)
			return nil
		},
	}
	renderCmd.Flags().StringVar(&externalID, "tenant", "", "tenant identifier issued by the auth service")
	renderCmd.Flags().StringVar(&appendixFile, "appendix-file", "", "file whose text is attached to the prompt")
	_ = renderCmd.MarkFlagRequired("tenant")

	promptCmd.AddCommand(renderCmd)
	return promptCmd
}
