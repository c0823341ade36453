package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/suteetoe/receptionist/internal/prompt"
	"github.com/suteetoe/receptionist/pkg/database"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTemplatesCmd() *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage global prompt templates",
	}

	var file string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert global templates from a YAML file (slug: content), or the built-in defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			modules := prompt.BuiltinTemplates()
			if file != "" {
				var err error
				if modules, err = loadTemplateFile(file); err != nil {
					return err
				}
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Migrate(a.db); err != nil {
				return err
			}

			n, err := a.templates.SeedGlobals(cmd.Context(), modules)
			if err != nil {
				a.log.Error("Failed to seed templates", zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d global templates\n", n)
			return nil
		},
	}
	seedCmd.Flags().StringVarP(&file, "file", "f", "", "YAML file mapping slug to template content")

	templatesCmd.AddCommand(seedCmd)
	return templatesCmd
}

// loadTemplateFile reads a YAML mapping of slug to template content
func loadTemplateFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var modules map[string]string
	if err := yaml.Unmarshal(data, &modules); err != nil {
		return nil, fmt.Errorf("failed to parse template file %s: %w", path, err)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("template file %s defines no templates", path)
	}
	return modules, nil
}
