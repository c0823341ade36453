package prompt

import (
	"strings"
)

// Markers delimiting ad hoc attached content from the static configuration
const (
	AttachmentStart = "--- ATTACHED DOCUMENT ---"
	AttachmentEnd   = "--- END ATTACHED DOCUMENT ---"
)

// Composer evaluates prompt templates. It performs no I/O; every input must
// already be resolved by the caller.
type Composer struct {
	startMarker string
	endMarker   string
}

// NewComposer creates a composer using the default attachment markers
func NewComposer() *Composer {
	return &Composer{
		startMarker: AttachmentStart,
		endMarker:   AttachmentEnd,
	}
}

// Compose evaluates tmpl against vars and appends appendix, if any. A
// template that fails to parse yields no output at all.
func (c *Composer) Compose(tmpl string, vars Vars, appendix string) (string, error) {
	parsed, err := Parse(tmpl)
	if err != nil {
		return "", err
	}
	return c.Attach(parsed.Execute(vars), appendix), nil
}

// Attach appends appendix to prompt inside the attachment markers. Blank
// appendices are ignored.
func (c *Composer) Attach(prompt, appendix string) string {
	if strings.TrimSpace(appendix) == "" {
		return prompt
	}

	var b strings.Builder
	b.Grow(len(prompt) + len(appendix) + len(c.startMarker) + len(c.endMarker) + 4)
	b.WriteString(prompt)
	if prompt != "" {
		b.WriteString("\n\n")
	}
	b.WriteString(c.startMarker)
	b.WriteByte('\n')
	b.WriteString(strings.TrimSpace(appendix))
	b.WriteByte('\n')
	b.WriteString(c.endMarker)
	return b.String()
}
