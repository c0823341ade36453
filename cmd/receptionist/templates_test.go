package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplateFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
identity: |
  You are {{agent_name}} for {{company_name}}.
guidelines: Be brief.
`), 0o600))

	modules, err := loadTemplateFile(path)
	require.NoError(t, err)
	assert.Equal(t, "You are {{agent_name}} for {{company_name}}.\n", modules["identity"])
	assert.Equal(t, "Be brief.", modules["guidelines"])

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0o600))
	_, err = loadTemplateFile(empty)
	assert.Error(t, err)

	_, err = loadTemplateFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
