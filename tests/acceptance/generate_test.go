package acceptance

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, ".cline", "modes", "b.md"), "name: Reviewer\ngroups:\n- read\n---\nReview code.")
	writeDoc(t, filepath.Join(dir, ".cline", "modes", "a.md"), "mode_name: Architect\nslug: arch\n---\nDesign systems.")
	writeDoc(t, filepath.Join(dir, ".cline", "modes", "c.md"), "not a mode document")
	writeDoc(t, filepath.Join(dir, ".cline", "rules", "01.md"), "# Be concise")

	output, err := cliner(t, dir, "generate").CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Contains(t, string(output), "Skipping invalid mode document")
	assert.Contains(t, string(output), "Generated .roomodes")
	assert.Contains(t, string(output), "Generated .clinerules")

	data, err := os.ReadFile(filepath.Join(dir, ".roomodes"))
	require.NoError(t, err)
	var doc struct {
		CustomModes []struct {
			Slug   string   `json:"slug"`
			Name   string   `json:"name"`
			Groups []string `json:"groups"`
		} `json:"customModes"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.CustomModes, 2)
	assert.Equal(t, "arch", doc.CustomModes[0].Slug)
	assert.Equal(t, "Architect", doc.CustomModes[0].Name)
	assert.Equal(t, "reviewer", doc.CustomModes[1].Slug)
	assert.Equal(t, []string{"read"}, doc.CustomModes[1].Groups)

	rules, err := os.ReadFile(filepath.Join(dir, ".clinerules"))
	require.NoError(t, err)
	assert.Equal(t, "# Be concise\n", string(rules))
}

func TestGenerateMissingBaseDir(t *testing.T) {
	cmd := cliner(t, t.TempDir(), "generate")
	output, err := cmd.CombinedOutput()
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(output), "base directory not found")
}

func TestGenerateCustomBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "conf", "rules", "a.md"), "rule")

	output, err := cliner(t, dir, "generate", "--base-dir", "conf", "--quiet").CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Empty(t, string(output))

	rules, err := os.ReadFile(filepath.Join(dir, ".clinerules"))
	require.NoError(t, err)
	assert.Equal(t, "rule\n", string(rules))

	_, err = os.Stat(filepath.Join(dir, ".roomodes"))
	assert.True(t, os.IsNotExist(err))
}
