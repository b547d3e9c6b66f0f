package workspace

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/cliner/pkg/presenter"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestNewPaths(t *testing.T) {
	p := NewPaths(".cline")
	assert.Equal(t, ".cline", p.Base)
	assert.Equal(t, filepath.Join(".cline", "modes"), p.Modes)
	assert.Equal(t, filepath.Join(".cline", "rules"), p.Rules)
}

func TestCreateDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := NewPaths("project/.cline")

	require.NoError(t, p.CreateDirectories(fs))
	for _, dir := range []string{p.Base, p.Modes, p.Rules} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}

	// idempotent
	require.NoError(t, p.CreateDirectories(fs))
}

func TestCopyDirContents(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "src/a.md", "alpha")
	writeFile(t, fs, "src/b.md", "bravo")
	writeFile(t, fs, "src/nested/c.md", "charlie")
	writeFile(t, fs, "dst/b.md", "existing")

	n, err := CopyDirContents(fs, "src", "dst")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "alpha", readFile(t, fs, "dst/a.md"))
	assert.Equal(t, "existing", readFile(t, fs, "dst/b.md"))
	exists, _ := afero.Exists(fs, "dst/nested")
	assert.False(t, exists)
}

func TestCopyDirContentsMissingSource(t *testing.T) {
	_, err := CopyDirContents(afero.NewMemMapFs(), "missing", "dst")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read directory missing")
}

func newTestInitializer(fs afero.Fs, globals ...string) (*Initializer, *bytes.Buffer) {
	var output bytes.Buffer
	p := presenter.NewWithOptions(&output, &output, presenter.ColorNever)
	return NewInitializer(NewPaths(".cline"), WithFs(fs), WithPresenter(p), WithGlobalDirs(globals...)), &output
}

func TestGlobalConfigPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/u/.cline", 0o755))
	writeFile(t, fs, "/home/u/.config/cliner", "a file, not a directory")

	i, _ := newTestInitializer(fs, "/home/u/.config/cliner", "/home/u/.cline", "/nowhere")
	assert.Equal(t, []string{"/home/u/.cline"}, i.GlobalConfigPaths())
}

func TestInitializeWithoutGlobals(t *testing.T) {
	fs := afero.NewMemMapFs()
	i, output := newTestInitializer(fs, "/home/u/.cline")

	result, err := i.Initialize(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.ModesCopied)
	assert.Zero(t, result.RulesCopied)

	ok, _ := afero.DirExists(fs, filepath.Join(".cline", "modes"))
	assert.True(t, ok)
	ok, _ = afero.DirExists(fs, filepath.Join(".cline", "rules"))
	assert.True(t, ok)

	assert.Contains(t, output.String(), "Created .cline directory structure")
	assert.Contains(t, output.String(), "No global config directories found")
}

func TestInitializeCopiesFromFirstGlobalWithFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	// first global only has rules; modes come from the second
	writeFile(t, fs, "/xdg/cliner/rules/style.md", "# Style")
	require.NoError(t, fs.MkdirAll("/xdg/cliner/modes", 0o755))
	writeFile(t, fs, "/home/.cline/modes/architect.md", "name: Architect\n---\nPlan.")
	writeFile(t, fs, "/home/.cline/rules/other.md", "# Other")

	i, output := newTestInitializer(fs, "/xdg/cliner", "/home/.cline")

	result, err := i.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ModesCopied)
	assert.Equal(t, "/home/.cline", result.ModesSource)
	assert.Equal(t, 1, result.RulesCopied)
	assert.Equal(t, "/xdg/cliner", result.RulesSource)

	assert.Equal(t, "# Style", readFile(t, fs, filepath.Join(".cline", "rules", "style.md")))
	exists, _ := afero.Exists(fs, filepath.Join(".cline", "rules", "other.md"))
	assert.False(t, exists)
	assert.Equal(t, "name: Architect\n---\nPlan.", readFile(t, fs, filepath.Join(".cline", "modes", "architect.md")))

	out := output.String()
	assert.Contains(t, out, "Found 2 global config directories")
	assert.Contains(t, out, "Copied 1 rule files from "+filepath.Join("/xdg/cliner", "rules"))
	assert.Contains(t, out, "Copied 1 mode files from "+filepath.Join("/home/.cline", "modes"))
	assert.NotContains(t, out, "No mode files found")
}

func TestInitializeKeepsExistingFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/g/modes/a.md", "global")
	writeFile(t, fs, filepath.Join(".cline", "modes", "a.md"), "local")

	i, output := newTestInitializer(fs, "/g")

	result, err := i.Initialize(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.ModesCopied)
	assert.Equal(t, "local", readFile(t, fs, filepath.Join(".cline", "modes", "a.md")))
	assert.Contains(t, output.String(), "No mode files found in global config directories")
	assert.Contains(t, output.String(), "No rule files found in global config directories")
}
