package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/cliner/pkg/presenter"
)

func newTestSink() (*Sink, *bytes.Buffer) {
	var output bytes.Buffer
	return NewSink(presenter.NewWithOptions(&output, &output, presenter.ColorNever)), &output
}

func TestWriteJSONIfNotEmpty(t *testing.T) {
	sink, output := newTestSink()
	path := filepath.Join(t.TempDir(), ".roomodes")

	values := []json.RawMessage{
		json.RawMessage(`{"name":"Test1","value":123}`),
		json.RawMessage(`{"name":"Test2","value":456}`),
	}

	outcome, err := sink.WriteJSONIfNotEmpty(context.Background(), values, Artifact{Path: path, Kind: "modes"})
	require.NoError(t, err)
	assert.Equal(t, Written, outcome)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	expected := `{
  "customModes": [
    {
      "name": "Test1",
      "value": 123
    },
    {
      "name": "Test2",
      "value": 456
    }
  ]
}`
	assert.Equal(t, expected, string(contents))
	assert.Contains(t, output.String(), "Generated "+path)
}

func TestWriteJSONIfNotEmptySkipsEmpty(t *testing.T) {
	sink, output := newTestSink()
	path := filepath.Join(t.TempDir(), ".roomodes")

	outcome, err := sink.WriteJSONIfNotEmpty(context.Background(), nil, Artifact{Path: path, Kind: "modes"})
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, output.String(), "No valid modes found, skipping "+path+" generation")
}

func TestWriteJSONOverwritesPreviousArtifact(t *testing.T) {
	sink, _ := newTestSink()
	path := filepath.Join(t.TempDir(), ".roomodes")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the new one"), 0o644))

	_, err := sink.WriteJSONIfNotEmpty(context.Background(), []json.RawMessage{json.RawMessage(`{}`)}, Artifact{Path: path, Kind: "modes"})
	require.NoError(t, err)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"customModes\": [\n    {}\n  ]\n}", string(contents))
}

func TestWriteContentIfNotEmpty(t *testing.T) {
	sink, output := newTestSink()
	path := filepath.Join(t.TempDir(), "nested", "dir", ".clinerules")

	outcome, err := sink.WriteContentIfNotEmpty(context.Background(), "Test\nMultiple lines", Artifact{Path: path, Kind: "rules"})
	require.NoError(t, err)
	assert.Equal(t, Written, outcome)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Test\nMultiple lines", string(contents))
	assert.Contains(t, output.String(), "Generated "+path)
}

func TestWriteContentIfNotEmptySkipsEmpty(t *testing.T) {
	sink, output := newTestSink()
	path := filepath.Join(t.TempDir(), ".clinerules")

	outcome, err := sink.WriteContentIfNotEmpty(context.Background(), "", Artifact{Path: path, Kind: "rules"})
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, output.String(), "No rules found, skipping "+path+" generation")
}

func TestWriteFailure(t *testing.T) {
	sink, _ := newTestSink()
	dir := t.TempDir()
	// a directory where the file should go
	path := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(path, 0o755))

	outcome, err := sink.WriteContentIfNotEmpty(context.Background(), "x", Artifact{Path: path, Kind: "rules"})
	require.Error(t, err)
	assert.Equal(t, Skipped, outcome)
	assert.Contains(t, err.Error(), "failed to write")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "written", Written.String())
	assert.Equal(t, "skipped", Skipped.String())
}
