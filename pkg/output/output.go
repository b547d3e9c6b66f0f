// Package output writes the aggregated artifacts. Empty results are never
// written: the caller gets a Skipped outcome and a notice is shown instead.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/jingkaihe/cliner/pkg/logger"
	"github.com/jingkaihe/cliner/pkg/presenter"
)

// ModesKey is the single key enveloping the mode records in the modes artifact.
const ModesKey = "customModes"

// Outcome reports what a write request did.
type Outcome int

const (
	// Skipped means there was nothing to write and no file was touched.
	Skipped Outcome = iota
	// Written means the artifact was written.
	Written
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	default:
		return "skipped"
	}
}

// Artifact names an output file and the kind of item it aggregates.
type Artifact struct {
	Path string
	Kind string // plural noun used in notices, e.g. "modes"
}

type modesEnvelope struct {
	CustomModes []json.RawMessage `json:"customModes"`
}

// Sink writes artifacts to disk and reports outcomes through a presenter.
type Sink struct {
	presenter presenter.Presenter
	perm      os.FileMode
}

// NewSink creates a Sink. A nil presenter uses the default one.
func NewSink(p presenter.Presenter) *Sink {
	if p == nil {
		p = presenter.Default()
	}
	return &Sink{presenter: p, perm: 0o644}
}

// WriteJSONIfNotEmpty wraps values under ModesKey and writes them as
// indented JSON, unless values is empty.
func (s *Sink) WriteJSONIfNotEmpty(ctx context.Context, values []json.RawMessage, artifact Artifact) (Outcome, error) {
	if len(values) == 0 {
		s.skip(ctx, artifact, "valid")
		return Skipped, nil
	}

	formatted, err := json.MarshalIndent(modesEnvelope{CustomModes: values}, "", "  ")
	if err != nil {
		return Skipped, errors.Wrapf(err, "failed to format %s", artifact.Path)
	}

	if err := s.write(artifact.Path, formatted); err != nil {
		return Skipped, err
	}
	s.written(ctx, artifact, len(values))
	return Written, nil
}

// WriteContentIfNotEmpty writes content verbatim, unless it is empty.
func (s *Sink) WriteContentIfNotEmpty(ctx context.Context, content string, artifact Artifact) (Outcome, error) {
	if content == "" {
		s.skip(ctx, artifact, "")
		return Skipped, nil
	}

	if err := s.write(artifact.Path, []byte(content)); err != nil {
		return Skipped, err
	}
	s.written(ctx, artifact, len(content))
	return Written, nil
}

func (s *Sink) write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", path)
		}
	}

	if err := lockedfile.Write(path, bytes.NewReader(data), s.perm); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func (s *Sink) skip(ctx context.Context, artifact Artifact, qualifier string) {
	noun := strings.TrimSpace(qualifier + " " + artifact.Kind)
	s.presenter.Info(fmt.Sprintf("No %s found, skipping %s generation", noun, artifact.Path))
	logger.G(ctx).WithField("artifact", artifact.Path).Debug("nothing to write")
}

func (s *Sink) written(ctx context.Context, artifact Artifact, size int) {
	s.presenter.Success(fmt.Sprintf("Generated %s", artifact.Path))
	logger.G(ctx).WithField("artifact", artifact.Path).WithField("size", size).Debug("artifact written")
}
