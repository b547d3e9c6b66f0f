// Package aggregate walks a modes or rules directory in file-name order and
// collects either parsed mode records or concatenated rule text.
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/jingkaihe/cliner/pkg/logger"
	"github.com/jingkaihe/cliner/pkg/modes"
	"github.com/jingkaihe/cliner/pkg/presenter"
)

// Aggregator reads documents from a directory through an afero filesystem
type Aggregator struct {
	fs        afero.Fs
	exclude   []string
	presenter presenter.Presenter
}

// Option configures an Aggregator
type Option func(*Aggregator) error

// WithFs sets the filesystem documents are read from
func WithFs(fs afero.Fs) Option {
	return func(a *Aggregator) error {
		if fs == nil {
			return errors.New("filesystem must not be nil")
		}
		a.fs = fs
		return nil
	}
}

// WithExclude skips entries whose name matches any of the doublestar patterns
func WithExclude(patterns ...string) Option {
	return func(a *Aggregator) error {
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("invalid exclude pattern %q", pattern)
			}
		}
		a.exclude = append(a.exclude, patterns...)
		return nil
	}
}

// WithPresenter sets where skip diagnostics are reported
func WithPresenter(p presenter.Presenter) Option {
	return func(a *Aggregator) error {
		a.presenter = p
		return nil
	}
}

// New creates an Aggregator reading from the OS filesystem by default
func New(opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		fs:        afero.NewOsFs(),
		presenter: presenter.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, errors.Wrap(err, "failed to apply aggregator option")
		}
	}

	return a, nil
}

// Entry is a directory entry scheduled for processing
type Entry struct {
	Name string
	Path string
}

// ModesResult is the outcome of a structured aggregation pass
type ModesResult struct {
	Values  []json.RawMessage
	Skipped []string
}

// RulesResult is the outcome of a textual aggregation pass
type RulesResult struct {
	Content string
	Files   int
}

// DirExists reports whether path exists and is a directory
func (a *Aggregator) DirExists(path string) bool {
	ok, err := afero.DirExists(a.fs, path)
	return err == nil && ok
}

// SortedEntries lists the direct entries of dir ordered by byte-wise file
// name comparison, leaving out excluded names.
func (a *Aggregator) SortedEntries(dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if a.Excluded(info.Name()) {
			continue
		}
		entries = append(entries, Entry{
			Name: info.Name(),
			Path: filepath.Join(dir, info.Name()),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Excluded reports whether name matches one of the exclude patterns
func (a *Aggregator) Excluded(name string) bool {
	for _, pattern := range a.exclude {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// readText reads path as UTF-8 text
func (a *Aggregator) readText(path string) (string, error) {
	info, err := a.fs.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", errors.Errorf("%s is a directory", path)
	}

	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.Errorf("%s is not valid UTF-8 text", path)
	}
	return string(data), nil
}

// each feeds the text of every readable entry of dir to fn in sorted order.
// Unreadable entries (directories, broken symlinks, binary files) are
// skipped without a user-facing diagnostic.
func (a *Aggregator) each(ctx context.Context, dir string, fn func(entry Entry, content string)) error {
	entries, err := a.SortedEntries(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		content, err := a.readText(entry.Path)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("file", entry.Path).Debug("skipping unreadable entry")
			continue
		}
		fn(entry, content)
	}

	return nil
}

// CollectModes parses every mode document in dir. Documents that fail to
// parse or serialize are skipped with a warning naming the file.
func (a *Aggregator) CollectModes(ctx context.Context, dir string) (*ModesResult, error) {
	result := &ModesResult{Values: []json.RawMessage{}}

	err := a.each(ctx, dir, func(entry Entry, content string) {
		value, err := modes.ParseJSON(content)
		if err != nil {
			result.Skipped = append(result.Skipped, entry.Path)
			a.presenter.Warning(fmt.Sprintf("Skipping invalid mode document %s: %v", entry.Path, err))
			logger.G(ctx).WithError(err).WithField("file", entry.Path).Debug("skipping invalid mode document")
			return
		}
		result.Values = append(result.Values, value)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ConcatenateRules joins the full content of every rule file in dir, each
// followed by a single newline.
func (a *Aggregator) ConcatenateRules(ctx context.Context, dir string) (*RulesResult, error) {
	result := &RulesResult{}
	var buf []byte

	err := a.each(ctx, dir, func(_ Entry, content string) {
		buf = append(buf, content...)
		buf = append(buf, '\n')
		result.Files++
	})
	if err != nil {
		return nil, err
	}

	result.Content = string(buf)
	return result, nil
}

