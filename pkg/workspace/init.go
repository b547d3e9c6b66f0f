package workspace

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/jingkaihe/cliner/pkg/logger"
	"github.com/jingkaihe/cliner/pkg/presenter"
)

// Initializer sets up a base directory and seeds it from global config
// directories.
type Initializer struct {
	fs         afero.Fs
	paths      Paths
	globalDirs []string
	presenter  presenter.Presenter
}

// InitOption configures an Initializer
type InitOption func(*Initializer)

// WithFs sets the filesystem the initializer works on
func WithFs(fs afero.Fs) InitOption {
	return func(i *Initializer) {
		i.fs = fs
	}
}

// WithGlobalDirs sets the global config directories, highest precedence first
func WithGlobalDirs(dirs ...string) InitOption {
	return func(i *Initializer) {
		i.globalDirs = dirs
	}
}

// WithPresenter sets where progress is reported
func WithPresenter(p presenter.Presenter) InitOption {
	return func(i *Initializer) {
		i.presenter = p
	}
}

// NewInitializer creates an Initializer for paths
func NewInitializer(paths Paths, opts ...InitOption) *Initializer {
	i := &Initializer{
		fs:        afero.NewOsFs(),
		paths:     paths,
		presenter: presenter.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InitResult records what Initialize copied and from where.
type InitResult struct {
	ModesCopied int
	ModesSource string
	RulesCopied int
	RulesSource string
}

// GlobalConfigPaths returns the configured global directories that exist.
func (i *Initializer) GlobalConfigPaths() []string {
	var found []string
	for _, dir := range i.globalDirs {
		if ok, err := afero.DirExists(i.fs, dir); err == nil && ok {
			found = append(found, dir)
		}
	}
	return found
}

// Initialize creates the directory structure, then copies mode and rule
// files from the first global directory that has any of each. Copy errors
// are reported and do not abort initialization.
func (i *Initializer) Initialize(ctx context.Context) (*InitResult, error) {
	log := logger.G(ctx).WithField("base_dir", i.paths.Base)

	i.presenter.Info(fmt.Sprintf("Initializing %s directory...", i.paths.Base))
	if err := i.paths.CreateDirectories(i.fs); err != nil {
		return nil, errors.Wrap(err, "failed to create directory structure")
	}
	i.presenter.Success(fmt.Sprintf("Created %s directory structure", i.paths.Base))

	result := &InitResult{}

	globals := i.GlobalConfigPaths()
	if len(globals) == 0 {
		i.presenter.Info("No global config directories found")
		return result, nil
	}
	i.presenter.Info(fmt.Sprintf("Found %d global config directories", len(globals)))

	for _, global := range globals {
		if result.ModesSource != "" && result.RulesSource != "" {
			break
		}
		i.presenter.Info(fmt.Sprintf("Checking global config at: %s", global))
		src := NewPaths(global)

		if result.ModesSource == "" {
			if n := i.seed(ctx, src.Modes, i.paths.Modes, "mode"); n > 0 {
				result.ModesCopied, result.ModesSource = n, global
			}
		}
		if result.RulesSource == "" {
			if n := i.seed(ctx, src.Rules, i.paths.Rules, "rule"); n > 0 {
				result.RulesCopied, result.RulesSource = n, global
			}
		}
	}

	if result.ModesSource == "" {
		i.presenter.Info("No mode files found in global config directories")
	}
	if result.RulesSource == "" {
		i.presenter.Info("No rule files found in global config directories")
	}

	log.WithField("modes_copied", result.ModesCopied).
		WithField("rules_copied", result.RulesCopied).
		Debug("initialization complete")
	return result, nil
}

func (i *Initializer) seed(ctx context.Context, src, dst, kind string) int {
	if ok, err := afero.DirExists(i.fs, src); err != nil || !ok {
		return 0
	}

	n, err := CopyDirContents(i.fs, src, dst)
	if err != nil {
		i.presenter.Error(err, fmt.Sprintf("Error copying %s files", kind))
		logger.G(ctx).WithError(err).WithField("source", src).Debug("copy failed")
	}
	if n > 0 {
		i.presenter.Success(fmt.Sprintf("Copied %d %s files from %s", n, kind, src))
	}
	return n
}
