// Package generator turns a base directory of mode and rule documents into
// the modes and rules artifacts.
package generator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/jingkaihe/cliner/pkg/aggregate"
	"github.com/jingkaihe/cliner/pkg/config"
	"github.com/jingkaihe/cliner/pkg/logger"
	"github.com/jingkaihe/cliner/pkg/output"
	"github.com/jingkaihe/cliner/pkg/presenter"
	"github.com/jingkaihe/cliner/pkg/workspace"
)

// ErrBaseDirNotFound is returned when the base directory does not exist.
var ErrBaseDirNotFound = errors.New("base directory not found")

// Generator runs the modes and rules aggregation passes.
type Generator struct {
	config     *config.Config
	paths      workspace.Paths
	fs         afero.Fs
	presenter  presenter.Presenter
	aggregator *aggregate.Aggregator
	sink       *output.Sink
}

// Option configures a Generator
type Option func(*Generator) error

// WithFs sets the filesystem documents are read from
func WithFs(fs afero.Fs) Option {
	return func(g *Generator) error {
		if fs == nil {
			return errors.New("filesystem must not be nil")
		}
		g.fs = fs
		return nil
	}
}

// WithPresenter sets where progress and diagnostics are reported
func WithPresenter(p presenter.Presenter) Option {
	return func(g *Generator) error {
		if p == nil {
			return errors.New("presenter must not be nil")
		}
		g.presenter = p
		return nil
	}
}

// New creates a Generator for cfg
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	g := &Generator{
		config:    cfg,
		paths:     workspace.NewPaths(cfg.BaseDir),
		fs:        afero.NewOsFs(),
		presenter: presenter.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, errors.Wrap(err, "failed to apply generator option")
		}
	}

	agg, err := aggregate.New(
		aggregate.WithFs(g.fs),
		aggregate.WithExclude(cfg.Exclude...),
		aggregate.WithPresenter(g.presenter),
	)
	if err != nil {
		return nil, err
	}
	g.aggregator = agg
	g.sink = output.NewSink(g.presenter)

	return g, nil
}

// Paths returns the directory layout the generator reads from
func (g *Generator) Paths() workspace.Paths {
	return g.paths
}

// Run generates both artifacts. The passes run concurrently and a failure in
// one does not stop the other; all failures are returned together.
func (g *Generator) Run(ctx context.Context) error {
	if !g.aggregator.DirExists(g.paths.Base) {
		return errors.Wrapf(ErrBaseDirNotFound, "%s", g.paths.Base)
	}

	ctx = logger.WithField(ctx, "run_id", uuid.NewString())
	logger.G(ctx).WithField("base_dir", g.paths.Base).Debug("starting generation")

	var (
		modesStats, rulesStats presenter.PassStats
		modesErr, rulesErr     error
		eg                     errgroup.Group
	)
	eg.Go(func() error {
		modesStats, modesErr = g.GenerateModes(ctx)
		return nil
	})
	eg.Go(func() error {
		rulesStats, rulesErr = g.GenerateRules(ctx)
		return nil
	})
	_ = eg.Wait()

	var result *multierror.Error
	if modesErr != nil {
		result = multierror.Append(result, errors.Wrap(modesErr, "modes generation failed"))
	}
	if rulesErr != nil {
		result = multierror.Append(result, errors.Wrap(rulesErr, "rules generation failed"))
	}

	g.presenter.Summary(modesStats, rulesStats)
	return result.ErrorOrNil()
}

// GenerateModes aggregates the modes directory into the modes artifact.
func (g *Generator) GenerateModes(ctx context.Context) (presenter.PassStats, error) {
	stats := presenter.PassStats{Name: "modes", Artifact: g.config.ModesOutput}
	if !g.dirPresent(g.paths.Modes, "modes", g.config.ModesOutput) {
		return stats, nil
	}

	result, err := g.aggregator.CollectModes(ctx, g.paths.Modes)
	if err != nil {
		return stats, err
	}
	stats.Parsed = len(result.Values)
	stats.Skipped = len(result.Skipped)

	outcome, err := g.sink.WriteJSONIfNotEmpty(ctx, result.Values, output.Artifact{Path: g.config.ModesOutput, Kind: "modes"})
	stats.Written = outcome == output.Written
	return stats, err
}

// GenerateRules concatenates the rules directory into the rules artifact.
func (g *Generator) GenerateRules(ctx context.Context) (presenter.PassStats, error) {
	stats := presenter.PassStats{Name: "rules", Artifact: g.config.RulesOutput}
	if !g.dirPresent(g.paths.Rules, "rules", g.config.RulesOutput) {
		return stats, nil
	}

	result, err := g.aggregator.ConcatenateRules(ctx, g.paths.Rules)
	if err != nil {
		return stats, err
	}
	stats.Parsed = result.Files

	outcome, err := g.sink.WriteContentIfNotEmpty(ctx, result.Content, output.Artifact{Path: g.config.RulesOutput, Kind: "rules"})
	stats.Written = outcome == output.Written
	return stats, err
}

func (g *Generator) dirPresent(dir, kind, artifact string) bool {
	if g.aggregator.DirExists(dir) {
		return true
	}
	g.presenter.Info(fmt.Sprintf("%s directory not found, skipping %s generation", kind, artifact))
	return false
}
