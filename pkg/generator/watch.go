package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jingkaihe/cliner/pkg/logger"
	"github.com/jingkaihe/cliner/pkg/presenter"
	"github.com/jingkaihe/cliner/pkg/workspace"
)

type pass int

const (
	modesPass pass = iota
	rulesPass
)

func (p pass) String() string {
	if p == modesPass {
		return "modes"
	}
	return "rules"
}

// Watch generates both artifacts, then regenerates the affected artifact
// whenever a file in the modes or rules directory changes. Bursts of events
// are debounced per pass. It returns when ctx is cancelled.
func (g *Generator) Watch(ctx context.Context) error {
	if !g.aggregator.DirExists(g.paths.Base) {
		return errors.Wrapf(ErrBaseDirNotFound, "%s", g.paths.Base)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	for _, dir := range []string{g.paths.Base, g.paths.Modes, g.paths.Rules} {
		if !g.aggregator.DirExists(dir) {
			continue
		}
		logger.G(ctx).WithField("directory", dir).Debug("adding directory to watcher")
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	if err := g.Run(ctx); err != nil {
		g.presenter.Error(err, "Generation failed")
	}

	delay := time.Duration(g.config.Watch.DebounceMs) * time.Millisecond
	d := newDebouncer(delay)
	defer d.stop()

	g.presenter.Info("Watching for changes... Press Ctrl+C to stop")
	logger.G(ctx).WithField("debounce", delay).Info("file watcher initialized")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			p, ok := g.classify(ctx, watcher, event)
			if !ok {
				continue
			}
			logger.G(ctx).WithField("file", event.Name).
				WithField("operation", event.Op.String()).
				Debug("change detected")
			d.trigger(p)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.presenter.Error(err, "File watcher error")
			logger.G(ctx).WithError(err).Error("error watching files")
		case p := <-d.C:
			g.regenerate(ctx, p)
		case <-ctx.Done():
			return nil
		}
	}
}

// classify maps a filesystem event to the pass it affects.
func (g *Generator) classify(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) (pass, bool) {
	if event.Op == fsnotify.Chmod {
		return 0, false
	}

	dir := filepath.Clean(filepath.Dir(event.Name))
	name := filepath.Base(event.Name)

	switch dir {
	case filepath.Clean(g.paths.Modes):
		return modesPass, !g.aggregator.Excluded(name)
	case filepath.Clean(g.paths.Rules):
		return rulesPass, !g.aggregator.Excluded(name)
	case filepath.Clean(g.paths.Base):
		var p pass
		switch name {
		case workspace.ModesDirName:
			p = modesPass
		case workspace.RulesDirName:
			p = rulesPass
		default:
			return 0, false
		}
		if event.Has(fsnotify.Create) && g.aggregator.DirExists(event.Name) {
			if err := watcher.Add(event.Name); err != nil {
				logger.G(ctx).WithError(err).WithField("directory", event.Name).Warn("failed to watch new directory")
			}
		}
		return p, true
	}

	return 0, false
}

func (g *Generator) regenerate(ctx context.Context, p pass) {
	ctx = logger.WithField(ctx, "run_id", uuid.NewString())

	var (
		stats presenter.PassStats
		err   error
	)
	switch p {
	case modesPass:
		stats, err = g.GenerateModes(ctx)
	case rulesPass:
		stats, err = g.GenerateRules(ctx)
	}
	if err != nil {
		g.presenter.Error(err, fmt.Sprintf("Failed to regenerate %s", p))
		return
	}
	g.presenter.Summary(stats)
}

// debouncer coalesces triggers for the same pass that arrive within delay.
// trigger and stop must be called from a single goroutine.
type debouncer struct {
	C <-chan pass

	c       chan pass
	delay   time.Duration
	pending map[pass]*time.Timer
	done    chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	c := make(chan pass)
	return &debouncer{
		C:       c,
		c:       c,
		delay:   delay,
		pending: make(map[pass]*time.Timer),
		done:    make(chan struct{}),
	}
}

func (d *debouncer) trigger(p pass) {
	if timer, ok := d.pending[p]; ok {
		timer.Stop()
	}
	d.pending[p] = time.AfterFunc(d.delay, func() {
		select {
		case d.c <- p:
		case <-d.done:
		}
	})
}

func (d *debouncer) stop() {
	for _, timer := range d.pending {
		timer.Stop()
	}
	close(d.done)
}
