package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/utils"
)

// A Watcher re-reads a config file whenever it changes and delivers each valid result. Edits
// that fail to read or validate are logged and skipped, so the last good config stays in force.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	configs  chan *Config
	reloads  chan struct{}
	debounce func(func())
	logger   logging.Logger
	workers  utils.StoppableWorkers
}

// Editors often emit several events for a single save.
const reloadDebounce = 50 * time.Millisecond

// NewWatcher starts watching filePath. The containing directory is watched rather than the file
// itself so that editors which replace the file on save are still seen.
func NewWatcher(ctx context.Context, filePath string, logger logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create config watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "cannot watch %s", filePath), fsw.Close())
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		configs:  make(chan *Config, 1),
		reloads:  make(chan struct{}, 1),
		debounce: debounce.New(reloadDebounce),
		logger:   logger,
	}
	w.workers = utils.NewStoppableWorkers(ctx, w.logger, w.watch)
	return w, nil
}

// Config returns the channel new configs are delivered on. A config not yet received is
// replaced by a newer one.
func (w *Watcher) Config() <-chan *Config {
	return w.configs
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	w.workers.Stop()
	return err
}

func (w *Watcher) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Errorw("config watcher error", "error", err)
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounce(w.requestReload)
		case <-w.reloads:
			cfg, err := Read(w.path)
			if err != nil {
				w.logger.Errorw("ignoring invalid config", "path", w.path, "error", err)
				continue
			}
			w.logger.Infow("config changed", "path", w.path)
			w.deliver(cfg)
		}
	}
}

// requestReload runs on the debounce timer and only signals watch, which does the reading.
func (w *Watcher) requestReload() {
	select {
	case w.reloads <- struct{}{}:
	default:
	}
}

// deliver never blocks; watch is the only sender.
func (w *Watcher) deliver(cfg *Config) {
	select {
	case <-w.configs:
	default:
	}
	w.configs <- cfg
}
