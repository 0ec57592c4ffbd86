package rig

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/utils"
)

// A Driver ticks a rig at a fixed rate off an injected clock. Each tick's dt is the clock time
// since the previous one, so late or dropped ticks are made up in the next step.
type Driver struct {
	rig    *Rig
	clk    clock.Clock
	period time.Duration
	logger logging.Logger

	mu      sync.Mutex
	workers utils.StoppableWorkers
	closed  bool
	ticks   atomic.Uint64
}

// NewDriver returns a stopped driver for r at fps frames per second.
func NewDriver(r *Rig, clk clock.Clock, fps float64, logger logging.Logger) (*Driver, error) {
	if r == nil {
		return nil, errors.New("driver requires a rig")
	}
	if fps <= 0 {
		return nil, errors.Errorf("fps must be positive, got %v", fps)
	}
	return &Driver{
		rig:    r,
		clk:    clk,
		period: time.Duration(float64(time.Second) / fps),
		logger: logger,
	}, nil
}

// Start begins ticking. The loop runs until ctx is cancelled or Close is called.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.workers != nil {
		return errors.New("driver already started")
	}

	// The ticker exists before Start returns so no tick of a mock clock is missed.
	ticker := d.clk.Ticker(d.period)
	last := d.clk.Now()
	d.workers = utils.NewStoppableWorkers(ctx, d.logger, func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				d.rig.Tick(now.Sub(last).Seconds())
				last = now
				d.ticks.Inc()
			}
		}
	})
	d.logger.Infow("driver started", "period", d.period)
	return nil
}

// Close stops ticking and waits for the loop to exit.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.workers == nil || d.closed {
		return
	}
	d.closed = true
	d.workers.Stop()
	d.logger.Infow("driver stopped", "ticks", d.ticks.Load())
}

// Ticks returns the number of ticks run so far.
func (d *Driver) Ticks() uint64 {
	return d.ticks.Load()
}

// Period returns the time between ticks.
func (d *Driver) Period() time.Duration {
	return d.period
}
