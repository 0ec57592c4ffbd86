package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"

	"go.viam.com/armrig/logging"
)

// StoppableWorkers is a group of background loops, such as the frame driver or a config watcher,
// that share one cancellation and are stopped together.
type StoppableWorkers interface {
	AddWorkers(...func(context.Context))
	Stop()
	Context() context.Context
	// Panics counts workers that exited by panicking.
	Panics() int
}

type stoppableWorkersImpl struct {
	logger logging.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  func()
	running sync.WaitGroup
	panics  int
}

// NewStoppableWorkers starts each function in its own goroutine. The workers stop when Stop is
// called or parent is cancelled. A panicking worker is logged to logger and does not take the
// process down.
func NewStoppableWorkers(parent context.Context, logger logging.Logger, funcs ...func(context.Context)) StoppableWorkers {
	ctx, cancel := context.WithCancel(parent)
	workers := &stoppableWorkersImpl{logger: logger, ctx: ctx, cancel: cancel}
	workers.AddWorkers(funcs...)
	return workers
}

// AddWorkers starts more workers. After Stop it does nothing.
func (sw *stoppableWorkersImpl) AddWorkers(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.ctx.Err() != nil {
		return
	}

	sw.running.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGoWithCallback(func() {
			defer sw.running.Done()
			f(sw.ctx)
		}, func(err interface{}) {
			sw.logger.Errorw("worker panicked", "error", err)
			sw.mu.Lock()
			sw.panics++
			sw.mu.Unlock()
		})
	}
}

// Stop cancels every worker and waits for them to return. It is safe to call more than once.
func (sw *stoppableWorkersImpl) Stop() {
	sw.cancel()
	sw.running.Wait()
}

// Context returns the context the workers watch.
func (sw *stoppableWorkersImpl) Context() context.Context {
	return sw.ctx
}

func (sw *stoppableWorkersImpl) Panics() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.panics
}
