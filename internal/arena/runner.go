package arena

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickFunc advances one registered simulation by dt seconds. Returning false
// unregisters it.
type TickFunc func(dt float64) bool

// Runner drives registered simulations at a fixed wall-clock rate. Callbacks
// run sequentially on the Run goroutine in id order.
//
// Invariant: each callback is invoked at most once per interval.
type Runner struct {
	interval time.Duration
	logger   *zap.Logger
	mu       sync.Mutex
	ticks    map[string]TickFunc
}

// NewRunner returns a runner that fires every interval.
//
// Precondition: interval must be > 0.
func NewRunner(interval time.Duration, logger *zap.Logger) *Runner {
	if interval <= 0 {
		panic("arena.NewRunner: interval must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		interval: interval,
		logger:   logger,
		ticks:    make(map[string]TickFunc),
	}
}

// Register adds fn under id, replacing any existing callback.
func (r *Runner) Register(id string, fn TickFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks[id] = fn
}

// Unregister removes the callback for id.
func (r *Runner) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ticks, id)
}

// Len returns the number of registered callbacks.
func (r *Runner) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks)
}

// Run ticks every registered callback once per interval until ctx is done or
// no callbacks remain.
//
// Postcondition: Returns nil once every callback has finished, or ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	dt := r.interval.Seconds()
	for {
		if r.Len() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, id := range r.snapshot() {
				r.mu.Lock()
				fn, ok := r.ticks[id]
				r.mu.Unlock()
				if !ok {
					continue
				}
				if !fn(dt) {
					r.Unregister(id)
					r.logger.Debug("simulation finished", zap.String("id", id))
				}
			}
		}
	}
}

func (r *Runner) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.ticks))
	for id := range r.ticks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
