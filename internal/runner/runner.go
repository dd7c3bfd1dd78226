// Package runner drives a trophic grid for a fixed number of generations and
// hands every generation to a set of observers.
package runner

import (
	"context"
	"fmt"
	"time"

	"ecogrid/internal/logging"
	"ecogrid/internal/sims/trophic"
)

// Observer receives a snapshot after generation 0 and after every tick.
// Returning an error stops the run.
type Observer interface {
	Observe(ctx context.Context, s trophic.Snapshot) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, s trophic.Snapshot) error

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, s trophic.Snapshot) error { return f(ctx, s) }

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers ticks with TickParallel when n > 1.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithObservers appends observers in notification order.
func WithObservers(obs ...Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, obs...) }
}

// Runner advances a grid generation by generation.
type Runner struct {
	grid      *trophic.Grid
	observers []Observer
	workers   int
	log       *logging.Logger
}

// New creates a runner for grid.
func New(grid *trophic.Grid, opts ...Option) *Runner {
	r := &Runner{grid: grid, log: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run observes the current generation, then ticks generations times,
// observing after each tick. The context is checked between ticks.
func (r *Runner) Run(ctx context.Context, generations int) error {
	start := time.Now()
	r.log.Infof("running %d generations (workers=%d)", generations, r.workers)

	if err := r.notify(ctx); err != nil {
		return err
	}
	for i := 0; i < generations; i++ {
		if err := ctx.Err(); err != nil {
			r.log.Warnf("run stopped at generation %d: %v", r.grid.Generation(), err)
			return err
		}
		r.step()
		if err := r.notify(ctx); err != nil {
			return err
		}
	}

	totals := r.grid.Totals()
	r.log.Infof("finished generation %d in %s: plants=%.2f herbivores=%.2f predators=%.2f",
		r.grid.Generation(), time.Since(start).Round(time.Millisecond),
		totals.Plants, totals.Herbivores, totals.Predators)
	return nil
}

func (r *Runner) step() {
	if r.workers > 1 {
		r.grid.TickParallel(r.workers)
	} else {
		r.grid.Tick()
	}
	r.log.Debugf("generation %d: %d units alive", r.grid.Generation(), r.grid.UnitCount())
}

func (r *Runner) notify(ctx context.Context) error {
	if len(r.observers) == 0 {
		return nil
	}
	snap := r.grid.Snapshot()
	for _, o := range r.observers {
		if err := o.Observe(ctx, snap); err != nil {
			return fmt.Errorf("observer failed at generation %d: %w", snap.Generation, err)
		}
	}
	return nil
}
