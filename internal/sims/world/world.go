// Package world adapts the trophic grid to the core.Sim contract so viewers
// and servers can drive it like any other simulation.
package world

import (
	"ecogrid/internal/core"
	"ecogrid/internal/ids"
	"ecogrid/internal/scenario"
	"ecogrid/internal/sims/trophic"
)

var (
	_ core.Sim               = (*World)(nil)
	_ core.ParameterProvider = (*World)(nil)
)

// World pairs a grid with the layout it was built from.
type World struct {
	cfg   Config
	build scenario.Builder

	alloc   *ids.Allocator
	grid    *trophic.Grid
	display *core.ByteGrid
	seed    int64
}

// New resolves the configured layout, by name or file path, and builds the
// initial grid with the configured seed.
func New(cfg Config) (*World, error) {
	b, err := scenario.Resolve(cfg.Layout)
	if err != nil {
		return nil, err
	}
	return NewWithBuilder(cfg, b), nil
}

// NewWithBuilder builds a world from an explicit layout builder.
func NewWithBuilder(cfg Config, b scenario.Builder) *World {
	w := &World{
		cfg:     cfg,
		build:   b,
		display: core.NewByteGrid(trophic.Size, trophic.Size),
	}
	w.Reset(0)
	return w
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "ecogrid/" + w.cfg.Layout }

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: trophic.Size, H: trophic.Size} }

// Cells exposes the current display buffer.
func (w *World) Cells() []uint8 { return w.display.Cells() }

// Generation reports how many ticks the grid has advanced.
func (w *World) Generation() uint32 { return w.grid.Generation() }

// Grid exposes the underlying trophic grid.
func (w *World) Grid() *trophic.Grid { return w.grid }

// Config returns the configuration the world was created with.
func (w *World) Config() Config { return w.cfg }

// Seed returns the seed used by the last Reset.
func (w *World) Seed() int64 { return w.seed }

// UnitsIssued reports how many unit ids the layout consumed.
func (w *World) UnitsIssued() uint32 { return w.alloc.Total() }

// Reset rebuilds the starting layout. A zero seed falls back to the
// configured one. Ids restart at 1 because each reset is a new run.
func (w *World) Reset(seed int64) {
	if seed == 0 {
		seed = w.cfg.Seed
	}
	w.seed = seed
	w.alloc = ids.New()
	layout := w.build(w.alloc, core.NewRNG(seed))
	w.grid = trophic.New(w.cfg.Evolution, layout)
	w.rebuildDisplay()
}

// Step advances the grid by one generation.
func (w *World) Step() {
	w.grid.Tick()
	w.rebuildDisplay()
}

func init() {
	for _, name := range scenario.Names() {
		b, err := scenario.Lookup(name)
		if err != nil {
			continue
		}
		core.Register(name, func(cfg map[string]string) core.Sim {
			c := FromMap(cfg)
			c.Layout = name
			return NewWithBuilder(c, b)
		})
	}
}
