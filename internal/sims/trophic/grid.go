package trophic

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Size is the fixed edge length of the grid.
const Size = 10

// Layout is a full 10x10 arrangement of cells in row-major order.
type Layout [Size][Size]Cell

// ErrLayoutShape is returned when a dynamically sized layout is not 10x10.
var ErrLayoutShape = errors.New("layout must be 10x10")

// Grid is the simulated map. It owns its cells exclusively; every accessor
// hands out copies.
type Grid struct {
	cells      Layout
	generation uint32
	config     EvolutionConfig
}

// New builds a grid at generation 0 from an explicit layout.
func New(config EvolutionConfig, cells Layout) *Grid {
	g := &Grid{config: config}
	for r := range cells {
		for c := range cells[r] {
			g.cells[r][c] = cells[r][c].clone()
		}
	}
	return g
}

// NewFromRows builds a grid from a slice-of-rows layout, typically one decoded
// from JSON, and rejects anything that is not exactly 10x10.
func NewFromRows(config EvolutionConfig, rows [][]Cell) (*Grid, error) {
	if len(rows) != Size {
		return nil, fmt.Errorf("%w: got %d rows", ErrLayoutShape, len(rows))
	}
	var layout Layout
	for r, row := range rows {
		if len(row) != Size {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrLayoutShape, r, len(row))
		}
		copy(layout[r][:], row)
	}
	return New(config, layout), nil
}

// Generation returns the number of ticks applied so far.
func (g *Grid) Generation() uint32 { return g.generation }

// Config returns the rates the grid was built with.
func (g *Grid) Config() EvolutionConfig { return g.config }

// Cells returns a deep copy of the current layout.
func (g *Grid) Cells() Layout {
	var out Layout
	for r := range g.cells {
		for c := range g.cells[r] {
			out[r][c] = g.cells[r][c].clone()
		}
	}
	return out
}

// Snapshot is a generation-stamped copy of the grid's cells.
type Snapshot struct {
	Generation uint32 `json:"generation"`
	Cells      Layout `json:"cells"`
}

// Snapshot captures the current generation and cells.
func (g *Grid) Snapshot() Snapshot {
	return Snapshot{Generation: g.generation, Cells: g.Cells()}
}

// Cell returns a copy of the cell at (row, col).
func (g *Grid) Cell(row, col int) Cell {
	return g.cells[row][col].clone()
}

// Tick advances the grid by one generation: herbivores graze every cell,
// then predators hunt every cell against the freshly updated herbivores, then
// extinct units are culled.
func (g *Grid) Tick() {
	g.generation++

	herbivores := g.config.herbivoreRates()
	g.eachCell(func(c *Cell) { hunt(c, HerbivoreAnimal, Plant, herbivores) })

	predators := g.config.predatorRates()
	g.eachCell(func(c *Cell) { hunt(c, PredatorAnimal, HerbivoreAnimal, predators) })

	g.eachCell(finalize)
}

// TickParallel is Tick with each phase spread across up to workers
// goroutines, one row at a time. The predator phase starts only after every
// row finished grazing, so the result matches Tick bit for bit.
func (g *Grid) TickParallel(workers int) {
	if workers <= 1 {
		g.Tick()
		return
	}
	g.generation++

	herbivores := g.config.herbivoreRates()
	g.eachRowParallel(workers, func(c *Cell) { hunt(c, HerbivoreAnimal, Plant, herbivores) })

	predators := g.config.predatorRates()
	g.eachRowParallel(workers, func(c *Cell) { hunt(c, PredatorAnimal, HerbivoreAnimal, predators) })

	g.eachCell(finalize)
}

func (g *Grid) eachCell(fn func(*Cell)) {
	for r := range g.cells {
		for c := range g.cells[r] {
			fn(&g.cells[r][c])
		}
	}
}

func (g *Grid) eachRowParallel(workers int, fn func(*Cell)) {
	var eg errgroup.Group
	eg.SetLimit(workers)
	for r := range g.cells {
		row := &g.cells[r]
		eg.Go(func() error {
			for c := range row {
				fn(&row[c])
			}
			return nil
		})
	}
	_ = eg.Wait()
}
