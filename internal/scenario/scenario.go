// Package scenario builds starting layouts for the trophic grid. All
// randomness in a run lives here; the grid itself is deterministic.
package scenario

import (
	"errors"
	"fmt"
	"sort"

	"ecogrid/internal/core"
	"ecogrid/internal/ids"
	"ecogrid/internal/sims/trophic"
)

// DefaultUnitSize is the starting quantity of every generated unit.
const DefaultUnitSize = 50.0

var (
	// ErrUnknownLayout is returned when a layout name is not registered.
	ErrUnknownLayout = errors.New("unknown layout")
	// ErrInvalidSpec is returned for a cell spec with negative counts or size.
	ErrInvalidSpec = errors.New("invalid cell spec")
)

// CellSpec requests how many units of each kind a ground cell starts with.
type CellSpec struct {
	Plants     int     `json:"plants"`
	Herbivores int     `json:"herbivores"`
	Predators  int     `json:"predators"`
	UnitSize   float64 `json:"unit_size,omitempty"`
}

// Validate rejects negative unit counts and a negative unit size.
func (s CellSpec) Validate() error {
	switch {
	case s.Plants < 0:
		return fmt.Errorf("%w: plants %d", ErrInvalidSpec, s.Plants)
	case s.Herbivores < 0:
		return fmt.Errorf("%w: herbivores %d", ErrInvalidSpec, s.Herbivores)
	case s.Predators < 0:
		return fmt.Errorf("%w: predators %d", ErrInvalidSpec, s.Predators)
	case s.UnitSize < 0:
		return fmt.Errorf("%w: unit_size %g", ErrInvalidSpec, s.UnitSize)
	}
	return nil
}

// Build creates a ground cell holding the requested units. Plants are
// allocated first, then herbivores, then predators, each drawing a fresh id.
// A non-positive UnitSize means DefaultUnitSize and negative counts are
// treated as zero.
func Build(alloc *ids.Allocator, spec CellSpec) trophic.Cell {
	size := spec.UnitSize
	if size <= 0 {
		size = DefaultUnitSize
	}
	plants, herbivores, predators := max(spec.Plants, 0), max(spec.Herbivores, 0), max(spec.Predators, 0)
	units := make([]trophic.Unit, 0, plants+herbivores+predators)
	add := func(kind trophic.Kind, n int) {
		for i := 0; i < n; i++ {
			units = append(units, trophic.Unit{Kind: kind, ID: alloc.Next(), Quantity: size})
		}
	}
	add(trophic.Plant, plants)
	add(trophic.HerbivoreAnimal, herbivores)
	add(trophic.PredatorAnimal, predators)
	return trophic.Ground(units...)
}

// Builder produces a starting layout. Deterministic builders ignore rng.
type Builder func(alloc *ids.Allocator, rng *core.RNG) trophic.Layout

var layouts = map[string]Builder{
	"flat":   Flat,
	"island": Island,
	"random": Random,
}

// Lookup returns the builder registered under name.
func Lookup(name string) (Builder, error) {
	b, ok := layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownLayout, name, Names())
	}
	return b, nil
}

// Names lists the registered layouts in sorted order.
func Names() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
