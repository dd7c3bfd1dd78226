package runner

import (
	"context"
	"fmt"
	"io"

	"ecogrid/internal/render"
	"ecogrid/internal/sims/trophic"
)

// SummaryObserver writes one population line per generation.
func SummaryObserver(w io.Writer) Observer {
	return ObserverFunc(func(_ context.Context, s trophic.Snapshot) error {
		_, err := fmt.Fprintln(w, render.Summary(s))
		return err
	})
}

// MapObserver writes the terrain map followed by the population summary.
func MapObserver(w io.Writer) Observer {
	return ObserverFunc(func(_ context.Context, s trophic.Snapshot) error {
		_, err := fmt.Fprintf(w, "%s\n%s\n\n", render.Map(&s.Cells), render.Summary(s))
		return err
	})
}

// UnitsObserver writes the per-cell unit listing of every generation.
func UnitsObserver(w io.Writer) Observer {
	return ObserverFunc(func(_ context.Context, s trophic.Snapshot) error {
		if _, err := fmt.Fprintf(w, "generation %d\n", s.Generation); err != nil {
			return err
		}
		return render.WriteUnits(w, &s.Cells)
	})
}

// EvolutionObserver appends every generation to a JSON evolution array.
// Close terminates the array.
type EvolutionObserver struct {
	out *render.EvolutionWriter
}

// NewEvolutionObserver writes the evolution array to w.
func NewEvolutionObserver(w io.Writer) *EvolutionObserver {
	return &EvolutionObserver{out: render.NewEvolutionWriter(w)}
}

// NewLegacyEvolutionObserver writes the evolution array with herbivores
// named VegeterianAnimal.
func NewLegacyEvolutionObserver(w io.Writer) *EvolutionObserver {
	return &EvolutionObserver{out: render.NewLegacyEvolutionWriter(w)}
}

// Observe implements Observer.
func (e *EvolutionObserver) Observe(_ context.Context, s trophic.Snapshot) error {
	return e.out.Write(&s.Cells)
}

// Close terminates the JSON array.
func (e *EvolutionObserver) Close() error { return e.out.Close() }
