// Package sweep evaluates many rate combinations on the same starting layout
// and ranks them by how long the food chain holds together.
package sweep

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"ecogrid/internal/core"
	"ecogrid/internal/ids"
	"ecogrid/internal/scenario"
	"ecogrid/internal/sims/trophic"
)

// Axis lists the values tried for one rate.
type Axis struct {
	Name   string
	Values []float64
}

var rateFields = map[string]func(*trophic.EvolutionConfig) *float64{
	"plant_growth_rate":     func(c *trophic.EvolutionConfig) *float64 { return &c.PlantGrowthRate },
	"herbivore_eating_rate": func(c *trophic.EvolutionConfig) *float64 { return &c.HerbivoreEatingRate },
	"herbivore_death_rate":  func(c *trophic.EvolutionConfig) *float64 { return &c.HerbivoreDeathRate },
	"predator_eating_rate":  func(c *trophic.EvolutionConfig) *float64 { return &c.PredatorEatingRate },
	"predator_death_rate":   func(c *trophic.EvolutionConfig) *float64 { return &c.PredatorDeathRate },
}

// RateNames lists the rates an Axis may name.
func RateNames() []string {
	names := make([]string, 0, len(rateFields))
	for name := range rateFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseAxis parses "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok {
		return Axis{}, fmt.Errorf("axis %q: want name=v1,v2", s)
	}
	name = strings.TrimSpace(strings.ReplaceAll(name, "-", "_"))
	if _, known := rateFields[name]; !known {
		return Axis{}, fmt.Errorf("axis %q: unknown rate (known: %s)", s, strings.Join(RateNames(), ", "))
	}
	axis := Axis{Name: name}
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("axis %q: %w", s, err)
		}
		axis.Values = append(axis.Values, v)
	}
	return axis, nil
}

// Candidates expands the cartesian product of axes over base. Axes are
// applied in order; the last axis varies fastest.
func Candidates(base trophic.EvolutionConfig, axes ...Axis) ([]trophic.EvolutionConfig, error) {
	sets := []trophic.EvolutionConfig{base}
	for _, axis := range axes {
		field, ok := rateFields[axis.Name]
		if !ok {
			return nil, fmt.Errorf("unknown rate %q", axis.Name)
		}
		if len(axis.Values) == 0 {
			continue
		}
		next := make([]trophic.EvolutionConfig, 0, len(sets)*len(axis.Values))
		for _, set := range sets {
			for _, v := range axis.Values {
				c := set
				*field(&c) = v
				next = append(next, c)
			}
		}
		sets = next
	}
	return sets, nil
}

// Result is the outcome of one candidate.
type Result struct {
	Index  int
	Config trophic.EvolutionConfig
	// Persistence is the last generation at which every kind present at the
	// start was still alive.
	Persistence int
	// Evenness is the normalized Shannon evenness of the final totals.
	Evenness float64
	Final    trophic.Population
	Units    int
}

// Score ranks results: persistence first, evenness as the tie breaker.
func (r Result) Score() float64 { return float64(r.Persistence) + r.Evenness }

// String formats the result on one line.
func (r Result) String() string {
	c := r.Config
	return fmt.Sprintf("score=%.3f persist=%d even=%.3f plant_growth=%g herb_eat=%g herb_death=%g pred_eat=%g pred_death=%g",
		r.Score(), r.Persistence, r.Evenness,
		c.PlantGrowthRate, c.HerbivoreEatingRate, c.HerbivoreDeathRate, c.PredatorEatingRate, c.PredatorDeathRate)
}

// Options describe the shared part of every run.
type Options struct {
	Layout      scenario.Builder
	Seed        int64
	Generations int
	Workers     int
	// Progress, when set, is called from the collecting goroutine after
	// each result.
	Progress func(done, total int, r Result)
}

// Run evaluates every candidate on its own copy of the layout and returns
// the results best first.
func Run(ctx context.Context, opts Options, candidates []trophic.EvolutionConfig) ([]Result, error) {
	if opts.Layout == nil {
		return nil, fmt.Errorf("sweep needs a layout")
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	type job struct {
		index int
		cfg   trophic.EvolutionConfig
	}
	jobs := make(chan job)
	results := make(chan Result)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := Evaluate(opts.Layout, opts.Seed, j.cfg, opts.Generations)
				res.Index = j.index
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for i, cfg := range candidates {
			select {
			case jobs <- job{index: i, cfg: cfg}:
			case <-ctx.Done():
				return
			}
		}
	}()

	all := make([]Result, 0, len(candidates))
	for res := range results {
		all = append(all, res)
		if opts.Progress != nil {
			opts.Progress(len(all), len(candidates), res)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		si, sj := all[i].Score(), all[j].Score()
		if si != sj {
			return si > sj
		}
		return all[i].Index < all[j].Index
	})
	return all, nil
}

// Evaluate runs one candidate for the given number of generations.
func Evaluate(layout scenario.Builder, seed int64, cfg trophic.EvolutionConfig, generations int) Result {
	grid := trophic.New(cfg, layout(ids.New(), core.NewRNG(seed)))
	start := grid.Totals()

	res := Result{Config: cfg}
	alive := true
	for gen := 1; gen <= generations; gen++ {
		grid.Tick()
		if alive && !stillPresent(start, grid.Totals()) {
			alive = false
		}
		if alive {
			res.Persistence = gen
		}
	}
	res.Final = grid.Totals()
	res.Units = grid.UnitCount()
	res.Evenness = evenness(res.Final)
	return res
}

func stillPresent(start, now trophic.Population) bool {
	for _, k := range trophic.Kinds {
		if start.Of(k) > 0 && now.Of(k) <= 0 {
			return false
		}
	}
	return true
}

func evenness(p trophic.Population) float64 {
	total := p.Total()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	var h float64
	for _, k := range trophic.Kinds {
		share := p.Of(k) / total
		if share > 0 {
			h -= share * math.Log(share)
		}
	}
	return h / math.Log(float64(len(trophic.Kinds)))
}
