package scenario

import (
	"ecogrid/internal/core"
	"ecogrid/internal/ids"
	"ecogrid/internal/sims/trophic"
)

// flatPlan is a two-row experiment that puts one food chain configuration in
// each cell, from plants alone to predator-heavy cells without food.
var flatPlan = []struct {
	row, col int
	spec     CellSpec
}{
	{0, 0, CellSpec{Plants: 3}},
	{0, 1, CellSpec{Plants: 3, Herbivores: 1}},
	{0, 2, CellSpec{Plants: 1, Herbivores: 4}},
	{0, 3, CellSpec{Plants: 1, Herbivores: 5}},
	{0, 4, CellSpec{Herbivores: 1}},
	{1, 0, CellSpec{Plants: 1, Herbivores: 1, Predators: 1}},
	{1, 1, CellSpec{Plants: 1, Herbivores: 1, Predators: 3}},
	{1, 2, CellSpec{Plants: 1, Herbivores: 1, Predators: 5}},
	{1, 3, CellSpec{Predators: 1}},
}

// Flat lays out the reference experiment; every other cell is water.
func Flat(alloc *ids.Allocator, _ *core.RNG) trophic.Layout {
	var l trophic.Layout
	for _, p := range flatPlan {
		l[p.row][p.col] = Build(alloc, p.spec)
	}
	return l
}

// islandMask marks ground with '^' and water with '-'.
var islandMask = [trophic.Size]string{
	"----------",
	"-^-----^--",
	"-^^^^-^^--",
	"--^^^^^^--",
	"--^^^^^^--",
	"---^^^^--^",
	"--^^^^^-^^",
	"----^^^^^-",
	"----^^^^--",
	"----------",
}

// IslandGround reports whether (row, col) is land on the island map.
func IslandGround(row, col int) bool {
	return islandMask[row][col] == '^'
}

// Island covers the island mask with five plants per ground cell.
func Island(alloc *ids.Allocator, _ *core.RNG) trophic.Layout {
	return islandWith(func() CellSpec { return CellSpec{Plants: 5} }, alloc)
}

// Random covers the island mask with randomly stocked cells: one or two
// plants and at most one herbivore and one predator each.
func Random(alloc *ids.Allocator, rng *core.RNG) trophic.Layout {
	if rng == nil {
		rng = core.NewRNG(0)
	}
	return islandWith(func() CellSpec { return RandomSpec(rng) }, alloc)
}

// RandomSpec draws a stocking request for one cell.
func RandomSpec(rng *core.RNG) CellSpec {
	return CellSpec{
		Plants:     rng.IntRange(1, 3),
		Herbivores: rng.IntRange(0, 2),
		Predators:  rng.IntRange(0, 2),
	}
}

func islandWith(next func() CellSpec, alloc *ids.Allocator) trophic.Layout {
	var l trophic.Layout
	for r := range l {
		for c := range l[r] {
			if IslandGround(r, c) {
				l[r][c] = Build(alloc, next())
			}
		}
	}
	return l
}
