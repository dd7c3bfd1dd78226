package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecogrid/internal/core"
	"ecogrid/internal/ids"
	"ecogrid/internal/sims/trophic"
)

func countKinds(c trophic.Cell) map[trophic.Kind]int {
	out := map[trophic.Kind]int{}
	for _, u := range c.Units() {
		out[u.Kind]++
	}
	return out
}

func TestBuildOrdersKindsAndAllocatesIDs(t *testing.T) {
	alloc := ids.New()
	cell := Build(alloc, CellSpec{Plants: 2, Herbivores: 1, Predators: 2})

	units := cell.Units()
	require.Len(t, units, 5)
	kinds := []trophic.Kind{trophic.Plant, trophic.Plant, trophic.HerbivoreAnimal, trophic.PredatorAnimal, trophic.PredatorAnimal}
	for i, u := range units {
		assert.Equal(t, kinds[i], u.Kind, "unit %d", i)
		assert.Equal(t, uint32(i+1), u.ID, "unit %d", i)
		assert.Equal(t, DefaultUnitSize, u.Quantity)
	}
	assert.Equal(t, uint32(5), alloc.Total())
}

func TestBuildCustomUnitSize(t *testing.T) {
	cell := Build(ids.New(), CellSpec{Predators: 1, UnitSize: 12.5})
	assert.Equal(t, 12.5, cell.Units()[0].Quantity)
}

func TestBuildEmptySpecIsEmptyGround(t *testing.T) {
	cell := Build(ids.New(), CellSpec{})
	assert.False(t, cell.IsWater())
	assert.Equal(t, 0, cell.Len())
}

func TestFlatLayout(t *testing.T) {
	alloc := ids.New()
	l := Flat(alloc, nil)

	assert.Equal(t, map[trophic.Kind]int{trophic.Plant: 3}, countKinds(l[0][0]))
	assert.Equal(t, map[trophic.Kind]int{trophic.Plant: 1, trophic.HerbivoreAnimal: 5}, countKinds(l[0][3]))
	assert.Equal(t, map[trophic.Kind]int{trophic.Plant: 1, trophic.HerbivoreAnimal: 1, trophic.PredatorAnimal: 5}, countKinds(l[1][2]))
	assert.Equal(t, map[trophic.Kind]int{trophic.PredatorAnimal: 1}, countKinds(l[1][3]))
	assert.True(t, l[5][5].IsWater())
	assert.True(t, l[0][5].IsWater())
	assert.Equal(t, uint32(35), alloc.Total())
}

func TestIslandLayoutFollowsMask(t *testing.T) {
	l := Island(ids.New(), nil)
	ground := 0
	for r := range l {
		for c := range l[r] {
			assert.Equal(t, IslandGround(r, c), !l[r][c].IsWater(), "cell (%d,%d)", r, c)
			if !l[r][c].IsWater() {
				ground++
				assert.Equal(t, map[trophic.Kind]int{trophic.Plant: 5}, countKinds(l[r][c]))
			}
		}
	}
	assert.Equal(t, 41, ground)
}

func TestRandomLayoutIsSeeded(t *testing.T) {
	a := Random(ids.New(), core.NewRNG(7))
	b := Random(ids.New(), core.NewRNG(7))
	assert.Equal(t, a, b)

	for r := range a {
		for c := range a[r] {
			if a[r][c].IsWater() {
				continue
			}
			k := countKinds(a[r][c])
			assert.GreaterOrEqual(t, k[trophic.Plant], 1)
			assert.LessOrEqual(t, k[trophic.Plant], 2)
			assert.LessOrEqual(t, k[trophic.HerbivoreAnimal], 1)
			assert.LessOrEqual(t, k[trophic.PredatorAnimal], 1)
		}
	}
}

func TestIDsUniqueAcrossLayout(t *testing.T) {
	l := Random(ids.New(), core.NewRNG(3))
	seen := map[uint32]bool{}
	for r := range l {
		for c := range l[r] {
			for _, u := range l[r][c].Units() {
				require.False(t, seen[u.ID], "duplicate id %d", u.ID)
				seen[u.ID] = true
			}
		}
	}
}

func TestLookup(t *testing.T) {
	_, err := Lookup("flat")
	require.NoError(t, err)

	_, err = Lookup("volcano")
	assert.ErrorIs(t, err, ErrUnknownLayout)
	assert.Equal(t, []string{"flat", "island", "random"}, Names())
}

func fileRows(fill func(r, c int) string) string {
	var rows []string
	for r := 0; r < trophic.Size; r++ {
		var cells []string
		for c := 0; c < trophic.Size; c++ {
			cells = append(cells, fill(r, c))
		}
		rows = append(rows, "["+strings.Join(cells, ",")+"]")
	}
	return `{"rows":[` + strings.Join(rows, ",") + `]}`
}

func TestDecodeLayoutFile(t *testing.T) {
	doc := fileRows(func(r, c int) string {
		if r == 4 && c == 6 {
			return `{"plants":2,"predators":1,"unit_size":10}`
		}
		return "null"
	})
	b, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	l := b(ids.New(), nil)
	units := l[4][6].Units()
	require.Len(t, units, 3)
	assert.Equal(t, 10.0, units[2].Quantity)
	assert.True(t, l[0][0].IsWater())
}

func TestDecodeRejectsWrongShape(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"rows":[[null]]}`))
	assert.ErrorIs(t, err, trophic.ErrLayoutShape)

	_, err = Decode(strings.NewReader(`{"cells":[]}`))
	assert.Error(t, err)
}

func TestDecodeRejectsNegativeSpec(t *testing.T) {
	for _, spec := range []string{
		`{"plants":-5}`,
		`{"herbivores":-1}`,
		`{"predators":-2}`,
		`{"plants":1,"unit_size":-3}`,
	} {
		doc := fileRows(func(r, c int) string {
			if r == 2 && c == 3 {
				return spec
			}
			return "null"
		})
		_, err := Decode(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrInvalidSpec, spec)
	}
}

func TestBuildIgnoresNegativeValues(t *testing.T) {
	alloc := ids.New()
	var cell trophic.Cell
	require.NotPanics(t, func() {
		cell = Build(alloc, CellSpec{Plants: -5, Herbivores: 1, Predators: -1, UnitSize: -3})
	})
	units := cell.Units()
	require.Len(t, units, 1)
	assert.Equal(t, trophic.HerbivoreAnimal, units[0].Kind)
	assert.Equal(t, DefaultUnitSize, units[0].Quantity)
	assert.Equal(t, uint32(1), alloc.Total())
}

func TestResolveFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	doc := fileRows(func(r, c int) string { return `{"plants":1}` })
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	b, err := Resolve(path)
	require.NoError(t, err)
	alloc := ids.New()
	b(alloc, nil)
	assert.Equal(t, uint32(100), alloc.Total())

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrUnknownLayout)
}
