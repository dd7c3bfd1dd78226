package world

import (
	"image/color"

	"ecogrid/internal/sims/trophic"
)

// Display codes pack the dominant occupant into the low three bits and a
// biomass level into the next two.
const (
	displayWater     = 0
	displayBare      = 1
	displayPlant     = 2
	displayHerbivore = 3
	displayPredator  = 4

	displayKindMask   = 0x07
	displayLevelShift = 3
	displayLevelMask  = 0x18
)

// levelBounds are the biomass cut-offs between the four density levels.
var levelBounds = [...]float64{25, 75, 150}

var palette = buildPalette()

// Palette exposes the colors used to render display codes.
func (w *World) Palette() []color.RGBA { return palette }

// DisplayCode returns the display value for a cell.
func DisplayCode(s trophic.CellStats) uint8 {
	if s.Terrain == trophic.TerrainWater {
		return displayWater
	}
	kind, ok := s.Dominant()
	if !ok {
		return displayBare
	}
	var code uint8
	switch kind {
	case trophic.Plant:
		code = displayPlant
	case trophic.HerbivoreAnimal:
		code = displayHerbivore
	case trophic.PredatorAnimal:
		code = displayPredator
	}
	return code | (densityLevel(s.Of(kind)) << displayLevelShift)
}

// KindColor is the color of a cell densely occupied by k.
func KindColor(k trophic.Kind) color.RGBA {
	code := displayPlant
	switch k {
	case trophic.HerbivoreAnimal:
		code = displayHerbivore
	case trophic.PredatorAnimal:
		code = displayPredator
	}
	return palette[code|len(levelBounds)<<displayLevelShift]
}

func densityLevel(biomass float64) uint8 {
	var level uint8
	for _, bound := range levelBounds {
		if biomass < bound {
			break
		}
		level++
	}
	return level
}

func (w *World) rebuildDisplay() {
	for _, s := range w.grid.Stats() {
		w.display.Set(s.Col, s.Row, DisplayCode(s))
	}
}

func buildPalette() []color.RGBA {
	out := make([]color.RGBA, 32)
	for i := range out {
		kind := i & displayKindMask
		level := (i & displayLevelMask) >> displayLevelShift
		out[i] = toRGBA(paletteColorFor(kind, level))
	}
	return out
}

func paletteColorFor(kind, level int) color.NRGBA {
	water := color.NRGBA{R: 40, G: 90, B: 170, A: 255}
	soil := color.NRGBA{R: 70, G: 52, B: 32, A: 255}
	weight := 0.4 + 0.2*float64(level)

	switch kind {
	case displayWater:
		return water
	case displayPlant:
		return blendColors(soil, color.NRGBA{R: 70, G: 170, B: 80, A: 255}, weight)
	case displayHerbivore:
		return blendColors(soil, color.NRGBA{R: 230, G: 200, B: 90, A: 255}, weight)
	case displayPredator:
		return blendColors(soil, color.NRGBA{R: 200, G: 50, B: 50, A: 255}, weight)
	default:
		return soil
	}
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func blendColors(base, overlay color.NRGBA, overlayWeight float64) color.NRGBA {
	if overlayWeight <= 0 {
		return base
	}
	if overlayWeight >= 1 {
		return overlay
	}
	inv := 1 - overlayWeight
	mix := func(b, o uint8) uint8 {
		return uint8(float64(b)*inv + float64(o)*overlayWeight + 0.5)
	}
	return color.NRGBA{
		R: mix(base.R, overlay.R),
		G: mix(base.G, overlay.G),
		B: mix(base.B, overlay.B),
		A: mix(base.A, overlay.A),
	}
}
