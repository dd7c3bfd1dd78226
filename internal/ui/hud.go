//go:build ebiten

package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"ecogrid/internal/core"
	"ecogrid/internal/sims/trophic"
	"ecogrid/internal/sims/world"
)

// HUD renders the population and parameter panel to the right of the grid.
type HUD struct {
	world      *world.World
	width      int
	panel      *ebiten.Image
	lastHeight int

	snapshot core.ParameterSnapshot
	totals   trophic.Population
	units    int
	paused   bool
	swatches [len(trophic.Kinds)]color.RGBA

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for w with the given panel width.
func NewHUD(w *world.World, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{world: w, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	for i, k := range trophic.Kinds {
		h.swatches[i] = world.KindColor(k)
	}
	return h
}

// Update refreshes the cached figures from the world.
func (h *HUD) Update(paused bool) {
	if h == nil {
		return
	}
	h.paused = paused
	h.snapshot = h.world.Parameters()
	h.totals = h.world.Grid().Totals()
	h.units = h.world.Grid().UnitCount()
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})

	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	status := "running"
	if h.paused {
		status = "paused"
	}
	text.Draw(h.panel, fmt.Sprintf("Generation %d (%s)", h.world.Generation(), status), face, panelPadding, y, headerColor)

	y += lineHeight
	for i, k := range trophic.Kinds {
		h.drawSwatch(panelPadding, y-swatchSize, h.swatches[i])
		label := fmt.Sprintf("%-10s %10.2f", kindLabels[i], h.totals.Of(k))
		text.Draw(h.panel, label, face, panelPadding+swatchSize+swatchGap, y, textColor)
		y += lineHeight
	}
	text.Draw(h.panel, fmt.Sprintf("Units alive %d", h.units), face, panelPadding, y, dimColor)

	for _, group := range h.snapshot.Groups {
		y += groupSpacing
		text.Draw(h.panel, group.Name, face, panelPadding, y, headerColor)
		for _, p := range group.Params {
			y += lineHeight
			text.Draw(h.panel, fmt.Sprintf("%-14s %s", p.Label, p.Value), face, panelPadding, y, textColor)
		}
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawSwatch(x, y int, c color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(swatchSize, swatchSize)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	h.panel.DrawImage(h.pixel, op)
}

var kindLabels = [len(trophic.Kinds)]string{"Plants", "Herbivores", "Predators"}

var (
	headerColor = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	textColor   = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dimColor    = color.RGBA{R: 160, G: 160, B: 170, A: 255}
)

const (
	panelPadding   = 12
	lineHeight     = 18
	groupSpacing   = 28
	headerBaseline = 18
	swatchSize     = 10
	swatchGap      = 6
)
