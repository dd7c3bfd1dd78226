//go:build ebiten

package app

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"ecogrid/internal/core"
	"ecogrid/internal/render"
	"ecogrid/internal/sims/trophic"
	"ecogrid/internal/sims/world"
	"ecogrid/internal/ui"
)

// HUDWidth is the width of the panel drawn right of the grid.
const HUDWidth = 260

// Game adapts a world to the ebiten.Game interface.
type Game struct {
	world   *world.World
	painter *render.GridPainter
	hud     *ui.HUD
	pace    *core.FixedStep

	scale    int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game that advances w at tps generations per second.
func New(w *world.World, scale, tps int) *Game {
	size := w.Size()
	return &Game{
		world:   w,
		painter: render.NewGridPainter(size.W, size.H),
		hud:     ui.NewHUD(w, HUDWidth),
		pace:    core.NewFixedStep(tps),
		scale:   scale,
		seed:    w.Seed(),
	}
}

// Reset rebuilds the starting layout with the provided seed.
func (g *Game) Reset(seed int64) {
	g.world.Reset(seed)
	g.seed = g.world.Seed()
	g.pace.Reset()
	g.tickOnce = false
}

// Update handles per-frame logic and advances the world when the pacer
// allows it.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	switch {
	case g.tickOnce:
		g.world.Step()
		g.tickOnce = false
	case !g.paused && g.pace.ShouldStep():
		g.world.Step()
	}

	g.hud.Update(g.paused)
	return nil
}

// Draw renders the grid and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.world.Cells(), g.world.Palette(), g.scale)
	g.hud.Draw(screen, trophic.Size*g.scale, trophic.Size*g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.world.Size()
	return s.W*g.scale + HUDWidth, s.H * g.scale
}
