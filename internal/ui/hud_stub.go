//go:build !ebiten

package ui

import "ecogrid/internal/sims/world"

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(*world.World, int) *HUD { return nil }

// Update is a no-op in the headless build.
func (h *HUD) Update(bool) {}

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int, int) {}
