// Package render turns grid snapshots into text and JSON, and display codes
// into pixels.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"ecogrid/internal/sims/trophic"
)

// Glyph returns the map symbol for a cell: '-' for water, '^' for ground.
func Glyph(c trophic.Cell) string {
	switch c.Terrain() {
	case trophic.TerrainWater:
		return "-"
	default:
		return "^"
	}
}

// Map renders the terrain of a layout, one row per line, cells separated by
// spaces.
func Map(l *trophic.Layout) string {
	rows := make([]string, len(l))
	for r := range l {
		glyphs := make([]string, len(l[r]))
		for c := range l[r] {
			glyphs[c] = Glyph(l[r][c])
		}
		rows[r] = strings.Join(glyphs, " ")
	}
	return strings.Join(rows, "\n")
}

// UnitLabel formats a unit as its kind prefix, id and quantity, for example
// "herb12(48.31)".
func UnitLabel(u trophic.Unit) string {
	var prefix string
	switch u.Kind {
	case trophic.Plant:
		prefix = "*"
	case trophic.HerbivoreAnimal:
		prefix = "herb"
	case trophic.PredatorAnimal:
		prefix = "pred"
	}
	return fmt.Sprintf("%s%d(%.2f)", prefix, u.ID, u.Quantity)
}

// WriteUnits lists the units of every ground cell, one cell per line, with a
// blank line after each grid row.
func WriteUnits(w io.Writer, l *trophic.Layout) error {
	bw := bufio.NewWriter(w)
	for r := range l {
		for c := range l[r] {
			cell := l[r][c]
			if cell.IsWater() {
				continue
			}
			labels := make([]string, 0, cell.Len())
			for _, u := range cell.Units() {
				labels = append(labels, UnitLabel(u))
			}
			fmt.Fprintf(bw, "(%d,%d) [%s]\n", r, c, strings.Join(labels, " "))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// Summary is a one-line population report for a snapshot.
func Summary(s trophic.Snapshot) string {
	p := s.Cells.Totals()
	return fmt.Sprintf("generation %d: plants %.2f herbivores %.2f predators %.2f units %d",
		s.Generation, p.Plants, p.Herbivores, p.Predators, s.Cells.UnitCount())
}
