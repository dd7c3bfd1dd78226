package trophic

// Population sums unit quantities per kind.
type Population struct {
	Plants     float64 `json:"plants"`
	Herbivores float64 `json:"herbivores"`
	Predators  float64 `json:"predators"`
}

// Add accumulates a unit's quantity under its kind.
func (p *Population) Add(u Unit) {
	switch u.Kind {
	case Plant:
		p.Plants += u.Quantity
	case HerbivoreAnimal:
		p.Herbivores += u.Quantity
	case PredatorAnimal:
		p.Predators += u.Quantity
	}
}

// Of returns the total for a single kind.
func (p Population) Of(k Kind) float64 {
	switch k {
	case Plant:
		return p.Plants
	case HerbivoreAnimal:
		return p.Herbivores
	case PredatorAnimal:
		return p.Predators
	default:
		return 0
	}
}

// Total is the combined biomass of all kinds.
func (p Population) Total() float64 { return p.Plants + p.Herbivores + p.Predators }

// CellStats summarises one cell for plotting and reporting.
type CellStats struct {
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Terrain Terrain `json:"terrain"`
	Units   int     `json:"units"`
	Population
}

// Dominant returns the kind with the largest biomass in the cell and false
// when the cell is empty.
func (s CellStats) Dominant() (Kind, bool) {
	if s.Units == 0 {
		return Plant, false
	}
	best := Plant
	for _, k := range Kinds[1:] {
		if s.Of(k) > s.Of(best) {
			best = k
		}
	}
	return best, true
}

// StatsOf summarises a single cell.
func StatsOf(row, col int, c Cell) CellStats {
	s := CellStats{Row: row, Col: col, Terrain: c.terrain, Units: len(c.units)}
	for _, u := range c.units {
		s.Add(u)
	}
	return s
}

// Stats summarises every cell in row-major order.
func (l *Layout) Stats() []CellStats {
	out := make([]CellStats, 0, Size*Size)
	for r := range l {
		for c := range l[r] {
			out = append(out, StatsOf(r, c, l[r][c]))
		}
	}
	return out
}

// Totals sums the biomass of the whole layout.
func (l *Layout) Totals() Population {
	var p Population
	for r := range l {
		for c := range l[r] {
			for _, u := range l[r][c].units {
				p.Add(u)
			}
		}
	}
	return p
}

// UnitCount counts the living units of the layout.
func (l *Layout) UnitCount() int {
	n := 0
	for r := range l {
		for c := range l[r] {
			n += len(l[r][c].units)
		}
	}
	return n
}

// Stats summarises every cell of the grid in row-major order.
func (g *Grid) Stats() []CellStats { return g.cells.Stats() }

// Totals sums the biomass of the whole grid.
func (g *Grid) Totals() Population { return g.cells.Totals() }

// UnitCount counts the units alive in the grid.
func (g *Grid) UnitCount() int { return g.cells.UnitCount() }
