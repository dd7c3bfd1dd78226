package trophic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Terrain tags a cell as uninhabitable water or inhabitable ground.
type Terrain uint8

const (
	// TerrainWater cells never hold units.
	TerrainWater Terrain = iota
	// TerrainGround cells hold zero or more units.
	TerrainGround
)

// String names the terrain.
func (t Terrain) String() string {
	switch t {
	case TerrainWater:
		return "Water"
	case TerrainGround:
		return "Ground"
	default:
		return fmt.Sprintf("Terrain(%d)", uint8(t))
	}
}

// MarshalText encodes the terrain by name.
func (t Terrain) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a terrain name.
func (t *Terrain) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Water":
		*t = TerrainWater
	case "Ground":
		*t = TerrainGround
	default:
		return fmt.Errorf("unknown terrain %q", text)
	}
	return nil
}

// Cell is a single grid location. The zero value is a water cell.
//
// A cell's terrain is fixed at construction; a ground cell whose units all die
// stays an empty ground cell.
type Cell struct {
	terrain Terrain
	units   []Unit
}

// Water returns an uninhabitable cell.
func Water() Cell { return Cell{terrain: TerrainWater} }

// Ground returns an inhabitable cell holding the given units in order.
func Ground(units ...Unit) Cell {
	if len(units) == 0 {
		return Cell{terrain: TerrainGround}
	}
	return Cell{terrain: TerrainGround, units: slices.Clone(units)}
}

// Terrain reports whether the cell is water or ground.
func (c Cell) Terrain() Terrain { return c.terrain }

// IsWater reports whether the cell is water.
func (c Cell) IsWater() bool { return c.terrain == TerrainWater }

// Units returns a copy of the cell's units. Water cells return nil.
func (c Cell) Units() []Unit {
	switch c.terrain {
	case TerrainGround:
		return slices.Clone(c.units)
	default:
		return nil
	}
}

// Len reports the number of units in the cell.
func (c Cell) Len() int { return len(c.units) }

// clone deep-copies the unit sequence so callers cannot alias grid state.
func (c Cell) clone() Cell {
	if len(c.units) == 0 {
		return Cell{terrain: c.terrain}
	}
	return Cell{terrain: c.terrain, units: slices.Clone(c.units)}
}

// MarshalJSON encodes water as "Water" and ground as {"Ground":[...]}.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.terrain {
	case TerrainWater:
		return []byte(`"Water"`), nil
	case TerrainGround:
		units := c.units
		if units == nil {
			units = []Unit{}
		}
		return json.Marshal(struct {
			Ground []Unit `json:"Ground"`
		}{Ground: units})
	default:
		return nil, fmt.Errorf("cell has unknown terrain %d", c.terrain)
	}
}

// UnmarshalJSON accepts the forms produced by MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		if tag != "Water" {
			return fmt.Errorf("unknown cell tag %q", tag)
		}
		*c = Water()
		return nil
	}

	var ground struct {
		Ground *[]Unit `json:"Ground"`
	}
	if err := json.Unmarshal(data, &ground); err != nil {
		return fmt.Errorf("decode ground cell: %w", err)
	}
	if ground.Ground == nil {
		return fmt.Errorf("cell object is missing the Ground key")
	}
	*c = Ground(*ground.Ground...)
	return nil
}
