package trophic

// indexed remembers where a unit sat and what it held before the update.
type indexed struct {
	idx      int
	quantity float64
}

// hunt advances one hunter/target pair inside a cell by a single tick.
//
// Quantities are read from a snapshot taken before any write, so every unit of
// both kinds is updated simultaneously. Results are not clamped; units that
// fall to or below ExtinctionThreshold are removed later by finalize.
//
// Products are converted to float64 before they are accumulated so the
// compiler cannot fuse them into multiply-adds; trajectories stay
// bit-identical across architectures.
func hunt(c *Cell, hunter, target Kind, rates huntRates) {
	if c.terrain != TerrainGround {
		return
	}

	var targets, hunters []indexed
	for i, u := range c.units {
		switch u.Kind {
		case target:
			targets = append(targets, indexed{idx: i, quantity: u.Quantity})
		case hunter:
			hunters = append(hunters, indexed{idx: i, quantity: u.Quantity})
		}
	}
	if len(targets) == 0 && len(hunters) == 0 {
		return
	}

	for _, t := range targets {
		consumed := 0.0
		for _, h := range hunters {
			consumed += float64(t.quantity * rates.consumingRate * h.quantity)
		}
		dr := rates.resourceGrowth - consumed
		c.units[t.idx].Quantity += float64(dr * TickRate)
	}

	for _, h := range hunters {
		intake := 0.0
		for _, t := range targets {
			intake += float64(t.quantity * rates.consumingRate)
		}
		dn := h.quantity * (intake - rates.hunterDeath)
		c.units[h.idx].Quantity += float64(dn * TickRate)
	}
}

// finalize drops every unit at or below the extinction threshold. NaN
// quantities are dropped as well.
func finalize(c *Cell) {
	if c.terrain != TerrainGround {
		return
	}

	kept := c.units[:0]
	for _, u := range c.units {
		if u.Quantity > ExtinctionThreshold {
			kept = append(kept, u)
		}
	}
	clear(c.units[len(kept):])
	c.units = kept
}
