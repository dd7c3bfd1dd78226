package world

import (
	"strconv"

	"ecogrid/internal/sims/trophic"
)

// Config selects the starting layout and the rates of a World.
type Config struct {
	Layout string
	Seed   int64

	Evolution trophic.EvolutionConfig
}

// DefaultConfig returns the reference experiment with the reference rates.
func DefaultConfig() Config {
	return Config{
		Layout:    "flat",
		Seed:      1337,
		Evolution: trophic.DefaultConfig(),
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["layout"]; ok && v != "" {
		c.Layout = v
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	c.Evolution = trophic.FromMap(cfg)
	return c
}
