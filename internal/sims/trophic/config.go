package trophic

import "strconv"

const (
	// TickRate is the integration step applied to every rate in one tick.
	TickRate = 0.075
	// ExtinctionThreshold is the largest quantity that is culled at the end
	// of a tick.
	ExtinctionThreshold = 0.01
)

// EvolutionConfig holds the rate constants of the consumer-resource model.
// Rates are expected to be non-negative; they are not validated.
type EvolutionConfig struct {
	PredatorDeathRate   float64 `json:"predator_death_rate"`
	PredatorEatingRate  float64 `json:"predator_eating_rate"`
	HerbivoreDeathRate  float64 `json:"herbivore_death_rate"`
	HerbivoreEatingRate float64 `json:"herbivore_eating_rate"`
	PlantGrowthRate     float64 `json:"plant_growth_rate"`
}

// DefaultConfig returns the reference rates.
func DefaultConfig() EvolutionConfig {
	return EvolutionConfig{
		PredatorDeathRate:   2.2,
		PredatorEatingRate:  0.05,
		HerbivoreDeathRate:  2.8,
		HerbivoreEatingRate: 0.075,
		PlantGrowthRate:     100,
	}
}

// FromMap overrides the defaults with flag-style key/value pairs. Values that
// fail to parse leave the default in place.
func FromMap(cfg map[string]string) EvolutionConfig {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	setFloat(cfg, "predator_death_rate", &c.PredatorDeathRate)
	setFloat(cfg, "predator_eating_rate", &c.PredatorEatingRate)
	setFloat(cfg, "herbivore_death_rate", &c.HerbivoreDeathRate)
	setFloat(cfg, "herbivore_eating_rate", &c.HerbivoreEatingRate)
	setFloat(cfg, "plant_growth_rate", &c.PlantGrowthRate)
	return c
}

func setFloat(cfg map[string]string, key string, dst *float64) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = parsed
	}
}

// huntRates bundles the three rates one trophic pair needs.
type huntRates struct {
	hunterDeath    float64
	resourceGrowth float64
	consumingRate  float64
}

func (c EvolutionConfig) herbivoreRates() huntRates {
	return huntRates{
		hunterDeath:    c.HerbivoreDeathRate,
		resourceGrowth: c.PlantGrowthRate,
		consumingRate:  c.HerbivoreEatingRate,
	}
}

func (c EvolutionConfig) predatorRates() huntRates {
	return huntRates{
		hunterDeath:    c.PredatorDeathRate,
		resourceGrowth: 0,
		consumingRate:  c.PredatorEatingRate,
	}
}
