package world

import (
	"strconv"

	"ecogrid/internal/core"
	"ecogrid/internal/sims/trophic"
)

// Parameters describes the layout and rates of the running world.
func (w *World) Parameters() core.ParameterSnapshot {
	evo := w.grid.Config()
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				{Key: "layout", Label: "Layout", Type: core.ParamTypeString, Value: w.cfg.Layout},
				int64Param("seed", "Seed", w.seed),
				int64Param("units_issued", "Units issued", int64(w.UnitsIssued())),
			},
		},
		{
			Name: "Rates",
			Params: []core.Parameter{
				floatParam("plant_growth_rate", "Plant growth", evo.PlantGrowthRate),
				floatParam("herbivore_eating_rate", "Herbivore eating", evo.HerbivoreEatingRate),
				floatParam("herbivore_death_rate", "Herbivore death", evo.HerbivoreDeathRate),
				floatParam("predator_eating_rate", "Predator eating", evo.PredatorEatingRate),
				floatParam("predator_death_rate", "Predator death", evo.PredatorDeathRate),
			},
		},
		{
			Name:    "Integration",
			Summary: "fixed constants",
			Params: []core.Parameter{
				floatParam("tick_rate", "Tick rate", trophic.TickRate),
				floatParam("extinction_threshold", "Extinction threshold", trophic.ExtinctionThreshold),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
