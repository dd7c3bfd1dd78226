package trophic

import (
	"math"
	"testing"
)

func plant(id uint32, q float64) Unit     { return Unit{Kind: Plant, ID: id, Quantity: q} }
func herbivore(id uint32, q float64) Unit { return Unit{Kind: HerbivoreAnimal, ID: id, Quantity: q} }
func predator(id uint32, q float64) Unit  { return Unit{Kind: PredatorAnimal, ID: id, Quantity: q} }

func TestHuntWaterIsNoop(t *testing.T) {
	c := Water()
	hunt(&c, HerbivoreAnimal, Plant, huntRates{hunterDeath: 1, resourceGrowth: 100, consumingRate: 1})
	if !c.IsWater() || c.Len() != 0 {
		t.Fatalf("water cell changed: %+v", c)
	}
}

func TestHuntWithoutMatchingUnitsIsNoop(t *testing.T) {
	c := Ground(predator(1, 40))
	hunt(&c, HerbivoreAnimal, Plant, huntRates{hunterDeath: 3, resourceGrowth: 100, consumingRate: 1})
	if got := c.Units()[0].Quantity; got != 40 {
		t.Fatalf("predator quantity changed to %v", got)
	}
}

func TestHuntReadsSnapshotForAllUnits(t *testing.T) {
	c := Ground(plant(1, 40), herbivore(2, 10), plant(3, 20), herbivore(4, 30))
	rates := huntRates{hunterDeath: 0.5, resourceGrowth: 7, consumingRate: 0.01}
	tick := float64(TickRate)

	hunt(&c, HerbivoreAnimal, Plant, rates)

	plants := []float64{40, 20}
	herbivores := []float64{10, 30}

	wantPlant := func(q float64) float64 {
		consumed := 0.0
		for _, h := range herbivores {
			consumed += float64(q * rates.consumingRate * h)
		}
		return q + float64((rates.resourceGrowth-consumed)*tick)
	}
	intake := 0.0
	for _, p := range plants {
		intake += float64(p * rates.consumingRate)
	}
	wantHerbivore := func(q float64) float64 {
		dn := q * (intake - rates.hunterDeath)
		return q + float64(dn*tick)
	}

	units := c.Units()
	wants := []float64{wantPlant(40), wantHerbivore(10), wantPlant(20), wantHerbivore(30)}
	for i, want := range wants {
		if units[i].Quantity != want {
			t.Fatalf("unit %d quantity = %v, want %v", units[i].ID, units[i].Quantity, want)
		}
	}
}

func TestHuntHunterIntakeIgnoresOwnPopulation(t *testing.T) {
	c := Ground(plant(1, 10), herbivore(2, 1), herbivore(3, 100))
	hunt(&c, HerbivoreAnimal, Plant, huntRates{hunterDeath: 0, consumingRate: 0.1})

	units := c.Units()
	small := (units[1].Quantity - 1) / 1
	large := (units[2].Quantity - 100) / 100
	if math.Abs(small-large) > 1e-12 {
		t.Fatalf("per-capita growth differs: %v vs %v", small, large)
	}
}

func TestHuntDoesNotClamp(t *testing.T) {
	c := Ground(plant(1, 1), herbivore(2, 1000))
	hunt(&c, HerbivoreAnimal, Plant, huntRates{consumingRate: 1})
	if got := c.Units()[0].Quantity; got >= 0 {
		t.Fatalf("expected overshoot below zero, got %v", got)
	}
}

func TestFinalizeThreshold(t *testing.T) {
	c := Ground(
		plant(1, 0.01),
		plant(2, 0.0100001),
		herbivore(3, -4),
		predator(4, math.NaN()),
		predator(5, 0),
		herbivore(6, 12),
	)
	finalize(&c)

	units := c.Units()
	if len(units) != 2 {
		t.Fatalf("expected 2 survivors, got %d: %+v", len(units), units)
	}
	if units[0].ID != 2 || units[1].ID != 6 {
		t.Fatalf("unexpected survivors %+v", units)
	}
}

func TestFinalizeKeepsEmptyGround(t *testing.T) {
	c := Ground(plant(1, 0.001))
	finalize(&c)
	if c.IsWater() {
		t.Fatal("emptied ground cell turned into water")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty ground, got %d units", c.Len())
	}
}
