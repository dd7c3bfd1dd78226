package trophic

import "fmt"

// Kind is the trophic role of a unit.
type Kind uint8

const (
	// Plant is the producer level. It grows but never hunts.
	Plant Kind = iota
	// HerbivoreAnimal eats plants and is eaten by predators.
	HerbivoreAnimal
	// PredatorAnimal eats herbivores and has no predator of its own.
	PredatorAnimal
)

// Kinds lists every trophic role from producer to apex.
var Kinds = [...]Kind{Plant, HerbivoreAnimal, PredatorAnimal}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case Plant:
		return "Plant"
	case HerbivoreAnimal:
		return "HerbivoreAnimal"
	case PredatorAnimal:
		return "PredatorAnimal"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Plant, HerbivoreAnimal, PredatorAnimal:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown kind %d", uint8(k))
	}
}

// UnmarshalText decodes a kind name. The older "VegeterianAnimal" spelling is
// accepted for herbivores.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a kind name to its value.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "Plant":
		return Plant, nil
	case "HerbivoreAnimal", "VegeterianAnimal":
		return HerbivoreAnimal, nil
	case "PredatorAnimal":
		return PredatorAnimal, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", name)
	}
}
