package trophic

// Unit is one population record inside a cell. Quantity is a continuous
// biomass figure and may be fractional.
type Unit struct {
	Kind     Kind    `json:"kind"`
	ID       uint32  `json:"id"`
	Quantity float64 `json:"quantity"`
}
