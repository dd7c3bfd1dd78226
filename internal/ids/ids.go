// Package ids issues the unit identifiers used by a simulation run.
package ids

// Allocator hands out sequential identifiers starting at 1. An identifier is
// never returned twice, even after the unit carrying it goes extinct.
//
// Allocators are not safe for concurrent use; scenario construction is
// expected to run on a single goroutine. Independent runs should each own an
// Allocator so their id spaces do not interfere.
type Allocator struct {
	issued uint32
}

// New returns an Allocator whose first identifier is 1.
func New() *Allocator {
	return &Allocator{}
}

// Next returns a fresh identifier.
func (a *Allocator) Next() uint32 {
	a.issued++
	return a.issued
}

// Total reports how many identifiers have been issued so far.
func (a *Allocator) Total() uint32 { return a.issued }
