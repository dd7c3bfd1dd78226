package core

// ByteGrid stores one byte-sized display code per grid location in
// row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so renderers can read values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for column x and row y.
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// At returns the code stored at column x and row y.
func (g *ByteGrid) At(x, y int) uint8 { return g.data[g.Index(x, y)] }

// Set stores a code at column x and row y.
func (g *ByteGrid) Set(x, y int, v uint8) { g.data[g.Index(x, y)] = v }

// Fill overwrites every location with v.
func (g *ByteGrid) Fill(v uint8) {
	for i := range g.data {
		g.data[i] = v
	}
}
