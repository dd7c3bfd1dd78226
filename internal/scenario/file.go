package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ecogrid/internal/core"
	"ecogrid/internal/ids"
	"ecogrid/internal/sims/trophic"
)

// FileLayout is the on-disk form of a custom layout: ten rows of ten entries,
// each either null for water or a CellSpec for ground.
type FileLayout struct {
	Rows [][]*CellSpec `json:"rows"`
}

// Decode reads a FileLayout and returns a builder for it.
func Decode(r io.Reader) (Builder, error) {
	var fl FileLayout
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fl); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if len(fl.Rows) != trophic.Size {
		return nil, fmt.Errorf("%w: got %d rows", trophic.ErrLayoutShape, len(fl.Rows))
	}
	for i, row := range fl.Rows {
		if len(row) != trophic.Size {
			return nil, fmt.Errorf("%w: row %d has %d cells", trophic.ErrLayoutShape, i, len(row))
		}
		for j, spec := range row {
			if spec == nil {
				continue
			}
			if err := spec.Validate(); err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", i, j, err)
			}
		}
	}

	return func(alloc *ids.Allocator, _ *core.RNG) trophic.Layout {
		var l trophic.Layout
		for r, row := range fl.Rows {
			for c, spec := range row {
				if spec != nil {
					l[r][c] = Build(alloc, *spec)
				}
			}
		}
		return l
	}, nil
}

// LoadFile reads a layout file from disk.
func LoadFile(path string) (Builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Resolve returns a builder for a registered layout name or, failing that, a
// path to a layout file.
func Resolve(nameOrPath string) (Builder, error) {
	if b, err := Lookup(nameOrPath); err == nil {
		return b, nil
	}
	if _, err := os.Stat(nameOrPath); err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownLayout, nameOrPath)
	}
	return LoadFile(nameOrPath)
}
