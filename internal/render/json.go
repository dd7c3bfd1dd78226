package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"ecogrid/internal/sims/trophic"
)

// EncodeSnapshotJSON encodes a snapshot to JSON.
func EncodeSnapshotJSON(s trophic.Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot produced by EncodeSnapshotJSON.
func DecodeSnapshotJSON(data []byte) (trophic.Snapshot, error) {
	var s trophic.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return trophic.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}

var (
	herbivoreKind = []byte(`"kind":"HerbivoreAnimal"`)
	legacyKind    = []byte(`"kind":"VegeterianAnimal"`)
)

// EvolutionWriter streams a JSON array with one 10x10 cell grid per
// generation.
type EvolutionWriter struct {
	w       io.Writer
	legacy  bool
	written int
	closed  bool
}

// NewEvolutionWriter wraps w. Close must be called to terminate the array.
func NewEvolutionWriter(w io.Writer) *EvolutionWriter {
	return &EvolutionWriter{w: w}
}

// NewLegacyEvolutionWriter is NewEvolutionWriter but names herbivores
// "VegeterianAnimal", the kind the plotting script matches on.
func NewLegacyEvolutionWriter(w io.Writer) *EvolutionWriter {
	return &EvolutionWriter{w: w, legacy: true}
}

// Write appends one generation.
func (e *EvolutionWriter) Write(l *trophic.Layout) error {
	if e.closed {
		return fmt.Errorf("evolution writer is closed")
	}
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode generation: %w", err)
	}
	if e.legacy {
		data = bytes.ReplaceAll(data, herbivoreKind, legacyKind)
	}
	sep := ","
	if e.written == 0 {
		sep = "["
	}
	if _, err := io.WriteString(e.w, sep); err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	e.written++
	return nil
}

// Written reports how many generations have been written.
func (e *EvolutionWriter) Written() int { return e.written }

// Close terminates the array. An empty evolution is written as [].
func (e *EvolutionWriter) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	tail := "]\n"
	if e.written == 0 {
		tail = "[]\n"
	}
	_, err := io.WriteString(e.w, tail)
	return err
}
