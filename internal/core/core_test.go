package core

import (
	"testing"
	"time"
)

func TestByteGridIndexing(t *testing.T) {
	g := NewByteGrid(4, 3)
	g.Set(3, 2, 7)
	if got := g.Cells()[11]; got != 7 {
		t.Fatalf("row-major index mismatch, got %d", got)
	}
	if g.At(3, 2) != 7 {
		t.Fatal("At does not read back Set")
	}
	g.Fill(2)
	for i, v := range g.Cells() {
		if v != 2 {
			t.Fatalf("cell %d = %d after Fill", i, v)
		}
	}
	if d := NewByteGrid(0, -1); d.W != 1 || d.H != 1 {
		t.Fatalf("degenerate sizes should clamp to 1, got %dx%d", d.W, d.H)
	}
}

func TestFixedStepPacing(t *testing.T) {
	now := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return now }

	if !fs.ShouldStep() {
		t.Fatal("first call should step")
	}
	now = now.Add(50 * time.Millisecond)
	if fs.ShouldStep() {
		t.Fatal("half a tick should not step")
	}
	now = now.Add(60 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("a full tick elapsed and should step")
	}

	fs.Reset()
	if !fs.ShouldStep() {
		t.Fatal("reset should allow an immediate step")
	}
	if fs.Step() != 100*time.Millisecond {
		t.Fatalf("unexpected step %v", fs.Step())
	}
}

func TestRNGDeterministic(t *testing.T) {
	a, b := NewRNG(5), NewRNG(5)
	for i := 0; i < 50; i++ {
		if a.IntRange(1, 3) != b.IntRange(1, 3) {
			t.Fatal("same seed produced different draws")
		}
	}
	r := NewRNG(1)
	for i := 0; i < 100; i++ {
		v := r.IntRange(1, 3)
		if v < 1 || v >= 3 {
			t.Fatalf("IntRange out of bounds: %d", v)
		}
	}
	if r.IntRange(4, 4) != 4 {
		t.Fatal("empty range should return lo")
	}
}

func TestParameterLookup(t *testing.T) {
	snap := ParameterSnapshot{Groups: []ParameterGroup{{
		Name:   "Rates",
		Params: []Parameter{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
	}}}
	p, ok := snap.Lookup("b")
	if !ok || p.Value != "2" {
		t.Fatalf("lookup failed: %+v %v", p, ok)
	}
	if _, ok := snap.Lookup("zzz"); ok {
		t.Fatal("unexpected hit for missing key")
	}
}
