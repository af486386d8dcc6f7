package tui

import (
	"math"
	"testing"
)

func TestAxisScaler_FirstUpdatePads(t *testing.T) {
	t.Parallel()

	a := NewAxisScaler()
	lo, hi := a.Update(100, 150)
	if lo != 95 || hi != 155 {
		t.Fatalf("range = [%v, %v], want [95, 155]", lo, hi)
	}
}

func TestAxisScaler_EnforcesMinSpan(t *testing.T) {
	t.Parallel()

	a := NewAxisScaler()
	a.Padding = 0
	lo, hi := a.Update(50, 52)
	if math.Abs((hi-lo)-10) > 1e-9 {
		t.Fatalf("span = %v, want 10", hi-lo)
	}
	if math.Abs((lo+hi)/2-51) > 1e-9 {
		t.Fatalf("midpoint = %v, want 51", (lo+hi)/2)
	}
}

func TestAxisScaler_GrowsImmediatelyShrinksSmoothly(t *testing.T) {
	t.Parallel()

	a := NewAxisScaler()
	a.Update(100, 110)

	_, hi := a.Update(100, 200)
	if hi != 205 {
		t.Fatalf("hi after spike = %v, want 205", hi)
	}

	_, hi = a.Update(100, 110)
	want := 205 + 0.20*(115-205)
	if math.Abs(hi-want) > 1e-9 {
		t.Fatalf("hi after drop = %v, want %v", hi, want)
	}

	for i := 0; i < 100; i++ {
		_, hi = a.Update(100, 110)
	}
	if math.Abs(hi-115) > 1e-6 {
		t.Fatalf("hi after settling = %v, want 115", hi)
	}
}
