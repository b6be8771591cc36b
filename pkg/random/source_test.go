package random

import "testing"

// TestSeedDeterminism verifies that two sources with the same seed
// replay the same draw sequence.
func TestSeedDeterminism(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("float draw %d diverged between equal seeds", i)
		}
		if a.Intn(10) != b.Intn(10) {
			t.Fatalf("int draw %d diverged between equal seeds", i)
		}
	}
}

// TestUniformRange verifies that bounded draws stay inside their
// interval.
func TestUniformRange(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 1000; i++ {
		x := s.Uniform(-2, 5)
		if x < -2 || x >= 5 {
			t.Fatalf("draw %g outside [-2, 5)", x)
		}
	}
}

// TestNormalZeroSigma verifies the degenerate distribution returns the
// mean exactly.
func TestNormalZeroSigma(t *testing.T) {
	s := NewSource(3)
	for _, x := range s.Normal(1.5, 0, 8) {
		if x != 1.5 {
			t.Fatalf("expected mean for zero sigma, got %g", x)
		}
	}
}

// TestNormalLength verifies the requested sample count.
func TestNormalLength(t *testing.T) {
	s := NewSource(7)
	if got := len(s.Normal(0, 1, 17)); got != 17 {
		t.Errorf("expected 17 samples, got %d", got)
	}
}
