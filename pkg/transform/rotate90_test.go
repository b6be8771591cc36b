package transform

import (
	"testing"

	"voximg/pkg/random"
	"voximg/pkg/volume"
)

// TestRotate90Once verifies a single quarter turn in the spatial
// plane of a channel-first image.
func TestRotate90Once(t *testing.T) {
	v, _ := volume.FromValues([]float64{1, 2, 3, 4}, []int{1, 2, 2})
	out, err := NewRotate90(1, [2]int{1, 2}).Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 4, 1, 3}
	for i, x := range out.Data() {
		if x != want[i] {
			t.Fatalf("got %v, want %v", out.Data(), want)
		}
	}
}

// TestRandRotate90NeverFires verifies that probability zero leaves
// the image untouched while still recording a drawn count.
func TestRandRotate90NeverFires(t *testing.T) {
	v, _ := volume.FromValues([]float64{1, 2, 3, 4}, []int{1, 2, 2})
	r, err := NewRandRotate90(0, 3, [2]int{1, 2}, random.NewSource(5))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		out, err := r.Apply(v)
		if err != nil {
			t.Fatal(err)
		}
		if r.Applied() {
			t.Fatalf("call %d applied a rotation at probability zero", i)
		}
		if out != v {
			t.Fatalf("call %d did not return the input unchanged", i)
		}
		if k := r.LastK(); k < 1 || k > 3 {
			t.Fatalf("call %d drew count %d outside 1..3", i, k)
		}
	}
}

// TestRandRotate90AlwaysFires verifies that probability one rotates
// on every call with the recorded count.
func TestRandRotate90AlwaysFires(t *testing.T) {
	data := make([]float64, 9)
	for i := range data {
		data[i] = float64(i)
	}
	v, _ := volume.FromValues(data, []int{1, 3, 3})
	r, err := NewRandRotate90(1, 3, [2]int{1, 2}, random.NewSource(13))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		out, err := r.Apply(v)
		if err != nil {
			t.Fatal(err)
		}
		if !r.Applied() {
			t.Fatalf("call %d skipped at probability one", i)
		}
		want, err := v.Rot90(r.LastK(), 1, 2)
		if err != nil {
			t.Fatal(err)
		}
		if !out.Equal(want) {
			t.Fatalf("call %d: output does not match %d quarter turns", i, r.LastK())
		}
	}
}

// TestRandRotate90DrawOrder verifies that the count draw precedes the
// decision draw by checking against a raw source consuming the same
// sequence.
func TestRandRotate90DrawOrder(t *testing.T) {
	v, _ := volume.New([]int{1, 2, 2}, volume.Float64)
	r, err := NewRandRotate90(0.5, 3, [2]int{1, 2}, random.NewSource(21))
	if err != nil {
		t.Fatal(err)
	}
	ref := random.NewSource(21)
	for i := 0; i < 30; i++ {
		if _, err := r.Apply(v); err != nil {
			t.Fatal(err)
		}
		wantK := ref.Intn(3) + 1
		wantApplied := ref.Float64() < 0.5
		if r.LastK() != wantK || r.Applied() != wantApplied {
			t.Fatalf("call %d: drew (%d, %v), want (%d, %v)",
				i, r.LastK(), r.Applied(), wantK, wantApplied)
		}
	}
}

// TestRandRotate90RejectsBadConfig verifies constructor validation
// and the probability clamp.
func TestRandRotate90RejectsBadConfig(t *testing.T) {
	if _, err := NewRandRotate90(0.5, 0, [2]int{1, 2}, random.NewSource(1)); err == nil {
		t.Error("expected error for max count below 1")
	}
	if _, err := NewRandRotate90(0.5, 3, [2]int{1, 2}, nil); err == nil {
		t.Error("expected error for nil source")
	}
	r, err := NewRandRotate90(7, 1, [2]int{1, 2}, random.NewSource(1))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := volume.New([]int{1, 2, 2}, volume.Float64)
	if _, err := r.Apply(v); err != nil {
		t.Fatal(err)
	}
	if !r.Applied() {
		t.Error("probability above one should clamp to always firing")
	}
}
