package transform

import (
	"strings"
	"testing"

	"voximg/pkg/volume"
)

// TestPipelineOrder verifies that stages run in insertion order by
// composing two shape-changing transforms.
func TestPipelineOrder(t *testing.T) {
	v, _ := volume.New([]int{4, 5, 3}, volume.Float64)
	p := NewPipeline().
		Add("channel_first", NewAsChannelFirst(-1)).
		Add("transpose", NewTranspose([]int{0, 2, 1}))
	if p.Len() != 2 {
		t.Fatalf("expected 2 stages, got %d", p.Len())
	}
	out, err := p.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Shape()
	want := []int{3, 5, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got shape %v, want %v", got, want)
		}
	}
}

// TestPipelineErrorNamesStage verifies that a failing stage is
// reported with its position and name.
func TestPipelineErrorNamesStage(t *testing.T) {
	crop, err := NewSpatialCropRange([]int{0, 0}, []int{100, 100})
	if err != nil {
		t.Fatal(err)
	}
	p := NewPipeline().
		Add("add_channel", NewAddChannel()).
		Add("crop", crop)
	v, _ := volume.New([]int{4, 4}, volume.Float64)
	_, err = p.Apply(v)
	if err == nil {
		t.Fatal("expected the oversized crop to fail")
	}
	if !strings.Contains(err.Error(), "stage 1 (crop)") {
		t.Errorf("error %q does not name the failing stage", err)
	}
}

// TestPipelineEmpty verifies that an empty pipeline passes the image
// through.
func TestPipelineEmpty(t *testing.T) {
	v, _ := volume.FromValues([]float64{1, 2}, []int{2})
	out, err := NewPipeline().Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	if out != v {
		t.Error("empty pipeline should return the input")
	}
}
