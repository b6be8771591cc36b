// Package transform implements the preprocessing transforms applied to
// volumetric images before they enter a learning pipeline. Each
// transform is an independent unit constructed once with immutable
// configuration and applied to any number of volumes. Randomized
// transforms additionally hold an injected random source and record
// the outcome of their latest draw for reproducibility inspection.
//
// Spatial transforms assume channel-first layout: axis 0 is the
// channel axis, the remaining axes are spatial.
package transform

import (
	"fmt"

	"voximg/pkg/volume"
)

// Transform maps an input volume to an output volume. Implementations
// never mutate the input except where their contract says they operate
// in place, and fail before copying any data when bounds or shape
// validation fails.
type Transform interface {
	Apply(img *volume.Volume) (*volume.Volume, error)
}

// Pipeline applies an ordered sequence of transforms. It stops at the
// first failing stage and reports its position and name.
type Pipeline struct {
	names  []string
	stages []Transform
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Add appends a named stage and returns the pipeline for chaining.
func (p *Pipeline) Add(name string, t Transform) *Pipeline {
	p.names = append(p.names, name)
	p.stages = append(p.stages, t)
	return p
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Names returns the stage names in order.
func (p *Pipeline) Names() []string { return append([]string(nil), p.names...) }

// Apply runs every stage in order on img.
func (p *Pipeline) Apply(img *volume.Volume) (*volume.Volume, error) {
	out := img
	for i, t := range p.stages {
		var err error
		out, err = t.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d (%s): %w", i, p.names[i], err)
		}
	}
	return out, nil
}
