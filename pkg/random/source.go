// Package random provides the seeded random source consumed by the
// randomized transforms. A Source is created once per transform, or
// shared between several transforms by injection, and its state is
// advanced on every draw in call order. Sources are not safe for
// concurrent use; callers that share a source across goroutines must
// synchronize externally.
package random

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source wraps a seeded pseudo-random generator with the draw
// operations the transforms need: uniform floats, normal arrays and
// bounded integers. Replaying with the same seed yields the same
// sequence of outcomes as long as draws happen in the same order.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a source seeded with the given value.
func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a draw uniform over [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Uniform returns a draw uniform over [low, high).
func (s *Source) Uniform(low, high float64) float64 {
	return low + s.rng.Float64()*(high-low)
}

// Intn returns a draw uniform over the integers [0, bound). It panics
// for bound <= 0, matching the underlying generator.
func (s *Source) Intn(bound int) int {
	return s.rng.Intn(bound)
}

// Normal returns n draws from the normal distribution with the given
// mean and standard deviation. A zero sigma yields n copies of mean.
func (s *Source) Normal(mean, std float64, n int) []float64 {
	dist := distuv.Normal{Mu: mean, Sigma: std, Src: s.rng}
	out := make([]float64, n)
	if std == 0 {
		for i := range out {
			out[i] = mean
		}
		return out
	}
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}
