// Package objective holds the fitness functions a swarm minimizes.
//
// Every objective is pure as far as the swarm is concerned: it maps a 2-D
// position to a score, lower is better, and never fails for a finite input.
package objective

import "pso-sim/internal/common"

// Objective scores a candidate position. Lower values are better.
type Objective interface {
	Evaluate(pos common.Vector) float64
}

// Validator is implemented by objectives that can be misconfigured.
// The swarm calls Validate before building particles.
type Validator interface {
	Validate() error
}

// Func adapts a plain function to the Objective interface.
type Func func(pos common.Vector) float64

// Evaluate calls f(pos).
func (f Func) Evaluate(pos common.Vector) float64 {
	return f(pos)
}

// Sphere is the squared distance to the origin. Useful as a convex sanity check.
var Sphere = Func(func(pos common.Vector) float64 {
	return pos.NormSq()
})
