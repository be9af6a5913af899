package objective

import (
	"math"

	"pso-sim/internal/common"
)

// Rastrigin is the 2-D Rastrigin function:
//
//	f(x, y) = 20 + (x² - 10cos(2πx)) + (y² - 10cos(2πy))
//
// Global minimum 0 at the origin, with a local minimum near every integer
// lattice point.
type Rastrigin struct{}

// Evaluate returns the Rastrigin value at pos.
func (Rastrigin) Evaluate(pos common.Vector) float64 {
	return 10*2 + rastriginTerm(pos.X) + rastriginTerm(pos.Y)
}

func (Rastrigin) String() string {
	return "rastrigin"
}

func rastriginTerm(p float64) float64 {
	return p*p - 10*math.Cos(2*math.Pi*p)
}
