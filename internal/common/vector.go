package common

import (
	"fmt"
	"math"
	"math/rand"
)

// Vector represents a point or a velocity in the 2-D search space.
type Vector struct {
	X, Y float64
}

// NewVector creates a new vector from its coordinates.
func NewVector(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// NewRandomVector creates a vector with each coordinate drawn uniformly from [-bound, bound).
func NewRandomVector(rng *rand.Rand, bound float64) Vector {
	return Vector{
		X: (rng.Float64()*2 - 1) * bound,
		Y: (rng.Float64()*2 - 1) * bound,
	}
}

// Add adds another vector to this vector.
func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

// Subtract subtracts another vector from this vector.
func (v Vector) Subtract(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

// MultiplyByScalar multiplies the vector by a scalar value.
func (v Vector) MultiplyByScalar(scalar float64) Vector {
	return Vector{X: v.X * scalar, Y: v.Y * scalar}
}

// Distance calculates the Euclidean distance between two vectors.
func (v Vector) Distance(other Vector) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// NormSq calculates the squared Euclidean norm of the vector.
func (v Vector) NormSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Clamp limits each coordinate independently to [-limit, limit].
func (v Vector) Clamp(limit float64) Vector {
	return Vector{X: clamp(v.X, limit), Y: clamp(v.Y, limit)}
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func (v Vector) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// Slice returns the coordinates as a two element slice, the form gonum expects.
func (v Vector) Slice() []float64 {
	return []float64{v.X, v.Y}
}

// FromSlice builds a vector from the first two elements of xs.
func FromSlice(xs []float64) (Vector, error) {
	if len(xs) != 2 {
		return Vector{}, fmt.Errorf("vector needs 2 coordinates, got %d", len(xs))
	}
	return Vector{X: xs[0], Y: xs[1]}, nil
}

// String returns a string representation of the vector.
func (v Vector) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", v.X, v.Y)
}

func clamp(x, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, x))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
