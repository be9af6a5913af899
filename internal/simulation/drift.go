package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"pso-sim/internal/common"
	"pso-sim/internal/objective"
)

// LandmarkDrift moves landmarks on a bounded random walk between ticks,
// so a run can be watched tracking a moving optimum.
type LandmarkDrift struct {
	landmarks *objective.Landmarks
	bound     float64
	rng       *rand.Rand

	// How much a landmark's velocity can change per second.
	Acceleration float64
	// Maximum landmark speed in units per second.
	MaxSpeed float64

	velocities map[string]common.Vector // by landmark id
}

// NewLandmarkDrift creates a drift that keeps landmarks inside [-bound, bound] on both axes.
func NewLandmarkDrift(landmarks *objective.Landmarks, bound float64, seed int64) (*LandmarkDrift, error) {
	if landmarks == nil {
		return nil, fmt.Errorf("drift needs a landmark set")
	}
	if bound <= 0 || math.IsInf(bound, 0) || math.IsNaN(bound) {
		return nil, fmt.Errorf("drift bound must be finite and positive, got %v", bound)
	}
	return &LandmarkDrift{
		landmarks:    landmarks,
		bound:        bound,
		rng:          rand.New(rand.NewSource(seed)),
		Acceleration: 5.0,
		MaxSpeed:     10.0,
		velocities:   make(map[string]common.Vector),
	}, nil
}

// Update advances every landmark by deltaTime seconds.
func (d *LandmarkDrift) Update(deltaTime float64) error {
	for _, lm := range d.landmarks.All() {
		vel := d.velocities[lm.ID]

		// Adjust velocity slightly randomly
		vel = vel.Add(common.NewVector(
			(d.rng.Float64()*2-1)*d.Acceleration*deltaTime,
			(d.rng.Float64()*2-1)*d.Acceleration*deltaTime,
		))
		if speedSq := vel.NormSq(); speedSq > d.MaxSpeed*d.MaxSpeed {
			vel = vel.MultiplyByScalar(d.MaxSpeed / math.Sqrt(speedSq))
		}

		pos := lm.Position.Add(vel.MultiplyByScalar(deltaTime))
		pos.X, vel.X = bounce(pos.X, vel.X, d.bound)
		pos.Y, vel.Y = bounce(pos.Y, vel.Y, d.bound)

		if err := d.landmarks.Move(lm.ID, pos); err != nil {
			return fmt.Errorf("drift: %w", err)
		}
		d.velocities[lm.ID] = vel
	}
	return nil
}

// bounce reflects x back inside [-bound, bound], reversing and damping v.
func bounce(x, v, bound float64) (float64, float64) {
	switch {
	case x < -bound:
		x, v = -bound+(-bound-x), v*-0.8
	case x > bound:
		x, v = bound-(x-bound), v*-0.8
	}
	return math.Max(-bound, math.Min(bound, x)), v
}
