package swarm

import (
	"errors"
	"fmt"
	"math"

	"pso-sim/internal/objective"
)

// ErrInvalidConfiguration is returned when a Config cannot produce a valid swarm.
var ErrInvalidConfiguration = errors.New("invalid swarm configuration")

// InertiaMode selects how the per-tick inertia factor is derived from InertiaWeight.
type InertiaMode int

const (
	// InertiaDecay uses max(MinInertia, InertiaWeight*InertiaDecayRate),
	// recomputed from the configured weight every tick.
	InertiaDecay InertiaMode = iota
	// InertiaConstant uses InertiaWeight unchanged.
	InertiaConstant
)

// Decayed inertia parameters.
const (
	MinInertia       = 0.4
	InertiaDecayRate = 0.99
)

func (m InertiaMode) String() string {
	switch m {
	case InertiaDecay:
		return "decay"
	case InertiaConstant:
		return "constant"
	}
	return fmt.Sprintf("InertiaMode(%d)", int(m))
}

// UpdatePolicy decides when improvements to the global best become
// visible to the rest of the swarm within a tick.
type UpdatePolicy int

const (
	// Synchronous: every particle in a tick steers toward the global best
	// as it was at the start of the tick. The new global best is committed
	// after all particles have moved.
	Synchronous UpdatePolicy = iota
	// Asynchronous: a particle that improves on the global best publishes it
	// at once, so later particles in the same tick may steer toward it.
	Asynchronous
)

func (p UpdatePolicy) String() string {
	switch p {
	case Synchronous:
		return "synchronous"
	case Asynchronous:
		return "asynchronous"
	}
	return fmt.Sprintf("UpdatePolicy(%d)", int(p))
}

// These params are the Clerc constriction values for c1 = c2 = 2.05. They
// converge reliably on smooth objectives such as the landmark distance.
const (
	ConstrictedInertia   = 0.7298437881283576
	ConstrictedCognitive = 1.496179765663133
	ConstrictedSocial    = 1.496179765663133
)

// Config is the immutable per-run configuration of a swarm.
type Config struct {
	ParticleCount int

	// Hyperparameters of the velocity update.
	InertiaWeight   float64
	InertiaMode     InertiaMode
	CognitiveWeight float64
	SocialWeight    float64

	// Per-axis bounds: velocity components stay in [-MaxVelocity, MaxVelocity],
	// position components in [-MaxPosition, MaxPosition].
	MaxVelocity float64
	MaxPosition float64

	Policy UpdatePolicy

	// Number of goroutines evaluating the objective during a synchronous
	// tick. Values <= 1 evaluate serially. Ignored by Asynchronous.
	Parallelism int

	// Seed for the swarm's random source. Equal seeds and configs give equal trajectories.
	Seed int64

	Objective objective.Objective
}

// DefaultConfig returns the classic demo settings: 30 particles, decaying
// inertia from 0.5, cognitive and social weights of 2, max velocity 2 and
// a [-100, 100] square.
func DefaultConfig(obj objective.Objective) Config {
	return Config{
		ParticleCount:   30,
		InertiaWeight:   0.5,
		InertiaMode:     InertiaDecay,
		CognitiveWeight: 2,
		SocialWeight:    2,
		MaxVelocity:     2,
		MaxPosition:     100,
		Policy:          Synchronous,
		Objective:       obj,
	}
}

// Validate checks the configuration, including the objective when it
// implements objective.Validator.
func (c Config) Validate() error {
	if c.ParticleCount < 1 {
		return fmt.Errorf("%w: particle count must be at least 1, got %d", ErrInvalidConfiguration, c.ParticleCount)
	}

	weights := []struct {
		name  string
		value float64
	}{
		{"inertia weight", c.InertiaWeight},
		{"cognitive weight", c.CognitiveWeight},
		{"social weight", c.SocialWeight},
	}
	for _, w := range weights {
		if !isFinite(w.value) || w.value < 0 {
			return fmt.Errorf("%w: %s must be finite and non-negative, got %v", ErrInvalidConfiguration, w.name, w.value)
		}
	}

	bounds := []struct {
		name  string
		value float64
	}{
		{"max velocity", c.MaxVelocity},
		{"max position", c.MaxPosition},
	}
	for _, b := range bounds {
		if !isFinite(b.value) || b.value <= 0 {
			return fmt.Errorf("%w: %s must be finite and positive, got %v", ErrInvalidConfiguration, b.name, b.value)
		}
	}

	// Largest intermediate of the velocity update: the gap between two
	// positions scaled by both pulls, plus the carried and applied velocity.
	reach := 2*c.MaxPosition*(1+c.CognitiveWeight+c.SocialWeight) + c.MaxVelocity*(1+c.InertiaWeight) + c.MaxPosition
	if !isFinite(reach) {
		return fmt.Errorf("%w: max position %v and max velocity %v overflow the velocity update", ErrInvalidConfiguration, c.MaxPosition, c.MaxVelocity)
	}

	if c.InertiaMode != InertiaDecay && c.InertiaMode != InertiaConstant {
		return fmt.Errorf("%w: unknown inertia mode %v", ErrInvalidConfiguration, c.InertiaMode)
	}
	if c.Policy != Synchronous && c.Policy != Asynchronous {
		return fmt.Errorf("%w: unknown update policy %v", ErrInvalidConfiguration, c.Policy)
	}

	if c.Objective == nil {
		return fmt.Errorf("%w: objective is required", ErrInvalidConfiguration)
	}
	if v, ok := c.Objective.(objective.Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("objective: %w", err)
		}
	}
	return nil
}

// InertiaFactor is the factor applied to the previous velocity on every tick.
func (c Config) InertiaFactor() float64 {
	if c.InertiaMode == InertiaConstant {
		return c.InertiaWeight
	}
	return math.Max(MinInertia, c.InertiaWeight*InertiaDecayRate)
}

func (c Config) String() string {
	return fmt.Sprintf("particles=%d inertia=%.3f(%s) cognitive=%.3f social=%.3f vmax=%.3f pmax=%.3f policy=%s seed=%d",
		c.ParticleCount, c.InertiaWeight, c.InertiaMode, c.CognitiveWeight, c.SocialWeight,
		c.MaxVelocity, c.MaxPosition, c.Policy, c.Seed)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
