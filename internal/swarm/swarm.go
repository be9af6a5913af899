// Package swarm implements a 2-D particle swarm optimizer.
//
// A Swarm is driven from outside: the caller invokes Step once per tick and
// reads Particles and GlobalBest between ticks. The swarm never suspends,
// schedules, or stops itself; iteration caps belong to the driver.
package swarm

import (
	"errors"
	"fmt"
	"math/rand"

	"pso-sim/internal/common"
	"pso-sim/internal/objective"
)

// ErrNotInitialized is returned by Step on a zero-value Swarm.
var ErrNotInitialized = errors.New("swarm is not initialized")

// Best is a position together with its objective score.
type Best struct {
	Position common.Vector
	Score    float64
}

func (b Best) String() string {
	return fmt.Sprintf("%s (%.6f)", b.Position, b.Score)
}

// Swarm owns a population of particles and the best position any of them has found.
type Swarm struct {
	cfg       Config
	rng       *rand.Rand
	particles []Particle
	saved     []Particle // particles before the tick in progress

	globalBest Best
	iteration  int
	running    bool
}

// New validates cfg and builds a swarm with randomly placed particles.
func New(cfg Config) (*Swarm, error) {
	s := &Swarm{}
	if err := s.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Reconfigure discards every particle and the global best and rebuilds the
// swarm from cfg, reseeding the random source from cfg.Seed. On error the
// swarm is left untouched.
func (s *Swarm) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	s.rng = rand.New(rand.NewSource(cfg.Seed))
	s.populate()
	return nil
}

// Reset rebuilds the particles from the current configuration. The random
// source is not reseeded, so successive resets produce fresh placements
// while a run as a whole stays reproducible from its seed. The objective is
// validated again because it may have been edited since the last reset.
func (s *Swarm) Reset() error {
	if !s.running {
		return ErrNotInitialized
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	s.populate()
	return nil
}

func (s *Swarm) populate() {
	s.particles = make([]Particle, s.cfg.ParticleCount)
	for i := range s.particles {
		s.particles[i] = newParticle(s.rng, s.cfg)
	}

	s.globalBest = Best{Position: s.particles[0].BestPosition, Score: s.particles[0].BestScore}
	s.commitGlobalBest()
	s.iteration = 0
	s.running = true
}

// Step advances the swarm by one tick. The objective is validated first, so
// a landmark set emptied since the last reset fails with
// objective.ErrEmptyLandmarkSet before any particle moves. If the tick fails
// the particles and the global best are restored to their state before the
// tick; the random draws it consumed are not.
func (s *Swarm) Step() error {
	if !s.running {
		return ErrNotInitialized
	}
	if v, ok := s.cfg.Objective.(objective.Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("step %d: objective: %w", s.iteration+1, err)
		}
	}

	s.saved = append(s.saved[:0], s.particles...)
	savedBest := s.globalBest

	inertia := s.cfg.InertiaFactor()
	var err error
	switch s.cfg.Policy {
	case Asynchronous:
		err = s.stepAsynchronous(inertia)
	default:
		err = s.stepSynchronous(inertia)
	}
	if err != nil {
		copy(s.particles, s.saved)
		s.globalBest = savedBest
		return fmt.Errorf("step %d: %w", s.iteration+1, err)
	}

	s.iteration++
	return nil
}

// stepSynchronous moves every particle toward the global best as of the
// start of the tick, scores the new positions, then commits.
func (s *Swarm) stepSynchronous(inertia float64) error {
	target := s.globalBest.Position
	for i := range s.particles {
		r1, r2 := s.rng.Float64(), s.rng.Float64()
		s.particles[i].Move(target, inertia, r1, r2, s.cfg)
	}

	scores, err := evaluate(s.cfg.Objective, s.particles, s.cfg.Parallelism)
	if err != nil {
		return err
	}
	for i := range s.particles {
		s.particles[i].Observe(scores[i])
	}
	s.commitGlobalBest()
	return nil
}

// stepAsynchronous publishes each improvement before the next particle moves.
func (s *Swarm) stepAsynchronous(inertia float64) error {
	for i := range s.particles {
		p := &s.particles[i]
		improved, err := p.Update(s.globalBest.Position, inertia, s.cfg, s.rng)
		if err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
		if improved && p.BestScore < s.globalBest.Score {
			s.globalBest = Best{Position: p.BestPosition, Score: p.BestScore}
		}
	}
	return nil
}

// commitGlobalBest adopts the lowest personal best if it beats the current global best.
func (s *Swarm) commitGlobalBest() {
	for _, p := range s.particles {
		if p.BestScore < s.globalBest.Score {
			s.globalBest = Best{Position: p.BestPosition, Score: p.BestScore}
		}
	}
}

// Particles returns a copy of the particles in their fixed order.
func (s *Swarm) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// Len returns the number of particles.
func (s *Swarm) Len() int {
	return len(s.particles)
}

// GlobalBest returns the best position found since the last reset.
func (s *Swarm) GlobalBest() Best {
	return s.globalBest
}

// Iteration returns the number of completed ticks since the last reset.
func (s *Swarm) Iteration() int {
	return s.iteration
}

// Config returns the configuration the swarm was built from.
func (s *Swarm) Config() Config {
	return s.cfg
}

// InertiaFactor returns the factor applied to velocities on the next tick.
func (s *Swarm) InertiaFactor() float64 {
	return s.cfg.InertiaFactor()
}

// Running reports whether the swarm has been initialized.
func (s *Swarm) Running() bool {
	return s.running
}

func (s *Swarm) String() string {
	return fmt.Sprintf("Swarm[%d particles, iteration %d] GlobalBest: %s", len(s.particles), s.iteration, s.globalBest)
}
