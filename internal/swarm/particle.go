package swarm

import (
	"fmt"
	"math/rand"

	"pso-sim/internal/common"
)

// Particle is one candidate solution.
type Particle struct {
	// Current state
	Position common.Vector
	Velocity common.Vector
	Score    float64 // objective at Position as of the last evaluation

	// Best state this particle has seen
	BestPosition common.Vector
	BestScore    float64
}

// newParticle places a particle uniformly in the configured square with a
// uniform velocity, and scores its starting position as its first best.
// Draw order is x, y, vx, vy.
func newParticle(rng *rand.Rand, cfg Config) Particle {
	pos := common.NewRandomVector(rng, cfg.MaxPosition)
	vel := common.NewRandomVector(rng, cfg.MaxVelocity)
	score := cfg.Objective.Evaluate(pos)
	return Particle{
		Position:     pos,
		Velocity:     vel,
		Score:        score,
		BestPosition: pos,
		BestScore:    score,
	}
}

// Move applies the velocity and position update. r1 scales the pull toward
// the particle's own best and r2 the pull toward globalBest; both are
// shared by the two axes. Velocity and position are clamped per axis.
func (p *Particle) Move(globalBest common.Vector, inertia, r1, r2 float64, cfg Config) {
	toPersonal := p.BestPosition.Subtract(p.Position).MultiplyByScalar(cfg.CognitiveWeight * r1)
	toGlobal := globalBest.Subtract(p.Position).MultiplyByScalar(cfg.SocialWeight * r2)

	p.Velocity = p.Velocity.MultiplyByScalar(inertia).
		Add(toPersonal).
		Add(toGlobal).
		Clamp(cfg.MaxVelocity)
	p.Position = p.Position.Add(p.Velocity).Clamp(cfg.MaxPosition)
}

// Observe records the score of the current position and promotes it to the
// personal best if it is strictly better. Reports whether the best changed.
func (p *Particle) Observe(score float64) bool {
	p.Score = score
	if score < p.BestScore {
		p.BestScore = score
		p.BestPosition = p.Position
		return true
	}
	return false
}

// Update runs one full tick for a single particle: draw r1 then r2 from
// rng, move, evaluate the new position and update the personal best. A
// panicking objective is returned as an error and leaves the particle moved
// but unscored.
func (p *Particle) Update(globalBest common.Vector, inertia float64, cfg Config, rng *rand.Rand) (bool, error) {
	r1, r2 := rng.Float64(), rng.Float64()
	p.Move(globalBest, inertia, r1, r2, cfg)
	score, err := evaluateOne(cfg.Objective, p.Position)
	if err != nil {
		return false, err
	}
	return p.Observe(score), nil
}

// String representation for logging
func (p Particle) String() string {
	return fmt.Sprintf("Particle Pos: %s Vel: %s Score: %.4f Best: %s (%.4f)",
		p.Position, p.Velocity, p.Score, p.BestPosition, p.BestScore)
}
