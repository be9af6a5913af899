package swarm

import (
	"fmt"

	"pso-sim/internal/common"
	"pso-sim/internal/objective"

	"golang.org/x/sync/errgroup"
)

// evaluate scores the current position of every particle. With
// parallelism > 1 the particles are split into contiguous chunks scored on
// separate goroutines; each goroutine writes only its own slots of the
// result, so the outcome does not depend on scheduling.
func evaluate(obj objective.Objective, particles []Particle, parallelism int) ([]float64, error) {
	scores := make([]float64, len(particles))

	if parallelism <= 1 || len(particles) < 2 {
		return scores, evaluateRange(obj, particles, scores, 0, len(particles))
	}

	if parallelism > len(particles) {
		parallelism = len(particles)
	}
	chunk := (len(particles) + parallelism - 1) / parallelism

	var g errgroup.Group
	g.SetLimit(parallelism)
	for lo := 0; lo < len(particles); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(particles))
		g.Go(func() error {
			return evaluateRange(obj, particles, scores, lo, hi)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// evaluateRange scores particles[lo:hi] into scores[lo:hi]. A panicking
// objective is reported as an error instead of taking down the process.
func evaluateRange(obj objective.Objective, particles []Particle, scores []float64, lo, hi int) (err error) {
	i := lo
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("objective panicked at particle %d %s: %v", i, particles[i].Position, r)
		}
	}()
	for ; i < hi; i++ {
		scores[i] = obj.Evaluate(particles[i].Position)
	}
	return nil
}

// evaluateOne scores a single position with the same panic guard as evaluateRange.
func evaluateOne(obj objective.Objective, pos common.Vector) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("objective panicked at %s: %v", pos, r)
		}
	}()
	return obj.Evaluate(pos), nil
}
