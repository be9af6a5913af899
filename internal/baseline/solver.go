// Package baseline computes reference minima for swarm results using a
// deterministic local optimizer.
package baseline

import (
	"fmt"

	"pso-sim/internal/common"
	"pso-sim/internal/objective"

	"gonum.org/v1/gonum/optimize"
)

// maxEvaluations caps the objective calls of a single Solve.
const maxEvaluations = 20000

// Solution contains the reference position and its objective score.
type Solution struct {
	Position    common.Vector
	Score       float64
	Evaluations int
	Status      string // gonum termination status
}

func (s Solution) String() string {
	return fmt.Sprintf("%s (%.6f, %d evals, %s)", s.Position, s.Score, s.Evaluations, s.Status)
}

// Solve runs Nelder-Mead on obj starting from start. It finds the local
// minimum whose basin contains start, so on multimodal objectives the
// caller should start from the swarm's global best.
func Solve(obj objective.Objective, start common.Vector) (Solution, error) {
	var empty Solution
	if obj == nil {
		return empty, fmt.Errorf("cannot solve a nil objective")
	}
	if !start.IsFinite() {
		return empty, fmt.Errorf("start position %s is not finite", start)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return obj.Evaluate(common.NewVector(x[0], x[1]))
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(problem, start.Slice(), settings, &optimize.NelderMead{})
	if err != nil {
		return empty, fmt.Errorf("nelder-mead from %s failed: %w", start, err)
	}

	pos, err := common.FromSlice(result.X)
	if err != nil {
		return empty, fmt.Errorf("unexpected optimizer result: %w", err)
	}
	return Solution{
		Position:    pos,
		Score:       result.F,
		Evaluations: result.Stats.FuncEvaluations,
		Status:      result.Status.String(),
	}, nil
}

// Comparison measures how far a swarm result is from a reference solution.
type Comparison struct {
	PositionGap float64 // Euclidean distance between the two positions
	ScoreGap    float64 // found - reference; negative when the swarm did better
}

// Compare the swarm's best position and score against ref.
func Compare(found common.Vector, foundScore float64, ref Solution) Comparison {
	return Comparison{
		PositionGap: found.Distance(ref.Position),
		ScoreGap:    foundScore - ref.Score,
	}
}
