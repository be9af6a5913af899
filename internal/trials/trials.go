// Package trials runs many independently seeded swarms and summarizes how
// often they reach a target score.
package trials

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"pso-sim/internal/swarm"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"
)

// ErrNoTrials is returned when a Spec asks for fewer than one run.
var ErrNoTrials = errors.New("at least one trial is required")

// Spec describes a batch of runs. Run i uses Config with Seed = FirstSeed + i.
type Spec struct {
	Config    swarm.Config
	Runs      int
	Ticks     int
	FirstSeed int64

	// A run succeeds when its global best score is strictly below Threshold.
	Threshold float64

	// Concurrent runs. Defaults to GOMAXPROCS.
	Workers int
}

// Result is the outcome of one seeded run.
type Result struct {
	Seed       int64
	GlobalBest swarm.Best
	Succeeded  bool
}

// Report summarizes a batch.
type Report struct {
	Results   []Result // ordered by seed
	Successes int
	MeanScore float64
	StdDev    float64
	BestScore float64
	Worst     float64
}

// SuccessRate is the fraction of runs that beat the threshold.
func (r Report) SuccessRate() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return float64(r.Successes) / float64(len(r.Results))
}

func (r Report) String() string {
	return fmt.Sprintf("%d/%d runs succeeded (%.1f%%), score mean %.4f sd %.4f best %.4f worst %.4f",
		r.Successes, len(r.Results), 100*r.SuccessRate(), r.MeanScore, r.StdDev, r.BestScore, r.Worst)
}

// Run executes every trial of spec. Each goroutine owns its swarm; the
// objective in spec.Config is shared and must be safe for concurrent reads,
// which every built-in objective is.
func Run(ctx context.Context, spec Spec) (Report, error) {
	if spec.Runs < 1 {
		return Report{}, ErrNoTrials
	}
	if spec.Ticks < 0 {
		return Report{}, fmt.Errorf("ticks must not be negative, got %d", spec.Ticks)
	}
	if err := spec.Config.Validate(); err != nil {
		return Report{}, err
	}
	workers := spec.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := pool.NewWithResults[Result]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(workers)
	for i := 0; i < spec.Runs; i++ {
		seed := spec.FirstSeed + int64(i)
		p.Go(func(ctx context.Context) (Result, error) {
			return runOne(ctx, spec, seed)
		})
	}
	results, err := p.Wait()
	if err != nil {
		return Report{}, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Seed < results[j].Seed })
	return summarize(results), nil
}

func runOne(ctx context.Context, spec Spec, seed int64) (Result, error) {
	cfg := spec.Config
	cfg.Seed = seed
	s, err := swarm.New(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("trial seed %d: %w", seed, err)
	}
	for i := 0; i < spec.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := s.Step(); err != nil {
			return Result{}, fmt.Errorf("trial seed %d: %w", seed, err)
		}
	}
	best := s.GlobalBest()
	return Result{Seed: seed, GlobalBest: best, Succeeded: best.Score < spec.Threshold}, nil
}

func summarize(results []Result) Report {
	r := Report{Results: results}
	scores := make([]float64, len(results))
	for i, res := range results {
		scores[i] = res.GlobalBest.Score
		if res.Succeeded {
			r.Successes++
		}
	}
	r.MeanScore, r.StdDev = stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		r.StdDev = 0 // sample deviation is undefined for one run
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	r.BestScore, r.Worst = sorted[0], sorted[len(sorted)-1]
	return r
}
