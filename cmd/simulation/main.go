package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"pso-sim/internal/baseline"
	"pso-sim/internal/cli"
	"pso-sim/internal/simulation"
	"pso-sim/internal/swarm"
	"pso-sim/internal/trials"
)

func main() {
	f := cli.Bind(flag.CommandLine)
	numTrials := flag.Int("trials", 0, "run N seeded trials (seeds seed..seed+N-1) instead of a single run")
	threshold := flag.Float64("threshold", 5.0, "score a trial must beat to count as a success")
	compare := flag.Bool("baseline", true, "refine the final global best with Nelder-Mead and report the gap")
	flag.Parse()

	cfg, landmarks, err := f.Build()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Ctrl-C stops the run and still prints the summary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *numTrials > 0 {
		report, err := trials.Run(ctx, trials.Spec{
			Config:    cfg,
			Runs:      *numTrials,
			Ticks:     f.Ticks,
			FirstSeed: cfg.Seed,
			Threshold: *threshold,
		})
		if err != nil {
			log.Fatalf("Trials failed: %v", err)
		}
		for _, res := range report.Results {
			fmt.Printf("seed %d: %s success=%t\n", res.Seed, res.GlobalBest, res.Succeeded)
		}
		fmt.Println(report)
		return
	}

	s, err := swarm.New(cfg)
	if err != nil {
		log.Fatalf("Error creating swarm: %v", err)
	}
	drift, err := f.NewDrift(cfg, landmarks)
	if err != nil {
		log.Fatalf("Error creating landmark drift: %v", err)
	}

	driver, err := simulation.NewDriver(s, simulation.Options{
		MaxIterations: f.Ticks,
		TickDuration:  f.TickDuration,
		LogEvery:      f.LogEvery,
		Logger:        log.New(os.Stdout, "", log.LstdFlags),
		Verbose:       f.Verbose,
		Drift:         drift,
	})
	if err != nil {
		log.Fatalf("Error creating driver: %v", err)
	}

	summary, err := driver.Run(ctx)
	if err != nil {
		log.Fatalf("Run failed after %d ticks: %v", summary.Ticks, err)
	}

	if *compare {
		ref, err := baseline.Solve(cfg.Objective, summary.GlobalBest.Position)
		if err != nil {
			log.Printf("Warning: baseline refinement failed: %v", err)
		} else {
			gap := baseline.Compare(summary.GlobalBest.Position, summary.GlobalBest.Score, ref)
			fmt.Printf("Baseline: %s position gap %.4f score gap %.6f\n", ref, gap.PositionGap, gap.ScoreGap)
		}
	}
	fmt.Println("\nApplication finished.")
}
