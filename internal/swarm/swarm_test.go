package swarm

import (
	"errors"
	"math"
	"testing"

	"pso-sim/internal/common"
	"pso-sim/internal/objective"

	"github.com/google/go-cmp/cmp"
)

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero particles", func(c *Config) { c.ParticleCount = 0 }},
		{"negative particles", func(c *Config) { c.ParticleCount = -3 }},
		{"NaN inertia", func(c *Config) { c.InertiaWeight = math.NaN() }},
		{"negative cognitive", func(c *Config) { c.CognitiveWeight = -1 }},
		{"infinite social", func(c *Config) { c.SocialWeight = math.Inf(1) }},
		{"zero max velocity", func(c *Config) { c.MaxVelocity = 0 }},
		{"negative max position", func(c *Config) { c.MaxPosition = -100 }},
		{"infinite max position", func(c *Config) { c.MaxPosition = math.Inf(1) }},
		{"overflowing max position", func(c *Config) { c.MaxPosition = 1e308 }},
		{"overflowing max velocity", func(c *Config) { c.MaxVelocity = math.MaxFloat64 }},
		{"unknown inertia mode", func(c *Config) { c.InertiaMode = InertiaMode(9) }},
		{"unknown policy", func(c *Config) { c.Policy = UpdatePolicy(9) }},
		{"nil objective", func(c *Config) { c.Objective = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(objective.Rastrigin{})
			tt.mutate(&cfg)
			s, err := New(cfg)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("New error = %v, want ErrInvalidConfiguration", err)
			}
			if s != nil {
				t.Error("New returned a swarm alongside an error")
			}
		})
	}
}

func TestNewRejectsEmptyLandmarkSet(t *testing.T) {
	lm, err := objective.NewLandmarks(common.NewVector(1, 1))
	if err != nil {
		t.Fatalf("NewLandmarks: %v", err)
	}
	if err := lm.Remove(lm.All()[0].ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := New(DefaultConfig(lm)); !errors.Is(err, objective.ErrEmptyLandmarkSet) {
		t.Errorf("New error = %v, want ErrEmptyLandmarkSet", err)
	}
}

func TestStepUninitialized(t *testing.T) {
	var s Swarm
	if err := s.Step(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Step error = %v, want ErrNotInitialized", err)
	}
	if err := s.Reset(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Reset error = %v, want ErrNotInitialized", err)
	}
	if s.Running() {
		t.Error("zero-value swarm reports running")
	}
}

func TestInertiaFactor(t *testing.T) {
	tests := []struct {
		mode   InertiaMode
		weight float64
		want   float64
	}{
		{InertiaDecay, 0.5, 0.495},
		{InertiaDecay, 0.3, 0.4},
		{InertiaDecay, 0.9, 0.891},
		{InertiaConstant, 0.5, 0.5},
		{InertiaConstant, 0.3, 0.3},
	}
	for _, tt := range tests {
		cfg := DefaultConfig(objective.Sphere)
		cfg.InertiaMode, cfg.InertiaWeight = tt.mode, tt.weight
		s, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i := 0; i < 3; i++ {
			if got := s.InertiaFactor(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%v/%v tick %d: inertia factor = %v, want %v", tt.mode, tt.weight, i, got, tt.want)
			}
			if err := s.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
		}
	}
}

// checkInvariants asserts the properties every tick must preserve.
func checkInvariants(t *testing.T, s *Swarm, tick int) {
	t.Helper()
	cfg := s.Config()
	minBest := math.Inf(1)
	for i, p := range s.Particles() {
		if math.Abs(p.Velocity.X) > cfg.MaxVelocity || math.Abs(p.Velocity.Y) > cfg.MaxVelocity {
			t.Fatalf("tick %d particle %d: velocity %v exceeds %v", tick, i, p.Velocity, cfg.MaxVelocity)
		}
		if math.Abs(p.Position.X) > cfg.MaxPosition || math.Abs(p.Position.Y) > cfg.MaxPosition {
			t.Fatalf("tick %d particle %d: position %v exceeds %v", tick, i, p.Position, cfg.MaxPosition)
		}
		if got := cfg.Objective.Evaluate(p.BestPosition); got != p.BestScore {
			t.Fatalf("tick %d particle %d: best score %v != objective(best) %v", tick, i, p.BestScore, got)
		}
		minBest = math.Min(minBest, p.BestScore)
	}
	if gb := s.GlobalBest(); gb.Score != minBest {
		t.Fatalf("tick %d: global best %v is not the minimum personal best %v", tick, gb.Score, minBest)
	}
}

func TestStepInvariants(t *testing.T) {
	objectives := map[string]objective.Objective{
		"rastrigin": objective.Rastrigin{},
		"sphere":    objective.Sphere,
	}
	for _, policy := range []UpdatePolicy{Synchronous, Asynchronous} {
		for name, obj := range objectives {
			t.Run(policy.String()+"/"+name, func(t *testing.T) {
				cfg := DefaultConfig(obj)
				cfg.Policy = policy
				cfg.Seed = 11
				s, err := New(cfg)
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				checkInvariants(t, s, 0)

				last := s.GlobalBest().Score
				for tick := 1; tick <= 300; tick++ {
					if err := s.Step(); err != nil {
						t.Fatalf("Step: %v", err)
					}
					checkInvariants(t, s, tick)
					if gb := s.GlobalBest().Score; gb > last {
						t.Fatalf("tick %d: global best regressed from %v to %v", tick, last, gb)
					} else {
						last = gb
					}
				}
				if s.Iteration() != 300 {
					t.Errorf("Iteration = %d, want 300", s.Iteration())
				}
			})
		}
	}
}

func trajectory(t *testing.T, cfg Config, ticks int) [][]Particle {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := [][]Particle{s.Particles()}
	for i := 0; i < ticks; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		out = append(out, s.Particles())
	}
	return out
}

func TestDeterministicGivenSeed(t *testing.T) {
	cfg := DefaultConfig(objective.Rastrigin{})
	cfg.Seed = 42

	a := trajectory(t, cfg, 50)
	b := trajectory(t, cfg, 50)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different trajectories (-first +second):\n%s", diff)
	}

	cfg.Seed = 43
	c := trajectory(t, cfg, 50)
	if cmp.Equal(a, c) {
		t.Error("different seeds produced identical trajectories")
	}
}

func TestParallelEvaluationMatchesSerial(t *testing.T) {
	cfg := DefaultConfig(objective.Rastrigin{})
	cfg.Seed = 5
	cfg.ParticleCount = 37
	serial := trajectory(t, cfg, 40)

	for _, workers := range []int{2, 4, 64} {
		cfg.Parallelism = workers
		if diff := cmp.Diff(serial, trajectory(t, cfg, 40)); diff != "" {
			t.Errorf("parallelism %d diverged from serial (-serial +parallel):\n%s", workers, diff)
		}
	}
}

func TestEvaluatePanicBecomesError(t *testing.T) {
	for _, policy := range []UpdatePolicy{Synchronous, Asynchronous} {
		t.Run(policy.String(), func(t *testing.T) {
			calls := 0
			cfg := DefaultConfig(objective.Func(func(pos common.Vector) float64 {
				calls++
				if calls > 35 {
					panic("boom")
				}
				return pos.NormSq()
			}))
			cfg.Policy = policy
			s, err := New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			before, best := s.Particles(), s.GlobalBest()

			if err := s.Step(); err == nil {
				t.Fatal("Step should report the panicking objective")
			}
			if s.Iteration() != 0 {
				t.Errorf("failed step advanced the iteration counter to %d", s.Iteration())
			}
			if diff := cmp.Diff(before, s.Particles()); diff != "" {
				t.Errorf("failed step changed the particles (-before +after):\n%s", diff)
			}
			if s.GlobalBest() != best {
				t.Errorf("failed step changed the global best from %v to %v", best, s.GlobalBest())
			}
		})
	}
}

func TestStepRejectsEmptiedLandmarkSet(t *testing.T) {
	lm, err := objective.NewLandmarks(common.NewVector(50, 50))
	if err != nil {
		t.Fatalf("NewLandmarks: %v", err)
	}
	for _, policy := range []UpdatePolicy{Synchronous, Asynchronous} {
		t.Run(policy.String(), func(t *testing.T) {
			lm.Set(common.NewVector(50, 50))
			cfg := DefaultConfig(lm)
			cfg.Policy = policy
			s, err := New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if err := s.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
			if err := lm.Remove(lm.All()[0].ID); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			before, best := s.Particles(), s.GlobalBest()

			if err := s.Step(); !errors.Is(err, objective.ErrEmptyLandmarkSet) {
				t.Fatalf("Step error = %v, want ErrEmptyLandmarkSet", err)
			}
			if s.GlobalBest() != best {
				t.Errorf("global best changed from %v to %v", best, s.GlobalBest())
			}
			if diff := cmp.Diff(before, s.Particles()); diff != "" {
				t.Errorf("particles moved (-before +after):\n%s", diff)
			}
			if s.Iteration() != 1 {
				t.Errorf("Iteration = %d, want 1", s.Iteration())
			}
		})
	}
}

func TestLargeBoundsStayFinite(t *testing.T) {
	cfg := DefaultConfig(objective.Func(func(common.Vector) float64 { return 0 }))
	cfg.MaxPosition = 1e300
	cfg.MaxVelocity = 1e300
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for tick := 0; tick < 50; tick++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		for i, p := range s.Particles() {
			if !p.Position.IsFinite() || !p.Velocity.IsFinite() || !p.BestPosition.IsFinite() {
				t.Fatalf("tick %d particle %d is not finite: %s", tick, i, p)
			}
		}
	}
}

func TestRastriginConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	const runs, ticks, threshold = 100, 500, 5.0

	successes := 0
	for seed := int64(0); seed < runs; seed++ {
		cfg := DefaultConfig(objective.Rastrigin{})
		cfg.Seed = seed
		s, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i := 0; i < ticks; i++ {
			if err := s.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
		}
		if gb := s.GlobalBest(); gb.Score < threshold {
			successes++
		} else {
			t.Logf("seed %d: global best %s", seed, gb)
		}
	}
	if successes < 95 {
		t.Errorf("converged below %v in %d/%d runs, want at least 95", threshold, successes, runs)
	}
}

func TestSingleLandmarkConvergence(t *testing.T) {
	target := common.NewVector(300, 300)
	lm, err := objective.NewLandmarks(target)
	if err != nil {
		t.Fatalf("NewLandmarks: %v", err)
	}

	for _, seed := range []int64{1, 2, 3} {
		cfg := Config{
			ParticleCount:   30,
			InertiaWeight:   ConstrictedInertia,
			InertiaMode:     InertiaConstant,
			CognitiveWeight: ConstrictedCognitive,
			SocialWeight:    ConstrictedSocial,
			MaxVelocity:     10,
			MaxPosition:     400,
			Seed:            seed,
			Objective:       lm,
		}
		s, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i := 0; i < 1000; i++ {
			if err := s.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
		}
		for i, p := range s.Particles() {
			if d := p.BestPosition.Distance(target); d > 5 {
				t.Errorf("seed %d particle %d: best %s is %.3f from the landmark", seed, i, p.BestPosition, d)
			}
		}
	}
}

func TestLandmarkMutationMidRun(t *testing.T) {
	lm, err := objective.NewLandmarks(common.NewVector(0, 0))
	if err != nil {
		t.Fatalf("NewLandmarks: %v", err)
	}
	cfg := DefaultConfig(lm)
	cfg.Seed = 9
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 100; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	before := s.GlobalBest()

	if err := lm.Move(lm.All()[0].ID, common.NewVector(80, -80)); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	for i, p := range s.Particles() {
		if want := lm.Evaluate(p.Position); p.Score != want {
			t.Errorf("particle %d: score %v not computed against the moved landmark (%v)", i, p.Score, want)
		}
	}
	if after := s.GlobalBest(); after.Score > before.Score {
		t.Errorf("global best regressed without a reset: %v -> %v", before.Score, after.Score)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	gb := s.GlobalBest()
	if gb.Score != lm.Evaluate(gb.Position) {
		t.Errorf("after reset global best %v does not reflect the current landmarks", gb)
	}
	if s.Iteration() != 0 {
		t.Errorf("Iteration after reset = %d, want 0", s.Iteration())
	}
	checkInvariants(t, s, 0)
}

func TestResetAndReconfigure(t *testing.T) {
	cfg := DefaultConfig(objective.Rastrigin{})
	cfg.Seed = 21
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	initial := s.Particles()

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if cmp.Equal(initial, s.Particles()) {
		t.Error("Reset reproduced the previous placement; the random stream should continue")
	}

	if err := s.Reconfigure(cfg); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if diff := cmp.Diff(initial, s.Particles()); diff != "" {
		t.Errorf("Reconfigure with the same seed should match New (-new +reconfigured):\n%s", diff)
	}

	bad := cfg
	bad.ParticleCount = 0
	if err := s.Reconfigure(bad); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Reconfigure error = %v, want ErrInvalidConfiguration", err)
	}
	if s.Len() != cfg.ParticleCount {
		t.Errorf("failed Reconfigure changed the swarm to %d particles", s.Len())
	}
}
