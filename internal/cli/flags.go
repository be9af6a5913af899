// Package cli binds swarm configuration to command-line flags shared by
// the headless and windowed drivers.
package cli

import (
	"flag"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"pso-sim/internal/common"
	"pso-sim/internal/objective"
	"pso-sim/internal/simulation"
	"pso-sim/internal/swarm"
)

// Objective names accepted by -objective.
const (
	ObjectiveRastrigin = "rastrigin"
	ObjectiveLandmarks = "landmarks"
)

// Flags holds the raw flag values.
type Flags struct {
	Particles    int
	Inertia      float64
	ConstInertia bool
	Cognitive    float64
	Social       float64
	MaxVelocity  float64
	MaxPosition  float64
	Async        bool
	Workers      int
	Seed         int64
	Objective    string
	Landmarks    string
	Drift        bool
	Ticks        int
	TickDuration time.Duration
	LogEvery     int
	Verbose      bool
}

// Bind registers the flags on fs with the demo defaults.
func Bind(fs *flag.FlagSet) *Flags {
	def := swarm.DefaultConfig(nil)
	f := &Flags{}
	fs.IntVar(&f.Particles, "particles", def.ParticleCount, "number of particles")
	fs.Float64Var(&f.Inertia, "inertia", def.InertiaWeight, "inertia weight")
	fs.BoolVar(&f.ConstInertia, "const-inertia", false, "use the inertia weight as is instead of max(0.4, 0.99*w)")
	fs.Float64Var(&f.Cognitive, "cognitive", def.CognitiveWeight, "cognitive weight (pull toward personal best)")
	fs.Float64Var(&f.Social, "social", def.SocialWeight, "social weight (pull toward global best)")
	fs.Float64Var(&f.MaxVelocity, "vmax", def.MaxVelocity, "per-axis velocity bound")
	fs.Float64Var(&f.MaxPosition, "pmax", def.MaxPosition, "per-axis position bound")
	fs.BoolVar(&f.Async, "async", false, "publish global best improvements immediately within a tick")
	fs.IntVar(&f.Workers, "workers", runtime.NumCPU(), "goroutines evaluating the objective (1 = serial)")
	fs.Int64Var(&f.Seed, "seed", time.Now().UnixNano(), "random seed")
	fs.StringVar(&f.Objective, "objective", ObjectiveRastrigin, "objective: rastrigin or landmarks")
	fs.StringVar(&f.Landmarks, "landmarks", "30,40;-50,20;10,-60", "landmark positions as x,y;x,y;...")
	fs.BoolVar(&f.Drift, "drift", false, "move landmarks on a random walk while running")
	fs.IntVar(&f.Ticks, "ticks", 500, "iteration cap (0 = no cap)")
	fs.DurationVar(&f.TickDuration, "tick", 0, "real time between ticks (0 = as fast as possible)")
	fs.IntVar(&f.LogEvery, "log-every", 50, "log progress every N ticks (0 = start and finish only)")
	fs.BoolVar(&f.Verbose, "v", false, "log every particle at start and finish")
	return f
}

// Build turns the flag values into a swarm configuration. The landmark set
// is returned when the landmark objective is selected, nil otherwise.
func (f *Flags) Build() (swarm.Config, *objective.Landmarks, error) {
	cfg := swarm.Config{
		ParticleCount:   f.Particles,
		InertiaWeight:   f.Inertia,
		InertiaMode:     swarm.InertiaDecay,
		CognitiveWeight: f.Cognitive,
		SocialWeight:    f.Social,
		MaxVelocity:     f.MaxVelocity,
		MaxPosition:     f.MaxPosition,
		Policy:          swarm.Synchronous,
		Parallelism:     f.Workers,
		Seed:            f.Seed,
	}
	if f.ConstInertia {
		cfg.InertiaMode = swarm.InertiaConstant
	}
	if f.Async {
		cfg.Policy = swarm.Asynchronous
	}

	var landmarks *objective.Landmarks
	switch f.Objective {
	case ObjectiveRastrigin:
		cfg.Objective = objective.Rastrigin{}
	case ObjectiveLandmarks:
		positions, err := ParsePositions(f.Landmarks)
		if err != nil {
			return cfg, nil, fmt.Errorf("-landmarks: %w", err)
		}
		landmarks, err = objective.NewLandmarks(positions...)
		if err != nil {
			return cfg, nil, err
		}
		cfg.Objective = landmarks
	default:
		return cfg, nil, fmt.Errorf("unknown objective %q", f.Objective)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	return cfg, landmarks, nil
}

// NewDrift returns the landmark drift requested by -drift, or nil.
func (f *Flags) NewDrift(cfg swarm.Config, landmarks *objective.Landmarks) (*simulation.LandmarkDrift, error) {
	if !f.Drift || landmarks == nil {
		return nil, nil
	}
	return simulation.NewLandmarkDrift(landmarks, cfg.MaxPosition, cfg.Seed+1)
}

// ParsePositions parses "x,y;x,y;..." into vectors. Whitespace is ignored
// and empty entries are skipped.
func ParsePositions(s string) ([]common.Vector, error) {
	var out []common.Vector
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("position %q: want x,y", entry)
		}
		coords := make([]float64, 2)
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("position %q: %w", entry, err)
			}
			coords[i] = v
		}
		pos, err := common.FromSlice(coords)
		if err != nil {
			return nil, err
		}
		if !pos.IsFinite() {
			return nil, fmt.Errorf("position %q is not finite", entry)
		}
		out = append(out, pos)
	}
	return out, nil
}
