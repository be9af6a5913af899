package main

import (
	"flag"
	"log"
	"time"

	"pso-sim/internal/cli"
	"pso-sim/internal/swarm"
	"pso-sim/internal/visualization"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	f := cli.Bind(flag.CommandLine)
	width := flag.Int("width", 600, "window width")
	height := flag.Int("height", 400, "window height")
	flag.Parse()

	cfg, landmarks, err := f.Build()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	s, err := swarm.New(cfg)
	if err != nil {
		log.Fatalf("Error creating swarm: %v", err)
	}
	drift, err := f.NewDrift(cfg, landmarks)
	if err != nil {
		log.Fatalf("Error creating landmark drift: %v", err)
	}

	renderer := visualization.NewRenderer(s, landmarks, drift)
	renderer.MaxIterations = f.Ticks

	if f.TickDuration > 0 {
		ebiten.SetTPS(max(1, int(time.Second/f.TickDuration)))
	}
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Particle Swarm Optimization")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(renderer); err != nil {
		log.Fatal(err)
	}
}
