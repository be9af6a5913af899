package visualization

import (
	"fmt"
	"image/color"

	"pso-sim/internal/common"
	"pso-sim/internal/objective"
	"pso-sim/internal/simulation"
	"pso-sim/internal/swarm"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	particleRadius   = 3.0
	bestRadius       = 1.5
	globalBestRadius = 6.0
	landmarkRadius   = 7.0
	pickRadius       = 12.0 // screen pixels around a landmark that start a drag
)

var (
	backgroundColor = color.RGBA{245, 245, 245, 255}
	boundsColor     = color.RGBA{180, 180, 180, 255}
	particleColor   = color.RGBA{0, 0, 255, 255}
	bestColor       = color.RGBA{0, 0, 200, 90}
	globalBestColor = color.RGBA{255, 0, 0, 255}
	landmarkColor   = color.RGBA{0, 150, 60, 255}
	dragColor       = color.RGBA{255, 160, 0, 255}
)

// Renderer implements ebiten.Game. It is the swarm's driver while the
// window is open: one Step per ebiten tick until MaxIterations.
type Renderer struct {
	swarm     *swarm.Swarm
	landmarks *objective.Landmarks // nil unless the objective is a landmark set
	drift     *simulation.LandmarkDrift

	// Stop stepping after this many ticks. Zero never stops.
	MaxIterations int

	paused   bool
	dragging string // id of the landmark being dragged
	lastErr  error

	screenWidth  int
	screenHeight int
	view         viewport
}

// NewRenderer creates a renderer for s. landmarks and drift may be nil.
func NewRenderer(s *swarm.Swarm, landmarks *objective.Landmarks, drift *simulation.LandmarkDrift) *Renderer {
	return &Renderer{
		swarm:     s,
		landmarks: landmarks,
		drift:     drift,
	}
}

// Update handles input and advances the swarm by one tick.
//
// Keys: space pauses, R resets the swarm. Landmarks can be dragged with the
// left mouse button; the swarm scores against the new position from the
// next tick on.
func (r *Renderer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		r.paused = !r.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		// A failed reset (e.g. every landmark removed) is shown, not fatal.
		r.lastErr = r.swarm.Reset()
	}
	r.handleDrag()

	if r.paused || (r.MaxIterations > 0 && r.swarm.Iteration() >= r.MaxIterations) {
		return nil
	}
	if r.drift != nil {
		if err := r.drift.Update(1 / float64(ebiten.TPS())); err != nil {
			return err
		}
	}
	return r.swarm.Step()
}

func (r *Renderer) handleDrag() {
	if r.landmarks == nil || r.view.scale == 0 {
		return
	}
	x, y := ebiten.CursorPosition()
	pos := r.view.screenToWorld(x, y).Clamp(r.swarm.Config().MaxPosition)

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		if lm, ok := r.landmarks.Nearest(pos, pickRadius/r.view.scale); ok {
			r.dragging = lm.ID
		}
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		r.dragging = ""
	}

	if r.dragging != "" {
		if err := r.landmarks.Move(r.dragging, pos); err != nil {
			r.dragging = ""
			r.lastErr = err
		}
	}
}

// Draw renders the search square, landmarks, particles and the global best.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	cfg := r.swarm.Config()

	x0, y0 := r.view.worldToScreen(common.NewVector(-cfg.MaxPosition, cfg.MaxPosition))
	x1, y1 := r.view.worldToScreen(common.NewVector(cfg.MaxPosition, -cfg.MaxPosition))
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, boundsColor, false)

	if r.landmarks != nil {
		for _, lm := range r.landmarks.All() {
			lx, ly := r.view.worldToScreen(lm.Position)
			c := landmarkColor
			if lm.ID == r.dragging {
				c = dragColor
			}
			vector.DrawFilledCircle(screen, lx, ly, landmarkRadius, c, true)
		}
	}

	for _, p := range r.swarm.Particles() {
		bx, by := r.view.worldToScreen(p.BestPosition)
		vector.DrawFilledCircle(screen, bx, by, bestRadius, bestColor, true)
		px, py := r.view.worldToScreen(p.Position)
		vector.DrawFilledCircle(screen, px, py, particleRadius, particleColor, true)
	}

	gx, gy := r.view.worldToScreen(r.swarm.GlobalBest().Position)
	vector.DrawFilledCircle(screen, gx, gy, globalBestRadius, globalBestColor, true)

	r.drawDebugInfo(screen)
}

func (r *Renderer) drawDebugInfo(screen *ebiten.Image) {
	best := r.swarm.GlobalBest()
	msg := fmt.Sprintf("Iteration: %d", r.swarm.Iteration())
	if r.MaxIterations > 0 {
		msg += fmt.Sprintf("/%d", r.MaxIterations)
	}
	msg += fmt.Sprintf("\nGlobal best: %s\nInertia: %.3f  TPS: %.1f\n", best, r.swarm.InertiaFactor(), ebiten.ActualTPS())
	if r.paused {
		msg += "PAUSED (space to resume)\n"
	}
	if r.lastErr != nil {
		msg += fmt.Sprintf("Error: %v\n", r.lastErr)
	}
	ebitenutil.DebugPrint(screen, msg)
}

// Layout is called when the window size changes.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != r.screenWidth || outsideHeight != r.screenHeight {
		r.screenWidth = outsideWidth
		r.screenHeight = outsideHeight
		r.view = newViewport(r.swarm.Config().MaxPosition, outsideWidth, outsideHeight)
	}
	return r.screenWidth, r.screenHeight
}
