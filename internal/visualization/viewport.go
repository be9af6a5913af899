package visualization

import (
	"math"

	"pso-sim/internal/common"
)

const padding = 20.0 // screen pixels kept free around the search square

// viewport maps the square [-bound, bound]² onto the screen, preserving
// aspect ratio. Screen y grows downwards, world y upwards.
type viewport struct {
	scale   float64
	offsetX float64
	offsetY float64
}

func newViewport(bound float64, screenWidth, screenHeight int) viewport {
	w, h := float64(screenWidth), float64(screenHeight)
	scale := math.Min(w-2*padding, h-2*padding) / (2 * bound)
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1.0
	}
	return viewport{scale: scale, offsetX: w / 2, offsetY: h / 2}
}

func (v viewport) worldToScreen(p common.Vector) (float32, float32) {
	return float32(p.X*v.scale + v.offsetX), float32(-p.Y*v.scale + v.offsetY)
}

func (v viewport) screenToWorld(x, y int) common.Vector {
	return common.NewVector((float64(x)-v.offsetX)/v.scale, -(float64(y)-v.offsetY)/v.scale)
}
