package visualizer

import (
	"image"

	"github.com/olivier-w/mngviz/internal/spectrum"
)

// Renderer turns one sampled frame into a raster. Implementations keep
// their own surface between calls; the returned image is only valid until
// the next Render.
type Renderer interface {
	Name() string
	Layout() spectrum.Layout
	Render(f spectrum.Frame) image.Image
}
