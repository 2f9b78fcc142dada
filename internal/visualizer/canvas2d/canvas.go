// Package canvas2d draws the flat variant: a fixed-size surface repainted
// every frame by a stack of stateless layers over a translucent wash that
// leaves motion trails.
package canvas2d

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/olivier-w/mngviz/internal/spectrum"
)

const (
	Width  = 1200
	Height = 600
)

// Input is everything a layer may read. Bass, Mid and Treble are the band
// levels on the 0-255 magnitude scale.
type Input struct {
	Time     float64
	Snapshot spectrum.Snapshot
	Bass     float64
	Mid      float64
	Treble   float64
	W, H     float64
}

// bin returns snapshot[i] as a float, or 0 past the end.
func (in Input) bin(i int) float64 {
	if i < 0 || i >= len(in.Snapshot) {
		return 0
	}
	return float64(in.Snapshot[i])
}

func (in Input) center() (float64, float64) { return in.W / 2, in.H / 2 }

// Layer is one independent drawing pass.
type Layer interface {
	Name() string
	Draw(dc *gg.Context, in Input)
}

// Layers returns every layer in back-to-front order.
func Layers() []Layer {
	return []Layer{
		Background{},
		Particles{},
		Bars{},
		Waveforms{},
		BassOrb{},
		Lightning{},
		Spiral{},
		SpectrumStrip{},
		Diamonds{},
	}
}

// Renderer owns the persistent surface.
type Renderer struct {
	dc     *gg.Context
	layers []Layer
}

// New returns a renderer drawing the given layers, or all of them when none
// are passed.
func New(layers ...Layer) *Renderer {
	if len(layers) == 0 {
		layers = Layers()
	}
	dc := gg.NewContext(Width, Height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	return &Renderer{dc: dc, layers: layers}
}

func (r *Renderer) Name() string { return "2d" }

func (r *Renderer) Layout() spectrum.Layout { return spectrum.Layout2D }

// Render fades the previous frame and draws every layer once.
func (r *Renderer) Render(f spectrum.Frame) image.Image {
	bass, mid, treble := f.Levels.Raw()
	in := Input{
		Time:     f.Time,
		Snapshot: f.Snapshot,
		Bass:     bass,
		Mid:      mid,
		Treble:   treble,
		W:        Width,
		H:        Height,
	}

	dc := r.dc
	dc.SetRGBA(0, 0, 0, 0.1)
	dc.DrawRectangle(0, 0, in.W, in.H)
	dc.Fill()

	for _, l := range r.layers {
		dc.Push()
		l.Draw(dc, in)
		dc.Pop()
		dc.ClearPath()
	}
	return dc.Image()
}

// Surface exposes the drawing context for export.
func (r *Renderer) Surface() *gg.Context { return r.dc }
