package canvas2d

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

const (
	barCount     = 64
	spiralArms   = 3
	spiralSteps  = 100
	spiralRadius = 200
	stripHeight  = 100
	diamondCount = 8
	boltCount    = 5

	orbThreshold  = 30
	boltThreshold = 100
	starThreshold = 80
)

// glowStroke approximates a blurred shadow with a wide faint pass under the
// real stroke.
func glowStroke(dc *gg.Context, c color.NRGBA, width, a, blur float64) {
	if blur > 0 {
		dc.SetColor(withAlpha(c, a*0.25))
		dc.SetLineWidth(width + blur)
		dc.StrokePreserve()
	}
	dc.SetColor(withAlpha(c, a))
	dc.SetLineWidth(width)
	dc.Stroke()
}

// Background is a radial wash whose focus drifts with time and whose stops
// brighten with each band. Its outer stop is transparent since a screen
// blend with black leaves the surface unchanged.
type Background struct{}

func (Background) Name() string { return "background" }

func (Background) Draw(dc *gg.Context, in Input) {
	cx, cy := in.center()
	g := gg.NewRadialGradient(
		cx+math.Sin(in.Time*0.5)*100, cy+math.Cos(in.Time*0.3)*80, 0,
		cx, cy, math.Max(in.W, in.H)/1.5,
	)
	g.AddColorStop(0, rgba(25, 25, 112, 0.3+in.Bass/1000))
	g.AddColorStop(0.4, rgba(72, 61, 139, 0.2+in.Mid/1500))
	g.AddColorStop(0.8, rgba(15, 23, 42, 0.1+in.Treble/2000))
	g.AddColorStop(1, rgba(0, 0, 0, 0))
	dc.SetFillStyle(g)
	dc.DrawRectangle(0, 0, in.W, in.H)
	dc.Fill()
}

// ParticleCount is how many orbit particles a frame draws.
func ParticleCount(in Input) int {
	return int(math.Floor(50 + (in.Bass+in.Mid+in.Treble)/10))
}

// Particles orbit the center on a breathing radius pushed out by bass.
type Particles struct{}

func (Particles) Name() string { return "particles" }

func (Particles) Draw(dc *gg.Context, in Input) {
	cx, cy := in.center()
	n := ParticleCount(in)
	for i := range n {
		angle := float64(i)/float64(n)*2*math.Pi + in.Time*0.5
		radius := 100 + math.Sin(in.Time+float64(i)*0.1)*50 + in.Bass*2
		x := cx + math.Cos(angle)*radius
		y := cy + math.Sin(angle)*radius

		var intensity float64
		if len(in.Snapshot) > 0 {
			intensity = in.bin(i%len(in.Snapshot)) / 255
		}
		size := 1 + intensity*4

		g := gg.NewRadialGradient(x, y, 0, x, y, size*3)
		g.AddColorStop(0, rgba(200, 220, 255, intensity))
		g.AddColorStop(0.5, rgba(100, 150, 255, intensity*0.5))
		g.AddColorStop(1, rgba(50, 100, 200, 0))
		dc.SetFillStyle(g)
		dc.DrawCircle(x, y, size*3)
		dc.Fill()
	}
}

// BarGeometry is the projected rectangle of bar i.
type BarGeometry struct {
	X, Width, Height float64
	Index            int
}

// Bar projects bar i of barCount with a per-bar depth that sways with time.
func Bar(in Input, i int) BarGeometry {
	bw := in.W / barCount
	perspective := in.H * 0.3
	idx := int(math.Floor(float64(i) / barCount * float64(len(in.Snapshot))))
	h := in.bin(idx) / 255 * in.H * 0.7

	x := float64(i) * bw
	z := math.Sin(in.Time+float64(i)*0.1)*20 + h*0.1
	scale := perspective / (perspective + z)
	return BarGeometry{
		X:      x*scale + in.W*(1-scale)/2,
		Width:  bw * scale,
		Height: h * scale,
		Index:  idx,
	}
}

// Bars is a row of pseudo-3D bars standing on the bottom edge, each with a
// faded reflection below it.
type Bars struct{}

func (Bars) Name() string { return "bars" }

func (Bars) Draw(dc *gg.Context, in Input) {
	for i := range barCount {
		b := Bar(in, i)
		if b.Height <= 0 {
			continue
		}
		hue := 200 + float64(i)/barCount*60
		intensity := in.bin(b.Index) / 255

		g := gg.NewLinearGradient(b.X, in.H, b.X, in.H-b.Height)
		g.AddColorStop(0, hsla(hue, 0.7, 0.2, 0.9))
		g.AddColorStop(0.3, hsla(hue, 0.8, 0.5, 0.8+intensity*0.2))
		g.AddColorStop(0.7, hsla(hue, 0.9, 0.7, 0.6+intensity*0.4))
		g.AddColorStop(1, hsla(hue, 1, 0.9, 0.9+intensity*0.1))
		dc.SetFillStyle(g)
		dc.DrawRectangle(b.X, in.H-b.Height, b.Width-1, b.Height)
		dc.Fill()

		r := gg.NewLinearGradient(b.X, in.H, b.X, in.H+b.Height*0.5)
		r.AddColorStop(0, hsla(hue, 0.8, 0.5, 0.3*0.3))
		r.AddColorStop(1, hsla(hue, 0.8, 0.5, 0))
		dc.SetFillStyle(r)
		dc.DrawRectangle(b.X, in.H, b.Width-1, b.Height*0.5)
		dc.Fill()
	}
}

type trace struct {
	offset float64
	color  color.NRGBA
	width  float64
	alpha  float64
}

var traces = []trace{
	{offset: -20, color: slate200, width: 3, alpha: 0.8},
	{offset: 0, color: slate300, width: 2, alpha: 0.6},
	{offset: 20, color: slate400, width: 1, alpha: 0.4},
}

// WaveY is the height of the trace at bin i before the per-trace offset.
func WaveY(in Input, i int) float64 {
	n := float64(len(in.Snapshot))
	return in.H/2 + math.Sin(float64(i)/n*math.Pi*4+in.Time*2)*(in.bin(i)/255)*100
}

// Waveforms draws three stacked glowing traces shaped by the snapshot.
type Waveforms struct{}

func (Waveforms) Name() string { return "waveforms" }

func (Waveforms) Draw(dc *gg.Context, in Input) {
	n := len(in.Snapshot)
	if n == 0 {
		return
	}
	for _, tr := range traces {
		for i := range n {
			x := float64(i) / float64(n) * in.W
			y := WaveY(in, i) + tr.offset
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		glowStroke(dc, tr.color, tr.width, tr.alpha, tr.width*2)
	}
}

// BassOrb is a central glow that appears once bass clears a fixed floor.
type BassOrb struct{}

func (BassOrb) Name() string { return "bass orb" }

// Visible reports whether the orb draws for this input.
func (BassOrb) Visible(in Input) bool { return in.Bass > orbThreshold }

func (o BassOrb) Draw(dc *gg.Context, in Input) {
	if !o.Visible(in) {
		return
	}
	cx, cy := in.center()
	radius := 20 + in.Bass/255*80
	g := gg.NewRadialGradient(cx, cy, 0, cx, cy, radius)
	g.AddColorStop(0, rgba(59, 130, 246, in.Bass/500))
	g.AddColorStop(0.5, rgba(29, 78, 216, in.Bass/800))
	g.AddColorStop(1, rgba(29, 78, 216, 0))
	dc.SetFillStyle(g)
	dc.DrawCircle(cx, cy, radius)
	dc.Fill()
}

// Lightning flicks short radial strokes around the center on loud treble.
type Lightning struct{}

func (Lightning) Name() string { return "lightning" }

// Visible reports whether the strokes draw for this input.
func (Lightning) Visible(in Input) bool { return in.Treble > boltThreshold }

func (l Lightning) Draw(dc *gg.Context, in Input) {
	if !l.Visible(in) {
		return
	}
	cx, cy := in.center()
	radius := 150 + in.Treble*0.5
	for i := range boltCount {
		start := float64(i)/boltCount*2*math.Pi + in.Time*3
		end := start + math.Pi*0.1
		dc.MoveTo(cx+math.Cos(start)*radius, cy+math.Sin(start)*radius)
		dc.LineTo(cx+math.Cos(end)*(radius+50), cy+math.Sin(end)*(radius+50))
		glowStroke(dc, slate100, 2, in.Treble/255, 10)
	}
}

// Spiral is a rotating multi-arm spiral that widens with mid energy. Every
// tenth step of an arm gets a star when the matching bin is loud.
type Spiral struct{}

func (Spiral) Name() string { return "spiral" }

func (Spiral) Draw(dc *gg.Context, in Input) {
	cx, cy := in.center()
	type star struct{ x, y, v float64 }
	var stars []star

	for arm := range spiralArms {
		for i := range spiralSteps {
			t := float64(i) / spiralSteps
			angle := float64(arm)*(2*math.Pi/spiralArms) + t*math.Pi*4 + in.Time*0.5
			r := t * spiralRadius * (1 + in.Mid/500)
			x := cx + math.Cos(angle)*r
			y := cy + math.Sin(angle)*r
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
			if v := in.bin(i); i%10 == 0 && v > starThreshold {
				stars = append(stars, star{x, y, v})
			}
		}
		dc.SetColor(withAlpha(slate400, 0.3+in.Mid/1000))
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	for _, s := range stars {
		dc.SetColor(withAlpha(slate100, s.v/255))
		dc.DrawCircle(s.x, s.y, 1+s.v/255*2)
		dc.Fill()
	}
}

// SpectrumStrip is a plain analyzer panel along the bottom edge.
type SpectrumStrip struct{}

func (SpectrumStrip) Name() string { return "spectrum strip" }

func (SpectrumStrip) Draw(dc *gg.Context, in Input) {
	top := in.H - stripHeight - 20
	dc.SetColor(rgba(15, 23, 42, 0.8))
	dc.DrawRectangle(20, top, in.W-40, stripHeight)
	dc.Fill()

	n := len(in.Snapshot)
	if n == 0 {
		return
	}
	bw := (in.W - 40) / float64(n)
	for i := range n {
		h := in.bin(i) / 255 * (stripHeight - 10)
		if h <= 0 {
			continue
		}
		x := 20 + float64(i)*bw
		y := top + stripHeight - h - 5

		g := gg.NewLinearGradient(x, y+h, x, y)
		g.AddColorStop(0, rgba(59, 130, 246, 0.3))
		g.AddColorStop(0.5, rgba(147, 197, 253, 0.6))
		g.AddColorStop(1, rgba(219, 234, 254, 0.9))
		dc.SetFillStyle(g)
		dc.DrawRectangle(x, y, bw-1, h)
		dc.Fill()
	}
}

// Diamonds are outlined squares orbiting far out, each spinning on its own
// phase and sized by a sparse sampling of the snapshot.
type Diamonds struct{}

func (Diamonds) Name() string { return "diamonds" }

func (Diamonds) Draw(dc *gg.Context, in Input) {
	cx, cy := in.center()
	for i := range diamondCount {
		fi := float64(i)
		angle := fi/diamondCount*2*math.Pi + in.Time*0.3
		dist := 300 + math.Sin(in.Time+fi)*100
		v := in.bin(i * 16)
		size := 10 + v/255*20

		dc.Push()
		dc.Translate(cx+math.Cos(angle)*dist, cy+math.Sin(angle)*dist)
		dc.Rotate(in.Time + fi)
		dc.MoveTo(0, -size)
		dc.LineTo(size, 0)
		dc.LineTo(0, size)
		dc.LineTo(-size, 0)
		dc.ClosePath()
		dc.SetColor(withAlpha(slate400, 0.6+v/500))
		dc.SetLineWidth(2)
		dc.Stroke()
		dc.Pop()
	}
}
