package canvas2d

import (
	"bytes"
	"image"
	"math"
	"testing"

	"github.com/olivier-w/mngviz/internal/spectrum"
)

func fullSnapshot(v uint8) spectrum.Snapshot {
	s := spectrum.Layout2D.NewSnapshot()
	for i := range s {
		s[i] = v
	}
	return s
}

func frameOf(s spectrum.Snapshot, t float64) spectrum.Frame {
	return spectrum.Frame{
		Snapshot: s,
		Levels:   spectrum.ComputeLevels(s, spectrum.Layout2D),
		Time:     t,
	}
}

func TestLayersOrder(t *testing.T) {
	want := []string{
		"background", "particles", "bars", "waveforms", "bass orb",
		"lightning", "spiral", "spectrum strip", "diamonds",
	}
	got := Layers()
	if len(got) != len(want) {
		t.Fatalf("expected %d layers, got %d", len(want), len(got))
	}
	for i, l := range got {
		if l.Name() != want[i] {
			t.Fatalf("layer %d: expected %q, got %q", i, want[i], l.Name())
		}
	}
}

func TestParticleCount(t *testing.T) {
	if got := ParticleCount(Input{}); got != 50 {
		t.Fatalf("expected 50 particles at silence, got %d", got)
	}
	if got := ParticleCount(Input{Bass: 255, Mid: 255, Treble: 255}); got != 126 {
		t.Fatalf("expected 126 particles at full scale, got %d", got)
	}
}

func TestThresholdGates(t *testing.T) {
	if (BassOrb{}).Visible(Input{Bass: 30}) {
		t.Fatal("expected orb hidden at bass 30")
	}
	if !(BassOrb{}).Visible(Input{Bass: 30.5}) {
		t.Fatal("expected orb visible above bass 30")
	}
	if (Lightning{}).Visible(Input{Treble: 100}) {
		t.Fatal("expected lightning hidden at treble 100")
	}
	if !(Lightning{}).Visible(Input{Treble: 101}) {
		t.Fatal("expected lightning visible above treble 100")
	}
}

func TestBarGeometry(t *testing.T) {
	in := Input{Snapshot: fullSnapshot(0), W: Width, H: Height}
	b := Bar(in, 0)
	if b.Height != 0 || b.X != 0 || b.Width != float64(Width)/barCount {
		t.Fatalf("expected flat unscaled bar at time 0, got %+v", b)
	}

	in.Snapshot = fullSnapshot(255)
	b = Bar(in, 0)
	perspective := Height * 0.3
	h := Height * 0.7
	scale := perspective / (perspective + h*0.1)
	if math.Abs(b.Height-h*scale) > 1e-9 {
		t.Fatalf("expected height %g, got %g", h*scale, b.Height)
	}
	if b.Index != 0 {
		t.Fatalf("expected bin 0, got %d", b.Index)
	}
	if got := Bar(in, 63).Index; got != 126 {
		t.Fatalf("expected last bar to sample bin 126, got %d", got)
	}
}

func TestWaveYFlatOnSilence(t *testing.T) {
	in := Input{Snapshot: fullSnapshot(0), W: Width, H: Height, Time: 3}
	for i := range in.Snapshot {
		if WaveY(in, i) != Height/2 {
			t.Fatalf("expected flat trace at bin %d", i)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	a, b := New(), New()
	frames := []spectrum.Frame{
		frameOf(fullSnapshot(0), 0),
		frameOf(fullSnapshot(200), 0.016),
		frameOf(fullSnapshot(90), 0.033),
	}
	var ia, ib image.Image
	for _, f := range frames {
		ia = a.Render(f)
		ib = b.Render(f)
	}
	pa := ia.(*image.RGBA).Pix
	pb := ib.(*image.RGBA).Pix
	if !bytes.Equal(pa, pb) {
		t.Fatal("expected identical output for identical frame sequences")
	}
	if ia.Bounds().Dx() != Width || ia.Bounds().Dy() != Height {
		t.Fatalf("expected %dx%d surface, got %v", Width, Height, ia.Bounds())
	}
}

func TestBassOrbOnlyLayerGatesOnBass(t *testing.T) {
	r := New(BassOrb{})
	img := r.Render(frameOf(fullSnapshot(0), 0)).(*image.RGBA)
	if c := img.RGBAAt(Width/2, Height/2); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Fatalf("expected black center at silence, got %v", c)
	}

	img = r.Render(frameOf(fullSnapshot(255), 0)).(*image.RGBA)
	if c := img.RGBAAt(Width/2, Height/2); c.B == 0 {
		t.Fatalf("expected blue orb at center, got %v", c)
	}
}

func TestRendererReportsLayout(t *testing.T) {
	r := New()
	if r.Name() != "2d" || r.Layout() != spectrum.Layout2D {
		t.Fatalf("unexpected identity %q %+v", r.Name(), r.Layout())
	}
}
