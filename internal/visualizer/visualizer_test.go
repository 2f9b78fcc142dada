package visualizer

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/olivier-w/mngviz/internal/spectrum"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDetectProfile(t *testing.T) {
	cases := []struct {
		env  map[string]string
		want colorProfile
	}{
		{map[string]string{"NO_COLOR": "", "COLORTERM": "truecolor"}, colorNone},
		{map[string]string{"COLORTERM": "24bit", "TERM": "xterm"}, colorTrueColor},
		{map[string]string{"TERM": "xterm-256color"}, colorANSI256},
		{map[string]string{"TERM": "dumb"}, colorNone},
		{map[string]string{"TERM": "vt100"}, colorANSI16},
	}
	for i, tc := range cases {
		if got := detectProfile(envLookup(tc.env)); got != tc.want {
			t.Fatalf("case %d: expected profile %d, got %d", i, tc.want, got)
		}
	}
}

func TestHalfBlocksTrueColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})

	got := halfBlocks(img, 1, 1, colorTrueColor)
	want := "\x1b[38;2;255;0;0m\x1b[48;2;0;0;255m▀\x1b[0m"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestHalfBlocksPlainRamp(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := 2; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}

	got := halfBlocks(img, 2, 2, colorNone)
	if got != " @\n @" {
		t.Fatalf("expected dark/bright columns, got %q", got)
	}
}

func TestHalfBlocksDegenerateInput(t *testing.T) {
	if halfBlocks(nil, 10, 10, colorTrueColor) != "" {
		t.Fatal("expected empty output for nil image")
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if halfBlocks(img, 0, 3, colorTrueColor) != "" {
		t.Fatal("expected empty output for zero columns")
	}
	if lines := strings.Count(halfBlocks(img, 20, 20, colorNone), "\n"); lines != 19 {
		t.Fatalf("expected 20 rows when upsampling, got %d", lines+1)
	}
}

func TestMetersConvergeAndHoldPeak(t *testing.T) {
	m := NewMeters(60)
	for range 240 {
		m.Update(spectrum.Levels{Bass: 0.8, Mid: 0.4, Treble: 0.1})
	}
	d := m.Display()
	if d[0] < 0.75 || d[0] > 0.85 || d[1] < 0.35 || d[1] > 0.45 {
		t.Fatalf("expected meters near targets, got %v", d)
	}

	m.Update(spectrum.Levels{})
	if m.peak[0] < 0.7 {
		t.Fatalf("expected bass peak to hold, got %g", m.peak[0])
	}

	m.Reset()
	if m.Display() != [3]float64{} {
		t.Fatal("expected reset meters to read zero")
	}
}

func TestMetersViewPlain(t *testing.T) {
	m := NewMeters(60)
	m.Update(spectrum.Levels{Bass: 0.5})
	out := m.view(40, colorNone)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 meter lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], " BASS") || !strings.HasSuffix(lines[0], " 50%") {
		t.Fatalf("unexpected bass line %q", lines[0])
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("expected no escape codes without color support")
	}
}
