package visualizer

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

type colorProfile uint8

const (
	colorNone colorProfile = iota
	colorANSI16
	colorANSI256
	colorTrueColor
)

type layer uint8

const (
	fg layer = 38
	bg layer = 48
)

var (
	profileOnce sync.Once
	profile     colorProfile
	seqCache    sync.Map
)

func currentColorProfile() colorProfile {
	profileOnce.Do(func() {
		profile = detectProfile(os.LookupEnv)
	})
	return profile
}

func detectProfile(lookup func(string) (string, bool)) colorProfile {
	if _, disabled := lookup("NO_COLOR"); disabled {
		return colorNone
	}
	term, _ := lookup("TERM")
	colorTerm, _ := lookup("COLORTERM")
	term = strings.ToLower(term)
	colorTerm = strings.ToLower(colorTerm)
	switch {
	case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
		return colorTrueColor
	case strings.Contains(term, "256color"):
		return colorANSI256
	case term == "", term == "dumb":
		return colorNone
	default:
		return colorANSI16
	}
}

// rgb packs an opaque color into a comparable key.
type rgb uint32

func rgbOf(c color.Color) rgb {
	r, g, b, _ := c.RGBA()
	return rgb(r>>8)<<16 | rgb(g>>8)<<8 | rgb(b>>8)
}

func (c rgb) parts() (uint8, uint8, uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c rgb) luma() float64 {
	r, g, b := c.parts()
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// ansiState suppresses repeated escape sequences for runs of equal color.
type ansiState struct {
	profile colorProfile
	fg, bg  rgb
	dirty   bool
}

const noColor = ^rgb(0)

func newANSIState(p colorProfile) ansiState {
	return ansiState{profile: p, fg: noColor, bg: noColor}
}

func (s *ansiState) set(sb *strings.Builder, l layer, c rgb) {
	if s.profile == colorNone {
		return
	}
	cur := &s.fg
	if l == bg {
		cur = &s.bg
	}
	if *cur == c {
		return
	}
	sb.WriteString(colorSequence(s.profile, l, c))
	*cur = c
	s.dirty = true
}

func (s *ansiState) reset(sb *strings.Builder) {
	if !s.dirty {
		return
	}
	sb.WriteString("\x1b[0m")
	s.fg, s.bg, s.dirty = noColor, noColor, false
}

var ansi16 = []colorful.Color{
	{R: 0, G: 0, B: 0},
	{R: 205.0 / 255, G: 49.0 / 255, B: 49.0 / 255},
	{R: 13.0 / 255, G: 188.0 / 255, B: 121.0 / 255},
	{R: 229.0 / 255, G: 229.0 / 255, B: 16.0 / 255},
	{R: 36.0 / 255, G: 114.0 / 255, B: 200.0 / 255},
	{R: 188.0 / 255, G: 63.0 / 255, B: 188.0 / 255},
	{R: 17.0 / 255, G: 168.0 / 255, B: 205.0 / 255},
	{R: 229.0 / 255, G: 229.0 / 255, B: 229.0 / 255},
}

func colorSequence(p colorProfile, l layer, c rgb) string {
	key := uint64(p)<<40 | uint64(l)<<32 | uint64(c)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	r, g, b := c.parts()
	var seq string
	switch p {
	case colorTrueColor:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", l, r, g, b)
	case colorANSI256:
		idx := 16 + 36*(int(r)*5/255) + 6*(int(g)*5/255) + int(b)*5/255
		seq = fmt.Sprintf("\x1b[%d;5;%dm", l, idx)
	case colorANSI16:
		want := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		best, bestDist := 0, math.MaxFloat64
		for i, pc := range ansi16 {
			if d := want.DistanceRgb(pc); d < bestDist {
				best, bestDist = i, d
			}
		}
		base := 30
		if l == bg {
			base = 40
		}
		seq = fmt.Sprintf("\x1b[%dm", base+best)
	}

	seqCache.Store(key, seq)
	return seq
}
