package scene3d

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme names one of the fixed visual presets.
type Theme string

const (
	Cosmic  Theme = "cosmic"
	Neon    Theme = "neon"
	Quantum Theme = "quantum"
	Matrix  Theme = "matrix"
)

// ErrUnknownTheme is returned for names outside the preset list.
var ErrUnknownTheme = errors.New("unknown theme")

// Themes lists every preset in cycling order.
func Themes() []Theme {
	return []Theme{Cosmic, Neon, Quantum, Matrix}
}

// Next returns the preset after t, wrapping around.
func (t Theme) Next() Theme {
	all := Themes()
	for i, th := range all {
		if th == t {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

type LightKind int

const (
	Ambient LightKind = iota
	Directional
)

// Light is one entry of a theme's rig. Directional lights shine along
// Direction toward the origin.
type Light struct {
	Kind      LightKind
	Color     colorful.Color
	Intensity float64
	Direction mgl32.Vec3
}

// Fog fades geometry linearly toward Color between Near and Far view depth.
type Fog struct {
	Color colorful.Color
	Near  float64
	Far   float64
}

// Palette is the color set objects draw with.
type Palette struct {
	Primary   colorful.Color
	Secondary colorful.Color
	Accent    colorful.Color
	Floor     colorful.Color
}

// Platform is a static box the Platforms object rotates and bobs.
type Platform struct {
	Center mgl32.Vec3
	Size   mgl32.Vec3
	Color  colorful.Color
}

type DecorKind int

const (
	Starfield DecorKind = iota
	Pillars
	Orbitals
	Rain
)

// Decor is background dressing with no audio response.
type Decor struct {
	Kind  DecorKind
	Count int
	Color colorful.Color
}

// ThemeRecord is everything a preset changes. Switching presets swaps the
// whole record and nothing else.
type ThemeRecord struct {
	Name      Theme
	Lights    []Light
	Fog       Fog
	Floor     bool
	Palette   Palette
	Platforms []Platform
	Decor     []Decor
}

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

var sun = mgl32.Vec3{-0.4, -1, -0.6}

var themes = map[Theme]ThemeRecord{
	Cosmic: {
		Name: Cosmic,
		Lights: []Light{
			{Kind: Ambient, Color: hex("#3b3b8f"), Intensity: 0.35},
			{Kind: Directional, Color: hex("#c4b5fd"), Intensity: 0.9, Direction: sun},
		},
		Fog:   Fog{Color: hex("#05051a"), Near: 12, Far: 60},
		Floor: false,
		Palette: Palette{
			Primary:   hex("#4f46e5"),
			Secondary: hex("#a855f7"),
			Accent:    hex("#38bdf8"),
			Floor:     hex("#1e1b4b"),
		},
		Platforms: []Platform{
			{Center: mgl32.Vec3{-9, -3, -4}, Size: mgl32.Vec3{3, 0.4, 3}, Color: hex("#312e81")},
			{Center: mgl32.Vec3{9, -2.5, -6}, Size: mgl32.Vec3{2.5, 0.4, 2.5}, Color: hex("#4c1d95")},
			{Center: mgl32.Vec3{0, -4, -12}, Size: mgl32.Vec3{4, 0.5, 4}, Color: hex("#1e3a8a")},
		},
		Decor: []Decor{{Kind: Starfield, Count: 400, Color: hex("#e0e7ff")}},
	},
	Neon: {
		Name: Neon,
		Lights: []Light{
			{Kind: Ambient, Color: hex("#2a0033"), Intensity: 0.3},
			{Kind: Directional, Color: hex("#ff00ff"), Intensity: 0.8, Direction: sun},
			{Kind: Directional, Color: hex("#00ffff"), Intensity: 0.6, Direction: mgl32.Vec3{0.7, -0.5, -0.3}},
		},
		Fog:   Fog{Color: hex("#0d0014"), Near: 8, Far: 50},
		Floor: true,
		Palette: Palette{
			Primary:   hex("#ff00ff"),
			Secondary: hex("#00ffff"),
			Accent:    hex("#ffef00"),
			Floor:     hex("#ff2bd6"),
		},
		Platforms: []Platform{
			{Center: mgl32.Vec3{-8, -1.5, -3}, Size: mgl32.Vec3{2, 2, 2}, Color: hex("#7e22ce")},
			{Center: mgl32.Vec3{8, -1.5, -3}, Size: mgl32.Vec3{2, 2, 2}, Color: hex("#0e7490")},
			{Center: mgl32.Vec3{-5, -1, -10}, Size: mgl32.Vec3{1.5, 3, 1.5}, Color: hex("#be185d")},
			{Center: mgl32.Vec3{5, -1, -10}, Size: mgl32.Vec3{1.5, 3, 1.5}, Color: hex("#0369a1")},
		},
		Decor: []Decor{{Kind: Pillars, Count: 10, Color: hex("#f0abfc")}},
	},
	Quantum: {
		Name: Quantum,
		Lights: []Light{
			{Kind: Ambient, Color: hex("#0f3d3e"), Intensity: 0.4},
			{Kind: Directional, Color: hex("#a7f3d0"), Intensity: 0.8, Direction: sun},
		},
		Fog:   Fog{Color: hex("#001414"), Near: 12, Far: 70},
		Floor: false,
		Palette: Palette{
			Primary:   hex("#22d3ee"),
			Secondary: hex("#10b981"),
			Accent:    hex("#f0abfc"),
			Floor:     hex("#134e4a"),
		},
		Platforms: []Platform{
			{Center: mgl32.Vec3{-7, -3, -5}, Size: mgl32.Vec3{2.5, 0.3, 2.5}, Color: hex("#115e59")},
			{Center: mgl32.Vec3{7, -3, -5}, Size: mgl32.Vec3{2.5, 0.3, 2.5}, Color: hex("#155e75")},
		},
		Decor: []Decor{{Kind: Orbitals, Count: 6, Color: hex("#67e8f9")}},
	},
	Matrix: {
		Name: Matrix,
		Lights: []Light{
			{Kind: Ambient, Color: hex("#003b00"), Intensity: 0.35},
			{Kind: Directional, Color: hex("#00ff41"), Intensity: 0.9, Direction: sun},
		},
		Fog:   Fog{Color: hex("#000800"), Near: 6, Far: 45},
		Floor: true,
		Palette: Palette{
			Primary:   hex("#00ff41"),
			Secondary: hex("#008f11"),
			Accent:    hex("#d1ffd6"),
			Floor:     hex("#00a82d"),
		},
		Platforms: []Platform{
			{Center: mgl32.Vec3{-8, -2, -4}, Size: mgl32.Vec3{3, 1, 3}, Color: hex("#003b00")},
			{Center: mgl32.Vec3{8, -2, -4}, Size: mgl32.Vec3{3, 1, 3}, Color: hex("#003b00")},
			{Center: mgl32.Vec3{0, -2.5, -14}, Size: mgl32.Vec3{6, 1, 2}, Color: hex("#0d2818")},
		},
		Decor: []Decor{{Kind: Rain, Count: 60, Color: hex("#00ff41")}},
	},
}

// LookupTheme returns a copy of the record for name. Matching ignores case
// and surrounding space; anything outside the preset list is an error.
func LookupTheme(name string) (ThemeRecord, error) {
	rec, ok := themes[Theme(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return ThemeRecord{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	rec.Lights = slices.Clone(rec.Lights)
	rec.Platforms = slices.Clone(rec.Platforms)
	rec.Decor = slices.Clone(rec.Decor)
	return rec, nil
}

// MaxPlatforms is the largest platform set any preset carries.
func MaxPlatforms() int {
	n := 0
	for _, rec := range themes {
		n = max(n, len(rec.Platforms))
	}
	return n
}
