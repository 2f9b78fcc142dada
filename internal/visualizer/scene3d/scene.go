// Package scene3d renders the retained-object variant: a small scene of
// procedural objects that are built once and only ever transformed, viewed
// through a perspective camera and painted back to front.
package scene3d

import (
	"image"
	"sync"

	"github.com/fogleman/gg"
	"github.com/olivier-w/mngviz/internal/spectrum"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

// Scene owns the objects, the active theme and the viewport surface.
type Scene struct {
	sphere    *Sphere
	bars      *BarRing
	particles *ParticleCloud
	platforms *Platforms
	rings     *Rings
	objects   []Object

	dc *gg.Context

	mu     sync.Mutex
	theme  ThemeRecord
	width  int
	height int
}

// NewScene builds every object at its initial transform under theme.
func NewScene(theme Theme) (*Scene, error) {
	rec, err := LookupTheme(string(theme))
	if err != nil {
		return nil, err
	}
	s := &Scene{
		sphere:    NewSphere(),
		bars:      NewBarRing(),
		particles: NewParticleCloud(),
		platforms: NewPlatforms(),
		rings:     NewRings(),
		theme:     rec,
		width:     DefaultWidth,
		height:    DefaultHeight,
	}
	s.objects = []Object{s.sphere, s.bars, s.particles, s.platforms, s.rings}
	return s, nil
}

func (s *Scene) Name() string { return "3d" }

func (s *Scene) Layout() spectrum.Layout { return spectrum.Layout3D }

// Objects returns the retained objects in update order.
func (s *Scene) Objects() []Object { return s.objects }

// SelectTheme swaps the active theme record. Objects and audio state are
// left as they are.
func (s *Scene) SelectTheme(name string) error {
	rec, err := LookupTheme(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.theme = rec
	s.mu.Unlock()
	return nil
}

// Theme returns the active preset.
func (s *Scene) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme.Name
}

// Resize sets the viewport size used from the next Render on.
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

// Size returns the current viewport size.
func (s *Scene) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Render updates every object once for f and paints the viewport.
func (s *Scene) Render(f spectrum.Frame) image.Image {
	s.mu.Lock()
	rec, w, h := s.theme, s.width, s.height
	s.mu.Unlock()

	in := Input{Snapshot: f.Snapshot, Levels: f.Levels, Palette: rec.Palette}
	for _, o := range s.objects {
		o.Update(f.Time, in)
	}

	if s.dc == nil || s.dc.Width() != w || s.dc.Height() != h {
		s.dc = gg.NewContext(w, h)
	}
	p := newPainter(s.dc, newCamera(f.Time, w, h), rec)
	p.sky(f.Time)
	p.floor()
	p.decor(f.Time)
	p.particleCloud(s.particles)
	p.platformSet(s.platforms)
	p.ringSet(s.rings)
	p.barRing(s.bars)
	p.sphereMesh(s.sphere)
	p.flush()
	return s.dc.Image()
}
