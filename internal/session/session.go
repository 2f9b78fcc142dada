// Package session ties the sampler, the active renderer and the frame loop
// into the control surface the UI drives.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/olivier-w/mngviz/internal/config"
	"github.com/olivier-w/mngviz/internal/logging"
	"github.com/olivier-w/mngviz/internal/loop"
	"github.com/olivier-w/mngviz/internal/spectrum"
	"github.com/olivier-w/mngviz/internal/visualizer"
	"github.com/olivier-w/mngviz/internal/visualizer/canvas2d"
	"github.com/olivier-w/mngviz/internal/visualizer/scene3d"
)

var (
	// ErrNoSource is returned by transport calls before a source is loaded.
	ErrNoSource = errors.New("no source loaded")
	// ErrClosed is returned by calls on a closed session.
	ErrClosed = errors.New("session closed")

	errNoTransport = errors.New("loader returned no transport")
)

// Transport is a decode graph with playback controls.
type Transport interface {
	spectrum.Graph
	Play() error
	Pause()
	SetVolume(v float64)
}

// Loader opens a transport for a file path or URL.
type Loader func(source string) (Transport, error)

// Published is one rendered frame. It owns its snapshot and image.
type Published struct {
	Frame   spectrum.Frame
	Image   image.Image
	Variant config.Variant
}

// Options configure a Session.
type Options struct {
	Variant config.Variant
	Theme   scene3d.Theme
	FPS     int
	Volume  float64
	Loader  Loader
	// LoopOptions are passed through to the frame loop.
	LoopOptions []loop.Option
}

// Session owns one decode graph at a time and publishes a rendered frame
// per tick.
type Session struct {
	loader Loader
	loop   *loop.Loop
	frames chan Published
	log    logging.Logger

	mu        sync.Mutex
	sampler   *spectrum.Sampler
	transport Transport
	source    string
	canvas    *canvas2d.Renderer
	scene     *scene3d.Scene
	renderer  visualizer.Renderer
	variant   config.Variant
	theme     scene3d.Theme
	volume    float64
	closed    bool
}

// New builds an idle session. Call Start to begin ticking.
func New(opts Options) (*Session, error) {
	if opts.Loader == nil {
		return nil, errors.New("session: nil loader")
	}
	if opts.Variant == "" {
		opts.Variant = config.Variant2D
	}
	if opts.Theme == "" {
		opts.Theme = scene3d.Cosmic
	}

	scene, err := scene3d.NewScene(opts.Theme)
	if err != nil {
		return nil, err
	}
	canvas := canvas2d.New()

	s := &Session{
		loader:  opts.Loader,
		frames:  make(chan Published, 1),
		log:     logging.Component("session"),
		canvas:  canvas,
		scene:   scene,
		theme:   opts.Theme,
		volume:  max(0, min(opts.Volume, 1)),
		variant: opts.Variant,
	}
	r, err := s.rendererFor(opts.Variant)
	if err != nil {
		return nil, err
	}
	s.renderer = r
	s.sampler, err = spectrum.NewSampler(r.Layout())
	if err != nil {
		return nil, err
	}
	s.loop = loop.New(opts.FPS, s.tick, opts.LoopOptions...)
	return s, nil
}

func (s *Session) rendererFor(v config.Variant) (visualizer.Renderer, error) {
	switch v {
	case config.Variant2D:
		return s.canvas, nil
	case config.Variant3D:
		return s.scene, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrVariant, v)
	}
}

// Start begins the frame loop.
func (s *Session) Start(ctx context.Context) { s.loop.Start(ctx) }

// Frames delivers rendered frames. Only the newest unread frame is kept.
// The channel is closed by Close.
func (s *Session) Frames() <-chan Published { return s.frames }

// LoadSource replaces the decode graph with one for source and resets the
// 3D scene. The loader runs without the session lock so ticks keep flowing
// while a file or stream opens. A failure is logged, leaves the session
// idle, and is returned.
func (s *Session) LoadSource(source string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	t, err := s.loader(source)
	switch {
	case err != nil:
		err = fmt.Errorf("loading %s: %w", source, err)
	case t == nil:
		err = fmt.Errorf("loading %s: %w", source, errNoTransport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if t != nil {
			_ = t.Close()
		}
		return ErrClosed
	}

	s.transport = nil
	s.source = ""
	err = s.sampler.Setup(func() (spectrum.Graph, error) {
		if err != nil {
			return nil, err
		}
		t.SetVolume(s.volume)
		s.transport = t
		return t, nil
	})

	if scene, serr := scene3d.NewScene(s.theme); serr == nil {
		w, h := s.scene.Size()
		scene.Resize(w, h)
		s.scene = scene
		if s.variant == config.Variant3D {
			s.renderer = scene
		}
	}
	if err != nil {
		return err
	}
	s.source = source
	s.log.Info("source loaded", logging.Fields{"source": source})
	return nil
}

// Source returns the loaded path or URL, or "" when idle.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Transport returns the active transport, or nil when idle.
func (s *Session) Transport() Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport
}

// Play starts playback. Failures are logged and returned; the visuals keep
// running at whatever state the sampler holds.
func (s *Session) Play() error {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t == nil {
		return ErrNoSource
	}
	if err := t.Play(); err != nil {
		s.log.Error(err, "play failed")
		return err
	}
	return nil
}

// Pause stops playback. The last levels stay on screen.
func (s *Session) Pause() {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t != nil {
		t.Pause()
	}
}

// Playing reports whether the transport is producing audio.
func (s *Session) Playing() bool {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	return t != nil && t.Playing()
}

// SetVolume clamps v to [0,1] and applies it to the output gain.
func (s *Session) SetVolume(v float64) {
	v = max(0, min(v, 1))
	s.mu.Lock()
	s.volume = v
	t := s.transport
	s.mu.Unlock()
	if t != nil {
		t.SetVolume(v)
	}
}

// Volume returns the current output gain.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SelectTheme swaps the 3D theme. It takes effect whenever the 3D variant
// is showing.
func (s *Session) SelectTheme(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.scene.SelectTheme(name); err != nil {
		return err
	}
	s.theme = s.scene.Theme()
	return nil
}

// Theme returns the active 3D theme.
func (s *Session) Theme() scene3d.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetVariant switches renderers and the sampler band layout. The decode
// graph keeps playing.
func (s *Session) SetVariant(v config.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.rendererFor(v)
	if err != nil {
		return err
	}
	if err := s.sampler.SetLayout(r.Layout()); err != nil {
		return err
	}
	s.renderer = r
	s.variant = v
	return nil
}

// Variant returns the active variant.
func (s *Session) Variant() config.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variant
}

// Resize sets the 3D viewport size. The 2D canvas is fixed.
func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.Resize(width, height)
}

func (s *Session) tick(elapsed time.Duration) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	f, _ := s.sampler.Sample(elapsed)
	img := s.renderer.Render(f)
	pub := Published{Frame: f.Clone(), Image: cloneImage(img), Variant: s.variant}
	s.mu.Unlock()

	s.publish(pub)
}

// publish replaces any unread frame with p.
func (s *Session) publish(p Published) {
	for {
		select {
		case s.frames <- p:
			return
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

// Close cancels the frame loop, then tears down the decode graph. Safe to
// call twice.
func (s *Session) Close() error {
	s.loop.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.sampler.Teardown()
	s.transport = nil
	close(s.frames)
	return nil
}

func cloneImage(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		out := &image.RGBA{
			Pix:    append([]byte(nil), rgba.Pix...),
			Stride: rgba.Stride,
			Rect:   rgba.Rect,
		}
		return out
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
