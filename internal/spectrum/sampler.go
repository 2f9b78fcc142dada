package spectrum

import (
	"time"

	"github.com/olivier-w/mngviz/internal/logging"
)

// Source yields the newest pre-gain mono samples of a playing stream.
type Source interface {
	Samples(n int) []float64
	Playing() bool
}

// Graph is a built decode graph: something to sample and something to close.
type Graph interface {
	Source
	Close() error
}

// Opener builds a fresh decode graph.
type Opener func() (Graph, error)

// Sampler owns the decode graph and reduces it to one Frame per tick.
type Sampler struct {
	layout   Layout
	analyser *Analyser
	graph    Graph
	snapshot Snapshot
	last     Frame
	log      logging.Logger
}

// NewSampler returns an idle sampler for the layout.
func NewSampler(layout Layout) (*Sampler, error) {
	a, err := NewAnalyser(layout.Window)
	if err != nil {
		return nil, err
	}
	s := &Sampler{
		layout:   layout,
		analyser: a,
		snapshot: layout.NewSnapshot(),
		log:      logging.Component("sampler"),
	}
	s.last.Snapshot = s.snapshot
	return s, nil
}

// Layout returns the band layout the sampler publishes with.
func (s *Sampler) Layout() Layout { return s.layout }

// SetLayout switches to a new band layout, keeping the current graph. The
// published state restarts from zero.
func (s *Sampler) SetLayout(layout Layout) error {
	if layout == s.layout {
		return nil
	}
	a, err := NewAnalyser(layout.Window)
	if err != nil {
		return err
	}
	s.layout = layout
	s.analyser = a
	s.snapshot = layout.NewSnapshot()
	s.last = Frame{Snapshot: s.snapshot, Time: s.last.Time}
	return nil
}

// Setup tears down any current graph and builds a new one. On failure the
// sampler stays idle at the zero baseline and the error is logged and returned.
func (s *Sampler) Setup(open Opener) error {
	s.Teardown()

	g, err := open()
	if err != nil {
		s.log.Error(err, "decode graph setup failed")
		return err
	}
	if g == nil {
		return nil
	}
	s.graph = g
	s.log.Debug("decode graph ready", logging.Fields{"window": s.layout.Window, "bins": s.layout.Bins})
	return nil
}

// Ready reports whether a graph is attached.
func (s *Sampler) Ready() bool { return s.graph != nil }

// Sample pulls a fresh snapshot when the graph is playing and derives the
// levels from it. Otherwise the previous snapshot and levels are returned
// with the new timestamp and ok is false. The returned snapshot is reused
// by the next call.
func (s *Sampler) Sample(elapsed time.Duration) (f Frame, ok bool) {
	s.last.Time = elapsed.Seconds()
	if s.graph == nil || !s.graph.Playing() {
		return s.last, false
	}

	samples := s.graph.Samples(s.layout.Window)
	s.analyser.ByteFrequencyData(samples, s.snapshot)
	s.last.Snapshot = s.snapshot
	s.last.Levels = ComputeLevels(s.snapshot, s.layout)
	return s.last, true
}

// Last returns the most recently published frame.
func (s *Sampler) Last() Frame { return s.last }

// Teardown closes the graph and resets the published state to zero.
func (s *Sampler) Teardown() {
	if s.graph != nil {
		if err := s.graph.Close(); err != nil {
			s.log.Warn("closing decode graph", logging.Fields{"error": err.Error()})
		}
		s.graph = nil
	}
	s.analyser.Reset()
	clear(s.snapshot)
	s.last = Frame{Snapshot: s.snapshot}
}

// Clone returns a copy of f whose snapshot does not alias the sampler buffer.
func (f Frame) Clone() Frame {
	f.Snapshot = append(Snapshot(nil), f.Snapshot...)
	return f
}
