package player

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/olivier-w/mngviz/internal/media"
)

const (
	// contextRate is the fixed rate of the shared output context.
	contextRate = 44100
	// tapFrames is how much recent audio the analysis tap keeps. It must
	// cover the output buffer plus the largest analysis window.
	tapFrames = 16384
	// outputBufferBytes bounds how far the output node reads ahead of what
	// is audible: 100ms.
	outputBufferBytes = contextRate / 10 * frameBytes

	DefaultVolume = 0.7
)

// outputNode is the gain stage and speaker: an oto player in production.
type outputNode interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(v float64)
	SetBufferSize(bufferSize int)
	BufferedSize() int
	Close() error
}

// audioContext owns the platform audio device.
type audioContext interface {
	NewPlayer(r io.Reader) outputNode
	Resume() error
}

type otoContext struct {
	ctx *oto.Context
}

func (c otoContext) NewPlayer(r io.Reader) outputNode { return c.ctx.NewPlayer(r) }
func (c otoContext) Resume() error                    { return c.ctx.Resume() }

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide output context. oto allows only one.
func initOto() (audioContext, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   contextRate,
			ChannelCount: outChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("audio device unavailable: %w", otoInitErr)
	}
	return otoContext{ctx: globalOtoCtx}, nil
}

// countingReader wraps an io.Reader and tracks bytes read.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

// Player is one decode graph: decoder -> rate conversion -> analysis tap ->
// output node. It starts paused.
type Player struct {
	source      string
	closer      io.Closer
	decoder     audioDecoder
	counter     *countingReader
	tap         *tapReader
	ctx         audioContext
	out         outputNode
	duration    time.Duration
	bytesPerSec int64
	volume      float64
	paused      bool
	done        chan struct{}
	stopMon     chan struct{}
	closeOnce   sync.Once
	mu          sync.Mutex
}

// New opens source (a file path or URL) and wires it to the audio device.
func New(source string) (*Player, error) {
	dec, closer, err := openSource(source)
	if err != nil {
		return nil, err
	}

	ctx, err := initOto()
	if err != nil {
		closer.Close()
		return nil, err
	}

	return newPlayer(source, dec, closer, ctx), nil
}

func openSource(source string) (audioDecoder, io.Closer, error) {
	if media.IsURL(source) {
		d, err := newStreamDecoder(source)
		if err != nil {
			return nil, nil, err
		}
		return d, d, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, nil, err
	}
	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return dec, f, nil
}

func newPlayer(source string, dec audioDecoder, closer io.Closer, ctx audioContext) *Player {
	bps := int64(dec.SampleRate()) * frameBytes
	var dur time.Duration
	if total := dec.Length(); total > 0 && bps > 0 {
		dur = time.Duration(float64(total) / float64(bps) * float64(time.Second))
	}

	counter := &countingReader{reader: dec}
	tap := newTapReader(newRateReader(counter, dec.SampleRate(), contextRate), tapFrames)

	p := &Player{
		source:      source,
		closer:      closer,
		decoder:     dec,
		counter:     counter,
		tap:         tap,
		ctx:         ctx,
		duration:    dur,
		bytesPerSec: bps,
		volume:      DefaultVolume,
		paused:      true,
		done:        make(chan struct{}),
		stopMon:     make(chan struct{}),
	}
	p.out = ctx.NewPlayer(tap)
	p.out.SetBufferSize(outputBufferBytes)
	p.out.SetVolume(p.volume)

	go p.monitor()
	return p
}

func (p *Player) monitor() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopMon:
			return
		case <-ticker.C:
		}
		total := p.decoder.Length()
		if total > 0 && p.counter.Pos() >= total && !p.Playing() {
			close(p.done)
			return
		}
	}
}

// Source returns the path or URL the player was opened with.
func (p *Player) Source() string { return p.source }

// Done returns a channel that closes when playback reaches the end.
func (p *Player) Done() <-chan struct{} { return p.done }

// Play resumes the audio context if it is suspended and starts output.
// A resume failure leaves the player paused and is returned.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ctx.Resume(); err != nil {
		return fmt.Errorf("resuming audio context: %w", err)
	}
	p.out.Play()
	p.paused = false
	return nil
}

// Pause stops output without losing position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out != nil {
		p.out.Pause()
	}
	p.paused = true
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Playing reports whether audio is flowing to the output node.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.paused && p.out != nil && p.out.IsPlaying()
}

// Samples returns the n pre-gain samples mixed to mono that are reaching
// the speaker now. Bytes the output node has pulled but not yet played are
// skipped.
func (p *Player) Samples(n int) []float64 {
	return p.tap.samplesBefore(n, p.out.BufferedSize()/frameBytes)
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	if p.bytesPerSec <= 0 {
		return 0
	}
	secs := float64(p.counter.Pos()) / float64(p.bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track, or 0 for live streams.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets the output gain, clamped to 0.0 - 1.0. The analysis tap
// is upstream of the gain and never sees the change.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v = max(0, min(v, 1))
	p.volume = v
	if p.out != nil {
		p.out.SetVolume(v)
	}
}

// Close stops output and releases the source. It is safe to call twice.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if p.stopMon != nil {
			close(p.stopMon)
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		p.paused = true
		if p.out != nil {
			p.out.Pause()
			err = p.out.Close()
		}
		if p.closer != nil {
			if cerr := p.closer.Close(); err == nil {
				err = cerr
			}
		}
		if p.tap != nil {
			p.tap.reset()
		}
	})
	return err
}
