package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"
)

type stubDecoder struct {
	*bytes.Reader
	rate int
}

func (d *stubDecoder) Length() int64     { return d.Size() }
func (d *stubDecoder) SampleRate() int   { return d.rate }
func (d *stubDecoder) ChannelCount() int { return outChannels }

type stubOutput struct {
	src        io.Reader
	playing    bool
	volume     float64
	closed     int
	bufferSize int
	buffered   int
}

func (o *stubOutput) Play()               { o.playing = true }
func (o *stubOutput) Pause()              { o.playing = false }
func (o *stubOutput) IsPlaying() bool     { return o.playing }
func (o *stubOutput) SetVolume(v float64) { o.volume = v }
func (o *stubOutput) Close() error        { o.closed++; return nil }
func (o *stubOutput) SetBufferSize(n int) { o.bufferSize = n }
func (o *stubOutput) BufferedSize() int   { return o.buffered }

// pull simulates the device draining n bytes through the graph.
func (o *stubOutput) pull(n int) {
	buf := make([]byte, n)
	_, _ = io.ReadFull(o.src, buf)
}

type stubContext struct {
	out       *stubOutput
	resumeErr error
	resumes   int
}

func (c *stubContext) NewPlayer(r io.Reader) outputNode {
	c.out = &stubOutput{src: r}
	return c.out
}

func (c *stubContext) Resume() error {
	c.resumes++
	return c.resumeErr
}

type countingCloser struct{ calls int }

func (c *countingCloser) Close() error { c.calls++; return nil }

func pcmFrames(vals ...int16) []byte {
	b := make([]byte, len(vals)*frameBytes)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(b[i*4+2:], uint16(v))
	}
	return b
}

func newTestPlayer(t *testing.T, pcm []byte, ctx *stubContext) (*Player, *countingCloser) {
	t.Helper()
	closer := &countingCloser{}
	dec := &stubDecoder{Reader: bytes.NewReader(pcm), rate: contextRate}
	p := newPlayer("test.wav", dec, closer, ctx)
	t.Cleanup(func() { _ = p.Close() })
	return p, closer
}

func TestNewPlayerStartsPausedAtDefaultVolume(t *testing.T) {
	ctx := &stubContext{}
	p, _ := newTestPlayer(t, pcmFrames(1, 2, 3), ctx)

	if !p.Paused() || p.Playing() {
		t.Fatal("expected a new player to start paused")
	}
	if ctx.out.volume != DefaultVolume {
		t.Fatalf("expected output gain %g, got %g", DefaultVolume, ctx.out.volume)
	}
}

func TestPlayResumesContextFirst(t *testing.T) {
	ctx := &stubContext{}
	p, _ := newTestPlayer(t, pcmFrames(1), ctx)

	if err := p.Play(); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
	if ctx.resumes != 1 {
		t.Fatalf("expected one resume, got %d", ctx.resumes)
	}
	if !p.Playing() {
		t.Fatal("expected player to be playing")
	}
}

func TestPlayResumeFailureStaysPaused(t *testing.T) {
	blocked := errors.New("not allowed")
	ctx := &stubContext{resumeErr: blocked}
	p, _ := newTestPlayer(t, pcmFrames(1), ctx)

	err := p.Play()
	if !errors.Is(err, blocked) {
		t.Fatalf("expected wrapped resume error, got %v", err)
	}
	if p.Playing() || ctx.out.playing {
		t.Fatal("expected output to stay stopped after failed resume")
	}
}

func TestSetVolumeClampsAndLeavesTapUntouched(t *testing.T) {
	ctx := &stubContext{}
	p, _ := newTestPlayer(t, pcmFrames(16384, 16384, 16384, 16384), ctx)

	p.SetVolume(0)
	if ctx.out.volume != 0 {
		t.Fatalf("expected zero output gain, got %g", ctx.out.volume)
	}
	ctx.out.pull(4 * frameBytes)

	got := p.Samples(4)
	if len(got) != 4 {
		t.Fatalf("expected 4 tapped samples, got %d", len(got))
	}
	for _, s := range got {
		if s != 0.5 {
			t.Fatalf("expected pre-gain sample 0.5, got %g", s)
		}
	}

	p.SetVolume(3)
	if p.Volume() != 1 || ctx.out.volume != 1 {
		t.Fatalf("expected volume clamped to 1, got %g / %g", p.Volume(), ctx.out.volume)
	}
	p.SetVolume(-1)
	if p.Volume() != 0 {
		t.Fatalf("expected volume clamped to 0, got %g", p.Volume())
	}
}

func TestPlayerCloseRunsOnce(t *testing.T) {
	ctx := &stubContext{}
	p, closer := newTestPlayer(t, pcmFrames(1), ctx)

	_ = p.Close()
	_ = p.Close()

	if closer.calls != 1 || ctx.out.closed != 1 {
		t.Fatalf("expected single close, got source=%d output=%d", closer.calls, ctx.out.closed)
	}
	if p.Playing() {
		t.Fatal("expected closed player to report not playing")
	}
}

func TestPositionTracksDecodedBytes(t *testing.T) {
	ctx := &stubContext{}
	frames := make([]int16, contextRate/10)
	p, _ := newTestPlayer(t, pcmFrames(frames...), ctx)

	if p.Duration() != 100*time.Millisecond {
		t.Fatalf("expected 100ms duration, got %v", p.Duration())
	}
	ctx.out.pull(len(frames) / 2 * frameBytes)
	if got := p.Position(); got != 50*time.Millisecond {
		t.Fatalf("expected 50ms position, got %v", got)
	}
}

func TestSamplesSkipUnplayedOutputBuffer(t *testing.T) {
	ctx := &stubContext{}
	p, _ := newTestPlayer(t, pcmFrames(1024, 2048, 3072, 4096, 5120, 6144, 7168, 8192), ctx)

	if ctx.out.bufferSize != outputBufferBytes {
		t.Fatalf("expected output buffer %d bytes, got %d", outputBufferBytes, ctx.out.bufferSize)
	}

	ctx.out.pull(8 * frameBytes)
	ctx.out.buffered = 2 * frameBytes

	got := p.Samples(2)
	want := []float64{5120.0 / 32768, 6144.0 / 32768}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %g, got %g", i, want[i], got[i])
		}
	}

	ctx.out.buffered = 8 * frameBytes
	if got := p.Samples(2); len(got) != 0 {
		t.Fatalf("expected nothing audible yet, got %v", got)
	}
}
