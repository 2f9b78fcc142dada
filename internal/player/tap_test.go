package player

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestRingBufferKeepsNewestBytes(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Write([]byte{1, 2, 3})
	rb.Write([]byte{4, 5})

	if got := rb.Read(4); !bytes.Equal(got, []byte{2, 3, 4, 5}) {
		t.Fatalf("expected newest bytes in order, got %v", got)
	}
	if got := rb.Read(2); !bytes.Equal(got, []byte{4, 5}) {
		t.Fatalf("expected last two bytes, got %v", got)
	}

	rb.Write([]byte{9, 8, 7, 6, 5, 4})
	if got := rb.Read(10); !bytes.Equal(got, []byte{7, 6, 5, 4}) {
		t.Fatalf("expected oversized write to keep tail, got %v", got)
	}

	rb.Clear()
	if rb.Len() != 0 || rb.Read(1) != nil {
		t.Fatal("expected empty ring after clear")
	}
}

// chunkReader returns its data in fixed-size pieces.
type chunkReader struct {
	data  []byte
	chunk int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := min(len(p), c.chunk, len(c.data))
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestTapReaderRealignsPartialFrames(t *testing.T) {
	src := &chunkReader{data: pcmFrames(-32768, 0, 32767), chunk: 3}
	tap := newTapReader(src, 16)

	if _, err := io.ReadAll(tap); err != nil {
		t.Fatal(err)
	}

	got := tap.Samples(3)
	want := []float64{-1, 0, 32767.0 * 2 / 65536}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %g, got %g", i, want[i], got[i])
		}
	}
}

func TestRateReaderHalvesFrames(t *testing.T) {
	src := bytes.NewReader(pcmFrames(1, 2, 3, 4, 5, 6, 7, 8))
	r := newRateReader(src, 2*contextRate, contextRate)

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, pcmFrames(1, 3, 5, 7)) {
		t.Fatalf("expected every other frame, got %v", out)
	}
}

func TestRateReaderPassesThroughMatchingRate(t *testing.T) {
	in := pcmFrames(1, 2, 3)
	r := newRateReader(bytes.NewReader(in), contextRate, contextRate)
	out, _ := io.ReadAll(r)
	if !bytes.Equal(out, in) {
		t.Fatal("expected identical output at matching rate")
	}
}

func TestPCMCursorTargetClampsAndAligns(t *testing.T) {
	c := pcmCursor{pos: 8, total: 41}
	if got := c.target(37, io.SeekStart); got != 36 {
		t.Fatalf("expected aligned 36, got %d", got)
	}
	if got := c.target(-100, io.SeekCurrent); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := c.target(10, io.SeekEnd); got != 40 {
		t.Fatalf("expected clamp to aligned end 40, got %d", got)
	}
}

func TestDemoIsDeterministicForFixedClock(t *testing.T) {
	at := time.Unix(100, 0)
	clock := func() time.Time { return at }

	a := NewDemo(clock)
	b := NewDemo(clock)
	at = at.Add(time.Second)

	sa, sb := a.Samples(256), b.Samples(256)
	if len(sa) != 256 {
		t.Fatalf("expected 256 samples, got %d", len(sa))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("sample %d differs: %g vs %g", i, sa[i], sb[i])
		}
	}
	if a.Playing() {
		t.Fatal("expected demo to start paused")
	}
	_ = a.Play()
	if !a.Playing() {
		t.Fatal("expected demo to play after Play")
	}
}

func TestReadMetadataFallsBackToName(t *testing.T) {
	if got := ReadMetadata("/music/Track One.flac").Title; got != "Track One" {
		t.Fatalf("expected filename title, got %q", got)
	}
	if got := ReadMetadata("https://example.com/live/radio.mp3?x=1").Title; got != "radio" {
		t.Fatalf("expected URL base title, got %q", got)
	}
}
