package player

import (
	"encoding/binary"
	"io"
	"sync"
)

const frameBytes = outChannels * 2

// tapReader sits directly in front of the output node and copies every
// whole PCM frame it passes into a ring. Gain is applied later by the
// output node, so the ring always holds pre-gain audio.
type tapReader struct {
	source io.Reader
	ring   *RingBuffer
	carry  []byte
	mu     sync.Mutex
}

func newTapReader(source io.Reader, frames int) *tapReader {
	return &tapReader{
		source: source,
		ring:   NewRingBuffer(frames * frameBytes),
	}
}

func (t *tapReader) Read(p []byte) (int, error) {
	n, err := t.source.Read(p)
	if n > 0 {
		t.capture(p[:n])
	}
	return n, err
}

func (t *tapReader) capture(b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.carry) > 0 {
		need := frameBytes - len(t.carry)
		if len(b) < need {
			t.carry = append(t.carry, b...)
			return
		}
		t.carry = append(t.carry, b[:need]...)
		t.ring.Write(t.carry)
		t.carry = t.carry[:0]
		b = b[need:]
	}
	whole := len(b) - len(b)%frameBytes
	if whole > 0 {
		t.ring.Write(b[:whole])
	}
	t.carry = append(t.carry, b[whole:]...)
}

// Samples returns the newest n frames mixed to mono in [-1,1], oldest first.
// Fewer are returned while the ring is still filling.
func (t *tapReader) Samples(n int) []float64 {
	return t.samplesBefore(n, 0)
}

// samplesBefore is Samples for the window ending lag frames before the
// newest captured frame.
func (t *tapReader) samplesBefore(n, lag int) []float64 {
	lag = max(lag, 0)
	raw := t.ring.Read((n + lag) * frameBytes)
	if len(raw) <= lag*frameBytes {
		return nil
	}
	raw = raw[:len(raw)-lag*frameBytes]
	out := make([]float64, len(raw)/frameBytes)
	for i := range out {
		l := int16(binary.LittleEndian.Uint16(raw[i*frameBytes:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*frameBytes+2:]))
		out[i] = (float64(l) + float64(r)) / 65536.0
	}
	return out
}

func (t *tapReader) reset() {
	t.mu.Lock()
	t.carry = t.carry[:0]
	t.mu.Unlock()
	t.ring.Clear()
}
