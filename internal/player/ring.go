package player

import "sync"

// RingBuffer is a thread-safe circular byte buffer holding the most recent
// PCM that reached the output node.
type RingBuffer struct {
	buf  []byte
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

// NewRingBuffer creates a ring buffer with the given capacity in bytes.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		buf:  make([]byte, size),
		size: size,
	}
}

// Write appends data to the ring buffer, overwriting oldest data if full.
func (rb *RingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(p) >= rb.size {
		copy(rb.buf, p[len(p)-rb.size:])
		rb.w = 0
		rb.len = rb.size
		return
	}
	n := copy(rb.buf[rb.w:], p)
	if n < len(p) {
		copy(rb.buf, p[n:])
	}
	rb.w = (rb.w + len(p)) % rb.size
	rb.len = min(rb.len+len(p), rb.size)
}

// Read returns up to n most recent bytes from the buffer, oldest first.
func (rb *RingBuffer) Read(n int) []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n = min(n, rb.len)
	if n <= 0 {
		return nil
	}

	out := make([]byte, n)
	start := (rb.w - n + rb.size) % rb.size
	k := copy(out, rb.buf[start:min(start+n, rb.size)])
	copy(out[k:], rb.buf[:n-k])
	return out
}

// Len returns the number of buffered bytes.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.len
}

// Clear resets the buffer.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.len = 0
}
