package player

import "io"

// rateReader sits between the decoder and the tap, picking the nearest
// source frame for each output frame so any decoder rate plays on the
// fixed-rate output context.
type rateReader struct {
	source io.Reader
	step   float64 // source frames per output frame
	phase  float64
	carry  []byte // read but not yet consumed source frames
	tmp    []byte // reusable read buffer (grow-only)
}

func newRateReader(source io.Reader, srcRate, dstRate int) *rateReader {
	step := 1.0
	if srcRate > 0 && dstRate > 0 {
		step = float64(srcRate) / float64(dstRate)
	}
	return &rateReader{source: source, step: step}
}

func (r *rateReader) Read(p []byte) (int, error) {
	if r.step == 1 {
		return r.source.Read(p)
	}

	outFrames := len(p) / frameBytes
	if outFrames == 0 {
		return 0, nil
	}

	need := int(r.phase+float64(outFrames)*r.step) + 1
	buf := append(r.tmp[:0], r.carry...)
	have := len(buf) / frameBytes

	var err error
	if need > have {
		want := (need - have) * frameBytes
		start := len(buf)
		buf = append(buf, make([]byte, want)...)
		var n int
		n, err = io.ReadFull(r.source, buf[start:])
		buf = buf[:start+n-n%frameBytes]
	}
	r.tmp = buf

	got := len(buf) / frameBytes
	written := 0
	for written < outFrames {
		idx := int(r.phase)
		if idx >= got {
			break
		}
		copy(p[written*frameBytes:], buf[idx*frameBytes:(idx+1)*frameBytes])
		written++
		r.phase += r.step
	}

	consumed := min(int(r.phase), got)
	r.phase -= float64(consumed)
	r.carry = append(r.carry[:0], buf[consumed*frameBytes:]...)

	if written > 0 {
		return written * frameBytes, nil
	}
	if err == nil || err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return 0, err
}
