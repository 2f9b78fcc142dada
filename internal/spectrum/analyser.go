package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	defaultSmoothing = 0.8
	defaultMinDB     = -100.0
	defaultMaxDB     = -30.0

	minWindow = 32
	maxWindow = 32768
)

// Analyser turns the newest block of mono samples into a byte spectrum:
// Blackman window, FFT, per-bin exponential smoothing, then a linear map
// of [MinDB,MaxDB] onto [0,255].
type Analyser struct {
	window    int
	smoothing float64
	minDB     float64
	maxDB     float64

	buf  []float64
	prev []float64
}

// NewAnalyser returns an analyser for the given transform window, which
// must be a power of two between 32 and 32768.
func NewAnalyser(windowSize int) (*Analyser, error) {
	if windowSize < minWindow || windowSize > maxWindow || windowSize&(windowSize-1) != 0 {
		return nil, fmt.Errorf("analyser window %d: must be a power of two in [%d,%d]", windowSize, minWindow, maxWindow)
	}
	return &Analyser{
		window:    windowSize,
		smoothing: defaultSmoothing,
		minDB:     defaultMinDB,
		maxDB:     defaultMaxDB,
		buf:       make([]float64, windowSize),
		prev:      make([]float64, windowSize/2),
	}, nil
}

// Window returns the transform size.
func (a *Analyser) Window() int { return a.window }

// Bins returns the number of frequency bins, Window()/2.
func (a *Analyser) Bins() int { return a.window / 2 }

// Reset clears the smoothing history.
func (a *Analyser) Reset() {
	clear(a.prev)
}

// ByteFrequencyData writes min(len(dst), Bins()) magnitudes into dst.
// samples holds the newest audio last; short input is zero-padded at the front.
func (a *Analyser) ByteFrequencyData(samples []float64, dst Snapshot) {
	if len(samples) > a.window {
		samples = samples[len(samples)-a.window:]
	}
	pad := a.window - len(samples)
	clear(a.buf[:pad])
	copy(a.buf[pad:], samples)

	window.Apply(a.buf, window.Blackman)
	coeffs := fft.FFTReal(a.buf)

	n := float64(a.window)
	scale := MaxMagnitude / (a.maxDB - a.minDB)
	bins := a.Bins()
	if len(dst) < bins {
		bins = len(dst)
	}
	for k := range a.Bins() {
		mag := cmplx.Abs(coeffs[k]) / n
		a.prev[k] = a.smoothing*a.prev[k] + (1-a.smoothing)*mag
		if k >= bins {
			continue
		}
		dst[k] = a.toByte(a.prev[k], scale)
	}
}

func (a *Analyser) toByte(mag, scale float64) uint8 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := math.Floor((db - a.minDB) * scale)
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= MaxMagnitude:
		return MaxMagnitude
	default:
		return uint8(v)
	}
}
