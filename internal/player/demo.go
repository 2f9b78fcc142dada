package player

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

type demoOsc struct {
	freq    float64
	amp     float64
	ampMod  float64
	ampModF float64
	freqMod float64
	freqMF  float64
}

// Demo is a synthetic decode graph: an oscillator bank sampled against the
// wall clock. It needs no audio device, so it backs -demo and headless runs.
type Demo struct {
	sampleRate float64
	oscs       []demoOsc
	now        func() time.Time
	start      time.Time
	rng        *rand.Rand
	volume     float64
	playing    bool
	mu         sync.Mutex
}

// NewDemo returns a paused demo source. now may be nil to use time.Now.
func NewDemo(now func() time.Time) *Demo {
	if now == nil {
		now = time.Now
	}
	return &Demo{
		sampleRate: contextRate,
		now:        now,
		start:      now(),
		rng:        rand.New(rand.NewSource(1)),
		volume:     DefaultVolume,
		oscs: []demoOsc{
			{freq: 55, amp: 0.8, ampMod: 0.9, ampModF: 2.1, freqMod: 10, freqMF: 2.1},
			{freq: 80, amp: 0.6, ampMod: 0.8, ampModF: 1.05},
			{freq: 150, amp: 0.4, ampMod: 0.7, ampModF: 3.3},
			{freq: 220, amp: 0.35, ampMod: 0.6, ampModF: 1.7},
			{freq: 440, amp: 0.3, ampMod: 0.8, ampModF: 0.8},
			{freq: 660, amp: 0.25, ampMod: 0.75, ampModF: 0.6},
			{freq: 880, amp: 0.2, ampMod: 0.6, ampModF: 1.5},
			{freq: 1800, amp: 0.1, ampMod: 0.6, ampModF: 3.0},
			{freq: 3600, amp: 0.06, ampMod: 0.4, ampModF: 2.2},
			{freq: 8000, amp: 0.03, ampMod: 0.4, ampModF: 5.5},
			{freq: 12000, amp: 0.02, ampMod: 0.3, ampModF: 3.5},
		},
	}
}

// Samples synthesizes the n samples ending at the current clock reading.
func (d *Demo) Samples(n int) []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	end := d.now().Sub(d.start).Seconds()
	dt := 1 / d.sampleRate
	out := make([]float64, n)
	for i := range out {
		t := end - float64(n-1-i)*dt
		var s float64
		for _, o := range d.oscs {
			amp := o.amp * (1 - o.ampMod + o.ampMod*math.Abs(math.Sin(2*math.Pi*o.ampModF*t)))
			freq := o.freq + o.freqMod*math.Sin(2*math.Pi*o.freqMF*t)
			s += amp * math.Sin(2*math.Pi*freq*t)
		}
		s += (d.rng.Float64()*2 - 1) * 0.01
		out[i] = s * 0.3
	}
	return out
}

func (d *Demo) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

func (d *Demo) Play() error {
	d.mu.Lock()
	d.playing = true
	d.mu.Unlock()
	return nil
}

func (d *Demo) Pause() {
	d.mu.Lock()
	d.playing = false
	d.mu.Unlock()
}

// SetVolume only records the value; the demo has no output node.
func (d *Demo) SetVolume(v float64) {
	d.mu.Lock()
	d.volume = max(0, min(v, 1))
	d.mu.Unlock()
}

func (d *Demo) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

func (d *Demo) Close() error {
	d.Pause()
	return nil
}
