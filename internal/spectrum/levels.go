package spectrum

import "gonum.org/v1/gonum/stat"

// Levels are the normalized band energies, each in [0,1].
type Levels struct {
	Bass   float64
	Mid    float64
	Treble float64
}

// Sum returns bass+mid+treble.
func (l Levels) Sum() float64 { return l.Bass + l.Mid + l.Treble }

// Raw returns the levels rescaled to the 0-255 magnitude range.
func (l Levels) Raw() (bass, mid, treble float64) {
	return l.Bass * MaxMagnitude, l.Mid * MaxMagnitude, l.Treble * MaxMagnitude
}

// Frame is what one tick publishes: a snapshot, the levels derived from
// that same snapshot, and the seconds elapsed since the session started.
type Frame struct {
	Snapshot Snapshot
	Levels   Levels
	Time     float64
}

// ComputeLevels averages each band range of s and normalizes by 255.
// Bins missing from a short snapshot count as zero.
func ComputeLevels(s Snapshot, l Layout) Levels {
	bass, mid, treble := l.Ranges()
	return Levels{
		Bass:   bandMean(s, bass),
		Mid:    bandMean(s, mid),
		Treble: bandMean(s, treble),
	}
}

func bandMean(s Snapshot, r Range) float64 {
	if r.Len() <= 0 {
		return 0
	}
	vals := make([]float64, r.Len())
	for i := range vals {
		if idx := r.Start + i; idx < len(s) {
			vals[i] = float64(s[idx])
		}
	}
	return clampUnit(stat.Mean(vals, nil) / MaxMagnitude)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
