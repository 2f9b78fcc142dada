package spectrum

// MaxMagnitude is the largest value a snapshot bin can hold.
const MaxMagnitude = 255

// Snapshot holds one frame of byte frequency magnitudes, one per bin.
type Snapshot []uint8

// Range is a half-open bin interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of bins covered.
func (r Range) Len() int { return r.End - r.Start }

// Layout fixes the transform window and the bass/mid/treble boundaries.
// Bass is [0,BassEnd), mid is [BassEnd,MidEnd), treble is [MidEnd,Bins).
type Layout struct {
	Window  int
	Bins    int
	BassEnd int
	MidEnd  int
}

var (
	// Layout2D drives the flat canvas renderer.
	Layout2D = Layout{Window: 256, Bins: 128, BassEnd: 10, MidEnd: 50}
	// Layout3D drives the scene-graph renderer.
	Layout3D = Layout{Window: 512, Bins: 256, BassEnd: 10, MidEnd: 100}
)

// Ranges returns the bass, mid and treble bin ranges.
func (l Layout) Ranges() (bass, mid, treble Range) {
	return Range{0, l.BassEnd}, Range{l.BassEnd, l.MidEnd}, Range{l.MidEnd, l.Bins}
}

// NewSnapshot allocates a zeroed snapshot sized for the layout.
func (l Layout) NewSnapshot() Snapshot {
	return make(Snapshot, l.Bins)
}
