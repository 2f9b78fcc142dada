package scene3d

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/mngviz/internal/spectrum"
)

// Input is the per-frame audio state every object reads.
type Input struct {
	Snapshot spectrum.Snapshot
	Levels   spectrum.Levels
	Palette  Palette
}

// Object is a retained scene member. Update mutates its transforms and
// material values as a function of time and input only.
type Object interface {
	Name() string
	Update(t float64, in Input)
}

const (
	sphereRadius   = 2.0
	sphereRings    = 16
	sphereSegments = 24

	ringBars     = 64
	ringRadius   = 6.0
	barMaxH      = 5.0
	barBaseY     = -2.0
	particleN    = 1000
	particleSeed = 7
)

// Sphere is a lat/long mesh whose vertices ripple along their normals with
// bass.
type Sphere struct {
	normals  []mgl32.Vec3 // unit directions, (rings+1)*(segments) row-major
	theta    []float64
	phi      []float64
	Vertices []mgl32.Vec3
	Color    colorful.Color
}

func NewSphere() *Sphere {
	n := (sphereRings + 1) * sphereSegments
	s := &Sphere{
		normals:  make([]mgl32.Vec3, n),
		theta:    make([]float64, n),
		phi:      make([]float64, n),
		Vertices: make([]mgl32.Vec3, n),
	}
	for r := 0; r <= sphereRings; r++ {
		phi := float64(r) / sphereRings * math.Pi
		for c := range sphereSegments {
			theta := float64(c) / sphereSegments * 2 * math.Pi
			i := r*sphereSegments + c
			s.theta[i] = theta
			s.phi[i] = phi
			s.normals[i] = mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			s.Vertices[i] = s.normals[i].Mul(sphereRadius)
		}
	}
	return s
}

func (s *Sphere) Name() string { return "sphere" }

// Displacement is the radial offset of a vertex at angles (theta, phi).
func Displacement(theta, phi, t, bass float64) float64 {
	return math.Sin(3*theta+t*2) * math.Cos(2*phi+t) * bass * 0.4
}

func (s *Sphere) Update(t float64, in Input) {
	for i, n := range s.normals {
		d := Displacement(s.theta[i], s.phi[i], t, in.Levels.Bass)
		s.Vertices[i] = n.Mul(float32(sphereRadius + d))
	}
	base := in.Palette.Primary.BlendHcl(in.Palette.Secondary, 0.5+0.5*math.Sin(t*0.5))
	s.Color = base.BlendHcl(in.Palette.Accent, in.Levels.Mid).Clamped()
}

// Normal returns the undisplaced unit normal of vertex i.
func (s *Sphere) Normal(i int) mgl32.Vec3 { return s.normals[i] }

// BarRing is a circle of bars standing around the sphere, one per leading
// snapshot bin.
type BarRing struct {
	Heights  [ringBars]float64
	Rotation float64
}

func NewBarRing() *BarRing { return &BarRing{} }

func (b *BarRing) Name() string { return "bar ring" }

// BarHeight maps a bin magnitude to a bar height.
func BarHeight(v uint8) float64 {
	return float64(v) / spectrum.MaxMagnitude * barMaxH
}

func (b *BarRing) Update(t float64, in Input) {
	for i := range b.Heights {
		var v uint8
		if i < len(in.Snapshot) {
			v = in.Snapshot[i]
		}
		b.Heights[i] = BarHeight(v)
	}
	b.Rotation = t * 0.2
}

// Angle is the current world angle of bar i around the Y axis.
func (b *BarRing) Angle(i int) float64 {
	return float64(i)/ringBars*2*math.Pi + b.Rotation
}

// ParticleCloud is a fixed set of points that sway vertically with treble.
type ParticleCloud struct {
	base      []mgl32.Vec3
	phase     []float64
	Positions []mgl32.Vec3
}

// NewParticleCloud scatters the particles in a shell around the origin.
// The layout is seeded so every scene starts identical.
func NewParticleCloud() *ParticleCloud {
	rng := rand.New(rand.NewSource(particleSeed))
	p := &ParticleCloud{
		base:      make([]mgl32.Vec3, particleN),
		phase:     make([]float64, particleN),
		Positions: make([]mgl32.Vec3, particleN),
	}
	for i := range p.base {
		theta := rng.Float64() * 2 * math.Pi
		y := rng.Float64()*2 - 1
		r := 9 + rng.Float64()*11
		rr := math.Sqrt(1 - y*y)
		p.base[i] = mgl32.Vec3{
			float32(r * rr * math.Cos(theta)),
			float32(r * y * 0.6),
			float32(r * rr * math.Sin(theta)),
		}
		p.phase[i] = rng.Float64() * 2 * math.Pi
	}
	copy(p.Positions, p.base)
	return p
}

func (p *ParticleCloud) Name() string { return "particle cloud" }

func (p *ParticleCloud) Update(t float64, in Input) {
	for i, b := range p.base {
		b[1] += float32(math.Sin(t+p.phase[i]) * in.Levels.Treble * 2)
		p.Positions[i] = b
	}
}

// Base returns the resting position of particle i.
func (p *ParticleCloud) Base(i int) mgl32.Vec3 { return p.base[i] }

// Platforms animates however many boxes the active theme supplies. Slots
// are sized for the largest preset so a theme swap never reallocates.
type Platforms struct {
	Rotations []float64
	Offsets   []float64
}

func NewPlatforms() *Platforms {
	n := MaxPlatforms()
	return &Platforms{Rotations: make([]float64, n), Offsets: make([]float64, n)}
}

func (p *Platforms) Name() string { return "platforms" }

func (p *Platforms) Update(t float64, _ Input) {
	for i := range p.Rotations {
		fi := float64(i)
		p.Rotations[i] = t * 0.1 * (fi + 1)
		p.Offsets[i] = math.Sin(t+fi) * 0.3
	}
}

// Ring is one hoop of the Rings object.
type Ring struct {
	Radius float64
	Tilt   mgl32.Mat4
}

var ringSpecs = [3]struct {
	radius float64
	rate   float64
	axis   mgl32.Vec3
}{
	{radius: 3.2, rate: 0.5, axis: mgl32.Vec3{1, 0, 0}},
	{radius: 3.8, rate: -0.35, axis: mgl32.Vec3{0, 0, 1}},
	{radius: 4.4, rate: 0.2, axis: mgl32.Vec3{1, 0, 1}.Normalize()},
}

// Rings are concentric hoops around the sphere, each turning at its own
// rate, that glow brighter with bass.
type Rings struct {
	Rings    [3]Ring
	Emissive float64
}

func NewRings() *Rings {
	r := &Rings{Emissive: 0.2}
	for i, s := range ringSpecs {
		r.Rings[i] = Ring{Radius: s.radius, Tilt: mgl32.Ident4()}
	}
	return r
}

func (r *Rings) Name() string { return "rings" }

func (r *Rings) Update(t float64, in Input) {
	for i, s := range ringSpecs {
		r.Rings[i].Tilt = mgl32.HomogRotate3D(float32(t*s.rate), s.axis)
	}
	r.Emissive = 0.2 + in.Levels.Bass*1.5
}
