package scene3d

import (
	"math"
	"math/rand"
	"sort"

	"github.com/fogleman/gg"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	floorExtent = 30
	floorStep   = 2
	starRadius  = 90
	decorSeed   = 11
)

var white = colorful.Color{R: 1, G: 1, B: 1}

// prim is one depth-sorted draw call.
type prim struct {
	depth float64
	draw  func(dc *gg.Context)
}

// painter collects primitives for one frame and draws them far to near.
type painter struct {
	dc    *gg.Context
	cam   camera
	rec   ThemeRecord
	prims []prim
}

func newPainter(dc *gg.Context, cam camera, rec ThemeRecord) *painter {
	return &painter{dc: dc, cam: cam, rec: rec}
}

func (p *painter) add(depth float64, draw func(dc *gg.Context)) {
	p.prims = append(p.prims, prim{depth: depth, draw: draw})
}

func (p *painter) flush() {
	sort.SliceStable(p.prims, func(i, j int) bool { return p.prims[i].depth > p.prims[j].depth })
	for _, pr := range p.prims {
		pr.draw(p.dc)
		p.dc.ClearPath()
	}
	p.prims = p.prims[:0]
}

// fogged fades c toward the fog color by view depth.
func (p *painter) fogged(c colorful.Color, depth float64) colorful.Color {
	fog := p.rec.Fog
	if fog.Far <= fog.Near {
		return c
	}
	f := (depth - fog.Near) / (fog.Far - fog.Near)
	f = max(0, min(f, 1))
	return c.BlendRgb(fog.Color, f)
}

// shade lights base with the theme rig for a surface facing normal.
func (p *painter) shade(base colorful.Color, normal mgl32.Vec3) colorful.Color {
	var r, g, b float64
	for _, l := range p.rec.Lights {
		k := l.Intensity
		if l.Kind == Directional {
			toLight := l.Direction.Mul(-1).Normalize()
			k *= math.Max(0, float64(normal.Dot(toLight)))
		}
		r += base.R * l.Color.R * k
		g += base.G * l.Color.G * k
		b += base.B * l.Color.B * k
	}
	// keep unlit faces readable
	r += base.R * 0.25
	g += base.G * 0.25
	b += base.B * 0.25
	return colorful.Color{R: r, G: g, B: b}.Clamped()
}

func setColor(dc *gg.Context, c colorful.Color, alpha float64) {
	dc.SetRGBA(c.R, c.G, c.B, alpha)
}

// polygon adds a filled face. Any vertex behind the camera drops the face.
func (p *painter) polygon(pts []mgl32.Vec3, c colorful.Color, alpha float64) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	var depth float64
	for i, pt := range pts {
		x, y, d, ok := p.cam.project(pt)
		if !ok {
			return
		}
		xs[i], ys[i] = x, y
		depth += d
	}
	depth /= float64(len(pts))
	col := p.fogged(c, depth)
	p.add(depth, func(dc *gg.Context) {
		for i := range xs {
			dc.LineTo(xs[i], ys[i])
		}
		dc.ClosePath()
		setColor(dc, col, alpha)
		dc.Fill()
	})
}

// segment adds a stroked line between two world points.
func (p *painter) segment(a, b mgl32.Vec3, c colorful.Color, alpha, width float64) {
	ax, ay, ad, ok1 := p.cam.project(a)
	bx, by, bd, ok2 := p.cam.project(b)
	if !ok1 || !ok2 {
		return
	}
	depth := (ad + bd) / 2
	col := p.fogged(c, depth)
	p.add(depth, func(dc *gg.Context) {
		dc.MoveTo(ax, ay)
		dc.LineTo(bx, by)
		setColor(dc, col, alpha)
		dc.SetLineWidth(width)
		dc.Stroke()
	})
}

// dot adds a round point whose radius is given in world units.
func (p *painter) dot(at mgl32.Vec3, radius float64, c colorful.Color, alpha float64) {
	x, y, d, ok := p.cam.project(at)
	if !ok {
		return
	}
	r := max(0.6, radius*p.cam.scale(d))
	col := p.fogged(c, d)
	p.add(d, func(dc *gg.Context) {
		dc.DrawCircle(x, y, r)
		setColor(dc, col, alpha)
		dc.Fill()
	})
}

var boxFaces = [6]struct {
	idx    [4]int
	normal mgl32.Vec3
}{
	{[4]int{0, 1, 2, 3}, mgl32.Vec3{0, -1, 0}},
	{[4]int{4, 7, 6, 5}, mgl32.Vec3{0, 1, 0}},
	{[4]int{0, 4, 5, 1}, mgl32.Vec3{0, 0, -1}},
	{[4]int{3, 2, 6, 7}, mgl32.Vec3{0, 0, 1}},
	{[4]int{0, 3, 7, 4}, mgl32.Vec3{-1, 0, 0}},
	{[4]int{1, 5, 6, 2}, mgl32.Vec3{1, 0, 0}},
}

// box adds the camera-facing faces of a unit cube transformed by model
// after scaling to size.
func (p *painter) box(model mgl32.Mat4, size mgl32.Vec3, c colorful.Color) {
	var corners [8]mgl32.Vec3
	for i := range corners {
		local := mgl32.Vec3{
			(float32(i&1) - 0.5) * size[0],
			(float32(i>>2&1) - 0.5) * size[1],
			(float32(i>>1&1) - 0.5) * size[2],
		}
		corners[i] = model.Mul4x1(local.Vec4(1)).Vec3()
	}
	for _, f := range boxFaces {
		n := model.Mul4x1(f.normal.Vec4(0)).Vec3().Normalize()
		center := corners[f.idx[0]].Add(corners[f.idx[2]]).Mul(0.5)
		if n.Dot(p.cam.eye.Sub(center)) <= 0 {
			continue
		}
		pts := []mgl32.Vec3{corners[f.idx[0]], corners[f.idx[1]], corners[f.idx[2]], corners[f.idx[3]]}
		p.polygon(pts, p.shade(c, n), 1)
	}
}

func (p *painter) sky(t float64) {
	setColor(p.dc, p.rec.Fog.Color, 1)
	p.dc.Clear()

	for _, d := range p.rec.Decor {
		if d.Kind != Starfield {
			continue
		}
		rng := rand.New(rand.NewSource(decorSeed))
		for range d.Count {
			theta := rng.Float64() * 2 * math.Pi
			y := rng.Float64()*1.6 - 0.4
			rr := math.Sqrt(max(0, 1-y*y))
			pt := mgl32.Vec3{
				float32(starRadius * rr * math.Cos(theta+t*0.01)),
				float32(starRadius * y),
				float32(starRadius * rr * math.Sin(theta+t*0.01)),
			}
			x, sy, _, ok := p.cam.project(pt)
			if !ok {
				continue
			}
			setColor(p.dc, d.Color, 0.4+0.6*rng.Float64())
			p.dc.DrawCircle(x, sy, 1)
			p.dc.Fill()
		}
	}
}

func (p *painter) floor() {
	if !p.rec.Floor {
		return
	}
	c := p.rec.Palette.Floor
	const y = barBaseY - 0.05
	for v := -floorExtent; v <= floorExtent; v += floorStep {
		for u := -floorExtent; u < floorExtent; u += floorStep {
			fv, fu := float32(v), float32(u)
			p.floorLine(mgl32.Vec3{fu, y, fv}, mgl32.Vec3{fu + floorStep, y, fv}, c)
			p.floorLine(mgl32.Vec3{fv, y, fu}, mgl32.Vec3{fv, y, fu + floorStep}, c)
		}
	}
}

// floorLine draws immediately so the grid always sits under the objects.
func (p *painter) floorLine(a, b mgl32.Vec3, c colorful.Color) {
	ax, ay, ad, ok1 := p.cam.project(a)
	bx, by, bd, ok2 := p.cam.project(b)
	if !ok1 || !ok2 {
		return
	}
	setColor(p.dc, p.fogged(c, (ad+bd)/2), 0.6)
	p.dc.SetLineWidth(1)
	p.dc.DrawLine(ax, ay, bx, by)
	p.dc.Stroke()
}

func (p *painter) decor(t float64) {
	for _, d := range p.rec.Decor {
		rng := rand.New(rand.NewSource(decorSeed + int64(d.Kind)))
		switch d.Kind {
		case Pillars:
			for i := range d.Count {
				a := float64(i) / float64(d.Count) * 2 * math.Pi
				model := mgl32.Translate3D(float32(math.Cos(a)*22), barBaseY+4, float32(math.Sin(a)*22))
				p.box(model, mgl32.Vec3{0.8, 8, 0.8}, d.Color)
			}
		case Orbitals:
			for i := range d.Count {
				dir := 1.0
				if i%2 == 1 {
					dir = -1
				}
				tilt := mgl32.HomogRotate3DX(float32(i) * 0.5).Mul4(mgl32.HomogRotate3DY(float32(t * 0.1 * dir)))
				r := 11 + float64(i)*1.5
				for k := range 24 {
					a := float64(k) / 24 * 2 * math.Pi
					pt := tilt.Mul4x1(mgl32.Vec4{float32(math.Cos(a) * r), 0, float32(math.Sin(a) * r), 1}).Vec3()
					p.dot(pt, 0.08, d.Color, 0.7)
				}
			}
		case Rain:
			for range d.Count {
				x := rng.Float64()*50 - 25
				z := rng.Float64()*50 - 25
				speed := 3 + rng.Float64()*4
				off := rng.Float64() * 20
				top := 12 - math.Mod(t*speed+off, 20)
				a := mgl32.Vec3{float32(x), float32(top), float32(z)}
				b := mgl32.Vec3{float32(x), float32(top - 1.5), float32(z)}
				p.segment(a, b, d.Color, 0.8, 1.5)
			}
		}
	}
}

func (p *painter) sphereMesh(s *Sphere) {
	for r := range sphereRings {
		for c := range sphereSegments {
			i0 := r*sphereSegments + c
			i1 := r*sphereSegments + (c+1)%sphereSegments
			i2 := (r+1)*sphereSegments + (c+1)%sphereSegments
			i3 := (r+1)*sphereSegments + c
			v0, v1, v2, v3 := s.Vertices[i0], s.Vertices[i1], s.Vertices[i2], s.Vertices[i3]

			n := s.Normal(i0).Add(s.Normal(i2)).Normalize()
			center := v0.Add(v2).Mul(0.5)
			if n.Dot(p.cam.eye.Sub(center)) <= 0 {
				continue
			}
			p.polygon([]mgl32.Vec3{v0, v1, v2, v3}, p.shade(s.Color, n), 1)
		}
	}
}

func (p *painter) barRing(b *BarRing) {
	pal := p.rec.Palette
	for i, h := range b.Heights {
		if h <= 0.01 {
			continue
		}
		a := b.Angle(i)
		cos, sin := float32(math.Cos(a)), float32(math.Sin(a))
		radial := mgl32.Vec3{cos, 0, sin}
		half := mgl32.Vec3{-sin, 0, cos}.Mul(0.22)
		base := radial.Mul(ringRadius).Add(mgl32.Vec3{0, barBaseY, 0})
		top := base.Add(mgl32.Vec3{0, float32(h), 0})
		c := pal.Primary.BlendHcl(pal.Accent, h/barMaxH).Clamped()
		p.polygon([]mgl32.Vec3{
			base.Sub(half), base.Add(half), top.Add(half), top.Sub(half),
		}, p.shade(c, radial), 0.95)
	}
}

func (p *painter) particleCloud(pc *ParticleCloud) {
	c := p.rec.Palette.Accent
	for _, pos := range pc.Positions {
		p.dot(pos, 0.06, c, 0.8)
	}
}

func (p *painter) platformSet(pl *Platforms) {
	for i, plat := range p.rec.Platforms {
		if i >= len(pl.Rotations) {
			break
		}
		model := mgl32.Translate3D(plat.Center[0], plat.Center[1]+float32(pl.Offsets[i]), plat.Center[2]).
			Mul4(mgl32.HomogRotate3DY(float32(pl.Rotations[i])))
		p.box(model, plat.Size, plat.Color)
	}
}

func (p *painter) ringSet(rs *Rings) {
	const steps = 64
	glow := math.Min(rs.Emissive, 1.5) / 1.5
	c := p.rec.Palette.Accent.BlendRgb(white, glow*0.5)
	alpha := math.Min(1, 0.35+rs.Emissive*0.4)
	for _, ring := range rs.Rings {
		prev := ring.Tilt.Mul4x1(mgl32.Vec4{float32(ring.Radius), 0, 0, 1}).Vec3()
		for k := 1; k <= steps; k++ {
			a := float64(k) / steps * 2 * math.Pi
			cur := ring.Tilt.Mul4x1(mgl32.Vec4{
				float32(math.Cos(a) * ring.Radius), 0, float32(math.Sin(a) * ring.Radius), 1,
			}).Vec3()
			p.segment(prev, cur, c, alpha, 1+rs.Emissive*2)
			prev = cur
		}
	}
}
