package scene3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	fovDegrees = 60
	zNear      = 0.1
	zFar       = 200
)

var (
	eyeHeight   = float32(5)
	eyeDistance = float32(16)
	lookTarget  = mgl32.Vec3{0, 0.5, 0}
	worldUp     = mgl32.Vec3{0, 1, 0}
)

// camera slowly circles the origin and projects world points to pixels.
type camera struct {
	view   mgl32.Mat4
	proj   mgl32.Mat4
	eye    mgl32.Vec3
	width  int
	height int
}

func newCamera(t float64, width, height int) camera {
	angle := t * 0.05
	eye := mgl32.Vec3{
		float32(math.Sin(angle)) * eyeDistance,
		eyeHeight,
		float32(math.Cos(angle)) * eyeDistance,
	}
	aspect := float32(width) / float32(max(height, 1))
	return camera{
		view:   mgl32.LookAtV(eye, lookTarget, worldUp),
		proj:   mgl32.Perspective(mgl32.DegToRad(fovDegrees), aspect, zNear, zFar),
		eye:    eye,
		width:  width,
		height: height,
	}
}

// depth is the distance in front of the camera along the view axis.
func (c camera) depth(p mgl32.Vec3) float64 {
	return float64(-c.view.Mul4x1(p.Vec4(1)).Z())
}

// project returns screen coordinates with y growing downward. ok is false
// for points behind the near plane.
func (c camera) project(p mgl32.Vec3) (x, y, depth float64, ok bool) {
	depth = c.depth(p)
	if depth <= zNear {
		return 0, 0, depth, false
	}
	win := mgl32.Project(p, c.view, c.proj, 0, 0, c.width, c.height)
	return float64(win.X()), float64(c.height) - float64(win.Y()), depth, true
}

// scale is the pixel size of one world unit at the given depth.
func (c camera) scale(depth float64) float64 {
	f := 1 / math.Tan(float64(mgl32.DegToRad(fovDegrees))/2)
	return f * float64(c.height) / 2 / depth
}
