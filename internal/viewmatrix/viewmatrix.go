// Package viewmatrix frames a set of 3D points for a square preview image.
package viewmatrix

import (
	"fmt"
	"math"
	"strings"

	"pose-inbetweener/internal/mathutil"
)

// ForPlane returns the view matrix of a named preview plane.
func ForPlane(name string) (mathutil.Mat3, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "front", "":
		return mathutil.ViewFront, nil
	case "top":
		return mathutil.ViewTop, nil
	case "side":
		return mathutil.ViewSide, nil
	}
	return mathutil.Mat3{}, fmt.Errorf("viewmatrix: unknown plane %q", name)
}

// Projection maps world points to pixel coordinates of a Size×Size image.
type Projection struct {
	R      mathutil.Mat3
	Center mathutil.Vec3
	Scale  float64
	Size   int

	// FOV > 0 enables perspective, in degrees.
	FOV float64

	camDist, zCenter float64
}

// Fit centres the bounding box of points under R and scales its larger
// screen extent to the image minus margin pixels on each side.
func Fit(points []mathutil.Vec3, R mathutil.Mat3, size, margin int, fov float64) Projection {
	p := Projection{R: R, Size: size, FOV: fov, Scale: 1}
	if len(points) == 0 {
		return p
	}

	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range points {
		tv := R.MulVec3(v)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], tv[k])
			hi[k] = math.Max(hi[k], tv[k])
		}
	}
	p.Center = lo.Add(hi).Scale(0.5)

	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 0.001
	}
	p.Scale = float64(size-2*margin) / span

	if fov > 0 {
		halfFOV := mathutil.Deg2Rad(fov / 2)
		xyMax := math.Max(span/2, 0.001)
		p.zCenter = (lo[2] + hi[2]) / 2
		p.camDist = xyMax / math.Tan(halfFOV)
	}
	return p
}

// Project returns screen x, screen y (down) and depth (larger is nearer).
func (p Projection) Project(v mathutil.Vec3) (x, y, depth float64) {
	t := p.R.MulVec3(v).Sub(p.Center)
	if p.FOV > 0 {
		d := math.Max(p.camDist-(t[2]+p.Center[2]-p.zCenter), 0.1)
		f := p.camDist / d
		t[0] *= f
		t[1] *= f
	}
	half := float64(p.Size) / 2
	return t[0]*p.Scale + half, -t[1]*p.Scale + half, t[2]
}
