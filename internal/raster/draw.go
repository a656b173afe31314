package raster

import (
	"image/color"
	"math"
)

// Disc fills a circle of radius r centred on (cx, cy).
func (fb *FrameBuffer) Disc(cx, cy, r, depth float64, c color.NRGBA) {
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	r2 := r * r
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r2 {
				fb.Plot(x, y, depth, c)
			}
		}
	}
}

// Line draws a segment of the given width. Depth is interpolated along it.
func (fb *FrameBuffer) Line(x0, y0, z0, x1, y1, z1, width float64, c color.NRGBA) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	steps := int(math.Ceil(length))
	if steps == 0 {
		fb.Disc(x0, y0, width/2, z0, c)
		return
	}
	half := width / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x, y, z := x0+dx*t, y0+dy*t, z0+(z1-z0)*t
		if half <= 0.5 {
			fb.Plot(int(x), int(y), z, c)
			continue
		}
		fb.Disc(x, y, half, z, c)
	}
}
