// Package raster draws depth-tested discs and lines into an RGBA buffer.
package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// Fill sets every pixel to c without touching depth.
func (fb *FrameBuffer) Fill(c color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3] = c.R, c.G, c.B, c.A
	}
}

// Plot blends c over the pixel at (x, y) when depth is not behind what is
// already there.
func (fb *FrameBuffer) Plot(x, y int, depth float64, c color.NRGBA) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	idx := y*fb.Width + x
	if depth < fb.ZBuf[idx] {
		return
	}
	fb.ZBuf[idx] = depth

	i := idx * 4
	a := float64(c.A) / 255
	if a >= 1 {
		fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3] = c.R, c.G, c.B, 255
		return
	}
	// Source-over in straight alpha.
	da := float64(fb.Color[i+3]) / 255
	oa := a + da*(1-a)
	if oa <= 0 {
		return
	}
	for k, sc := range [3]uint8{c.R, c.G, c.B} {
		d := float64(fb.Color[i+k])
		fb.Color[i+k] = uint8((float64(sc)*a+d*da*(1-a))/oa + 0.5)
	}
	fb.Color[i+3] = uint8(oa*255 + 0.5)
}

// Image copies the buffer into an NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// Blit composites img over the buffer at the origin without touching depth.
func (fb *FrameBuffer) Blit(img *image.NRGBA) {
	b := img.Bounds()
	for y := 0; y < fb.Height && y < b.Dy(); y++ {
		for x := 0; x < fb.Width && x < b.Dx(); x++ {
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			if c.A == 0 {
				continue
			}
			idx := y*fb.Width + x
			z := fb.ZBuf[idx]
			fb.ZBuf[idx] = math.Inf(-1)
			fb.Plot(x, y, math.Inf(-1), c)
			fb.ZBuf[idx] = z
		}
	}
}
