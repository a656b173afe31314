package preview

import (
	"image"
	"image/color"
	"io"

	"pose-inbetweener/internal/backdrop"
	"pose-inbetweener/internal/batch"
	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/postprocess"
	"pose-inbetweener/internal/raster"
	"pose-inbetweener/internal/viewmatrix"
)

// Options control rendering.
type Options struct {
	Size        int
	Supersample int
	Workers     int
	Plane       string
	// FOV > 0 renders in perspective.
	FOV float64
	// Background is drawn behind every frame. The zero value is transparent.
	Background color.NRGBA
	// Backdrop, when set, is scaled to cover the frame and drawn over
	// Background.
	Backdrop image.Image
	Progress io.Writer
}

func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Plane: "front"}
}

func (o Options) normalized() Options {
	if o.Size <= 0 {
		o.Size = 256
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	return o
}

var (
	coldColor = color.NRGBA{R: 40, G: 120, B: 255, A: 255}
	hotColor  = color.NRGBA{R: 255, G: 140, B: 0, A: 255}
)

// Gradient returns the onion-skin colour of frame i of n.
func Gradient(i, n int) color.NRGBA {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	mix := func(a, b uint8) uint8 { return uint8(float64(a)*(1-t) + float64(b)*t + 0.5) }
	return color.NRGBA{
		R: mix(coldColor.R, hotColor.R),
		G: mix(coldColor.G, hotColor.G),
		B: mix(coldColor.B, hotColor.B),
		A: 255,
	}
}

// fit frames every frame with one projection so they line up.
func fit(frames []Frame, o Options) (viewmatrix.Projection, error) {
	R, err := viewmatrix.ForPlane(o.Plane)
	if err != nil {
		return viewmatrix.Projection{}, err
	}
	var pts []mathutil.Vec3
	for _, f := range frames {
		pts = append(pts, f.points()...)
	}
	return viewmatrix.Fit(pts, R, o.Size*o.Supersample, 16*o.Supersample, o.FOV), nil
}

// OnionSkin draws every frame into one image, coldest first.
func OnionSkin(frames []Frame, o Options) (*image.NRGBA, error) {
	o = o.normalized()
	proj, err := fit(frames, o)
	if err != nil {
		return nil, err
	}
	fb := newFrame(proj.Size, o.Background, o.backdrop(proj.Size))
	for i, f := range frames {
		drawFrame(fb, f, proj, Gradient(i, len(frames)), float64(o.Supersample))
	}
	return postprocess.Downsample(fb.Image(), o.Size, o.Size), nil
}

// Render draws each frame into its own image on a worker pool. Failed
// frames come back as nil images with their error in the results.
func Render(frames []Frame, o Options) ([]*image.NRGBA, []batch.Result, error) {
	o = o.normalized()
	proj, err := fit(frames, o)
	if err != nil {
		return nil, nil, err
	}
	bg := o.backdrop(proj.Size)
	images := make([]*image.NRGBA, len(frames))
	results := batch.Run(batch.Config{Workers: o.Workers, Progress: o.Progress, Label: "frames"}, len(frames), func(i int) error {
		fb := newFrame(proj.Size, o.Background, bg)
		drawFrame(fb, frames[i], proj, Gradient(i, len(frames)), float64(o.Supersample))
		images[i] = postprocess.Downsample(fb.Image(), o.Size, o.Size)
		return nil
	})
	return images, results, nil
}

func (o Options) backdrop(size int) *image.NRGBA {
	if o.Backdrop == nil {
		return nil
	}
	return backdrop.Cover(o.Backdrop, size)
}

func newFrame(size int, bg color.NRGBA, img *image.NRGBA) *raster.FrameBuffer {
	fb := raster.NewFrameBuffer(size, size)
	fb.Fill(bg)
	if img != nil {
		fb.Blit(img)
	}
	return fb
}

// drawFrame draws bones as lines from parent to child, joints as discs and
// each joint's local X axis as a short tick.
func drawFrame(fb *raster.FrameBuffer, f Frame, proj viewmatrix.Projection, c color.NRGBA, ss float64) {
	tick := color.NRGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: 255}
	tickLen := 10 * ss / proj.Scale

	for _, j := range f.Joints {
		w := f.Worlds[j.ID]
		x, y, z := proj.Project(w.Translation())
		if pw, ok := f.Worlds[j.Parent]; ok && j.Parent != "" {
			px, py, pz := proj.Project(pw.Translation())
			fb.Line(px, py, pz, x, y, z, 2*ss, c)
		}
		axis := w.MulDir(mathutil.Vec3{1, 0, 0})
		if l := axis.Len(); l > 0 {
			end := w.Translation().Add(axis.Scale(tickLen / l))
			tx, ty, tz := proj.Project(end)
			fb.Line(x, y, z, tx, ty, tz, ss, tick)
		}
		fb.Disc(x, y, 3*ss, z, c)
	}
}
