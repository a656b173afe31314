// Package postprocess reduces supersampled renders to their output size.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales img to w×h with CatmullRom filtering. Filtering runs
// on premultiplied alpha so transparent edges do not darken.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}

	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, b, draw.Src, nil)

	out := image.NewNRGBA(dst.Bounds())
	draw.Draw(out, out.Bounds(), dst, image.Point{}, draw.Src)
	return out
}

// Sheet lays tiles out left to right, wrapping after cols tiles.
func Sheet(tiles []*image.NRGBA, cols int) *image.NRGBA {
	if len(tiles) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	if cols <= 0 || cols > len(tiles) {
		cols = len(tiles)
	}
	tw, th := tiles[0].Bounds().Dx(), tiles[0].Bounds().Dy()
	rows := (len(tiles) + cols - 1) / cols

	out := image.NewNRGBA(image.Rect(0, 0, cols*tw, rows*th))
	for i, t := range tiles {
		at := image.Pt((i%cols)*tw, (i/cols)*th)
		draw.Draw(out, image.Rectangle{Min: at, Max: at.Add(image.Pt(tw, th))}, t, t.Bounds().Min, draw.Src)
	}
	return out
}
