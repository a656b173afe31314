package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDownsampleKeepsSolidColor(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	out := Downsample(solid(8, 8, c), 4, 4)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	got := out.NRGBAAt(2, 2)
	assert.InDelta(t, 200, int(got.R), 1)
	assert.InDelta(t, 100, int(got.G), 1)
	assert.Equal(t, uint8(255), got.A)
}

func TestDownsampleSameSizeIsNoop(t *testing.T) {
	img := solid(4, 4, color.NRGBA{A: 255})
	assert.Same(t, img, Downsample(img, 4, 4))
}

func TestSheetLayout(t *testing.T) {
	tiles := []*image.NRGBA{
		solid(2, 2, color.NRGBA{R: 255, A: 255}),
		solid(2, 2, color.NRGBA{G: 255, A: 255}),
		solid(2, 2, color.NRGBA{B: 255, A: 255}),
	}
	out := Sheet(tiles, 2)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	assert.Equal(t, uint8(255), out.NRGBAAt(3, 0).G)
	assert.Equal(t, uint8(255), out.NRGBAAt(0, 3).B)
	assert.Equal(t, uint8(0), out.NRGBAAt(3, 3).A)
}
