package backdrop

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halves is red on the left half and blue on the right.
func halves(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCoverCropsCentre(t *testing.T) {
	out := Cover(halves(40, 20), 10)
	require.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())

	assert.Equal(t, uint8(255), out.NRGBAAt(1, 5).R)
	assert.Equal(t, uint8(255), out.NRGBAAt(8, 5).B)
}

func TestFade(t *testing.T) {
	img := halves(2, 2)
	Fade(img, 0.5)
	assert.Equal(t, uint8(128), img.NRGBAAt(0, 0).A)

	Fade(img, -1)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A)
}

func writeImage(t *testing.T, name string, encode func(io.Writer, image.Image) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, encode(f, halves(8, 8)))
	require.NoError(t, f.Close())
	return path
}

func TestLoadFormats(t *testing.T) {
	cases := map[string]func(io.Writer, image.Image) error{
		"ref.png":  png.Encode,
		"ref.JPG":  func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) },
		"ref.tga":  tga.Encode,
		"ref.webp": func(w io.Writer, m image.Image) error { return nativewebp.Encode(w, m, nil) },
	}
	for name, encode := range cases {
		img, err := Load(writeImage(t, name, encode), 4, 1)
		require.NoError(t, err, name)
		assert.Equal(t, 4, img.Bounds().Dx(), name)
		assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).A, name)
		assert.Greater(t, img.NRGBAAt(0, 0).R, uint8(200), name)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeImage(t, "ref.bmp", png.Encode), 4, 1)
	assert.ErrorContains(t, err, "unsupported image type")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"), 4, 1)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))
	_, err = Load(path, 4, 1)
	assert.Error(t, err)
}
