package preview

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// EncodeWebP writes a lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}

// EncodeAnimatedWebP writes frames as a looping animation, delayMS per frame.
func EncodeAnimatedWebP(w io.Writer, frames []*image.NRGBA, delayMS uint) error {
	if len(frames) == 0 {
		return fmt.Errorf("preview: animation without frames")
	}
	ani := &nativewebp.Animation{
		Images:    make([]image.Image, len(frames)),
		Durations: make([]uint, len(frames)),
		Disposals: make([]uint, len(frames)),
	}
	for i, f := range frames {
		ani.Images[i] = f
		ani.Durations[i] = delayMS
		ani.Disposals[i] = 1
	}
	return nativewebp.EncodeAll(w, ani, nil)
}

// EncodeTGA writes an uncompressed TGA.
func EncodeTGA(w io.Writer, img image.Image) error {
	return tga.Encode(w, img)
}

// Format picks an encoder from a format name or, when empty, the file
// extension of path.
func Format(format, path string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "" {
		f = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	switch f {
	case "webp", "tga":
		return f, nil
	}
	return "", fmt.Errorf("preview: unsupported format %q", f)
}

// WriteImage encodes img to path.
func WriteImage(path, format string, img image.Image) error {
	f, err := Format(format, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	defer out.Close()

	switch f {
	case "tga":
		err = EncodeTGA(out, img)
	default:
		err = EncodeWebP(out, img)
	}
	if err != nil {
		return fmt.Errorf("preview: encode %s: %w", path, err)
	}
	return nil
}
