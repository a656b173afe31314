package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pose-inbetweener/internal/backdrop"
	"pose-inbetweener/internal/batch"
	"pose-inbetweener/internal/config"
	"pose-inbetweener/internal/neighbor"
	"pose-inbetweener/internal/postprocess"
	"pose-inbetweener/internal/preview"
	"pose-inbetweener/internal/sceneio"
	"pose-inbetweener/internal/scope"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (default: $INBETWEENER_CONFIG or ~/.config/inbetweener/config.toml)")
	scenePath := flag.String("scene", "", "Scene file (.json) or scene store (.db)")
	name := flag.String("name", "", "Scene name inside a .db store (default: \"default\")")
	at := flag.Float64("time", math.NaN(), "Scene time to preview at (default: the scene's time)")
	mode := flag.String("mode", "", "Blend mode: current or absolute")
	channels := flag.String("channels", "", "Channels to blend, e.g. tr or all")
	rotation := flag.String("rotation", "", "Rotation interpolation: slerp or euler")
	bracket := flag.String("bracket", "", "Neighbor bracketing: channel or shared")
	overshoot := flag.Bool("overshoot", false, "Sweep past the blend range")
	steps := flag.Int("steps", 0, "Number of values to sweep (default: 9)")
	size := flag.Int("size", 0, "Image size in pixels (default: 256)")
	plane := flag.String("plane", "", "View plane: front, top or side")
	fov := flag.Float64("fov", 0, "Perspective field of view in degrees (default: orthographic)")
	format := flag.String("format", "", "Image format: webp or tga (default: from -output)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	output := flag.String("output", "", "Onion-skin image path (default: preview.webp)")
	framesDir := flag.String("frames", "", "Also write one image per value into this directory")
	sheetCols := flag.Int("sheet", 0, "With -frames, also write a contact sheet with this many columns")
	anim := flag.String("anim", "", "Also write an animated WebP of the sweep to this path")
	delay := flag.Uint("delay", 80, "Animation frame delay in milliseconds")
	backdropPath := flag.String("backdrop", "", "Reference image (png, jpg, tga, webp) drawn behind the frames")
	backdropOpacity := flag.Float64("backdrop-opacity", 0.35, "Backdrop opacity 0-1")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{
		Scene:     *scenePath,
		Mode:      *mode,
		Channels:  *channels,
		Rotation:  *rotation,
		Bracket:   *bracket,
		Overshoot: *overshoot,
		Size:      *size,
		Steps:     *steps,
		Plane:     *plane,
		Format:    *format,
		Workers:   *workers,
		Output:    *output,
	})

	settings, err := cfg.Settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	imgFormat, err := preview.Format(cfg.Preview.Format, cfg.Preview.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sc, err := sceneio.Load(context.Background(), cfg.Scene.Path, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}
	if !math.IsNaN(*at) {
		if err := sc.SetTime(*at); err != nil {
			fmt.Fprintf(os.Stderr, "Error: -time: %v\n", err)
			os.Exit(1)
		}
	}

	ws := scope.Resolve(sc, settings.Mask)
	in, err := neighbor.New(sc, settings.Bracket).LocateAll(ws, sc.CurrentTime())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if in.Empty() {
		fmt.Printf("Nothing to blend at t=%g (%d targets, %d without keys).\n", in.Time, len(ws), len(in.Skipped))
		os.Exit(0)
	}

	values := preview.SweepValues(settings.Mode, settings.Overshoot, cfg.Preview.Steps)
	frames, err := preview.Frames(sc, in, settings.Params(), values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error posing frames: %v\n", err)
		os.Exit(1)
	}

	opts := preview.Options{
		Size:        cfg.Preview.Size,
		Supersample: cfg.Preview.Supersample,
		Workers:     cfg.Preview.Workers,
		Plane:       cfg.Preview.Plane,
		FOV:         *fov,
		Progress:    os.Stdout,
	}
	if *backdropPath != "" {
		bd, err := backdrop.Load(*backdropPath, opts.Size*opts.Supersample, *backdropOpacity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading backdrop: %v\n", err)
			os.Exit(1)
		}
		opts.Backdrop = bd
	}

	fmt.Printf("Inbetween preview: %s at t=%g\n", cfg.Scene.Path, in.Time)
	fmt.Printf("Targets: %d, Skipped: %d, Mode: %s, Values: %d (%g … %g)\n",
		len(in.Neighborhoods), len(in.Skipped), settings.Mode, len(values), values[0], values[len(values)-1])
	fmt.Printf("Output: %s\n", cfg.Preview.Output)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	skin, err := preview.OnionSkin(frames, opts)
	if err == nil {
		err = preview.WriteImage(cfg.Preview.Output, imgFormat, skin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing onion skin: %v\n", err)
		os.Exit(1)
	}

	if *framesDir != "" || *anim != "" {
		images, results, err := preview.Render(frames, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering frames: %v\n", err)
			os.Exit(1)
		}
		if *framesDir != "" {
			writeFrames(*framesDir, imgFormat, values, images, results)
			if *sheetCols > 0 {
				writeSheet(filepath.Join(*framesDir, "sheet."+imgFormat), imgFormat, images, *sheetCols)
			}
		}
		if *anim != "" {
			writeAnimation(*anim, images, *delay)
		}
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
}

// writeFrames writes one image per value plus a manifest.json. Failures are
// reported and recorded in the manifest.
func writeFrames(dir, format string, values []float64, images []*image.NRGBA, results []batch.Result) {
	entries := make([]batch.ManifestEntry, len(images))
	for _, r := range results {
		entries[r.Index] = batch.ManifestEntry{Index: r.Index, Value: values[r.Index]}
		if !r.Success {
			entries[r.Index].Error = r.Error
			continue
		}
		file := fmt.Sprintf("frame_%03d.%s", r.Index, format)
		if err := preview.WriteImage(filepath.Join(dir, file), format, images[r.Index]); err != nil {
			entries[r.Index].Error = err.Error()
			continue
		}
		entries[r.Index].Image = file
	}

	var failed []batch.ManifestEntry
	for _, e := range entries {
		if e.Error != "" {
			failed = append(failed, e)
		}
	}
	fmt.Printf("Frames: %d/%d → %s\n", len(entries)-len(failed), len(entries), dir)
	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := 20
		if len(failed) < limit {
			limit = len(failed)
		}
		for _, e := range failed[:limit] {
			fmt.Printf("  [%d] value %g: %s\n", e.Index, e.Value, e.Error)
		}
		if len(failed) > limit {
			fmt.Printf("  ... and %d more\n", len(failed)-limit)
		}
	}

	if err := batch.WriteManifest(filepath.Join(dir, "manifest.json"), entries); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest: %v\n", err)
	}
}

func writeSheet(path, format string, images []*image.NRGBA, cols int) {
	var tiles []*image.NRGBA
	for _, img := range images {
		if img != nil {
			tiles = append(tiles, img)
		}
	}
	if err := preview.WriteImage(path, format, postprocess.Sheet(tiles, cols)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: sheet: %v\n", err)
		return
	}
	fmt.Printf("Sheet: %s\n", path)
}

func writeAnimation(path string, images []*image.NRGBA, delayMS uint) {
	if !strings.EqualFold(filepath.Ext(path), ".webp") {
		fmt.Fprintf(os.Stderr, "Warning: animation %s: only .webp is supported\n", path)
		return
	}
	var frames []*image.NRGBA
	for _, img := range images {
		if img != nil {
			frames = append(frames, img)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: animation: %v\n", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: animation: %v\n", err)
		return
	}
	defer f.Close()
	if err := preview.EncodeAnimatedWebP(f, frames, delayMS); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: animation: %v\n", err)
		return
	}
	fmt.Printf("Animation: %s (%d frames)\n", path, len(frames))
}
