package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"pose-inbetweener/internal/config"
	"pose-inbetweener/internal/input"
	"pose-inbetweener/internal/neighbor"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/scene"
	"pose-inbetweener/internal/sceneio"
	"pose-inbetweener/internal/session"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (default: $INBETWEENER_CONFIG or ~/.config/inbetweener/config.toml)")
	scenePath := flag.String("scene", "", "Scene file (.json) or scene store (.db)")
	name := flag.String("name", "", "Scene name inside a .db store (default: \"default\")")
	output := flag.String("output", "", "Where to save the edited scene (default: overwrite -scene)")
	value := flag.String("value", "", "Blend value to key, e.g. 0.25 or 25%")
	drag := flag.String("drag", "", "Comma separated pointer deltas in pixels, e.g. 40,30,-10")
	snap := flag.Bool("snap", false, "Quantize dragged values to the snap increment")
	fine := flag.Bool("fine", false, "Reduce drag sensitivity")
	at := flag.Float64("time", math.NaN(), "Scene time to key at (default: the scene's time)")
	selection := flag.String("select", "", "Comma separated objects to select (default: the scene's selection)")
	mode := flag.String("mode", "", "Blend mode: current or absolute")
	channels := flag.String("channels", "", "Channels to blend, e.g. tr or all")
	rotation := flag.String("rotation", "", "Rotation interpolation: slerp or euler")
	bracket := flag.String("bracket", "", "Neighbor bracketing: channel or shared")
	overshoot := flag.Bool("overshoot", false, "Allow values outside the blend range")
	dryRun := flag.Bool("dry-run", false, "Blend and print the result, then cancel without keying")
	verbose := flag.Bool("v", false, "Log interaction details to stderr")

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
	})

	settings, err := cfg.Settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *value == "" && *drag == "" {
		fmt.Fprintln(os.Stderr, "Error: nothing to do. Use -value or -drag.")
		os.Exit(1)
	}
	deltas, err := parseDeltas(*drag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -drag: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	sc, err := sceneio.Load(ctx, cfg.Scene.Path, *name)
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
	if *selection != "" {
		var ids []pose.ObjectID
		for _, id := range strings.Split(*selection, ",") {
			id = strings.TrimSpace(id)
			if _, ok := sc.Object(pose.ObjectID(id)); !ok {
				fmt.Fprintf(os.Stderr, "Error: -select: unknown object %q\n", id)
				os.Exit(1)
			}
			ids = append(ids, pose.ObjectID(id))
		}
		sc.SetSelection(ids...)
	}

	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	sess := session.New(sc, settings,
		session.WithLogger(log.New(logOut, "", log.LstdFlags)),
		session.WithInput(cfg.InputConfig()),
	)

	fmt.Printf("Scene: %s (time %g)\n", cfg.Scene.Path, sc.CurrentTime())
	fmt.Printf("Mode: %s, Channels: %s, Overshoot: %s\n", settings.Mode, settings.Mask, settings.Overshoot)
	fmt.Println("------------------------------------------------------------")

	in, err := run(sc, sess, *value, deltas, modifiers(*snap, *fine), *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("------------------------------------------------------------")

	if *dryRun {
		fmt.Println("Dry run: nothing keyed.")
		return
	}
	if len(sc.History()) == 0 {
		fmt.Println("Nothing keyed.")
		return
	}

	dst := *output
	if dst == "" {
		dst = cfg.Scene.Path
	}
	if err := sceneio.Save(ctx, sc, dst, *name); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving scene: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Keyed %d channel(s) at %g → %s\n", len(in.Targets()), in.Time, dst)
}

// run drives one interaction: the drag deltas, then the typed value if
// any. It prints the blended pose before keying or cancelling.
func run(sc *scene.Scene, sess *session.Session, value string, deltas []float64, mods input.Modifiers, dryRun bool) (neighbor.Interaction, error) {
	if value != "" {
		if _, err := input.ParseEntry(value); err != nil {
			return neighbor.Interaction{}, err
		}
	}
	if err := sess.OnDragStart(); err != nil {
		return neighbor.Interaction{}, err
	}
	in := sess.Interaction()
	for _, tg := range in.Skipped {
		fmt.Printf("  skipped %s: no keys on either side\n", tg)
	}
	if in.Empty() {
		fmt.Println("Nothing to blend.")
		return in, sess.OnDragEnd()
	}

	for _, d := range deltas {
		if err := sess.OnDragMove(d, mods); err != nil {
			return in, err
		}
		fmt.Printf("  drag %+g px → %.3f\n", d, sess.Value())
	}
	if value != "" {
		if err := sess.OnManualValueEntered(value); err != nil {
			return in, err
		}
	}
	fmt.Printf("Value: %.3f\n", sess.Value())
	printPoses(sc, in.Targets())

	if dryRun {
		return in, sess.OnCancel()
	}
	return in, sess.OnDragEnd()
}

func modifiers(snap, fine bool) input.Modifiers {
	var m input.Modifiers
	if snap {
		m |= input.ModSnap
	}
	if fine {
		m |= input.ModFine
	}
	return m
}

func parseDeltas(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, f := range strings.Split(s, ",") {
		d, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad delta %q", f)
		}
		out = append(out, d)
	}
	return out, nil
}

func printPoses(sc *scene.Scene, targets []pose.Target) {
	for _, tg := range targets {
		p, err := sc.CurrentPose(tg.Object, tg.Channel)
		if err != nil {
			fmt.Printf("  %-24s %v\n", tg, err)
			continue
		}
		fmt.Printf("  %-24s %s\n", tg, p.Only(tg.Channel))
	}
}
