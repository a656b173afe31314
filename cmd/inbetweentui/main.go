package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pose-inbetweener/internal/config"
	"pose-inbetweener/internal/sceneio"
	"pose-inbetweener/internal/session"
	"pose-inbetweener/internal/tui"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (default: $INBETWEENER_CONFIG or ~/.config/inbetweener/config.toml)")
	scenePath := flag.String("scene", "", "Scene file (.json) or scene store (.db)")
	name := flag.String("name", "", "Scene name inside a .db store (default: \"default\")")
	at := flag.Float64("time", math.NaN(), "Scene time to key at (default: the scene's time)")
	mode := flag.String("mode", "", "Blend mode: current or absolute")
	channels := flag.String("channels", "", "Channels to blend, e.g. tr or all")
	overshoot := flag.Bool("overshoot", false, "Allow values outside the blend range")
	logFile := flag.String("log", "", "Append interaction log lines to this file")

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
		Overshoot: *overshoot,
	})
	settings, err := cfg.Settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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
	before, err := sc.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to bubbletea, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}

	sess := session.New(sc, settings,
		session.WithLogger(log.New(logOut, "", log.LstdFlags)),
		session.WithInput(cfg.InputConfig()),
	)
	title := fmt.Sprintf("%s @ %g", cfg.Scene.Path, sc.CurrentTime())

	p := tea.NewProgram(tui.New(sess, sc, title), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	after, err := sc.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if bytes.Equal(before, after) {
		fmt.Println("No changes.")
		return
	}
	if err := sceneio.Save(ctx, sc, cfg.Scene.Path, *name); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving scene: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %d change(s) → %s\n", len(sc.History()), cfg.Scene.Path)
}
