// Package config loads startup defaults from a config file and the
// environment. Env var overrides use prefix INBETWEENER_; CLI flags win
// over both through Resolve.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"pose-inbetweener/internal/input"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/session"
)

// Config holds every configurable setting.
type Config struct {
	Scene   SceneConfig   `mapstructure:"scene"`
	Blend   BlendConfig   `mapstructure:"blend"`
	Input   InputConfig   `mapstructure:"input"`
	Preview PreviewConfig `mapstructure:"preview"`
}

// SceneConfig locates the scene to edit: a .json file or a .db store.
type SceneConfig struct {
	Path string `mapstructure:"path"`
}

type BlendConfig struct {
	Mode      string `mapstructure:"mode"`
	Overshoot bool   `mapstructure:"overshoot"`
	Channels  string `mapstructure:"channels"`
	Rotation  string `mapstructure:"rotation"`
	Bracket   string `mapstructure:"bracket"`
}

type InputConfig struct {
	Travel        float64 `mapstructure:"travel"`
	FineFactor    float64 `mapstructure:"fine_factor"`
	SnapIncrement float64 `mapstructure:"snap_increment"`
}

// PreviewConfig holds offline preview render settings.
type PreviewConfig struct {
	Size        int    `mapstructure:"size"`
	Supersample int    `mapstructure:"supersample"`
	Steps       int    `mapstructure:"steps"`
	Plane       string `mapstructure:"plane"`
	Format      string `mapstructure:"format"`
	Workers     int    `mapstructure:"workers"`
	Output      string `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scene.path", "scene.json")
	v.SetDefault("blend.mode", pose.BlendFromCurrent.String())
	v.SetDefault("blend.overshoot", false)
	v.SetDefault("blend.channels", "all")
	v.SetDefault("blend.rotation", pose.Spherical.String())
	v.SetDefault("blend.bracket", pose.PerChannel.String())
	v.SetDefault("input.travel", input.DefaultConfig().Travel)
	v.SetDefault("input.fine_factor", input.DefaultConfig().FineFactor)
	v.SetDefault("input.snap_increment", input.DefaultConfig().SnapIncrement)
	v.SetDefault("preview.size", 256)
	v.SetDefault("preview.supersample", 2)
	v.SetDefault("preview.steps", 9)
	v.SetDefault("preview.plane", "front")
	v.SetDefault("preview.format", "webp")
	v.SetDefault("preview.workers", 0)
	v.SetDefault("preview.output", "preview.webp")
}

// Load reads configuration from path, or when path is empty from
// $INBETWEENER_CONFIG or ~/.config/inbetweener/config.toml if present.
// An explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("INBETWEENER_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "inbetweener"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("INBETWEENER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return c, nil
}

// Save writes cfg to path. The format follows the file extension.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir %s: %w", filepath.Dir(path), err)
	}

	v := viper.New()
	v.Set("scene.path", cfg.Scene.Path)
	v.Set("blend.mode", cfg.Blend.Mode)
	v.Set("blend.overshoot", cfg.Blend.Overshoot)
	v.Set("blend.channels", cfg.Blend.Channels)
	v.Set("blend.rotation", cfg.Blend.Rotation)
	v.Set("blend.bracket", cfg.Blend.Bracket)
	v.Set("input.travel", cfg.Input.Travel)
	v.Set("input.fine_factor", cfg.Input.FineFactor)
	v.Set("input.snap_increment", cfg.Input.SnapIncrement)
	v.Set("preview.size", cfg.Preview.Size)
	v.Set("preview.supersample", cfg.Preview.Supersample)
	v.Set("preview.steps", cfg.Preview.Steps)
	v.Set("preview.plane", cfg.Preview.Plane)
	v.Set("preview.format", cfg.Preview.Format)
	v.Set("preview.workers", cfg.Preview.Workers)
	v.Set("preview.output", cfg.Preview.Output)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the loaded setting alone.
type Flags struct {
	Scene     string
	Mode      string
	Channels  string
	Rotation  string
	Bracket   string
	Overshoot bool
	Travel    float64
	Size      int
	Steps     int
	Plane     string
	Format    string
	Workers   int
	Output    string
}

// Resolve applies flags, then fills anything still unset with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Scene != "" {
		c.Scene.Path = flags.Scene
	}
	if flags.Mode != "" {
		c.Blend.Mode = flags.Mode
	}
	if flags.Channels != "" {
		c.Blend.Channels = flags.Channels
	}
	if flags.Rotation != "" {
		c.Blend.Rotation = flags.Rotation
	}
	if flags.Bracket != "" {
		c.Blend.Bracket = flags.Bracket
	}
	if flags.Overshoot {
		c.Blend.Overshoot = true
	}
	if flags.Travel > 0 {
		c.Input.Travel = flags.Travel
	}
	if flags.Size > 0 {
		c.Preview.Size = flags.Size
	}
	if flags.Steps > 0 {
		c.Preview.Steps = flags.Steps
	}
	if flags.Plane != "" {
		c.Preview.Plane = flags.Plane
	}
	if flags.Format != "" {
		c.Preview.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Preview.Workers = flags.Workers
	}
	if flags.Output != "" {
		c.Preview.Output = flags.Output
	}

	def := input.DefaultConfig()
	if c.Input.Travel <= 0 {
		c.Input.Travel = def.Travel
	}
	if c.Input.FineFactor <= 0 {
		c.Input.FineFactor = def.FineFactor
	}
	if c.Input.SnapIncrement <= 0 {
		c.Input.SnapIncrement = def.SnapIncrement
	}
	if c.Preview.Size <= 0 {
		c.Preview.Size = 256
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.Preview.Steps < 2 {
		c.Preview.Steps = 9
	}
	if c.Preview.Workers <= 0 {
		c.Preview.Workers = runtime.NumCPU()
	}
}

// Settings converts the blend section into session settings.
func (c Config) Settings() (session.Settings, error) {
	s := session.DefaultSettings()
	var err error
	if s.Mode, err = pose.ParseBlendMode(c.Blend.Mode); err != nil {
		return s, fmt.Errorf("config: blend.mode: %w", err)
	}
	if s.Mask, err = pose.ParseChannelMask(c.Blend.Channels); err != nil {
		return s, fmt.Errorf("config: blend.channels: %w", err)
	}
	if s.Rotation, err = pose.ParseRotationInterp(c.Blend.Rotation); err != nil {
		return s, fmt.Errorf("config: blend.rotation: %w", err)
	}
	if s.Bracket, err = pose.ParseBracket(c.Blend.Bracket); err != nil {
		return s, fmt.Errorf("config: blend.bracket: %w", err)
	}
	s.Overshoot = pose.OvershootFromBool(c.Blend.Overshoot)
	return s, nil
}

// InputConfig returns the pointer mapping settings.
func (c Config) InputConfig() input.Config {
	return input.Config{
		Travel:        c.Input.Travel,
		FineFactor:    c.Input.FineFactor,
		SnapIncrement: c.Input.SnapIncrement,
	}
}
