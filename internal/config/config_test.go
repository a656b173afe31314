package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pose-inbetweener/internal/pose"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("INBETWEENER_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "scene.json", cfg.Scene.Path)
	assert.Equal(t, 150.0, cfg.Input.Travel)
	assert.Equal(t, 0.25, cfg.Input.SnapIncrement)

	st, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, pose.BlendFromCurrent, st.Mode)
	assert.Equal(t, pose.AllChannels, st.Mask)
	assert.Equal(t, pose.Clamped, st.Overshoot)
	assert.Equal(t, pose.Spherical, st.Rotation)
	assert.Equal(t, pose.PerChannel, st.Bracket)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbetweener.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[blend]
mode = "absolute"
channels = "tr"
overshoot = true

[input]
travel = 300
`), 0o644))
	t.Setenv("INBETWEENER_INPUT_SNAP_INCREMENT", "0.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300.0, cfg.Input.Travel)
	assert.Equal(t, 0.5, cfg.Input.SnapIncrement)

	st, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, pose.AbsoluteInbetween, st.Mode)
	assert.Equal(t, pose.MaskOf(pose.Translation, pose.Rotation), st.Mask)
	assert.Equal(t, pose.Unbounded, st.Overshoot)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestResolveFlagsWin(t *testing.T) {
	cfg := Config{}
	cfg.Blend.Mode = "absolute"
	cfg.Resolve(Flags{Mode: "current", Steps: 5, Workers: 3, Scene: "s.db"})

	assert.Equal(t, "current", cfg.Blend.Mode)
	assert.Equal(t, "s.db", cfg.Scene.Path)
	assert.Equal(t, 5, cfg.Preview.Steps)
	assert.Equal(t, 3, cfg.Preview.Workers)
	assert.Equal(t, 256, cfg.Preview.Size)
	assert.Equal(t, 150.0, cfg.Input.Travel)
}

func TestSettingsRejectsUnknownValues(t *testing.T) {
	cfg := Config{Blend: BlendConfig{Mode: "sideways", Channels: "all"}}
	_, err := cfg.Settings()
	assert.ErrorContains(t, err, "blend.mode")

	cfg = Config{Blend: BlendConfig{Mode: "absolute", Channels: "xyz"}}
	_, err = cfg.Settings()
	assert.ErrorContains(t, err, "blend.channels")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Blend.Mode = "absolute"
	cfg.Preview.Steps = 4

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
