package sceneio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/scene"
	"pose-inbetweener/internal/scenedb"
)

func TestSaveLoadBothFormats(t *testing.T) {
	ctx := context.Background()
	sc := scene.New()
	require.NoError(t, sc.AddObject(scene.Object{ID: "root"}))
	sc.SetSelection("root")

	for _, name := range []string{"scene.json", "scenes.db"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, Save(ctx, sc, path, ""))

		got, err := Load(ctx, path, "")
		require.NoError(t, err, name)
		assert.Equal(t, []pose.ObjectID{"root"}, got.Selection(), name)
	}
}

func TestLoadMissingStoreScene(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "empty.db"), "walk")
	assert.ErrorIs(t, err, scenedb.ErrNotFound)
}
