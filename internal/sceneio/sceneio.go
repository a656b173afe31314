// Package sceneio opens and saves scenes by path: .db paths go through the
// SQLite store under a scene name, anything else is a JSON scene file.
package sceneio

import (
	"context"
	"path/filepath"
	"strings"

	"pose-inbetweener/internal/scene"
	"pose-inbetweener/internal/scenedb"
)

// DefaultName is the scene name used in a store when none is given.
const DefaultName = "default"

func isStore(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Load reads the scene at path. name selects a scene inside a store.
func Load(ctx context.Context, path, name string) (*scene.Scene, error) {
	if !isStore(path) {
		return scene.Load(path)
	}
	st, err := scenedb.OpenStore(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	if name == "" {
		name = DefaultName
	}
	return st.Load(ctx, name)
}

// Save writes sc to path.
func Save(ctx context.Context, sc *scene.Scene, path, name string) error {
	if !isStore(path) {
		return sc.Save(path)
	}
	st, err := scenedb.OpenStore(path)
	if err != nil {
		return err
	}
	defer st.Close()
	if name == "" {
		name = DefaultName
	}
	_, err = st.Save(ctx, name, sc)
	return err
}
