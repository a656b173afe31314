package batch

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVisitsEveryIndex(t *testing.T) {
	var calls atomic.Int64
	seen := make([]bool, 50)
	results := Run(Config{Workers: 4}, len(seen), func(i int) error {
		calls.Add(1)
		seen[i] = true
		if i == 7 {
			return errors.New("bad frame")
		}
		return nil
	})

	require.Len(t, results, 50)
	assert.Equal(t, int64(50), calls.Load())
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.True(t, seen[i])
	}
	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, 7, failed[0].Index)
	assert.Equal(t, "bad frame", failed[0].Error)
}

func TestRunRecoversPanics(t *testing.T) {
	results := Run(Config{Workers: 2}, 3, func(i int) error {
		if i == 1 {
			panic("boom")
		}
		return nil
	})
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "boom")
	assert.True(t, results[0].Success)
}

func TestRunZeroJobs(t *testing.T) {
	assert.Empty(t, Run(Config{}, 0, func(int) error { return nil }))
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, []ManifestEntry{{Index: 0, Value: 0.5, Image: "0.webp"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []ManifestEntry
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 0.5, got[0].Value)
}
