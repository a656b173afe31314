package neighbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/scene"
)

func translationKeys(times ...float64) [3][]pose.Keyframe {
	var keys [3][]pose.Keyframe
	for _, t := range times {
		keys[pose.Translation] = append(keys[pose.Translation], pose.Keyframe{
			Time:   t,
			Sample: pose.TranslationSample(mathutil.Vec3{t, 0, 0}),
		})
	}
	return keys
}

func newScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New()
	require.NoError(t, s.AddObject(scene.Object{ID: "a", Keys: translationKeys(0, 10)}))
	require.NoError(t, s.AddObject(scene.Object{ID: "b", Keys: translationKeys(2, 8, 20)}))
	require.NoError(t, s.AddObject(scene.Object{ID: "c", Keys: translationKeys(0)}))
	require.NoError(t, s.AddObject(scene.Object{ID: "bare"}))
	require.NoError(t, s.SetTime(5))
	return s
}

func targets(ids ...pose.ObjectID) []pose.Target {
	out := make([]pose.Target, len(ids))
	for i, id := range ids {
		out[i] = pose.Target{Object: id, Channel: pose.Translation}
	}
	return out
}

func TestLocate(t *testing.T) {
	l := New(newScene(t), pose.PerChannel)

	nb, skipped, err := l.Locate("a", pose.Translation, 5)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, 0.0, nb.Previous.Time)
	assert.Equal(t, 10.0, nb.Next.Time)
	assert.Equal(t, mathutil.Vec3{5, 0, 0}, nb.Current.Translation)
	assert.Equal(t, pose.Only(pose.Translation), nb.Current.Channels)

	nb, skipped, err = l.Locate("c", pose.Translation, 5)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.NotNil(t, nb.Previous)
	assert.Nil(t, nb.Next)

	_, skipped, err = l.Locate("bare", pose.Translation, 5)
	require.NoError(t, err)
	assert.True(t, skipped)
}

func TestLocateWrapsHostErrors(t *testing.T) {
	l := New(newScene(t), pose.PerChannel)
	_, _, err := l.Locate("ghost", pose.Rotation, 5)
	require.ErrorIs(t, err, host.ErrUnknownObject)
	assert.Contains(t, err.Error(), "neighbor: locate ghost/rotation")
}

func TestLocateAllPerChannel(t *testing.T) {
	l := New(newScene(t), pose.PerChannel)

	in, err := l.LocateAll(targets("a", "b", "bare"), 5)
	require.NoError(t, err)
	assert.Equal(t, targets("a", "b"), in.Targets())
	assert.Equal(t, targets("bare"), in.Skipped)
	assert.Equal(t, 2.0, in.Neighborhoods[1].Previous.Time)
	assert.Equal(t, 8.0, in.Neighborhoods[1].Next.Time)
}

func TestLocateAllShared(t *testing.T) {
	l := New(newScene(t), pose.Shared)

	in, err := l.LocateAll(targets("a", "b"), 5)
	require.NoError(t, err)
	require.Len(t, in.Neighborhoods, 2)

	// Bracket is the latest previous (2) and earliest next (8) key.
	a := in.Neighborhoods[0]
	assert.Equal(t, 2.0, a.Previous.Time)
	assert.Equal(t, 8.0, a.Next.Time)
	assert.True(t, a.Previous.Sample.Equal(pose.TranslationSample(mathutil.Vec3{2, 0, 0}), 1e-9))
	assert.True(t, a.Next.Sample.Equal(pose.TranslationSample(mathutil.Vec3{8, 0, 0}), 1e-9))
}

func TestLocateAllSharedWithoutKeys(t *testing.T) {
	l := New(newScene(t), pose.Shared)

	in, err := l.LocateAll(targets("bare"), 5)
	require.NoError(t, err)
	assert.True(t, in.Empty())
	assert.Equal(t, targets("bare"), in.Skipped)
}
