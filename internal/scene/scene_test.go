package scene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/pose"
)

const fixture = `{
  "time": 5,
  "keying_mode": "body_part",
  "selection": ["hips"],
  "presets": {
    "origin": {"t": [0, 0, 0], "r": [0, 0, 0]}
  },
  "groups": [
    {"name": "Body", "members": ["hips"]},
    {"name": "Arm", "parent": "Body", "members": ["hand"]}
  ],
  "objects": [
    {"id": "hips", "keys": [
      {"time": 0, "pose": "origin"},
      {"time": 10, "pose": {"t": [10, 0, 0], "r": [0, 90, 0]}}
    ]},
    {"id": "hand", "parent": "hips", "locked": true, "rest": {"s": [2, 2, 2]}, "keys": [
      {"time": 0, "pose": {"t": [1, 0, 0]}}
    ]}
  ]
}`

func loadFixture(t *testing.T) *Scene {
	t.Helper()
	s, err := Parse([]byte(fixture))
	require.NoError(t, err)
	return s
}

func TestParse(t *testing.T) {
	s := loadFixture(t)

	assert.Equal(t, 5.0, s.CurrentTime())
	assert.Equal(t, host.KeyingBodyPart, s.KeyingMode())
	assert.Equal(t, []pose.ObjectID{"hips"}, s.Selection())
	assert.Equal(t, []pose.ObjectID{"hips", "hand"}, s.Objects())
	require.Len(t, s.KeyingGroups(), 2)
	assert.Equal(t, "Body", s.KeyingGroups()[1].Parent)

	hand, ok := s.Object("hand")
	require.True(t, ok)
	assert.True(t, hand.Locked)
	assert.Equal(t, pose.ObjectID("hips"), hand.Parent)
	assert.Len(t, hand.Keys[pose.Translation], 1)
	assert.Empty(t, hand.Keys[pose.Scale])
	assert.Equal(t, mathutil.Vec3{2, 2, 2}, hand.Rest.Scale)
}

func TestParseUnknownPreset(t *testing.T) {
	_, err := Parse([]byte(`{"objects": [{"id": "a", "keys": [{"time": 0, "pose": "missing"}]}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `preset "missing" not found`)
}

func TestParseUnknownSelection(t *testing.T) {
	_, err := Parse([]byte(`{"selection": ["ghost"], "objects": []}`))
	require.ErrorIs(t, err, host.ErrUnknownObject)
}

func TestNeighborKeyframesStrict(t *testing.T) {
	s := loadFixture(t)

	prev, next, err := s.NeighborKeyframes("hips", pose.Translation, 5)
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, 0.0, prev.Time)
	assert.Equal(t, 10.0, next.Time)

	// A key exactly at t is neither neighbor.
	prev, next, err = s.NeighborKeyframes("hips", pose.Translation, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, prev.Time)
	assert.Nil(t, next)

	prev, next, err = s.NeighborKeyframes("hips", pose.Translation, -1)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, 0.0, next.Time)

	_, _, err = s.NeighborKeyframes("ghost", pose.Translation, 5)
	assert.ErrorIs(t, err, host.ErrUnknownObject)
}

func TestEvaluate(t *testing.T) {
	s := loadFixture(t)

	tr, err := s.CurrentPose("hips", pose.Translation)
	require.NoError(t, err)
	assert.True(t, tr.Equal(pose.TranslationSample(mathutil.Vec3{5, 0, 0}), 1e-9), "got %v", tr)

	rot, err := s.PoseAt("hips", pose.Rotation, 5)
	require.NoError(t, err)
	want := pose.RotationSample(mathutil.EulerDegToQuat(mathutil.Vec3{0, 45, 0}))
	assert.True(t, rot.Equal(want, 1e-9), "got %v", rot)

	after, err := s.PoseAt("hand", pose.Translation, 100)
	require.NoError(t, err)
	assert.Equal(t, mathutil.Vec3{1, 0, 0}, after.Translation)

	sc, err := s.PoseAt("hand", pose.Scale, 3)
	require.NoError(t, err)
	assert.Equal(t, pose.ScaleSample(mathutil.Vec3{2, 2, 2}), sc)
}

func TestLiveOverrideClearedBySetTime(t *testing.T) {
	s := loadFixture(t)
	live := pose.TranslationSample(mathutil.Vec3{3, 3, 3})
	require.NoError(t, s.SetLivePose("hips", pose.Translation, live))

	got, err := s.CurrentPose("hips", pose.Translation)
	require.NoError(t, err)
	assert.Equal(t, live, got)

	require.NoError(t, s.SetTime(10))
	got, err = s.CurrentPose("hips", pose.Translation)
	require.NoError(t, err)
	assert.Equal(t, mathutil.Vec3{10, 0, 0}, got.Translation)
}

func TestDiscardedChangeRevertsEverything(t *testing.T) {
	s := loadFixture(t)
	before, err := s.Pose("hips")
	require.NoError(t, err)

	s.BeginUndoableChange("edit")
	require.NoError(t, s.SetLivePose("hips", pose.Translation, pose.TranslationSample(mathutil.Vec3{9, 9, 9})))
	require.NoError(t, s.SetKeyframe("hips", pose.Translation, 5, pose.TranslationSample(mathutil.Vec3{9, 9, 9})))
	require.NoError(t, s.SetKeyframe("hips", pose.Translation, 10, pose.TranslationSample(mathutil.Vec3{1, 1, 1})))
	require.NoError(t, s.EndUndoableChange(false))

	after, err := s.Pose("hips")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	hips, _ := s.Object("hips")
	require.Len(t, hips.Keys[pose.Translation], 2)
	assert.Equal(t, mathutil.Vec3{10, 0, 0}, hips.Keys[pose.Translation][1].Sample.Translation)
	assert.Empty(t, s.History())
}

func TestUndoCommittedChange(t *testing.T) {
	s := loadFixture(t)

	s.BeginUndoableChange("inbetween")
	require.NoError(t, s.SetKeyframe("hips", pose.Translation, 5, pose.TranslationSample(mathutil.Vec3{2, 0, 0})))
	require.NoError(t, s.EndUndoableChange(true))
	assert.Equal(t, []string{"inbetween"}, s.History())

	hips, _ := s.Object("hips")
	assert.Len(t, hips.Keys[pose.Translation], 3)

	label, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, "inbetween", label)
	hips, _ = s.Object("hips")
	assert.Len(t, hips.Keys[pose.Translation], 2)

	_, err = s.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestWriteErrors(t *testing.T) {
	s := loadFixture(t)

	err := s.SetKeyframe("hand", pose.Translation, 5, pose.TranslationSample(mathutil.Vec3{}))
	assert.ErrorIs(t, err, host.ErrLocked)
	assert.NoError(t, s.SetLivePose("hand", pose.Translation, pose.TranslationSample(mathutil.Vec3{})))

	err = s.SetKeyframe("ghost", pose.Translation, 5, pose.TranslationSample(mathutil.Vec3{}))
	assert.ErrorIs(t, err, host.ErrUnknownObject)

	assert.ErrorIs(t, s.EndUndoableChange(true), host.ErrNoChange)
}

func TestSaveRoundTrip(t *testing.T) {
	s := loadFixture(t)
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Objects(), loaded.Objects())
	assert.Equal(t, s.Selection(), loaded.Selection())
	assert.Equal(t, s.KeyingMode(), loaded.KeyingMode())

	for _, id := range s.Objects() {
		for _, ch := range pose.Channels {
			want, err := s.PoseAt(id, ch, 7.5)
			require.NoError(t, err)
			got, err := loaded.PoseAt(id, ch, 7.5)
			require.NoError(t, err)
			assert.True(t, want.Equal(got, 1e-9), "%s/%s: want %v got %v", id, ch, want, got)
		}
	}
}
