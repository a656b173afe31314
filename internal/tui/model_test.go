package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/scene"
	"pose-inbetweener/internal/session"
)

func newModel(t *testing.T) (Model, *scene.Scene, *session.Session) {
	t.Helper()
	sc := scene.New()
	var keys [3][]pose.Keyframe
	keys[pose.Translation] = []pose.Keyframe{
		{Time: 0, Sample: pose.TranslationSample(mathutil.Vec3{0, 0, 0})},
		{Time: 10, Sample: pose.TranslationSample(mathutil.Vec3{10, 0, 0})},
	}
	require.NoError(t, sc.AddObject(scene.Object{ID: "a", Keys: keys}))
	require.NoError(t, sc.SetTime(5))
	sc.SetSelection("a")

	st := session.DefaultSettings()
	st.Mode = pose.AbsoluteInbetween
	sess := session.New(sc, st)
	return New(sess, sc, "test"), sc, sess
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+right":
		return tea.KeyMsg{Type: tea.KeyCtrlRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func translation(t *testing.T, sc *scene.Scene) mathutil.Vec3 {
	t.Helper()
	p, err := sc.CurrentPose("a", pose.Translation)
	require.NoError(t, err)
	return p.Translation
}

func TestArrowDragAndCommit(t *testing.T) {
	m, sc, sess := newModel(t)

	m = send(m, key("right"))
	assert.True(t, sess.Active())
	assert.InDelta(t, 0.6, sess.Value(), 1e-9)

	m = send(m, key("enter"))
	require.NoError(t, m.Err())
	assert.False(t, sess.Active())
	assert.Equal(t, "keyed", m.Status())
	assert.Len(t, sc.History(), 1)
}

func TestSnapArrow(t *testing.T) {
	m, _, sess := newModel(t)
	send(m, key("ctrl+right"))
	assert.Equal(t, 0.5, sess.Value())
}

func TestEscCancels(t *testing.T) {
	m, sc, sess := newModel(t)
	m = send(m, key("right"), key("right"), key("esc"))
	assert.False(t, sess.Active())
	assert.Equal(t, "cancelled", m.Status())
	assert.Equal(t, mathutil.Vec3{5, 0, 0}, translation(t, sc))
	assert.Empty(t, sc.History())
}

func TestTypedValue(t *testing.T) {
	m, sc, _ := newModel(t)
	m = send(m, key("0"), key("."), key("2"), key("9"), key("backspace"), key("5"))
	assert.Contains(t, m.View(), "value: 0.25_")

	m = send(m, key("enter"))
	require.NoError(t, m.Err())
	assert.Equal(t, mathutil.Vec3{2.5, 0, 0}, translation(t, sc))
	assert.Len(t, sc.History(), 1)

	m = send(m, key("u"))
	require.NoError(t, m.Err())
	assert.Empty(t, sc.History())
}

func TestMouseDrag(t *testing.T) {
	m, sc, sess := newModel(t)
	m = send(m,
		tea.MouseMsg{X: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 20, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
	)
	assert.True(t, sess.Active())
	assert.Equal(t, 1.0, sess.Value())

	send(m, tea.MouseMsg{X: 20, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.False(t, sess.Active())
	assert.Equal(t, mathutil.Vec3{10, 0, 0}, translation(t, sc))
}

func TestToggles(t *testing.T) {
	m, _, sess := newModel(t)

	m = send(m, key("r"))
	assert.Equal(t, pose.MaskOf(pose.Translation, pose.Scale), sess.Settings().Mask)
	m = send(m, key("T"))
	assert.Equal(t, pose.Only(pose.Translation), sess.Settings().Mask)
	m = send(m, key("b"))
	assert.Equal(t, pose.BlendFromCurrent, sess.Settings().Mode)
	m = send(m, key("o"))
	assert.Equal(t, pose.Unbounded, sess.Settings().Overshoot)
	assert.Contains(t, m.View(), "overshoot")
}

func TestQuitCancelsDrag(t *testing.T) {
	m, sc, sess := newModel(t)
	m = send(m, key("right"))
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.False(t, sess.Active())
	assert.Equal(t, mathutil.Vec3{5, 0, 0}, translation(t, sc))
}
