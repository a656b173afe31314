package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pose-inbetweener/internal/pose"
)

func TestMoveScalesByTravel(t *testing.T) {
	m := NewMapper(Config{Travel: 100})
	m.Reset(0)

	assert.InDelta(t, 0.5, m.Move(50, 0, Unbounded), 1e-12)
	assert.InDelta(t, 0.25, m.Move(-25, 0, Unbounded), 1e-12)
}

func TestFineModifierReducesSensitivity(t *testing.T) {
	m := NewMapper(Config{Travel: 100, FineFactor: 0.1})
	m.Reset(0)
	assert.InDelta(t, 0.05, m.Move(50, ModFine, Unbounded), 1e-12)
}

func TestSnapQuantizesToIncrement(t *testing.T) {
	m := NewMapper(Config{Travel: 100, SnapIncrement: 0.25})

	m.Reset(0)
	assert.InDelta(t, 0.25, m.Move(37, ModSnap, Unbounded), 1e-12)

	m.Reset(0)
	assert.InDelta(t, 0.75, m.Move(63, ModSnap, Unbounded), 1e-12)
}

func TestSnapAccumulatesUnsnappedMotion(t *testing.T) {
	m := NewMapper(Config{Travel: 100, SnapIncrement: 0.25})
	m.Reset(0)

	for i := 0; i < 10; i++ {
		m.Move(1, ModSnap, Unbounded)
	}
	assert.InDelta(t, 0.0, m.Value(), 1e-12)

	for i := 0; i < 5; i++ {
		m.Move(1, ModSnap, Unbounded)
	}
	assert.InDelta(t, 0.25, m.Value(), 1e-12)
}

func TestFineAppliesBeforeSnap(t *testing.T) {
	m := NewMapper(Config{Travel: 100, FineFactor: 0.1, SnapIncrement: 0.25})
	m.Reset(0)
	assert.InDelta(t, 0.0, m.Move(100, ModFine|ModSnap, Unbounded), 1e-12)
}

func TestClampedRange(t *testing.T) {
	m := NewMapper(Config{Travel: 100})
	rng := RangeFor(pose.AbsoluteInbetween, pose.Clamped)

	m.Reset(0.5)
	assert.Equal(t, 1.0, m.Move(500, 0, rng))
	// Clamped raw means the way back starts at the boundary.
	assert.InDelta(t, 0.9, m.Move(-10, 0, rng), 1e-12)
	assert.Equal(t, 0.0, m.Move(-1000, 0, rng))

	unbounded := RangeFor(pose.AbsoluteInbetween, pose.Unbounded)
	m.Reset(0.5)
	assert.InDelta(t, 5.5, m.Move(500, 0, unbounded), 1e-12)
}

func TestManualEntryOverridesAndBypassesSnap(t *testing.T) {
	m := NewMapper(DefaultConfig())
	m.Reset(0)

	v, err := m.Enter("0.37", Unbounded)
	require.NoError(t, err)
	assert.InDelta(t, 0.37, v, 1e-12)
	assert.InDelta(t, 0.37, m.Value(), 1e-12)

	v, err = m.Enter("1.4", RangeFor(pose.BlendFromCurrent, pose.Clamped))
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = m.Enter(" 40% ", Unbounded)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, v, 1e-12)
}

func TestInvalidManualEntryKeepsValue(t *testing.T) {
	m := NewMapper(DefaultConfig())
	m.Reset(0.25)

	for _, text := range []string{"abc", "", "1..2", "NaN", "inf"} {
		v, err := m.Enter(text, Unbounded)
		require.ErrorIs(t, err, ErrInvalidEntry, text)
		assert.Equal(t, 0.25, v)
		assert.Equal(t, 0.25, m.Value())
	}
}

func TestNewMapperDefaults(t *testing.T) {
	m := NewMapper(Config{})
	assert.Equal(t, DefaultConfig().Travel, m.Config().Travel)
	assert.Equal(t, DefaultConfig().FineFactor, m.Config().FineFactor)
}
