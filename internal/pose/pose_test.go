package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pose-inbetweener/internal/mathutil"
)

func TestChannelMaskToggle(t *testing.T) {
	m := AllChannels
	assert.True(t, m.Has(Translation))
	assert.True(t, m.Has(Rotation))
	assert.True(t, m.Has(Scale))

	m = m.Set(Scale, false)
	assert.False(t, m.Has(Scale))
	assert.Equal(t, "tr", m.String())

	m = m.Set(Scale, true)
	assert.Equal(t, AllChannels, m)

	assert.Equal(t, "r", Only(Rotation).String())
	assert.True(t, ChannelMask(0).Empty())
	assert.Equal(t, "-", ChannelMask(0).String())
	assert.Equal(t, []Channel{Translation, Scale}, MaskOf(Scale, Translation).List())
}

func TestParseChannelMask(t *testing.T) {
	cases := map[string]ChannelMask{
		"trs":                AllChannels,
		"all":                AllChannels,
		"TR":                 MaskOf(Translation, Rotation),
		"rotation":           Only(Rotation),
		"s":                  Only(Scale),
		"translation, scale": MaskOf(Translation, Scale),
		"none":               0,
		"":                   0,
	}
	for in, want := range cases {
		got, err := ParseChannelMask(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseChannelMask("tx")
	assert.Error(t, err)
}

func TestSampleOnlyAndMerge(t *testing.T) {
	full := Sample{
		Translation: mathutil.Vec3{1, 2, 3},
		Rotation:    mathutil.EulerDegToQuat(mathutil.Vec3{0, 45, 0}),
		Scale:       mathutil.Vec3{2, 2, 2},
		Channels:    AllChannels,
	}

	tr := full.Only(Translation)
	assert.Equal(t, Only(Translation), tr.Channels)
	assert.Equal(t, full.Translation, tr.Translation)
	assert.Equal(t, mathutil.Vec3{}, tr.Scale)

	merged := tr.Merge(full.Only(Scale))
	assert.Equal(t, MaskOf(Translation, Scale), merged.Channels)
	assert.Equal(t, full.Scale, merged.Scale)

	assert.Equal(t, Sample{}, TranslationSample(mathutil.Vec3{1, 0, 0}).Only(Rotation))
}

func TestSampleEqualTreatsNegatedQuatAsEqual(t *testing.T) {
	q := mathutil.EulerDegToQuat(mathutil.Vec3{10, 20, 30})
	assert.True(t, RotationSample(q).Equal(RotationSample(q.Neg()), 1e-12))
	assert.False(t, RotationSample(q).Equal(TranslationSample(mathutil.Vec3{}), 1e-12))
}

func TestBlendModeRanges(t *testing.T) {
	lo, hi := AbsoluteInbetween.Range()
	assert.Equal(t, [2]float64{0, 1}, [2]float64{lo, hi})
	lo, hi = BlendFromCurrent.Range()
	assert.Equal(t, [2]float64{-1, 1}, [2]float64{lo, hi})

	assert.Equal(t, 0.5, AbsoluteInbetween.Neutral())
	assert.Equal(t, 0.0, BlendFromCurrent.Neutral())

	assert.Equal(t, 1.0, Clamped.Clamp(1.7, AbsoluteInbetween))
	assert.Equal(t, 0.0, Clamped.Clamp(-0.2, AbsoluteInbetween))
	assert.Equal(t, -1.0, Clamped.Clamp(-3, BlendFromCurrent))
	assert.Equal(t, 1.7, Unbounded.Clamp(1.7, AbsoluteInbetween))

	lo, hi = Unbounded.Bounds(BlendFromCurrent)
	assert.True(t, math.IsInf(lo, -1))
	assert.True(t, math.IsInf(hi, 1))
}

func TestSnapQuantize(t *testing.T) {
	snap := SnapConfig{Increment: 0.25, Enabled: true}
	assert.InDelta(t, 0.25, snap.Quantize(0.37), 1e-12)
	assert.InDelta(t, 0.75, snap.Quantize(0.63), 1e-12)
	assert.InDelta(t, 0.25, snap.Quantize(0.125), 1e-12)
	assert.InDelta(t, -0.25, snap.Quantize(-0.125), 1e-12)
	assert.InDelta(t, 0.37, SnapConfig{Increment: 0.25}.Quantize(0.37), 1e-12)
}

func TestParseEnums(t *testing.T) {
	m, err := ParseBlendMode("absolute")
	require.NoError(t, err)
	assert.Equal(t, AbsoluteInbetween, m)
	_, err = ParseBlendMode("sideways")
	assert.Error(t, err)

	// Names offered by the command-line -mode flags.
	for name, want := range map[string]BlendMode{"current": BlendFromCurrent, "absolute": AbsoluteInbetween} {
		got, err := ParseBlendMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	r, err := ParseRotationInterp("euler")
	require.NoError(t, err)
	assert.Equal(t, Euler, r)

	b, err := ParseBracket("shared")
	require.NoError(t, err)
	assert.Equal(t, Shared, b)
}
