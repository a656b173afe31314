package pose

import (
	"fmt"

	"pose-inbetweener/internal/mathutil"
)

// Sample is the transform of one object, restricted to the channels in
// Channels. Entries for absent channels are zero and must be ignored.
type Sample struct {
	Translation mathutil.Vec3
	Rotation    mathutil.Quat
	Scale       mathutil.Vec3
	Channels    ChannelMask
}

// Rest returns the identity transform with every channel present.
func Rest() Sample {
	return Sample{
		Rotation: mathutil.QuatIdentity(),
		Scale:    mathutil.Vec3{1, 1, 1},
		Channels: AllChannels,
	}
}

// TranslationSample returns a sample holding only a translation.
func TranslationSample(v mathutil.Vec3) Sample {
	return Sample{Translation: v, Channels: Only(Translation)}
}

// RotationSample returns a sample holding only a rotation.
func RotationSample(q mathutil.Quat) Sample {
	return Sample{Rotation: q, Channels: Only(Rotation)}
}

// ScaleSample returns a sample holding only a scale.
func ScaleSample(v mathutil.Vec3) Sample {
	return Sample{Scale: v, Channels: Only(Scale)}
}

func (s Sample) Has(c Channel) bool {
	return s.Channels.Has(c)
}

// Only returns s restricted to channel c. The result is empty if s lacks c.
func (s Sample) Only(c Channel) Sample {
	if !s.Has(c) {
		return Sample{}
	}
	out := Sample{Channels: ChannelMask(1 << c)}
	switch c {
	case Translation:
		out.Translation = s.Translation
	case Rotation:
		out.Rotation = s.Rotation
	case Scale:
		out.Scale = s.Scale
	}
	return out
}

// Merge returns s with every channel present in o copied over.
func (s Sample) Merge(o Sample) Sample {
	if o.Has(Translation) {
		s.Translation = o.Translation
	}
	if o.Has(Rotation) {
		s.Rotation = o.Rotation
	}
	if o.Has(Scale) {
		s.Scale = o.Scale
	}
	s.Channels |= o.Channels
	return s
}

// Equal compares the present channels of two samples within eps.
// Rotations compare as rotations, so q and -q are equal.
func (s Sample) Equal(o Sample, eps float64) bool {
	if s.Channels != o.Channels {
		return false
	}
	if s.Has(Translation) && !s.Translation.Near(o.Translation, eps) {
		return false
	}
	if s.Has(Rotation) && !s.Rotation.Near(o.Rotation, eps) {
		return false
	}
	if s.Has(Scale) && !s.Scale.Near(o.Scale, eps) {
		return false
	}
	return true
}

func (s Sample) String() string {
	out := "{"
	if s.Has(Translation) {
		out += fmt.Sprintf(" t=(%.4g,%.4g,%.4g)", s.Translation[0], s.Translation[1], s.Translation[2])
	}
	if s.Has(Rotation) {
		e := mathutil.QuatToEulerDeg(s.Rotation)
		out += fmt.Sprintf(" r=(%.4g,%.4g,%.4g)°", e[0], e[1], e[2])
	}
	if s.Has(Scale) {
		out += fmt.Sprintf(" s=(%.4g,%.4g,%.4g)", s.Scale[0], s.Scale[1], s.Scale[2])
	}
	return out + " }"
}
