// Package blend computes inbetween poses. Everything here is a pure function
// of a neighborhood and a control value: no host access, no state.
package blend

import (
	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/pose"
)

// Params are the settings read by every computation.
type Params struct {
	Mode      pose.BlendMode
	Overshoot pose.OvershootPolicy
	Mask      pose.ChannelMask
	Rotation  pose.RotationInterp
}

// DefaultParams blends every channel from the current pose, clamped, with
// spherical rotation interpolation.
func DefaultParams() Params {
	return Params{
		Mode:      pose.BlendFromCurrent,
		Overshoot: pose.Clamped,
		Mask:      pose.AllChannels,
		Rotation:  pose.Spherical,
	}
}

// Compute blends one neighborhood with every channel enabled.
func Compute(nb pose.Neighborhood, value float64, mode pose.BlendMode, policy pose.OvershootPolicy) pose.Sample {
	return ComputeWith(nb, value, Params{
		Mode:      mode,
		Overshoot: policy,
		Mask:      pose.AllChannels,
		Rotation:  pose.Spherical,
	})
}

// ComputeWith blends one neighborhood. The result holds only nb.Channel.
// A channel outside p.Mask comes back as the current pose.
func ComputeWith(nb pose.Neighborhood, value float64, p Params) pose.Sample {
	cur := nb.Current.Only(nb.Channel)
	if !p.Mask.Has(nb.Channel) {
		return cur
	}

	v := p.Overshoot.Clamp(value, p.Mode)

	switch p.Mode {
	case pose.AbsoluteInbetween:
		return absolute(nb, cur, v, p.Rotation)
	default:
		return fromCurrent(nb, cur, v, p.Rotation)
	}
}

func absolute(nb pose.Neighborhood, cur pose.Sample, v float64, rot pose.RotationInterp) pose.Sample {
	switch {
	case nb.Previous != nil && nb.Next != nil:
		return channel(nb.Channel, nb.Previous.Sample, nb.Next.Sample, v, rot)
	case nb.Previous != nil:
		return nb.Previous.Sample.Only(nb.Channel)
	case nb.Next != nil:
		return nb.Next.Sample.Only(nb.Channel)
	}
	return cur
}

// fromCurrent treats the sign of v as the direction: toward Next when
// positive, toward Previous when negative.
func fromCurrent(nb pose.Neighborhood, cur pose.Sample, v float64, rot pose.RotationInterp) pose.Sample {
	if v == 0 {
		return cur
	}
	target := nb.Next
	if v < 0 {
		target, v = nb.Previous, -v
	}
	if target == nil {
		return cur
	}
	return channel(nb.Channel, cur, target.Sample, v, rot)
}

// channel interpolates one channel from a (t=0) to b (t=1).
func channel(ch pose.Channel, a, b pose.Sample, t float64, rot pose.RotationInterp) pose.Sample {
	switch t {
	case 0:
		return a.Only(ch)
	case 1:
		return b.Only(ch)
	}

	switch ch {
	case pose.Translation:
		return pose.TranslationSample(a.Translation.Lerp(b.Translation, t))
	case pose.Rotation:
		return pose.RotationSample(Rotation(a.Rotation, b.Rotation, t, rot))
	case pose.Scale:
		return pose.ScaleSample(a.Scale.Lerp(b.Scale, t))
	}
	return pose.Sample{}
}

// Rotation interpolates two rotations with the chosen method.
func Rotation(a, b mathutil.Quat, t float64, rot pose.RotationInterp) mathutil.Quat {
	if rot == pose.Euler {
		ea := mathutil.QuatToEuler(a)
		eb := mathutil.QuatToEuler(b)
		e := ea.Lerp(eb, t)
		return mathutil.EulerToQuat(e[0], e[1], e[2])
	}
	return mathutil.Slerp(a, b, t)
}

// Pose blends a whole interaction and groups the result per object. Each
// object's sample holds exactly the channels it has neighborhoods for.
func Pose(nbs []pose.Neighborhood, value float64, p Params) map[pose.ObjectID]pose.Sample {
	out := make(map[pose.ObjectID]pose.Sample, len(nbs))
	for _, nb := range nbs {
		out[nb.Object] = out[nb.Object].Merge(ComputeWith(nb, value, p))
	}
	return out
}
