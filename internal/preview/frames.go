// Package preview renders a sweep of control values as stick-figure
// frames: an onion-skin sheet, per-frame images, or an animated WebP.
package preview

import (
	"fmt"

	"pose-inbetweener/internal/blend"
	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/neighbor"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/scene"
	"pose-inbetweener/internal/skeleton"
)

// Frame is the scene posed at one control value.
type Frame struct {
	Value  float64
	Joints []skeleton.Joint
	Worlds map[pose.ObjectID]mathutil.Mat4
}

// SweepValues spreads steps values over the mode's range. Unbounded
// overshoot widens the range by half its length on each side.
func SweepValues(mode pose.BlendMode, policy pose.OvershootPolicy, steps int) []float64 {
	if steps < 2 {
		steps = 2
	}
	lo, hi := mode.Range()
	if policy == pose.Unbounded {
		pad := (hi - lo) / 2
		lo, hi = lo-pad, hi+pad
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(steps-1)
	}
	return out
}

// Frames blends the interaction at every value and poses the whole scene.
// Objects outside the interaction keep their live pose.
func Frames(sc *scene.Scene, in neighbor.Interaction, p blend.Params, values []float64) ([]Frame, error) {
	frames := make([]Frame, 0, len(values))
	for _, v := range values {
		joints, err := skeleton.FromScene(sc, blend.Pose(in.Neighborhoods, v, p))
		if err != nil {
			return nil, err
		}
		worlds, err := skeleton.BuildWorldMatrices(joints)
		if err != nil {
			return nil, fmt.Errorf("preview: frame %g: %w", v, err)
		}
		frames = append(frames, Frame{Value: v, Joints: joints, Worlds: worlds})
	}
	return frames, nil
}

func (f Frame) points() []mathutil.Vec3 {
	out := make([]mathutil.Vec3, 0, len(f.Worlds))
	for _, j := range f.Joints {
		out = append(out, f.Worlds[j.ID].Translation())
	}
	return out
}
