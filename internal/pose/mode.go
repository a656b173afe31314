package pose

import (
	"fmt"
	"math"
	"strings"
)

// BlendMode selects how the control value maps onto the keyframe bracket.
type BlendMode uint8

const (
	// BlendFromCurrent anchors the signed control value at the live pose:
	// 0 is the current pose, +1 the next key, -1 the previous key.
	BlendFromCurrent BlendMode = iota
	// AbsoluteInbetween places the pose at a fraction between the previous
	// key (0) and the next key (1).
	AbsoluteInbetween
)

func (m BlendMode) String() string {
	switch m {
	case BlendFromCurrent:
		return "blend_from_current"
	case AbsoluteInbetween:
		return "absolute"
	}
	return fmt.Sprintf("blend_mode(%d)", uint8(m))
}

// ParseBlendMode accepts the String forms plus a few aliases.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blend_from_current", "current", "from_current", "relative":
		return BlendFromCurrent, nil
	case "absolute", "absolute_inbetween", "inbetween":
		return AbsoluteInbetween, nil
	}
	return 0, fmt.Errorf("pose: unknown blend mode %q", s)
}

// Neutral is the control value a drag starts from.
func (m BlendMode) Neutral() float64 {
	if m == AbsoluteInbetween {
		return 0.5
	}
	return 0
}

// Range is the clamped interval of control values for the mode.
func (m BlendMode) Range() (lo, hi float64) {
	if m == AbsoluteInbetween {
		return 0, 1
	}
	return -1, 1
}

// OvershootPolicy decides whether control values may leave the mode's range.
type OvershootPolicy uint8

const (
	Clamped OvershootPolicy = iota
	Unbounded
)

func (p OvershootPolicy) String() string {
	if p == Unbounded {
		return "unbounded"
	}
	return "clamped"
}

// OvershootFromBool maps an on/off toggle to a policy.
func OvershootFromBool(enabled bool) OvershootPolicy {
	if enabled {
		return Unbounded
	}
	return Clamped
}

// Bounds returns the interval control values are clamped to. Unbounded
// policies return infinities.
func (p OvershootPolicy) Bounds(m BlendMode) (lo, hi float64) {
	if p == Unbounded {
		return math.Inf(-1), math.Inf(1)
	}
	return m.Range()
}

// Clamp applies the policy to v for mode m.
func (p OvershootPolicy) Clamp(v float64, m BlendMode) float64 {
	lo, hi := p.Bounds(m)
	return math.Max(lo, math.Min(hi, v))
}

// SnapConfig quantizes control values while a snap modifier is held.
type SnapConfig struct {
	Increment float64
	Enabled   bool
}

// Quantize rounds v to the nearest multiple of Increment, ties away from
// zero. Disabled or non-positive increments return v unchanged.
func (s SnapConfig) Quantize(v float64) float64 {
	if !s.Enabled || s.Increment <= 0 {
		return v
	}
	return math.Round(v/s.Increment) * s.Increment
}

// RotationInterp selects the rotation interpolation method.
type RotationInterp uint8

const (
	// Spherical is shortest-arc quaternion slerp.
	Spherical RotationInterp = iota
	// Euler linearly interpolates XYZ Euler angles.
	Euler
)

func (r RotationInterp) String() string {
	if r == Euler {
		return "euler"
	}
	return "quaternion"
}

func ParseRotationInterp(s string) (RotationInterp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quaternion", "slerp", "spherical", "":
		return Spherical, nil
	case "euler":
		return Euler, nil
	}
	return 0, fmt.Errorf("pose: unknown rotation interpolation %q", s)
}

// Bracket selects how previous/next keys are chosen across a working set.
type Bracket uint8

const (
	// PerChannel brackets every (object, channel) by its own keys.
	PerChannel Bracket = iota
	// Shared uses the latest previous and earliest next key time found
	// anywhere in the working set for every target.
	Shared
)

func (b Bracket) String() string {
	if b == Shared {
		return "shared"
	}
	return "per_channel"
}

func ParseBracket(s string) (Bracket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "per_channel", "channel", "":
		return PerChannel, nil
	case "shared", "common":
		return Shared, nil
	}
	return 0, fmt.Errorf("pose: unknown bracket %q", s)
}
