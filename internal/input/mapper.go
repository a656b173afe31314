// Package input converts pointer motion and typed values into control values.
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pose-inbetweener/internal/pose"
)

// ErrInvalidEntry is returned for typed values that are not numbers.
var ErrInvalidEntry = errors.New("input: invalid manual entry")

// Modifiers is the modifier-key state of one pointer event.
type Modifiers uint8

const (
	// ModSnap quantizes the value to the snap increment.
	ModSnap Modifiers = 1 << iota
	// ModFine reduces pointer sensitivity.
	ModFine
)

func (m Modifiers) Has(f Modifiers) bool {
	return m&f != 0
}

// Range is the interval values are clamped to. Infinite bounds disable clamping.
type Range struct {
	Lo, Hi float64
}

// Unbounded does not clamp.
var Unbounded = Range{Lo: math.Inf(-1), Hi: math.Inf(1)}

// RangeFor returns the clamping range for a mode and overshoot policy.
func RangeFor(mode pose.BlendMode, policy pose.OvershootPolicy) Range {
	lo, hi := policy.Bounds(mode)
	return Range{Lo: lo, Hi: hi}
}

func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Lo, math.Min(r.Hi, v))
}

// Config tunes pointer sensitivity and snapping.
type Config struct {
	// Travel is the pointer distance, in pixels, that moves the value by 1.
	Travel float64
	// FineFactor scales pointer deltas while ModFine is held.
	FineFactor float64
	// SnapIncrement is the quantization step while ModSnap is held.
	SnapIncrement float64
}

// DefaultConfig matches a 150 px per unit drag, tenfold fine control and
// quarter steps.
func DefaultConfig() Config {
	return Config{Travel: 150, FineFactor: 0.1, SnapIncrement: 0.25}
}

// Mapper accumulates pointer motion for one drag.
type Mapper struct {
	cfg   Config
	raw   float64
	value float64
}

func NewMapper(cfg Config) *Mapper {
	def := DefaultConfig()
	if cfg.Travel <= 0 {
		cfg.Travel = def.Travel
	}
	if cfg.FineFactor <= 0 {
		cfg.FineFactor = def.FineFactor
	}
	if cfg.SnapIncrement <= 0 {
		cfg.SnapIncrement = def.SnapIncrement
	}
	return &Mapper{cfg: cfg}
}

func (m *Mapper) Config() Config {
	return m.cfg
}

// Value is the last emitted control value.
func (m *Mapper) Value() float64 {
	return m.value
}

// Reset starts a new drag from v.
func (m *Mapper) Reset(v float64) {
	m.raw = v
	m.value = v
}

// Move adds a pointer delta (pixels) and returns the new control value.
// The unsnapped position is kept between calls so that small movements
// under snap still accumulate toward the next step.
func (m *Mapper) Move(delta float64, mods Modifiers, rng Range) float64 {
	if mods.Has(ModFine) {
		delta *= m.cfg.FineFactor
	}
	m.raw = rng.Clamp(m.raw + delta/m.cfg.Travel)

	v := m.raw
	if mods.Has(ModSnap) {
		v = pose.SnapConfig{Increment: m.cfg.SnapIncrement, Enabled: true}.Quantize(v)
	}
	m.value = rng.Clamp(v)
	return m.value
}

// Enter overrides the value with typed text. Snapping never applies to
// typed values; clamping does. Invalid text leaves the value unchanged.
func (m *Mapper) Enter(text string, rng Range) (float64, error) {
	v, err := ParseEntry(text)
	if err != nil {
		return m.value, err
	}
	v = rng.Clamp(v)
	m.raw = v
	m.value = v
	return v, nil
}

// ParseEntry parses a typed control value. A trailing "%" divides by 100.
func ParseEntry(text string) (float64, error) {
	s := strings.TrimSpace(text)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEntry, text)
	}
	if percent {
		v /= 100
	}
	return v, nil
}
