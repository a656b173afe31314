// Package pose holds the value types shared by every stage of an inbetween
// interaction: channels and masks, pose samples, keyframes, neighborhoods
// and the blend settings that are read on every computation.
package pose

import (
	"fmt"
	"strings"
)

// Channel is one transform channel of an animated object.
type Channel uint8

const (
	Translation Channel = iota
	Rotation
	Scale
)

// Channels lists every channel in canonical order.
var Channels = [...]Channel{Translation, Rotation, Scale}

func (c Channel) String() string {
	switch c {
	case Translation:
		return "translation"
	case Rotation:
		return "rotation"
	case Scale:
		return "scale"
	}
	return fmt.Sprintf("channel(%d)", uint8(c))
}

// Letter is the single-letter name used by toggles and mask strings.
func (c Channel) Letter() string {
	switch c {
	case Translation:
		return "t"
	case Rotation:
		return "r"
	case Scale:
		return "s"
	}
	return "?"
}

// ParseChannel accepts a full name or letter, case-insensitive.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "translation", "translate":
		return Translation, nil
	case "r", "rotation", "rotate":
		return Rotation, nil
	case "s", "scale", "scaling":
		return Scale, nil
	}
	return 0, fmt.Errorf("pose: unknown channel %q", s)
}

// ChannelMask is the set of channels a blend may touch. The zero mask is
// valid and turns every blend into a pass-through.
type ChannelMask uint8

// AllChannels is the default mask.
const AllChannels = ChannelMask(1<<Translation | 1<<Rotation | 1<<Scale)

// MaskOf builds a mask from the given channels.
func MaskOf(chs ...Channel) ChannelMask {
	var m ChannelMask
	for _, c := range chs {
		m = m.With(c)
	}
	return m
}

func (m ChannelMask) Has(c Channel) bool {
	return m&(1<<c) != 0
}

func (m ChannelMask) With(c Channel) ChannelMask {
	return m | 1<<c
}

func (m ChannelMask) Without(c Channel) ChannelMask {
	return m &^ (1 << c)
}

// Set returns m with c enabled or disabled.
func (m ChannelMask) Set(c Channel, enabled bool) ChannelMask {
	if enabled {
		return m.With(c)
	}
	return m.Without(c)
}

// Only returns a mask holding just c.
func Only(c Channel) ChannelMask {
	return ChannelMask(1 << c)
}

func (m ChannelMask) Empty() bool {
	return m&AllChannels == 0
}

// Intersect returns the channels present in both masks.
func (m ChannelMask) Intersect(o ChannelMask) ChannelMask {
	return m & o
}

// List returns the enabled channels in canonical order.
func (m ChannelMask) List() []Channel {
	out := make([]Channel, 0, len(Channels))
	for _, c := range Channels {
		if m.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String renders the mask as letters, e.g. "tr". The empty mask is "-".
func (m ChannelMask) String() string {
	var b strings.Builder
	for _, c := range m.List() {
		b.WriteString(c.Letter())
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// ParseChannelMask parses letters ("trs"), comma separated names
// ("translation,rotation"), "all", or "-"/"none"/"" for the empty mask.
func ParseChannelMask(s string) (ChannelMask, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "all":
		return AllChannels, nil
	case "", "-", "none":
		return 0, nil
	}

	var m ChannelMask
	if strings.ContainsAny(s, ", ") {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			c, err := ParseChannel(part)
			if err != nil {
				return 0, err
			}
			m = m.With(c)
		}
		return m, nil
	}

	if c, err := ParseChannel(s); err == nil {
		return Only(c), nil
	}
	for _, r := range s {
		c, err := ParseChannel(string(r))
		if err != nil {
			return 0, fmt.Errorf("pose: parse channel mask %q: %w", s, err)
		}
		m = m.With(c)
	}
	return m, nil
}
