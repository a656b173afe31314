// Package neighbor finds the keyframes bracketing the current time for
// every target of a working set.
package neighbor

import (
	"fmt"
	"math"

	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/pose"
)

// Interaction is the fixed input of one drag: neighborhoods for every
// blendable target plus the targets that had no keys on either side.
type Interaction struct {
	Time          float64
	Neighborhoods []pose.Neighborhood
	Skipped       []pose.Target
}

// Targets returns the targets that will be blended.
func (in Interaction) Targets() []pose.Target {
	out := make([]pose.Target, len(in.Neighborhoods))
	for i, nb := range in.Neighborhoods {
		out[i] = nb.Target()
	}
	return out
}

// Empty reports that nothing can be blended.
func (in Interaction) Empty() bool {
	return len(in.Neighborhoods) == 0
}

// Locator reads neighborhoods from a host.
type Locator struct {
	r       host.Reader
	bracket pose.Bracket
}

func New(r host.Reader, bracket pose.Bracket) *Locator {
	return &Locator{r: r, bracket: bracket}
}

// Locate returns the neighborhood of one target at time t. skipped is true
// when no key exists on either side; the neighborhood is then degenerate.
func (l *Locator) Locate(obj pose.ObjectID, ch pose.Channel, t float64) (nb pose.Neighborhood, skipped bool, err error) {
	prev, next, err := l.r.NeighborKeyframes(obj, ch, t)
	if err != nil {
		return pose.Neighborhood{}, false, fmt.Errorf("neighbor: locate %s/%s: %w", obj, ch, err)
	}
	cur, err := l.r.CurrentPose(obj, ch)
	if err != nil {
		return pose.Neighborhood{}, false, fmt.Errorf("neighbor: current pose %s/%s: %w", obj, ch, err)
	}

	nb = pose.Neighborhood{
		Object:   obj,
		Channel:  ch,
		Time:     t,
		Previous: onlyChannel(prev, ch),
		Next:     onlyChannel(next, ch),
		Current:  cur.Only(ch),
	}
	return nb, nb.Degenerate(), nil
}

// LocateAll builds the interaction for a working set at time t.
func (l *Locator) LocateAll(targets []pose.Target, t float64) (Interaction, error) {
	in := Interaction{Time: t}
	located := make([]pose.Neighborhood, 0, len(targets))

	for _, tg := range targets {
		nb, skipped, err := l.Locate(tg.Object, tg.Channel, t)
		if err != nil {
			return Interaction{}, err
		}
		if skipped && l.bracket == pose.PerChannel {
			in.Skipped = append(in.Skipped, tg)
			continue
		}
		located = append(located, nb)
	}

	if l.bracket == pose.Shared {
		return l.share(in, located)
	}
	in.Neighborhoods = located
	return in, nil
}

// share rebrackets every neighborhood on the latest previous key and the
// earliest next key found anywhere in the set.
func (l *Locator) share(in Interaction, located []pose.Neighborhood) (Interaction, error) {
	prevTime, nextTime := math.Inf(-1), math.Inf(1)
	for _, nb := range located {
		if nb.Previous != nil && nb.Previous.Time > prevTime {
			prevTime = nb.Previous.Time
		}
		if nb.Next != nil && nb.Next.Time < nextTime {
			nextTime = nb.Next.Time
		}
	}
	hasPrev, hasNext := !math.IsInf(prevTime, -1), !math.IsInf(nextTime, 1)

	if !hasPrev && !hasNext {
		for _, nb := range located {
			in.Skipped = append(in.Skipped, nb.Target())
		}
		return in, nil
	}

	for _, nb := range located {
		nb.Previous, nb.Next = nil, nil
		if hasPrev {
			kf, err := l.sample(nb, prevTime)
			if err != nil {
				return Interaction{}, err
			}
			nb.Previous = kf
		}
		if hasNext {
			kf, err := l.sample(nb, nextTime)
			if err != nil {
				return Interaction{}, err
			}
			nb.Next = kf
		}
		in.Neighborhoods = append(in.Neighborhoods, nb)
	}
	return in, nil
}

func (l *Locator) sample(nb pose.Neighborhood, t float64) (*pose.Keyframe, error) {
	s, err := l.r.PoseAt(nb.Object, nb.Channel, t)
	if err != nil {
		return nil, fmt.Errorf("neighbor: evaluate %s/%s at %g: %w", nb.Object, nb.Channel, t, err)
	}
	return &pose.Keyframe{Time: t, Sample: s.Only(nb.Channel)}, nil
}

func onlyChannel(kf *pose.Keyframe, ch pose.Channel) *pose.Keyframe {
	if kf == nil {
		return nil
	}
	return &pose.Keyframe{Time: kf.Time, Sample: kf.Sample.Only(ch)}
}
