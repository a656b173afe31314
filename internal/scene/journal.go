package scene

import (
	"fmt"
	"math"
	"sort"

	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/pose"
)

// change is one undoable unit. Entries are replayed in reverse to undo.
type change struct {
	label   string
	depth   int
	entries []entry
}

type entry struct {
	target pose.Target

	// live pose edit
	live     bool
	hadLive  bool
	prevLive pose.Sample

	// keyframe edit
	time    float64
	hadKey  bool
	prevKey pose.Keyframe
}

// BeginUndoableChange opens a change. Nested calls join the open change.
func (s *Scene) BeginUndoableChange(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.depth++
		return
	}
	s.pending = &change{label: label, depth: 1}
}

func (s *Scene) EndUndoableChange(commit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.pending
	if c == nil {
		return host.ErrNoChange
	}
	if !commit {
		s.revert(c)
		c.entries = nil
	}
	c.depth--
	if c.depth > 0 {
		return nil
	}
	s.pending = nil
	if len(c.entries) > 0 {
		s.history = append(s.history, c)
	}
	return nil
}

// Undo reverts the most recent committed change.
func (s *Scene) Undo() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil || len(s.history) == 0 {
		return "", ErrNothingToUndo
	}
	c := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.revert(c)
	return c.label, nil
}

// History lists committed change labels, oldest first.
func (s *Scene) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.history))
	for i, c := range s.history {
		out[i] = c.label
	}
	return out
}

func (s *Scene) SetLivePose(obj pose.ObjectID, ch pose.Channel, smp pose.Sample) error {
	if !smp.Has(ch) {
		return fmt.Errorf("scene: live pose %s/%s: sample lacks channel", obj, ch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[obj]; !ok {
		return host.ErrUnknownObject
	}
	tg := pose.Target{Object: obj, Channel: ch}
	prev, had := s.live[tg]
	s.record(entry{target: tg, live: true, hadLive: had, prevLive: prev})
	s.live[tg] = smp.Only(ch)
	return nil
}

func (s *Scene) SetKeyframe(obj pose.ObjectID, ch pose.Channel, t float64, smp pose.Sample) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return host.ErrInvalidTime
	}
	if !smp.Has(ch) {
		return fmt.Errorf("scene: keyframe %s/%s: sample lacks channel", obj, ch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[obj]
	if !ok {
		return host.ErrUnknownObject
	}
	if o.Locked {
		return host.ErrLocked
	}
	keys := o.Keys[ch]
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time >= t })
	kf := pose.Keyframe{Time: t, Sample: smp.Only(ch)}
	e := entry{target: pose.Target{Object: obj, Channel: ch}, time: t}
	if i < len(keys) && keys[i].Time == t {
		e.hadKey, e.prevKey = true, keys[i]
		keys[i] = kf
	} else {
		keys = append(keys, pose.Keyframe{})
		copy(keys[i+1:], keys[i:])
		keys[i] = kf
	}
	o.Keys[ch] = keys
	s.record(e)
	return nil
}

// record journals an edit when a change is open. Edits outside a change
// cannot be undone.
func (s *Scene) record(e entry) {
	if s.pending != nil {
		s.pending.entries = append(s.pending.entries, e)
	}
}

func (s *Scene) revert(c *change) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		if e.live {
			if e.hadLive {
				s.live[e.target] = e.prevLive
			} else {
				delete(s.live, e.target)
			}
			continue
		}
		o := s.objects[e.target.Object]
		keys := o.Keys[e.target.Channel]
		k := sort.Search(len(keys), func(k int) bool { return keys[k].Time >= e.time })
		if k >= len(keys) || keys[k].Time != e.time {
			continue
		}
		if e.hadKey {
			keys[k] = e.prevKey
		} else {
			keys = append(keys[:k], keys[k+1:]...)
		}
		o.Keys[e.target.Channel] = keys
	}
}
