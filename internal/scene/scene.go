// Package scene is an in-memory animation host. It keeps per-channel key
// lists for a flat set of objects, a live pose override layer and an undo
// journal, and implements host.Host.
package scene

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/pose"
)

var ErrNothingToUndo = errors.New("scene: nothing to undo")

// Object is one animated transform.
type Object struct {
	ID     pose.ObjectID
	Parent pose.ObjectID
	// Locked objects reject keyframe writes. Their live pose can still be
	// edited.
	Locked bool
	// Rest is the pose of channels that carry no keys.
	Rest pose.Sample
	// Keys holds one time-sorted key list per channel.
	Keys [3][]pose.Keyframe
}

// Scene is safe for concurrent use.
type Scene struct {
	mu sync.RWMutex

	objects   map[pose.ObjectID]*Object
	order     []pose.ObjectID
	selection []pose.ObjectID
	keying    host.KeyingMode
	groups    []host.KeyingGroup
	time      float64

	live    map[pose.Target]pose.Sample
	pending *change
	history []*change
}

var _ host.Host = (*Scene)(nil)

func New() *Scene {
	return &Scene{
		objects: make(map[pose.ObjectID]*Object),
		live:    make(map[pose.Target]pose.Sample),
	}
}

// AddObject registers an object. Keys are sorted; a missing rest channel
// defaults to the identity transform.
func (s *Scene) AddObject(o Object) error {
	if o.ID == "" {
		return errors.New("scene: object without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[o.ID]; ok {
		return fmt.Errorf("scene: duplicate object %s", o.ID)
	}
	o.Rest = pose.Rest().Merge(o.Rest)
	for ch := range o.Keys {
		keys := append([]pose.Keyframe(nil), o.Keys[ch]...)
		sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
		for i := range keys {
			keys[i].Sample = keys[i].Sample.Only(pose.Channel(ch))
		}
		o.Keys[ch] = keys
	}
	s.objects[o.ID] = &o
	s.order = append(s.order, o.ID)
	return nil
}

// Object returns a copy of the object with the given id.
func (s *Scene) Object(id pose.ObjectID) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[id]
	if !ok {
		return Object{}, false
	}
	cp := *o
	for ch := range cp.Keys {
		cp.Keys[ch] = append([]pose.Keyframe(nil), o.Keys[ch]...)
	}
	return cp, true
}

// Objects lists object ids in insertion order.
func (s *Scene) Objects() []pose.ObjectID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pose.ObjectID(nil), s.order...)
}

func (s *Scene) SetLocked(id pose.ObjectID, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("scene: lock %s: %w", id, host.ErrUnknownObject)
	}
	o.Locked = locked
	return nil
}

func (s *Scene) SetSelection(ids ...pose.ObjectID) {
	s.mu.Lock()
	s.selection = append([]pose.ObjectID(nil), ids...)
	s.mu.Unlock()
}

func (s *Scene) SetKeyingMode(m host.KeyingMode) {
	s.mu.Lock()
	s.keying = m
	s.mu.Unlock()
}

func (s *Scene) SetKeyingGroups(groups []host.KeyingGroup) {
	s.mu.Lock()
	s.groups = append([]host.KeyingGroup(nil), groups...)
	s.mu.Unlock()
}

// SetTime moves the playhead. Live overrides are dropped, as a host
// re-evaluates animation when the time changes.
func (s *Scene) SetTime(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return host.ErrInvalidTime
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.time = t
	clear(s.live)
	return nil
}

func (s *Scene) Selection() []pose.ObjectID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pose.ObjectID(nil), s.selection...)
}

func (s *Scene) KeyingMode() host.KeyingMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keying
}

func (s *Scene) KeyingGroups() []host.KeyingGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]host.KeyingGroup(nil), s.groups...)
}

func (s *Scene) CurrentTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}

func (s *Scene) NeighborKeyframes(obj pose.ObjectID, ch pose.Channel, t float64) (prev, next *pose.Keyframe, err error) {
	if math.IsNaN(t) {
		return nil, nil, host.ErrInvalidTime
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[obj]
	if !ok {
		return nil, nil, host.ErrUnknownObject
	}
	keys := o.Keys[ch]
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time >= t })
	if i > 0 {
		kf := keys[i-1]
		prev = &kf
	}
	j := i
	if j < len(keys) && keys[j].Time == t {
		j++
	}
	if j < len(keys) {
		kf := keys[j]
		next = &kf
	}
	return prev, next, nil
}

func (s *Scene) CurrentPose(obj pose.ObjectID, ch pose.Channel) (pose.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[obj]
	if !ok {
		return pose.Sample{}, host.ErrUnknownObject
	}
	if live, ok := s.live[pose.Target{Object: obj, Channel: ch}]; ok {
		return live, nil
	}
	return evaluate(o, ch, s.time), nil
}

func (s *Scene) PoseAt(obj pose.ObjectID, ch pose.Channel, t float64) (pose.Sample, error) {
	if math.IsNaN(t) {
		return pose.Sample{}, host.ErrInvalidTime
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[obj]
	if !ok {
		return pose.Sample{}, host.ErrUnknownObject
	}
	return evaluate(o, ch, t), nil
}

// Pose returns the live pose of every channel of obj.
func (s *Scene) Pose(obj pose.ObjectID) (pose.Sample, error) {
	var out pose.Sample
	for _, ch := range pose.Channels {
		cs, err := s.CurrentPose(obj, ch)
		if err != nil {
			return pose.Sample{}, err
		}
		out = out.Merge(cs)
	}
	return out, nil
}

// evaluate holds the first and last keys outside the key range and
// interpolates linearly (spherically for rotation) between keys.
func evaluate(o *Object, ch pose.Channel, t float64) pose.Sample {
	keys := o.Keys[ch]
	if len(keys) == 0 {
		return o.Rest.Only(ch)
	}
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time >= t })
	switch {
	case i == 0:
		return keys[0].Sample
	case i == len(keys):
		return keys[len(keys)-1].Sample
	case keys[i].Time == t:
		return keys[i].Sample
	}
	a, b := keys[i-1], keys[i]
	u := (t - a.Time) / (b.Time - a.Time)
	out := pose.Sample{Channels: pose.Only(ch)}
	switch ch {
	case pose.Translation:
		out.Translation = a.Sample.Translation.Lerp(b.Sample.Translation, u)
	case pose.Rotation:
		out.Rotation = mathutil.Slerp(a.Sample.Rotation, b.Sample.Rotation, u)
	case pose.Scale:
		out.Scale = a.Sample.Scale.Lerp(b.Sample.Scale, u)
	}
	return out
}
