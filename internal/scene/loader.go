package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/pose"
)

// sceneFile matches the JSON schema of a scene file.
//
//	{
//	  "time": 5,
//	  "keying_mode": "body_part",
//	  "selection": ["LeftHand"],
//	  "presets": {"rest": {"t": [0,0,0], "r": [0,0,0], "s": [1,1,1]}},
//	  "groups": [{"name": "LeftArm", "parent": "Body", "members": ["LeftHand"]}],
//	  "objects": [{"id": "LeftHand", "parent": "LeftArm", "rest": "rest",
//	               "keys": [{"time": 0, "pose": {"t": [0,0,0]}}]}]
//	}
//
// A pose is either a preset name or an inline object. Rotations are Euler
// degrees in XYZ order. A key sets only the channels it names.
type sceneFile struct {
	Time       float64                    `json:"time"`
	KeyingMode string                     `json:"keying_mode,omitempty"`
	Selection  []string                   `json:"selection,omitempty"`
	Presets    map[string]json.RawMessage `json:"presets,omitempty"`
	Groups     []groupEntry               `json:"groups,omitempty"`
	Objects    []objectEntry              `json:"objects"`
}

type groupEntry struct {
	Name    string   `json:"name"`
	Parent  string   `json:"parent,omitempty"`
	Members []string `json:"members"`
}

type objectEntry struct {
	ID     string          `json:"id"`
	Parent string          `json:"parent,omitempty"`
	Locked bool            `json:"locked,omitempty"`
	Rest   json.RawMessage `json:"rest,omitempty"`
	Keys   []keyEntry      `json:"keys,omitempty"`
}

type keyEntry struct {
	Time float64         `json:"time"`
	Pose json.RawMessage `json:"pose"`
}

type poseEntry struct {
	T *mathutil.Vec3 `json:"t,omitempty"`
	R *mathutil.Vec3 `json:"r,omitempty"`
	S *mathutil.Vec3 `json:"s,omitempty"`
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene from JSON.
func Parse(raw []byte) (*Scene, error) {
	var file sceneFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	s := New()
	for _, oe := range file.Objects {
		o := Object{ID: pose.ObjectID(oe.ID), Parent: pose.ObjectID(oe.Parent), Locked: oe.Locked}
		if len(oe.Rest) > 0 {
			p, err := resolvePose(oe.Rest, file.Presets)
			if err != nil {
				return nil, fmt.Errorf("object %s rest: %w", oe.ID, err)
			}
			o.Rest = p
		}
		for _, ke := range oe.Keys {
			p, err := resolvePose(ke.Pose, file.Presets)
			if err != nil {
				return nil, fmt.Errorf("object %s key %g: %w", oe.ID, ke.Time, err)
			}
			for _, ch := range p.Channels.List() {
				o.Keys[ch] = append(o.Keys[ch], pose.Keyframe{Time: ke.Time, Sample: p.Only(ch)})
			}
		}
		if err := s.AddObject(o); err != nil {
			return nil, err
		}
	}

	mode, err := host.ParseKeyingMode(file.KeyingMode)
	if err != nil {
		return nil, err
	}
	s.keying = mode
	s.time = file.Time
	for _, id := range file.Selection {
		if _, ok := s.objects[pose.ObjectID(id)]; !ok {
			return nil, fmt.Errorf("selection %s: %w", id, host.ErrUnknownObject)
		}
		s.selection = append(s.selection, pose.ObjectID(id))
	}
	for _, ge := range file.Groups {
		g := host.KeyingGroup{Name: ge.Name, Parent: ge.Parent}
		for _, m := range ge.Members {
			g.Members = append(g.Members, pose.ObjectID(m))
		}
		s.groups = append(s.groups, g)
	}
	return s, nil
}

// resolvePose resolves a json.RawMessage that is either a preset name or an
// inline pose object.
func resolvePose(raw json.RawMessage, presets map[string]json.RawMessage) (pose.Sample, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		presetRaw, ok := presets[name]
		if !ok {
			return pose.Sample{}, fmt.Errorf("preset %q not found", name)
		}
		raw = presetRaw
	}
	var pe poseEntry
	if err := json.Unmarshal(raw, &pe); err != nil {
		return pose.Sample{}, err
	}
	var out pose.Sample
	if pe.T != nil {
		out = out.Merge(pose.TranslationSample(*pe.T))
	}
	if pe.R != nil {
		out = out.Merge(pose.RotationSample(mathutil.EulerDegToQuat(*pe.R)))
	}
	if pe.S != nil {
		out = out.Merge(pose.ScaleSample(*pe.S))
	}
	return out, nil
}

// Save writes the scene as indented JSON. Live overrides are not saved.
func (s *Scene) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scene: write %s: %w", path, err)
	}
	return nil
}

// Marshal encodes the scene. Keys sharing a time are written as one pose.
func (s *Scene) Marshal() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file := sceneFile{Time: s.time, KeyingMode: s.keying.String()}
	for _, id := range s.selection {
		file.Selection = append(file.Selection, string(id))
	}
	for _, g := range s.groups {
		ge := groupEntry{Name: g.Name, Parent: g.Parent, Members: []string{}}
		for _, m := range g.Members {
			ge.Members = append(ge.Members, string(m))
		}
		file.Groups = append(file.Groups, ge)
	}
	for _, id := range s.order {
		o := s.objects[id]
		oe := objectEntry{ID: string(o.ID), Parent: string(o.Parent), Locked: o.Locked}
		rest, err := json.Marshal(encodePose(o.Rest))
		if err != nil {
			return nil, err
		}
		oe.Rest = rest
		for _, kf := range mergeKeys(o) {
			p, err := json.Marshal(encodePose(kf.Sample))
			if err != nil {
				return nil, err
			}
			oe.Keys = append(oe.Keys, keyEntry{Time: kf.Time, Pose: p})
		}
		file.Objects = append(file.Objects, oe)
	}
	return json.MarshalIndent(file, "", "  ")
}

func encodePose(smp pose.Sample) poseEntry {
	var pe poseEntry
	if smp.Has(pose.Translation) {
		t := smp.Translation
		pe.T = &t
	}
	if smp.Has(pose.Rotation) {
		r := mathutil.QuatToEulerDeg(smp.Rotation)
		pe.R = &r
	}
	if smp.Has(pose.Scale) {
		sc := smp.Scale
		pe.S = &sc
	}
	return pe
}

// mergeKeys folds the per-channel key lists into time-ordered poses.
func mergeKeys(o *Object) []pose.Keyframe {
	var out []pose.Keyframe
	idx := [3]int{}
	for {
		t, found := 0.0, false
		for ch := range o.Keys {
			if idx[ch] < len(o.Keys[ch]) {
				kt := o.Keys[ch][idx[ch]].Time
				if !found || kt < t {
					t, found = kt, true
				}
			}
		}
		if !found {
			return out
		}
		kf := pose.Keyframe{Time: t}
		for ch := range o.Keys {
			if idx[ch] < len(o.Keys[ch]) && o.Keys[ch][idx[ch]].Time == t {
				kf.Sample = kf.Sample.Merge(o.Keys[ch][idx[ch]].Sample)
				idx[ch]++
			}
		}
		out = append(out, kf)
	}
}
