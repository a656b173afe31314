// Package skeleton chains object transforms through their parents.
package skeleton

import (
	"fmt"

	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/scene"
)

// Joint is one object's local transform and parent.
type Joint struct {
	ID     pose.ObjectID
	Parent pose.ObjectID
	Local  pose.Sample
}

// LocalMatrix composes translation, rotation and scale (scale applied
// first). Missing channels fall back to the identity.
func LocalMatrix(s pose.Sample) mathutil.Mat4 {
	s = pose.Rest().Merge(s)
	rot := mathutil.QuatToMat3(s.Rotation.Normalize())
	rs := mathutil.Mat3Mul(rot, mathutil.Mat3Diag(s.Scale[0], s.Scale[1], s.Scale[2]))
	return mathutil.FromMat3Translation(rs, s.Translation)
}

// BuildWorldMatrices computes the world transform of every joint. Parents
// may appear in any order; a parent that is not among joints is treated as
// the world origin.
func BuildWorldMatrices(joints []Joint) (map[pose.ObjectID]mathutil.Mat4, error) {
	byID := make(map[pose.ObjectID]*Joint, len(joints))
	for i := range joints {
		byID[joints[i].ID] = &joints[i]
	}

	worlds := make(map[pose.ObjectID]mathutil.Mat4, len(joints))
	visiting := make(map[pose.ObjectID]bool)

	var resolve func(id pose.ObjectID) (mathutil.Mat4, error)
	resolve = func(id pose.ObjectID) (mathutil.Mat4, error) {
		if w, ok := worlds[id]; ok {
			return w, nil
		}
		j, ok := byID[id]
		if !ok {
			return mathutil.Mat4Identity(), nil
		}
		if visiting[id] {
			return mathutil.Mat4{}, fmt.Errorf("skeleton: parent cycle through %s", id)
		}
		visiting[id] = true
		defer delete(visiting, id)

		local := LocalMatrix(j.Local)
		if j.Parent == "" {
			worlds[id] = local
			return local, nil
		}
		parent, err := resolve(j.Parent)
		if err != nil {
			return mathutil.Mat4{}, err
		}
		w := mathutil.Mat4Mul(parent, local)
		worlds[id] = w
		return w, nil
	}

	for _, j := range joints {
		if _, err := resolve(j.ID); err != nil {
			return nil, err
		}
	}
	return worlds, nil
}

// Positions returns the world-space origin of every joint.
func Positions(joints []Joint) (map[pose.ObjectID]mathutil.Vec3, error) {
	worlds, err := BuildWorldMatrices(joints)
	if err != nil {
		return nil, err
	}
	out := make(map[pose.ObjectID]mathutil.Vec3, len(worlds))
	for id, w := range worlds {
		out[id] = w.MulPoint(mathutil.Vec3{})
	}
	return out, nil
}

// FromScene builds joints from the live pose of every scene object, with
// the channels present in overrides replacing the scene's values.
func FromScene(sc *scene.Scene, overrides map[pose.ObjectID]pose.Sample) ([]Joint, error) {
	ids := sc.Objects()
	joints := make([]Joint, 0, len(ids))
	for _, id := range ids {
		o, _ := sc.Object(id)
		local, err := sc.Pose(id)
		if err != nil {
			return nil, fmt.Errorf("skeleton: pose %s: %w", id, err)
		}
		if ov, ok := overrides[id]; ok {
			local = local.Merge(ov)
		}
		joints = append(joints, Joint{ID: id, Parent: o.Parent, Local: local})
	}
	return joints, nil
}
