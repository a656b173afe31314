// Package scope turns the host's selection and keying mode into the
// concrete (object, channel) working set of an interaction.
package scope

import (
	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/pose"
)

// WorkingSet is the ordered list of targets for one interaction.
type WorkingSet []pose.Target

// Objects returns each object once, in working-set order.
func (ws WorkingSet) Objects() []pose.ObjectID {
	seen := make(map[pose.ObjectID]bool, len(ws))
	var out []pose.ObjectID
	for _, t := range ws {
		if !seen[t.Object] {
			seen[t.Object] = true
			out = append(out, t.Object)
		}
	}
	return out
}

// Channels returns the channels of obj present in the working set.
func (ws WorkingSet) Channels(obj pose.ObjectID) pose.ChannelMask {
	var m pose.ChannelMask
	for _, t := range ws {
		if t.Object == obj {
			m = m.With(t.Channel)
		}
	}
	return m
}

// Resolve queries r and expands its selection.
func Resolve(r host.Reader, mask pose.ChannelMask) WorkingSet {
	return Expand(r.Selection(), r.KeyingMode(), r.KeyingGroups(), mask)
}

// Expand is the pure part of Resolve. Selected objects come first in
// selection order, followed by objects pulled in through keying groups in
// group order. An empty selection or mask yields an empty working set.
func Expand(selection []pose.ObjectID, mode host.KeyingMode, groups []host.KeyingGroup, mask pose.ChannelMask) WorkingSet {
	if len(selection) == 0 || mask.Empty() {
		return nil
	}

	objects := dedupe(selection)
	if (mode == host.KeyingBodyPart || mode == host.KeyingFullBody) && len(groups) > 0 {
		objects = dedupe(append(objects, expandGroups(selection, mode, groups)...))
	}

	channels := mask.List()
	ws := make(WorkingSet, 0, len(objects)*len(channels))
	for _, obj := range objects {
		for _, ch := range channels {
			ws = append(ws, pose.Target{Object: obj, Channel: ch})
		}
	}
	return ws
}

type groupTree struct {
	byName   map[string]*host.KeyingGroup
	children map[string][]string
	order    []string
}

func newGroupTree(groups []host.KeyingGroup) *groupTree {
	t := &groupTree{
		byName:   make(map[string]*host.KeyingGroup, len(groups)),
		children: make(map[string][]string),
	}
	for i := range groups {
		g := &groups[i]
		t.byName[g.Name] = g
		t.order = append(t.order, g.Name)
		if g.Parent != "" {
			t.children[g.Parent] = append(t.children[g.Parent], g.Name)
		}
	}
	return t
}

// scopeRoot returns the group whose subtree is keyed for a selected
// object held directly by leaf: the parent group for body-part keying, the
// grandparent for full-body keying. Any other mode, or a group without
// those ancestors, pulls nothing in.
func (t *groupTree) scopeRoot(leaf string, mode host.KeyingMode) (string, bool) {
	var levels int
	switch mode {
	case host.KeyingBodyPart:
		levels = 1
	case host.KeyingFullBody:
		levels = 2
	default:
		return "", false
	}
	cur := leaf
	for i := 0; i < levels; i++ {
		g := t.byName[cur]
		if g == nil || g.Parent == "" {
			return "", false
		}
		if _, ok := t.byName[g.Parent]; !ok {
			return "", false
		}
		cur = g.Parent
	}
	return cur, true
}

// members collects the objects of a group and all of its descendants.
func (t *groupTree) members(name string, visited map[string]bool, out []pose.ObjectID) []pose.ObjectID {
	if visited[name] {
		return out
	}
	visited[name] = true
	g := t.byName[name]
	if g == nil {
		return out
	}
	out = append(out, g.Members...)
	for _, child := range t.children[name] {
		out = t.members(child, visited, out)
	}
	return out
}

func expandGroups(selection []pose.ObjectID, mode host.KeyingMode, groups []host.KeyingGroup) []pose.ObjectID {
	tree := newGroupTree(groups)

	selected := make(map[pose.ObjectID]bool, len(selection))
	for _, obj := range selection {
		selected[obj] = true
	}

	roots := make(map[string]bool)
	for _, name := range tree.order {
		for _, m := range tree.byName[name].Members {
			if !selected[m] {
				continue
			}
			if root, ok := tree.scopeRoot(name, mode); ok {
				roots[root] = true
			}
			break
		}
	}

	var out []pose.ObjectID
	visited := make(map[string]bool)
	for _, name := range tree.order {
		if roots[name] {
			out = tree.members(name, visited, out)
		}
	}
	return out
}

func dedupe(ids []pose.ObjectID) []pose.ObjectID {
	seen := make(map[pose.ObjectID]bool, len(ids))
	out := make([]pose.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
