// Package host describes the animation system the inbetween engine runs
// inside. Queries go through Reader; every mutation goes through Writer,
// and only the commit coordinator holds a Writer.
package host

import (
	"errors"
	"fmt"
	"strings"

	"pose-inbetweener/internal/pose"
)

var (
	ErrUnknownObject = errors.New("host: unknown object")
	ErrLocked        = errors.New("host: object is locked")
	ErrInvalidTime   = errors.New("host: invalid time")
	ErrNoChange      = errors.New("host: no undoable change open")
)

// KeyingMode is the host's keying scope.
type KeyingMode uint8

const (
	// KeyingSelection keys only the selected objects.
	KeyingSelection KeyingMode = iota
	// KeyingBodyPart widens the selection to the body parts it touches.
	KeyingBodyPart
	// KeyingFullBody widens the selection to the whole character.
	KeyingFullBody
	// KeyingFullBodyNoPull keys only the selected objects.
	KeyingFullBodyNoPull
)

func (m KeyingMode) String() string {
	switch m {
	case KeyingSelection:
		return "selection"
	case KeyingBodyPart:
		return "body_part"
	case KeyingFullBody:
		return "full_body"
	case KeyingFullBodyNoPull:
		return "full_body_no_pull"
	}
	return fmt.Sprintf("keying_mode(%d)", uint8(m))
}

func ParseKeyingMode(s string) (KeyingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "selection", "":
		return KeyingSelection, nil
	case "body_part", "bodypart":
		return KeyingBodyPart, nil
	case "full_body", "fullbody":
		return KeyingFullBody, nil
	case "full_body_no_pull", "fullbodynopull":
		return KeyingFullBodyNoPull, nil
	}
	return 0, fmt.Errorf("host: unknown keying mode %q", s)
}

// KeyingGroup is a node of the host's character keying hierarchy. Parent is
// empty for a root group (a whole character).
type KeyingGroup struct {
	Name    string
	Parent  string
	Members []pose.ObjectID
}

// Reader is the query side of the host.
type Reader interface {
	Selection() []pose.ObjectID
	KeyingMode() KeyingMode
	KeyingGroups() []KeyingGroup
	CurrentTime() float64

	// NeighborKeyframes returns the nearest key strictly before and strictly
	// after t on one channel. Either may be nil.
	NeighborKeyframes(obj pose.ObjectID, ch pose.Channel, t float64) (prev, next *pose.Keyframe, err error)

	// CurrentPose returns the live value of one channel.
	CurrentPose(obj pose.ObjectID, ch pose.Channel) (pose.Sample, error)

	// PoseAt evaluates one channel's animation at time t.
	PoseAt(obj pose.ObjectID, ch pose.Channel, t float64) (pose.Sample, error)
}

// Writer is the mutation side of the host.
type Writer interface {
	BeginUndoableChange(label string)
	SetLivePose(obj pose.ObjectID, ch pose.Channel, s pose.Sample) error
	SetKeyframe(obj pose.ObjectID, ch pose.Channel, t float64, s pose.Sample) error
	// EndUndoableChange closes the open change. commit=false discards
	// everything written since BeginUndoableChange.
	EndUndoableChange(commit bool) error
}

// Host is a full host collaborator.
type Host interface {
	Reader
	Writer
}
