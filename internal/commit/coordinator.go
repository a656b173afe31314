// Package commit owns every write the engine makes to the host. One
// Coordinator runs one interaction at a time: Begin, any number of Apply
// calls, then exactly one Commit or Cancel.
package commit

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/pose"
)

var (
	ErrNotActive     = errors.New("commit: no interaction in progress")
	ErrAlreadyActive = errors.New("commit: interaction already in progress")
)

// CommitError reports a failed keyframe write. The interaction has been
// rolled back by the time it is returned.
type CommitError struct {
	Target pose.Target
	Err    error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit: write keyframe %s: %v", e.Target, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Coordinator wraps an interaction in a single undoable host change.
type Coordinator struct {
	r host.Reader
	w host.Writer

	active   bool
	id       uuid.UUID
	targets  []pose.Target
	snapshot map[pose.Target]pose.Sample
	applied  map[pose.ObjectID]pose.Sample
}

func New(h host.Host) *Coordinator {
	return &Coordinator{r: h, w: h}
}

func (c *Coordinator) Active() bool {
	return c.active
}

// ID identifies the current (or last) interaction.
func (c *Coordinator) ID() uuid.UUID {
	return c.id
}

// Label is the undo label handed to the host.
func (c *Coordinator) Label() string {
	return "Inbetween " + c.id.String()[:8]
}

// Snapshot returns the pose captured for target at Begin.
func (c *Coordinator) Snapshot(t pose.Target) (pose.Sample, bool) {
	s, ok := c.snapshot[t]
	return s, ok
}

// Begin captures the pre-interaction pose of every target and opens the
// host change.
func (c *Coordinator) Begin(targets []pose.Target) error {
	if c.active {
		return ErrAlreadyActive
	}

	snapshot := make(map[pose.Target]pose.Sample, len(targets))
	for _, t := range targets {
		s, err := c.r.CurrentPose(t.Object, t.Channel)
		if err != nil {
			return fmt.Errorf("commit: capture %s: %w", t, err)
		}
		snapshot[t] = s.Only(t.Channel)
	}

	c.id = uuid.New()
	c.targets = append([]pose.Target(nil), targets...)
	c.snapshot = snapshot
	c.applied = make(map[pose.ObjectID]pose.Sample)
	c.active = true

	c.w.BeginUndoableChange(c.Label())
	return nil
}

// Apply writes poses to the host's live pose without keying them. Channels
// outside the interaction's targets are ignored.
func (c *Coordinator) Apply(poses map[pose.ObjectID]pose.Sample) error {
	if !c.active {
		return ErrNotActive
	}
	for _, t := range c.targets {
		s, ok := poses[t.Object]
		if !ok || !s.Has(t.Channel) {
			continue
		}
		one := s.Only(t.Channel)
		if err := c.w.SetLivePose(t.Object, t.Channel, one); err != nil {
			return fmt.Errorf("commit: apply %s: %w", t, err)
		}
		c.applied[t.Object] = c.applied[t.Object].Merge(one)
	}
	return nil
}

// Commit keys the last applied pose of every target whose channel is in
// mask at time t and closes the host change. Any failed write, including
// closing the change, rolls the whole interaction back.
func (c *Coordinator) Commit(t float64, mask pose.ChannelMask) error {
	if !c.active {
		return ErrNotActive
	}
	for _, tg := range c.targets {
		s := c.applied[tg.Object]
		if !mask.Has(tg.Channel) || !s.Has(tg.Channel) {
			continue
		}
		if err := c.w.SetKeyframe(tg.Object, tg.Channel, t, s.Only(tg.Channel)); err != nil {
			cerr := &CommitError{Target: tg, Err: err}
			if rerr := c.rollback(); rerr != nil {
				return errors.Join(cerr, rerr)
			}
			return cerr
		}
	}
	if err := c.w.EndUndoableChange(true); err != nil {
		return errors.Join(fmt.Errorf("commit: close change: %w", err), c.rollback())
	}
	c.reset()
	return nil
}

// Cancel restores the captured pose and discards the host change.
func (c *Coordinator) Cancel() error {
	if !c.active {
		return ErrNotActive
	}
	return c.rollback()
}

// Applied reports whether any pose has been written in this interaction.
func (c *Coordinator) Applied() bool {
	return len(c.applied) > 0
}

func (c *Coordinator) rollback() error {
	var errs []error
	for _, t := range c.targets {
		s, ok := c.snapshot[t]
		if !ok {
			continue
		}
		if err := c.w.SetLivePose(t.Object, t.Channel, s); err != nil {
			errs = append(errs, fmt.Errorf("commit: restore %s: %w", t, err))
		}
	}
	if err := c.w.EndUndoableChange(false); err != nil {
		errs = append(errs, fmt.Errorf("commit: discard change: %w", err))
	}
	c.reset()
	return errors.Join(errs...)
}

func (c *Coordinator) reset() {
	c.active = false
	c.targets = nil
	c.snapshot = nil
	c.applied = nil
}
