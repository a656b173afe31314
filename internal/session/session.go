// Package session is the interaction controller a UI drives. It resolves
// the working set on drag start, maps pointer motion to control values,
// blends, and hands every pose to the commit coordinator.
package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"pose-inbetweener/internal/blend"
	"pose-inbetweener/internal/commit"
	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/input"
	"pose-inbetweener/internal/neighbor"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/scope"
)

var (
	ErrDragging    = errors.New("session: drag already in progress")
	ErrNotDragging = errors.New("session: no drag in progress")
)

// Settings are the user-facing toggles. They persist across interactions.
type Settings struct {
	Mask      pose.ChannelMask
	Mode      pose.BlendMode
	Overshoot pose.OvershootPolicy
	Rotation  pose.RotationInterp
	Bracket   pose.Bracket
}

func DefaultSettings() Settings {
	return Settings{
		Mask:      pose.AllChannels,
		Mode:      pose.BlendFromCurrent,
		Overshoot: pose.Clamped,
		Rotation:  pose.Spherical,
		Bracket:   pose.PerChannel,
	}
}

// Params returns the blend parameters for these settings.
func (s Settings) Params() blend.Params {
	return blend.Params{Mode: s.Mode, Overshoot: s.Overshoot, Mask: s.Mask, Rotation: s.Rotation}
}

// Range is the control value range under these settings.
func (s Settings) Range() input.Range {
	return input.RangeFor(s.Mode, s.Overshoot)
}

type Option func(*Session)

// WithLogger routes interaction logs to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithInput sets pointer sensitivity and snapping.
func WithInput(cfg input.Config) Option {
	return func(s *Session) {
		s.mapper = input.NewMapper(cfg)
	}
}

// Session drives interactions against one host. It is not safe for
// concurrent use; UIs call it from their event loop.
type Session struct {
	h        host.Host
	settings Settings
	mapper   *input.Mapper
	coord    *commit.Coordinator
	log      *log.Logger

	dragging bool
	noop     bool
	in       neighbor.Interaction
}

func New(h host.Host, settings Settings, opts ...Option) *Session {
	s := &Session{
		h:        h,
		settings: settings,
		mapper:   input.NewMapper(input.DefaultConfig()),
		coord:    commit.New(h),
		log:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Settings() Settings {
	return s.settings
}

// Value is the current control value.
func (s *Session) Value() float64 {
	return s.mapper.Value()
}

// Active reports whether a drag is in progress.
func (s *Session) Active() bool {
	return s.dragging
}

// Interaction returns the neighborhoods of the current drag.
func (s *Session) Interaction() neighbor.Interaction {
	return s.in
}

// Overshooting reports a value outside the mode's clamped range.
func (s *Session) Overshooting() bool {
	lo, hi := s.settings.Mode.Range()
	v := s.mapper.Value()
	return v < lo-1e-9 || v > hi+1e-9
}

// OnDragStart begins an interaction at the host's current time. An empty
// working set makes the whole drag a no-op.
func (s *Session) OnDragStart() error {
	if s.dragging {
		return ErrDragging
	}

	ws := scope.Resolve(s.h, s.settings.Mask)
	in, err := neighbor.New(s.h, s.settings.Bracket).LocateAll(ws, s.h.CurrentTime())
	if err != nil {
		return fmt.Errorf("session: start: %w", err)
	}

	s.mapper.Reset(s.settings.Mode.Neutral())
	s.in = in
	s.dragging = true
	s.noop = in.Empty()

	if s.noop {
		s.log.Printf("inbetween: nothing to blend at t=%g (%d targets without keys)", in.Time, len(in.Skipped))
		return nil
	}
	if err := s.coord.Begin(in.Targets()); err != nil {
		s.reset()
		return fmt.Errorf("session: start: %w", err)
	}
	s.log.Printf("inbetween %s: begin t=%g targets=%d skipped=%d mode=%s mask=%s",
		s.coord.ID(), in.Time, len(in.Neighborhoods), len(in.Skipped), s.settings.Mode, s.settings.Mask)
	return nil
}

// OnDragMove feeds a horizontal pointer delta in pixels.
func (s *Session) OnDragMove(delta float64, mods input.Modifiers) error {
	if !s.dragging {
		return ErrNotDragging
	}
	v := s.mapper.Move(delta, mods, s.settings.Range())
	return s.apply(v)
}

// OnDragEnd keys the last applied pose of the channels still enabled.
func (s *Session) OnDragEnd() error {
	if !s.dragging {
		return ErrNotDragging
	}
	if s.noop {
		s.reset()
		return nil
	}
	id := s.coord.ID()
	err := s.coord.Commit(s.in.Time, s.settings.Mask)
	s.reset()
	if err != nil {
		s.log.Printf("inbetween %s: commit failed: %v", id, err)
		return err
	}
	s.log.Printf("inbetween %s: commit value=%.4g", id, s.mapper.Value())
	return nil
}

// OnCancel restores the pose captured at drag start.
func (s *Session) OnCancel() error {
	if !s.dragging {
		return nil
	}
	if s.noop {
		s.reset()
		return nil
	}
	id := s.coord.ID()
	err := s.coord.Cancel()
	s.reset()
	s.log.Printf("inbetween %s: cancel", id)
	return err
}

// OnManualValueEntered applies a typed value. Outside a drag it runs a
// complete interaction and keys the result.
func (s *Session) OnManualValueEntered(text string) error {
	if s.dragging {
		v, err := s.mapper.Enter(text, s.settings.Range())
		if err != nil {
			return err
		}
		return s.apply(v)
	}

	if _, err := input.ParseEntry(text); err != nil {
		return err
	}
	if err := s.OnDragStart(); err != nil {
		return err
	}
	v, err := s.mapper.Enter(text, s.settings.Range())
	if err != nil {
		return errors.Join(err, s.OnCancel())
	}
	if err := s.apply(v); err != nil {
		return err
	}
	return s.OnDragEnd()
}

// OnChannelToggle enables or disables one channel. Channels enabled during
// a drag join the next interaction; disabled ones return to their
// captured pose immediately.
func (s *Session) OnChannelToggle(ch pose.Channel, enabled bool) error {
	s.settings.Mask = s.settings.Mask.Set(ch, enabled)
	return s.reapply()
}

// OnChannelSolo enables only ch. Soloing the already soloed channel
// enables every channel again.
func (s *Session) OnChannelSolo(ch pose.Channel) error {
	if s.settings.Mask == pose.Only(ch) {
		s.settings.Mask = pose.AllChannels
	} else {
		s.settings.Mask = pose.Only(ch)
	}
	return s.reapply()
}

func (s *Session) OnBlendModeToggle(mode pose.BlendMode) error {
	if s.settings.Mode == mode {
		return nil
	}
	s.settings.Mode = mode
	if s.dragging {
		s.mapper.Reset(mode.Neutral())
	}
	return s.reapply()
}

func (s *Session) OnOvershootToggle(enabled bool) error {
	s.settings.Overshoot = pose.OvershootFromBool(enabled)
	if s.dragging {
		s.mapper.Reset(s.settings.Range().Clamp(s.mapper.Value()))
	}
	return s.reapply()
}

// SetRotationInterp and SetBracket change settings that take effect on
// the next interaction.
func (s *Session) SetRotationInterp(r pose.RotationInterp) {
	s.settings.Rotation = r
}

func (s *Session) SetBracket(b pose.Bracket) {
	s.settings.Bracket = b
}

func (s *Session) reapply() error {
	if !s.dragging || s.noop || !s.coord.Applied() {
		return nil
	}
	return s.apply(s.mapper.Value())
}

// apply blends at v and writes the live pose. A failed write cancels the
// interaction.
func (s *Session) apply(v float64) error {
	if s.noop {
		return nil
	}
	if math.IsNaN(v) {
		return fmt.Errorf("session: apply: %w", input.ErrInvalidEntry)
	}
	poses := blend.Pose(s.in.Neighborhoods, v, s.settings.Params())
	if err := s.coord.Apply(poses); err != nil {
		s.log.Printf("inbetween %s: apply failed, cancelling: %v", s.coord.ID(), err)
		return errors.Join(err, s.OnCancel())
	}
	return nil
}

func (s *Session) reset() {
	s.dragging = false
	s.noop = false
	s.in = neighbor.Interaction{}
}
