// Package tui is a terminal slider for the inbetween session. Horizontal
// mouse drags and arrow keys move the control value; Enter or releasing
// the mouse keys the pose and Esc restores it.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pose-inbetweener/internal/input"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/session"
)

const (
	// cellPixels converts terminal cells to pointer pixels.
	cellPixels = 8
	// keyPixels is the pointer distance of one arrow key press.
	keyPixels  = 15
	trackWidth = 41
)

// Undoer is implemented by hosts that can revert the last keyed change.
type Undoer interface {
	Undo() (string, error)
}

type Model struct {
	sess   *session.Session
	undo   Undoer
	title  string
	entry  string
	lastX  int
	mouse  bool
	status string
	err    error
}

// New builds a model. undo may be nil.
func New(sess *session.Session, undo Undoer, title string) Model {
	return Model{sess: sess, undo: undo, title: title}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg), nil
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		if m.sess.Active() {
			m.report(m.sess.OnCancel(), "cancelled")
		}
		return m, tea.Quit
	case "esc":
		if m.entry != "" {
			m.entry = ""
			return m, nil
		}
		m.report(m.sess.OnCancel(), "cancelled")
		return m, nil
	case "enter":
		if m.entry != "" {
			text := m.entry
			m.entry = ""
			m.report(m.sess.OnManualValueEntered(text), fmt.Sprintf("set %s", text))
			return m, nil
		}
		if m.sess.Active() {
			m.report(m.sess.OnDragEnd(), "keyed")
		}
		return m, nil
	case "backspace":
		if m.entry != "" {
			m.entry = m.entry[:len(m.entry)-1]
		}
		return m, nil
	case "left", "right", "ctrl+left", "ctrl+right", "shift+left", "shift+right":
		m.arrow(key)
		return m, nil
	case "t", "r", "s":
		ch, _ := pose.ParseChannel(key)
		enabled := !m.sess.Settings().Mask.Has(ch)
		m.report(m.sess.OnChannelToggle(ch, enabled), "channels "+m.sess.Settings().Mask.String())
		return m, nil
	case "T", "R", "S":
		ch, _ := pose.ParseChannel(strings.ToLower(key))
		m.report(m.sess.OnChannelSolo(ch), "channels "+m.sess.Settings().Mask.String())
		return m, nil
	case "b":
		mode := pose.AbsoluteInbetween
		if m.sess.Settings().Mode == pose.AbsoluteInbetween {
			mode = pose.BlendFromCurrent
		}
		m.report(m.sess.OnBlendModeToggle(mode), "mode "+mode.String())
		return m, nil
	case "o":
		on := m.sess.Settings().Overshoot == pose.Clamped
		m.report(m.sess.OnOvershootToggle(on), "overshoot "+pose.OvershootFromBool(on).String())
		return m, nil
	case "u":
		if m.undo != nil && !m.sess.Active() {
			label, err := m.undo.Undo()
			m.report(err, "undid "+label)
		}
		return m, nil
	}

	if isEntryKey(key) {
		m.entry += key
	}
	return m, nil
}

func isEntryKey(key string) bool {
	if len(key) != 1 {
		return false
	}
	c := key[0]
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '%'
}

// arrow nudges the value, starting a drag on the first press.
func (m *Model) arrow(key string) {
	if !m.sess.Active() {
		if err := m.sess.OnDragStart(); err != nil {
			m.report(err, "")
			return
		}
	}
	var mods input.Modifiers
	switch {
	case strings.HasPrefix(key, "ctrl+"):
		mods |= input.ModSnap
	case strings.HasPrefix(key, "shift+"):
		mods |= input.ModFine
	}
	delta := float64(keyPixels)
	if strings.HasSuffix(key, "left") {
		delta = -delta
	}
	m.report(m.sess.OnDragMove(delta, mods), "")
}

func (m Model) updateMouse(msg tea.MouseMsg) Model {
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.sess.Active() {
			return m
		}
		if err := m.sess.OnDragStart(); err != nil {
			m.report(err, "")
			return m
		}
		m.mouse = true
		m.lastX = msg.X
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		if m.sess.Active() {
			m.mouse = false
			m.report(m.sess.OnCancel(), "cancelled")
		}
	case msg.Action == tea.MouseActionMotion && m.mouse:
		var mods input.Modifiers
		if msg.Ctrl {
			mods |= input.ModSnap
		}
		if msg.Shift {
			mods |= input.ModFine
		}
		delta := float64((msg.X - m.lastX) * cellPixels)
		m.lastX = msg.X
		if delta != 0 {
			m.report(m.sess.OnDragMove(delta, mods), "")
		}
	case msg.Action == tea.MouseActionRelease && m.mouse:
		m.mouse = false
		if m.sess.Active() {
			m.report(m.sess.OnDragEnd(), "keyed")
		}
	}
	return m
}

func (m *Model) report(err error, status string) {
	m.err = err
	if err == nil && status != "" {
		m.status = status
	}
}

// Status is the last status line.
func (m Model) Status() string {
	return m.status
}

// Err is the last error.
func (m Model) Err() error {
	return m.err
}

func (m Model) View() string {
	st := m.sess.Settings()
	v := m.sess.Value()

	label := valueStyle
	if m.sess.Overshooting() {
		label = overshootStyle
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("inbetween " + m.title))
	b.WriteString("\n\n")
	b.WriteString(track(v, st.Mode) + "  " + label.Render(fmt.Sprintf("%+.3f", v)))
	b.WriteString("\n\n")

	var chans []string
	for _, ch := range pose.Channels {
		style := offStyle
		if st.Mask.Has(ch) {
			style = onStyle
		}
		chans = append(chans, style.Render("["+strings.ToUpper(ch.Letter())+"]"))
	}
	b.WriteString(strings.Join(chans, " "))
	b.WriteString(fmt.Sprintf("  mode %s  overshoot %s", st.Mode, st.Overshoot))
	if m.sess.Active() {
		b.WriteString("  " + markerStyle.Render("● drag"))
	}
	b.WriteString("\n")

	if m.entry != "" {
		b.WriteString("value: " + m.entry + "_\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(helpStyle.Render("drag/←→ move · ctrl snap · shift fine · enter key · esc cancel · t/r/s toggle · T/R/S solo · b mode · o overshoot · u undo · q quit"))

	return panelStyle.Render(b.String())
}

// track renders the slider over the mode's range. Values past the ends
// pin the marker to the edge.
func track(v float64, mode pose.BlendMode) string {
	lo, hi := mode.Range()
	pos := int(math.Round((v - lo) / (hi - lo) * float64(trackWidth-1)))
	pos = max(0, min(trackWidth-1, pos))

	left := trackStyle.Render(strings.Repeat("─", pos))
	right := trackStyle.Render(strings.Repeat("─", trackWidth-1-pos))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, markerStyle.Render("◆"), right)
}
