// Package viz renders controller state in the terminal.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/rate"
)

// RefreshInterval is how often metrics are resampled while idle.
const RefreshInterval = 250 * time.Millisecond

// StickGridSize is the width and height of a stick grid in cells.
const StickGridSize = 11

// warnings stay on screen for this long.
const warningTTL = 2 * time.Second

// StateMsg carries a decoded controller state.
type StateMsg struct {
	State   procon.State
	Metrics rate.Metrics
}

// WarningMsg carries a recoverable error.
type WarningMsg struct {
	Err error
	At  time.Time
}

// StoppedMsg reports the capture has stopped.
type StoppedMsg struct {
	Err error
}

type tickMsg time.Time

// Model is the bubbletea model of the visualizer.
type Model struct {
	Title string
	// Sample refreshes metrics on ticks, optional.
	Sample func() rate.Metrics

	state    procon.State
	received bool
	metrics  rate.Metrics
	warning  string
	warnAt   time.Time
	now      time.Time
	stopped  bool
	stopErr  error
}

// NewModel creates a Model.
func NewModel(title string, sample func() rate.Metrics) Model {
	return Model{Title: title, Sample: sample}
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case StateMsg:
		m.state, m.metrics, m.received = msg.State, msg.Metrics, true
	case WarningMsg:
		m.warning, m.warnAt = msg.Err.Error(), msg.At
		if m.warnAt.IsZero() {
			m.warnAt = time.Now()
		}
	case StoppedMsg:
		m.stopped, m.stopErr = true, msg.Err
	case tickMsg:
		m.now = time.Time(msg)
		if m.Sample != nil && !m.stopped {
			m.metrics = m.Sample()
		}
		return m, tick()
	}
	return m, nil
}

// State returns the last received state.
func (m Model) State() (procon.State, bool) {
	return m.state, m.received
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  Freq %2d Hz %s\n\n", m.Title, m.metrics.FramesPerSecond, m.metrics.Uptime())
	if !m.received {
		sb.WriteString("waiting for frames...\n\n")
	}

	b := m.state.Buttons
	rows := [][2]string{
		{btns(b, procon.ButtonZL, procon.ButtonL), btns(b, procon.ButtonR, procon.ButtonZR)},
		{btns(b, procon.ButtonSelect, procon.ButtonCapture), btns(b, procon.ButtonHome, procon.ButtonStart)},
		{"     " + btn(b, procon.ButtonUp), "     " + btn(b, procon.ButtonX)},
		{btns(b, procon.ButtonLeft, procon.ButtonRight), btns(b, procon.ButtonY, procon.ButtonA)},
		{"     " + btn(b, procon.ButtonDown), "     " + btn(b, procon.ButtonB)},
		{btns(b, procon.ButtonHoge, procon.ButtonFuga), ""},
	}
	for _, row := range rows {
		fmt.Fprintf(&sb, "  %-26s%s\n", row[0], row[1])
	}
	sb.WriteByte('\n')

	left := StickGrid(m.state.Left, b.IsPressed(procon.ButtonL3))
	right := StickGrid(m.state.Right, b.IsPressed(procon.ButtonR3))
	for n := range left {
		fmt.Fprintf(&sb, "  %-26s%s\n", left[n], right[n])
	}
	fmt.Fprintf(&sb, "  %-26s%s\n", "L "+m.state.Left.String(), "R "+m.state.Right.String())

	sb.WriteByte('\n')
	if m.warning != "" && (m.now.IsZero() || m.now.Sub(m.warnAt) < warningTTL) {
		fmt.Fprintf(&sb, "Warning: %s\n", m.warning)
	}
	if m.stopped {
		fmt.Fprintf(&sb, "capture stopped: %v\n", m.stopErr)
	}
	sb.WriteString("q: quit\n")
	return sb.String()
}

func btn(b procon.Buttons, button procon.Button) string {
	if b.IsPressed(button) {
		return "[" + button.String() + "]"
	}
	return " " + strings.ToLower(button.String()) + " "
}

func btns(b procon.Buttons, buttons ...procon.Button) string {
	labels := make([]string, len(buttons))
	for n, button := range buttons {
		labels[n] = btn(b, button)
	}
	return strings.Join(labels, " ")
}

// StickGrid draws a stick position on a square grid, larger Y on top.
// The center is marked with "+", the position with "o", or "@" when the
// stick is pressed.
func StickGrid(s procon.Stick, pressed bool) []string {
	col := int(s.X) * (StickGridSize - 1) / procon.AxisMax
	row := (StickGridSize - 1) - int(s.Y)*(StickGridSize-1)/procon.AxisMax
	mid := StickGridSize / 2
	mark := byte('o')
	if pressed {
		mark = '@'
	}
	lines := make([]string, StickGridSize)
	for r := range lines {
		line := make([]byte, StickGridSize*2-1)
		for i := range line {
			line[i] = ' '
		}
		for c := 0; c < StickGridSize; c++ {
			ch := byte('.')
			if r == mid && c == mid {
				ch = '+'
			}
			if r == row && c == col {
				ch = mark
			}
			line[c*2] = ch
		}
		lines[r] = string(line)
	}
	return lines
}
