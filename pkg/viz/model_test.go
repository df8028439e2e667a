package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/procon.go/pkg/frame"
	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/rate"
)

func TestStickGrid(t *testing.T) {
	grid := StickGrid(procon.Stick{X: procon.AxisCenter, Y: procon.AxisCenter}, false)
	require.Len(t, grid, StickGridSize)
	require.Equal(t, ". . . . . o . . . . .", grid[5])
	require.NotContains(t, strings.Join(grid, "\n"), "+")

	grid = StickGrid(procon.Stick{X: 0, Y: procon.AxisMax}, true)
	require.Equal(t, "@ . . . . . . . . . .", grid[0])
	require.Equal(t, ". . . . . + . . . . .", grid[5])

	grid = StickGrid(procon.Stick{X: procon.AxisMax, Y: 0}, false)
	require.Equal(t, ". . . . . . . . . . o", grid[10])
}

func TestModelUpdate(t *testing.T) {
	m := NewModel("COM6", func() rate.Metrics { return rate.Metrics{FramesPerSecond: 3} })
	require.Contains(t, m.View(), "waiting for frames")

	updated, _ := m.Update(StateMsg{
		State:   procon.State{Buttons: 1<<procon.ButtonA | 1<<procon.ButtonZL},
		Metrics: rate.Metrics{FramesPerSecond: 60, Elapsed: 62 * time.Second},
	})
	m = updated.(Model)
	state, ok := m.State()
	require.True(t, ok)
	require.True(t, state.Buttons.IsPressed(procon.ButtonA))
	view := m.View()
	require.Contains(t, view, "COM6  Freq 60 Hz 00:01:02")
	require.Contains(t, view, "[A]")
	require.Contains(t, view, "[ZL]")
	require.Contains(t, view, " b ")
	require.NotContains(t, view, "waiting for frames")

	updated, cmd := m.Update(tickMsg(time.Now()))
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "Freq  3 Hz")

	updated, _ = m.Update(WarningMsg{Err: frame.ErrFrameMismatch, At: time.Now()})
	m = updated.(Model)
	require.Contains(t, m.View(), "Warning: frame end byte mismatch")

	updated, _ = m.Update(StoppedMsg{Err: context.Canceled})
	m = updated.(Model)
	require.Contains(t, m.View(), "capture stopped")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}

type recordSender struct {
	msgs []tea.Msg
}

func (s *recordSender) Send(msg tea.Msg) {
	s.msgs = append(s.msgs, msg)
}

func TestSink(t *testing.T) {
	rec := &recordSender{}
	sink := &Sink{Program: rec}
	state := procon.State{Buttons: 1 << procon.ButtonB}
	sink.HandleEvent(context.Background(), &pipeline.Event{Decoded: state})
	sink.HandleEvent(context.Background(), &pipeline.Event{DecodeErr: procon.ErrPayloadTooShort})
	sink.HandleEvent(context.Background(), &pipeline.Event{Decoded: "other"})
	sink.HandleError(context.Background(), frame.ErrLengthTimeout)

	require.Len(t, rec.msgs, 3)
	require.Equal(t, StateMsg{State: state}, rec.msgs[0])
	require.Equal(t, procon.ErrPayloadTooShort, rec.msgs[1].(WarningMsg).Err)
	require.Equal(t, frame.ErrLengthTimeout, rec.msgs[2].(WarningMsg).Err)
}

func TestSinkWarningVisible(t *testing.T) {
	rec := &recordSender{}
	sink := &Sink{Program: rec}
	sink.HandleError(context.Background(), frame.ErrFrameMismatch)
	sink.HandleEvent(context.Background(), &pipeline.Event{DecodeErr: procon.ErrPayloadTooShort})
	require.Len(t, rec.msgs, 2)
	require.False(t, rec.msgs[0].(WarningMsg).At.IsZero())

	var m tea.Model = NewModel("COM6", nil)
	m, _ = m.Update(tickMsg(time.Now()))
	m, _ = m.Update(rec.msgs[0])
	m, _ = m.Update(tickMsg(time.Now()))
	require.Contains(t, m.View(), "Warning: frame end byte mismatch")

	m, _ = m.Update(rec.msgs[1])
	m, _ = m.Update(tickMsg(time.Now()))
	require.Contains(t, m.View(), "Warning: "+procon.ErrPayloadTooShort.Error())

	m, _ = m.Update(tickMsg(time.Now().Add(2 * warningTTL)))
	require.NotContains(t, m.View(), "Warning:")
}
