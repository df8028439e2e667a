package viz

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
)

// Sender delivers messages into a running program, e.g. *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Sink forwards capture events to a program.
// It implements pipeline.Sink and pipeline.ErrorSink.
type Sink struct {
	Program Sender
}

// HandleEvent implements pipeline.Sink.
func (s *Sink) HandleEvent(ctx context.Context, event *pipeline.Event) {
	if event.DecodeErr != nil {
		s.Program.Send(WarningMsg{Err: event.DecodeErr, At: event.Time})
		return
	}
	if state, ok := event.Decoded.(procon.State); ok {
		s.Program.Send(StateMsg{State: state, Metrics: event.Metrics})
	}
}

// HandleError implements pipeline.ErrorSink.
func (s *Sink) HandleError(ctx context.Context, err error) {
	s.Program.Send(WarningMsg{Err: err, At: time.Now()})
}
