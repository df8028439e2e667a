package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/rate"
)

// Encode serializes a message.
func Encode(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

// DecodeState parses a ControllerState.
func DecodeState(data []byte) (*ControllerState, error) {
	msg := &ControllerState{}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeStatus parses a CaptureStatus.
func DecodeStatus(data []byte) (*CaptureStatus, error) {
	msg := &CaptureStatus{}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// NewControllerState builds the message for a decoded event.
func NewControllerState(sessionID string, event *pipeline.Event, state procon.State) *ControllerState {
	msg := &ControllerState{
		SessionID:   sessionID,
		Seq:         event.Seq,
		TimestampMs: event.Time.UnixNano() / int64(time.Millisecond),
		Buttons:     uint32(state.Buttons),
		Pressed:     state.Buttons.Names(),
		Left:        &StickValue{X: uint32(state.Left.X), Y: uint32(state.Left.Y)},
		Right:       &StickValue{X: uint32(state.Right.X), Y: uint32(state.Right.Y)},
		Fps:         uint32(event.Metrics.FramesPerSecond),
		UptimeS:     uint64(event.Metrics.Elapsed / time.Second),
	}
	if event.Frame != nil {
		if h, ok := procon.ReadHeader(event.Frame.Payload); ok {
			msg.Header = h[:]
		}
	}
	return msg
}

// State converts the message back to a controller state.
func (m *ControllerState) State() procon.State {
	var s procon.State
	s.Buttons = procon.Buttons(m.Buttons)
	if m.Left != nil {
		s.Left = procon.Stick{X: uint16(m.Left.X), Y: uint16(m.Left.Y)}
	}
	if m.Right != nil {
		s.Right = procon.Stick{X: uint16(m.Right.X), Y: uint16(m.Right.Y)}
	}
	return s
}

// NewCaptureStatus builds the status message from capture counters.
func NewCaptureStatus(sessionID, source string, stats pipeline.Stats, metrics rate.Metrics) *CaptureStatus {
	return &CaptureStatus{
		SessionID:       sessionID,
		Source:          source,
		Frames:          stats.Frames,
		LengthTimeouts:  stats.LengthTimeouts,
		PayloadTimeouts: stats.PayloadTimeouts,
		Mismatches:      stats.Mismatches,
		ShortPayloads:   stats.DecodeErrors,
		SkippedBytes:    stats.SkippedBytes,
		Fps:             uint32(metrics.FramesPerSecond),
		UptimeS:         uint64(metrics.Elapsed / time.Second),
	}
}
