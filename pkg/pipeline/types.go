// Package pipeline drives frame extraction, payload decoding and rate
// tracking, and fans the results out to sinks.
package pipeline

import (
	"context"
	"time"

	"github.com/robotalks/procon.go/pkg/frame"
	"github.com/robotalks/procon.go/pkg/rate"
)

// PayloadDecoder interprets the payload of a frame.
type PayloadDecoder interface {
	DecodePayload(payload []byte) (interface{}, error)
}

// PayloadDecoderFunc is func form of PayloadDecoder.
type PayloadDecoderFunc func([]byte) (interface{}, error)

// DecodePayload implements PayloadDecoder.
func (f PayloadDecoderFunc) DecodePayload(payload []byte) (interface{}, error) {
	return f(payload)
}

// Event is produced for every successfully extracted frame.
type Event struct {
	// Seq starts from 1 for each Capture.
	Seq     uint64
	Time    time.Time
	Frame   *frame.Frame
	Metrics rate.Metrics

	// Decoded is the result of the PayloadDecoder, nil if decoding failed
	// or no decoder is configured.
	Decoded   interface{}
	DecodeErr error
}

// Sink consumes events.
// HandleEvent is called on the capture goroutine and should not block long.
type Sink interface {
	HandleEvent(ctx context.Context, event *Event)
}

// SinkFunc is func form of Sink.
type SinkFunc func(context.Context, *Event)

// HandleEvent implements Sink.
func (f SinkFunc) HandleEvent(ctx context.Context, event *Event) {
	f(ctx, event)
}

// ErrorSink consumes recoverable framing errors.
type ErrorSink interface {
	HandleError(ctx context.Context, err error)
}

// ErrorSinkFunc is func form of ErrorSink.
type ErrorSinkFunc func(context.Context, error)

// HandleError implements ErrorSink.
func (f ErrorSinkFunc) HandleError(ctx context.Context, err error) {
	f(ctx, err)
}

// Stats counts what happened on the stream.
type Stats struct {
	Frames          uint64
	LengthTimeouts  uint64
	PayloadTimeouts uint64
	Mismatches      uint64
	DecodeErrors    uint64
	SkippedBytes    uint64
}

// Errors returns the total of framing and decoding errors.
func (s Stats) Errors() uint64 {
	return s.LengthTimeouts + s.PayloadTimeouts + s.Mismatches + s.DecodeErrors
}

// ErrorSinks fans errors out to multiple ErrorSinks.
type ErrorSinks []ErrorSink

// HandleError implements ErrorSink.
func (s ErrorSinks) HandleError(ctx context.Context, err error) {
	for _, sink := range s {
		sink.HandleError(ctx, err)
	}
}
