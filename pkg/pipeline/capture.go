package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/procon.go/pkg/frame"
	fx "github.com/robotalks/procon.go/pkg/framework"
	"github.com/robotalks/procon.go/pkg/rate"
)

// ErrNoReader is returned by Run when Capture has no Reader.
var ErrNoReader = errors.New("capture has no reader")

// LogErrors is the default ErrorSink, writing warnings to glog.
var LogErrors ErrorSink = ErrorSinkFunc(func(ctx context.Context, err error) {
	glog.Warningf("frame: %v", err)
})

// Capture reads frames until the source fails or the context is done.
type Capture struct {
	Reader  *frame.Reader
	Decoder PayloadDecoder
	// Tracker is created on Run if nil. Set it beforehand when metrics
	// are sampled from other goroutines.
	Tracker *rate.Tracker
	Sinks   []Sink
	// Errors receives recoverable framing errors, LogErrors if nil.
	Errors ErrorSink
	// Clock stamps events, time.Now if nil.
	Clock func() time.Time

	lock  sync.RWMutex
	stats Stats
}

// NewCapture creates a Capture with a wall clock Tracker.
func NewCapture(decoder PayloadDecoder, sinks ...Sink) *Capture {
	return &Capture{Decoder: decoder, Tracker: rate.NewTracker(), Sinks: sinks}
}

// AddSink appends sinks.
func (c *Capture) AddSink(sinks ...Sink) *Capture {
	c.Sinks = append(c.Sinks, sinks...)
	return c
}

// Stats returns a snapshot of the counters.
func (c *Capture) Stats() Stats {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.stats
}

// Run implements framework.Runnable.
// Recoverable framing errors are reported and the next frame is read
// immediately. Source failures and context cancellation end the loop.
func (c *Capture) Run(ctx context.Context) error {
	if c.Reader == nil {
		return ErrNoReader
	}
	if c.Tracker == nil {
		c.Tracker = rate.NewTracker()
	}
	errSink := c.Errors
	if errSink == nil {
		errSink = LogErrors
	}
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}

	var seq uint64
	for {
		f, err := c.Reader.NextFrame(ctx)
		if err != nil {
			if !frame.IsRecoverable(err) {
				return err
			}
			c.countError(err)
			errSink.HandleError(ctx, err)
			continue
		}

		c.Tracker.OnFrame()
		seq++
		event := &Event{
			Seq:     seq,
			Time:    clock(),
			Frame:   f,
			Metrics: c.Tracker.Sample(),
		}
		if c.Decoder != nil {
			event.Decoded, event.DecodeErr = c.Decoder.DecodePayload(f.Payload)
		}
		c.countFrame(f, event.DecodeErr)
		if glog.V(2) {
			glog.Infof("frame #%d: %d bytes, %d skipped", seq, f.Len(), f.Skipped)
		}
		for _, sink := range c.Sinks {
			sink.HandleEvent(ctx, event)
		}
	}
}

func (c *Capture) countError(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	switch {
	case errors.Is(err, frame.ErrLengthTimeout):
		c.stats.LengthTimeouts++
	case errors.Is(err, frame.ErrPayloadTimeout):
		c.stats.PayloadTimeouts++
	case errors.Is(err, frame.ErrFrameMismatch):
		c.stats.Mismatches++
	}
}

func (c *Capture) countFrame(f *frame.Frame, decodeErr error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stats.Frames++
	c.stats.SkippedBytes += uint64(f.Skipped)
	if decodeErr != nil {
		c.stats.DecodeErrors++
	}
}

// RunSource runs capture over src, and closes src exactly once when the
// capture ends, including on cancellation where closing unblocks a
// pending read.
func RunSource(ctx context.Context, src io.ReadCloser, capture *Capture) error {
	capture.Reader = frame.NewReader(src)
	return fx.RunWithContextCloser(ctx, src, func() error {
		return capture.Run(ctx)
	})
}
