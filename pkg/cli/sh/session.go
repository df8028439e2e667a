package sh

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/source"
)

// Session is a capture running in background on an opened source.
type Session struct {
	Target  *source.Target
	Capture *pipeline.Capture

	cancel func()
	done   chan struct{}
	err    error
}

// OpenSession opens the source and starts capturing.
func OpenSession(rawURL string, opts source.Options, sinks ...pipeline.Sink) (*Session, error) {
	target, err := source.ParseURL(rawURL, opts)
	if err != nil {
		return nil, err
	}
	src, err := target.Open()
	if err != nil {
		return nil, err
	}
	s := &Session{
		Target:  target,
		Capture: pipeline.NewCapture(procon.Decoder{}, sinks...),
		done:    make(chan struct{}),
	}
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	go func() {
		s.err = pipeline.RunSource(ctx, src, s.Capture)
		if s.err != nil && s.err != context.Canceled {
			glog.Warningf("capture %s stopped: %v", target, s.err)
		}
		close(s.done)
	}()
	return s, nil
}

// Done is closed when the capture stops.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the reason the capture stopped, only valid after Done.
func (s *Session) Err() error {
	<-s.done
	return s.err
}

// Close stops the capture and waits until the source is closed.
func (s *Session) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// eventTap forwards events to at most one attached watcher. Events are
// dropped when the watcher falls behind so the capture never blocks.
type eventTap struct {
	lock sync.Mutex
	ch   chan *pipeline.Event
}

// HandleEvent implements pipeline.Sink.
func (t *eventTap) HandleEvent(ctx context.Context, event *pipeline.Event) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.ch != nil {
		select {
		case t.ch <- event:
		default:
		}
	}
}

func (t *eventTap) attach(size int) <-chan *pipeline.Event {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.ch = make(chan *pipeline.Event, size)
	return t.ch
}

func (t *eventTap) detach() {
	t.lock.Lock()
	t.ch = nil
	t.lock.Unlock()
}
