package mqtt

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/procon.go/pkg/msgs"
	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/rate"
)

// DefaultStatusInterval is the default period of status messages.
const DefaultStatusInterval = time.Second

// TopicOnline carries "1" while the publisher is running, retained.
const TopicOnline = "online"

// Publisher publishes decoded controller states and periodic capture
// status. It implements pipeline.Sink and framework.Runnable.
type Publisher struct {
	Queue     *Queue
	DeviceID  string
	SessionID string
	Source    string
	Capture   *pipeline.Capture

	StatusInterval time.Duration
}

// NewPublisher creates a Publisher.
func NewPublisher(q *Queue, deviceID, sessionID string, capture *pipeline.Capture) *Publisher {
	return &Publisher{
		Queue:          q,
		DeviceID:       deviceID,
		SessionID:      sessionID,
		Capture:        capture,
		StatusInterval: DefaultStatusInterval,
	}
}

// Topic returns the topic of the device, relative to the queue prefix.
func (p *Publisher) Topic(name string) string {
	return p.DeviceID + "/" + name
}

// HandleEvent implements pipeline.Sink.
// Events without a decoded controller state are not published.
func (p *Publisher) HandleEvent(ctx context.Context, event *pipeline.Event) {
	state, ok := event.Decoded.(procon.State)
	if !ok {
		return
	}
	data, err := msgs.Encode(msgs.NewControllerState(p.SessionID, event, state))
	if err != nil {
		glog.Errorf("encode state: %v", err)
		return
	}
	// QoS 0, never wait on the capture goroutine.
	p.Queue.Pub(p.Topic(msgs.TopicState), data)
}

// PublishStatus publishes the capture status, retained.
func (p *Publisher) PublishStatus() error {
	var (
		stats   pipeline.Stats
		metrics rate.Metrics
	)
	if c := p.Capture; c != nil {
		stats = c.Stats()
		if c.Tracker != nil {
			metrics = c.Tracker.Sample()
		}
	}
	status := msgs.NewCaptureStatus(p.SessionID, p.Source, stats, metrics)
	data, err := msgs.Encode(status)
	if err != nil {
		return err
	}
	p.Queue.PubWith(p.Topic(msgs.TopicStatus), data, 0, true)
	return nil
}

// Run implements framework.Runnable, publishing status until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	interval := p.StatusInterval
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	p.Queue.PubWith(p.Topic(TopicOnline), []byte("1"), 1, true)
	defer func() {
		token := p.Queue.PubWith(p.Topic(TopicOnline), []byte("0"), 1, true)
		token.WaitTimeout(time.Second)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.PublishStatus(); err != nil {
				glog.Errorf("publish status: %v", err)
			}
		}
	}
}
