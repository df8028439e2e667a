// Package rate tracks frame throughput over one second windows and the
// time elapsed since tracking started.
package rate

import (
	"fmt"
	"sync"
	"time"
)

// Window is the length of a measurement window.
const Window = time.Second

// Clock returns the current time.
type Clock func() time.Time

// Metrics is a snapshot of the tracker.
type Metrics struct {
	// FramesPerSecond is the frame count of the last completed window.
	FramesPerSecond int
	// Elapsed is the time since the tracker was created.
	Elapsed time.Duration
	// Frames is the total number of frames seen.
	Frames uint64
}

// Uptime formats Elapsed as HH:MM:SS, floored to whole seconds.
func (m Metrics) Uptime() string {
	return FormatUptime(m.Elapsed)
}

// FormatUptime formats d as HH:MM:SS. Hours are not wrapped at 24.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// Tracker counts frames per second.
// OnFrame and Sample may be called from different goroutines.
type Tracker struct {
	clock Clock

	lock        sync.Mutex
	start       time.Time
	windowStart time.Time
	count       int
	rate        int
	total       uint64
}

// NewTracker creates a Tracker using the wall clock.
func NewTracker() *Tracker {
	return NewTrackerWithClock(time.Now)
}

// NewTrackerWithClock creates a Tracker with the specified clock.
func NewTrackerWithClock(clock Clock) *Tracker {
	now := clock()
	return &Tracker{clock: clock, start: now, windowStart: now}
}

// OnFrame records one successfully received frame.
func (t *Tracker) OnFrame() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.count++
	t.total++
	t.roll(t.clock())
}

// Sample returns the current metrics. A window that completed since the
// last frame is accounted for before sampling.
func (t *Tracker) Sample() Metrics {
	t.lock.Lock()
	defer t.lock.Unlock()
	now := t.clock()
	t.roll(now)
	return Metrics{
		FramesPerSecond: t.rate,
		Elapsed:         now.Sub(t.start),
		Frames:          t.total,
	}
}

func (t *Tracker) roll(now time.Time) {
	if now.Sub(t.windowStart) >= Window {
		t.rate = t.count
		t.count = 0
		t.windowStart = now
	}
}
