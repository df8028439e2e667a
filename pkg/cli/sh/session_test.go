package sh

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/procon.go/pkg/frame"
	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/source"
)

func writeCapture(t *testing.T, dir string, payloads ...[]byte) string {
	var data []byte
	for _, p := range payloads {
		b, err := frame.Encode(p)
		require.NoError(t, err)
		data = append(data, b...)
	}
	fn := filepath.Join(dir, "capture.bin")
	require.NoError(t, ioutil.WriteFile(fn, data, 0644))
	return fn
}

func TestSessionReplay(t *testing.T) {
	dir, err := ioutil.TempDir("", "procon")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	payload := []byte{0x30, 0, 0, 0, 0x01, 0, 0x80, 0x08, 0x00, 0x80, 0x08, 0x00}
	fn := writeCapture(t, dir, payload, payload, []byte{0x30})

	var (
		lock   sync.Mutex
		states []interface{}
	)
	sink := pipeline.SinkFunc(func(ctx context.Context, ev *pipeline.Event) {
		lock.Lock()
		states = append(states, ev.Decoded)
		lock.Unlock()
	})
	s, err := OpenSession("file://"+fn, source.DefaultOptions(), sink)
	require.NoError(t, err)

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("replay didn't finish")
	}
	var srcErr *frame.SourceError
	require.True(t, errors.As(s.Err(), &srcErr))
	require.NoError(t, s.Close())

	lock.Lock()
	defer lock.Unlock()
	require.Len(t, states, 3)
	require.Equal(t, procon.Buttons(1<<procon.ButtonSelect), states[0].(procon.State).Buttons)
	require.Nil(t, states[2])

	stats := s.Capture.Stats()
	require.EqualValues(t, 3, stats.Frames)
	require.EqualValues(t, 1, stats.DecodeErrors)
}

func TestSessionOpenFailure(t *testing.T) {
	_, err := OpenSession("file:///nonexistent/procon.bin", source.DefaultOptions())
	require.Error(t, err)
	_, err = OpenSession("gopher://x", source.DefaultOptions())
	require.True(t, errors.Is(err, source.ErrUnsupportedScheme))
}

func TestEventTap(t *testing.T) {
	var tap eventTap
	tap.HandleEvent(context.Background(), &pipeline.Event{Seq: 1})

	ch := tap.attach(1)
	tap.HandleEvent(context.Background(), &pipeline.Event{Seq: 2})
	tap.HandleEvent(context.Background(), &pipeline.Event{Seq: 3})
	ev := <-ch
	require.EqualValues(t, 2, ev.Seq)
	select {
	case <-ch:
		t.Fatal("event should be dropped")
	default:
	}

	tap.detach()
	tap.HandleEvent(context.Background(), &pipeline.Event{Seq: 4})
}
