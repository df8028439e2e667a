package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingCloser struct {
	closed  int32
	unblock chan struct{}
}

func newCountingCloser() *countingCloser {
	return &countingCloser{unblock: make(chan struct{})}
}

func (c *countingCloser) Close() error {
	if atomic.AddInt32(&c.closed, 1) == 1 {
		close(c.unblock)
	}
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	t.Run("normal return", func(t *testing.T) {
		c := newCountingCloser()
		err := RunWithContextCloser(context.Background(), c, func() error { return nil })
		require.NoError(t, err)
		require.EqualValues(t, 1, atomic.LoadInt32(&c.closed))
	})

	t.Run("error return", func(t *testing.T) {
		c := newCountingCloser()
		fail := errors.New("port gone")
		err := RunWithContextCloser(context.Background(), c, func() error { return fail })
		require.Equal(t, fail, err)
		require.EqualValues(t, 1, atomic.LoadInt32(&c.closed))
	})

	t.Run("cancel unblocks", func(t *testing.T) {
		c := newCountingCloser()
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := RunWithContextCloser(ctx, c, func() error {
			<-c.unblock
			return errors.New("read on closed port")
		})
		require.Equal(t, context.Canceled, err)
		require.EqualValues(t, 1, atomic.LoadInt32(&c.closed))
	})
}

func TestRunner(t *testing.T) {
	t.Run("one failure stops all", func(t *testing.T) {
		fail := errors.New("fatal")
		r := NewRunner().Go(
			NamedRun("blocker", RunFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})),
			RunFunc(func(ctx context.Context) error { return fail }),
		)
		err := r.Wait()
		require.Equal(t, fail, err)
	})

	t.Run("stop is not an error", func(t *testing.T) {
		r := NewRunner().Go(RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}))
		r.Stop()
		require.NoError(t, r.Wait())
	})
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())

	first := errors.New("first")
	errs.Add(first)
	require.Equal(t, first, errs.Aggregate())

	errs.Add(errors.New("second"))
	err := errs.Aggregate()
	require.True(t, errors.Is(err, first))
	require.Contains(t, err.Error(), "second")
}
