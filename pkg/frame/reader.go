package frame

import (
	"context"
	"errors"
	"io"
	"os"
)

// Reader pulls frames from a byte source.
//
// The source is expected to give up on a Read after a configured timeout,
// either by returning (0, nil) like a serial port, or by returning an error
// whose Timeout() is true like a net.Conn with a read deadline.
// Reader keeps no partial frame between calls.
type Reader struct {
	Source io.Reader

	buf [1]byte
}

// NewReader creates a Reader over src.
func NewReader(src io.Reader) *Reader {
	return &Reader{Source: src}
}

// NextFrame scans for the start marker and reads one complete frame.
//
// Recoverable failures are ErrLengthTimeout, ErrPayloadTimeout and
// ErrFrameMismatch: calling NextFrame again resumes the marker scan.
// Any other error comes from the source (*SourceError) or the context.
func (r *Reader) NextFrame(ctx context.Context) (*Frame, error) {
	var skipped int
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, ok, err := r.readByte()
		if err != nil {
			return nil, r.sourceErr(ctx, err)
		}
		if !ok {
			// idle line, keep waiting for a frame.
			continue
		}
		if b == StartMarker {
			break
		}
		skipped++
	}

	length, ok, err := r.readByte()
	if err != nil {
		return nil, r.sourceErr(ctx, err)
	}
	if !ok {
		return nil, &TimeoutError{Kind: ErrLengthTimeout, Want: 1}
	}

	payload := make([]byte, length)
	n, err := r.readFull(payload)
	if err != nil {
		return nil, r.sourceErr(ctx, err)
	}
	if n < len(payload) {
		return nil, &TimeoutError{Kind: ErrPayloadTimeout, Want: len(payload), Got: n}
	}

	end, ok, err := r.readByte()
	if err != nil {
		return nil, r.sourceErr(ctx, err)
	}
	if !ok {
		return nil, &MismatchError{Length: len(payload), Timeout: true}
	}
	if end != EndMarker {
		return nil, &MismatchError{Length: len(payload), Got: end}
	}
	return &Frame{Payload: payload, Skipped: skipped}, nil
}

// readByte returns ok == false when the source timed out.
func (r *Reader) readByte() (byte, bool, error) {
	n, err := r.Source.Read(r.buf[:])
	if n > 0 {
		return r.buf[0], true, nil
	}
	if err == nil || isTimeout(err) {
		return 0, false, nil
	}
	return 0, false, err
}

// readFull reads until p is full or the source times out.
func (r *Reader) readFull(p []byte) (int, error) {
	var n int
	for n < len(p) {
		nr, err := r.Source.Read(p[n:])
		n += nr
		if n == len(p) {
			break
		}
		if err != nil {
			if isTimeout(err) {
				return n, nil
			}
			return n, err
		}
		if nr == 0 {
			return n, nil
		}
	}
	return n, nil
}

func (r *Reader) sourceErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		// the source was closed to unblock us.
		return ctxErr
	}
	return &SourceError{Err: err}
}

func isTimeout(err error) bool {
	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
