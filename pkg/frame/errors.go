package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthTimeout indicates the length byte didn't arrive in time.
	ErrLengthTimeout = errors.New("timed out waiting for length")
	// ErrPayloadTimeout indicates fewer than length payload bytes arrived in time.
	ErrPayloadTimeout = errors.New("timed out waiting for payload")
	// ErrFrameMismatch indicates the byte after the payload is not the end marker.
	ErrFrameMismatch = errors.New("frame end byte mismatch")
	// ErrPayloadTooLong indicates a payload can't be encoded in one frame.
	ErrPayloadTooLong = errors.New("payload too long")
)

// MismatchError reports the byte found where the end marker was expected.
// Timeout is set when nothing arrived after the payload.
type MismatchError struct {
	Length  int
	Got     byte
	Timeout bool
}

// Error implements error.
func (e *MismatchError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: no byte after %d bytes payload", ErrFrameMismatch.Error(), e.Length)
	}
	return fmt.Sprintf("%s: got 0x%02x after %d bytes payload", ErrFrameMismatch.Error(), e.Got, e.Length)
}

// Is makes errors.Is(err, ErrFrameMismatch) hold.
func (e *MismatchError) Is(target error) bool {
	return target == ErrFrameMismatch
}

// TimeoutError reports how many bytes of a frame part arrived before the
// source timed out. It matches ErrLengthTimeout or ErrPayloadTimeout.
type TimeoutError struct {
	Kind error
	Want int
	Got  int
}

// Error implements error.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: received %d of %d bytes", e.Kind.Error(), e.Got, e.Want)
}

// Is makes errors.Is match the sentinel in Kind.
func (e *TimeoutError) Is(target error) bool {
	return target == e.Kind
}

// SourceError wraps a non-timeout read failure of the byte source.
// It is never recoverable: the source is closed or gone.
type SourceError struct {
	Err error
}

// Error implements error.
func (e *SourceError) Error() string {
	return "read source: " + e.Err.Error()
}

// Unwrap returns the underlying read error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether the caller should simply read the next frame.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrLengthTimeout) ||
		errors.Is(err, ErrPayloadTimeout) ||
		errors.Is(err, ErrFrameMismatch)
}
