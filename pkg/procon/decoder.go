package procon

import (
	"errors"
	"fmt"
)

// Payload layout, byte offsets.
const (
	offsetButtons = 3
	offsetLeft    = 6
	offsetRight   = 9

	// PayloadSize is the minimum payload length for Decode.
	PayloadSize = 12
)

// ErrPayloadTooShort indicates a payload can't hold a controller state.
var ErrPayloadTooShort = errors.New("payload too short")

// ShortPayloadError reports the length of a rejected payload.
type ShortPayloadError struct {
	Len int
}

// Error implements error.
func (e *ShortPayloadError) Error() string {
	return fmt.Sprintf("%s: %d bytes, need %d", ErrPayloadTooShort.Error(), e.Len, PayloadSize)
}

// Is makes errors.Is(err, ErrPayloadTooShort) hold.
func (e *ShortPayloadError) Is(target error) bool {
	return target == ErrPayloadTooShort
}

// Header is the first 3 bytes of the payload. They are carried through
// uninterpreted.
type Header [offsetButtons]byte

// Decode unpacks a controller payload. Bytes beyond PayloadSize are ignored.
func Decode(payload []byte) (State, error) {
	if len(payload) < PayloadSize {
		return State{}, &ShortPayloadError{Len: len(payload)}
	}
	return State{
		Buttons: Buttons(be24(payload[offsetButtons:])),
		Left:    unpackStick(be24(payload[offsetLeft:])),
		Right:   unpackStick(be24(payload[offsetRight:])),
	}, nil
}

// ReadHeader returns the reserved header bytes, if present.
func ReadHeader(payload []byte) (h Header, ok bool) {
	if len(payload) < len(h) {
		return h, false
	}
	copy(h[:], payload)
	return h, true
}

func be24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// unpackStick takes X from the top 12 bits and Y from the bottom 12 bits.
func unpackStick(v uint32) Stick {
	return Stick{
		X: uint16((v >> 12) & AxisMax),
		Y: uint16(v & AxisMax),
	}
}

// Decoder adapts Decode to the capture pipeline.
type Decoder struct{}

// DecodePayload implements pipeline.PayloadDecoder.
func (Decoder) DecodePayload(payload []byte) (interface{}, error) {
	state, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	return state, nil
}
