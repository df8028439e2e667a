package frame

import "io"

// Frame markers.
const (
	StartMarker byte = 0xAA
	EndMarker   byte = 0xBB
)

// MaxPayload is the largest payload a single length byte can describe.
const MaxPayload = 0xff

// Frame contains the information of an extracted frame.
type Frame struct {
	Payload []byte
	// Skipped counts the bytes discarded while scanning for the start marker.
	Skipped int
}

// Len returns the payload length as carried by the length byte.
func (f *Frame) Len() int {
	return len(f.Payload)
}

// Bytes returns the encoded frame. The payload is truncated to MaxPayload.
func (f *Frame) Bytes() []byte {
	data := f.Payload
	if len(data) > MaxPayload {
		data = data[:MaxPayload]
	}
	b := make([]byte, len(data)+3)
	b[0], b[1] = StartMarker, byte(len(data))
	copy(b[2:], data)
	b[len(b)-1] = EndMarker
	return b
}

// WriteTo writes the encoded frame.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	if len(f.Payload) > MaxPayload {
		return 0, ErrPayloadTooLong
	}
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// Encode returns the wire form of payload.
func Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLong
	}
	f := Frame{Payload: payload}
	return f.Bytes(), nil
}
