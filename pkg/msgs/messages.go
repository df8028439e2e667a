package msgs

import (
	"github.com/golang/protobuf/proto"
)

// Topics relative to the device id.
const (
	TopicState  = "state"
	TopicStatus = "status"
)

// StickValue is the raw position of a stick.
type StickValue struct {
	X uint32 `protobuf:"varint,1,opt,name=x,proto3" json:"x,omitempty"`
	Y uint32 `protobuf:"varint,2,opt,name=y,proto3" json:"y,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *StickValue) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StickValue) Reset() { *m = StickValue{} }

// String implements proto.Message.
func (m *StickValue) String() string { return proto.CompactTextString(m) }

// ControllerState is a decoded controller frame.
type ControllerState struct {
	SessionID   string      `protobuf:"bytes,1,opt,name=session_id,proto3" json:"session_id,omitempty"`
	Seq         uint64      `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	TimestampMs int64       `protobuf:"varint,3,opt,name=timestamp_ms,proto3" json:"timestamp_ms,omitempty"`
	Buttons     uint32      `protobuf:"varint,4,opt,name=buttons,proto3" json:"buttons,omitempty"`
	Pressed     []string    `protobuf:"bytes,5,rep,name=pressed,proto3" json:"pressed,omitempty"`
	Left        *StickValue `protobuf:"bytes,6,opt,name=left,proto3" json:"left,omitempty"`
	Right       *StickValue `protobuf:"bytes,7,opt,name=right,proto3" json:"right,omitempty"`
	Fps         uint32      `protobuf:"varint,8,opt,name=fps,proto3" json:"fps,omitempty"`
	UptimeS     uint64      `protobuf:"varint,9,opt,name=uptime_s,proto3" json:"uptime_s,omitempty"`
	Header      []byte      `protobuf:"bytes,10,opt,name=header,proto3" json:"header,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *ControllerState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ControllerState) Reset() { *m = ControllerState{} }

// String implements proto.Message.
func (m *ControllerState) String() string { return proto.CompactTextString(m) }

// CaptureStatus reports the health of the capture link.
type CaptureStatus struct {
	SessionID       string `protobuf:"bytes,1,opt,name=session_id,proto3" json:"session_id,omitempty"`
	Source          string `protobuf:"bytes,2,opt,name=source,proto3" json:"source,omitempty"`
	Frames          uint64 `protobuf:"varint,3,opt,name=frames,proto3" json:"frames,omitempty"`
	LengthTimeouts  uint64 `protobuf:"varint,4,opt,name=length_timeouts,proto3" json:"length_timeouts,omitempty"`
	PayloadTimeouts uint64 `protobuf:"varint,5,opt,name=payload_timeouts,proto3" json:"payload_timeouts,omitempty"`
	Mismatches      uint64 `protobuf:"varint,6,opt,name=mismatches,proto3" json:"mismatches,omitempty"`
	ShortPayloads   uint64 `protobuf:"varint,7,opt,name=short_payloads,proto3" json:"short_payloads,omitempty"`
	SkippedBytes    uint64 `protobuf:"varint,8,opt,name=skipped_bytes,proto3" json:"skipped_bytes,omitempty"`
	Fps             uint32 `protobuf:"varint,9,opt,name=fps,proto3" json:"fps,omitempty"`
	UptimeS         uint64 `protobuf:"varint,10,opt,name=uptime_s,proto3" json:"uptime_s,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *CaptureStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CaptureStatus) Reset() { *m = CaptureStatus{} }

// String implements proto.Message.
func (m *CaptureStatus) String() string { return proto.CompactTextString(m) }
