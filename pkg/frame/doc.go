// Package frame extracts marker-delimited frames from a telemetry byte stream.
package frame

// Frames are produced by the capture firmware and consumed over a
// peer-to-peer byte stream (usually a serial port):
//
//   0xAA | length (1 byte) | payload (length bytes) | 0xBB
//
// There is no checksum. Robustness comes from resynchronization: every read
// starts by scanning for the start marker, so a corrupted or half-received
// frame costs at most that frame. The payload is opaque at this layer.
//
// Producer: capture firmware
// Consumer: host tools (procond, proconsh, proconviz)
