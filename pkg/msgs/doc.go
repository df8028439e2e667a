// Package msgs defines the telemetry messages published by the capture daemon.
package msgs

// Messages are protobuf encoded and published on MQTT topics under the
// device id:
//
//   <device-id>/state   ControllerState, one per decoded frame
//   <device-id>/status  CaptureStatus, retained, once per second
//
// Producer: procond
// Consumer: proconmon, any MQTT subscriber
