package procon

import (
	"fmt"
	"strings"
)

// AxisMax is the largest 12-bit axis value.
const AxisMax = 0xfff

// AxisCenter is the nominal resting value of an axis.
const AxisCenter = 2048

// Stick is the raw position of an analog stick, 12 bits per axis.
type Stick struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
}

// Centered returns the signed offsets from AxisCenter.
// It doesn't apply any calibration.
func (s Stick) Centered() (dx, dy int) {
	return int(s.X) - AxisCenter, int(s.Y) - AxisCenter
}

// String implements fmt.Stringer.
func (s Stick) String() string {
	return fmt.Sprintf("(%d,%d)", s.X, s.Y)
}

// State is the decoded controller input state.
type State struct {
	Buttons Buttons `json:"buttons"`
	Left    Stick   `json:"left"`
	Right   Stick   `json:"right"`
}

// String implements fmt.Stringer.
func (s State) String() string {
	return fmt.Sprintf("buttons=[%s] L=%s R=%s",
		strings.Join(s.Buttons.Names(), " "), s.Left, s.Right)
}
