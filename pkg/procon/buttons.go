package procon

import "strconv"

// Button is the bit index of a button in the payload button mask.
type Button uint8

// Buttons in mask bit order. Slots 4, 5, 20 and 21 are reserved.
const (
	ButtonDown Button = iota
	ButtonUp
	ButtonRight
	ButtonLeft
	_
	_
	ButtonL
	ButtonZL
	ButtonSelect
	ButtonStart
	ButtonR3
	ButtonL3
	ButtonHome
	ButtonCapture
	ButtonHoge
	ButtonFuga
	ButtonY
	ButtonX
	ButtonB
	ButtonA
	_
	_
	ButtonR
	ButtonZR
)

// NumButtons is the number of slots in the button table.
const NumButtons = 24

var buttonNames = [NumButtons]string{
	"DOWN", "UP", "RIGHT", "LEFT", "", "",
	"L", "ZL", "SELECT", "START", "R3", "L3",
	"HOME", "CAPTURE", "HOGE", "FUGA", "Y", "X",
	"B", "A", "", "", "R", "ZR",
}

// String returns the table name, a placeholder label for reserved slots,
// and "Button <i>" for indices beyond the table.
func (b Button) String() string {
	if int(b) >= NumButtons {
		return "Button " + strconv.Itoa(int(b))
	}
	if name := buttonNames[b]; name != "" {
		return name
	}
	return "Reserved " + strconv.Itoa(int(b))
}

// IsReserved reports whether b is an unnamed slot of the table.
func (b Button) IsReserved() bool {
	return int(b) < NumButtons && buttonNames[b] == ""
}

// ButtonByName looks up a named button.
func ButtonByName(name string) (Button, bool) {
	for i, n := range buttonNames {
		if n != "" && n == name {
			return Button(i), true
		}
	}
	return 0, false
}

// Buttons is the button bitmask; bit i set means Button(i) is pressed.
type Buttons uint32

// IsPressed reports whether b is pressed.
func (m Buttons) IsPressed(b Button) bool {
	return b < 32 && m&(1<<b) != 0
}

// Pressed lists pressed buttons in bit order.
func (m Buttons) Pressed() []Button {
	var pressed []Button
	for i := Button(0); i < 32; i++ {
		if m.IsPressed(i) {
			pressed = append(pressed, i)
		}
	}
	return pressed
}

// Names lists the names of pressed buttons in bit order.
func (m Buttons) Names() []string {
	pressed := m.Pressed()
	names := make([]string, len(pressed))
	for n, b := range pressed {
		names[n] = b.String()
	}
	return names
}
