package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// FloatSwitch is the bin-full sensor: a float rises with the algae level
// and closes the switch. High means full.
type FloatSwitch struct {
	pin gpio.PinIO
}

// NewFloatSwitch configures the switch input with a pull-down, so a
// disconnected wire reads as "not full" rather than latching the robot
// into the bin-full state.
func NewFloatSwitch(pin gpio.PinIO) (*FloatSwitch, error) {
	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("float switch: %w", err)
	}
	return &FloatSwitch{pin: pin}, nil
}

// IsHigh reports whether the float has closed the switch.
func (f *FloatSwitch) IsHigh() (bool, error) {
	return f.pin.Read() == gpio.High, nil
}
