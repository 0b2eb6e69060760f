package control

// State is the controller's operating state.
type State int

const (
	// StateScanning is the default: cruising forward, classifying
	// frames, rotating routine status on the display.
	StateScanning State = iota
	// StateCollecting runs the conveyor over a confirmed detection.
	StateCollecting
	// StateBinFull holds the craft stopped until the bin is emptied.
	StateBinFull
	// StateFault is the recovery pause after an actuator error.
	StateFault
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateCollecting:
		return "collecting"
	case StateBinFull:
		return "bin_full"
	case StateFault:
		return "fault"
	}
	return "unknown"
}
