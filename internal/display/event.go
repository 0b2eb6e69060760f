// Package display renders operator status to a 16x2-character surface,
// either a console or the onboard OLED. Layout is fixed at two lines of
// sixteen characters so the same content works on both.
package display

import "fmt"

// Width is the character width of one display line.
const Width = 16

// Kind identifies what an Event announces.
type Kind int

const (
	KindScanning Kind = iota
	KindDetection
	KindCollecting
	KindPosition
	KindWeight
	KindBinFull
	KindObstacle
	KindError
)

// Event is one display update. Only the fields relevant to its Kind
// are consulted.
type Event struct {
	Kind Kind

	Confidence  float64 // detection
	Collections uint64

	HaveFix  bool // position
	Lat, Lon float64

	WeightKg    float64 // weight
	WeightStale bool

	DistanceCm float64 // obstacle

	Message string // error
}

// IsAlert reports whether the event must pre-empt routine rotation and
// hold the surface for the dwell period.
func (e Event) IsAlert() bool {
	switch e.Kind {
	case KindDetection, KindBinFull, KindObstacle, KindError:
		return true
	}
	return false
}

// isRoutine reports whether the event belongs to the background status
// rotation. Routine events yield to a dwelling alert; everything else
// renders immediately.
func (e Event) isRoutine() bool {
	switch e.Kind {
	case KindScanning, KindPosition, KindWeight:
		return true
	}
	return false
}

func truncate(s string) string {
	if len(s) > Width {
		return s[:Width]
	}
	return s
}

// Lines formats the event as two display lines, each at most Width
// characters.
func Lines(e Event) [2]string {
	var top, bottom string
	switch e.Kind {
	case KindScanning:
		top = "Scanning water"
		bottom = fmt.Sprintf("Collected: %d", e.Collections)
	case KindDetection:
		top = "Algae detected!"
		bottom = fmt.Sprintf("Conf: %.2f", e.Confidence)
	case KindCollecting:
		top = "Collecting..."
		bottom = fmt.Sprintf("Count: %d", e.Collections)
	case KindPosition:
		if !e.HaveFix {
			top = "GPS: no fix"
			break
		}
		top = fmt.Sprintf("Lat %9.4f", e.Lat)
		bottom = fmt.Sprintf("Lon %9.4f", e.Lon)
	case KindWeight:
		top = fmt.Sprintf("Load: %.2fkg", e.WeightKg)
		if e.WeightStale {
			top = fmt.Sprintf("Load: %.2fkg?", e.WeightKg)
		}
		bottom = fmt.Sprintf("Count: %d", e.Collections)
	case KindBinFull:
		top = "BIN FULL!"
		bottom = "Emptying needed"
	case KindObstacle:
		top = fmt.Sprintf("Obstacle %.0fcm", e.DistanceCm)
		bottom = "Turning..."
	case KindError:
		top = "FAULT"
		bottom = e.Message
	}
	return [2]string{truncate(top), truncate(bottom)}
}
