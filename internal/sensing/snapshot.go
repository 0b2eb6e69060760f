package sensing

import "time"

// RGB is one color-sensor reading, already scaled to 8-bit channels.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Orientation is the tilt of the hull in degrees.
type Orientation struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// Position is a decoded satellite position in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Snapshot is the immutable aggregate of one cycle's sensor readings.
// A nil field means its source errored or timed out this cycle; there are
// no sentinel values. WeightKg may carry the previous cycle's value when
// the load cell failed, in which case WeightStale is set.
type Snapshot struct {
	Time        time.Time    `json:"time"`
	Color       *RGB         `json:"color,omitempty"`
	DistanceCm  *float64     `json:"distance_cm,omitempty"`
	Orientation *Orientation `json:"orientation,omitempty"`
	GPS         *Position    `json:"gps,omitempty"`
	WeightKg    *float64     `json:"weight_kg,omitempty"`
	WeightStale bool         `json:"weight_stale,omitempty"`
	BinFull     bool         `json:"bin_full"`
}
