package gps

import "time"

// Fix represents a single decoded satellite position fix.
type Fix struct {
	Time       time.Time `json:"time"`        // local receipt time, used for staleness checks
	Latitude   float64   `json:"lat"`         // decimal degrees
	Longitude  float64   `json:"lon"`         // decimal degrees
	Altitude   float64   `json:"alt_m"`       // metres above mean sea level
	Satellites int64     `json:"satellites"`  // satellites used in the solution
	Quality    int       `json:"quality"`     // GGA fix quality (0 = invalid)
	SpeedKnots float64   `json:"speed_knots"` // speed over ground, from RMC
	CourseDeg  float64   `json:"course_deg"`  // course over ground, from RMC
}
