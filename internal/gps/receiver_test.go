package gps

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentence wraps a body in $...*checksum framing with a valid checksum.
func sentence(body string) string {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, cs)
}

func newTestReceiver(opts Options, lines ...string) *Receiver {
	r := newReceiver(opts)
	src := strings.NewReader(strings.Join(lines, "\r\n") + "\r\n")
	r.run(src) // synchronous: reader drains and returns on EOF
	return r
}

func TestReceiverAcceptsValidGGA(t *testing.T) {
	r := newTestReceiver(Options{MinQuality: 1, MinSatellites: 3},
		sentence("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"),
	)

	fix, ok := r.LatestFix()
	require.True(t, ok)
	assert.InDelta(t, 48.1173, fix.Latitude, 0.0001)
	assert.InDelta(t, 11.5166, fix.Longitude, 0.0001)
	assert.InDelta(t, 545.4, fix.Altitude, 0.01)
	assert.Equal(t, int64(8), fix.Satellites)
	assert.Equal(t, 1, fix.Quality)
	assert.False(t, fix.Time.IsZero())
}

func TestReceiverRejectsNoFixQuality(t *testing.T) {
	r := newTestReceiver(Options{MinQuality: 1, MinSatellites: 3},
		sentence("GPGGA,123519,4807.038,N,01131.000,E,0,08,0.9,545.4,M,46.9,M,,"),
	)

	_, ok := r.LatestFix()
	assert.False(t, ok, "quality 0 must never produce a fix")
}

func TestReceiverRejectsTooFewSatellites(t *testing.T) {
	r := newTestReceiver(Options{MinQuality: 1, MinSatellites: 4},
		sentence("GPGGA,123519,4807.038,N,01131.000,E,1,03,0.9,545.4,M,46.9,M,,"),
	)

	_, ok := r.LatestFix()
	assert.False(t, ok)
}

func TestReceiverRejectsBadChecksum(t *testing.T) {
	r := newTestReceiver(Options{MinQuality: 1, MinSatellites: 3},
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*00",
	)

	_, ok := r.LatestFix()
	assert.False(t, ok)
}

func TestReceiverRMCEnrichesExistingFix(t *testing.T) {
	r := newTestReceiver(Options{MinQuality: 1, MinSatellites: 3},
		sentence("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"),
		sentence("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"),
	)

	fix, ok := r.LatestFix()
	require.True(t, ok)
	assert.InDelta(t, 22.4, fix.SpeedKnots, 0.01)
	assert.InDelta(t, 84.4, fix.CourseDeg, 0.01)
}

func TestReceiverRMCAloneIsNotAFix(t *testing.T) {
	r := newTestReceiver(Options{MinQuality: 1, MinSatellites: 3},
		sentence("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"),
	)

	_, ok := r.LatestFix()
	assert.False(t, ok, "a fix is only established by a valid GGA solution")
}

func TestReceiverIgnoresGarbage(t *testing.T) {
	r := newTestReceiver(Options{MinQuality: 1, MinSatellites: 3},
		"not nmea at all",
		"$GPGGA,truncat",
		sentence("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"),
	)

	_, ok := r.LatestFix()
	assert.True(t, ok)
}
