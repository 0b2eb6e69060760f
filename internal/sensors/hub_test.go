package sensors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquabotics/amlac/internal/gps"
	"github.com/aquabotics/amlac/internal/sensing"
)

type fakeColor struct {
	rgb   sensing.RGB
	err   error
	calls int
}

func (f *fakeColor) ReadColor() (sensing.RGB, error) {
	f.calls++
	return f.rgb, f.err
}

type fakeRange struct {
	cm  float64
	err error
}

func (f *fakeRange) MeasureCm() (float64, error) { return f.cm, f.err }

type fakeInertial struct {
	tilt sensing.Orientation
	err  error
}

func (f *fakeInertial) ReadTilt() (sensing.Orientation, error) { return f.tilt, f.err }

type fakePosition struct {
	fix  gps.Fix
	have bool
}

func (f *fakePosition) LatestFix() (gps.Fix, bool) { return f.fix, f.have }

type fakeWeight struct {
	kg  float64
	err error
}

func (f *fakeWeight) WeightKg() (float64, error) { return f.kg, f.err }

type fakeSwitch struct {
	high bool
	err  error
}

func (f *fakeSwitch) IsHigh() (bool, error) { return f.high, f.err }

func TestPollAssemblesFullSnapshot(t *testing.T) {
	h := &Hub{
		Color:     &fakeColor{rgb: sensing.RGB{R: 20, G: 180, B: 40}},
		Range:     &fakeRange{cm: 55.5},
		Inertial:  &fakeInertial{tilt: sensing.Orientation{Pitch: 1.5, Roll: -2.0}},
		Position:  &fakePosition{fix: gps.Fix{Time: time.Now(), Latitude: 48.1173, Longitude: 11.5166}, have: true},
		Weight:    &fakeWeight{kg: 1.25},
		BinFull:   &fakeSwitch{high: true},
		MaxFixAge: 5 * time.Second,
	}

	snap := h.Poll()

	require.NotNil(t, snap.Color)
	assert.Equal(t, sensing.RGB{R: 20, G: 180, B: 40}, *snap.Color)
	require.NotNil(t, snap.DistanceCm)
	assert.InDelta(t, 55.5, *snap.DistanceCm, 1e-9)
	require.NotNil(t, snap.Orientation)
	assert.InDelta(t, 1.5, snap.Orientation.Pitch, 1e-9)
	require.NotNil(t, snap.GPS)
	assert.InDelta(t, 48.1173, snap.GPS.Lat, 1e-9)
	require.NotNil(t, snap.WeightKg)
	assert.InDelta(t, 1.25, *snap.WeightKg, 1e-9)
	assert.False(t, snap.WeightStale)
	assert.True(t, snap.BinFull)
	assert.False(t, snap.Time.IsZero())
}

func TestPollIsolatesFailedSources(t *testing.T) {
	h := &Hub{
		Color:    &fakeColor{err: errors.New("bus noise")},
		Range:    &fakeRange{cm: 120},
		Inertial: &fakeInertial{err: errors.New("unplugged")},
		BinFull:  &fakeSwitch{},
	}

	snap := h.Poll()

	assert.Nil(t, snap.Color)
	assert.Nil(t, snap.Orientation)
	require.NotNil(t, snap.DistanceCm, "healthy sources must survive a neighbor's failure")
	assert.InDelta(t, 120, *snap.DistanceCm, 1e-9)
}

func TestPollHandlesAllNilSources(t *testing.T) {
	snap := (&Hub{}).Poll()

	assert.Nil(t, snap.Color)
	assert.Nil(t, snap.DistanceCm)
	assert.Nil(t, snap.Orientation)
	assert.Nil(t, snap.GPS)
	assert.Nil(t, snap.WeightKg)
	assert.False(t, snap.BinFull)
}

func TestPollRetriesBusReadOnce(t *testing.T) {
	c := &fakeColor{err: errors.New("transient")}
	h := &Hub{Color: c, RetryBackoff: time.Millisecond}

	h.Poll()
	assert.Equal(t, 2, c.calls)
}

func TestPollDropsStaleFix(t *testing.T) {
	h := &Hub{
		Position: &fakePosition{
			fix:  gps.Fix{Time: time.Now().Add(-time.Minute), Latitude: 48, Longitude: 11},
			have: true,
		},
		MaxFixAge: 5 * time.Second,
	}

	assert.Nil(t, h.Poll().GPS)
}

func TestPollReportsStaleWeightAfterFailure(t *testing.T) {
	w := &fakeWeight{kg: 2.5}
	h := &Hub{Weight: w}

	snap := h.Poll()
	require.NotNil(t, snap.WeightKg)
	assert.False(t, snap.WeightStale)

	w.err = errors.New("HX711 not ready")
	snap = h.Poll()
	require.NotNil(t, snap.WeightKg, "last good weight should survive a read failure")
	assert.InDelta(t, 2.5, *snap.WeightKg, 1e-9)
	assert.True(t, snap.WeightStale)
}

func TestPollNoWeightBeforeFirstGoodReading(t *testing.T) {
	h := &Hub{Weight: &fakeWeight{err: errors.New("dead")}}

	snap := h.Poll()
	assert.Nil(t, snap.WeightKg)
	assert.False(t, snap.WeightStale)
}
