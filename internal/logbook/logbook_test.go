package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquabotics/amlac/internal/sensing"
)

func f(v float64) *float64 { return &v }

func TestOpenCreatesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mission.csv")

	lb, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, lb.Close())

	// Reopening must not duplicate the header.
	lb, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, lb.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "Timestamp"))
}

func TestRecordRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.csv")
	lb, err := Open(path)
	require.NoError(t, err)

	ts := time.Date(2026, 8, 25, 14, 30, 5, 0, time.Local)
	ev := CollectionEvent{
		Timestamp:   ts,
		Detected:    true,
		Confidence:  0.8725,
		Lat:         f(48.117312),
		Lon:         f(11.516667),
		WeightKg:    1.25,
		Collections: 7,
		DistanceCm:  f(88.5),
		Orientation: &sensing.Orientation{Pitch: 1.5, Roll: -2.3},
	}
	require.NoError(t, lb.Record(ev))
	require.NoError(t, lb.Close())

	events, err := Read(path)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.True(t, got.Timestamp.Equal(ts))
	assert.True(t, got.Detected)
	assert.InDelta(t, 0.8725, got.Confidence, 1e-9)
	require.NotNil(t, got.Lat)
	assert.InDelta(t, 48.117312, *got.Lat, 1e-6)
	require.NotNil(t, got.Lon)
	assert.InDelta(t, 11.516667, *got.Lon, 1e-6)
	assert.InDelta(t, 1.25, got.WeightKg, 1e-9)
	assert.Equal(t, uint64(7), got.Collections)
	require.NotNil(t, got.DistanceCm)
	assert.InDelta(t, 88.5, *got.DistanceCm, 1e-9)
	require.NotNil(t, got.Orientation)
	assert.InDelta(t, 1.5, got.Orientation.Pitch, 0.05)
	assert.InDelta(t, -2.3, got.Orientation.Roll, 0.05)
}

func TestRecordMissingFieldsStayEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.csv")
	lb, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, lb.Record(CollectionEvent{
		Timestamp:   time.Now(),
		Detected:    false,
		Confidence:  0.12,
		Collections: 1,
	}))
	require.NoError(t, lb.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], ",,")
	assert.NotContains(t, lines[1], "N/A")

	events, err := Read(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Lat)
	assert.Nil(t, events[0].DistanceCm)
	assert.Nil(t, events[0].Orientation)
}

func TestNotesAreSkippedByRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.csv")
	lb, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, lb.Record(CollectionEvent{Timestamp: time.Now(), Collections: 1}))
	require.NoError(t, lb.Note("WARN", "actuator fault, backing off"))
	require.NoError(t, lb.Record(CollectionEvent{Timestamp: time.Now(), Collections: 2}))
	require.NoError(t, lb.Close())

	events, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "actuator fault")
}

func TestSummarize(t *testing.T) {
	t0 := time.Date(2026, 8, 25, 10, 0, 0, 0, time.Local)
	events := []CollectionEvent{
		{Timestamp: t0, Detected: true, Confidence: 0.9, WeightKg: 0.5},
		{Timestamp: t0.Add(time.Minute), Detected: false, Confidence: 0.3, WeightKg: 0.5},
		{Timestamp: t0.Add(2 * time.Minute), Detected: true, Confidence: 0.6, WeightKg: 1.1},
	}

	s := Summarize(events)
	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 2, s.Detections)
	assert.InDelta(t, 0.6, s.AvgConfidence, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.DetectionRate, 1e-9)
	assert.InDelta(t, 1.1, s.LastWeightKg, 1e-9)
	assert.True(t, s.First.Equal(t0))
	assert.True(t, s.Last.Equal(t0.Add(2*time.Minute)))

	assert.Zero(t, Summarize(nil).Records)
}
