package logbook

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aquabotics/amlac/internal/sensing"
)

// Read loads every collection event from the log at path. Note lines
// and the header row are skipped; empty fields come back as nil.
func Read(path string) ([]CollectionEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("logbook: open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comment = '#'
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("logbook: parse %s: %w", path, err)
	}

	var events []CollectionEvent
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == header[0] {
			continue
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("logbook: row %d has %d fields, want %d", i+1, len(row), len(header))
		}
		ev, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("logbook: row %d: %w", i+1, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseOpt(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseRow(row []string) (CollectionEvent, error) {
	var ev CollectionEvent
	var err error

	if ev.Timestamp, err = time.ParseInLocation(timeLayout, row[0], time.Local); err != nil {
		return ev, fmt.Errorf("timestamp: %w", err)
	}
	ev.Detected = row[1] == "Yes"
	if ev.Confidence, err = strconv.ParseFloat(row[2], 64); err != nil {
		return ev, fmt.Errorf("confidence: %w", err)
	}
	if ev.Lat, err = parseOpt(row[3]); err != nil {
		return ev, fmt.Errorf("latitude: %w", err)
	}
	if ev.Lon, err = parseOpt(row[4]); err != nil {
		return ev, fmt.Errorf("longitude: %w", err)
	}
	if ev.WeightKg, err = strconv.ParseFloat(row[5], 64); err != nil {
		return ev, fmt.Errorf("weight: %w", err)
	}
	if ev.Collections, err = strconv.ParseUint(row[6], 10, 64); err != nil {
		return ev, fmt.Errorf("collection count: %w", err)
	}
	if ev.DistanceCm, err = parseOpt(row[7]); err != nil {
		return ev, fmt.Errorf("distance: %w", err)
	}
	if row[8] != "" {
		var o sensing.Orientation
		if _, err := fmt.Sscanf(row[8], "P:%f R:%f", &o.Pitch, &o.Roll); err != nil {
			return ev, fmt.Errorf("orientation: %w", err)
		}
		ev.Orientation = &o
	}
	return ev, nil
}

// Stats summarizes a mission log.
type Stats struct {
	Records       int       `json:"records"`
	Detections    int       `json:"detections"`
	DetectionRate float64   `json:"detection_rate"`
	LastWeightKg  float64   `json:"last_weight_kg"`
	AvgConfidence float64   `json:"avg_confidence"`
	First         time.Time `json:"first"`
	Last          time.Time `json:"last"`
}

// Summarize computes aggregate statistics over the given events.
func Summarize(events []CollectionEvent) Stats {
	var s Stats
	s.Records = len(events)
	if s.Records == 0 {
		return s
	}

	var confSum float64
	for _, ev := range events {
		if ev.Detected {
			s.Detections++
		}
		confSum += ev.Confidence
	}
	s.AvgConfidence = confSum / float64(s.Records)
	s.DetectionRate = float64(s.Detections) / float64(s.Records)
	s.LastWeightKg = events[len(events)-1].WeightKg
	s.First = events[0].Timestamp
	s.Last = events[len(events)-1].Timestamp
	return s
}
