// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package logbook persists collection events as CSV. The file is the
// mission's durable record: every row is flushed and synced as it is
// written, so a power cut costs at most the row in flight. Missing
// sensor readings are recorded as empty fields, never as sentinels.
package logbook

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/aquabotics/amlac/internal/sensing"
)

const timeLayout = "2006-01-02 15:04:05"

var header = []string{
	"Timestamp", "Algae_Detected", "Confidence", "GPS_Lat", "GPS_Lon",
	"Weight_kg", "Collection_Count", "Distance_cm", "Orientation",
}

// CollectionEvent is one completed collection, as recorded in the log
// and published over telemetry.
type CollectionEvent struct {
	Timestamp   time.Time            `json:"timestamp"`
	Detected    bool                 `json:"detected"`
	Confidence  float64              `json:"confidence"`
	Lat         *float64             `json:"lat,omitempty"`
	Lon         *float64             `json:"lon,omitempty"`
	WeightKg    float64              `json:"weight_kg"`
	Collections uint64               `json:"collections"`
	DistanceCm  *float64             `json:"distance_cm,omitempty"`
	Orientation *sensing.Orientation `json:"orientation,omitempty"`
}

// Logbook is an append-only CSV writer.
type Logbook struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// Open appends to the log at path, creating it with a header row if it
// does not exist yet.
func Open(path string) (*Logbook, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logbook: create directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logbook: open %s: %w", path, err)
	}

	lb := &Logbook{file: file, w: csv.NewWriter(file)}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("logbook: stat: %w", err)
	}
	if info.Size() == 0 {
		if err := lb.w.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("logbook: write header: %w", err)
		}
		lb.w.Flush()
		if err := lb.w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("logbook: write header: %w", err)
		}
	}
	return lb, nil
}

func formatOpt(v *float64, format string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(format, *v)
}

// Record appends one collection event and syncs it to disk.
func (l *Logbook) Record(ev CollectionEvent) error {
	detected := "No"
	if ev.Detected {
		detected = "Yes"
	}
	orient := ""
	if ev.Orientation != nil {
		orient = fmt.Sprintf("P:%.1f R:%.1f", ev.Orientation.Pitch, ev.Orientation.Roll)
	}

	row := []string{
		ev.Timestamp.Format(timeLayout),
		detected,
		fmt.Sprintf("%.4f", ev.Confidence),
		formatOpt(ev.Lat, "%.6f"),
		formatOpt(ev.Lon, "%.6f"),
		fmt.Sprintf("%.2f", ev.WeightKg),
		strconv.FormatUint(ev.Collections, 10),
		formatOpt(ev.DistanceCm, "%.2f"),
		orient,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("logbook: write row: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("logbook: flush: %w", err)
	}
	return l.file.Sync()
}

// Note appends a free-form annotation as a comment line. Notes are
// skipped by Read but survive in the raw file for the operator.
func (l *Logbook) Note(level, msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	if _, err := fmt.Fprintf(l.file, "# %s %s %s\n", time.Now().Format(timeLayout), level, msg); err != nil {
		return fmt.Errorf("logbook: note: %w", err)
	}
	return l.file.Sync()
}

// Close flushes and closes the underlying file.
func (l *Logbook) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.file.Close()
		return fmt.Errorf("logbook: flush: %w", err)
	}
	return l.file.Close()
}
