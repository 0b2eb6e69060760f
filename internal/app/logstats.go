package app

import (
	"fmt"

	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/logbook"
)

// RunLogStats prints a summary of the mission log.
func RunLogStats() error {
	cfg := config.Get()

	events, err := logbook.Read(cfg.LogFilePath)
	if err != nil {
		return err
	}
	stats := logbook.Summarize(events)

	fmt.Printf("log file:        %s\n", cfg.LogFilePath)
	fmt.Printf("records:         %d\n", stats.Records)
	fmt.Printf("detections:      %d\n", stats.Detections)
	if stats.Records > 0 {
		fmt.Printf("detection rate:  %.1f%%\n", stats.DetectionRate*100)
		fmt.Printf("avg confidence:  %.3f\n", stats.AvgConfidence)
		fmt.Printf("last weight:     %.2f kg\n", stats.LastWeightKg)
		fmt.Printf("first record:    %s\n", stats.First.Format("2006-01-02 15:04:05"))
		fmt.Printf("last record:     %s\n", stats.Last.Format("2006-01-02 15:04:05"))
	}
	return nil
}
