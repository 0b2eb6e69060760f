package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/sensors"
)

// RunSensorCheck polls every sensor once a second and prints the raw
// snapshot. Bench tool for verifying wiring before a mission.
func RunSensorCheck() error {
	cfg := config.Get()

	hub, err := sensors.Open(cfg)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	log.Println("sensorcheck: polling every second, Ctrl+C to stop")

	for {
		select {
		case <-sigCh:
			log.Println("sensorcheck: done")
			return nil
		case <-ticker.C:
			snap := hub.Poll()

			fmt.Printf("--- %s ---\n", snap.Time.Format("15:04:05"))
			if snap.Color != nil {
				fmt.Printf("color:       R=%d G=%d B=%d\n", snap.Color.R, snap.Color.G, snap.Color.B)
			} else {
				fmt.Println("color:       n/a")
			}
			if snap.DistanceCm != nil {
				fmt.Printf("distance:    %.1f cm\n", *snap.DistanceCm)
			} else {
				fmt.Println("distance:    n/a")
			}
			if snap.Orientation != nil {
				fmt.Printf("orientation: pitch=%.1f roll=%.1f\n", snap.Orientation.Pitch, snap.Orientation.Roll)
			} else {
				fmt.Println("orientation: n/a")
			}
			if snap.GPS != nil {
				fmt.Printf("position:    %.6f, %.6f\n", snap.GPS.Lat, snap.GPS.Lon)
			} else {
				fmt.Println("position:    no fix")
			}
			if snap.WeightKg != nil {
				stale := ""
				if snap.WeightStale {
					stale = " (stale)"
				}
				fmt.Printf("weight:      %.3f kg%s\n", *snap.WeightKg, stale)
			} else {
				fmt.Println("weight:      n/a")
			}
			fmt.Printf("bin full:    %v\n", snap.BinFull)
		}
	}
}
