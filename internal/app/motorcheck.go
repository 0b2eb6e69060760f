package app

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/host/v3"

	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/motors"
)

// RunMotorCheck exercises each mechanism briefly with the craft on the
// bench. Paddles out of the water, please.
func RunMotorCheck() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("motorcheck: periph host init: %w", err)
	}

	drv, err := motors.Open(cfg)
	if err != nil {
		return err
	}
	defer drv.StopAll()

	step := func(name string, run func() error) error {
		log.Printf("motorcheck: %s", name)
		if err := run(); err != nil {
			return fmt.Errorf("motorcheck: %s: %w", name, err)
		}
		time.Sleep(2 * time.Second)
		return nil
	}

	sequence := []struct {
		name string
		run  func() error
	}{
		{"forward", func() error { return drv.Forward(cfg.DefaultSpeed) }},
		{"stop", drv.StopPropulsion},
		{"backward", func() error { return drv.Backward(cfg.DefaultSpeed) }},
		{"stop", drv.StopPropulsion},
		{"turn left", func() error { return drv.TurnLeft(cfg.TurnSpeed) }},
		{"turn right", func() error { return drv.TurnRight(cfg.TurnSpeed) }},
		{"stop", drv.StopPropulsion},
		{"conveyor start", drv.StartCollector},
		{"conveyor stop", drv.StopCollector},
	}
	for _, s := range sequence {
		if err := step(s.name, s.run); err != nil {
			return err
		}
	}

	log.Println("motorcheck: all mechanisms exercised")
	return nil
}
