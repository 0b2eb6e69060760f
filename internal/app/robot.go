// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package app wires configuration, hardware and the control loop into
// runnable programs. Each Run* function backs one binary under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/host/v3"

	"github.com/aquabotics/amlac/internal/classifier"
	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/control"
	"github.com/aquabotics/amlac/internal/display"
	"github.com/aquabotics/amlac/internal/logbook"
	"github.com/aquabotics/amlac/internal/motors"
	"github.com/aquabotics/amlac/internal/sensors"
	"github.com/aquabotics/amlac/internal/telemetry"
	"github.com/aquabotics/amlac/internal/vision"
)

// RunRobot assembles the full controller and runs the mission until
// SIGINT or SIGTERM.
func RunRobot() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("robot: periph host init: %w", err)
	}

	lb, err := logbook.Open(cfg.LogFilePath)
	if err != nil {
		return err
	}
	defer lb.Close()

	var renderer display.Renderer
	if cfg.DisplayMode == "oled" {
		oled, err := display.NewOLED()
		if err != nil {
			log.Printf("robot: OLED unavailable, using console display: %v", err)
			renderer = display.NewConsole()
		} else {
			renderer = oled
		}
	} else {
		renderer = display.NewConsole()
	}
	screen := display.NewScreen(renderer, time.Duration(cfg.DisplayAlertDwellMS)*time.Millisecond)

	hub, err := sensors.Open(cfg)
	if err != nil {
		return err
	}

	drv, err := motors.Open(cfg)
	if err != nil {
		return fmt.Errorf("robot: actuators: %w", err)
	}
	defer drv.StopAll()

	var cls classifier.Classifier
	if cfg.ClassifierURL != "" {
		cls = classifier.NewHTTP(cfg.ClassifierURL, time.Duration(cfg.ClassifierTimeoutMS)*time.Millisecond)
		log.Printf("robot: classifier endpoint %s (timeout %dms)", cfg.ClassifierURL, cfg.ClassifierTimeoutMS)
	} else {
		cls = classifier.NewMock(classifier.Verdict{})
		log.Println("robot: no classifier endpoint configured, detections disabled")
	}

	var frames vision.Source
	if cfg.FrameSourceDir != "" {
		frames, err = vision.NewDirSource(cfg.FrameSourceDir)
		if err != nil {
			return err
		}
		log.Printf("robot: replaying frames from %s", cfg.FrameSourceDir)
	} else {
		frames = vision.NewStaticSource(color.RGBA{R: 30, G: 90, B: 110, A: 255}, 640, 480)
	}

	pub, err := telemetry.Connect(cfg)
	if err != nil {
		// Telemetry is best-effort; the mission runs without it.
		log.Printf("robot: telemetry unavailable: %v", err)
		pub = nil
	}
	defer pub.Close()

	loop := control.New(control.ParamsFromConfig(cfg), control.Deps{
		Frames:     frames,
		Classifier: cls,
		Sensors:    hub,
		Motors:     drv,
		Screen:     screen,
		Recorder:   lb,
		Telemetry:  pub,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := lb.Note("INFO", "mission start"); err != nil {
		log.Printf("robot: logbook note: %v", err)
	}

	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Println("robot: shutdown requested, motors stopped")
		if nerr := lb.Note("INFO", "mission end"); nerr != nil {
			log.Printf("robot: logbook note: %v", nerr)
		}
		return nil
	}
	return err
}
