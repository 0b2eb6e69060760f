// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors aggregates the craft's perception hardware behind a
// single non-blocking Poll. Every source is optional: a sensor that
// failed to initialize or fails mid-mission degrades its own field of
// the snapshot and nothing else.
package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/gps"
	"github.com/aquabotics/amlac/internal/sensing"
)

// ColorSource samples ambient color.
type ColorSource interface {
	ReadColor() (sensing.RGB, error)
}

// RangeSource measures forward clearance in centimeters.
type RangeSource interface {
	MeasureCm() (float64, error)
}

// InertialSource reports platform tilt.
type InertialSource interface {
	ReadTilt() (sensing.Orientation, error)
}

// PositionSource hands out the most recent navigation fix, if any.
type PositionSource interface {
	LatestFix() (gps.Fix, bool)
}

// WeightSource weighs the collection bin.
type WeightSource interface {
	WeightKg() (float64, error)
}

// SwitchSource reads the bin-full float switch.
type SwitchSource interface {
	IsHigh() (bool, error)
}

// Hub fans one Poll out to every source and assembles a Snapshot.
// A nil source simply leaves its field unset.
type Hub struct {
	Color    ColorSource
	Range    RangeSource
	Inertial InertialSource
	Position PositionSource
	Weight   WeightSource
	BinFull  SwitchSource

	// RetryBackoff is the pause before the single retry granted to a
	// failed bus read. Zero disables the retry.
	RetryBackoff time.Duration

	// MaxFixAge bounds how old a navigation fix may be before it is
	// dropped from the snapshot.
	MaxFixAge time.Duration

	lastWeight *float64
}

// retry grants a bus read one second chance after a short pause.
// Transient I2C noise from motor switching is the common culprit.
func (h *Hub) retry(read func() error) error {
	err := read()
	if err == nil || h.RetryBackoff <= 0 {
		return err
	}
	time.Sleep(h.RetryBackoff)
	return read()
}

// Poll samples every source once and returns the combined snapshot.
// It never blocks on a slow source beyond that source's own timeout
// and never returns an error: failures are logged and surface as
// missing fields.
func (h *Hub) Poll() sensing.Snapshot {
	snap := sensing.Snapshot{Time: time.Now()}

	if h.Color != nil {
		var rgb sensing.RGB
		err := h.retry(func() error {
			var e error
			rgb, e = h.Color.ReadColor()
			return e
		})
		if err != nil {
			log.Printf("sensors: color: %v", err)
		} else {
			snap.Color = &rgb
		}
	}

	if h.Range != nil {
		if cm, err := h.Range.MeasureCm(); err != nil {
			log.Printf("sensors: ranging: %v", err)
		} else {
			snap.DistanceCm = &cm
		}
	}

	if h.Inertial != nil {
		var tilt sensing.Orientation
		err := h.retry(func() error {
			var e error
			tilt, e = h.Inertial.ReadTilt()
			return e
		})
		if err != nil {
			log.Printf("sensors: inertial: %v", err)
		} else {
			snap.Orientation = &tilt
		}
	}

	if h.Position != nil {
		if fix, ok := h.Position.LatestFix(); ok {
			if h.MaxFixAge <= 0 || time.Since(fix.Time) <= h.MaxFixAge {
				snap.GPS = &sensing.Position{Lat: fix.Latitude, Lon: fix.Longitude}
			}
		}
	}

	if h.Weight != nil {
		if kg, err := h.Weight.WeightKg(); err != nil {
			log.Printf("sensors: weight: %v", err)
			// Keep reporting the last good reading, flagged stale, so
			// the operator still sees an approximate load.
			if h.lastWeight != nil {
				w := *h.lastWeight
				snap.WeightKg = &w
				snap.WeightStale = true
			}
		} else {
			h.lastWeight = &kg
			w := kg
			snap.WeightKg = &w
		}
	}

	if h.BinFull != nil {
		if full, err := h.BinFull.IsHigh(); err != nil {
			log.Printf("sensors: float switch: %v", err)
		} else {
			snap.BinFull = full
		}
	}

	return snap
}

// Open brings up the hardware described by the configuration. A sensor
// that fails to initialize is logged and left out; the craft runs with
// whatever perception it has. Only a missing GPIO/I2C host is fatal.
func Open(cfg *config.Config) (*Hub, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("sensors: periph host init: %w", err)
	}

	hub := &Hub{
		RetryBackoff: time.Duration(cfg.I2CRetryBackoffMS) * time.Millisecond,
		MaxFixAge:    time.Duration(cfg.GPSMaxFixAgeMS) * time.Millisecond,
	}

	pin := func(name string) gpio.PinIO {
		p := gpioreg.ByName(name)
		if p == nil {
			log.Printf("sensors: pin %q not found", name)
		}
		return p
	}

	bus, err := i2creg.Open("")
	if err != nil {
		log.Printf("sensors: I2C bus unavailable, color and inertial disabled: %v", err)
	} else {
		if color, err := NewTCS34725(bus, cfg.TCS34725Addr); err != nil {
			log.Printf("sensors: color init failed: %v", err)
		} else {
			hub.Color = color
		}
		if imu, err := NewMPU6050(bus, cfg.MPU6050Addr); err != nil {
			log.Printf("sensors: inertial init failed: %v", err)
		} else {
			hub.Inertial = imu
		}
	}

	if trig, echo := pin(cfg.UltrasonicTrigPin), pin(cfg.UltrasonicEchoPin); trig != nil && echo != nil {
		us, err := NewUltrasonic(trig, echo,
			time.Duration(cfg.UltrasonicTimeoutMS)*time.Millisecond, cfg.UltrasonicMaxCm)
		if err != nil {
			log.Printf("sensors: ranging init failed: %v", err)
		} else {
			hub.Range = us
		}
	}

	if clk, data := pin(cfg.HX711SCKPin), pin(cfg.HX711DTPin); clk != nil && data != nil {
		lc, err := NewLoadCell(clk, data, cfg.HX711CalibrationFactor, cfg.HX711Samples)
		if err != nil {
			log.Printf("sensors: weight init failed: %v", err)
		} else {
			hub.Weight = lc
		}
	}

	if p := pin(cfg.FloatSwitchPin); p != nil {
		fs, err := NewFloatSwitch(p)
		if err != nil {
			log.Printf("sensors: float switch init failed: %v", err)
		} else {
			hub.BinFull = fs
		}
	}

	rcv, err := gps.Open(cfg.GPSSerialPort, uint(cfg.GPSBaudRate), gps.Options{
		MinQuality:    cfg.GPSMinFixQuality,
		MinSatellites: int64(cfg.GPSMinSatellites),
	})
	if err != nil {
		log.Printf("sensors: GPS init failed: %v", err)
	} else {
		hub.Position = rcv
	}

	return hub, nil
}
