// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motors drives the L298N paddle pair and the TB6600 conveyor
// stepper. Commands are idempotent and mutually exclusive per mechanism;
// StopAll is the unconditional safety exit and never returns an error.
// The driver does no timing of its own; run-for-N-seconds sequencing
// belongs to the control loop.
package motors

import (
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	"github.com/aquabotics/amlac/internal/config"
)

// Pins holds the resolved GPIO pins for both motor drivers.
type Pins struct {
	LeftIN1  gpio.PinIO
	LeftIN2  gpio.PinIO
	LeftEN   gpio.PinIO
	RightIN1 gpio.PinIO
	RightIN2 gpio.PinIO
	RightEN  gpio.PinIO

	StepperEN  gpio.PinIO
	StepperDIR gpio.PinIO
	StepperPUL gpio.PinIO
}

// Options configures PWM frequency and conveyor step rate.
type Options struct {
	PWMFrequency physic.Frequency
	StepRate     int // pulses per second
}

// Driver owns the actuator hardware.
type Driver struct {
	pins    Pins
	pwmFreq physic.Frequency
	half    time.Duration // half of one step pulse period

	mu          sync.Mutex
	leftSpeed   int
	rightSpeed  int
	collectorOn bool
	stopPulse   chan struct{}
	pulseDone   chan struct{}
}

// New initializes the driver and parks everything in the stopped state.
func New(pins Pins, opts Options) (*Driver, error) {
	for name, p := range map[string]gpio.PinIO{
		"left IN1": pins.LeftIN1, "left IN2": pins.LeftIN2, "left ENA": pins.LeftEN,
		"right IN3": pins.RightIN1, "right IN4": pins.RightIN2, "right ENB": pins.RightEN,
		"stepper ENA": pins.StepperEN, "stepper DIR": pins.StepperDIR, "stepper PUL": pins.StepperPUL,
	} {
		if p == nil {
			return nil, fmt.Errorf("motors: %s pin not set", name)
		}
	}
	if opts.StepRate <= 0 {
		return nil, fmt.Errorf("motors: step rate must be positive, got %d", opts.StepRate)
	}

	d := &Driver{
		pins:    pins,
		pwmFreq: opts.PWMFrequency,
		half:    time.Second / time.Duration(2*opts.StepRate),
	}

	for _, p := range []gpio.PinIO{pins.LeftIN1, pins.LeftIN2, pins.RightIN1, pins.RightIN2, pins.StepperPUL} {
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("motors: init %s: %w", p.Name(), err)
		}
	}
	// TB6600 enable is active-low: HIGH parks the stepper disabled.
	if err := pins.StepperEN.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("motors: init stepper enable: %w", err)
	}
	for _, p := range []gpio.PinIO{pins.LeftEN, pins.RightEN} {
		if err := p.PWM(0, d.pwmFreq); err != nil {
			return nil, fmt.Errorf("motors: init %s PWM: %w", p.Name(), err)
		}
	}

	return d, nil
}

// Open resolves the configured pin names and builds the driver.
func Open(cfg *config.Config) (*Driver, error) {
	lookup := func(name string) (gpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("motors: pin %q not found", name)
		}
		return p, nil
	}

	var pins Pins
	var err error
	for dst, name := range map[*gpio.PinIO]string{
		&pins.LeftIN1: cfg.Motor1IN1Pin, &pins.LeftIN2: cfg.Motor1IN2Pin, &pins.LeftEN: cfg.Motor1ENAPin,
		&pins.RightIN1: cfg.Motor2IN3Pin, &pins.RightIN2: cfg.Motor2IN4Pin, &pins.RightEN: cfg.Motor2ENBPin,
		&pins.StepperEN: cfg.StepperENAPin, &pins.StepperDIR: cfg.StepperDIRPin, &pins.StepperPUL: cfg.StepperPULPin,
	} {
		if *dst, err = lookup(name); err != nil {
			return nil, err
		}
	}

	return New(pins, Options{
		PWMFrequency: physic.Frequency(cfg.PWMFrequencyHz) * physic.Hertz,
		StepRate:     cfg.StepperRate,
	})
}

func clamp(speed int) int {
	if speed > 100 {
		return 100
	}
	if speed < -100 {
		return -100
	}
	return speed
}

// SetPropulsion sets both paddle speeds as signed percentages, negative
// meaning reverse. Re-issuing the current speeds is a no-op.
func (d *Driver) SetPropulsion(left, right int) error {
	left, right = clamp(left), clamp(right)

	d.mu.Lock()
	defer d.mu.Unlock()
	if left == d.leftSpeed && right == d.rightSpeed {
		return nil
	}

	if err := d.setSide(d.pins.LeftIN1, d.pins.LeftIN2, d.pins.LeftEN, left); err != nil {
		return fmt.Errorf("motors: left paddle: %w", err)
	}
	if err := d.setSide(d.pins.RightIN1, d.pins.RightIN2, d.pins.RightEN, right); err != nil {
		return fmt.Errorf("motors: right paddle: %w", err)
	}

	d.leftSpeed, d.rightSpeed = left, right
	return nil
}

func (d *Driver) setSide(in1, in2, en gpio.PinIO, speed int) error {
	var l1, l2 gpio.Level
	switch {
	case speed > 0:
		l1, l2 = gpio.High, gpio.Low
	case speed < 0:
		l1, l2 = gpio.Low, gpio.High
	}
	if err := in1.Out(l1); err != nil {
		return err
	}
	if err := in2.Out(l2); err != nil {
		return err
	}

	abs := speed
	if abs < 0 {
		abs = -abs
	}
	duty := gpio.Duty(int64(abs) * int64(gpio.DutyMax) / 100)
	return en.PWM(duty, d.pwmFreq)
}

// StopPropulsion stops both paddles.
func (d *Driver) StopPropulsion() error {
	return d.SetPropulsion(0, 0)
}

// Forward drives both paddles ahead at the given speed.
func (d *Driver) Forward(speed int) error { return d.SetPropulsion(speed, speed) }

// Backward drives both paddles astern at the given speed.
func (d *Driver) Backward(speed int) error { return d.SetPropulsion(-speed, -speed) }

// TurnLeft spins in place to port.
func (d *Driver) TurnLeft(speed int) error { return d.SetPropulsion(-speed, speed) }

// TurnRight spins in place to starboard.
func (d *Driver) TurnRight(speed int) error { return d.SetPropulsion(speed, -speed) }

// StartCollector enables the conveyor stepper and starts the pulse
// runner. Calling it while the conveyor is running is a no-op.
func (d *Driver) StartCollector() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.collectorOn {
		return nil
	}

	if err := d.pins.StepperDIR.Out(gpio.High); err != nil {
		return fmt.Errorf("motors: conveyor direction: %w", err)
	}
	if err := d.pins.StepperEN.Out(gpio.Low); err != nil {
		return fmt.Errorf("motors: conveyor enable: %w", err)
	}

	d.stopPulse = make(chan struct{})
	d.pulseDone = make(chan struct{})
	go d.runPulse(d.stopPulse, d.pulseDone)
	d.collectorOn = true
	return nil
}

func (d *Driver) runPulse(stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		if err := d.pins.StepperPUL.Out(gpio.High); err != nil {
			log.Printf("motors: conveyor pulse: %v", err)
			return
		}
		time.Sleep(d.half)
		if err := d.pins.StepperPUL.Out(gpio.Low); err != nil {
			log.Printf("motors: conveyor pulse: %v", err)
			return
		}
		time.Sleep(d.half)
	}
}

// StopCollector halts the pulse runner and disables the stepper.
// Calling it while the conveyor is stopped is a no-op.
func (d *Driver) StopCollector() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.collectorOn {
		return nil
	}

	close(d.stopPulse)
	<-d.pulseDone
	d.collectorOn = false

	if err := d.pins.StepperEN.Out(gpio.High); err != nil {
		return fmt.Errorf("motors: conveyor disable: %w", err)
	}
	// Best effort: leave the pulse line low.
	_ = d.pins.StepperPUL.Out(gpio.Low)
	return nil
}

// StopAll stops every mechanism. It is the unconditional safety exit
// and never returns an error; hardware absence is logged and otherwise
// ignored.
func (d *Driver) StopAll() {
	if err := d.StopPropulsion(); err != nil {
		log.Printf("motors: stop propulsion: %v", err)
	}
	if err := d.StopCollector(); err != nil {
		log.Printf("motors: stop conveyor: %v", err)
	}
}

// CollectorRunning reports whether the conveyor is active.
func (d *Driver) CollectorRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.collectorOn
}

// Speeds returns the current paddle speeds.
func (d *Driver) Speeds() (left, right int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leftSpeed, d.rightSpeed
}
