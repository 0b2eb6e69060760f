package sensors

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Ultrasonic measures forward clearance with a JSN-SR04T waterproof
// ranger (HC-SR04 compatible trigger/echo protocol). Readings
// outside the sensor's trustworthy window are rejected rather than
// clamped, so a glitch never masquerades as a wall.
type Ultrasonic struct {
	trig    gpio.PinIO
	echo    gpio.PinIO
	timeout time.Duration
	maxCm   float64
}

// NewUltrasonic configures the trigger and echo pins.
func NewUltrasonic(trig, echo gpio.PinIO, timeout time.Duration, maxCm float64) (*Ultrasonic, error) {
	if err := trig.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("ranging: trigger pin: %w", err)
	}
	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("ranging: echo pin: %w", err)
	}
	return &Ultrasonic{trig: trig, echo: echo, timeout: timeout, maxCm: maxCm}, nil
}

// MeasureCm fires one ping and returns the distance in centimeters.
func (u *Ultrasonic) MeasureCm() (float64, error) {
	if err := u.trig.Out(gpio.High); err != nil {
		return 0, fmt.Errorf("ranging: trigger: %w", err)
	}
	time.Sleep(10 * time.Microsecond)
	if err := u.trig.Out(gpio.Low); err != nil {
		return 0, fmt.Errorf("ranging: trigger: %w", err)
	}

	if !u.echo.WaitForEdge(u.timeout) {
		return 0, fmt.Errorf("ranging: no echo start within %v", u.timeout)
	}
	start := time.Now()
	if !u.echo.WaitForEdge(u.timeout) {
		return 0, fmt.Errorf("ranging: echo did not end within %v", u.timeout)
	}
	elapsed := time.Since(start)

	// Speed of sound, out and back: 343 m/s / 2 = 17150 cm/s.
	cm := elapsed.Seconds() * 17150
	if cm < 2 || cm > u.maxCm {
		return 0, fmt.Errorf("ranging: %.1fcm outside valid window [2, %.0f]", cm, u.maxCm)
	}
	return cm, nil
}
