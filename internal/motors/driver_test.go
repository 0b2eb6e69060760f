package motors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

type testPins struct {
	Pins
	leftIN1, leftIN2, leftEN    *gpiotest.Pin
	rightIN1, rightIN2, rightEN *gpiotest.Pin
	stepEN, stepDIR, stepPUL    *gpiotest.Pin
}

func newTestPins() *testPins {
	tp := &testPins{
		leftIN1:  &gpiotest.Pin{N: "GPIO12"},
		leftIN2:  &gpiotest.Pin{N: "GPIO13"},
		leftEN:   &gpiotest.Pin{N: "GPIO19"},
		rightIN1: &gpiotest.Pin{N: "GPIO16"},
		rightIN2: &gpiotest.Pin{N: "GPIO26"},
		rightEN:  &gpiotest.Pin{N: "GPIO20"},
		stepEN:   &gpiotest.Pin{N: "GPIO22"},
		stepDIR:  &gpiotest.Pin{N: "GPIO27"},
		stepPUL:  &gpiotest.Pin{N: "GPIO18"},
	}
	tp.Pins = Pins{
		LeftIN1: tp.leftIN1, LeftIN2: tp.leftIN2, LeftEN: tp.leftEN,
		RightIN1: tp.rightIN1, RightIN2: tp.rightIN2, RightEN: tp.rightEN,
		StepperEN: tp.stepEN, StepperDIR: tp.stepDIR, StepperPUL: tp.stepPUL,
	}
	return tp
}

func newTestDriver(t *testing.T) (*Driver, *testPins) {
	t.Helper()
	tp := newTestPins()
	d, err := New(tp.Pins, Options{PWMFrequency: 100 * physic.Hertz, StepRate: 1000})
	require.NoError(t, err)
	return d, tp
}

func level(p *gpiotest.Pin) gpio.Level {
	p.Lock()
	defer p.Unlock()
	return p.L
}

func duty(p *gpiotest.Pin) gpio.Duty {
	p.Lock()
	defer p.Unlock()
	return p.D
}

func TestNewParksEverythingStopped(t *testing.T) {
	d, tp := newTestDriver(t)

	left, right := d.Speeds()
	assert.Zero(t, left)
	assert.Zero(t, right)
	assert.False(t, d.CollectorRunning())
	assert.Equal(t, gpio.High, level(tp.stepEN), "stepper enable is active-low, must park high")
	assert.Equal(t, gpio.Duty(0), duty(tp.leftEN))
	assert.Equal(t, gpio.Duty(0), duty(tp.rightEN))
}

func TestNewRejectsMissingPin(t *testing.T) {
	tp := newTestPins()
	tp.Pins.RightEN = nil
	_, err := New(tp.Pins, Options{StepRate: 1000})
	require.Error(t, err)
}

func TestSetPropulsionDirections(t *testing.T) {
	d, tp := newTestDriver(t)

	require.NoError(t, d.Forward(80))
	assert.Equal(t, gpio.High, level(tp.leftIN1))
	assert.Equal(t, gpio.Low, level(tp.leftIN2))
	assert.Equal(t, gpio.High, level(tp.rightIN1))
	assert.Equal(t, gpio.Low, level(tp.rightIN2))
	assert.NotZero(t, duty(tp.leftEN))

	require.NoError(t, d.Backward(80))
	assert.Equal(t, gpio.Low, level(tp.leftIN1))
	assert.Equal(t, gpio.High, level(tp.leftIN2))
	assert.Equal(t, gpio.Low, level(tp.rightIN1))
	assert.Equal(t, gpio.High, level(tp.rightIN2))

	require.NoError(t, d.TurnRight(60))
	left, right := d.Speeds()
	assert.Equal(t, 60, left)
	assert.Equal(t, -60, right)
	assert.Equal(t, gpio.High, level(tp.leftIN1))
	assert.Equal(t, gpio.High, level(tp.rightIN2))
}

func TestSetPropulsionClampsSpeed(t *testing.T) {
	d, _ := newTestDriver(t)

	require.NoError(t, d.SetPropulsion(250, -250))
	left, right := d.Speeds()
	assert.Equal(t, 100, left)
	assert.Equal(t, -100, right)
}

func TestStopPropulsionIsIdempotent(t *testing.T) {
	d, tp := newTestDriver(t)

	require.NoError(t, d.Forward(70))
	require.NoError(t, d.StopPropulsion())
	require.NoError(t, d.StopPropulsion())

	left, right := d.Speeds()
	assert.Zero(t, left)
	assert.Zero(t, right)
	assert.Equal(t, gpio.Low, level(tp.leftIN1))
	assert.Equal(t, gpio.Low, level(tp.leftIN2))
	assert.Equal(t, gpio.Duty(0), duty(tp.leftEN))
}

func TestCollectorStartStop(t *testing.T) {
	d, tp := newTestDriver(t)

	require.NoError(t, d.StartCollector())
	assert.True(t, d.CollectorRunning())
	assert.Equal(t, gpio.Low, level(tp.stepEN), "enable line must go low while running")
	assert.Equal(t, gpio.High, level(tp.stepDIR))

	// Repeated start must not spawn a second pulse runner.
	require.NoError(t, d.StartCollector())

	require.NoError(t, d.StopCollector())
	assert.False(t, d.CollectorRunning())
	assert.Equal(t, gpio.High, level(tp.stepEN))
	assert.Equal(t, gpio.Low, level(tp.stepPUL))

	// Stopping an already stopped conveyor is a no-op.
	require.NoError(t, d.StopCollector())
}

func TestStopAllFromAnyState(t *testing.T) {
	d, tp := newTestDriver(t)

	require.NoError(t, d.Forward(90))
	require.NoError(t, d.StartCollector())

	d.StopAll()
	left, right := d.Speeds()
	assert.Zero(t, left)
	assert.Zero(t, right)
	assert.False(t, d.CollectorRunning())
	assert.Equal(t, gpio.High, level(tp.stepEN))

	// Must stay safe when everything is already stopped.
	d.StopAll()
	d.StopAll()
}
