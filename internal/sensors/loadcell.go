package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/hx711"
)

// LoadCell weighs the bin through an HX711 bridge amplifier. Each
// reading averages several samples; the calibration factor converts raw
// counts to grams and was determined with a known reference mass.
type LoadCell struct {
	dev     *hx711.Dev
	factor  float64 // counts per gram
	samples int
	offset  int64 // tare, in raw counts
}

// NewLoadCell wires the HX711 and tares the empty bin.
func NewLoadCell(clk gpio.PinOut, data gpio.PinIn, factor float64, samples int) (*LoadCell, error) {
	dev, err := hx711.New(clk, data)
	if err != nil {
		return nil, fmt.Errorf("weight: HX711 init: %w", err)
	}

	lc := &LoadCell{dev: dev, factor: factor, samples: samples}
	if err := lc.Tare(); err != nil {
		return nil, err
	}
	log.Printf("weight: HX711 ready, tare offset %d counts", lc.offset)
	return lc, nil
}

func (lc *LoadCell) average() (int64, error) {
	var sum int64
	for i := 0; i < lc.samples; i++ {
		v, err := lc.dev.ReadTimeout(time.Second)
		if err != nil {
			return 0, fmt.Errorf("weight: HX711 read: %w", err)
		}
		sum += int64(v)
	}
	return sum / int64(lc.samples), nil
}

// Tare records the current raw reading as the zero point.
func (lc *LoadCell) Tare() error {
	avg, err := lc.average()
	if err != nil {
		return err
	}
	lc.offset = avg
	return nil
}

// WeightKg returns the net bin weight in kilograms.
func (lc *LoadCell) WeightKg() (float64, error) {
	avg, err := lc.average()
	if err != nil {
		return 0, err
	}
	grams := float64(avg-lc.offset) / lc.factor
	return grams / 1000, nil
}
