// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// OLED renders the two status lines on the onboard SSD1306.
type OLED struct {
	dev *ssd1306.Dev
}

// NewOLED opens the I2C bus and initializes the display.
func NewOLED() (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: periph host init: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("display: open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("display: SSD1306 init: %w", err)
	}

	o := &OLED{dev: dev}
	if err := o.Render([2]string{"AMLAC", "Starting..."}); err != nil {
		return nil, err
	}
	return o, nil
}

// Render draws both lines with the fixed 7x13 font.
func (o *OLED) Render(lines [2]string) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := range img.Pix {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte(lines[0]))

	drawer.Dot = fixed.P(0, 45)
	drawer.DrawBytes([]byte(lines[1]))

	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}
