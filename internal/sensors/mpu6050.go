// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"

	"github.com/aquabotics/amlac/internal/orientation"
	"github.com/aquabotics/amlac/internal/sensing"
)

// MPU6050 reads the accelerometer of an MPU6050 over I2C and derives
// the platform tilt from gravity. Gyro and temperature channels are not
// used; a surface craft only needs pitch and roll.
type MPU6050 struct {
	dev i2c.Dev
}

// NewMPU6050 wakes the device and verifies its identity.
func NewMPU6050(bus i2c.Bus, addr uint16) (*MPU6050, error) {
	m := &MPU6050{dev: i2c.Dev{Addr: addr, Bus: bus}}

	var who [1]byte
	if err := m.dev.Tx([]byte{mpuRegWhoAmI}, who[:]); err != nil {
		return nil, fmt.Errorf("inertial: WHO_AM_I read: %w", err)
	}
	if who[0] != mpuWhoAmIValue {
		return nil, fmt.Errorf("inertial: unexpected WHO_AM_I 0x%02X, want 0x%02X", who[0], mpuWhoAmIValue)
	}

	// Clear the sleep bit, internal 8MHz clock.
	if err := m.dev.Tx([]byte{mpuRegPwrMgmt1, 0x00}, nil); err != nil {
		return nil, fmt.Errorf("inertial: wake: %w", err)
	}
	// ±2g full scale.
	if err := m.dev.Tx([]byte{mpuRegAccelCfg, 0x00}, nil); err != nil {
		return nil, fmt.Errorf("inertial: accel config: %w", err)
	}

	log.Printf("inertial: MPU6050 at 0x%02X ready", addr)
	return m, nil
}

// ReadTilt samples the accelerometer and returns pitch and roll.
func (m *MPU6050) ReadTilt() (sensing.Orientation, error) {
	var raw [6]byte
	if err := m.dev.Tx([]byte{mpuRegAccelXoutH}, raw[:]); err != nil {
		return sensing.Orientation{}, fmt.Errorf("inertial: accel read: %w", err)
	}

	ax := float64(int16(uint16(raw[0])<<8|uint16(raw[1]))) / mpuAccelScale
	ay := float64(int16(uint16(raw[2])<<8|uint16(raw[3]))) / mpuAccelScale
	az := float64(int16(uint16(raw[4])<<8|uint16(raw[5]))) / mpuAccelScale

	return orientation.TiltFromAccel(ax, ay, az), nil
}
