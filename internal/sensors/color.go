package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"

	"github.com/aquabotics/amlac/internal/sensing"
)

// TCS34725 register map. Every access goes through the command register,
// so addresses below carry the command bit and auto-increment mode.
const (
	tcsCmd        = 0x80
	tcsCmdAutoInc = 0x20

	tcsRegEnable  = 0x00
	tcsRegATime   = 0x01
	tcsRegControl = 0x0F
	tcsRegID      = 0x12
	tcsRegCData   = 0x14 // clear, red, green, blue words follow

	tcsEnablePON = 0x01
	tcsEnableAEN = 0x02

	// 24ms integration, 4x gain. Enough for surface water in daylight.
	tcsATime24ms = 0xF6
	tcsGain4x    = 0x01
)

// TCS34725 samples ambient color over I2C. The clear channel normalizes
// the raw counts so readings are comparable across light levels.
type TCS34725 struct {
	dev i2c.Dev
}

// NewTCS34725 verifies the device ID and enables the RGBC engine.
func NewTCS34725(bus i2c.Bus, addr uint16) (*TCS34725, error) {
	s := &TCS34725{dev: i2c.Dev{Addr: addr, Bus: bus}}

	var id [1]byte
	if err := s.dev.Tx([]byte{tcsCmd | tcsRegID}, id[:]); err != nil {
		return nil, fmt.Errorf("color: ID read: %w", err)
	}
	// 0x44 = TCS34721/TCS34725, 0x4D = TCS34723/TCS34727.
	if id[0] != 0x44 && id[0] != 0x4D {
		return nil, fmt.Errorf("color: unexpected device ID 0x%02X", id[0])
	}

	if err := s.dev.Tx([]byte{tcsCmd | tcsRegATime, tcsATime24ms}, nil); err != nil {
		return nil, fmt.Errorf("color: set integration time: %w", err)
	}
	if err := s.dev.Tx([]byte{tcsCmd | tcsRegControl, tcsGain4x}, nil); err != nil {
		return nil, fmt.Errorf("color: set gain: %w", err)
	}

	// Power on, settle, then enable the RGBC engine.
	if err := s.dev.Tx([]byte{tcsCmd | tcsRegEnable, tcsEnablePON}, nil); err != nil {
		return nil, fmt.Errorf("color: power on: %w", err)
	}
	time.Sleep(3 * time.Millisecond)
	if err := s.dev.Tx([]byte{tcsCmd | tcsRegEnable, tcsEnablePON | tcsEnableAEN}, nil); err != nil {
		return nil, fmt.Errorf("color: enable RGBC: %w", err)
	}
	time.Sleep(30 * time.Millisecond)

	log.Printf("color: TCS34725 at 0x%02X ready (ID 0x%02X)", addr, id[0])
	return s, nil
}

// ReadColor returns the current color normalized to 8-bit channels.
func (s *TCS34725) ReadColor() (sensing.RGB, error) {
	var raw [8]byte
	if err := s.dev.Tx([]byte{tcsCmd | tcsCmdAutoInc | tcsRegCData}, raw[:]); err != nil {
		return sensing.RGB{}, fmt.Errorf("color: RGBC read: %w", err)
	}

	clear := uint16(raw[0]) | uint16(raw[1])<<8
	r := uint16(raw[2]) | uint16(raw[3])<<8
	g := uint16(raw[4]) | uint16(raw[5])<<8
	b := uint16(raw[6]) | uint16(raw[7])<<8

	if clear == 0 {
		// Total darkness; nothing to normalize against.
		return sensing.RGB{}, nil
	}

	norm := func(ch uint16) uint8 {
		v := uint32(ch) * 255 / uint32(clear)
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	return sensing.RGB{R: norm(r), G: norm(g), B: norm(b)}, nil
}
