// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// TSYS01 commands.
const (
	tsys01Reset    = 0x1E
	tsys01ADCRead  = 0x00
	tsys01Convert  = 0x48
	tsys01PROMRead = 0xA0
)

// TSYS01 is a TSYS01 precision temperature sensor on I²C.
type TSYS01 struct {
	dev   *i2c.Dev
	k     [5]float64 // k0..k4
	sleep func(time.Duration)
}

// NewTSYS01 resets the sensor and loads its coefficients.
func NewTSYS01(bus i2c.Bus, addr uint16) (*TSYS01, error) {
	s := &TSYS01{dev: &i2c.Dev{Addr: addr, Bus: bus}, sleep: time.Sleep}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TSYS01) init() error {
	if err := s.dev.Tx([]byte{tsys01Reset}, nil); err != nil {
		return fmt.Errorf("tsys01 reset: %w", err)
	}
	s.sleep(10 * time.Millisecond)

	// k4 lives at 0xA2 and k0 at 0xAA.
	buf := make([]byte, 2)
	for i := range s.k {
		reg := byte(tsys01PROMRead + 0x0A - 2*i)
		if err := s.dev.Tx([]byte{reg}, buf); err != nil {
			return fmt.Errorf("tsys01 read k%d: %w", i, err)
		}
		s.k[i] = float64(uint16(buf[0])<<8 | uint16(buf[1]))
	}
	return nil
}

// Sense converts and returns the temperature in °C.
func (s *TSYS01) Sense() (float64, error) {
	if err := s.dev.Tx([]byte{tsys01Convert}, nil); err != nil {
		return 0, fmt.Errorf("tsys01 convert: %w", err)
	}
	s.sleep(10 * time.Millisecond)

	buf := make([]byte, 3)
	if err := s.dev.Tx([]byte{tsys01ADCRead}, buf); err != nil {
		return 0, fmt.Errorf("tsys01 read ADC: %w", err)
	}
	raw := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
	return tsys01Temperature(s.k, raw), nil
}

// Coefficients returns k0..k4.
func (s *TSYS01) Coefficients() [5]float64 {
	return s.k
}

// Close has nothing to release; the bus is owned by the caller.
func (s *TSYS01) Close() error {
	return nil
}

func tsys01Temperature(k [5]float64, raw uint32) float64 {
	adc := float64(raw) / 256
	return -2*k[4]*1e-21*math.Pow(adc, 4) +
		4*k[3]*1e-16*math.Pow(adc, 3) +
		-2*k[2]*1e-11*math.Pow(adc, 2) +
		1*k[1]*1e-6*adc +
		-1.5*k[0]*1e-2
}
