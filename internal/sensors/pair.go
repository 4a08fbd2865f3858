// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/depth_logger/internal/reading"
)

// pressureSensor and temperatureSensor are the two halves of a Pair.
type pressureSensor interface {
	Sense() (mbar, celsius float64, err error)
}

type temperatureSensor interface {
	Sense() (float64, error)
}

// Pair combines the MS5837 pressure reading with the TSYS01 temperature.
// Both must succeed for a Read to succeed.
type Pair struct {
	pressure    pressureSensor
	temperature temperatureSensor
	density     float64
	bus         i2c.BusCloser
}

// NewPair initializes both sensors on bus. The Pair takes ownership of bus
// and closes it on Close.
func NewPair(bus i2c.BusCloser, pressureAddr, tempAddr uint16, density float64) (*Pair, error) {
	ms, err := NewMS5837(bus, pressureAddr)
	if err != nil {
		return nil, fmt.Errorf("pressure sensor could not be initialized: %w", err)
	}
	ts, err := NewTSYS01(bus, tempAddr)
	if err != nil {
		return nil, fmt.Errorf("temperature sensor could not be initialized: %w", err)
	}
	return &Pair{pressure: ms, temperature: ts, density: density, bus: bus}, nil
}

// Read implements Port.
func (p *Pair) Read() (reading.Measurement, error) {
	mbar, _, err := p.pressure.Sense()
	if err != nil {
		return reading.Measurement{}, err
	}
	celsius, err := p.temperature.Sense()
	if err != nil {
		return reading.Measurement{}, err
	}
	return measurement(mbar, celsius, p.density), nil
}

// Close implements Port.
func (p *Pair) Close() error {
	if p.bus == nil {
		return nil
	}
	return p.bus.Close()
}
