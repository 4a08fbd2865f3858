// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"

	"github.com/relabs-tech/depth_logger/internal/reading"
)

// BME280 is a bench backend: a BMP280/BME280 reports ambient pressure and
// temperature, so depth stays near zero but the whole pipeline can be
// exercised without the waterproof sensor pair.
type BME280 struct {
	dev     *bmxx80.Dev
	bus     i2c.BusCloser
	density float64
}

// NewBME280 initializes a BMx280 at addr. It takes ownership of bus.
func NewBME280(bus i2c.BusCloser, addr uint16, density float64) (*BME280, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("bmx280 init: %w", err)
	}
	return &BME280{dev: dev, bus: bus, density: density}, nil
}

// Read implements Port.
func (b *BME280) Read() (reading.Measurement, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return reading.Measurement{}, fmt.Errorf("bmx280 sense: %w", err)
	}

	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	return measurement(pressurePa/100.0, e.Temperature.Celsius(), b.density), nil // 1 mbar = 100 Pa
}

// Close implements Port.
func (b *BME280) Close() error {
	if err := b.dev.Halt(); err != nil {
		b.bus.Close()
		return fmt.Errorf("bmx280 halt: %w", err)
	}
	return b.bus.Close()
}
