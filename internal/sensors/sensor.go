// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors provides the pressure/temperature sources the sampler polls.
package sensors

import (
	"github.com/relabs-tech/depth_logger/internal/reading"
)

// Port is a pressure/temperature source. Read either returns a complete
// measurement or an error; a failed Read has no side effects on the caller.
type Port interface {
	Read() (reading.Measurement, error)
	Close() error
}

const (
	// Standard atmosphere at sea level, Pa.
	surfacePressurePa = 101300.0
	gravity           = 9.80665
	psiPerMbar        = 0.014503773773

	// Fluid densities, kg/m³.
	DensityFreshwater = 997.0
	DensitySaltwater  = 1029.0
)

// MbarToPSI converts millibar to pounds per square inch.
func MbarToPSI(mbar float64) float64 {
	return mbar * psiPerMbar
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*9/5 + 32
}

// Depth returns metres of fluid column above the sensor for an absolute
// pressure in mbar, assuming surface pressure of one standard atmosphere.
func Depth(mbar, density float64) float64 {
	return (mbar*100 - surfacePressurePa) / (density * gravity)
}

// measurement derives all units from pressure and temperature.
func measurement(mbar, celsius, density float64) reading.Measurement {
	return reading.Measurement{
		PressureMbar: mbar,
		PressurePSI:  MbarToPSI(mbar),
		TemperatureC: celsius,
		TemperatureF: CToF(celsius),
		DepthM:       Depth(mbar, density),
	}
}
