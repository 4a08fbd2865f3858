// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package reading

import (
	"math"
	"strconv"
	"time"
)

// TimestampLayout is the civil time format used in JSON and in the record file.
const TimestampLayout = "2006-01-02 15:04:05.000"

// Header is the first row of every record file.
var Header = []string{
	"Timestamp",
	"Pressure (mbar)",
	"Pressure (psi)",
	"Temperature (C)",
	"Temperature (F)",
	"Depth (m)",
}

// Reading is one timestamped set of derived sensor measurements.
// Values are rounded to 2 decimals when constructed with New and must not be
// mutated afterwards.
type Reading struct {
	Timestamp    string  `json:"timestamp"`
	PressureMbar float64 `json:"pressure_mbar"`
	PressurePSI  float64 `json:"pressure_psi"`
	TemperatureC float64 `json:"temperature_c"`
	TemperatureF float64 `json:"temperature_f"`
	DepthM       float64 `json:"depth_m"`
}

// Empty is the sentinel returned before the first successful sample.
var Empty = Reading{}

// Measurement holds unrounded values as delivered by a sensor.
type Measurement struct {
	PressureMbar float64
	PressurePSI  float64
	TemperatureC float64
	TemperatureF float64
	DepthM       float64
}

// New builds a Reading stamped with t, rounding every field with Round2.
func New(t time.Time, m Measurement) Reading {
	return Reading{
		Timestamp:    t.Format(TimestampLayout),
		PressureMbar: Round2(m.PressureMbar),
		PressurePSI:  Round2(m.PressurePSI),
		TemperatureC: Round2(m.TemperatureC),
		TemperatureF: Round2(m.TemperatureF),
		DepthM:       Round2(m.DepthM),
	}
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IsEmpty reports whether r is the empty sentinel.
func (r Reading) IsEmpty() bool {
	return r == Empty
}

// Record returns the CSV row for r, matching Header column order.
func (r Reading) Record() []string {
	return []string{
		r.Timestamp,
		formatFloat(r.PressureMbar),
		formatFloat(r.PressurePSI),
		formatFloat(r.TemperatureC),
		formatFloat(r.TemperatureF),
		formatFloat(r.DepthM),
	}
}

// Time parses the timestamp back into local time.
func (r Reading) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
