// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/relabs-tech/depth_logger/internal/reading"
)

// Simulation generates a slow synthetic dive: depth follows a sine between
// the surface and maxDepth, water cools with depth, and a little noise is
// added to both channels.
type Simulation struct {
	mu       sync.Mutex
	start    time.Time
	density  float64
	maxDepth float64
	period   time.Duration
	rnd      *rand.Rand
}

// NewSimulation creates a simulated source.
func NewSimulation(density float64) *Simulation {
	return &Simulation{
		start:    time.Now(),
		density:  density,
		maxDepth: 12,
		period:   4 * time.Minute,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Read implements Port.
func (s *Simulation) Read() (reading.Measurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase := 2 * math.Pi * time.Since(s.start).Seconds() / s.period.Seconds()
	depth := s.maxDepth * (1 - math.Cos(phase)) / 2

	mbar := (surfacePressurePa+depth*s.density*gravity)/100 + s.rnd.NormFloat64()*0.2
	celsius := 22 - 0.6*depth + s.rnd.NormFloat64()*0.02
	return measurement(mbar, celsius, s.density), nil
}

// Close implements Port.
func (s *Simulation) Close() error { return nil }
