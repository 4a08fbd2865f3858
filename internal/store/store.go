// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store holds the state shared between the sampling, recording,
// indicator and HTTP goroutines.
package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/depth_logger/internal/reading"
)

// SampleStore holds the single latest Reading.
// The value is replaced as a whole under the lock, so readers never see a
// partially written Reading.
type SampleStore struct {
	mu      sync.RWMutex
	latest  reading.Reading
	updated time.Time
}

// NewSampleStore returns a store holding the empty sentinel.
func NewSampleStore() *SampleStore {
	return &SampleStore{}
}

// Set replaces the stored reading.
func (s *SampleStore) Set(r reading.Reading) {
	s.mu.Lock()
	s.latest = r
	s.updated = time.Now()
	s.mu.Unlock()
}

// Get returns the most recently set reading, or reading.Empty.
func (s *SampleStore) Get() reading.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Updated returns the wall time of the last Set, zero if never set.
func (s *SampleStore) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// LoggingFlag is the switch that enables recording and LED blinking.
type LoggingFlag struct {
	on atomic.Bool
}

// NewLoggingFlag returns a flag with the given initial state.
func NewLoggingFlag(initial bool) *LoggingFlag {
	f := &LoggingFlag{}
	f.on.Store(initial)
	return f
}

// Enabled reports the current state.
func (f *LoggingFlag) Enabled() bool {
	return f.on.Load()
}

// Toggle flips the flag and returns the new state.
func (f *LoggingFlag) Toggle() bool {
	for {
		old := f.on.Load()
		if f.on.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
