// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry mirrors readings to external systems.
package telemetry

import (
	"github.com/relabs-tech/depth_logger/internal/reading"
)

// Sink receives readings. Publish must not block for long; sinks that talk
// to the network either buffer or give up quickly.
type Sink interface {
	Name() string
	Publish(r reading.Reading) error
	Close()
}
