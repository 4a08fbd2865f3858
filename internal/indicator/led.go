// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package indicator drives the logging LED.
package indicator

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Output is a binary indicator.
type Output interface {
	Out(on bool) error
}

// LED is an indicator on a GPIO output pin.
type LED struct {
	pin gpio.PinOut
}

// NewLED wraps pin. The LED starts off.
func NewLED(pin gpio.PinOut) (*LED, error) {
	l := &LED{pin: pin}
	if err := l.Out(false); err != nil {
		return nil, err
	}
	return l, nil
}

// OpenLED looks up the named pin through periph's registry.
func OpenLED(name string) (*LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("LED pin %q not found", name)
	}
	return NewLED(pin)
}

// Out implements Output.
func (l *LED) Out(on bool) error {
	if err := l.pin.Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("LED %s: %w", l.pin, err)
	}
	return nil
}

// Nop is an Output for setups without an LED.
type Nop struct{}

// Out implements Output.
func (Nop) Out(bool) error { return nil }
