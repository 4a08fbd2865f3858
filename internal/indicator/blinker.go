// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"context"
	"time"

	"github.com/relabs-tech/depth_logger/internal/logging"
)

// Flag is the state the blinker follows.
type Flag interface {
	Enabled() bool
}

// Blinker blinks an Output while a flag is set and holds it off otherwise.
//
// The flag is sampled once per cycle, so a toggle shows up after at most one
// blink period (or one idle poll).
type Blinker struct {
	LED      Output
	Flag     Flag
	On       time.Duration // lit part of a blink cycle
	Period   time.Duration // whole blink cycle
	IdlePoll time.Duration // re-check interval while idle
}

// Run loops until ctx is done, then leaves the output off.
func (b *Blinker) Run(ctx context.Context) error {
	log := logging.For("indicator")
	defer func() {
		if err := b.LED.Out(false); err != nil {
			log.WithError(err).Warn("failed to switch LED off")
		}
	}()

	lit := false
	set := func(on bool) {
		if err := b.LED.Out(on); err != nil {
			log.WithError(err).Warn("LED output failed")
			return
		}
		lit = on
	}

	for {
		if b.Flag.Enabled() {
			set(true)
			if !sleep(ctx, b.On) {
				return nil
			}
			set(false)
			if !sleep(ctx, b.Period-b.On) {
				return nil
			}
			continue
		}

		if lit {
			set(false)
		}
		if !sleep(ctx, b.IdlePoll) {
			return nil
		}
	}
}

// sleep waits for d or ctx, reporting false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
