// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/reading"
	"github.com/relabs-tech/depth_logger/internal/sensors"
)

// RunConsole prints readings straight from the sensor, without recording or
// serving them. Read errors are printed and polling continues.
func RunConsole(ctx context.Context, port sensors.Port, interval time.Duration, out io.Writer) error {
	log := logging.For("console")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m, err := port.Read()
			if err != nil {
				log.WithError(err).Warn("sensor read failed")
				continue
			}
			fmt.Fprintln(out, formatReading(reading.New(now, m)))
		}
	}
}
