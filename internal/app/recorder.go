// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/metrics"
	"github.com/relabs-tech/depth_logger/internal/recordfile"
	"github.com/relabs-tech/depth_logger/internal/store"
)

// Recorder appends the latest reading to the record file while logging is on.
type Recorder struct {
	store    *store.SampleStore
	flag     *store.LoggingFlag
	file     *recordfile.File
	interval time.Duration
}

func NewRecorder(st *store.SampleStore, flag *store.LoggingFlag, file *recordfile.File, interval time.Duration) *Recorder {
	return &Recorder{store: st, flag: flag, file: file, interval: interval}
}

// Run ticks until ctx is done. Write failures are logged and the next tick
// tries again.
func (r *Recorder) Run(ctx context.Context) error {
	log := logging.For("recorder").WithField("file", r.file.Path())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			if err := r.file.Close(); err != nil {
				log.WithError(err).Warn("closing record file")
			}
			return nil
		case <-ticker.C:
		}

		if err := r.Tick(); err != nil {
			if !failing {
				log.WithError(err).Error("record write failed")
			}
			failing = true
			continue
		}
		if failing {
			log.Info("record writes recovered")
			failing = false
		}
	}
}

// Tick appends one row if logging is enabled. With logging off it does no I/O.
func (r *Recorder) Tick() error {
	if !r.flag.Enabled() {
		return nil
	}
	if err := r.file.Append(r.store.Get()); err != nil {
		metrics.RecordWriteErrors.Inc()
		return err
	}
	metrics.RowsWritten.Inc()
	return nil
}
