// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/metrics"
	"github.com/relabs-tech/depth_logger/internal/reading"
	"github.com/relabs-tech/depth_logger/internal/sensors"
	"github.com/relabs-tech/depth_logger/internal/store"
)

// failureLogEvery limits warnings during a streak of failed reads.
const failureLogEvery = 50

// Sampler polls the sensor and publishes each successful reading.
type Sampler struct {
	port     sensors.Port
	store    *store.SampleStore
	interval time.Duration
	now      func() time.Time
	log      *logrus.Entry

	streak int
}

func NewSampler(port sensors.Port, st *store.SampleStore, interval time.Duration) *Sampler {
	return &Sampler{
		port:     port,
		store:    st,
		interval: interval,
		now:      time.Now,
		log:      logging.For("sampler"),
	}
}

// Run samples once immediately and then on every tick until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval).Info("sampling started")
	for {
		s.Sample()
		select {
		case <-ctx.Done():
			s.log.Info("sampling stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Sample performs one read. A failed read leaves the store untouched.
func (s *Sampler) Sample() bool {
	m, err := s.port.Read()
	if err != nil {
		metrics.SensorReads.WithLabelValues("error").Inc()
		s.streak++
		if s.streak == 1 || s.streak%failureLogEvery == 0 {
			s.log.WithError(err).WithField("consecutive", s.streak).Warn("sensor read failed")
		}
		return false
	}

	if s.streak > 0 {
		s.log.WithField("failures", s.streak).Info("sensor recovered")
		s.streak = 0
	}

	now := s.now()
	s.store.Set(reading.New(now, m))
	metrics.SensorReads.WithLabelValues("ok").Inc()
	metrics.LastSample.Set(float64(now.UnixNano()) / 1e9)
	return true
}
