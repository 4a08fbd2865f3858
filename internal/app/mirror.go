// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/depth_logger/internal/config"
	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/metrics"
	"github.com/relabs-tech/depth_logger/internal/reading"
	"github.com/relabs-tech/depth_logger/internal/store"
	"github.com/relabs-tech/depth_logger/internal/telemetry"
)

// Mirror forwards new readings to the telemetry sinks.
type Mirror struct {
	store    *store.SampleStore
	sinks    []telemetry.Sink
	interval time.Duration
	log      *logrus.Entry

	last reading.Reading
}

func NewMirror(st *store.SampleStore, sinks []telemetry.Sink, interval time.Duration) *Mirror {
	return &Mirror{store: st, sinks: sinks, interval: interval, log: logging.For("telemetry")}
}

// Run ticks until ctx is done and then closes the sinks.
func (m *Mirror) Run(ctx context.Context) error {
	defer func() {
		for _, s := range m.sinks {
			s.Close()
		}
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Tick publishes the latest reading unless it is empty or already sent.
// A failing sink does not keep the others from receiving it.
func (m *Mirror) Tick() {
	r := m.store.Get()
	if r.IsEmpty() || r == m.last {
		return
	}
	m.last = r

	for _, s := range m.sinks {
		if err := s.Publish(r); err != nil {
			metrics.TelemetryErrors.WithLabelValues(s.Name()).Inc()
			m.log.WithError(err).WithField("sink", s.Name()).Debug("publish failed")
		}
	}
}

// openSinks connects the configured sinks. Failures disable that sink only.
func openSinks(ctx context.Context, cfg *config.Config) []telemetry.Sink {
	log := logging.For("telemetry")
	var sinks []telemetry.Sink

	if cfg.MQTTBroker != "" {
		m, err := telemetry.DialMQTT(ctx, telemetry.MQTTOptions{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			Topic:    cfg.TopicReading,
		})
		if err != nil {
			log.WithError(err).Error("MQTT mirror disabled")
		} else {
			sinks = append(sinks, m)
		}
	}

	if cfg.InfluxURL != "" {
		sinks = append(sinks, telemetry.NewInflux(telemetry.InfluxOptions{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		}))
		log.WithField("url", cfg.InfluxURL).Info("InfluxDB mirror enabled")
	}
	return sinks
}
