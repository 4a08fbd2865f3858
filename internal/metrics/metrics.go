// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exposes the diagnostic counters of the logger.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "depth_logger"

var (
	SensorReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sensor_reads_total",
		Help:      "Sensor read attempts by result (ok, error).",
	}, []string{"result"})

	RowsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_rows_written_total",
		Help:      "Rows appended to the record file.",
	})

	RecordWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_write_errors_total",
		Help:      "Failed record file appends.",
	})

	LoggingEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "logging_enabled",
		Help:      "1 while readings are being recorded.",
	})

	LastSample = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_sample_timestamp_seconds",
		Help:      "Unix time of the last successful sensor read.",
	})

	TelemetryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_errors_total",
		Help:      "Telemetry mirror failures by sink.",
	}, []string{"sink"})
)

// SetLogging mirrors the logging flag into the gauge.
func SetLogging(on bool) {
	if on {
		LoggingEnabled.Set(1)
		return
	}
	LoggingEnabled.Set(0)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
