// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/metrics"
	"github.com/relabs-tech/depth_logger/internal/reading"
)

const measurementName = "reading"

// InfluxOptions describes the InfluxDB v2 target.
type InfluxOptions struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Influx writes readings as points through the non-blocking write API.
// Write errors arrive asynchronously and are logged and counted.
type Influx struct {
	client influxdb2.Client
	write  api.WriteAPI
}

// NewInflux creates the client. No connection is made until the first flush.
func NewInflux(opts InfluxOptions) *Influx {
	o := influxdb2.DefaultOptions().
		SetBatchSize(20).
		SetFlushInterval(1000)
	client := influxdb2.NewClientWithOptions(opts.URL, opts.Token, o)
	i := newInflux(client.WriteAPI(opts.Org, opts.Bucket))
	i.client = client
	return i
}

func newInflux(w api.WriteAPI) *Influx {
	i := &Influx{write: w}
	log := logging.For("telemetry").WithField("sink", "influx")
	go func() {
		for err := range w.Errors() {
			if err != nil {
				metrics.TelemetryErrors.WithLabelValues("influx").Inc()
				log.WithError(err).Warn("influx write error")
			}
		}
	}()
	return i
}

// Name implements Sink.
func (i *Influx) Name() string { return "influx" }

// Publish implements Sink.
func (i *Influx) Publish(r reading.Reading) error {
	ts, err := r.Time()
	if err != nil {
		return fmt.Errorf("reading timestamp: %w", err)
	}
	p := influxdb2.NewPoint(measurementName, nil, map[string]any{
		"pressure_mbar": r.PressureMbar,
		"pressure_psi":  r.PressurePSI,
		"temperature_c": r.TemperatureC,
		"temperature_f": r.TemperatureF,
		"depth_m":       r.DepthM,
	}, ts)
	i.write.WritePoint(p)
	return nil
}

// Close flushes buffered points and releases the client.
func (i *Influx) Close() {
	i.write.Flush()
	if i.client != nil {
		i.client.Close()
	}
}
