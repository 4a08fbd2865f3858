// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package app wires the sampling, recording, indicator, display, telemetry
// and HTTP loops together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/depth_logger/internal/config"
	"github.com/relabs-tech/depth_logger/internal/indicator"
	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/metrics"
	"github.com/relabs-tech/depth_logger/internal/recordfile"
	"github.com/relabs-tech/depth_logger/internal/sensors"
	"github.com/relabs-tech/depth_logger/internal/store"
)

const shutdownTimeout = 5 * time.Second

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// Run starts every loop and blocks until ctx is cancelled or a loop fails.
// It owns port and closes it before returning.
func Run(ctx context.Context, cfg *config.Config, port sensors.Port) error {
	log := logging.For("app")
	defer func() {
		if err := port.Close(); err != nil {
			log.WithError(err).Warn("closing sensor")
		}
	}()

	if err := os.MkdirAll(filepath.Dir(cfg.RecordFile), 0o755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	st := store.NewSampleStore()
	flag := store.NewLoggingFlag(cfg.LoggingOnStart)
	metrics.SetLogging(flag.Enabled())
	file := recordfile.New(cfg.RecordFile, cfg.RecordFsync)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return NewSampler(port, st, ms(cfg.SampleInterval)).Run(ctx)
	})
	g.Go(func() error {
		return NewRecorder(st, flag, file, ms(cfg.LogInterval)).Run(ctx)
	})

	blinker := &indicator.Blinker{
		LED:      openLED(cfg),
		Flag:     flag,
		On:       ms(cfg.LEDOnMS),
		Period:   ms(cfg.LEDPeriodMS),
		IdlePoll: ms(cfg.LEDIdlePollMS),
	}
	g.Go(func() error { return blinker.Run(ctx) })

	if cfg.MQTTBroker != "" || cfg.InfluxURL != "" {
		g.Go(func() error {
			sinks := openSinks(ctx, cfg)
			if len(sinks) == 0 {
				return nil
			}
			return NewMirror(st, sinks, ms(cfg.TelemetryInterval)).Run(ctx)
		})
	}

	if cfg.DisplayEnabled {
		oled, err := OpenDisplay(cfg)
		if err != nil {
			log.WithError(err).Error("status display disabled")
		} else {
			g.Go(func() error {
				defer oled.Close()
				return RunDisplay(ctx, oled, st, flag, ms(cfg.DisplayUpdateInterval))
			})
		}
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.WebServerPort),
		Handler:           NewServer(st, flag, file).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		log.Infof("web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	log.Info("all loops stopped")
	return err
}

// openLED falls back to a no-op output when the pin is unavailable.
func openLED(cfg *config.Config) indicator.Output {
	if cfg.LEDPin == "" || cfg.LEDPin == "none" {
		return indicator.Nop{}
	}
	led, err := indicator.OpenLED(cfg.LEDPin)
	if err != nil {
		logging.For("indicator").WithError(err).Error("LED disabled")
		return indicator.Nop{}
	}
	return led
}
