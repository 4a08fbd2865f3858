// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/depth_logger/internal/app"
	"github.com/relabs-tech/depth_logger/internal/config"
	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/sensors"
)

func main() {
	configPath := flag.String("config", "depth_logger.conf", "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	if err := logging.Setup(cfg.LoggingOptions()); err != nil {
		logrus.Fatalf("failed to set up logging: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"sensor": cfg.SensorType,
		"record": cfg.RecordFile,
		"port":   cfg.WebServerPort,
	}).Info("starting depth logger")

	port, err := sensors.Open(cfg)
	if err != nil {
		logrus.Fatalf("sensor could not be initialized: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, port); err != nil {
		logrus.Fatalf("fatal: %v", err)
	}
	logrus.Info("depth logger stopped")
}
