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
)

func main() {
	configPath := flag.String("config", "depth_logger.conf", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := logging.Setup(cfg.LoggingOptions()); err != nil {
		logrus.Fatalf("failed to set up logging: %v", err)
	}
	if cfg.MQTTBroker == "" {
		logrus.Fatal("MQTT_BROKER is not set")
	}

	logrus.Info("starting depth logger console (MQTT subscriber)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsoleMQTT(ctx, cfg, os.Stdout); err != nil {
		logrus.Fatalf("fatal: %v", err)
	}
}
