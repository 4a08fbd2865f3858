// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/depth_logger/internal/app"
	"github.com/relabs-tech/depth_logger/internal/config"
	"github.com/relabs-tech/depth_logger/internal/logging"
)

func main() {
	configPath := flag.String("config", "depth_logger.conf", "path to configuration file")
	flag.Parse()

	logrus.Info("starting MS5837/TSYS01 register dump")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := logging.Setup(cfg.LoggingOptions()); err != nil {
		logrus.Fatalf("failed to set up logging: %v", err)
	}

	if _, err := host.Init(); err != nil {
		logrus.Fatalf("failed to initialize periph: %v", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		logrus.Fatalf("failed to open I2C bus %q: %v", cfg.I2CBus, err)
	}
	defer bus.Close()

	if err := app.DumpRegisters(bus, cfg, os.Stdout); err != nil {
		logrus.Fatalf("fatal: %v", err)
	}
}
