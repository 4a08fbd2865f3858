// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/depth_logger/internal/config"
	"github.com/relabs-tech/depth_logger/internal/logging"
)

// Open initializes the backend selected by cfg.SensorType. An error here is
// a startup failure.
func Open(cfg *config.Config) (Port, error) {
	log := logging.For("sensors")

	if cfg.SensorType == config.SensorSimulation {
		log.Info("using simulated sensor")
		return NewSimulation(cfg.FluidDensity), nil
	}

	// Initialize periph host
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}

	switch cfg.SensorType {
	case config.SensorBME280:
		dev, err := NewBME280(bus, cfg.BME280I2CAddr, cfg.FluidDensity)
		if err != nil {
			bus.Close()
			return nil, err
		}
		log.WithField("addr", fmt.Sprintf("0x%02X", cfg.BME280I2CAddr)).Info("BMx280 initialized")
		return dev, nil
	default:
		pair, err := NewPair(bus, cfg.MS5837I2CAddr, cfg.TSYS01I2CAddr, cfg.FluidDensity)
		if err != nil {
			bus.Close()
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"pressure_addr": fmt.Sprintf("0x%02X", cfg.MS5837I2CAddr),
			"temp_addr":     fmt.Sprintf("0x%02X", cfg.TSYS01I2CAddr),
			"density":       cfg.FluidDensity,
		}).Info("MS5837/TSYS01 initialized")
		return pair, nil
	}
}
