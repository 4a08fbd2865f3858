// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/depth_logger/internal/config"
	"github.com/relabs-tech/depth_logger/internal/sensors"
)

// DumpRegisters initializes the MS5837 and TSYS01 on bus and prints their
// calibration memory followed by one conversion.
func DumpRegisters(bus i2c.Bus, cfg *config.Config, out io.Writer) error {
	ms, err := sensors.NewMS5837(bus, cfg.MS5837I2CAddr)
	if err != nil {
		return fmt.Errorf("MS5837 at 0x%02X: %w", cfg.MS5837I2CAddr, err)
	}
	fmt.Fprintf(out, "MS5837 @ 0x%02X (PROM CRC ok)\n", cfg.MS5837I2CAddr)
	for i, c := range ms.PROM() {
		fmt.Fprintf(out, "  C%d  0x%02X  0x%04X  %5d\n", i, 0xA0+2*i, c, c)
	}

	ts, err := sensors.NewTSYS01(bus, cfg.TSYS01I2CAddr)
	if err != nil {
		return fmt.Errorf("TSYS01 at 0x%02X: %w", cfg.TSYS01I2CAddr, err)
	}
	fmt.Fprintf(out, "TSYS01 @ 0x%02X\n", cfg.TSYS01I2CAddr)
	for i, k := range ts.Coefficients() {
		fmt.Fprintf(out, "  k%d  0x%02X  %5.0f\n", i, 0xAA-2*i, k)
	}

	mbar, msTemp, err := ms.Sense()
	if err != nil {
		return err
	}
	celsius, err := ts.Sense()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "P=%.2f mbar  T(MS5837)=%.2f C  T(TSYS01)=%.2f C  D=%.2f m\n",
		mbar, msTemp, celsius, sensors.Depth(mbar, cfg.FluidDensity))
	return nil
}
