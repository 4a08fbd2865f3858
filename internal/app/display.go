// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/depth_logger/internal/config"
	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/reading"
	"github.com/relabs-tech/depth_logger/internal/store"
)

const (
	displayWidth  = 128
	displayHeight = 64

	// The ssd1306 driver always talks to this address.
	displayI2CAddr = 0x3C
)

// Screen is the part of an SSD1306 the status display draws on.
type Screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// OLED is an SSD1306 together with the bus it was opened on.
type OLED struct {
	*ssd1306.Dev
	bus i2c.BusCloser
}

// Close blanks the panel and releases the bus.
func (o *OLED) Close() error {
	if err := o.Halt(); err != nil {
		o.bus.Close()
		return err
	}
	return o.bus.Close()
}

// OpenDisplay opens the SSD1306 on cfg's bus with its own bus handle.
func OpenDisplay(cfg *config.Config) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	logging.For("display").Infof("display initialized at 0x%02X", displayI2CAddr)
	return &OLED{Dev: dev, bus: bus}, nil
}

// RunDisplay redraws the status screen every interval until ctx is done.
// Draw errors are logged and the next frame is tried anyway.
func RunDisplay(ctx context.Context, screen Screen, st *store.SampleStore, flag *store.LoggingFlag, interval time.Duration) error {
	log := logging.For("display")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failing := false
	for {
		img := renderStatus(st.Get(), flag.Enabled())
		if err := screen.Draw(screen.Bounds(), img, image.Point{}); err != nil {
			if !failing {
				log.WithError(err).Warn("error updating display")
			}
			failing = true
		} else {
			failing = false
		}

		select {
		case <-ctx.Done():
			if err := screen.Halt(); err != nil {
				log.WithError(err).Warn("error halting display")
			}
			return nil
		case <-ticker.C:
		}
	}
}

// renderStatus draws one frame: depth, pressure, temperature and the
// recording marker.
func renderStatus(r reading.Reading, recording bool) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	marker := "IDLE"
	if recording {
		marker = "REC"
	}
	drawer.Dot = fixed.P(displayWidth-7*len(marker), 13)
	drawer.DrawString(marker)

	if r.IsEmpty() {
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawString("Waiting...")
		return img
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawString(fmt.Sprintf("D:%6.2fm", r.DepthM))

	drawer.Dot = fixed.P(0, 30)
	drawer.DrawString(fmt.Sprintf("P:%8.2f mbar", r.PressureMbar))

	drawer.Dot = fixed.P(0, 47)
	drawer.DrawString(fmt.Sprintf("T:%6.2f C", r.TemperatureC))

	drawer.Dot = fixed.P(0, 62)
	if len(r.Timestamp) >= 19 {
		drawer.DrawString(r.Timestamp[11:19])
	}
	return img
}
