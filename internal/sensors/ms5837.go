// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// MS5837-30BA commands.
const (
	ms5837Reset     = 0x1E
	ms5837ADCRead   = 0x00
	ms5837PROMRead  = 0xA0
	ms5837ConvertD1 = 0x40
	ms5837ConvertD2 = 0x50

	// OSR 8192, the highest resolution.
	ms5837OSR = 5
)

// MS5837 is a MS5837-30BA pressure sensor on I²C.
type MS5837 struct {
	dev   *i2c.Dev
	c     [7]uint16
	sleep func(time.Duration)
}

// NewMS5837 resets the sensor and loads its calibration PROM.
func NewMS5837(bus i2c.Bus, addr uint16) (*MS5837, error) {
	s := &MS5837{dev: &i2c.Dev{Addr: addr, Bus: bus}, sleep: time.Sleep}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MS5837) init() error {
	if err := s.dev.Tx([]byte{ms5837Reset}, nil); err != nil {
		return fmt.Errorf("ms5837 reset: %w", err)
	}
	s.sleep(10 * time.Millisecond)

	buf := make([]byte, 2)
	for i := range s.c {
		if err := s.dev.Tx([]byte{ms5837PROMRead + byte(2*i)}, buf); err != nil {
			return fmt.Errorf("ms5837 read PROM word %d: %w", i, err)
		}
		s.c[i] = uint16(buf[0])<<8 | uint16(buf[1])
	}

	want := byte(s.c[0] >> 12)
	if got := ms5837CRC4(s.c); got != want {
		return fmt.Errorf("ms5837 PROM CRC mismatch: got 0x%X, want 0x%X", got, want)
	}
	return nil
}

// Sense converts pressure and temperature and returns mbar and °C.
func (s *MS5837) Sense() (mbar, celsius float64, err error) {
	d1, err := s.convert(ms5837ConvertD1)
	if err != nil {
		return 0, 0, fmt.Errorf("ms5837 D1: %w", err)
	}
	d2, err := s.convert(ms5837ConvertD2)
	if err != nil {
		return 0, 0, fmt.Errorf("ms5837 D2: %w", err)
	}
	p, t := ms5837Compensate(s.c, int64(d1), int64(d2))
	return float64(p) / 10, float64(t) / 100, nil
}

func (s *MS5837) convert(cmd byte) (uint32, error) {
	if err := s.dev.Tx([]byte{cmd + 2*ms5837OSR}, nil); err != nil {
		return 0, err
	}
	// Max conversion time: 2.5µs * 2^(8+OSR), 20.48ms at OSR 8192.
	s.sleep(time.Duration(2500*(1<<(8+ms5837OSR))) * time.Nanosecond)

	buf := make([]byte, 3)
	if err := s.dev.Tx([]byte{ms5837ADCRead}, buf); err != nil {
		return 0, err
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

// PROM returns the factory calibration words C0..C6.
func (s *MS5837) PROM() [7]uint16 {
	return s.c
}

// Close has nothing to release; the bus is owned by the caller.
func (s *MS5837) Close() error {
	return nil
}

// ms5837Compensate applies first and second order compensation for the
// 30BA variant. It returns pressure in 0.1 mbar and temperature in 0.01 °C.
func ms5837Compensate(c [7]uint16, d1, d2 int64) (p, temp int64) {
	dT := d2 - int64(c[5])*256
	sens := int64(c[1])*32768 + (int64(c[3])*dT)/256
	off := int64(c[2])*65536 + (int64(c[4])*dT)/128
	temp = 2000 + dT*int64(c[6])/8388608

	var ti, offi, sensi int64
	if temp < 2000 {
		ti = 3 * dT * dT / 8589934592
		offi = 3 * (temp - 2000) * (temp - 2000) / 2
		sensi = 5 * (temp - 2000) * (temp - 2000) / 8
		if temp < -1500 {
			offi += 7 * (temp + 1500) * (temp + 1500)
			sensi += 4 * (temp + 1500) * (temp + 1500)
		}
	} else {
		ti = 2 * dT * dT / 137438953472
		offi = (temp - 2000) * (temp - 2000) / 16
	}

	off -= offi
	sens -= sensi
	temp -= ti
	p = (d1*sens/2097152 - off) / 8192
	return p, temp
}

// ms5837CRC4 computes the 4-bit PROM checksum stored in the top nibble of
// word 0.
func ms5837CRC4(c [7]uint16) byte {
	var n [8]uint16
	copy(n[:], c[:])
	n[0] &= 0x0FFF
	n[7] = 0

	var rem uint16
	for i := 0; i < 16; i++ {
		if i%2 == 1 {
			rem ^= n[i>>1] & 0x00FF
		} else {
			rem ^= n[i>>1] >> 8
		}
		for bit := 8; bit > 0; bit-- {
			if rem&0x8000 != 0 {
				rem = rem<<1 ^ 0x3000
			} else {
				rem <<= 1
			}
		}
	}
	return byte(rem>>12) & 0xF
}
