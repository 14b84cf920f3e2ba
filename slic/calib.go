// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"fmt"

	"github.com/go-lpc/proslic/slic/internal/regs"
)

// Calibrate runs a calibration on every channel of the device.
//
// seed holds the 4 bytes written to CALR0..CALR3. Calibration is in
// progress while bit 7 of CALR3 is set on any channel.
func (dev *Device) Calibrate(seed []byte) error {
	chans := make([]uint8, dev.nchans)
	for i := range chans {
		chans[i] = uint8(i)
	}
	return dev.calibrate(seed, chans)
}

func (dev *Device) calibrate(seed []byte, chans []uint8) error {
	if len(seed) != 4 {
		return fmt.Errorf(
			"slic: calibration seed must be 4 bytes (got=%d): %w",
			len(seed), ErrInvalidCalibration,
		)
	}

	for _, ch := range chans {
		for i, v := range seed {
			err := dev.eng.WriteRegister(ch, regs.CALR0+uint8(i), v)
			if err != nil {
				return fmt.Errorf("slic: could not start calibration (ch=%d): %w", ch, err)
			}
		}
	}

	max := 5 * dev.cfg.retries
	for i := 0; i < max; i++ {
		busy := false
		for _, ch := range chans {
			v, err := dev.eng.ReadRegister(ch, regs.CALR3)
			if err != nil {
				return fmt.Errorf("slic: could not poll calibration (ch=%d): %w", ch, err)
			}
			if v&0x80 != 0 {
				busy = true
			}
		}
		if !busy {
			dev.debugf("%s: calibration % x done after %d poll(s)", dev.name, seed, i+1)
			return nil
		}
		dev.cfg.sleep(dev.cfg.calDelay)
	}

	return fmt.Errorf(
		"slic: calibration % x did not complete after %d polls: %w",
		seed, max, ErrTimeout,
	)
}
