// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-lpc/proslic/slic/internal/regs"
)

// Si3228xID is the chip identifier of the Si3228x family.
const Si3228xID = 0xCB

var (
	calibSeedInit  = []byte{0x00, 0x00, 0x01, 0x80}
	calibSeedDCDC  = []byte{0x00, 0xC0, 0x18, 0x80}
	calibSeedZsynt = []byte{0x00, 0x40, 0x00, 0x80}
)

// Si3228x drives a dual channel Si3228x ProSLIC.
type Si3228x struct {
	*Device
}

// NewSi3228x returns a Si3228x driver for the device behind tr.
func NewSi3228x(tr Transport, opts ...Option) *Si3228x {
	return &Si3228x{Device: newDevice("si3228x", tr, opts...)}
}

// Setup brings the device up: reset, probing, self-tests, firmware patch,
// configuration, calibration and DC-DC converter power-up.
func (dev *Si3228x) Setup() error {
	err := dev.setup()
	if err != nil {
		return fmt.Errorf("slic: could not setup %s: %w: %w", dev.name, ErrInit, err)
	}
	return nil
}

func (dev *Si3228x) setup() error {
	err := dev.Reset()
	if err != nil {
		return err
	}

	n, err := dev.Probe()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("slic: no channel found")
	}

	for ch := uint8(0); int(ch) < n; ch++ {
		_, err = dev.ChipInfo(ch)
		if err != nil {
			return err
		}
		err = dev.IdentifyChannel(ch)
		if err != nil {
			return err
		}
	}

	for ch := uint8(0); int(ch) < n; ch++ {
		err = dev.WriteRegister(ch, regs.MSTRSTAT, 0xFF)
		if err != nil {
			return err
		}
		err = dev.TestRAM(ch)
		if err != nil {
			return err
		}
	}

	if dev.cfg.blob == nil {
		dev.msg.Printf("%s: no firmware patch configured", dev.name)
	} else {
		err = dev.LoadBlob(*dev.cfg.blob)
		if err != nil {
			return err
		}
	}

	for ch := uint8(0); int(ch) < n; ch++ {
		err = dev.Configure(ch)
		if err != nil {
			return err
		}
	}

	err = dev.Calibrate(calibSeedInit)
	if err != nil {
		return err
	}

	for ch := uint8(0); int(ch) < n; ch++ {
		err = dev.enableDCDC(ch)
		if err != nil {
			// the line stays unpowered, the other one may still be usable.
			dev.msg.Printf("%s: %+v", dev.name, err)
		}
	}

	err = dev.Calibrate(calibSeedDCDC)
	if err != nil {
		return err
	}

	for ch := uint8(0); int(ch) < n; ch++ {
		for _, w := range []struct{ reg, val uint8 }{
			{regs.ENHANCE, 0x10},
			{regs.AUTO, 0x3F},
			{regs.ZCAL_EN, 0x04},
		} {
			err = dev.WriteRegister(ch, w.reg, w.val)
			if err != nil {
				return err
			}
		}
	}

	dev.debugf("%s: setup done", dev.name)
	return nil
}

// ChipInfo returns the chip identification of a channel.
func (dev *Si3228x) ChipInfo(ch uint8) (uint8, error) {
	id, err := dev.Device.ChipInfo(ch)
	if err != nil {
		return 0, err
	}
	_, err = dev.ReadRegister(ch, regs.ENHANCE)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (dev *Si3228x) writeRAMs(ch uint8, tbl []RAMValue) error {
	for _, kv := range tbl {
		err := dev.eng.WriteRAM(ch, kv.Addr, kv.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (dev *Si3228x) updateRegister(ch, reg uint8, f func(v uint8) uint8) error {
	return dev.eng.Exclusive(func(rw RegisterIO) error {
		v, err := rw.ReadRegister(ch, reg)
		if err != nil {
			return err
		}
		return rw.WriteRegister(ch, reg, f(v))
	})
}

// withLinefeedOpen runs f with the linefeed of ch forced open and restores
// the previous linefeed afterwards, even when f fails.
func (dev *Si3228x) withLinefeedOpen(ch uint8, f func() error) (err error) {
	lf, err := dev.ReadRegister(ch, regs.LINEFEED)
	if err != nil {
		return err
	}
	defer func() {
		e := dev.WriteRegister(ch, regs.LINEFEED, lf)
		if e != nil {
			err = errors.Join(err, e)
		}
	}()

	err = dev.WriteRegister(ch, regs.LINEFEED, 0)
	if err != nil {
		return err
	}
	return f()
}

// Configure applies the general purpose configuration of a channel.
func (dev *Si3228x) Configure(ch uint8) error {
	err := dev.configure(ch)
	if err != nil {
		return fmt.Errorf("slic: could not configure channel %d: %w", ch, err)
	}
	return nil
}

func (dev *Si3228x) configure(ch uint8) error {
	err := dev.enterUserMode(ch)
	if err != nil {
		return err
	}
	err = dev.WriteRegister(ch, regs.ENHANCE, 0x00)
	if err != nil {
		return err
	}
	err = dev.WriteRegister(ch, regs.AUTO, 0x2F)
	if err != nil {
		return err
	}

	err = dev.writeRAMs(ch, si3228xGeneral)
	if err != nil {
		return err
	}

	err = dev.updateRegister(ch, regs.OCON44, func(v uint8) uint8 {
		return v&0xF9 | 0x60
	})
	if err != nil {
		return err
	}

	err = dev.WriteRegister(ch, regs.PDN, 0x80)
	if err != nil {
		return err
	}

	err = dev.writeRAMs(ch, si3228xGeneral2)
	if err != nil {
		return err
	}

	const fixup = 0x627
	v, err := dev.ReadRAM(ch, fixup)
	if err != nil {
		return err
	}
	err = dev.WriteRAM(ch, fixup, v&0x0BFFFFFF)
	if err != nil {
		return err
	}

	return dev.writeRAMs(ch, si3228xGeneral3)
}

// enableDCDC powers up the DC-DC converter feeding the line of ch.
// Channels whose converter is not gated on are left untouched.
func (dev *Si3228x) enableDCDC(ch uint8) error {
	const (
		gate     = 0x100000
		shutdown = 0x300000
	)

	err := dev.enterUserMode(ch)
	if err != nil {
		return err
	}

	ctrl, err := dev.ReadRAM(ch, regs.RAM_DCDC_CTRL)
	if err != nil {
		return err
	}
	if ctrl&gate == 0 {
		dev.debugf("%s: DC-DC converter of channel %d not gated", dev.name, ch)
		return nil
	}

	err = dev.WriteRAM(ch, 0x60c, 0)
	if err != nil {
		return err
	}
	err = dev.WriteRegister(ch, regs.LINEFEED, 0)
	if err != nil {
		return err
	}
	enhance, err := dev.ReadRegister(ch, regs.ENHANCE)
	if err != nil {
		return err
	}
	err = dev.WriteRegister(ch, regs.ENHANCE, enhance&0x07)
	if err != nil {
		return err
	}

	err = dev.WriteRAM(ch, regs.RAM_DCDC_CTRL, 0x700000)
	if err != nil {
		return err
	}
	err = dev.WriteRAM(ch, 0x613, 0x100000)
	if err != nil {
		return err
	}
	dev.cfg.sleep(15 * time.Millisecond)

	err = dev.WriteRAM(ch, regs.RAM_DCDC_CTRL, 0x600000)
	if err != nil {
		return err
	}
	dev.cfg.sleep(50 * time.Millisecond)

	target, err := dev.readVBat(ch, regs.RAM_VBAT_TARGET)
	if err != nil {
		return err
	}
	vbat, err := dev.readVBat(ch, regs.RAM_MADC_VBAT)
	if err != nil {
		return err
	}
	if vbat < target/2 {
		_ = dev.WriteRAM(ch, regs.RAM_DCDC_CTRL, shutdown)
		return fmt.Errorf(
			"slic: short circuit on channel %d (vbat=0x%x, target=0x%x)",
			ch, vbat, target,
		)
	}

	err = dev.WriteRAM(ch, 0x60f, 0)
	if err != nil {
		return err
	}
	err = dev.WriteRAM(ch, regs.RAM_DCDC_CTRL, 0x400000)
	if err != nil {
		return err
	}
	err = dev.WriteRegister(ch, regs.ENHANCE, enhance)
	if err != nil {
		return err
	}
	dev.cfg.sleep(50 * time.Millisecond)

	const margin = 0x51EB82
	target, err = dev.readVBat(ch, regs.RAM_VBAT_TARGET)
	if err != nil {
		return err
	}
	max := 5 * dev.cfg.retries
	for i := 0; i < max; i++ {
		vbat, err = dev.readVBat(ch, regs.RAM_MADC_VBAT)
		if err != nil {
			return err
		}
		if vbat >= target-margin {
			return nil
		}
		dev.cfg.sleep(dev.cfg.calDelay)
	}

	_ = dev.WriteRAM(ch, regs.RAM_DCDC_CTRL, shutdown)
	return fmt.Errorf("slic: DC-DC power up of channel %d: %w", ch, ErrTimeout)
}

// readVBat reads a 29-bit two's complement RAM value.
func (dev *Si3228x) readVBat(ch uint8, addr uint16) (int32, error) {
	v, err := dev.ReadRAM(ch, addr)
	if err != nil {
		return 0, err
	}
	if v&0x10000000 != 0 {
		v |= 0xF0000000
	}
	return int32(v), nil
}

// ConfigureDCFeed loads the DC feed preset of a channel.
func (dev *Si3228x) ConfigureDCFeed(ch uint8) error {
	err := dev.withLinefeedOpen(ch, func() error {
		return dev.writeRAMs(ch, si3228xDCFeed)
	})
	if err != nil {
		return fmt.Errorf("slic: could not configure DC feed of channel %d: %w", ch, err)
	}
	return nil
}

// ConfigureRinger loads the ringing preset of a channel.
func (dev *Si3228x) ConfigureRinger(ch uint8) error {
	err := dev.configureRinger(ch)
	if err != nil {
		return fmt.Errorf("slic: could not configure ringer of channel %d: %w", ch, err)
	}
	return nil
}

func (dev *Si3228x) configureRinger(ch uint8) error {
	err := dev.writeRAMs(ch, si3228xRinger)
	if err != nil {
		return err
	}

	for _, w := range []struct{ reg, val uint8 }{
		{regs.RINGTALO, 0x80},
		{regs.RINGTAHI, 0x3E},
		{regs.RINGTILO, 0x00},
		{regs.RINGTIHI, 0x7D},
	} {
		err = dev.WriteRegister(ch, w.reg, w.val)
		if err != nil {
			return err
		}
	}

	err = dev.WriteRAM(ch, 0x398, 0x1893740)
	if err != nil {
		return err
	}
	err = dev.WriteRegister(ch, regs.RINGCON, 0x80)
	if err != nil {
		return err
	}
	err = dev.WriteRegister(ch, regs.USERSTAT, 0x00)
	if err != nil {
		return err
	}

	err = dev.writeRAMs(ch, si3228xRinger2)
	if err != nil {
		return err
	}

	err = dev.enterUserMode(ch)
	if err != nil {
		return err
	}
	return dev.writeRAMs(ch, si3228xRinger3)
}

// ConfigureZsynth loads the impedance synthesis preset of a channel and
// recalibrates it.
//
// Only TBR21 coefficients are known; other terminations use them too.
func (dev *Si3228x) ConfigureZsynth(ch uint8, lt LineTermination) error {
	if lt != TBR21 {
		dev.msg.Printf("%s: no %v impedance preset, using %v (ch=%d)", dev.name, lt, TBR21, ch)
	}
	err := dev.withLinefeedOpen(ch, func() error {
		err := dev.writeRAMs(ch, si3228xZsynthTBR21)
		if err != nil {
			return err
		}
		err = dev.WriteRegister(ch, regs.RA, 0xB4)
		if err != nil {
			return err
		}
		err = dev.writeRAMs(ch, si3228xZsynthTBR21Gain)
		if err != nil {
			return err
		}
		return dev.calibrate(calibSeedZsynt, []uint8{ch})
	})
	if err != nil {
		return fmt.Errorf("slic: could not configure impedance of channel %d: %w", ch, err)
	}
	return nil
}

// ConfigurePCM configures the audio path and the PCM format of a channel.
func (dev *Si3228x) ConfigurePCM(ch uint8, f PCMFormat) error {
	err := dev.configurePCM(ch, f)
	if err != nil {
		return fmt.Errorf("slic: could not configure PCM of channel %d: %w", ch, err)
	}
	return nil
}

func (dev *Si3228x) configurePCM(ch uint8, f PCMFormat) error {
	_, err := dev.ReadRegister(ch, regs.PMCON)
	if err != nil {
		return err
	}

	err = dev.updateRegister(ch, regs.DIGCON, func(v uint8) uint8 { return v &^ 0x0C })
	if err != nil {
		return err
	}

	err = dev.writeRAMs(ch, si3228xPCM)
	if err != nil {
		return err
	}

	err = dev.updateRegister(ch, regs.ENHANCE, func(v uint8) uint8 { return v &^ 0x01 })
	if err != nil {
		return err
	}

	err = dev.WriteRegister(ch, regs.PCMMODE, uint8(f)&0x03)
	if err != nil {
		return err
	}

	return dev.updateRegister(ch, regs.PCMTXHI, func(v uint8) uint8 { return v & 0x03 })
}

// EnableIRQ clears and enables the interrupts of a channel.
func (dev *Si3228x) EnableIRQ(ch uint8) error {
	for _, reg := range []uint8{regs.IRQ1, regs.IRQ2, regs.IRQ3, regs.IRQ4} {
		_, err := dev.ReadRegister(ch, reg)
		if err != nil {
			return fmt.Errorf("slic: could not clear interrupts of channel %d: %w", ch, err)
		}
	}
	return dev.setIRQEnable(ch, [4]uint8{0x50, 0x13, 0x07, 0x00})
}

// DisableIRQ disables all interrupts of a channel.
func (dev *Si3228x) DisableIRQ(ch uint8) error {
	return dev.setIRQEnable(ch, [4]uint8{})
}

func (dev *Si3228x) setIRQEnable(ch uint8, en [4]uint8) error {
	for i, v := range en {
		err := dev.WriteRegister(ch, regs.IRQEN1+uint8(i), v)
		if err != nil {
			return fmt.Errorf("slic: could not set interrupt enables of channel %d: %w", ch, err)
		}
	}
	return nil
}
