// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/proslic/slic/internal/regs"
)

// Device holds the chip-independent part of a ProSLIC device: the protocol
// engine, the probed channels and the operations common to all variants.
type Device struct {
	msg  *log.Logger
	name string
	eng  *Engine
	cfg  config

	nchans int
}

func newDevice(name string, tr Transport, opts ...Option) *Device {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Device{
		msg:  cfg.msg,
		name: name,
		eng:  newEngine(tr, cfg),
		cfg:  cfg,
	}
}

// Name returns the name of the chip variant.
func (dev *Device) Name() string { return dev.name }

// NumChannels returns the number of probed channels.
func (dev *Device) NumChannels() int { return dev.nchans }

// Engine returns the protocol engine of the device.
func (dev *Device) Engine() *Engine { return dev.eng }

func (dev *Device) debugf(format string, args ...any) {
	if !dev.cfg.verbose {
		return
	}
	dev.msg.Printf(format, args...)
}

func (dev *Device) ReadRegister(ch, reg uint8) (uint8, error) {
	return dev.eng.ReadRegister(ch, reg)
}

func (dev *Device) WriteRegister(ch, reg, v uint8) error {
	return dev.eng.WriteRegister(ch, reg, v)
}

func (dev *Device) ReadRAM(ch uint8, addr uint16) (uint32, error) {
	return dev.eng.ReadRAM(ch, addr)
}

func (dev *Device) WriteRAM(ch uint8, addr uint16, v uint32) error {
	return dev.eng.WriteRAM(ch, addr, v)
}

func (dev *Device) checkChannel(ch uint8) error {
	if int(ch) >= dev.nchans {
		return fmt.Errorf("slic: channel %d (nchans=%d): %w", ch, dev.nchans, ErrNoChannel)
	}
	return nil
}

// Reset performs a hardware reset of the device.
func (dev *Device) Reset() error {
	dev.debugf("reset %s", dev.name)
	return dev.eng.Reset()
}

// Probe counts the populated channels of the device.
// Channels are numbered from 0 and the first one whose ID register reads
// 0xff ends the scan.
func (dev *Device) Probe() (int, error) {
	dev.nchans = 0
	for ch := uint8(0); ch < MaxChannels; ch++ {
		id, err := dev.eng.ReadRegister(ch, regs.ID)
		if err != nil {
			return 0, fmt.Errorf("slic: could not probe channel %d: %w", ch, err)
		}
		if id == absentID {
			break
		}
		dev.nchans++
	}
	dev.debugf("%s: found %d channel(s)", dev.name, dev.nchans)
	return dev.nchans, nil
}

// ChipInfo returns the chip identification of a channel.
func (dev *Device) ChipInfo(ch uint8) (uint8, error) {
	return dev.eng.ReadRegister(ch, regs.ID)
}

// IdentifyChannel checks register write-back on a channel.
func (dev *Device) IdentifyChannel(ch uint8) error {
	const magic = 0x13
	err := dev.eng.WriteRegister(ch, regs.PCMTXHI, magic)
	if err != nil {
		return fmt.Errorf("slic: could not identify channel %d: %w", ch, err)
	}
	dev.cfg.sleep(10 * time.Millisecond)
	v, err := dev.eng.ReadRegister(ch, regs.PCMTXHI)
	if err != nil {
		return fmt.Errorf("slic: could not identify channel %d: %w", ch, err)
	}
	if v != magic {
		return fmt.Errorf(
			"slic: channel %d identification mismatch (got=0x%02x, want=0x%02x)",
			ch, v, magic,
		)
	}
	return nil
}

// TestRAM checks RAM write-back on a channel.
func (dev *Device) TestRAM(ch uint8) error {
	const magic = 0x12345678
	err := dev.eng.WriteRAM(ch, regs.RAM_TEST_IO, magic)
	if err != nil {
		return fmt.Errorf("slic: could not test RAM of channel %d: %w", ch, err)
	}
	v, err := dev.eng.ReadRAM(ch, regs.RAM_TEST_IO)
	if err != nil {
		return fmt.Errorf("slic: could not test RAM of channel %d: %w", ch, err)
	}
	if v != magic {
		return fmt.Errorf(
			"slic: channel %d RAM test mismatch (got=0x%08x, want=0x%08x)",
			ch, v, magic,
		)
	}
	return nil
}

// TestRegisters checks register write-back on a channel.
func (dev *Device) TestRegisters(ch uint8) error {
	const magic = 0x5a
	err := dev.eng.WriteRegister(ch, regs.PCMTXLO, magic)
	if err != nil {
		return fmt.Errorf("slic: could not test registers of channel %d: %w", ch, err)
	}
	v, err := dev.eng.ReadRegister(ch, regs.PCMTXLO)
	if err != nil {
		return fmt.Errorf("slic: could not test registers of channel %d: %w", ch, err)
	}
	if v != magic {
		return fmt.Errorf(
			"slic: channel %d register test mismatch (got=0x%02x, want=0x%02x)",
			ch, v, magic,
		)
	}
	return nil
}

// enterUserMode unlocks the protected registers of a channel.
func (dev *Device) enterUserMode(ch uint8) error {
	v, err := dev.eng.ReadRegister(ch, regs.USERMODE)
	if err != nil {
		return fmt.Errorf("slic: could not enter user mode: %w", err)
	}
	if v&0x01 != 0 {
		return nil
	}
	for _, v := range []uint8{0x02, 0x08, 0x0E, 0x00} {
		err = dev.eng.WriteRegister(ch, regs.USERMODE, v)
		if err != nil {
			return fmt.Errorf("slic: could not enter user mode: %w", err)
		}
	}
	return nil
}

// SetPCMTimeslot assigns the transmit and receive PCM timeslot of a channel.
// Each slot is 8 bits wide and offset by one PCLK cycle.
func (dev *Device) SetPCMTimeslot(ch uint8, slot int) error {
	if slot < 0 || slot > 63 {
		return fmt.Errorf("slic: invalid PCM timeslot %d", slot)
	}
	delay := uint16(slot*16 + 1)
	for _, pair := range [][2]uint8{
		{regs.PCMTXLO, regs.PCMTXHI},
		{regs.PCMRXLO, regs.PCMRXHI},
	} {
		err := dev.eng.Exclusive(func(rw RegisterIO) error {
			err := rw.WriteRegister(ch, pair[0], uint8(delay&0xFF))
			if err != nil {
				return err
			}
			hi, err := rw.ReadRegister(ch, pair[1])
			if err != nil {
				return err
			}
			return rw.WriteRegister(ch, pair[1], hi&0xFC|uint8(delay>>8)&0x03)
		})
		if err != nil {
			return fmt.Errorf("slic: could not set PCM timeslot %d (ch=%d): %w", slot, ch, err)
		}
	}
	return nil
}

// EnablePCM enables the PCM highway of a channel.
func (dev *Device) EnablePCM(ch uint8) error {
	err := dev.eng.Exclusive(func(rw RegisterIO) error {
		v, err := rw.ReadRegister(ch, regs.PCMMODE)
		if err != nil {
			return err
		}
		return rw.WriteRegister(ch, regs.PCMMODE, v|0x10)
	})
	if err != nil {
		return fmt.Errorf("slic: could not enable PCM (ch=%d): %w", ch, err)
	}
	return nil
}

// SetLoopback selects the loopback path of a channel.
// The register is only written when its value changes.
func (dev *Device) SetLoopback(ch uint8, mode LoopbackMode) error {
	err := dev.eng.Exclusive(func(rw RegisterIO) error {
		cur, err := rw.ReadRegister(ch, regs.LOOPBACK)
		if err != nil {
			return err
		}
		v := cur
		switch mode {
		case LoopbackNone:
			v &^= 0x11
		case LoopbackA:
			v |= 0x01
		case LoopbackB:
			v |= 0x10
		default:
			return fmt.Errorf("slic: invalid loopback mode %d", mode)
		}
		if v == cur {
			return nil
		}
		return rw.WriteRegister(ch, regs.LOOPBACK, v)
	})
	if err != nil {
		return fmt.Errorf("slic: could not set loopback %v (ch=%d): %w", mode, ch, err)
	}
	return nil
}

// HookState returns the hook state of a channel.
// Bit 1 of LCRRTP is the loop closure detector: it is set while the
// handset is lifted.
func (dev *Device) HookState(ch uint8) (HookState, error) {
	v, err := dev.eng.ReadRegister(ch, regs.LCRRTP)
	if err != nil {
		return OnHook, fmt.Errorf("slic: could not read hook state (ch=%d): %w", ch, err)
	}
	if v&0x02 != 0 {
		return OffHook, nil
	}
	return OnHook, nil
}

// LineFeed returns the current linefeed state of a channel.
func (dev *Device) LineFeed(ch uint8) (Linefeed, error) {
	v, err := dev.eng.ReadRegister(ch, regs.LINEFEED)
	if err != nil {
		return LinefeedNOP, fmt.Errorf("slic: could not read linefeed (ch=%d): %w", ch, err)
	}
	return Linefeed(v & 0x0F), nil
}

// SetLineFeed requests a new linefeed state for a channel.
//
// The LINEFEED register holds the current state in its low nibble and
// the previously observed state in its high nibble. The request is
// dropped when the line already rings and ringing is requested, or when a
// ring-to-idle transition is still settling. SetLineFeed reports whether
// the register was written.
func (dev *Device) SetLineFeed(ch uint8, lf Linefeed) (bool, error) {
	applied := false
	err := dev.eng.Exclusive(func(rw RegisterIO) error {
		auto, err := rw.ReadRegister(ch, regs.AUTO)
		if err != nil {
			return err
		}
		v, err := rw.ReadRegister(ch, regs.LINEFEED)
		if err != nil {
			return err
		}
		var (
			cur  = Linefeed(v & 0x0F)
			prev = Linefeed(v >> 4)
		)
		switch {
		case lf == LinefeedRinging && cur == LinefeedRinging:
			return nil
		case prev == LinefeedRinging && cur != LinefeedRinging:
			return nil
		}

		err = rw.WriteRegister(ch, regs.AUTO, auto&0xFB)
		if err != nil {
			return err
		}
		err = rw.WriteRegister(ch, regs.LINEFEED, uint8(lf))
		if err != nil {
			return err
		}
		err = rw.WriteRegister(ch, regs.AUTO, auto)
		if err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return applied, fmt.Errorf("slic: could not set linefeed %v (ch=%d): %w", lf, ch, err)
	}
	return applied, nil
}

// EnableHookIRQ enables the loop status interrupt of a channel, leaving
// every other interrupt source of the channel untouched.
func (dev *Device) EnableHookIRQ(ch uint8) error {
	err := dev.eng.WriteRegister(ch, regs.IRQEN2, regs.IRQ2_LOOP_STATUS)
	if err != nil {
		return fmt.Errorf("slic: could not enable hook interrupt (ch=%d): %w", ch, err)
	}
	return nil
}
