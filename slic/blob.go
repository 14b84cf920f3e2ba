// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"errors"
	"fmt"

	"github.com/go-lpc/proslic/slic/internal/regs"
)

// Blob is a vendor firmware patch.
type Blob struct {
	ID       uint32     // patch identifier
	Data     []uint32   // patch words
	RegJumps []uint8    // register jump table, from JMP0LO
	RAMJumps []uint32   // RAM jump table
	Config   []RAMValue // per-channel RAM configuration
}

// RAMValue is a value to store at a RAM address.
type RAMValue struct {
	Addr  uint16
	Value uint32
}

// Validate checks the blob is loadable.
func (b Blob) Validate() error {
	switch {
	case len(b.Data) == 0:
		return fmt.Errorf("slic: empty blob data: %w", ErrBlobInvalid)
	case len(b.RegJumps) > regs.NumJumpRegs:
		return fmt.Errorf(
			"slic: too many register jumps (%d > %d): %w",
			len(b.RegJumps), regs.NumJumpRegs, ErrBlobInvalid,
		)
	case len(b.RAMJumps) > regs.NumJumpRAMs:
		return fmt.Errorf(
			"slic: too many RAM jumps (%d > %d): %w",
			len(b.RAMJumps), regs.NumJumpRAMs, ErrBlobInvalid,
		)
	}
	for i, v := range b.Data {
		if v > ramMask {
			return fmt.Errorf(
				"slic: blob word %d (0x%08x) exceeds 29 bits: %w",
				i, v, ErrBlobInvalid,
			)
		}
	}
	return nil
}

// LoadBlob uploads a firmware patch to the device and verifies it.
//
// The patch itself lives in the RAM of channel 0; the other channels only
// receive the blob configuration.
func (dev *Device) LoadBlob(b Blob) error {
	err := b.Validate()
	if err != nil {
		return err
	}

	for ch := uint8(0); int(ch) < dev.nchans; ch++ {
		err = dev.loadBlob(ch, b)
		if err != nil {
			switch {
			case errors.Is(err, ErrBlobVerify):
				return err
			default:
				return fmt.Errorf(
					"slic: could not load blob 0x%x (ch=%d): %w: %w",
					b.ID, ch, ErrBlobUpload, err,
				)
			}
		}
	}
	dev.debugf("%s: blob 0x%x loaded (%d words)", dev.name, b.ID, len(b.Data))
	return nil
}

func (dev *Device) loadBlob(ch uint8, b Blob) error {
	err := dev.enterUserMode(ch)
	if err != nil {
		return err
	}

	err = dev.eng.WriteRegister(ch, regs.JMPEN, 0)
	if err != nil {
		return fmt.Errorf("slic: could not disable patch: %w", err)
	}

	if ch == 0 {
		err = dev.configureJumps(ch, nil, nil)
		if err != nil {
			return err
		}

		err = dev.streamBlob(ch, b.Data)
		if err != nil {
			return err
		}

		err = dev.configureJumps(ch, b.RegJumps, b.RAMJumps)
		if err != nil {
			return err
		}

		err = dev.eng.WriteRAM(ch, regs.RAM_BLOB_ID, b.ID)
		if err != nil {
			return fmt.Errorf("slic: could not store blob id: %w", err)
		}
	}

	for _, kv := range b.Config {
		err = dev.eng.WriteRAM(ch, kv.Addr, kv.Value)
		if err != nil {
			return fmt.Errorf("slic: could not configure blob: %w", err)
		}
	}

	if ch == 0 {
		err = dev.verifyBlob(ch, b.Data)
		if err != nil {
			return err
		}
	}

	err = dev.eng.WriteRegister(ch, regs.JMPEN, 1)
	if err != nil {
		return fmt.Errorf("slic: could not enable patch: %w", err)
	}
	return nil
}

// configureJumps programs both jump tables; missing entries are zeroed.
func (dev *Device) configureJumps(ch uint8, rjmp []uint8, mjmp []uint32) error {
	for i := 0; i < regs.NumJumpRegs; i++ {
		var v uint8
		if i < len(rjmp) {
			v = rjmp[i]
		}
		err := dev.eng.WriteRegister(ch, regs.JMP0LO+uint8(i), v)
		if err != nil {
			return fmt.Errorf("slic: could not configure jump table: %w", err)
		}
	}
	for i := 0; i < regs.NumJumpRAMs; i++ {
		var v uint32
		if i < len(mjmp) {
			v = mjmp[i]
		}
		err := dev.eng.WriteRAM(ch, regs.RAM_JMP_TABLE2+uint16(i), v)
		if err != nil {
			return fmt.Errorf("slic: could not configure jump table: %w", err)
		}
	}
	return nil
}

// endRAMStream tells the chip a sequential RAM access is over.
func (dev *Device) endRAMStream(ch uint8) error {
	return dev.eng.WriteRegister(ch, regs.RAM_ADDR_HI, 0)
}

func (dev *Device) streamBlob(ch uint8, data []uint32) (err error) {
	defer func() {
		e := dev.endRAMStream(ch)
		if e != nil && err == nil {
			err = fmt.Errorf("slic: could not end blob stream: %w", e)
		}
	}()

	err = dev.eng.WriteRAM(ch, regs.RAM_BLOB_DATA_PTR, 0)
	if err != nil {
		return fmt.Errorf("slic: could not reset blob pointer: %w", err)
	}

	for i, v := range data {
		err = dev.eng.WriteRAM(ch, regs.RAM_BLOB_DATA, v)
		if err != nil {
			return fmt.Errorf("slic: could not write blob word %d: %w", i, err)
		}
	}
	return nil
}

func (dev *Device) verifyBlob(ch uint8, data []uint32) (err error) {
	err = dev.eng.WriteRegister(ch, regs.JMPEN, 0)
	if err != nil {
		return fmt.Errorf("slic: could not disable patch: %w", err)
	}

	defer func() {
		e := dev.endRAMStream(ch)
		if e != nil && err == nil {
			err = fmt.Errorf("slic: could not end blob verification: %w", e)
		}
	}()

	err = dev.eng.WriteRAM(ch, regs.RAM_BLOB_DATA_PTR, 0)
	if err != nil {
		return fmt.Errorf("slic: could not reset blob pointer: %w", err)
	}

	for i, want := range data {
		got, err := dev.eng.ReadRAM(ch, regs.RAM_BLOB_DATA)
		if err != nil {
			return fmt.Errorf("slic: could not read back blob word %d: %w", i, err)
		}
		if got != want {
			return fmt.Errorf(
				"slic: blob word %d mismatch (got=0x%08x, want=0x%08x): %w",
				i, got, want, ErrBlobVerify,
			)
		}
	}
	return nil
}
