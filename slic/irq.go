// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"fmt"
	"strings"

	"github.com/go-lpc/proslic/slic/internal/regs"
)

// Flag is a line event decoded from the interrupt registers of a channel.
type Flag uint8

const (
	FlagNone     Flag = iota
	FlagLoop          // loop closure changed
	FlagRingTrip      // handset lifted while ringing
	FlagDTMF          // DTMF digit detected
	FlagThermal       // thermal alarm
)

func (f Flag) String() string {
	switch f {
	case FlagNone:
		return "NONE"
	case FlagLoop:
		return "LOOP"
	case FlagRingTrip:
		return "RING_TRIP"
	case FlagDTMF:
		return "DTMF"
	case FlagThermal:
		return "THERMAL"
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

// Flags is an ordered set of flags.
type Flags []Flag

// Has returns whether f is part of the set.
func (fs Flags) Has(f Flag) bool {
	for _, v := range fs {
		if v == f {
			return true
		}
	}
	return false
}

func (fs Flags) String() string {
	o := new(strings.Builder)
	o.WriteString("[")
	for i, f := range fs {
		if i > 0 {
			o.WriteString(" ")
		}
		o.WriteString(f.String())
	}
	o.WriteString("]")
	return o.String()
}

// Pending is a channel with pending interrupts.
type Pending struct {
	Channel uint8
	Mask    uint8 // pending IRQn registers
}

// irqRegs are the interrupt flag registers, in decoding order.
var irqRegs = []uint8{regs.IRQ1, regs.IRQ2, regs.IRQ3}

// irqTable maps interrupt register bits to flags.
// Bits absent from the table are ignored.
var irqTable = []struct {
	reg  uint8
	bit  uint8
	flag Flag
}{
	{regs.IRQ1, regs.IRQ1_FSKBUF_AVAIL, FlagNone},
	{regs.IRQ2, regs.IRQ2_RING_TRIP, FlagRingTrip},
	{regs.IRQ2, regs.IRQ2_LOOP_STATUS, FlagLoop},
	{regs.IRQ2, regs.IRQ2_DTMF, FlagDTMF},
	{regs.IRQ3, regs.IRQ3_P_THERM, FlagThermal},
}

// DecodeInterruptStatus decodes the chip-wide interrupt status register
// into the list of channels with pending interrupts, in channel order.
func DecodeInterruptStatus(status uint8) []Pending {
	var out []Pending
	if mask := status & 0x0F; mask != 0 {
		out = append(out, Pending{Channel: 0, Mask: mask})
	}
	if mask := (status & 0xF0) >> 4; mask != 0 {
		out = append(out, Pending{Channel: 1, Mask: mask})
	}
	return out
}

// InterruptChannels returns the channels with pending interrupts.
//
// The status is taken from payload when the interrupt source already read
// it, and from the IRQ0 register of channel 0 otherwise. Reading IRQ0
// clears it.
func (dev *Device) InterruptChannels(payload []byte) ([]Pending, error) {
	var status uint8
	switch {
	case len(payload) > 0:
		status = payload[0]
	default:
		v, err := dev.eng.ReadRegister(0, regs.IRQ0)
		if err != nil {
			return nil, fmt.Errorf("slic: could not read interrupt status: %w", err)
		}
		status = v
	}

	pending := DecodeInterruptStatus(status)
	out := pending[:0]
	for _, p := range pending {
		if int(p.Channel) >= dev.nchans {
			dev.msg.Printf("%s: interrupt on unprobed channel %d (status=0x%02x)", dev.name, p.Channel, status)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// HandleIRQ reads and clears the interrupt registers of a channel and
// returns the decoded flags, in first-seen order.
//
// A read failure stops the decoding: the flags decoded so far are
// returned along with the error.
func (dev *Device) HandleIRQ(ch, mask uint8) (Flags, error) {
	var flags Flags
	if mask == 0 {
		return flags, nil
	}

	for _, reg := range irqRegs {
		v, err := dev.eng.ReadRegister(ch, reg)
		if err != nil {
			dev.msg.Printf("%s: could not decode interrupts (ch=%d): %+v", dev.name, ch, err)
			return flags, fmt.Errorf("slic: could not handle interrupts (ch=%d): %w", ch, err)
		}
		if v == 0 {
			continue
		}
		dev.debugf("%s: ch=%d %s=0x%02x", dev.name, ch, regs.Name(reg), v)
		for _, e := range irqTable {
			if e.reg != reg || v&e.bit == 0 || e.flag == FlagNone {
				continue
			}
			if !flags.Has(e.flag) {
				flags = append(flags, e.flag)
			}
		}
	}
	return flags, nil
}
