// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slicsim provides an in-memory ProSLIC chip, reachable through
// register transactions.
//
// The simulated chip implements the indirect RAM window, the sequential
// patch memory, the calibration busy bit, the interrupt latches and the
// linefeed settling of real devices.
package slicsim // import "github.com/go-lpc/proslic/slic/slicsim"

import (
	"fmt"
	"sync"

	"github.com/go-lpc/proslic/slic/internal/regs"
)

const ramSize = 2048

// Access is a register transaction seen by the chip.
type Access struct {
	Write bool
	Chan  uint8
	Reg   uint8
	Value uint8
}

func (a Access) String() string {
	op := "R"
	if a.Write {
		op = "W"
	}
	return fmt.Sprintf("%s ch=%d %s=0x%02x", op, a.Chan, regs.Name(a.Reg), a.Value)
}

type channel struct {
	regs  [256]uint8
	ram   [ramSize]uint32
	dirty bool // data lanes written since the last RAM commit

	ramBusy  int
	calBusy  int
	settle   int
	settling bool // a linefeed request is in progress
}

// Chip is a simulated ProSLIC device.
//
// The exported knobs must be set before the chip is used.
type Chip struct {
	// RAMBusy is the number of busy RAM status polls following a RAM commit.
	RAMBusy int
	// RAMStuck keeps the RAM status busy forever.
	RAMStuck bool

	// CalPolls is the number of CALR3 polls needed to see a calibration
	// complete. Zero and one both complete on the first poll.
	CalPolls int
	// CalStuck keeps calibrations running forever.
	CalStuck bool

	// Settle is the number of LINEFEED reads before the line reaches a
	// requested state.
	Settle int

	// Corrupt, when non-negative, flips the low bit of that patch word on
	// read-back.
	Corrupt int

	// FailRead and FailWrite inject transport errors.
	FailRead  func(ch, reg uint8) error
	FailWrite func(ch, reg, v uint8) error

	mu     sync.Mutex
	id     uint8
	chans  []*channel
	patch  []uint32
	ptr    uint32
	resets int
	closed bool
	log    []Access
}

// New returns a simulated chip with the given identifier and number of
// populated channels.
func New(id uint8, nchans int) *Chip {
	c := &Chip{
		id:      id,
		chans:   make([]*channel, nchans),
		Corrupt: -1,
	}
	for i := range c.chans {
		c.chans[i] = new(channel)
	}
	return c
}

func (c *Chip) channel(ch uint8) *channel {
	if int(ch) >= len(c.chans) {
		return nil
	}
	return c.chans[ch]
}

// ReadRegister implements the register read transaction.
func (c *Chip) ReadRegister(ch, reg uint8) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, fmt.Errorf("slicsim: chip closed")
	}
	if c.FailRead != nil {
		if err := c.FailRead(ch, reg); err != nil {
			return 0, err
		}
	}

	v := c.read(ch, reg)
	c.log = append(c.log, Access{Chan: ch, Reg: reg, Value: v})
	return v, nil
}

func (c *Chip) read(ch, reg uint8) uint8 {
	dev := c.channel(ch)
	if dev == nil {
		return 0xFF
	}

	switch reg {
	case regs.ID:
		return c.id
	case regs.RAM_STAT:
		switch {
		case c.RAMStuck:
			return 0x01
		case dev.ramBusy > 0:
			dev.ramBusy--
			return 0x01
		}
		return 0x00
	case regs.CALR3:
		switch {
		case dev.regs[reg]&0x80 == 0:
			return dev.regs[reg]
		case c.CalStuck:
			return dev.regs[reg]
		case dev.calBusy > 0:
			dev.calBusy--
			return dev.regs[reg]
		}
		dev.regs[reg] &^= 0x80
		return dev.regs[reg]
	case regs.LINEFEED:
		v := dev.regs[reg]
		if !dev.settling {
			return v
		}
		if dev.settle > 0 {
			dev.settle--
			return v
		}
		dev.settling = false
		v = v&0x0F | v<<4
		dev.regs[reg] = v
		return v
	case regs.IRQ1, regs.IRQ2, regs.IRQ3, regs.IRQ4:
		v := dev.regs[reg]
		dev.regs[reg] = 0
		return v
	case regs.IRQ0:
		// the chip-wide status lives in channel 0.
		v := c.chans[0].regs[reg]
		c.chans[0].regs[reg] = 0
		return v
	}
	return dev.regs[reg]
}

// WriteRegister implements the register write transaction.
func (c *Chip) WriteRegister(ch, reg, v uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("slicsim: chip closed")
	}
	if c.FailWrite != nil {
		if err := c.FailWrite(ch, reg, v); err != nil {
			return err
		}
	}

	c.log = append(c.log, Access{Write: true, Chan: ch, Reg: reg, Value: v})
	dev := c.channel(ch)
	if dev == nil {
		return nil
	}

	switch reg {
	case regs.RAM_D0, regs.RAM_D1, regs.RAM_D2, regs.RAM_D3:
		dev.regs[reg] = v
		dev.dirty = true
	case regs.RAM_ADDR_LO:
		dev.regs[reg] = v
		addr := uint16(dev.regs[regs.RAM_ADDR_HI])<<3&0x700 | uint16(v)
		if dev.dirty {
			c.ramWrite(dev, addr, lanes(dev))
		} else {
			c.ramRead(dev, addr)
		}
		dev.dirty = false
		dev.ramBusy = c.RAMBusy
	case regs.LINEFEED:
		dev.regs[reg] = dev.regs[reg]&0xF0 | v&0x0F
		dev.settle = c.Settle
		dev.settling = true
	case regs.CALR3:
		dev.regs[reg] = v
		if v&0x80 != 0 && c.CalPolls > 1 {
			dev.calBusy = c.CalPolls - 1
		}
	default:
		dev.regs[reg] = v
	}
	return nil
}

func lanes(dev *channel) uint32 {
	var (
		d0 = uint32(dev.regs[regs.RAM_D0])
		d1 = uint32(dev.regs[regs.RAM_D1])
		d2 = uint32(dev.regs[regs.RAM_D2])
		d3 = uint32(dev.regs[regs.RAM_D3])
	)
	return d3<<21 | d2<<13 | d1<<5 | d0>>3
}

func (c *Chip) ramWrite(dev *channel, addr uint16, v uint32) {
	switch addr {
	case regs.RAM_BLOB_DATA_PTR:
		c.ptr = v
	case regs.RAM_BLOB_DATA:
		for uint32(len(c.patch)) <= c.ptr {
			c.patch = append(c.patch, 0)
		}
		c.patch[c.ptr] = v
		c.ptr++
		return
	}
	dev.ram[addr%ramSize] = v
}

func (c *Chip) ramRead(dev *channel, addr uint16) {
	var v uint32
	switch addr {
	case regs.RAM_BLOB_DATA:
		if c.ptr < uint32(len(c.patch)) {
			v = c.patch[c.ptr]
		}
		if c.Corrupt >= 0 && uint32(c.Corrupt) == c.ptr {
			v ^= 1
		}
		c.ptr++
	default:
		v = dev.ram[addr%ramSize]
	}
	dev.regs[regs.RAM_D0] = uint8(v << 3)
	dev.regs[regs.RAM_D1] = uint8(v >> 5)
	dev.regs[regs.RAM_D2] = uint8(v >> 13)
	dev.regs[regs.RAM_D3] = uint8(v >> 21)
}

// Reset implements the hardware reset of the device.
// Registers and RAM are cleared and a power-on interrupt is latched for
// every populated channel.
func (c *Chip) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("slicsim: chip closed")
	}
	c.resets++
	for i := range c.chans {
		c.chans[i] = new(channel)
	}
	c.patch = nil
	c.ptr = 0

	var irq0 uint8
	for i, dev := range c.chans {
		dev.regs[regs.IRQ3] = regs.IRQ3_P_HVIC
		irq0 |= 0x04 << (4 * i)
	}
	if len(c.chans) > 0 {
		c.chans[0].regs[regs.IRQ0] = irq0
	}
	return nil
}

// Close implements the transport close.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Resets returns the number of hardware resets performed.
func (c *Chip) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

// Register returns the raw content of a register, without side effects.
func (c *Chip) Register(ch, reg uint8) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chans[ch].regs[reg]
}

// SetRegister sets the raw content of a register, without side effects.
func (c *Chip) SetRegister(ch, reg, v uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chans[ch].regs[reg] = v
}

// RAM returns the content of a RAM location.
func (c *Chip) RAM(ch uint8, addr uint16) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chans[ch].ram[addr%ramSize]
}

// SetRAM sets the content of a RAM location.
func (c *Chip) SetRAM(ch uint8, addr uint16, v uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chans[ch].ram[addr%ramSize] = v
}

// Patch returns a copy of the patch memory.
func (c *Chip) Patch() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint32(nil), c.patch...)
}

// SetOffHook sets the loop closure detector of a channel and latches a
// loop status interrupt when it changes.
func (c *Chip) SetOffHook(ch uint8, off bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dev := c.chans[ch]
	old := dev.regs[regs.LCRRTP]
	if off {
		dev.regs[regs.LCRRTP] |= 0x02
	} else {
		dev.regs[regs.LCRRTP] &^= 0x02
	}
	if old != dev.regs[regs.LCRRTP] {
		c.raise(ch, regs.IRQ2, regs.IRQ2_LOOP_STATUS)
	}
}

// Raise latches the interrupt bits of the IRQ1..IRQ4 register reg of a
// channel.
func (c *Chip) Raise(ch, reg, bits uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raise(ch, reg, bits)
}

func (c *Chip) raise(ch, reg, bits uint8) {
	c.chans[ch].regs[reg] |= bits
	mask := uint8(1) << (reg - regs.IRQ1)
	c.chans[0].regs[regs.IRQ0] |= mask << (4 * ch)
}

// Log returns the register transactions seen since the last call to
// ResetLog.
func (c *Chip) Log() []Access {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Access(nil), c.log...)
}

// ResetLog clears the transaction log.
func (c *Chip) ResetLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = c.log[:0]
}

// Writes returns the number of register writes in the transaction log.
func (c *Chip) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.log {
		if a.Write {
			n++
		}
	}
	return n
}
