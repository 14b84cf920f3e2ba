// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-lpc/proslic/slic/internal/regs"
)

// Engine implements the register and indirect RAM protocol on top of a
// Transport.
//
// All transport traffic goes through a single lock: a RAM transaction is
// carried out atomically with respect to other users of the Engine.
type Engine struct {
	mu sync.Mutex
	tr Transport

	msg     *log.Logger
	verbose bool

	retries int
	delay   time.Duration
	sleep   func(time.Duration)
}

// NewEngine returns a protocol engine driving the provided transport.
func NewEngine(tr Transport, opts ...Option) *Engine {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newEngine(tr, cfg)
}

func newEngine(tr Transport, cfg config) *Engine {
	return &Engine{
		tr:      tr,
		msg:     cfg.msg,
		verbose: cfg.verbose,
		retries: cfg.retries,
		delay:   cfg.ramDelay,
		sleep:   cfg.sleep,
	}
}

var _ RegisterIO = (*Engine)(nil)

// ReadRegister reads the register reg of channel ch.
func (e *Engine) ReadRegister(ch, reg uint8) (uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rw().ReadRegister(ch, reg)
}

// WriteRegister writes v to the register reg of channel ch.
func (e *Engine) WriteRegister(ch, reg, v uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rw().WriteRegister(ch, reg, v)
}

// ReadRAM reads the 29-bit RAM word at addr of channel ch.
func (e *Engine) ReadRAM(ch uint8, addr uint16) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rw().ReadRAM(ch, addr)
}

// WriteRAM writes the 29-bit word v at the RAM address addr of channel ch.
func (e *Engine) WriteRAM(ch uint8, addr uint16, v uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rw().WriteRAM(ch, addr, v)
}

// Exclusive runs f while holding the transport lock.
// f must only use the provided RegisterIO.
func (e *Engine) Exclusive(f func(rw RegisterIO) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return f(e.rw())
}

// Reset performs a hardware reset of the device.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.tr.Reset()
	if err != nil {
		return fmt.Errorf("slic: could not reset device: %w: %w", ErrCommunication, err)
	}
	return nil
}

// Close closes the underlying transport.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tr.Close()
}

func (e *Engine) rw() locked { return locked{e} }

// locked implements RegisterIO for callers already holding the lock.
type locked struct {
	e *Engine
}

func (rw locked) ReadRegister(ch, reg uint8) (uint8, error) {
	v, err := rw.e.tr.ReadRegister(ch, reg)
	if err != nil {
		return 0, fmt.Errorf(
			"slic: could not read register %s (ch=%d): %w: %w",
			regs.Name(reg), ch, ErrCommunication, err,
		)
	}
	if rw.e.verbose {
		rw.e.msg.Printf("read  ch=%d %-12s -> 0x%02x", ch, regs.Name(reg), v)
	}
	return v, nil
}

func (rw locked) WriteRegister(ch, reg, v uint8) error {
	if rw.e.verbose {
		rw.e.msg.Printf("write ch=%d %-12s <- 0x%02x", ch, regs.Name(reg), v)
	}
	err := rw.e.tr.WriteRegister(ch, reg, v)
	if err != nil {
		return fmt.Errorf(
			"slic: could not write register %s (ch=%d): %w: %w",
			regs.Name(reg), ch, ErrCommunication, err,
		)
	}
	return nil
}

// waitRAM polls the RAM status until the chip reports it is ready to
// accept a new RAM transaction.
func (rw locked) waitRAM(ch uint8) error {
	for i := 0; i < rw.e.retries; i++ {
		v, err := rw.ReadRegister(ch, regs.RAM_STAT)
		if err != nil {
			return err
		}
		if v&0x01 == 0 {
			return nil
		}
		if i+1 < rw.e.retries {
			rw.e.sleep(rw.e.delay)
		}
	}
	return fmt.Errorf(
		"slic: RAM not ready after %d polls (ch=%d): %w",
		rw.e.retries, ch, ErrTimeout,
	)
}

// ramMask selects the bits of a word a RAM location can hold.
const ramMask = 0x1FFFFFFF

func ramAddrHi(addr uint16) uint8 { return uint8((addr >> 3) & 0xE0) }
func ramAddrLo(addr uint16) uint8 { return uint8(addr & 0xFF) }

func (rw locked) WriteRAM(ch uint8, addr uint16, v uint32) error {
	err := rw.waitRAM(ch)
	if err != nil {
		return fmt.Errorf("slic: could not write RAM %s: %w", regs.RAMName(addr), err)
	}

	for _, w := range []struct {
		reg uint8
		val uint8
	}{
		{regs.RAM_ADDR_HI, ramAddrHi(addr)},
		{regs.RAM_D0, uint8((v << 3) & 0xFF)},
		{regs.RAM_D1, uint8((v >> 5) & 0xFF)},
		{regs.RAM_D2, uint8((v >> 13) & 0xFF)},
		{regs.RAM_D3, uint8((v >> 21) & 0xFF)},
		{regs.RAM_ADDR_LO, ramAddrLo(addr)},
	} {
		err = rw.WriteRegister(ch, w.reg, w.val)
		if err != nil {
			return fmt.Errorf("slic: could not write RAM %s: %w", regs.RAMName(addr), err)
		}
	}

	err = rw.waitRAM(ch)
	if err != nil {
		return fmt.Errorf("slic: could not write RAM %s: %w", regs.RAMName(addr), err)
	}
	return nil
}

func (rw locked) ReadRAM(ch uint8, addr uint16) (uint32, error) {
	err := rw.waitRAM(ch)
	if err != nil {
		return 0, fmt.Errorf("slic: could not read RAM %s: %w", regs.RAMName(addr), err)
	}

	err = rw.WriteRegister(ch, regs.RAM_ADDR_HI, ramAddrHi(addr))
	if err != nil {
		return 0, fmt.Errorf("slic: could not read RAM %s: %w", regs.RAMName(addr), err)
	}
	err = rw.WriteRegister(ch, regs.RAM_ADDR_LO, ramAddrLo(addr))
	if err != nil {
		return 0, fmt.Errorf("slic: could not read RAM %s: %w", regs.RAMName(addr), err)
	}

	err = rw.waitRAM(ch)
	if err != nil {
		return 0, fmt.Errorf("slic: could not read RAM %s: %w", regs.RAMName(addr), err)
	}

	var lanes [4]uint32
	for i := 3; i >= 0; i-- {
		v, err := rw.ReadRegister(ch, regs.RAM_D0+uint8(i))
		if err != nil {
			return 0, fmt.Errorf("slic: could not read RAM %s: %w", regs.RAMName(addr), err)
		}
		lanes[i] = uint32(v)
	}

	return lanes[3]<<21 | lanes[2]<<13 | lanes[1]<<5 | lanes[0]>>3, nil
}
