// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

// Transport performs single register transactions with a chip.
//
// RAM accesses are built on top of register transactions by the Engine.
type Transport interface {
	ReadRegister(ch, reg uint8) (uint8, error)
	WriteRegister(ch, reg, v uint8) error

	// Reset performs a hardware reset of the device.
	Reset() error
	Close() error
}

// RegisterIO gives access to registers and RAM of a chip.
type RegisterIO interface {
	ReadRegister(ch, reg uint8) (uint8, error)
	WriteRegister(ch, reg, v uint8) error
	ReadRAM(ch uint8, addr uint16) (uint32, error)
	WriteRAM(ch uint8, addr uint16, v uint32) error
}
