// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package transport

// SPI is a transport over a Linux spidev node.
// It is only available on Linux.
type SPI struct{}

// OpenSPI returns ErrNotSupported.
func OpenSPI(path string, opts ...Option) (*SPI, error) {
	return nil, ErrNotSupported
}

func (*SPI) ReadRegister(ch, reg uint8) (uint8, error) { return 0, ErrNotSupported }
func (*SPI) WriteRegister(ch, reg, v uint8) error      { return ErrNotSupported }
func (*SPI) Reset() error                              { return ErrNotSupported }
func (*SPI) Close() error                              { return nil }
