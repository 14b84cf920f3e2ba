// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package transport

// Chardev is a transport over the character device of the proslic kernel
// driver. It is only available on Linux.
type Chardev struct{}

// OpenChardev returns ErrNotSupported.
func OpenChardev(path string, opts ...Option) (*Chardev, error) {
	return nil, ErrNotSupported
}

func (*Chardev) Fd() uintptr { return ^uintptr(0) }

func (*Chardev) ReadRegister(ch, reg uint8) (uint8, error) { return 0, ErrNotSupported }
func (*Chardev) WriteRegister(ch, reg, v uint8) error      { return ErrNotSupported }
func (*Chardev) Reset() error                              { return ErrNotSupported }
func (*Chardev) Close() error                              { return nil }
