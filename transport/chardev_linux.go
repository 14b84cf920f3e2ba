// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package transport

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl requests of the proslic kernel driver.
const (
	ioctlReadReg  = 0x80087001 // _IOR('p', 1, struct proslic_access)
	ioctlWriteReg = 0x40087002 // _IOW('p', 2, struct proslic_access)
	ioctlReset    = 0x40087007 // _IOW('p', 7, struct proslic_access)
)

// access mirrors struct proslic_access.
type access struct {
	Channel uint8
	_       uint8
	Addr    uint16
	Data    uint32
}

// Chardev is a transport over the character device of the proslic kernel
// driver. Each register transaction is a single ioctl.
type Chardev struct {
	mu   sync.Mutex
	f    *os.File
	name string
}

// OpenChardev opens the driver node at path.
func OpenChardev(path string, opts ...Option) (*Chardev, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: could not open %q: %w", path, err)
	}
	cfg.msg.Printf("opened %s", path)
	return &Chardev{f: f, name: path}, nil
}

// Fd returns the file descriptor of the driver node.
// Reading one byte from it blocks until an interrupt is raised and
// returns the chip interrupt status.
func (dev *Chardev) Fd() uintptr {
	return dev.f.Fd()
}

func (dev *Chardev) ioctl(req uintptr, acc *access) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.f == nil {
		return ErrClosed
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, dev.f.Fd(), req, uintptr(unsafe.Pointer(acc)))
	if errno != 0 {
		return errno
	}
	return nil
}

func (dev *Chardev) ReadRegister(ch, reg uint8) (uint8, error) {
	acc := access{Channel: ch, Addr: uint16(reg)}
	err := dev.ioctl(ioctlReadReg, &acc)
	if err != nil {
		return 0, fmt.Errorf("transport: could not read register 0x%02x (ch=%d) from %s: %w", reg, ch, dev.name, err)
	}
	return uint8(acc.Data), nil
}

func (dev *Chardev) WriteRegister(ch, reg, v uint8) error {
	acc := access{Channel: ch, Addr: uint16(reg), Data: uint32(v)}
	err := dev.ioctl(ioctlWriteReg, &acc)
	if err != nil {
		return fmt.Errorf("transport: could not write register 0x%02x (ch=%d) to %s: %w", reg, ch, dev.name, err)
	}
	return nil
}

// Reset asks the driver to toggle the reset line of the chip.
func (dev *Chardev) Reset() error {
	var acc access
	err := dev.ioctl(ioctlReset, &acc)
	if err != nil {
		return fmt.Errorf("transport: could not reset %s: %w", dev.name, err)
	}
	return nil
}

func (dev *Chardev) Close() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.f == nil {
		return nil
	}
	err := dev.f.Close()
	dev.f = nil
	if err != nil {
		return fmt.Errorf("transport: could not close %s: %w", dev.name, err)
	}
	return nil
}
