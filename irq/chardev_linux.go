// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package irq

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// Chardev is a source reading the interrupts reported by the proslic
// kernel driver on its character device. Each interrupt carries the chip
// interrupt status, read by the driver.
type Chardev struct {
	fd int
	w  *waiter
}

// NewChardev returns a source waiting on the driver node fd.
// The node is not closed by the source.
func NewChardev(fd uintptr) (*Chardev, error) {
	w, err := newWaiter()
	if err != nil {
		return nil, err
	}
	return &Chardev{fd: int(fd), w: w}, nil
}

func (*Chardev) Name() string { return "chardev" }

func (src *Chardev) Wait(ctx context.Context) ([]byte, error) {
	_, err := src.w.wait(ctx, src.fd, unix.POLLIN)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 1)
	n, err := unix.Read(src.fd, buf)
	if err != nil {
		return nil, fmt.Errorf("irq: could not read interrupt status: %w", err)
	}
	return buf[:n], nil
}

func (src *Chardev) Close() error {
	return src.w.close()
}

var _ Source = (*Chardev)(nil)
