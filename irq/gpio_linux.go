// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package irq

import (
	"context"
	"fmt"
	"os"

	"github.com/go-lpc/proslic/internal/gpio"
	"golang.org/x/sys/unix"
)

// GPIO is a source waiting for falling edges on the sysfs GPIO line
// wired to the interrupt output of a chip.
type GPIO struct {
	pin *gpio.Pin
	f   *os.File
	w   *waiter
}

// NewGPIO exports and configures GPIO line n as an interrupt input.
func NewGPIO(n int) (*GPIO, error) {
	pin, err := gpio.Export(n)
	if err != nil {
		return nil, fmt.Errorf("irq: could not setup interrupt line: %w", err)
	}
	err = pin.SetDirection(gpio.In)
	if err != nil {
		return nil, fmt.Errorf("irq: could not setup interrupt line: %w", err)
	}
	err = pin.SetEdge(gpio.Falling)
	if err != nil {
		return nil, fmt.Errorf("irq: could not setup interrupt line: %w", err)
	}

	f, err := os.Open(pin.ValuePath())
	if err != nil {
		return nil, fmt.Errorf("irq: could not open interrupt line: %w", err)
	}

	w, err := newWaiter()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	src := &GPIO{pin: pin, f: f, w: w}
	// consume the initial level, so only edges wake us up.
	_ = src.ack()
	return src, nil
}

func (src *GPIO) Name() string { return fmt.Sprintf("gpio%d", src.pin.N()) }

func (src *GPIO) ack() error {
	var buf [2]byte
	_, err := unix.Pread(int(src.f.Fd()), buf[:], 0)
	return err
}

func (src *GPIO) Wait(ctx context.Context) ([]byte, error) {
	_, err := src.w.wait(ctx, int(src.f.Fd()), unix.POLLPRI|unix.POLLERR)
	if err != nil {
		return nil, err
	}
	err = src.ack()
	if err != nil {
		return nil, fmt.Errorf("irq: could not acknowledge %s: %w", src.Name(), err)
	}
	return nil, nil
}

func (src *GPIO) Close() error {
	err := src.f.Close()
	if e := src.w.close(); e != nil && err == nil {
		err = e
	}
	return err
}

var _ Source = (*GPIO)(nil)
