// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package irq

import (
	"context"
	"errors"
)

var errNotSupported = errors.New("irq: not supported on this platform")

// Chardev reads interrupts from the proslic kernel driver.
// It is only available on Linux.
type Chardev struct{}

// NewChardev returns an error on this platform.
func NewChardev(fd uintptr) (*Chardev, error) { return nil, errNotSupported }

func (*Chardev) Name() string                         { return "chardev" }
func (*Chardev) Wait(context.Context) ([]byte, error) { return nil, errNotSupported }
func (*Chardev) Close() error                         { return nil }

// GPIO waits for edges on a sysfs GPIO line.
// It is only available on Linux.
type GPIO struct{}

// NewGPIO returns an error on this platform.
func NewGPIO(n int) (*GPIO, error) { return nil, errNotSupported }

func (*GPIO) Name() string                         { return "gpio" }
func (*GPIO) Wait(context.Context) ([]byte, error) { return nil, errNotSupported }
func (*GPIO) Close() error                         { return nil }

var (
	_ Source = (*Chardev)(nil)
	_ Source = (*GPIO)(nil)
)
