// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport provides the register transports reaching ProSLIC
// chips: the proslic kernel driver character device, Linux spidev and
// USB-serial SPI bridges.
package transport // import "github.com/go-lpc/proslic/transport"

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-lpc/proslic/slic"
)

var (
	ErrNotSupported = errors.New("transport: not supported on this platform")
	ErrChannel      = errors.New("transport: invalid channel")
	ErrClosed       = errors.New("transport: closed")
)

// Transport kinds, as named in configuration files.
const (
	KindChardev = "chardev"
	KindSPI     = "spidev"
	KindBridge  = "bridge"
)

const (
	// DefaultChardev is the node created by the proslic kernel driver.
	DefaultChardev = "/dev/proslic"
	// DefaultSPISpeed is the default SPI clock frequency, in Hz.
	DefaultSPISpeed = 1000000
	// DefaultBaud is the default baud rate of serial bridges.
	DefaultBaud = 115200
)

type config struct {
	msg *log.Logger

	speed     uint32 // SPI clock, in Hz
	mode      uint8  // SPI mode
	baud      int
	timeout   time.Duration // bridge reply timeout
	resetGPIO int           // sysfs GPIO of the reset line, -1 when absent
}

func newConfig() config {
	return config{
		msg:       log.New(os.Stdout, "transport: ", 0),
		speed:     DefaultSPISpeed,
		mode:      3,
		baud:      DefaultBaud,
		timeout:   100 * time.Millisecond,
		resetGPIO: -1,
	}
}

// Option configures a transport.
type Option func(*config)

// WithLogger sets the logger used for diagnostics.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

// WithSPISpeed sets the SPI clock frequency, in Hz.
func WithSPISpeed(hz uint32) Option {
	return func(cfg *config) {
		cfg.speed = hz
	}
}

// WithSPIMode sets the SPI clock polarity and phase.
func WithSPIMode(mode uint8) Option {
	return func(cfg *config) {
		cfg.mode = mode
	}
}

// WithBaud sets the baud rate of a serial bridge.
func WithBaud(baud int) Option {
	return func(cfg *config) {
		cfg.baud = baud
	}
}

// WithTimeout sets how long a serial bridge reply is waited for.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithResetGPIO sets the sysfs GPIO driving the reset line of the chip.
func WithResetGPIO(gpio int) Option {
	return func(cfg *config) {
		cfg.resetGPIO = gpio
	}
}

// Open opens the transport of the provided kind.
func Open(kind, path string, opts ...Option) (slic.Transport, error) {
	switch kind {
	case KindChardev:
		if path == "" {
			path = DefaultChardev
		}
		return OpenChardev(path, opts...)
	case KindSPI:
		return OpenSPI(path, opts...)
	case KindBridge:
		return OpenBridge(path, opts...)
	}
	return nil, fmt.Errorf("transport: unknown transport kind %q", kind)
}

var (
	_ slic.Transport = (*Chardev)(nil)
	_ slic.Transport = (*SPI)(nil)
	_ slic.Transport = (*Bridge)(nil)
)
