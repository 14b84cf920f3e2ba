// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phone

import (
	"fmt"
	"log"
	"os"

	"github.com/go-lpc/proslic/config"
	"github.com/go-lpc/proslic/fxs"
	"github.com/go-lpc/proslic/slic"
	"github.com/go-lpc/proslic/slic/slicsim"
	"github.com/go-lpc/proslic/transport"
)

// Opener opens the register transport of a configured device.
type Opener func(dev config.Device) (slic.Transport, error)

type options struct {
	msg     *log.Logger
	verbose bool

	open  Opener
	queue int // size of the interrupt and hook event queues

	slic []slic.Option
	fxs  []fxs.Option
}

func newOptions() options {
	return options{
		msg:   log.New(os.Stdout, "phone: ", 0),
		queue: 64,
	}
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the logger used for diagnostics.
func WithLogger(msg *log.Logger) Option {
	return func(o *options) {
		o.msg = msg
	}
}

// WithVerbose enables debug messages.
func WithVerbose(v bool) Option {
	return func(o *options) {
		o.verbose = v
	}
}

// WithOpener sets how device transports are opened.
func WithOpener(open Opener) Option {
	return func(o *options) {
		o.open = open
	}
}

// WithQueue sets the capacity of the interrupt and hook event queues.
func WithQueue(n int) Option {
	return func(o *options) {
		o.queue = n
	}
}

// WithDeviceOptions appends options used to create the device drivers.
func WithDeviceOptions(opts ...slic.Option) Option {
	return func(o *options) {
		o.slic = append(o.slic, opts...)
	}
}

// WithLineOptions appends options used to create the lines.
func WithLineOptions(opts ...fxs.Option) Option {
	return func(o *options) {
		o.fxs = append(o.fxs, opts...)
	}
}

// OpenTransport opens the transport described by dev. The "sim"
// transport is an in-memory dual channel Si3228x.
func OpenTransport(dev config.Device, opts ...transport.Option) (slic.Transport, error) {
	switch dev.Transport {
	case "sim":
		chip := slicsim.New(slic.Si3228xID, 2)
		return chip, nil
	case transport.KindChardev, transport.KindSPI, transport.KindBridge:
		opts = append([]transport.Option{
			transport.WithSPISpeed(dev.SPISpeed),
			transport.WithBaud(dev.Baud),
			transport.WithResetGPIO(dev.ResetLine()),
		}, opts...)
		return transport.Open(dev.Transport, dev.Path, opts...)
	}
	return nil, fmt.Errorf("phone: unknown transport %q", dev.Transport)
}
