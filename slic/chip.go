// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"fmt"
)

// Chip is the set of capabilities a chip variant implements.
type Chip interface {
	RegisterIO

	Configure(ch uint8) error
	ConfigureDCFeed(ch uint8) error
	ConfigureRinger(ch uint8) error
	ConfigureZsynth(ch uint8, lt LineTermination) error
	ConfigurePCM(ch uint8, f PCMFormat) error
	EnableIRQ(ch uint8) error
	DisableIRQ(ch uint8) error
}

// Driver is a chip variant together with the operations common to all
// ProSLIC devices.
type Driver interface {
	Chip

	Name() string
	Setup() error
	Reset() error
	NumChannels() int

	InterruptChannels(payload []byte) ([]Pending, error)
	HandleIRQ(ch, mask uint8) (Flags, error)

	HookState(ch uint8) (HookState, error)
	LineFeed(ch uint8) (Linefeed, error)
	SetLineFeed(ch uint8, lf Linefeed) (bool, error)
	SetLoopback(ch uint8, mode LoopbackMode) error
	SetPCMTimeslot(ch uint8, slot int) error
	EnablePCM(ch uint8) error
	EnableHookIRQ(ch uint8) error

	Close() error
}

var (
	_ Driver = (*Si3228x)(nil)
	_ Driver = (*Dummy)(nil)
)

// Close releases the transport of the device.
func (dev *Device) Close() error {
	return dev.eng.Close()
}

// variants maps chip identifiers to chip drivers.
var variants = map[uint8]func(tr Transport, opts ...Option) Driver{
	Si3228xID: func(tr Transport, opts ...Option) Driver {
		return NewSi3228x(tr, opts...)
	},
}

// Open probes the device behind tr and returns the driver matching its
// chip identifier. The returned driver still needs to be set up.
func Open(tr Transport, opts ...Option) (Driver, error) {
	probe := NewDummy(tr, opts...)
	err := probe.Setup()
	if err != nil {
		return nil, fmt.Errorf("slic: could not probe device: %w", err)
	}
	if probe.NumChannels() == 0 {
		return nil, fmt.Errorf("slic: no channel found: %w", ErrInit)
	}

	id, err := probe.ChipInfo(0)
	if err != nil {
		return nil, fmt.Errorf("slic: could not read chip id: %w", err)
	}

	mk, ok := variants[id]
	if !ok {
		return nil, fmt.Errorf("slic: unknown chip id 0x%02x: %w", id, ErrInit)
	}
	return mk(tr, opts...), nil
}
