// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

// Dummy is a chip without configuration capabilities, used to probe an
// unknown device.
type Dummy struct {
	*Device
}

// NewDummy returns a probing driver for the device behind tr.
func NewDummy(tr Transport, opts ...Option) *Dummy {
	return &Dummy{Device: newDevice("dummy", tr, opts...)}
}

// Setup resets the device and counts its channels.
func (dev *Dummy) Setup() error {
	err := dev.Reset()
	if err != nil {
		return err
	}
	_, err = dev.Probe()
	return err
}

func (*Dummy) Configure(ch uint8) error                           { return ErrNotSupported }
func (*Dummy) ConfigureDCFeed(ch uint8) error                     { return ErrNotSupported }
func (*Dummy) ConfigureRinger(ch uint8) error                     { return ErrNotSupported }
func (*Dummy) ConfigureZsynth(ch uint8, lt LineTermination) error { return ErrNotSupported }
func (*Dummy) ConfigurePCM(ch uint8, f PCMFormat) error           { return ErrNotSupported }
func (*Dummy) EnableIRQ(ch uint8) error                           { return ErrNotSupported }
func (*Dummy) DisableIRQ(ch uint8) error                          { return ErrNotSupported }
