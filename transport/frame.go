// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import "fmt"

// SPI control byte.
const (
	opWrite     = 0x20
	opRead      = 0x60
	opBroadcast = 0x80
	opReset     = 0xFF // bridge only

	// Broadcast addresses every channel of a device, for writes.
	Broadcast = 0xFF
)

var chanAddrs = [...]uint8{0x00, 0x10}

func chanAddr(ch uint8) (uint8, error) {
	if int(ch) >= len(chanAddrs) {
		return 0, fmt.Errorf("transport: channel %d: %w", ch, ErrChannel)
	}
	return chanAddrs[ch], nil
}

// readFrame returns the control and register bytes of a register read.
func readFrame(ch, reg uint8) ([4]byte, error) {
	addr, err := chanAddr(ch)
	if err != nil {
		return [4]byte{}, err
	}
	return [4]byte{opRead | addr, reg, 0xFF, 0xFF}, nil
}

// writeFrame returns the frame of a register write.
// The value is sent twice.
func writeFrame(ch, reg, v uint8) ([4]byte, error) {
	ctl := uint8(opWrite | opBroadcast)
	if ch != Broadcast {
		addr, err := chanAddr(ch)
		if err != nil {
			return [4]byte{}, err
		}
		ctl = opWrite | addr
	}
	return [4]byte{ctl, reg, v, v}, nil
}
