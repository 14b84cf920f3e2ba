// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package transport

import (
	"errors"
	"testing"
	"unsafe"
)

func TestSPITransfers(t *testing.T) {
	dev := newSPI(nil, "spidev-test", 2000000)

	frame, err := readFrame(1, 0x22)
	if err != nil {
		t.Fatalf("could not build frame: %+v", err)
	}

	xfers := dev.transfers(frame)
	if xfers != dev.xfers {
		t.Fatalf("transfers not held by the device")
	}

	addr := func(p *byte) uint64 { return uint64(uintptr(unsafe.Pointer(p))) }
	for i, tc := range []struct {
		tx, rx uint64
		cs     uint8
	}{
		{tx: addr(&dev.tx[0]), rx: 0, cs: 1},
		{tx: addr(&dev.tx[2]), rx: addr(&dev.rx[0]), cs: 0},
	} {
		x := xfers[i]
		if x.txBuf != tc.tx || x.rxBuf != tc.rx {
			t.Fatalf("xfer[%d]: invalid buffers: got=(0x%x, 0x%x), want=(0x%x, 0x%x)", i, x.txBuf, x.rxBuf, tc.tx, tc.rx)
		}
		if got, want := x.len, uint32(2); got != want {
			t.Fatalf("xfer[%d]: invalid length: got=%d, want=%d", i, got, want)
		}
		if got, want := x.speedHz, uint32(2000000); got != want {
			t.Fatalf("xfer[%d]: invalid speed: got=%d, want=%d", i, got, want)
		}
		if got, want := x.csChange, tc.cs; got != want {
			t.Fatalf("xfer[%d]: invalid cs change: got=%d, want=%d", i, got, want)
		}
	}

	if got, want := [4]byte(dev.tx), frame; got != want {
		t.Fatalf("invalid tx buffer: got=% x, want=% x", got, want)
	}

	// descriptors are reused by later frames.
	frame, err = writeFrame(0, 0x1E, 0x01)
	if err != nil {
		t.Fatalf("could not build frame: %+v", err)
	}
	if got := dev.transfers(frame); got != xfers {
		t.Fatalf("transfers reallocated")
	}
	if got, want := [4]byte(dev.tx), frame; got != want {
		t.Fatalf("invalid tx buffer: got=% x, want=% x", got, want)
	}
}

func TestSPIClosed(t *testing.T) {
	dev := newSPI(nil, "spidev-test", DefaultSPISpeed)
	_, err := dev.xfer([4]byte{})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("invalid error: got=%v, want=%v", err, ErrClosed)
	}
}
