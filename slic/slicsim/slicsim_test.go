// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slicsim

import (
	"testing"

	"github.com/go-lpc/proslic/slic/internal/regs"
)

func TestAbsentChannel(t *testing.T) {
	c := New(0xCB, 1)
	for _, ch := range []uint8{1, 2} {
		v, err := c.ReadRegister(ch, regs.ID)
		if err != nil {
			t.Fatalf("could not read ID: %+v", err)
		}
		if v != 0xFF {
			t.Fatalf("invalid ID of absent channel %d: 0x%x", ch, v)
		}
	}
}

func TestResetLatchesIRQ(t *testing.T) {
	c := New(0xCB, 2)
	if err := c.Reset(); err != nil {
		t.Fatalf("could not reset: %+v", err)
	}
	v, err := c.ReadRegister(1, regs.IRQ0)
	if err != nil {
		t.Fatalf("could not read IRQ0: %+v", err)
	}
	if want := uint8(0x44); v != want {
		t.Fatalf("invalid IRQ0: got=0x%x, want=0x%x", v, want)
	}
	v, _ = c.ReadRegister(0, regs.IRQ0)
	if v != 0 {
		t.Fatalf("IRQ0 not cleared on read: 0x%x", v)
	}
}

func TestLinefeedSettling(t *testing.T) {
	c := New(0xCB, 1)
	c.Settle = 2

	if err := c.WriteRegister(0, regs.LINEFEED, 0x04); err != nil {
		t.Fatalf("could not write linefeed: %+v", err)
	}
	for i, want := range []uint8{0x04, 0x04, 0x44, 0x44} {
		v, _ := c.ReadRegister(0, regs.LINEFEED)
		if v != want {
			t.Fatalf("read %d: invalid linefeed: got=0x%x, want=0x%x", i, v, want)
		}
	}
}

func TestSetOffHook(t *testing.T) {
	c := New(0xCB, 2)
	c.SetOffHook(1, true)
	if got, want := c.Register(1, regs.LCRRTP), uint8(0x02); got != want {
		t.Fatalf("invalid LCRRTP: got=0x%x, want=0x%x", got, want)
	}
	if got, want := c.Register(0, regs.IRQ0), uint8(0x20); got != want {
		t.Fatalf("invalid IRQ0: got=0x%x, want=0x%x", got, want)
	}
	if got, want := c.Register(1, regs.IRQ2), uint8(regs.IRQ2_LOOP_STATUS); got != want {
		t.Fatalf("invalid IRQ2: got=0x%x, want=0x%x", got, want)
	}

	// no change, no interrupt.
	c.SetRegister(0, regs.IRQ0, 0)
	c.SetOffHook(1, true)
	if got := c.Register(0, regs.IRQ0); got != 0 {
		t.Fatalf("spurious interrupt: 0x%x", got)
	}
}

func TestClosed(t *testing.T) {
	c := New(0xCB, 1)
	_ = c.Close()
	if _, err := c.ReadRegister(0, regs.ID); err == nil {
		t.Fatalf("expected an error")
	}
	if err := c.WriteRegister(0, regs.ID, 0); err == nil {
		t.Fatalf("expected an error")
	}
}
