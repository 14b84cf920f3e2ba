// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/go-lpc/proslic/slic/internal/regs"
	"github.com/go-lpc/proslic/slic/slicsim"
)

func TestRAMRoundTrip(t *testing.T) {
	chip := slicsim.New(Si3228xID, 2)
	chip.RAMBusy = 3
	eng := NewEngine(chip, testOptions()...)

	rnd := rand.New(rand.NewSource(1234))
	for i := 0; i < 500; i++ {
		var (
			ch   = uint8(rnd.Intn(2))
			addr = uint16(rnd.Intn(0x800))
			v    = rnd.Uint32() & ramMask
		)
		if addr == regs.RAM_BLOB_DATA || addr == regs.RAM_BLOB_DATA_PTR {
			continue
		}
		err := eng.WriteRAM(ch, addr, v)
		if err != nil {
			t.Fatalf("could not write RAM 0x%03x: %+v", addr, err)
		}
		got, err := eng.ReadRAM(ch, addr)
		if err != nil {
			t.Fatalf("could not read RAM 0x%03x: %+v", addr, err)
		}
		if got != v {
			t.Fatalf("invalid RAM round-trip at 0x%03x: got=0x%08x, want=0x%08x", addr, got, v)
		}
	}
}

func TestRAMLanes(t *testing.T) {
	for _, v := range []uint32{
		0x0,
		0x1FFFFFFF,
		0x1,
		0x1F,         // lane 0 only
		0x20,         // first bit of lane 1
		0x1FE0,       // lane 1 only
		0x2000,       // first bit of lane 2
		0x1FE000,     // lane 2 only
		0x200000,     // first bit of lane 3
		0x1FE00000,   // lane 3 only
		0x15555555,   // alternating bits
		0x0AAAAAAA,   // alternating bits
		0x00100FE0 | 1,
	} {
		t.Run(fmt.Sprintf("0x%08x", v), func(t *testing.T) {
			tr := new(regTransport)
			tr.regs[regs.RAM_D0] = uint8(v << 3)
			tr.regs[regs.RAM_D1] = uint8(v >> 5)
			tr.regs[regs.RAM_D2] = uint8(v >> 13)
			tr.regs[regs.RAM_D3] = uint8(v >> 21)

			eng := NewEngine(tr, testOptions()...)
			got, err := eng.ReadRAM(1, 0x63D)
			if err != nil {
				t.Fatalf("could not read RAM: %+v", err)
			}
			if got != v {
				t.Fatalf("invalid RAM value: got=0x%08x, want=0x%08x", got, v)
			}

			want := []slicsim.Access{
				{Chan: 1, Reg: regs.RAM_STAT},
				{Write: true, Chan: 1, Reg: regs.RAM_ADDR_HI, Value: 0xC0},
				{Write: true, Chan: 1, Reg: regs.RAM_ADDR_LO, Value: 0x3D},
				{Chan: 1, Reg: regs.RAM_STAT},
				{Chan: 1, Reg: regs.RAM_D3, Value: tr.regs[regs.RAM_D3]},
				{Chan: 1, Reg: regs.RAM_D2, Value: tr.regs[regs.RAM_D2]},
				{Chan: 1, Reg: regs.RAM_D1, Value: tr.regs[regs.RAM_D1]},
				{Chan: 1, Reg: regs.RAM_D0, Value: tr.regs[regs.RAM_D0]},
			}
			if !reflect.DeepEqual(tr.log, want) {
				t.Fatalf("invalid read sequence:\ngot= %v\nwant=%v", tr.log, want)
			}
		})
	}
}

func TestWriteRAMSequence(t *testing.T) {
	tr := new(regTransport)
	eng := NewEngine(tr, testOptions()...)

	var v uint32 = 0x1ABCDEF5
	err := eng.WriteRAM(0, 0x1C0, v)
	if err != nil {
		t.Fatalf("could not write RAM: %+v", err)
	}

	want := []slicsim.Access{
		{Chan: 0, Reg: regs.RAM_STAT},
		{Write: true, Reg: regs.RAM_ADDR_HI, Value: 0x20},
		{Write: true, Reg: regs.RAM_D0, Value: uint8(v << 3)},
		{Write: true, Reg: regs.RAM_D1, Value: uint8(v >> 5)},
		{Write: true, Reg: regs.RAM_D2, Value: uint8(v >> 13)},
		{Write: true, Reg: regs.RAM_D3, Value: uint8(v >> 21)},
		{Write: true, Reg: regs.RAM_ADDR_LO, Value: 0xC0},
		{Chan: 0, Reg: regs.RAM_STAT},
	}
	if !reflect.DeepEqual(tr.log, want) {
		t.Fatalf("invalid write sequence:\ngot= %v\nwant=%v", tr.log, want)
	}
}

func TestRAMTimeout(t *testing.T) {
	for _, tc := range []struct {
		name    string
		retries int
		op      func(eng *Engine) error
	}{
		{
			name:    "write",
			retries: Retries,
			op:      func(eng *Engine) error { return eng.WriteRAM(0, 0x100, 42) },
		},
		{
			name:    "read",
			retries: Retries,
			op: func(eng *Engine) error {
				_, err := eng.ReadRAM(0, 0x100)
				return err
			},
		},
		{
			name:    "write-3",
			retries: 3,
			op:      func(eng *Engine) error { return eng.WriteRAM(0, 0x100, 42) },
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			chip := slicsim.New(Si3228xID, 1)
			chip.RAMStuck = true

			var sleeps int
			eng := NewEngine(chip, append(testOptions(),
				WithRetries(tc.retries),
				withSleep(func(time.Duration) { sleeps++ }),
			)...)

			err := tc.op(eng)
			if !errors.Is(err, ErrTimeout) {
				t.Fatalf("invalid error: got=%v, want=%v", err, ErrTimeout)
			}

			polls := 0
			for _, a := range chip.Log() {
				if a.Reg == regs.RAM_STAT {
					polls++
				}
			}
			if got, want := polls, tc.retries; got != want {
				t.Fatalf("invalid number of polls: got=%d, want=%d", got, want)
			}
			if got, want := sleeps, tc.retries-1; got != want {
				t.Fatalf("invalid number of sleeps: got=%d, want=%d", got, want)
			}
			if got := chip.Writes(); got != 0 {
				t.Fatalf("unexpected register writes: %d", got)
			}
		})
	}
}

func TestRAMBusy(t *testing.T) {
	chip := slicsim.New(Si3228xID, 1)
	chip.RAMBusy = Retries - 1
	eng := NewEngine(chip, testOptions()...)

	err := eng.WriteRAM(0, 0x200, 0x1234)
	if err != nil {
		t.Fatalf("could not write RAM: %+v", err)
	}
	v, err := eng.ReadRAM(0, 0x200)
	if err != nil {
		t.Fatalf("could not read RAM: %+v", err)
	}
	if v != 0x1234 {
		t.Fatalf("invalid RAM value: got=0x%x, want=0x%x", v, 0x1234)
	}
}

func TestCommunicationError(t *testing.T) {
	boom := errors.New("boom")
	tr := &regTransport{err: boom}
	eng := NewEngine(tr, testOptions()...)

	for _, tc := range []struct {
		name string
		op   func() error
	}{
		{"read-reg", func() error { _, err := eng.ReadRegister(0, regs.ID); return err }},
		{"write-reg", func() error { return eng.WriteRegister(0, regs.ID, 1) }},
		{"read-ram", func() error { _, err := eng.ReadRAM(0, 1); return err }},
		{"write-ram", func() error { return eng.WriteRAM(0, 1, 1) }},
		{"reset", func() error { return eng.Reset() }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op()
			if !errors.Is(err, ErrCommunication) {
				t.Fatalf("invalid error: got=%v, want=%v", err, ErrCommunication)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("cause not wrapped: %v", err)
			}
		})
	}
}
