// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-lpc/proslic/slic/internal/regs"
	"github.com/go-lpc/proslic/slic/slicsim"
)

func newTestBlob() Blob {
	return Blob{
		ID:       0x5a,
		Data:     []uint32{0x1234, 0x0ABCDE, 0x1FFFFFFF},
		RegJumps: make([]uint8, regs.NumJumpRegs),
	}
}

func TestSi3228xSetup(t *testing.T) {
	chip := slicsim.New(Si3228xID, 2)
	blob := newTestBlob()
	dev := NewSi3228x(chip, testOptions(WithBlob(blob))...)

	err := dev.Setup()
	if err != nil {
		t.Fatalf("could not setup device: %+v", err)
	}

	if got, want := dev.NumChannels(), 2; got != want {
		t.Fatalf("invalid number of channels: got=%d, want=%d", got, want)
	}
	if got, want := chip.Resets(), 1; got != want {
		t.Fatalf("invalid number of resets: got=%d, want=%d", got, want)
	}
	if got, want := chip.Patch(), blob.Data; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid patch memory:\ngot= %x\nwant=%x", got, want)
	}

	for ch := uint8(0); ch < 2; ch++ {
		for _, tc := range []struct {
			reg  uint8
			want uint8
		}{
			{regs.ENHANCE, 0x10},
			{regs.AUTO, 0x3F},
			{regs.ZCAL_EN, 0x04},
			{regs.JMPEN, 0x01},
			{regs.PDN, 0x80},
			{regs.MSTRSTAT, 0xFF},
		} {
			if got := chip.Register(ch, tc.reg); got != tc.want {
				t.Fatalf("invalid %s (ch=%d): got=0x%x, want=0x%x", regs.Name(tc.reg), ch, got, tc.want)
			}
		}
		for _, kv := range si3228xGeneral3 {
			if got := chip.RAM(ch, kv.Addr); got != kv.Value {
				t.Fatalf("invalid RAM 0x%x (ch=%d): got=0x%x, want=0x%x", kv.Addr, ch, got, kv.Value)
			}
		}
	}
}

func TestSi3228xSetupNoBlob(t *testing.T) {
	chip := slicsim.New(Si3228xID, 1)
	dev := NewSi3228x(chip, testOptions()...)

	err := dev.Setup()
	if err != nil {
		t.Fatalf("could not setup device: %+v", err)
	}
	if len(chip.Patch()) != 0 {
		t.Fatalf("unexpected patch upload")
	}
}

func TestSi3228xSetupErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		nchan int
		chip  func(chip *slicsim.Chip)
		blob  Blob
		want  error
	}{
		{
			name:  "no-channel",
			nchan: 0,
			blob:  newTestBlob(),
		},
		{
			name:  "blob-verify",
			nchan: 2,
			chip:  func(chip *slicsim.Chip) { chip.Corrupt = 2 },
			blob:  newTestBlob(),
			want:  ErrBlobVerify,
		},
		{
			name:  "blob-invalid",
			nchan: 2,
			blob:  Blob{ID: 1},
			want:  ErrBlobInvalid,
		},
		{
			name:  "calibration",
			nchan: 2,
			chip:  func(chip *slicsim.Chip) { chip.CalStuck = true },
			blob:  newTestBlob(),
			want:  ErrTimeout,
		},
		{
			name:  "ram",
			nchan: 2,
			chip:  func(chip *slicsim.Chip) { chip.RAMStuck = true },
			blob:  newTestBlob(),
			want:  ErrTimeout,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			chip := slicsim.New(Si3228xID, tc.nchan)
			if tc.chip != nil {
				tc.chip(chip)
			}
			dev := NewSi3228x(chip, testOptions(WithBlob(tc.blob))...)
			err := dev.Setup()
			if !errors.Is(err, ErrInit) {
				t.Fatalf("invalid error: got=%v, want=%v", err, ErrInit)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("invalid error: got=%v, want=%v", err, tc.want)
			}
		})
	}
}

func TestSi3228xChannelConfig(t *testing.T) {
	chip := slicsim.New(Si3228xID, 2)
	dev := NewSi3228x(chip, testOptions()...)
	err := dev.Setup()
	if err != nil {
		t.Fatalf("could not setup device: %+v", err)
	}

	const ch = 1
	chip.SetRegister(ch, regs.LINEFEED, 0x11)

	for _, f := range []func() error{
		func() error { return dev.ConfigureDCFeed(ch) },
		func() error { return dev.ConfigureRinger(ch) },
		func() error { return dev.ConfigureZsynth(ch, TBR21) },
		func() error { return dev.ConfigurePCM(ch, PCMULaw) },
	} {
		if err := f(); err != nil {
			t.Fatalf("could not configure channel: %+v", err)
		}
	}

	if got, want := chip.Register(ch, regs.LINEFEED)&0x0F, uint8(LinefeedIdle); got != want {
		t.Fatalf("linefeed not restored: got=0x%x, want=0x%x", got, want)
	}
	if got, want := chip.Register(ch, regs.PCMMODE), uint8(PCMULaw); got != want {
		t.Fatalf("invalid PCM mode: got=0x%x, want=0x%x", got, want)
	}
	if got, want := chip.Register(ch, regs.RA), uint8(0xB4); got != want {
		t.Fatalf("invalid RA: got=0x%x, want=0x%x", got, want)
	}
	for _, tbl := range [][]RAMValue{si3228xDCFeed, si3228xRinger3, si3228xPCM} {
		for _, kv := range tbl {
			if got := chip.RAM(ch, kv.Addr); got != kv.Value {
				t.Fatalf("invalid RAM 0x%x: got=0x%x, want=0x%x", kv.Addr, got, kv.Value)
			}
		}
	}

	err = dev.EnableIRQ(ch)
	if err != nil {
		t.Fatalf("could not enable IRQs: %+v", err)
	}
	for i, want := range []uint8{0x50, 0x13, 0x07, 0x00} {
		if got := chip.Register(ch, regs.IRQEN1+uint8(i)); got != want {
			t.Fatalf("invalid IRQEN%d: got=0x%x, want=0x%x", i+1, got, want)
		}
	}
	err = dev.DisableIRQ(ch)
	if err != nil {
		t.Fatalf("could not disable IRQs: %+v", err)
	}
	for i := 0; i < 4; i++ {
		if got := chip.Register(ch, regs.IRQEN1+uint8(i)); got != 0 {
			t.Fatalf("IRQEN%d not cleared: 0x%x", i+1, got)
		}
	}
}

func TestSi3228xLinefeedRestored(t *testing.T) {
	errBoom := errors.New("boom")
	errBus := errors.New("bus error")

	for _, tc := range []struct {
		name    string
		failLF  bool
		want    []error
		restore bool
	}{
		{name: "ok", restore: true},
		{name: "failure", want: []error{errBoom}, restore: true},
		{name: "restore-failure", failLF: true, want: []error{errBoom, errBus}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			chip := slicsim.New(Si3228xID, 1)
			chip.SetRegister(0, regs.LINEFEED, 0x11)
			if tc.failLF {
				chip.FailWrite = func(ch, reg, v uint8) error {
					if reg == regs.LINEFEED && v != 0 {
						return errBus
					}
					return nil
				}
			}
			dev := NewSi3228x(chip, testOptions()...)

			var open uint8
			err := dev.withLinefeedOpen(0, func() error {
				open = chip.Register(0, regs.LINEFEED) & 0x0F
				if tc.want != nil {
					return errBoom
				}
				return nil
			})
			for _, want := range tc.want {
				if !errors.Is(err, want) {
					t.Fatalf("invalid error: got=%v, want=%v", err, want)
				}
			}
			if tc.want == nil && err != nil {
				t.Fatalf("could not run with linefeed open: %+v", err)
			}

			if open != 0 {
				t.Fatalf("linefeed not open: got=0x%x", open)
			}
			want := uint8(0)
			if tc.restore {
				want = 0x01
			}
			if got := chip.Register(0, regs.LINEFEED) & 0x0F; got != want {
				t.Fatalf("invalid linefeed: got=0x%x, want=0x%x", got, want)
			}
		})
	}
}

func TestSi3228xDCDC(t *testing.T) {
	for _, tc := range []struct {
		name   string
		target uint32
		vbat   uint32
		ok     bool
	}{
		{name: "powered", target: 0x3d70a20, vbat: 0x3d70a20, ok: true},
		{name: "short", target: 0x3d70a20, vbat: 0x100},
		{name: "negative", target: 0x3d70a20, vbat: 0x1FFFFF00},
	} {
		t.Run(tc.name, func(t *testing.T) {
			chip := slicsim.New(Si3228xID, 1)
			dev := NewSi3228x(chip, testOptions()...)
			_, err := dev.Probe()
			if err != nil {
				t.Fatalf("could not probe: %+v", err)
			}
			chip.SetRAM(0, regs.RAM_DCDC_CTRL, 0x100000)
			chip.SetRAM(0, regs.RAM_VBAT_TARGET, tc.target)
			chip.SetRAM(0, regs.RAM_MADC_VBAT, tc.vbat)

			err = dev.enableDCDC(0)
			switch {
			case tc.ok && err != nil:
				t.Fatalf("could not enable DC-DC: %+v", err)
			case !tc.ok && err == nil:
				t.Fatalf("expected an error")
			}
			if tc.ok {
				if got, want := chip.RAM(0, regs.RAM_DCDC_CTRL), uint32(0x400000); got != want {
					t.Fatalf("invalid DC-DC control: got=0x%x, want=0x%x", got, want)
				}
				return
			}
			if got, want := chip.RAM(0, regs.RAM_DCDC_CTRL), uint32(0x300000); got != want {
				t.Fatalf("DC-DC not shut down: got=0x%x, want=0x%x", got, want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	chip := slicsim.New(Si3228xID, 2)
	drv, err := Open(chip, testOptions()...)
	if err != nil {
		t.Fatalf("could not open device: %+v", err)
	}
	if _, ok := drv.(*Si3228x); !ok {
		t.Fatalf("invalid driver type %T", drv)
	}
	if got, want := drv.Name(), "si3228x"; got != want {
		t.Fatalf("invalid driver name: got=%q, want=%q", got, want)
	}

	_, err = Open(slicsim.New(0x42, 2), testOptions()...)
	if !errors.Is(err, ErrInit) {
		t.Fatalf("invalid error: got=%v, want=%v", err, ErrInit)
	}

	_, err = Open(slicsim.New(Si3228xID, 0), testOptions()...)
	if !errors.Is(err, ErrInit) {
		t.Fatalf("invalid error: got=%v, want=%v", err, ErrInit)
	}
}

func TestDummy(t *testing.T) {
	chip := slicsim.New(Si3228xID, 2)
	dev := NewDummy(chip, testOptions()...)
	err := dev.Setup()
	if err != nil {
		t.Fatalf("could not setup dummy: %+v", err)
	}
	if got, want := dev.NumChannels(), 2; got != want {
		t.Fatalf("invalid number of channels: got=%d, want=%d", got, want)
	}
	if err := dev.Configure(0); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("invalid error: got=%v, want=%v", err, ErrNotSupported)
	}
}
