// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-lpc/proslic/config"
	"github.com/go-lpc/proslic/slic"
	"github.com/go-lpc/proslic/slic/slicsim"
)

const trace = `OPCODE,CHANNEL,REG,RAM_ADDR,RAW_DATA
# patch the line
WRITE,0,0x26,,0x5a
READ,0,0x26,,0x5a
RAM-WRITE,1,,0x5a3,0x1234567
RAM-READ,1,,5a3,01234567
WRITE,1,27,,ff
`

func TestParseTrace(t *testing.T) {
	ops, err := parseTrace(strings.NewReader(trace))
	if err != nil {
		t.Fatalf("could not parse trace: %+v", err)
	}

	want := []op{
		{line: 3, code: opWrite, ch: 0, reg: 0x26, data: 0x5a},
		{line: 4, code: opRead, ch: 0, reg: 0x26, data: 0x5a},
		{line: 5, code: opRAMWrite, ch: 1, addr: 0x5a3, data: 0x1234567},
		{line: 6, code: opRAMRead, ch: 1, addr: 0x5a3, data: 0x1234567},
		{line: 7, code: opWrite, ch: 1, reg: 0x27, data: 0xff},
	}
	if got, want := len(ops), len(want); got != want {
		t.Fatalf("invalid number of ops: got=%d, want=%d", got, want)
	}
	for i := range ops {
		if got, want := ops[i], want[i]; got != want {
			t.Fatalf("op[%d]: got=%+v, want=%+v", i, got, want)
		}
	}
}

func TestParseTraceColumns(t *testing.T) {
	const raw = "raw_data, reg, channel, opcode, ram_addr\n0x11,0x30,1,read,\n"
	ops, err := parseTrace(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("could not parse trace: %+v", err)
	}
	want := op{line: 2, code: opRead, ch: 1, reg: 0x30, data: 0x11}
	if len(ops) != 1 || ops[0] != want {
		t.Fatalf("invalid ops: got=%+v, want=%+v", ops, want)
	}
}

func TestParseTraceErrors(t *testing.T) {
	const hdr = "OPCODE,CHANNEL,REG,RAM_ADDR,RAW_DATA\n"
	for _, tc := range []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "empty trace"},
		{"missing-column", "OPCODE,CHANNEL,REG,RAW_DATA\n", `could not find column "RAM_ADDR"`},
		{"opcode", hdr + "POKE,0,0x10,,0x00\n", `invalid opcode "POKE"`},
		{"channel", hdr + "READ,x,0x10,,0x00\n", `invalid channel "x"`},
		{"register", hdr + "READ,0,0x100,,0x00\n", `invalid register "0x100"`},
		{"ram-addr", hdr + "RAM-READ,0,,,0x00\n", `invalid RAM address ""`},
		{"data", hdr + "WRITE,0,0x10,,0x1ff\n", `invalid data "0x1ff"`},
		{"line", hdr + "WRITE,0,0x10,,0x01\nREAD,0,zz,,0x01\n", "trace line 3"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseTrace(strings.NewReader(tc.raw))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got := err.Error(); !strings.Contains(got, tc.want) {
				t.Fatalf("invalid error:\ngot= %q\nwant=%q", got, tc.want)
			}
		})
	}
}

func TestReplay(t *testing.T) {
	ops, err := parseTrace(strings.NewReader(trace))
	if err != nil {
		t.Fatalf("could not parse trace: %+v", err)
	}

	chip := slicsim.New(slic.Si3228xID, 2)
	eng := slic.NewEngine(chip)
	defer eng.Close()

	out := new(strings.Builder)
	n, err := replay(eng, ops, out, false)
	if err != nil {
		t.Fatalf("could not replay trace: %+v", err)
	}
	if n != 0 {
		t.Fatalf("unexpected mismatches: %d\n%s", n, out)
	}

	if got, want := chip.Register(1, 0x27), uint8(0xff); got != want {
		t.Fatalf("invalid register: got=0x%02x, want=0x%02x", got, want)
	}
	if got, want := chip.RAM(1, 0x5a3), uint32(0x1234567); got != want {
		t.Fatalf("invalid RAM: got=0x%x, want=0x%x", got, want)
	}
}

func TestReplayMismatch(t *testing.T) {
	const raw = `OPCODE,CHANNEL,REG,RAM_ADDR,RAW_DATA
READ,0,0x26,,0x5a
RAM-READ,0,,0x10,0x42
READ,0,0x27,,0x00
`
	ops, err := parseTrace(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("could not parse trace: %+v", err)
	}

	chip := slicsim.New(slic.Si3228xID, 1)
	chip.SetRegister(0, 0x26, 0x11)
	chip.SetRAM(0, 0x10, 0x43)

	out := new(strings.Builder)
	n, err := replay(slic.NewEngine(chip), ops, out, false)
	if err != nil {
		t.Fatalf("could not replay trace: %+v", err)
	}
	if got, want := n, 2; got != want {
		t.Fatalf("invalid number of mismatches: got=%d, want=%d", got, want)
	}
	for _, want := range []string{
		"line 2: register 0x26 (ch=0): got=0x11, want=0x5a",
		"line 3: RAM 0x010 (ch=0): got=0x00000043, want=0x00000042",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing report %q in:\n%s", want, out)
		}
	}
}

func TestReplayError(t *testing.T) {
	ops, err := parseTrace(strings.NewReader(trace))
	if err != nil {
		t.Fatalf("could not parse trace: %+v", err)
	}

	errBus := errors.New("bus error")
	chip := slicsim.New(slic.Si3228xID, 2)
	chip.FailRead = func(ch, reg uint8) error { return errBus }

	_, err = replay(slic.NewEngine(chip), ops, new(strings.Builder), false)
	if !errors.Is(err, errBus) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, errBus)
	}
	if got, want := err.Error(), "READ (line 4)"; !strings.Contains(got, want) {
		t.Fatalf("invalid error: got=%q, want=%q", got, want)
	}
}

func TestProcess(t *testing.T) {
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "trace.csv")
	err := os.WriteFile(fname, []byte(trace), 0644)
	if err != nil {
		t.Fatalf("could not create trace file: %+v", err)
	}

	n, err := process(fname, config.Device{Transport: "sim"}, true, true)
	if err != nil {
		t.Fatalf("could not process trace: %+v", err)
	}
	if n != 0 {
		t.Fatalf("unexpected mismatches: %d", n)
	}

	_, err = process(filepath.Join(tmp, "missing.csv"), config.Device{Transport: "sim"}, false, false)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, os.ErrNotExist)
	}
}
