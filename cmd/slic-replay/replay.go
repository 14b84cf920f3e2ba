// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/go-lpc/proslic/slic"
)

type opcode uint8

const (
	opWrite opcode = iota
	opRead
	opRAMWrite
	opRAMRead
)

var opcodes = map[string]opcode{
	"WRITE":     opWrite,
	"READ":      opRead,
	"RAM-WRITE": opRAMWrite,
	"RAM-READ":  opRAMRead,
}

func (op opcode) String() string {
	switch op {
	case opWrite:
		return "WRITE"
	case opRead:
		return "READ"
	case opRAMWrite:
		return "RAM-WRITE"
	case opRAMRead:
		return "RAM-READ"
	}
	return fmt.Sprintf("opcode(%d)", uint8(op))
}

// op is a single access of a trace.
type op struct {
	line int // line number in the trace file
	code opcode
	ch   uint8
	reg  uint8
	addr uint16
	data uint32
}

var columns = [...]string{"OPCODE", "CHANNEL", "REG", "RAM_ADDR", "RAW_DATA"}

const (
	colOpcode = iota
	colChannel
	colReg
	colAddr
	colData
)

// parseTrace decodes the CSV trace read from r.
// Columns are located by name from the header row.
func parseTrace(r io.Reader) ([]op, error) {
	rr := csv.NewReader(r)
	rr.Comment = '#'
	rr.FieldsPerRecord = -1
	rr.TrimLeadingSpace = true

	hdr, err := rr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("could not read trace header: empty trace")
		}
		return nil, fmt.Errorf("could not read trace header: %w", err)
	}

	var idx [len(columns)]int
	for i := range idx {
		idx[i] = -1
	}
	for i, name := range hdr {
		name = strings.ToUpper(strings.TrimSpace(name))
		for j, col := range columns {
			if name == col {
				idx[j] = i
			}
		}
	}
	for j, i := range idx {
		if i < 0 {
			return nil, fmt.Errorf("could not find column %q in trace header", columns[j])
		}
	}

	var ops []op
	for {
		rec, err := rr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("could not read trace record: %w", err)
		}
		line, _ := rr.FieldPos(0)
		field := func(j int) string {
			if idx[j] >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx[j]])
		}

		o, err := parseOp(line, field)
		if err != nil {
			return nil, fmt.Errorf("could not parse trace line %d: %w", line, err)
		}
		ops = append(ops, o)
	}

	return ops, nil
}

func parseOp(line int, field func(int) string) (op, error) {
	o := op{line: line}

	code, ok := opcodes[strings.ToUpper(field(colOpcode))]
	if !ok {
		return o, fmt.Errorf("invalid opcode %q", field(colOpcode))
	}
	o.code = code

	ch, err := strconv.ParseUint(field(colChannel), 10, 8)
	if err != nil {
		return o, fmt.Errorf("invalid channel %q: %w", field(colChannel), err)
	}
	o.ch = uint8(ch)

	switch code {
	case opWrite, opRead:
		v, err := parseHex(field(colReg), 8)
		if err != nil {
			return o, fmt.Errorf("invalid register %q: %w", field(colReg), err)
		}
		o.reg = uint8(v)
	default:
		v, err := parseHex(field(colAddr), 16)
		if err != nil {
			return o, fmt.Errorf("invalid RAM address %q: %w", field(colAddr), err)
		}
		o.addr = uint16(v)
	}

	bits := 8
	if code == opRAMWrite || code == opRAMRead {
		bits = 32
	}
	v, err := parseHex(field(colData), bits)
	if err != nil {
		return o, fmt.Errorf("invalid data %q: %w", field(colData), err)
	}
	o.data = uint32(v)

	return o, nil
}

// parseHex parses a hexadecimal value, with or without its 0x prefix.
func parseHex(s string, bits int) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, bits)
}

// replay performs ops on dev and reports the reads that do not return
// the traced value on w. replay returns the number of such mismatches.
func replay(dev slic.RegisterIO, ops []op, w io.Writer, verbose bool) (int, error) {
	msg := log.New(w, "", 0)
	mismatches := 0
	for _, o := range ops {
		var (
			got uint32
			err error
		)
		switch o.code {
		case opWrite:
			err = dev.WriteRegister(o.ch, o.reg, uint8(o.data))
		case opRead:
			var v uint8
			v, err = dev.ReadRegister(o.ch, o.reg)
			got = uint32(v)
		case opRAMWrite:
			err = dev.WriteRAM(o.ch, o.addr, o.data)
		case opRAMRead:
			got, err = dev.ReadRAM(o.ch, o.addr)
		}
		if err != nil {
			return mismatches, fmt.Errorf("could not replay %v (line %d): %w", o.code, o.line, err)
		}

		if verbose {
			msg.Printf("line %d: %v ch=%d reg=0x%02x addr=0x%03x data=0x%x", o.line, o.code, o.ch, o.reg, o.addr, o.data)
		}

		switch o.code {
		case opRead:
			if got != o.data {
				mismatches++
				msg.Printf("line %d: register 0x%02x (ch=%d): got=0x%02x, want=0x%02x", o.line, o.reg, o.ch, got, o.data)
			}
		case opRAMRead:
			if got != o.data {
				mismatches++
				msg.Printf("line %d: RAM 0x%03x (ch=%d): got=0x%08x, want=0x%08x", o.line, o.addr, o.ch, got, o.data)
			}
		}
	}
	return mismatches, nil
}
