// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regs

import "testing"

func TestName(t *testing.T) {
	for _, tc := range []struct {
		reg  uint8
		want string
	}{
		{ID, "ID"},
		{RAM_ADDR_LO, "RAM_ADDR_LO"},
		{JMP0LO, "JMP0LO"},
		{JMP0LO + 1, "JMP0HI"},
		{JMP0LO + 15, "JMP7HI"},
		{0x70, "REG_0x70"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			if got, want := Name(tc.reg), tc.want; got != want {
				t.Fatalf("invalid name: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestRAMName(t *testing.T) {
	for _, tc := range []struct {
		addr uint16
		want string
	}{
		{RAM_BLOB_ID, "BLOB_ID"},
		{RAM_BLOB_DATA, "BLOB_DATA"},
		{RAM_JMP_TABLE2 + 7, "JMP_TABLE2_7"},
		{0x21c, "RAM_0x21c"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			if got, want := RAMName(tc.addr), tc.want; got != want {
				t.Fatalf("invalid name: got=%q, want=%q", got, want)
			}
		})
	}
}
