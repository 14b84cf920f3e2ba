// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-lpc/proslic/slic/internal/regs"
	"github.com/go-lpc/proslic/slic/slicsim"
)

func testOptions(opts ...Option) []Option {
	return append([]Option{
		WithLogger(log.New(io.Discard, "slic: ", 0)),
		withSleep(func(time.Duration) {}),
	}, opts...)
}

func newTestDevice(t *testing.T, chip *slicsim.Chip, opts ...Option) *Device {
	t.Helper()
	dev := newDevice("test", chip, testOptions(opts...)...)
	_, err := dev.Probe()
	if err != nil {
		t.Fatalf("could not probe device: %+v", err)
	}
	chip.ResetLog()
	return dev
}

// regTransport is a bare register file with an always-ready RAM status.
type regTransport struct {
	regs [256]uint8
	log  []slicsim.Access
	err  error
}

func (tr *regTransport) ReadRegister(ch, reg uint8) (uint8, error) {
	if tr.err != nil {
		return 0, tr.err
	}
	v := tr.regs[reg]
	if reg == regs.RAM_STAT {
		v = 0
	}
	tr.log = append(tr.log, slicsim.Access{Chan: ch, Reg: reg, Value: v})
	return v, nil
}

func (tr *regTransport) WriteRegister(ch, reg, v uint8) error {
	if tr.err != nil {
		return tr.err
	}
	tr.log = append(tr.log, slicsim.Access{Write: true, Chan: ch, Reg: reg, Value: v})
	return nil
}

func (tr *regTransport) Reset() error { return tr.err }
func (tr *regTransport) Close() error { return nil }

func TestParseEnums(t *testing.T) {
	for _, tc := range []struct {
		name string
		f    func() (fmt.Stringer, error)
		want string
		err  bool
	}{
		{
			name: "tbr21",
			f: func() (fmt.Stringer, error) { return ParseLineTermination("tbr21") },
			want: "TBR21",
		},
		{
			name: "bad-termination",
			f: func() (fmt.Stringer, error) { return ParseLineTermination("EIA") },
			err:  true,
		},
		{
			name: "loopback",
			f: func() (fmt.Stringer, error) { return ParseLoopbackMode("LOOPBACK_B") },
			want: "loopback_b",
		},
		{
			name: "bad-loopback",
			f: func() (fmt.Stringer, error) { return ParseLoopbackMode("c") },
			err:  true,
		},
		{
			name: "ulaw",
			f: func() (fmt.Stringer, error) { return ParsePCMFormat("ulaw") },
			want: "ulaw",
		},
		{
			name: "bad-pcm",
			f: func() (fmt.Stringer, error) { return ParsePCMFormat("g722") },
			err:  true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.f()
			switch {
			case tc.err && err == nil:
				t.Fatalf("expected an error")
			case tc.err:
				return
			case err != nil:
				t.Fatalf("could not parse: %+v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("invalid value: got=%q, want=%q", got, tc.want)
			}
		})
	}
}
