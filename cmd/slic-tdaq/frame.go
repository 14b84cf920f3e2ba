// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-lpc/proslic/fxs"
)

// hookFrame is the payload of the /hook output port.
type hookFrame struct {
	Line  int    `cbor:"line"`
	Kind  string `cbor:"kind"`
	Digit int    `cbor:"digit,omitempty"`
	At    int64  `cbor:"at"` // UNIX time, in ns
}

func encodeHook(evt fxs.HookEvent) ([]byte, error) {
	raw, err := cbor.Marshal(hookFrame{
		Line:  evt.Line,
		Kind:  evt.Kind.String(),
		Digit: evt.Digit,
		At:    evt.At.UnixNano(),
	})
	if err != nil {
		return nil, fmt.Errorf("could not encode hook event %v: %w", evt, err)
	}
	return raw, nil
}

func decodeHook(raw []byte) (hookFrame, error) {
	var frame hookFrame
	err := cbor.Unmarshal(raw, &frame)
	if err != nil {
		return frame, fmt.Errorf("could not decode hook frame: %w", err)
	}
	return frame, nil
}

func (f hookFrame) time() time.Time { return time.Unix(0, f.At) }

// ringFrame is the payload of the /ring and /stop-ring input ports.
// A negative line addresses every line.
type ringFrame struct {
	Line int    `cbor:"line"`
	CID  string `cbor:"cid,omitempty"`
}

func decodeRing(raw []byte) (ringFrame, error) {
	var frame ringFrame
	err := cbor.Unmarshal(raw, &frame)
	if err != nil {
		return frame, fmt.Errorf("could not decode ring request: %w", err)
	}
	return frame, nil
}
