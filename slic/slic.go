// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slic implements the register and RAM protocol of ProSLIC
// subscriber line interface chips, together with firmware patch loading,
// calibration and interrupt decoding.
package slic // import "github.com/go-lpc/proslic/slic"

import (
	"fmt"
	"strings"
)

const (
	// MaxChannels is the maximum number of channels probed on a device.
	MaxChannels = 2

	// Retries is the default wait-for-ready retry budget.
	Retries = 10

	absentID = 0xFF
)

// Linefeed is a linefeed state code, as written to the LINEFEED register.
type Linefeed uint8

const (
	LinefeedNOP      Linefeed = 0
	LinefeedIdle     Linefeed = 1
	LinefeedRingIdle Linefeed = 2 // between ring bursts
	LinefeedRinging  Linefeed = 4
)

func (lf Linefeed) String() string {
	switch lf {
	case LinefeedNOP:
		return "NOP"
	case LinefeedIdle:
		return "IDLE"
	case LinefeedRingIdle:
		return "RING_IDLE"
	case LinefeedRinging:
		return "RINGING"
	}
	return fmt.Sprintf("Linefeed(%d)", uint8(lf))
}

// HookState describes whether a handset rests on its cradle.
type HookState uint8

const (
	OnHook HookState = iota
	OffHook
)

func (hs HookState) String() string {
	switch hs {
	case OnHook:
		return "on-hook"
	case OffHook:
		return "off-hook"
	}
	return fmt.Sprintf("HookState(%d)", uint8(hs))
}

// LoopbackMode selects the audio loopback path of a channel.
type LoopbackMode uint8

const (
	LoopbackNone LoopbackMode = iota
	LoopbackA
	LoopbackB
)

var loopbackNames = []string{"none", "loopback_a", "loopback_b"}

func (m LoopbackMode) String() string {
	if int(m) < len(loopbackNames) {
		return loopbackNames[m]
	}
	return fmt.Sprintf("LoopbackMode(%d)", uint8(m))
}

// ParseLoopbackMode parses the textual name of a loopback mode.
func ParseLoopbackMode(s string) (LoopbackMode, error) {
	for i, name := range loopbackNames {
		if strings.EqualFold(s, name) {
			return LoopbackMode(i), nil
		}
	}
	return 0, fmt.Errorf("slic: invalid loopback mode %q", s)
}

// LineTermination is the line impedance standard synthesized by a channel.
type LineTermination uint8

const (
	FCC   LineTermination = 0 // North America
	TBR21 LineTermination = 1 // Europe
	BT3   LineTermination = 2 // New Zealand
	TN12  LineTermination = 3 // Australia, South Africa
)

var terminationNames = []string{"FCC", "TBR21", "BT3", "TN12"}

func (lt LineTermination) String() string {
	if int(lt) < len(terminationNames) {
		return terminationNames[lt]
	}
	return fmt.Sprintf("LineTermination(%d)", uint8(lt))
}

// ParseLineTermination parses the textual name of a line termination.
func ParseLineTermination(s string) (LineTermination, error) {
	for i, name := range terminationNames {
		if strings.EqualFold(s, name) {
			return LineTermination(i), nil
		}
	}
	return 0, fmt.Errorf("slic: invalid line termination %q", s)
}

// PCMFormat is the companding format of the PCM highway.
type PCMFormat uint8

const (
	PCMALaw   PCMFormat = 0
	PCMULaw   PCMFormat = 1
	PCMLinear PCMFormat = 3
)

func (f PCMFormat) String() string {
	switch f {
	case PCMALaw:
		return "alaw"
	case PCMULaw:
		return "ulaw"
	case PCMLinear:
		return "pcm"
	}
	return fmt.Sprintf("PCMFormat(%d)", uint8(f))
}

// ParsePCMFormat parses the textual name of a PCM format.
func ParsePCMFormat(s string) (PCMFormat, error) {
	switch strings.ToLower(s) {
	case "alaw":
		return PCMALaw, nil
	case "ulaw":
		return PCMULaw, nil
	case "pcm":
		return PCMLinear, nil
	}
	return 0, fmt.Errorf("slic: invalid PCM format %q", s)
}
