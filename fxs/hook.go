// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fxs

import (
	"fmt"
	"time"

	"github.com/go-lpc/proslic/slic"
)

// HookConfig holds the hook debouncing thresholds.
type HookConfig struct {
	MinHookTimeout time.Duration // hook level held longer than this is stable
	MinDigit       time.Duration
	MaxDigit       time.Duration
	MinFlash       time.Duration
	MaxFlash       time.Duration
	MinInterDigit  time.Duration // pause closing a pulse train
}

// DefaultHookConfig returns the thresholds of a standard rotary dial.
func DefaultHookConfig() HookConfig {
	return HookConfig{
		MinHookTimeout: 850 * time.Millisecond,
		MinDigit:       20 * time.Millisecond,
		MaxDigit:       80 * time.Millisecond,
		MinFlash:       100 * time.Millisecond,
		MaxFlash:       800 * time.Millisecond,
		MinInterDigit:  90 * time.Millisecond,
	}
}

// EventKind is the kind of a hook event.
type EventKind uint8

const (
	HookFlash EventKind = iota + 1
	PulseDigit
	OnHookTimeout
	OffHookTimeout
)

func (k EventKind) String() string {
	switch k {
	case HookFlash:
		return "HOOKFLASH"
	case PulseDigit:
		return "PULSE_DIGIT"
	case OnHookTimeout:
		return "ONHOOK_TIMEOUT"
	case OffHookTimeout:
		return "OFFHOOK_TIMEOUT"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// HookEvent is a debounced hook event.
type HookEvent struct {
	Line  int       // index of the line the event happened on
	Kind  EventKind
	Digit int       // number of pulses, for PulseDigit events
	At    time.Time
}

func (evt HookEvent) String() string {
	if evt.Kind == PulseDigit {
		return fmt.Sprintf("line=%d %v(%d)", evt.Line, evt.Kind, evt.Digit)
	}
	return fmt.Sprintf("line=%d %v", evt.Line, evt.Kind)
}

// Detector classifies timestamped hook level samples into pulse digits,
// hook flashes and stable on/off-hook timeouts.
//
// Detector is not safe for concurrent use.
type Detector struct {
	cfg HookConfig

	state    slic.HookState
	last     time.Time // last transition
	pulses   int
	awaiting bool
}

// NewDetector returns a detector using the provided thresholds.
func NewDetector(cfg HookConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Setup seeds the detector with the current hook level.
func (det *Detector) Setup(state slic.HookState, now time.Time) {
	det.state = state
	det.last = now
	det.reset()
}

// State returns the last known hook level.
func (det *Detector) State() slic.HookState { return det.state }

// Sample feeds a hook level sample to the detector.
// Only a hook flash is reported immediately; digits and timeouts are
// reported by Check.
func (det *Detector) Sample(now time.Time, state slic.HookState) (HookEvent, bool) {
	if state == det.state {
		return HookEvent{}, false
	}

	delta := now.Sub(det.last)
	det.state = state
	det.last = now
	det.awaiting = true

	if state != slic.OffHook {
		return HookEvent{}, false
	}

	switch {
	case det.cfg.MinFlash <= delta && delta <= det.cfg.MaxFlash:
		det.reset()
		return HookEvent{Kind: HookFlash, At: now}, true
	case det.cfg.MinDigit <= delta && delta <= det.cfg.MaxDigit:
		det.pulses++
	}
	return HookEvent{}, false
}

// Check reports the events triggered by the passing of time.
// It should be called periodically.
func (det *Detector) Check(now time.Time) (HookEvent, bool) {
	if !det.awaiting {
		return HookEvent{}, false
	}

	delta := now.Sub(det.last)
	if delta < det.cfg.MinInterDigit {
		return HookEvent{}, false
	}

	switch {
	case delta > det.cfg.MinHookTimeout:
		kind := OffHookTimeout
		if det.state == slic.OnHook {
			kind = OnHookTimeout
		}
		det.reset()
		return HookEvent{Kind: kind, At: now}, true
	case det.pulses > 0:
		evt := HookEvent{Kind: PulseDigit, Digit: det.pulses, At: now}
		det.reset()
		return evt, true
	}
	return HookEvent{}, false
}

func (det *Detector) reset() {
	det.pulses = 0
	det.awaiting = false
}
