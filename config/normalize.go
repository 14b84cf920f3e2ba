// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"time"

	"github.com/go-lpc/proslic/fxs"
)

// Default values of optional fields.
const (
	DefaultTransport   = "chardev"
	DefaultPath        = "/dev/proslic"
	DefaultIRQPoll     = 50 * time.Millisecond
	DefaultSPISpeed    = 1000000
	DefaultBaud        = 115200
	DefaultCodec       = "pcm"
	DefaultImpedance   = "TBR21"
	DefaultRingPattern = "60(2/4)"
	DefaultLoopback    = "none"
)

// Normalize fills the optional fields left empty with their default
// value. Normalize must be called before Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	for i := range cfg.Devices {
		dev := &cfg.Devices[i]
		if dev.Name == "" {
			dev.Name = fmt.Sprintf("slic%d", i)
		}
		if dev.Transport == "" {
			dev.Transport = DefaultTransport
		}
		if dev.Path == "" && dev.Transport == DefaultTransport {
			dev.Path = DefaultPath
		}
		if dev.IRQ == "" {
			switch dev.Transport {
			case "chardev":
				dev.IRQ = "device"
			default:
				dev.IRQ = "poll"
			}
		}
		if dev.IRQGPIO == nil {
			dev.IRQGPIO = intp(-1)
		}
		if dev.IRQPoll == 0 {
			dev.IRQPoll = DefaultIRQPoll
		}
		if dev.ResetGPIO == nil {
			dev.ResetGPIO = intp(-1)
		}
		if dev.SPISpeed == 0 {
			dev.SPISpeed = DefaultSPISpeed
		}
		if dev.Baud == 0 {
			dev.Baud = DefaultBaud
		}
		if dev.AudioCodec == "" {
			dev.AudioCodec = DefaultCodec
		}
	}

	def := fxs.DefaultHookConfig()
	for i := range cfg.FXS {
		line := &cfg.FXS[i]
		if line.Name == "" {
			line.Name = fmt.Sprintf("line%d", i)
		}
		if line.Impedance == "" {
			line.Impedance = DefaultImpedance
		}
		if line.RingPattern == "" {
			line.RingPattern = DefaultRingPattern
		}
		if line.Loopback == "" {
			line.Loopback = DefaultLoopback
		}

		hook := &line.Hook
		for _, v := range []struct {
			p   *time.Duration
			def time.Duration
		}{
			{&hook.MinHookTimeout, def.MinHookTimeout},
			{&hook.MinDigit, def.MinDigit},
			{&hook.MaxDigit, def.MaxDigit},
			{&hook.MinFlash, def.MinFlash},
			{&hook.MaxFlash, def.MaxFlash},
			{&hook.MinInterDigit, def.MinInterDigit},
		} {
			if *v.p == 0 {
				*v.p = v.def
			}
		}
	}
}

func intp(v int) *int { return &v }
