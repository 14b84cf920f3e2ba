// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"

	"github.com/go-lpc/proslic/fxs"
	"github.com/go-lpc/proslic/slic"
)

// Validate checks the configuration is consistent.
// It does not modify the configuration.
func Validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "", "info", "debug":
	default:
		return fmt.Errorf("config: invalid log_level %q", cfg.LogLevel)
	}

	if len(cfg.Devices) == 0 {
		return fmt.Errorf("config: no device")
	}

	names := make(map[string]int, len(cfg.Devices))
	for i, dev := range cfg.Devices {
		if j, dup := names[dev.Name]; dup {
			return fmt.Errorf("config: devices %d and %d share the name %q", j, i, dev.Name)
		}
		names[dev.Name] = i

		err := validateDevice(dev)
		if err != nil {
			return fmt.Errorf("config: device %q: %w", dev.Name, err)
		}
	}

	slots := make(map[int]string, len(cfg.FXS))
	for _, line := range cfg.FXS {
		if prev, dup := slots[line.AudioSlot]; dup {
			return fmt.Errorf("config: lines %q and %q share PCM timeslot %d", prev, line.Name, line.AudioSlot)
		}
		slots[line.AudioSlot] = line.Name

		err := validateLine(line)
		if err != nil {
			return fmt.Errorf("config: line %q: %w", line.Name, err)
		}
	}
	return nil
}

func validateDevice(dev Device) error {
	switch dev.Transport {
	case "chardev", "sim":
	case "spidev", "bridge":
		if dev.Path == "" {
			return fmt.Errorf("%s transport requires a path", dev.Transport)
		}
	default:
		return fmt.Errorf("invalid transport %q", dev.Transport)
	}

	switch dev.IRQ {
	case "none":
	case "device":
		if dev.Transport != "chardev" {
			return fmt.Errorf("irq %q requires the chardev transport", dev.IRQ)
		}
	case "gpio":
		if dev.IRQLine() < 0 {
			return fmt.Errorf("irq %q requires irq_gpio", dev.IRQ)
		}
	case "poll":
		if dev.IRQPoll <= 0 {
			return fmt.Errorf("invalid irq_poll period %v", dev.IRQPoll)
		}
	default:
		return fmt.Errorf("invalid irq mode %q", dev.IRQ)
	}

	if dev.Baud < 0 {
		return fmt.Errorf("invalid baud rate %d", dev.Baud)
	}

	_, err := dev.Codec()
	if err != nil {
		return err
	}
	return nil
}

func validateLine(line FXS) error {
	if line.AudioSlot < 0 || line.AudioSlot > 63 {
		return fmt.Errorf("invalid audio_slot %d", line.AudioSlot)
	}
	_, err := slic.ParseLineTermination(line.Impedance)
	if err != nil {
		return err
	}
	_, err = slic.ParseLoopbackMode(line.Loopback)
	if err != nil {
		return err
	}
	_, err = fxs.ParsePattern(line.RingPattern)
	if err != nil {
		return err
	}

	h := line.Hook
	switch {
	case h.MinDigit > h.MaxDigit:
		return fmt.Errorf("invalid hook digit range [%v, %v]", h.MinDigit, h.MaxDigit)
	case h.MinFlash > h.MaxFlash:
		return fmt.Errorf("invalid hook flash range [%v, %v]", h.MinFlash, h.MaxFlash)
	case h.MinInterDigit <= 0 || h.MinHookTimeout <= 0:
		return fmt.Errorf("invalid hook timeouts (inter-digit=%v, hook=%v)", h.MinInterDigit, h.MinHookTimeout)
	}
	return nil
}
