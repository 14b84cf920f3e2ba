// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config describes the devices and lines driven by a ProSLIC
// daemon, as stored in YAML files.
package config // import "github.com/go-lpc/proslic/config"

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-lpc/proslic/fxs"
	"github.com/go-lpc/proslic/slic"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of a daemon.
type Config struct {
	LogLevel string   `yaml:"log_level"` // debug or info
	Devices  []Device `yaml:"devices"`
	FXS      []FXS    `yaml:"fxs"`
}

// Device describes a ProSLIC device and how to reach it.
type Device struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"` // chardev, spidev, bridge or sim
	Path      string `yaml:"path"`

	IRQ       string        `yaml:"irq"`      // none, device, gpio or poll
	IRQGPIO   *int          `yaml:"irq_gpio"` // sysfs GPIO of the interrupt line
	IRQPoll   time.Duration `yaml:"irq_poll"`
	ResetGPIO *int          `yaml:"reset_gpio"`

	SPISpeed uint32 `yaml:"spi_speed"`
	Baud     int    `yaml:"baud"`

	AudioCodec  string `yaml:"audio_codec"` // pcm, alaw or ulaw
	AudioDevice string `yaml:"audio_device"`

	Blob string `yaml:"blob"` // path to a firmware patch description
}

// FXS describes a subscriber line.
type FXS struct {
	Name        string `yaml:"name"`
	AudioSlot   int    `yaml:"audio_slot"`
	Impedance   string `yaml:"impedance"` // FCC, TBR21, BT3 or TN12
	RingPattern string `yaml:"ring_pattern"`
	ToneBusy    string `yaml:"tone_busy"`
	ToneDial    string `yaml:"tone_dial"`
	Loopback    string `yaml:"loopback"` // none, loopback_a or loopback_b
	Hook        Hook   `yaml:"hook"`
}

// Hook holds the hook debouncing thresholds of a line.
type Hook struct {
	MinHookTimeout time.Duration `yaml:"min_hook_timeout"`
	MinDigit       time.Duration `yaml:"min_digit"`
	MaxDigit       time.Duration `yaml:"max_digit"`
	MinFlash       time.Duration `yaml:"min_flash"`
	MaxFlash       time.Duration `yaml:"max_flash"`
	MinInterDigit  time.Duration `yaml:"min_inter_digit"`
}

// Default returns the configuration of a single device with two lines
// behind the proslic kernel driver.
func Default() Config {
	cfg := Config{
		Devices: []Device{{}},
		FXS:     []FXS{{AudioSlot: 0}, {AudioSlot: 1}},
	}
	Normalize(&cfg)
	return cfg
}

// Load reads, completes and validates the configuration file fname.
func Load(fname string) (Config, error) {
	f, err := os.Open(fname)
	if err != nil {
		return Config{}, fmt.Errorf("config: could not open %q: %w", fname, err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return cfg, fmt.Errorf("config: could not load %q: %w", fname, err)
	}
	return cfg, nil
}

// Parse decodes, completes and validates a YAML configuration.
// Unknown fields are rejected.
func Parse(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: could not decode: %w", err)
	}

	Normalize(&cfg)
	err = Validate(&cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to fname, in YAML.
func Save(fname string, cfg Config) error {
	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	err := enc.Encode(cfg)
	if err != nil {
		return fmt.Errorf("config: could not encode: %w", err)
	}
	err = enc.Close()
	if err != nil {
		return fmt.Errorf("config: could not encode: %w", err)
	}

	err = os.WriteFile(fname, buf.Bytes(), 0644)
	if err != nil {
		return fmt.Errorf("config: could not save %q: %w", fname, err)
	}
	return nil
}

// Verbose returns whether debug messages are enabled.
func (cfg Config) Verbose() bool { return cfg.LogLevel == "debug" }

// IRQLine returns the interrupt GPIO of the device, or -1.
func (dev Device) IRQLine() int { return gpioOf(dev.IRQGPIO) }

// ResetLine returns the reset GPIO of the device, or -1.
func (dev Device) ResetLine() int { return gpioOf(dev.ResetGPIO) }

func gpioOf(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

// Codec returns the PCM format of the device audio highway.
func (dev Device) Codec() (slic.PCMFormat, error) {
	return slic.ParsePCMFormat(dev.AudioCodec)
}

// HookConfig returns the hook detector thresholds.
func (h Hook) HookConfig() fxs.HookConfig {
	return fxs.HookConfig{
		MinHookTimeout: h.MinHookTimeout,
		MinDigit:       h.MinDigit,
		MaxDigit:       h.MaxDigit,
		MinFlash:       h.MinFlash,
		MaxFlash:       h.MaxFlash,
		MinInterDigit:  h.MinInterDigit,
	}
}

// Line returns the configuration of a line attached to a device whose
// audio highway uses codec.
func (line FXS) Line(codec slic.PCMFormat) (fxs.Config, error) {
	lt, err := slic.ParseLineTermination(line.Impedance)
	if err != nil {
		return fxs.Config{}, fmt.Errorf("config: line %q: %w", line.Name, err)
	}
	lb, err := slic.ParseLoopbackMode(line.Loopback)
	if err != nil {
		return fxs.Config{}, fmt.Errorf("config: line %q: %w", line.Name, err)
	}
	return fxs.Config{
		Name:      line.Name,
		Slot:      line.AudioSlot,
		Codec:     codec,
		Impedance: lt,
		Loopback:  lb,
		Rings:     []string{line.RingPattern},
		Hook:      line.Hook.HookConfig(),
	}, nil
}
