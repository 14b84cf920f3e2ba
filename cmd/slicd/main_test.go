// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-lpc/proslic/config"
)

func TestLoadConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "proslic.yaml")

	cfg, err := loadConfig(fname)
	if err != nil {
		t.Fatalf("could not create default config: %+v", err)
	}
	if want := config.Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("invalid default config:\ngot= %+v\nwant=%+v", cfg, want)
	}

	got, err := loadConfig(fname)
	if err != nil {
		t.Fatalf("could not reload config: %+v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("invalid config:\ngot= %+v\nwant=%+v", got, cfg)
	}

	_, err = loadConfig(t.TempDir())
	if err == nil {
		t.Fatalf("expected an error loading a directory")
	}
}

func TestSimulate(t *testing.T) {
	cfg := config.Default()
	cfg.Devices = append(cfg.Devices, config.Device{Name: "spi", Transport: "spidev", IRQ: "gpio"})
	config.Normalize(&cfg)
	simulate(&cfg)

	for _, dev := range cfg.Devices {
		if dev.Transport != "sim" || dev.IRQ != "poll" || dev.IRQPoll <= 0 {
			t.Fatalf("invalid simulated device: %+v", dev)
		}
	}
	err := config.Validate(&cfg)
	if err != nil {
		t.Fatalf("invalid simulated config: %+v", err)
	}
}
