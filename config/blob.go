// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-lpc/proslic/slic"
	"gopkg.in/yaml.v3"
)

// Blob is the YAML description of a firmware patch.
type Blob struct {
	ID       uint32     `yaml:"id"`
	Data     []uint32   `yaml:"data,flow"`
	RegJumps []uint8    `yaml:"reg_jumps,flow"`
	RAMJumps []uint32   `yaml:"ram_jumps,flow"`
	Config   []RAMValue `yaml:"config"`
}

// RAMValue is a value to store at a RAM address.
type RAMValue struct {
	Addr  uint16 `yaml:"addr"`
	Value uint32 `yaml:"value"`
}

// LoadBlob reads the firmware patch description fname.
func LoadBlob(fname string) (slic.Blob, error) {
	f, err := os.Open(fname)
	if err != nil {
		return slic.Blob{}, fmt.Errorf("config: could not open blob %q: %w", fname, err)
	}
	defer f.Close()

	blob, err := ParseBlob(f)
	if err != nil {
		return blob, fmt.Errorf("config: could not load blob %q: %w", fname, err)
	}
	return blob, nil
}

// ParseBlob decodes and validates a firmware patch description.
func ParseBlob(r io.Reader) (slic.Blob, error) {
	var raw Blob
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		return slic.Blob{}, fmt.Errorf("config: could not decode blob: %w", err)
	}

	blob := raw.Blob()
	err = blob.Validate()
	if err != nil {
		return blob, fmt.Errorf("config: %w", err)
	}
	return blob, nil
}

// Blob converts the description to a loadable firmware patch.
func (b Blob) Blob() slic.Blob {
	blob := slic.Blob{
		ID:       b.ID,
		Data:     b.Data,
		RegJumps: b.RegJumps,
		RAMJumps: b.RAMJumps,
		Config:   make([]slic.RAMValue, len(b.Config)),
	}
	for i, v := range b.Config {
		blob.Config[i] = slic.RAMValue{Addr: v.Addr, Value: v.Value}
	}
	return blob
}
