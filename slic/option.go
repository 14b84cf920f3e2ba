// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import (
	"log"
	"os"
	"time"
)

type config struct {
	msg     *log.Logger
	verbose bool

	retries  int
	ramDelay time.Duration
	calDelay time.Duration
	sleep    func(time.Duration)

	blob *Blob
}

func newConfig() config {
	return config{
		msg:      log.New(os.Stdout, "slic: ", 0),
		retries:  Retries,
		ramDelay: 5 * time.Millisecond,
		calDelay: 15 * time.Millisecond,
		sleep:    time.Sleep,
	}
}

// Option configures an Engine or a Device.
type Option func(*config)

// WithLogger sets the logger used for diagnostics.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

// WithVerbose enables debug messages.
func WithVerbose(v bool) Option {
	return func(cfg *config) {
		cfg.verbose = v
	}
}

// WithRetries sets the wait-for-ready retry budget.
// Calibration polls use five times that budget.
func WithRetries(n int) Option {
	return func(cfg *config) {
		cfg.retries = n
	}
}

// WithRAMDelay sets the delay between two RAM status polls.
func WithRAMDelay(d time.Duration) Option {
	return func(cfg *config) {
		cfg.ramDelay = d
	}
}

// WithCalibrationDelay sets the delay between two calibration status polls.
func WithCalibrationDelay(d time.Duration) Option {
	return func(cfg *config) {
		cfg.calDelay = d
	}
}

// WithBlob sets the firmware patch loaded during device setup.
func WithBlob(blob Blob) Option {
	return func(cfg *config) {
		cfg.blob = &blob
	}
}

func withSleep(f func(time.Duration)) Option {
	return func(cfg *config) {
		cfg.sleep = f
	}
}
