// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fxs

import (
	"log"
	"os"
	"time"
)

type config struct {
	msg     *log.Logger
	verbose bool

	events chan<- HookEvent
	period time.Duration // hook detector check period
	settle time.Duration // delay between two attempts to idle the line
	now    func() time.Time
}

func newConfig() config {
	return config{
		msg:    log.New(os.Stdout, "fxs: ", 0),
		period: 20 * time.Millisecond,
		settle: 10 * time.Millisecond,
		now:    time.Now,
	}
}

// Option configures a Channel.
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

// WithEvents sets the sink hook events are published on.
// Events are dropped when the sink is full.
func WithEvents(ch chan<- HookEvent) Option {
	return func(cfg *config) {
		cfg.events = ch
	}
}

// WithCheckPeriod sets the period of the hook detector timeout checks.
func WithCheckPeriod(d time.Duration) Option {
	return func(cfg *config) {
		cfg.period = d
	}
}

func withClock(now func() time.Time) Option {
	return func(cfg *config) {
		cfg.now = now
	}
}
