// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package irq delivers the interrupts of ProSLIC devices as events.
package irq // import "github.com/go-lpc/proslic/irq"

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// Event is an interrupt raised by a device.
type Event struct {
	Device  int       // index of the device
	Source  string    // name of the source that saw the interrupt
	At      time.Time // arrival time
	Payload []byte    // interrupt status, when the source reads it
}

func (evt Event) String() string {
	return fmt.Sprintf("irq{dev=%d src=%s payload=% x}", evt.Device, evt.Source, evt.Payload)
}

// Source waits for the interrupts of a device.
type Source interface {
	// Wait blocks until an interrupt is raised or ctx is done.
	Wait(ctx context.Context) ([]byte, error)
	Name() string
	Close() error
}

type config struct {
	msg     *log.Logger
	backoff time.Duration
	now     func() time.Time
}

// Option configures a worker.
type Option func(*config)

// WithLogger sets the logger used for diagnostics.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

// WithBackoff sets the delay before waiting again on a failing source.
func WithBackoff(d time.Duration) Option {
	return func(cfg *config) {
		cfg.backoff = d
	}
}

// Run waits for the interrupts of device dev on src and pushes them on
// out, until ctx is done. Source errors are logged and retried.
func Run(ctx context.Context, dev int, src Source, out chan<- Event, opts ...Option) error {
	cfg := config{
		msg:     log.New(os.Stdout, "irq: ", 0),
		backoff: 100 * time.Millisecond,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	for {
		payload, err := src.Wait(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			cfg.msg.Printf("%s: could not wait for interrupt (dev=%d): %+v", src.Name(), dev, err)
			tmr := time.NewTimer(cfg.backoff)
			select {
			case <-ctx.Done():
				tmr.Stop()
				return nil
			case <-tmr.C:
			}
			continue
		}

		evt := Event{
			Device:  dev,
			Source:  src.Name(),
			At:      cfg.now(),
			Payload: payload,
		}
		select {
		case out <- evt:
		case <-ctx.Done():
			return nil
		}
	}
}
