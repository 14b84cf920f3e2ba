// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irq

import (
	"context"
	"fmt"
	"io"
	"log"
	"reflect"
	"testing"
	"time"
)

type result struct {
	payload []byte
	err     error
}

type fakeSource struct {
	rs     chan result
	closed bool
}

func (src *fakeSource) Name() string { return "fake" }

func (src *fakeSource) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-src.rs:
		return r.payload, r.err
	}
}

func (src *fakeSource) Close() error {
	src.closed = true
	return nil
}

func TestRun(t *testing.T) {
	var (
		src  = &fakeSource{rs: make(chan result, 4)}
		out  = make(chan Event, 4)
		done = make(chan error)
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src.rs <- result{payload: []byte{0x21}}
	src.rs <- result{err: fmt.Errorf("transient")}
	src.rs <- result{payload: nil}

	go func() {
		done <- Run(ctx, 3, src, out,
			WithLogger(log.New(io.Discard, "", 0)),
			WithBackoff(time.Millisecond),
		)
	}()

	for i, want := range [][]byte{{0x21}, nil} {
		select {
		case evt := <-out:
			if got, want := evt.Device, 3; got != want {
				t.Fatalf("event %d: invalid device: got=%d, want=%d", i, got, want)
			}
			if got, want := evt.Source, "fake"; got != want {
				t.Fatalf("event %d: invalid source: got=%q, want=%q", i, got, want)
			}
			if got := evt.Payload; !reflect.DeepEqual(got, want) {
				t.Fatalf("event %d: invalid payload: got=%v, want=%v", i, got, want)
			}
			if evt.At.IsZero() {
				t.Fatalf("event %d: missing timestamp", i)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("event %d: timeout", i)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("could not run worker: %+v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not stop")
	}
}

func TestRunFullQueue(t *testing.T) {
	var (
		src  = &fakeSource{rs: make(chan result, 1)}
		out  = make(chan Event)
		done = make(chan error)
	)
	ctx, cancel := context.WithCancel(context.Background())

	src.rs <- result{payload: []byte{1}}
	go func() {
		done <- Run(ctx, 0, src, out, WithLogger(log.New(io.Discard, "", 0)))
	}()

	// nobody reads out: the worker must still honor cancellation.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("could not run worker: %+v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not stop")
	}
}

func TestPoller(t *testing.T) {
	p := NewPoller(time.Millisecond)
	defer p.Close()

	if got, want := p.Name(), "poll"; got != want {
		t.Fatalf("invalid name: got=%q, want=%q", got, want)
	}

	for i := 0; i < 3; i++ {
		payload, err := p.Wait(context.Background())
		if err != nil {
			t.Fatalf("could not wait: %+v", err)
		}
		if payload != nil {
			t.Fatalf("invalid payload: got=%v, want=nil", payload)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.tck.Stop()
	select {
	case <-p.tck.C:
	default:
	}
	_, err := p.Wait(ctx)
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestEventString(t *testing.T) {
	evt := Event{Device: 1, Source: "chardev", Payload: []byte{0x12, 0x34}}
	if got, want := evt.String(), "irq{dev=1 src=chardev payload=12 34}"; got != want {
		t.Fatalf("invalid string: got=%q, want=%q", got, want)
	}
}
