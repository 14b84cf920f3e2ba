// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fxs implements the subscriber line side of a ProSLIC channel:
// line bring-up, ringing with cadences and hook pulse detection.
package fxs // import "github.com/go-lpc/proslic/fxs"

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-lpc/proslic/slic"
)

// Device is the set of device operations a line needs.
type Device interface {
	ConfigureDCFeed(ch uint8) error
	ConfigureRinger(ch uint8) error
	ConfigureZsynth(ch uint8, lt slic.LineTermination) error
	ConfigurePCM(ch uint8, f slic.PCMFormat) error
	SetPCMTimeslot(ch uint8, slot int) error
	EnablePCM(ch uint8) error
	SetLoopback(ch uint8, mode slic.LoopbackMode) error
	LineFeed(ch uint8) (slic.Linefeed, error)
	SetLineFeed(ch uint8, lf slic.Linefeed) (bool, error)
	HookState(ch uint8) (slic.HookState, error)
	DisableIRQ(ch uint8) error
	EnableHookIRQ(ch uint8) error
}

var _ Device = (slic.Driver)(nil)

// Config describes a subscriber line.
type Config struct {
	Name      string
	Slot      int // PCM timeslot
	Codec     slic.PCMFormat
	Impedance slic.LineTermination
	Loopback  slic.LoopbackMode
	Rings     []string // ring patterns, the first one is used by StartRing
	Hook      HookConfig
}

// number of attempts at idling the line once ringing stopped.
const idleRetries = 10

// Channel is a subscriber line attached to a channel of a device.
type Channel struct {
	msg     *log.Logger
	verbose bool
	opt     config

	id  int
	dev Device
	ch  uint8
	cfg Config

	mu       sync.Mutex // guards det
	det      *Detector
	patterns []Pattern

	rmu  sync.Mutex // guards ring
	ring *ringer

	quit chan struct{}
	done chan struct{}
	once sync.Once
}

type ringer struct {
	stop chan struct{}
	done chan struct{}
}

func (r *ringer) running() bool {
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// New creates the line id, driven by channel ch of dev.
func New(id int, dev Device, ch uint8, cfg Config, opts ...Option) *Channel {
	opt := newConfig()
	for _, o := range opts {
		o(&opt)
	}
	return &Channel{
		msg:     opt.msg,
		verbose: opt.verbose,
		opt:     opt,
		id:      id,
		dev:     dev,
		ch:      ch,
		cfg:     cfg,
		det:     NewDetector(cfg.Hook),
	}
}

func (c *Channel) String() string {
	return fmt.Sprintf("Channel(line=%d name=%q chan=%d)", c.id, c.cfg.Name, c.ch)
}

// ID returns the line index.
func (c *Channel) ID() int { return c.id }

// Channel returns the device channel driving the line.
func (c *Channel) Channel() uint8 { return c.ch }

// Name returns the name of the line.
func (c *Channel) Name() string { return c.cfg.Name }

func (c *Channel) debugf(format string, args ...any) {
	if !c.verbose {
		return
	}
	c.msg.Printf(format, args...)
}

// Begin configures the line, puts it in IDLE state and starts watching
// its hook state.
func (c *Channel) Begin() error {
	if c.quit != nil {
		return fmt.Errorf("fxs: line %d already started", c.id)
	}

	patterns := make([]Pattern, 0, len(c.cfg.Rings))
	for _, s := range c.cfg.Rings {
		p, err := ParsePattern(s)
		if err != nil {
			return fmt.Errorf("fxs: could not setup line %d: %w", c.id, err)
		}
		patterns = append(patterns, p)
	}

	steps := []struct {
		name string
		f    func() error
	}{
		{"configure DC feed", func() error { return c.dev.ConfigureDCFeed(c.ch) }},
		{"configure ringer", func() error { return c.dev.ConfigureRinger(c.ch) }},
		{"configure impedance", func() error { return c.dev.ConfigureZsynth(c.ch, c.cfg.Impedance) }},
		{"configure PCM", func() error { return c.dev.ConfigurePCM(c.ch, c.cfg.Codec) }},
		{"set PCM timeslot", func() error { return c.dev.SetPCMTimeslot(c.ch, c.cfg.Slot) }},
		{"enable PCM", func() error { return c.dev.EnablePCM(c.ch) }},
		{"open line", func() error { return c.setLineFeed(slic.LinefeedNOP) }},
		{"set loopback", func() error { return c.dev.SetLoopback(c.ch, c.cfg.Loopback) }},
		{"idle line", func() error { return c.setLineFeed(slic.LinefeedIdle) }},
		{"disable interrupts", func() error { return c.dev.DisableIRQ(c.ch) }},
		{"enable hook interrupt", func() error { return c.dev.EnableHookIRQ(c.ch) }},
	}
	for _, step := range steps {
		c.debugf("line %d: %s", c.id, step.name)
		err := step.f()
		if err != nil {
			return fmt.Errorf("fxs: could not %s (line=%d): %w", step.name, c.id, err)
		}
	}

	hs, err := c.dev.HookState(c.ch)
	if err != nil {
		return fmt.Errorf("fxs: could not read hook state (line=%d): %w", c.id, err)
	}

	c.mu.Lock()
	c.patterns = patterns
	c.det.Setup(hs, c.opt.now())
	c.mu.Unlock()

	c.quit = make(chan struct{})
	c.done = make(chan struct{})
	go c.watch(c.quit, c.done)

	c.msg.Printf("line %d (%s): ready on channel %d (%v)", c.id, c.cfg.Name, c.ch, hs)
	return nil
}

func (c *Channel) setLineFeed(lf slic.Linefeed) error {
	_, err := c.dev.SetLineFeed(c.ch, lf)
	return err
}

// HookState returns the hook state of the line.
func (c *Channel) HookState() (slic.HookState, error) {
	return c.dev.HookState(c.ch)
}

// LineFeed returns the linefeed state of the line.
func (c *Channel) LineFeed() (slic.Linefeed, error) {
	return c.dev.LineFeed(c.ch)
}

// SetLineFeed requests a new linefeed state and reports whether it was
// applied.
func (c *Channel) SetLineFeed(lf slic.Linefeed) (bool, error) {
	return c.dev.SetLineFeed(c.ch, lf)
}

// SetLoopback selects the loopback path of the line.
func (c *Channel) SetLoopback(mode slic.LoopbackMode) error {
	return c.dev.SetLoopback(c.ch, mode)
}

// StartRing starts ringing the line with its first ring pattern.
// Caller identification is not transmitted.
func (c *Channel) StartRing(cid string) error {
	hs, err := c.HookState()
	if err != nil {
		return fmt.Errorf("fxs: could not start ringing line %d: %w", c.id, err)
	}
	if hs == slic.OffHook {
		return fmt.Errorf("fxs: could not start ringing line %d: %w", c.id, ErrRingOffHook)
	}

	c.rmu.Lock()
	defer c.rmu.Unlock()

	if c.ring != nil && c.ring.running() {
		c.msg.Printf("line %d: ringer already running", c.id)
		return nil
	}

	c.mu.Lock()
	var pat *Pattern
	if len(c.patterns) > 0 {
		pat = &c.patterns[0]
	}
	c.mu.Unlock()
	if pat == nil {
		return fmt.Errorf("fxs: could not start ringing line %d: %w", c.id, ErrNoPattern)
	}

	if cid != "" {
		c.debugf("line %d: caller id %q", c.id, cid)
	}

	r := &ringer{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	c.ring = r
	go c.runRinger(r, pat.start(c.opt.now))
	c.debugf("line %d: ringer started (%v)", c.id, pat)
	return nil
}

// StopRing stops ringing the line and waits for the ringer to put the
// line back in IDLE state.
func (c *Channel) StopRing() {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	r := c.ring
	if r == nil {
		c.debugf("line %d: ringer not running", c.id)
		return
	}
	c.ring = nil
	close(r.stop)
	<-r.done
	c.debugf("line %d: ringer stopped", c.id)
}

// Ringing returns whether the ringer of the line is running.
func (c *Channel) Ringing() bool {
	c.rmu.Lock()
	defer c.rmu.Unlock()
	return c.ring != nil && c.ring.running()
}

// TestRing rings the line for the provided duration.
func (c *Channel) TestRing(delay time.Duration) error {
	c.msg.Printf("line %d: ring test (%v)", c.id, delay)
	err := c.StartRing("")
	if err != nil {
		return err
	}
	tmr := time.NewTimer(delay)
	defer tmr.Stop()
	<-tmr.C
	c.StopRing()
	return nil
}

func (c *Channel) runRinger(r *ringer, cad *Cadence) {
	defer close(r.done)
	defer c.idle()

	lf := slic.LinefeedRinging
	for {
		d, ok := cad.Next()
		if !ok {
			c.debugf("line %d: ring pattern finished", c.id)
			return
		}

		c.debugf("line %d: ring state=%v for %v", c.id, lf, d)
		_, err := c.dev.SetLineFeed(c.ch, lf)
		if err != nil {
			c.msg.Printf("line %d: could not set ring state %v: %+v", c.id, lf, err)
		}
		switch lf {
		case slic.LinefeedRinging:
			lf = slic.LinefeedRingIdle
		default:
			lf = slic.LinefeedRinging
		}

		tmr := time.NewTimer(d)
		select {
		case <-r.stop:
			tmr.Stop()
			return
		case <-tmr.C:
		}
	}
}

// idle puts the line back in IDLE state, waiting for a ring burst to
// settle if needed.
func (c *Channel) idle() {
	for i := 0; i < idleRetries; i++ {
		ok, err := c.dev.SetLineFeed(c.ch, slic.LinefeedIdle)
		switch {
		case err != nil:
			c.msg.Printf("line %d: could not idle line: %+v", c.id, err)
		case ok:
			return
		}
		time.Sleep(c.opt.settle)
	}
	c.msg.Printf("line %d: line did not return to idle", c.id)
}

// HandleInterrupt processes the interrupt flags of the line, raised at
// the provided time.
func (c *Channel) HandleInterrupt(flags slic.Flags, at time.Time) {
	if flags.Has(slic.FlagThermal) {
		c.msg.Printf("line %d: thermal alarm", c.id)
	}
	if flags.Has(slic.FlagDTMF) {
		c.debugf("line %d: DTMF digit", c.id)
	}
	if !flags.Has(slic.FlagLoop) && !flags.Has(slic.FlagRingTrip) {
		return
	}

	if c.Ringing() {
		c.StopRing()
		c.msg.Printf("line %d: stop ringing, hook state changed", c.id)
	}

	hs, err := c.HookState()
	if err != nil {
		c.msg.Printf("line %d: could not sample hook state: %+v", c.id, err)
		return
	}
	c.debugf("line %d: hook state %v", c.id, hs)

	c.mu.Lock()
	evt, ok := c.det.Sample(at, hs)
	c.mu.Unlock()
	if ok {
		c.publish(evt)
	}
}

func (c *Channel) watch(quit, done chan struct{}) {
	defer close(done)
	tck := time.NewTicker(c.opt.period)
	defer tck.Stop()

	for {
		select {
		case <-quit:
			return
		case <-tck.C:
			c.check(c.opt.now())
		}
	}
}

func (c *Channel) check(now time.Time) {
	c.mu.Lock()
	evt, ok := c.det.Check(now)
	c.mu.Unlock()
	if ok {
		c.publish(evt)
	}
}

func (c *Channel) publish(evt HookEvent) {
	evt.Line = c.id
	c.msg.Printf("line %d: hook event %v", c.id, evt)
	if c.opt.events == nil {
		return
	}
	select {
	case c.opt.events <- evt:
	default:
		c.msg.Printf("line %d: event queue full, dropping %v", c.id, evt)
	}
}

// Close stops the line and opens it.
func (c *Channel) Close() error {
	c.once.Do(func() {
		if c.quit == nil {
			return
		}
		close(c.quit)
		<-c.done
	})
	c.StopRing()
	err := c.setLineFeed(slic.LinefeedNOP)
	if err != nil {
		return fmt.Errorf("fxs: could not close line %d: %w", c.id, err)
	}
	return nil
}
