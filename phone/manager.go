// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package phone brings ProSLIC devices and their subscriber lines up and
// dispatches the device interrupts to the lines.
package phone // import "github.com/go-lpc/proslic/phone"

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-lpc/proslic/config"
	"github.com/go-lpc/proslic/fxs"
	"github.com/go-lpc/proslic/irq"
	"github.com/go-lpc/proslic/slic"
	"github.com/go-lpc/proslic/transport"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoLine     = errors.New("phone: no such line")
	ErrNotStarted = errors.New("phone: manager not started")
	ErrStarted    = errors.New("phone: manager already started")
)

// Line describes a subscriber line of a running manager.
type Line struct {
	ID      int
	Name    string
	Device  string // name of the device driving the line
	Channel uint8
}

func (l Line) String() string {
	return fmt.Sprintf("line=%d name=%q dev=%s ch=%d", l.ID, l.Name, l.Device, l.Channel)
}

type device struct {
	id  int
	cfg config.Device
	tr  slic.Transport
	drv slic.Driver
	src irq.Source
}

type line struct {
	fxs *fxs.Channel
	dev *device
}

type lineKey struct {
	dev int
	ch  uint8
}

// Manager owns the devices and lines described by a configuration.
type Manager struct {
	msg     *log.Logger
	verbose bool
	opt     options
	cfg     config.Config

	mu      sync.RWMutex
	started bool
	closed  bool // events was closed by Close
	devs    []*device
	lines   []line
	owner   map[lineKey]int

	events chan fxs.HookEvent
	irqs   chan irq.Event

	cancel context.CancelFunc
	grp    *errgroup.Group
}

// New creates a manager for the devices and lines of cfg.
func New(cfg config.Config, opts ...Option) *Manager {
	opt := newOptions()
	opt.verbose = cfg.Verbose()
	for _, o := range opts {
		o(&opt)
	}
	if opt.open == nil {
		msg := log.New(opt.msg.Writer(), "transport: ", opt.msg.Flags())
		opt.open = func(dev config.Device) (slic.Transport, error) {
			return OpenTransport(dev, transport.WithLogger(msg))
		}
	}

	return &Manager{
		msg:     opt.msg,
		verbose: opt.verbose,
		opt:     opt,
		cfg:     cfg,
		owner:   make(map[lineKey]int),
		events:  make(chan fxs.HookEvent, opt.queue),
		irqs:    make(chan irq.Event, opt.queue),
	}
}

func (m *Manager) debugf(format string, args ...any) {
	if !m.verbose {
		return
	}
	m.msg.Printf(format, args...)
}

func (m *Manager) logger(prefix string) *log.Logger {
	return log.New(m.msg.Writer(), prefix, m.msg.Flags())
}

// Begin brings every configured device and line up, then starts
// dispatching interrupts until ctx is done or Close is called.
func (m *Manager) Begin(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrStarted
	}
	if m.closed {
		m.events = make(chan fxs.HookEvent, m.opt.queue)
		m.irqs = make(chan irq.Event, m.opt.queue)
		m.closed = false
	}

	err := m.begin()
	if err != nil {
		m.shutdown()
		return err
	}

	m.drain()

	ctx, m.cancel = context.WithCancel(ctx)
	grp, ctx := errgroup.WithContext(ctx)
	m.grp = grp

	for _, dev := range m.devs {
		if dev.src == nil {
			continue
		}
		var (
			id  = dev.id
			src = dev.src
		)
		grp.Go(func() error {
			return irq.Run(ctx, id, src, m.irqs, irq.WithLogger(m.logger("irq: ")))
		})
	}
	grp.Go(func() error {
		return m.dispatch(ctx)
	})

	m.started = true
	m.msg.Printf("started %d line(s) on %d device(s)", len(m.lines), len(m.devs))
	return nil
}

func (m *Manager) begin() error {
	next := 0
	for i, dcfg := range m.cfg.Devices {
		dev, err := m.openDevice(i, dcfg)
		if err != nil {
			return err
		}

		codec, err := dcfg.Codec()
		if err != nil {
			return fmt.Errorf("phone: device %q: %w", dcfg.Name, err)
		}

		for ch := uint8(0); int(ch) < dev.drv.NumChannels(); ch++ {
			if next >= len(m.cfg.FXS) {
				m.msg.Printf("no line configuration for device %q channel %d", dcfg.Name, ch)
				continue
			}
			lcfg, err := m.cfg.FXS[next].Line(codec)
			if err != nil {
				return fmt.Errorf("phone: could not configure line %d: %w", next, err)
			}

			opts := append([]fxs.Option{
				fxs.WithLogger(m.logger("fxs: ")),
				fxs.WithVerbose(m.verbose),
				fxs.WithEvents(m.events),
			}, m.opt.fxs...)
			c := fxs.New(next, dev.drv, ch, lcfg, opts...)
			m.debugf("mapping device %q channel %d to line %d", dcfg.Name, ch, next)
			err = c.Begin()
			if err != nil {
				return fmt.Errorf("phone: could not start line %d: %w", next, err)
			}
			m.owner[lineKey{dev.id, ch}] = len(m.lines)
			m.lines = append(m.lines, line{fxs: c, dev: dev})
			next++
		}

		dev.src, err = m.openSource(dev)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) openDevice(id int, dcfg config.Device) (*device, error) {
	m.msg.Printf("initializing device %q (%s %s)", dcfg.Name, dcfg.Transport, dcfg.Path)
	tr, err := m.opt.open(dcfg)
	if err != nil {
		return nil, fmt.Errorf("phone: could not open device %q: %w", dcfg.Name, err)
	}

	opts := []slic.Option{
		slic.WithLogger(m.logger("slic: ")),
		slic.WithVerbose(m.verbose),
	}
	if dcfg.Blob != "" {
		blob, err := config.LoadBlob(dcfg.Blob)
		if err != nil {
			_ = tr.Close()
			return nil, fmt.Errorf("phone: device %q: %w", dcfg.Name, err)
		}
		opts = append(opts, slic.WithBlob(blob))
	}
	opts = append(opts, m.opt.slic...)

	drv, err := slic.Open(tr, opts...)
	if err != nil {
		_ = tr.Close()
		return nil, fmt.Errorf("phone: could not identify device %q: %w", dcfg.Name, err)
	}
	dev := &device{id: id, cfg: dcfg, tr: tr, drv: drv}
	m.devs = append(m.devs, dev)

	err = drv.Setup()
	if err != nil {
		return nil, fmt.Errorf("phone: could not setup device %q: %w", dcfg.Name, err)
	}
	m.msg.Printf("device %q: %s with %d channel(s)", dcfg.Name, drv.Name(), drv.NumChannels())
	return dev, nil
}

type fder interface {
	Fd() uintptr
}

func (m *Manager) openSource(dev *device) (irq.Source, error) {
	switch dev.cfg.IRQ {
	case "none":
		return nil, nil
	case "device":
		f, ok := dev.tr.(fder)
		if !ok {
			return nil, fmt.Errorf("phone: device %q: transport %q has no interrupt line", dev.cfg.Name, dev.cfg.Transport)
		}
		src, err := irq.NewChardev(f.Fd())
		if err != nil {
			return nil, fmt.Errorf("phone: device %q: could not open interrupt source: %w", dev.cfg.Name, err)
		}
		return src, nil
	case "gpio":
		src, err := irq.NewGPIO(dev.cfg.IRQLine())
		if err != nil {
			return nil, fmt.Errorf("phone: device %q: could not open interrupt source: %w", dev.cfg.Name, err)
		}
		return src, nil
	case "poll":
		return irq.NewPoller(dev.cfg.IRQPoll), nil
	}
	return nil, fmt.Errorf("phone: device %q: invalid irq mode %q", dev.cfg.Name, dev.cfg.IRQ)
}

// drain discards the interrupts latched while bringing the devices up.
func (m *Manager) drain() {
	for _, dev := range m.devs {
		pending, err := dev.drv.InterruptChannels(nil)
		if err != nil {
			m.msg.Printf("device %q: could not clear interrupts: %+v", dev.cfg.Name, err)
			continue
		}
		for _, p := range pending {
			_, err = dev.drv.HandleIRQ(p.Channel, p.Mask)
			if err != nil {
				m.msg.Printf("device %q: could not clear interrupts (ch=%d): %+v", dev.cfg.Name, p.Channel, err)
			}
		}
	}
	for {
		select {
		case <-m.irqs:
		default:
			return
		}
	}
}

func (m *Manager) dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-m.irqs:
			m.handle(evt)
		}
	}
}

func (m *Manager) handle(evt irq.Event) {
	if evt.Device < 0 || evt.Device >= len(m.devs) {
		m.msg.Printf("no device for %v", evt)
		return
	}
	dev := m.devs[evt.Device]

	pending, err := dev.drv.InterruptChannels(evt.Payload)
	if err != nil {
		m.msg.Printf("device %q: %+v", dev.cfg.Name, err)
		return
	}

	for _, p := range pending {
		flags, err := dev.drv.HandleIRQ(p.Channel, p.Mask)
		if err != nil {
			m.msg.Printf("device %q: %+v", dev.cfg.Name, err)
		}
		if len(flags) == 0 {
			continue
		}

		idx, ok := m.owner[lineKey{dev.id, p.Channel}]
		if !ok {
			m.msg.Printf("device %q: no line on channel %d, dropping %v", dev.cfg.Name, p.Channel, flags)
			continue
		}
		m.debugf("device %q: ch=%d flags=%v", dev.cfg.Name, p.Channel, flags)
		m.lines[idx].fxs.HandleInterrupt(flags, evt.At)
	}
}

// Events returns the hook events of all the lines.
// The channel is closed by Close; a later Begin opens a new one.
func (m *Manager) Events() <-chan fxs.HookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.events
}

func (m *Manager) line(i int) (line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.started {
		return line{}, ErrNotStarted
	}
	if i < 0 || i >= len(m.lines) {
		return line{}, fmt.Errorf("phone: line %d (lines=%d): %w", i, len(m.lines), ErrNoLine)
	}
	return m.lines[i], nil
}

// NumChannels returns the number of running lines.
func (m *Manager) NumChannels() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines)
}

// Lines describes the running lines.
func (m *Manager) Lines() []Line {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Line, len(m.lines))
	for i, l := range m.lines {
		out[i] = Line{
			ID:      l.fxs.ID(),
			Name:    l.fxs.Name(),
			Device:  l.dev.cfg.Name,
			Channel: l.fxs.Channel(),
		}
	}
	return out
}

// HookState returns the hook state of line i.
func (m *Manager) HookState(i int) (slic.HookState, error) {
	l, err := m.line(i)
	if err != nil {
		return 0, err
	}
	return l.fxs.HookState()
}

// StartRing starts ringing line i, announcing caller id cid.
func (m *Manager) StartRing(i int, cid string) error {
	l, err := m.line(i)
	if err != nil {
		return err
	}
	return l.fxs.StartRing(cid)
}

// StopRing stops ringing line i.
func (m *Manager) StopRing(i int) error {
	l, err := m.line(i)
	if err != nil {
		return err
	}
	l.fxs.StopRing()
	return nil
}

// StopAllRings stops ringing every line.
func (m *Manager) StopAllRings() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.lines {
		l.fxs.StopRing()
	}
}

// TestRing rings line i for delay.
func (m *Manager) TestRing(i int, delay time.Duration) error {
	l, err := m.line(i)
	if err != nil {
		return err
	}
	return l.fxs.TestRing(delay)
}

// SetLoopback sets the loopback mode of line i.
func (m *Manager) SetLoopback(i int, mode slic.LoopbackMode) error {
	l, err := m.line(i)
	if err != nil {
		return err
	}
	return l.fxs.SetLoopback(mode)
}

// ReadRegister reads a register of the channel driving line i.
func (m *Manager) ReadRegister(i int, reg uint8) (uint8, error) {
	l, err := m.line(i)
	if err != nil {
		return 0, err
	}
	return l.dev.drv.ReadRegister(l.fxs.Channel(), reg)
}

// WriteRegister writes a register of the channel driving line i.
func (m *Manager) WriteRegister(i int, reg, v uint8) error {
	l, err := m.line(i)
	if err != nil {
		return err
	}
	return l.dev.drv.WriteRegister(l.fxs.Channel(), reg, v)
}

// ReadRAM reads a RAM location of the channel driving line i.
func (m *Manager) ReadRAM(i int, addr uint16) (uint32, error) {
	l, err := m.line(i)
	if err != nil {
		return 0, err
	}
	return l.dev.drv.ReadRAM(l.fxs.Channel(), addr)
}

// WriteRAM writes a RAM location of the channel driving line i.
func (m *Manager) WriteRAM(i int, addr uint16, v uint32) error {
	l, err := m.line(i)
	if err != nil {
		return err
	}
	return l.dev.drv.WriteRAM(l.fxs.Channel(), addr, v)
}

// Close stops dispatching interrupts, then closes every line and device.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.cancel != nil {
		m.cancel()
		err = m.grp.Wait()
		m.cancel = nil
	}

	errs := []error{err}
	errs = append(errs, m.shutdown()...)
	if m.started {
		close(m.events)
		m.started = false
		m.closed = true
	}

	err = errors.Join(errs...)
	if err != nil {
		return fmt.Errorf("phone: could not close manager: %w", err)
	}
	return nil
}

func (m *Manager) shutdown() []error {
	m.msg.Printf("closing %d line(s) and %d device(s)...", len(m.lines), len(m.devs))

	var errs []error
	for _, l := range m.lines {
		errs = append(errs, l.fxs.Close())
	}
	for _, dev := range m.devs {
		if dev.src != nil {
			errs = append(errs, dev.src.Close())
		}
		errs = append(errs, dev.drv.Close())
	}
	m.lines = nil
	m.devs = nil
	m.owner = make(map[lineKey]int)
	return errs
}
