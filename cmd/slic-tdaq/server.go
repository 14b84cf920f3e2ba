// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-lpc/proslic/config"
	"github.com/go-lpc/proslic/fxs"
	"github.com/go-lpc/proslic/phone"
)

type server struct {
	msg   *log.Logger
	fname string // configuration file, default configuration when empty
	opts  []phone.Option
	idle  time.Duration // hook events poll period while lines are stopped

	mu      sync.RWMutex
	cfg     *config.Config
	mgr     *phone.Manager
	running bool
}

func newServer(msg *log.Logger, opts ...phone.Option) *server {
	return &server{
		msg:  msg,
		idle: 100 * time.Millisecond,
		opts: append([]phone.Option{phone.WithLogger(msg)}, opts...),
	}
}

func (srv *server) configure() error {
	cfg := config.Default()
	if srv.fname != "" {
		var err error
		cfg, err = config.Load(srv.fname)
		if err != nil {
			return err
		}
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.cfg = &cfg
	return nil
}

func (srv *server) initialize() error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}
	if srv.mgr != nil {
		return fmt.Errorf("lines already initialized")
	}

	mgr := phone.New(*srv.cfg, srv.opts...)
	err := mgr.Begin(context.Background())
	if err != nil {
		return fmt.Errorf("could not start lines: %w", err)
	}
	srv.mgr = mgr
	return nil
}

func (srv *server) reset() error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.running = false
	if srv.mgr == nil {
		return nil
	}
	err := srv.mgr.Close()
	srv.mgr = nil
	if err != nil {
		return fmt.Errorf("could not close lines: %w", err)
	}
	return nil
}

func (srv *server) setRunning(v bool) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.mgr == nil {
		return fmt.Errorf("lines not initialized")
	}
	srv.running = v
	if !v {
		srv.mgr.StopAllRings()
	}
	return nil
}

func (srv *server) manager() (*phone.Manager, error) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	switch {
	case srv.mgr == nil:
		return nil, fmt.Errorf("lines not initialized")
	case !srv.running:
		return nil, fmt.Errorf("lines not running")
	}
	return srv.mgr, nil
}

func (srv *server) ring(raw []byte, start bool) error {
	req, err := decodeRing(raw)
	if err != nil {
		return err
	}

	mgr, err := srv.manager()
	if err != nil {
		return err
	}

	switch {
	case !start && req.Line < 0:
		mgr.StopAllRings()
		return nil
	case !start:
		return mgr.StopRing(req.Line)
	case req.Line < 0:
		for i := 0; i < mgr.NumChannels(); i++ {
			err = mgr.StartRing(i, req.CID)
			if err != nil {
				srv.msg.Printf("could not ring line %d: %+v", i, err)
			}
		}
		return nil
	}
	return mgr.StartRing(req.Line, req.CID)
}

func (srv *server) events() <-chan fxs.HookEvent {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	if srv.mgr == nil || !srv.running {
		return nil
	}
	return srv.mgr.Events()
}

// next returns the next encoded hook event, or nil when ctx is done.
func (srv *server) next(ctx context.Context) ([]byte, error) {
	for {
		evts := srv.events()
		if evts == nil {
			tmr := time.NewTimer(srv.idle)
			select {
			case <-ctx.Done():
				tmr.Stop()
				return nil, nil
			case <-tmr.C:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return nil, nil
		case evt, ok := <-evts:
			if !ok {
				continue
			}
			return encodeHook(evt)
		}
	}
}

func (srv *server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	err := srv.configure()
	if err != nil {
		ctx.Msg.Errorf("could not load configuration: %+v", err)
		return fmt.Errorf("could not load configuration: %w", err)
	}
	return nil
}

func (srv *server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	err := srv.initialize()
	if err != nil {
		ctx.Msg.Errorf("could not initialize lines: %+v", err)
		return fmt.Errorf("could not initialize lines: %w", err)
	}
	return nil
}

func (srv *server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	err := srv.reset()
	if err != nil {
		ctx.Msg.Errorf("could not reset lines: %+v", err)
		return err
	}
	return nil
}

func (srv *server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return srv.setRunning(true)
}

func (srv *server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command...")
	return srv.setRunning(false)
}

func (srv *server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return srv.reset()
}

func (srv *server) onRing(ctx tdaq.Context, src tdaq.Frame) error {
	err := srv.ring(src.Body, true)
	if err != nil {
		ctx.Msg.Errorf("could not ring: %+v", err)
	}
	return nil
}

func (srv *server) onStopRing(ctx tdaq.Context, src tdaq.Frame) error {
	err := srv.ring(src.Body, false)
	if err != nil {
		ctx.Msg.Errorf("could not stop ringing: %+v", err)
	}
	return nil
}

func (srv *server) onHook(ctx tdaq.Context, dst *tdaq.Frame) error {
	raw, err := srv.next(ctx.Ctx)
	if err != nil {
		ctx.Msg.Errorf("could not publish hook event: %+v", err)
		return err
	}
	dst.Body = raw
	return nil
}
