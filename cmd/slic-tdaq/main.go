// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command slic-tdaq runs the ProSLIC lines of a node as a TDAQ process.
//
// Hook events are published on the /hook output port. Ring requests are
// received on the /ring and /stop-ring input ports. All frames are CBOR
// encoded.
//
// Usage: slic-tdaq [tdaq options] [config.yaml]
package main // import "github.com/go-lpc/proslic/cmd/slic-tdaq"

import (
	"context"
	"log"
	"os"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
)

func main() {
	cmd := flags.New()

	srv := newServer(log.New(os.Stdout, "phone: ", 0))
	if len(cmd.Args) > 0 {
		srv.fname = cmd.Args[0]
	}

	proc := tdaq.New(cmd, os.Stdout)
	proc.CmdHandle("/config", srv.OnConfig)
	proc.CmdHandle("/init", srv.OnInit)
	proc.CmdHandle("/reset", srv.OnReset)
	proc.CmdHandle("/start", srv.OnStart)
	proc.CmdHandle("/stop", srv.OnStop)
	proc.CmdHandle("/quit", srv.OnQuit)

	proc.InputHandle("/ring", srv.onRing)
	proc.InputHandle("/stop-ring", srv.onStopRing)
	proc.OutputHandle("/hook", srv.onHook)

	err := proc.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}
