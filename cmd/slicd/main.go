// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command slicd brings the ProSLIC lines of a node up and serves them
// until interrupted.
//
// Usage: slicd [options]
//
// Example:
//
//	$> slicd -cfg /etc/proslic.yaml -shell
//	$> slicd -sim -shell -pmon slicd-pmon.log
package main // import "github.com/go-lpc/proslic/cmd/slicd"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-lpc/proslic"
	"github.com/go-lpc/proslic/config"
	"github.com/go-lpc/proslic/phone"
	"github.com/peterh/liner"
	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		fname = flag.String("cfg", "proslic.yaml", "path to the configuration file")
		sim   = flag.Bool("sim", false, "drive simulated devices")
		shell = flag.Bool("shell", false, "start an interactive shell")
		mon   = flag.String("pmon", "", "path to the process monitoring output file")
		freq  = flag.Duration("pmon-freq", 1*time.Second, "process monitoring frequency")
	)

	flag.Parse()

	log.SetPrefix("slicd: ")
	log.SetFlags(0)

	version, _ := proslic.Version()
	log.Printf("starting (version=%q)...", version)

	err := run(context.Background(), *fname, *sim, *shell, *mon, *freq)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(ctx context.Context, fname string, sim, shell bool, mon string, freq time.Duration) error {
	cfg, err := loadConfig(fname)
	if err != nil {
		return err
	}
	if sim {
		simulate(&cfg)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := phone.New(cfg, phone.WithLogger(log.New(os.Stdout, "phone: ", 0)))
	err = mgr.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not start lines: %w", err)
	}
	defer mgr.Close()

	var grp errgroup.Group
	grp.Go(func() error {
		for evt := range mgr.Events() {
			log.Printf("hook event: %v", evt)
		}
		return nil
	})

	if mon != "" {
		f, err := os.Create(mon)
		if err != nil {
			return fmt.Errorf("could not create pmon log file: %w", err)
		}
		defer f.Close()

		proc, err := pmon.Monitor(os.Getpid())
		if err != nil {
			return fmt.Errorf("could not start monitoring: %w", err)
		}
		proc.W = f
		proc.Freq = freq

		// the monitor samples this very process: it stops with it.
		go func() {
			err := proc.Run()
			if err != nil {
				log.Printf("could not monitor slicd: %+v", err)
			}
		}()
	}

	if shell {
		term := liner.NewLiner()
		defer term.Close()
		term.SetCtrlCAborts(true)
		term.SetCompleter(complete)

		go func() {
			defer stop()
			err := newShell(mgr, os.Stdout).run(term)
			if err != nil {
				log.Printf("shell: %+v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Printf("stopping...")

	err = mgr.Close()
	if err != nil {
		log.Printf("could not close lines: %+v", err)
	}
	err = grp.Wait()
	if err != nil {
		return fmt.Errorf("could not stop slicd: %w", err)
	}
	return nil
}

// loadConfig loads the configuration file fname, writing a default one
// when it does not exist.
func loadConfig(fname string) (config.Config, error) {
	cfg, err := config.Load(fname)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default()
		err = config.Save(fname, cfg)
		if err != nil {
			return cfg, fmt.Errorf("could not write default configuration: %w", err)
		}
		log.Printf("wrote default configuration to %q", fname)
		return cfg, nil
	default:
		return cfg, fmt.Errorf("could not load configuration: %w", err)
	}
}

// simulate replaces every device with a simulated one.
func simulate(cfg *config.Config) {
	for i := range cfg.Devices {
		dev := &cfg.Devices[i]
		dev.Transport = "sim"
		dev.IRQ = "poll"
		if dev.IRQPoll <= 0 {
			dev.IRQPoll = config.DefaultIRQPoll
		}
	}
}
