// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command slic-replay replays a register and RAM access trace against a
// ProSLIC device and reports the reads returning unexpected values.
//
// The trace is a CSV file with the OPCODE, CHANNEL, REG, RAM_ADDR and
// RAW_DATA columns. OPCODE is one of WRITE, READ, RAM-WRITE or RAM-READ.
// Addresses and data are hexadecimal.
//
// Usage: slic-replay [options] trace.csv
//
// Example:
//
//	$> slic-replay -transport spidev -dev /dev/spidev0.0 ./setup.csv
//	$> slic-replay -sim ./setup.csv
package main // import "github.com/go-lpc/proslic/cmd/slic-replay"

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-lpc/proslic/config"
	"github.com/go-lpc/proslic/internal/mmap"
	"github.com/go-lpc/proslic/phone"
	"github.com/go-lpc/proslic/slic"
	"github.com/go-lpc/proslic/transport"
)

func main() {
	var (
		kind    = flag.String("transport", transport.KindChardev, "transport kind (chardev, spidev, bridge)")
		dev     = flag.String("dev", "", "path to the device")
		sim     = flag.Bool("sim", false, "replay against a simulated device")
		reset   = flag.Bool("reset", false, "reset the device before replaying")
		verbose = flag.Bool("v", false, "enable verbose mode")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slic-replay [options] trace.csv\n\nOptions:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.SetPrefix("slic-replay: ")
	log.SetFlags(0)

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("missing input trace file")
	}

	dcfg := config.Device{
		Transport: *kind,
		Path:      *dev,
		SPISpeed:  config.DefaultSPISpeed,
		Baud:      config.DefaultBaud,
	}
	if *sim {
		dcfg.Transport = "sim"
	}

	n, err := process(flag.Arg(0), dcfg, *reset, *verbose)
	if err != nil {
		log.Fatalf("could not replay %q: %+v", flag.Arg(0), err)
	}
	if n > 0 {
		log.Fatalf("%d mismatch(es)", n)
	}
}

func process(fname string, dcfg config.Device, reset, verbose bool) (int, error) {
	f, err := mmap.Open(fname)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	ops, err := parseTrace(f.Reader())
	if err != nil {
		return 0, err
	}
	log.Printf("replaying %d operation(s)...", len(ops))

	tr, err := phone.OpenTransport(dcfg, transport.WithLogger(log.Default()))
	if err != nil {
		return 0, fmt.Errorf("could not open device: %w", err)
	}

	eng := slic.NewEngine(tr, slic.WithLogger(log.Default()), slic.WithVerbose(verbose))
	defer eng.Close()

	if reset {
		err = eng.Reset()
		if err != nil {
			return 0, fmt.Errorf("could not reset device: %w", err)
		}
	}

	n, err := replay(eng, ops, os.Stdout, verbose)
	if err != nil {
		return n, err
	}

	err = eng.Close()
	if err != nil {
		return n, fmt.Errorf("could not close device: %w", err)
	}
	return n, nil
}
