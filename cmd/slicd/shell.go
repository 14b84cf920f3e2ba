// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-lpc/proslic/phone"
	"github.com/go-lpc/proslic/slic"
	"github.com/peterh/liner"
)

var errQuit = errors.New("quit")

type command struct {
	usage string
	help  string
	narg  [2]int // min and max number of arguments
	run   func(sh *shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"channels": {"channels", "list the lines", [2]int{0, 0}, (*shell).cmdChannels},
		"hook":     {"hook [N]", "print the hook state of line N, or of every line", [2]int{0, 1}, (*shell).cmdHook},
		"ring":     {"ring N [cid]", "start ringing line N", [2]int{1, 2}, (*shell).cmdRing},
		"stop":     {"stop N", "stop ringing line N", [2]int{1, 1}, (*shell).cmdStop},
		"stopall":  {"stopall", "stop ringing every line", [2]int{0, 0}, (*shell).cmdStopAll},
		"testring": {"testring N [delay]", "ring line N for delay (default 2s)", [2]int{1, 2}, (*shell).cmdTestRing},
		"loopback": {"loopback N mode", "set the loopback mode (none, loopback_a, loopback_b) of line N", [2]int{2, 2}, (*shell).cmdLoopback},
		"reg":      {"reg N addr [value]", "read or write a register of line N", [2]int{2, 3}, (*shell).cmdReg},
		"ram":      {"ram N addr [value]", "read or write a RAM location of line N", [2]int{2, 3}, (*shell).cmdRAM},
		"help":     {"help", "print this help message", [2]int{0, 0}, (*shell).cmdHelp},
		"quit":     {"quit", "stop slicd", [2]int{0, 0}, (*shell).cmdQuit},
	}
}

func complete(line string) []string {
	var out []string
	for name := range commands {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

type shell struct {
	mgr *phone.Manager
	out io.Writer
}

func newShell(mgr *phone.Manager, out io.Writer) *shell {
	return &shell{mgr: mgr, out: out}
}

func (sh *shell) run(term *liner.State) error {
	for {
		line, err := term.Prompt("slicd> ")
		switch {
		case err == nil:
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("could not read command: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		term.AppendHistory(line)

		err = sh.exec(line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			fmt.Fprintf(sh.out, "error: %+v\n", err)
		}
	}
}

func (sh *shell) exec(line string) error {
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return nil
	}

	name, args := toks[0], toks[1:]
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", name)
	}
	if len(args) < cmd.narg[0] || len(args) > cmd.narg[1] {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(sh, args)
}

func (sh *shell) cmdChannels(args []string) error {
	lines := sh.mgr.Lines()
	fmt.Fprintf(sh.out, "%d line(s)\n", len(lines))
	for _, l := range lines {
		fmt.Fprintf(sh.out, "  %v\n", l)
	}
	return nil
}

func (sh *shell) cmdHook(args []string) error {
	ids := make([]int, 0, sh.mgr.NumChannels())
	switch len(args) {
	case 0:
		for i := 0; i < sh.mgr.NumChannels(); i++ {
			ids = append(ids, i)
		}
	default:
		i, err := parseLine(args[0])
		if err != nil {
			return err
		}
		ids = append(ids, i)
	}

	for _, i := range ids {
		hs, err := sh.mgr.HookState(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "line %d: %v\n", i, hs)
	}
	return nil
}

func (sh *shell) cmdRing(args []string) error {
	i, err := parseLine(args[0])
	if err != nil {
		return err
	}
	cid := ""
	if len(args) > 1 {
		cid = args[1]
	}
	return sh.mgr.StartRing(i, cid)
}

func (sh *shell) cmdStop(args []string) error {
	i, err := parseLine(args[0])
	if err != nil {
		return err
	}
	return sh.mgr.StopRing(i)
}

func (sh *shell) cmdStopAll(args []string) error {
	sh.mgr.StopAllRings()
	return nil
}

func (sh *shell) cmdTestRing(args []string) error {
	i, err := parseLine(args[0])
	if err != nil {
		return err
	}
	delay := 2 * time.Second
	if len(args) > 1 {
		delay, err = time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", args[1], err)
		}
	}
	return sh.mgr.TestRing(i, delay)
}

func (sh *shell) cmdLoopback(args []string) error {
	i, err := parseLine(args[0])
	if err != nil {
		return err
	}
	mode, err := slic.ParseLoopbackMode(args[1])
	if err != nil {
		return err
	}
	return sh.mgr.SetLoopback(i, mode)
}

func (sh *shell) cmdReg(args []string) error {
	i, err := parseLine(args[0])
	if err != nil {
		return err
	}
	reg, err := strconv.ParseUint(args[1], 0, 8)
	if err != nil {
		return fmt.Errorf("invalid register %q: %w", args[1], err)
	}

	if len(args) == 3 {
		v, err := strconv.ParseUint(args[2], 0, 8)
		if err != nil {
			return fmt.Errorf("invalid register value %q: %w", args[2], err)
		}
		return sh.mgr.WriteRegister(i, uint8(reg), uint8(v))
	}

	v, err := sh.mgr.ReadRegister(i, uint8(reg))
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "line %d: reg[0x%02x] = 0x%02x\n", i, reg, v)
	return nil
}

func (sh *shell) cmdRAM(args []string) error {
	i, err := parseLine(args[0])
	if err != nil {
		return err
	}
	addr, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return fmt.Errorf("invalid RAM address %q: %w", args[1], err)
	}

	if len(args) == 3 {
		v, err := strconv.ParseUint(args[2], 0, 32)
		if err != nil {
			return fmt.Errorf("invalid RAM value %q: %w", args[2], err)
		}
		return sh.mgr.WriteRAM(i, uint16(addr), uint32(v))
	}

	v, err := sh.mgr.ReadRAM(i, uint16(addr))
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "line %d: ram[%d] = 0x%08x\n", i, addr, v)
	return nil
}

func (sh *shell) cmdHelp(args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(sh.out, "  %-20s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func (sh *shell) cmdQuit(args []string) error {
	return errQuit
}

func parseLine(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid line %q: %w", s, err)
	}
	return i, nil
}
