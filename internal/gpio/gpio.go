// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpio drives GPIO lines through the sysfs interface.
package gpio // import "github.com/go-lpc/proslic/internal/gpio"

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Root is the sysfs GPIO class directory.
var Root = "/sys/class/gpio"

// Direction of a GPIO line.
const (
	In  = "in"
	Out = "out"
)

// Edges triggering interrupts on an input line.
const (
	None    = "none"
	Rising  = "rising"
	Falling = "falling"
	Both    = "both"
)

// Pin is an exported sysfs GPIO line.
type Pin struct {
	n   int
	dir string
}

// Export exports GPIO line n to user space, if needed, and returns it.
func Export(n int) (*Pin, error) {
	pin := &Pin{n: n, dir: filepath.Join(Root, "gpio"+strconv.Itoa(n))}
	_, err := os.Stat(pin.dir)
	switch {
	case err == nil:
		return pin, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("gpio: could not stat gpio%d: %w", n, err)
	}

	err = os.WriteFile(filepath.Join(Root, "export"), []byte(strconv.Itoa(n)), 0644)
	if err != nil {
		return nil, fmt.Errorf("gpio: could not export gpio%d: %w", n, err)
	}

	// udev may need some time to fix the permissions of the new line.
	for i := 0; i < 10; i++ {
		_, err = os.Stat(pin.dir)
		if err == nil {
			return pin, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil, fmt.Errorf("gpio: gpio%d not available after export: %w", n, err)
}

// N returns the line number.
func (pin *Pin) N() int { return pin.n }

// ValuePath returns the path of the value file of the line.
func (pin *Pin) ValuePath() string {
	return filepath.Join(pin.dir, "value")
}

func (pin *Pin) write(attr, v string) error {
	err := os.WriteFile(filepath.Join(pin.dir, attr), []byte(v), 0644)
	if err != nil {
		return fmt.Errorf("gpio: could not set gpio%d %s to %q: %w", pin.n, attr, v, err)
	}
	return nil
}

// SetDirection configures the line as input or output.
func (pin *Pin) SetDirection(dir string) error {
	return pin.write("direction", dir)
}

// SetEdge selects the edges raising interrupts on the line.
func (pin *Pin) SetEdge(edge string) error {
	return pin.write("edge", edge)
}

// Set drives an output line.
func (pin *Pin) Set(high bool) error {
	v := "0"
	if high {
		v = "1"
	}
	return pin.write("value", v)
}

// Get reads the level of the line.
func (pin *Pin) Get() (bool, error) {
	raw, err := os.ReadFile(pin.ValuePath())
	if err != nil {
		return false, fmt.Errorf("gpio: could not read gpio%d: %w", pin.n, err)
	}
	if len(raw) == 0 {
		return false, fmt.Errorf("gpio: empty value for gpio%d", pin.n)
	}
	return raw[0] == '1', nil
}

// Pulse drives the line low for low, then high for high.
func (pin *Pin) Pulse(low, high time.Duration) error {
	err := pin.Set(false)
	if err != nil {
		return err
	}
	time.Sleep(low)
	err = pin.Set(true)
	if err != nil {
		return err
	}
	time.Sleep(high)
	return nil
}
