// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/go-lpc/proslic/internal/crc16"
	"go.bug.st/serial"
)

const (
	bridgeSyncTx = 0xA5
	bridgeSyncRx = 0x5A

	bridgeReqLen = 1 + 4 + crc16.Size
	bridgeRepLen = 1 + 2 + crc16.Size
)

var (
	errBridgeCRC  = errors.New("transport: invalid bridge reply checksum")
	errBridgeSync = errors.New("transport: invalid bridge reply header")
	errBridgeTime = errors.New("transport: bridge reply timeout")
)

type serialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

var (
	serialOpen = serialOpenImpl
)

func serialOpenImpl(name string, baud int) (serialPort, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(name, mode)
}

// Bridge is a transport over a USB-serial SPI bridge.
//
// Each request carries one SPI register frame, preceded by a sync byte
// and followed by its CRC-16. The bridge answers with the register value
// and a status byte.
type Bridge struct {
	mu   sync.Mutex
	msg  *log.Logger
	port serialPort
	name string
}

// OpenBridge opens the bridge attached to the serial port name.
func OpenBridge(name string, opts ...Option) (*Bridge, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	port, err := serialOpen(name, cfg.baud)
	if err != nil {
		return nil, fmt.Errorf("transport: could not open serial port %q: %w", name, err)
	}

	err = port.SetReadTimeout(cfg.timeout)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: could not set read timeout of %q: %w", name, err)
	}

	err = port.ResetInputBuffer()
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: could not purge input buffer of %q: %w", name, err)
	}

	return &Bridge{msg: cfg.msg, port: port, name: name}, nil
}

func (dev *Bridge) roundTrip(frame [4]byte) (uint8, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.port == nil {
		return 0, ErrClosed
	}

	req := make([]byte, bridgeReqLen)
	req[0] = bridgeSyncTx
	copy(req[1:5], frame[:])
	binary.BigEndian.PutUint16(req[5:], crc16.Checksum(req[1:5]))

	n, err := dev.port.Write(req)
	switch {
	case err != nil:
		return 0, fmt.Errorf("could not write request: %w", err)
	case n != len(req):
		return 0, fmt.Errorf("could not write request: %w", io.ErrShortWrite)
	}

	rep := make([]byte, bridgeRepLen)
	err = dev.readFull(rep)
	if err != nil {
		return 0, fmt.Errorf("could not read reply: %w", err)
	}

	switch {
	case rep[0] != bridgeSyncRx:
		_ = dev.port.ResetInputBuffer()
		return 0, fmt.Errorf("got 0x%02x: %w", rep[0], errBridgeSync)
	case binary.BigEndian.Uint16(rep[3:]) != crc16.Checksum(rep[1:3]):
		_ = dev.port.ResetInputBuffer()
		return 0, errBridgeCRC
	case rep[2] != 0:
		return 0, fmt.Errorf("transport: bridge status 0x%02x", rep[2])
	}
	return rep[1], nil
}

// readFull reads len(p) bytes. A read returning no data means the port
// read timeout expired.
func (dev *Bridge) readFull(p []byte) error {
	for i := 0; i < len(p); {
		n, err := dev.port.Read(p[i:])
		if err != nil {
			return err
		}
		if n == 0 {
			return errBridgeTime
		}
		i += n
	}
	return nil
}

func (dev *Bridge) ReadRegister(ch, reg uint8) (uint8, error) {
	frame, err := readFrame(ch, reg)
	if err != nil {
		return 0, err
	}
	v, err := dev.roundTrip(frame)
	if err != nil {
		return 0, fmt.Errorf("transport: could not read register 0x%02x (ch=%d) from %s: %w", reg, ch, dev.name, err)
	}
	return v, nil
}

func (dev *Bridge) WriteRegister(ch, reg, v uint8) error {
	frame, err := writeFrame(ch, reg, v)
	if err != nil {
		return err
	}
	_, err = dev.roundTrip(frame)
	if err != nil {
		return fmt.Errorf("transport: could not write register 0x%02x (ch=%d) to %s: %w", reg, ch, dev.name, err)
	}
	return nil
}

// Reset asks the bridge to toggle the reset line of the chip.
func (dev *Bridge) Reset() error {
	_, err := dev.roundTrip([4]byte{opReset, 0, 0, 0})
	if err != nil {
		return fmt.Errorf("transport: could not reset %s: %w", dev.name, err)
	}
	return nil
}

func (dev *Bridge) Close() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.port == nil {
		return nil
	}
	err := dev.port.Close()
	dev.port = nil
	if err != nil {
		return fmt.Errorf("transport: could not close %s: %w", dev.name, err)
	}
	return nil
}
