// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package transport

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/go-lpc/proslic/internal/gpio"
	"golang.org/x/sys/unix"
)

// spidev ioctl requests.
const (
	spiIOCWrMode        = 0x40016b01 // _IOW('k', 1, __u8)
	spiIOCWrBitsPerWord = 0x40016b03 // _IOW('k', 3, __u8)
	spiIOCWrMaxSpeedHz  = 0x40046b04 // _IOW('k', 4, __u32)
	spiIOCMessage2      = 0x40406b00 // _IOW('k', 0, char[2*sizeof(struct spi_ioc_transfer)])
)

// spiTransfer mirrors struct spi_ioc_transfer.
type spiTransfer struct {
	txBuf       uint64
	rxBuf       uint64
	len         uint32
	speedHz     uint32
	delayUsecs  uint16
	bitsPerWord uint8
	csChange    uint8
	txNbits     uint8
	rxNbits     uint8
	wordDelay   uint8
	pad         uint8
}

// SPI is a transport over a Linux spidev node.
type SPI struct {
	mu    sync.Mutex
	msg   *log.Logger
	f     *os.File
	name  string
	speed uint32
	reset *gpio.Pin

	// transfer buffers, handed to the kernel by address.
	tx    []byte
	rx    []byte
	xfers *[2]spiTransfer
}

func newSPI(f *os.File, name string, speed uint32) *SPI {
	return &SPI{
		f:     f,
		name:  name,
		speed: speed,
		tx:    make([]byte, 4),
		rx:    make([]byte, 2),
		xfers: new([2]spiTransfer),
	}
}

// OpenSPI opens the spidev node at path, eg /dev/spidev0.0.
func OpenSPI(path string, opts ...Option) (*SPI, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: could not open %q: %w", path, err)
	}

	dev := newSPI(f, path, cfg.speed)
	dev.msg = cfg.msg

	err = dev.setup(cfg)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return dev, nil
}

func (dev *SPI) setup(cfg config) error {
	var (
		mode  = cfg.mode
		bits  = uint8(8)
		speed = cfg.speed
	)
	for _, v := range []struct {
		name string
		req  uintptr
		ptr  unsafe.Pointer
	}{
		{"mode", spiIOCWrMode, unsafe.Pointer(&mode)},
		{"bits per word", spiIOCWrBitsPerWord, unsafe.Pointer(&bits)},
		{"speed", spiIOCWrMaxSpeedHz, unsafe.Pointer(&speed)},
	} {
		err := dev.ioctl(v.req, v.ptr)
		if err != nil {
			return fmt.Errorf("transport: could not set SPI %s of %s: %w", v.name, dev.name, err)
		}
	}

	if cfg.resetGPIO < 0 {
		return nil
	}

	pin, err := gpio.Export(cfg.resetGPIO)
	if err != nil {
		return fmt.Errorf("transport: could not setup reset line of %s: %w", dev.name, err)
	}
	err = pin.SetDirection(gpio.Out)
	if err != nil {
		return fmt.Errorf("transport: could not setup reset line of %s: %w", dev.name, err)
	}
	dev.reset = pin
	return nil
}

func (dev *SPI) ioctl(req uintptr, ptr unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, dev.f.Fd(), req, uintptr(ptr))
	if errno != 0 {
		return errno
	}
	return nil
}

// transfers fills the transfer descriptors of frame: the control and
// register bytes, with chip select released afterwards, then the two data
// bytes. dev.mu must be held.
func (dev *SPI) transfers(frame [4]byte) *[2]spiTransfer {
	copy(dev.tx, frame[:])
	dev.rx[0], dev.rx[1] = 0, 0
	dev.xfers[0] = spiTransfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&dev.tx[0]))),
		len:         2,
		speedHz:     dev.speed,
		bitsPerWord: 8,
		csChange:    1,
	}
	dev.xfers[1] = spiTransfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&dev.tx[2]))),
		rxBuf:       uint64(uintptr(unsafe.Pointer(&dev.rx[0]))),
		len:         2,
		speedHz:     dev.speed,
		bitsPerWord: 8,
	}
	return dev.xfers
}

func (dev *SPI) xfer(frame [4]byte) ([2]byte, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	var rx [2]byte
	if dev.f == nil {
		return rx, ErrClosed
	}

	xfers := dev.transfers(frame)
	err := dev.ioctl(spiIOCMessage2, unsafe.Pointer(&xfers[0]))
	runtime.KeepAlive(dev.tx)
	runtime.KeepAlive(dev.rx)
	copy(rx[:], dev.rx)
	return rx, err
}

func (dev *SPI) ReadRegister(ch, reg uint8) (uint8, error) {
	frame, err := readFrame(ch, reg)
	if err != nil {
		return 0, err
	}
	rx, err := dev.xfer(frame)
	if err != nil {
		return 0, fmt.Errorf("transport: could not read register 0x%02x (ch=%d) from %s: %w", reg, ch, dev.name, err)
	}
	return rx[0], nil
}

func (dev *SPI) WriteRegister(ch, reg, v uint8) error {
	frame, err := writeFrame(ch, reg, v)
	if err != nil {
		return err
	}
	_, err = dev.xfer(frame)
	if err != nil {
		return fmt.Errorf("transport: could not write register 0x%02x (ch=%d) to %s: %w", reg, ch, dev.name, err)
	}
	return nil
}

// Reset toggles the reset line of the chip, when one was configured.
func (dev *SPI) Reset() error {
	if dev.reset == nil {
		dev.msg.Printf("%s: no reset line, skipping hardware reset", dev.name)
		return nil
	}
	err := dev.reset.Pulse(200*time.Millisecond, 400*time.Millisecond)
	if err != nil {
		return fmt.Errorf("transport: could not reset %s: %w", dev.name, err)
	}
	return nil
}

func (dev *SPI) Close() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.f == nil {
		return nil
	}
	err := dev.f.Close()
	dev.f = nil
	if err != nil {
		return fmt.Errorf("transport: could not close %s: %w", dev.name, err)
	}
	return nil
}
