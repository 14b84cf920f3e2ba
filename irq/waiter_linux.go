// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package irq

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// waiter polls a file descriptor together with an eventfd written on
// context cancellation.
type waiter struct {
	efd int
}

func newWaiter() (*waiter, error) {
	efd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("irq: could not create eventfd: %w", err)
	}
	return &waiter{efd: efd}, nil
}

func (w *waiter) wake() {
	var one = [8]byte{1}
	_, _ = unix.Write(w.efd, one[:])
}

func (w *waiter) drain() {
	var buf [8]byte
	_, _ = unix.Read(w.efd, buf[:])
}

// wait blocks until fd reports one of events or ctx is done.
func (w *waiter) wait(ctx context.Context, fd int, events int16) (int16, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stop := context.AfterFunc(ctx, w.wake)
	defer stop()

	fds := []unix.PollFd{
		{Fd: int32(fd), Events: events},
		{Fd: int32(w.efd), Events: unix.POLLIN},
	}
	for {
		_, err := unix.Poll(fds, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return 0, fmt.Errorf("irq: could not poll: %w", err)
		}
		if fds[1].Revents != 0 {
			w.drain()
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			// stale wake-up from a previous context.
			fds[1].Revents = 0
			if fds[0].Revents == 0 {
				continue
			}
		}
		if fds[0].Revents&(unix.POLLNVAL) != 0 {
			return 0, fmt.Errorf("irq: invalid file descriptor %d", fd)
		}
		if fds[0].Revents != 0 {
			return fds[0].Revents, nil
		}
	}
}

func (w *waiter) close() error {
	return unix.Close(w.efd)
}
