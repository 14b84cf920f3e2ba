// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irq

import (
	"context"
	"time"
)

// Poller is a source raising an interrupt periodically, for boards
// without an interrupt line. The interrupt status is read by the device
// driver.
type Poller struct {
	tck *time.Ticker
}

// NewPoller returns a source firing every period.
func NewPoller(period time.Duration) *Poller {
	return &Poller{tck: time.NewTicker(period)}
}

func (*Poller) Name() string { return "poll" }

func (p *Poller) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.tck.C:
		return nil, nil
	}
}

func (p *Poller) Close() error {
	p.tck.Stop()
	return nil
}

var _ Source = (*Poller)(nil)
