// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fxs

import "errors"

var (
	ErrPattern     = errors.New("fxs: invalid ring pattern")
	ErrRingOffHook = errors.New("fxs: cannot ring an off-hook line")
	ErrNoPattern   = errors.New("fxs: no ring pattern")
)
