// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

import "errors"

var (
	// ErrCommunication reports a failure of the underlying transport.
	ErrCommunication = errors.New("slic: communication error")

	// ErrTimeout reports an exhausted wait-for-ready or calibration poll.
	ErrTimeout = errors.New("slic: timeout")

	// ErrInit reports a failed device bring-up.
	ErrInit = errors.New("slic: initialization failed")

	// ErrBlobInvalid reports an empty or malformed firmware blob.
	ErrBlobInvalid = errors.New("slic: invalid blob")

	// ErrBlobUpload reports an unexpected failure while uploading a blob.
	ErrBlobUpload = errors.New("slic: blob upload failed")

	// ErrBlobVerify reports a read-back mismatch after a blob upload.
	ErrBlobVerify = errors.New("slic: blob verification failed")

	// ErrInvalidCalibration reports a malformed calibration seed.
	ErrInvalidCalibration = errors.New("slic: invalid calibration")

	// ErrNotSupported is returned by chips lacking a capability.
	ErrNotSupported = errors.New("slic: operation not supported")

	// ErrNoChannel reports an access to an unprobed channel.
	ErrNoChannel = errors.New("slic: no such channel")
)
