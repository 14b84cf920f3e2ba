// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmap

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestHandle(t *testing.T) {
	t.Run("nil-handle", func(t *testing.T) {
		var h *Handle

		_, err := h.ReadAt(nil, 0)
		if !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("invalid read-at error: %+v", err)
		}

		err = h.Close()
		if !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("invalid close error: %+v", err)
		}
	})
	t.Run("nil-data", func(t *testing.T) {
		var h Handle

		_, err := h.ReadAt(nil, 0)
		if !errors.Is(err, errClosed) {
			t.Fatalf("invalid read-at error: %+v", err)
		}

		err = h.Close()
		if err != nil {
			t.Fatalf("error closing nil-data handle: %+v", err)
		}
	})
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "trace.csv")
	err := os.WriteFile(fname, []byte("OPCODE,CHANNEL\nREAD,0\n"), 0644)
	if err != nil {
		t.Fatalf("could not create file: %+v", err)
	}

	h, err := Open(fname)
	if err != nil {
		t.Fatalf("could not map file: %+v", err)
	}
	defer h.Close()

	if got, want := h.Len(), 22; got != want {
		t.Fatalf("invalid len: got=%d, want=%d", got, want)
	}
	if got, want := h.At(15), byte('R'); got != want {
		t.Fatalf("invalid value: got=%q, want=%q", got, want)
	}

	_, err = h.ReadAt(nil, -1)
	if got, want := err.Error(), "mmap: invalid ReadAt offset -1"; got != want {
		t.Fatalf("invalid error: %+v", err)
	}

	buf := make([]byte, 8)
	n, err := h.ReadAt(buf, 18)
	if !errors.Is(err, io.EOF) || n != 4 {
		t.Fatalf("invalid short read: n=%d, err=%v", n, err)
	}

	raw, err := io.ReadAll(h.Reader())
	if err != nil {
		t.Fatalf("could not read file: %+v", err)
	}
	if got, want := string(raw), "OPCODE,CHANNEL\nREAD,0\n"; got != want {
		t.Fatalf("invalid content: got=%q, want=%q", got, want)
	}

	err = h.Close()
	if err != nil {
		t.Fatalf("could not unmap file: %+v", err)
	}
	_, err = h.ReadAt(buf, 0)
	if !errors.Is(err, errClosed) {
		t.Fatalf("invalid read-at error: %+v", err)
	}

	empty := filepath.Join(dir, "empty.csv")
	err = os.WriteFile(empty, nil, 0644)
	if err != nil {
		t.Fatalf("could not create file: %+v", err)
	}
	h, err = Open(empty)
	if err != nil {
		t.Fatalf("could not map empty file: %+v", err)
	}
	if got, want := h.Len(), 0; got != want {
		t.Fatalf("invalid len: got=%d, want=%d", got, want)
	}
	err = h.Close()
	if err != nil {
		t.Fatalf("could not close empty file: %+v", err)
	}

	_, err = Open(filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("invalid error: %+v", err)
	}
}
