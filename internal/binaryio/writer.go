// Copyright (c) 2026 The go-unitybundle Authors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-unitybundle.
//
// go-unitybundle is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-unitybundle is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-unitybundle.  If not, see <https://www.gnu.org/licenses/>.

package binaryio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer sequentially encodes big-endian values to an io.WriteSeeker,
// tracking position so callers can align or seek back to fix up
// placeholder fields.
type Writer struct {
	w   io.WriteSeeker
	pos int64
}

// NewWriter wraps w for sequential big-endian encoding starting at its
// current position.
func NewWriter(w io.WriteSeeker) (*Writer, error) {
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("binaryio: determine start position: %w", err)
	}
	return &Writer{w: w, pos: pos}, nil
}

// Pos returns the writer's current logical position.
func (w *Writer) Pos() int64 { return w.pos }

// Seek repositions the writer to an absolute offset.
func (w *Writer) Seek(offset int64) error {
	n, err := w.w.Seek(offset, io.SeekStart)
	if err != nil {
		return fmt.Errorf("binaryio: seek to %d: %w", offset, err)
	}
	w.pos = n
	return nil
}

// WriteBytes writes buf as-is.
func (w *Writer) WriteBytes(buf []byte) error {
	n, err := w.w.Write(buf)
	w.pos += int64(n)
	if err != nil {
		return fmt.Errorf("binaryio: write %d bytes: %w", len(buf), err)
	}
	return nil
}

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteU16 writes a big-endian uint16.
func (w *Writer) WriteU16(v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteU32 writes a big-endian uint32.
func (w *Writer) WriteU32(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteU64 writes a big-endian uint64.
func (w *Writer) WriteU64(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteI32 writes a big-endian int32.
func (w *Writer) WriteI32(v int32) error {
	return w.WriteU32(uint32(v))
}

// WriteI64 writes a big-endian int64.
func (w *Writer) WriteI64(v int64) error {
	return w.WriteU64(uint64(v))
}

// WriteNullTerminated writes s followed by a single NUL byte.
func (w *Writer) WriteNullTerminated(s string) error {
	if err := w.WriteBytes([]byte(s)); err != nil {
		return err
	}
	return w.WriteU8(0)
}

// Align16 pads with zero bytes up to the next 16-byte boundary.
func (w *Writer) Align16() error {
	pad := alignPadding(w.pos)
	if pad == 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, pad))
}

// CopyFrom copies exactly n bytes from r into the writer, advancing both.
func (w *Writer) CopyFrom(r io.Reader, n int64) error {
	written, err := io.CopyN(w.w, r, n)
	w.pos += written
	if err != nil {
		return fmt.Errorf("binaryio: copy %d bytes: %w", n, err)
	}
	return nil
}
