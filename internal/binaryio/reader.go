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

// Package binaryio provides big-endian, cursor-based reading and writing
// over a seekable byte stream, plus the NUL-terminated-string and
// 16-byte-alignment conventions used by the UnityFS and class database
// container formats.
package binaryio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedInput indicates a short read, a missing string terminator,
// or any other structurally inconsistent input.
var ErrMalformedInput = errors.New("binaryio: malformed input")

// Reader sequentially decodes big-endian values from an io.ReadSeeker,
// tracking position so callers can align or compute relative offsets.
type Reader struct {
	r   io.ReadSeeker
	pos int64
}

// NewReader wraps r for sequential big-endian decoding starting at its
// current position.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("binaryio: determine start position: %w", err)
	}
	return &Reader{r: r, pos: pos}, nil
}

// Pos returns the reader's current logical position.
func (r *Reader) Pos() int64 { return r.pos }

// Seek repositions the reader to an absolute offset.
func (r *Reader) Seek(offset int64) error {
	n, err := r.r.Seek(offset, io.SeekStart)
	if err != nil {
		return fmt.Errorf("binaryio: seek to %d: %w", offset, err)
	}
	r.pos = n
	return nil
}

// ReadExact reads exactly len(buf) bytes, failing with ErrMalformedInput on
// a short read.
func (r *Reader) ReadExact(buf []byte) error {
	n, err := io.ReadFull(r.r, buf)
	r.pos += int64(n)
	if err != nil {
		return fmt.Errorf("%w: read %d bytes: %w", ErrMalformedInput, len(buf), err)
	}
	return nil
}

// ReadBytes reads and returns n freshly allocated bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.ReadExact(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	var buf [1]byte
	if err := r.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	var buf [2]byte
	if err := r.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	var buf [4]byte
	if err := r.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadU64 reads a big-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	var buf [8]byte
	if err := r.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadI32 reads a big-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadI64 reads a big-endian int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadNullTerminated reads bytes until (and consuming) a NUL byte, returning
// the string without the terminator. Fails with ErrMalformedInput if the
// stream ends before a NUL byte is seen.
func (r *Reader) ReadNullTerminated() (string, error) {
	var buf []byte
	var b [1]byte
	for {
		n, err := r.r.Read(b[:])
		r.pos += int64(n)
		if err != nil {
			return "", fmt.Errorf("%w: unterminated string: %w", ErrMalformedInput, err)
		}
		if b[0] == 0 {
			return string(buf), nil
		}
		buf = append(buf, b[0])
	}
}

// Align16 advances the reader to the next 16-byte boundary, discarding
// padding bytes. It is a no-op if already aligned.
func (r *Reader) Align16() error {
	pad := alignPadding(r.pos)
	if pad == 0 {
		return nil
	}
	if _, err := r.ReadBytes(pad); err != nil {
		return fmt.Errorf("binaryio: align16: %w", err)
	}
	return nil
}

// alignPadding returns the number of bytes needed to round pos up to the
// next multiple of 16.
func alignPadding(pos int64) int {
	rem := pos % 16
	if rem == 0 {
		return 0
	}
	return int(16 - rem)
}
