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
	"fmt"
	"io"
)

// SegmentReader exposes the window [start, start+length) of a parent
// io.ReaderAt as an independently positioned io.ReadSeeker. Reads past the
// window are truncated to io.EOF; the parent is assumed safe for
// concurrent ReadAt calls (or exclusively owned by this segment while in
// use), matching the CHD sectorReader's offset-translation convention this
// type generalizes.
type SegmentReader struct {
	parent io.ReaderAt
	start  int64
	length int64
	pos    int64
}

// NewSegmentReader returns a SegmentReader over [start, start+length) of
// parent.
func NewSegmentReader(parent io.ReaderAt, start, length int64) *SegmentReader {
	return &SegmentReader{parent: parent, start: start, length: length}
}

// Len returns the segment's logical length.
func (s *SegmentReader) Len() int64 { return s.length }

// Read implements io.Reader, translating child positions to parent offsets.
func (s *SegmentReader) Read(p []byte) (int, error) {
	if s.pos >= s.length {
		return 0, io.EOF
	}
	remaining := s.length - s.pos
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := s.parent.ReadAt(p, s.start+s.pos)
	s.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("binaryio: segment read: %w", err)
	}
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, nil
}

// ReadAt implements io.ReaderAt over the segment's logical window,
// independent of Seek/Read's cursor.
func (s *SegmentReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= s.length {
		return 0, io.EOF
	}
	remaining := s.length - off
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := s.parent.ReadAt(p, s.start+off)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("binaryio: segment read at %d: %w", off, err)
	}
	return n, err
}

// Seek implements io.Seeker over the segment's logical window.
func (s *SegmentReader) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = s.length + offset
	default:
		return 0, fmt.Errorf("binaryio: segment seek: invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, fmt.Errorf("binaryio: segment seek: negative position %d", newPos)
	}
	s.pos = newPos
	return newPos, nil
}
