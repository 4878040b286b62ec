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

package bundle

import (
	"io"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

// Replacer carries an edit intent attached to a DirectoryInfo: either
// replace the entry's content on the next Write, or drop the entry
// entirely. Grounded on woozymasta/pbo's Input struct (Open func() (io.ReadCloser,
// error), SizeHint int64), adapted from whole-archive packing to
// replace-in-place editing of a single bundle entry.
type Replacer interface {
	// Remove reports whether this entry should be dropped on the next
	// Write. When true, Size and Write are never called.
	Remove() bool

	// Size returns the exact number of bytes Write will emit. Called
	// once before any Write, to count the placeholder block records; the
	// new directory entry's size is the number of bytes Write emits.
	Size() int64

	// Write streams the replacement content to w. Must write exactly
	// Size() bytes.
	Write(w *binaryio.Writer) error
}

// RemoveReplacer is a Replacer that drops its associated entry.
type RemoveReplacer struct{}

func (RemoveReplacer) Remove() bool                 { return true }
func (RemoveReplacer) Size() int64                  { return 0 }
func (RemoveReplacer) Write(*binaryio.Writer) error { return nil }

// BytesReplacer replaces an entry's content with an in-memory buffer.
type BytesReplacer struct {
	Data []byte
}

func (r *BytesReplacer) Remove() bool { return false }
func (r *BytesReplacer) Size() int64  { return int64(len(r.Data)) }

func (r *BytesReplacer) Write(w *binaryio.Writer) error {
	return w.WriteBytes(r.Data)
}

// OpenReplacer replaces an entry's content by streaming from an
// externally provided source, opened lazily at Write time. SizeHint must
// be exact: it becomes the new entry's DecompressedSize.
type OpenReplacer struct {
	Open     func() (io.ReadCloser, error)
	SizeHint int64
}

func (r *OpenReplacer) Remove() bool { return false }
func (r *OpenReplacer) Size() int64  { return r.SizeHint }

func (r *OpenReplacer) Write(w *binaryio.Writer) error {
	rc, err := r.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return w.CopyFrom(rc, r.SizeHint)
}
