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

package classdb

import (
	"fmt"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

// StringTable is a length-prefixed list of NUL-terminated strings,
// addressed by u16 index.
type StringTable struct {
	strings []string
}

// NewStringTable builds a StringTable from an ordered list of strings,
// indexable by their position.
func NewStringTable(strings []string) *StringTable {
	return &StringTable{strings: append([]string(nil), strings...)}
}

// Get returns the string at idx, or ("", false) if idx is out of range —
// it never panics, matching the IndexOutOfRange sentinel-return
// convention used elsewhere in this library rather than an error return.
func (t *StringTable) Get(idx uint16) (string, bool) {
	if t == nil || int(idx) >= len(t.strings) {
		return "", false
	}
	return t.strings[idx], true
}

// readStringTable parses a StringTable: a u32 count followed by that many
// NUL-terminated strings.
func readStringTable(r *binaryio.Reader) (*StringTable, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("classdb: read string table count: %w", err)
	}
	strings := make([]string, count)
	for i := range strings {
		s, err := r.ReadNullTerminated()
		if err != nil {
			return nil, fmt.Errorf("classdb: read string table entry %d: %w", i, err)
		}
		strings[i] = s
	}
	return &StringTable{strings: strings}, nil
}

// write serializes t in the format readStringTable expects.
func (t *StringTable) write(w *binaryio.Writer) error {
	if err := w.WriteU32(uint32(len(t.strings))); err != nil {
		return fmt.Errorf("classdb: write string table count: %w", err)
	}
	for i, s := range t.strings {
		if err := w.WriteNullTerminated(s); err != nil {
			return fmt.Errorf("classdb: write string table entry %d: %w", i, err)
		}
	}
	return nil
}
