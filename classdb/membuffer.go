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

import "io"

// memBuffer is a minimal io.WriteSeeker over a growable backing slice,
// used to serialize a Class Database file's header and payload before
// their final lengths are known — the same role bundle.growableBuffer
// plays for the block/dir listing during Pack.
type memBuffer struct {
	bytes []byte
	pos   int64
}

func (m *memBuffer) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.bytes)) {
		grown := make([]byte, end)
		copy(grown, m.bytes)
		m.bytes = grown
	}
	n := copy(m.bytes[m.pos:end], p)
	m.pos += int64(n)
	return n, nil
}

func (m *memBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.bytes)) + offset
	}
	return m.pos, nil
}
