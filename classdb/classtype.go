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

// readClassType parses a single ClassDatabaseType: classId, name,
// baseOrSize, then a u32-length-prefixed opaque fields blob.
func readClassType(r *binaryio.Reader) (ClassDatabaseType, error) {
	classID, err := r.ReadI32()
	if err != nil {
		return ClassDatabaseType{}, fmt.Errorf("classdb: read class id: %w", err)
	}
	name, err := r.ReadU16()
	if err != nil {
		return ClassDatabaseType{}, fmt.Errorf("classdb: read class name index: %w", err)
	}
	baseOrSize, err := r.ReadI32()
	if err != nil {
		return ClassDatabaseType{}, fmt.Errorf("classdb: read class base/size: %w", err)
	}
	fieldsLen, err := r.ReadU32()
	if err != nil {
		return ClassDatabaseType{}, fmt.Errorf("classdb: read class fields length: %w", err)
	}
	fields, err := r.ReadBytes(int(fieldsLen))
	if err != nil {
		return ClassDatabaseType{}, fmt.Errorf("classdb: read class fields: %w", err)
	}

	return ClassDatabaseType{
		ClassID:    classID,
		Name:       name,
		BaseOrSize: baseOrSize,
		Fields:     fields,
	}, nil
}

// write serializes c in the format readClassType expects.
func (c ClassDatabaseType) write(w *binaryio.Writer) error {
	if err := w.WriteI32(c.ClassID); err != nil {
		return fmt.Errorf("classdb: write class id: %w", err)
	}
	if err := w.WriteU16(c.Name); err != nil {
		return fmt.Errorf("classdb: write class name index: %w", err)
	}
	if err := w.WriteI32(c.BaseOrSize); err != nil {
		return fmt.Errorf("classdb: write class base/size: %w", err)
	}
	if err := w.WriteU32(uint32(len(c.Fields))); err != nil {
		return fmt.Errorf("classdb: write class fields length: %w", err)
	}
	if err := w.WriteBytes(c.Fields); err != nil {
		return fmt.Errorf("classdb: write class fields: %w", err)
	}
	return nil
}
