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

// Package classdb reads and writes Class Database files: a compressed
// table mapping Unity asset class IDs and names to their structural
// descriptions, consumed by downstream asset parsers.
package classdb

import "fmt"

// CompressionType identifies how a Class Database file's payload is
// compressed.
type CompressionType uint8

const (
	CompressionUncompressed CompressionType = 0
	CompressionLz4          CompressionType = 1
	CompressionLzma         CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionUncompressed:
		return "Uncompressed"
	case CompressionLz4:
		return "Lz4"
	case CompressionLzma:
		return "Lzma"
	default:
		return fmt.Sprintf("CompressionType(%d)", uint8(c))
	}
}

// legacyNegativeClassID is the compatibility ID pre-5.5 Unity negative
// class IDs are remapped to, per AssetsTools.NET's convention.
const legacyNegativeClassID = 0x72

// ClassDatabaseType describes one asset class entry. Fields is carried
// opaque: this library copies it length-prefixed but never interprets
// its contents beyond that.
type ClassDatabaseType struct {
	ClassID    int32
	Name       uint16
	BaseOrSize int32
	Fields     []byte
}

// ClassDatabaseHeader is the fixed-layout record preceding a Class
// Database file's (possibly compressed) payload.
type ClassDatabaseHeader struct {
	Version          uint32
	Compression      CompressionType
	CompressedSize   uint32
	DecompressedSize uint32
}

// ClassDatabaseFile is a fully parsed Class Database: its classes,
// string table, and the subset of string-table indices flagged as
// well-known.
type ClassDatabaseFile struct {
	Header                    ClassDatabaseHeader
	Classes                   []ClassDatabaseType
	StringTable               *StringTable
	CommonStringBufferIndices []uint16
}
