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

// Package bundle reads, edits and rewrites UnityFS asset bundle containers:
// a small header, a block/directory listing, and a logical data region
// built by concatenating a list of independently compressed blocks.
package bundle

import "fmt"

// CompressionType identifies how a block (or the block/dir listing itself)
// is compressed. The same three-way encoding is reused for both.
type CompressionType uint8

const (
	CompressionNone  CompressionType = 0
	CompressionLZMA  CompressionType = 1
	CompressionLZ4   CompressionType = 2
	CompressionLZ4HC CompressionType = 3
)

// compressionTypeMask isolates the low 6 bits of a flags field that carry
// a CompressionType.
const compressionTypeMask = 0x3F

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZMA:
		return "LZMA"
	case CompressionLZ4:
		return "LZ4"
	case CompressionLZ4HC:
		return "LZ4HC"
	default:
		return fmt.Sprintf("CompressionType(%d)", uint8(c))
	}
}

// Hash128 is an opaque 16-byte identifier carried through a bundle's
// listing unmodified; this library never interprets its contents.
type Hash128 [16]byte

// BlockInfo describes one compressed span of the data region. List order
// in a BlockAndDirInfo defines concatenation order in the data region.
type BlockInfo struct {
	DecompressedSize uint32
	CompressedSize   uint32
	Flags            uint16
}

// CompressionType reports the per-block compression type carried in the
// low 6 bits of Flags.
func (b BlockInfo) CompressionType() CompressionType {
	return CompressionType(b.Flags & compressionTypeMask)
}

// DirectoryInfo names one logical file stored within the data region.
type DirectoryInfo struct {
	Offset           int64
	DecompressedSize int64
	Flags            uint32
	Name             string

	// Replacer carries a pending edit for the next Write, if any.
	Replacer Replacer
}

// BlockAndDirInfo is the parsed block/directory listing of a bundle.
type BlockAndDirInfo struct {
	Hash           Hash128
	BlockInfos     []BlockInfo
	DirectoryInfos []DirectoryInfo
}

// TotalDecompressedSize returns the sum of the decompressed sizes of all
// blocks, i.e. the length of the logical data region.
func (b *BlockAndDirInfo) TotalDecompressedSize() int64 {
	var total int64
	for _, bi := range b.BlockInfos {
		total += int64(bi.DecompressedSize)
	}
	return total
}
