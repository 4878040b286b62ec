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
	"fmt"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

// ReadBlockAndDirInfo parses a BlockAndDirInfo from the current position
// of r: hash(16) ‖ blockCount:u32 ‖ blockInfos[] ‖ dirCount:u32 ‖
// dirInfos[]. Generalizes chd/metadata.go's entry-chain parsing (fixed
// record header + variable trailing payload) to UnityFS's flat
// count-prefixed-array layout.
func ReadBlockAndDirInfo(r *binaryio.Reader) (*BlockAndDirInfo, error) {
	var info BlockAndDirInfo

	hashBytes, err := r.ReadBytes(len(info.Hash))
	if err != nil {
		return nil, fmt.Errorf("bundle: read listing hash: %w", err)
	}
	copy(info.Hash[:], hashBytes)

	blockCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("bundle: read block count: %w", err)
	}
	info.BlockInfos = make([]BlockInfo, blockCount)
	for i := range info.BlockInfos {
		decompressedSize, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("bundle: read block %d decompressed size: %w", i, err)
		}
		compressedSize, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("bundle: read block %d compressed size: %w", i, err)
		}
		flags, err := r.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("bundle: read block %d flags: %w", i, err)
		}
		info.BlockInfos[i] = BlockInfo{
			DecompressedSize: decompressedSize,
			CompressedSize:   compressedSize,
			Flags:            flags,
		}
	}

	dirCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("bundle: read directory count: %w", err)
	}
	info.DirectoryInfos = make([]DirectoryInfo, dirCount)
	for i := range info.DirectoryInfos {
		offset, err := r.ReadI64()
		if err != nil {
			return nil, fmt.Errorf("bundle: read directory %d offset: %w", i, err)
		}
		decompressedSize, err := r.ReadI64()
		if err != nil {
			return nil, fmt.Errorf("bundle: read directory %d size: %w", i, err)
		}
		flags, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("bundle: read directory %d flags: %w", i, err)
		}
		name, err := r.ReadNullTerminated()
		if err != nil {
			return nil, fmt.Errorf("bundle: read directory %d name: %w", i, err)
		}
		info.DirectoryInfos[i] = DirectoryInfo{
			Offset:           offset,
			DecompressedSize: decompressedSize,
			Flags:            flags,
			Name:             name,
		}
	}

	return &info, nil
}

// Write emits the listing in the same layout ReadBlockAndDirInfo parses.
func (info *BlockAndDirInfo) Write(w *binaryio.Writer) error {
	if err := w.WriteBytes(info.Hash[:]); err != nil {
		return fmt.Errorf("bundle: write listing hash: %w", err)
	}

	if err := w.WriteU32(uint32(len(info.BlockInfos))); err != nil {
		return fmt.Errorf("bundle: write block count: %w", err)
	}
	for i, b := range info.BlockInfos {
		if err := w.WriteU32(b.DecompressedSize); err != nil {
			return fmt.Errorf("bundle: write block %d decompressed size: %w", i, err)
		}
		if err := w.WriteU32(b.CompressedSize); err != nil {
			return fmt.Errorf("bundle: write block %d compressed size: %w", i, err)
		}
		if err := w.WriteU16(b.Flags); err != nil {
			return fmt.Errorf("bundle: write block %d flags: %w", i, err)
		}
	}

	if err := w.WriteU32(uint32(len(info.DirectoryInfos))); err != nil {
		return fmt.Errorf("bundle: write directory count: %w", err)
	}
	for i, d := range info.DirectoryInfos {
		if err := w.WriteI64(d.Offset); err != nil {
			return fmt.Errorf("bundle: write directory %d offset: %w", i, err)
		}
		if err := w.WriteI64(d.DecompressedSize); err != nil {
			return fmt.Errorf("bundle: write directory %d size: %w", i, err)
		}
		if err := w.WriteU32(d.Flags); err != nil {
			return fmt.Errorf("bundle: write directory %d flags: %w", i, err)
		}
		if err := w.WriteNullTerminated(d.Name); err != nil {
			return fmt.Errorf("bundle: write directory %d name: %w", i, err)
		}
	}

	return nil
}
