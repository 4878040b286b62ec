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

package codec

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4DecompressBlock decompresses a single raw LZ4 block into a buffer of
// exactly decompressedSize bytes, failing with ErrCodec if the decoder
// produces a different length.
func LZ4DecompressBlock(src []byte, decompressedSize int) ([]byte, error) {
	dst := make([]byte, decompressedSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 decompress: %w", ErrCodec, err)
	}
	if n != decompressedSize {
		return nil, fmt.Errorf("%w: lz4 decompress: got %d bytes, want %d", ErrCodec, n, decompressedSize)
	}
	return dst, nil
}

// LZ4CompressBlock compresses src as a single raw LZ4 block at the given
// level, returning a freshly allocated buffer sized to the actual
// compressed length.
func LZ4CompressBlock(src []byte, level LZ4Level) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))

	var n int
	var err error
	switch level {
	case LZ4LevelFast:
		n, err = lz4.CompressBlock(src, dst, nil)
	case LZ4LevelHC, LZ4LevelHCMax:
		// 0 selects pierrec/lz4's default high-compression depth; the
		// library does not expose a separate "max" tier at the block API.
		n, err = lz4.CompressBlockHC(src, dst, 0, nil, nil)
	default:
		return nil, fmt.Errorf("%w: lz4 compress: unknown level %d", ErrCodec, level)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 compress: %w", ErrCodec, err)
	}
	if n == 0 && len(src) > 0 {
		// Incompressible input: pierrec/lz4 returns n==0 rather than
		// expanding the block.
		return nil, fmt.Errorf("%w: lz4 compress", ErrIncompressible)
	}
	return dst[:n], nil
}
