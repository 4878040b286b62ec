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

// Package codec adapts third-party LZ4 and LZMA libraries to the
// byte-in/byte-out shape the UnityFS and class database containers need:
// explicit compressed/decompressed lengths, no subprocess plumbing.
package codec

import "errors"

// ErrCodec indicates a codec rejected its input or produced a result that
// did not match the declared length.
var ErrCodec = errors.New("codec: decode or encode failed")

// ErrIncompressible indicates LZ4CompressBlock's encoder could not shrink
// the input at all; callers that need a guaranteed-compressed result
// should catch this and fall back to storing the block uncompressed.
var ErrIncompressible = errors.New("codec: lz4 block did not compress")

// LZ4Level selects a compression effort for block compression.
type LZ4Level int

// Block compression levels, matching the three levels named in the spec.
const (
	LZ4LevelFast LZ4Level = iota
	LZ4LevelHC
	LZ4LevelHCMax
)
