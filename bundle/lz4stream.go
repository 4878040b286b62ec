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
	"io"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/unitybundle/go-unitybundle/internal/codec"
)

// defaultBlockCacheSize matches HunkMap.maxCache of 16.
const defaultBlockCacheSize = 16

// LZ4BlockStream presents a seekable, read-only view of a bundle's logical
// data region when it is built from a list of LZ4/LZ4HC-compressed
// blocks. Decoded blocks are cached in a bounded LRU keyed by block index,
// generalizing chd/hunk.go's HunkMap.ReadHunk from a uniform-size hunk
// table and clear-all eviction to a per-block-size prefix-sum table and
// genuine least-recently-used eviction.
type LZ4BlockStream struct {
	src    io.ReaderAt
	blocks []BlockInfo
	// offsets[i] is the compressed-byte offset of blocks[i] within src;
	// prefix[i] is the decompressed-byte offset blocks[i] starts at.
	// prefix has len(blocks)+1 entries; prefix[len(blocks)] is the total
	// decompressed length.
	offsets []int64
	prefix  []int64

	cache *lru.Cache[uint32, []byte]
	pos   int64
}

// NewLZ4BlockStream builds a random-access stream over blocks stored
// back-to-back in src starting at baseOffset. Every block must report a
// CompressionType of LZ4 or LZ4HC; NewLZ4BlockStream does not itself
// decode anything.
func NewLZ4BlockStream(src io.ReaderAt, baseOffset int64, blocks []BlockInfo) (*LZ4BlockStream, error) {
	cache, err := lru.New[uint32, []byte](defaultBlockCacheSize)
	if err != nil {
		return nil, fmt.Errorf("bundle: lz4 block stream: init cache: %w", err)
	}

	offsets := make([]int64, len(blocks))
	prefix := make([]int64, len(blocks)+1)
	cursor := baseOffset
	var total int64
	for i, b := range blocks {
		if ct := b.CompressionType(); ct != CompressionLZ4 && ct != CompressionLZ4HC {
			return nil, fmt.Errorf("bundle: lz4 block stream: block %d has unsupported compression %s", i, ct)
		}
		offsets[i] = cursor
		cursor += int64(b.CompressedSize)

		prefix[i] = total
		total += int64(b.DecompressedSize)
	}
	prefix[len(blocks)] = total

	return &LZ4BlockStream{
		src:     src,
		blocks:  blocks,
		offsets: offsets,
		prefix:  prefix,
		cache:   cache,
	}, nil
}

// Len returns the total decompressed length of the stream.
func (s *LZ4BlockStream) Len() int64 {
	return s.prefix[len(s.prefix)-1]
}

// blockFor returns the index of the block containing decompressed offset
// pos via binary search over the prefix-sum table.
func (s *LZ4BlockStream) blockFor(pos int64) int {
	return sort.Search(len(s.blocks), func(i int) bool {
		return s.prefix[i+1] > pos
	})
}

// decodeBlock returns the decompressed bytes of block i, decoding and
// caching on miss. Cached entries are read-only: callers must not mutate
// the returned slice.
func (s *LZ4BlockStream) decodeBlock(i int) ([]byte, error) {
	idx := uint32(i)
	if data, ok := s.cache.Get(idx); ok {
		return data, nil
	}

	b := s.blocks[i]
	raw := make([]byte, b.CompressedSize)
	if _, err := s.src.ReadAt(raw, s.offsets[i]); err != nil {
		return nil, fmt.Errorf("bundle: lz4 block stream: read block %d: %w", i, err)
	}
	data, err := codec.LZ4DecompressBlock(raw, int(b.DecompressedSize))
	if err != nil {
		return nil, fmt.Errorf("bundle: lz4 block stream: decode block %d: %w", i, err)
	}
	s.cache.Add(idx, data)
	return data, nil
}

// Read implements io.Reader, decoding across block boundaries as needed.
func (s *LZ4BlockStream) Read(p []byte) (int, error) {
	n, err := s.ReadAt(p, s.pos)
	s.pos += int64(n)
	return n, err
}

// ReadAt implements io.ReaderAt over the decompressed data region.
func (s *LZ4BlockStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("bundle: lz4 block stream: negative offset %d", off)
	}
	total := s.Len()
	if off >= total {
		return 0, io.EOF
	}

	written := 0
	pos := off
	for written < len(p) && pos < total {
		i := s.blockFor(pos)
		data, err := s.decodeBlock(i)
		if err != nil {
			return written, err
		}
		blockStart := s.prefix[i]
		inBlock := pos - blockStart
		n := copy(p[written:], data[inBlock:])
		written += n
		pos += int64(n)
	}
	if written < len(p) {
		return written, io.EOF
	}
	return written, nil
}

// Seek implements io.Seeker over the decompressed data region. Seeking
// never triggers a decode.
func (s *LZ4BlockStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = s.Len() + offset
	default:
		return 0, fmt.Errorf("bundle: lz4 block stream: invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, fmt.Errorf("bundle: lz4 block stream: negative seek result %d", newPos)
	}
	s.pos = newPos
	return s.pos, nil
}
