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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaPropsLen is the length of the LZMA "properties" byte block Unity
// stores ahead of the uncompressed-size field.
const lzmaPropsLen = 5

// lzmaSizeLen is the length of the little-endian uncompressed-size field
// Unity always writes after the properties block, regardless of whether
// the underlying stream already knows its own length.
const lzmaSizeLen = 8

// lzmaDictSizeFor mirrors computeLZMADictSize: the smallest
// 2*2^i or 3*2^i power-of-two-ish bound at or above reduceSize, matching
// LzmaEncProps_Normalize's dictionary-size selection so a header
// synthesized purely from the declared size matches what a real Unity
// encoder would have produced.
func lzmaDictSizeFor(reduceSize uint32) uint32 {
	for i := uint32(11); i <= 30; i++ {
		if reduceSize <= (2 << i) {
			return 2 << i
		}
		if reduceSize <= (3 << i) {
			return 3 << i
		}
	}
	return 1 << 26
}

// LZMACompressStream compresses all of src and writes Unity's framing to
// dst: a 5-byte properties header, an 8-byte little-endian uncompressed
// size, then the raw LZMA stream. The size prefix is written even though
// ulikunitz/xz/lzma's own classic header would also carry one; Unity's
// on-disk convention keeps the two concerns (framing vs. codec) separate.
// Decode skips the prefix and relies on the caller-supplied size instead
// (see LZMADecompressStream).
func LZMACompressStream(dst io.Writer, src io.Reader) (int64, error) {
	var buf bytes.Buffer
	srcBytes, err := io.ReadAll(src)
	if err != nil {
		return 0, fmt.Errorf("%w: lzma compress: read source: %w", ErrCodec, err)
	}

	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return 0, fmt.Errorf("%w: lzma compress: init: %w", ErrCodec, err)
	}
	if _, err := w.Write(srcBytes); err != nil {
		return 0, fmt.Errorf("%w: lzma compress: %w", ErrCodec, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("%w: lzma compress: close: %w", ErrCodec, err)
	}

	full := buf.Bytes()
	if len(full) < 13 {
		return 0, fmt.Errorf("%w: lzma compress: unexpected short stream", ErrCodec)
	}
	// ulikunitz/xz/lzma writes the classic 13-byte header (5-byte
	// properties + 8-byte size); Unity only wants the 5-byte properties
	// block followed by its own size field, so re-frame rather than
	// emitting the library's header verbatim.
	props := full[:lzmaPropsLen]
	body := full[13:]

	var sizeField [lzmaSizeLen]byte
	binary.LittleEndian.PutUint64(sizeField[:], uint64(len(srcBytes)))

	written := 0
	for _, chunk := range [][]byte{props, sizeField[:], body} {
		n, err := dst.Write(chunk)
		written += n
		if err != nil {
			return int64(written), fmt.Errorf("%w: lzma compress: write: %w", ErrCodec, err)
		}
	}
	return int64(written), nil
}

// LZMADecompressStream reads Unity's 5-byte properties header, skips the
// 8-byte size field (the caller supplies the authoritative
// decompressedSize instead, per §4.3), and decodes exactly decompressedSize
// bytes, stopping early if compressedSize input bytes have been consumed
// (when compressedSize > 0).
func LZMADecompressStream(dst io.Writer, src io.Reader, decompressedSize int64, compressedSize int64) (int64, error) {
	var limited io.Reader = src
	if compressedSize > 0 {
		limited = io.LimitReader(src, compressedSize)
	}

	props := make([]byte, lzmaPropsLen)
	if _, err := io.ReadFull(limited, props); err != nil {
		return 0, fmt.Errorf("%w: lzma decompress: read properties: %w", ErrCodec, err)
	}
	sizeField := make([]byte, lzmaSizeLen)
	if _, err := io.ReadFull(limited, sizeField); err != nil {
		return 0, fmt.Errorf("%w: lzma decompress: read size field: %w", ErrCodec, err)
	}

	dictSize := lzmaDictSizeFor(uint32(decompressedSize)) //nolint:gosec // bounded by container-declared sizes
	header := make([]byte, 13)
	header[0] = props[0]
	binary.LittleEndian.PutUint32(header[1:5], dictSize)
	binary.LittleEndian.PutUint64(header[5:13], uint64(decompressedSize))

	r, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), limited))
	if err != nil {
		return 0, fmt.Errorf("%w: lzma decompress: init: %w", ErrCodec, err)
	}

	written, err := io.CopyN(dst, r, decompressedSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return written, fmt.Errorf("%w: lzma decompress: %w", ErrCodec, err)
	}
	if written != decompressedSize {
		return written, fmt.Errorf("%w: lzma decompress: got %d bytes, want %d", ErrCodec, written, decompressedSize)
	}
	return written, nil
}
