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
	"strings"
	"testing"
)

func TestLZ4BlockRoundTrip(t *testing.T) {
	t.Parallel()

	src := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 200)

	tests := []struct {
		name  string
		level LZ4Level
	}{
		{"fast", LZ4LevelFast},
		{"hc", LZ4LevelHC},
		{"hc_max", LZ4LevelHCMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			compressed, err := LZ4CompressBlock(src, tt.level)
			if err != nil {
				t.Fatalf("LZ4CompressBlock: %v", err)
			}
			got, err := LZ4DecompressBlock(compressed, len(src))
			if err != nil {
				t.Fatalf("LZ4DecompressBlock: %v", err)
			}
			if !bytes.Equal(got, src) {
				t.Fatalf("round-trip mismatch: got %d bytes, want %d", len(got), len(src))
			}
		})
	}
}

func TestLZ4DecompressBlockWrongLength(t *testing.T) {
	t.Parallel()

	src := []byte("hello world")
	compressed, err := LZ4CompressBlock(src, LZ4LevelHC)
	if err != nil {
		t.Fatalf("LZ4CompressBlock: %v", err)
	}
	if _, err := LZ4DecompressBlock(compressed, len(src)+5); err == nil {
		t.Fatal("LZ4DecompressBlock: want error for mismatched length, got nil")
	}
}

func TestLZMAStreamRoundTrip(t *testing.T) {
	t.Parallel()

	src := []byte(strings.Repeat("unity asset bundle payload ", 500))

	var compressed bytes.Buffer
	n, err := LZMACompressStream(&compressed, bytes.NewReader(src))
	if err != nil {
		t.Fatalf("LZMACompressStream: %v", err)
	}
	if n != int64(compressed.Len()) {
		t.Fatalf("LZMACompressStream returned %d, buffer has %d bytes", n, compressed.Len())
	}

	var decompressed bytes.Buffer
	written, err := LZMADecompressStream(&decompressed, bytes.NewReader(compressed.Bytes()), int64(len(src)), int64(compressed.Len()))
	if err != nil {
		t.Fatalf("LZMADecompressStream: %v", err)
	}
	if written != int64(len(src)) {
		t.Fatalf("LZMADecompressStream wrote %d bytes, want %d", written, len(src))
	}
	if !bytes.Equal(decompressed.Bytes(), src) {
		t.Fatal("LZMA round-trip mismatch")
	}
}
