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
	"bytes"
	"errors"
	"testing"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

// buildThreeEntryBundle assembles an uncompressed bundle with three
// directory entries back to back.
func buildThreeEntryBundle(t *testing.T) []byte {
	t.Helper()

	gb := &growBuf{}
	w, err := binaryio.NewWriter(gb)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	header := &BundleHeader{Signature: signatureUnityFS, Version: 6, GenerationVersion: "5.x.x", EngineVersion: "2021.3.0f1"}
	if err := header.Write(w); err != nil {
		t.Fatalf("header.Write: %v", err)
	}
	listingPos := w.Pos()

	parts := [][]byte{
		bytes.Repeat([]byte("1"), 10),
		bytes.Repeat([]byte("2"), 20),
		bytes.Repeat([]byte("3"), 30),
	}
	names := []string{"keep-me", "replace-me", "remove-me"}

	info := &BlockAndDirInfo{BlockInfos: []BlockInfo{{}}, DirectoryInfos: make([]DirectoryInfo, len(parts))}
	var offset int64
	for i, p := range parts {
		info.DirectoryInfos[i] = DirectoryInfo{Offset: offset, DecompressedSize: int64(len(p)), Name: names[i]}
		offset += int64(len(p))
	}
	info.BlockInfos[0] = BlockInfo{DecompressedSize: uint32(offset), CompressedSize: uint32(offset)}
	if err := info.Write(w); err != nil {
		t.Fatalf("info.Write: %v", err)
	}
	listingSize := w.Pos() - listingPos

	for _, p := range parts {
		if err := w.WriteBytes(p); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	totalFileSize := w.Pos()

	header.FS = FSHeader{
		TotalFileSize:    totalFileSize,
		CompressedSize:   uint32(listingSize),
		DecompressedSize: uint32(listingSize),
		Flags:            flagHasDirectoryInfo,
	}
	if _, err := gb.Seek(0, 0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	rw, err := binaryio.NewWriter(gb)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := header.Write(rw); err != nil {
		t.Fatalf("header rewrite: %v", err)
	}

	return gb.buf
}

func TestBundleWriteAppliesReplacerEdits(t *testing.T) {
	t.Parallel()

	raw := buildThreeEntryBundle(t)
	b, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer b.Close()

	for i := range b.BlockAndDirInfo.DirectoryInfos {
		switch b.BlockAndDirInfo.DirectoryInfos[i].Name {
		case "replace-me":
			b.BlockAndDirInfo.DirectoryInfos[i].Replacer = &BytesReplacer{Data: []byte("NEW CONTENT")}
		case "remove-me":
			b.BlockAndDirInfo.DirectoryInfos[i].Replacer = RemoveReplacer{}
		}
	}

	out := &growBuf{}
	w, err := binaryio.NewWriter(out)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := b.Write(w); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b2, err := Read(bytes.NewReader(out.buf))
	if err != nil {
		t.Fatalf("re-Read: %v", err)
	}
	defer b2.Close()

	if got, want := len(b2.BlockAndDirInfo.DirectoryInfos), 2; got != want {
		t.Fatalf("got %d directory entries after write, want %d", got, want)
	}

	byName := map[string]DirectoryInfo{}
	for _, d := range b2.BlockAndDirInfo.DirectoryInfos {
		byName[d.Name] = d
	}
	if _, ok := byName["remove-me"]; ok {
		t.Fatal("remove-me entry survived Write")
	}

	keep, ok := byName["keep-me"]
	if !ok {
		t.Fatal("keep-me entry missing after Write")
	}
	got := make([]byte, keep.DecompressedSize)
	if _, err := b2.DataReader.ReadAt(got, keep.Offset); err != nil {
		t.Fatalf("ReadAt keep-me: %v", err)
	}
	if !bytes.Equal(got, bytes.Repeat([]byte("1"), 10)) {
		t.Fatalf("keep-me content mismatch: %q", got)
	}

	replaced, ok := byName["replace-me"]
	if !ok {
		t.Fatal("replace-me entry missing after Write")
	}
	got = make([]byte, replaced.DecompressedSize)
	if _, err := b2.DataReader.ReadAt(got, replaced.Offset); err != nil {
		t.Fatalf("ReadAt replace-me: %v", err)
	}
	if !bytes.Equal(got, []byte("NEW CONTENT")) {
		t.Fatalf("replace-me content mismatch: %q", got)
	}
}

func TestBundleWriteRejectsCompressedData(t *testing.T) {
	t.Parallel()

	b := &Bundle{
		Header:           &BundleHeader{Signature: signatureUnityFS, Version: 6},
		BlockAndDirInfo:  &BlockAndDirInfo{},
		DataIsCompressed: true,
	}
	out := &growBuf{}
	w, err := binaryio.NewWriter(out)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := b.Write(w); err == nil {
		t.Fatal("Write: want error for compressed data, got nil")
	}
}

func TestBundleWriteRejectsClosedBundle(t *testing.T) {
	t.Parallel()

	b := &Bundle{
		Header:          &BundleHeader{Signature: signatureUnityFS, Version: 6},
		BlockAndDirInfo: &BlockAndDirInfo{},
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := &growBuf{}
	w, err := binaryio.NewWriter(out)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := b.Write(w); !errors.Is(err, ErrClosedStream) {
		t.Fatalf("Write after Close: got %v, want ErrClosedStream", err)
	}
}

func TestBlockCountForBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		total int64
		want  int
	}{
		{"empty", 0, 1},
		{"exactly one full block", maxBlockDataSize, 1},
		{"one byte over", maxBlockDataSize + 1, 2},
		{"two full blocks", 2 * maxBlockDataSize, 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := blockCountFor(tt.total); got != tt.want {
				t.Errorf("blockCountFor(%d) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}

func TestFillBlockSizesBoundary(t *testing.T) {
	t.Parallel()

	// A write producing exactly u32::MAX bytes fills one full block.
	full := make([]BlockInfo, blockCountFor(maxBlockDataSize))
	fillBlockSizes(full, maxBlockDataSize)
	if len(full) != 1 || full[0].DecompressedSize != maxBlockDataSize {
		t.Fatalf("fillBlockSizes(maxBlockDataSize) = %+v, want one block of size %d", full, uint32(maxBlockDataSize))
	}

	// One extra byte spills into a second block of size 1.
	split := make([]BlockInfo, blockCountFor(maxBlockDataSize+1))
	fillBlockSizes(split, maxBlockDataSize+1)
	if len(split) != 2 || split[0].DecompressedSize != maxBlockDataSize || split[1].DecompressedSize != 1 {
		t.Fatalf("fillBlockSizes(maxBlockDataSize+1) = %+v, want sizes (%d, 1)", split, uint32(maxBlockDataSize))
	}
}
