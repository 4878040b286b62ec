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
	"io"
	"testing"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

// growBuf is a minimal io.WriteSeeker over a growable backing slice, used
// to assemble test fixtures without going through the filesystem.
type growBuf struct {
	buf []byte
	pos int64
}

func (g *growBuf) Write(p []byte) (int, error) {
	end := g.pos + int64(len(p))
	if end > int64(len(g.buf)) {
		grown := make([]byte, end)
		copy(grown, g.buf)
		g.buf = grown
	}
	n := copy(g.buf[g.pos:end], p)
	g.pos += int64(n)
	return n, nil
}

func (g *growBuf) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		g.pos = offset
	case io.SeekCurrent:
		g.pos += offset
	case io.SeekEnd:
		g.pos = int64(len(g.buf)) + offset
	}
	return g.pos, nil
}

// buildMinimalUncompressedBundle assembles a single-block, uncompressed
// bundle with one directory entry containing payload, returning the raw
// bytes.
func buildMinimalUncompressedBundle(t *testing.T, payload []byte) []byte {
	t.Helper()

	gb := &growBuf{}
	w, err := binaryio.NewWriter(gb)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	header := &BundleHeader{
		Signature:         signatureUnityFS,
		Version:           6,
		GenerationVersion: "5.x.x",
		EngineVersion:     "2021.3.0f1",
	}
	if err := header.Write(w); err != nil {
		t.Fatalf("header.Write: %v", err)
	}
	listingPos := w.Pos()

	info := &BlockAndDirInfo{
		BlockInfos: []BlockInfo{
			{DecompressedSize: uint32(len(payload)), CompressedSize: uint32(len(payload)), Flags: 0},
		},
		DirectoryInfos: []DirectoryInfo{
			{Offset: 0, DecompressedSize: int64(len(payload)), Flags: 4, Name: "CAB-test"},
		},
	}
	if err := info.Write(w); err != nil {
		t.Fatalf("info.Write: %v", err)
	}
	listingSize := w.Pos() - listingPos

	if err := w.WriteBytes(payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	totalFileSize := w.Pos()

	// Fix up header fields now that sizes are known, then rewrite it.
	header.FS.TotalFileSize = totalFileSize
	header.FS.CompressedSize = uint32(listingSize)
	header.FS.DecompressedSize = uint32(listingSize)
	header.FS.Flags = flagHasDirectoryInfo

	if _, err := gb.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	rewriteW, err := binaryio.NewWriter(gb)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := header.Write(rewriteW); err != nil {
		t.Fatalf("header rewrite: %v", err)
	}
	if rewriteW.Pos() != listingPos {
		t.Fatalf("header rewrite changed length: got %d, want %d", rewriteW.Pos(), listingPos)
	}

	return gb.buf
}

func TestReadMinimalUncompressedBundle(t *testing.T) {
	t.Parallel()

	payload := []byte("hello unity bundle")
	raw := buildMinimalUncompressedBundle(t, payload)

	b, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer b.Close()

	if b.Header.Signature != signatureUnityFS {
		t.Fatalf("Signature = %q, want %q", b.Header.Signature, signatureUnityFS)
	}
	if b.DataIsCompressed {
		t.Fatal("DataIsCompressed = true, want false")
	}
	if len(b.BlockAndDirInfo.DirectoryInfos) != 1 {
		t.Fatalf("got %d directory entries, want 1", len(b.BlockAndDirInfo.DirectoryInfos))
	}
	entry := b.BlockAndDirInfo.DirectoryInfos[0]
	if entry.Name != "CAB-test" {
		t.Fatalf("entry.Name = %q, want %q", entry.Name, "CAB-test")
	}

	got := make([]byte, entry.DecompressedSize)
	if _, err := b.DataReader.ReadAt(got, entry.Offset); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %q, want %q", got, payload)
	}
}

func TestBundleInfoOffsetAndFileDataOffset(t *testing.T) {
	t.Parallel()

	h := &BundleHeader{}
	h.headerEnd = 32
	h.FS.CompressedSize = 10
	h.FS.TotalFileSize = 1000

	if got, want := h.BundleInfoOffset(), int64(32); got != want {
		t.Fatalf("BundleInfoOffset() = %d, want %d", got, want)
	}
	if got, want := h.FileDataOffset(), int64(42); got != want {
		t.Fatalf("FileDataOffset() = %d, want %d", got, want)
	}

	h.FS.Flags = flagBlockAndDirInfoAtEnd
	if got, want := h.BundleInfoOffset(), int64(990); got != want {
		t.Fatalf("BundleInfoOffset() with AtEnd = %d, want %d", got, want)
	}
	if got, want := h.FileDataOffset(), int64(32); got != want {
		t.Fatalf("FileDataOffset() with AtEnd = %d, want %d", got, want)
	}

	h.FS.Flags |= flagBlockInfoNeedsPadStart
	if got, want := h.FileDataOffset(), int64(32); got != want {
		t.Fatalf("FileDataOffset() with pad at already-aligned offset = %d, want %d", got, want)
	}
	h.headerEnd = 33
	h.FS.Flags = flagBlockInfoNeedsPadStart
	if got, want := h.FileDataOffset(), int64(48); got != want {
		t.Fatalf("FileDataOffset() with pad needed = %d, want %d", got, want)
	}
}
