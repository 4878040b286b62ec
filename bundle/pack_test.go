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
	"testing"

	"github.com/spf13/afero"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

func TestBundlePackRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name         string
		compType     CompressionType
		blockDirEnd  bool
		usesRealDisk bool
	}{
		{name: "none/listing-first", compType: CompressionNone, blockDirEnd: false},
		{name: "lzma/listing-first", compType: CompressionLZMA, blockDirEnd: false},
		{name: "none/listing-at-end", compType: CompressionNone, blockDirEnd: true},
		{name: "lzma/listing-at-end", compType: CompressionLZMA, blockDirEnd: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload := bytes.Repeat([]byte("pack-round-trip"), 40)
			raw := buildMinimalUncompressedBundle(t, payload)

			b, err := Read(bytes.NewReader(raw))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			defer b.Close()

			out := &growBuf{}
			w, err := binaryio.NewWriter(out)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}

			var onDoneCalls int
			opts := &PackOptions{
				BlockDirAtEnd: tc.blockDirEnd,
				OnBlockDone:   func() { onDoneCalls++ },
				Fs:            afero.NewMemMapFs(),
			}
			if err := b.Pack(w, tc.compType, opts); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if onDoneCalls != 1 {
				t.Fatalf("OnBlockDone called %d times, want 1", onDoneCalls)
			}

			b2, err := Read(bytes.NewReader(out.buf))
			if err != nil {
				t.Fatalf("re-Read packed bundle: %v", err)
			}
			defer b2.Close()

			if len(b2.BlockAndDirInfo.DirectoryInfos) != 1 {
				t.Fatalf("got %d directory entries, want 1", len(b2.BlockAndDirInfo.DirectoryInfos))
			}
			entry := b2.BlockAndDirInfo.DirectoryInfos[0]
			if entry.Name != "CAB-test" {
				t.Fatalf("entry.Name = %q, want %q", entry.Name, "CAB-test")
			}

			reader := b2
			if b2.DataIsCompressed {
				unpacked := &growBuf{}
				uw, err := binaryio.NewWriter(unpacked)
				if err != nil {
					t.Fatalf("NewWriter: %v", err)
				}
				if err := b2.Unpack(uw); err != nil {
					t.Fatalf("Unpack packed/compressed bundle: %v", err)
				}
				reader, err = Read(bytes.NewReader(unpacked.buf))
				if err != nil {
					t.Fatalf("re-Read unpacked bundle: %v", err)
				}
				defer reader.Close()
				entry = reader.BlockAndDirInfo.DirectoryInfos[0]
			}

			got := make([]byte, entry.DecompressedSize)
			if _, err := reader.DataReader.ReadAt(got, entry.Offset); err != nil {
				t.Fatalf("ReadAt: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("payload mismatch after Pack round-trip (%s)", tc.name)
			}
		})
	}
}

func TestBundlePackRejectsCompressedSource(t *testing.T) {
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
	if err := b.Pack(w, CompressionNone, nil); err == nil {
		t.Fatal("Pack: want error for compressed source, got nil")
	}
}

func TestBundlePackRejectsUnsupportedCompressionType(t *testing.T) {
	t.Parallel()

	payload := []byte("tiny")
	raw := buildMinimalUncompressedBundle(t, payload)
	b, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer b.Close()

	out := &growBuf{}
	w, err := binaryio.NewWriter(out)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := b.Pack(w, CompressionLZ4, nil); err == nil {
		t.Fatal("Pack: want error for LZ4 compression type, got nil")
	}
}
