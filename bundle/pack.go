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
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
	"github.com/unitybundle/go-unitybundle/internal/codec"
)

// growableBuffer is a minimal io.WriteSeeker over a growable backing
// slice, used to serialize the listing before it is LZ4HC-compressed.
type growableBuffer struct {
	bytes []byte
	pos   int64
}

func (g *growableBuffer) Write(p []byte) (int, error) {
	end := g.pos + int64(len(p))
	if end > int64(len(g.bytes)) {
		grown := make([]byte, end)
		copy(grown, g.bytes)
		g.bytes = grown
	}
	n := copy(g.bytes[g.pos:end], p)
	g.pos += int64(n)
	return n, nil
}

func (g *growableBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		g.pos = offset
	case io.SeekCurrent:
		g.pos += offset
	case io.SeekEnd:
		g.pos = int64(len(g.bytes)) + offset
	}
	return g.pos, nil
}

// PackOptions tunes Pack's behavior. Grounded on woozymasta/pbo's
// PackOptions (OnEntryDone progress callback, tunable thresholds),
// adapted from per-entry to per-block progress since Pack emits a single
// data block.
type PackOptions struct {
	// BlockDirAtEnd, when true, writes the data region immediately after
	// the header and the compressed listing after the data (requiring a
	// scratch file, since the listing's final sizes aren't known until
	// the data region is fully written). When false (the default), the
	// listing is written first.
	BlockDirAtEnd bool

	// OnBlockDone, if set, is invoked once after the single data block
	// has been written.
	OnBlockDone func()

	// Fs backs the scratch file Pack needs when BlockDirAtEnd is true.
	// Defaults to afero.NewMemMapFs() when nil, keeping Pack's scratch
	// logic unit-testable without touching the real filesystem; callers
	// packing large bundles should supply an afero.NewOsFs() (or
	// equivalent) backed by real disk.
	Fs afero.Fs
}

// Pack emits a bundle with a single data block compressed via compType
// (None or LZMA only) and a block/dir listing compressed with LZ4 HC.
// When the LZ4 HC encoder reports the listing as incompressible, the
// listing is stored uncompressed and the header's listing compression
// field is None. Precondition: b.DataIsCompressed == false.
func (b *Bundle) Pack(w *binaryio.Writer, compType CompressionType, opts *PackOptions) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.DataIsCompressed {
		return ErrMustDecompressFirst
	}
	if compType != CompressionNone && compType != CompressionLZMA {
		return fmt.Errorf("%w: pack compression %s", ErrUnsupportedCompression, compType)
	}
	if opts == nil {
		opts = &PackOptions{}
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewMemMapFs()
	}

	dataSize, err := dataRegionLength(b)
	if err != nil {
		return err
	}
	rawData := make([]byte, dataSize)
	if _, err := b.DataReader.ReadAt(rawData, 0); err != nil && err != io.EOF {
		return fmt.Errorf("bundle: pack: read data region: %w", err)
	}

	var blockPayload []byte
	var blockFlags uint16
	switch compType {
	case CompressionNone:
		blockPayload = rawData
		blockFlags = 0x00
	case CompressionLZMA:
		var buf bytes.Buffer
		if _, err := codec.LZMACompressStream(&buf, bytes.NewReader(rawData)); err != nil {
			return fmt.Errorf("bundle: pack: compress data: %w", err)
		}
		blockPayload = buf.Bytes()
		blockFlags = 0x41
	}

	listing := &BlockAndDirInfo{
		Hash: b.BlockAndDirInfo.Hash,
		BlockInfos: []BlockInfo{{
			DecompressedSize: uint32(dataSize),
			CompressedSize:   uint32(len(blockPayload)),
			Flags:            blockFlags,
		}},
		DirectoryInfos: append([]DirectoryInfo(nil), b.BlockAndDirInfo.DirectoryInfos...),
	}

	listingBuf := &growableBuffer{}
	listingW, err := binaryio.NewWriter(listingBuf)
	if err != nil {
		return fmt.Errorf("bundle: pack: init listing writer: %w", err)
	}
	if err := listing.Write(listingW); err != nil {
		return fmt.Errorf("bundle: pack: serialize listing: %w", err)
	}
	listingCompType := CompressionLZ4HC
	compressedListing, err := codec.LZ4CompressBlock(listingBuf.bytes, codec.LZ4LevelHC)
	if errors.Is(err, codec.ErrIncompressible) {
		// Too small/dense to shrink (common for the tiny listings in
		// tests): store it as-is rather than fail the whole pack.
		listingCompType = CompressionNone
		compressedListing = listingBuf.bytes
	} else if err != nil {
		return fmt.Errorf("bundle: pack: compress listing: %w", err)
	}

	header := &BundleHeader{
		Signature:         b.Header.Signature,
		Version:           b.Header.Version,
		GenerationVersion: b.Header.GenerationVersion,
		EngineVersion:     b.Header.EngineVersion,
	}
	header.FS.Flags = uint32(listingCompType) | flagHasDirectoryInfo
	if opts.BlockDirAtEnd {
		header.FS.Flags |= flagBlockAndDirInfoAtEnd
	}
	header.FS.CompressedSize = uint32(len(compressedListing))
	header.FS.DecompressedSize = uint32(len(listingBuf.bytes))

	if opts.BlockDirAtEnd {
		if err := packBlockDirAtEnd(w, fs, header, blockPayload, compressedListing); err != nil {
			return err
		}
	} else {
		if err := packListingFirst(w, header, blockPayload, compressedListing); err != nil {
			return err
		}
	}

	if opts.OnBlockDone != nil {
		opts.OnBlockDone()
	}
	return nil
}

// dataRegionLength returns the total decompressed length of b's data
// region, either from the DataReader directly (LZ4BlockStream knows its
// own length) or by summing BlockInfos.
func dataRegionLength(b *Bundle) (int64, error) {
	if lr, ok := b.DataReader.(*LZ4BlockStream); ok {
		return lr.Len(), nil
	}
	return b.BlockAndDirInfo.TotalDecompressedSize(), nil
}

// packListingFirst writes header, then the compressed listing, then the
// data block — the default layout requiring no scratch file.
func packListingFirst(w *binaryio.Writer, header *BundleHeader, blockPayload, compressedListing []byte) error {
	if err := header.Write(w); err != nil {
		return fmt.Errorf("bundle: pack: write header: %w", err)
	}
	if err := w.WriteBytes(compressedListing); err != nil {
		return fmt.Errorf("bundle: pack: write listing: %w", err)
	}
	if header.FS.BlockInfoNeedsPaddingAtStart() {
		if err := w.Align16(); err != nil {
			return fmt.Errorf("bundle: pack: align data region: %w", err)
		}
	}
	if err := w.WriteBytes(blockPayload); err != nil {
		return fmt.Errorf("bundle: pack: write data block: %w", err)
	}

	header.FS.TotalFileSize = w.Pos()
	if err := w.Seek(0); err != nil {
		return fmt.Errorf("bundle: pack: seek to header: %w", err)
	}
	if err := header.Write(w); err != nil {
		return fmt.Errorf("bundle: pack: rewrite header: %w", err)
	}
	if err := w.Seek(header.FS.TotalFileSize); err != nil {
		return fmt.Errorf("bundle: pack: seek to end: %w", err)
	}
	return nil
}

// packBlockDirAtEnd writes header, then stages the data block through an
// afero-backed scratch file (avoiding an unbounded in-memory buffer of
// the data region), then copies the staged data into w followed by the
// compressed listing.
func packBlockDirAtEnd(w *binaryio.Writer, fs afero.Fs, header *BundleHeader, blockPayload, compressedListing []byte) error {
	scratch, err := afero.TempFile(fs, "", "unitybundle-pack-*")
	if err != nil {
		return fmt.Errorf("bundle: pack: create scratch file: %w", err)
	}
	defer func() {
		_ = scratch.Close()
		_ = fs.Remove(scratch.Name())
	}()
	if _, err := scratch.Write(blockPayload); err != nil {
		return fmt.Errorf("bundle: pack: write scratch file: %w", err)
	}
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("bundle: pack: seek scratch file: %w", err)
	}

	if err := header.Write(w); err != nil {
		return fmt.Errorf("bundle: pack: write header: %w", err)
	}
	if header.FS.BlockInfoNeedsPaddingAtStart() {
		if err := w.Align16(); err != nil {
			return fmt.Errorf("bundle: pack: align data region: %w", err)
		}
	}
	if err := w.CopyFrom(scratch, int64(len(blockPayload))); err != nil {
		return fmt.Errorf("bundle: pack: copy staged data: %w", err)
	}

	if err := w.WriteBytes(compressedListing); err != nil {
		return fmt.Errorf("bundle: pack: write listing: %w", err)
	}

	endPos := w.Pos()
	header.FS.TotalFileSize = endPos
	if err := w.Seek(0); err != nil {
		return fmt.Errorf("bundle: pack: seek to header: %w", err)
	}
	if err := header.Write(w); err != nil {
		return fmt.Errorf("bundle: pack: rewrite header: %w", err)
	}
	if err := w.Seek(endPos); err != nil {
		return fmt.Errorf("bundle: pack: seek to end: %w", err)
	}
	return nil
}
