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
	"fmt"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
	"github.com/unitybundle/go-unitybundle/internal/codec"
)

// writerAdapter lets a *binaryio.Writer stand in as a plain io.Writer for
// codec functions that stream into an arbitrary destination.
type writerAdapter struct{ w *binaryio.Writer }

func (a writerAdapter) Write(p []byte) (int, error) {
	if err := a.w.WriteBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Unpack writes a fully decompressed copy of b to w: every block becomes
// a zero-compression block, and the listing is written uncompressed
// immediately after the header. directoryInfos are copied unchanged — no
// Replacer edits are applied (use Write for that).
func (b *Bundle) Unpack(w *binaryio.Writer) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	header := &BundleHeader{
		Signature:         b.Header.Signature,
		Version:           b.Header.Version,
		GenerationVersion: b.Header.GenerationVersion,
		EngineVersion:     b.Header.EngineVersion,
	}
	// Unpack always writes the listing immediately after the header, so
	// BlockAndDirInfoAtEnd must also be cleared even though §4.9 only
	// calls out the compression mask explicitly: otherwise BundleInfoOffset
	// would look for the listing at the wrong place on the next Read.
	header.FS.Flags = b.Header.FS.Flags &^ (flagCompressionMask | flagBlockAndDirInfoAtEnd)

	newBlocks := make([]BlockInfo, len(b.BlockAndDirInfo.BlockInfos))
	for i, blk := range b.BlockAndDirInfo.BlockInfos {
		newBlocks[i] = BlockInfo{
			DecompressedSize: blk.DecompressedSize,
			CompressedSize:   blk.DecompressedSize,
			Flags:            blk.Flags &^ compressionTypeMask,
		}
	}
	listing := &BlockAndDirInfo{
		Hash:           b.BlockAndDirInfo.Hash,
		BlockInfos:     newBlocks,
		DirectoryInfos: append([]DirectoryInfo(nil), b.BlockAndDirInfo.DirectoryInfos...),
	}

	if err := header.Write(w); err != nil {
		return fmt.Errorf("bundle: unpack: write header: %w", err)
	}
	listingPos := w.Pos()
	if err := listing.Write(w); err != nil {
		return fmt.Errorf("bundle: unpack: write listing: %w", err)
	}
	listingSize := w.Pos() - listingPos

	if header.FS.BlockInfoNeedsPaddingAtStart() {
		if err := w.Align16(); err != nil {
			return fmt.Errorf("bundle: unpack: align data region: %w", err)
		}
	}

	if err := unpackBlocks(w, b, b.BlockAndDirInfo.BlockInfos); err != nil {
		return err
	}

	endPos := w.Pos()
	header.FS.TotalFileSize = endPos
	header.FS.CompressedSize = uint32(listingSize)
	header.FS.DecompressedSize = uint32(listingSize)

	if err := w.Seek(0); err != nil {
		return fmt.Errorf("bundle: unpack: seek to header: %w", err)
	}
	if err := header.Write(w); err != nil {
		return fmt.Errorf("bundle: unpack: rewrite header: %w", err)
	}
	if err := w.Seek(endPos); err != nil {
		return fmt.Errorf("bundle: unpack: seek to end: %w", err)
	}
	return nil
}

// unpackBlocks copies or decompresses each original block in turn,
// writing decompressed bytes to w. Per §4.9: type 0 (None) blocks are
// copied verbatim from the raw source; type 1 (LZMA) blocks are streamed
// through codec.LZMADecompressStream, also reading raw compressed bytes
// from the source; types 2/3 (LZ4/LZ4HC) are instead read already
// decompressed from b.DataReader, since Read installs an LZ4BlockStream
// that decodes them on demand — the underlying source bytes for those
// blocks are still LZ4-compressed and must never be copied verbatim. An
// LZ4/LZ4HC block in a bundle whose DataIsCompressed is true (a mixed
// LZMA/LZ4 bundle, whose DataReader is not an LZ4BlockStream) fails with
// ErrUnsupportedCompression.
func unpackBlocks(w *binaryio.Writer, b *Bundle, blocks []BlockInfo) error {
	rawCursor := b.Header.FileDataOffset()
	var decompressedCursor int64
	for i, blk := range blocks {
		switch blk.CompressionType() {
		case CompressionNone:
			raw := make([]byte, blk.CompressedSize)
			if _, err := b.src.ReadAt(raw, rawCursor); err != nil {
				return fmt.Errorf("bundle: unpack: read block %d: %w", i, err)
			}
			if err := w.WriteBytes(raw); err != nil {
				return fmt.Errorf("bundle: unpack: write block %d: %w", i, err)
			}
		case CompressionLZMA:
			raw := make([]byte, blk.CompressedSize)
			if _, err := b.src.ReadAt(raw, rawCursor); err != nil {
				return fmt.Errorf("bundle: unpack: read block %d: %w", i, err)
			}
			dst := writerAdapter{w}
			if _, err := codec.LZMADecompressStream(dst, bytes.NewReader(raw), int64(blk.DecompressedSize), int64(blk.CompressedSize)); err != nil {
				return fmt.Errorf("bundle: unpack: decompress block %d: %w", i, err)
			}
		case CompressionLZ4, CompressionLZ4HC:
			if b.DataIsCompressed {
				return fmt.Errorf("%w: unpack block %d: %s block in a bundle classified as compressed", ErrUnsupportedCompression, i, blk.CompressionType())
			}
			decoded := make([]byte, blk.DecompressedSize)
			if _, err := b.DataReader.ReadAt(decoded, decompressedCursor); err != nil {
				return fmt.Errorf("bundle: unpack: read decoded block %d: %w", i, err)
			}
			if err := w.WriteBytes(decoded); err != nil {
				return fmt.Errorf("bundle: unpack: write block %d: %w", i, err)
			}
		default:
			return fmt.Errorf("%w: unpack block %d with compression %s", ErrUnsupportedCompression, i, blk.CompressionType())
		}
		rawCursor += int64(blk.CompressedSize)
		decompressedCursor += int64(blk.DecompressedSize)
	}
	return nil
}
