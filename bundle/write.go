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
	"math"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

// maxBlockDataSize is u32::MAX: the largest payload a single
// zero-compression block record may claim, since BlockInfo.DecompressedSize
// is itself a u32. A write that produces exactly this many bytes emits one
// full block; one extra byte spills into a second block of size 1.
const maxBlockDataSize = math.MaxUint32

// blockCountFor returns the number of zero-compression blocks a write of
// total bytes occupies: ⌈total / maxBlockDataSize⌉, per §4.8 step 2,
// never less than one (an empty bundle still emits a single empty block).
func blockCountFor(total int64) int {
	count := int((total + maxBlockDataSize - 1) / maxBlockDataSize)
	if count < 1 {
		count = 1
	}
	return count
}

// fillBlockSizes assigns each of blocks a size taken from total, per §4.8
// step 7: every block but the last takes exactly maxBlockDataSize bytes,
// the last takes whatever remains. len(blocks) must equal
// blockCountFor(total).
func fillBlockSizes(blocks []BlockInfo, total int64) {
	remaining := total
	for i := range blocks {
		take := remaining
		if take > maxBlockDataSize {
			take = maxBlockDataSize
		}
		blocks[i].DecompressedSize = uint32(take)
		blocks[i].CompressedSize = uint32(take)
		remaining -= take
	}
}

// Write emits an uncompressed UnityFS bundle reflecting the current
// directory entries, applying any attached Replacer edits, to w starting
// at its current position. Requires b.DataIsCompressed == false: LZMA
// bundles must be unpacked (see Unpack) before editing.
//
// Grounded on the two-pass "placeholders, stream payload, fix up" layout
// implied by woozymasta/pbo's whole-archive Pack flow (Input/PackOptions),
// adapted here to UnityFS's per-entry replace-in-place editing so that
// replaced file content never needs to be buffered whole in memory.
func (b *Bundle) Write(w *binaryio.Writer) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.DataIsCompressed {
		return ErrMustDecompressFirst
	}

	header := &BundleHeader{
		Signature:         b.Header.Signature,
		Version:           b.Header.Version,
		GenerationVersion: b.Header.GenerationVersion,
		EngineVersion:     b.Header.EngineVersion,
	}
	if err := header.Write(w); err != nil {
		return fmt.Errorf("bundle: write header: %w", err)
	}

	kept := make([]DirectoryInfo, 0, len(b.BlockAndDirInfo.DirectoryInfos))
	var totalSize int64
	for _, d := range b.BlockAndDirInfo.DirectoryInfos {
		if d.Replacer != nil && d.Replacer.Remove() {
			continue
		}
		size := d.DecompressedSize
		if d.Replacer != nil {
			size = d.Replacer.Size()
		}
		totalSize += size
		kept = append(kept, d)
	}

	listing := &BlockAndDirInfo{
		Hash:           b.BlockAndDirInfo.Hash,
		BlockInfos:     make([]BlockInfo, blockCountFor(totalSize)),
		DirectoryInfos: kept,
	}
	for i := range listing.BlockInfos {
		// 0x40 is AssetsTools.NET's "block is streamed" marker, distinct
		// from the low-6-bit compression field (which stays 0 == None).
		listing.BlockInfos[i] = BlockInfo{Flags: 0x40}
	}

	listingPos := w.Pos()
	if err := listing.Write(w); err != nil {
		return fmt.Errorf("bundle: write placeholder listing: %w", err)
	}
	listingSize := w.Pos() - listingPos

	assetDataPos := w.Pos()
	if b.Header.FS.BlockInfoNeedsPaddingAtStart() {
		if err := w.Align16(); err != nil {
			return fmt.Errorf("bundle: align data region: %w", err)
		}
		assetDataPos = w.Pos()
	}

	for i := range listing.DirectoryInfos {
		d := &listing.DirectoryInfos[i]
		start := w.Pos()

		if d.Replacer != nil {
			if err := d.Replacer.Write(w); err != nil {
				return fmt.Errorf("bundle: write replaced entry %q: %w", d.Name, err)
			}
		} else {
			buf := make([]byte, d.DecompressedSize)
			if _, err := b.DataReader.ReadAt(buf, d.Offset); err != nil {
				return fmt.Errorf("bundle: read entry %q: %w", d.Name, err)
			}
			if err := w.WriteBytes(buf); err != nil {
				return fmt.Errorf("bundle: copy entry %q: %w", d.Name, err)
			}
		}

		d.Offset = start - assetDataPos
		d.DecompressedSize = w.Pos() - start
		d.Replacer = nil
	}

	assetSize := w.Pos() - assetDataPos
	fillBlockSizes(listing.BlockInfos, assetSize)

	endPos := w.Pos()
	if err := w.Seek(listingPos); err != nil {
		return fmt.Errorf("bundle: seek to listing: %w", err)
	}
	if err := listing.Write(w); err != nil {
		return fmt.Errorf("bundle: rewrite listing: %w", err)
	}
	if w.Pos()-listingPos != listingSize {
		return fmt.Errorf("bundle: rewritten listing changed size: got %d, want %d", w.Pos()-listingPos, listingSize)
	}

	header.FS.TotalFileSize = endPos
	header.FS.CompressedSize = uint32(assetDataPos - listingPos)
	header.FS.DecompressedSize = header.FS.CompressedSize
	// Preserve every flag bit except the listing's compression type and
	// "listing stored at end" (both no longer apply: Write always emits
	// an uncompressed listing immediately after the header), per §4.8
	// step 8: flags &= ~(CompressionMask | BlockAndDirAtEnd). The
	// HasDirectoryInfo bit is always set.
	header.FS.Flags = (b.Header.FS.Flags &^ (flagCompressionMask | flagBlockAndDirInfoAtEnd)) | flagHasDirectoryInfo

	if err := w.Seek(0); err != nil {
		return fmt.Errorf("bundle: seek to header: %w", err)
	}
	if err := header.Write(w); err != nil {
		return fmt.Errorf("bundle: rewrite header: %w", err)
	}

	if err := w.Seek(endPos); err != nil {
		return fmt.Errorf("bundle: seek to end: %w", err)
	}
	return nil
}
