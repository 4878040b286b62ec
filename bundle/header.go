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

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

const signatureUnityFS = "UnityFS"

const (
	minSupportedVersion = 6
	maxSupportedVersion = 8
	// versionRequiresAlign16 is the lowest version whose header is
	// followed by 16-byte alignment padding.
	versionRequiresAlign16 = 7
)

// FSHeader flag bits. The low 6 bits are a CompressionType; the remaining
// bits are independent booleans.
const (
	flagCompressionMask        = 0x3F
	flagHasDirectoryInfo       = 0x40
	flagBlockAndDirInfoAtEnd   = 0x80
	flagBlockInfoNeedsPadStart = 0x200
)

// FSHeader is the fixed-size block following the bundle's textual fields.
type FSHeader struct {
	TotalFileSize    int64
	CompressedSize   uint32 // size of the block/dir listing, compressed
	DecompressedSize uint32 // size of the block/dir listing, decompressed
	Flags            uint32
}

// CompressionType reports the listing's compression type (low 6 bits of
// Flags).
func (h FSHeader) CompressionType() CompressionType {
	return CompressionType(h.Flags & flagCompressionMask)
}

// HasDirectoryInfo reports whether the listing carries directory entries.
func (h FSHeader) HasDirectoryInfo() bool {
	return h.Flags&flagHasDirectoryInfo != 0
}

// BlockAndDirInfoAtEnd reports whether the block/dir listing is stored at
// the end of the file rather than immediately after the header.
func (h FSHeader) BlockAndDirInfoAtEnd() bool {
	return h.Flags&flagBlockAndDirInfoAtEnd != 0
}

// BlockInfoNeedsPaddingAtStart reports whether the data region must be
// 16-byte aligned before the first block begins.
func (h FSHeader) BlockInfoNeedsPaddingAtStart() bool {
	return h.Flags&flagBlockInfoNeedsPadStart != 0
}

// BundleHeader is the leading, always-uncompressed section of a UnityFS
// bundle.
type BundleHeader struct {
	Signature         string
	Version           uint32
	GenerationVersion string
	EngineVersion     string
	FS                FSHeader

	// headerEnd is the stream position immediately after the header (and
	// its align16 padding, if any); derived offsets are computed from it.
	headerEnd int64
}

// ReadBundleHeader parses a BundleHeader from the current position of r,
// validating signature and version. Mirrors parseHeader's
// dispatch-by-version structure (chd/header.go), adapted from CHD's
// fixed-size versioned structs to UnityFS's NUL-terminated-string-prefixed
// layout.
func ReadBundleHeader(r *binaryio.Reader) (*BundleHeader, error) {
	sig, err := r.ReadNullTerminated()
	if err != nil {
		return nil, fmt.Errorf("bundle: read signature: %w", err)
	}
	if sig != signatureUnityFS {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSignature, sig)
	}

	version, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("bundle: read version: %w", err)
	}
	if version < minSupportedVersion || version > maxSupportedVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	genVersion, err := r.ReadNullTerminated()
	if err != nil {
		return nil, fmt.Errorf("bundle: read generation version: %w", err)
	}
	engineVersion, err := r.ReadNullTerminated()
	if err != nil {
		return nil, fmt.Errorf("bundle: read engine version: %w", err)
	}

	totalFileSize, err := r.ReadI64()
	if err != nil {
		return nil, fmt.Errorf("bundle: read total file size: %w", err)
	}
	compressedSize, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("bundle: read compressed size: %w", err)
	}
	decompressedSize, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("bundle: read decompressed size: %w", err)
	}
	flags, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("bundle: read flags: %w", err)
	}

	if version >= versionRequiresAlign16 {
		if err := r.Align16(); err != nil {
			return nil, fmt.Errorf("bundle: align header: %w", err)
		}
	}

	return &BundleHeader{
		Signature:         sig,
		Version:           version,
		GenerationVersion: genVersion,
		EngineVersion:     engineVersion,
		FS: FSHeader{
			TotalFileSize:    totalFileSize,
			CompressedSize:   compressedSize,
			DecompressedSize: decompressedSize,
			Flags:            flags,
		},
		headerEnd: r.Pos(),
	}, nil
}

// Write emits the header (and align16 padding, for version >= 7) at the
// writer's current position.
func (h *BundleHeader) Write(w *binaryio.Writer) error {
	if err := w.WriteNullTerminated(h.Signature); err != nil {
		return fmt.Errorf("bundle: write signature: %w", err)
	}
	if err := w.WriteU32(h.Version); err != nil {
		return fmt.Errorf("bundle: write version: %w", err)
	}
	if err := w.WriteNullTerminated(h.GenerationVersion); err != nil {
		return fmt.Errorf("bundle: write generation version: %w", err)
	}
	if err := w.WriteNullTerminated(h.EngineVersion); err != nil {
		return fmt.Errorf("bundle: write engine version: %w", err)
	}
	if err := w.WriteI64(h.FS.TotalFileSize); err != nil {
		return fmt.Errorf("bundle: write total file size: %w", err)
	}
	if err := w.WriteU32(h.FS.CompressedSize); err != nil {
		return fmt.Errorf("bundle: write compressed size: %w", err)
	}
	if err := w.WriteU32(h.FS.DecompressedSize); err != nil {
		return fmt.Errorf("bundle: write decompressed size: %w", err)
	}
	if err := w.WriteU32(h.FS.Flags); err != nil {
		return fmt.Errorf("bundle: write flags: %w", err)
	}
	if h.Version >= versionRequiresAlign16 {
		if err := w.Align16(); err != nil {
			return fmt.Errorf("bundle: align header: %w", err)
		}
	}
	h.headerEnd = w.Pos()
	return nil
}

// BundleInfoOffset returns the file offset where the block/dir listing is
// stored: either immediately after the header (BlockAndDirInfoAtEnd
// clear) or at totalFileSize - compressedSize (set).
func (h *BundleHeader) BundleInfoOffset() int64 {
	if h.FS.BlockAndDirInfoAtEnd() {
		return h.FS.TotalFileSize - int64(h.FS.CompressedSize)
	}
	return h.headerEnd
}

// FileDataOffset returns the offset where the data region begins.
func (h *BundleHeader) FileDataOffset() int64 {
	offset := h.headerEnd
	if !h.FS.BlockAndDirInfoAtEnd() {
		offset += int64(h.FS.CompressedSize)
	}
	if h.FS.BlockInfoNeedsPaddingAtStart() {
		offset += int64(alignPadding16(offset))
	}
	return offset
}

// alignPadding16 returns the number of padding bytes needed to align pos
// up to the next multiple of 16.
func alignPadding16(pos int64) int64 {
	rem := pos % 16
	if rem == 0 {
		return 0
	}
	return 16 - rem
}
