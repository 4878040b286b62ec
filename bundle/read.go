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
	"io"
	"os"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
	"github.com/unitybundle/go-unitybundle/internal/codec"
)

// DataReader is the logical decompressed (or, for LZMA bundles, still
// compressed — see Bundle.DataIsCompressed) data region of a bundle: a
// seekable, randomly-readable stream.
type DataReader interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

// Bundle is a parsed UnityFS container: header, block/directory listing,
// and a DataReader over the data region. Constructed empty; populated by
// Read; closed by Close.
type Bundle struct {
	Header          *BundleHeader
	BlockAndDirInfo *BlockAndDirInfo
	DataReader      DataReader
	// DataIsCompressed is true only for LZMA bundles, where DataReader
	// exposes compressed bytes and full decompression happens only
	// during Unpack.
	DataIsCompressed bool

	src    io.ReaderAt
	closer io.Closer
	closed bool
}

// maxHeaderPrefix bounds the single ReadAt used to capture the header:
// signature, version, two version strings, and the fixed FSHeader never
// come close to this in practice.
const maxHeaderPrefix = 4096

// Read parses a bundle from src (an io.ReaderAt so random access is
// available for both the listing and the data region) and installs the
// appropriate DataReader strategy, mirroring CHD.Open / CHD.init's two-stage
// "parse header, then build the hunk-access strategy" sequencing
// (chd/chd.go).
func Read(src io.ReaderAt) (*Bundle, error) {
	prefix := make([]byte, maxHeaderPrefix)
	n, err := src.ReadAt(prefix, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("bundle: read header prefix: %w", err)
	}
	headerReader, err := binaryio.NewReader(bytes.NewReader(prefix[:n]))
	if err != nil {
		return nil, fmt.Errorf("bundle: open header reader: %w", err)
	}

	header, err := ReadBundleHeader(headerReader)
	if err != nil {
		return nil, err
	}

	info, err := readBundleInfo(src, header)
	if err != nil {
		return nil, err
	}

	dataReader, dataIsCompressed, err := installDataReader(src, header, info)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Header:           header,
		BlockAndDirInfo:  info,
		DataReader:       dataReader,
		DataIsCompressed: dataIsCompressed,
		src:              src,
	}, nil
}

// ReadFile opens path and parses a bundle from it, keeping the file open
// for random access; Close releases it. Mirrors chd.Open (chd/chd.go),
// which pairs os.Open with the same "parse then stash the handle as the
// closer" sequencing.
func ReadFile(path string) (*Bundle, error) {
	file, err := os.Open(path) //nolint:gosec // path is caller-supplied
	if err != nil {
		return nil, fmt.Errorf("bundle: open file: %w", err)
	}

	b, err := Read(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	b.closer = file
	return b, nil
}

// readBundleInfo seeks to the listing's offset and parses it, decompressing
// first if the listing itself is compressed.
func readBundleInfo(src io.ReaderAt, header *BundleHeader) (*BlockAndDirInfo, error) {
	listingOffset := header.BundleInfoOffset()
	listingSrc := io.NewSectionReader(src, listingOffset, int64(header.FS.CompressedSize))

	compType := header.FS.CompressionType()
	if compType == CompressionNone {
		r, err := binaryio.NewReader(listingSrc)
		if err != nil {
			return nil, fmt.Errorf("bundle: open listing reader: %w", err)
		}
		return ReadBlockAndDirInfo(r)
	}

	compressed := make([]byte, header.FS.CompressedSize)
	if _, err := io.ReadFull(listingSrc, compressed); err != nil {
		return nil, fmt.Errorf("bundle: read compressed listing: %w", err)
	}

	var decompressed []byte
	switch compType {
	case CompressionLZMA:
		var buf bytes.Buffer
		if _, err := codec.LZMADecompressStream(&buf, bytes.NewReader(compressed), int64(header.FS.DecompressedSize), int64(header.FS.CompressedSize)); err != nil {
			return nil, fmt.Errorf("bundle: decompress listing: %w", err)
		}
		decompressed = buf.Bytes()
	case CompressionLZ4, CompressionLZ4HC:
		out, err := codec.LZ4DecompressBlock(compressed, int(header.FS.DecompressedSize))
		if err != nil {
			return nil, fmt.Errorf("bundle: decompress listing: %w", err)
		}
		decompressed = out
	default:
		return nil, fmt.Errorf("%w: listing compression type %d", ErrUnsupportedCompression, compType)
	}

	r, err := binaryio.NewReader(bytes.NewReader(decompressed))
	if err != nil {
		return nil, fmt.Errorf("bundle: open decompressed listing reader: %w", err)
	}
	return ReadBlockAndDirInfo(r)
}

// bundleDataCompressionType scans blockInfos in order and returns the
// first non-None compression type encountered, defaulting to None.
func bundleDataCompressionType(blocks []BlockInfo) CompressionType {
	for _, b := range blocks {
		if ct := b.CompressionType(); ct != CompressionNone {
			return ct
		}
	}
	return CompressionNone
}

// installDataReader builds the DataReader strategy matching the bundle's
// data compression, per §4.7 step 4.
func installDataReader(src io.ReaderAt, header *BundleHeader, info *BlockAndDirInfo) (DataReader, bool, error) {
	dataOffset := header.FileDataOffset()

	switch bundleDataCompressionType(info.BlockInfos) {
	case CompressionNone:
		length := header.FS.TotalFileSize - dataOffset
		return io.NewSectionReader(src, dataOffset, length), false, nil
	case CompressionLZMA:
		length := header.FS.TotalFileSize - dataOffset
		return io.NewSectionReader(src, dataOffset, length), true, nil
	case CompressionLZ4, CompressionLZ4HC:
		stream, err := NewLZ4BlockStream(src, dataOffset, info.BlockInfos)
		if err != nil {
			return nil, false, err
		}
		return stream, false, nil
	default:
		return nil, false, fmt.Errorf("%w: data compression", ErrUnsupportedCompression)
	}
}

// Close releases any resources this Bundle holds, if it was opened from a
// closeable source (see ReadFile), and marks the bundle closed: every
// subsequent Write/Unpack/Pack call fails with ErrClosedStream. Bundles
// built directly over a caller-supplied io.ReaderAt (via Read) have
// nothing to release but are still marked closed.
func (b *Bundle) Close() error {
	b.closed = true
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// checkOpen returns ErrClosedStream if b has been closed, and
// ErrHeaderNotLoaded if b has no parsed header or listing.
func (b *Bundle) checkOpen() error {
	if b.closed {
		return fmt.Errorf("bundle: %w", ErrClosedStream)
	}
	if b.Header == nil || b.BlockAndDirInfo == nil {
		return fmt.Errorf("bundle: %w", ErrHeaderNotLoaded)
	}
	return nil
}
