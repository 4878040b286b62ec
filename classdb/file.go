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

package classdb

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
	"github.com/unitybundle/go-unitybundle/internal/codec"
)

// Read parses a Class Database file from r in full: header, then payload
// decompressed per the header's compression type, then the classes,
// string table, and common-index list within it. Mirrors
// GameDatabase.LoadDatabaseFromReader's sequencing, generalized from its
// single gzip+gob framing to an explicit length-prefixed binary layout
// selecting among three codecs. The whole file is read into memory up
// front, the way that gob/gzip loader does, since Class Database files
// are small compared to a bundle's data region.
func Read(r io.Reader) (*ClassDatabaseFile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("classdb: read file: %w", err)
	}

	headerReader, err := binaryio.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("classdb: open header reader: %w", err)
	}
	header, err := readHeader(headerReader)
	if err != nil {
		return nil, err
	}

	compressed, err := headerReader.ReadBytes(int(header.CompressedSize))
	if err != nil {
		return nil, fmt.Errorf("classdb: read payload: %w", err)
	}

	decompressed, err := decompressPayload(header.Compression, compressed, header.DecompressedSize)
	if err != nil {
		return nil, err
	}

	payloadReader, err := binaryio.NewReader(bytes.NewReader(decompressed))
	if err != nil {
		return nil, fmt.Errorf("classdb: open payload reader: %w", err)
	}
	return readPayload(header, payloadReader)
}

// decompressPayload dispatches among the three Class Database codecs.
func decompressPayload(compType CompressionType, compressed []byte, decompressedSize uint32) ([]byte, error) {
	switch compType {
	case CompressionUncompressed:
		return compressed, nil
	case CompressionLz4:
		out, err := codec.LZ4DecompressBlock(compressed, int(decompressedSize))
		if err != nil {
			return nil, fmt.Errorf("classdb: decompress payload: %w", err)
		}
		return out, nil
	case CompressionLzma:
		var buf bytes.Buffer
		if _, err := codec.LZMADecompressStream(&buf, bytes.NewReader(compressed), int64(decompressedSize), int64(len(compressed))); err != nil {
			return nil, fmt.Errorf("classdb: decompress payload: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, compType)
	}
}

// compressPayload is decompressPayload's inverse, used by Write. It
// returns the compression type actually applied, which falls back to
// CompressionUncompressed when compType is Lz4 but the payload is too
// small or dense to shrink.
func compressPayload(compType CompressionType, decompressed []byte) ([]byte, CompressionType, error) {
	switch compType {
	case CompressionUncompressed:
		return decompressed, CompressionUncompressed, nil
	case CompressionLz4:
		out, err := codec.LZ4CompressBlock(decompressed, codec.LZ4LevelHC)
		if errors.Is(err, codec.ErrIncompressible) {
			return decompressed, CompressionUncompressed, nil
		}
		if err != nil {
			return nil, 0, fmt.Errorf("classdb: compress payload: %w", err)
		}
		return out, CompressionLz4, nil
	case CompressionLzma:
		var buf bytes.Buffer
		if _, err := codec.LZMACompressStream(&buf, bytes.NewReader(decompressed)); err != nil {
			return nil, 0, fmt.Errorf("classdb: compress payload: %w", err)
		}
		return buf.Bytes(), CompressionLzma, nil
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedCompression, compType)
	}
}

// readPayload parses the decompressed payload: classCount, classes, the
// string table, then the common-index list.
func readPayload(header ClassDatabaseHeader, r *binaryio.Reader) (*ClassDatabaseFile, error) {
	classCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("classdb: read class count: %w", err)
	}
	classes := make([]ClassDatabaseType, classCount)
	for i := range classes {
		c, err := readClassType(r)
		if err != nil {
			return nil, fmt.Errorf("classdb: read class %d: %w", i, err)
		}
		classes[i] = c
	}

	stringTable, err := readStringTable(r)
	if err != nil {
		return nil, err
	}

	commonCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("classdb: read common index count: %w", err)
	}
	common := make([]uint16, commonCount)
	for i := range common {
		idx, err := r.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("classdb: read common index %d: %w", i, err)
		}
		common[i] = idx
	}

	return &ClassDatabaseFile{
		Header:                    header,
		Classes:                   classes,
		StringTable:               stringTable,
		CommonStringBufferIndices: common,
	}, nil
}

// Write serializes f to w, compressing its payload with compType and
// filling in header.compressedSize/decompressedSize/compression.
func Write(w io.Writer, f *ClassDatabaseFile, compType CompressionType) error {
	var payloadBuf memBuffer
	payloadW, err := binaryio.NewWriter(&payloadBuf)
	if err != nil {
		return fmt.Errorf("classdb: open payload writer: %w", err)
	}
	if err := writePayload(payloadW, f); err != nil {
		return err
	}
	decompressed := payloadBuf.bytes

	compressed, effectiveCompType, err := compressPayload(compType, decompressed)
	if err != nil {
		return err
	}

	header := ClassDatabaseHeader{
		Version:          f.Header.Version,
		Compression:      effectiveCompType,
		CompressedSize:   uint32(len(compressed)),
		DecompressedSize: uint32(len(decompressed)),
	}

	var out memBuffer
	headerW, err := binaryio.NewWriter(&out)
	if err != nil {
		return fmt.Errorf("classdb: open header writer: %w", err)
	}
	if err := header.write(headerW); err != nil {
		return err
	}
	if err := headerW.WriteBytes(compressed); err != nil {
		return fmt.Errorf("classdb: write payload: %w", err)
	}

	if _, err := w.Write(out.bytes); err != nil {
		return fmt.Errorf("classdb: write file: %w", err)
	}
	return nil
}

// writePayload is readPayload's inverse.
func writePayload(w *binaryio.Writer, f *ClassDatabaseFile) error {
	if err := w.WriteU32(uint32(len(f.Classes))); err != nil {
		return fmt.Errorf("classdb: write class count: %w", err)
	}
	for i, c := range f.Classes {
		if err := c.write(w); err != nil {
			return fmt.Errorf("classdb: write class %d: %w", i, err)
		}
	}

	stringTable := f.StringTable
	if stringTable == nil {
		stringTable = NewStringTable(nil)
	}
	if err := stringTable.write(w); err != nil {
		return err
	}

	if err := w.WriteU32(uint32(len(f.CommonStringBufferIndices))); err != nil {
		return fmt.Errorf("classdb: write common index count: %w", err)
	}
	for i, idx := range f.CommonStringBufferIndices {
		if err := w.WriteU16(idx); err != nil {
			return fmt.Errorf("classdb: write common index %d: %w", i, err)
		}
	}
	return nil
}

// FindAssetClassByID linearly scans f.Classes for classId, remapping any
// negative id to the legacy pre-5.5 Unity compatibility id (0x72) per
// AssetsTools.NET's convention.
func (f *ClassDatabaseFile) FindAssetClassByID(id int32) (*ClassDatabaseType, bool) {
	if id < 0 {
		id = legacyNegativeClassID
	}
	for i := range f.Classes {
		if f.Classes[i].ClassID == id {
			return &f.Classes[i], true
		}
	}
	return nil, false
}

// FindAssetClassByName linearly scans f.Classes for one whose name
// resolves, via f.StringTable, to name.
func (f *ClassDatabaseFile) FindAssetClassByName(name string) (*ClassDatabaseType, bool) {
	for i := range f.Classes {
		if s, ok := f.StringTable.Get(f.Classes[i].Name); ok && s == name {
			return &f.Classes[i], true
		}
	}
	return nil, false
}

// GetString looks up idx in f.StringTable.
func (f *ClassDatabaseFile) GetString(idx uint16) (string, bool) {
	return f.StringTable.Get(idx)
}
