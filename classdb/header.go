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
	"fmt"

	"github.com/unitybundle/go-unitybundle/internal/binaryio"
)

// signatureClassDB is the magic NUL-terminated string leading every Class
// Database file, mirroring the bundle package's signature-then-version
// header convention (see bundle.ReadBundleHeader).
const signatureClassDB = "ClassDB"

// readHeader parses a ClassDatabaseHeader, validating the signature.
func readHeader(r *binaryio.Reader) (ClassDatabaseHeader, error) {
	sig, err := r.ReadNullTerminated()
	if err != nil {
		return ClassDatabaseHeader{}, fmt.Errorf("classdb: read signature: %w", err)
	}
	if sig != signatureClassDB {
		return ClassDatabaseHeader{}, fmt.Errorf("%w: %q", ErrUnsupportedSignature, sig)
	}

	version, err := r.ReadU32()
	if err != nil {
		return ClassDatabaseHeader{}, fmt.Errorf("classdb: read version: %w", err)
	}
	compression, err := r.ReadU8()
	if err != nil {
		return ClassDatabaseHeader{}, fmt.Errorf("classdb: read compression type: %w", err)
	}
	compressedSize, err := r.ReadU32()
	if err != nil {
		return ClassDatabaseHeader{}, fmt.Errorf("classdb: read compressed size: %w", err)
	}
	decompressedSize, err := r.ReadU32()
	if err != nil {
		return ClassDatabaseHeader{}, fmt.Errorf("classdb: read decompressed size: %w", err)
	}

	return ClassDatabaseHeader{
		Version:          version,
		Compression:      CompressionType(compression),
		CompressedSize:   compressedSize,
		DecompressedSize: decompressedSize,
	}, nil
}

// write serializes h.
func (h ClassDatabaseHeader) write(w *binaryio.Writer) error {
	if err := w.WriteNullTerminated(signatureClassDB); err != nil {
		return fmt.Errorf("classdb: write signature: %w", err)
	}
	if err := w.WriteU32(h.Version); err != nil {
		return fmt.Errorf("classdb: write version: %w", err)
	}
	if err := w.WriteU8(uint8(h.Compression)); err != nil {
		return fmt.Errorf("classdb: write compression type: %w", err)
	}
	if err := w.WriteU32(h.CompressedSize); err != nil {
		return fmt.Errorf("classdb: write compressed size: %w", err)
	}
	if err := w.WriteU32(h.DecompressedSize); err != nil {
		return fmt.Errorf("classdb: write decompressed size: %w", err)
	}
	return nil
}
