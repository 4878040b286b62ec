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

import "errors"

var (
	// ErrUnsupportedSignature is returned when a stream's signature is
	// not "UnityFS".
	ErrUnsupportedSignature = errors.New("bundle: unsupported signature")

	// ErrUnsupportedVersion is returned when a header's version is
	// outside [6,8].
	ErrUnsupportedVersion = errors.New("bundle: unsupported version")

	// ErrUnsupportedCompression is returned when a listing or block
	// declares a compression type this library does not implement.
	ErrUnsupportedCompression = errors.New("bundle: unsupported compression")

	// ErrMustDecompressFirst is returned by Write when the bundle's data
	// region is still compressed (dataIsCompressed == true).
	ErrMustDecompressFirst = errors.New("bundle: must decompress first")

	// ErrHeaderNotLoaded is returned when an operation needing a parsed
	// header is invoked before Read.
	ErrHeaderNotLoaded = errors.New("bundle: header not loaded")

	// ErrIndexOutOfRange names an out-of-range directory index. No
	// function in this package returns it: the package has no
	// index-based directory accessor.
	ErrIndexOutOfRange = errors.New("bundle: index out of range")

	// ErrClosedStream is returned by Write, Unpack and Pack when called
	// after Close. Reads through a bundle's DataReader are not guarded
	// and do not return it.
	ErrClosedStream = errors.New("bundle: stream closed")
)
