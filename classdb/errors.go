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

import "errors"

var (
	// ErrUnsupportedSignature indicates the leading magic bytes did not
	// match a Class Database file.
	ErrUnsupportedSignature = errors.New("classdb: unsupported signature")

	// ErrUnsupportedCompression indicates a compressionType byte outside
	// {Uncompressed, Lz4, Lzma}.
	ErrUnsupportedCompression = errors.New("classdb: unsupported compression type")
)
