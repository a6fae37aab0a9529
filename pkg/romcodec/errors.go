// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package romcodec implements inspect/unpack/pack/modify for the firmware
// ROM image layout defined by pkg/romlayout. It never touches a drive;
// pkg/driver composes it with pkg/drive for the dump/upload operations
// that do.
package romcodec

import "fmt"

// Kind enumerates the image-codec error taxonomy. It is deliberately
// separate from ata.Kind: codec errors are about file/buffer shape, not
// drive transport.
type Kind int

const (
	KindMalformedImage Kind = iota
	KindOversizeBlock
	KindIoError
)

func (k Kind) String() string {
	switch k {
	case KindMalformedImage:
		return "MalformedImage"
	case KindOversizeBlock:
		return "OversizeBlock"
	case KindIoError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error is the sum-typed error returned by every romcodec operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error

	// Populated for header-table-relative errors.
	BlockNr byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (block %#x): %v", e.Op, e.Kind, e.BlockNr, e.Err)
	}
	return fmt.Sprintf("%s: %s (block %#x)", e.Op, e.Kind, e.BlockNr)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op string, kind Kind, blockNr byte, err error) *Error {
	return &Error{Op: op, Kind: kind, BlockNr: blockNr, Err: err}
}
