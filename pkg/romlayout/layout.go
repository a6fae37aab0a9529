// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package romlayout defines the on-disk layout of a Western Digital
// firmware ROM image: its size constants, the 32-byte block-header
// record, and the checksum rules that make an image well-formed.
// It is pure data and arithmetic — it never touches a drive or a
// filesystem; pkg/romcodec builds on it for that.
package romlayout

import "encoding/binary"

const (
	// ImageSize is the total size of a ROM image buffer.
	ImageSize = 256 * 1024
	// BlockSize is the transport unit pkg/drive reads/writes in.
	BlockSize = 64 * 1024
	// HeaderRecordSize is the size in bytes of one RomBlockHeader record.
	HeaderRecordSize = 32

	// FlagUnencrypted marks a block's payload as stored in the clear.
	FlagUnencrypted = 0x04

	// RomKeyRead, RomKeyWrite and RomKeyErase are the direction tokens
	// carried in byte 2 of the SMART ROM-access command buffer.
	// RomKeyErase is a distinct third token from Read/Write — the source
	// leaves its exact value unspecified (see DESIGN.md).
	RomKeyRead  = 0x01
	RomKeyWrite = 0x02
	RomKeyErase = 0x03
)

// recognizedBlockNr is the set of block_nr values that continue a header
// table walk; any other value terminates it.
func recognizedBlockNr(n byte) bool {
	return n <= 0x0a || n == 0x5a
}

// RomBlockHeader is one 32-byte packed block descriptor. Field order
// matches the on-disk layout exactly; do not reorder.
type RomBlockHeader struct {
	BlockNr          byte
	Flag             byte
	Unk1             byte
	Unk2             byte
	LengthPlusCS     uint32
	Size             uint32
	StartAddress     uint32
	LoadAddress      uint32
	ExecutionAddress uint32
	Unk3             uint32
	FstwPlusCS       uint32
}

// DecodeHeader parses one HeaderRecordSize-byte record. It does not
// validate the line checksum — callers that care should also call
// LineChecksumOK.
func DecodeHeader(b []byte) RomBlockHeader {
	_ = b[HeaderRecordSize-1] // bounds check hint
	return RomBlockHeader{
		BlockNr:          b[0],
		Flag:             b[1],
		Unk1:             b[2],
		Unk2:             b[3],
		LengthPlusCS:     binary.LittleEndian.Uint32(b[4:8]),
		Size:             binary.LittleEndian.Uint32(b[8:12]),
		StartAddress:     binary.LittleEndian.Uint32(b[12:16]),
		LoadAddress:      binary.LittleEndian.Uint32(b[16:20]),
		ExecutionAddress: binary.LittleEndian.Uint32(b[20:24]),
		Unk3:             binary.LittleEndian.Uint32(b[24:28]),
		FstwPlusCS:       binary.LittleEndian.Uint32(b[28:32]),
	}
}

// Encode serializes h into exactly HeaderRecordSize bytes, with the
// trailing line-checksum byte filled in.
func (h RomBlockHeader) Encode() [HeaderRecordSize]byte {
	var b [HeaderRecordSize]byte
	b[0] = h.BlockNr
	b[1] = h.Flag
	b[2] = h.Unk1
	b[3] = h.Unk2
	binary.LittleEndian.PutUint32(b[4:8], h.LengthPlusCS)
	binary.LittleEndian.PutUint32(b[8:12], h.Size)
	binary.LittleEndian.PutUint32(b[12:16], h.StartAddress)
	binary.LittleEndian.PutUint32(b[16:20], h.LoadAddress)
	binary.LittleEndian.PutUint32(b[20:24], h.ExecutionAddress)
	binary.LittleEndian.PutUint32(b[24:28], h.Unk3)
	binary.LittleEndian.PutUint32(b[28:32], h.FstwPlusCS)
	b[31] = LineChecksum(b[:])
	return b
}

// Unencrypted reports whether h's flag marks its payload as stored
// in the clear.
func (h RomBlockHeader) Unencrypted() bool { return h.Flag == FlagUnencrypted }

// ChecksumWidth returns the body-checksum width in bytes (1 or 2) implied
// by h's LengthPlusCS/Size pair, and false if that difference isn't a
// recognized width.
func (h RomBlockHeader) ChecksumWidth() (int, bool) {
	w := int(h.LengthPlusCS) - int(h.Size)
	if w != 1 && w != 2 {
		return 0, false
	}
	return w, true
}

// LineChecksum computes the one-byte sum-checksum of a 32-byte header
// record's first 31 bytes, grounded on calculate_line_checksum.
func LineChecksum(record []byte) byte {
	var sum byte
	for _, b := range record[:HeaderRecordSize-1] {
		sum += b
	}
	return sum
}

// LineChecksumOK reports whether record's trailing byte matches its
// computed line checksum.
func LineChecksumOK(record []byte) bool {
	return record[HeaderRecordSize-1] == LineChecksum(record)
}

// BodyChecksum8 is the 8-bit modular sum of payload, grounded on
// calculate_rom_block_checksum_8.
func BodyChecksum8(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// BodyChecksum16 is the 16-bit modular sum of payload read as
// little-endian 16-bit words. The source's calculate_rom_block_checksum_16
// reads one byte past the payload on its last iteration (see DESIGN.md);
// this is the conservative, non-overrunning re-implementation spec.md §9
// calls for: payload must have even length, summed two bytes at a time.
func BodyChecksum16(payload []byte) (uint16, bool) {
	if len(payload)%2 != 0 {
		return 0, false
	}
	var sum uint16
	for i := 0; i < len(payload); i += 2 {
		sum += binary.LittleEndian.Uint16(payload[i : i+2])
	}
	return sum, true
}

// WalkHeaders reads consecutive HeaderRecordSize-byte records from image
// starting at offset 0, stopping at the first block_nr outside the
// recognized set, per create_rom_block_table's walk.
func WalkHeaders(image []byte) []RomBlockHeader {
	var headers []RomBlockHeader
	for off := 0; off+HeaderRecordSize <= len(image); off += HeaderRecordSize {
		if !recognizedBlockNr(image[off]) {
			break
		}
		headers = append(headers, DecodeHeader(image[off:off+HeaderRecordSize]))
	}
	return headers
}
