// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"encoding/binary"
	"strings"
)

// Byte offsets into the 512-byte ATA IDENTIFY DEVICE response, grounded on
// original_source/src/disk_communication.c's display_model/
// display_firmware_revision/display_serial_number/
// display_number_of_lba_entries and the word ranges spec.md §3 calls out.
const (
	identifyModelNumberStart       = 27 * 2
	identifyModelNumberEnd         = 47 * 2
	identifyFirmwareRevisionStart  = 23 * 2
	identifyFirmwareRevisionEnd    = 27 * 2
	identifySerialNumberStart      = 10 * 2
	identifySerialNumberEnd        = 20 * 2
	identifyMaximumLBAEntryOffset  = 105 * 2 // ATA-ACS word 105: DSM TRIM LBA range entries per command

	identifySupportByteD = 54
	identifySupportByteW = 55
	identifySupportByteC = 57
)

// Identity is the decoded form of a 512-byte ATA IDENTIFY DEVICE response.
// Every string field is ATA word-swapped: each 16-bit word is stored with
// its two bytes exchanged, so decoding walks the range two bytes at a time
// and emits the high byte before the low byte.
type Identity struct {
	Model              string
	FirmwareRevision   string
	SerialNumber       string
	MaximumLBAEntries  uint64
	Supported          bool
}

// ParseIdentity decodes a 512-byte IDENTIFY response. It never fails: an
// undersized or all-zero buffer simply yields empty fields and
// Supported == false. Callers that require a supported drive should check
// Identity.Supported explicitly, which DriveSession.Identify does for them
// by returning UnsupportedDrive.
func ParseIdentity(buf [512]byte) Identity {
	return Identity{
		Model:             wordSwapString(buf[:], identifyModelNumberStart, identifyModelNumberEnd),
		FirmwareRevision:  wordSwapString(buf[:], identifyFirmwareRevisionStart, identifyFirmwareRevisionEnd),
		SerialNumber:      wordSwapString(buf[:], identifySerialNumberStart, identifySerialNumberEnd),
		MaximumLBAEntries: binary.LittleEndian.Uint64(buf[identifyMaximumLBAEntryOffset:]),
		Supported: buf[identifySupportByteD] == 'D' &&
			buf[identifySupportByteW] == 'W' &&
			buf[identifySupportByteC] == 'C',
	}
}

// wordSwapString reads buf[start:end] two bytes at a time, emitting the
// high byte of each pair before the low byte (the ATA string convention),
// and trims surrounding whitespace left by short strings.
func wordSwapString(buf []byte, start, end int) string {
	var b strings.Builder
	for i := start; i+1 < end; i += 2 {
		if buf[i] == 0 && buf[i+1] == 0 {
			break
		}
		b.WriteByte(buf[i+1])
		b.WriteByte(buf[i])
	}
	return strings.TrimSpace(b.String())
}
