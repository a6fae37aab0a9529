// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ata

// Package-level ATA/SCSI op codes and register values, grounded on
// original_source/src/disk_communication.c.
const (
	opATAPassThrough16 = 0x85

	cmdIdentify           = 0xEC
	cmdVendorSpecific     = 0x80
	cmdSMART              = 0xB0
	cmdReadDMAExt         = 0x25
	cmdWriteDMAExt        = 0x35

	// Direction token for AcquireRomKey / SMART command-buffer byte 2.
	RomKeyRead  = 0x01
	RomKeyWrite = 0x02
	RomKeyErase = 0x03

	// RomBlockSize is the transport unit used by ReadRomBlock/WriteRomBlock.
	RomBlockSize = 64 * 1024
)

// CDB is a 16-byte ATA PASS-THROUGH command descriptor block. It is built
// once per operation and never mutated afterward.
type CDB [16]byte

// PackID returns the SCSI generic pack_id correlated to this CDB's LBA
// fields, per spec: ((device & 0x0F) << 24) | (lba_high << 16) |
// (lba_mid << 8) | lba_low, reading the CDB's low LBA bytes (8, 10, 12)
// and the low nibble of the device register (13).
func (c CDB) PackID() int32 {
	lba := (uint32(c[12]) << 16) | (uint32(c[10]) << 8) | uint32(c[8])
	return int32((uint32(c[13]&0x0F) << 24) | lba)
}

// IdentifyCDB builds the CDB for ATA IDENTIFY DEVICE (0xEC), a PIO
// data-in command with the check-condition/LBA-enable flags the drive
// requires to surface a completion status in sense data.
func IdentifyCDB() CDB {
	return CDB{
		0: opATAPassThrough16,
		1: 0x08, // protocol 4 (PIO Data-In), multiple count 0, extended 0
		2: 0x2e, // cc=1 lh.en=1 lm.en=1 ll.en=1 sc.en=1
		13: 0x40,
		14: cmdIdentify,
	}
}

// EnableVSCCDB builds the CDB that enables vendor-specific command mode
// (ATA op 0x80) ahead of ROM access. The 'D','W','C' bytes at offsets
// 10 and 12 are the model-family signature documented in spec.md §9; they
// are carried unchanged in both EnableVSCCDB and DisableVSCCDB.
func EnableVSCCDB() CDB {
	return vscCDB(0x45)
}

// DisableVSCCDB builds the CDB that disables vendor-specific command mode.
// It differs from EnableVSCCDB only in the features-low byte.
func DisableVSCCDB() CDB {
	return vscCDB(0x44)
}

func vscCDB(featuresLow byte) CDB {
	return CDB{
		0:  opATAPassThrough16,
		1:  0x06,
		2:  0x20,
		4:  featuresLow,
		10: 0x44, // 'D'
		12: 0x57, // 'W'
		13: 0xa0,
		14: cmdVendorSpecific,
	}
}

// AcquireRomKeyCDB builds the CDB for ATA SMART (0xB0) used to request a
// ROM access key. The direction (read/write/erase) is not carried in the
// CDB itself — it is byte 2 (zero-based) of the 512-byte command buffer
// returned by AcquireRomKeyBuffer.
func AcquireRomKeyCDB() CDB {
	return CDB{
		0:  opATAPassThrough16,
		1:  0x0a,
		2:  0x26,
		4:  0xd6,
		6:  0x80,
		8:  0xbf,
		10: 0x4f,
		12: 0xc2,
		13: 0xa0,
		14: cmdSMART,
	}
}

// AcquireRomKeyBuffer builds the 512-byte SMART command payload that
// requests the given ROM access token (RomKeyRead/Write/Erase).
func AcquireRomKeyBuffer(direction byte) []byte {
	buf := make([]byte, 512)
	buf[0] = 0x24
	buf[2] = direction
	return buf
}

// ReadRomBlockCDB builds the CDB for a 64KiB ROM block PIO read.
func ReadRomBlockCDB() CDB {
	return romBlockCDB(0xd5)
}

// WriteRomBlockCDB builds the CDB for a 64KiB ROM block PIO write.
func WriteRomBlockCDB() CDB {
	c := romBlockCDB(0xd6)
	c[1] = 0x0a // protocol 5 (PIO Data-Out)
	c[2] = 0x26
	return c
}

func romBlockCDB(featuresLow byte) CDB {
	return CDB{
		0:  opATAPassThrough16,
		1:  0x08,
		2:  0x2e,
		4:  featuresLow,
		6:  0x80,
		8:  0xbf,
		10: 0x4f,
		12: 0xc2,
		13: 0xa0,
		14: cmdSMART,
	}
}

// ReadDMAExtCDB builds the CDB for ATA READ DMA EXT at the given 28-bit LBA.
func ReadDMAExtCDB(lba uint32) CDB {
	c := dmaExtCDB(lba)
	c[2] = 0x2e
	c[14] = cmdReadDMAExt
	return c
}

// WriteDMAExtCDB builds the CDB for ATA WRITE DMA EXT at the given 28-bit LBA.
func WriteDMAExtCDB(lba uint32) CDB {
	c := dmaExtCDB(lba)
	c[2] = 0x26
	c[14] = cmdWriteDMAExt
	return c
}

// dmaExtCDB splays a 28-bit LBA across the CDB per spec.md §4.2:
// lba[0:7] -> LBA low low, lba[8:15] -> LBA low high,
// lba[16:23] -> LBA mid high, lba[24:31] -> LBA mid low.
func dmaExtCDB(lba uint32) CDB {
	return CDB{
		0:  opATAPassThrough16,
		1:  0x0D, // protocol 6 (DMA), extended 1
		6:  0x01, // sector count: one 512-byte sector
		7:  byte(lba >> 8),
		8:  byte(lba),
		9:  byte(lba >> 16),
		10: byte(lba >> 24),
		13: 0x40, // device: LBA mode
	}
}
