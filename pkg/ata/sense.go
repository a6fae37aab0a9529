// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ata

// SenseBuffer is the 32-byte descriptor-format ATA-return sense response
// the kernel attaches to a SCSI CHECK CONDITION for an ATA PASS-THROUGH 16
// command. A successful ATA command is still reported this way; CHECK
// CONDITION here is not failure.
type SenseBuffer [32]byte

func (s SenseBuffer) ResponseCode() byte     { return s[0] }
func (s SenseBuffer) AdditionalLength() byte { return s[7] }
func (s SenseBuffer) DescriptorType() byte   { return s[8] }
func (s SenseBuffer) DescriptorLength() byte { return s[9] }
func (s SenseBuffer) ATAError() byte         { return s[11] }
func (s SenseBuffer) ATAStatus() byte        { return s[21] }

const (
	senseResponseDescriptorFormat = 0x72
	senseMinAdditionalLength      = 14
	senseATAReturnDescriptorType  = 0x09
	senseMinDescriptorLength      = 0x0c

	ataStatusERR = 0x01
	ataStatusDRQ = 0x08
)

// WellFormed reports whether s has the descriptor-format ATA-return shape
// PassThrough requires before it will trust the ATA status/error bytes.
func (s SenseBuffer) WellFormed() bool {
	return s.ResponseCode() == senseResponseDescriptorFormat &&
		s.AdditionalLength() >= senseMinAdditionalLength &&
		s.DescriptorType() == senseATAReturnDescriptorType &&
		s.DescriptorLength() >= senseMinDescriptorLength
}

// HasATAError reports whether the ATA status register's ERR or DRQ bit is
// set. Callers must only consult this after WellFormed reports true.
func (s SenseBuffer) HasATAError() bool {
	return s.ATAStatus()&(ataStatusERR|ataStatusDRQ) != 0
}
