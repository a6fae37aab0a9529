// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ata

import "testing"

func wellFormedSense() SenseBuffer {
	var s SenseBuffer
	s[0] = senseResponseDescriptorFormat
	s[7] = senseMinAdditionalLength
	s[8] = senseATAReturnDescriptorType
	s[9] = senseMinDescriptorLength
	return s
}

func TestSenseWellFormed(t *testing.T) {
	if !wellFormedSense().WellFormed() {
		t.Fatal("well-formed fixture reported not well formed")
	}
}

func TestSenseMalformedAdditionalLengthOneShort(t *testing.T) {
	s := wellFormedSense()
	s[7] = senseMinAdditionalLength - 1
	if s.WellFormed() {
		t.Error("additional length 13 (descriptor type 0x09) should be malformed")
	}
}

func TestSenseMalformedResponseCode(t *testing.T) {
	s := wellFormedSense()
	s[0] = 0x70 // fixed-format, not descriptor-format
	if s.WellFormed() {
		t.Error("response code 0x70 should be malformed")
	}
}

func TestSenseMalformedDescriptorType(t *testing.T) {
	s := wellFormedSense()
	s[8] = 0x00
	if s.WellFormed() {
		t.Error("descriptor type 0x00 should be malformed")
	}
}

func TestSenseHasATAError(t *testing.T) {
	s := wellFormedSense()
	s[21] = ataStatusERR
	if !s.HasATAError() {
		t.Error("ERR bit set should report HasATAError")
	}

	s[21] = ataStatusDRQ
	if !s.HasATAError() {
		t.Error("DRQ bit set should report HasATAError")
	}

	s[21] = 0
	if s.HasATAError() {
		t.Error("no ERR/DRQ bits should not report HasATAError")
	}
}
