// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package romlayout

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := RomBlockHeader{
		BlockNr:          0x03,
		Flag:             FlagUnencrypted,
		Unk1:             0x01,
		Unk2:             0x02,
		LengthPlusCS:     17,
		Size:             16,
		StartAddress:     0x40,
		LoadAddress:      0x1000,
		ExecutionAddress: 0x1004,
		Unk3:             0xdeadbeef,
		FstwPlusCS:       0xcafef00d,
	}
	enc := h.Encode()
	got := DecodeHeader(enc[:])
	// Byte 31 of the record is both the top byte of fstw_plus_cs and the
	// line checksum, so Encode replaces that byte of FstwPlusCS.
	want := h
	want.FstwPlusCS = h.FstwPlusCS&0x00ffffff | uint32(enc[HeaderRecordSize-1])<<24
	if got != want {
		t.Errorf("DecodeHeader(Encode(h)) = %+v, want %+v", got, want)
	}
	if !LineChecksumOK(enc[:]) {
		t.Errorf("Encode() produced a header that fails its own line checksum: % 02x", enc)
	}
}

func TestLineChecksum(t *testing.T) {
	record := make([]byte, HeaderRecordSize)
	record[0] = 0x10
	record[1] = 0x20
	record[31] = 0x31 // deliberately wrong: the sum is 0x30

	if got := LineChecksum(record); got != 0x30 {
		t.Errorf("LineChecksum = %#x, want %#x", got, 0x30)
	}
	if LineChecksumOK(record) {
		t.Error("LineChecksumOK should be true only when trailing byte matches")
	}

	record[31] = LineChecksum(record)
	if !LineChecksumOK(record) {
		t.Error("LineChecksumOK should be true after fixing the trailing byte")
	}
}

func TestBodyChecksum8(t *testing.T) {
	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = 0x01
	}
	if got := BodyChecksum8(payload); got != 0x10 {
		t.Errorf("BodyChecksum8 = %#x, want 0x10", got)
	}
}

func TestBodyChecksum16(t *testing.T) {
	payload := []byte{0x01, 0x00, 0x02, 0x00}
	got, ok := BodyChecksum16(payload)
	if !ok {
		t.Fatal("BodyChecksum16 reported not ok for even-length payload")
	}
	if got != 0x0003 {
		t.Errorf("BodyChecksum16 = %#x, want 0x0003", got)
	}

	if _, ok := BodyChecksum16([]byte{0x01, 0x00, 0x02}); ok {
		t.Error("BodyChecksum16 should reject odd-length payloads")
	}
}

func TestChecksumWidth(t *testing.T) {
	cases := []struct {
		length, size uint32
		want         int
		ok           bool
	}{
		{17, 16, 1, true},
		{18, 16, 2, true},
		{19, 16, 0, false},
		{16, 16, 0, false},
	}
	for _, c := range cases {
		h := RomBlockHeader{LengthPlusCS: c.length, Size: c.size}
		w, ok := h.ChecksumWidth()
		if w != c.want || ok != c.ok {
			t.Errorf("ChecksumWidth(length=%d,size=%d) = (%d,%v), want (%d,%v)",
				c.length, c.size, w, ok, c.want, c.ok)
		}
	}
}

func TestWalkHeadersStopsAtUnrecognizedBlockNr(t *testing.T) {
	image := make([]byte, HeaderRecordSize*3)
	image[0*HeaderRecordSize] = 0x00
	image[1*HeaderRecordSize] = 0x5a
	image[2*HeaderRecordSize] = 0x0b // not in {0..0x0a, 0x5a}: terminates the walk

	headers := WalkHeaders(image)
	if len(headers) != 2 {
		t.Fatalf("WalkHeaders returned %d headers, want 2", len(headers))
	}
	if headers[0].BlockNr != 0x00 || headers[1].BlockNr != 0x5a {
		t.Errorf("unexpected header sequence: %+v", headers)
	}
}
