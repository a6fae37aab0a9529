// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import "testing"

func TestParseIdentitySupport(t *testing.T) {
	cases := []struct {
		name      string
		d, w, c   byte
		supported bool
	}{
		{"signature matches", 'D', 'W', 'C', true},
		{"wrong byte 54", 'X', 'W', 'C', false},
		{"wrong byte 55", 'D', 'X', 'C', false},
		{"wrong byte 57", 'D', 'W', 'X', false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf [512]byte
			buf[identifySupportByteD] = tc.d
			buf[identifySupportByteW] = tc.w
			buf[identifySupportByteC] = tc.c

			id := ParseIdentity(buf)
			if id.Supported != tc.supported {
				t.Errorf("Supported = %v, want %v", id.Supported, tc.supported)
			}
		})
	}
}

func TestWordSwapString(t *testing.T) {
	var buf [512]byte
	// "WD" word-swapped: on-wire bytes are ['D','W'], decoded as "WD".
	copy(buf[identifyModelNumberStart:], []byte{'D', 'W'})

	id := ParseIdentity(buf)
	if id.Model != "WD" {
		t.Errorf("Model = %q, want %q", id.Model, "WD")
	}
}
