// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"errors"
	"testing"

	"github.com/wdromtool/romtool/pkg/ata"
)

func TestOpenRejectsNonSCSIDiskPath(t *testing.T) {
	for _, path := range []string{"/dev/xda", "/dev/nvme0n1", "/etc/passwd", ""} {
		_, err := Open(path)
		var ataErr *ata.Error
		if !errors.As(err, &ataErr) || ataErr.Kind != ata.KindInvalidDevicePath {
			t.Errorf("Open(%q) error = %v, want KindInvalidDevicePath", path, err)
		}
	}
}

func TestHasDevicePrefix(t *testing.T) {
	cases := map[string]bool{
		"/dev/sda":  true,
		"/dev/sdb1": true,
		"/dev/xda":  false,
		"/dev/s":    true,
		"/dev/":     false,
	}
	for path, want := range cases {
		if got := hasDevicePrefix(path); got != want {
			t.Errorf("hasDevicePrefix(%q) = %v, want %v", path, got, want)
		}
	}
}
