// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package drive owns an exclusive handle to a SCSI-disk block device and
// offers the higher-level ATA operations (identify, vendor-command
// enable/disable, ROM-key acquisition, ROM-block and DMA-extended LBA
// read/write) built atop pkg/ata's pass-through executor.
package drive

import (
	"os"

	"github.com/wdromtool/romtool/pkg/ata"
)

// devicePathPrefix is the only accepted prefix for a device node: the
// Linux SCSI-disk naming convention (/dev/sda, /dev/sdb, ...).
const devicePathPrefix = "/dev/s"

// Handle is an owned, exclusive handle to an opened block-device node. It
// is released by Close; a zero Handle is not usable.
type Handle struct {
	path string
	f    *os.File
}

// Open opens device for read/write after checking it begins with the
// SCSI-disk path prefix. It does not implicitly IDENTIFY the drive — call
// Session.Identify for that.
func Open(device string) (*Handle, error) {
	if !hasDevicePrefix(device) {
		return nil, &ata.Error{Kind: ata.KindInvalidDevicePath, Op: "drive.Open"}
	}

	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, &ata.Error{Kind: ata.KindOpenError, Op: "drive.Open", Err: err}
	}
	return &Handle{path: device, f: f}, nil
}

func hasDevicePrefix(device string) bool {
	return len(device) >= len(devicePathPrefix) && device[:len(devicePathPrefix)] == devicePathPrefix
}

// Fd returns the underlying file descriptor for use by pkg/ata's
// pass-through executor.
func (h *Handle) Fd() uintptr { return h.f.Fd() }

// Path returns the device path this handle was opened against.
func (h *Handle) Path() string { return h.path }

// Close releases the handle.
func (h *Handle) Close() error { return h.f.Close() }
