// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver is the thin composition layer the CLI calls into: it
// wires pkg/drive (the physical ATA transport) together with
// pkg/romcodec (the image format) and owns no state beyond the buffers
// each operation passes through.
package driver

import (
	"os"
	"path/filepath"

	"github.com/wdromtool/romtool/pkg/drive"
	"github.com/wdromtool/romtool/pkg/romcodec"
)

// ScanResult is one /dev/sXX candidate found by Scan, with its identity
// if the open+identify sequence succeeded.
type ScanResult struct {
	Path     string
	Identity drive.Identity
	Err      error
}

// Dump reads the full ROM image off device and writes it to outFile.
func Dump(device, outFile string) error {
	h, err := drive.Open(device)
	if err != nil {
		return err
	}
	defer h.Close()

	image, err := drive.NewSession(h).Dump()
	if err != nil {
		return err
	}
	return os.WriteFile(outFile, image, 0o644)
}

// Upload reads a ROM image from inFile and writes it to device.
func Upload(device, inFile string) error {
	image, err := os.ReadFile(inFile)
	if err != nil {
		return err
	}

	h, err := drive.Open(device)
	if err != nil {
		return err
	}
	defer h.Close()

	return drive.NewSession(h).Upload(image)
}

// DisplayInfo loads image and reports the checksum state of every block
// its header table describes.
func DisplayInfo(image string) ([]romcodec.BlockReport, error) {
	buf, err := os.ReadFile(image)
	if err != nil {
		return nil, err
	}
	return romcodec.Inspect(buf)
}

// Unpack explodes image into a directory named after its basename.
func Unpack(image string) (string, error) {
	return romcodec.Unpack(image)
}

// Pack assembles headerFile and the block_XX files alongside it (in the
// same directory) into outFile.
func Pack(headerFile, outFile string) error {
	return romcodec.Pack(headerFile, filepath.Dir(headerFile), outFile)
}

// Modify overwrites width bytes at addr in image with insn's
// little-endian encoding.
func Modify(image string, addr uint64, insn uint32, width int) error {
	return romcodec.ModifyInstruction(image, addr, insn, width)
}

// ReadLBA reads one 512-byte sector at lba from device via ATA READ DMA
// EXT.
func ReadLBA(device string, lba uint32) ([512]byte, error) {
	var buf [512]byte

	h, err := drive.Open(device)
	if err != nil {
		return buf, err
	}
	defer h.Close()

	err = drive.NewSession(h).ReadDMAExt(lba, buf[:])
	return buf, err
}

// WriteLBA writes data (padded or truncated to 512 bytes) to lba on
// device via ATA WRITE DMA EXT.
func WriteLBA(device string, lba uint32, data []byte) error {
	var buf [512]byte
	copy(buf[:], data)

	h, err := drive.Open(device)
	if err != nil {
		return err
	}
	defer h.Close()

	return drive.NewSession(h).WriteDMAExt(lba, buf[:])
}

// scanDevDir, scanNameLength and scanNamePrefix match the reference implementation's
// scan_hard_disk_drives filter: only 3-character "sdX" entries under
// /dev are candidates, which excludes numbered partitions (sda1, sda2, ...).
const (
	scanDevDir     = "/dev"
	scanNameLength = 3
	scanNamePrefix = "sd"
)

// Scan enumerates /dev for SCSI-disk candidates and attempts to open and
// identify each one. A failure to open or identify a given candidate is
// recorded in its ScanResult rather than aborting the scan.
func Scan() ([]ScanResult, error) {
	entries, err := os.ReadDir(scanDevDir)
	if err != nil {
		return nil, err
	}

	var results []ScanResult
	for _, e := range entries {
		name := e.Name()
		if len(name) != scanNameLength || name[:len(scanNamePrefix)] != scanNamePrefix {
			continue
		}

		path := filepath.Join(scanDevDir, name)
		r := ScanResult{Path: path}

		h, err := drive.Open(path)
		if err != nil {
			r.Err = err
			results = append(results, r)
			continue
		}

		id, err := drive.NewSession(h).Identify()
		h.Close()
		if err != nil {
			r.Err = err
		} else {
			r.Identity = id
		}
		results = append(results, r)
	}
	return results, nil
}
