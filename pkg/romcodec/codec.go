// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package romcodec

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wdromtool/romtool/pkg/romlayout"
)

// BlockReport is one header's inspection result, grounded on
// display_rom_block/verify_rom_block_header/verify_rom_block_contents.
type BlockReport struct {
	Header               romlayout.RomBlockHeader
	LineChecksumOK        bool
	ChecksumWidth         int
	BodyChecksumOK        bool
	ComputedBodyChecksum  uint32
	StoredBodyChecksum    uint32
}

// Inspect walks image's header table and reports the line and body
// checksum state of every block found. A checksum failure is reported in
// the returned slice, not as an error — the walk never aborts early, per
// spec.md §4.4.
func Inspect(image []byte) ([]BlockReport, error) {
	headers := romlayout.WalkHeaders(image)
	reports := make([]BlockReport, 0, len(headers))

	for i, h := range headers {
		off := i * romlayout.HeaderRecordSize
		record := image[off : off+romlayout.HeaderRecordSize]

		r := BlockReport{
			Header:         h,
			LineChecksumOK: romlayout.LineChecksumOK(record),
		}

		width, ok := h.ChecksumWidth()
		if !ok {
			reports = append(reports, r)
			continue
		}
		r.ChecksumWidth = width

		end := int(h.StartAddress) + int(h.Size)
		if end+width > len(image) {
			reports = append(reports, r)
			continue
		}
		payload := image[h.StartAddress:end]
		stored := readStoredChecksum(image[end:end+width], width)
		r.StoredBodyChecksum = stored

		switch width {
		case 1:
			r.ComputedBodyChecksum = uint32(romlayout.BodyChecksum8(payload))
		case 2:
			sum, evenLen := romlayout.BodyChecksum16(payload)
			if !evenLen {
				reports = append(reports, r)
				continue
			}
			r.ComputedBodyChecksum = uint32(sum)
		}
		r.BodyChecksumOK = r.ComputedBodyChecksum == r.StoredBodyChecksum
		reports = append(reports, r)
	}
	return reports, nil
}

func readStoredChecksum(b []byte, width int) uint32 {
	if width == 1 {
		return uint32(b[0])
	}
	return uint32(binary.LittleEndian.Uint16(b))
}

// Unpack reads imagePath, derives a working directory from its basename
// (sans extension), and writes:
//   - a verbatim copy of the image under its original filename,
//   - "formatted_header", the human-editable header dump,
//   - "<basename>_block_header", the raw concatenated header table,
//   - one "block_XX" file per header (XX = lowercase hex of block_nr).
//
// It does not chdir the process the way the reference implementation
// does; every file is written by explicit path into the working
// directory it creates, which is equivalent for every consumer of this
// package (see DESIGN.md).
func Unpack(imagePath string) (string, error) {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return "", newError("romcodec.Unpack", KindIoError, 0, err)
	}

	base := filepath.Base(imagePath)
	dirName := strings.TrimSuffix(base, filepath.Ext(base))

	if err := os.MkdirAll(dirName, 0o700); err != nil {
		return "", newError("romcodec.Unpack", KindIoError, 0, err)
	}

	if err := os.WriteFile(filepath.Join(dirName, base), image, 0o644); err != nil {
		return "", newError("romcodec.Unpack", KindIoError, 0, err)
	}

	headers := romlayout.WalkHeaders(image)

	headerText := FormatHeaderText(headers)
	if err := os.WriteFile(filepath.Join(dirName, "formatted_header"), []byte(headerText), 0o644); err != nil {
		return "", newError("romcodec.Unpack", KindIoError, 0, err)
	}

	rawTable := image[:len(headers)*romlayout.HeaderRecordSize]
	if err := os.WriteFile(filepath.Join(dirName, dirName+"_block_header"), rawTable, 0o644); err != nil {
		return "", newError("romcodec.Unpack", KindIoError, 0, err)
	}

	for _, h := range headers {
		end := int(h.StartAddress) + int(h.Size)
		if end > len(image) {
			return "", newError("romcodec.Unpack", KindMalformedImage, h.BlockNr, nil)
		}
		payload := image[h.StartAddress:end]
		name := fmt.Sprintf("block_%x", h.BlockNr)
		if err := os.WriteFile(filepath.Join(dirName, name), payload, 0o644); err != nil {
			return "", newError("romcodec.Unpack", KindIoError, h.BlockNr, err)
		}
	}

	return dirName, nil
}

// Pack parses headerFile's formatted_header text, reads each header's
// "block_XX" payload file from blockDir, recomputes both header and body
// checksums, and writes the assembled 256KiB image to outFile.
func Pack(headerFile, blockDir, outFile string) error {
	text, err := os.ReadFile(headerFile)
	if err != nil {
		return newError("romcodec.Pack", KindIoError, 0, err)
	}

	headers, err := ParseHeaderText(string(text))
	if err != nil {
		return err
	}

	image := make([]byte, romlayout.ImageSize)

	for i, h := range headers {
		name := fmt.Sprintf("block_%x", h.BlockNr)
		payload, err := os.ReadFile(filepath.Join(blockDir, name))
		if err != nil {
			return newError("romcodec.Pack", KindIoError, h.BlockNr, err)
		}

		width, ok := h.ChecksumWidth()
		if !ok {
			return newError("romcodec.Pack", KindMalformedImage, h.BlockNr, nil)
		}
		if int(h.StartAddress)+int(h.LengthPlusCS) > romlayout.ImageSize {
			return newError("romcodec.Pack", KindOversizeBlock, h.BlockNr, nil)
		}
		if len(payload) != int(h.Size) {
			return newError("romcodec.Pack", KindMalformedImage, h.BlockNr, nil)
		}

		copy(image[h.StartAddress:], payload)

		switch width {
		case 1:
			image[int(h.StartAddress)+int(h.Size)] = romlayout.BodyChecksum8(payload)
		case 2:
			sum, _ := romlayout.BodyChecksum16(payload)
			binary.LittleEndian.PutUint16(image[int(h.StartAddress)+int(h.Size):], sum)
		}

		enc := h.Encode()
		copy(image[i*romlayout.HeaderRecordSize:], enc[:])
	}

	if err := os.WriteFile(outFile, image, 0o644); err != nil {
		return newError("romcodec.Pack", KindIoError, 0, err)
	}
	return nil
}

// ModifyInstruction overwrites width bytes (1..4) at byteAddress in
// imagePath's file with insn's little-endian encoding.
func ModifyInstruction(imagePath string, byteAddress uint64, insn uint32, width int) error {
	if width < 1 || width > 4 {
		return newError("romcodec.ModifyInstruction", KindMalformedImage, 0, fmt.Errorf("instruction width %d out of range [1,4]", width))
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return newError("romcodec.ModifyInstruction", KindIoError, 0, err)
	}
	if byteAddress+uint64(width) > uint64(len(image)) {
		return newError("romcodec.ModifyInstruction", KindOversizeBlock, 0, nil)
	}

	var enc [4]byte
	binary.LittleEndian.PutUint32(enc[:], insn)
	copy(image[byteAddress:byteAddress+uint64(width)], enc[:width])

	if err := os.WriteFile(imagePath, image, 0o644); err != nil {
		return newError("romcodec.ModifyInstruction", KindIoError, 0, err)
	}
	return nil
}
