// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package romcodec

import (
	"strconv"
	"strings"

	"github.com/wdromtool/romtool/pkg/romlayout"
)

// textColumn is the byte offset spec.md's on-disk format dedicates to a
// label before the value begins, grounded on
// original_source/src/rom_management.c's display_rom_block field order.
// ParseHeaderText below is tolerant of the exact column (it splits on the
// first ':' instead), which is the spec's explicitly sanctioned
// alternative to replicating the fragile fixed-column reader, provided
// the unpack-then-pack round trip still reproduces the image byte for
// byte.
const textColumn = 28

const (
	labelBlockNr          = "block_nr"
	labelFlag             = "flag"
	labelUnk1             = "unk1"
	labelUnk2             = "unk2"
	labelLengthPlusCS     = "length_plus_cs"
	labelSize             = "size"
	labelStartAddress     = "start_address"
	labelLoadAddress      = "load_address"
	labelExecutionAddress = "execution_address"
	labelUnk3             = "unk3"
	labelFstwPlusCS       = "fstw_plus_cs"
)

func formatField(label string, value uint64) string {
	prefix := label + ":"
	if len(prefix) < textColumn {
		prefix += strings.Repeat(" ", textColumn-len(prefix))
	}
	return prefix + "0x" + strconv.FormatUint(value, 16)
}

// FormatHeaderText renders headers as the formatted_header text file:
// one labelled 0xVALUE line per field, records separated by a blank line.
func FormatHeaderText(headers []romlayout.RomBlockHeader) string {
	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatField(labelBlockNr, uint64(h.BlockNr)) + "\n")
		b.WriteString(formatField(labelFlag, uint64(h.Flag)) + "\n")
		b.WriteString(formatField(labelUnk1, uint64(h.Unk1)) + "\n")
		b.WriteString(formatField(labelUnk2, uint64(h.Unk2)) + "\n")
		b.WriteString(formatField(labelLengthPlusCS, uint64(h.LengthPlusCS)) + "\n")
		b.WriteString(formatField(labelSize, uint64(h.Size)) + "\n")
		b.WriteString(formatField(labelStartAddress, uint64(h.StartAddress)) + "\n")
		b.WriteString(formatField(labelLoadAddress, uint64(h.LoadAddress)) + "\n")
		b.WriteString(formatField(labelExecutionAddress, uint64(h.ExecutionAddress)) + "\n")
		b.WriteString(formatField(labelUnk3, uint64(h.Unk3)) + "\n")
		b.WriteString(formatField(labelFstwPlusCS, uint64(h.FstwPlusCS)) + "\n")
	}
	return b.String()
}

// ParseHeaderText parses the formatted_header text format back into
// header records. A blank line ends the current record; a final record
// is emitted at end of input if any field was seen for it.
func ParseHeaderText(text string) ([]romlayout.RomBlockHeader, error) {
	var headers []romlayout.RomBlockHeader
	var cur romlayout.RomBlockHeader
	var dirty bool

	flush := func() {
		if dirty {
			headers = append(headers, cur)
		}
		cur = romlayout.RomBlockHeader{}
		dirty = false
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		label, value, err := parseFieldLine(line)
		if err != nil {
			return nil, newError("romcodec.ParseHeaderText", KindMalformedImage, cur.BlockNr, err)
		}
		dirty = true

		switch label {
		case labelBlockNr:
			cur.BlockNr = byte(value)
		case labelFlag:
			cur.Flag = byte(value)
		case labelUnk1:
			cur.Unk1 = byte(value)
		case labelUnk2:
			cur.Unk2 = byte(value)
		case labelLengthPlusCS:
			cur.LengthPlusCS = uint32(value)
		case labelSize:
			cur.Size = uint32(value)
		case labelStartAddress:
			cur.StartAddress = uint32(value)
		case labelLoadAddress:
			cur.LoadAddress = uint32(value)
		case labelExecutionAddress:
			cur.ExecutionAddress = uint32(value)
		case labelUnk3:
			cur.Unk3 = uint32(value)
		case labelFstwPlusCS:
			cur.FstwPlusCS = uint32(value)
			// Unrecognized labels are ignored rather than rejected, so a
			// hand-edited header file can carry operator comments.
		}
	}
	flush()

	return headers, nil
}

func parseFieldLine(line string) (label string, value uint64, err error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", 0, &strconv.NumError{Func: "parseFieldLine", Num: line, Err: strconv.ErrSyntax}
	}
	label = strings.TrimSpace(line[:idx])
	raw := strings.TrimSpace(line[idx+1:])
	raw = strings.TrimPrefix(raw, "0x")
	raw = strings.TrimPrefix(raw, "0X")
	value, err = strconv.ParseUint(raw, 16, 64)
	return label, value, err
}
