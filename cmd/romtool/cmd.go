package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/wdromtool/romtool/pkg/driver"
)

// context is the context struct required by the kong command line parser.
type context struct {
	Verbose bool
}

type dumpCmd struct {
	Device  string `arg:"" help:"SCSI-disk device node, e.g. /dev/sda"`
	OutFile string `arg:"" help:"Output ROM image path"`
	Force   bool   `type:"confirm" help:"Skip the interactive confirmation prompt"`
}

type uploadCmd struct {
	Device string `arg:"" help:"SCSI-disk device node, e.g. /dev/sda"`
	InFile string `arg:"" type:"accessiblefile" help:"ROM image to upload"`
	Force  bool   `type:"confirm" help:"Skip the interactive confirmation prompt"`
}

type infoCmd struct {
	RomFile string `arg:"" type:"accessiblefile" help:"ROM image to inspect"`
}

type unpackCmd struct {
	RomFile string `arg:"" type:"accessiblefile" help:"ROM image to unpack"`
}

type packCmd struct {
	HeaderFile string `arg:"" type:"accessiblefile" help:"formatted_header text file"`
	OutFile    string `arg:"" help:"Output ROM image path"`
}

type modifyCmd struct {
	RomFile string `arg:"" type:"accessiblefile" help:"ROM image to patch in place"`
	Addr    string `arg:"" help:"Byte offset, hex (e.g. 0x100)"`
	Insn    string `arg:"" help:"Replacement instruction, hex (e.g. 0xDEADBEEF)"`
	Width   int    `default:"4" help:"Instruction width in bytes (1-4)"`
	Force   bool   `type:"confirm" help:"Skip the interactive confirmation prompt"`
}

type scanCmd struct {
	Metrics bool `help:"Emit Prometheus text-format metrics instead of a log report"`
}

type readLBACmd struct {
	Device string `arg:"" help:"SCSI-disk device node, e.g. /dev/sda"`
	LBA    string `arg:"" help:"Logical block address, decimal or 0x-prefixed hex"`
}

type writeLBACmd struct {
	Device string `arg:"" help:"SCSI-disk device node, e.g. /dev/sda"`
	LBA    string `arg:"" help:"Logical block address, decimal or 0x-prefixed hex"`
	Data   string `arg:"" help:"Sector contents, at most 512 bytes"`
	Force  bool   `type:"confirm" help:"Skip the interactive confirmation prompt"`
}

// cli is the main command line interface struct required by kong.
var cli struct {
	Verbose bool `short:"v" help:"Dump full internal state with every log line"`

	Dump     dumpCmd     `cmd:"" help:"Dump the firmware ROM from a drive to a file"`
	Upload   uploadCmd   `cmd:"" help:"Upload a firmware ROM image to a drive"`
	Info     infoCmd     `cmd:"" help:"Print ROM block header info and verify checksums"`
	Unpack   unpackCmd   `cmd:"" help:"Unpack a ROM image into a block directory"`
	Pack     packCmd     `cmd:"" help:"Pack a block directory into a ROM image"`
	Modify   modifyCmd   `cmd:"" help:"Patch one instruction into a ROM image in place"`
	Scan     scanCmd     `cmd:"" help:"Scan /dev for SCSI-disk candidates and identify each"`
	ReadLBA  readLBACmd  `cmd:"" name:"read-lba" help:"Read one 512-byte LBA sector from a drive"`
	WriteLBA writeLBACmd `cmd:"" name:"write-lba" help:"Write one 512-byte LBA sector to a drive"`
}

func parseNumeric(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func (c *dumpCmd) Run(ctx *context) error {
	if !c.Force {
		return fmt.Errorf("dump requires confirmation")
	}
	log.Printf("dumping ROM from %s to %s", c.Device, c.OutFile)
	if err := driver.Dump(c.Device, c.OutFile); err != nil {
		return fmt.Errorf("driver.Dump: %w", err)
	}
	log.Printf("dump complete")
	return nil
}

func (c *uploadCmd) Run(ctx *context) error {
	if !c.Force {
		return fmt.Errorf("upload requires confirmation")
	}
	log.Printf("uploading ROM from %s to %s", c.InFile, c.Device)
	if err := driver.Upload(c.Device, c.InFile); err != nil {
		return fmt.Errorf("driver.Upload: %w", err)
	}
	log.Printf("upload complete")
	return nil
}

func (c *infoCmd) Run(ctx *context) error {
	reports, err := driver.DisplayInfo(c.RomFile)
	if err != nil {
		return fmt.Errorf("driver.DisplayInfo: %w", err)
	}
	for _, r := range reports {
		if ctx.Verbose {
			spew.Dump(r)
			continue
		}
		log.Printf("block %#x: line checksum ok=%v", r.Header.BlockNr, r.LineChecksumOK)
		if r.ChecksumWidth > 0 {
			if r.BodyChecksumOK {
				log.Printf("block %#x: contents checksum OK: %#x", r.Header.BlockNr, r.StoredBodyChecksum)
			} else {
				log.Printf("block %#x: contents checksum FAIL: %#x != %#x",
					r.Header.BlockNr, r.ComputedBodyChecksum, r.StoredBodyChecksum)
			}
		}
	}
	return nil
}

func (c *unpackCmd) Run(ctx *context) error {
	dir, err := driver.Unpack(c.RomFile)
	if err != nil {
		return fmt.Errorf("driver.Unpack: %w", err)
	}
	log.Printf("unpacked %s into %s", c.RomFile, dir)
	return nil
}

func (c *packCmd) Run(ctx *context) error {
	if err := driver.Pack(c.HeaderFile, c.OutFile); err != nil {
		return fmt.Errorf("driver.Pack: %w", err)
	}
	log.Printf("packed %s into %s", c.HeaderFile, c.OutFile)
	return nil
}

func (c *modifyCmd) Run(ctx *context) error {
	if !c.Force {
		return fmt.Errorf("modify requires confirmation")
	}
	addr, err := parseNumeric(c.Addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Addr, err)
	}
	insn, err := parseNumeric(c.Insn)
	if err != nil {
		return fmt.Errorf("invalid instruction %q: %w", c.Insn, err)
	}
	if err := driver.Modify(c.RomFile, addr, uint32(insn), c.Width); err != nil {
		return fmt.Errorf("driver.Modify: %w", err)
	}
	log.Printf("patched %#x bytes at %#x in %s", c.Width, addr, c.RomFile)
	return nil
}

func (c *scanCmd) Run(ctx *context) error {
	results, err := driver.Scan()
	if err != nil {
		return fmt.Errorf("driver.Scan: %w", err)
	}
	if c.Metrics {
		outputMetrics(results)
		return nil
	}
	for _, r := range results {
		if r.Err != nil {
			log.Printf("%s: %v", r.Path, r.Err)
			continue
		}
		log.Printf("%s: model=%q firmware=%q serial=%q supported=%v",
			r.Path, r.Identity.Model, r.Identity.FirmwareRevision, r.Identity.SerialNumber, r.Identity.Supported)
	}
	return nil
}

func (c *readLBACmd) Run(ctx *context) error {
	lba, err := parseNumeric(c.LBA)
	if err != nil {
		return fmt.Errorf("invalid lba %q: %w", c.LBA, err)
	}
	buf, err := driver.ReadLBA(c.Device, uint32(lba))
	if err != nil {
		return fmt.Errorf("driver.ReadLBA: %w", err)
	}
	if ctx.Verbose {
		spew.Dump(buf)
		return nil
	}
	for i := 0; i < len(buf); i += 16 {
		log.Printf("% 02x", buf[i:i+16])
	}
	return nil
}

func (c *writeLBACmd) Run(ctx *context) error {
	if !c.Force {
		return fmt.Errorf("write-lba requires confirmation")
	}
	lba, err := parseNumeric(c.LBA)
	if err != nil {
		return fmt.Errorf("invalid lba %q: %w", c.LBA, err)
	}
	if len(c.Data) > 512 {
		return fmt.Errorf("data must be at most 512 bytes, got %d", len(c.Data))
	}
	if err := driver.WriteLBA(c.Device, uint32(lba), []byte(c.Data)); err != nil {
		return fmt.Errorf("driver.WriteLBA: %w", err)
	}
	log.Printf("wrote lba %d on %s", lba, c.Device)
	return nil
}
