// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"runtime"

	"github.com/wdromtool/romtool/pkg/ata"
)

// Session holds an open Handle and offers the drive-level operations the
// Driver facade composes into dump/upload. Every operation is built atop
// ata.PassThrough; the total order of issued commands is the order callers
// invoke these methods in — there is no internal reordering or retry.
type Session struct {
	h  *Handle
	pt ata.PassThrough
}

// NewSession wraps an already-opened Handle.
func NewSession(h *Handle) *Session {
	return &Session{h: h}
}

// Identify issues ATA IDENTIFY DEVICE and decodes the result. It returns
// UnsupportedDrive if the response does not carry the 'D','W','C'
// signature at bytes 54/55/57.
func (s *Session) Identify() (Identity, error) {
	var buf [512]byte
	if err := s.pt.Execute(ata.IdentifyCDB(), s.h.Fd(), buf[:], ata.FromDevice); err != nil {
		return Identity{}, err
	}
	runtime.KeepAlive(s.h)

	id := ParseIdentity(buf)
	if !id.Supported {
		return id, &ata.Error{Kind: ata.KindUnsupportedDrive, Op: "drive.Identify"}
	}
	return id, nil
}

// EnableVSC turns on vendor-specific command mode ahead of ROM access.
func (s *Session) EnableVSC() error {
	err := s.pt.Execute(ata.EnableVSCCDB(), s.h.Fd(), nil, ata.NoDirection)
	runtime.KeepAlive(s.h)
	return err
}

// DisableVSC turns off vendor-specific command mode. Callers that
// successfully called EnableVSC must attempt DisableVSC before returning,
// even on an error path (best-effort cleanup, per spec.md §4.2/§7 — this
// corrects the reference implementation's defect of skipping the call on
// early-failure exits).
func (s *Session) DisableVSC() error {
	err := s.pt.Execute(ata.DisableVSCCDB(), s.h.Fd(), nil, ata.NoDirection)
	runtime.KeepAlive(s.h)
	return err
}

// AcquireRomKey requests the ROM access token for the given direction
// (ata.RomKeyRead, ata.RomKeyWrite, or ata.RomKeyErase).
func (s *Session) AcquireRomKey(direction byte) error {
	buf := ata.AcquireRomKeyBuffer(direction)
	err := s.pt.Execute(ata.AcquireRomKeyCDB(), s.h.Fd(), buf, ata.ToDevice)
	runtime.KeepAlive(s.h)
	return err
}

// ReadRomBlock fills buf (exactly ata.RomBlockSize bytes) with one 64KiB
// ROM transport block.
func (s *Session) ReadRomBlock(buf []byte) error {
	err := s.pt.Execute(ata.ReadRomBlockCDB(), s.h.Fd(), buf, ata.FromDevice)
	runtime.KeepAlive(s.h)
	return err
}

// WriteRomBlock writes buf (exactly ata.RomBlockSize bytes) as one 64KiB
// ROM transport block.
func (s *Session) WriteRomBlock(buf []byte) error {
	err := s.pt.Execute(ata.WriteRomBlockCDB(), s.h.Fd(), buf, ata.ToDevice)
	runtime.KeepAlive(s.h)
	return err
}

// ReadDMAExt reads one 512-byte sector at lba into buf via ATA READ DMA EXT.
func (s *Session) ReadDMAExt(lba uint32, buf []byte) error {
	err := s.pt.Execute(ata.ReadDMAExtCDB(lba), s.h.Fd(), buf, ata.FromDevice)
	runtime.KeepAlive(s.h)
	return err
}

// WriteDMAExt writes one 512-byte sector at lba from buf via ATA WRITE DMA EXT.
func (s *Session) WriteDMAExt(lba uint32, buf []byte) error {
	err := s.pt.Execute(ata.WriteDMAExtCDB(lba), s.h.Fd(), buf, ata.ToDevice)
	runtime.KeepAlive(s.h)
	return err
}

// romBlockCount is the number of ata.RomBlockSize transport blocks that
// make up one full ROM image.
const romBlockCount = 4

// Dump executes the full dump protocol: identify -> enable_vsc ->
// acquire_rom_key(read) -> read_rom_block x4 -> disable_vsc. disable_vsc
// is attempted even if an earlier step fails (best-effort cleanup); the
// first error encountered is the one returned, with any disable_vsc
// failure during cleanup silently suppressed in favor of it.
func (s *Session) Dump() ([]byte, error) {
	if _, err := s.Identify(); err != nil {
		return nil, err
	}

	if err := s.EnableVSC(); err != nil {
		return nil, err
	}
	defer s.DisableVSC()

	if err := s.AcquireRomKey(ata.RomKeyRead); err != nil {
		return nil, err
	}

	image := make([]byte, romBlockCount*ata.RomBlockSize)
	for i := 0; i < romBlockCount; i++ {
		block := image[i*ata.RomBlockSize : (i+1)*ata.RomBlockSize]
		if err := s.ReadRomBlock(block); err != nil {
			return nil, err
		}
	}
	return image, nil
}

// Upload executes the full upload protocol: identify -> enable_vsc ->
// acquire_rom_key(erase) -> acquire_rom_key(write) -> write_rom_block x4
// -> disable_vsc, with the same best-effort disable_vsc cleanup as Dump.
func (s *Session) Upload(image []byte) error {
	if len(image) != romBlockCount*ata.RomBlockSize {
		return &ata.Error{Kind: ata.KindIoError, Op: "drive.Upload"}
	}

	if _, err := s.Identify(); err != nil {
		return err
	}

	if err := s.EnableVSC(); err != nil {
		return err
	}
	defer s.DisableVSC()

	if err := s.AcquireRomKey(ata.RomKeyErase); err != nil {
		return err
	}
	if err := s.AcquireRomKey(ata.RomKeyWrite); err != nil {
		return err
	}

	for i := 0; i < romBlockCount; i++ {
		block := image[i*ata.RomBlockSize : (i+1)*ata.RomBlockSize]
		if err := s.WriteRomBlock(block); err != nil {
			return err
		}
	}
	return nil
}
