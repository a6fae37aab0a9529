// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ata builds and executes ATA PASS-THROUGH 16 command descriptor
// blocks over the host's SCSI generic pass-through channel, and decodes
// the resulting sense response into the error taxonomy of spec.md §7.
package ata

import "github.com/wdromtool/romtool/pkg/ata/sgio"

// Direction mirrors sgio.CDBDirection so callers of this package never
// need to import pkg/ata/sgio directly.
type Direction = sgio.CDBDirection

const (
	ToDevice    = sgio.CDBToDevice
	FromDevice  = sgio.CDBFromDevice
	NoDirection = sgio.CDBNone

	// DefaultTimeoutMs is the fixed 20-second per-command timeout every
	// pass-through call uses. There is no retry: a timeout becomes a
	// TransportError.
	DefaultTimeoutMs = 20000

	scsiCheckCondition = 0x02
	driverStatusSense  = 0x08
)

// PassThrough is a stateless builder/executor for one ATA-in-SCSI command
// at a time. It owns the sense-response validation rules; it holds no
// state of its own and is safe for concurrent use (though nothing in this
// tool ever calls it concurrently — see spec.md §5).
type PassThrough struct{}

// Execute submits cdb against fd, transferring buf in the given direction,
// and validates the result in the exact order spec.md §4.1 requires:
//
//  1. ioctl submission failure            -> IoError
//  2. host/driver/SCSI status mismatch    -> TransportError
//  3. sense buffer shape mismatch         -> MalformedSense
//  4. ATA status ERR or DRQ set           -> AtaError
//  5. otherwise, success
//
// Step 3 is checked before step 4 deliberately: if the sense buffer isn't
// the expected descriptor-format ATA-return shape, the ATA status byte it
// would report cannot be trusted.
func (PassThrough) Execute(cdb CDB, fd uintptr, buf []byte, dir Direction) error {
	res, err := sgio.Exec(fd, cdb[:], dir, buf, DefaultTimeoutMs, cdb.PackID())
	if err != nil {
		return newError("ata.Execute", KindIoError, err)
	}

	if res.HostStatus != 0 ||
		res.DriverStatus&driverStatusSense == 0 ||
		(res.Status != 0 && res.Status != scsiCheckCondition) {
		return newError("ata.Execute", KindTransportError, nil)
	}

	sense := SenseBuffer(res.Sense)
	if !sense.WellFormed() {
		e := newError("ata.Execute", KindMalformedSense, nil)
		e.Sense = sense
		return e
	}

	if sense.HasATAError() {
		e := newError("ata.Execute", KindAtaError, nil)
		e.Command = cdb[14]
		e.Status = sense.ATAStatus()
		e.ATAErr = sense.ATAError()
		return e
	}

	return nil
}
