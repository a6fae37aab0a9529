// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Copyright 2021 Christian Svensson. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sgio wraps the Linux SCSI generic (sg) ioctl interface used to
// carry ATA PASS-THROUGH 16 command descriptor blocks to a block device.
// It performs no interpretation of the result; that is the job of pkg/ata.
package sgio

import (
	"unsafe"

	"github.com/dswarbrick/smart/ioctl"
)

type CDBDirection int32

const (
	CDBToDevice   CDBDirection = -2
	CDBFromDevice CDBDirection = -3
	CDBNone       CDBDirection = -1

	SG_INFO_OK_MASK = 0x1
	SG_INFO_OK      = 0x0

	SG_IO = 0x2285

	SenseBufLen = 32
)

// Result carries every field of the kernel's sg_io_hdr_t that pkg/ata needs
// to apply the spec's validation order. It is populated even when Exec
// returns a nil error; only a failure to submit the ioctl itself is
// reported as an error.
type Result struct {
	Status       uint8
	HostStatus   uint16
	DriverStatus uint16
	Info         uint32
	Sense        [SenseBufLen]byte
}

// sgIoHdr mirrors sg_io_hdr_t as defined in <scsi/sg.h>.
type sgIoHdr struct {
	interface_id    int32        // 'S' for SCSI generic (required)
	dxfer_direction CDBDirection // data transfer direction
	cmd_len         uint8        // SCSI command length (<= 16 bytes)
	mx_sb_len       uint8        // max length to write to sbp
	iovec_count     uint16       //nolint:structcheck,unused
	dxfer_len       uint32       // byte count of data transfer
	dxferp          uintptr      // points to data transfer memory or scatter gather list
	cmdp            uintptr      // points to command to perform
	sbp             uintptr      // points to sense_buffer memory
	timeout         uint32       // unit: millisec
	flags           uint32       //nolint:structcheck,unused
	pack_id         int32        // caller-supplied correlation id, echoed back unused by kernel
	usr_ptr         uintptr      //nolint:structcheck,unused
	status          uint8        // SCSI status
	masked_status   uint8        //nolint:structcheck,unused
	msg_status      uint8        //nolint:structcheck,unused
	sb_len_wr       uint8        //nolint:structcheck,unused
	host_status     uint16       // errors from host adapter
	driver_status   uint16       // errors from software driver
	resid           int32        //nolint:structcheck,unused
	duration        uint32       //nolint:structcheck,unused
	info            uint32       // auxiliary information
}

// Exec submits one SCSI generic pass-through request and returns the raw
// kernel result. cdb must be exactly 16 bytes (ATA PASS-THROUGH 16). buf may
// be nil when no data transfer is expected (dir should be CDBNone in that
// case). packID is placed in the request's pack_id field for correlation;
// it has no effect on kernel behavior.
func Exec(fd uintptr, cdb []byte, dir CDBDirection, buf []byte, timeoutMs uint32, packID int32) (Result, error) {
	var sense [SenseBufLen]byte

	hdr := sgIoHdr{
		interface_id:    'S',
		dxfer_direction: dir,
		timeout:         timeoutMs,
		cmd_len:         uint8(len(cdb)),
		mx_sb_len:       uint8(len(sense)),
		cmdp:            uintptr(unsafe.Pointer(&cdb[0])),
		sbp:             uintptr(unsafe.Pointer(&sense[0])),
		pack_id:         packID,
	}

	if len(buf) > 0 {
		hdr.dxfer_len = uint32(len(buf))
		hdr.dxferp = uintptr(unsafe.Pointer(&buf[0]))
	}

	if err := ioctl.Ioctl(fd, SG_IO, uintptr(unsafe.Pointer(&hdr))); err != nil {
		return Result{}, err
	}

	return Result{
		Status:       hdr.status,
		HostStatus:   hdr.host_status,
		DriverStatus: hdr.driver_status,
		Info:         hdr.info,
		Sense:        sense,
	}, nil
}
