// Copyright 2026 The Keylayer Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build linux

package keylayer

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// The ioctl request-code layout below (direction/size/type/nr packed into
// one uint per asm-generic/ioctl.h) is grounded on andrieee44-mylib's
// linux/ioctl package, adapted here to just the handful of evdev/uinput
// codes this adapter and sink actually issue, rather than pulled in as a
// general-purpose dependency.
const (
	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

func iocEncode(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

func iocW(typ, nr byte, size uintptr) uintptr {
	return iocEncode(iocWrite, uintptr(typ), uintptr(nr), size)
}

func iocWInt(typ, nr byte) uintptr {
	return iocW(typ, nr, unsafe.Sizeof(int32(0)))
}

// evIocGrab (EVIOCGRAB) takes exclusive access to an evdev node so key
// events stop reaching the console/desktop session underneath the adapter.
var evIocGrab = iocWInt('E', 0x90)

// uinput request codes this sink issues to assemble a virtual device.
var (
	uiSetEvBit  = iocWInt('U', 100)
	uiSetKeyBit = iocWInt('U', 101)
	uiSetRelBit = iocWInt('U', 102)
	uiDevCreate = iocEncode(iocNone, 'U', 1, 0)
	uiDevDestroy = iocEncode(iocNone, 'U', 2, 0)
)

func ioctlSetInt(fd int, req uintptr, val int) error {
	return unix.IoctlSetInt(fd, uint(req), val)
}
