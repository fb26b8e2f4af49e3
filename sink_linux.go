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
	"encoding/binary"
	"fmt"
	"os"

	"github.com/gdamore/encoding"
	"golang.org/x/sys/unix"
)

const (
	relX     uint16 = 0x00
	relY     uint16 = 0x01
	relWheel uint16 = 0x08
)

// uinputSetupName is the device name reported to userspace tools like
// `libinput list-devices`; kept short and literal rather than configurable,
// since nothing downstream of the kernel distinguishes instances by name.
const uinputSetupName = "keylayer virtual input"

// uinputUserDevHeader mirrors the head of the legacy struct uinput_user_dev
// from linux/uinput.h: name, then a struct input_id (4 x uint16), then a
// uint32 ff_effects_max, then four absmax/absmin/absfuzz/absflat arrays
// sized ABS_CNT (64) as int32; ff_effects_max and the arrays are written as
// zeros, unused
// here since this sink never emits absolute-axis events.
type uinputUserDevHeader struct {
	Name [80]byte
	Bus  uint16
	Vendor uint16
	Product uint16
	Version uint16
}

// LinuxSink writes synthetic key and mouse events to a /dev/uinput virtual
// device (spec.md §4.7). Grounded on the evdev/uinput ioctl sequence used
// throughout andrieee44-mylib's linux/input package, adapted from its
// read-a-real-device shape to create-and-drive-a-virtual-one.
type LinuxSink struct {
	f *os.File
}

// NewLinuxSink opens /dev/uinput, declares every key this process might
// emit plus relative-motion and scroll-wheel capability, and creates the
// device. keys should be the full Defsrc ∪ every Action's target OsCode set
// the loaded Keymap can produce; the kernel rejects an event for a code the
// device never declared.
func NewLinuxSink(keys []OsCode) (*LinuxSink, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|os.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("keylayer: open /dev/uinput: %w", err)
	}

	if err := ioctlSetInt(int(f.Fd()), uiSetEvBit, int(evKey)); err != nil {
		f.Close()
		return nil, err
	}
	if err := ioctlSetInt(int(f.Fd()), uiSetEvBit, 0x02 /* EV_REL */); err != nil {
		f.Close()
		return nil, err
	}
	for _, code := range keys {
		if code >= 900 {
			continue // virtual mouse/unicode sentinels, not evdev keybits
		}
		if err := ioctlSetInt(int(f.Fd()), uiSetKeyBit, int(code)); err != nil {
			f.Close()
			return nil, err
		}
	}
	for _, rel := range []uint16{relX, relY, relWheel} {
		if err := ioctlSetInt(int(f.Fd()), uiSetRelBit, int(rel)); err != nil {
			f.Close()
			return nil, err
		}
	}

	var hdr uinputUserDevHeader
	copy(hdr.Name[:], uinputSetupName)
	hdr.Bus = 0x03 // BUS_USB
	hdr.Vendor = 0x1
	hdr.Product = 0x1
	hdr.Version = 0x1
	buf := make([]byte, 0, 80+8+4+64*4*4)
	buf = append(buf, hdr.Name[:]...)
	busField := make([]byte, 8)
	binary.LittleEndian.PutUint16(busField[0:2], hdr.Bus)
	binary.LittleEndian.PutUint16(busField[2:4], hdr.Vendor)
	binary.LittleEndian.PutUint16(busField[4:6], hdr.Product)
	binary.LittleEndian.PutUint16(busField[6:8], hdr.Version)
	buf = append(buf, busField...)
	buf = append(buf, make([]byte, 4)...)      // ff_effects_max
	buf = append(buf, make([]byte, 64*4*4)...) // absmax/absmin/absfuzz/absflat, unused
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("keylayer: write uinput_user_dev: %w", err)
	}

	if err := unix.IoctlSetInt(int(f.Fd()), uint(uiDevCreate), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("keylayer: UI_DEV_CREATE: %w", err)
	}

	return &LinuxSink{f: f}, nil
}

func (s *LinuxSink) writeRaw(typ, code uint16, value int32) error {
	buf := make([]byte, rawInputEventSize)
	binary.LittleEndian.PutUint16(buf[16:18], typ)
	binary.LittleEndian.PutUint16(buf[18:20], code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(value))
	_, err := s.f.Write(buf)
	return err
}

func (s *LinuxSink) syn() error {
	return s.writeRaw(evSyn, 0, 0)
}

// cp437Fallback transliterates r through the CP437 code page and looks up
// the resulting byte in ttyByteCode (the same small byte->OsCode table
// adapter_tty.go uses), giving a best-effort single key tap for a rune this
// sink has no direct way to emit.
func (s *LinuxSink) cp437Fallback(r rune) (OsCode, bool) {
	enc := encoding.CP437.NewEncoder()
	dst := make([]byte, 4)
	nout, _, err := enc.Transform(dst, []byte(string(r)), true)
	if err != nil || nout == 0 {
		return 0, false
	}
	code, ok := ttyByteCode[dst[0]]
	return code, ok
}

func mouseButtonCode(b MouseButton) uint16 {
	switch b {
	case MouseButtonLeft:
		return 0x110 // BTN_LEFT
	case MouseButtonRight:
		return 0x111 // BTN_RIGHT
	case MouseButtonMiddle:
		return 0x112 // BTN_MIDDLE
	case MouseButton4:
		return 0x113 // BTN_SIDE
	default:
		return 0x114 // BTN_EXTRA
	}
}

func (s *LinuxSink) Write(ev OutputEvent) error {
	switch ev.Kind {
	case OutKey:
		val := int32(0)
		if ev.Dir == Press {
			val = 1
		}
		if err := s.writeRaw(evKey, uint16(ev.Code), val); err != nil {
			return err
		}
		return s.syn()
	case OutMouseButton:
		val := int32(0)
		if ev.Dir == Press {
			val = 1
		}
		if err := s.writeRaw(evKey, mouseButtonCode(ev.Btn), val); err != nil {
			return err
		}
		return s.syn()
	case OutMouseMove:
		if ev.DX != 0 {
			if err := s.writeRaw(0x02 /* EV_REL */, relX, ev.DX); err != nil {
				return err
			}
		}
		if ev.DY != 0 {
			if err := s.writeRaw(0x02, relY, ev.DY); err != nil {
				return err
			}
		}
		return s.syn()
	case OutMouseScroll:
		ticks := ev.Ticks
		if ev.Axis == ScrollHorizontal {
			ticks = -ticks
		}
		if err := s.writeRaw(0x02, relWheel, ticks); err != nil {
			return err
		}
		return s.syn()
	case OutUnicode:
		// uinput has no direct "type this code point" primitive, and most
		// deployments never need one because the loaded layout already maps
		// the rune through a KeyCode/MultiKeyCode binding. For the rest,
		// fall back to CP437 transliteration (the same legacy-charset
		// technique the teacher's gdamore/encoding package exists for) and
		// tap whatever single ASCII byte it reduces to; a rune with no CP437
		// representation has no fallback left and is reported as such.
		code, ok := s.cp437Fallback(ev.Rune)
		if !ok {
			return fmt.Errorf("keylayer: linux sink cannot emit unicode rune %q directly", ev.Rune)
		}
		if err := s.writeRaw(evKey, uint16(code), 1); err != nil {
			return err
		}
		if err := s.syn(); err != nil {
			return err
		}
		if err := s.writeRaw(evKey, uint16(code), 0); err != nil {
			return err
		}
		return s.syn()
	default:
		return fmt.Errorf("keylayer: linux sink: unknown output kind %d", ev.Kind)
	}
}

func (s *LinuxSink) Close() error {
	_ = unix.IoctlSetInt(int(s.f.Fd()), uint(uiDevDestroy), 0)
	return s.f.Close()
}
