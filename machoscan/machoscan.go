// Package machoscan extracts the dynamic-linking surface of Mach-O
// binaries: which dylibs they load, which rpaths they search, and what
// they re-export. That surface is the input to dylib hijack detection.
package machoscan

import (
	"bytes"
	"debug/macho"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// ErrNotMachO marks input that is not a parseable Mach-O image.
var ErrNotMachO = errors.New("machoscan: not a mach-o binary")

// Load command identifiers from mach-o/loader.h. The high bit is
// LC_REQ_DYLD: the loader must understand the command or refuse the
// binary.
const (
	lcReqDyld = 0x80000000

	lcLoadDylib       = 0xc
	lcLoadWeakDylib   = 0x18 | lcReqDyld
	lcRpath           = 0x1c | lcReqDyld
	lcReexportDylib   = 0x1f | lcReqDyld
	lcLazyLoadDylib   = 0x20
	lcLoadUpwardDylib = 0x23 | lcReqDyld
)

// Fat (universal) binary magics, big-endian and byte-swapped.
const (
	fatMagic        = 0xcafebabe
	fatMagicSwapped = 0xbebafeca
)

// Info is the extracted linking surface of one architecture slice.
type Info struct {
	// LoadDylibs collects ordinary, lazy, and upward dylib loads. They
	// all resolve through the same search path and hijack identically.
	LoadDylibs []string

	// WeakDylibs are loads the binary tolerates missing, which makes
	// them the cheapest hijack targets.
	WeakDylibs []string

	// Rpaths are the @rpath search entries, in command order.
	Rpaths []string

	ReexportDylibs []string

	// FileType is the raw Mach-O filetype field (MH_EXECUTE, MH_DYLIB...).
	FileType uint32
}

// Scan parses a Mach-O image from memory. For a fat binary the first
// architecture slice is scanned.
func Scan(data []byte) (*Info, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotMachO, len(data))
	}
	magic := binary.BigEndian.Uint32(data[:4])
	if magic == fatMagic || magic == fatMagicSwapped {
		ff, err := macho.NewFatFile(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotMachO, err)
		}
		defer ff.Close()
		if len(ff.Arches) == 0 {
			return nil, fmt.Errorf("%w: fat binary with no architectures", ErrNotMachO)
		}
		return extract(ff.Arches[0].File), nil
	}

	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotMachO, err)
	}
	defer f.Close()
	return extract(f), nil
}

// ScanFile reads and scans the binary at path.
func ScanFile(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("machoscan: %w", err)
	}
	return Scan(data)
}

func extract(f *macho.File) *Info {
	info := &Info{FileType: uint32(f.Type)}
	for _, load := range f.Loads {
		raw := load.Raw()
		if len(raw) < 12 {
			continue
		}
		cmd := f.ByteOrder.Uint32(raw[0:4])
		// dylib_command and rpath_command both keep their string offset,
		// relative to the command start, at byte 8.
		nameOff := f.ByteOrder.Uint32(raw[8:12])
		name, ok := cstringAt(raw, nameOff)
		if !ok {
			continue
		}
		switch cmd {
		case lcLoadDylib, lcLazyLoadDylib, lcLoadUpwardDylib:
			info.LoadDylibs = append(info.LoadDylibs, name)
		case lcLoadWeakDylib:
			info.WeakDylibs = append(info.WeakDylibs, name)
		case lcReexportDylib:
			info.ReexportDylibs = append(info.ReexportDylibs, name)
		case lcRpath:
			info.Rpaths = append(info.Rpaths, name)
		}
	}
	return info
}

// cstringAt reads a NUL-terminated UTF-8 string at off. A missing
// terminator or invalid UTF-8 rejects the string rather than truncating
// it.
func cstringAt(b []byte, off uint32) (string, bool) {
	if uint64(off) >= uint64(len(b)) {
		return "", false
	}
	rest := b[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", false
	}
	if !utf8.Valid(rest[:end]) {
		return "", false
	}
	return string(rest[:end]), true
}
