package fatfs

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"
)

// EntryNameLen is the maximum printable length of an entry name,
// excluding the trailing NUL.
const EntryNameLen = 23

// EntrySize is the fixed, packed size of one directory entry record:
// 24 (name) + 8*3 (times) + 4 (size) + 4 (start_block) + 4 (mode/flags)
// + 4 (unused) = 64 bytes.
const EntrySize = 24 + 8*3 + 4 + 4 + 4 + 4

// Object kind bits held in bits 12-15 (mask 0xF000) of Entry.ModeFlags, POSIX
// S_IFDIR/S_IFREG-style. The core reads only the kind; the remaining
// permission bits are stored and returned verbatim.
const (
	modeTypeMask uint32 = 0xF000
	ModeFile     uint32 = 0x8000
	ModeDir      uint32 = 0x4000
)

// Entry is the fixed 64-byte directory record.
type Entry struct {
	Name       string
	CreateTime uint64
	ModifyTime uint64
	AccessTime uint64
	Size       uint32
	StartBlock Block
	ModeFlags  uint32
}

// IsDir reports whether the entry names a directory.
func (e *Entry) IsDir() bool {
	return e.ModeFlags&modeTypeMask == ModeDir
}

// IsFile reports whether the entry names a regular file.
func (e *Entry) IsFile() bool {
	return e.ModeFlags&modeTypeMask == ModeFile
}

// nowUnix returns the current time in seconds since epoch, the unit
// used for entry timestamps.
func nowUnix() uint64 {
	return uint64(time.Now().Unix())
}

// ValidateName checks a candidate object name: non-empty, at most
// EntryNameLen bytes, and containing no '/'.
func ValidateName(name string) Result {
	if name == "" {
		return ResultInvalidName
	}
	if len(name) > EntryNameLen {
		return ResultNameTooLong
	}
	if strings.ContainsRune(name, '/') {
		return ResultInvalidName
	}
	return ResultOK
}

// Marshal packs e into buf, which must be at least EntrySize bytes.
func (e *Entry) Marshal(buf []byte) {
	for i := range buf[:EntrySize] {
		buf[i] = 0
	}
	n := copy(buf[0:24], e.Name)
	_ = n // remaining bytes already zeroed (NUL-padded)
	binary.LittleEndian.PutUint64(buf[24:32], e.CreateTime)
	binary.LittleEndian.PutUint64(buf[32:40], e.ModifyTime)
	binary.LittleEndian.PutUint64(buf[40:48], e.AccessTime)
	binary.LittleEndian.PutUint32(buf[48:52], e.Size)
	binary.LittleEndian.PutUint32(buf[52:56], e.StartBlock)
	binary.LittleEndian.PutUint32(buf[56:60], e.ModeFlags)
	binary.LittleEndian.PutUint32(buf[60:64], 0) // unused, reserved
}

// Unmarshal unpacks e from buf, which must be at least EntrySize bytes.
func (e *Entry) Unmarshal(buf []byte) {
	name := buf[0:24]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	e.Name = string(name)
	e.CreateTime = binary.LittleEndian.Uint64(buf[24:32])
	e.ModifyTime = binary.LittleEndian.Uint64(buf[32:40])
	e.AccessTime = binary.LittleEndian.Uint64(buf[40:48])
	e.Size = binary.LittleEndian.Uint32(buf[48:52])
	e.StartBlock = binary.LittleEndian.Uint32(buf[52:56])
	e.ModeFlags = binary.LittleEndian.Uint32(buf[56:60])
}
