// Package bridge adapts a fatfs Core to the call shape a host filesystem
// adapter (e.g. a FUSE driver) would invoke, without performing an
// actual kernel mount. cmd/fatfs's mount subcommand drives a Bridge
// through a line-oriented shell instead, which is enough to exercise
// every operation end to end.
package bridge

import (
	"fmt"
	"log/slog"

	"github.com/nicoaw/fatfs"
)

// Bridge adapts fatfs.Core's path-based operations to the request/reply
// shape of a host-filesystem adapter, keeping core filesystem logic
// separate from the callback glue a real adapter would add.
type Bridge struct {
	core *fatfs.Core
	log  *slog.Logger
}

// New wraps core as a Bridge.
func New(core *fatfs.Core, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{core: core, log: log}
}

// Attr is the attribute view a host adapter's getattr callback would
// populate into its native stat structure.
type Attr struct {
	Name    string
	IsDir   bool
	Size    uint32
	Mode    uint32
	ATime   uint64
	MTime   uint64
	CTime   uint64
}

// GetAttr implements the getattr callback.
func (b *Bridge) GetAttr(path string) (Attr, error) {
	st, r := b.core.GetAttr(path)
	if r != fatfs.ResultOK {
		return Attr{}, r.Errno()
	}
	return Attr{
		Name:  st.Name,
		IsDir: st.IsDir,
		Size:  st.Size,
		Mode:  st.ModeFlags,
		ATime: st.AccessTime,
		MTime: st.ModifyTime,
		CTime: st.ModifyTime,
	}, nil
}

// Mkdir implements the mkdir callback.
func (b *Bridge) Mkdir(path string) error {
	if r := b.core.Mkdir(path); r != fatfs.ResultOK {
		return r.Errno()
	}
	return nil
}

// Mknod implements the mknod/create callback for plain files.
func (b *Bridge) Mknod(path string) error {
	if r := b.core.Create(path); r != fatfs.ResultOK {
		return r.Errno()
	}
	return nil
}

// Open implements the open callback.
func (b *Bridge) Open(path string) error {
	if r := b.core.Open(path); r != fatfs.ResultOK {
		return r.Errno()
	}
	return nil
}

// Read implements the read callback.
func (b *Bridge) Read(path string, buf []byte, offset uint32) (int, error) {
	n, r := b.core.ReadAt(path, buf, offset)
	if r != fatfs.ResultOK {
		return int(n), r.Errno()
	}
	return int(n), nil
}

// Write implements the write callback.
func (b *Bridge) Write(path string, data []byte, offset uint32) (int, error) {
	n, r := b.core.WriteAt(path, data, offset)
	if r != fatfs.ResultOK {
		return int(n), r.Errno()
	}
	return int(n), nil
}

// DirEntry mirrors fatfs.DirEntry for the bridge's readdir callback.
type DirEntry = fatfs.DirEntry

// ReadDir implements the readdir callback.
func (b *Bridge) ReadDir(path string) ([]DirEntry, error) {
	entries, r := b.core.ReadDir(path)
	if r != fatfs.ResultOK {
		return nil, r.Errno()
	}
	return entries, nil
}

// Unlink implements the unlink/rmdir callback.
func (b *Bridge) Unlink(path string) error {
	if r := b.core.Remove(path); r != fatfs.ResultOK {
		return r.Errno()
	}
	return nil
}

// Rename implements the rename callback.
func (b *Bridge) Rename(oldPath, newPath string) error {
	if r := b.core.Rename(oldPath, newPath); r != fatfs.ResultOK {
		return r.Errno()
	}
	return nil
}

// Truncate implements the truncate callback.
func (b *Bridge) Truncate(path string, size uint32) error {
	if r := b.core.Truncate(path, size); r != fatfs.ResultOK {
		return r.Errno()
	}
	return nil
}

// Chmod implements the chmod callback.
func (b *Bridge) Chmod(path string, mode uint32) error {
	if r := b.core.Chmod(path, mode); r != fatfs.ResultOK {
		return r.Errno()
	}
	return nil
}

// FormatAttr renders an Attr the way the mount shell prints a stat result.
func FormatAttr(path string, a Attr) string {
	kind := "file"
	if a.IsDir {
		kind = "dir"
	}
	return fmt.Sprintf("%s\t%s\tsize=%d\tmode=%#o", path, kind, a.Size, a.Mode)
}
