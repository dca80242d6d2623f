package fatfs

import (
	"log/slog"
	"strings"
)

// Core is the top-level façade binding the Image, Block, Address and
// Entry/Object layers into one external operation surface. It holds no
// state of its own beyond the opened Image: every Core method
// re-resolves its path arguments fresh rather than caching a handle.
type Core struct {
	img *Image
	log *slog.Logger
}

// NewCore wraps an already-formatted Image as a Core.
func NewCore(img *Image) *Core {
	log := img.log
	if log == nil {
		log = slog.Default()
	}
	return &Core{img: img, log: log}
}

// Stat is the attribute view returned by GetAttr, the Go analogue of
// populating a struct stat.
type Stat struct {
	Name       string
	IsDir      bool
	Size       uint32
	ModeFlags  uint32
	CreateTime uint64
	ModifyTime uint64
	AccessTime uint64
}

func statFromEntry(e Entry) Stat {
	return Stat{
		Name:       e.Name,
		IsDir:      e.IsDir(),
		Size:       e.Size,
		ModeFlags:  e.ModeFlags,
		CreateTime: e.CreateTime,
		ModifyTime: e.ModifyTime,
		AccessTime: e.AccessTime,
	}
}

// GetAttr returns the attributes of the object at path.
func (c *Core) GetAttr(path string) (Stat, Result) {
	_, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return Stat{}, r
	}
	return statFromEntry(ent), ResultOK
}

// Mkdir creates a new, empty directory at path.
func (c *Core) Mkdir(path string) Result {
	parent, name := splitParent(path)
	if name == "" {
		return ResultExists
	}
	c.log.Debug("mkdir", "path", path)
	_, r := makeObject(c.img, parent, name, ModeDir)
	if r != ResultOK {
		c.log.Error("mkdir failed", "path", path, "result", r)
		return r
	}
	c.log.Info("created directory", "path", path)
	return ResultOK
}

// Create creates a new, empty regular file at path. There is no
// device-node case: this core only models plain files and directories.
func (c *Core) Create(path string) Result {
	parent, name := splitParent(path)
	if name == "" {
		return ResultExists
	}
	c.log.Debug("create", "path", path)
	_, r := makeObject(c.img, parent, name, ModeFile)
	if r != ResultOK {
		c.log.Error("create failed", "path", path, "result", r)
		return r
	}
	c.log.Info("created file", "path", path)
	return ResultOK
}

// Open validates that path names a regular file that may be read or
// written. The Core is otherwise handle-less: every Read/Write call
// re-resolves path, so Open exists only to surface ENOTDIR-style
// failures at the point a caller would expect them.
func (c *Core) Open(path string) Result {
	_, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return r
	}
	if !ent.IsFile() {
		return ResultIsDir
	}
	return ResultOK
}

// ReadAt reads up to len(buf) bytes from the file at path starting at
// offset, returning the number of bytes actually read.
func (c *Core) ReadAt(path string, buf []byte, offset uint32) (uint32, Result) {
	addr, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return 0, r
	}
	if !ent.IsFile() {
		return 0, ResultIsDir
	}
	if offset >= ent.Size {
		return 0, ResultOK
	}
	return entryAccess(c.img, addr, offset, buf, nil)
}

// WriteAt writes data to the file at path starting at offset, growing
// the file if the write extends past its current end.
func (c *Core) WriteAt(path string, data []byte, offset uint32) (uint32, Result) {
	addr, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return 0, r
	}
	if !ent.IsFile() {
		return 0, ResultIsDir
	}
	needed := offset + uint32(len(data))
	if needed > ent.Size {
		if _, r := growChain(c.img, addr, needed-ent.Size); r != ResultOK {
			return 0, r
		}
	}
	return entryAccess(c.img, addr, offset, nil, data)
}

// DirEntry is one record yielded by ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
}

// ReadDir lists the immediate children of the directory at path. Order
// follows the directory's FAT-chain storage order, not lexical order.
func (c *Core) ReadDir(path string) ([]DirEntry, Result) {
	_, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return nil, r
	}
	if !ent.IsDir() {
		return nil, ResultNotDir
	}
	var out []DirEntry
	r = forEachEntry(c.img, ent, func(_ Address, child Entry) Result {
		out = append(out, DirEntry{Name: child.Name, IsDir: child.IsDir()})
		return ResultOK
	})
	if r != ResultOK {
		return nil, r
	}
	return out, ResultOK
}

// Remove deletes the file or empty directory at path.
func (c *Core) Remove(path string) Result {
	_, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return r
	}
	if ent.IsDir() && ent.Size > 0 {
		return ResultNotEmpty
	}
	c.log.Debug("remove", "path", path)
	if r := unlinkObject(c.img, path); r != ResultOK {
		c.log.Error("remove failed", "path", path, "result", r)
		return r
	}
	c.log.Info("removed", "path", path)
	return ResultOK
}

// Truncate grows or shrinks the file at path to exactly size bytes.
func (c *Core) Truncate(path string, size uint32) Result {
	addr, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return r
	}
	if !ent.IsFile() {
		return ResultIsDir
	}
	switch {
	case size > ent.Size:
		_, r := growChain(c.img, addr, size-ent.Size)
		return r
	case size < ent.Size:
		_, r := shrinkChain(c.img, addr, ent.Size-size)
		return r
	default:
		return ResultOK
	}
}

// Chmod updates an object's mode/permission bits, preserving its
// file/directory kind bits.
func (c *Core) Chmod(path string, modeFlags uint32) Result {
	addr, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return r
	}
	kind := ent.ModeFlags & modeTypeMask
	ent.ModeFlags = kind | (modeFlags &^ modeTypeMask)
	ent.ModifyTime = nowUnix()
	return writeEntryAt(c.img, addr, &ent)
}

// SetTimes updates an object's access and modify times.
func (c *Core) SetTimes(path string, accessTime, modifyTime uint64) Result {
	addr, ent, r := resolve(c.img, path)
	if r != ResultOK {
		return r
	}
	ent.AccessTime = accessTime
	ent.ModifyTime = modifyTime
	return writeEntryAt(c.img, addr, &ent)
}

// Rename moves the object at oldPath to newPath. Cross-directory moves
// are permitted; moving a directory into its own subtree is not.
func (c *Core) Rename(oldPath, newPath string) Result {
	if oldPath == newPath {
		return ResultOK
	}
	if strings.HasPrefix(newPath, strings.TrimSuffix(oldPath, "/")+"/") {
		// Cannot move a directory into its own subtree.
		return ResultInvalidArg
	}

	oldParentPath, oldName := splitParent(oldPath)
	if oldName == "" {
		return ResultInvalidArg
	}
	oldParentAddr, oldParentEnt, r := resolve(c.img, oldParentPath)
	if r != ResultOK {
		return r
	}
	oldAddr, oldEnt, r := findChild(c.img, oldParentAddr, oldParentEnt, oldName)
	if r != ResultOK {
		return r
	}

	newParentPath, newName := splitParent(newPath)
	if newName == "" {
		return ResultInvalidArg
	}
	if r := ValidateName(newName); r != ResultOK {
		return r
	}
	newParentAddr, newParentEnt, r := resolve(c.img, newParentPath)
	if r != ResultOK {
		return r
	}
	if !newParentEnt.IsDir() {
		return ResultNotDir
	}

	existingAddr, existingEnt, r := findChild(c.img, newParentAddr, newParentEnt, newName)
	if r == ResultOK {
		// newPath already exists: replace it, subject to the same rules
		// as a direct Remove.
		if existingEnt.IsDir() != oldEnt.IsDir() {
			if existingEnt.IsDir() {
				return ResultIsDir
			}
			return ResultNotDir
		}
		if existingEnt.IsDir() && existingEnt.Size > 0 {
			return ResultNotEmpty
		}
		if existingEnt.IsFile() && existingEnt.Size > 0 {
			if _, r := shrinkChain(c.img, existingAddr, existingEnt.Size); r != ResultOK {
				return r
			}
		}
		moved := oldEnt
		moved.Name = newName
		if r := writeEntryAt(c.img, existingAddr, &moved); r != ResultOK {
			return r
		}
		return removeEntryRecord(c.img, oldParentAddr, oldParentEnt, oldAddr)
	}
	if r != ResultNotFound {
		return r
	}

	oldSize := newParentEnt.Size
	if _, r := growChain(c.img, newParentAddr, EntrySize); r != ResultOK {
		return r
	}
	newParentEnt, r = readEntryAt(c.img, newParentAddr)
	if r != ResultOK {
		return r
	}
	destAddr, r := seek(c.img, newParentEnt.StartBlock, oldSize)
	if r != ResultOK {
		return r
	}
	moved := oldEnt
	moved.Name = newName
	if r := writeEntryAt(c.img, destAddr, &moved); r != ResultOK {
		return r
	}

	oldParentAddr2, oldParentEnt2, r := resolve(c.img, oldParentPath)
	if r != ResultOK {
		return r
	}
	oldAddr2, _, r := findChild(c.img, oldParentAddr2, oldParentEnt2, oldName)
	if r != ResultOK {
		return r
	}
	return removeEntryRecord(c.img, oldParentAddr2, oldParentEnt2, oldAddr2)
}
