package fatfs

import (
	"io"
	"log/slog"
	"os"
)

// Image opens, creates, formats and closes the backing file, holds the
// cached superblock, and offers raw block-indexed read/write. It is the
// single layer that performs I/O system calls; every layer above it
// depends only on ReadBlock, WriteBlock and Superblock.
type Image struct {
	dev       BlockDevice
	file      *os.File // non-nil only for on-disk images; used for flock
	sb        Superblock
	formatted bool
	log       *slog.Logger
}

// OpenImage opens path as a fatfs backing file. If the file exists and
// carries a valid superblock, it is loaded and cached. If the file does
// not exist, it is created and left unformatted until Format is called.
func OpenImage(path string, log *slog.Logger) (*Image, error) {
	if log == nil {
		log = slog.Default()
	}
	existed := true
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		existed = false
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		log.Error("open image failed", "path", path, "err", err)
		return nil, err
	}
	if err := flockExclusive(f); err != nil {
		f.Close()
		log.Error("lock image failed", "path", path, "err", err)
		return nil, err
	}

	img := &Image{file: f, log: log}
	if existed {
		header := make([]byte, superblockSize)
		if _, err := f.ReadAt(header, 0); err != nil && err != io.EOF {
			funlock(f)
			f.Close()
			return nil, err
		}
		var sb Superblock
		sb.Unmarshal(header)
		if sb.Magic == Magic {
			img.sb = sb
			img.dev = &fileDevice{f: f, blockSize: int(sb.BlockSize)}
			img.formatted = true
		}
	}
	log.Debug("opened image", "path", path, "formatted", img.formatted)
	return img, nil
}

// NewImage wraps an already-open BlockDevice as an Image, bypassing the
// host-file-specific Open/flock machinery. Tests use it to substitute an
// in-memory BlockDevice, and cmd/fatfs uses it to format a volume through
// an OffsetDevice.
func NewImage(dev BlockDevice, log *slog.Logger) *Image {
	if log == nil {
		log = slog.Default()
	}
	return &Image{dev: dev, log: log}
}

// OpenImageWithDevice loads an already-formatted volume from dev, e.g. an
// OffsetDevice wrapping a partitioned host file. Unlike OpenImage it
// never creates or flocks a host file; callers that need those
// semantics should use OpenImage directly. Block 0's superblock record
// is addressed at byte 0 of the device regardless of block_size, since
// every BlockDevice implementation here computes a block-0 access as
// offset 0 (or, for OffsetDevice, its fixed byte offset) irrespective of
// the buffer length used.
func OpenImageWithDevice(dev BlockDevice, log *slog.Logger) (*Image, error) {
	if log == nil {
		log = slog.Default()
	}
	probe := make([]byte, superblockSize)
	if err := dev.ReadBlock(0, probe); err != nil {
		return nil, err
	}
	var sb Superblock
	sb.Unmarshal(probe)
	img := &Image{dev: dev, log: log}
	if sb.Magic == Magic {
		img.sb = sb
		img.formatted = true
		if od, ok := dev.(*OffsetDevice); ok {
			od.SetBlockSize(int(sb.BlockSize))
		}
	}
	return img, nil
}

// Format writes sb at block 0, zero-fills the image, initialises the FAT,
// and writes the root directory's entry record.
func (img *Image) Format(sb Superblock) Result {
	img.log.Debug("formatting image", "block_count", sb.BlockCount, "block_size", sb.BlockSize)
	if sb.Magic == 0 {
		sb.Magic = Magic
	}
	if r := sb.Validate(); r != ResultOK {
		img.log.Error("format: invalid superblock", "result", r)
		return r
	}
	dev := img.dev
	if img.file != nil {
		dev = &fileDevice{f: img.file, blockSize: int(sb.BlockSize)}
	}
	if err := dev.Truncate(int64(sb.BlockCount) * int64(sb.BlockSize)); err != nil {
		img.log.Error("format: truncate failed", "err", err)
		return ResultIO
	}

	zero := make([]byte, sb.BlockSize)
	for b := uint32(0); b < sb.BlockCount; b++ {
		if err := dev.WriteBlock(b, zero); err != nil {
			img.log.Error("format: zero-fill failed", "block", b, "err", err)
			return ResultIO
		}
	}

	header := make([]byte, sb.BlockSize)
	sb.Marshal(header)
	if err := dev.WriteBlock(0, header); err != nil {
		img.log.Error("format: write superblock failed", "err", err)
		return ResultIO
	}

	if r := formatFAT(dev, &sb); r != ResultOK {
		return r
	}

	img.dev = dev
	img.sb = sb
	img.formatted = true

	root := Entry{
		Name:       "/",
		CreateTime: nowUnix(),
		ModifyTime: nowUnix(),
		AccessTime: nowUnix(),
		Size:       0,
		StartBlock: BlockLast,
		ModeFlags:  ModeDir,
	}
	addr := Address{Block: sb.RootBlock, Offset: 0}
	buf := make([]byte, EntrySize)
	root.Marshal(buf)
	if _, r := chainWrite(img, addr, buf); r != ResultOK {
		img.log.Error("format: write root entry failed", "result", r)
		return r
	}

	img.log.Info("formatted image", "magic", sb.Magic, "block_count", sb.BlockCount,
		"fat_block_count", sb.FATBlockCount, "block_size", sb.BlockSize, "root_block", sb.RootBlock)
	return ResultOK
}

// formatFAT initialises every FAT entry: FREE by default, INVALID for the
// superblock slot and every FAT block's own slot, LAST for root_block.
func formatFAT(dev BlockDevice, sb *Superblock) Result {
	entries := sb.FATEntryCount()
	fat := make([]uint32, sb.FATBlockCount*entries)
	for i := range fat {
		fat[i] = BlockFree
	}
	fat[0] = BlockInvalid
	for i := uint32(0); i < sb.FATBlockCount; i++ {
		fat[1+i] = BlockInvalid
	}
	if sb.RootBlock < uint32(len(fat)) {
		fat[sb.RootBlock] = BlockLast
	}

	buf := make([]byte, sb.BlockSize)
	for i := uint32(0); i < sb.FATBlockCount; i++ {
		encodeFATBlock(buf, fat, i, entries)
		if err := dev.WriteBlock(1+i, buf); err != nil {
			return ResultIO
		}
	}
	return ResultOK
}

// Close flushes and releases the backing file.
func (img *Image) Close() error {
	img.log.Debug("closing image")
	if img.file != nil {
		funlock(img.file)
	}
	if img.dev != nil {
		return img.dev.Close()
	}
	if img.file != nil {
		return img.file.Close()
	}
	return nil
}

// Superblock returns a read-only copy of the cached superblock.
func (img *Image) Superblock() Superblock {
	return img.sb
}

// ReadBlock reads exactly one block's worth of bytes from the image.
func (img *Image) ReadBlock(block uint32, buf []byte) Result {
	if !BlockValid(block) || (img.formatted && block >= img.sb.BlockCount) {
		return ResultInvalidArg
	}
	if err := img.dev.ReadBlock(block, buf); err != nil {
		img.log.Error("block read failed", "block", block, "err", err)
		return ResultIO
	}
	return ResultOK
}

// WriteBlock writes exactly one block's worth of bytes to the image.
func (img *Image) WriteBlock(block uint32, buf []byte) Result {
	if !BlockValid(block) || (img.formatted && block >= img.sb.BlockCount) {
		return ResultInvalidArg
	}
	if err := img.dev.WriteBlock(block, buf); err != nil {
		img.log.Error("block write failed", "block", block, "err", err)
		return ResultIO
	}
	return ResultOK
}
