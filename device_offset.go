package fatfs

import (
	"io"
	"os"
)

// OffsetDevice is a BlockDevice backed by a regular host file, identical
// to fileDevice except every access is shifted forward by a fixed byte
// offset. It lets a fatfs volume be embedded starting partway through a
// larger file, e.g. after a leading MBR boot sector written by
// cmd/fatfs's `format --partition=mbr`: the file also carries a partition
// table around the volume, but the core itself only ever sees
// block-indexed I/O starting at its own block 0. The offset is expressed
// in bytes, matching the MBR's own fixed 512-byte LBA sector convention,
// so it never depends on the fatfs volume's own block_size.
type OffsetDevice struct {
	f          *os.File
	byteOffset int64
	blockSize  int
}

// NewOffsetDevice wraps f as a BlockDevice whose block 0 begins
// byteOffset bytes into f, reading and writing blockSize bytes per block.
func NewOffsetDevice(f *os.File, byteOffset int64, blockSize int) *OffsetDevice {
	return &OffsetDevice{f: f, byteOffset: byteOffset, blockSize: blockSize}
}

// SetBlockSize updates the block size used for every access past block 0.
// OpenImageWithDevice calls this once it has read the volume's real
// block_size out of the superblock at block 0, which is addressable
// regardless of the size passed to NewOffsetDevice.
func (d *OffsetDevice) SetBlockSize(blockSize int) {
	d.blockSize = blockSize
}

func (d *OffsetDevice) ReadBlock(block uint32, buf []byte) error {
	n, err := d.f.ReadAt(buf, d.byteOffset+int64(block)*int64(d.blockSize))
	if err != nil && err != io.EOF {
		return err
	}
	if n != len(buf) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (d *OffsetDevice) WriteBlock(block uint32, buf []byte) error {
	n, err := d.f.WriteAt(buf, d.byteOffset+int64(block)*int64(d.blockSize))
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}

func (d *OffsetDevice) Truncate(size int64) error {
	return d.f.Truncate(d.byteOffset + size)
}

func (d *OffsetDevice) Close() error {
	return d.f.Close()
}
