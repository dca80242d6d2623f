package fatfs

import (
	"io"
	"os"
)

// fileDevice is a BlockDevice backed by a regular host file used as a
// block device.
type fileDevice struct {
	f         *os.File
	blockSize int
}

func (d *fileDevice) ReadBlock(block uint32, buf []byte) error {
	n, err := d.f.ReadAt(buf, int64(block)*int64(d.blockSize))
	if err != nil && err != io.EOF {
		return err
	}
	if n != len(buf) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (d *fileDevice) WriteBlock(block uint32, buf []byte) error {
	n, err := d.f.WriteAt(buf, int64(block)*int64(d.blockSize))
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}

func (d *fileDevice) Truncate(size int64) error {
	return d.f.Truncate(size)
}

func (d *fileDevice) Close() error {
	return d.f.Close()
}
