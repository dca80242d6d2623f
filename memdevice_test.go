package fatfs

// memDevice is an in-memory BlockDevice for tests.
type memDevice struct {
	blocks    map[uint32][]byte
	blockSize int
}

func newMemDevice(blockSize int) *memDevice {
	return &memDevice{blocks: make(map[uint32][]byte), blockSize: blockSize}
}

func (d *memDevice) ReadBlock(block uint32, buf []byte) error {
	data, ok := d.blocks[block]
	if !ok {
		data = make([]byte, d.blockSize)
	}
	copy(buf, data)
	return nil
}

func (d *memDevice) WriteBlock(block uint32, buf []byte) error {
	data := make([]byte, len(buf))
	copy(data, buf)
	d.blocks[block] = data
	return nil
}

func (d *memDevice) Truncate(size int64) error {
	return nil
}

func (d *memDevice) Close() error {
	return nil
}

// newTestImage formats and returns an Image over an in-memory device
// with blockCount blocks of blockSize bytes each.
func newTestImage(blockCount, blockSize uint32) *Image {
	entries := blockSize / fatEntrySize
	fatBlockCount := (blockCount + entries - 1) / entries
	sb := Superblock{
		Magic:         Magic,
		BlockCount:    blockCount,
		FATBlockCount: fatBlockCount,
		BlockSize:     blockSize,
		RootBlock:     1 + fatBlockCount,
		VolumeID:      NewVolumeID(),
	}
	dev := newMemDevice(int(blockSize))
	img := NewImage(dev, nil)
	if r := img.Format(sb); r != ResultOK {
		panic(r)
	}
	return img
}
