package main

import (
	"fmt"
	"os"

	"github.com/nicoaw/fatfs"
	"github.com/nicoaw/fatfs/internal/mbr"
)

// openVolume opens an already-formatted fatfs volume at path, honoring
// the same --partition convention as format.
func openVolume(path, partition string) (*fatfs.Image, error) {
	switch partition {
	case "none":
		img, err := fatfs.OpenImage(path, logger)
		if err != nil {
			return nil, err
		}
		return img, nil
	case "mbr":
		f, err := os.OpenFile(path, os.O_RDWR, 0o644)
		if err != nil {
			return nil, err
		}
		bootBuf := make([]byte, 512)
		if _, err := f.ReadAt(bootBuf, 0); err != nil {
			f.Close()
			return nil, err
		}
		bootSector, err := mbr.ToBootSector(bootBuf)
		if err != nil {
			f.Close()
			return nil, err
		}
		startLBA, _, ok := bootSector.FindSingleVolume()
		if !ok {
			f.Close()
			return nil, fmt.Errorf("%s: no fatfs partition found in MBR", path)
		}
		dev := fatfs.NewOffsetDevice(f, int64(startLBA)*512, 0)
		img, err := fatfs.OpenImageWithDevice(dev, logger)
		if err != nil {
			f.Close()
			return nil, err
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unknown --partition value %q", partition)
	}
}
