package main

import (
	"fmt"
	"os"

	"github.com/nicoaw/fatfs"
	"github.com/nicoaw/fatfs/internal/mbr"
	"github.com/spf13/cobra"
)

var (
	formatBlockSize  uint32
	formatBlockCount uint32
	formatPartition  string
)

var formatCmd = &cobra.Command{
	Use:   "format <path>",
	Short: "Format a host file as a fatfs volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFormat(args[0])
	},
}

func init() {
	formatCmd.Flags().Uint32Var(&formatBlockSize, "block-size", 1024, "block size in bytes")
	formatCmd.Flags().Uint32Var(&formatBlockCount, "block-count", 4096, "number of blocks in the volume")
	formatCmd.Flags().StringVar(&formatPartition, "partition", "none", `partition wrapping: "none" or "mbr"`)
}

func runFormat(path string) error {
	entriesPerBlock := formatBlockSize / 4
	if entriesPerBlock == 0 {
		return fmt.Errorf("block-size too small to hold any FAT entries")
	}
	fatBlockCount := (formatBlockCount + entriesPerBlock - 1) / entriesPerBlock
	rootBlock := 1 + fatBlockCount

	sb := fatfs.Superblock{
		Magic:         fatfs.Magic,
		BlockCount:    formatBlockCount,
		FATBlockCount: fatBlockCount,
		BlockSize:     formatBlockSize,
		RootBlock:     rootBlock,
		VolumeID:      fatfs.NewVolumeID(),
	}

	switch formatPartition {
	case "none":
		img, err := fatfs.OpenImage(path, logger)
		if err != nil {
			return err
		}
		defer img.Close()
		if r := img.Format(sb); r != fatfs.ResultOK {
			return r
		}
	case "mbr":
		if err := formatWithMBR(path, sb); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown --partition value %q", formatPartition)
	}

	fmt.Printf("formatted %s: %d blocks of %d bytes, %d FAT blocks, root at block %d\n",
		path, sb.BlockCount, sb.BlockSize, sb.FATBlockCount, sb.RootBlock)
	return nil
}

// formatWithMBR reserves one 512-byte sector at the start of path for an
// MBR boot sector describing the volume, then formats the remainder of
// the file as the fatfs volume itself.
func formatWithMBR(path string, sb fatfs.Superblock) error {
	const sectorSize = 512
	volumeBytes := int64(sb.BlockCount) * int64(sb.BlockSize)
	if volumeBytes%sectorSize != 0 {
		return fmt.Errorf("volume size %d is not a multiple of the %d-byte LBA sector size", volumeBytes, sectorSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	bootBuf := make([]byte, sectorSize)
	bootSector, err := mbr.ToBootSector(bootBuf)
	if err != nil {
		return err
	}
	bootSector.WriteSingleVolume(1, uint32(volumeBytes/sectorSize))
	if _, err := f.WriteAt(bootBuf, 0); err != nil {
		return err
	}

	dev := fatfs.NewOffsetDevice(f, sectorSize, int(sb.BlockSize))
	img := fatfs.NewImage(dev, logger)
	if r := img.Format(sb); r != fatfs.ResultOK {
		return r
	}
	return nil
}
