package main

import (
	"fmt"

	"github.com/nicoaw/fatfs"
	"github.com/spf13/cobra"
)

var infoPartition string

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Print a fatfs volume's superblock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openVolume(args[0], infoPartition)
		if err != nil {
			return err
		}
		defer img.Close()
		sb := img.Superblock()
		fmt.Printf("magic:            %#x\n", sb.Magic)
		fmt.Printf("volume id:        %s\n", sb.VolumeUUID())
		fmt.Printf("block size:       %d\n", sb.BlockSize)
		fmt.Printf("block count:      %d\n", sb.BlockCount)
		fmt.Printf("fat block count:  %d\n", sb.FATBlockCount)
		fmt.Printf("root block:       %d\n", sb.RootBlock)

		core := fatfs.NewCore(img)
		root, r := core.GetAttr("/")
		if r != fatfs.ResultOK {
			return r
		}
		fmt.Printf("root dir entries: %d\n", root.Size/fatfs.EntrySize)
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoPartition, "partition", "none", `partition wrapping: "none" or "mbr"`)
}
