package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fatfs",
	Short: "Format and drive a fatfs volume backed by a regular host file",
	Long: `fatfs manages single-volume FAT-style filesystem images: a host
file (or a partition carved out of one with an MBR) holding a
superblock, a flat block allocation table, and 64-byte directory entry
records.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(formatCmd, infoCmd, mountCmd, versionCmd)
}

// version is stamped at release time; left as a constant here since this
// core has no separate build-info packaging step.
const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fatfs tool version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("fatfs", version)
		return nil
	},
}
