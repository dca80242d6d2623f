package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nicoaw/fatfs"
	"github.com/nicoaw/fatfs/internal/bridge"
	"github.com/spf13/cobra"
)

var mountPartition string

var mountCmd = &cobra.Command{
	Use:   "mount <path>",
	Short: "Drive a fatfs volume through an interactive shell",
	Long: `mount opens a fatfs volume and reads commands from stdin, one per
line, exercising the same operations a real host-filesystem adapter
would call. It does not perform an actual kernel mount.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openVolume(args[0], mountPartition)
		if err != nil {
			return err
		}
		defer img.Close()
		b := bridge.New(fatfs.NewCore(img), logger)
		return runShell(b, os.Stdin, os.Stdout)
	},
}

func init() {
	mountCmd.Flags().StringVar(&mountPartition, "partition", "none", `partition wrapping: "none" or "mbr"`)
}

func runShell(b *bridge.Bridge, in *os.File, out *os.File) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "fatfs shell. Type 'help' for commands, 'exit' to quit.")
	for {
		fmt.Fprint(out, "fatfs> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, rest := fields[0], fields[1:]
		if cmd == "exit" || cmd == "quit" {
			return nil
		}
		if err := dispatchShellCmd(b, out, cmd, rest); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func dispatchShellCmd(b *bridge.Bridge, out *os.File, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(out, "commands: ls mkdir touch write cat rm mv stat truncate chmod exit")
		return nil
	case "ls":
		return shellLs(b, out, arg(args, 0, "/"))
	case "mkdir":
		return b.Mkdir(arg(args, 0, ""))
	case "touch":
		return b.Mknod(arg(args, 0, ""))
	case "write":
		if len(args) < 2 {
			return fmt.Errorf("usage: write <path> <text>")
		}
		_, err := b.Write(args[0], []byte(strings.Join(args[1:], " ")), 0)
		return err
	case "cat":
		return shellCat(b, out, arg(args, 0, ""))
	case "rm":
		return b.Unlink(arg(args, 0, ""))
	case "mv":
		if len(args) < 2 {
			return fmt.Errorf("usage: mv <old> <new>")
		}
		return b.Rename(args[0], args[1])
	case "stat":
		return shellStat(b, out, arg(args, 0, ""))
	case "truncate":
		if len(args) < 2 {
			return fmt.Errorf("usage: truncate <path> <size>")
		}
		size, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return err
		}
		return b.Truncate(args[0], uint32(size))
	case "chmod":
		if len(args) < 2 {
			return fmt.Errorf("usage: chmod <path> <octal-mode>")
		}
		mode, err := strconv.ParseUint(args[1], 8, 32)
		if err != nil {
			return err
		}
		return b.Chmod(args[0], uint32(mode))
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func arg(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

func shellLs(b *bridge.Bridge, out *os.File, path string) error {
	entries, err := b.ReadDir(path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		kind := "f"
		if e.IsDir {
			kind = "d"
		}
		fmt.Fprintf(out, "%s %s\n", kind, e.Name)
	}
	return nil
}

func shellCat(b *bridge.Bridge, out *os.File, path string) error {
	attr, err := b.GetAttr(path)
	if err != nil {
		return err
	}
	buf := make([]byte, attr.Size)
	if _, err := b.Read(path, buf, 0); err != nil {
		return err
	}
	_, err = out.Write(buf)
	return err
}

func shellStat(b *bridge.Bridge, out *os.File, path string) error {
	attr, err := b.GetAttr(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, bridge.FormatAttr(path, attr))
	return nil
}
