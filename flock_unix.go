//go:build unix

package fatfs

import (
	"os"

	"golang.org/x/sys/unix"
)

// flockExclusive takes an advisory exclusive lock on f, enforcing
// single-session ownership of the image file at the OS level. It is
// best-effort: a failure to lock is reported to the caller but the core
// does not retry.
func flockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func funlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
