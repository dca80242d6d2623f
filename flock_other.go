//go:build !unix

package fatfs

import "os"

// flockExclusive is a no-op on platforms without flock(2); the session
// ownership convention still holds, it simply isn't enforced by the OS
// here.
func flockExclusive(f *os.File) error { return nil }

func funlock(f *os.File) error { return nil }
