package fatfs

import "syscall"

// Errno maps a core Result to the POSIX error code a host-FS bridge or
// CLI collaborator should surface. The core itself never deals in
// syscall.Errno; this mapping lives at the boundary.
func (r Result) Errno() syscall.Errno {
	switch r {
	case ResultOK:
		return 0
	case ResultNotFound:
		return syscall.ENOENT
	case ResultNotDir:
		return syscall.ENOTDIR
	case ResultIsDir:
		return syscall.EISDIR
	case ResultNotEmpty:
		return syscall.ENOTEMPTY
	case ResultNameTooLong:
		return syscall.ENAMETOOLONG
	case ResultInvalidName, ResultInvalidArg:
		return syscall.EINVAL
	case ResultOutOfSpace:
		return syscall.ENOSPC
	case ResultExists:
		return syscall.EEXIST
	case ResultIO, ResultCorrupt:
		return syscall.EIO
	default:
		return syscall.EIO
	}
}
