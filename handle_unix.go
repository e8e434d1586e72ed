//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// Handle is the native file handle type: a file descriptor on POSIX
// systems and a windows.Handle on Windows.
type Handle = int

// InvalidHandle is the sentinel value distinct from any valid handle.
const InvalidHandle Handle = -1

// openFile opens path with the access flags implied by writable and
// returns the raw descriptor. The caller owns the handle.
func openFile(path string, writable bool) (Handle, error) {
	flags := unix.O_RDONLY
	if writable {
		flags = unix.O_RDWR
	}
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return InvalidHandle, platformError("open", err)
	}
	return fd, nil
}

// closeHandle closes a descriptor obtained from openFile.
func closeHandle(h Handle) error {
	if err := unix.Close(h); err != nil {
		return platformError("close", err)
	}
	return nil
}

// queryFileSize returns the size in bytes of the file backing h.
func queryFileSize(h Handle) (int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(h, &st); err != nil {
		return 0, platformError("fstat", err)
	}
	return st.Size, nil
}

// truncateFile resizes the file backing h to size bytes.
func truncateFile(h Handle, size int64) error {
	if err := unix.Ftruncate(h, size); err != nil {
		return platformError("ftruncate", err)
	}
	return nil
}

// allocationGranularity reports the mapping alignment quantum. On POSIX
// systems this is the page size.
func allocationGranularity() int64 {
	return int64(os.Getpagesize())
}
