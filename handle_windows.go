//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// Handle is the native file handle type: a file descriptor on POSIX
// systems and a windows.Handle on Windows.
type Handle = windows.Handle

// InvalidHandle is the sentinel value distinct from any valid handle.
const InvalidHandle Handle = windows.InvalidHandle

// openFile opens path with the access flags implied by writable and
// returns the raw handle. The caller owns the handle.
func openFile(path string, writable bool) (Handle, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return InvalidHandle, invalidArgError("open", err)
	}
	access := uint32(windows.GENERIC_READ)
	if writable {
		access |= windows.GENERIC_WRITE
	}
	h, err := windows.CreateFile(
		name,
		access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return InvalidHandle, platformError("open", err)
	}
	return h, nil
}

// closeHandle closes a handle obtained from openFile.
func closeHandle(h Handle) error {
	if err := windows.CloseHandle(h); err != nil {
		return platformError("close", err)
	}
	return nil
}

// queryFileSize returns the size in bytes of the file backing h.
func queryFileSize(h Handle) (int64, error) {
	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return 0, platformError("size", err)
	}
	return int64(info.FileSizeHigh)<<32 | int64(info.FileSizeLow), nil
}

// truncateFile resizes the file backing h to size bytes.
func truncateFile(h Handle, size int64) error {
	if err := windows.Ftruncate(h, size); err != nil {
		return platformError("ftruncate", err)
	}
	return nil
}

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemInfo = kernel32.NewProc("GetSystemInfo")
)

type systemInfo struct {
	processorArchitecture     uint16
	reserved                  uint16
	pageSize                  uint32
	minimumApplicationAddress uintptr
	maximumApplicationAddress uintptr
	activeProcessorMask       uintptr
	numberOfProcessors        uint32
	processorType             uint32
	allocationGranularity     uint32
	processorLevel            uint16
	processorRevision         uint16
}

// allocationGranularity reports the mapping alignment quantum. Windows
// aligns file mappings to the allocation granularity, which is larger
// than the page size.
func allocationGranularity() int64 {
	var si systemInfo
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	return int64(si.allocationGranularity)
}
