//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// platformCtx holds the file-mapping object handle. Windows requires a
// second handle distinct from the file handle: the file handle creates
// the mapping object, but views are mapped and flushed through the
// mapping handle.
type platformCtx struct {
	mapping windows.Handle
}

func int64High(v int64) uint32 { return uint32(uint64(v) >> 32) }
func int64Low(v int64) uint32  { return uint32(uint64(v)) }

// memoryMap requests a native view of mapLen bytes starting at the
// page-aligned alignedOffset. mapEnd (the end of the logical region)
// sizes the file-mapping object.
func memoryMap(h Handle, alignedOffset, mapLen, mapEnd int64, writable bool) ([]byte, platformCtx, error) {
	prot := uint32(windows.PAGE_READONLY)
	access := uint32(windows.FILE_MAP_READ)
	if writable {
		prot = windows.PAGE_READWRITE
		access = windows.FILE_MAP_READ | windows.FILE_MAP_WRITE
	}

	mh, err := windows.CreateFileMapping(h, nil, prot, int64High(mapEnd), int64Low(mapEnd), nil)
	if err != nil {
		return nil, platformCtx{}, platformError("CreateFileMapping", err)
	}

	addr, err := windows.MapViewOfFile(mh, access, int64High(alignedOffset), int64Low(alignedOffset), uintptr(mapLen))
	if err != nil {
		windows.CloseHandle(mh)
		return nil, platformCtx{}, platformError("MapViewOfFile", err)
	}

	mapped := unsafe.Slice((*byte)(unsafe.Pointer(addr)), mapLen)
	return mapped, platformCtx{mapping: mh}, nil
}

// unmapMapping releases the view and the file-mapping object.
func unmapMapping(mapped []byte, ctx platformCtx) error {
	var first error
	if err := windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&mapped[0]))); err != nil {
		first = platformError("UnmapViewOfFile", err)
	}
	if ctx.mapping != 0 {
		if err := windows.CloseHandle(ctx.mapping); err != nil && first == nil {
			first = platformError("CloseHandle", err)
		}
	}
	return first
}

// flushMapping writes the mapped pages back to the file and then flushes
// the OS file buffers. Windows has no asynchronous flush; async behaves
// like a synchronous flush.
func flushMapping(mapped []byte, h Handle, _ platformCtx, async bool) error {
	if err := windows.FlushViewOfFile(uintptr(unsafe.Pointer(&mapped[0])), uintptr(len(mapped))); err != nil {
		return platformError("FlushViewOfFile", err)
	}
	if err := windows.FlushFileBuffers(h); err != nil {
		return platformError("FlushFileBuffers", err)
	}
	return nil
}

// flushRange writes back the pages covering mapped[start:start+length].
func flushRange(mapped []byte, start, length int64, h Handle, _ platformCtx) error {
	if err := windows.FlushViewOfFile(uintptr(unsafe.Pointer(&mapped[start])), uintptr(length)); err != nil {
		return platformError("FlushViewOfFile", err)
	}
	if err := windows.FlushFileBuffers(h); err != nil {
		return platformError("FlushFileBuffers", err)
	}
	return nil
}

// MappingHandle returns the handle the native mapping is operated
// through: the file-mapping object handle, distinct from the file handle.
func (m *mapping) MappingHandle() Handle {
	if m.data == nil {
		return InvalidHandle
	}
	return m.ctx.mapping
}

// adviseMapped is a no-op on Windows, which has no madvise equivalent.
func adviseMapped(_ []byte, _ adviseKind) error {
	return nil
}

func lockMapped(mapped []byte) error {
	if err := windows.VirtualLock(uintptr(unsafe.Pointer(&mapped[0])), uintptr(len(mapped))); err != nil {
		return platformError("VirtualLock", err)
	}
	return nil
}

func unlockMapped(mapped []byte) error {
	if err := windows.VirtualUnlock(uintptr(unsafe.Pointer(&mapped[0])), uintptr(len(mapped))); err != nil {
		return platformError("VirtualUnlock", err)
	}
	return nil
}
