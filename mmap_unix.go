//go:build unix

package mmap

import "golang.org/x/sys/unix"

// platformCtx carries no extra state on POSIX systems; the mapped region
// alone identifies the native mapping.
type platformCtx struct{}

// memoryMap requests a native mapping of mapLen bytes starting at the
// page-aligned alignedOffset. mapEnd is ignored on POSIX; Windows needs
// it to size the file-mapping object.
func memoryMap(h Handle, alignedOffset, mapLen, mapEnd int64, writable bool) ([]byte, platformCtx, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(h, alignedOffset, int(mapLen), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, platformCtx{}, platformError("mmap", err)
	}
	return data, platformCtx{}, nil
}

// unmapMapping releases the native mapping.
func unmapMapping(mapped []byte, _ platformCtx) error {
	if err := unix.Munmap(mapped); err != nil {
		return platformError("munmap", err)
	}
	return nil
}

// flushMapping writes the mapped pages back to the file.
func flushMapping(mapped []byte, _ Handle, _ platformCtx, async bool) error {
	flags := unix.MS_SYNC
	if async {
		flags = unix.MS_ASYNC
	}
	if err := unix.Msync(mapped, flags); err != nil {
		return platformError("msync", err)
	}
	return nil
}

// flushRange writes back the pages covering mapped[start:start+length].
// start must be page-aligned.
func flushRange(mapped []byte, start, length int64, _ Handle, _ platformCtx) error {
	if err := unix.Msync(mapped[start:start+length], unix.MS_SYNC); err != nil {
		return platformError("msync", err)
	}
	return nil
}

// MappingHandle returns the handle the native mapping is operated
// through. On POSIX systems this is the file handle itself.
func (m *mapping) MappingHandle() Handle {
	if m.data == nil {
		return InvalidHandle
	}
	return m.fh
}

func adviseMapped(mapped []byte, kind adviseKind) error {
	var advice int
	switch kind {
	case adviseSequential:
		advice = unix.MADV_SEQUENTIAL
	case adviseRandom:
		advice = unix.MADV_RANDOM
	case adviseWillNeed:
		advice = unix.MADV_WILLNEED
	case adviseDontNeed:
		advice = unix.MADV_DONTNEED
	}
	if err := unix.Madvise(mapped, advice); err != nil {
		return platformError("madvise", err)
	}
	return nil
}

func lockMapped(mapped []byte) error {
	if err := unix.Mlock(mapped); err != nil {
		return platformError("mlock", err)
	}
	return nil
}

func unlockMapped(mapped []byte) error {
	if err := unix.Munlock(mapped); err != nil {
		return platformError("munlock", err)
	}
	return nil
}
