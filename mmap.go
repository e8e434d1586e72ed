package mmap

import (
	"io"
	"math"
)

// WholeFile may be passed as the length argument of Map and MapHandle to
// map everything from the offset to the end of the file. A zero-length
// mapping is never useful, so the zero value doubles as the sentinel.
const WholeFile int64 = 0

type adviseKind int

const (
	adviseSequential adviseKind = iota
	adviseRandom
	adviseWillNeed
	adviseDontNeed
)

// mapping is the descriptor shared by Source and Sink. It owns at most
// one native mapping at a time.
//
// data aliases the logical region the caller asked for; mapped is the
// page-aligned superset the operating system actually provided. data is
// nil exactly when the descriptor is in the empty state, in which case
// the remaining fields are meaningless.
type mapping struct {
	data     []byte      // logical view, first byte at the requested offset
	mapped   []byte      // full OS mapping, starts at the aligned offset
	fh       Handle      // backing file handle
	ctx      platformCtx // extra native state (Windows mapping handle)
	owned    bool        // close fh on release (it was opened from a path)
	writable bool
}

// remap establishes a new mapping over h and replaces any previous one.
// The previous mapping is released only after the new one exists, so a
// failure leaves the descriptor exactly as it was before the call.
func (m *mapping) remap(h Handle, offset, length int64, writable, owned bool) error {
	if h == InvalidHandle {
		return badHandleError("map", ErrInvalidHandle)
	}
	if offset < 0 || length < 0 {
		return invalidArgError("map", ErrNegativeRange)
	}

	size, err := queryFileSize(h)
	if err != nil {
		return err
	}
	if length == WholeFile {
		if offset >= size {
			return invalidArgError("map", ErrEmptyRange)
		}
		length = size - offset
	} else if offset+length > size {
		return invalidArgError("map", ErrOutOfRange)
	}

	alignedOffset := AlignDown(offset, PageGranularity())
	inner := offset - alignedOffset
	mapLen := inner + length
	if mapLen > math.MaxInt {
		return invalidArgError("map", ErrRangeTooLarge)
	}

	mapped, ctx, err := memoryMap(h, alignedOffset, mapLen, offset+length, writable)
	if err != nil {
		return err
	}

	// The old mapping (and its internally owned handle) goes away only
	// now that the new one exists. There is no destination for a release
	// error at this point, so it is logged rather than returned.
	if err := m.release(); err != nil {
		logger().Warn("releasing replaced mapping failed", "error", err)
	}
	m.mapped = mapped
	m.data = mapped[inner : inner+length : inner+length]
	m.fh = h
	m.ctx = ctx
	m.owned = owned
	m.writable = writable
	return nil
}

// mapPath opens path and maps the requested region. The handle obtained
// here is owned by the descriptor and closed on release.
func (m *mapping) mapPath(path string, offset, length int64, writable bool) error {
	if path == "" {
		return invalidArgError("map", ErrEmptyPath)
	}
	h, err := openFile(path, writable)
	if err != nil {
		return err
	}
	if err := m.remap(h, offset, length, writable, true); err != nil {
		if cerr := closeHandle(h); cerr != nil {
			logger().Warn("closing file after failed map", "error", cerr)
		}
		return err
	}
	return nil
}

// mapHandle maps the requested region of an externally owned handle,
// which is never closed by the descriptor.
func (m *mapping) mapHandle(h Handle, offset, length int64, writable bool) error {
	return m.remap(h, offset, length, writable, false)
}

// release tears down the current mapping and resets the descriptor to the
// empty state. The reset happens regardless of platform errors, which are
// returned best-effort; the descriptor never believes it is still mapped.
func (m *mapping) release() error {
	if m.data == nil {
		return nil
	}
	var first error
	if err := unmapMapping(m.mapped, m.ctx); err != nil {
		first = err
	}
	if m.owned {
		if err := closeHandle(m.fh); err != nil && first == nil {
			first = err
		}
	}
	m.data = nil
	m.mapped = nil
	m.fh = InvalidHandle
	m.ctx = platformCtx{}
	m.owned = false
	m.writable = false
	return first
}

// sync flushes the mapped pages to the backing file.
func (m *mapping) sync(async bool) error {
	if m.data == nil {
		return badHandleError("sync", ErrNotMapped)
	}
	return flushMapping(m.mapped, m.fh, m.ctx, async)
}

// syncRange flushes the pages covering [off, off+length) of the logical
// region. The range start is aligned down to the page granularity
// internally, as required by the platform flush call.
func (m *mapping) syncRange(off, length int64) error {
	if m.data == nil {
		return badHandleError("sync", ErrNotMapped)
	}
	if off < 0 || length < 0 || off+length > int64(len(m.data)) {
		return invalidArgError("sync", ErrOutOfRange)
	}
	inner := int64(m.MappingOffset()) + off
	start := AlignDown(inner, PageGranularity())
	return flushRange(m.mapped, start, inner+length-start, m.fh, m.ctx)
}

// Bytes returns the logical region as a byte slice, or nil if no mapping
// is active. The slice aliases the mapped file: it is invalidated by
// Unmap, Map and Close. Writing through the slice of a read-only mapping
// faults at the OS level.
func (m *mapping) Bytes() []byte {
	return m.data
}

// At returns the byte at index i of the logical region. Like slice
// indexing, it performs no mapping check beyond the slice bounds: this is
// a zero-overhead view, not a bounds-checked container.
func (m *mapping) At(i int) byte {
	return m.data[i]
}

// Len returns the logical length: the number of bytes the caller
// requested, zero when no mapping is active.
func (m *mapping) Len() int {
	return len(m.data)
}

// MappedLen returns the actual number of bytes mapped by the operating
// system, always >= Len and aligned to the page granularity.
func (m *mapping) MappedLen() int {
	return len(m.mapped)
}

// MappingOffset returns the distance between the start of the OS mapping
// and the first requested byte. It is always smaller than the page
// granularity.
func (m *mapping) MappingOffset() int {
	return len(m.mapped) - len(m.data)
}

// IsMapped returns true if a mapping is active.
func (m *mapping) IsMapped() bool {
	return m.data != nil
}

// FileHandle returns the file handle backing the mapping, or
// InvalidHandle if no mapping is active.
func (m *mapping) FileHandle() Handle {
	if m.data == nil {
		return InvalidHandle
	}
	return m.fh
}

// Unmap releases the native mapping, closes the file handle if it was
// opened internally, and resets the instance to the empty state. Calling
// Unmap on an empty instance is a no-op. The empty state is entered even
// when the platform calls report errors.
func (m *mapping) Unmap() error {
	return m.release()
}

// ReadAt implements io.ReaderAt over the logical region.
func (m *mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.data == nil {
		return 0, badHandleError("read", ErrNotMapped)
	}
	if off < 0 {
		return 0, invalidArgError("read", ErrNegativeRange)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// AdviseSequential hints that the region will be accessed sequentially.
// Advice is a no-op on Windows.
func (m *mapping) AdviseSequential() error { return m.advise(adviseSequential) }

// AdviseRandom hints that the region will be accessed in random order.
func (m *mapping) AdviseRandom() error { return m.advise(adviseRandom) }

// AdviseWillNeed hints that the region will be needed soon.
func (m *mapping) AdviseWillNeed() error { return m.advise(adviseWillNeed) }

// AdviseDontNeed hints that the region will not be needed soon.
func (m *mapping) AdviseDontNeed() error { return m.advise(adviseDontNeed) }

func (m *mapping) advise(kind adviseKind) error {
	if m.data == nil {
		return badHandleError("madvise", ErrNotMapped)
	}
	return adviseMapped(m.mapped, kind)
}

// MLock locks the mapped pages into physical memory.
func (m *mapping) MLock() error {
	if m.data == nil {
		return badHandleError("mlock", ErrNotMapped)
	}
	return lockMapped(m.mapped)
}

// MUnlock unlocks pages locked by MLock.
func (m *mapping) MUnlock() error {
	if m.data == nil {
		return badHandleError("munlock", ErrNotMapped)
	}
	return unlockMapped(m.mapped)
}
