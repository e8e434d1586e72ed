package mmap

// Sink is a read-write memory mapping of a file region. The zero value is
// an empty Sink ready for Map or MapHandle.
//
// Writes through Bytes or WriteAt modify the mapped pages directly; Sync
// forces them back to the file. Close flushes before unmapping. A Sink
// owns its native mapping exclusively; use SharedSink for
// reference-counted sharing, and do not copy a Sink by value.
//
// Like Source, a Sink provides no internal synchronization.
type Sink struct {
	m mapping
}

// NewSink opens path and maps length bytes starting at offset,
// read-write. Pass WholeFile to map everything from offset to the end of
// the file. The offset does not need to be page-aligned.
func NewSink(path string, offset, length int64) (*Sink, error) {
	s := &Sink{}
	if err := s.Map(path, offset, length); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSinkFromHandle maps length bytes of an already-open handle,
// read-write. The handle remains owned by the caller and is never closed
// by the Sink.
func NewSinkFromHandle(h Handle, offset, length int64) (*Sink, error) {
	s := &Sink{}
	if err := s.MapHandle(h, offset, length); err != nil {
		return nil, err
	}
	return s, nil
}

// Map opens path and establishes a read-write mapping over
// [offset, offset+length). The file handle obtained here is owned by the
// Sink and closed on release. Any previously active mapping is replaced,
// but only after the new one has been established: a failed Map leaves
// the old mapping untouched.
func (s *Sink) Map(path string, offset, length int64) error {
	return s.m.mapPath(path, offset, length, true)
}

// MapHandle establishes a read-write mapping over an already-open handle.
// The handle is treated as externally owned and is never closed by the
// Sink. The replacement semantics are the same as Map's.
func (s *Sink) MapHandle(h Handle, offset, length int64) error {
	return s.m.mapHandle(h, offset, length, true)
}

// Sync flushes the mapped pages to the backing file, then flushes any
// OS-level file buffers. It fails with a bad-handle error when no mapping
// is active.
func (s *Sink) Sync() error {
	return s.m.sync(false)
}

// SyncAsync schedules a flush of the mapped pages without waiting for it
// to complete. On Windows, which has no asynchronous flush, it behaves
// like Sync.
func (s *Sink) SyncAsync() error {
	return s.m.sync(true)
}

// SyncRange flushes the pages covering [off, off+length) of the logical
// region. The start of the range is aligned down to the page granularity
// internally.
func (s *Sink) SyncRange(off, length int64) error {
	return s.m.syncRange(off, length)
}

// WriteAt implements io.WriterAt over the logical region. Writes that
// would extend past the end of the region are truncated and report
// ErrOutOfRange.
func (s *Sink) WriteAt(p []byte, off int64) (int, error) {
	if s.m.data == nil {
		return 0, badHandleError("write", ErrNotMapped)
	}
	if off < 0 {
		return 0, invalidArgError("write", ErrNegativeRange)
	}
	if off >= int64(len(s.m.data)) {
		return 0, invalidArgError("write", ErrOutOfRange)
	}
	n := copy(s.m.data[off:], p)
	if n < len(p) {
		return n, invalidArgError("write", ErrOutOfRange)
	}
	return n, nil
}

// Truncate resizes the backing file. The current mapping window is left
// untouched; call Map or MapHandle again to observe the new size.
func (s *Sink) Truncate(size int64) error {
	if s.m.data == nil {
		return badHandleError("ftruncate", ErrNotMapped)
	}
	if size < 0 {
		return invalidArgError("ftruncate", ErrNegativeRange)
	}
	return truncateFile(s.m.fh, size)
}

// Close flushes the mapped pages best-effort and releases the mapping.
// The first error encountered (flush or release) is returned; the Sink is
// reset to the empty state regardless.
func (s *Sink) Close() error {
	var first error
	if s.m.data != nil {
		first = s.m.sync(false)
	}
	if err := s.m.release(); err != nil && first == nil {
		first = err
	}
	return first
}

// MoveTo transfers ownership of the mapping to dst. Any mapping dst
// already holds is released first; its release error, if any, is
// returned. The receiver is left in the empty state.
func (s *Sink) MoveTo(dst *Sink) error {
	if s == dst {
		return nil
	}
	err := dst.m.release()
	dst.m = s.m
	s.m = mapping{}
	return err
}

// Swap exchanges the mappings of two Sinks.
func (s *Sink) Swap(other *Sink) {
	s.m, other.m = other.m, s.m
}

// Bytes returns the logical region as a mutable byte slice, or nil if no
// mapping is active. The slice aliases the mapped file and is invalidated
// by Unmap, Map and Close.
func (s *Sink) Bytes() []byte { return s.m.Bytes() }

// At returns the byte at index i of the logical region.
func (s *Sink) At(i int) byte { return s.m.At(i) }

// Len returns the logical length of the mapping.
func (s *Sink) Len() int { return s.m.Len() }

// MappedLen returns the actual number of bytes mapped by the OS.
func (s *Sink) MappedLen() int { return s.m.MappedLen() }

// MappingOffset returns the distance between the start of the OS mapping
// and the first requested byte.
func (s *Sink) MappingOffset() int { return s.m.MappingOffset() }

// IsMapped returns true if a mapping is active.
func (s *Sink) IsMapped() bool { return s.m.IsMapped() }

// FileHandle returns the backing file handle, or InvalidHandle when
// empty.
func (s *Sink) FileHandle() Handle { return s.m.FileHandle() }

// MappingHandle returns the handle the native mapping is operated
// through. On Windows this is the file-mapping object handle; elsewhere
// it is the file handle.
func (s *Sink) MappingHandle() Handle { return s.m.MappingHandle() }

// Unmap releases the mapping without flushing and resets the Sink to the
// empty state. Use Close to flush first.
func (s *Sink) Unmap() error { return s.m.Unmap() }

// ReadAt implements io.ReaderAt over the logical region.
func (s *Sink) ReadAt(p []byte, off int64) (int, error) { return s.m.ReadAt(p, off) }

// AdviseSequential hints sequential access to the kernel.
func (s *Sink) AdviseSequential() error { return s.m.AdviseSequential() }

// AdviseRandom hints random access to the kernel.
func (s *Sink) AdviseRandom() error { return s.m.AdviseRandom() }

// AdviseWillNeed hints that the region will be needed soon.
func (s *Sink) AdviseWillNeed() error { return s.m.AdviseWillNeed() }

// AdviseDontNeed hints that the region will not be needed soon.
func (s *Sink) AdviseDontNeed() error { return s.m.AdviseDontNeed() }

// MLock locks the mapped pages into physical memory.
func (s *Sink) MLock() error { return s.m.MLock() }

// MUnlock unlocks pages locked by MLock.
func (s *Sink) MUnlock() error { return s.m.MUnlock() }
