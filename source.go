package mmap

// Source is a read-only memory mapping of a file region. The zero value
// is an empty Source ready for Map or MapHandle.
//
// The region is opened and mapped read-only, so the operating system
// enforces immutability: writing through the view faults. A Source owns
// its native mapping exclusively; use SharedSource for reference-counted
// sharing, and do not copy a Source by value.
//
// A Source is not safe for concurrent mutation: calls to Map, Unmap or
// Close racing with each other or with readers must be serialized by the
// caller.
type Source struct {
	m mapping
}

// NewSource opens path and maps length bytes starting at offset,
// read-only. Pass WholeFile to map everything from offset to the end of
// the file. The offset does not need to be page-aligned.
func NewSource(path string, offset, length int64) (*Source, error) {
	s := &Source{}
	if err := s.Map(path, offset, length); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSourceFromHandle maps length bytes of an already-open handle,
// read-only. The handle remains owned by the caller and is never closed
// by the Source.
func NewSourceFromHandle(h Handle, offset, length int64) (*Source, error) {
	s := &Source{}
	if err := s.MapHandle(h, offset, length); err != nil {
		return nil, err
	}
	return s, nil
}

// Map opens path and establishes a read-only mapping over
// [offset, offset+length). The file handle obtained here is owned by the
// Source and closed on release. Any previously active mapping is
// replaced, but only after the new one has been established: a failed Map
// leaves the old mapping untouched.
func (s *Source) Map(path string, offset, length int64) error {
	return s.m.mapPath(path, offset, length, false)
}

// MapHandle establishes a read-only mapping over an already-open handle.
// The handle is treated as externally owned and is never closed by the
// Source. The replacement semantics are the same as Map's.
func (s *Source) MapHandle(h Handle, offset, length int64) error {
	return s.m.mapHandle(h, offset, length, false)
}

// Close releases the mapping. Equivalent to Unmap.
func (s *Source) Close() error {
	return s.m.release()
}

// MoveTo transfers ownership of the mapping to dst. Any mapping dst
// already holds is released first; its release error, if any, is
// returned. The receiver is left in the empty state.
func (s *Source) MoveTo(dst *Source) error {
	if s == dst {
		return nil
	}
	err := dst.m.release()
	dst.m = s.m
	s.m = mapping{}
	return err
}

// Swap exchanges the mappings of two Sources.
func (s *Source) Swap(other *Source) {
	s.m, other.m = other.m, s.m
}

// Bytes returns the logical region as a byte slice, or nil if no mapping
// is active. The slice aliases the mapped file and must be treated as
// read-only: writing through it faults.
func (s *Source) Bytes() []byte { return s.m.Bytes() }

// At returns the byte at index i of the logical region.
func (s *Source) At(i int) byte { return s.m.At(i) }

// Len returns the logical length of the mapping.
func (s *Source) Len() int { return s.m.Len() }

// MappedLen returns the actual number of bytes mapped by the OS.
func (s *Source) MappedLen() int { return s.m.MappedLen() }

// MappingOffset returns the distance between the start of the OS mapping
// and the first requested byte.
func (s *Source) MappingOffset() int { return s.m.MappingOffset() }

// IsMapped returns true if a mapping is active.
func (s *Source) IsMapped() bool { return s.m.IsMapped() }

// FileHandle returns the backing file handle, or InvalidHandle when
// empty.
func (s *Source) FileHandle() Handle { return s.m.FileHandle() }

// MappingHandle returns the handle the native mapping is operated
// through. On Windows this is the file-mapping object handle; elsewhere
// it is the file handle.
func (s *Source) MappingHandle() Handle { return s.m.MappingHandle() }

// Unmap releases the mapping and resets the Source to the empty state.
func (s *Source) Unmap() error { return s.m.Unmap() }

// ReadAt implements io.ReaderAt over the logical region.
func (s *Source) ReadAt(p []byte, off int64) (int, error) { return s.m.ReadAt(p, off) }

// AdviseSequential hints sequential access to the kernel.
func (s *Source) AdviseSequential() error { return s.m.AdviseSequential() }

// AdviseRandom hints random access to the kernel.
func (s *Source) AdviseRandom() error { return s.m.AdviseRandom() }

// AdviseWillNeed hints that the region will be needed soon.
func (s *Source) AdviseWillNeed() error { return s.m.AdviseWillNeed() }

// AdviseDontNeed hints that the region will not be needed soon.
func (s *Source) AdviseDontNeed() error { return s.m.AdviseDontNeed() }

// MLock locks the mapped pages into physical memory.
func (s *Source) MLock() error { return s.m.MLock() }

// MUnlock unlocks pages locked by MLock.
func (s *Source) MUnlock() error { return s.m.MUnlock() }
