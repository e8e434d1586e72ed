package mmap

import "sync/atomic"

// sharedState is the reference-counted cell behind SharedSource and
// SharedSink: one descriptor, one counter, shared by every holder.
type sharedState struct {
	refs atomic.Int64
	m    mapping
}

func newSharedState() *sharedState {
	st := &sharedState{}
	st.refs.Store(1)
	return st
}

// retain increments the count and returns the same cell.
func (st *sharedState) retain() *sharedState {
	st.refs.Add(1)
	return st
}

// releaseRef decrements the count and tears the mapping down exactly when
// the last holder goes away.
func (st *sharedState) releaseRef() error {
	if st.refs.Add(-1) == 0 {
		return st.m.release()
	}
	return nil
}

// SharedSource is a reference-counted read-only mapping. All holders
// alias one native mapping; the mapping is released exactly when the last
// holder is closed. The zero value is an empty SharedSource.
//
// The reference count itself is safe to mutate concurrently (Ref and
// Close from different goroutines), but remapping through one holder
// while another reads is a caller-level race, exactly as with Source.
type SharedSource struct {
	st *sharedState
}

// NewSharedSource opens path and maps length bytes starting at offset,
// read-only, behind a reference count of one.
func NewSharedSource(path string, offset, length int64) (*SharedSource, error) {
	s := &SharedSource{}
	if err := s.Map(path, offset, length); err != nil {
		return nil, err
	}
	return s, nil
}

// ShareSource adopts an exclusive Source, moving its mapping behind a
// reference count of one. src is left in the empty state.
func ShareSource(src *Source) *SharedSource {
	st := newSharedState()
	st.m = src.m
	src.m = mapping{}
	return &SharedSource{st: st}
}

// Map establishes the mapping. On an empty SharedSource a new shared cell
// is installed with a count of one; on an already-installed one the call
// delegates to the underlying mapping, so every holder observes the
// remap. No additional native mapping is ever created for a holder group.
func (s *SharedSource) Map(path string, offset, length int64) error {
	if s.st == nil {
		st := newSharedState()
		if err := st.m.mapPath(path, offset, length, false); err != nil {
			return err
		}
		s.st = st
		return nil
	}
	return s.st.m.mapPath(path, offset, length, false)
}

// MapHandle is Map for an already-open, externally owned handle.
func (s *SharedSource) MapHandle(h Handle, offset, length int64) error {
	if s.st == nil {
		st := newSharedState()
		if err := st.m.mapHandle(h, offset, length, false); err != nil {
			return err
		}
		s.st = st
		return nil
	}
	return s.st.m.mapHandle(h, offset, length, false)
}

// Ref returns a new holder of the same mapping and increments the
// reference count. A Ref of an empty SharedSource is empty.
func (s *SharedSource) Ref() *SharedSource {
	if s.st == nil {
		return &SharedSource{}
	}
	return &SharedSource{st: s.st.retain()}
}

// Close releases this holder. The native mapping is released exactly when
// the last holder closes. Closing an empty holder is a no-op; closing the
// same holder twice is safe.
func (s *SharedSource) Close() error {
	if s.st == nil {
		return nil
	}
	st := s.st
	s.st = nil
	return st.releaseRef()
}

// Shares reports whether both holders reference the same underlying
// mapping. This is identity, not byte-content comparison.
func (s *SharedSource) Shares(other *SharedSource) bool {
	return s.st != nil && other != nil && s.st == other.st
}

// Bytes returns the logical region, or nil if no mapping is active.
func (s *SharedSource) Bytes() []byte {
	if s.st == nil {
		return nil
	}
	return s.st.m.Bytes()
}

// At returns the byte at index i of the logical region.
func (s *SharedSource) At(i int) byte { return s.st.m.At(i) }

// Len returns the logical length, zero for an empty holder.
func (s *SharedSource) Len() int {
	if s.st == nil {
		return 0
	}
	return s.st.m.Len()
}

// MappedLen returns the actual mapped length, zero for an empty holder.
func (s *SharedSource) MappedLen() int {
	if s.st == nil {
		return 0
	}
	return s.st.m.MappedLen()
}

// MappingOffset returns the aligned-to-requested distance, zero for an
// empty holder.
func (s *SharedSource) MappingOffset() int {
	if s.st == nil {
		return 0
	}
	return s.st.m.MappingOffset()
}

// IsMapped returns true if a mapping is active.
func (s *SharedSource) IsMapped() bool {
	return s.st != nil && s.st.m.IsMapped()
}

// FileHandle returns the backing file handle, or InvalidHandle.
func (s *SharedSource) FileHandle() Handle {
	if s.st == nil {
		return InvalidHandle
	}
	return s.st.m.FileHandle()
}

// ReadAt implements io.ReaderAt over the logical region.
func (s *SharedSource) ReadAt(p []byte, off int64) (int, error) {
	if s.st == nil {
		return 0, badHandleError("read", ErrNotMapped)
	}
	return s.st.m.ReadAt(p, off)
}

// SharedSink is a reference-counted read-write mapping, the Sink
// counterpart of SharedSource. The zero value is an empty SharedSink.
type SharedSink struct {
	st *sharedState
}

// NewSharedSink opens path and maps length bytes starting at offset,
// read-write, behind a reference count of one.
func NewSharedSink(path string, offset, length int64) (*SharedSink, error) {
	s := &SharedSink{}
	if err := s.Map(path, offset, length); err != nil {
		return nil, err
	}
	return s, nil
}

// ShareSink adopts an exclusive Sink, moving its mapping behind a
// reference count of one. src is left in the empty state.
func ShareSink(src *Sink) *SharedSink {
	st := newSharedState()
	st.m = src.m
	src.m = mapping{}
	return &SharedSink{st: st}
}

// Map establishes the mapping with the same install-or-delegate semantics
// as SharedSource.Map.
func (s *SharedSink) Map(path string, offset, length int64) error {
	if s.st == nil {
		st := newSharedState()
		if err := st.m.mapPath(path, offset, length, true); err != nil {
			return err
		}
		s.st = st
		return nil
	}
	return s.st.m.mapPath(path, offset, length, true)
}

// MapHandle is Map for an already-open, externally owned handle.
func (s *SharedSink) MapHandle(h Handle, offset, length int64) error {
	if s.st == nil {
		st := newSharedState()
		if err := st.m.mapHandle(h, offset, length, true); err != nil {
			return err
		}
		s.st = st
		return nil
	}
	return s.st.m.mapHandle(h, offset, length, true)
}

// Ref returns a new holder of the same mapping and increments the
// reference count.
func (s *SharedSink) Ref() *SharedSink {
	if s.st == nil {
		return &SharedSink{}
	}
	return &SharedSink{st: s.st.retain()}
}

// Close releases this holder. When the last holder closes, the mapped
// pages are flushed best-effort and the mapping is released; the flush or
// release error is returned to that last holder.
func (s *SharedSink) Close() error {
	if s.st == nil {
		return nil
	}
	st := s.st
	s.st = nil
	if st.refs.Add(-1) != 0 {
		return nil
	}
	var first error
	if st.m.data != nil {
		first = st.m.sync(false)
	}
	if err := st.m.release(); err != nil && first == nil {
		first = err
	}
	return first
}

// Sync flushes the mapped pages to the backing file.
func (s *SharedSink) Sync() error {
	if s.st == nil {
		return badHandleError("sync", ErrNotMapped)
	}
	return s.st.m.sync(false)
}

// Shares reports whether both holders reference the same underlying
// mapping.
func (s *SharedSink) Shares(other *SharedSink) bool {
	return s.st != nil && other != nil && s.st == other.st
}

// Bytes returns the logical region as a mutable slice, or nil if no
// mapping is active.
func (s *SharedSink) Bytes() []byte {
	if s.st == nil {
		return nil
	}
	return s.st.m.Bytes()
}

// At returns the byte at index i of the logical region.
func (s *SharedSink) At(i int) byte { return s.st.m.At(i) }

// Len returns the logical length, zero for an empty holder.
func (s *SharedSink) Len() int {
	if s.st == nil {
		return 0
	}
	return s.st.m.Len()
}

// MappedLen returns the actual mapped length, zero for an empty holder.
func (s *SharedSink) MappedLen() int {
	if s.st == nil {
		return 0
	}
	return s.st.m.MappedLen()
}

// MappingOffset returns the aligned-to-requested distance, zero for an
// empty holder.
func (s *SharedSink) MappingOffset() int {
	if s.st == nil {
		return 0
	}
	return s.st.m.MappingOffset()
}

// IsMapped returns true if a mapping is active.
func (s *SharedSink) IsMapped() bool {
	return s.st != nil && s.st.m.IsMapped()
}

// FileHandle returns the backing file handle, or InvalidHandle.
func (s *SharedSink) FileHandle() Handle {
	if s.st == nil {
		return InvalidHandle
	}
	return s.st.m.FileHandle()
}

// ReadAt implements io.ReaderAt over the logical region.
func (s *SharedSink) ReadAt(p []byte, off int64) (int, error) {
	if s.st == nil {
		return 0, badHandleError("read", ErrNotMapped)
	}
	return s.st.m.ReadAt(p, off)
}

// WriteAt implements io.WriterAt over the logical region.
func (s *SharedSink) WriteAt(p []byte, off int64) (int, error) {
	if s.st == nil {
		return 0, badHandleError("write", ErrNotMapped)
	}
	if off < 0 {
		return 0, invalidArgError("write", ErrNegativeRange)
	}
	data := s.st.m.data
	if off >= int64(len(data)) {
		return 0, invalidArgError("write", ErrOutOfRange)
	}
	n := copy(data[off:], p)
	if n < len(p) {
		return n, invalidArgError("write", ErrOutOfRange)
	}
	return n, nil
}
