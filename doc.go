// Package mmap provides portable memory-mapped file I/O.
//
// A mapping exposes a region of a file as a byte slice, so callers read
// and write file contents through ordinary indexing instead of explicit
// read/write calls. The package hides the platform differences between
// POSIX mmap and the Windows CreateFileMapping/MapViewOfFile pair,
// including page-alignment of offsets: callers may request any byte
// offset and the implementation maps the page-aligned superset, handing
// back a view that starts exactly at the requested byte.
//
// Access mode is fixed at the type level:
//   - Source is a read-only mapping; writes through its view fault.
//   - Sink is a read-write mapping with Sync to flush pages to disk.
//
// Both are single-owner: one instance owns one native mapping, and
// MoveTo/Swap transfer that ownership explicitly. SharedSource and
// SharedSink add reference counting on top, releasing the native mapping
// exactly when the last holder closes.
//
// Basic usage:
//
//	src, err := mmap.NewSource("/var/data/blob.bin", 0, mmap.WholeFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer src.Close()
//
//	header := src.Bytes()[:16]
//	_ = header
//
//	sink, err := mmap.NewSink("/var/data/blob.bin", 0, 4096)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	copy(sink.Bytes(), []byte("updated"))
//	if err := sink.Sync(); err != nil {
//	    log.Fatal(err)
//	}
//	sink.Close()
//
// Known limitation: errors from tearing down a mapping that is being
// replaced by a successful Map call have no return path. They are sent to
// the logger installed with SetLogger and otherwise discarded.
package mmap
