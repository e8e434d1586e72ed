package mmap

import "sync"

// pageGranularity caches the allocation granularity for the lifetime of
// the process. sync.OnceValue makes the first query race-free; the value
// is stable once observed.
var pageGranularity = sync.OnceValue(allocationGranularity)

// PageGranularity returns the operating system's page allocation
// granularity: the minimum alignment and size quantum for memory
// mappings. The underlying syscall is made once per process; subsequent
// calls serve a cached value and are safe to make concurrently.
//
// On Windows this is the allocation granularity (commonly 64 KiB), which
// is larger than the page size. On POSIX systems it equals the page size.
func PageGranularity() int64 {
	return pageGranularity()
}

// AlignDown rounds offset down to the nearest multiple of granularity.
// Offsets smaller than the granularity align to zero.
func AlignDown(offset, granularity int64) int64 {
	return offset - offset%granularity
}
