package benchmarks

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Benchmark input files are created once per process and shared across
// all benchmarks of the same size.
var (
	cacheMu   sync.Mutex
	cacheDir  string
	benchData = make(map[int]string)
)

// getBenchFile returns the path of a file of exactly size bytes filled
// with a deterministic pattern, creating it on first use.
func getBenchFile(b *testing.B, size int) string {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if path, ok := benchData[size]; ok {
		return path
	}

	if cacheDir == "" {
		dir, err := os.MkdirTemp("", "mmapbench")
		if err != nil {
			b.Fatal(err)
		}
		cacheDir = dir
	}

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}

	path := filepath.Join(cacheDir, fmt.Sprintf("bench_%d.bin", size))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		b.Fatal(err)
	}
	benchData[size] = path
	return path
}

func formatSize(size int) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%dMiB", size>>20)
	case size >= 1<<10:
		return fmt.Sprintf("%dKiB", size>>10)
	default:
		return fmt.Sprintf("%dB", size)
	}
}
