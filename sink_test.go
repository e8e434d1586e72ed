package mmap

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSinkWriteAndSync(t *testing.T) {
	path, data := writeTestFile(t, 1024)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer s.Close()

	copy(s.Bytes()[100:], []byte("hello, mapping"))
	require.NoError(t, s.Sync())

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := append([]byte(nil), data...)
	copy(want[100:], []byte("hello, mapping"))
	require.Equal(t, want, got)
}

func TestSinkVisibleToNewSource(t *testing.T) {
	path, _ := writeTestFile(t, 512)

	sink, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer sink.Close()

	sink.Bytes()[0] = 0xAB
	require.NoError(t, sink.Sync())

	src, err := NewSource(path, 0, WholeFile)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, byte(0xAB), src.At(0))
}

func TestSinkUnalignedOffsetWrite(t *testing.T) {
	g := int(PageGranularity())
	path, data := writeTestFile(t, 2*g)

	offset := g + 123
	s, err := NewSink(path, int64(offset), 256)
	require.NoError(t, err)

	copy(s.Bytes(), []byte("at the right place"))
	require.NoError(t, s.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	// Bytes land at the requested absolute offset, and nothing before
	// the window is disturbed.
	require.Equal(t, data[:offset], got[:offset])
	require.True(t, bytes.HasPrefix(got[offset:], []byte("at the right place")))
}

func TestSinkWriteAt(t *testing.T) {
	path, data := writeTestFile(t, 1024)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.WriteAt([]byte("patched"), 500)
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, []byte("patched"), s.Bytes()[500:507])
	require.Equal(t, data[507:], s.Bytes()[507:])

	// Writes past the window are rejected without a partial copy.
	_, err = s.WriteAt([]byte("x"), int64(s.Len()))
	require.True(t, IsInvalidArgument(err))
	require.ErrorIs(t, err, ErrOutOfRange)

	// Writes crossing the end copy what fits and report the overflow.
	n, err = s.WriteAt([]byte("abcdef"), int64(s.Len())-3)
	require.Equal(t, 3, n)
	require.ErrorIs(t, err, ErrOutOfRange)
	require.Equal(t, []byte("abc"), s.Bytes()[s.Len()-3:])

	_, err = s.WriteAt([]byte("x"), -1)
	require.True(t, IsInvalidArgument(err))
}

func TestSinkWriteAtEmpty(t *testing.T) {
	var s Sink
	_, err := s.WriteAt([]byte("x"), 0)
	require.True(t, IsBadHandle(err))
}

func TestSinkSyncOnEmptyMapping(t *testing.T) {
	var s Sink
	require.True(t, IsBadHandle(s.Sync()))
	require.True(t, IsBadHandle(s.SyncAsync()))
	require.True(t, IsBadHandle(s.SyncRange(0, 1)))
}

func TestSinkCloseFlushes(t *testing.T) {
	path, _ := writeTestFile(t, 256)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)

	copy(s.Bytes(), []byte("flushed on close"))
	require.NoError(t, s.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(got, []byte("flushed on close")))
}

func TestSinkSyncRange(t *testing.T) {
	g := int(PageGranularity())
	path, _ := writeTestFile(t, 3*g)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer s.Close()

	copy(s.Bytes()[g-8:], []byte("straddles a page boundary"))

	// A range crossing a page boundary, a range inside one page, and the
	// full window must all flush cleanly.
	require.NoError(t, s.SyncRange(int64(g-8), 32))
	require.NoError(t, s.SyncRange(10, 20))
	require.NoError(t, s.SyncRange(0, int64(s.Len())))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("straddles a page boundary"), got[g-8:g+17])
}

func TestSinkSyncRangeArguments(t *testing.T) {
	path, _ := writeTestFile(t, 1024)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer s.Close()

	require.True(t, IsInvalidArgument(s.SyncRange(-1, 10)))
	require.True(t, IsInvalidArgument(s.SyncRange(0, -1)))
	require.True(t, IsInvalidArgument(s.SyncRange(1020, 100)))
}

func TestSinkSyncAsync(t *testing.T) {
	path, _ := writeTestFile(t, 512)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer s.Close()

	s.Bytes()[0] = 0xEE
	require.NoError(t, s.SyncAsync())
}

func TestSinkTruncateGrow(t *testing.T) {
	path, data := writeTestFile(t, 512)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Truncate(2048))

	// The window is unchanged until remapped.
	require.Equal(t, 512, s.Len())

	require.NoError(t, s.Map(path, 0, WholeFile))
	require.Equal(t, 2048, s.Len())
	require.Equal(t, data, s.Bytes()[:512])
	require.Equal(t, make([]byte, 2048-512), s.Bytes()[512:])
}

func TestSinkTruncateArguments(t *testing.T) {
	path, _ := writeTestFile(t, 512)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer s.Close()

	require.True(t, IsInvalidArgument(s.Truncate(-1)))

	var empty Sink
	require.True(t, IsBadHandle(empty.Truncate(1024)))
}

func TestSinkFromHandle(t *testing.T) {
	path, _ := writeTestFile(t, 1024)

	h, err := openFile(path, true)
	require.NoError(t, err)
	defer closeHandle(h)

	s, err := NewSinkFromHandle(h, 0, WholeFile)
	require.NoError(t, err)

	copy(s.Bytes(), []byte("via handle"))
	require.NoError(t, s.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(got, []byte("via handle")))

	// External ownership: the handle survives Close.
	_, err = queryFileSize(h)
	require.NoError(t, err)
}

func TestSinkMoveTo(t *testing.T) {
	path, _ := writeTestFile(t, 512)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)

	var dst Sink
	require.NoError(t, s.MoveTo(&dst))
	defer dst.Close()

	require.False(t, s.IsMapped())
	require.True(t, dst.IsMapped())

	dst.Bytes()[0] = 0x42
	require.NoError(t, dst.Sync())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte(0x42), got[0])
}

func TestSinkSwap(t *testing.T) {
	path, _ := writeTestFile(t, 1024)

	a, err := NewSink(path, 0, 256)
	require.NoError(t, err)
	defer a.Close()

	b, err := NewSink(path, 256, 256)
	require.NoError(t, err)
	defer b.Close()

	a.Swap(b)
	require.Equal(t, 0, b.MappingOffset())
	a.Bytes()[0] = 0x77
	require.NoError(t, a.Sync())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte(0x77), got[256])
}

func TestSinkReadAt(t *testing.T) {
	path, data := writeTestFile(t, 512)

	s, err := NewSink(path, 0, WholeFile)
	require.NoError(t, err)
	defer s.Close()

	buf := make([]byte, 32)
	n, err := s.ReadAt(buf, 64)
	require.NoError(t, err)
	require.Equal(t, 32, n)
	require.Equal(t, data[64:96], buf)
}
