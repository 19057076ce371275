package record

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTraceFile concatenates raw record bytes into batches (one batch
// per entry in batches) and writes the length-framed file Source/
// ChunkReader expects.
func writeTraceFile(t *testing.T, batches [][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	for _, b := range batches {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
		_, err := f.Write(lenBuf[:])
		require.NoError(t, err)
		_, err = f.Write(b)
		require.NoError(t, err)
	}
	return path
}

func bbRecord(pc uint32) []byte {
	return append(u32le(uint32(TagBB)), u32le(pc)...)
}

func TestSourcePeekAndFetchSingleBatch(t *testing.T) {
	path := writeTraceFile(t, [][]byte{
		append(bbRecord(1), bbRecord(2)...),
	})
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, TagBB, src.Peek())
	var pos int64
	buf, ok := src.Fetch(&pos)
	require.True(t, ok)
	require.Equal(t, int64(12), pos) // 4-byte batch prefix + 8-byte record
	rec, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, BasicBlock{PC: 1}, rec.Payload)

	buf, ok = src.Fetch(&pos)
	require.True(t, ok)
	require.Equal(t, int64(20), pos)
	rec, err = Decode(buf)
	require.NoError(t, err)
	require.Equal(t, BasicBlock{PC: 2}, rec.Payload)

	require.Equal(t, TagNone, src.Peek())
	_, ok = src.Fetch(&pos)
	require.False(t, ok)
}

func TestSourceRecordSpansBatchBoundary(t *testing.T) {
	rec := bbRecord(0x42)
	// Split the 8-byte record across two batches so Fetch must pull a
	// second NextBatch to complete it.
	path := writeTraceFile(t, [][]byte{rec[:3], rec[3:]})
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, TagBB, src.Peek())
	var pos int64
	buf, ok := src.Fetch(&pos)
	require.True(t, ok)
	decoded, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, BasicBlock{PC: 0x42}, decoded.Payload)
}

func TestSourceTruncatedFinalRecordIsEOF(t *testing.T) {
	rec := bbRecord(0x1)
	path := writeTraceFile(t, [][]byte{rec[:3]})
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	var pos int64
	_, ok := src.Fetch(&pos)
	require.False(t, ok)
}
