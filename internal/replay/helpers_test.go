package replay

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bbtrace/bbreplay/internal/record"
)

// The helpers below assemble raw on-disk records the way the external
// instrumentation producer would, so tests exercise the engine exactly
// as it consumes real trace files rather than poking at its internals.

const nameBufLen = 64 // must match internal/record's wire layout

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func tagBytes(t record.Tag) []byte { return u32(uint32(t)) }

func recBB(pc uint32) []byte {
	return append(tagBytes(record.TagBB), u32(pc)...)
}

func recSymbol(addr uint32, name string) []byte {
	buf := append(tagBytes(record.TagSymbol), u32(addr)...)
	nameBuf := make([]byte, nameBufLen)
	copy(nameBuf, name)
	return append(buf, nameBuf...)
}

func recLibCall(fn, retAddr, arg uint32) []byte {
	buf := append(tagBytes(record.TagLibCall), u32(fn)...)
	buf = append(buf, u32(retAddr)...)
	return append(buf, u32(arg)...)
}

func recLibRet(fn, retAddr, retVal uint32) []byte {
	buf := append(tagBytes(record.TagLibRet), u32(fn)...)
	buf = append(buf, u32(retAddr)...)
	return append(buf, u32(retVal)...)
}

func recArgs(a, b, c uint32) []byte {
	buf := append(tagBytes(record.TagArgs), u32(a)...)
	buf = append(buf, u32(b)...)
	return append(buf, u32(c)...)
}

func recString(s string) []byte {
	buf := make([]byte, nameBufLen)
	copy(buf, s)
	return append(tagBytes(record.TagString), buf...)
}

func recSync(handle, seq uint32, kind record.SyncKind) []byte {
	buf := append(tagBytes(record.TagSync), u32(handle)...)
	buf = append(buf, u32(seq)...)
	return append(buf, u32(uint32(kind))...)
}

// writeBatchFile writes a single length-framed batch containing the
// concatenation of recs to path.
func writeBatchFile(t *testing.T, path string, recs ...[]byte) {
	t.Helper()
	var body []byte
	for _, r := range recs {
		body = append(body, r...)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	_, err = f.Write(lenBuf[:])
	require.NoError(t, err)
	_, err = f.Write(body)
	require.NoError(t, err)
}

func testLog() zerolog.Logger {
	return zerolog.Nop()
}

func primaryPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "primary.trc")
}
