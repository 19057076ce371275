// Package source implements the raw, length-framed packet-batch reader
// underlying a per-thread trace file. It is treated as a byte-stream
// source: callers pull successive batches of record bytes and are not
// expected to understand tag framing at this layer.
package source

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// lengthPrefixSize is the width of the batch length prefix, little-endian,
// matching the convention used by length-framed packet protocols across
// the instrumentation pipeline.
const lengthPrefixSize = 4

// ChunkReader reads a file that is a concatenation of length-framed
// packet batches: a uint32 little-endian length followed by that many
// bytes of raw record data.
type ChunkReader struct {
	f  *os.File
	br *bufio.Reader
}

// Open opens path for reading and prepares a block-aligned buffered
// reader over it.
func Open(path string) (*ChunkReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &ChunkReader{f: f, br: bufio.NewReaderSize(f, 1<<20)}, nil
}

// Close releases the underlying file handle.
func (c *ChunkReader) Close() error {
	return c.f.Close()
}

// NextBatch reads the next length-framed batch of record bytes. It
// returns io.EOF when the file ends cleanly on a batch boundary, and
// io.ErrUnexpectedEOF when a length prefix or batch body is truncated.
// Both are treated identically by callers as "no more data".
func (c *ChunkReader) NextBatch() ([]byte, error) {
	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(c.br, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	}

	size := binary.LittleEndian.Uint32(lenBuf[:])
	if size == 0 {
		return nil, io.EOF
	}

	batch := make([]byte, size)
	if _, err := io.ReadFull(c.br, batch); err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	return batch, nil
}
