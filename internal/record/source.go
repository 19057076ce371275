package record

import (
	"github.com/bbtrace/bbreplay/internal/source"
)

// Source is a per-thread lazy sequence of fixed-size, tagged records. It
// supports Peek (tag-only, non-consuming) and Fetch (consume one record,
// return its bytes and the new absolute file offset), buffering across
// the chunk reader's batch boundaries so callers never see a partial
// record.
type Source struct {
	chunks *source.ChunkReader
	buf    []byte // unread bytes from already-pulled batches
	pulled int64  // file bytes pulled so far, batch length prefixes included
	eof    bool   // the chunk reader has nothing more to give
}

// Open initializes the stream, returning an error if the file is
// unreadable. Mirrors the C++ LogRunner::Open / thread_info_c bin open
// contract, expressed as an idiomatic error return.
func Open(path string) (*Source, error) {
	c, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	return &Source{chunks: c}, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.chunks.Close()
}

// ensure pulls batches until at least n bytes are buffered or the stream
// is exhausted.
func (s *Source) ensure(n int) {
	for len(s.buf) < n && !s.eof {
		batch, err := s.chunks.NextBatch()
		if err != nil {
			s.eof = true
			return
		}
		s.buf = append(s.buf, batch...)
		s.pulled += batchPrefixLen + int64(len(batch))
	}
}

// batchPrefixLen is the width of the chunk reader's per-batch length
// prefix, counted when reporting absolute file offsets.
const batchPrefixLen = 4

// Peek returns the tag of the next record without consuming it, or
// TagNone at EOF.
func (s *Source) Peek() Tag {
	s.ensure(4)
	if len(s.buf) < 4 {
		return TagNone
	}
	return tagOf(s.buf[0:4])
}

func tagOf(b []byte) Tag {
	return Tag(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

// Fetch consumes one record, writes the new absolute file offset to
// *filePos, and returns the record's raw bytes. It returns ok=false when
// the stream is exhausted or the next record is truncated. Both are
// treated as EOF, and any already-buffered partial prefix is discarded.
func (s *Source) Fetch(filePos *int64) ([]byte, bool) {
	s.ensure(4)
	if len(s.buf) < 4 {
		return nil, false
	}
	tag := tagOf(s.buf[0:4])
	length := RecordLen(tag)
	if length < 0 {
		// Unknown tag: hand the caller just the tag bytes so dispatch can
		// fail hard with a clear diagnostic instead of silently hanging.
		length = 4
	}

	s.ensure(length)
	if len(s.buf) < length {
		// Truncated final record: treated as EOF, prefix discarded.
		s.buf = nil
		s.eof = true
		return nil, false
	}

	rec := s.buf[:length]
	s.buf = s.buf[length:]
	if filePos != nil {
		*filePos = s.pulled - int64(len(s.buf))
	}
	return rec, true
}
