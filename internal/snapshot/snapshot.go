// Package snapshot serializes and restores the Symbol Table to a
// persistable byte stream, tagged with a four-byte magic, and writes a
// one-way diagnostic dump of the Sync Registry and thread states.
package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bbtrace/bbreplay/internal/symtab"
)

// symbolsMagic is the ASCII bytes "symb" read as a little-endian uint32,
// i.e. 0x626D7973.
const symbolsMagic uint32 = 0x626D7973

// maxNameLen bounds a serialized symbol name; longer names are truncated,
// matching the original SaveSymbols behavior.
const maxNameLen = 255

// SaveSymbols writes the symbol table to w: magic "symb", a u32 count,
// then per entry a u32 address, a u8 name length, and that many bytes of
// name.
func SaveSymbols(w io.Writer, t *symtab.Table) error {
	bw := bufio.NewWriter(w)

	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], symbolsMagic)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(t.Len())); err != nil {
		return err
	}

	var writeErr error
	t.Each(func(addr uint32, name string) {
		if writeErr != nil {
			return
		}
		if len(name) > maxNameLen {
			name = name[:maxNameLen]
		}
		if err := binary.Write(bw, binary.LittleEndian, addr); err != nil {
			writeErr = err
			return
		}
		if err := bw.WriteByte(byte(len(name))); err != nil {
			writeErr = err
			return
		}
		if _, err := bw.WriteString(name); err != nil {
			writeErr = err
			return
		}
	})
	if writeErr != nil {
		return writeErr
	}

	return bw.Flush()
}

// seeker is the minimal interface RestoreSymbols needs to rewind past a
// non-matching magic without consuming it.
type seeker interface {
	io.Reader
	io.Seeker
}

// RestoreSymbols reads a symbols chunk written by SaveSymbols. If the
// next four bytes are not the magic, it seeks back to the position it
// started at and returns without error or modifying t. This is a
// no-op, not a failure: it tolerates snapshot files that predate the
// symbols section.
func RestoreSymbols(r seeker, t *symtab.Table) error {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	var magic [4]byte
	n, err := io.ReadFull(r, magic[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			_, serr := r.Seek(start, io.SeekStart)
			return serr
		}
		return err
	}
	if n != 4 || binary.LittleEndian.Uint32(magic[:]) != symbolsMagic {
		_, err := r.Seek(start, io.SeekStart)
		return err
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("snapshot: read symbol count: %w", err)
	}

	entries := make(map[uint32]string, count)
	for i := uint32(0); i < count; i++ {
		var addr uint32
		if err := binary.Read(r, binary.LittleEndian, &addr); err != nil {
			return fmt.Errorf("snapshot: read symbol address: %w", err)
		}
		var nameLen [1]byte
		if _, err := io.ReadFull(r, nameLen[:]); err != nil {
			return fmt.Errorf("snapshot: read symbol name length: %w", err)
		}
		name := make([]byte, nameLen[0])
		if _, err := io.ReadFull(r, name); err != nil {
			return fmt.Errorf("snapshot: read symbol name: %w", err)
		}
		entries[addr] = string(name)
	}

	t.Replace(entries)
	return nil
}
