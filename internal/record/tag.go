// Package record defines the on-disk trace record format: a tagged union
// of fixed-size payloads, each prefixed by a 4-byte tag that doubles as an
// ASCII mnemonic for diagnostics.
package record

import "encoding/binary"

// Tag identifies a record variant. Values are stable on-disk constants,
// stored little-endian, and readable as 4-character ASCII mnemonics.
type Tag uint32

func mnemonic(s string) Tag {
	var b [4]byte
	copy(b[:], s)
	return Tag(binary.LittleEndian.Uint32(b[:]))
}

// Record tags, one per variant in the producer's wire format.
var (
	TagBB        = mnemonic("BB")
	TagLoop      = mnemonic("LOOP")
	TagRead      = mnemonic("READ")
	TagWrite     = mnemonic("WRIT")
	TagException = mnemonic("EXCP")
	TagModule    = mnemonic("MOD")
	TagSymbol    = mnemonic("SYM")
	TagLibCall   = mnemonic("LCAL")
	TagLibRet    = mnemonic("LRET")
	TagAppCall   = mnemonic("ACAL")
	TagAppRet    = mnemonic("ARET")
	TagWndProc   = mnemonic("WND")
	TagSync      = mnemonic("SYNC")
	TagArgs      = mnemonic("ARGS")
	TagString    = mnemonic("STR")
	// TagNone is the peek sentinel returned at EOF; it never appears on disk.
	TagNone Tag = 0
)

// String renders a tag as its ASCII mnemonic for diagnostics by printing
// the raw 4 bytes of the tag, with trailing NUL padding dropped.
func (t Tag) String() string {
	if t == TagNone {
		return "<none>"
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(t))
	n := 4
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}

// nameBufLen bounds the name/value payload of MODULE, SYMBOL and STRING
// records. The producer truncates names beyond this length.
const nameBufLen = 64

// payloadLen returns the number of bytes following the 4-byte tag for a
// fixed-size record of this tag, or -1 for an unknown tag. Fetch uses this
// to know how many bytes to consume once the tag has been peeked.
func payloadLen(t Tag) int {
	switch t {
	case TagBB, TagLoop:
		return 4 // pc
	case TagRead, TagWrite:
		return 8 // address, size
	case TagException:
		return 8 // code, address
	case TagModule:
		return 8 + nameBufLen // base, size, name
	case TagSymbol:
		return 4 + nameBufLen // func, name
	case TagLibCall:
		return 12 // func, ret_addr, arg
	case TagLibRet:
		return 12 // func, ret_addr, retval
	case TagAppCall, TagAppRet:
		return 8 // reserved, unused
	case TagWndProc:
		return 12 // umsg, wparam, lparam
	case TagSync:
		return 12 // handle, seq, kind
	case TagArgs:
		return 12 // three u32 values
	case TagString:
		return nameBufLen // bounded bytes
	default:
		return -1
	}
}

// RecordLen returns the total on-disk length of a record with this tag,
// tag bytes included, or -1 for an unknown tag.
func RecordLen(t Tag) int {
	n := payloadLen(t)
	if n < 0 {
		return -1
	}
	return 4 + n
}
