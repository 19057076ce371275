package flamegraph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyTerminator(t *testing.T) {
	require.Equal(t, TermJmp, ClassifyTerminator("jmp 0x1000"))
	require.Equal(t, TermJmp, ClassifyTerminator("jne 0x1000"))
	require.Equal(t, TermCall, ClassifyTerminator("call 0x2000"))
	require.Equal(t, TermRet, ClassifyTerminator("ret"))
	require.Equal(t, TermNone, ClassifyTerminator("mov eax, ebx"))
}

func TestParseCSVRowSymbolAndBlock(t *testing.T) {
	g := NewGraph()

	b, ok := g.ParseCSVRow([]string{"symbol", "100"})
	require.True(t, ok)
	require.Equal(t, Block{Kind: KindSymbol, EntryPC: 100}, b)
	g.AddBlock(b)

	b, ok = g.ParseCSVRow([]string{"block", "200", "_", "220", "_", "call 0x300"})
	require.True(t, ok)
	require.Equal(t, Block{Kind: KindBlock, EntryPC: 200, EndPC: 220, Term: TermCall}, b)
	g.AddBlock(b)

	require.True(t, g.BlockExists(100))
	require.True(t, g.BlockExists(200))
	require.False(t, g.BlockExists(999))
}

func TestParseCSVRowSkipsDuplicatesAndUnknown(t *testing.T) {
	g := NewGraph()
	b, _ := g.ParseCSVRow([]string{"symbol", "1"})
	g.AddBlock(b)

	_, ok := g.ParseCSVRow([]string{"symbol", "1"})
	require.False(t, ok, "already known entry pc")

	_, ok = g.ParseCSVRow([]string{"comment", "whatever"})
	require.False(t, ok)

	_, ok = g.ParseCSVRow([]string{"block", "2"})
	require.False(t, ok, "too few columns for a block row")
}

func TestStepFoldsCallIntoDeeperStack(t *testing.T) {
	g := NewGraph()
	callBlock, _ := g.ParseCSVRow([]string{"block", "10", "_", "12", "_", "call 0x20"})
	g.AddBlock(callBlock)

	g.Step(1, 10) // enter the call block
	g.Step(1, 20) // callee entry: stack should now be [10, 20]

	require.Contains(t, g.counts, foldKey([]uint64{10, 20}))
}

func TestStepReplacesTopOnNonCallNonRet(t *testing.T) {
	g := NewGraph()
	g.Step(1, 10)
	g.Step(1, 11)

	require.Contains(t, g.counts, foldKey([]uint64{11}))
	require.NotContains(t, g.counts, foldKey([]uint64{10, 11}))
}

func TestPrintWritesCollapsedFormat(t *testing.T) {
	g := NewGraph()
	g.Step(1, 10)

	var buf bytes.Buffer
	require.NoError(t, g.Print(&buf))
	require.Contains(t, buf.String(), "a 1")
}
