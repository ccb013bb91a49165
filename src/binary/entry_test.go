package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/generate/x86"
	"lucent/src/node"
)

func TestBuildEntriesAndSegmentsMergeContiguousFunctions(t *testing.T) {
	a := node.FPath{Path: node.NewPath("a"), Overload: 0}
	b := node.FPath{Path: node.NewPath("b"), Overload: 0}
	order := []node.FPath{a, b}

	sections := map[node.FPath]*x86.Section{
		a: {Bytes: []byte{0x90, 0x90}},
		b: {Bytes: []byte{0xC3}},
	}
	addresses := map[node.FPath]Address{a: DefaultLoad, b: DefaultLoad + 2}

	entries := buildEntries(order, addresses, sections)
	require.Len(t, entries, 2)
	assert.Equal(t, SymbolSize(2), entries[0].Size)
	assert.Equal(t, SymbolSize(1), entries[1].Size)

	segs := segments(entries)
	require.Len(t, segs, 1, "contiguous function entries merge into one segment")
	text, ok := segs[0].Kind.(SegmentText)
	require.True(t, ok)
	assert.Equal(t, [][]byte{{0x90, 0x90}, {0xC3}}, text.Data)
	assert.Equal(t, DefaultLoad, segs[0].Address)
}
