package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/generate/x86"
	"lucent/src/node"
)

func TestPatchRelativeWritesForwardCallDisplacement(t *testing.T) {
	caller := node.FPath{Path: node.NewPath("caller"), Overload: 0}
	callee := node.FPath{Path: node.NewPath("callee"), Overload: 0}

	// e8 <rel32>; the call instruction's opcode byte then a 4-byte
	// placeholder at offset 1.
	section := &x86.Section{
		Bytes:    []byte{0xE8, 0, 0, 0, 0},
		Relative: []x86.Relative{{Offset: 1, Target: callee}},
	}
	entries := []Entry{{Path: caller, Address: 0x1000, Section: section}}
	addresses := map[node.FPath]Address{caller: 0x1000, callee: 0x1010}

	require.NoError(t, patchRelative(entries, addresses))

	// other(0x1010) - (base 0x1000 + offset 1 + 4) = 0x1010 - 0x1005 = 0xB.
	var value int32
	value |= int32(section.Bytes[1])
	value |= int32(section.Bytes[2]) << 8
	value |= int32(section.Bytes[3]) << 16
	value |= int32(section.Bytes[4]) << 24
	assert.Equal(t, int32(0xB), value)
}

func TestPatchRelativeFailsOnUnresolvedTarget(t *testing.T) {
	caller := node.FPath{Path: node.NewPath("caller"), Overload: 0}
	missing := node.FPath{Path: node.NewPath("missing"), Overload: 0}

	section := &x86.Section{
		Bytes:    []byte{0xE8, 0, 0, 0, 0},
		Relative: []x86.Relative{{Offset: 1, Target: missing}},
	}
	entries := []Entry{{Path: caller, Address: 0x1000, Section: section}}

	err := patchRelative(entries, map[node.FPath]Address{caller: 0x1000})
	assert.Error(t, err)
}

func TestPatchRel32RejectsOutOfRangeOffset(t *testing.T) {
	err := patchRel32(make([]byte, 2), 0, 1)
	assert.Error(t, err)
}
