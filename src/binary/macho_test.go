package binary

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileMachOEmitsValidHeaderAndPagedSegments(t *testing.T) {
	segs := []Segment{
		{Address: DefaultLoad, Kind: SegmentText{Data: [][]byte{{0x55, 0xC3}}}},
	}

	out := compileMachO(segs, DefaultLoad)
	require.True(t, len(out) >= machHeaderSize)

	magic := binary.LittleEndian.Uint32(out[0:4])
	assert.Equal(t, uint32(machMagic64), magic)

	ncmds := binary.LittleEndian.Uint32(out[16:20])
	assert.Equal(t, uint32(4), ncmds, "__PAGEZERO, __TEXT header, one entry segment, LC_UNIXTHREAD")

	assert.Zero(t, len(out)%pageSize, "the file's total size is page-aligned")
}
