package binary

import (
	"bytes"
	"encoding/binary"

	machotypes "github.com/blacktop/go-macho/types"
)

// Mach-O 64 file header and protection/thread-state constants
// (original_source/src/binary/format/mach/{compile,command}.rs, spec.md
// §6 "Binary format"). These are raw Mach-O ABI values, not library
// symbols: the go-macho module pinned in go.mod exposes load-command
// identifiers (machotypes.LC_SEGMENT_64, machotypes.LC_UNIXTHREAD) that
// this file uses directly below, but its FileHeader/VM_PROT/CPU_TYPE
// constant and Segment64/UnixThreadCmd wire-struct names were not present
// in any retrieved reference material, and guessing an unverifiable
// struct layout for a dependency that is never compiled against here
// would risk silently miswriting the one part of this linker that must
// match the Mach-O ABI exactly (the file header and command bytes). See
// DESIGN.md for the full reasoning; the segment/thread commands below are
// hand-rolled wire structs built from these well-documented ABI
// constants instead.
const (
	machMagic64         = 0xfeedfacf
	cpuTypeX86_64       = 0x01000007
	cpuSubtypeX86_64All = 0x3
	machExecute         = 0x2
	machNoUndefs        = 0x1

	vmProtNone    = 0x0
	vmProtRead    = 0x1
	vmProtWrite   = 0x2
	vmProtExecute = 0x4

	x86ThreadState64   = 4
	threadStateWords   = 21
	instructionPointer = 16 // index of RIP within the x86_thread_state64 word array.

	machHeaderSize    = 32
	segmentCommandSize = 72
	threadCommandSize  = 16 + threadStateWords*8
)

// segmentCommand64 mirrors the Mach-O on-disk `segment_command_64`
// layout (original_source/src/binary/format/mach/segment.rs
// `BinarySegment`/`SegmentCommand64`): 16-byte name, four 64-bit
// fields, then four 32-bit fields. Every field already falls on its own
// natural alignment boundary in this order, so binary.Write serializes
// it with no compiler-inserted padding.
type segmentCommand64 struct {
	Cmd      machotypes.LoadCmd
	CmdSize  uint32
	Name     [16]byte
	Addr     uint64
	Memsz    uint64
	Offset   uint64
	Filesz   uint64
	Maxprot  uint32
	Prot     uint32
	Nsect    uint32
	Flag     uint32
}

// unixThreadCommand mirrors `thread_command` + a trailing
// x86_thread_state64_t payload (original_source/src/binary/format/mach/
// command.rs `UnixThreadCommand`): the entry point is written into the
// RIP slot of an otherwise zeroed 21-word state array.
type unixThreadCommand struct {
	Cmd     machotypes.LoadCmd
	CmdSize uint32
	Flavor  uint32
	Count   uint32
	State   [threadStateWords]uint64
}

func segmentName(name string) [16]byte {
	var out [16]byte
	copy(out[:], name)
	return out
}

func buildSegmentCommand(name string, addr, size, filesize uint64, prot uint32) segmentCommand64 {
	return segmentCommand64{
		Cmd: machotypes.LC_SEGMENT_64, CmdSize: segmentCommandSize, Name: segmentName(name),
		Addr: addr, Memsz: size, Filesz: filesize, Maxprot: prot, Prot: prot,
	}
}

func buildThreadCommand(entry Address) unixThreadCommand {
	var state [threadStateWords]uint64
	state[instructionPointer] = entry
	return unixThreadCommand{
		Cmd: machotypes.LC_UNIXTHREAD, CmdSize: threadCommandSize,
		Flavor: x86ThreadState64, Count: threadStateWords * 8 / 4, State: state,
	}
}

func totalLen(data [][]byte) int {
	n := 0
	for _, d := range data {
		n += len(d)
	}
	return n
}

// segmentProtFor describes one entry Segment's Mach-O shape. filesize is
// the number of bytes the segment actually occupies on disk: equal to
// its virtual size for Text/Data, zero for a zero-filled Reserve run
// (original_source/src/binary/format/mach/segment.rs distinguishes
// `file_size` from the segment's address-space `size` for exactly this
// reason).
func segmentProtFor(kind SegmentKind) (name string, size, filesize uint64, data [][]byte, prot uint32) {
	switch k := kind.(type) {
	case SegmentText:
		n := uint64(totalLen(k.Data))
		return "__TEXT", n, n, k.Data, vmProtExecute | vmProtRead
	case SegmentData:
		n := uint64(totalLen(k.Data))
		return "__DATA", n, n, k.Data, vmProtRead | vmProtWrite
	case SegmentReserve:
		return "__DATA", uint64(k.Size), 0, nil, vmProtRead | vmProtWrite
	default:
		return "", 0, 0, nil, vmProtNone
	}
}

// compileMachO assembles a Mach-O 64 executable from segs
// (original_source/src/binary/format/mach/compile.rs `compile`):
// __PAGEZERO, a __TEXT segment covering the header and load commands,
// one LC_SEGMENT_64 per entry segment, and an LC_UNIXTHREAD pointing at
// entry. File offsets are page-aligned the same way compile.rs's
// `fill_page` pads them.
func compileMachO(segs []Segment, entry Address) []byte {
	cmds := make([]segmentCommand64, len(segs))
	for i, s := range segs {
		name, size, filesize, _, prot := segmentProtFor(s.Kind)
		cmds[i] = buildSegmentCommand(name, uint64(s.Address), size, filesize, prot)
	}

	zero := buildSegmentCommand("__PAGEZERO", 0, pageSize, 0, vmProtNone)
	header := buildSegmentCommand("__TEXT", pageSize, 0, 0, vmProtExecute|vmProtRead)
	thread := buildThreadCommand(entry)

	ncmds := uint32(2 + len(cmds) + 1)
	cmdSize := uint32(segmentCommandSize)*uint32(2+len(cmds)) + uint32(threadCommandSize)

	offset := Address(machHeaderSize) + Address(cmdSize)
	header.Filesz = uint64(offset)
	header.Memsz = uint64(offset)

	var body bytes.Buffer
	for i, s := range segs {
		pad := ceiling(offset, pageSize) - offset
		body.Write(make([]byte, pad))
		offset += pad
		cmds[i].Offset = uint64(offset)

		_, _, _, data, _ := segmentProtFor(s.Kind)
		for _, d := range data {
			body.Write(d)
			offset += Address(len(d))
		}
	}
	pad := ceiling(offset, pageSize) - offset
	body.Write(make([]byte, pad))

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, struct {
		Magic, CPUType, CPUSubtype, FileType, NCmds, SizeOfCmds, Flags, Reserved uint32
	}{machMagic64, cpuTypeX86_64, cpuSubtypeX86_64All, machExecute, ncmds, cmdSize, machNoUndefs, 0})
	binary.Write(&out, binary.LittleEndian, zero)
	binary.Write(&out, binary.LittleEndian, header)
	for _, c := range cmds {
		binary.Write(&out, binary.LittleEndian, c)
	}
	binary.Write(&out, binary.LittleEndian, thread)
	out.Write(body.Bytes())
	return out.Bytes()
}
