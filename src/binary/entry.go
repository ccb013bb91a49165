package binary

import (
	"lucent/src/generate/x86"
	"lucent/src/node"
)

// Entry is one present function placed at an address, ready to be
// patched and emitted (original_source/src/binary/entry.rs `Entry`).
// Variable/Module entries never arise here: original_source's own
// `Entity::Variable` arm is `unimplemented!()`, and modules carry no
// code of their own, so every Entry this linker ever builds wraps a
// function.
type Entry struct {
	Path    node.FPath
	Address Address
	Size    SymbolSize
	Section *x86.Section
}

// SegmentKind distinguishes what a merged Segment holds
// (original_source/src/binary/entry.rs `SegmentKind`).
type SegmentKind interface{ isSegmentKind() }

// SegmentText is a run of executable function bodies.
type SegmentText struct{ Data [][]byte }

// SegmentData is a run of initialized data (reserved for a future
// Variable entity kind; see the Entry doc comment above).
type SegmentData struct{ Data [][]byte }

// SegmentReserve is a run of zero-initialized space of Size bytes.
type SegmentReserve struct{ Size SymbolSize }

func (SegmentText) isSegmentKind()    {}
func (SegmentData) isSegmentKind()    {}
func (SegmentReserve) isSegmentKind() {}

// Segment is a contiguous run of same-kind entries at a shared base
// address (original_source/src/binary/entry.rs `Segment`), the unit
// format/mach/compile.rs turns into one Mach-O LC_SEGMENT_64.
type Segment struct {
	Address Address
	Kind    SegmentKind
}

// buildEntries wraps every present function's section at its assigned
// address (original_source/src/binary/entry.rs `entries`).
func buildEntries(order []node.FPath, addresses map[node.FPath]Address, sections map[node.FPath]*x86.Section) []Entry {
	entries := make([]Entry, 0, len(order))
	for _, path := range order {
		section := sections[path]
		entries = append(entries, Entry{
			Path:    path,
			Address: addresses[path],
			Size:    SymbolSize(len(section.Bytes)),
			Section: section,
		})
	}
	return entries
}

// segments merges contiguous, same-kind entries into Mach-O segments
// (original_source/src/binary/entry.rs `segments`): entries are taken in
// the order given, and an entry joins the previous run only when it
// starts exactly where that run ends; any other entry (for example one an
// `@load` annotation placed elsewhere) opens a new segment.
func segments(entries []Entry) []Segment {
	var segs []Segment
	for _, e := range entries {
		if len(segs) > 0 {
			last := &segs[len(segs)-1]
			if text, ok := last.Kind.(SegmentText); ok && last.Address+Address(totalLen(text.Data)) == e.Address {
				last.Kind = SegmentText{Data: append(text.Data, e.Section.Bytes)}
				continue
			}
		}
		segs = append(segs, Segment{
			Address: e.Address,
			Kind:    SegmentText{Data: [][]byte{e.Section.Bytes}},
		})
	}
	return segs
}
