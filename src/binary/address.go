// Package binary is the linker named in spec.md §4.6: it assigns load and
// virtual addresses to every present function, patches the rel32 call
// fixups src/generate/x86 left unresolved, merges contiguous entries into
// segments, and emits a Mach-O 64 executable (original_source/src/binary/
// {compile,entry,patch}.rs plus original_source/src/node/{address,
// present}.rs).
package binary

import "lucent/src/node"

// Address is an absolute byte address, on disk or at runtime
// (original_source/src/node/address.rs `Address`).
type Address = uint64

// SymbolSize is a symbol's encoded size in bytes
// (original_source/src/node/address.rs `SymbolSize`).
type SymbolSize = uint64

// DefaultLoad is the address the first unannotated function is placed at
// (original_source/src/binary/format/mach/compile.rs's hardcoded entry
// constant and address.rs's own annotation-shortcut placeholder, both
// `1024 * 1024`, each marked `// TODO: derive from annotation`).
const DefaultLoad Address = 1024 * 1024

// pageSize is the Mach-O page/alignment granularity (spec.md §6 "Page
// size is 4096").
const pageSize = 4096

// ceiling rounds value up to the next multiple of align
// (original_source/src/other.rs `ceiling`, used by both address.rs's
// `align` and format/mach/compile.rs's `fill_page`).
func ceiling(value, align Address) Address {
	if rem := value % align; rem != 0 {
		return value + (align - rem)
	}
	return value
}

// addressing assigns a load address to every path in order, honoring an
// explicit `@load` annotation where one is recorded and otherwise walking
// forward from the previous symbol's end (original_source/src/node/
// address.rs `load`/`start`/`align`). The original derives this order
// from a global table of predecessor links built while items are first
// registered; this port has no such table, so `order` (produced by
// walking the module tree in a deterministic, sorted-by-path order) takes
// its place directly — see DESIGN.md for the tradeoff this accepts.
// Functions never need the `crossing kinds pads to 4096` alignment rule:
// original_source/src/binary/entry.rs leaves Symbol::Variable entirely
// unimplemented, so every entry this port ever builds is a function, and
// function-to-function boundaries never cross a "kind".
func addressing(order []node.FPath, sizes map[node.FPath]SymbolSize, annotated map[node.FPath]Address) map[node.FPath]Address {
	addresses := make(map[node.FPath]Address, len(order))
	cursor := DefaultLoad
	for _, path := range order {
		if load, ok := annotated[path]; ok {
			cursor = load
		}
		addresses[path] = cursor
		cursor += sizes[path]
	}
	return addresses
}
