// Package span provides the absolute and item-relative source location
// model used by diagnostics (spec.md §3 "Span Model" / §4.1 Diagnostics).
package span

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// FileID identifies a file within the source cache.
type FileID uint32

// Span is an absolute byte range within a single file, used once a
// diagnostic is ready for presentation.
type Span struct {
	File  FileID
	Start int
	End   int
}

// Item is a span relative to the start of the enclosing item's source text
// (a function, structure, static, or annotation value). H-IR and L-IR nodes
// carry Item spans so that Value arenas can be compared/cached independent
// of their absolute position in the file; Lift resolves one to an absolute
// Span given the item's own absolute starting offset.
type Item struct {
	Start int
	End   int
}

// Lift converts an item-relative span into an absolute Span given the file
// and absolute byte offset at which the enclosing item begins.
func (i Item) Lift(file FileID, base int) Span {
	return Span{File: file, Start: base + i.Start, End: base + i.End}
}

// S wraps a value of type T together with the item-relative span it was
// parsed from. It is the Go analogue of the original Rust `S<T>` spanned
// wrapper (original_source/src/node/position.rs).
type S[T any] struct {
	Node T
	Span Item
}

// New wraps node with span.
func New[T any](node T, span Item) S[T] {
	return S[T]{Node: node, Span: span}
}

// Map applies f to the wrapped node, preserving the span.
func Map[T, U any](s S[T], f func(T) U) S[U] {
	return S[U]{Node: f(s.Node), Span: s.Span}
}
