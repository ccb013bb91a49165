package query

// Key identifies a single memoized computation (spec.md §4.1 "Each query is
// identified by a typed key"). Concrete key types live alongside the table
// that uses them (src/parse, src/inference, src/lower, src/generate/x86,
// src/binary) and must be comparable structs so they can be used as map
// keys directly. Kind groups keys by owning Table so the Context registry
// (see context.go) can route Invalidate/CollectErrors without reflection.
type Key interface {
	String() string
	Kind() string
}
