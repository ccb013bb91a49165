// Package node holds the data model shared by every later stage of the
// pipeline: paths and symbols (spec.md §3 "Path"/"Symbol"/"Variable"), the
// H-IR value graph, the H/R type languages, and the L-IR produced by
// lowering. Keeping them in one package mirrors the teacher's ir package,
// which likewise holds node kinds, the symbol table and validated types
// together (src/ir/nodetype.go, src/ir/symtab.go).
package node

import (
	"strings"

	"lucent/src/span"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Identifier is a single bare name, e.g. a field, variable or path
// segment.
type Identifier string

// Path is a module-qualified name rooted at Root (spec.md §3 "Path"): a
// reverse-linked list of segments in the original design, represented here
// as a joined string so that two paths with identical segment sequences
// compare equal with Go's built-in == and can be used directly as map
// keys, without requiring manual Eq/Hash implementations the way the
// Rust original needed a derive macro for.
type Path struct {
	joined string
}

// sep is never a legal Lucent identifier character, so it cannot collide
// with a real segment.
const sep = "\x00"

// ---------------------
// ----- Functions -----
// ---------------------

// Root is the empty path every module-qualified name descends from.
var Root = Path{}

// NewPath builds a Path from its segments in root-to-leaf order.
func NewPath(segments ...string) Path {
	return Path{joined: strings.Join(segments, sep)}
}

// Child returns the path formed by appending segment to p.
func (p Path) Child(segment string) Path {
	if p.joined == "" {
		return Path{joined: segment}
	}
	return Path{joined: p.joined + sep + segment}
}

// Segments returns the path's segments in root-to-leaf order.
func (p Path) Segments() []string {
	if p.joined == "" {
		return nil
	}
	return strings.Split(p.joined, sep)
}

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool {
	return p.joined == ""
}

// String renders the path dot-separated, e.g. "a.b.c".
func (p Path) String() string {
	return strings.Join(p.Segments(), ".")
}

// HPath is the parsed variant of Path: each segment carries the span it
// was written at, so a resolution error can point at the exact offending
// segment.
type HPath struct {
	Segments []HSegment
}

// HSegment is one parsed path segment with its source span.
type HSegment struct {
	Name Identifier
	Span span.Item
}

// Path projects an HPath down to a plain Path for use as a hash key.
func (h HPath) Path() Path {
	segments := make([]string, len(h.Segments))
	for i, s := range h.Segments {
		segments[i] = string(s.Name)
	}
	return NewPath(segments...)
}

// String renders the underlying path.
func (h HPath) String() string {
	return h.Path().String()
}

// SymbolKind tags a Symbol's referent kind.
type SymbolKind int

// SymbolKind values (spec.md §3 "Symbol").
const (
	SymModule SymbolKind = iota
	SymFunction
	SymStructure
	SymStatic
	SymLibrary
	SymGlobal
)

// Symbol is a tagged reference used as a query key and diagnostic anchor
// (spec.md §3 "Symbol"). Overload is only meaningful for SymFunction; Name
// is only meaningful for SymGlobal.
type Symbol struct {
	Kind     SymbolKind
	Path     Path
	Overload int
	Name     Identifier
}

// Module returns a Symbol referring to a module.
func Module(path Path) Symbol { return Symbol{Kind: SymModule, Path: path} }

// Function returns a Symbol referring to one overload of a function.
func Function(path Path, overload int) Symbol {
	return Symbol{Kind: SymFunction, Path: path, Overload: overload}
}

// Structure returns a Symbol referring to a structure.
func Structure(path Path) Symbol { return Symbol{Kind: SymStructure, Path: path} }

// Static returns a Symbol referring to a static.
func Static(path Path) Symbol { return Symbol{Kind: SymStatic, Path: path} }

// Library returns a Symbol referring to a library annotation block.
func Library(path Path) Symbol { return Symbol{Kind: SymLibrary, Path: path} }

// Global returns a Symbol referring to a global annotation.
func Global(name Identifier) Symbol { return Symbol{Kind: SymGlobal, Name: name} }

// String renders the symbol as "kind path#overload" / "kind path".
func (s Symbol) String() string {
	switch s.Kind {
	case SymModule:
		return "module " + s.Path.String()
	case SymFunction:
		return FPath{Path: s.Path, Overload: s.Overload}.String()
	case SymStructure:
		return "structure " + s.Path.String()
	case SymStatic:
		return "static " + s.Path.String()
	case SymLibrary:
		return "library " + s.Path.String()
	case SymGlobal:
		return "global " + string(s.Name)
	default:
		return "symbol?"
	}
}

// FPath is a function path paired with its overload index (spec.md
// Glossary "Overload index"). Lowering reads this pair and never
// re-resolves the overload (spec.md §9 "Overload dispatch").
type FPath struct {
	Path     Path
	Overload int
}

// String renders "path#overload", matching spec.md §8 scenario 2's
// rendering of the ambiguous-overload note.
func (f FPath) String() string {
	return f.Path.String() + "#" + itoa(f.Overload)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Variable is an identifier disambiguated by a shadowing generation
// (spec.md §3 "Variable"). `let x = 1; let x = 2;` produces Variable{"x",0}
// and Variable{"x",1}.
type Variable struct {
	Name       Identifier
	Generation int
}

// String renders "name" for generation 0 and "name'generation" otherwise.
func (v Variable) String() string {
	if v.Generation == 0 {
		return string(v.Name)
	}
	return string(v.Name) + "'" + itoa(v.Generation)
}
