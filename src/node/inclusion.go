package node

import (
	"fmt"

	"lucent/src/span"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// SpecificImport is one `use path as name` entry: the path it resolves
// to, anchored at the span of the import that introduced it.
type SpecificImport struct {
	Span   span.Item
	Target Path
}

// InclusionFrame is the set of names visible while resolving within one
// module: specific imports by name, plus the wildcard bases searched in
// order (spec.md §4.2 "Inclusions", grounded on
// original_source/src/parse/resolve.rs `InclusionFrame`).
type InclusionFrame struct {
	Specific map[Identifier]SpecificImport
	Wildcard []Path
}

func newInclusionFrame(module Path) *InclusionFrame {
	return &InclusionFrame{
		Specific: make(map[Identifier]SpecificImport),
		Wildcard: []Path{module},
	}
}

// Inclusions is the stack of InclusionFrames active while resolving
// names inside nested modules (spec.md §4.2 "Inclusions"): innermost
// frame's specific imports are tried first, then its wildcard bases,
// before falling back to the enclosing frame. Resolution against a
// SymbolTable (which requires the query engine) lives in package
// inclusion; this type only tracks the stack itself.
type Inclusions struct {
	Frames []*InclusionFrame
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewInclusions starts a stack rooted at root, with the global root path
// as its outermost wildcard base (spec.md §4.2).
func NewInclusions(root Path) *Inclusions {
	frame := newInclusionFrame(root)
	frame.Wildcard = append(frame.Wildcard, Root)
	return &Inclusions{Frames: []*InclusionFrame{frame}}
}

// Push enters a nested module's scope, appending a fresh frame rooted at
// module's own path. The caller must call Pop when leaving the module.
func (in *Inclusions) Push(module Identifier) {
	outer := in.Frames[len(in.Frames)-1]
	base := outer.Wildcard[0]
	in.Frames = append(in.Frames, newInclusionFrame(base.Child(string(module))))
}

// Pop leaves the most recently pushed module scope.
func (in *Inclusions) Pop() {
	in.Frames = in.Frames[:len(in.Frames)-1]
}

// Wildcard adds path as an additional base searched by the innermost
// frame (spec.md §4.2 "wildcard base paths").
func (in *Inclusions) Wildcard(path Path) {
	frame := in.Frames[len(in.Frames)-1]
	frame.Wildcard = append(frame.Wildcard, path)
}

// Specific records a `use target as name` import in the innermost frame.
// It is an error to import two different targets under the same name.
func (in *Inclusions) Specific(name Identifier, item span.Item, target Path) error {
	frame := in.Frames[len(in.Frames)-1]
	if existing, ok := frame.Specific[name]; ok {
		return fmt.Errorf("conflicting imports for %q: %s and %s", name, existing.Target, target)
	}
	frame.Specific[name] = SpecificImport{Span: item, Target: target}
	return nil
}

// Innermost returns the frame currently being resolved in, or nil if the
// stack is empty.
func (in *Inclusions) Innermost() *InclusionFrame {
	if len(in.Frames) == 0 {
		return nil
	}
	return in.Frames[len(in.Frames)-1]
}
