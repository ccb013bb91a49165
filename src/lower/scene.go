// Package lower implements H-IR -> L-IR lowering (spec.md §4.4): every
// H-IR node lowers to either an LNode (nonzero-size type, or Never) or an
// LUnit (zero-size, for-effect-only statement). It sits directly above
// src/inference, consuming one item's already-checked Types the same way
// original_source/src/lower/node.rs and unit.rs consume scene.types.
package lower

import (
	"lucent/src/inclusion"
	"lucent/src/inference"
	"lucent/src/node"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
	"lucent/src/span"
	"lucent/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Scene is the per-item lowering context threaded through Lower/Unit
// (original_source/src/lower/mod.rs Scene). It is built directly on top
// of inference.Scene's established shape, since lowering walks the same
// per-item H-IR/Types pair one stage later, rather than re-deriving a
// parallel Resolver/Tables/Cache wiring of its own.
type Scene struct {
	Scope      *query.Scope
	Resolver   *inclusion.Resolver
	Tables     *parse.Tables
	Offsets    *Tables
	Cache      *source.Cache
	RootFile   string
	Inclusions *node.Inclusions
	Symbol     node.Path
	Target     util.Target
	Value      *node.Value
	Types      *inference.Types

	targets    map[node.Variable]node.LTarget
	generation int
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewScene starts a Scene for lowering one item's already-checked body.
func NewScene(scope *query.Scope, resolver *inclusion.Resolver, tables *parse.Tables, offsets *Tables,
	cache *source.Cache, rootFile string, inclusions *node.Inclusions, symbol node.Path,
	target util.Target, value *node.Value, types *inference.Types) *Scene {
	return &Scene{
		Scope: scope, Resolver: resolver, Tables: tables, Offsets: offsets, Cache: cache,
		RootFile: rootFile, Inclusions: inclusions, Symbol: symbol, Target: target,
		Value: value, Types: types, targets: make(map[node.Variable]node.LTarget),
	}
}

// node returns the HNode at index.
func (s *Scene) node(index node.HIndex) node.HNode { return s.Value.At(index) }

// span returns the item-relative span of the node at index.
func (s *Scene) span(index node.HIndex) span.Item { return s.Value.Span(index) }

// kindOf returns the already-checked RType of index, or false if
// inference never recorded one (an escape node such as HUnresolved).
func (s *Scene) kindOf(index node.HIndex) (node.RType, bool) {
	kind, ok := s.Types.Nodes[index]
	return kind, ok
}

// target returns the stable LTarget a Variable lowers to, allocating one
// the first time it is seen (parameters and `let` targets are registered
// eagerly by their Let/parameter-binding site; this is the fallback for
// any variable reached before that, which should not happen in
// well-typed input but keeps lowering total rather than panicking).
func (s *Scene) target(variable node.Variable) node.LTarget {
	if t, ok := s.targets[variable]; ok {
		return t
	}
	t := node.LTarget{Variable: variable}
	s.targets[variable] = t
	return t
}

// local allocates a fresh synthetic stack slot for an anonymous temporary
// backing an array/structure/slice literal (original_source/src/lower/
// mod.rs Scene::local, a frame-offset bump allocator there). Frame layout
// itself is decided later by src/generate/x86's register/stack allocator,
// not during lowering, so here it is simply a fresh synthetic Variable
// that src/generate/x86 will assign a stack slot to like any other local.
func (s *Scene) local() node.LTarget {
	s.generation++
	v := node.Variable{Name: "%tmp", Generation: s.generation}
	t := node.LTarget{Variable: v}
	s.targets[v] = t
	return t
}

// emit records a diagnostic against this Scene's Scope.
func (s *Scene) emit(d query.Diagnostic) {
	if s.Scope != nil {
		s.Scope.Emit(d)
	}
}
