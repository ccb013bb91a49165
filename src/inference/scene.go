// Package inference is the bidirectional type checker (spec.md §4.3): two
// mutually recursive entry points, Synthesize and Check, walk one
// function's H-IR and record a node.RType per node index plus the
// resolved overload target of every call and bare function reference.
package inference

import (
	"lucent/src/inclusion"
	"lucent/src/node"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
	"lucent/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Types is the output of checking one item's H-IR (original_source/src/
// inference/context.rs `Types`, trimmed to the direct-check design
// spec.md §4.3 describes — no unification-variable table, since every
// node's type is decided the moment Synthesize/Check visits it).
type Types struct {
	Nodes     map[node.HIndex]node.RType
	Variables map[node.Variable]node.RType
	Functions map[node.HIndex]int // resolved overload index, keyed by the HCall/HFunctionRef node.
}

// NewTypes returns an empty Types ready for population.
func NewTypes() *Types {
	return &Types{
		Nodes:     make(map[node.HIndex]node.RType),
		Variables: make(map[node.Variable]node.RType),
		Functions: make(map[node.HIndex]int),
	}
}

// Scene is the per-item checking context threaded through every
// Synthesize/Check call (original_source/src/inference/scene.rs `Scene`).
// Scope is the query.Scope computing this item's Types, used both to emit
// diagnostics and to recurse into sibling queries (function signatures,
// structure fields, static types) through Resolver.
type Scene struct {
	Scope      *query.Scope
	Resolver   *inclusion.Resolver
	Tables     *parse.Tables
	Cache      *source.Cache
	RootFile   string
	Inclusions *node.Inclusions
	Symbol     node.Path // the module this item is declared in, for resolving its own bare references.
	Target     util.Target
	Value      *node.Value
	ReturnType node.RType // nil outside a function body.
	Types      *Types
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewScene starts a Scene for checking one item's body.
func NewScene(scope *query.Scope, resolver *inclusion.Resolver, tables *parse.Tables,
	cache *source.Cache, rootFile string, inclusions *node.Inclusions, symbol node.Path,
	target util.Target, value *node.Value, returnType node.RType) *Scene {
	return &Scene{
		Scope: scope, Resolver: resolver, Tables: tables, Cache: cache, RootFile: rootFile,
		Inclusions: inclusions, Symbol: symbol, Target: target, Value: value,
		ReturnType: returnType, Types: NewTypes(),
	}
}

// node returns the HNode at index.
func (s *Scene) node(index node.HIndex) node.HNode { return s.Value.At(index) }

// record stores kind as the type of index and returns it, matching
// scene.types.nodes.insert in synthesize.rs/check.rs: a node is recorded
// exactly once.
func (s *Scene) record(index node.HIndex, kind node.RType) node.RType {
	s.Types.Nodes[index] = kind
	return kind
}

// unknown emits "type annotations needed" and returns the zero RType.
func (s *Scene) unknown() (node.RType, bool) {
	s.emit(query.NewDiagnostic(query.Error, "type annotations needed"))
	return nil, false
}

// emit records a diagnostic against this Scene's Scope.
func (s *Scene) emit(d query.Diagnostic) {
	if s.Scope != nil {
		s.Scope.Emit(d)
	}
}

// lift converts a parsed HType into its resolved RType (original_source/
// src/inference/scene.rs `Scene::lift`). Structure references are left
// unresolved at this layer — RStructure only needs the fully-qualified
// Path, not the structure's own fields, which src/lower's offsets query
// fetches lazily when it actually needs layout.
func (s *Scene) lift(t node.HType) (node.RType, bool) {
	switch t := t.(type) {
	case node.HTVoid:
		return node.RVoid{}, true
	case node.HTNever:
		return node.RNever{}, true
	case node.HTRune:
		return node.RRune{}, true
	case node.HTTruth:
		return node.RTruth{}, true
	case node.HTIntegral:
		return node.RIntegral{Sign: t.Sign, Width: t.Width}, true
	case node.HTIntegralSize:
		return node.RIntegralSize{Target: s.Target, Sign: t.Sign}, true
	case node.HTPointer:
		elem, ok := s.lift(t.Element)
		if !ok {
			return nil, false
		}
		return node.RPointer{Target: s.Target, Element: elem}, true
	case node.HTSlice:
		elem, ok := s.lift(t.Element)
		if !ok {
			return nil, false
		}
		return node.RSlice{Target: s.Target, Element: elem}, true
	case node.HTArray:
		elem, ok := s.lift(t.Element)
		if !ok {
			return nil, false
		}
		size, ok := s.constantSize(t.Size)
		if !ok {
			return nil, false
		}
		return node.RArray{Element: elem, Size: size}, true
	case node.HTStructure:
		target, ok, err := s.Resolver.Structure(s.Scope, s.Inclusions, t.Path.Path())
		if err != nil || !ok {
			s.emit(query.NewDiagnostic(query.Error, "unresolved structure: "+t.Path.String()))
			return nil, false
		}
		return node.RStructure{Path: target}, true
	case node.HTFunction:
		sig, ok := s.liftSignature(t.Signature)
		if !ok {
			return nil, false
		}
		return node.RFunction{Signature: sig}, true
	default:
		return nil, false
	}
}

// liftSignature lifts every parameter/return type of an HSignature.
func (s *Scene) liftSignature(sig node.HSignature) (*node.Signature, bool) {
	params := make([]node.RType, len(sig.Parameters))
	for i, p := range sig.Parameters {
		t, ok := s.lift(p)
		if !ok {
			return nil, false
		}
		params[i] = t
	}
	ret, ok := s.lift(sig.Return)
	if !ok {
		return nil, false
	}
	target := s.Target
	return &node.Signature{Target: &target, Convention: sig.Convention, Parameters: params, Return: ret}, true
}

// constantSize evaluates the size expression of an array type. Only a
// bare integral literal is supported today (the common case for fixed
// buffers); anything else is a diagnostic, since full constant folding
// belongs to a future pass, not the type checker.
func (s *Scene) constantSize(index node.HIndex) (int, bool) {
	if lit, ok := s.node(index).(node.HIntegral); ok {
		return int(lit.Value), true
	}
	s.emit(query.NewDiagnostic(query.Error, "array size must be a literal integer"))
	return 0, false
}
