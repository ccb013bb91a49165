package lower

import (
	"lucent/src/node"
	"lucent/src/query"
	"lucent/src/span"
	"lucent/src/util"
)

// ---------------------
// ----- Functions -----
// ---------------------

// offsetPlace returns the LPlace for place shifted forward by amount
// bytes, used to step to a structure field or array/slice element
// (original_source/src/lower/node.rs `offset`). amount == 0 is returned
// unchanged rather than emitting a degenerate add-zero.
func offsetPlace(s *Scene, place node.LPlace, amount int, sp span.Item) node.LPlace {
	return offsetNode(s, place, node.LIntegral{Value: int64(amount), Width: pointerWidth(s.Target)}, sp)
}

// offsetNode is offsetPlace generalized to a runtime-computed byte
// offset (original_source/src/lower/node.rs `offset_node`), used by
// Index/Slice where the step is `index * element_size`.
func offsetNode(s *Scene, place node.LPlace, amount node.LNode, sp span.Item) node.LPlace {
	if lit, ok := amount.(node.LIntegral); ok && lit.Value == 0 {
		return place
	}
	width := pointerWidth(s.Target)
	return node.LPlace{Node: node.LBinary{
		Op: node.OpAdd, Sign: node.Unsigned, Width: width, Left: place.Node, Right: amount,
	}}
}

// place computes the address-producing LNode of an lvalue expression
// (original_source/src/lower/node.rs|unit.rs `place`, referenced
// throughout but never itself given in original_source; its contract is
// reconstructed here from every call site: Field/Index/Slice/Set/
// Compound resolve the base they mutate or step from, and
// Unary(Reference) takes the resulting LPlace directly as its value).
func place(s *Scene, index node.HIndex, looped bool) (node.LPlace, bool) {
	sp := s.span(index)
	switch n := s.node(index).(type) {
	case node.HVariable:
		return node.LPlace{Node: node.LTargetNode{Target: s.target(n.Variable)}}, true
	case node.HStaticRef:
		return node.LPlace{Node: node.LStaticRef{Path: n.Path.Path()}}, true
	case node.HField:
		base, ok := place(s, n.Base, looped)
		if !ok {
			return node.LPlace{}, false
		}
		kind, ok := s.kindOf(n.Base)
		if !ok {
			return node.LPlace{}, false
		}
		switch base2 := kind.(type) {
		case node.RStructure:
			offsets, err := s.Offsets.OffsetsOf(s.Scope, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, base2.Path)
			if err != nil {
				return node.LPlace{}, false
			}
			amount, ok := offsets.Fields[n.Name]
			if !ok {
				s.emit(query.NewDiagnostic(query.Error, "unknown field: "+string(n.Name)))
				return node.LPlace{}, false
			}
			return offsetPlace(s, base, amount, sp), true
		case node.RSlice:
			basePlace := node.LPlace{Node: node.LDereference{Place: base}}
			switch n.Name {
			case "address":
				return basePlace, true
			case "size":
				return offsetPlace(s, basePlace, pointerWidth(base2.Target).Bytes(), sp), true
			default:
				s.emit(query.NewDiagnostic(query.Error, "invalid slice field: "+string(n.Name)))
				return node.LPlace{}, false
			}
		default:
			s.emit(query.NewDiagnostic(query.Error, "field access on non-structure type"))
			return node.LPlace{}, false
		}
	case node.HIndexOf:
		return indexPlace(s, n.Base, n.Index, looped)
	case node.HUnary:
		if n.Op == node.OpDereference {
			value, ok := Lower(s, n.Node, looped)
			if !ok {
				return node.LPlace{}, false
			}
			return node.LPlace{Node: value}, true
		}
	}
	s.emit(query.NewDiagnostic(query.Error, "expression is not assignable"))
	return node.LPlace{}, false
}

// indexPlace computes the address of base[index] (original_source/src/
// lower/node.rs `HNode::Index`), shared between Lower's Index case and
// place's HIndexOf case.
func indexPlace(s *Scene, base, indexNode node.HIndex, looped bool) (node.LPlace, bool) {
	sp := s.span(base)
	width := pointerWidth(s.Target)
	idx, ok := Lower(s, indexNode, looped)
	if !ok {
		return node.LPlace{}, false
	}
	basePlace, ok := place(s, base, looped)
	if !ok {
		return node.LPlace{}, false
	}
	kind, ok := s.kindOf(base)
	if !ok {
		return node.LPlace{}, false
	}
	var elem node.RType
	switch k := kind.(type) {
	case node.RArray:
		elem = k.Element
	case node.RSlice:
		if !checkTarget(s, k.Target, sp, "index slice") {
			return node.LPlace{}, false
		}
		basePlace = node.LPlace{Node: node.LDereference{Place: basePlace}}
		elem = k.Element
	default:
		s.emit(query.NewDiagnostic(query.Error, "index of non-sequenced type"))
		return node.LPlace{}, false
	}
	elemSize, err := Size(s.Scope, s.Offsets, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, elem)
	if err != nil {
		return node.LPlace{}, false
	}
	step := node.LBinary{
		Op: node.OpMul, Sign: node.Unsigned, Width: width,
		Left: node.LIntegral{Value: int64(elemSize), Width: width}, Right: idx,
	}
	return offsetNode(s, basePlace, step, sp), true
}

// checkTarget validates that target matches the Scene's compile target
// (original_source/src/lower/node.rs's repeated `self::target(scene,
// target, span, "...")` guard before dereferencing through a
// Pointer/Slice's stored target). A mismatch means the value was typed
// against a different architecture than this item is being lowered for,
// which should never happen for well-formed input but is still worth a
// diagnostic rather than a silently wrong pointer width.
func checkTarget(s *Scene, target util.Target, sp span.Item, what string) bool {
	if target != s.Target {
		s.emit(query.NewDiagnostic(query.Error, "unsupported target architecture for "+what))
		return false
	}
	return true
}

// functional resolves a direct HCall's callee into an LReceiver
// (original_source/src/lower/node.rs|unit.rs `functional`): the overload
// index was already pinned by inference.Check/Synthesize into
// Types.Functions, keyed by the call node's own index, so no further
// resolution happens here.
func functional(s *Scene, path node.HPath, overload int) node.LReceiver {
	return node.LReceiverPath{Path: node.FPath{Path: path.Path(), Overload: overload}}
}

// method resolves an HMethod's receiver into an LReceiver
// (original_source/src/lower/node.rs|unit.rs `method`): the receiver
// expression is lowered to a function-pointer value, called through its
// signature's declared calling convention (or the default convention if
// none was given).
func method(s *Scene, base node.HIndex, looped bool) (node.LReceiver, bool) {
	kind, ok := s.kindOf(base)
	if !ok {
		return nil, false
	}
	fn, ok := kind.(node.RFunction)
	if !ok {
		s.emit(query.NewDiagnostic(query.Error, "method receiver is not a function"))
		return nil, false
	}
	value, ok := Lower(s, base, looped)
	if !ok {
		return nil, false
	}
	convention := node.Identifier("default")
	if fn.Signature != nil && fn.Signature.Convention != nil {
		convention = *fn.Signature.Convention
	}
	return node.LReceiverMethod{Convention: convention, Node: value}, true
}

// invalidBinary emits spec.md §7's "invalid binary operation" diagnostic
// (original_source/src/lower/binary.rs `invalid_binary`).
func invalidBinary(s *Scene, left node.RType, sp span.Item) (node.LNode, bool) {
	s.emit(query.NewDiagnostic(query.Error, "invalid binary operation on "+left.String()))
	return nil, false
}

// invalidUnary emits spec.md §7's unary-operator diagnostic.
func invalidUnary(s *Scene, kind node.RType, sp span.Item) (node.Width, bool) {
	s.emit(query.NewDiagnostic(query.Error, "invalid unary operation on "+kind.String()))
	return 0, false
}

// invalidCast emits spec.md §4.4 "Cast"'s "invalid cast" diagnostic for a
// pair of types the cast-lowering matrix does not recognize.
func invalidCast(s *Scene, origin, target node.RType, sp span.Item) bool {
	s.emit(query.NewDiagnostic(query.Error, "invalid cast from "+origin.String()+" to "+target.String()))
	return false
}
