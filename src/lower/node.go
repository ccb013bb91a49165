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

// Lower lowers index into an expression (spec.md §4.4 "Expression
// lowering"). The size of its type must not be zero unless the type is
// Never (spec.md §8 property 3), grounded on original_source/src/lower/
// node.rs `lower`.
func Lower(s *Scene, index node.HIndex, looped bool) (node.LNode, bool) {
	kind, ok := s.kindOf(index)
	if !ok {
		return nil, false
	}
	sp := s.span(index)

	if _, never := kind.(node.RNever); never {
		unit, ok := Unit(s, index, looped)
		if !ok {
			return nil, false
		}
		return node.LNever{Unit: unit}, true
	}

	switch n := s.node(index).(type) {
	case node.HBlock:
		if len(n.Nodes) == 0 {
			return nil, false
		}
		rest, last := n.Nodes[:len(n.Nodes)-1], n.Nodes[len(n.Nodes)-1]
		units := make([]node.LUnit, 0, len(rest))
		for _, idx := range rest {
			u, ok := Unit(s, idx, looped)
			if !ok {
				return nil, false
			}
			units = append(units, u)
		}
		value, ok := Lower(s, last, looped)
		if !ok {
			return nil, false
		}
		return node.LBlock{Units: units, Value: value}, true

	case node.HWhen:
		return lowerWhen(s, n, looped)

	case node.HCast:
		return lowerCast(s, index, n, kind, sp, looped)

	case node.HCompile:
		return node.LCompile{Value: n.Value}, true

	case node.HCall:
		overload, ok := s.Types.Functions[index]
		if !ok {
			return nil, false
		}
		receiver := functional(s, n.Path, overload)
		args, ok := lowerArgs(s, n.Args, looped)
		if !ok {
			return nil, false
		}
		return node.LCall{Receiver: receiver, Args: args}, true

	case node.HMethod:
		receiver, ok := method(s, n.Receiver, looped)
		if !ok {
			return nil, false
		}
		args, ok := lowerArgs(s, n.Args, looped)
		if !ok {
			return nil, false
		}
		return node.LCall{Receiver: receiver, Args: args}, true

	case node.HField:
		p, ok := place(s, index, looped)
		if !ok {
			return nil, false
		}
		return node.LDereference{Place: p}, true

	case node.HNew:
		return lowerNew(s, index, n, kind, sp, looped)

	case node.HSliceNew:
		return lowerSliceNew(s, index, n, kind, sp, looped)

	case node.HSlice:
		return lowerSlice(s, index, n, kind, sp, looped)

	case node.HIndexOf:
		p, ok := indexPlace(s, n.Base, n.Index, looped)
		if !ok {
			return nil, false
		}
		return node.LDereference{Place: p}, true

	case node.HBinary:
		return lowerBinary(s, n, looped, sp)

	case node.HUnary:
		return lowerUnary(s, index, n, kind, sp, looped)

	case node.HVariable:
		return node.LDereference{Place: node.LPlace{Node: node.LTargetNode{Target: s.target(n.Variable)}}}, true

	case node.HFunctionRef:
		overload, ok := s.Types.Functions[index]
		if !ok {
			return nil, false
		}
		return node.LFunctionRef{Path: node.FPath{Path: n.Path.Path(), Overload: overload}}, true

	case node.HStaticRef:
		return node.LDereference{Place: node.LPlace{Node: node.LStaticRef{Path: n.Path.Path()}}}, true

	case node.HArray:
		return lowerArray(s, n, kind, sp, looped)

	case node.HString:
		return node.LString{Value: n.Value}, true

	case node.HRegister:
		return node.LRegister{Name: n.Name}, true

	case node.HIntegral:
		return node.LIntegral{Value: n.Value, Width: widthOf(kind)}, true

	case node.HTruth:
		v := int64(0)
		if n.Value {
			v = 1
		}
		return node.LIntegral{Value: v, Width: node.B}, true

	case node.HRune:
		return node.LIntegral{Value: int64(n.Value), Width: node.D}, true

	case node.HUnresolved, node.HError:
		return nil, false

	default:
		s.emit(query.NewDiagnostic(query.Error, "cannot lower node as expression"))
		return nil, false
	}
}

// widthOf returns the storage width of an integral-shaped RType, used to
// size an HIntegral literal once inference has pinned its type.
func widthOf(kind node.RType) node.Width {
	switch k := kind.(type) {
	case node.RIntegral:
		return k.Width
	case node.RIntegralSize:
		return pointerWidth(k.Target)
	default:
		return node.Q
	}
}

// lowerArgs lowers a call's argument list in order.
func lowerArgs(s *Scene, args []node.HIndex, looped bool) ([]node.LNode, bool) {
	out := make([]node.LNode, 0, len(args))
	for _, a := range args {
		v, ok := Lower(s, a, looped)
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// lowerWhen lowers an n-ary `when` as a right fold of `If`/else, matching
// original_source/src/lower/node.rs `HNode::When`: the branches are
// walked in reverse so each step's `else` is the previously built node.
func lowerWhen(s *Scene, n node.HWhen, looped bool) (node.LNode, bool) {
	var built node.LNode
	for i := len(n.Branches) - 1; i >= 0; i-- {
		branch := n.Branches[i]
		cond, ok := Lower(s, branch.Condition, looped)
		if !ok {
			return nil, false
		}
		body, ok := Lower(s, branch.Body, looped)
		if !ok {
			return nil, false
		}
		built = node.LIf{Condition: cond, Then: body, Else: built}
	}
	if built == nil {
		return nil, false
	}
	return built, true
}

// lowerCast lowers a cast expression by determining the (sign,
// originWidth, targetWidth) triple from the origin/target RType pair
// (spec.md §4.4 "Cast"), grounded on original_source/src/lower/node.rs
// `HNode::Cast`.
func lowerCast(s *Scene, index node.HIndex, n node.HCast, target node.RType, sp span.Item, looped bool) (node.LNode, bool) {
	origin, ok := s.kindOf(n.Node)
	if !ok {
		return nil, false
	}
	sign, originWidth, targetWidth, ok := castTriple(s, origin, target)
	if !ok {
		return nil, invalidCast(s, origin, target, sp)
	}
	value, ok := Lower(s, n.Node, looped)
	if !ok {
		return nil, false
	}
	return node.LCast{Node: value, OriginSign: sign, OriginWidth: originWidth, TargetWidth: targetWidth}, true
}

// castTriple implements the cast-lowering matrix (spec.md §4.4 "Cast"):
// within Integrals (origin's sign); IntegralSize<->Pointer of the same
// target (unsigned); Rune<->Integral(Unsigned, B|D) both directions;
// identical pointer<->function-pointer pairs whose target matches.
func castTriple(s *Scene, origin, target node.RType) (node.Sign, node.Width, node.Width, bool) {
	switch o := origin.(type) {
	case node.RIntegral:
		switch t := target.(type) {
		case node.RIntegral:
			return o.Sign, o.Width, t.Width, true
		case node.RIntegralSize:
			return o.Sign, o.Width, pointerWidth(t.Target), true
		}
	case node.RIntegralSize:
		switch t := target.(type) {
		case node.RIntegral:
			return o.Sign, pointerWidth(o.Target), t.Width, true
		case node.RIntegralSize:
			return o.Sign, pointerWidth(o.Target), pointerWidth(t.Target), true
		case node.RPointer:
			if o.Target == t.Target {
				return node.Unsigned, pointerWidth(o.Target), pointerWidth(t.Target), true
			}
		}
	case node.RPointer:
		switch t := target.(type) {
		case node.RPointer:
			if o.Target == t.Target {
				return node.Unsigned, pointerWidth(o.Target), pointerWidth(t.Target), true
			}
		case node.RIntegralSize:
			if o.Target == t.Target {
				return node.Unsigned, pointerWidth(o.Target), pointerWidth(t.Target), true
			}
		case node.RFunction:
			if target2 := functionTarget(s, t); o.Target == target2 {
				return node.Unsigned, pointerWidth(o.Target), pointerWidth(target2), true
			}
		}
	case node.RFunction:
		origin2 := functionTarget(s, o)
		switch t := target.(type) {
		case node.RPointer:
			if origin2 == t.Target {
				return node.Unsigned, pointerWidth(origin2), pointerWidth(t.Target), true
			}
		case node.RIntegralSize:
			if origin2 == t.Target {
				return node.Unsigned, pointerWidth(origin2), pointerWidth(t.Target), true
			}
		case node.RFunction:
			target2 := functionTarget(s, t)
			if origin2 == target2 {
				return node.Unsigned, pointerWidth(origin2), pointerWidth(target2), true
			}
		}
	case node.RRune:
		if t, ok := target.(node.RIntegral); ok && t.Sign == node.Unsigned && (t.Width == node.B || t.Width == node.D) {
			return node.Unsigned, node.D, t.Width, true
		}
	}
	if o, ok := origin.(node.RIntegral); ok && o.Sign == node.Unsigned && (o.Width == node.B || o.Width == node.D) {
		if _, ok := target.(node.RRune); ok {
			return node.Unsigned, o.Width, node.D, true
		}
	}
	return 0, 0, 0, false
}

// functionTarget returns a function type's pointer-width target,
// defaulting to the Scene's own target if the signature never pinned one
// (e.g. a bare `fn(...)` type lifted before a target was known).
func functionTarget(s *Scene, fn node.RFunction) util.Target {
	if fn.Signature != nil && fn.Signature.Target != nil {
		return *fn.Signature.Target
	}
	return s.Target
}
