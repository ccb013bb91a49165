package lower

import (
	"lucent/src/node"
	"lucent/src/query"
)

// ---------------------
// ----- Functions -----
// ---------------------

// Unit lowers index into a statement (spec.md §4.4 "Statement
// lowering"), grounded on original_source/src/lower/unit.rs `unit`. A
// node whose type has nonzero size, when asked to lower as a statement,
// first degrades to LUNode (its value computed and discarded) before any
// of the zero-size-specific cases below are considered, matching the
// original's `if !size.zero() { return Node(lower(...)) }` guard.
func Unit(s *Scene, index node.HIndex, looped bool) (node.LUnit, bool) {
	kind, ok := s.kindOf(index)
	if !ok {
		return nil, false
	}
	sp := s.span(index)

	size, err := Size(s.Scope, s.Offsets, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, kind)
	if err != nil {
		return nil, false
	}
	if size != 0 {
		value, ok := Lower(s, index, looped)
		if !ok {
			return nil, false
		}
		return node.LUNode{Node: value}, true
	}

	switch n := s.node(index).(type) {
	case node.HBlock:
		units := make([]node.LUnit, 0, len(n.Nodes))
		for _, idx := range n.Nodes {
			u, ok := Unit(s, idx, looped)
			if !ok {
				return nil, false
			}
			units = append(units, u)
		}
		return node.LUBlock{Units: units}, true

	case node.HLet:
		varKind, ok := s.Types.Variables[n.Variable]
		if !ok {
			return nil, false
		}
		varSize, err := Size(s.Scope, s.Offsets, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, varKind)
		if err != nil {
			return nil, false
		}
		target := s.target(n.Variable)
		if varSize != 0 {
			if n.Init != nil {
				value, ok := Lower(s, *n.Init, looped)
				if !ok {
					return nil, false
				}
				return node.LUSet{Place: node.LPlace{Node: node.LTargetNode{Target: target}}, Value: value}, true
			}
			return node.LUZero{Target: target}, true
		}
		if n.Init != nil {
			// A zero-sized initializer still runs for effect; lowering it
			// as a statement (rather than forcing it through Lower, which
			// requires a nonzero-size or Never result) keeps this total
			// for a Void-typed initializer too.
			return Unit(s, *n.Init, looped)
		}
		return node.LUBlock{}, true

	case node.HSet:
		p, ok := place(s, n.Place, looped)
		if !ok {
			return nil, false
		}
		value, ok := Lower(s, n.Value, looped)
		if !ok {
			return nil, false
		}
		return node.LUSet{Place: p, Value: value}, true

	case node.HWhile:
		cond, ok := Lower(s, n.Condition, looped)
		if !ok {
			return nil, false
		}
		body, ok := Unit(s, n.Body, true)
		if !ok {
			return nil, false
		}
		return node.LULoop{Body: node.LUIf{Condition: cond, Then: body, Else: node.LUBreak{}}}, true

	case node.HWhen:
		return unitWhen(s, n, looped)

	case node.HCast:
		origin, ok := s.kindOf(n.Node)
		if !ok {
			return nil, false
		}
		_, originVoid := origin.(node.RVoid)
		_, originNever := origin.(node.RNever)
		_, targetVoid := kind.(node.RVoid)
		_, targetNever := kind.(node.RNever)
		if (originVoid && targetVoid) || (originNever && targetNever) {
			return Unit(s, n.Node, looped)
		}
		invalidCast(s, origin, kind, sp)
		return nil, false

	case node.HReturn:
		if n.Value == nil {
			return node.LUReturn{}, true
		}
		value, ok := Lower(s, *n.Value, looped)
		if !ok {
			return nil, false
		}
		return node.LUReturn{Value: value}, true

	case node.HCompile:
		return node.LUCompile{Value: n.Value}, true

	case node.HInline:
		return node.LUInline{Value: n.Value}, true

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
		return node.LUCall{Receiver: receiver, Args: args}, true

	case node.HMethod:
		receiver, ok := method(s, n.Receiver, looped)
		if !ok {
			return nil, false
		}
		args, ok := lowerArgs(s, n.Args, looped)
		if !ok {
			return nil, false
		}
		return node.LUCall{Receiver: receiver, Args: args}, true

	case node.HField:
		return Unit(s, n.Base, looped)

	case node.HNew:
		return unitNew(s, n, looped)

	case node.HIndexOf:
		if sl, ok := kind.(node.RSlice); ok {
			if !checkTarget(s, sl.Target, sp, "index slice") {
				return nil, false
			}
		}
		base, ok := Unit(s, n.Base, looped)
		if !ok {
			return nil, false
		}
		idx, ok := Unit(s, n.Index, looped)
		if !ok {
			return nil, false
		}
		return node.LUBlock{Units: []node.LUnit{base, idx}}, true

	case node.HCompound:
		p, ok := place(s, n.Place, looped)
		if !ok {
			return nil, false
		}
		value, ok := lowerBinary(s, node.HBinary{Op: compoundBinaryOp(n.Op), Left: n.Place, Right: n.Value}, looped, sp)
		if !ok {
			return nil, false
		}
		return node.LUSet{Place: p, Value: value}, true

	case node.HBinary:
		left, ok := s.kindOf(n.Left)
		if !ok {
			return nil, false
		}
		invalidBinary(s, left, sp)
		return nil, false

	case node.HUnary:
		if n.Op == node.OpDereference {
			target, ok := s.kindOf(n.Node)
			if !ok {
				return nil, false
			}
			ptr, ok := target.(node.RPointer)
			if !ok {
				s.emit(query.NewDiagnostic(query.Error, "dereference of non-pointer type"))
				return nil, false
			}
			if !checkTarget(s, ptr.Target, sp, "dereference pointer") {
				return nil, false
			}
			value, ok := Lower(s, n.Node, looped)
			if !ok {
				return nil, false
			}
			return node.LUNode{Node: value}, true
		}
		invalidUnary(s, kind, sp)
		return nil, false

	case node.HBreak:
		if !looped {
			s.emit(query.NewDiagnostic(query.Error, "break outside loop"))
			return nil, false
		}
		return node.LUBreak{}, true

	case node.HContinue:
		if !looped {
			s.emit(query.NewDiagnostic(query.Error, "continue outside loop"))
			return nil, false
		}
		return node.LUContinue{}, true

	case node.HStaticRef, node.HVariable:
		return node.LUBlock{}, true

	case node.HUnresolved, node.HError:
		return nil, false

	default:
		s.emit(query.NewDiagnostic(query.Error, "cannot lower node as statement"))
		return nil, false
	}
}

// unitWhen lowers an n-ary `when` used for effect only, the statement
// analogue of lowerWhen (original_source/src/lower/unit.rs `HNode::When`).
func unitWhen(s *Scene, n node.HWhen, looped bool) (node.LUnit, bool) {
	var built node.LUnit
	for i := len(n.Branches) - 1; i >= 0; i-- {
		branch := n.Branches[i]
		cond, ok := Lower(s, branch.Condition, looped)
		if !ok {
			return nil, false
		}
		body, ok := Unit(s, branch.Body, looped)
		if !ok {
			return nil, false
		}
		built = node.LUIf{Condition: cond, Then: body, Else: built}
	}
	if built == nil {
		return node.LUBlock{}, true
	}
	return built, true
}

// unitNew lowers a zero-sized structure literal used for effect only:
// every field initializer still runs (for its side effects), but no
// storage is allocated (original_source/src/lower/unit.rs `HNode::New`).
func unitNew(s *Scene, n node.HNew, looped bool) (node.LUnit, bool) {
	units := make([]node.LUnit, 0, len(n.Fields))
	for _, f := range n.Fields {
		u, ok := Unit(s, f.Value, looped)
		if !ok {
			return nil, false
		}
		units = append(units, u)
	}
	return node.LUBlock{Units: units}, true
}

// compoundBinaryOp maps a compound-assignment operator to the plain
// binary operator it performs before the result is stored back
// (original_source/src/lower/unit.rs `HNode::Compound` builds
// `HBinary::Dual(*dual)` the same way).
func compoundBinaryOp(op node.CompoundOp) node.BinaryOp {
	switch op {
	case node.CompoundAdd:
		return node.OpAdd
	case node.CompoundMinus:
		return node.OpMinus
	case node.CompoundMul:
		return node.OpMul
	case node.CompoundDiv:
		return node.OpDiv
	case node.CompoundMod:
		return node.OpMod
	case node.CompoundOr:
		return node.OpBitOr
	case node.CompoundAnd:
		return node.OpBitAnd
	case node.CompoundXor:
		return node.OpBitXor
	case node.CompoundShl:
		return node.OpShl
	default:
		return node.OpShr
	}
}
