package inference

import "lucent/src/node"

// ----------------------------
// ----- Functions -----
// ----------------------------

// Synthesize infers index's type bottom-up and records it (spec.md §4.3
// "synthesize(node)"), grounded on original_source/src/inference/
// synthesize.rs `synthesize`/`synthesized`. ok is false if the node's type
// could not be determined; most such paths have already emitted a
// diagnostic, but an unknown variable or an unrewritten HPathRef fails
// without one.
func Synthesize(s *Scene, index node.HIndex) (node.RType, bool) {
	kind, ok := synthesized(s, index)
	if !ok {
		return nil, false
	}
	return s.record(index, kind), true
}

func synthesized(s *Scene, index node.HIndex) (node.RType, bool) {
	switch n := s.node(index).(type) {
	case node.HBlock:
		if len(n.Nodes) == 0 {
			return node.RVoid{}, true
		}
		var last node.RType
		ok := true
		for _, child := range n.Nodes {
			last, ok = Synthesize(s, child)
		}
		return last, ok

	case node.HLet:
		var kind node.RType
		var ok bool
		switch {
		case n.Type == nil && n.Init == nil:
			return s.unknown()
		case n.Type != nil && n.Init == nil:
			kind, ok = s.lift(n.Type)
		case n.Type == nil && n.Init != nil:
			kind, ok = Synthesize(s, *n.Init)
		default:
			kind, ok = s.lift(n.Type)
			if ok {
				Check(s, *n.Init, node.Raise(kind))
			}
		}
		if !ok {
			return nil, false
		}
		s.Types.Variables[n.Variable] = kind
		return node.RVoid{}, true

	case node.HSet:
		target, ok := Synthesize(s, n.Place)
		if ok {
			Check(s, n.Value, node.Raise(target))
		}
		return node.RVoid{}, true

	case node.HWhile:
		Check(s, n.Condition, node.Raise(node.RTruth{}))
		Synthesize(s, n.Body)
		return node.RVoid{}, true

	case node.HWhen:
		var first node.RType
		equal, complete, any := true, false, false
		for _, branch := range n.Branches {
			Check(s, branch.Condition, node.Raise(node.RTruth{}))
			if lit, ok := s.node(branch.Condition).(node.HTruth); ok && lit.Value {
				complete = true
			}
			kind, ok := Synthesize(s, branch.Body)
			if !ok {
				continue
			}
			if !any {
				first, any = kind, true
				continue
			}
			equal = equal && node.Unify(first, kind)
		}
		if equal && complete && any {
			return first, true
		}
		return node.RVoid{}, true

	case node.HCast:
		var target node.RType
		var ok bool
		if n.Target != nil {
			target, ok = s.lift(n.Target)
		} else {
			return s.unknown()
		}
		if !ok {
			return nil, false
		}
		if _, isIntegral := s.node(n.Node).(node.HIntegral); isIntegral {
			Check(s, n.Node, node.Raise(target))
		} else {
			Synthesize(s, n.Node)
		}
		return target, true

	case node.HReturn:
		if s.ReturnType == nil {
			return node.RNever{}, true
		}
		if n.Value != nil {
			Check(s, *n.Value, node.Raise(s.ReturnType))
		} else if !node.Unify(s.ReturnType, node.RVoid{}) {
			s.emit(missingReturnValue(s.ReturnType))
		}
		return node.RNever{}, true

	case node.HCompile:
		// Nested compile-time value evaluation is not yet wired (no table of
		// per-item compile-time Values exists on node.Value today); treat as
		// an opaque Void node until that table is added.
		return node.RVoid{}, true

	case node.HInline:
		return node.RVoid{}, true

	case node.HCall:
		return synthesizeCall(s, index, n)

	case node.HMethod:
		kind, ok := Synthesize(s, n.Receiver)
		if !ok {
			return nil, false
		}
		fn, ok := kind.(node.RFunction)
		if !ok {
			s.emit(diag("value is not a function"))
			return nil, false
		}
		for i, arg := range n.Args {
			if i < len(fn.Signature.Parameters) {
				Check(s, arg, node.Raise(fn.Signature.Parameters[i]))
			}
		}
		return fn.Signature.Return, true

	case node.HField:
		return synthesizeField(s, n)

	case node.HNew:
		return synthesizeNew(s, n)

	case node.HSliceNew:
		return synthesizeSliceNew(s, n)

	case node.HSlice:
		if n.Start != nil {
			Check(s, *n.Start, indexHint())
		}
		if n.End != nil {
			Check(s, *n.End, indexHint())
		}
		return Synthesize(s, n.Base)

	case node.HIndexOf:
		Check(s, n.Index, indexHint())
		return Synthesize(s, n.Base)

	case node.HCompound:
		target, ok := Synthesize(s, n.Place)
		if ok {
			if _, isPointer := target.(node.RPointer); isPointer && (n.Op == node.CompoundAdd || n.Op == node.CompoundMinus) {
				Check(s, n.Value, indexHint())
				return node.RVoid{}, true
			}
			Check(s, n.Value, node.Raise(target))
		}
		return node.RVoid{}, true

	case node.HBinary:
		return synthesizeBinary(s, n)

	case node.HUnary:
		return synthesizeUnary(s, n)

	case node.HVariable:
		kind, ok := s.Types.Variables[n.Variable]
		return kind, ok

	case node.HFunctionRef:
		return synthesizeFunctionRef(s, index, n)

	case node.HStaticRef:
		kind, ok := s.staticType(n.Path.Path())
		return kind, ok

	case node.HPathRef:
		// rewritePaths runs ahead of Synthesize/Check and turns every
		// HPathRef into HFunctionRef/HStaticRef/HUnresolved; one reaching
		// here means it was never rewritten (inference invoked directly
		// on an arena that skipped the rewrite pass).
		return nil, false

	case node.HString:
		return node.RArray{Element: node.RIntegral{Sign: node.Unsigned, Width: node.B}, Size: len(n.Value)}, true

	case node.HRegister:
		return s.unknown()

	case node.HArray:
		if len(n.Elements) == 0 {
			return s.unknown()
		}
		first, ok := Synthesize(s, n.Elements[0])
		if !ok {
			return nil, false
		}
		for _, el := range n.Elements[1:] {
			Check(s, el, node.Raise(first))
		}
		return node.RArray{Element: first, Size: len(n.Elements)}, true

	case node.HIntegral:
		s.emit(diag("unknown integral type").Note("explicitly cast the integer: <literal> as <type>"))
		return nil, false

	case node.HTruth:
		return node.RTruth{}, true

	case node.HRune:
		return node.RRune{}, true

	case node.HBreak:
		return node.RNever{}, true

	case node.HContinue:
		return node.RNever{}, true

	case node.HUnresolved, node.HError:
		return nil, false

	default:
		return nil, false
	}
}

func synthesizeCall(s *Scene, index node.HIndex, n node.HCall) (node.RType, bool) {
	path := n.Path.Path()
	candidates, ok := s.signatures(path)
	if !ok {
		return nil, false
	}
	byArity := filterSignatures(candidates, func(sig *node.Signature) bool {
		return len(sig.Parameters) == len(n.Args)
	})

	if len(byArity) == 1 {
		sig := candidates[byArity[0]]
		for i, arg := range n.Args {
			Check(s, arg, node.Raise(sig.Parameters[i]))
		}
		s.Types.Functions[index] = byArity[0]
		return sig.Return, true
	}

	argTypes := make([]node.RType, len(n.Args))
	for i, arg := range n.Args {
		kind, ok := Synthesize(s, arg)
		if !ok {
			return nil, false
		}
		argTypes[i] = kind
	}
	matched := filterSignatures(candidates, func(sig *node.Signature) bool {
		if len(sig.Parameters) != len(argTypes) {
			return false
		}
		for i, p := range sig.Parameters {
			if !node.Unify(p, argTypes[i]) {
				return false
			}
		}
		return true
	})

	switch len(matched) {
	case 0:
		s.emit(diag("no matching function"))
		return nil, false
	case 1:
		s.Types.Functions[index] = matched[0]
		return candidates[matched[0]].Return, true
	default:
		s.emit(ambiguousFunction(path, matched))
		return nil, false
	}
}

func synthesizeFunctionRef(s *Scene, index node.HIndex, n node.HFunctionRef) (node.RType, bool) {
	path := n.Path.Path()
	candidates, ok := s.signatures(path)
	if !ok || len(candidates) == 0 {
		return nil, false
	}
	if len(candidates) == 1 {
		s.Types.Functions[index] = 0
		return node.RFunction{Signature: candidates[0]}, true
	}
	s.emit(ambiguousFunction(path, allIndices(len(candidates))))
	return nil, false
}

func synthesizeField(s *Scene, n node.HField) (node.RType, bool) {
	kind, ok := Synthesize(s, n.Base)
	if !ok {
		return nil, false
	}
	switch base := kind.(type) {
	case node.RStructure:
		data, ok := s.structure(base.Path)
		if !ok {
			return nil, false
		}
		for _, f := range data.Fields {
			if f.Name == n.Name {
				return s.lift(f.Type)
			}
		}
		s.emit(diag("structure has no field: " + string(n.Name)))
		return nil, false
	case node.RSlice:
		switch n.Name {
		case "address":
			return node.RPointer{Target: s.Target, Element: base.Element}, true
		case "size":
			return node.RIntegralSize{Target: s.Target, Sign: node.Unsigned}, true
		default:
			return nil, false
		}
	default:
		return nil, false
	}
}

func synthesizeNew(s *Scene, n node.HNew) (node.RType, bool) {
	path := n.Path.Path()
	data, ok := s.structure(path)
	if !ok {
		return nil, false
	}
	for _, field := range n.Fields {
		for _, f := range data.Fields {
			if f.Name == field.Name {
				kind, ok := s.lift(f.Type)
				if ok {
					Check(s, field.Value, node.Raise(kind))
				}
			}
		}
	}
	return node.RStructure{Path: path}, true
}

func synthesizeSliceNew(s *Scene, n node.HSliceNew) (node.RType, bool) {
	Check(s, n.Size, indexHint())
	kind, ok := s.lift(n.Element)
	if !ok {
		return nil, false
	}
	Check(s, n.Address, node.Raise(node.RPointer{Target: s.Target, Element: kind}))
	return node.RSlice{Target: s.Target, Element: kind}, true
}

func synthesizeBinary(s *Scene, n node.HBinary) (node.RType, bool) {
	switch n.Op {
	case node.OpAnd, node.OpOr:
		Check(s, n.Left, node.Raise(node.RTruth{}))
		Check(s, n.Right, node.Raise(node.RTruth{}))
		return node.RTruth{}, true
	}

	left, ok := Synthesize(s, n.Left)
	switch n.Op {
	case node.OpEqual, node.OpNotEqual:
		if ok {
			Check(s, n.Right, node.Raise(left))
		}
		return node.RTruth{}, true
	}

	if ok {
		if _, isPointer := left.(node.RPointer); isPointer && (n.Op == node.OpAdd || n.Op == node.OpMinus) {
			Check(s, n.Right, indexHint())
			return left, true
		}
	}

	if ok {
		Check(s, n.Right, node.Raise(left))
	}
	if n.Op.IsRelational() {
		return node.RTruth{}, true
	}
	if !ok {
		return nil, false
	}
	return left, true
}

func synthesizeUnary(s *Scene, n node.HUnary) (node.RType, bool) {
	kind, ok := Synthesize(s, n.Node)
	if !ok {
		return nil, false
	}
	switch n.Op {
	case node.OpNot, node.OpNegate:
		return kind, true
	case node.OpReference:
		return node.RPointer{Target: s.Target, Element: kind}, true
	case node.OpDereference:
		if p, ok := kind.(node.RPointer); ok {
			return p.Element, true
		}
		s.emit(diag("value is not a pointer"))
		return nil, false
	default:
		return nil, false
	}
}

// ---------------------
// ----- Small helpers -----
// ---------------------

// indexHint is the expected type of an array/slice index or bound: any
// pointer-sized integer (spec.md §4.3 "IType ... IntegralSize").
func indexHint() node.IType { return node.IIntegralSize{} }

func filterSignatures(sigs []*node.Signature, predicate func(*node.Signature) bool) []int {
	var out []int
	for i, sig := range sigs {
		if predicate(sig) {
			out = append(out, i)
		}
	}
	return out
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
