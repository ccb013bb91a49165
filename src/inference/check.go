package inference

import (
	"lucent/src/node"
	"lucent/src/util"
)

// ----------------------------
// ----- Functions -----
// ----------------------------

// Check asserts that index has type expected, recording the (possibly
// more specific) resolved type, and emits a "mismatched types" diagnostic
// on conflict (spec.md §4.3 "check(node, expected)"), grounded on
// original_source/src/inference/check.rs `check`. A mismatch does not
// roll the scene back: types already recorded while synthesizing index
// or its children (e.g. in checkFallback) stay recorded.
func Check(s *Scene, index node.HIndex, expected node.IType) bool {
	if of, ok := expected.(node.ITypeOf); ok {
		if _, isVoid := of.Type.(node.RVoid); isVoid {
			_, ok := Synthesize(s, index)
			return ok
		}
	}

	switch n := s.node(index).(type) {
	case node.HBlock:
		if len(n.Nodes) == 0 {
			return checkFallback(s, index, expected)
		}
		last := n.Nodes[len(n.Nodes)-1]
		for _, child := range n.Nodes[:len(n.Nodes)-1] {
			Synthesize(s, child)
		}
		if !Check(s, last, expected) {
			return false
		}
		if of, ok := expected.(node.ITypeOf); ok {
			s.record(index, of.Type)
		}
		return true

	case node.HWhen:
		of, isType := expected.(node.ITypeOf)
		if !isType {
			return checkFallback(s, index, expected)
		}
		complete := false
		for _, branch := range n.Branches {
			if lit, ok := s.node(branch.Condition).(node.HTruth); ok && lit.Value {
				complete = true
			}
			Check(s, branch.Body, expected)
			Check(s, branch.Condition, node.Raise(node.RTruth{}))
		}
		if complete || node.Unify(of.Type, node.RVoid{}) {
			s.record(index, of.Type)
			return true
		}
		s.emit(diag("mismatched types").
			Note("expected: " + typeString(expected)).
			Note("expression is missing default branch").
			Note("add a branch with condition: true"))
		return false

	case node.HSlice:
		element, target, ok := sequenceElement(expected)
		if !ok {
			return checkFallback(s, index, expected)
		}
		if n.Start != nil {
			Check(s, *n.Start, indexHint())
		}
		if n.End != nil {
			Check(s, *n.End, indexHint())
		}
		if !Check(s, n.Base, node.ISequence{Target: target, Element: element}) {
			return false
		}
		s.record(index, node.RSlice{Target: target, Element: element})
		return true

	case node.HArray:
		element, _, ok := sequenceElement(expected)
		if ok {
			for _, el := range n.Elements {
				Check(s, el, node.Raise(element))
			}
			s.record(index, node.RArray{Element: element, Size: len(n.Elements)})
			return true
		}
		if of, isType := expected.(node.ITypeOf); isType {
			if array, isArray := of.Type.(node.RArray); isArray {
				for _, el := range n.Elements {
					Check(s, el, node.Raise(array.Element))
				}
				if len(n.Elements) == array.Size {
					s.record(index, node.RArray{Element: array.Element, Size: len(n.Elements)})
					return true
				}
				s.emit(diag("mismatched types").
					Note("expected array size: " + itoaSize(array.Size)).
					Note("found size: " + itoaSize(len(n.Elements))))
				return false
			}
		}
		return checkFallback(s, index, expected)

	case node.HIndexOf:
		of, isType := expected.(node.ITypeOf)
		if !isType {
			return checkFallback(s, index, expected)
		}
		Check(s, n.Index, indexHint())
		if !Check(s, n.Base, node.ISequence{Target: s.Target, Element: of.Type}) {
			return false
		}
		s.record(index, of.Type)
		return true

	case node.HFunctionRef:
		of, isType := expected.(node.ITypeOf)
		fn, isFn := asFunction(of)
		if !isType || !isFn {
			return checkFallback(s, index, expected)
		}
		path := n.Path.Path()
		candidates, ok := s.signatures(path)
		if !ok {
			return false
		}
		matched := filterSignatures(candidates, func(sig *node.Signature) bool {
			return node.Unify(node.RFunction{Signature: sig}, node.RFunction{Signature: fn.Signature})
		})
		switch len(matched) {
		case 1:
			s.Types.Functions[index] = matched[0]
			s.record(index, node.RFunction{Signature: candidates[matched[0]]})
			return true
		case 0:
			s.emit(diag("no matching function").Note("expected: " + fn.String()))
			return false
		default:
			s.emit(ambiguousFunction(path, matched))
			return false
		}

	case node.HBinary:
		of, isType := expected.(node.ITypeOf)
		if isType {
			if _, isPointer := of.Type.(node.RPointer); isPointer && (n.Op == node.OpAdd || n.Op == node.OpMinus) {
				Check(s, n.Left, expected)
				Check(s, n.Right, indexHint())
				s.record(index, of.Type)
				return true
			}
		}
		if isType && !n.Op.IsRelational() && n.Op != node.OpEqual && n.Op != node.OpNotEqual && n.Op != node.OpAnd && n.Op != node.OpOr {
			Check(s, n.Left, expected)
			Check(s, n.Right, expected)
			s.record(index, of.Type)
			return true
		}
		return checkFallback(s, index, expected)

	case node.HUnary:
		of, isType := expected.(node.ITypeOf)
		if !isType {
			return checkFallback(s, index, expected)
		}
		switch n.Op {
		case node.OpDereference:
			pointer := node.RPointer{Target: s.Target, Element: of.Type}
			if !Check(s, n.Node, node.Raise(pointer)) {
				return false
			}
			s.record(index, of.Type)
			return true
		case node.OpReference:
			pointer, isPointer := of.Type.(node.RPointer)
			if !isPointer {
				return checkFallback(s, index, expected)
			}
			if !Check(s, n.Node, node.Raise(pointer.Element)) {
				return false
			}
			s.record(index, of.Type)
			return true
		case node.OpNot, node.OpNegate:
			if !Check(s, n.Node, expected) {
				return false
			}
			s.record(index, of.Type)
			return true
		}
		return checkFallback(s, index, expected)

	case node.HCast:
		if n.Target != nil {
			return checkFallback(s, index, expected)
		}
		of, isType := expected.(node.ITypeOf)
		if !isType {
			return checkFallback(s, index, expected)
		}
		Synthesize(s, n.Node)
		s.record(index, of.Type)
		return true

	case node.HIntegral:
		switch e := expected.(type) {
		case node.IIntegralSize:
			s.record(index, node.RIntegralSize{Target: s.Target, Sign: node.Unsigned})
			return true
		case node.ITypeOf:
			switch t := e.Type.(type) {
			case node.RIntegralSize:
				s.record(index, t)
				return true
			case node.RIntegral:
				s.record(index, t)
				return true
			}
		}
		s.emit(diag("mismatched types").Note("expected: " + typeString(expected) + ", found: <integral>"))
		return false

	case node.HRegister:
		of, isType := expected.(node.ITypeOf)
		if !isType {
			return checkFallback(s, index, expected)
		}
		s.record(index, of.Type)
		return true

	case node.HInline:
		of, isType := expected.(node.ITypeOf)
		if !isType {
			return checkFallback(s, index, expected)
		}
		s.record(index, of.Type)
		return true

	default:
		return checkFallback(s, index, expected)
	}
}

// checkFallback is the catch-all arm of check.rs's match: synthesize the
// node's type, then require it to unify with expected.
func checkFallback(s *Scene, index node.HIndex, expected node.IType) bool {
	target, ok := Synthesize(s, index)
	if !ok {
		return false
	}
	if unifyIType(target, expected) {
		return true
	}
	s.emit(diag("mismatched types").Note("expected: " + typeString(expected) + ", found: " + target.String()))
	return false
}

// unifyIType is node.Unify generalized to the IType language (check.rs
// `unify`): a Sequence hint matches an Array or Slice of a unifying
// element; an IntegralSize hint matches any RIntegralSize.
func unifyIType(target node.RType, expected node.IType) bool {
	switch e := expected.(type) {
	case node.ISequence:
		switch t := target.(type) {
		case node.RArray:
			return node.Unify(t.Element, e.Element)
		case node.RSlice:
			return t.Target == e.Target && node.Unify(t.Element, e.Element)
		default:
			return false
		}
	case node.IIntegralSize:
		_, ok := target.(node.RIntegralSize)
		return ok
	case node.ITypeOf:
		return node.Unify(target, e.Type)
	default:
		return false
	}
}

// sequenceElement reports the element type and target of an ISequence
// hint, or of an ITypeOf hint that names a concrete Slice; an ITypeOf
// naming an Array reports false.
func sequenceElement(expected node.IType) (node.RType, util.Target, bool) {
	switch e := expected.(type) {
	case node.ISequence:
		return e.Element, e.Target, true
	case node.ITypeOf:
		switch t := e.Type.(type) {
		case node.RSlice:
			return t.Element, t.Target, true
		}
	}
	return nil, util.Target(0), false
}

func asFunction(of node.ITypeOf) (node.RFunction, bool) {
	fn, ok := of.Type.(node.RFunction)
	return fn, ok
}

func typeString(t node.IType) string {
	switch t := t.(type) {
	case node.ITypeOf:
		return t.Type.String()
	case node.ISequence:
		return "[" + t.Element.String() + "; ?]"
	case node.IIntegralSize:
		return "<size>"
	default:
		return "?"
	}
}

func itoaSize(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
