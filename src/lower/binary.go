package lower

import (
	"lucent/src/node"
	"lucent/src/query"
	"lucent/src/span"
)

// lowerBinary lowers a binary expression, determining its operation
// width/sign from the left operand's already-checked type (spec.md §4.4,
// grounded on original_source/src/lower/binary.rs `binary`). Unlike the
// original, which maps each HDual to a distinct LBinary variant per sign,
// Go's LBinary carries the HIR's own BinaryOp plus an explicit Sign/Width
// pair, so no separate dual-to-LBinary table is needed. Pointer Add/Minus
// multiplies the integer operand by the pointee's size first.
func lowerBinary(s *Scene, n node.HBinary, looped bool, sp span.Item) (node.LNode, bool) {
	left, ok := s.kindOf(n.Left)
	if !ok {
		return nil, false
	}
	sign, width, ok := binaryShape(s, n.Op, left)
	if !ok {
		return invalidBinary(s, left, sp)
	}
	leftNode, ok := Lower(s, n.Left, looped)
	if !ok {
		return nil, false
	}
	rightNode, ok := Lower(s, n.Right, looped)
	if !ok {
		return nil, false
	}
	if p, isPointer := left.(node.RPointer); isPointer && (n.Op == node.OpAdd || n.Op == node.OpMinus) {
		elemSize, err := Size(s.Scope, s.Offsets, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, p.Element)
		if err != nil {
			return nil, false
		}
		rightNode = node.LBinary{Op: node.OpMul, Sign: node.Unsigned, Width: width,
			Left: rightNode, Right: node.LIntegral{Value: int64(elemSize), Width: width}}
	}
	return node.LBinary{Op: n.Op, Sign: sign, Width: width, Left: leftNode, Right: rightNode}, true
}

// binaryShape implements the matching in original_source/src/lower/
// binary.rs: relational/dual operators read their sign/width off an
// Integral or IntegralSize left operand; Equal/NotEqual accept any
// comparable scalar and always compute unsigned; Or/And require Truth;
// pointer arithmetic (Add/Minus against a Pointer) uses the pointer's
// own width, unsigned.
func binaryShape(s *Scene, op node.BinaryOp, left node.RType) (node.Sign, node.Width, bool) {
	switch op {
	case node.OpLess, node.OpLessEqual, node.OpGreater, node.OpGreaterEqual,
		node.OpAdd, node.OpMinus, node.OpMul, node.OpDiv, node.OpMod,
		node.OpBitOr, node.OpBitAnd, node.OpBitXor, node.OpShl, node.OpShr:
		switch t := left.(type) {
		case node.RIntegral:
			return t.Sign, t.Width, true
		case node.RIntegralSize:
			return t.Sign, pointerWidth(t.Target), true
		}
	}

	switch op {
	case node.OpEqual, node.OpNotEqual:
		switch t := left.(type) {
		case node.RRune:
			return node.Unsigned, node.D, true
		case node.RTruth:
			return node.Unsigned, node.B, true
		case node.RIntegral:
			return node.Unsigned, t.Width, true
		case node.RIntegralSize:
			return node.Unsigned, pointerWidth(t.Target), true
		case node.RFunction:
			return node.Unsigned, pointerWidth(functionTarget(s, t)), true
		case node.RPointer:
			return node.Unsigned, pointerWidth(t.Target), true
		}
	}

	if _, ok := left.(node.RTruth); ok && (op == node.OpOr || op == node.OpAnd) {
		return node.Unsigned, node.B, true
	}
	if p, ok := left.(node.RPointer); ok && (op == node.OpAdd || op == node.OpMinus) {
		return node.Unsigned, pointerWidth(p.Target), true
	}
	return 0, 0, false
}

// lowerUnary lowers a unary expression (spec.md §4.4, grounded on
// original_source/src/lower/node.rs `HNode::Unary`). Reference and
// Dereference are place-forming and handled before reaching here; Not
// and Negate read their width off the already-checked operand type.
func lowerUnary(s *Scene, index node.HIndex, n node.HUnary, kind node.RType, sp span.Item, looped bool) (node.LNode, bool) {
	switch n.Op {
	case node.OpReference:
		p, ok := place(s, n.Node, looped)
		if !ok {
			return nil, false
		}
		return p.Node, true

	case node.OpDereference:
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
		return node.LDereference{Place: node.LPlace{Node: value}}, true

	case node.OpNot:
		width, ok := widthForBitwise(s, kind, sp)
		if !ok {
			return nil, false
		}
		value, ok := Lower(s, n.Node, looped)
		if !ok {
			return nil, false
		}
		return node.LUnary{Op: node.OpNot, Width: width, Node: value}, true

	case node.OpNegate:
		width, ok := widthForNegate(s, kind, sp)
		if !ok {
			return nil, false
		}
		value, ok := Lower(s, n.Node, looped)
		if !ok {
			return nil, false
		}
		return node.LUnary{Op: node.OpNegate, Width: width, Node: value}, true

	default:
		s.emit(query.NewDiagnostic(query.Error, "invalid unary operation"))
		return nil, false
	}
}

func widthForBitwise(s *Scene, kind node.RType, sp span.Item) (node.Width, bool) {
	switch t := kind.(type) {
	case node.RTruth:
		return node.B, true
	case node.RIntegral:
		return t.Width, true
	case node.RIntegralSize:
		return pointerWidth(t.Target), true
	default:
		return invalidUnary(s, kind, sp)
	}
}

func widthForNegate(s *Scene, kind node.RType, sp span.Item) (node.Width, bool) {
	switch t := kind.(type) {
	case node.RIntegral:
		if t.Sign == node.Signed {
			return t.Width, true
		}
	case node.RIntegralSize:
		if t.Sign == node.Signed {
			return pointerWidth(t.Target), true
		}
	}
	return invalidUnary(s, kind, sp)
}
