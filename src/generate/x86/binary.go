package x86

import "lucent/src/node"

// evalBinary lowers one LBinary into dst, grounded on original_source/
// src/generate/x86/binary.rs `binary`: Or/And short-circuit; Compare
// emits cmp+setcc; Multiply/Divide/Modulo/shifts reserve the specific
// register the opcode requires; every other Dual operator evaluates both
// operands through the primary/alternate pair and emits a direct
// instruction.
func evalBinary(scene *Scene, t *Translation, v node.LBinary, dst Register) bool {
	switch v.Op {
	case node.OpAnd, node.OpOr:
		return evalShortCircuit(scene, t, v, dst)
	case node.OpEqual, node.OpNotEqual, node.OpLess, node.OpLessEqual, node.OpGreater, node.OpGreaterEqual:
		return evalCompare(scene, t, v, dst)
	case node.OpMul:
		return evalMultiply(scene, t, v, dst)
	case node.OpDiv, node.OpMod:
		return evalDivide(scene, t, v, dst)
	case node.OpShl, node.OpShr:
		return evalShift(scene, t, v, dst)
	default:
		return evalDual(scene, t, v, dst)
	}
}

// stackPair evaluates left into primary, pushes it, swaps primary and
// alternate, evaluates right into the now-primary (originally-alternate)
// register, pops left back into the now-alternate slot, and restores the
// original primary/alternate assignment (original_source/src/generate/
// x86/binary.rs `binary`'s stack-based left/right evaluation).
func stackPair(scene *Scene, t *Translation, v node.LBinary, width node.Width) (left, right Register, ok bool) {
	primary := scene.Primary.Register
	if !eval(scene, t, v.Left, primary) {
		return 0, 0, false
	}
	t.push(primary)
	scene.swap()
	newPrimary := scene.Primary.Register
	if !eval(scene, t, v.Right, newPrimary) {
		return 0, 0, false
	}
	alternate := scene.Alternate.Register
	t.pop(alternate)
	scene.swap()
	return alternate, newPrimary, true
}

func evalDual(scene *Scene, t *Translation, v node.LBinary, dst Register) bool {
	left, right, ok := stackPair(scene, t, v, v.Width)
	if !ok {
		return false
	}
	switch v.Op {
	case node.OpAdd:
		t.addRR(left, right, v.Width)
	case node.OpMinus:
		t.subRR(left, right, v.Width)
	case node.OpBitOr:
		t.orRR(left, right, v.Width)
	case node.OpBitAnd:
		t.andRR(left, right, v.Width)
	case node.OpBitXor:
		t.xorRR(left, right, v.Width)
	default:
		return false
	}
	if left != dst {
		t.movRR(dst, left, v.Width)
	}
	return true
}

// evalCompare emits cmp+setcc, the Compare arm of original_source's
// `binary` (original_source/src/generate/x86/binary.rs).
func evalCompare(scene *Scene, t *Translation, v node.LBinary, dst Register) bool {
	left, right, ok := stackPair(scene, t, v, v.Width)
	if !ok {
		return false
	}
	t.cmpRR(left, right, v.Width)
	t.setcc(conditionOf(v.Op, v.Sign), dst)
	return true
}

func conditionOf(op node.BinaryOp, sign node.Sign) condition {
	switch op {
	case node.OpEqual:
		return condE
	case node.OpNotEqual:
		return condNE
	case node.OpLess:
		return condL
	case node.OpLessEqual:
		return condLE
	case node.OpGreater:
		return condG
	default:
		return condGE
	}
}

// evalShortCircuit lowers Or/And without evaluating the right operand
// unless necessary (original_source/src/generate/x86/binary.rs `short`).
func evalShortCircuit(scene *Scene, t *Translation, v node.LBinary, dst Register) bool {
	join := scene.label()
	if !eval(scene, t, v.Left, dst) {
		return false
	}
	t.testRR(dst, dst, node.B)
	if v.Op == node.OpAnd {
		t.jcc(condE, join) // false short-circuits And.
	} else {
		t.jcc(condNE, join) // true short-circuits Or.
	}
	if !eval(scene, t, v.Right, dst) {
		return false
	}
	t.setPendingLabel(join)
	return true
}

// evalMultiply special-cases Byte width the way x86 requires: the
// two-operand `imul r,r/m` encoding has no 8-bit form, so a byte multiply
// goes through the legacy AL-anchored `imul r/m8` sequence instead
// (original_source/src/generate/x86/binary.rs Multiply).
func evalMultiply(scene *Scene, t *Translation, v node.LBinary, dst Register) bool {
	if v.Width == node.B {
		return reserveResult(scene, t, RegA, func() bool {
			if !convey(scene, t, v.Left, RegA, node.B) {
				return false
			}
			right := scene.Alternate.Register
			if !convey(scene, t, v.Right, right, node.B) {
				return false
			}
			t.emit(0xF6, 0xC0|5<<3|byte(right.Id()&7)) // imul r/m8.
			if dst != RegA {
				t.movRR(dst, RegA, node.B)
			}
			return true
		})
	}
	left, right, ok := stackPair(scene, t, v, v.Width)
	if !ok {
		return false
	}
	t.imulRR(left, right, v.Width)
	if left != dst {
		t.movRR(dst, left, v.Width)
	}
	return true
}

// evalDivide reserves the A/D pair (quotient/remainder), sign- or
// zero-extends the dividend into D, and emits idiv/div
// (original_source/src/generate/x86/binary.rs Divide/Modulo).
func evalDivide(scene *Scene, t *Translation, v node.LBinary, dst Register) bool {
	return reserveResult(scene, t, RegA, func() bool {
		return reserveResult(scene, t, RegD, func() bool {
			if !convey(scene, t, v.Left, RegA, v.Width) {
				return false
			}
			divisor := scene.Alternate.Register
			if divisor == RegA || divisor == RegD {
				divisor = RegB
			}
			if !convey(scene, t, v.Right, divisor, v.Width) {
				return false
			}
			if v.Sign == node.Signed {
				t.cltd(v.Width)
				t.idiv(divisor, v.Width)
			} else {
				t.xorRR(RegD, RegD, v.Width)
				t.div(divisor, v.Width)
			}
			result := RegA
			if v.Op == node.OpMod {
				result = RegD
			}
			if result != dst {
				t.movRR(dst, result, v.Width)
			}
			return true
		})
	})
}

// evalShift reserves CL and conveys the shift-count operand through it
// (original_source/src/generate/x86/binary.rs ShiftLeft/ShiftRight).
func evalShift(scene *Scene, t *Translation, v node.LBinary, dst Register) bool {
	base := scene.Primary.Register
	if base == RegC {
		base = scene.Alternate.Register
	}
	if !eval(scene, t, v.Left, base) {
		return false
	}
	return reserveResult(scene, t, RegC, func() bool {
		if !convey(scene, t, v.Right, RegC, node.B) {
			return false
		}
		if v.Op == node.OpShl {
			t.shl(base, v.Width)
		} else if v.Sign == node.Signed {
			t.sar(base, v.Width)
		} else {
			t.shr(base, v.Width)
		}
		if base != dst {
			t.movRR(dst, base, v.Width)
		}
		return true
	})
}

// reserveResult is reserve specialized to a closure that reports success,
// threading the bool return through the push/pop wrapper.
func reserveResult(scene *Scene, t *Translation, reg Register, fn func() bool) bool {
	ok := false
	reserve(scene, t, reg, func() { ok = fn() })
	return ok
}
