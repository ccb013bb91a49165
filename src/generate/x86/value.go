package x86

import "lucent/src/node"

// eval evaluates n into dst, the per-ValueNode dispatcher
// (original_source/src/generate/x86/value.rs `value`). Integral/Truth/
// Rune literals (all LIntegral once lowered), Variable (LTargetNode/
// LDereference), Cast, Unary, Binary, Call, If, Block and Never are
// concretely handled; the kinds the original leaves `unimplemented!()`
// for (Compile/Inline/Field/Create/Slice/Index/Path/String/Register/
// Array) are out of this package's scope too and fall to the default
// case below.
func eval(scene *Scene, t *Translation, n node.LNode, dst Register) bool {
	switch v := n.(type) {
	case node.LIntegral:
		t.movImm32(dst, int32(v.Value), v.Width)
		return true

	case node.LTargetNode:
		offset, _ := targetOf(scene, v.Target)
		t.lea(dst, Base(scene.Target), int32(offset), PointerWidth(scene.Target))
		return true

	case node.LDereference:
		width := PointerWidth(scene.Target)
		if !eval(scene, t, v.Place.Node, dst) {
			return false
		}
		t.loadMem(dst, dst, 0, width)
		return true

	case node.LCast:
		return evalCast(scene, t, v, dst)

	case node.LBinary:
		return evalBinary(scene, t, v, dst)

	case node.LUnary:
		return evalUnary(scene, t, v, dst)

	case node.LCall:
		if !evalCall(scene, t, v) {
			return false
		}
		if dst != ReturnRegister() {
			t.movRR(dst, ReturnRegister(), PointerWidth(scene.Target))
		}
		return true

	case node.LIf:
		return evalIf(scene, t, v, dst)

	case node.LBlock:
		for _, u := range v.Units {
			if !unit(scene, t, u) {
				return false
			}
		}
		if v.Value == nil {
			return true
		}
		return eval(scene, t, v.Value, dst)

	case node.LNever:
		return unit(scene, t, v.Unit)

	case node.LStaticRef, node.LFunctionRef:
		// Resolved through src/binary's addressing pass, not here: these
		// only ever appear as an LCall's Receiver or inside `place`, both
		// of which consume them directly rather than through eval.
		return false

	default:
		return false
	}
}

// targetOf resolves v's frame offset, assigning one via scene.variable on
// first sight for anything lowering never registered up front (a
// synthetic temporary introduced by scene.local in src/lower).
func targetOf(scene *Scene, target node.LTarget) (offset int, width node.Width) {
	kind, ok := scene.Types.Variables[target.Variable]
	size := PointerWidth(scene.Target).Bytes()
	if ok {
		size = widthOf(scene, kind).Bytes()
	}
	if off, seen := scene.offsets[target.Variable]; seen {
		return off, PointerWidth(scene.Target)
	}
	return scene.variable(target.Variable, size), PointerWidth(scene.Target)
}

// evalIf evaluates a value-position `if`/`when` (original_source/src/
// generate/x86/value.rs HNode::When): condition into a scratch register,
// test, jump over Then when false, evaluate the live branch into dst.
func evalIf(scene *Scene, t *Translation, v node.LIf, dst Register) bool {
	elseLabel := scene.label()
	endLabel := scene.label()

	if !eval(scene, t, v.Condition, scene.Primary.Register) {
		return false
	}
	width := node.B
	t.testRR(scene.Primary.Register, scene.Primary.Register, width)
	t.jcc(condE, elseLabel)

	if !eval(scene, t, v.Then, dst) {
		return false
	}
	t.jmp(endLabel)

	t.setPendingLabel(elseLabel)
	if v.Else != nil {
		if !eval(scene, t, v.Else, dst) {
			return false
		}
	}
	t.setPendingLabel(endLabel)
	return true
}
