package x86

import "lucent/src/node"

// unit lowers one LUnit, the statement-position walker paired with
// eval's expression walker (original_source/src/generate/x86/value.rs's
// statement-position arms of `value`, reused verbatim for Block/Let/Set/
// While/When/Return/Call, since this port keeps statement and expression
// lowering in L-IR's own two separate trees rather than the original's
// single ValueNode enum).
func unit(scene *Scene, t *Translation, u node.LUnit) bool {
	switch v := u.(type) {
	case node.LUBlock:
		for _, inner := range v.Units {
			if !unit(scene, t, inner) {
				return false
			}
		}
		return true

	case node.LUSet:
		return evalSet(scene, t, v)

	case node.LUZero:
		offset, width := targetOf(scene, v.Target)
		t.movImm32(scene.Primary.Register, 0, width)
		t.storeMem(Base(scene.Target), int32(offset), scene.Primary.Register, width)
		return true

	case node.LUIf:
		return unitIf(scene, t, v)

	case node.LULoop:
		return unitLoop(scene, t, v)

	case node.LUReturn:
		if v.Value != nil {
			if !eval(scene, t, v.Value, ReturnRegister()) {
				return false
			}
		}
		t.jmp(scene.epilogue)
		return true

	case node.LUCall:
		return evalCall(scene, t, node.LCall{Receiver: v.Receiver, Args: v.Args})

	case node.LUNode:
		return eval(scene, t, v.Node, scene.Primary.Register)

	case node.LUBreak:
		if len(scene.breakLabels) == 0 {
			return false
		}
		t.jmp(scene.breakLabels[len(scene.breakLabels)-1])
		return true

	case node.LUContinue:
		if len(scene.continueLabels) == 0 {
			return false
		}
		t.jmp(scene.continueLabels[len(scene.continueLabels)-1])
		return true

	case node.LUCompile, node.LUInline:
		// Nested compile-time evaluation is resolved during inference/
		// lowering, not codegen; by the time a function reaches this
		// package every LUCompile/LUInline it still contains is for-effect
		// only and contributes no instructions of its own.
		return true

	default:
		return false
	}
}

// evalSet lowers an assignment: compute the place's address, compute the
// value, store (original_source/src/generate/x86/function.rs `set`,
// scoped here to the scalar widths this package supports).
func evalSet(scene *Scene, t *Translation, v node.LUSet) bool {
	width := node.Q
	if tn, ok := v.Place.Node.(node.LTargetNode); ok {
		_, w := targetOf(scene, tn.Target)
		width = w
		if kind, ok := scene.Types.Variables[tn.Target.Variable]; ok {
			width = widthOf(scene, kind)
		}
		if !eval(scene, t, v.Value, scene.Alternate.Register) {
			return false
		}
		offset, _ := targetOf(scene, tn.Target)
		t.storeMem(Base(scene.Target), int32(offset), scene.Alternate.Register, width)
		return true
	}

	if !eval(scene, t, v.Place.Node, scene.Primary.Register) {
		return false
	}
	t.push(scene.Primary.Register)
	if !eval(scene, t, v.Value, scene.Alternate.Register) {
		return false
	}
	t.pop(scene.Primary.Register)
	t.storeMem(scene.Primary.Register, 0, scene.Alternate.Register, width)
	return true
}

// unitIf lowers a statement-position `if`/`when` (original_source/src/
// generate/x86/value.rs HNode::When, statement form).
func unitIf(scene *Scene, t *Translation, v node.LUIf) bool {
	elseLabel := scene.label()
	endLabel := scene.label()

	if !eval(scene, t, v.Condition, scene.Primary.Register) {
		return false
	}
	t.testRR(scene.Primary.Register, scene.Primary.Register, node.B)
	t.jcc(condE, elseLabel)

	if !unit(scene, t, v.Then) {
		return false
	}
	t.jmp(endLabel)

	t.setPendingLabel(elseLabel)
	if v.Else != nil {
		if !unit(scene, t, v.Else) {
			return false
		}
	}
	t.setPendingLabel(endLabel)
	return true
}

// unitLoop lowers `Loop(body)` (While's lowered form, spec.md §4.4):
// body repeats until a Break inside it jumps to the label placed just
// past the loop.
func unitLoop(scene *Scene, t *Translation, v node.LULoop) bool {
	start := scene.label()
	end := scene.label()

	scene.breakLabels = append(scene.breakLabels, end)
	scene.continueLabels = append(scene.continueLabels, start)
	defer func() {
		scene.breakLabels = scene.breakLabels[:len(scene.breakLabels)-1]
		scene.continueLabels = scene.continueLabels[:len(scene.continueLabels)-1]
	}()

	t.setPendingLabel(start)
	if !unit(scene, t, v.Body) {
		return false
	}
	t.jmp(start)
	t.setPendingLabel(end)
	return true
}
