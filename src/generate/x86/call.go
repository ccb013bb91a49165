package x86

import "lucent/src/node"

// evalCall lowers an LCall used in value position; unit's LUCall arm shares
// this for the statement-position call whose result is discarded
// (original_source/src/generate/x86/call.rs `call`): save every
// currently-reserved register, push each argument in reverse order, emit
// a placeholder `call rel32` recorded as a Relative fixup, pop the
// arguments back off, then restore the saved registers.
func evalCall(scene *Scene, t *Translation, v node.LCall) bool {
	var saved []Register
	for r := range scene.Reserved {
		saved = append(saved, r)
	}
	for _, r := range saved {
		t.push(r)
	}

	width := PointerWidth(scene.Target)
	for i := len(v.Args) - 1; i >= 0; i-- {
		if !eval(scene, t, v.Args[i], scene.Primary.Register) {
			return false
		}
		t.push(scene.Primary.Register)
	}

	switch receiver := v.Receiver.(type) {
	case node.LReceiverPath:
		t.call(receiver.Path)
	case node.LReceiverMethod:
		if !eval(scene, t, receiver.Node, scene.Alternate.Register) {
			return false
		}
		t.emit(0xFF, modrm(Register(2), scene.Alternate.Register)) // call r/m (indirect), /2.
	default:
		return false
	}

	if len(v.Args) > 0 {
		t.addImm(Stack(scene.Target), int32(len(v.Args)*width.Bytes()), PointerWidth(scene.Target))
	}

	for i := len(saved) - 1; i >= 0; i-- {
		t.pop(saved[i])
	}
	return true
}
