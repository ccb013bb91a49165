package x86

import "lucent/src/node"

// reserve push/pop-protects reg around fn if reg currently holds one of
// Scene's two live values (original_source/src/generate/x86/node.rs
// `reserve`), so a helper that needs reg for its own purposes (the A/D
// pair for idiv, CL for a variable shift count) never clobbers a value
// the caller is still relying on.
func reserve(scene *Scene, t *Translation, reg Register, fn func()) {
	live := reg == scene.Primary.Register || reg == scene.Alternate.Register
	if live {
		t.push(reg)
	}
	fn()
	if live {
		t.pop(reg)
	}
}

// convey evaluates n into reg, routing it there via the scene's natural
// primary register and a reserve-protected move if reg isn't already the
// one eval would have picked (original_source/src/generate/x86/node.rs
// `convey`).
func convey(scene *Scene, t *Translation, n node.LNode, reg Register, width node.Width) bool {
	if reg == scene.Primary.Register {
		return eval(scene, t, n, reg)
	}
	ok := true
	reserve(scene, t, reg, func() {
		if !eval(scene, t, n, scene.Primary.Register) {
			ok = false
			return
		}
		t.movRR(reg, scene.Primary.Register, width)
	})
	return ok
}

// widthOf returns the register width a value of kind occupies
// (original_source/src/generate/x86/node.rs `size`'s RType->Size
// mapping); composite types (Structure/Array/Slice) have no single
// register width and are out of this package's scope, matching
// original_source/src/generate/x86/value.rs, which leaves Create/Field/
// Slice/Index/Array concretely unimplemented.
func widthOf(scene *Scene, kind node.RType) node.Width {
	switch k := kind.(type) {
	case node.RIntegral:
		return k.Width
	case node.RIntegralSize:
		return PointerWidth(scene.Target)
	case node.RTruth:
		return node.B
	case node.RRune:
		return node.D
	case node.RPointer:
		return PointerWidth(scene.Target)
	default:
		return PointerWidth(scene.Target)
	}
}
