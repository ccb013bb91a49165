package x86

import (
	"lucent/src/lower"
	"lucent/src/node"
)

// Section is one function's encoded body, ready for src/binary to place
// and relocate (original_source/src/generate/section.rs Section).
type Section struct {
	Bytes    []byte
	Relative []Relative
}

// Translate lowers fn's L-IR body into a Section (original_source/src/
// generate/x86/lower.rs `translate`): assigns parameter/local frame
// offsets, emits the prologue, walks the body, then emits the epilogue
// and patches the prologue's frame-size placeholder (or removes it
// entirely when the function needs no locals).
func Translate(scene *Scene, fn *lower.Function, path node.FPath) (*Section, bool) {
	assignParameters(scene, fn.Parameters)
	scene.epilogue = scene.label()

	t := NewTranslation()
	subAt := entry(t, scene)

	if !unit(scene, t, fn.Body) {
		return nil, false
	}

	render(scene, t)
	if !t.resolveLabels() {
		return nil, false
	}
	patchFrame(t, scene, subAt)

	return &Section{Bytes: t.Bytes, Relative: t.Relative}, true
}

// assignParameters seeds each parameter's positive stack offset, starting
// past the saved base register and return address (original_source/src/
// generate/x86/function.rs `parameters`).
func assignParameters(scene *Scene, params []node.LTarget) {
	width := PointerWidth(scene.Target).Bytes()
	offset := width * 2
	for _, p := range params {
		scene.assignParameter(p.Variable, offset)
		offset += width
	}
}

// entry emits the standard push-base/mov-base/sub-stack prologue
// (original_source/src/generate/x86/function.rs `entry`), returning the
// byte offset four bytes before the end of the `sub` instruction (its
// imm32 operand in 32/64-bit mode) so patchFrame can re-encode it (or
// strip the whole instruction) once the body's locals are known.
func entry(t *Translation, scene *Scene) int {
	base, stack := Base(scene.Target), Stack(scene.Target)
	width := PointerWidth(scene.Target)
	t.push(base)
	t.movRR(base, stack, width)
	t.arithImm32(5, stack, 0, width) // placeholder; patched by patchFrame.
	return len(t.Bytes) - 4
}

// patchFrame re-encodes entry's `sub rsp, N` placeholder with the frame
// size locals actually claimed, or removes the instruction entirely when
// the function needs no frame at all (original_source/src/generate/x86/
// lower.rs `translate`'s "0 frame size -> drop the instruction" special
// case). Local jumps are already resolved to position-independent rel32
// displacements between bytes that all follow the prologue, so removing
// the instruction only shifts the Relative call offsets.
func patchFrame(t *Translation, scene *Scene, subAt int) {
	size := int32(scene.frameSize())
	sub := NewTranslation()
	sub.arithImm32(5, Stack(scene.Target), size, PointerWidth(scene.Target))
	end := subAt + 4
	start := end - len(sub.Bytes)
	if size != 0 {
		copy(t.Bytes[start:end], sub.Bytes)
		return
	}
	t.Bytes = append(t.Bytes[:start], t.Bytes[end:]...)
	for i := range t.Relative {
		t.Relative[i].Offset -= end - start
	}
}

// render emits the single shared epilogue every `return` jumps to:
// `leave; ret` (original_source/src/generate/x86/function.rs `render`).
// The value transfer into ReturnRegister happens at each LUReturn site
// (see unit.go), mirroring the original's per-return-site transfer
// rather than threading a block-result value down to one join point.
func render(scene *Scene, t *Translation) {
	t.setPendingLabel(scene.epilogue)
	t.leave()
	t.ret()
}

// ReturnRegister is the ABI register a non-void return value transfers
// into before the epilogue (original_source/src/generate/x86/function.rs
// `render`'s transfer target); this port only targets the System V
// convention Mach-O/macOS x86-64 uses.
func ReturnRegister() Register { return RegA }
