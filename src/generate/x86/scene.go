package x86

import (
	"lucent/src/inference"
	"lucent/src/lower"
	"lucent/src/node"
	"lucent/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Scene is the per-function codegen context threaded through the value/
// unit walk, grounded on original_source/src/generate/x86/lower.rs's
// Scene (the real one; an earlier scene.rs stub in the same directory
// predates it and carries a different, superseded shape). Unlike the
// Rust original's single flat Mode, Target already distinguishes
// 16/32/64-bit pointer widths (src/util.Target), so Scene reuses it
// directly rather than introducing a parallel Mode enum.
type Scene struct {
	Target   util.Target
	Types    *inference.Types
	Primary  RegisterSet
	Alternate RegisterSet
	Reserved map[Register]bool

	offsets    map[node.Variable]int
	nextOffset int
	nextLabel  int
	epilogue   int

	breakLabels    []int
	continueLabels []int
}

// Translation accumulates one function's emitted bytes plus the fixups
// that must be patched once every function's address is known
// (original_source/src/generate/x86/lower.rs Translation). Local jumps
// (While/When) are backpatched within this package by resolveLabels once
// the whole body has been emitted; cross-function calls are left as
// Relative records for src/binary's linker pass (spec.md §4.6).
type Translation struct {
	Bytes    []byte
	Relative []Relative

	pendingLabel int
	labels       map[int]int // label id -> byte offset, once resolved.
	fixups       []labelFixup
}

// labelFixup is a not-yet-resolved rel32 operand pointing at a local
// label, recorded at emission time and patched once the label's byte
// offset is known (original_source/src/generate/x86/lower.rs defers this
// same job to iced_x86's BlockEncoder; this package performs it directly
// since it encodes bytes itself rather than handing iced_x86 a
// to-be-assembled instruction stream).
type labelFixup struct {
	label  int
	at     int // byte offset of the rel32 operand to patch.
	fromIP int // byte offset immediately following the rel32 operand.
}

// Relative is an unresolved call-site fixup: the rel32 operand starting at
// byte Offset (just past the call's E8 opcode) needs target's final
// address patched in once every function in the unit has been placed (original_source/src/
// generate/section.rs Relative, spec.md §4.6 "rel32 patching").
type Relative struct {
	Offset int
	Target node.FPath
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewScene starts a Scene for one function body, reserving the register
// families named by explicit register literals in its lowered body (see
// reservedOf; original_source/src/generate/x86/register.rs `reserved`).
func NewScene(target util.Target, types *inference.Types, fn *lower.Function) (*Scene, bool) {
	reserved := reservedOf(types, fn)
	primary, alternate, ok := Registers(reserved)
	if !ok {
		return nil, false
	}
	return &Scene{
		Target: target, Types: types, Primary: primary, Alternate: alternate,
		Reserved: reserved, offsets: make(map[node.Variable]int),
	}, true
}

// reservedOf scans fn's body for explicit register literals (LRegister)
// and reserves the families they name, the way original_source/src/
// generate/x86/register.rs `reserved` scans a function's declared
// register-typed parameters/values; here the same information shows up
// as LRegister nodes reached anywhere in the lowered body, since this
// port's type system has no separate register-typed declaration form.
func reservedOf(types *inference.Types, fn *lower.Function) map[Register]bool {
	reserved := make(map[Register]bool)
	walkUnit(fn.Body, func(n node.LNode) {
		if lr, ok := n.(node.LRegister); ok {
			if r, ok := ByName(string(lr.Name)); ok {
				reserved[r] = true
			}
		}
	})
	return reserved
}

// swap exchanges Primary and Alternate, used by binary-op evaluation
// between evaluating the left and right operand (original_source/src/
// generate/x86/binary.rs `binary`'s primary/alternate swap around the
// stack push).
func (s *Scene) swap() { s.Primary, s.Alternate = s.Alternate, s.Primary }

// variable returns v's frame-relative byte offset, assigning one on
// first use: parameters are pre-seeded positive (past the saved base
// register and return address) by assignParameters; anything else is a
// local, bump-allocated negative and growing down from the frame base
// (original_source/src/generate/x86/lower.rs Scene::variable).
func (s *Scene) variable(v node.Variable, size int) int {
	if off, ok := s.offsets[v]; ok {
		return off
	}
	s.nextOffset -= size
	s.offsets[v] = s.nextOffset
	return s.nextOffset
}

// assignParameter pre-seeds v's offset, used once per declared parameter
// in order (original_source/src/generate/x86/function.rs `parameters`).
func (s *Scene) assignParameter(v node.Variable, offset int) {
	s.offsets[v] = offset
}

// frameSize returns the total negative-offset span locals have claimed,
// rounded up to Target's pointer width (original_source/src/generate/
// x86/function.rs's `sub rsp, frame_size` prologue operand).
func (s *Scene) frameSize() int {
	size := -s.nextOffset
	width := PointerWidth(s.Target).Bytes()
	if rem := size % width; rem != 0 {
		size += width - rem
	}
	return size
}

// label allocates a fresh local label id (original_source/src/generate/
// x86/lower.rs Scene::label).
func (s *Scene) label() int {
	s.nextLabel++
	return s.nextLabel
}

// ---------------------
// --- Translation -----
// ---------------------

// NewTranslation starts an empty instruction stream.
func NewTranslation() *Translation {
	return &Translation{labels: make(map[int]int)}
}

// setPendingLabel arranges for the next emitted byte's offset to resolve
// label (original_source/src/generate/x86/lower.rs Translation::
// set_pending_label), used ahead of a `while`/`when` join point whose
// instruction isn't known yet. If another label is still pending, a nop
// is emitted first so the earlier label resolves to its own byte and the
// two never stack.
func (t *Translation) setPendingLabel(label int) {
	if t.pendingLabel != 0 {
		t.emit(0x90)
	}
	t.pendingLabel = label
}

// mark resolves t.pendingLabel (if any) to the current byte offset; every
// emit helper calls this before appending its own bytes so a label always
// lands on the first byte of the instruction that follows it.
func (t *Translation) mark() {
	if t.pendingLabel != 0 {
		t.labels[t.pendingLabel] = len(t.Bytes)
		t.pendingLabel = 0
	}
}

// emit appends raw bytes, resolving any pending label first.
func (t *Translation) emit(b ...byte) {
	t.mark()
	t.Bytes = append(t.Bytes, b...)
}

// offset returns the current end-of-stream byte offset.
func (t *Translation) offset() int { return len(t.Bytes) }

// recordJump reserves a 4-byte rel32 placeholder targeting label and
// records a fixup to patch it in once label resolves.
func (t *Translation) recordJump(label int) {
	t.mark()
	at := len(t.Bytes)
	t.Bytes = append(t.Bytes, 0, 0, 0, 0)
	t.fixups = append(t.fixups, labelFixup{label: label, at: at, fromIP: at + 4})
}

// recordCall reserves a 4-byte rel32 placeholder for a cross-function
// call and records it as a Relative fixup for src/binary to resolve
// (original_source/src/generate/x86/call.rs's own Relative bookkeeping).
func (t *Translation) recordCall(target node.FPath) {
	t.mark()
	at := len(t.Bytes)
	t.Bytes = append(t.Bytes, 0, 0, 0, 0)
	t.Relative = append(t.Relative, Relative{Offset: at, Target: target})
}

// resolveLabels patches every recorded local-jump fixup now that every
// label in labels has a final byte offset; called once the whole function
// body has been translated.
func (t *Translation) resolveLabels() bool {
	for _, f := range t.fixups {
		target, ok := t.labels[f.label]
		if !ok {
			return false
		}
		rel := int32(target - f.fromIP)
		t.Bytes[f.at] = byte(rel)
		t.Bytes[f.at+1] = byte(rel >> 8)
		t.Bytes[f.at+2] = byte(rel >> 16)
		t.Bytes[f.at+3] = byte(rel >> 24)
	}
	return true
}
