package x86

import "lucent/src/node"

// Hand-rolled x86-64 instruction encoder. original_source leaned on
// iced_x86's assembler/BlockEncoder for this job (original_source/src/
// generate/x86/lower.rs); no Go library in the pack assembles x86 machine
// code (DESIGN.md records why none of the pack's binary/ELF-adjacent
// libraries substitute), so this package emits opcode bytes directly,
// the way the teacher's arm/riscv backends hand-roll their own output
// format (src/backend/arm, src/backend/riscv) one layer up the stack
// (text there, bytes here, since Mach-O needs real bytes to relocate).

// modrm packs a register-direct ModRM byte (mod=11).
func modrm(reg, rm Register) byte {
	return 0xC0 | byte(reg.Id()&7)<<3 | byte(rm.Id()&7)
}

// modrmMem packs a [base + disp32] ModRM byte, disp32 always emitted so
// callers never need a separate disp8 path.
func modrmMem(reg, base Register, disp int32) byte {
	return 0x80 | byte(reg.Id()&7)<<3 | byte(base.Id()&7)
}

// needsRex reports whether r is one of the extended (r8-r15) registers.
func needsRex(r Register) bool { return r.Id() >= 8 }

// rex builds a REX prefix; w selects 64-bit operand size, r/x/b extend
// the ModRM.reg/SIB.index/ModRM.rm (or opcode+rd) fields respectively.
func rex(w, r, x, b bool) byte {
	var v byte = 0x40
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if x {
		v |= 0x02
	}
	if b {
		v |= 0x01
	}
	return v
}

// maybeRex appends a REX prefix to out if w is set or either register
// needs one, matching x86-64's rule that REX is only emitted when
// something about the encoding actually requires it.
func maybeRex(out []byte, w bool, reg, rm Register) []byte {
	if w || needsRex(reg) || needsRex(rm) {
		out = append(out, rex(w, needsRex(reg), false, needsRex(rm)))
	}
	return out
}

func le32(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}

// prefixFor16 returns the operand-size override prefix bytes for width.
func prefixFor16(width node.Width) []byte {
	if width == node.W {
		return []byte{0x66}
	}
	return nil
}

// --------------------------------
// ----- Register-to-register -----
// --------------------------------

// movRR emits `mov dst, src` at width (original_source/src/generate/
// x86/node.rs `transfer`'s register-to-register case).
func (t *Translation) movRR(dst, src Register, width node.Width) {
	var op byte = 0x89
	if width == node.B {
		op = 0x88
	}
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, src, dst)
	out = append(out, op, modrm(src, dst))
	t.emit(out...)
}

// arithRR emits a register/register two-operand arithmetic instruction
// (add/sub/cmp/test/xor/and/or), opByte the wide (16/32/64-bit) opcode,
// which is always one more than the matching byte-size opcode in x86's
// opcode table (original_source/src/generate/x86/binary.rs's per-
// operator instruction selection).
func (t *Translation) arithRR(opByte byte, dst, src Register, width node.Width) {
	op := opByte
	if width == node.B {
		op--
	}
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, src, dst)
	out = append(out, op, modrm(src, dst))
	t.emit(out...)
}

const (
	opAddRM byte = 0x01
	opSubRM byte = 0x29
	opCmpRM byte = 0x39
	opTestRM byte = 0x85
	opXorRM byte = 0x31
	opAndRM byte = 0x21
	opOrRM  byte = 0x09
)

func (t *Translation) addRR(dst, src Register, w node.Width)  { t.arithRR(opAddRM, dst, src, w) }
func (t *Translation) subRR(dst, src Register, w node.Width)  { t.arithRR(opSubRM, dst, src, w) }
func (t *Translation) cmpRR(dst, src Register, w node.Width)  { t.arithRR(opCmpRM, dst, src, w) }
func (t *Translation) testRR(dst, src Register, w node.Width) { t.arithRR(opTestRM, dst, src, w) }
func (t *Translation) xorRR(dst, src Register, w node.Width)  { t.arithRR(opXorRM, dst, src, w) }
func (t *Translation) andRR(dst, src Register, w node.Width)  { t.arithRR(opAndRM, dst, src, w) }
func (t *Translation) orRR(dst, src Register, w node.Width)   { t.arithRR(opOrRM, dst, src, w) }

// imulRR emits the two-operand `imul dst, src` (0F AF /r).
func (t *Translation) imulRR(dst, src Register, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, dst, src)
	out = append(out, 0x0F, 0xAF, modrm(dst, src))
	t.emit(out...)
}

// imulRRI emits `imul dst, src, imm32` (69 /r id). Nothing in this
// package calls it: pointer Add/Minus is emitted by evalDual as a plain
// add/sub of the operands src/lower produced.
func (t *Translation) imulRRI(dst, src Register, imm int32, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, dst, src)
	out = append(out, 0x69, modrm(dst, src))
	out = append(out, le32(imm)...)
	t.emit(out...)
}

// movImm32 emits `mov dst, imm32` (sign-extended to width for 64-bit,
// C7 /0 id; original_source/src/generate/x86/node.rs `transfer`'s
// immediate case).
func (t *Translation) movImm32(dst Register, imm int32, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, 0, dst)
	op := byte(0xC7)
	if width == node.B {
		op = 0xC6
	}
	out = append(out, op, modrm(0, dst))
	if width == node.B {
		out = append(out, byte(imm))
	} else if width == node.W {
		out = append(out, byte(imm), byte(imm>>8))
	} else {
		out = append(out, le32(imm)...)
	}
	t.emit(out...)
}

// arithImm32 emits a register/immediate arithmetic instruction (81 /n id,
// or 80 /n ib for byte width); n selects the operation.
func (t *Translation) arithImm32(n byte, dst Register, imm int32, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, 0, dst)
	op := byte(0x81)
	if width == node.B {
		op = 0x80
	}
	out = append(out, op, 0xC0|n<<3|byte(dst.Id()&7))
	if width == node.B {
		out = append(out, byte(imm))
	} else if width == node.W {
		out = append(out, byte(imm), byte(imm>>8))
	} else {
		out = append(out, le32(imm)...)
	}
	t.emit(out...)
}

func (t *Translation) addImm(dst Register, imm int32, w node.Width) { t.arithImm32(0, dst, imm, w) }
func (t *Translation) subImm(dst Register, imm int32, w node.Width) { t.arithImm32(5, dst, imm, w) }
func (t *Translation) cmpImm(dst Register, imm int32, w node.Width) { t.arithImm32(7, dst, imm, w) }

// -----------------------------
// ----- Memory operands  ------
// -----------------------------

// loadMem emits `mov dst, [base+disp32]` (8B /r).
func (t *Translation) loadMem(dst, base Register, disp int32, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, dst, base)
	op := byte(0x8B)
	if width == node.B {
		op = 0x8A
	}
	out = append(out, op, modrmMem(dst, base, disp))
	if (base.Id() & 7) == RegSP.Id() {
		out = append(out, 0x24) // SIB required whenever rm encodes RSP/R12.
	}
	out = append(out, le32(disp)...)
	t.emit(out...)
}

// storeMem emits `mov [base+disp32], src` (89 /r).
func (t *Translation) storeMem(base Register, disp int32, src Register, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, src, base)
	op := byte(0x89)
	if width == node.B {
		op = 0x88
	}
	out = append(out, op, modrmMem(src, base, disp))
	if (base.Id() & 7) == RegSP.Id() {
		out = append(out, 0x24)
	}
	out = append(out, le32(disp)...)
	t.emit(out...)
}

// lea emits `lea dst, [base+disp32]` (8D /r), always at pointer width.
func (t *Translation) lea(dst, base Register, disp int32, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, dst, base)
	out = append(out, 0x8D, modrmMem(dst, base, disp))
	if (base.Id() & 7) == RegSP.Id() {
		out = append(out, 0x24)
	}
	out = append(out, le32(disp)...)
	t.emit(out...)
}

// ------------------------------------
// ----- Stack / control transfer -----
// ------------------------------------

// push emits `push reg` (50+rd).
func (t *Translation) push(reg Register) {
	var out []byte
	if needsRex(reg) {
		out = append(out, rex(false, false, false, true))
	}
	out = append(out, 0x50+byte(reg.Id()&7))
	t.emit(out...)
}

// pop emits `pop reg` (58+rd).
func (t *Translation) pop(reg Register) {
	var out []byte
	if needsRex(reg) {
		out = append(out, rex(false, false, false, true))
	}
	out = append(out, 0x58+byte(reg.Id()&7))
	t.emit(out...)
}

// ret emits `ret` (C3).
func (t *Translation) ret() { t.emit(0xC3) }

// leave emits `leave` (C9): mov rsp,rbp; pop rbp in one opcode.
func (t *Translation) leave() { t.emit(0xC9) }

// cltd emits `cdq`/`cqo` depending on width: sign-extends the primary
// accumulator into the D register ahead of idiv (original_source/src/
// generate/x86/binary.rs Divide/Modulo's sign-extension step).
func (t *Translation) cltd(width node.Width) {
	if width == node.Q {
		t.emit(rex(true, false, false, false), 0x99)
		return
	}
	t.emit(0x99)
}

// idiv emits `idiv reg` (F7 /7).
func (t *Translation) idiv(reg Register, width node.Width) { t.divOp(7, reg, width) }

// div emits `div reg` (F7 /6).
func (t *Translation) div(reg Register, width node.Width) { t.divOp(6, reg, width) }

func (t *Translation) divOp(n byte, reg Register, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, 0, reg)
	op := byte(0xF7)
	if width == node.B {
		op = 0xF6
	}
	out = append(out, op, 0xC0|n<<3|byte(reg.Id()&7))
	t.emit(out...)
}

// shiftCL emits `shl/shr/sar reg, cl` (D3 /n).
func (t *Translation) shiftCL(n byte, reg Register, width node.Width) {
	out := prefixFor16(width)
	out = maybeRex(out, width == node.Q, 0, reg)
	out = append(out, 0xD3, 0xC0|n<<3|byte(reg.Id()&7))
	t.emit(out...)
}

func (t *Translation) shl(reg Register, w node.Width) { t.shiftCL(4, reg, w) }
func (t *Translation) shr(reg Register, w node.Width) { t.shiftCL(5, reg, w) }
func (t *Translation) sar(reg Register, w node.Width) { t.shiftCL(7, reg, w) }

// movzx emits `movzx dst, src` widening src (origin width) into dst
// (target width), 0F B6/B7 /r. A double origin has no movzx form: a
// 32-bit `mov dst, src` zero-extends into the full register instead.
func (t *Translation) movzx(dst, src Register, origin, target node.Width) {
	if origin == node.D {
		t.movRR(dst, src, node.D)
		return
	}
	out := prefixFor16(target)
	out = maybeRex(out, target == node.Q, dst, src)
	op := byte(0xB7)
	if origin == node.B {
		op = 0xB6
	}
	out = append(out, 0x0F, op, modrm(dst, src))
	t.emit(out...)
}

// movsx emits the sign-extending counterpart, `movsxd` when widening a
// double into a quad (0F BE/BF /r for byte/word origins, 63 /r for a
// double origin).
func (t *Translation) movsx(dst, src Register, origin, target node.Width) {
	out := prefixFor16(target)
	out = maybeRex(out, target == node.Q, dst, src)
	if origin == node.D {
		out = append(out, 0x63, modrm(dst, src))
		t.emit(out...)
		return
	}
	op := byte(0xBF)
	if origin == node.B {
		op = 0xBE
	}
	out = append(out, 0x0F, op, modrm(dst, src))
	t.emit(out...)
}

// condition is an x86 condition code (the low nibble of Jcc/SETcc's
// opcode), derived from an HBinary comparison operator
// (original_source/src/generate/x86/binary.rs Compare's setcc lookup).
type condition byte

const (
	condE  condition = 0x4
	condNE condition = 0x5
	condL  condition = 0xC
	condLE condition = 0xE
	condG  condition = 0xF
	condGE condition = 0xD
)

// setcc emits `setcc dst` (0F 90+cc /0), a byte-sized 0/1 result.
func (t *Translation) setcc(cc condition, dst Register) {
	var out []byte
	if needsRex(dst) {
		out = append(out, rex(false, false, false, true))
	}
	out = append(out, 0x0F, 0x90+byte(cc), 0xC0|byte(dst.Id()&7))
	t.emit(out...)
}

// jcc emits a conditional jump to label, backpatched once label resolves
// (0F 80+cc cd).
func (t *Translation) jcc(cc condition, label int) {
	t.emit(0x0F, 0x80+byte(cc))
	t.recordJump(label)
}

// jmp emits an unconditional jump to label (E9 cd).
func (t *Translation) jmp(label int) {
	t.emit(0xE9)
	t.recordJump(label)
}

// call emits a call to a function not yet placed, recorded as a Relative
// fixup for src/binary to resolve (E8 cd).
func (t *Translation) call(target node.FPath) {
	t.emit(0xE8)
	t.recordCall(target)
}
