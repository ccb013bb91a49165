// Package x86 lowers L-IR (src/lower's output) into x86-64 machine code
// (spec.md §4.5): a register allocator that rotates a primary/alternate
// pair of general-purpose registers, a Scene/Translation pair threaded
// through the statement/expression walk, and a small hand-rolled
// instruction encoder for the opcode subset the language needs.
package x86

import (
	"lucent/src/node"
	"lucent/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Register is a physical x86 general-purpose register, identified the
// same way across every operand width (original_source/src/generate/
// x86/register.rs wraps iced_x86::Register the same way; the numbering
// below instead follows the teacher's own regfile.Register contract:
// a small integer id plus a String method, grounded on
// src/backend/regfile/regfile.go's Register interface).
type Register int

// Register id order mirrors the x86-64 ModRM/REX.[RXB] encoding: id 0-7
// are the legacy registers (no REX.B needed), id 8-15 are r8-r15 (REX.B
// required).
const (
	RegA Register = iota
	RegC
	RegD
	RegB
	RegSP
	RegBP
	RegSI
	RegDI
	RegR8
	RegR9
	RegR10
	RegR11
	RegR12
	RegR13
	RegR14
	RegR15
)

// Id returns the register's 4-bit encoding, used both in ModRM.rm/reg
// and to decide whether REX.B/R must be set.
func (r Register) Id() int { return int(r) }

// names indexes [register][width] -> assembler mnemonic, used only for
// diagnostics and disassembly-free debugging (spec.md carries no
// requirement to print assembly, unlike original_source's lower.rs,
// which printed NASM text via iced_x86::NasmFormatter purely as a
// development aid; this table exists for the same reason but is never
// on a hot path).
var names = [16][4]string{
	RegA:   {"al", "ax", "eax", "rax"},
	RegC:   {"cl", "cx", "ecx", "rcx"},
	RegD:   {"dl", "dx", "edx", "rdx"},
	RegB:   {"bl", "bx", "ebx", "rbx"},
	RegSP:  {"spl", "sp", "esp", "rsp"},
	RegBP:  {"bpl", "bp", "ebp", "rbp"},
	RegSI:  {"sil", "si", "esi", "rsi"},
	RegDI:  {"dil", "di", "edi", "rdi"},
	RegR8:  {"r8l", "r8w", "r8d", "r8"},
	RegR9:  {"r9l", "r9w", "r9d", "r9"},
	RegR10: {"r10l", "r10w", "r10d", "r10"},
	RegR11: {"r11l", "r11w", "r11d", "r11"},
	RegR12: {"r12l", "r12w", "r12d", "r12"},
	RegR13: {"r13l", "r13w", "r13d", "r13"},
	RegR14: {"r14l", "r14w", "r14d", "r14"},
	RegR15: {"r15l", "r15w", "r15d", "r15"},
}

// widthIndex maps a node.Width to names' column.
func widthIndex(width node.Width) int {
	switch width {
	case node.B:
		return 0
	case node.W:
		return 1
	case node.D:
		return 2
	default:
		return 3
	}
}

// String renders r at width, e.g. String(node.Q) == "rax".
func (r Register) String(width node.Width) string { return names[r][widthIndex(width)] }

// RegisterSet is one logical register considered at every width (spec.md
// §4.5's register allocator hands out a pair of these, exactly as
// original_source/src/generate/x86/register.rs's `Registers([Register;
// 4])`); the four slots are Register itself, since unlike iced_x86 this
// package uses one Register id across all widths and instead varies the
// REX/opcode-size bits at encode time.
type RegisterSet struct{ Register Register }

// generalPurpose is the fixed allocation order non-reserved registers are
// drawn from, deliberately skipping SP/BP (frame bookkeeping) and
// DI (Mode.Destination, reserved for string-ish ops original_source
// carves out the same way in register.rs's Mode::destination).
var generalPurpose = []Register{RegA, RegB, RegC, RegD, RegSI, RegR8, RegR9, RegR10, RegR11, RegR12, RegR13, RegR14, RegR15}

// ---------------------
// ----- Functions -----
// ---------------------

// Base returns the frame-pointer register for target (original_source/
// src/generate/x86/register.rs `Mode::base`).
func Base(target util.Target) Register { return RegBP }

// Stack returns the stack-pointer register for target (`Mode::stack`).
func Stack(target util.Target) Register { return RegSP }

// PointerWidth returns the operand width a pointer/address has under
// target (16/32/64-bit mode give a word/double/quad pointer).
func PointerWidth(target util.Target) node.Width {
	switch target.Bits() {
	case 16:
		return node.W
	case 32:
		return node.D
	default:
		return node.Q
	}
}

// byName indexes the register mnemonics an LRegister node may name,
// independent of operand width, so an explicit `%rax`/`%eax`/`%al` literal
// in source all resolve to the same family.
var byName = map[string]Register{
	"al": RegA, "ax": RegA, "eax": RegA, "rax": RegA,
	"cl": RegC, "cx": RegC, "ecx": RegC, "rcx": RegC,
	"dl": RegD, "dx": RegD, "edx": RegD, "rdx": RegD,
	"bl": RegB, "bx": RegB, "ebx": RegB, "rbx": RegB,
	"sp": RegSP, "esp": RegSP, "rsp": RegSP,
	"bp": RegBP, "ebp": RegBP, "rbp": RegBP,
	"si": RegSI, "esi": RegSI, "rsi": RegSI,
	"di": RegDI, "edi": RegDI, "rdi": RegDI,
	"r8": RegR8, "r9": RegR9, "r10": RegR10, "r11": RegR11,
	"r12": RegR12, "r13": RegR13, "r14": RegR14, "r15": RegR15,
}

// ByName resolves an explicit register name from an LRegister node
// (original_source/src/generate/x86/register.rs `register`, the
// identifier->Register parse used for source-level register literals).
func ByName(name string) (Register, bool) {
	r, ok := byName[name]
	return r, ok
}

// Registers allocates a (primary, alternate) pair of RegisterSets not in
// reserved, matching original_source/src/generate/x86/register.rs
// `registers`: two free registers are required; spec.md §7 "unable to
// allocate registers for function" is the caller's diagnostic when this
// reports false.
func Registers(reserved map[Register]bool) (primary, alternate RegisterSet, ok bool) {
	var free []Register
	for _, r := range generalPurpose {
		if !reserved[r] {
			free = append(free, r)
		}
		if len(free) == 2 {
			break
		}
	}
	if len(free) < 2 {
		return RegisterSet{}, RegisterSet{}, false
	}
	return RegisterSet{Register: free[0]}, RegisterSet{Register: free[1]}, true
}
