package x86

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lucent/src/node"
)

func TestMovRREmitsRexWForQuadWidth(t *testing.T) {
	tr := NewTranslation()
	tr.movRR(RegB, RegA, node.Q)
	// REX.W(0x48) + MOV r/m64,r64(0x89) + ModRM(mod=11,reg=RegA,rm=RegB).
	assert.Equal(t, []byte{0x48, 0x89, 0xC3}, tr.Bytes)
}

func TestMovRRNoRexForDoubleWidthLegacyRegisters(t *testing.T) {
	tr := NewTranslation()
	tr.movRR(RegB, RegA, node.D)
	assert.Equal(t, []byte{0x89, 0xC3}, tr.Bytes)
}

func TestMovRRSetsRexBForExtendedDestination(t *testing.T) {
	tr := NewTranslation()
	tr.movRR(RegR8, RegA, node.D)
	// REX.B must be set since RegR8's id is 8 (needs the extension bit).
	assert.Equal(t, byte(0x41), tr.Bytes[0])
}

func TestMovImm32EncodesWordWidthWithOperandSizePrefix(t *testing.T) {
	tr := NewTranslation()
	tr.movImm32(RegA, 5, node.W)
	assert.Equal(t, byte(0x66), tr.Bytes[0])
}

func TestPushPopRoundTrip(t *testing.T) {
	tr := NewTranslation()
	tr.push(RegA)
	tr.pop(RegA)
	assert.Equal(t, []byte{0x50, 0x58}, tr.Bytes)
}

func TestPushExtendedRegisterNeedsRexB(t *testing.T) {
	tr := NewTranslation()
	tr.push(RegR9)
	assert.Equal(t, []byte{0x41, 0x51}, tr.Bytes)
}

func TestRetAndLeave(t *testing.T) {
	tr := NewTranslation()
	tr.leave()
	tr.ret()
	assert.Equal(t, []byte{0xC9, 0xC3}, tr.Bytes)
}

func TestRecordJumpReservesFourBytePlaceholder(t *testing.T) {
	tr := NewTranslation()
	tr.emit(0x90)
	label := 1
	tr.recordJump(label)
	assert.Len(t, tr.Bytes, 5)
	assert.Equal(t, []byte{0, 0, 0, 0}, tr.Bytes[1:5])
}

func TestResolveLabelsPatchesRelativeOffset(t *testing.T) {
	tr := NewTranslation()
	tr.jmp(1)
	tr.setPendingLabel(1)
	tr.emit(0x90) // nop to mark the label's position.

	ok := tr.resolveLabels()
	assert.True(t, ok)
	// jmp rel32 is 5 bytes (E9 + 4-byte rel32); label lands right after it,
	// so the patched displacement is 0.
	assert.Equal(t, []byte{0xE9, 0, 0, 0, 0}, tr.Bytes[:5])
}

func TestResolveLabelsFailsOnUnresolvedLabel(t *testing.T) {
	tr := NewTranslation()
	tr.jmp(99)
	assert.False(t, tr.resolveLabels())
}

func TestRecordCallAppendsRelativeFixup(t *testing.T) {
	tr := NewTranslation()
	path := node.FPath{Path: node.NewPath("main"), Overload: 0}
	tr.call(path)
	assert.Len(t, tr.Relative, 1)
	assert.Equal(t, path, tr.Relative[0].Target)
}
