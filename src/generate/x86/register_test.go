package x86

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lucent/src/node"
	"lucent/src/util"
)

func TestRegisterStringVariesByWidth(t *testing.T) {
	assert.Equal(t, "al", RegA.String(node.B))
	assert.Equal(t, "ax", RegA.String(node.W))
	assert.Equal(t, "eax", RegA.String(node.D))
	assert.Equal(t, "rax", RegA.String(node.Q))
}

func TestPointerWidthTracksTarget(t *testing.T) {
	assert.Equal(t, node.W, PointerWidth(util.X86_16))
	assert.Equal(t, node.D, PointerWidth(util.X86_32))
	assert.Equal(t, node.Q, PointerWidth(util.X86_64))
}

func TestRegistersAllocatesFirstTwoFree(t *testing.T) {
	primary, alternate, ok := Registers(nil)
	assert.True(t, ok)
	assert.Equal(t, RegA, primary.Register)
	assert.Equal(t, RegB, alternate.Register)
}

func TestRegistersSkipsReserved(t *testing.T) {
	primary, alternate, ok := Registers(map[Register]bool{RegA: true})
	assert.True(t, ok)
	assert.Equal(t, RegB, primary.Register)
	assert.Equal(t, RegC, alternate.Register)
}

func TestRegistersFailsWithFewerThanTwoFree(t *testing.T) {
	reserved := make(map[Register]bool)
	for _, r := range generalPurpose[:len(generalPurpose)-1] {
		reserved[r] = true
	}
	_, _, ok := Registers(reserved)
	assert.False(t, ok)
}

func TestByNameResolvesEveryMnemonicToItsFamily(t *testing.T) {
	r, ok := ByName("eax")
	assert.True(t, ok)
	assert.Equal(t, RegA, r)

	r, ok = ByName("rdi")
	assert.True(t, ok)
	assert.Equal(t, RegDI, r)

	_, ok = ByName("nonsense")
	assert.False(t, ok)
}
