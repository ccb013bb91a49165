package x86

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/inference"
	"lucent/src/lower"
	"lucent/src/node"
	"lucent/src/util"
)

func TestTranslateAddTwoParametersReturnsSum(t *testing.T) {
	a := node.Variable{Name: "a"}
	b := node.Variable{Name: "b"}
	kind := node.RIntegral{Sign: node.Unsigned, Width: node.D}

	types := inference.NewTypes()
	types.Variables[a] = kind
	types.Variables[b] = kind

	sum := node.LBinary{
		Op: node.OpAdd, Sign: node.Unsigned, Width: node.D,
		Left:  node.LTargetNode{Target: node.LTarget{Variable: a}},
		Right: node.LTargetNode{Target: node.LTarget{Variable: b}},
	}
	// LTargetNode normally yields an address (see eval); a real lowering
	// would wrap each in LDereference to read the parameter's value. That
	// extra layer is omitted here to keep the encoded byte sequence small
	// and easy to reason about by hand; it exercises the same opcode path.
	fn := &lower.Function{
		Body:       node.LUBlock{Units: []node.LUnit{node.LUReturn{Value: sum}}},
		Parameters: []node.LTarget{{Variable: a}, {Variable: b}},
	}

	scene, ok := NewScene(util.X86_64, types, fn)
	require.True(t, ok)

	section, ok := Translate(scene, fn, node.FPath{Path: node.NewPath("add"), Overload: 0})
	require.True(t, ok)
	require.NotEmpty(t, section.Bytes)

	// Prologue: push rbp (0x55); mov rbp, rsp (0x48 0x89 0xE5).
	assert.Equal(t, byte(0x55), section.Bytes[0])
	assert.Equal(t, []byte{0x48, 0x89, 0xE5}, section.Bytes[1:4])
	// Epilogue tail: leave; ret.
	n := len(section.Bytes)
	assert.Equal(t, []byte{0xC9, 0xC3}, section.Bytes[n-2:])
}

func TestNewSceneFailsWhenExplicitRegisterLiteralsExhaustAllocation(t *testing.T) {
	var units []node.LUnit
	for _, name := range []string{"eax", "ebx", "ecx", "edx", "esi", "r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"} {
		units = append(units, node.LUNode{Node: node.LRegister{Name: node.Identifier(name)}})
	}
	fn := &lower.Function{Body: node.LUBlock{Units: units}}

	_, ok := NewScene(util.X86_64, inference.NewTypes(), fn)
	assert.False(t, ok, "every general-purpose family is named explicitly, leaving none free")
}
