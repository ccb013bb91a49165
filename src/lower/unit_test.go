package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/node"
)

func TestUnitWhileLowersToLoopOfIfBreak(t *testing.T) {
	scene, v, types := newTestLowerScene()
	cond := at(v, node.HTruth{Value: true})
	types.Nodes[cond] = node.RTruth{}
	body := at(v, node.HBlock{})
	types.Nodes[body] = node.RVoid{}
	loop := at(v, node.HWhile{Condition: cond, Body: body})
	types.Nodes[loop] = node.RVoid{}

	out, ok := Unit(scene, loop, false)
	require.True(t, ok)

	wrapped, isLoop := out.(node.LULoop)
	require.True(t, isLoop)
	iff, isIf := wrapped.Body.(node.LUIf)
	require.True(t, isIf)
	assert.Equal(t, node.LUBreak{}, iff.Else)
}

func TestUnitLetWithoutInitializerZeroesTarget(t *testing.T) {
	scene, v, types := newTestLowerScene()
	variable := node.Variable{Name: "n"}
	let := at(v, node.HLet{Variable: variable})
	types.Nodes[let] = node.RVoid{}
	types.Variables[variable] = node.RIntegral{Sign: node.Unsigned, Width: node.D}

	out, ok := Unit(scene, let, false)
	require.True(t, ok)
	assert.Equal(t, node.LUZero{Target: scene.target(variable)}, out)
}

func TestUnitLetWithZeroSizedInitializerStillRunsIt(t *testing.T) {
	scene, v, types := newTestLowerScene()
	variable := node.Variable{Name: "n"}
	initializer := at(v, node.HBlock{})
	types.Nodes[initializer] = node.RVoid{}
	let := at(v, node.HLet{Variable: variable, Init: &initializer})
	types.Nodes[let] = node.RVoid{}
	types.Variables[variable] = node.RVoid{}

	out, ok := Unit(scene, let, false)
	require.True(t, ok, "a void-typed initializer must not be forced through Lower")
	assert.Equal(t, node.LUBlock{Units: []node.LUnit{}}, out)
}

func TestUnitBreakOutsideLoopIsADiagnostic(t *testing.T) {
	scene, v, types := newTestLowerScene()
	brk := at(v, node.HBreak{})
	types.Nodes[brk] = node.RNever{}

	_, ok := Unit(scene, brk, false)
	assert.False(t, ok)
}

func TestUnitBreakInsideLoopSucceeds(t *testing.T) {
	scene, v, types := newTestLowerScene()
	brk := at(v, node.HBreak{})
	types.Nodes[brk] = node.RNever{}

	out, ok := Unit(scene, brk, true)
	require.True(t, ok)
	assert.Equal(t, node.LUBreak{}, out)
}

func TestUnitNonzeroSizedNodeDegradesToLUNode(t *testing.T) {
	scene, v, types := newTestLowerScene()
	idx := at(v, node.HIntegral{Value: 4})
	types.Nodes[idx] = node.RIntegral{Sign: node.Unsigned, Width: node.D}

	out, ok := Unit(scene, idx, false)
	require.True(t, ok)
	assert.Equal(t, node.LUNode{Node: node.LIntegral{Value: 4, Width: node.D}}, out)
}

func TestUnitBlockLowersEveryChildInOrder(t *testing.T) {
	scene, v, types := newTestLowerScene()
	a := at(v, node.HBreak{})
	types.Nodes[a] = node.RNever{}
	b := at(v, node.HBreak{})
	types.Nodes[b] = node.RNever{}
	block := at(v, node.HBlock{Nodes: []node.HIndex{a, b}})
	types.Nodes[block] = node.RVoid{}

	out, ok := Unit(scene, block, true)
	require.True(t, ok)
	assert.Equal(t, node.LUBlock{Units: []node.LUnit{node.LUBreak{}, node.LUBreak{}}}, out)
}
