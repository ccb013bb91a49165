package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/inference"
	"lucent/src/node"
	"lucent/src/query"
	"lucent/src/span"
	"lucent/src/util"
)

func newTestLowerScene() (*Scene, *node.Value, *inference.Types) {
	v := &node.Value{}
	ctx := query.NewContext()
	scope := query.RootScope(ctx, nil)
	offsets := NewTables(ctx)
	types := inference.NewTypes()
	scene := NewScene(scope, nil, nil, offsets, nil, "", node.NewInclusions(node.Root), node.Root, util.X86_64, v, types)
	return scene, v, types
}

func at(v *node.Value, n node.HNode) node.HIndex {
	return v.Push(n, span.Item{})
}

func TestLowerIntegralLiteralUsesCheckedWidth(t *testing.T) {
	scene, v, types := newTestLowerScene()
	idx := at(v, node.HIntegral{Value: 5})
	types.Nodes[idx] = node.RIntegral{Sign: node.Unsigned, Width: node.D}

	out, ok := Lower(scene, idx, false)
	require.True(t, ok)
	assert.Equal(t, node.LIntegral{Value: 5, Width: node.D}, out)
}

func TestLowerTruthLiteralIsOneByteWide(t *testing.T) {
	scene, v, types := newTestLowerScene()
	idx := at(v, node.HTruth{Value: true})
	types.Nodes[idx] = node.RTruth{}

	out, ok := Lower(scene, idx, false)
	require.True(t, ok)
	assert.Equal(t, node.LIntegral{Value: 1, Width: node.B}, out)
}

func TestLowerVariableReadsItsTargetThroughAPlace(t *testing.T) {
	scene, v, types := newTestLowerScene()
	variable := node.Variable{Name: "n"}
	idx := at(v, node.HVariable{Variable: variable})
	types.Nodes[idx] = node.RTruth{}
	types.Variables[variable] = node.RTruth{}

	out, ok := Lower(scene, idx, false)
	require.True(t, ok)
	target := scene.target(variable)
	assert.Equal(t, node.LDereference{Place: node.LPlace{Node: node.LTargetNode{Target: target}}}, out)
}

func TestLowerNeverTypedNodeWrapsItsUnitForm(t *testing.T) {
	scene, v, types := newTestLowerScene()
	idx := at(v, node.HBreak{})
	types.Nodes[idx] = node.RNever{}

	out, ok := Lower(scene, idx, true)
	require.True(t, ok)
	assert.Equal(t, node.LNever{Unit: node.LUBreak{}}, out)
}

func TestCastTripleWithinIntegralsKeepsOriginSign(t *testing.T) {
	scene, _, _ := newTestLowerScene()
	sign, from, to, ok := castTriple(scene,
		node.RIntegral{Sign: node.Signed, Width: node.W},
		node.RIntegral{Sign: node.Unsigned, Width: node.Q})
	require.True(t, ok)
	assert.Equal(t, node.Signed, sign)
	assert.Equal(t, node.W, from)
	assert.Equal(t, node.Q, to)
}

func TestCastTripleRuneToUnsignedIntegral(t *testing.T) {
	scene, _, _ := newTestLowerScene()
	sign, from, to, ok := castTriple(scene, node.RRune{}, node.RIntegral{Sign: node.Unsigned, Width: node.B})
	require.True(t, ok)
	assert.Equal(t, node.Unsigned, sign)
	assert.Equal(t, node.D, from)
	assert.Equal(t, node.B, to)
}

func TestCastTripleSignedIntegralToRuneIsInvalid(t *testing.T) {
	scene, _, _ := newTestLowerScene()
	_, _, _, ok := castTriple(scene, node.RIntegral{Sign: node.Signed, Width: node.B}, node.RRune{})
	assert.False(t, ok)
}

func TestCastTriplePointerToPointerRequiresMatchingTarget(t *testing.T) {
	scene, _, _ := newTestLowerScene()
	_, _, _, ok := castTriple(scene,
		node.RPointer{Target: util.X86_64, Element: node.RTruth{}},
		node.RPointer{Target: util.X86_32, Element: node.RTruth{}})
	assert.False(t, ok, "a pointer cast must keep the same target pointer width")
}

func TestBinaryShapeReadsIntegralLeftOperand(t *testing.T) {
	scene, _, _ := newTestLowerScene()
	sign, width, ok := binaryShape(scene, node.OpAdd, node.RIntegral{Sign: node.Signed, Width: node.Q})
	require.True(t, ok)
	assert.Equal(t, node.Signed, sign)
	assert.Equal(t, node.Q, width)
}

func TestBinaryShapePointerArithmeticIsUnsigned(t *testing.T) {
	scene, _, _ := newTestLowerScene()
	sign, width, ok := binaryShape(scene, node.OpAdd, node.RPointer{Target: util.X86_64, Element: node.RTruth{}})
	require.True(t, ok)
	assert.Equal(t, node.Unsigned, sign)
	assert.Equal(t, node.Q, width)
}

func TestBinaryShapeRejectsNonScalarOperand(t *testing.T) {
	scene, _, _ := newTestLowerScene()
	_, _, ok := binaryShape(scene, node.OpAdd, node.RVoid{})
	assert.False(t, ok)
}
