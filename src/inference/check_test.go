package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/node"
	"lucent/src/util"
)

func TestCheckIntegralLiteralAgainstConcreteType(t *testing.T) {
	scene, v := newTestScene()
	lit := at(v, node.HIntegral{Value: 5})

	ok := Check(scene, lit, node.Raise(node.RIntegral{Sign: node.Unsigned, Width: node.D}))
	require.True(t, ok)
	assert.Equal(t, node.RIntegral{Sign: node.Unsigned, Width: node.D}, scene.Types.Nodes[lit])
}

func TestCheckIntegralLiteralAgainstIndexHint(t *testing.T) {
	scene, v := newTestScene()
	lit := at(v, node.HIntegral{Value: 5})

	ok := Check(scene, lit, indexHint())
	require.True(t, ok)
	assert.Equal(t, node.RIntegralSize{Target: util.X86_64, Sign: node.Unsigned}, scene.Types.Nodes[lit])
}

func TestCheckVoidExpectationAlwaysSynthesizes(t *testing.T) {
	scene, v := newTestScene()
	truth := at(v, node.HTruth{Value: true})

	ok := Check(scene, truth, node.Raise(node.RVoid{}))
	assert.True(t, ok, "checking against Void degrades to a plain synthesize")
}

func TestCheckMismatchedTypeFails(t *testing.T) {
	scene, v := newTestScene()
	truth := at(v, node.HTruth{Value: true})

	ok := Check(scene, truth, node.Raise(node.RRune{}))
	assert.False(t, ok)
}

func TestCheckArrayAgainstSequenceHint(t *testing.T) {
	scene, v := newTestScene()
	a := at(v, node.HTruth{Value: true})
	b := at(v, node.HTruth{Value: false})
	arr := at(v, node.HArray{Elements: []node.HIndex{a, b}})

	ok := Check(scene, arr, node.ISequence{Target: util.X86_64, Element: node.RTruth{}})
	require.True(t, ok)
	assert.Equal(t, node.RArray{Element: node.RTruth{}, Size: 2}, scene.Types.Nodes[arr])
}

func TestCheckArrayWrongSizeAgainstConcreteArrayFails(t *testing.T) {
	scene, v := newTestScene()
	a := at(v, node.HTruth{Value: true})
	arr := at(v, node.HArray{Elements: []node.HIndex{a}})

	ok := Check(scene, arr, node.Raise(node.RArray{Element: node.RTruth{}, Size: 2}))
	assert.False(t, ok)
}

func TestCheckWhenRequiresDefaultBranch(t *testing.T) {
	scene, v := newTestScene()
	cond := at(v, node.HTruth{Value: false})
	body := at(v, node.HIntegral{Value: 1})
	castBody := at(v, node.HCast{Node: body, Target: node.HTIntegral{Sign: node.Signed, Width: node.D}})
	when := at(v, node.HWhen{Branches: []node.HWhenBranch{{Condition: cond, Body: castBody}}})

	ok := Check(scene, when, node.Raise(node.RIntegral{Sign: node.Signed, Width: node.D}))
	assert.False(t, ok, "a when with no literal-true branch cannot satisfy a non-void expectation")
}

func TestCheckWhenWithDefaultBranchSucceeds(t *testing.T) {
	scene, v := newTestScene()
	trueCond := at(v, node.HTruth{Value: true})
	body := at(v, node.HIntegral{Value: 1})
	castBody := at(v, node.HCast{Node: body, Target: node.HTIntegral{Sign: node.Signed, Width: node.D}})
	when := at(v, node.HWhen{Branches: []node.HWhenBranch{{Condition: trueCond, Body: castBody}}})

	ok := Check(scene, when, node.Raise(node.RIntegral{Sign: node.Signed, Width: node.D}))
	assert.True(t, ok)
}

func TestCheckReferenceAgainstPointerHint(t *testing.T) {
	scene, v := newTestScene()
	variable := node.Variable{Name: "n"}
	scene.Types.Variables[variable] = node.RTruth{}
	ref := at(v, node.HVariable{Variable: variable})
	address := at(v, node.HUnary{Op: node.OpReference, Node: ref})

	ok := Check(scene, address, node.Raise(node.RPointer{Target: util.X86_64, Element: node.RTruth{}}))
	assert.True(t, ok)
}

func TestCheckBlockLastNodeDeterminesOutcome(t *testing.T) {
	scene, v := newTestScene()
	first := at(v, node.HTruth{Value: true})
	lit := at(v, node.HIntegral{Value: 9})
	block := at(v, node.HBlock{Nodes: []node.HIndex{first, lit}})

	ok := Check(scene, block, node.Raise(node.RIntegral{Sign: node.Unsigned, Width: node.Q}))
	require.True(t, ok)
	assert.Equal(t, node.RIntegral{Sign: node.Unsigned, Width: node.Q}, scene.Types.Nodes[block])
}
