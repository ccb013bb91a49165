package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/node"
	"lucent/src/query"
	"lucent/src/span"
	"lucent/src/util"
)

func newTestScene() (*Scene, *node.Value) {
	v := &node.Value{}
	ctx := query.NewContext()
	scope := query.RootScope(ctx, nil)
	scene := NewScene(scope, nil, nil, nil, "", node.NewInclusions(node.Root), node.Root, util.X86_64, v, nil)
	return scene, v
}

func at(v *node.Value, n node.HNode) node.HIndex {
	return v.Push(n, span.Item{})
}

func TestSynthesizeIntegralRequiresCast(t *testing.T) {
	scene, v := newTestScene()
	idx := at(v, node.HIntegral{Value: 3})

	_, ok := Synthesize(scene, idx)
	assert.False(t, ok, "a bare integral literal has no type without a cast or expected type")
}

func TestSynthesizeTruthAndRune(t *testing.T) {
	scene, v := newTestScene()
	truth := at(v, node.HTruth{Value: true})
	rn := at(v, node.HRune{Value: 'a'})

	kind, ok := Synthesize(scene, truth)
	require.True(t, ok)
	assert.Equal(t, node.RTruth{}, kind)

	kind, ok = Synthesize(scene, rn)
	require.True(t, ok)
	assert.Equal(t, node.RRune{}, kind)
}

func TestSynthesizeBlockValueIsLastNode(t *testing.T) {
	scene, v := newTestScene()
	first := at(v, node.HTruth{Value: true})
	second := at(v, node.HRune{Value: 'x'})
	block := at(v, node.HBlock{Nodes: []node.HIndex{first, second}})

	kind, ok := Synthesize(scene, block)
	require.True(t, ok)
	assert.Equal(t, node.RRune{}, kind)
}

func TestSynthesizeEmptyBlockIsVoid(t *testing.T) {
	scene, v := newTestScene()
	block := at(v, node.HBlock{})

	kind, ok := Synthesize(scene, block)
	require.True(t, ok)
	assert.Equal(t, node.RVoid{}, kind)
}

func TestSynthesizeCastLiftsExplicitTarget(t *testing.T) {
	scene, v := newTestScene()
	lit := at(v, node.HIntegral{Value: 7})
	cast := at(v, node.HCast{Node: lit, Target: node.HTIntegral{Sign: node.Signed, Width: node.D}})

	kind, ok := Synthesize(scene, cast)
	require.True(t, ok)
	assert.Equal(t, node.RIntegral{Sign: node.Signed, Width: node.D}, kind)
}

func TestSynthesizeLetRequiresAnnotationOrInit(t *testing.T) {
	scene, v := newTestScene()
	let := at(v, node.HLet{Variable: node.Variable{Name: "x"}})

	_, ok := Synthesize(scene, let)
	assert.False(t, ok, "a let with neither a type nor an initializer cannot be typed")
}

func TestSynthesizeLetWithInitRecordsVariableType(t *testing.T) {
	scene, v := newTestScene()
	truth := at(v, node.HTruth{Value: true})
	variable := node.Variable{Name: "flag"}
	let := at(v, node.HLet{Variable: variable, Init: &truth})

	kind, ok := Synthesize(scene, let)
	require.True(t, ok)
	assert.Equal(t, node.RVoid{}, kind)
	assert.Equal(t, node.RTruth{}, scene.Types.Variables[variable])
}

func TestSynthesizeVariableReadsRecordedType(t *testing.T) {
	scene, v := newTestScene()
	variable := node.Variable{Name: "n"}
	scene.Types.Variables[variable] = node.RTruth{}
	ref := at(v, node.HVariable{Variable: variable})

	kind, ok := Synthesize(scene, ref)
	require.True(t, ok)
	assert.Equal(t, node.RTruth{}, kind)
}

func TestSynthesizeReferenceAndDereference(t *testing.T) {
	scene, v := newTestScene()
	variable := node.Variable{Name: "n"}
	scene.Types.Variables[variable] = node.RTruth{}
	ref := at(v, node.HVariable{Variable: variable})
	address := at(v, node.HUnary{Op: node.OpReference, Node: ref})
	deref := at(v, node.HUnary{Op: node.OpDereference, Node: address})

	kind, ok := Synthesize(scene, address)
	require.True(t, ok)
	assert.Equal(t, node.RPointer{Target: util.X86_64, Element: node.RTruth{}}, kind)

	kind, ok = Synthesize(scene, deref)
	require.True(t, ok)
	assert.Equal(t, node.RTruth{}, kind)
}

func TestSynthesizeDereferenceOfNonPointerFails(t *testing.T) {
	scene, v := newTestScene()
	truth := at(v, node.HTruth{Value: true})
	deref := at(v, node.HUnary{Op: node.OpDereference, Node: truth})

	_, ok := Synthesize(scene, deref)
	assert.False(t, ok)
}

func TestSynthesizeArrayLiteralUsesFirstElementType(t *testing.T) {
	scene, v := newTestScene()
	a := at(v, node.HTruth{Value: true})
	b := at(v, node.HTruth{Value: false})
	arr := at(v, node.HArray{Elements: []node.HIndex{a, b}})

	kind, ok := Synthesize(scene, arr)
	require.True(t, ok)
	assert.Equal(t, node.RArray{Element: node.RTruth{}, Size: 2}, kind)
}

func TestSynthesizeStringLiteral(t *testing.T) {
	scene, v := newTestScene()
	str := at(v, node.HString{Value: "hi"})

	kind, ok := Synthesize(scene, str)
	require.True(t, ok)
	assert.Equal(t, node.RArray{Element: node.RIntegral{Sign: node.Unsigned, Width: node.B}, Size: 2}, kind)
}

func TestSynthesizeRelationalBinaryIsTruth(t *testing.T) {
	scene, v := newTestScene()
	lit := at(v, node.HIntegral{Value: 1})
	cast := at(v, node.HCast{Node: lit, Target: node.HTIntegral{Sign: node.Signed, Width: node.D}})
	other := at(v, node.HIntegral{Value: 2})
	bin := at(v, node.HBinary{Op: node.OpLess, Left: cast, Right: other})

	kind, ok := Synthesize(scene, bin)
	require.True(t, ok)
	assert.Equal(t, node.RTruth{}, kind)
}

func TestSynthesizeAndRequiresTruthOperands(t *testing.T) {
	scene, v := newTestScene()
	left := at(v, node.HTruth{Value: true})
	right := at(v, node.HTruth{Value: false})
	bin := at(v, node.HBinary{Op: node.OpAnd, Left: left, Right: right})

	kind, ok := Synthesize(scene, bin)
	require.True(t, ok)
	assert.Equal(t, node.RTruth{}, kind)
}

func TestSynthesizePointerArithmeticPreservesPointerType(t *testing.T) {
	scene, v := newTestScene()
	variable := node.Variable{Name: "p"}
	scene.Types.Variables[variable] = node.RPointer{Target: util.X86_64, Element: node.RRune{}}
	base := at(v, node.HVariable{Variable: variable})
	offset := at(v, node.HIntegral{Value: 1})
	bin := at(v, node.HBinary{Op: node.OpAdd, Left: base, Right: offset})

	kind, ok := Synthesize(scene, bin)
	require.True(t, ok)
	assert.Equal(t, node.RPointer{Target: util.X86_64, Element: node.RRune{}}, kind)
}

func TestSynthesizeReturnInsideFunctionChecksAgainstReturnType(t *testing.T) {
	scene, v := newTestScene()
	scene.ReturnType = node.RTruth{}
	value := at(v, node.HTruth{Value: true})
	ret := at(v, node.HReturn{Value: &value})

	kind, ok := Synthesize(scene, ret)
	require.True(t, ok)
	assert.Equal(t, node.RNever{}, kind)
}

func TestSynthesizeBareReturnOutsideVoidFunctionEmitsDiagnostic(t *testing.T) {
	scene, v := newTestScene()
	scene.ReturnType = node.RTruth{}
	ret := at(v, node.HReturn{})

	_, ok := Synthesize(scene, ret)
	assert.True(t, ok, "HReturn always synthesizes to Never even when the value is missing")
	assert.Len(t, scene.Scope.Diagnostics(), 1, "a bare return in a non-void function reports a missing value")
}

func TestSynthesizePathRefAlwaysFails(t *testing.T) {
	scene, v := newTestScene()
	idx := at(v, node.HPathRef{Path: node.HPath{}})

	_, ok := Synthesize(scene, idx)
	assert.False(t, ok, "an unrewritten HPathRef must never synthesize a type")
}
