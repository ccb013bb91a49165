package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/inference"
	"lucent/src/node"
	"lucent/src/span"
)

func rootFunction(root bool, values *node.Value) *node.HFunction {
	return &node.HFunction{Values: values, IsRoot: root}
}

func TestCollectFunctionsWalksModulesInLexicalOrder(t *testing.T) {
	table := node.NewItemTable(&node.HModule{Path: node.Root}, node.NewInclusions(node.Root))
	table.Functions["zeta"] = []node.PFunction{node.PFunctionLocal{Function: rootFunction(false, &node.Value{})}}
	table.Functions["alpha"] = []node.PFunction{node.PFunctionLocal{Function: rootFunction(false, &node.Value{})}}

	child := node.NewItemTable(&node.HModule{Path: node.NewPath("m")}, node.NewInclusions(node.Root))
	child.Functions["inner"] = []node.PFunction{node.PFunctionLocal{Function: rootFunction(false, &node.Value{})}}
	table.Modules["m"] = child

	order, funcs := collectFunctions(table, node.Root)

	require.Len(t, order, 3)
	assert.Equal(t, "alpha", order[0].Path.String())
	assert.Equal(t, "zeta", order[1].Path.String())
	assert.Equal(t, "m.inner", order[2].Path.String())
	assert.Len(t, funcs, 3)
}

func TestPresentAllFollowsStaticCallsFromRoots(t *testing.T) {
	values := &node.Value{}
	callIndex := values.Push(node.HCall{Path: node.HPath{Segments: []node.HSegment{{Name: "callee"}}}}, span.Item{})

	table := node.NewItemTable(&node.HModule{Path: node.Root}, node.NewInclusions(node.Root))
	table.Functions["entry"] = []node.PFunction{node.PFunctionLocal{Function: rootFunction(true, values)}}
	table.Functions["callee"] = []node.PFunction{node.PFunctionLocal{Function: rootFunction(false, &node.Value{})}}
	table.Functions["dead"] = []node.PFunction{node.PFunctionLocal{Function: rootFunction(false, &node.Value{})}}

	order, funcs := collectFunctions(table, node.Root)

	types := inference.NewTypes()
	types.Functions[callIndex] = 0

	present, err := presentAll(order, funcs, func(node.FPath) (*inference.Types, error) { return types, nil })
	require.NoError(t, err)

	assert.True(t, present[node.FPath{Path: node.NewPath("entry"), Overload: 0}])
	assert.True(t, present[node.FPath{Path: node.NewPath("callee"), Overload: 0}])
	assert.False(t, present[node.FPath{Path: node.NewPath("dead"), Overload: 0}])
}

func TestPresentAllPropagatesTypeCheckFailure(t *testing.T) {
	values := &node.Value{}
	table := node.NewItemTable(&node.HModule{Path: node.Root}, node.NewInclusions(node.Root))
	table.Functions["entry"] = []node.PFunction{node.PFunctionLocal{Function: rootFunction(true, values)}}
	order, funcs := collectFunctions(table, node.Root)

	boom := assert.AnError
	_, err := presentAll(order, funcs, func(node.FPath) (*inference.Types, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
