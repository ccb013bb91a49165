package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucent/src/node"
	"lucent/src/query"
	"lucent/src/util"
)

func newTestTables() (*Tables, *query.Scope) {
	ctx := query.NewContext()
	return NewTables(ctx), query.RootScope(ctx, nil)
}

func TestSizeVoidAndNeverAreZero(t *testing.T) {
	tables, scope := newTestTables()

	size, err := Size(scope, tables, nil, nil, nil, "", util.X86_64, node.RVoid{})
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	size, err = Size(scope, tables, nil, nil, nil, "", util.X86_64, node.RNever{})
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestSizeRuneIsFourBytes(t *testing.T) {
	tables, scope := newTestTables()

	size, err := Size(scope, tables, nil, nil, nil, "", util.X86_64, node.RRune{})
	require.NoError(t, err)
	assert.Equal(t, 4, size)
}

func TestSizeTruthIsOneByte(t *testing.T) {
	tables, scope := newTestTables()

	size, err := Size(scope, tables, nil, nil, nil, "", util.X86_64, node.RTruth{})
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestSizeIntegralUsesItsOwnWidth(t *testing.T) {
	tables, scope := newTestTables()

	size, err := Size(scope, tables, nil, nil, nil, "", util.X86_64, node.RIntegral{Sign: node.Signed, Width: node.W})
	require.NoError(t, err)
	assert.Equal(t, node.W.Bytes(), size)
}

func TestSizeIntegralSizeAndPointerUseTargetPointerWidth(t *testing.T) {
	tables, scope := newTestTables()

	size, err := Size(scope, tables, nil, nil, nil, "", util.X86_64, node.RIntegralSize{Target: util.X86_64})
	require.NoError(t, err)
	assert.Equal(t, node.Q.Bytes(), size)

	size, err = Size(scope, tables, nil, nil, nil, "", util.X86_64, node.RPointer{Target: util.X86_32, Element: node.RTruth{}})
	require.NoError(t, err)
	assert.Equal(t, node.D.Bytes(), size)
}

func TestSizeSliceIsTwoPointerWidths(t *testing.T) {
	tables, scope := newTestTables()

	size, err := Size(scope, tables, nil, nil, nil, "", util.X86_64, node.RSlice{Target: util.X86_64, Element: node.RTruth{}})
	require.NoError(t, err)
	assert.Equal(t, 2*node.Q.Bytes(), size)
}

func TestSizeArrayIsElementSizeTimesCount(t *testing.T) {
	tables, scope := newTestTables()

	size, err := Size(scope, tables, nil, nil, nil, "", util.X86_64,
		node.RArray{Element: node.RIntegral{Sign: node.Unsigned, Width: node.D}, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, 3*node.D.Bytes(), size)
}

func TestPointerWidthTracksTargetBits(t *testing.T) {
	assert.Equal(t, node.D, pointerWidth(util.X86_32))
	assert.Equal(t, node.Q, pointerWidth(util.X86_64))
}
