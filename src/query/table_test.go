package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testKey struct{ name string }

func (k testKey) String() string { return "test(" + k.name + ")" }
func (k testKey) Kind() string   { return "test" }

func TestRunMemoizesAndPreservesIdentity(t *testing.T) {
	table := NewTable[*int]()
	ctx := NewContext()
	Register(ctx, "test", table)

	calls := 0
	root := RootScope(ctx, nil)
	provide := func(*Scope) (*int, error) {
		calls++
		v := 42
		return &v, nil
	}

	first, err := Run(table, root, testKey{"a"}, nil, provide)
	require.NoError(t, err)
	second, err := Run(table, root, testKey{"a"}, nil, provide)
	require.NoError(t, err)

	assert.Same(t, first, second, "object identity must be preserved across calls")
	assert.Equal(t, 1, calls, "provider must run once per key")
}

func TestRunDetectsCycle(t *testing.T) {
	table := NewTable[*int]()
	ctx := NewContext()
	Register(ctx, "test", table)

	root := RootScope(ctx, nil)
	var _, err = Run(table, root, testKey{"a"}, nil, func(scope *Scope) (*int, error) {
		return Run(table, scope, testKey{"a"}, nil, func(*Scope) (*int, error) {
			v := 1
			return &v, nil
		})
	})

	require.Error(t, err)
	var cyc *CycleError
	require.ErrorAs(t, err, &cyc)
	assert.GreaterOrEqual(t, len(cyc.Chain), 1)
}

func TestInvalidateCascades(t *testing.T) {
	table := NewTable[*int]()
	ctx := NewContext()
	Register(ctx, "test", table)

	root := RootScope(ctx, nil)
	leaf := testKey{"leaf"}
	derived := testKey{"derived"}

	calls := 0
	compute := func(scope *Scope) (*int, error) {
		calls++
		return Run(table, scope, leaf, nil, func(*Scope) (*int, error) {
			v := calls
			return &v, nil
		})
	}

	first, err := Run(table, root, derived, nil, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, *first)

	ctx.Invalidate(leaf)

	root2 := RootScope(ctx, nil)
	second, err := Run(table, root2, derived, nil, compute)
	require.NoError(t, err)
	assert.NotSame(t, first, second, "invalidating a dependency must force recomputation")
}

func TestFailureIsCached(t *testing.T) {
	table := NewTable[*int]()
	ctx := NewContext()
	Register(ctx, "test", table)

	root := RootScope(ctx, nil)
	calls := 0
	provide := func(s *Scope) (*int, error) {
		calls++
		s.Emit(NewDiagnostic(Error, "boom"))
		return nil, ErrFailure
	}

	_, err := Run(table, root, testKey{"f"}, nil, provide)
	require.ErrorIs(t, err, ErrFailure)
	_, err = Run(table, root, testKey{"f"}, nil, provide)
	require.ErrorIs(t, err, ErrFailure)
	assert.Equal(t, 1, calls, "failed provider must not rerun")
}
