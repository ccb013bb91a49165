package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lucent/src/node"
)

func TestAddressingWalksForwardFromDefaultLoad(t *testing.T) {
	first := node.FPath{Path: node.NewPath("a"), Overload: 0}
	second := node.FPath{Path: node.NewPath("b"), Overload: 0}
	order := []node.FPath{first, second}
	sizes := map[node.FPath]SymbolSize{first: 16, second: 32}

	addresses := addressing(order, sizes, nil)

	assert.Equal(t, DefaultLoad, addresses[first])
	assert.Equal(t, DefaultLoad+16, addresses[second])
}

func TestAddressingHonorsExplicitLoadAnnotation(t *testing.T) {
	first := node.FPath{Path: node.NewPath("a"), Overload: 0}
	second := node.FPath{Path: node.NewPath("b"), Overload: 0}
	order := []node.FPath{first, second}
	sizes := map[node.FPath]SymbolSize{first: 16, second: 8}
	annotated := map[node.FPath]Address{second: 0x200000}

	addresses := addressing(order, sizes, annotated)

	assert.Equal(t, DefaultLoad, addresses[first])
	assert.Equal(t, Address(0x200000), addresses[second])
}

func TestCeilingRoundsUpToPageBoundary(t *testing.T) {
	assert.Equal(t, Address(0), ceiling(0, pageSize))
	assert.Equal(t, Address(pageSize), ceiling(1, pageSize))
	assert.Equal(t, Address(pageSize), ceiling(pageSize, pageSize))
	assert.Equal(t, Address(2*pageSize), ceiling(pageSize+1, pageSize))
}
