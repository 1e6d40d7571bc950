package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/id"
)

func node(code string, parent *Account) Account {
	acc := NewAccount(nil, code, "conta "+code, KindMovement)
	if parent != nil {
		acc.ParentID = &parent.ID
	}
	return *acc
}

func TestTree_ChildrenAndPath(t *testing.T) {
	root := node("31", nil)
	mid := node("31.1", &root)
	leafB := node("31.1.2", &mid)
	leafA := node("31.1.1", &mid)
	other := node("32", nil)

	tree := NewTree([]Account{leafB, other, root, leafA, mid})

	require.Equal(t, 5, tree.Len())
	assert.Equal(t, []id.ID{root.ID, other.ID}, tree.Roots())
	assert.Equal(t, []id.ID{leafA.ID, leafB.ID}, tree.Children(mid.ID), "children are ordered by code")
	assert.Equal(t, []id.ID{root.ID, mid.ID, leafB.ID}, tree.Path(leafB.ID))
	assert.Empty(t, tree.Path(id.New()))

	acc, ok := tree.ByCode("31.1.1")
	require.True(t, ok)
	assert.Equal(t, leafA.ID, acc.ID)
}

func TestTree_OrphanIsRoot(t *testing.T) {
	missing := node("41", nil)
	orphan := node("41.1", &missing)

	tree := NewTree([]Account{orphan})
	assert.Equal(t, []id.ID{orphan.ID}, tree.Roots())
}

func TestTree_WalkSkipsSubtree(t *testing.T) {
	root := node("6", nil)
	a := node("62", &root)
	a1 := node("62.1", &a)
	b := node("64", &root)

	tree := NewTree([]Account{root, a, a1, b})

	var visited []string
	tree.Walk(func(acc *Account, depth int) bool {
		visited = append(visited, acc.Code)
		return acc.Code != "62"
	})
	assert.Equal(t, []string{"6", "62", "64"}, visited)

	codes := make([]string, 0, tree.Len())
	for _, acc := range tree.Accounts() {
		codes = append(codes, acc.Code)
	}
	assert.Equal(t, []string{"6", "62", "62.1", "64"}, codes)
}
