package chart

import (
	"sort"

	"pgcledger/internal/core/id"
)

// Tree is an arena of accounts. Nodes are addressed by ID, parents are
// stored as IDs and a separate parent->children index serves subtree
// queries. A node whose parent is not in the arena is treated as a root.
type Tree struct {
	nodes    []Account
	byID     map[id.ID]int
	byCode   map[string]int
	children map[id.ID][]id.ID
	roots    []id.ID
}

// NewTree builds the arena from a flat account list. When two accounts share
// a code the later one wins the code index, so callers pass global rows
// before tenant rows.
func NewTree(accounts []Account) *Tree {
	t := &Tree{
		nodes:    make([]Account, len(accounts)),
		byID:     make(map[id.ID]int, len(accounts)),
		byCode:   make(map[string]int, len(accounts)),
		children: make(map[id.ID][]id.ID),
	}
	copy(t.nodes, accounts)
	for i := range t.nodes {
		t.byID[t.nodes[i].ID] = i
		t.byCode[t.nodes[i].Code] = i
	}

	for i := range t.nodes {
		n := &t.nodes[i]
		if n.ParentID != nil {
			if _, ok := t.byID[*n.ParentID]; ok {
				t.children[*n.ParentID] = append(t.children[*n.ParentID], n.ID)
				continue
			}
		}
		t.roots = append(t.roots, n.ID)
	}

	byCode := func(ids []id.ID) {
		sort.Slice(ids, func(a, b int) bool {
			return t.nodes[t.byID[ids[a]]].Code < t.nodes[t.byID[ids[b]]].Code
		})
	}
	byCode(t.roots)
	for k := range t.children {
		byCode(t.children[k])
	}
	return t
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns the node with accountID.
func (t *Tree) Get(accountID id.ID) (*Account, bool) {
	i, ok := t.byID[accountID]
	if !ok {
		return nil, false
	}
	return &t.nodes[i], true
}

// ByCode returns the node indexed under code.
func (t *Tree) ByCode(code string) (*Account, bool) {
	i, ok := t.byCode[code]
	if !ok {
		return nil, false
	}
	return &t.nodes[i], true
}

// Children returns direct children ordered by code.
func (t *Tree) Children(accountID id.ID) []id.ID {
	return t.children[accountID]
}

// Roots returns top-level nodes ordered by code.
func (t *Tree) Roots() []id.ID {
	return t.roots
}

// Path returns the IDs from the root down to accountID.
func (t *Tree) Path(accountID id.ID) []id.ID {
	var rev []id.ID
	seen := make(map[id.ID]bool)
	for cur, ok := t.Get(accountID); ok && !seen[cur.ID]; {
		seen[cur.ID] = true
		rev = append(rev, cur.ID)
		if cur.ParentID == nil {
			break
		}
		cur, ok = t.Get(*cur.ParentID)
	}
	out := make([]id.ID, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// Walk visits every node in pre-order, children sorted by code.
// Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(acc *Account, depth int) bool) {
	var visit func(nodeID id.ID, depth int)
	visit = func(nodeID id.ID, depth int) {
		acc, _ := t.Get(nodeID)
		if !fn(acc, depth) {
			return
		}
		for _, child := range t.children[nodeID] {
			visit(child, depth+1)
		}
	}
	for _, r := range t.roots {
		visit(r, 0)
	}
}

// Accounts returns all nodes in pre-order.
func (t *Tree) Accounts() []Account {
	out := make([]Account, 0, len(t.nodes))
	t.Walk(func(acc *Account, _ int) bool {
		out = append(out, *acc)
		return true
	})
	return out
}
