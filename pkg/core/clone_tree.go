package core

import (
	"slices"

	"github.com/go-drift/shadow/pkg/errors"
)

// Ancestor is one step on the path from a root to a descendant.
type Ancestor struct {
	Node  *ShadowNode
	Index int
}

// Ancestors returns the path from root to the node of family f, excluding that
// node: each entry is a parent and the index of the next step in its children.
// The recorded parent links of families are tried first; when they do not
// match the tree, a depth-first search visits each node at most once.
func (f *Family) Ancestors(root *ShadowNode) ([]Ancestor, bool) {
	if root == nil {
		return nil, false
	}
	if root.family == f {
		return nil, true
	}
	if path, ok := f.ancestorsByParentLinks(root); ok {
		return path, true
	}
	return f.ancestorsBySearch(root)
}

func (f *Family) ancestorsByParentLinks(root *ShadowNode) ([]Ancestor, bool) {
	var chain []*Family
	for fam := f; fam != root.family; {
		chain = append(chain, fam)
		fam = fam.parentFamily()
		if fam == nil || len(chain) > 4096 {
			return nil, false
		}
	}

	path := make([]Ancestor, 0, len(chain))
	cur := root
	for i := len(chain) - 1; i >= 0; i-- {
		idx := slices.IndexFunc(cur.children, func(c *ShadowNode) bool { return c.family == chain[i] })
		if idx < 0 {
			return nil, false
		}
		path = append(path, Ancestor{Node: cur, Index: idx})
		cur = cur.children[idx]
	}
	return path, true
}

func (f *Family) ancestorsBySearch(root *ShadowNode) ([]Ancestor, bool) {
	type frame struct {
		node *ShadowNode
		next int
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.node.children) {
			stack = stack[:len(stack)-1]
			continue
		}
		idx := top.next
		top.next++
		child := top.node.children[idx]
		if child.family == f {
			path := make([]Ancestor, 0, len(stack))
			for _, fr := range stack {
				path = append(path, Ancestor{Node: fr.node, Index: fr.next - 1})
			}
			return path, true
		}
		stack = append(stack, frame{node: child})
	}
	return nil, false
}

// CloneTree replaces the node of family f, found under n, with
// transform(node) and clones every ancestor up to n so the result is a new
// root. Nodes off the path are shared with n. It returns nil when f is not in
// the tree or transform returns nil.
func (n *ShadowNode) CloneTree(f *Family, transform func(*ShadowNode) *ShadowNode) *ShadowNode {
	path, ok := f.Ancestors(n)
	if !ok {
		return nil
	}
	target := n
	if len(path) > 0 {
		last := path[len(path)-1]
		target = last.Node.children[last.Index]
	}

	replacement := transform(target)
	if replacement == nil {
		return nil
	}
	errors.Assert(replacement.family == f, "core.ShadowNode.CloneTree", errors.ErrImmutableField,
		"transform returned tag %d for tag %d", replacement.family.tag, f.tag)

	for i := len(path) - 1; i >= 0; i-- {
		step := path[i]
		children := slices.Clone(step.Node.children)
		children[step.Index] = replacement
		replacement = step.Node.Clone(Fragment{Children: &children})
	}
	return replacement
}
