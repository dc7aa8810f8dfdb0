package mounting

import (
	"cmp"
	"slices"
	"sort"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
)

// entry is a mounted child: a node that forms a view, with its frame moved
// into the coordinate space of the mounting parent.
type entry struct {
	node *core.ShadowNode
	view ShadowView
}

// flatten returns the views mounted directly under p. Children that do not
// form a view are skipped and their descendants lifted, offset by the
// skipped frames. Hidden subtrees are not mounted. The result is ordered by
// order index, then by position.
func flatten(p *core.ShadowNode) []entry {
	var out []entry
	var walk func(n *core.ShadowNode, offset graphics.Point)
	walk = func(n *core.ShadowNode, offset graphics.Point) {
		for _, c := range n.Children() {
			m := c.LayoutMetrics()
			if m.DisplayType == core.DisplayNone {
				continue
			}
			if c.Traits().Has(core.TraitFormsView) {
				out = append(out, entry{node: c, view: NewShadowView(c).withOffset(offset)})
				continue
			}
			walk(c, offset.Add(m.Frame.Origin()))
		}
	}
	walk(p, graphics.Point{})
	slices.SortStableFunc(out, func(a, b entry) int {
		return cmp.Compare(a.node.OrderIndex(), b.node.OrderIndex())
	})
	return out
}

// Diff returns the mutations that turn the views mounted for oldRoot into
// the views of newRoot. Both trees must be sealed and share the root family.
//
// Mutations come grouped as creates, removes, deletes, updates, then inserts
// and moves. Removes of one parent are in descending index order; inserts
// and moves of one parent are in ascending index order.
func Diff(oldRoot, newRoot *core.ShadowNode) Mutations {
	const op = "mounting.Diff"
	errors.Assert(oldRoot != nil && newRoot != nil, op, errors.ErrUnsealedTree, "nil tree")
	errors.Assert(oldRoot.IsSealed() && newRoot.IsSealed(), op, errors.ErrUnsealedTree,
		"tree of tag %d is not sealed", oldRoot.Tag())
	errors.Assert(core.SameFamily(oldRoot, newRoot), op, errors.ErrRootMismatch,
		"roots %d and %d", oldRoot.Tag(), newRoot.Tag())
	if oldRoot == newRoot {
		return nil
	}

	d := &differ{oldRoot: oldRoot, newRoot: newRoot}
	oldView, newView := NewShadowView(oldRoot), NewShadowView(newRoot)
	if !oldView.Equal(newView) {
		d.updates = append(d.updates, UpdateMutation(oldView, newView))
	}
	d.diffChildren(newView, oldRoot, newRoot)
	return d.result()
}

// MountAll returns the mutations that mount every view under root, starting
// from a childless generation of root.
func MountAll(root *core.ShadowNode) Mutations {
	empty := root.Clone(core.Fragment{Children: core.ChildList()})
	empty.Seal()
	return Diff(empty, root)
}

type differ struct {
	oldRoot, newRoot *core.ShadowNode
	// families mounted anywhere in each tree, built on first use
	oldMounted, newMounted map[*core.Family]entry

	creates, removes, deletes, updates, inserts Mutations
}

func (d *differ) result() Mutations {
	n := len(d.creates) + len(d.removes) + len(d.deletes) + len(d.updates) + len(d.inserts)
	if n == 0 {
		return nil
	}
	out := make(Mutations, 0, n)
	out = append(out, d.creates...)
	out = append(out, d.removes...)
	out = append(out, d.deletes...)
	out = append(out, d.updates...)
	return append(out, d.inserts...)
}

func (d *differ) diffChildren(parent ShadowView, oldP, newP *core.ShadowNode) {
	if oldP == newP {
		return
	}
	olds, news := flatten(oldP), flatten(newP)
	oldIdx := make(map[*core.Family]int, len(olds))
	for i, e := range olds {
		oldIdx[e.node.Family()] = i
	}
	newIdx := make(map[*core.Family]int, len(news))
	for i, e := range news {
		newIdx[e.node.Family()] = i
	}

	for i := len(olds) - 1; i >= 0; i-- {
		e := olds[i]
		if _, ok := newIdx[e.node.Family()]; ok {
			continue
		}
		d.removes = append(d.removes, RemoveMutation(parent, e.view, i))
		d.dropSubtree(e)
	}

	var kept []int
	for _, e := range news {
		if oi, ok := oldIdx[e.node.Family()]; ok {
			kept = append(kept, oi)
		}
	}
	stable := longestIncreasing(kept)

	for i, e := range news {
		oi, ok := oldIdx[e.node.Family()]
		if !ok {
			d.inserts = append(d.inserts, InsertMutation(parent, e.view, i))
			d.addSubtree(e)
			continue
		}
		old := olds[oi]
		if !stable[oi] {
			d.inserts = append(d.inserts, MoveMutation(parent, old.view, e.view, oi, i))
		}
		d.diffPair(old, e)
	}
}

func (d *differ) diffPair(old, cur entry) {
	if !old.view.Equal(cur.view) {
		d.updates = append(d.updates, UpdateMutation(old.view, cur.view))
	}
	d.diffChildren(cur.view, old.node, cur.node)
}

// dropSubtree deletes e and its mounted descendants. A family still mounted
// in the new tree was reparented: it is only removed here and diffed from its
// new parent.
func (d *differ) dropSubtree(e entry) {
	if _, ok := d.mounted(false)[e.node.Family()]; ok {
		return
	}
	d.deletes = append(d.deletes, DeleteMutation(e.view))
	children := flatten(e.node)
	for i := len(children) - 1; i >= 0; i-- {
		d.removes = append(d.removes, RemoveMutation(e.view, children[i].view, i))
		d.dropSubtree(children[i])
	}
}

// addSubtree creates e and its mounted descendants. A family mounted in the
// old tree is reused and diffed against its old generation.
func (d *differ) addSubtree(e entry) {
	if old, ok := d.mounted(true)[e.node.Family()]; ok {
		d.diffPair(old, e)
		return
	}
	d.creates = append(d.creates, CreateMutation(e.view))
	for i, c := range flatten(e.node) {
		d.inserts = append(d.inserts, InsertMutation(e.view, c.view, i))
		d.addSubtree(c)
	}
}

func (d *differ) mounted(old bool) map[*core.Family]entry {
	if old {
		if d.oldMounted == nil {
			d.oldMounted = mountedFamilies(d.oldRoot)
		}
		return d.oldMounted
	}
	if d.newMounted == nil {
		d.newMounted = mountedFamilies(d.newRoot)
	}
	return d.newMounted
}

func mountedFamilies(root *core.ShadowNode) map[*core.Family]entry {
	m := make(map[*core.Family]entry)
	var walk func(n *core.ShadowNode)
	walk = func(n *core.ShadowNode) {
		for _, c := range flatten(n) {
			m[c.node.Family()] = c
			walk(c.node)
		}
	}
	walk(root)
	return m
}

// longestIncreasing returns the members of one longest strictly increasing
// subsequence of seq. Those children keep their relative order and need no
// move.
func longestIncreasing(seq []int) map[int]bool {
	if len(seq) == 0 {
		return nil
	}
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		j := sort.Search(len(tails), func(k int) bool { return seq[tails[k]] >= v })
		prev[i] = -1
		if j > 0 {
			prev[i] = tails[j-1]
		}
		if j == len(tails) {
			tails = append(tails, i)
		} else {
			tails[j] = i
		}
	}
	keep := make(map[int]bool, len(tails))
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		keep[seq[i]] = true
	}
	return keep
}
