package core

import (
	"testing"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/props"
)

func TestAncestorsPath(t *testing.T) {
	root, a, a1, b := sampleTree(t)

	path, ok := a1.Family().Ancestors(root)
	if !ok || len(path) != 2 {
		t.Fatalf("Ancestors(a1) = %v, %v", path, ok)
	}
	if path[0].Node != root || path[0].Index != 0 || path[1].Node != a || path[1].Index != 0 {
		t.Errorf("unexpected path %+v", path)
	}

	path, ok = b.Family().Ancestors(root)
	if !ok || len(path) != 1 || path[0].Index != 1 {
		t.Errorf("Ancestors(b) = %+v, %v", path, ok)
	}

	path, ok = root.Family().Ancestors(root)
	if !ok || len(path) != 0 {
		t.Errorf("Ancestors(root) = %+v, %v", path, ok)
	}
}

func TestAncestorsSearchMatchesParentLinks(t *testing.T) {
	root, _, a1, _ := sampleTree(t)
	linked, ok := a1.Family().ancestorsByParentLinks(root)
	if !ok {
		t.Fatal("parent links did not resolve")
	}
	searched, ok := a1.Family().ancestorsBySearch(root)
	if !ok {
		t.Fatal("search did not resolve")
	}
	if len(linked) != len(searched) {
		t.Fatalf("len %d != %d", len(linked), len(searched))
	}
	for i := range linked {
		if linked[i] != searched[i] {
			t.Errorf("step %d: %+v != %+v", i, linked[i], searched[i])
		}
	}
}

func TestAncestorsFallsBackWhenLinksAreStale(t *testing.T) {
	root, _, a1, _ := sampleTree(t)
	root.SealRecursive()

	// Using a1 under another parent moves its recorded parent away from a.
	other := mustNode(t, testView, 9, nil)
	other.AppendChild(a1)

	path, ok := a1.Family().Ancestors(root)
	if !ok || len(path) != 2 {
		t.Fatalf("Ancestors after relink = %+v, %v", path, ok)
	}
}

func TestCloneTreeUnknownFamily(t *testing.T) {
	root, _, _, _ := sampleTree(t)
	stranger := mustNode(t, testView, 42, nil)
	called := false
	got := root.CloneTree(stranger.Family(), func(n *ShadowNode) *ShadowNode {
		called = true
		return n
	})
	if got != nil || called {
		t.Error("CloneTree should return nil without calling transform")
	}
}

func TestCloneTreeNilTransform(t *testing.T) {
	root, _, a1, _ := sampleTree(t)
	if root.CloneTree(a1.Family(), func(*ShadowNode) *ShadowNode { return nil }) != nil {
		t.Error("nil from transform should abort the clone")
	}
}

func TestCloneTreeSharesUntouchedSubtrees(t *testing.T) {
	root, a, _, b := sampleTree(t)
	root.SealRecursive()

	root2 := root.CloneTree(b.Family(), func(n *ShadowNode) *ShadowNode {
		return withProps(t, n, props.Raw{"color": "green"})
	})
	if root2 == root || !SameFamily(root2, root) {
		t.Fatal("root was not cloned")
	}
	if root2.Children()[0] != a {
		t.Error("subtree off the path was copied")
	}
	if root2.Children()[1].Props().(*testProps).color != "green" {
		t.Error("replacement not installed")
	}
	if root.Children()[1] != b {
		t.Error("source tree changed")
	}
}

func TestCloneTreeOfRoot(t *testing.T) {
	root, a, _, _ := sampleTree(t)
	root.SealRecursive()
	root2 := root.CloneTree(root.Family(), func(n *ShadowNode) *ShadowNode {
		return n.Clone(Fragment{})
	})
	if root2 == root || root2.Children()[0] != a {
		t.Error("root transform should clone only the root")
	}
}

func TestCloneTreeRejectsFamilyChange(t *testing.T) {
	root, _, a1, _ := sampleTree(t)
	stranger := mustNode(t, testView, 42, nil)
	expectAssertion(t, errors.ErrImmutableField, func() {
		root.CloneTree(a1.Family(), func(*ShadowNode) *ShadowNode { return stranger })
	})
}
