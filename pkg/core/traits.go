package core

// Traits are per-node flags describing how a node takes part in layout and
// mounting.
type Traits uint32

const (
	// TraitLayoutable nodes own a layout peer.
	TraitLayoutable Traits = 1 << iota
	// TraitLeaf nodes never have layoutable children.
	TraitLeaf
	// TraitMeasurable nodes size themselves through a measure callback.
	TraitMeasurable
	// TraitFormsView nodes are mounted as native views. Nodes without it are
	// flattened into their nearest mounted ancestor.
	TraitFormsView
	// TraitText marks text content.
	TraitText
	// TraitRoot marks a surface root.
	TraitRoot
)

// Has reports whether all bits of o are set.
func (t Traits) Has(o Traits) bool {
	return t&o == o
}

// With returns t with o set.
func (t Traits) With(o Traits) Traits {
	return t | o
}

// Without returns t with o cleared.
func (t Traits) Without(o Traits) Traits {
	return t &^ o
}

var traitNames = []struct {
	t    Traits
	name string
}{
	{TraitLayoutable, "layoutable"},
	{TraitLeaf, "leaf"},
	{TraitMeasurable, "measurable"},
	{TraitFormsView, "forms_view"},
	{TraitText, "text"},
	{TraitRoot, "root"},
}

// Names returns the names of the set traits in declaration order.
func (t Traits) Names() []string {
	var out []string
	for _, tn := range traitNames {
		if t.Has(tn.t) {
			out = append(out, tn.name)
		}
	}
	return out
}
