package core

// Fragment carries the fields to override when constructing or cloning a
// node. Zero fields keep the source value.
type Fragment struct {
	Props    Props
	Children *[]*ShadowNode
	State    *State

	// Identity fields may only repeat the node's own values.
	Tag          Tag
	SurfaceID    SurfaceID
	EventEmitter *EventEmitter
}

// ChildList wraps children for Fragment.Children.
func ChildList(children ...*ShadowNode) *[]*ShadowNode {
	if children == nil {
		children = []*ShadowNode{}
	}
	return &children
}
