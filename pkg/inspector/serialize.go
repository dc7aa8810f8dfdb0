package inspector

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/mounting"
)

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeRect is a JSON-safe frame.
type SafeRect struct {
	X      SafeFloat `json:"x"`
	Y      SafeFloat `json:"y"`
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

func safeRect(r graphics.Rect) SafeRect {
	return SafeRect{
		X:      SafeFloat(r.Left),
		Y:      SafeFloat(r.Top),
		Width:  SafeFloat(r.Width()),
		Height: SafeFloat(r.Height()),
	}
}

// TreeNode is a serialized shadow node. Frames are relative to the parent
// node, not to the nearest mounted view.
type TreeNode struct {
	Component  string     `json:"component"`
	Tag        int32      `json:"tag"`
	Traits     []string   `json:"traits,omitempty"`
	Frame      SafeRect   `json:"frame"`
	Display    string     `json:"display"`
	OrderIndex int        `json:"orderIndex,omitempty"`
	Sealed     bool       `json:"sealed"`
	Props      string     `json:"props,omitempty"`
	Truncated  bool       `json:"truncated,omitempty"`
	Children   []TreeNode `json:"children,omitempty"`
}

func serializeNode(n *core.ShadowNode, depth int) TreeNode {
	m := n.LayoutMetrics()
	out := TreeNode{
		Component:  n.ComponentName(),
		Tag:        int32(n.Tag()),
		Traits:     n.Traits().Names(),
		Frame:      safeRect(m.Frame),
		Display:    m.DisplayType.String(),
		OrderIndex: n.OrderIndex(),
		Sealed:     n.IsSealed(),
	}
	if p := n.Props(); p != nil {
		out.Props = fmt.Sprintf("%+v", p)
	}
	if depth >= maxTreeDepth {
		out.Truncated = len(n.Children()) > 0
		return out
	}
	for _, c := range n.Children() {
		out.Children = append(out.Children, serializeNode(c, depth+1))
	}
	return out
}

// ViewNode is a serialized mounted view.
type ViewNode struct {
	Component string     `json:"component"`
	Tag       int32      `json:"tag"`
	Frame     SafeRect   `json:"frame"`
	Children  []ViewNode `json:"children,omitempty"`
}

func serializeView(v *mounting.StubView, depth int) ViewNode {
	out := ViewNode{
		Component: v.View.ComponentName,
		Tag:       int32(v.View.Tag),
		Frame:     safeRect(v.View.LayoutMetrics.Frame),
	}
	if depth < maxTreeDepth {
		for _, c := range v.Children {
			out.Children = append(out.Children, serializeView(c, depth+1))
		}
	}
	return out
}
