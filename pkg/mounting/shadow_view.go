package mounting

import (
	"encoding/json"
	"fmt"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/graphics"
)

// ShadowView is the part of a node the native layer sees. Frames are
// relative to the nearest ancestor that forms a view.
type ShadowView struct {
	ComponentName   string
	ComponentHandle core.ComponentHandle
	SurfaceID       core.SurfaceID
	Tag             core.Tag
	Props           core.Props
	EventEmitter    *core.EventEmitter
	LayoutMetrics   core.LayoutMetrics
	State           *core.State
}

// NewShadowView projects n.
func NewShadowView(n *core.ShadowNode) ShadowView {
	return ShadowView{
		ComponentName:   n.ComponentName(),
		ComponentHandle: n.ComponentHandle(),
		SurfaceID:       n.SurfaceID(),
		Tag:             n.Tag(),
		Props:           n.Props(),
		EventEmitter:    n.EventEmitter(),
		LayoutMetrics:   n.LayoutMetrics(),
		State:           n.State(),
	}
}

// Equal reports whether every field matches. Props and state compare by
// identity.
func (v ShadowView) Equal(o ShadowView) bool {
	return v.ComponentName == o.ComponentName &&
		v.ComponentHandle == o.ComponentHandle &&
		v.SurfaceID == o.SurfaceID &&
		v.Tag == o.Tag &&
		v.Props == o.Props &&
		v.EventEmitter == o.EventEmitter &&
		v.LayoutMetrics == o.LayoutMetrics &&
		v.State == o.State
}

// IsZero reports whether v is the empty view.
func (v ShadowView) IsZero() bool {
	return v.Tag == 0 && v.ComponentName == ""
}

func (v ShadowView) String() string {
	if v.IsZero() {
		return "[]"
	}
	return fmt.Sprintf("[%s#%d]", v.ComponentName, v.Tag)
}

func (v ShadowView) withOffset(offset graphics.Point) ShadowView {
	v.LayoutMetrics.Frame = v.LayoutMetrics.Frame.Translate(offset.X, offset.Y)
	return v
}

type viewJSON struct {
	Component string         `json:"component"`
	Tag       core.Tag       `json:"tag"`
	Surface   core.SurfaceID `json:"surface"`
	Frame     graphics.Rect  `json:"frame"`
	Display   string         `json:"display"`
	Direction string         `json:"direction"`
	Props     string         `json:"props,omitempty"`
	State     any            `json:"state,omitempty"`
}

// MarshalJSON encodes the view for the inspector and the journal.
func (v ShadowView) MarshalJSON() ([]byte, error) {
	out := viewJSON{
		Component: v.ComponentName,
		Tag:       v.Tag,
		Surface:   v.SurfaceID,
		Frame:     v.LayoutMetrics.Frame,
		Display:   v.LayoutMetrics.DisplayType.String(),
		Direction: v.LayoutMetrics.LayoutDirection.String(),
	}
	if v.Props != nil {
		out.Props = fmt.Sprintf("%+v", v.Props)
	}
	if d := v.State.Data(); d != nil {
		out.State = fmt.Sprint(d)
	}
	return json.Marshal(out)
}
