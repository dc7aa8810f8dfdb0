package layout

import (
	"fmt"
	"math"

	"github.com/go-drift/shadow/pkg/graphics"
)

// BoxEngine is a single-line flexbox subset: row and column containers with
// justify/align, grow and shrink, min/max, margin, padding, border, relative
// and absolute offsets, and display none.
type BoxEngine struct{}

// NewBoxEngine returns the reference engine.
func NewBoxEngine() *BoxEngine {
	return &BoxEngine{}
}

// CalculateLayout implements Engine.
func (e *BoxEngine) CalculateLayout(root *Node, ownerWidth, ownerHeight float64, opts Options) error {
	if ownerWidth < 0 || ownerHeight < 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidOwnerSize, ownerWidth, ownerHeight)
	}
	ownerWidth = finiteOrUndefined(ownerWidth)
	ownerHeight = finiteOrUndefined(ownerHeight)
	dir := opts.Direction
	if dir == DirectionInherit {
		dir = DirectionLTR
	}

	p := &pass{opts: opts}
	st := root.style
	margin := st.Margin.resolve(resolveDirection(st.Direction, dir), ownerWidth)
	w, wm := rootAxis(st.Width, st.MaxWidth, ownerWidth, margin[0]+margin[2])
	h, hm := rootAxis(st.Height, st.MaxHeight, ownerHeight, margin[1]+margin[3])

	p.layoutNode(root, w, wm, h, hm, ownerWidth, ownerHeight, dir)
	p.setPosition(root, margin[0], margin[1])
	root.layout.Margin = margin
	return p.err
}

func rootAxis(dim, max Value, owner, margins float64) (float64, MeasureMode) {
	if v := dim.Resolve(owner); !IsUndefined(v) {
		return v, MeasureExactly
	}
	if v := max.Resolve(owner); !IsUndefined(v) {
		return v, MeasureAtMost
	}
	if IsUndefined(owner) {
		return Undefined, MeasureUndefined
	}
	return math.Max(0, owner-margins), MeasureExactly
}

type pass struct {
	opts Options
	err  error
}

func (p *pass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// box is the per-call state of layoutNode.
type box struct {
	n      *Node
	dir    Direction
	w, h   float64
	wm, hm MeasureMode
	ownerW float64
	ownerH float64
	pad    [4]float64
	bor    [4]float64
}

func (b *box) insetW() float64 { return b.pad[0] + b.pad[2] + b.bor[0] + b.bor[2] }
func (b *box) insetH() float64 { return b.pad[1] + b.pad[3] + b.bor[1] + b.bor[3] }

func (b *box) fitWidth(content float64) float64 {
	st := b.n.style
	return fit(content, b.w, b.wm, st.MinWidth.Resolve(b.ownerW), st.MaxWidth.Resolve(b.ownerW), b.insetW())
}

func (b *box) fitHeight(content float64) float64 {
	st := b.n.style
	return fit(content, b.h, b.hm, st.MinHeight.Resolve(b.ownerH), st.MaxHeight.Resolve(b.ownerH), b.insetH())
}

// layoutNode sizes n for the given border-box constraints and positions its
// children. A clean node whose constraints match the previous call is skipped.
func (p *pass) layoutNode(n *Node, w float64, wm MeasureMode, h float64, hm MeasureMode, ownerW, ownerH float64, parentDir Direction) {
	dir := resolveDirection(n.style.Direction, parentDir)
	key := constraintKey{
		width: keyFloat(w, wm), widthMode: wm,
		height: keyFloat(h, hm), heightMode: hm,
		ownerW: keyFloat(ownerW, MeasureExactly), ownerH: keyFloat(ownerH, MeasureExactly),
		direction: dir,
	}
	if !n.dirty && n.hasLastKey && n.lastKey == key {
		return
	}
	n.lastKey, n.hasLastKey = key, true
	p.cloneChildrenIfNeeded(n)

	b := &box{
		n: n, dir: dir,
		w: w, h: h, wm: wm, hm: hm,
		ownerW: ownerW, ownerH: ownerH,
		pad: n.style.Padding.resolve(dir, ownerW),
		bor: n.style.Border.resolve(dir, ownerW),
	}

	var width, height float64
	if n.measure != nil && len(n.children) == 0 {
		width, height = p.measureLeaf(b)
	} else {
		width, height = p.layoutChildren(b)
	}

	n.layout.Width = width
	n.layout.Height = height
	n.layout.Direction = dir
	n.layout.Padding = b.pad
	n.layout.Border = b.bor
	n.dirty = false
	n.hasNewLayout = true
}

func (p *pass) cloneChildrenIfNeeded(n *Node) {
	for i, c := range n.children {
		if c.owner == n {
			continue
		}
		var clone *Node
		if p.opts.Clone != nil {
			clone = p.opts.Clone(c, n, i)
		}
		if clone == nil {
			clone = c.Clone()
		}
		n.children[i] = clone
		clone.owner = n
	}
}

func (p *pass) measureLeaf(b *box) (float64, float64) {
	if b.wm == MeasureExactly && b.hm == MeasureExactly {
		return b.w, b.h
	}
	innerW, innerH := Undefined, Undefined
	if b.wm != MeasureUndefined {
		innerW = math.Max(0, b.w-b.insetW())
	}
	if b.hm != MeasureUndefined {
		innerH = math.Max(0, b.h-b.insetH())
	}
	size := b.n.measureCached(p.opts.Context, innerW, b.wm, innerH, b.hm)
	if !validSize(size) {
		p.fail(fmt.Errorf("%w: %vx%v", ErrInvalidMeasurement, size.Width, size.Height))
		size = graphics.Size{}
	}
	return b.fitWidth(size.Width + b.insetW()), b.fitHeight(size.Height + b.insetH())
}

type flexItem struct {
	node       *Node
	dir        Direction
	margin     [4]float64
	align      Align
	fixedCross float64
	main       float64
	cross      float64
}

func (it *flexItem) mainMargin(row bool) float64 {
	if row {
		return it.margin[0] + it.margin[2]
	}
	return it.margin[1] + it.margin[3]
}

func (it *flexItem) crossMargin(row bool) float64 {
	if row {
		return it.margin[1] + it.margin[3]
	}
	return it.margin[0] + it.margin[2]
}

func (it *flexItem) mainLead(row bool) float64 {
	if row {
		return it.margin[0]
	}
	return it.margin[1]
}

func (it *flexItem) crossLead(row bool) float64 {
	if row {
		return it.margin[1]
	}
	return it.margin[0]
}

func (it *flexItem) crossTrail(row bool) float64 {
	if row {
		return it.margin[3]
	}
	return it.margin[2]
}

// flexLine carries container geometry shared by the item helpers.
type flexLine struct {
	row        bool
	innerW     float64
	innerH     float64
	availMain  float64
	availCross float64
	dir        Direction
}

func (p *pass) layoutChildren(b *box) (float64, float64) {
	st := b.n.style
	row := st.FlexDirection.isRow()

	innerW, innerH := Undefined, Undefined
	if b.wm == MeasureExactly {
		innerW = math.Max(0, b.w-b.insetW())
	}
	if b.hm == MeasureExactly {
		innerH = math.Max(0, b.h-b.insetH())
	}
	availW, availH := innerW, innerH
	if b.wm == MeasureAtMost {
		availW = math.Max(0, b.w-b.insetW())
	}
	if b.hm == MeasureAtMost {
		availH = math.Max(0, b.h-b.insetH())
	}

	line := flexLine{row: row, innerW: innerW, innerH: innerH, dir: b.dir}
	innerMain, innerCross := innerH, innerW
	line.availMain, line.availCross = availH, availW
	if row {
		innerMain, innerCross = innerW, innerH
		line.availMain, line.availCross = availW, availH
	}

	var items []*flexItem
	var absolutes []*Node
	for _, c := range b.n.children {
		switch {
		case c.style.Display == DisplayNone:
			p.hide(c)
		case c.style.PositionType == PositionAbsolute:
			absolutes = append(absolutes, c)
		default:
			items = append(items, p.newItem(c, st, &line, innerMain, innerCross))
		}
	}

	if !IsUndefined(innerMain) {
		p.flex(items, &line, innerMain)
	}

	var used, maxCross float64
	for _, it := range items {
		used += it.main + it.mainMargin(row)
		maxCross = math.Max(maxCross, it.cross+it.crossMargin(row))
	}
	contentW, contentH := maxCross, used
	if row {
		contentW, contentH = used, maxCross
	}
	width := b.fitWidth(contentW + b.insetW())
	height := b.fitHeight(contentH + b.insetH())

	line.innerW = math.Max(0, width-b.insetW())
	line.innerH = math.Max(0, height-b.insetH())
	innerMain, innerCross = line.innerH, line.innerW
	if row {
		innerMain, innerCross = line.innerW, line.innerH
	}

	for _, it := range items {
		if it.align == AlignStretch && IsUndefined(it.fixedCross) {
			it.fixedCross = math.Max(0, innerCross-it.crossMargin(row))
			p.layoutItem(it, &line, it.main)
		}
	}

	p.position(b, items, &line, innerMain, innerCross)
	for _, c := range absolutes {
		p.layoutAbsolute(b, c, width, height)
	}
	return width, height
}

func (p *pass) newItem(c *Node, parent Style, line *flexLine, innerMain, innerCross float64) *flexItem {
	cs := c.style
	it := &flexItem{
		node:   c,
		dir:    resolveDirection(cs.Direction, line.dir),
		align:  cs.AlignSelf,
		margin: cs.Margin.resolve(resolveDirection(cs.Direction, line.dir), line.innerW),
	}
	if it.align == AlignAuto {
		it.align = parent.AlignItems
	}
	if it.align == AlignAuto {
		it.align = AlignStretch
	}

	cw := clampDim(cs.Width.Resolve(line.innerW), cs.MinWidth.Resolve(line.innerW), cs.MaxWidth.Resolve(line.innerW))
	ch := clampDim(cs.Height.Resolve(line.innerH), cs.MinHeight.Resolve(line.innerH), cs.MaxHeight.Resolve(line.innerH))
	mainDim, crossDim := ch, cw
	if line.row {
		mainDim, crossDim = cw, ch
	}
	if basis := cs.FlexBasis.Resolve(innerMain); !IsUndefined(basis) {
		mainDim = basis
	}
	if IsUndefined(crossDim) && it.align == AlignStretch && !IsUndefined(innerCross) {
		crossDim = math.Max(0, innerCross-it.crossMargin(line.row))
	}
	it.fixedCross = crossDim
	p.layoutItem(it, line, mainDim)
	return it
}

// layoutItem lays out an item with main size mainSize (Undefined for content
// size) and records its resulting border box.
func (p *pass) layoutItem(it *flexItem, line *flexLine, mainSize float64) {
	row := line.row
	mainVal, mainMode := mainSize, MeasureExactly
	if IsUndefined(mainSize) {
		mainVal, mainMode = Undefined, MeasureUndefined
		if !IsUndefined(line.availMain) {
			mainVal, mainMode = math.Max(0, line.availMain-it.mainMargin(row)), MeasureAtMost
		}
	}
	crossVal, crossMode := it.fixedCross, MeasureExactly
	if IsUndefined(it.fixedCross) {
		crossVal, crossMode = Undefined, MeasureUndefined
		if !IsUndefined(line.availCross) {
			crossVal, crossMode = math.Max(0, line.availCross-it.crossMargin(row)), MeasureAtMost
		}
	}

	c := it.node
	if row {
		p.layoutNode(c, mainVal, mainMode, crossVal, crossMode, line.innerW, line.innerH, line.dir)
		it.main, it.cross = c.layout.Width, c.layout.Height
	} else {
		p.layoutNode(c, crossVal, crossMode, mainVal, mainMode, line.innerW, line.innerH, line.dir)
		it.main, it.cross = c.layout.Height, c.layout.Width
	}
}

// flex distributes positive free space by flexGrow and negative free space by
// flexShrink weighted with the item's size.
func (p *pass) flex(items []*flexItem, line *flexLine, innerMain float64) {
	var used, totalGrow, totalShrink float64
	for _, it := range items {
		used += it.main + it.mainMargin(line.row)
		totalGrow += it.node.style.FlexGrow
		totalShrink += it.node.style.FlexShrink * it.main
	}
	free := innerMain - used
	switch {
	case free > 0 && totalGrow > 0:
		for _, it := range items {
			if g := it.node.style.FlexGrow; g > 0 {
				p.layoutItem(it, line, p.clampMain(it, line, it.main+free*g/totalGrow))
			}
		}
	case free < 0 && totalShrink > 0:
		for _, it := range items {
			if s := it.node.style.FlexShrink; s > 0 {
				target := math.Max(0, it.main+free*(s*it.main)/totalShrink)
				p.layoutItem(it, line, p.clampMain(it, line, target))
			}
		}
	}
}

func (p *pass) clampMain(it *flexItem, line *flexLine, v float64) float64 {
	cs := it.node.style
	if line.row {
		return clampDim(v, cs.MinWidth.Resolve(line.innerW), cs.MaxWidth.Resolve(line.innerW))
	}
	return clampDim(v, cs.MinHeight.Resolve(line.innerH), cs.MaxHeight.Resolve(line.innerH))
}

func (p *pass) position(b *box, items []*flexItem, line *flexLine, innerMain, innerCross float64) {
	row := line.row
	st := b.n.style

	var used float64
	for _, it := range items {
		used += it.main + it.mainMargin(row)
	}
	lead, between := justify(st.JustifyContent, innerMain-used, len(items))

	// Reversed flows are laid out from the start and mirrored, so the leading
	// margin is the physical trailing one.
	flip := st.FlexDirection.isReverse() != (row && b.dir == DirectionRTL)

	pos := lead
	for _, it := range items {
		leadMargin := it.mainLead(row)
		if flip {
			leadMargin = it.mainMargin(row) - leadMargin
		}
		mainPos := pos + leadMargin
		pos += it.main + it.mainMargin(row) + between

		var crossPos float64
		switch it.align {
		case AlignCenter:
			crossPos = it.crossLead(row) + (innerCross-it.cross-it.crossMargin(row))/2
		case AlignFlexEnd:
			crossPos = innerCross - it.cross - it.crossTrail(row)
		default:
			crossPos = it.crossLead(row)
		}

		if flip {
			mainPos = innerMain - mainPos - it.main
		}

		x, y := crossPos, mainPos
		if row {
			x, y = mainPos, crossPos
		}
		x += b.bor[0] + b.pad[0]
		y += b.bor[1] + b.pad[1]

		c := it.node
		x, y = relativeOffset(c.style.Position, it.dir, line.innerW, line.innerH, x, y)
		p.setPosition(c, x, y)
		c.layout.Margin = it.margin
	}
}

func relativeOffset(pos Edges, dir Direction, innerW, innerH, x, y float64) (float64, float64) {
	if l := pos.left(dir).Resolve(innerW); !IsUndefined(l) {
		x += l
	} else if r := pos.right(dir).Resolve(innerW); !IsUndefined(r) {
		x -= r
	}
	if t := pos.top().Resolve(innerH); !IsUndefined(t) {
		y += t
	} else if bt := pos.bottom().Resolve(innerH); !IsUndefined(bt) {
		y -= bt
	}
	return x, y
}

// layoutAbsolute places c against the padding box of its container.
func (p *pass) layoutAbsolute(b *box, c *Node, width, height float64) {
	cs := c.style
	dir := resolveDirection(cs.Direction, b.dir)
	boxW := width - b.bor[0] - b.bor[2]
	boxH := height - b.bor[1] - b.bor[3]
	m := cs.Margin.resolve(dir, boxW)

	left := cs.Position.left(dir).Resolve(boxW)
	right := cs.Position.right(dir).Resolve(boxW)
	top := cs.Position.top().Resolve(boxH)
	bottom := cs.Position.bottom().Resolve(boxH)

	cw := cs.Width.Resolve(boxW)
	if IsUndefined(cw) && !IsUndefined(left) && !IsUndefined(right) {
		cw = math.Max(0, boxW-left-right-m[0]-m[2])
	}
	ch := cs.Height.Resolve(boxH)
	if IsUndefined(ch) && !IsUndefined(top) && !IsUndefined(bottom) {
		ch = math.Max(0, boxH-top-bottom-m[1]-m[3])
	}
	cw = clampDim(cw, cs.MinWidth.Resolve(boxW), cs.MaxWidth.Resolve(boxW))
	ch = clampDim(ch, cs.MinHeight.Resolve(boxH), cs.MaxHeight.Resolve(boxH))

	w, wm := cw, MeasureExactly
	if IsUndefined(cw) {
		w, wm = math.Max(0, boxW-m[0]-m[2]), MeasureAtMost
	}
	h, hm := ch, MeasureExactly
	if IsUndefined(ch) {
		h, hm = math.Max(0, boxH-m[1]-m[3]), MeasureAtMost
	}
	p.layoutNode(c, w, wm, h, hm, boxW, boxH, b.dir)

	var x, y float64
	switch {
	case !IsUndefined(left):
		x = b.bor[0] + left + m[0]
	case !IsUndefined(right):
		x = width - b.bor[2] - right - c.layout.Width - m[2]
	default:
		x = b.bor[0] + b.pad[0] + m[0]
	}
	switch {
	case !IsUndefined(top):
		y = b.bor[1] + top + m[1]
	case !IsUndefined(bottom):
		y = height - b.bor[3] - bottom - c.layout.Height - m[3]
	default:
		y = b.bor[1] + b.pad[1] + m[1]
	}
	p.setPosition(c, x, y)
	c.layout.Margin = m
}

// hide collapses a display:none child to an empty box.
func (p *pass) hide(c *Node) {
	if c.dirty || c.layout.Width != 0 || c.layout.Height != 0 || c.layout.Left != 0 || c.layout.Top != 0 {
		c.layout = Result{Direction: c.layout.Direction}
		c.hasNewLayout = true
	}
	c.dirty = false
	c.hasLastKey = false
}

func (p *pass) setPosition(n *Node, x, y float64) {
	if n.layout.Left != x || n.layout.Top != y {
		n.layout.Left = x
		n.layout.Top = y
		n.hasNewLayout = true
	}
}

func justify(j Justify, free float64, count int) (lead, between float64) {
	if count == 0 {
		return 0, 0
	}
	switch j {
	case JustifyCenter:
		return free / 2, 0
	case JustifyFlexEnd:
		return free, 0
	}
	if free <= 0 {
		return 0, 0
	}
	switch j {
	case JustifySpaceBetween:
		if count > 1 {
			return 0, free / float64(count-1)
		}
	case JustifySpaceAround:
		between = free / float64(count)
		return between / 2, between
	case JustifySpaceEvenly:
		between = free / float64(count+1)
		return between, between
	}
	return 0, 0
}

func fit(content, avail float64, mode MeasureMode, min, max, inset float64) float64 {
	if mode == MeasureExactly {
		return avail
	}
	v := content
	if mode == MeasureAtMost && v > avail {
		v = avail
	}
	v = clampDim(v, min, max)
	return math.Max(v, inset)
}

// clampDim bounds v by min and max; undefined bounds are ignored and an
// undefined v stays undefined.
func clampDim(v, min, max float64) float64 {
	if IsUndefined(v) {
		return v
	}
	if !IsUndefined(max) && v > max {
		v = max
	}
	if !IsUndefined(min) && v < min {
		v = min
	}
	return v
}

func resolveDirection(d, parent Direction) Direction {
	if d == DirectionInherit {
		if parent == DirectionInherit {
			return DirectionLTR
		}
		return parent
	}
	return d
}

func finiteOrUndefined(v float64) float64 {
	if math.IsInf(v, 0) {
		return Undefined
	}
	return v
}

func validSize(s graphics.Size) bool {
	ok := func(v float64) bool { return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }
	return ok(s.Width) && ok(s.Height)
}
