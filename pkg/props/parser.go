// Package props resolves dynamically keyed property bags into indexed lookups.
//
// A Parser belongs to one component type. Its first use runs a discovery pass in
// which every key the component reads is recorded in read order. After that the
// key list is frozen, and lookups against a parsed bag walk a cursor that usually
// advances by exactly one slot per read.
package props

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-drift/shadow/pkg/errors"
)

// Parser caches the ordered key list of one component type.
type Parser struct {
	component string

	once  sync.Once
	ready atomic.Bool

	keys  []string
	index map[string]int
}

// NewParser returns an unprepared parser for component.
func NewParser(component string) *Parser {
	return &Parser{component: component, index: make(map[string]int)}
}

// Component returns the component name the parser serves.
func (p *Parser) Component() string {
	return p.component
}

// Ready reports whether discovery has finished.
func (p *Parser) Ready() bool {
	return p.ready.Load()
}

// Keys returns the frozen key list in discovery order.
func (p *Parser) Keys() []string {
	if !p.ready.Load() {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Prepare runs discover once against an empty bag; every key it reads is
// recorded. Concurrent callers block until discovery completes.
func (p *Parser) Prepare(discover func(*RawProps)) {
	p.once.Do(func() {
		raw := &RawProps{parser: p, cursor: -1}
		if discover != nil {
			discover(raw)
		}
		p.ready.Store(true)
	})
}

// Parse indexes bag against the frozen key list. Keys unknown to the parser
// are kept aside and reported by RawProps.Unrecognized.
func (p *Parser) Parse(bag Raw) *RawProps {
	errors.Assert(p.ready.Load(), "props.Parser.Parse", nil, "parser for %q used before Prepare", p.component)

	r := &RawProps{
		parser:     p,
		cursor:     -1,
		valueIndex: make([]int, len(p.keys)),
	}
	for i := range r.valueIndex {
		r.valueIndex[i] = -1
	}
	for k, v := range bag {
		idx, ok := p.index[k]
		if !ok {
			r.unrecognized = append(r.unrecognized, k)
			continue
		}
		r.valueIndex[idx] = len(r.values)
		r.values = append(r.values, v)
	}
	return r
}

// discover records name during the discovery pass.
func (p *Parser) discover(name string) {
	if _, ok := p.index[name]; ok {
		return
	}
	p.index[name] = len(p.keys)
	p.keys = append(p.keys, name)
}

// at resolves name for r. The cursor on r starts one slot past the previous hit,
// so keys read in discovery order are found on the first probe. A miss walks the
// list forward and wraps around at most once.
func (p *Parser) at(r *RawProps, name string) (any, bool) {
	if !p.ready.Load() {
		p.discover(name)
		return nil, false
	}
	n := len(p.keys)
	if n == 0 {
		r.stats.Misses++
		return nil, false
	}

	wrapped := false
	probes := 0
	for {
		r.cursor++
		probes++
		if r.cursor >= n {
			if wrapped {
				r.stats.Misses++
				slog.Debug("props: key not registered", "component", p.component, "key", name)
				r.cursor = -1
				return nil, false
			}
			wrapped = true
			r.stats.Wraparounds++
			r.cursor = 0
		}
		if p.keys[r.cursor] == name {
			break
		}
	}
	if probes == 1 && !wrapped {
		r.stats.Advances++
	} else {
		r.stats.Scans++
	}

	vi := r.valueIndex[r.cursor]
	if vi < 0 {
		return nil, false
	}
	return r.values[vi], true
}
