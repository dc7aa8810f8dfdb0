package props

import "sync"

var parsers sync.Map // component name -> *Parser

// For returns the process-wide parser for component, creating and preparing it
// on first use.
func For(component string, discover func(*RawProps)) *Parser {
	v, ok := parsers.Load(component)
	if !ok {
		v, _ = parsers.LoadOrStore(component, NewParser(component))
	}
	p := v.(*Parser)
	p.Prepare(discover)
	return p
}

// Lookup returns the parser registered for component, if any.
func Lookup(component string) (*Parser, bool) {
	v, ok := parsers.Load(component)
	if !ok {
		return nil, false
	}
	return v.(*Parser), true
}
