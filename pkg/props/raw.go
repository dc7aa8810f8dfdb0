package props

// Raw is an external, dynamically keyed property bag.
type Raw map[string]any

// LookupStats counts how lookups on one RawProps were resolved.
type LookupStats struct {
	// Advances are lookups found on the first cursor probe.
	Advances int
	// Scans are lookups that needed more than one probe.
	Scans int
	// Wraparounds counts cursor resets to the start of the key list.
	Wraparounds int
	// Misses are names absent from the key list.
	Misses int
}

// RawProps is a bag indexed against a Parser. A RawProps is read by a single
// goroutine while one props object is constructed from it.
type RawProps struct {
	parser *Parser

	values     []any
	valueIndex []int
	cursor     int

	unrecognized []string
	stats        LookupStats
}

// At returns the value stored under name.
func (r *RawProps) At(name string) (any, bool) {
	if r == nil || r.parser == nil {
		return nil, false
	}
	return r.parser.at(r, name)
}

// Len returns the number of recognized values in the bag.
func (r *RawProps) Len() int {
	if r == nil {
		return 0
	}
	return len(r.values)
}

// Empty reports whether the bag carries no recognized values.
func (r *RawProps) Empty() bool {
	return r.Len() == 0
}

// Unrecognized lists keys of the source bag the parser never discovered.
func (r *RawProps) Unrecognized() []string {
	if r == nil {
		return nil
	}
	return r.unrecognized
}

// Stats returns lookup counters accumulated so far.
func (r *RawProps) Stats() LookupStats {
	if r == nil {
		return LookupStats{}
	}
	return r.stats
}
