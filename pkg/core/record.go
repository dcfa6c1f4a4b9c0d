package core

// Column describes one result column. Name is taken verbatim from the
// header row and Index is its position in that row. Names are not
// guaranteed to be unique.
type Column struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Record is one data row in two shapes: Values keeps the raw ordered
// cells (truncated to the header length), Fields is the name-keyed view.
//
// When header names repeat, Fields holds the last value under that name;
// Values still exposes every position.
type Record struct {
	Position int            `json:"position"`
	Values   []any          `json:"values"`
	Fields   map[string]any `json:"fields"`
}

// Get returns the named field and whether it is present.
// A field is absent when its row was shorter than the header.
func (r Record) Get(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// At returns the value at column index i and whether the row had it.
func (r Record) At(i int) (any, bool) {
	if i < 0 || i >= len(r.Values) {
		return nil, false
	}
	return r.Values[i], true
}

// Len returns the number of distinct named fields.
func (r Record) Len() int {
	return len(r.Fields)
}
