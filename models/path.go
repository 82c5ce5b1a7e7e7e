package models

// Path is an ordered route of 4-adjacent cells from a query's start to its
// goal. An empty path means no route was found.
type Path []Cell

// Trace is the order in which a search expanded cells. It is diagnostic only
// and never feeds back into a decision.
type Trace []Cell

func (p Path) Len() int {
	return len(p)
}

// Next returns the first step along the path, i.e. the cell after the start.
// ok is false for empty and single-cell paths.
func (p Path) Next() (next Cell, ok bool) {
	if len(p) < 2 {
		return Cell{}, false
	}
	return p[1], true
}

// IsContiguous reports whether every consecutive pair of cells is 4-adjacent.
func (p Path) IsContiguous() bool {
	for i := 1; i < len(p); i++ {
		if !Adjacent(p[i-1], p[i]) {
			return false
		}
	}
	return true
}

// HasRepeats reports whether any cell appears more than once.
func (p Path) HasRepeats() bool {
	seen := make(CellSet, len(p))
	for _, c := range p {
		if seen.Has(c) {
			return true
		}
		seen.Add(c)
	}
	return false
}
