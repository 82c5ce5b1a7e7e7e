package pathfinding

import (
	"container/heap"

	"autosnake/models"
)

// entry is one frontier item. Entries are never updated in place: a cheaper
// route to a cell pushes a new entry and the stale one is skipped when popped.
type entry struct {
	cell     models.Cell
	priority int // g for Dijkstra, g+h for A*
	h        int // heuristic estimate; always 0 for Dijkstra
	seq      int // insertion order, the final tie-break
}

// frontier is a binary min-heap over entries, ordered by less.
type frontier struct {
	items []entry
	less  func(a, b entry) bool
	seq   int
}

func newFrontier(less func(a, b entry) bool) *frontier {
	return &frontier{less: less}
}

func (f *frontier) Len() int           { return len(f.items) }
func (f *frontier) Less(i, j int) bool { return f.less(f.items[i], f.items[j]) }
func (f *frontier) Swap(i, j int)      { f.items[i], f.items[j] = f.items[j], f.items[i] }

func (f *frontier) Push(x any) {
	f.items = append(f.items, x.(entry))
}

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	e := old[n-1]
	f.items = old[:n-1]
	return e
}

// add stamps the entry with the next insertion sequence and pushes it.
func (f *frontier) add(e entry) {
	e.seq = f.seq
	f.seq++
	heap.Push(f, e)
}

func (f *frontier) next() entry {
	return heap.Pop(f).(entry)
}

// byDistance orders by distance, then earliest-inserted first.
func byDistance(a, b entry) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

// byEstimate orders by f = g+h, then lower h (deeper toward the goal), then
// row-major cell position, then earliest-inserted first.
func byEstimate(a, b entry) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.h != b.h {
		return a.h < b.h
	}
	if a.cell.Row != b.cell.Row {
		return a.cell.Row < b.cell.Row
	}
	if a.cell.Col != b.cell.Col {
		return a.cell.Col < b.cell.Col
	}
	return a.seq < b.seq
}
