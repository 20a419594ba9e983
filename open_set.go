package fieldnav

import (
	"container/heap"
	"fmt"
)

// OpenSetKind selects the frontier structure used by FindPath.
type OpenSetKind string

const (
	// OpenSetScan keeps an unsorted slice and scans for the minimum f on every pop.
	OpenSetScan OpenSetKind = "scan"
	// OpenSetHeap keeps a binary heap ordered by f.
	OpenSetHeap OpenSetKind = "heap"
)

// ParseOpenSetKind validates a configured open set name. Empty means scan.
func ParseOpenSetKind(s string) (OpenSetKind, error) {
	switch OpenSetKind(s) {
	case "", OpenSetScan:
		return OpenSetScan, nil
	case OpenSetHeap:
		return OpenSetHeap, nil
	}
	return "", fmt.Errorf("unknown open set %q", s)
}

// pathNode is one grid search node. parent indexes the arena that owns it; -1 marks the start.
type pathNode struct {
	x, y   int
	parent int
	g      float64
	h      float64
	f      float64
}

// openSet holds arena indices of frontier nodes.
type openSet interface {
	push(idx int)
	pop() int
	Len() int
}

func newOpenSet(kind OpenSetKind, arena *[]pathNode) openSet {
	if kind == OpenSetHeap {
		pq := &nodeQueue{arena: arena}
		heap.Init(pq)
		return pq
	}
	return &scanSet{arena: arena}
}

// scanSet is an O(n) frontier. The first node with strictly minimal f wins ties.
type scanSet struct {
	arena *[]pathNode
	items []int
}

func (s *scanSet) Len() int { return len(s.items) }

func (s *scanSet) push(idx int) {
	s.items = append(s.items, idx)
}

func (s *scanSet) pop() int {
	nodes := *s.arena
	best := 0
	for i := 1; i < len(s.items); i++ {
		if nodes[s.items[i]].f < nodes[s.items[best]].f {
			best = i
		}
	}
	idx := s.items[best]
	s.items = append(s.items[:best], s.items[best+1:]...)
	return idx
}

// nodeQueue implements heap.Interface over arena indices.
// Equal f values are ordered by arena index so results stay deterministic.
type nodeQueue struct {
	arena *[]pathNode
	items []int
}

func (pq *nodeQueue) Len() int { return len(pq.items) }

func (pq *nodeQueue) Less(i, j int) bool {
	nodes := *pq.arena
	a, b := nodes[pq.items[i]], nodes[pq.items[j]]
	if a.f != b.f {
		return a.f < b.f
	}
	return pq.items[i] < pq.items[j]
}

func (pq *nodeQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *nodeQueue) Push(x any) {
	pq.items = append(pq.items, x.(int))
}

func (pq *nodeQueue) Pop() any {
	old := pq.items
	n := len(old)
	idx := old[n-1]
	pq.items = old[:n-1]
	return idx
}

func (pq *nodeQueue) push(idx int) { heap.Push(pq, idx) }

func (pq *nodeQueue) pop() int { return heap.Pop(pq).(int) }
