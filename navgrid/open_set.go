package navgrid

import (
	"container/heap"
	"sync"
)

type openItem struct {
	idx int32
	g   int32
	h   int32
	seq uint32
}

// openSet is a min-heap on f, then h, then insertion order.
type openSet []openItem

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	fi := o[i].g + o[i].h
	fj := o[j].g + o[j].h
	if fi != fj {
		return fi < fj
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x any)   { *o = append(*o, x.(openItem)) }
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	*o = old[:n-1]
	return item
}

// push and pop go through heap.Fix so items are never boxed into interfaces.
func (o *openSet) push(item openItem) {
	*o = append(*o, item)
	heap.Fix(o, len(*o)-1)
}

func (o *openSet) pop() openItem {
	old := *o
	top := old[0]
	last := len(old) - 1
	old[0] = old[last]
	*o = old[:last]
	if last > 0 {
		heap.Fix(o, 0)
	}
	return top
}

// searchScratch holds per-search state sized to a grid. Entries are valid only
// when their stamp equals the current generation, so reuse needs no clearing.
type searchScratch struct {
	g      []int32
	parent []int32
	seen   []uint32
	closed []uint32
	gen    uint32
	seq    uint32
	open   openSet
}

var scratchPool = sync.Pool{
	New: func() any { return &searchScratch{} },
}

func acquireScratch(cells int) *searchScratch {
	sc := scratchPool.Get().(*searchScratch)
	if len(sc.g) < cells {
		sc.g = make([]int32, cells)
		sc.parent = make([]int32, cells)
		sc.seen = make([]uint32, cells)
		sc.closed = make([]uint32, cells)
		sc.gen = 0
	}
	sc.gen++
	if sc.gen == 0 {
		clear(sc.seen)
		clear(sc.closed)
		sc.gen = 1
	}
	sc.seq = 0
	sc.open = sc.open[:0]
	return sc
}

func releaseScratch(sc *searchScratch) {
	scratchPool.Put(sc)
}

func (sc *searchScratch) visited(idx int32) bool  { return sc.seen[idx] == sc.gen }
func (sc *searchScratch) isClosed(idx int32) bool { return sc.closed[idx] == sc.gen }
func (sc *searchScratch) close(idx int32)         { sc.closed[idx] = sc.gen }

func (sc *searchScratch) record(idx, parent, g int32) {
	sc.seen[idx] = sc.gen
	sc.parent[idx] = parent
	sc.g[idx] = g
}

func (sc *searchScratch) enqueue(idx, g, h int32) {
	sc.seq++
	sc.open.push(openItem{idx: idx, g: g, h: h, seq: sc.seq})
}
