package navgrid

import (
	"math"
	"strings"

	"github.com/jakecoffman/cp"
)

// boxQuery blocks points within radius of any of its boxes. Boxes added to
// pending only become visible after Flush.
type boxQuery struct {
	boxes   []cp.BB
	pending []cp.BB
	flushes int
	queries int
}

func (q *boxQuery) Blocked(p cp.Vector, radius float64) bool {
	q.queries++
	for _, bb := range q.boxes {
		if distToBox(p, bb) <= radius {
			return true
		}
	}
	return false
}

func (q *boxQuery) Flush() {
	q.flushes++
	q.boxes = append(q.boxes, q.pending...)
	q.pending = nil
}

func distToBox(p cp.Vector, bb cp.BB) float64 {
	dx := math.Max(math.Max(bb.L-p.X, 0), p.X-bb.R)
	dy := math.Max(math.Max(bb.B-p.Y, 0), p.Y-bb.T)
	return math.Hypot(dx, dy)
}

type geometryList []Geometry

func (l geometryList) EachGeometry(fn func(Geometry)) {
	for _, g := range l {
		fn(g)
	}
}

// gridFromRows builds a unit-cell grid from text rows: '#' is blocked.
func gridFromRows(diagonal bool, rows ...string) *Grid {
	opts := BuildOptions{CellSize: 1, ProbeRadius: 0.25, Diagonal: diagonal}
	return NewGrid(cp.Vector{}, len(rows[0]), len(rows), opts, func(c Cell) bool {
		return rows[c.Y][c.X] != '#'
	})
}

func openGrid(w, h int, diagonal bool) *Grid {
	row := strings.Repeat(".", w)
	rows := make([]string, h)
	for i := range rows {
		rows[i] = row
	}
	return gridFromRows(diagonal, rows...)
}

// oracleCost is a plain Dijkstra over the same move rules as the search:
// orthogonal steps cost 10, diagonals 14 and need both shoulders walkable.
func oracleCost(g *Grid, start, goal Cell) (int, bool) {
	n := g.Width() * g.Height()
	dist := make([]int, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.MaxInt
	}
	dist[g.index(start)] = 0

	for {
		cur := -1
		for i := 0; i < n; i++ {
			if !done[i] && dist[i] != math.MaxInt && (cur < 0 || dist[i] < dist[cur]) {
				cur = i
			}
		}
		if cur < 0 {
			return 0, false
		}
		if int32(cur) == g.index(goal) {
			return dist[cur], true
		}
		done[cur] = true
		c := g.cellAt(int32(cur))
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				diag := dx != 0 && dy != 0
				if diag && !g.opts.Diagonal {
					continue
				}
				next := c.Add(dx, dy)
				if !g.Walkable(next) {
					continue
				}
				cost := 10
				if diag {
					if !g.Walkable(c.Add(dx, 0)) || !g.Walkable(c.Add(0, dy)) {
						continue
					}
					cost = 14
				}
				ni := g.index(next)
				if d := dist[cur] + cost; d < dist[ni] {
					dist[ni] = d
				}
			}
		}
	}
}
