package navgrid

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	biasDirectionWeight = 0.7
	biasDistanceWeight  = 0.3
)

// NearestWalkable snaps p to the center of the nearest walkable cell within
// maxRadius rings of p's cell.
func (g *Grid) NearestWalkable(p cp.Vector, maxRadius int) (cp.Vector, bool) {
	if g == nil {
		return cp.Vector{}, false
	}
	c, ok := g.NearestWalkableCell(g.WorldToCell(p), maxRadius)
	if !ok {
		return cp.Vector{}, false
	}
	return g.CellToWorld(c), true
}

// NearestWalkableCell returns the walkable cell closest to origin by
// Euclidean distance, searching Chebyshev rings up to maxRadius. Equal
// distances resolve by direction priority (down, right, up, left, then the
// diagonal quadrants), so the answer is stable for symmetric geometry.
func (g *Grid) NearestWalkableCell(origin Cell, maxRadius int) (Cell, bool) {
	if g == nil || maxRadius < 0 {
		return Cell{}, false
	}
	if g.Walkable(origin) {
		return origin, true
	}

	var best Cell
	var bestRank offsetRank
	bestDist := -1
	for r := 1; r <= maxRadius; r++ {
		// nothing on ring r is closer than r
		if bestDist >= 0 && r*r > bestDist {
			break
		}
		if !g.ringTouchesGrid(origin, r) {
			if g.ringBeyondGrid(origin, r) {
				break
			}
			continue
		}
		eachRingOffset(r, func(dx, dy int) {
			c := origin.Add(dx, dy)
			if !g.Walkable(c) {
				return
			}
			d := dx*dx + dy*dy
			rank := rankOffset(dx, dy)
			if bestDist < 0 || d < bestDist || (d == bestDist && rank.less(bestRank)) {
				best, bestDist, bestRank = c, d, rank
			}
		})
	}
	return best, bestDist >= 0
}

// nearestTowardCell un-sticks a blocked start cell. On the first ring that
// holds any walkable cell, it picks the one that best combines heading toward
// goal with closeness to origin, and does not look further out.
func (g *Grid) nearestTowardCell(origin, goal Cell, maxRadius int) (Cell, bool) {
	if g == nil || maxRadius < 0 {
		return Cell{}, false
	}
	if g.Walkable(origin) {
		return origin, true
	}

	gx := float64(goal.X - origin.X)
	gy := float64(goal.Y - origin.Y)
	goalLen := math.Hypot(gx, gy)

	for r := 1; r <= maxRadius; r++ {
		if !g.ringTouchesGrid(origin, r) {
			if g.ringBeyondGrid(origin, r) {
				break
			}
			continue
		}
		var best Cell
		bestScore := math.Inf(-1)
		found := false
		eachRingOffset(r, func(dx, dy int) {
			c := origin.Add(dx, dy)
			if !g.Walkable(c) {
				return
			}
			dist := math.Hypot(float64(dx), float64(dy))
			cos := 0.0
			if goalLen > 0 {
				cos = (float64(dx)*gx + float64(dy)*gy) / (dist * goalLen)
			}
			score := biasDirectionWeight*cos + biasDistanceWeight/dist
			if !found || score > bestScore {
				best, bestScore, found = c, score, true
			}
		})
		if found {
			return best, true
		}
	}
	return Cell{}, false
}

// eachRingOffset visits every offset at Chebyshev distance r, in a fixed order.
func eachRingOffset(r int, fn func(dx, dy int)) {
	for dx := -r; dx <= r; dx++ {
		fn(dx, -r)
		fn(dx, r)
	}
	for dy := -r + 1; dy <= r-1; dy++ {
		fn(-r, dy)
		fn(r, dy)
	}
}

// ringTouchesGrid reports whether any cell of ring r around c is in bounds.
func (g *Grid) ringTouchesGrid(c Cell, r int) bool {
	minX, maxX := c.X-r, c.X+r
	minY, maxY := c.Y-r, c.Y+r
	if maxX < 0 || maxY < 0 || minX >= g.width || minY >= g.height {
		return false
	}
	// the ring is hollow: it misses the grid when the grid fits inside it
	inside := minX < 0 && maxX >= g.width && minY < 0 && maxY >= g.height
	return !inside
}

// ringBeyondGrid reports whether ring r and every larger ring lie entirely
// outside the grid.
func (g *Grid) ringBeyondGrid(c Cell, r int) bool {
	return c.X-r < 0 && c.X+r >= g.width && c.Y-r < 0 && c.Y+r >= g.height
}

type offsetRank struct {
	dir int
	dy  int
	dx  int
}

func rankOffset(dx, dy int) offsetRank {
	return offsetRank{dir: directionPriority(dx, dy), dy: dy, dx: dx}
}

func (a offsetRank) less(b offsetRank) bool {
	if a.dir != b.dir {
		return a.dir < b.dir
	}
	if a.dy != b.dy {
		return a.dy < b.dy
	}
	return a.dx < b.dx
}

// directionPriority maps an offset to its index in steps by sign.
func directionPriority(dx, dy int) int {
	sx, sy := sign(dx), sign(dy)
	for i, s := range steps {
		if s.dx == sx && s.dy == sy {
			return i
		}
	}
	return len(steps)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
