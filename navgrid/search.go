package navgrid

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/common"
)

const (
	costOrthogonal = 10
	costDiagonal   = 14
)

// SnapOptions bounds how far blocked endpoints may be moved before a search.
type SnapOptions struct {
	StartRadius int
	GoalRadius  int
}

type step struct {
	dx, dy int
	cost   int32
}

// steps lists the orthogonal moves followed by the diagonals. The order is
// also the direction priority used to break ties in nearest-cell searches:
// down, right, up, left, then down-right, up-right, up-left, down-left.
// +Y points down, matching the physics world.
var steps = [8]step{
	{dx: 0, dy: 1, cost: costOrthogonal},
	{dx: 1, dy: 0, cost: costOrthogonal},
	{dx: 0, dy: -1, cost: costOrthogonal},
	{dx: -1, dy: 0, cost: costOrthogonal},
	{dx: 1, dy: 1, cost: costDiagonal},
	{dx: 1, dy: -1, cost: costDiagonal},
	{dx: -1, dy: -1, cost: costDiagonal},
	{dx: -1, dy: 1, cost: costDiagonal},
}

// FindPath returns the cell-center waypoints from start to end. Blocked
// endpoints are snapped to nearby walkable cells first. A false result means
// no path exists, which is a routine outcome.
func (g *Grid) FindPath(start, end cp.Vector, snap SnapOptions) ([]cp.Vector, bool) {
	if g == nil {
		return nil, false
	}
	cells, ok := g.FindCellPath(g.WorldToCell(start), g.WorldToCell(end), snap)
	if !ok {
		return nil, false
	}
	out := make([]cp.Vector, len(cells))
	for i, c := range cells {
		out[i] = g.CellToWorld(c)
	}
	return out, true
}

// FindCellPath is FindPath in cell coordinates.
func (g *Grid) FindCellPath(start, goal Cell, snap SnapOptions) ([]Cell, bool) {
	if g == nil || !g.InBounds(start) || !g.InBounds(goal) {
		return nil, false
	}

	if !g.Walkable(start) {
		snapped, ok := g.nearestTowardCell(start, goal, snap.StartRadius)
		if !ok {
			return nil, false
		}
		start = snapped
	}
	if !g.Walkable(goal) {
		snapped, ok := g.NearestWalkableCell(goal, snap.GoalRadius)
		if !ok {
			return nil, false
		}
		goal = snapped
	}

	if start == goal {
		return []Cell{start}, true
	}
	return g.astar(start, goal)
}

func (g *Grid) astar(start, goal Cell) ([]Cell, bool) {
	sc := acquireScratch(len(g.walkable))
	defer releaseScratch(sc)

	startIdx := g.index(start)
	goalIdx := g.index(goal)
	sc.record(startIdx, -1, 0)
	sc.enqueue(startIdx, 0, g.heuristic(start, goal))

	moves := steps[:4]
	if g.opts.Diagonal {
		moves = steps[:]
	}

	for sc.open.Len() > 0 {
		current := sc.open.pop()
		if sc.isClosed(current.idx) {
			continue
		}
		sc.close(current.idx)

		if current.idx == goalIdx {
			return g.reconstructPath(sc, startIdx, goalIdx), true
		}

		cur := g.cellAt(current.idx)
		for _, s := range moves {
			if !g.canStep(cur, s) {
				continue
			}
			next := cur.Add(s.dx, s.dy)
			idx := g.index(next)
			if sc.isClosed(idx) {
				continue
			}
			tentative := current.g + s.cost
			if sc.visited(idx) && tentative >= sc.g[idx] {
				continue
			}
			sc.record(idx, current.idx, tentative)
			sc.enqueue(idx, tentative, g.heuristic(next, goal))
		}
	}

	return nil, false
}

// canStep reports whether the move s from c is legal. A diagonal move needs
// the target and both shoulder cells walkable, and in strict mode a clear
// midpoint between the two cell centers.
func (g *Grid) canStep(c Cell, s step) bool {
	next := c.Add(s.dx, s.dy)
	if !g.Walkable(next) {
		return false
	}
	if s.dx == 0 || s.dy == 0 {
		return true
	}
	if !g.Walkable(c.Add(s.dx, 0)) || !g.Walkable(c.Add(0, s.dy)) {
		return false
	}
	if g.opts.Strict {
		// the shared vertex of c and next is the midpoint of their centers
		vx := c.X + (s.dx+1)/2
		vy := c.Y + (s.dy+1)/2
		if !g.vertexIsClear(vx, vy) {
			return false
		}
	}
	return true
}

func (g *Grid) heuristic(a, b Cell) int32 {
	dx := common.AbsInt(a.X - b.X)
	dy := common.AbsInt(a.Y - b.Y)
	if !g.opts.Diagonal {
		return int32(costOrthogonal * (dx + dy))
	}
	m := common.MinInt(dx, dy)
	return int32(costDiagonal*m + costOrthogonal*(dx+dy-2*m))
}

func (g *Grid) reconstructPath(sc *searchScratch, startIdx, goalIdx int32) []Cell {
	path := make([]Cell, 0, 32)
	for cur := goalIdx; ; cur = sc.parent[cur] {
		path = append(path, g.cellAt(cur))
		if cur == startIdx {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathCost returns the step cost of a cell path in search units: 10 per
// orthogonal step, 14 per diagonal step.
func PathCost(path []Cell) int {
	total := 0
	for i := 1; i < len(path); i++ {
		dx := common.AbsInt(path[i].X - path[i-1].X)
		dy := common.AbsInt(path[i].Y - path[i-1].Y)
		switch {
		case dx == 0 && dy == 0:
		case dx == 0 || dy == 0:
			total += costOrthogonal * (dx + dy)
		default:
			total += costDiagonal
		}
	}
	return total
}
