package navgrid

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/common"
)

const (
	MinCellSize    = 0.05
	MinProbeRadius = 0.05
	MaxProbeRadius = 100.0

	cornerOffsetFactor   = 0.35
	cornerRadiusFactor   = 0.7
	midpointRadiusFactor = 0.5
)

// Cell addresses one grid cell.
type Cell struct {
	X int
	Y int
}

func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// BuildOptions controls grid construction and the moves the search allows.
type BuildOptions struct {
	CellSize    float64
	ProbeRadius float64
	// Diagonal enables 8-connected search.
	Diagonal bool
	// Strict enables corner sampling during the build and the diagonal
	// midpoint check during the search.
	Strict bool
}

// Clamp returns o with cell size and probe radius forced into their valid
// ranges, along with a description of every adjustment made.
func (o BuildOptions) Clamp() (BuildOptions, []string) {
	var notes []string
	if o.CellSize < MinCellSize || math.IsNaN(o.CellSize) {
		notes = append(notes, fmt.Sprintf("cell size %g clamped to %g", o.CellSize, MinCellSize))
		o.CellSize = MinCellSize
	}
	if r := common.Clamp(o.ProbeRadius, MinProbeRadius, MaxProbeRadius); r != o.ProbeRadius || math.IsNaN(o.ProbeRadius) {
		if math.IsNaN(r) {
			r = MinProbeRadius
		}
		notes = append(notes, fmt.Sprintf("probe radius %g clamped to %g", o.ProbeRadius, r))
		o.ProbeRadius = r
	}
	return o, notes
}

// Grid is a walkability snapshot of the world. It is never modified after
// construction; a rebuild produces a new Grid.
type Grid struct {
	origin   cp.Vector
	cellSize float64
	width    int
	height   int
	walkable []bool
	// vertexClear holds the diagonal midpoint samples, one per grid vertex,
	// (width+1)*(height+1) entries. Nil when the strict diagonal check is off.
	vertexClear []bool
	opts        BuildOptions
}

// Build samples q over bounds and returns the resulting grid. A nil query
// yields a fully walkable grid.
func Build(bounds cp.BB, opts BuildOptions, q ObstacleQuery) *Grid {
	opts, _ = opts.Clamp()
	g := &Grid{
		origin:   cp.Vector{X: bounds.L, Y: bounds.B},
		cellSize: opts.CellSize,
		width:    cellsAcross(bounds.R-bounds.L, opts.CellSize),
		height:   cellsAcross(bounds.T-bounds.B, opts.CellSize),
		opts:     opts,
	}
	g.walkable = make([]bool, g.width*g.height)

	if q == nil {
		for i := range g.walkable {
			g.walkable[i] = true
		}
		return g
	}

	q.Flush()

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			g.walkable[y*g.width+x] = g.sampleCell(q, Cell{X: x, Y: y})
		}
	}

	if opts.Diagonal && opts.Strict {
		radius := opts.ProbeRadius * midpointRadiusFactor
		stride := g.width + 1
		g.vertexClear = make([]bool, stride*(g.height+1))
		for vy := 0; vy <= g.height; vy++ {
			for vx := 0; vx <= g.width; vx++ {
				p := cp.Vector{
					X: g.origin.X + float64(vx)*g.cellSize,
					Y: g.origin.Y + float64(vy)*g.cellSize,
				}
				g.vertexClear[vy*stride+vx] = !q.Blocked(p, radius)
			}
		}
	}

	return g
}

// NewGrid builds a grid from a walkability predicate instead of obstacle
// sampling, for hosts that already know their blocked cells.
func NewGrid(origin cp.Vector, width, height int, opts BuildOptions, walkable func(c Cell) bool) *Grid {
	opts, _ = opts.Clamp()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &Grid{
		origin:   origin,
		cellSize: opts.CellSize,
		width:    width,
		height:   height,
		walkable: make([]bool, width*height),
		opts:     opts,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.walkable[y*width+x] = walkable == nil || walkable(Cell{X: x, Y: y})
		}
	}
	return g
}

func cellsAcross(extent, cellSize float64) int {
	if extent <= 0 || math.IsNaN(extent) {
		return 1
	}
	n := int(math.Ceil(extent / cellSize))
	if n < 1 {
		return 1
	}
	return n
}

func (g *Grid) sampleCell(q ObstacleQuery, c Cell) bool {
	center := g.CellToWorld(c)
	if q.Blocked(center, g.opts.ProbeRadius) {
		return false
	}
	if !g.opts.Strict {
		return true
	}

	off := g.cellSize * cornerOffsetFactor
	radius := g.opts.ProbeRadius * cornerRadiusFactor
	corners := [4]cp.Vector{
		{X: center.X - off, Y: center.Y - off},
		{X: center.X + off, Y: center.Y - off},
		{X: center.X + off, Y: center.Y + off},
		{X: center.X - off, Y: center.Y + off},
	}
	for _, p := range corners {
		if q.Blocked(p, radius) {
			return false
		}
	}
	return true
}

func (g *Grid) Origin() cp.Vector     { return g.origin }
func (g *Grid) CellSize() float64     { return g.cellSize }
func (g *Grid) Width() int            { return g.width }
func (g *Grid) Height() int           { return g.height }
func (g *Grid) Options() BuildOptions { return g.opts }

// Bounds returns the world rectangle covered by the grid.
func (g *Grid) Bounds() cp.BB {
	return cp.BB{
		L: g.origin.X,
		B: g.origin.Y,
		R: g.origin.X + float64(g.width)*g.cellSize,
		T: g.origin.Y + float64(g.height)*g.cellSize,
	}
}

// WorldToCell returns the cell containing p. The result may be out of bounds.
func (g *Grid) WorldToCell(p cp.Vector) Cell {
	return Cell{
		X: int(math.Floor((p.X - g.origin.X) / g.cellSize)),
		Y: int(math.Floor((p.Y - g.origin.Y) / g.cellSize)),
	}
}

// CellToWorld returns the world position of the center of c.
func (g *Grid) CellToWorld(c Cell) cp.Vector {
	return cp.Vector{
		X: g.origin.X + (float64(c.X)+0.5)*g.cellSize,
		Y: g.origin.Y + (float64(c.Y)+0.5)*g.cellSize,
	}
}

func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.width && c.Y < g.height
}

// Walkable reports whether c is inside the grid and was clear at build time.
func (g *Grid) Walkable(c Cell) bool {
	if g == nil || !g.InBounds(c) {
		return false
	}
	return g.walkable[c.Y*g.width+c.X]
}

func (g *Grid) WalkableCount() int {
	n := 0
	for _, ok := range g.walkable {
		if ok {
			n++
		}
	}
	return n
}

func (g *Grid) index(c Cell) int32 {
	return int32(c.Y*g.width + c.X)
}

func (g *Grid) cellAt(idx int32) Cell {
	i := int(idx)
	return Cell{X: i % g.width, Y: i / g.width}
}

// vertexIsClear reports the strict midpoint sample at grid vertex (vx, vy).
func (g *Grid) vertexIsClear(vx, vy int) bool {
	if g.vertexClear == nil {
		return true
	}
	return g.vertexClear[vy*(g.width+1)+vx]
}
