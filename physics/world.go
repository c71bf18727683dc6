package physics

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/navgrid"
	"go.uber.org/zap"
)

// Category is the collision classification stored in every shape's filter.
type Category uint

const (
	CategoryObstacle Category = 1 << iota
	CategoryTile
	CategoryPlayer
	CategoryTransient
)

var ErrUnknownObstacle = errors.New("physics: unknown obstacle")

// ObstacleID is the handle returned when geometry is registered.
type ObstacleID uint32

// Class is assigned once at registration and never string-matched again.
type Class struct {
	Kind   navgrid.Kind
	Layers navgrid.LayerMask
	// Blocking marks the volume as an obstacle for walkability queries.
	Blocking bool
}

func (c Class) categories() Category {
	var cat Category
	if c.Blocking {
		cat |= CategoryObstacle
	}
	switch c.Kind {
	case navgrid.KindTile:
		cat |= CategoryTile
	case navgrid.KindPlayer:
		cat |= CategoryPlayer
	case navgrid.KindTransient:
		cat |= CategoryTransient
	}
	return cat
}

type shapeKind uint8

const (
	shapeBox shapeKind = iota
	shapeCircle
)

type entry struct {
	id        ObstacleID
	class     Class
	kind      shapeKind
	center    cp.Vector
	width     float64
	height    float64
	radius    float64
	kinematic bool
	body      *cp.Body
	shape     *cp.Shape
	// indexed is the body position the shape geometry was last cached at.
	indexed cp.Vector
}

// hitBufferSize caps how many overlaps a single query collects.
const hitBufferSize = 16

// World owns the Chipmunk space holding every obstacle volume and answers
// obstacle queries against it. Blocked may run from several goroutines while
// nothing mutates the world; every other method needs exclusive access.
type World struct {
	space  *cp.Space
	logger *zap.Logger

	nextID  ObstacleID
	entries map[ObstacleID]*entry
	order   []ObstacleID

	queryFilter cp.ShapeFilter
}

func NewWorld(logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{
		space:       cp.NewSpace(),
		logger:      logger,
		entries:     make(map[ObstacleID]*entry),
		queryFilter: cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: uint(CategoryObstacle)},
	}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

func (w *World) Len() int {
	return len(w.order)
}

// AddBox registers a static axis-aligned box.
func (w *World) AddBox(bb cp.BB, class Class) ObstacleID {
	e := &entry{
		class:  class,
		kind:   shapeBox,
		center: cp.Vector{X: (bb.L + bb.R) / 2, Y: (bb.B + bb.T) / 2},
		width:  bb.R - bb.L,
		height: bb.T - bb.B,
	}
	return w.register(e)
}

// AddCircle registers a static circle.
func (w *World) AddCircle(center cp.Vector, radius float64, class Class) ObstacleID {
	e := &entry{
		class:  class,
		kind:   shapeCircle,
		center: center,
		radius: radius,
	}
	return w.register(e)
}

// AddKinematicBox registers a box on its own kinematic body. Moving it
// updates the body only; the spatial index catches up on Flush.
func (w *World) AddKinematicBox(center cp.Vector, width, height float64, class Class) ObstacleID {
	e := &entry{
		class:     class,
		kind:      shapeBox,
		center:    center,
		width:     width,
		height:    height,
		kinematic: true,
	}
	return w.register(e)
}

// AddTileLayer merges the non-zero tiles of a row-major layer into as few
// boxes as possible and registers each one.
func (w *World) AddTileLayer(tiles []int, cols, rows int, tileSize float64, origin cp.Vector, class Class) []ObstacleID {
	if len(tiles) != cols*rows || cols <= 0 || rows <= 0 || tileSize <= 0 {
		return nil
	}
	var ids []ObstacleID
	for _, r := range mergeTiles(tiles, cols, rows) {
		bb := cp.BB{
			L: origin.X + float64(r.x)*tileSize,
			B: origin.Y + float64(r.y)*tileSize,
			R: origin.X + float64(r.x+r.w)*tileSize,
			T: origin.Y + float64(r.y+r.h)*tileSize,
		}
		ids = append(ids, w.AddBox(bb, class))
	}
	return ids
}

func (w *World) register(e *entry) ObstacleID {
	w.nextID++
	e.id = w.nextID
	w.attach(e)
	w.entries[e.id] = e
	w.order = append(w.order, e.id)
	w.logger.Debug("physics: obstacle added",
		zap.Uint32("id", uint32(e.id)),
		zap.Stringer("kind", e.class.Kind),
		zap.Bool("blocking", e.class.Blocking),
	)
	return e.id
}

// attach creates the body and shape for e and adds them to the space.
func (w *World) attach(e *entry) {
	body := w.space.StaticBody
	offset := e.center
	if e.kinematic {
		if e.body == nil {
			e.body = cp.NewKinematicBody()
			e.body.SetPosition(e.center)
			w.space.AddBody(e.body)
		}
		body = e.body
		offset = cp.Vector{}
	}

	var shape *cp.Shape
	switch e.kind {
	case shapeCircle:
		shape = cp.NewCircle(body, e.radius, offset)
	default:
		hw, hh := e.width/2, e.height/2
		shape = cp.NewBox2(body, cp.BB{L: offset.X - hw, B: offset.Y - hh, R: offset.X + hw, T: offset.Y + hh}, 0)
	}
	shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: uint(e.class.categories()), Mask: cp.ALL_CATEGORIES})
	shape.UserData = e.id
	w.space.AddShape(shape)
	e.shape = shape
	e.indexed = body.Position()
}

func (w *World) detachShape(e *entry) {
	if e.shape != nil {
		w.space.RemoveShape(e.shape)
		e.shape = nil
	}
}

// Remove unregisters an obstacle.
func (w *World) Remove(id ObstacleID) error {
	e, ok := w.entries[id]
	if !ok {
		return fmt.Errorf("physics: remove %d: %w", id, ErrUnknownObstacle)
	}
	w.detachShape(e)
	if e.body != nil {
		w.space.RemoveBody(e.body)
		e.body = nil
	}
	delete(w.entries, id)
	for i, other := range w.order {
		if other == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.logger.Debug("physics: obstacle removed", zap.Uint32("id", uint32(id)))
	return nil
}

// Move places an obstacle's center at p. Static shapes are rebuilt in place;
// a kinematic body is only repositioned, and queries keep seeing its old
// shape until the next Flush.
func (w *World) Move(id ObstacleID, p cp.Vector) error {
	e, ok := w.entries[id]
	if !ok {
		return fmt.Errorf("physics: move %d: %w", id, ErrUnknownObstacle)
	}
	e.center = p
	if e.kinematic {
		e.body.SetPosition(p)
		return nil
	}
	w.detachShape(e)
	w.attach(e)
	return nil
}

// Resize changes an obstacle's extent around its current center. For circles
// only width is used, as the diameter.
func (w *World) Resize(id ObstacleID, width, height float64) error {
	e, ok := w.entries[id]
	if !ok {
		return fmt.Errorf("physics: resize %d: %w", id, ErrUnknownObstacle)
	}
	if e.kinematic {
		e.center = e.body.Position()
	}
	e.width, e.height = width, height
	if e.kind == shapeCircle {
		e.radius = width / 2
	}
	w.detachShape(e)
	w.attach(e)
	return nil
}

// Center returns an obstacle's current center.
func (w *World) Center(id ObstacleID) (cp.Vector, bool) {
	e, ok := w.entries[id]
	if !ok {
		return cp.Vector{}, false
	}
	if e.kinematic {
		return e.body.Position(), true
	}
	return e.center, true
}

// Flush re-adds the shape of every kinematic body moved since it was last
// indexed. AddShape recaches the shape geometry and its spatial index entry,
// so queries afterwards see the new position.
func (w *World) Flush() {
	var flushed int
	for _, id := range w.order {
		e := w.entries[id]
		if !e.kinematic || e.body == nil || e.shape == nil {
			continue
		}
		if pos := e.body.Position(); pos == e.indexed {
			continue
		}
		w.space.RemoveShape(e.shape)
		w.space.AddShape(e.shape)
		e.indexed = e.body.Position()
		flushed++
	}
	if flushed > 0 {
		w.logger.Debug("physics: flushed kinematic obstacles", zap.Int("count", flushed))
	}
}

// Blocked reports whether any blocking obstacle lies within radius of p.
func (w *World) Blocked(p cp.Vector, radius float64) bool {
	info := w.space.PointQueryNearest(p, radius, w.queryFilter)
	return info.Shape != nil
}

// Overlaps appends the blocking obstacles within radius of p to dst. At most
// a fixed number of hits is collected per call.
func (w *World) Overlaps(p cp.Vector, radius float64, dst []ObstacleID) []ObstacleID {
	var n int
	w.space.BBQuery(cp.NewBBForCircle(p, radius), w.queryFilter, func(shape *cp.Shape, _ interface{}) {
		if n >= hitBufferSize || shape.PointQuery(p).Distance >= radius {
			return
		}
		if id, ok := shape.UserData.(ObstacleID); ok {
			dst = append(dst, id)
			n++
		}
	}, nil)
	return dst
}

// EachGeometry visits every registered volume in registration order.
func (w *World) EachGeometry(fn func(navgrid.Geometry)) {
	for _, id := range w.order {
		e := w.entries[id]
		center := e.center
		if e.kinematic {
			center = e.body.Position()
		}
		hw, hh := e.width/2, e.height/2
		if e.kind == shapeCircle {
			hw, hh = e.radius, e.radius
		}
		fn(navgrid.Geometry{
			Bounds: cp.BB{L: center.X - hw, B: center.Y - hh, R: center.X + hw, T: center.Y + hh},
			Layers: e.class.Layers,
			Kind:   e.class.Kind,
		})
	}
}

var (
	_ navgrid.ObstacleQuery  = (*World)(nil)
	_ navgrid.GeometrySource = (*World)(nil)
)
