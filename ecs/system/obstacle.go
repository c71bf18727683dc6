package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/ecs"
	"github.com/milk9111/pathgrid/ecs/component"
	"github.com/milk9111/pathgrid/navgrid"
	"github.com/milk9111/pathgrid/physics"
	"go.uber.org/zap"
)

// ObstacleSystem mirrors Obstacle components into the physics world and
// pushes a geometry event for every change the grid has to see.
type ObstacleSystem struct {
	world   *physics.World
	logger  *zap.Logger
	tracked map[ecs.Entity]physics.ObstacleID
}

func NewObstacleSystem(pw *physics.World, logger *zap.Logger) *ObstacleSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObstacleSystem{
		world:   pw,
		logger:  logger,
		tracked: make(map[ecs.Entity]physics.ObstacleID),
	}
}

func (s *ObstacleSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.world == nil {
		return
	}

	ecs.ForEach2(w, component.ObstacleComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, o *component.Obstacle, t *component.Transform) {
		if !o.Registered {
			s.register(w, e, o, t)
			return
		}

		center := cp.Vector{X: t.X, Y: t.Y}
		if t.X != o.LastX || t.Y != o.LastY {
			if err := s.world.Move(o.ID, center); err != nil {
				s.logger.Warn("obstacle: move failed", zap.Stringer("entity", e), zap.Error(err))
				return
			}
			o.LastX, o.LastY = t.X, t.Y
			s.changed(w, e, o, "moved")
		}
		if o.Dirty {
			o.Dirty = false
			if err := s.world.Resize(o.ID, o.Width, o.Height); err != nil {
				s.logger.Warn("obstacle: resize failed", zap.Stringer("entity", e), zap.Error(err))
				return
			}
			s.changed(w, e, o, "resized")
		}
	})

	for e, id := range s.tracked {
		if ecs.Has(w, e, component.ObstacleComponent.Kind()) {
			continue
		}
		if err := s.world.Remove(id); err != nil {
			s.logger.Warn("obstacle: remove failed", zap.Stringer("entity", e), zap.Error(err))
		}
		delete(s.tracked, e)
		w.Events().Push(ecs.Event{
			Type: ecs.EventGeometryChanged,
			Data: ecs.GeometryChange{Entity: e, Reason: "removed"},
		})
	}
}

func (s *ObstacleSystem) register(w *ecs.World, e ecs.Entity, o *component.Obstacle, t *component.Transform) {
	if old, ok := s.tracked[e]; ok {
		_ = s.world.Remove(old)
	}

	class := physics.Class{Kind: o.Kind, Layers: o.Layers, Blocking: o.Blocking}
	center := cp.Vector{X: t.X, Y: t.Y}
	var id physics.ObstacleID
	switch {
	case o.Shape == component.ObstacleCircle:
		id = s.world.AddCircle(center, o.Width/2, class)
	case o.Kinematic:
		id = s.world.AddKinematicBox(center, o.Width, o.Height, class)
	default:
		hw, hh := o.Width/2, o.Height/2
		id = s.world.AddBox(cp.BB{L: t.X - hw, B: t.Y - hh, R: t.X + hw, T: t.Y + hh}, class)
	}

	o.ID = id
	o.Registered = true
	o.Dirty = false
	o.LastX, o.LastY = t.X, t.Y
	s.tracked[e] = id
	s.changed(w, e, o, "placed")
}

// changed skips volumes that neither block nor count toward bounds, so a
// moving player never forces a rebuild.
func (s *ObstacleSystem) changed(w *ecs.World, e ecs.Entity, o *component.Obstacle, reason string) {
	if !o.Blocking && (o.Kind == navgrid.KindPlayer || o.Kind == navgrid.KindTransient) {
		return
	}
	w.Events().Push(ecs.Event{
		Type: ecs.EventGeometryChanged,
		Data: ecs.GeometryChange{Entity: e, Reason: reason},
	})
}
