package levels

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/config"
	"github.com/milk9111/pathgrid/ecs"
	"github.com/milk9111/pathgrid/ecs/component"
	"github.com/milk9111/pathgrid/navgrid"
)

// Spawned maps level names to the entities created for them.
type Spawned struct {
	Obstacles map[string]ecs.Entity
	Agents    map[string]ecs.Entity
}

// Spawn creates one entity per obstacle and agent. Obstacles reach the
// physics world once the obstacle system runs.
func (l *Level) Spawn(w *ecs.World, names config.LayerNames) (*Spawned, error) {
	out := &Spawned{
		Obstacles: make(map[string]ecs.Entity, len(l.Obstacles)),
		Agents:    make(map[string]ecs.Entity, len(l.Agents)),
	}

	for _, spec := range l.Obstacles {
		e, err := spawnObstacle(w, names, spec)
		if err != nil {
			return nil, fmt.Errorf("levels: obstacle %q: %w", spec.Name, err)
		}
		if spec.Name != "" {
			out.Obstacles[spec.Name] = e
		}
	}

	for _, spec := range l.Agents {
		e := w.CreateEntity()
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: spec.X, Y: spec.Y}); err != nil {
			return nil, err
		}
		agent := &component.NavAgent{
			Target:       cp.Vector{X: spec.Target.X, Y: spec.Target.Y},
			RepathFrames: spec.RepathFrames,
			FollowPlayer: spec.FollowPlayer,
		}
		if err := ecs.Add(w, e, component.NavAgentComponent.Kind(), agent); err != nil {
			return nil, err
		}
		if spec.Name != "" {
			out.Agents[spec.Name] = e
		}
	}
	return out, nil
}

func spawnObstacle(w *ecs.World, names config.LayerNames, spec ObstacleSpec) (ecs.Entity, error) {
	kind, err := parseKind(spec.Kind)
	if err != nil {
		return 0, err
	}
	mask := navgrid.AllLayers
	if spec.Layer != "" {
		if mask, err = names.Mask([]string{spec.Layer}); err != nil {
			return 0, err
		}
	}

	o := &component.Obstacle{
		Width:     spec.Width,
		Height:    spec.Height,
		Kind:      kind,
		Layers:    mask,
		Blocking:  spec.IsBlocking(),
		Kinematic: spec.Kinematic,
	}
	if spec.Shape == "circle" {
		o.Shape = component.ObstacleCircle
		o.Width = spec.Radius * 2
		o.Height = o.Width
	}

	var growth *component.Growth
	if g := spec.Growth; g != nil {
		growth = &component.Growth{
			Stages:     g.Stages,
			MinSize:    g.MinSize,
			MaxSize:    g.MaxSize,
			StageTicks: g.StageTicks,
		}
		o.Width, o.Height = g.MinSize, g.MinSize
	}

	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: spec.X, Y: spec.Y}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.ObstacleComponent.Kind(), o); err != nil {
		return 0, err
	}
	if growth != nil {
		if err := ecs.Add(w, e, component.GrowthComponent.Kind(), growth); err != nil {
			return 0, err
		}
	}
	if kind == navgrid.KindPlayer {
		if err := ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
			return 0, err
		}
	}
	return e, nil
}
