package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/ecs"
	"github.com/milk9111/pathgrid/ecs/component"
	"github.com/milk9111/pathgrid/navgrid"
)

const defaultPathRepathFrames = 15

// PathfindingSystem keeps every NavAgent's path current. A path is
// recomputed every RepathFrames frames, or sooner when the agent or its
// target change cell or the grid is rebuilt.
type PathfindingSystem struct {
	nav *navgrid.Navigator
}

func NewPathfindingSystem(nav *navgrid.Navigator) *PathfindingSystem {
	return &PathfindingSystem{nav: nav}
}

func (ps *PathfindingSystem) Update(w *ecs.World) {
	if ps == nil || w == nil || ps.nav == nil {
		return
	}
	g := ps.nav.Grid()
	if g == nil {
		return
	}
	build := ps.nav.Stats().Builds
	player, hasPlayer := playerPosition(w)

	ecs.ForEach2(w, component.NavAgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, agent *component.NavAgent, t *component.Transform) {
		if agent.RepathFrames <= 0 {
			agent.RepathFrames = defaultPathRepathFrames
		}

		if agent.FollowPlayer && hasPlayer {
			agent.Target = player
		}

		pos := cp.Vector{X: t.X, Y: t.Y}
		start := g.WorldToCell(pos)
		goal := g.WorldToCell(agent.Target)

		agent.FrameCounter++
		if agent.LastBuild != 0 &&
			agent.FrameCounter%agent.RepathFrames != 0 &&
			agent.LastStart == start && agent.LastTarget == goal &&
			agent.LastBuild == build {
			return
		}

		agent.Path, agent.HasPath = ps.nav.FindPath(pos, agent.Target)
		agent.LastStart = start
		agent.LastTarget = goal
		agent.LastBuild = build
	})
}

func playerPosition(w *ecs.World) (cp.Vector, bool) {
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	return cp.Vector{X: t.X, Y: t.Y}, true
}
