package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/navgrid"
)

// NavAgent stores the current route of an entity toward its target.
type NavAgent struct {
	Target cp.Vector
	// FollowPlayer replaces Target with the player's position each frame.
	FollowPlayer bool
	RepathFrames int
	FrameCounter int
	LastStart    navgrid.Cell
	LastTarget   navgrid.Cell
	// LastBuild is the grid build count the path was computed against.
	LastBuild int
	Path      []cp.Vector
	HasPath   bool
}

var NavAgentComponent = NewComponent[NavAgent]()
