package component

import (
	"github.com/milk9111/pathgrid/navgrid"
	"github.com/milk9111/pathgrid/physics"
)

type ObstacleShape uint8

const (
	ObstacleBox ObstacleShape = iota
	ObstacleCircle
)

// Obstacle is a volume the obstacle system mirrors into the physics world.
// Width doubles as the diameter for circles.
type Obstacle struct {
	Shape     ObstacleShape
	Width     float64
	Height    float64
	Kind      navgrid.Kind
	Layers    navgrid.LayerMask
	Blocking  bool
	Kinematic bool

	// Dirty asks the obstacle system to push a size change.
	Dirty bool

	ID         physics.ObstacleID
	Registered bool
	LastX      float64
	LastY      float64
}

var ObstacleComponent = NewComponent[Obstacle]()
