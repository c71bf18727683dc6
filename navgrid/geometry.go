package navgrid

import "github.com/jakecoffman/cp"

// LayerMask is a set of world layers. Layer names are resolved to bits once,
// when configuration is loaded.
type LayerMask uint32

const AllLayers LayerMask = ^LayerMask(0)

func (m LayerMask) Has(other LayerMask) bool {
	return m&other != 0
}

// Kind classifies a piece of world geometry for bounds detection.
type Kind uint8

const (
	KindStatic Kind = iota
	KindTile
	// KindTransient covers spawned, short-lived objects (pickups, projectiles).
	KindTransient
	KindPlayer
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindTile:
		return "tile"
	case KindTransient:
		return "transient"
	case KindPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// Geometry is one enumerated world volume.
type Geometry struct {
	Bounds cp.BB
	Layers LayerMask
	Kind   Kind
}

// GeometrySource enumerates world geometry for bounds auto-detection.
type GeometrySource interface {
	EachGeometry(fn func(Geometry))
}

// ObstacleQuery answers whether a world point is obstructed.
type ObstacleQuery interface {
	// Blocked reports whether any obstacle volume lies within radius of p.
	Blocked(p cp.Vector, radius float64) bool
	// Flush synchronizes pending transform changes so that the next Blocked
	// call sees geometry moved since the last physics step.
	Flush()
}
