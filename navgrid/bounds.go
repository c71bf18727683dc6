package navgrid

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/common"
)

// BoundsResolver decides which world rectangle the grid covers.
type BoundsResolver struct {
	// Auto enables detection from world geometry. When false, Manual is used.
	Auto bool
	// Layers restricts detection to geometry on these world layers.
	Layers  LayerMask
	Padding float64
	Manual  cp.BB
}

// Resolve returns the grid rectangle and whether it was detected from
// geometry. With Auto set and nothing found, it returns Manual and false.
func (r BoundsResolver) Resolve(src GeometrySource) (cp.BB, bool) {
	if !r.Auto || src == nil {
		return r.Manual, false
	}

	var union cp.BB
	found := false
	src.EachGeometry(func(geo Geometry) {
		if geo.Kind == KindTransient || geo.Kind == KindPlayer {
			return
		}
		if !geo.Layers.Has(r.Layers) {
			return
		}
		if !found {
			union = geo.Bounds
			found = true
			return
		}
		union = union.Merge(geo.Bounds)
	})
	if !found {
		return r.Manual, false
	}

	pad := common.ClampMin(r.Padding, 0)
	return cp.BB{
		L: union.L - pad,
		B: union.B - pad,
		R: union.R + pad,
		T: union.T + pad,
	}, true
}
