package config

import (
	"fmt"

	"github.com/milk9111/pathgrid/navgrid"
)

const maxLayers = 32

// LayerNames assigns one bit per world layer name.
type LayerNames map[string]navgrid.LayerMask

// NewLayerNames assigns bits in the order the names are given. Duplicates
// keep their first bit.
func NewLayerNames(names ...string) (LayerNames, error) {
	out := make(LayerNames, len(names))
	next := 0
	for _, name := range names {
		if _, ok := out[name]; ok {
			continue
		}
		if next >= maxLayers {
			return nil, fmt.Errorf("config: layer %q: %w", name, ErrTooManyLayers)
		}
		out[name] = navgrid.LayerMask(1) << next
		next++
	}
	return out, nil
}

// Mask returns the union of the named layers.
func (l LayerNames) Mask(names []string) (navgrid.LayerMask, error) {
	var mask navgrid.LayerMask
	for _, name := range names {
		bit, ok := l[name]
		if !ok {
			return 0, fmt.Errorf("config: layer %q: %w", name, ErrUnknownLayer)
		}
		mask |= bit
	}
	return mask, nil
}
