package levels

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/config"
	"github.com/milk9111/pathgrid/navgrid"
	"github.com/milk9111/pathgrid/physics"
)

// LayerNames resolves the level's layer list to layer bits.
func (l *Level) LayerNames() (config.LayerNames, error) {
	return config.NewLayerNames(l.Layers...)
}

// PopulateTiles registers every tile layer with the physics world as merged
// static boxes.
func (l *Level) PopulateTiles(w *physics.World, names config.LayerNames) ([]physics.ObstacleID, error) {
	var ids []physics.ObstacleID
	origin := cp.Vector{X: l.Origin.X, Y: l.Origin.Y}
	for i, tl := range l.TileLayers {
		mask, err := names.Mask([]string{tl.Layer})
		if err != nil {
			return nil, fmt.Errorf("levels: tile layer %d: %w", i, err)
		}
		cols := len(tl.Rows[0])
		rows := len(tl.Rows)
		tiles := make([]int, 0, cols*rows)
		for _, row := range tl.Rows {
			for _, ch := range []byte(row) {
				if ch == '#' {
					tiles = append(tiles, 1)
				} else {
					tiles = append(tiles, 0)
				}
			}
		}
		class := physics.Class{
			Kind:     navgrid.KindTile,
			Layers:   mask,
			Blocking: !tl.Decorative,
		}
		ids = append(ids, w.AddTileLayer(tiles, cols, rows, l.TileSize, origin, class)...)
	}
	return ids, nil
}

func parseKind(s string) (navgrid.Kind, error) {
	switch s {
	case "", "static":
		return navgrid.KindStatic, nil
	case "tile":
		return navgrid.KindTile, nil
	case "transient":
		return navgrid.KindTransient, nil
	case "player":
		return navgrid.KindPlayer, nil
	default:
		return 0, fmt.Errorf("unknown kind %q: %w", s, ErrInvalidLevel)
	}
}
