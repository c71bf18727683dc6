package levels

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/config"
	"github.com/milk9111/pathgrid/ecs"
	"github.com/milk9111/pathgrid/ecs/component"
	"github.com/milk9111/pathgrid/navgrid"
	"github.com/milk9111/pathgrid/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findObstacle(t *testing.T, lvl *Level, name string) ObstacleSpec {
	t.Helper()
	for _, o := range lvl.Obstacles {
		if o.Name == name {
			return o
		}
	}
	t.Fatalf("obstacle %q not found", name)
	return ObstacleSpec{}
}

func TestLoadFromFSAppliesDefaults(t *testing.T) {
	lvl, err := LoadFromFS("courtyard")
	require.NoError(t, err)

	assert.Equal(t, "courtyard", lvl.Name)
	assert.Equal(t, 1.0, lvl.TileSize)
	assert.Equal(t, []string{"ground", "walls", "props", "actors"}, lvl.Layers)
	require.Len(t, lvl.TileLayers, 2)
	assert.Len(t, lvl.Obstacles, 6)
	assert.Len(t, lvl.Agents, 2)

	crate := findObstacle(t, lvl, "crate")
	assert.Equal(t, "static", crate.Kind)
	assert.Equal(t, "box", crate.Shape)
	assert.True(t, crate.IsBlocking())

	assert.False(t, findObstacle(t, lvl, "dust").IsBlocking())
	hedge := findObstacle(t, lvl, "hedge")
	require.NotNil(t, hedge.Growth)
	assert.Equal(t, 30, hedge.Growth.StageTicks)
	assert.Nil(t, crate.Growth)
}

func TestLoadFromFSNameForms(t *testing.T) {
	for _, name := range []string{"courtyard", "courtyard.yaml", "levels/courtyard"} {
		_, err := LoadFromFS(name)
		assert.NoError(t, err, name)
	}
	_, err := LoadFromFS("missing")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Contains(t, Names(), "courtyard")
}

func TestParseDefaultsOnMinimalLevel(t *testing.T) {
	lvl, err := Parse([]byte(`
name: tiny
obstacles:
  - {x: 1, y: 1, w: 1, h: 1}
  - x: 3
    y: 3
    w: 1
    h: 1
    growth: {stages: 3, min_size: 0.5, max_size: 1}
`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, lvl.TileSize)
	assert.Equal(t, "static", lvl.Obstacles[0].Kind)
	assert.Equal(t, "box", lvl.Obstacles[0].Shape)
	assert.True(t, lvl.Obstacles[0].IsBlocking())
	assert.Equal(t, 30, lvl.Obstacles[1].Growth.StageTicks)
}

func TestParseRejectsInvalidLevels(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown_kind", `obstacles: [{kind: boulder, w: 1, h: 1}]`},
		{"unknown_shape", `obstacles: [{shape: hexagon, w: 1, h: 1}]`},
		{"box_without_size", `obstacles: [{x: 1, y: 1}]`},
		{"circle_without_radius", `obstacles: [{shape: circle, x: 1, y: 1}]`},
		{"kinematic_circle", `obstacles: [{shape: circle, r: 1, kinematic: true}]`},
		{"negative_width", `obstacles: [{w: -1, h: 1}]`},
		{"growth_shrinks", `obstacles: [{w: 1, h: 1, growth: {stages: 3, min_size: 2, max_size: 1}}]`},
		{"growth_one_stage", `obstacles: [{w: 1, h: 1, growth: {stages: 1, min_size: 1, max_size: 2}}]`},
		{"negative_tile_size", `tile_size: -1`},
		{"tile_layer_without_layer", `tile_layers: [{rows: ["#"]}]`},
		{"tile_layer_without_rows", `tile_layers: [{layer: walls}]`},
		{"ragged_rows", `tile_layers: [{layer: walls, rows: ["##", "#"]}]`},
		{"empty_layer_name", `layers: [walls, ""]`},
		{"negative_repath", `agents: [{name: a, repath_frames: -1}]`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLevel), "got %v", err)
		})
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("obstacles: [{"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidLevel))
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: room\ntile_size: 2\n"), 0o644))

	lvl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "room", lvl.Name)
	assert.Equal(t, 2.0, lvl.TileSize)

	_, err = Load(filepath.Join(t.TempDir(), "gone.yaml"))
	assert.Error(t, err)
}

func TestPopulateTiles(t *testing.T) {
	lvl, err := Parse([]byte(`
layers: [walls, ground]
origin: {x: 10, y: 0}
tile_layers:
  - layer: walls
    rows: ["###", "#.#", "###"]
  - layer: ground
    decorative: true
    rows: ["...", ".#.", "..."]
`))
	require.NoError(t, err)
	names, err := lvl.LayerNames()
	require.NoError(t, err)

	pw := physics.NewWorld(nil)
	ids, err := lvl.PopulateTiles(pw, names)
	require.NoError(t, err)
	assert.Len(t, ids, 5)

	var walls, ground int
	pw.EachGeometry(func(g navgrid.Geometry) {
		assert.Equal(t, navgrid.KindTile, g.Kind)
		switch g.Layers {
		case names["walls"]:
			walls++
		case names["ground"]:
			ground++
		}
	})
	assert.Equal(t, 4, walls)
	assert.Equal(t, 1, ground)

	pw.Flush()
	assert.True(t, pw.Blocked(cp.Vector{X: 10.5, Y: 0.5}, 0.1))
	assert.False(t, pw.Blocked(cp.Vector{X: 11.5, Y: 1.5}, 0.1), "decorative tiles never block")
}

func TestPopulateTilesUnknownLayer(t *testing.T) {
	lvl, err := Parse([]byte(`tile_layers: [{layer: walls, rows: ["#"]}]`))
	require.NoError(t, err)

	_, err = lvl.PopulateTiles(physics.NewWorld(nil), config.LayerNames{})
	assert.ErrorIs(t, err, config.ErrUnknownLayer)
}

func TestSpawnCourtyard(t *testing.T) {
	lvl, err := LoadFromFS("courtyard")
	require.NoError(t, err)
	names, err := lvl.LayerNames()
	require.NoError(t, err)

	w := ecs.NewWorld()
	spawned, err := lvl.Spawn(w, names)
	require.NoError(t, err)
	assert.Len(t, spawned.Obstacles, 6)
	assert.Len(t, spawned.Agents, 2)

	obstacle := func(name string) *component.Obstacle {
		o, ok := ecs.Get(w, spawned.Obstacles[name], component.ObstacleComponent.Kind())
		require.True(t, ok, name)
		return o
	}

	crate := obstacle("crate")
	assert.Equal(t, names["props"], crate.Layers)
	assert.Equal(t, navgrid.KindStatic, crate.Kind)
	assert.True(t, crate.Blocking)

	well := obstacle("well")
	assert.Equal(t, component.ObstacleCircle, well.Shape)
	assert.InDelta(t, 1.6, well.Width, 1e-9)

	assert.True(t, obstacle("cart").Kinematic)
	assert.False(t, obstacle("dust").Blocking)
	assert.Equal(t, navgrid.KindTransient, obstacle("dust").Kind)

	hedge := obstacle("hedge")
	assert.Equal(t, 0.5, hedge.Width)
	assert.Equal(t, 0.5, hedge.Height)
	g, ok := ecs.Get(w, spawned.Obstacles["hedge"], component.GrowthComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, 4, g.Stages)
	assert.Equal(t, 2.0, g.MaxSize)

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, spawned.Obstacles["hero"], player)

	scout, ok := ecs.Get(w, spawned.Agents["scout"], component.NavAgentComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, cp.Vector{X: 17.5, Y: 10.5}, scout.Target)
	assert.Equal(t, 20, scout.RepathFrames)
	assert.False(t, scout.FollowPlayer)

	hound, ok := ecs.Get(w, spawned.Agents["hound"], component.NavAgentComponent.Kind())
	require.True(t, ok)
	assert.True(t, hound.FollowPlayer)

	tr, ok := ecs.Get(w, spawned.Agents["hound"], component.TransformComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, component.Transform{X: 17.5, Y: 1.5}, *tr)
}

func TestSpawnEmptyLayerMeansAll(t *testing.T) {
	lvl, err := Parse([]byte(`obstacles: [{name: rock, w: 1, h: 1}]`))
	require.NoError(t, err)

	w := ecs.NewWorld()
	spawned, err := lvl.Spawn(w, config.LayerNames{})
	require.NoError(t, err)
	o, ok := ecs.Get(w, spawned.Obstacles["rock"], component.ObstacleComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, navgrid.AllLayers, o.Layers)
}

func TestSpawnUnknownLayer(t *testing.T) {
	lvl, err := Parse([]byte(`obstacles: [{name: rock, layer: sky, w: 1, h: 1}]`))
	require.NoError(t, err)

	_, err = lvl.Spawn(ecs.NewWorld(), config.LayerNames{})
	assert.ErrorIs(t, err, config.ErrUnknownLayer)
}

func TestIsLevelFile(t *testing.T) {
	cases := map[string]bool{
		"courtyard.yaml":   true,
		"nav.YML":          true,
		"notes.txt":        false,
		"levels/courtyard": false,
	}
	for path, want := range cases {
		assert.Equal(t, want, IsLevelFile(path), path)
	}
}

func TestWatcherReportsLevelFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	level := filepath.Join(dir, "room.yaml")
	require.NoError(t, os.WriteFile(level, []byte("name: room\n"), 0o644))

	select {
	case name := <-w.Events:
		assert.Equal(t, level, name)
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for level file")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
