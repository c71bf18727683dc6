package navgrid

import (
	"sync"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Build.CellSize = 1
	opts.Build.Strict = false
	opts.Bounds.Padding = 0
	opts.StartupDelay = 100 * time.Millisecond
	return opts
}

// wallWorld is a 10x4 room with a pillar at x=5, y in [0,3).
func wallWorld() (*boxQuery, geometryList) {
	floor := cp.BB{L: 0, B: 0, R: 10, T: 4}
	pillar := cp.BB{L: 5, B: 0, R: 6, T: 3}
	return &boxQuery{boxes: []cp.BB{pillar}}, geometryList{
		{Bounds: floor, Layers: AllLayers, Kind: KindTile},
		{Bounds: pillar, Layers: AllLayers, Kind: KindStatic},
	}
}

func TestNavigatorLifecycle(t *testing.T) {
	q, src := wallWorld()
	nav := NewNavigator(testOptions(), q, src, WithLogger(zaptest.NewLogger(t)))
	bus := NewRefreshBus()

	require.Equal(t, StateUninitialized, nav.State())
	require.Nil(t, nav.Grid())
	assert.False(t, nav.IsWalkable(cp.Vector{X: 1, Y: 1}))
	_, ok := nav.FindPath(cp.Vector{X: 1, Y: 1}, cp.Vector{X: 8, Y: 1})
	assert.False(t, ok)

	nav.Enable(bus)
	require.Equal(t, StateBuilt, nav.State())
	require.Equal(t, 1, nav.Stats().Builds)
	assert.True(t, nav.Stats().Detected)
	assert.Equal(t, 1, bus.Len())

	nav.Enable(bus)
	assert.Equal(t, 1, nav.Stats().Builds, "second Enable is a no-op")

	nav.Update(50 * time.Millisecond)
	assert.Equal(t, 1, nav.Stats().Builds)
	nav.Update(50 * time.Millisecond)
	assert.Equal(t, 2, nav.Stats().Builds, "startup rebuild fires once the delay elapses")
	nav.Update(time.Second)
	assert.Equal(t, 2, nav.Stats().Builds, "startup rebuild fires only once")

	before := nav.Grid()
	bus.Raise("placed")
	assert.Equal(t, 3, nav.Stats().Builds)
	assert.Equal(t, StateBuilt, nav.State())
	assert.NotSame(t, before, nav.Grid(), "rebuild swaps in a new grid")

	nav.Disable()
	assert.False(t, nav.Enabled())
	assert.Equal(t, 0, bus.Len())
	bus.Raise("ignored")
	assert.Equal(t, 3, nav.Stats().Builds)
	assert.NotNil(t, nav.Grid(), "grid stays queryable after Disable")
}

func TestNavigatorRebuildSeesNewGeometry(t *testing.T) {
	q, src := wallWorld()
	nav := NewNavigator(testOptions(), q, src)
	bus := NewRefreshBus()
	nav.Enable(bus)

	p := cp.Vector{X: 2.5, Y: 1.5}
	require.True(t, nav.IsWalkable(p))

	q.pending = append(q.pending, cp.BB{L: 2, B: 1, R: 3, T: 2})
	assert.True(t, nav.IsWalkable(p), "queries use the old grid until a rebuild")

	bus.Raise("placed")
	assert.False(t, nav.IsWalkable(p))
}

func TestNavigatorFindPathAroundPillar(t *testing.T) {
	q, src := wallWorld()
	nav := NewNavigator(testOptions(), q, src)
	nav.Enable(nil)

	path, ok := nav.FindPath(cp.Vector{X: 1.5, Y: 0.5}, cp.Vector{X: 8.5, Y: 0.5})
	require.True(t, ok)
	g := nav.Grid()
	for _, p := range path {
		assert.True(t, g.Walkable(g.WorldToCell(p)), "waypoint %v is blocked", p)
	}
	last := path[len(path)-1]
	assert.Equal(t, cp.Vector{X: 8.5, Y: 0.5}, last)
}

func TestNavigatorSnapsBlockedEndpoints(t *testing.T) {
	q, src := wallWorld()
	nav := NewNavigator(testOptions(), q, src)
	nav.Enable(nil)

	// end sits inside the pillar
	path, ok := nav.FindPath(cp.Vector{X: 1.5, Y: 1.5}, cp.Vector{X: 5.5, Y: 1.5})
	require.True(t, ok)
	end := nav.Grid().WorldToCell(path[len(path)-1])
	assert.True(t, nav.Grid().Walkable(end))

	got, ok := nav.FindNearestWalkable(cp.Vector{X: 5.5, Y: 1.5})
	require.True(t, ok)
	// the left and right neighbours tie; right has priority over left
	assert.Equal(t, cp.Vector{X: 6.5, Y: 1.5}, got)
}

func TestNavigatorClampsInvalidOptions(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	opts := testOptions()
	opts.Build.CellSize = 0
	opts.Build.ProbeRadius = -1
	opts.Snap.StartRadius = -4
	opts.NearestRadius = -1

	nav := NewNavigator(opts, nil, nil, WithLogger(zap.New(core)))
	got := nav.Options()
	assert.Equal(t, MinCellSize, got.Build.CellSize)
	assert.Equal(t, MinProbeRadius, got.Build.ProbeRadius)
	assert.Equal(t, 0, got.Snap.StartRadius)
	assert.Equal(t, 0, got.NearestRadius)
	assert.Equal(t, 2, logs.FilterMessage("navgrid: invalid build option").Len())
}

func TestNavigatorManualBoundsFallback(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	opts := testOptions()
	opts.Bounds.Manual = cp.BB{L: 0, B: 0, R: 3, T: 2}

	nav := NewNavigator(opts, &boxQuery{}, geometryList{}, WithLogger(zap.New(core)))
	nav.Rebuild()

	st := nav.Stats()
	assert.False(t, st.Detected)
	assert.Equal(t, opts.Bounds.Manual, st.Bounds)
	assert.Equal(t, 6, st.Cells)
	assert.Equal(t, 1, logs.FilterMessage("navgrid: no world geometry found, using manual bounds").Len())
}

func TestNavigatorAgentRadius(t *testing.T) {
	q, src := wallWorld()
	nav := NewNavigator(testOptions(), q, src)
	nav.Enable(nil)
	narrow := nav.Stats().Walkable

	nav.SetAgentRadius(0.8, false)
	assert.Equal(t, 0.8, nav.AgentRadius())
	assert.Equal(t, StateStale, nav.State())
	assert.Equal(t, narrow, nav.Stats().Walkable, "old grid answers until rebuilt")

	nav.SetAgentRadius(0.8, true)
	assert.Equal(t, StateBuilt, nav.State())
	assert.Less(t, nav.Stats().Walkable, narrow)

	nav.SetAgentRadius(-2, true)
	assert.Equal(t, MinProbeRadius, nav.AgentRadius())
}

func TestNavigatorReconfigure(t *testing.T) {
	q, src := wallWorld()
	nav := NewNavigator(testOptions(), q, src)

	opts := testOptions()
	opts.Build.CellSize = 0.5
	nav.Reconfigure(opts)
	assert.Nil(t, nav.Grid(), "a disabled navigator does not build")

	nav.Enable(nil)
	assert.Equal(t, 0.5, nav.Grid().CellSize())

	opts.Build.CellSize = 2
	nav.Reconfigure(opts)
	assert.Equal(t, 2.0, nav.Grid().CellSize())
	assert.Equal(t, 2, nav.Stats().Builds)
}

func TestNavigatorConcurrentQueriesDuringRebuild(t *testing.T) {
	_, src := wallWorld()
	nav := NewNavigator(testOptions(), nil, src)
	nav.Enable(nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				path, ok := nav.FindPath(cp.Vector{X: 0.5, Y: 0.5}, cp.Vector{X: 9.5, Y: 3.5})
				if !ok || len(path) == 0 {
					t.Error("query saw an incomplete grid")
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		nav.Rebuild()
	}
	close(stop)
	wg.Wait()
}
