package navgrid

import (
	"sync/atomic"
	"time"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

// State is the rebuild lifecycle of a Navigator.
type State int32

const (
	StateUninitialized State = iota
	StateBuilt
	StateStale
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBuilt:
		return "built"
	case StateStale:
		return "stale"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// Options configures a Navigator.
type Options struct {
	Build  BuildOptions
	Bounds BoundsResolver
	Snap   SnapOptions
	// NearestRadius bounds FindNearestWalkable, in cells.
	NearestRadius int
	// StartupDelay is how long after Enable the second build runs, giving
	// late-spawning obstacles time to appear.
	StartupDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		Build: BuildOptions{
			CellSize:    0.5,
			ProbeRadius: 0.25,
			Diagonal:    true,
			Strict:      true,
		},
		Bounds: BoundsResolver{
			Auto:    true,
			Layers:  AllLayers,
			Padding: 2,
			Manual:  cp.BB{L: -50, B: -50, R: 50, T: 50},
		},
		Snap:          SnapOptions{StartRadius: 3, GoalRadius: 10},
		NearestRadius: 20,
		StartupDelay:  500 * time.Millisecond,
	}
}

// Stats describes the most recent build.
type Stats struct {
	Builds       int
	LastDuration time.Duration
	Cells        int
	Walkable     int
	Bounds       cp.BB
	Detected     bool
}

// Navigator owns the live grid and answers queries against it. The grid is
// replaced wholesale on every rebuild, so queries always see a complete grid.
type Navigator struct {
	opts   Options
	query  ObstacleQuery
	source GeometrySource
	logger *zap.Logger

	grid  atomic.Pointer[Grid]
	state atomic.Int32

	enabled    bool
	bus        *RefreshBus
	sub        Subscription
	delayLeft  time.Duration
	delayArmed bool
	stats      Stats
}

type NavigatorOption func(*Navigator)

func WithLogger(logger *zap.Logger) NavigatorOption {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func NewNavigator(opts Options, q ObstacleQuery, src GeometrySource, options ...NavigatorOption) *Navigator {
	n := &Navigator{
		query:  q,
		source: src,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(n)
	}

	n.opts = n.sanitize(opts)
	return n
}

func (n *Navigator) sanitize(opts Options) Options {
	build, notes := opts.Build.Clamp()
	for _, note := range notes {
		n.logger.Warn("navgrid: invalid build option", zap.String("adjustment", note))
	}
	opts.Build = build
	opts.Snap.StartRadius = max(opts.Snap.StartRadius, 0)
	opts.Snap.GoalRadius = max(opts.Snap.GoalRadius, 0)
	opts.NearestRadius = max(opts.NearestRadius, 0)
	opts.StartupDelay = max(opts.StartupDelay, 0)
	return opts
}

// Reconfigure swaps in new options. An enabled navigator rebuilds at once;
// otherwise the options apply from the next Enable.
func (n *Navigator) Reconfigure(opts Options) {
	n.opts = n.sanitize(opts)
	if n.enabled {
		n.Rebuild()
		return
	}
	n.MarkStale()
}

func (n *Navigator) Enabled() bool {
	return n.enabled
}

func (n *Navigator) State() State {
	return State(n.state.Load())
}

// Grid returns the current grid snapshot, or nil before the first build.
func (n *Navigator) Grid() *Grid {
	return n.grid.Load()
}

func (n *Navigator) Stats() Stats {
	return n.stats
}

func (n *Navigator) Options() Options {
	return n.opts
}

// Enable builds the grid, subscribes to bus for refresh requests and arms the
// delayed startup rebuild. bus may be nil.
func (n *Navigator) Enable(bus *RefreshBus) {
	if n.enabled {
		return
	}
	n.enabled = true
	n.Rebuild()
	if bus != nil {
		n.bus = bus
		n.sub = bus.Subscribe(n.handleRefresh)
	}
	n.delayLeft = n.opts.StartupDelay
	n.delayArmed = true
}

// Disable unsubscribes from the refresh bus and cancels a pending startup
// rebuild. The current grid stays queryable.
func (n *Navigator) Disable() {
	if n.bus != nil {
		n.bus.Unsubscribe(n.sub)
	}
	n.enabled = false
	n.bus = nil
	n.sub = Subscription{}
	n.delayArmed = false
}

// Update advances the startup timer. Call once per frame.
func (n *Navigator) Update(dt time.Duration) {
	if !n.delayArmed {
		return
	}
	n.delayLeft -= dt
	if n.delayLeft > 0 {
		return
	}
	n.delayArmed = false
	n.logger.Debug("navgrid: startup rebuild")
	n.Rebuild()
}

func (n *Navigator) handleRefresh(req RefreshRequest) {
	n.logger.Debug("navgrid: refresh requested",
		zap.Stringer("id", req.ID),
		zap.String("reason", req.Reason),
	)
	n.MarkStale()
	n.Rebuild()
}

// MarkStale flags the grid as out of date without rebuilding it.
func (n *Navigator) MarkStale() {
	n.state.CompareAndSwap(int32(StateBuilt), int32(StateStale))
}

// Rebuild synchronously builds a new grid from the current world and swaps it
// in once complete.
func (n *Navigator) Rebuild() {
	prev := n.State()
	n.state.Store(int32(StateRebuilding))
	started := time.Now()

	bounds, detected := n.opts.Bounds.Resolve(n.source)
	if n.opts.Bounds.Auto && !detected {
		n.logger.Warn("navgrid: no world geometry found, using manual bounds",
			zap.Float64("l", bounds.L),
			zap.Float64("b", bounds.B),
			zap.Float64("r", bounds.R),
			zap.Float64("t", bounds.T),
		)
	}

	g := Build(bounds, n.opts.Build, n.query)
	n.grid.Store(g)
	n.state.Store(int32(StateBuilt))

	n.stats = Stats{
		Builds:       n.stats.Builds + 1,
		LastDuration: time.Since(started),
		Cells:        g.Width() * g.Height(),
		Walkable:     g.WalkableCount(),
		Bounds:       g.Bounds(),
		Detected:     detected,
	}
	n.logger.Debug("navgrid: grid rebuilt",
		zap.Stringer("previous", prev),
		zap.Int("width", g.Width()),
		zap.Int("height", g.Height()),
		zap.Int("walkable", n.stats.Walkable),
		zap.Duration("took", n.stats.LastDuration),
	)
}

// SetAgentRadius changes the probe radius. With rebuild false the grid is
// only marked stale and keeps answering with the old radius.
func (n *Navigator) SetAgentRadius(radius float64, rebuild bool) {
	build := n.opts.Build
	build.ProbeRadius = radius
	build, notes := build.Clamp()
	for _, note := range notes {
		n.logger.Warn("navgrid: invalid agent radius", zap.String("adjustment", note))
	}
	n.opts.Build = build

	if rebuild {
		n.Rebuild()
		return
	}
	n.MarkStale()
}

func (n *Navigator) AgentRadius() float64 {
	return n.opts.Build.ProbeRadius
}

// IsWalkable reports whether the cell containing p is walkable.
func (n *Navigator) IsWalkable(p cp.Vector) bool {
	g := n.grid.Load()
	if g == nil {
		return false
	}
	return g.Walkable(g.WorldToCell(p))
}

// FindPath returns cell-center waypoints from start to end, or false when
// either endpoint cannot be snapped or the regions are disconnected.
func (n *Navigator) FindPath(start, end cp.Vector) ([]cp.Vector, bool) {
	g := n.grid.Load()
	if g == nil {
		return nil, false
	}
	return g.FindPath(start, end, n.opts.Snap)
}

// FindNearestWalkable snaps p to the closest walkable cell center.
func (n *Navigator) FindNearestWalkable(p cp.Vector) (cp.Vector, bool) {
	g := n.grid.Load()
	if g == nil {
		return cp.Vector{}, false
	}
	return g.NearestWalkable(p, n.opts.NearestRadius)
}
