package system

import (
	"strings"
	"time"

	"github.com/milk9111/pathgrid/ecs"
	"github.com/milk9111/pathgrid/navgrid"
	"go.uber.org/zap"
)

// DefaultFrameTime is one tick at 60 updates per second.
const DefaultFrameTime = time.Second / 60

// NavigationSystem drives the navigator from the frame loop: it enables it on
// the first frame, turns the frame's geometry events into one refresh request
// and advances the startup timer.
type NavigationSystem struct {
	nav       *navgrid.Navigator
	bus       *navgrid.RefreshBus
	frameTime time.Duration
	logger    *zap.Logger
}

func NewNavigationSystem(nav *navgrid.Navigator, bus *navgrid.RefreshBus, frameTime time.Duration, logger *zap.Logger) *NavigationSystem {
	if frameTime <= 0 {
		frameTime = DefaultFrameTime
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NavigationSystem{nav: nav, bus: bus, frameTime: frameTime, logger: logger}
}

func (s *NavigationSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.nav == nil {
		return
	}

	events := w.Events().Drain()
	if !s.nav.Enabled() {
		// The first build already sees everything placed so far.
		s.nav.Enable(s.bus)
		s.nav.Update(s.frameTime)
		return
	}

	if reason := geometryReason(events); reason != "" {
		if s.bus != nil {
			s.bus.Raise(reason)
		} else {
			s.nav.MarkStale()
			s.nav.Rebuild()
		}
	}
	s.nav.Update(s.frameTime)
}

// geometryReason folds the frame's geometry events into one reason string,
// or "" when there were none.
func geometryReason(events []ecs.Event) string {
	var reasons []string
	seen := make(map[string]bool)
	for _, evt := range events {
		if evt.Type != ecs.EventGeometryChanged {
			continue
		}
		change, ok := evt.Data.(ecs.GeometryChange)
		if !ok || seen[change.Reason] {
			continue
		}
		seen[change.Reason] = true
		reasons = append(reasons, change.Reason)
	}
	return strings.Join(reasons, ",")
}
