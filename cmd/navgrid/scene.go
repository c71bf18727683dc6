package main

import (
	"fmt"

	"github.com/milk9111/pathgrid/config"
	"github.com/milk9111/pathgrid/ecs"
	"github.com/milk9111/pathgrid/ecs/system"
	"github.com/milk9111/pathgrid/levels"
	"github.com/milk9111/pathgrid/navgrid"
	"github.com/milk9111/pathgrid/physics"
	"go.uber.org/zap"
)

// scene is one loaded level with its physics, navigator and frame loop.
type scene struct {
	level     *levels.Level
	physics   *physics.World
	world     *ecs.World
	nav       *navgrid.Navigator
	bus       *navgrid.RefreshBus
	scheduler *ecs.Scheduler
	spawned   *levels.Spawned
}

func newScene(lvl *levels.Level, cfg config.Config, logger *zap.Logger) (*scene, error) {
	names, err := lvl.LayerNames()
	if err != nil {
		return nil, fmt.Errorf("scene: layers: %w", err)
	}
	opts, err := cfg.Options(names)
	if err != nil {
		return nil, fmt.Errorf("scene: options: %w", err)
	}

	pw := physics.NewWorld(logger.Named("physics"))
	if _, err := lvl.PopulateTiles(pw, names); err != nil {
		return nil, fmt.Errorf("scene: tiles: %w", err)
	}

	w := ecs.NewWorld()
	spawned, err := lvl.Spawn(w, names)
	if err != nil {
		return nil, fmt.Errorf("scene: spawn: %w", err)
	}

	bus := navgrid.NewRefreshBus()
	nav := navgrid.NewNavigator(opts, pw, pw, navgrid.WithLogger(logger.Named("navgrid")))

	s := &scene{
		level:   lvl,
		physics: pw,
		world:   w,
		nav:     nav,
		bus:     bus,
		spawned: spawned,
		scheduler: ecs.NewScheduler(
			system.NewGrowthSystem(logger.Named("growth")),
			system.NewObstacleSystem(pw, logger.Named("obstacle")),
			system.NewNavigationSystem(nav, bus, system.DefaultFrameTime, logger.Named("navigation")),
			system.NewPathfindingSystem(nav),
		),
	}
	return s, nil
}

func (s *scene) run(frames int) {
	s.scheduler.Run(s.world, frames)
}

func (s *scene) close() {
	s.nav.Disable()
}
