package system

import (
	"github.com/milk9111/pathgrid/common"
	"github.com/milk9111/pathgrid/ecs"
	"github.com/milk9111/pathgrid/ecs/component"
	"go.uber.org/zap"
)

type GrowthSystem struct {
	logger *zap.Logger
}

func NewGrowthSystem(logger *zap.Logger) *GrowthSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrowthSystem{logger: logger}
}

// Update advances every growing obstacle by one frame and marks it dirty when
// it reaches a new stage.
func (s *GrowthSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach2(w, component.GrowthComponent.Kind(), component.ObstacleComponent.Kind(), func(e ecs.Entity, g *component.Growth, o *component.Obstacle) {
		if g.Stages < 2 || g.Done() {
			return
		}
		g.Ticks++
		if g.Ticks < max(g.StageTicks, 1) {
			return
		}
		g.Ticks = 0
		g.Stage++

		size := StageSize(*g)
		o.Width = size
		if o.Shape == component.ObstacleBox {
			o.Height = size
		}
		o.Dirty = true
		s.logger.Debug("growth: stage advanced",
			zap.Stringer("entity", e),
			zap.Int("stage", g.Stage),
			zap.Float64("size", size),
		)
	})
}

// StageSize interpolates the obstacle size for the current stage.
func StageSize(g component.Growth) float64 {
	if g.Stages < 2 {
		return g.MaxSize
	}
	t := common.Clamp(float64(g.Stage)/float64(g.Stages-1), 0, 1)
	return common.Lerp(g.MinSize, g.MaxSize, t)
}
