package component

// Growth enlarges an obstacle from MinSize to MaxSize over Stages steps, one
// step every StageTicks frames.
type Growth struct {
	Stage      int
	Stages     int
	MinSize    float64
	MaxSize    float64
	StageTicks int
	Ticks      int
}

func (g Growth) Done() bool {
	return g.Stage >= g.Stages-1
}

var GrowthComponent = NewComponent[Growth]()
