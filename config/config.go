package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/navgrid"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownLayer  = errors.New("config: unknown layer")
	ErrTooManyLayers = errors.New("config: too many layers")
)

// Config is the navigation settings file.
type Config struct {
	CellSize     float64       `yaml:"cell_size"`
	AgentRadius  float64       `yaml:"agent_radius"`
	Diagonal     bool          `yaml:"diagonal"`
	Strict       bool          `yaml:"strict"`
	StartupDelay time.Duration `yaml:"startup_delay"`
	Bounds       BoundsConfig  `yaml:"bounds"`
	Snap         SnapConfig    `yaml:"snap"`
}

type BoundsConfig struct {
	Auto    bool    `yaml:"auto"`
	Padding float64 `yaml:"padding"`
	// WorldLayers names the layers scanned for bounds detection. Empty means
	// every layer.
	WorldLayers []string   `yaml:"world_layers"`
	Manual      RectConfig `yaml:"manual"`
}

type RectConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

func (r RectConfig) BB() cp.BB {
	return cp.BB{L: r.MinX, B: r.MinY, R: r.MaxX, T: r.MaxY}
}

type SnapConfig struct {
	StartRadius   int `yaml:"start_radius"`
	GoalRadius    int `yaml:"goal_radius"`
	NearestRadius int `yaml:"nearest_radius"`
}

func Default() Config {
	d := navgrid.DefaultOptions()
	return Config{
		CellSize:     d.Build.CellSize,
		AgentRadius:  d.Build.ProbeRadius,
		Diagonal:     d.Build.Diagonal,
		Strict:       d.Build.Strict,
		StartupDelay: d.StartupDelay,
		Bounds: BoundsConfig{
			Auto:    d.Bounds.Auto,
			Padding: d.Bounds.Padding,
			Manual: RectConfig{
				MinX: d.Bounds.Manual.L,
				MinY: d.Bounds.Manual.B,
				MaxX: d.Bounds.Manual.R,
				MaxY: d.Bounds.Manual.T,
			},
		},
		Snap: SnapConfig{
			StartRadius:   d.Snap.StartRadius,
			GoalRadius:    d.Snap.GoalRadius,
			NearestRadius: d.NearestRadius,
		},
	}
}

// Load reads a YAML settings file. Fields missing from the file keep their
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Options converts the settings into navigator options, resolving world layer
// names through layers. Out-of-range numbers are left for the navigator to
// clamp and report.
func (c Config) Options(layers LayerNames) (navgrid.Options, error) {
	mask := navgrid.AllLayers
	if len(c.Bounds.WorldLayers) > 0 {
		m, err := layers.Mask(c.Bounds.WorldLayers)
		if err != nil {
			return navgrid.Options{}, err
		}
		mask = m
	}
	return navgrid.Options{
		Build: navgrid.BuildOptions{
			CellSize:    c.CellSize,
			ProbeRadius: c.AgentRadius,
			Diagonal:    c.Diagonal,
			Strict:      c.Strict,
		},
		Bounds: navgrid.BoundsResolver{
			Auto:    c.Bounds.Auto,
			Layers:  mask,
			Padding: c.Bounds.Padding,
			Manual:  c.Bounds.Manual.BB(),
		},
		Snap: navgrid.SnapOptions{
			StartRadius: c.Snap.StartRadius,
			GoalRadius:  c.Snap.GoalRadius,
		},
		NearestRadius: c.Snap.NearestRadius,
		StartupDelay:  c.StartupDelay,
	}, nil
}
