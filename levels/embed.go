package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

var ErrInvalidLevel = errors.New("levels: invalid level")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Level describes the world geometry of one scene.
type Level struct {
	Name     string  `yaml:"name"`
	TileSize float64 `yaml:"tile_size" default:"1" validate:"gt=0"`
	Origin   Point   `yaml:"origin"`
	// Layers lists the world layer names. Their order fixes the layer bits.
	Layers     []string       `yaml:"layers" validate:"max=32,dive,required"`
	TileLayers []TileLayer    `yaml:"tile_layers" validate:"dive"`
	Obstacles  []ObstacleSpec `yaml:"obstacles" validate:"dive"`
	Agents     []AgentSpec    `yaml:"agents" validate:"dive"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// TileLayer is a block of tiles drawn as text rows: '#' is solid, anything
// else is empty.
type TileLayer struct {
	Layer string   `yaml:"layer" validate:"required"`
	Rows  []string `yaml:"rows" validate:"min=1,dive,required"`
	// Decorative layers count toward bounds but never block.
	Decorative bool `yaml:"decorative"`
}

type ObstacleSpec struct {
	Name      string  `yaml:"name"`
	Layer     string  `yaml:"layer"`
	Kind      string  `yaml:"kind" default:"static" validate:"oneof=static tile transient player"`
	Shape     string  `yaml:"shape" default:"box" validate:"oneof=box circle"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Width     float64 `yaml:"w" validate:"gte=0"`
	Height    float64 `yaml:"h" validate:"gte=0"`
	Radius    float64 `yaml:"r" validate:"gte=0"`
	Blocking  *bool   `yaml:"blocking" default:"true"`
	Kinematic bool    `yaml:"kinematic"`
	Growth    *Growth `yaml:"growth" validate:"omitempty"`
}

// Growth describes an obstacle that gets bigger in stages.
type Growth struct {
	Stages     int     `yaml:"stages" validate:"gte=2"`
	MinSize    float64 `yaml:"min_size" validate:"gt=0"`
	MaxSize    float64 `yaml:"max_size" validate:"gtefield=MinSize"`
	StageTicks int     `yaml:"stage_ticks" default:"30" validate:"gt=0"`
}

type AgentSpec struct {
	Name         string  `yaml:"name"`
	X            float64 `yaml:"x"`
	Y            float64 `yaml:"y"`
	Target       Point   `yaml:"target"`
	RepathFrames int     `yaml:"repath_frames" validate:"gte=0"`
	// FollowPlayer retargets the agent at the player every frame.
	FollowPlayer bool `yaml:"follow_player"`
}

// IsBlocking reports whether the obstacle blocks movement; the default is true.
func (o ObstacleSpec) IsBlocking() bool {
	return o.Blocking == nil || *o.Blocking
}

// LoadFromFS loads an embedded level by name. The .yaml extension is optional.
func LoadFromFS(name string) (*Level, error) {
	clean := cleanLevelName(name)
	data, err := fs.ReadFile(LevelsFS, clean)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", clean, err)
	}
	return Parse(data)
}

// Load reads a level from disk.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", path, err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("levels: %s: %w", path, err)
	}
	return lvl, nil
}

func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal: %w", err)
	}
	if err := lvl.setDefaults(); err != nil {
		return nil, err
	}
	if err := lvl.validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// setDefaults fills the tag defaults of the level and each of its entries.
func (l *Level) setDefaults() error {
	if err := defaults.Set(l); err != nil {
		return fmt.Errorf("levels: defaults: %w", err)
	}
	for i := range l.Obstacles {
		if err := defaults.Set(&l.Obstacles[i]); err != nil {
			return fmt.Errorf("levels: defaults: %w", err)
		}
		if g := l.Obstacles[i].Growth; g != nil {
			if err := defaults.Set(g); err != nil {
				return fmt.Errorf("levels: defaults: %w", err)
			}
		}
	}
	return nil
}

func (l *Level) validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("levels: %v: %w", err, ErrInvalidLevel)
	}
	for i, tl := range l.TileLayers {
		width := len(tl.Rows[0])
		for _, row := range tl.Rows {
			if len(row) != width {
				return fmt.Errorf("levels: tile layer %d: ragged rows: %w", i, ErrInvalidLevel)
			}
		}
	}
	for _, o := range l.Obstacles {
		switch o.Shape {
		case "box":
			if o.Width <= 0 || o.Height <= 0 {
				return fmt.Errorf("levels: obstacle %q: box needs w and h: %w", o.Name, ErrInvalidLevel)
			}
		case "circle":
			if o.Radius <= 0 {
				return fmt.Errorf("levels: obstacle %q: circle needs r: %w", o.Name, ErrInvalidLevel)
			}
			if o.Kinematic {
				return fmt.Errorf("levels: obstacle %q: kinematic circles are not supported: %w", o.Name, ErrInvalidLevel)
			}
		}
	}
	return nil
}

// Names lists the embedded level names.
func Names() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return out
}

func cleanLevelName(name string) string {
	s := strings.TrimPrefix(filepath.ToSlash(name), "levels/")
	if filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}
