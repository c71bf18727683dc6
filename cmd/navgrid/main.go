package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/config"
	"github.com/milk9111/pathgrid/ecs"
	"github.com/milk9111/pathgrid/ecs/component"
	"github.com/milk9111/pathgrid/levels"
	"go.uber.org/zap"
)

type options struct {
	level      string
	levelFile  string
	configFile string
	frames     int
	from       string
	to         string
	radius     float64
	debug      bool
	watch      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.level, "level", "courtyard", "embedded level name (.yaml optional)")
	flag.StringVar(&opts.levelFile, "file", "", "level file on disk; overrides -level")
	flag.StringVar(&opts.configFile, "config", "", "navigation settings file")
	flag.IntVar(&opts.frames, "frames", 60, "frames to simulate before reporting")
	flag.StringVar(&opts.from, "from", "", "path query start as x,y")
	flag.StringVar(&opts.to, "to", "", "path query end as x,y")
	flag.Float64Var(&opts.radius, "radius", 0, "agent radius override")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&opts.watch, "watch", false, "re-run when the level or settings file changes")
	flag.Parse()

	logger, err := newLogger(opts.debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := report(os.Stdout, opts, logger); err != nil {
		logger.Fatal("navgrid failed", zap.Error(err))
	}
	if opts.watch {
		if err := watch(os.Stdout, opts, logger); err != nil {
			logger.Fatal("watch failed", zap.Error(err))
		}
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func loadInputs(opts options) (*levels.Level, config.Config, error) {
	var (
		lvl *levels.Level
		err error
	)
	if opts.levelFile != "" {
		lvl, err = levels.Load(opts.levelFile)
	} else {
		lvl, err = levels.LoadFromFS(opts.level)
	}
	if err != nil {
		return nil, config.Config{}, err
	}

	cfg := config.Default()
	if opts.configFile != "" {
		if cfg, err = config.Load(opts.configFile); err != nil {
			return nil, config.Config{}, err
		}
	}
	if opts.radius > 0 {
		cfg.AgentRadius = opts.radius
	}
	return lvl, cfg, nil
}

// report loads the inputs, simulates the requested frames and prints the
// grid with either the explicit query or every agent's path.
func report(out io.Writer, opts options, logger *zap.Logger) error {
	lvl, cfg, err := loadInputs(opts)
	if err != nil {
		return err
	}
	sc, err := newScene(lvl, cfg, logger)
	if err != nil {
		return err
	}
	defer sc.close()
	sc.run(opts.frames)

	if err := renderStats(out, sc.nav.Stats()); err != nil {
		return err
	}

	if opts.from != "" || opts.to != "" {
		from, err := parsePoint(opts.from)
		if err != nil {
			return fmt.Errorf("-from: %w", err)
		}
		to, err := parsePoint(opts.to)
		if err != nil {
			return fmt.Errorf("-to: %w", err)
		}
		path, ok := sc.nav.FindPath(from, to)
		if !ok {
			fmt.Fprintf(out, "no path from %v to %v\n", from, to)
		}
		return renderGrid(out, sc.nav.Grid(), path)
	}

	if len(sc.spawned.Agents) == 0 {
		return renderGrid(out, sc.nav.Grid(), nil)
	}
	for _, name := range sortedNames(sc.spawned.Agents) {
		agent, ok := ecs.Get(sc.world, sc.spawned.Agents[name], component.NavAgentComponent.Kind())
		if !ok {
			continue
		}
		fmt.Fprintf(out, "agent %s: path=%t waypoints=%d\n", name, agent.HasPath, len(agent.Path))
		if err := renderGrid(out, sc.nav.Grid(), agent.Path); err != nil {
			return err
		}
	}
	return nil
}

// watch re-runs report whenever a watched YAML file changes, until
// interrupted.
func watch(out io.Writer, opts options, logger *zap.Logger) error {
	var dirs []string
	if opts.levelFile != "" {
		dirs = append(dirs, filepath.Dir(opts.levelFile))
	}
	if opts.configFile != "" {
		if dir := filepath.Dir(opts.configFile); len(dirs) == 0 || dirs[0] != dir {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return fmt.Errorf("-watch needs -file or -config")
	}

	w, err := levels.NewWatcher(dirs...)
	if err != nil {
		return err
	}
	defer w.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	logger.Info("watching for changes", zap.Strings("dirs", dirs))
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			logger.Info("reloading", zap.String("file", name))
			if err := report(out, opts, logger); err != nil {
				logger.Warn("reload failed", zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-interrupt:
			return nil
		}
	}
}

func parsePoint(s string) (cp.Vector, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return cp.Vector{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return cp.Vector{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return cp.Vector{}, err
	}
	return cp.Vector{X: x, Y: y}, nil
}
