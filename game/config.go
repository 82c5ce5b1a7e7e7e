package game

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"autosnake/grid_world"
	"autosnake/models"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigKind is the only accepted value of the config file's "kind" field.
const ConfigKind = "autosnake"

// OuterConfig is the config file envelope: a kind tag plus an untyped
// definition that is re-decoded into the kind's own struct.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

type GridConfig struct {
	Rows    int
	Columns int
}

// Config holds everything needed to run a game. Durations are written in
// time.ParseDuration form, e.g. "100ms".
// Viper lowercases every key it reads, so fields rely on yaml's default
// lowercased field names rather than tags.
type Config struct {
	Grid GridConfig
	// Algorithm is the search used to route toward food: "astar" or "dijkstra".
	Algorithm    string
	TickInterval time.Duration
	// RestartOnGameOver starts a fresh game RestartDelay after a win or loss.
	RestartOnGameOver bool
	RestartDelay      time.Duration
	// Seed for food placement. Zero seeds from the clock.
	Seed uint64
	// InitialSnake lists [row, col] pairs from tail to head.
	InitialSnake [][]int
}

var (
	ErrConfigKind    = errors.New("unexpected config kind")
	ErrInvalidConfig = errors.New("invalid config")
)

// DefaultConfig is used when no config file is present.
func DefaultConfig() Config {
	return Config{
		Grid:              GridConfig{Rows: grid_world.FullBoard.Rows, Columns: grid_world.FullBoard.Columns},
		Algorithm:         models.AStar.Key(),
		TickInterval:      100 * time.Millisecond,
		RestartOnGameOver: true,
		RestartDelay:      2 * time.Second,
		InitialSnake:      [][]int{{0, 0}, {0, 1}, {0, 2}},
	}
}

// Board returns the configured grid.
func (cfg Config) Board() (models.Grid, error) {
	return models.NewGrid(cfg.Grid.Rows, cfg.Grid.Columns)
}

// Snake converts InitialSnake, without validating it against a board.
func (cfg Config) Snake() (models.Snake, error) {
	snake := make(models.Snake, 0, len(cfg.InitialSnake))
	for i, pair := range cfg.InitialSnake {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: initialSnake[%d] must be a [row, col] pair, got %v", ErrInvalidConfig, i, pair)
		}
		snake = append(snake, models.Cell{Row: pair[0], Col: pair[1]})
	}
	return snake, nil
}

// Validate checks every field, returning the first problem found.
func (cfg Config) Validate() error {
	grid, err := cfg.Board()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err = models.ParseAlgorithm(cfg.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("%w: tickInterval must be positive, got %v", ErrInvalidConfig, cfg.TickInterval)
	}
	if cfg.RestartDelay < 0 {
		return fmt.Errorf("%w: restartDelay must not be negative, got %v", ErrInvalidConfig, cfg.RestartDelay)
	}

	snake, err := cfg.Snake()
	if err != nil {
		return err
	}
	if err = snake.Validate(grid); err != nil {
		return fmt.Errorf("%w: initialSnake: %w", ErrInvalidConfig, err)
	}
	if len(snake) >= grid.Size() {
		return fmt.Errorf("%w: initialSnake leaves no room for food", ErrInvalidConfig)
	}
	return nil
}

// FromYaml reads a config file of the form:
//
//	kind: autosnake
//	def:
//	  grid: {rows: 20, columns: 20}
//	  algorithm: astar
//	  ...
//
// Fields missing from def keep their DefaultConfig values. The result is validated.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}
	if outerConfig.Kind != ConfigKind {
		return nil, fmt.Errorf("%w: %q", ErrConfigKind, outerConfig.Kind)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := DefaultConfig()
	if err = yaml.Unmarshal(spec, &innerConfig); err != nil {
		return nil, err
	}

	if err = innerConfig.Validate(); err != nil {
		return nil, err
	}
	return &innerConfig, nil
}
