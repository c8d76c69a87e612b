// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexscent/internal/agents"
	"github.com/talgya/hexscent/internal/engine"
	"github.com/talgya/hexscent/internal/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Scent     ScentConfig     `yaml:"scent"`
	Agents    AgentsConfig    `yaml:"agents"`
	Engine    EngineConfig    `yaml:"engine"`
	Journal   JournalConfig   `yaml:"journal"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	API       APIConfig       `yaml:"api"`
	Log       LogConfig       `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PointConfig is an x/y pair.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// WorldConfig holds grid shape and pixel layout.
type WorldConfig struct {
	Radius   int         `yaml:"radius"`
	Seed     int64       `yaml:"seed"`   // 0 = random
	Layout   string      `yaml:"layout"` // pointy | flat
	CellSize PointConfig `yaml:"cell_size"`
	Origin   PointConfig `yaml:"origin"`
}

// TerrainConfig holds relief noise parameters.
type TerrainConfig struct {
	Octaves       int     `yaml:"octaves"`
	Frequency     float64 `yaml:"frequency"`
	SeaLevel      float64 `yaml:"sea_level"`
	MountainLevel float64 `yaml:"mountain_level"`
}

// ScentConfig holds diffusion parameters.
type ScentConfig struct {
	DepositStrength int `yaml:"deposit_strength"` // Strength an agent stamps on its cell
	DefaultDecay    int `yaml:"default_decay"`    // Decay for unregistered sources
}

// AgentsConfig holds the starting population and creature stats.
type AgentsConfig struct {
	Initial         int  `yaml:"initial"`
	MaxHP           int  `yaml:"max_hp"`
	Regen           int  `yaml:"regen"`
	Attack          int  `yaml:"attack"`
	Defense         int  `yaml:"defense"`
	SmellDecay      int  `yaml:"smell_decay"`
	ActivateOnSpawn bool `yaml:"activate_on_spawn"`
}

// EngineConfig holds real-time loop settings.
type EngineConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Speed       float64       `yaml:"speed"`
	Workers     int           `yaml:"workers"` // 0 = GOMAXPROCS
	ReportEvery uint64        `yaml:"report_every"`
	MaxTicks    uint64        `yaml:"max_ticks"` // 0 = run until stopped
}

// JournalConfig holds event journal settings.
type JournalConfig struct {
	Path string `yaml:"path"` // Empty disables the journal
}

// TelemetryConfig holds CSV output settings.
type TelemetryConfig struct {
	Dir string `yaml:"dir"` // Empty disables CSV output
}

// APIConfig holds HTTP settings.
type APIConfig struct {
	Port        int    `yaml:"port"` // 0 disables the API
	AdminKeyEnv string `yaml:"admin_key_env"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Orientation world.Orientation
	LogLevel    slog.Level
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.World.Radius < 0 {
		errs = append(errs, fmt.Errorf("world.radius must be >= 0, got %d", c.World.Radius))
	}
	if c.World.CellSize.X <= 0 || c.World.CellSize.Y <= 0 {
		errs = append(errs, fmt.Errorf("world.cell_size must be positive, got %+v", c.World.CellSize))
	}
	if c.Scent.DepositStrength <= 0 {
		errs = append(errs, fmt.Errorf("scent.deposit_strength must be positive, got %d", c.Scent.DepositStrength))
	}
	if c.Scent.DefaultDecay <= 0 || c.Agents.SmellDecay <= 0 {
		errs = append(errs, errors.New("scent decay strengths must be positive"))
	}
	if c.Agents.Initial < 0 {
		errs = append(errs, fmt.Errorf("agents.initial must be >= 0, got %d", c.Agents.Initial))
	}
	if c.Agents.MaxHP <= 0 {
		errs = append(errs, fmt.Errorf("agents.max_hp must be positive, got %d", c.Agents.MaxHP))
	}
	if c.Engine.Speed < 0 {
		errs = append(errs, fmt.Errorf("engine.speed must be >= 0, got %v", c.Engine.Speed))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	o, err := world.OrientationByName(c.World.Layout)
	if err != nil {
		return fmt.Errorf("world.layout: %w", err)
	}
	c.Derived.Orientation = o

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	c.Derived.LogLevel = level
	return nil
}

// Layout builds the pixel layout.
func (c *Config) Layout() world.Layout {
	return world.NewLayout(
		c.Derived.Orientation,
		world.Point{X: c.World.CellSize.X, Y: c.World.CellSize.Y},
		world.Point{X: c.World.Origin.X, Y: c.World.Origin.Y},
	)
}

// GenConfig builds the terrain generation parameters for the given seed.
func (c *Config) GenConfig(seed int64) world.GenConfig {
	return world.GenConfig{
		Radius:      c.World.Radius,
		Seed:        seed,
		Octaves:     c.Terrain.Octaves,
		Frequency:   c.Terrain.Frequency,
		SeaLevel:    c.Terrain.SeaLevel,
		MountainLvl: c.Terrain.MountainLevel,
	}
}

// Profile builds the creature stats for the spawner.
func (c *Config) Profile() agents.Profile {
	return agents.Profile{
		MaxHP:      c.Agents.MaxHP,
		Regen:      c.Agents.Regen,
		Attack:     c.Agents.Attack,
		Defense:    c.Agents.Defense,
		SmellDecay: c.Agents.SmellDecay,
		Activate:   c.Agents.ActivateOnSpawn,
	}
}

// SimOptions builds the simulation options.
func (c *Config) SimOptions() engine.Options {
	return engine.Options{
		DepositStrength: c.Scent.DepositStrength,
		DefaultDecay:    c.Scent.DefaultDecay,
		Workers:         c.Engine.Workers,
	}
}

// AdminKey reads the admin bearer token from the configured env var.
func (c *Config) AdminKey() string {
	if c.API.AdminKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.API.AdminKeyEnv)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
