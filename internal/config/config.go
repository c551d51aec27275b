package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"voidfield/internal/sim"
)

// Config holds everything a voidfield binary needs.
type Config struct {
	// Preset names the tuning the simulation section starts from.
	Preset string `yaml:"preset" env:"VOIDFIELD_PRESET"`

	Simulation sim.Config      `yaml:"simulation"`
	Server     ServerConfig    `yaml:"server"`
	Viewer     ViewerConfig    `yaml:"viewer"`
	Logging    LoggingConfig   `yaml:"logging"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
	Store      StoreConfig     `yaml:"store"`
}

// ServerConfig configures the frame streaming server.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"VOIDFIELD_ADDR"`
	TickInterval    time.Duration `yaml:"tick_interval" env:"VOIDFIELD_TICK_INTERVAL"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ProtoDir        string        `yaml:"proto_dir"`
}

// ViewerConfig configures the terminal viewer.
type ViewerConfig struct {
	FPS  int  `yaml:"fps" env:"VOIDFIELD_FPS"`
	Mute bool `yaml:"mute" env:"VOIDFIELD_MUTE"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level" env:"VOIDFIELD_LOG_LEVEL"` // debug, info, warn, error
	Development bool   `yaml:"development"`
	// File redirects log output; the terminal viewer needs it since it owns stdout.
	File string `yaml:"file" env:"VOIDFIELD_LOG_FILE"`
}

// TelemetryConfig configures OTLP tracing. Tracing stays off unless Enabled
// and an endpoint is set.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" env:"VOIDFIELD_TRACING"`
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// StoreConfig configures run recording. An empty Path disables it.
type StoreConfig struct {
	Path             string `yaml:"path" env:"VOIDFIELD_STORE"`
	SampleEveryTicks int    `yaml:"sample_every_ticks"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Preset:     "sunyata",
		Simulation: sim.DefaultConfig(),
		Server: ServerConfig{
			Addr:            ":8080",
			TickInterval:    16 * time.Millisecond,
			ShutdownTimeout: 5 * time.Second,
			ProtoDir:        "proto",
		},
		Viewer: ViewerConfig{FPS: 30},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{SampleRatio: 1},
		Store:     StoreConfig{SampleEveryTicks: 60},
	}
}

// Load reads path on top of the defaults. See LoadPreset.
func Load(path string) (*Config, error) {
	return LoadPreset(path, "")
}

// LoadPreset builds the configuration in layers: defaults, the preset (the
// preset argument wins over the file and environment), the YAML file, then
// VOIDFIELD_* environment variables. A missing file is not an error.
func LoadPreset(path, preset string) (*Config, error) {
	var data []byte
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			data = raw
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var head struct {
		Preset string `yaml:"preset" env:"VOIDFIELD_PRESET"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := ParseEnv(&head); err != nil {
		return nil, err
	}
	if preset == "" {
		preset = head.Preset
	}

	cfg := Default()
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if preset != "" {
		cfg.Preset = preset
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyPreset replaces the simulation section with the named preset.
func (c *Config) ApplyPreset(name string) error {
	simCfg, err := sim.Preset(name)
	if err != nil {
		return err
	}
	c.Preset = name
	c.Simulation = simCfg
	return nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks every section and reports all problems together.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulation: %w", err))
	}
	if c.Server.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("server.tick_interval must be positive, got %s", c.Server.TickInterval))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must not be negative, got %s", c.Server.ShutdownTimeout))
	}
	if c.Viewer.FPS <= 0 || c.Viewer.FPS > 240 {
		errs = append(errs, fmt.Errorf("viewer.fps must be in [1, 240], got %d", c.Viewer.FPS))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio must be in [0, 1], got %v", c.Telemetry.SampleRatio))
	}
	if c.Store.SampleEveryTicks <= 0 {
		errs = append(errs, fmt.Errorf("store.sample_every_ticks must be positive, got %d", c.Store.SampleEveryTicks))
	}
	return errors.Join(errs...)
}
