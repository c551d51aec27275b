package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voidfield/internal/sim"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VOIDFIELD_PRESET",
		"VOIDFIELD_SEED",
		"VOIDFIELD_BOUNDARY",
		"VOIDFIELD_TICK_INTERVAL",
		"VOIDFIELD_LOG_LEVEL",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voidfield.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "sunyata", cfg.Preset)
	require.Equal(t, sim.DefaultConfig(), cfg.Simulation)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	require.NoError(t, cfg.ApplyPreset("trinity"))
	cfg.Simulation.MaxPopulation = 42
	cfg.Simulation.ParticleColor = sim.Color{R: 1, G: 2, B: 3, A: 4}
	cfg.Server.Addr = "127.0.0.1:9999"
	cfg.Server.TickInterval = 40 * time.Millisecond
	cfg.Store.Path = "runs.db"

	path := filepath.Join(t.TempDir(), "nested", "voidfield.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadOverlaysFileOnPreset(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
preset: battle
simulation:
  max_population: 7
  particle_color: "#00ff00"
server:
  addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "battle", cfg.Preset)
	require.True(t, cfg.Simulation.Paths.Enabled, "battle preset should enable paths")
	require.Equal(t, sim.BoundaryDie, cfg.Simulation.BoundaryPolicy)
	require.Equal(t, 7, cfg.Simulation.MaxPopulation)
	require.Equal(t, sim.Color{G: 255, A: 255}, cfg.Simulation.ParticleColor)
	require.Equal(t, ":9090", cfg.Server.Addr)
}

func TestPresetArgumentWinsOverFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "preset: battle\n")

	cfg, err := LoadPreset(path, "zazen")
	require.NoError(t, err)
	require.Equal(t, "zazen", cfg.Preset)
	require.True(t, cfg.Simulation.Noise.Enabled)
	require.False(t, cfg.Simulation.Paths.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VOIDFIELD_PRESET", "trinity")
	t.Setenv("VOIDFIELD_SEED", "99")
	t.Setenv("VOIDFIELD_BOUNDARY", "reflect")
	t.Setenv("VOIDFIELD_TICK_INTERVAL", "40ms")
	t.Setenv("VOIDFIELD_LOG_LEVEL", "debug")

	path := writeFile(t, "simulation:\n  seed: 5\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "trinity", cfg.Preset)
	require.Equal(t, int64(99), cfg.Simulation.Seed)
	require.Equal(t, sim.BoundaryReflect, cfg.Simulation.BoundaryPolicy)
	require.Equal(t, 40*time.Millisecond, cfg.Server.TickInterval)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Simulation.Attractors, 3)
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeFile(t, "preset: nirvana\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "simulation: [not, a, map]\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "simulation:\n  max_speed: 0\n"))
	require.True(t, errors.Is(err, sim.ErrInvalidConfig), "got %v", err)
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Simulation.TrailCapacity = 0
	cfg.Viewer.FPS = 0
	cfg.Logging.Level = "loud"
	cfg.Telemetry.SampleRatio = 2

	err := cfg.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, sim.ErrInvalidConfig)
	for _, fragment := range []string{"trail_capacity", "viewer.fps", "logging.level", "telemetry.sample_ratio"} {
		require.Contains(t, err.Error(), fragment)
	}
}
