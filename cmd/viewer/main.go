package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voidfield/internal/audio"
	"voidfield/internal/config"
	"voidfield/internal/input"
	"voidfield/internal/logging"
	"voidfield/internal/render"
	"voidfield/internal/sim"
	"voidfield/internal/store"
)

var (
	configPath string
	preset     string
	fps        int
	mute       bool
	recordPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "voidfield",
	Short: "Watch a voidfield simulation in the terminal",
	Long: `Runs a simulation locally and draws it with tcell.

Keys: space pause, r reset, c ripple at the pointer, w/a/s/d wind gusts,
x calm, q or Esc quit. The mouse repels particles; clicking emits a ripple.`,
	SilenceUsage: true,
	RunE:         view,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "voidfield.yaml", "Path to the YAML config file")
	rootCmd.Flags().StringVarP(&preset, "preset", "p", "", fmt.Sprintf("Simulation preset %v", sim.PresetNames()))
	rootCmd.Flags().IntVar(&fps, "fps", 0, "Frames per second (overrides config)")
	rootCmd.Flags().BoolVar(&mute, "mute", false, "Disable collision sounds")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "Record the run into this SQLite file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (needs logging.file)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func view(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadPreset(configPath, preset)
	if err != nil {
		return err
	}
	if fps > 0 {
		cfg.Viewer.FPS = fps
	}
	if mute {
		cfg.Viewer.Mute = true
	}
	if recordPath != "" {
		cfg.Store.Path = recordPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The screen owns stdout, so logs only go somewhere when a file is set.
	logger := zap.NewNop()
	if cfg.Logging.File != "" {
		if logger, err = logging.New(cfg.Logging, verbose); err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()

	simulation, err := sim.New(cfg.Simulation, sim.WithLogger(logger.Named("sim")))
	if err != nil {
		return err
	}

	var recorder *store.Store
	var runID string
	if cfg.Store.Path != "" {
		if recorder, err = store.Open(cfg.Store.Path, cfg.Store.SampleEveryTicks); err != nil {
			return err
		}
		defer recorder.Close()
		if runID, err = recorder.BeginRun(cmd.Context(), cfg.Preset, cfg.Simulation); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	pinger := audio.NewPinger(logger.Named("audio"), cfg.Viewer.Mute)
	defer pinger.Close()

	v := &viewer{
		sim:      simulation,
		driver:   input.NewDriver(simulation, input.NewPointer(cfg.Viewer.FPS, 6, 1), logger.Named("input")),
		terminal: render.NewTerminal(screen),
		pinger:   pinger,
		recorder: recorder,
		runID:    runID,
		log:      logger,
	}
	v.controls = newControls(screen, v.terminal, cfg.Simulation.Width, cfg.Simulation.Height)
	return v.run(cmd.Context(), screen, time.Second/time.Duration(cfg.Viewer.FPS))
}

type viewer struct {
	sim      *sim.Simulation
	driver   *input.Driver
	terminal *render.Terminal
	controls *controls
	pinger   *audio.Pinger
	recorder *store.Store
	runID    string
	log      *zap.Logger
}

func (v *viewer) run(ctx context.Context, screen tcell.Screen, interval time.Duration) error {
	eventChan := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(screen, eventChan, done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	v.terminal.Draw(v.sim.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
				continue
			}
			events, quit := v.controls.translate(ev)
			if quit {
				return nil
			}
			for _, e := range events {
				v.driver.Apply(e)
			}
		case <-ticker.C:
			v.step(ctx)
		}
	}
}

// pollEvents forwards screen events to out until the screen is finalised or
// done is closed.
func pollEvents(screen tcell.Screen, out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		// nil after Fini
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

func (v *viewer) step(ctx context.Context) {
	v.driver.Update()
	v.sim.Tick()
	frame := v.sim.Snapshot()
	v.terminal.Draw(frame)
	v.pinger.Collisions(len(frame.Collisions))

	if v.recorder == nil || frame.Paused {
		return
	}
	if err := v.recorder.RecordFrame(ctx, v.runID, frame); err != nil {
		v.log.Warn("failed to record frame", zap.Uint64("tick", frame.Tick), zap.Error(err))
	}
}
