package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"voidfield/internal/config"
	"voidfield/internal/input"
	"voidfield/internal/logging"
	"voidfield/internal/sim"
	"voidfield/internal/store"
	"voidfield/internal/stream"
	"voidfield/internal/telemetry"
)

var (
	configPath string
	addr       string
	preset     string
	verbose    bool
	smooth     bool
)

var rootCmd = &cobra.Command{
	Use:   "voidfield-server",
	Short: "Run the voidfield simulation and stream frames over websocket",
	Long: `Runs one simulation at a fixed tick interval and streams every frame to
websocket clients on /ws/frames. Clients steer the simulation by sending
Control messages (see proto/voidfield.proto).`,
	SilenceUsage: true,
	RunE:         serve,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "voidfield.yaml", "Path to the YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	rootCmd.Flags().StringVarP(&preset, "preset", "p", "", fmt.Sprintf("Simulation preset %v", sim.PresetNames()))
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&smooth, "smooth-pointer", true, "Glide the pointer towards client positions")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadPreset(configPath, preset)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, "voidfield-server")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	simulation, err := sim.New(cfg.Simulation, sim.WithLogger(logger.Named("sim")))
	if err != nil {
		return err
	}

	recorder, runID, err := openRecorder(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer recorder.Close()

	var pointer *input.Pointer
	if smooth {
		pointer = input.NewPointer(ticksPerSecond(cfg), 6, 1)
	}
	driver := input.NewDriver(simulation, pointer, logger.Named("input"))
	hub := stream.NewHub(logger.Named("stream"))

	mux := http.NewServeMux()
	mux.Handle("/ws/frames", hub.Handler(simulation.Snapshot, driver))
	mux.Handle("/proto/", http.StripPrefix("/proto/", http.FileServer(http.Dir(cfg.Server.ProtoDir))))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	tracer := telemetry.Tracer()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		simulation.Run(gctx, cfg.Server.TickInterval, func(f sim.Frame) {
			tickCtx, span := tracer.Start(gctx, "tick")
			defer span.End()
			driver.Update()
			clients := hub.Broadcast(f)
			span.SetAttributes(
				attribute.Int64("voidfield.tick", int64(f.Tick)),
				attribute.Int("voidfield.particles", len(f.Particles)),
				attribute.Int("voidfield.collisions", len(f.Collisions)),
				attribute.Int("voidfield.clients", clients),
			)
			if recorder == nil {
				return
			}
			if err := recorder.RecordFrame(tickCtx, runID, f); err != nil && !errors.Is(err, context.Canceled) {
				span.RecordError(err)
				logger.Warn("failed to record frame", zap.Uint64("tick", f.Tick), zap.Error(err))
			}
		})
		return nil
	})

	g.Go(func() error {
		logger.Info("serving frames",
			zap.String("addr", cfg.Server.Addr),
			zap.String("preset", cfg.Preset),
			zap.Duration("tick_interval", cfg.Server.TickInterval))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openRecorder opens the run store when one is configured. A nil store means
// recording is off.
func openRecorder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Store, string, error) {
	if cfg.Store.Path == "" {
		return nil, "", nil
	}
	st, err := store.Open(cfg.Store.Path, cfg.Store.SampleEveryTicks)
	if err != nil {
		return nil, "", err
	}
	runID, err := st.BeginRun(ctx, cfg.Preset, cfg.Simulation)
	if err != nil {
		_ = st.Close()
		return nil, "", err
	}
	logger.Info("recording run", zap.String("path", cfg.Store.Path), zap.String("run", runID))
	return st, runID, nil
}

// ticksPerSecond converts the tick interval into the frame rate the pointer
// spring is tuned for.
func ticksPerSecond(cfg *config.Config) int {
	return max(1, int(1/cfg.Server.TickInterval.Seconds()))
}
