package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/internal/config"
	"github.com/flightblender/coordination-engine/internal/logger"
	"github.com/flightblender/coordination-engine/internal/telemetry"
	"github.com/flightblender/coordination-engine/pkg/api"
	"github.com/flightblender/coordination-engine/pkg/api/auth"
	"github.com/flightblender/coordination-engine/pkg/audit"
	"github.com/flightblender/coordination-engine/pkg/deconfliction"
	"github.com/flightblender/coordination-engine/pkg/dssclient"
	"github.com/flightblender/coordination-engine/pkg/flightdecl/store"
	"github.com/flightblender/coordination-engine/pkg/geofence"
	"github.com/flightblender/coordination-engine/pkg/kvstore"
	"github.com/flightblender/coordination-engine/pkg/kvstore/badger"
	"github.com/flightblender/coordination-engine/pkg/kvstore/memory"
	"github.com/flightblender/coordination-engine/pkg/metrics"
	"github.com/flightblender/coordination-engine/pkg/notify"
	"github.com/flightblender/coordination-engine/pkg/opint"
	"github.com/flightblender/coordination-engine/pkg/orchestrator"
	"github.com/flightblender/coordination-engine/pkg/scheduler"
	flighttelemetry "github.com/flightblender/coordination-engine/pkg/telemetry"
	"github.com/flightblender/coordination-engine/pkg/weather"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coordination engine server",
	Long: `serve runs the coordination engine's HTTP API, background scheduler, and
DSS notification wiring in the foreground until interrupted.

Examples:
  # Serve with default config
  blender serve

  # Serve with custom config
  blender serve --config /etc/flight-blender/config.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telCfg := telemetry.DefaultConfig()
	telCfg.Enabled = cfg.Telemetry.Enabled
	telCfg.Endpoint = cfg.Telemetry.Endpoint
	telCfg.Insecure = cfg.Telemetry.Insecure
	telCfg.SampleRate = cfg.Telemetry.SampleRate
	telCfg.ServiceVersion = Version

	shutdownTelemetry, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("error shutting down telemetry", logger.Err(err))
		}
	}()

	profCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "flight-blender",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	shutdownProfiling, err := telemetry.InitProfiling(profCfg)
	if err != nil {
		return fmt.Errorf("initializing profiling: %w", err)
	}
	defer func() {
		if err := shutdownProfiling(); err != nil {
			logger.Warn("error shutting down profiler", logger.Err(err))
		}
	}()

	logger.Info("starting coordination engine", "version", Version, "commit", Commit)

	kv, err := openKVStore(cfg.KVStore)
	if err != nil {
		return fmt.Errorf("opening kv store: %w", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Warn("error closing kv store", logger.Err(err))
		}
	}()

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	declStore := store.New(db)
	auditStore := audit.New(db)
	if cfg.Database.Driver == "sqlite" {
		if err := declStore.AutoMigrate(); err != nil {
			return fmt.Errorf("auto-migrating flight declaration schema: %w", err)
		}
		if err := auditStore.AutoMigrate(); err != nil {
			return fmt.Errorf("auto-migrating audit schema: %w", err)
		}
	}
	declStore.WithAuditStore(auditStore)

	opints := opint.New(kv)
	geofences := geofence.New(kv)
	telStore := flighttelemetry.New(kv)
	weatherClient := weather.New(cfg.Weather.BaseURL, &http.Client{Timeout: cfg.Weather.RequestTimeout})

	dssClient := dssclient.New(dssConfigFrom(cfg.DSS), kv, cfg.DSS.USSBaseURL, &http.Client{Timeout: cfg.DSS.RequestTimeout})
	dssNotifier := dssclient.NewNotifier(dssClient, opints, cfg.DSS.Audience)

	planner := deconfliction.New(opints, geofences)

	registry := prometheus.NewRegistry()
	metricsInstance := metrics.New(registry)

	checker := newConformanceChecker(declStore, telStore)

	sched := scheduler.New(scheduler.Config{
		HeartbeatInterval: cfg.Scheduler.ConformancePeriod,
		MaxAttempts:       cfg.Scheduler.MaxAttempts,
	}, checker)

	notifier, err := newNotifier(cfg.Notify)
	if err != nil {
		return fmt.Errorf("initializing notification bus: %w", err)
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Warn("error closing notifier", logger.Err(err))
		}
	}()

	submittingStore := newSubmittingStore(declStore, planner, sched, dssClient, opints, cfg.DSS.Audience)

	orch := orchestrator.New(submittingStore, dssNotifier, sched,
		orchestrator.WithDSSNotifications(true),
		orchestrator.WithConformanceMonitoring(true),
		orchestrator.WithMetrics(metricsInstance),
		orchestrator.WithNotifier(notifier),
	)
	checker.setOrchestrator(orch)

	jwtService := auth.NewJWTService([]byte(cfg.Server.JWTSecret), "flight-blender", cfg.DSS.Audience, 24*time.Hour)

	deps := api.Dependencies{
		Store:              kv,
		Declarations:       submittingStore,
		Submitter:          orch,
		JWTService:         jwtService,
		Telemetry:          telStore,
		Geofences:          geofences,
		OperationalIntents: opints,
		Weather:            weatherClient,
	}

	apiServer := api.NewServer(apiConfigFrom(cfg.Server), deps)

	sched.Run(ctx)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	logger.Info("coordination engine serving", "port", apiServer.Port())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
		if err := <-serverDone; err != nil {
			logger.Warn("error during API server shutdown", logger.Err(err))
		}
	case err := <-serverDone:
		if err != nil {
			logger.Error("server exited with error", logger.Err(err))
		}
		cancel()
	}

	if err := sched.Wait(); err != nil {
		logger.Warn("scheduler exited with error", logger.Err(err))
	}

	logger.Info("coordination engine stopped")
	return nil
}

func openKVStore(cfg config.KVStoreConfig) (kvstore.KVStream, error) {
	switch cfg.Backend {
	case "badger":
		return badger.Open(cfg.Dir)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported kvstore backend: %s", cfg.Backend)
	}
}

// dssConfigFrom maps the loaded DSS config onto dssclient.Config. TokenURL is
// the full OAuth token endpoint URL, so it goes entirely into AuthURL with
// AuthTokenEndpoint left empty rather than appended a second time.
func dssConfigFrom(cfg config.DSSConfig) dssclient.Config {
	return dssclient.Config{
		BaseURL:       cfg.BaseURL,
		AuthURL:       cfg.TokenURL,
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		SelfAudience:  cfg.Audience,
		SubmitTimeout: cfg.RequestTimeout,
		NotifyTimeout: cfg.NotifyTimeout,
		TokenTimeout:  cfg.KVTimeout,
	}
}

func apiConfigFrom(cfg config.ServerConfig) api.APIConfig {
	enabled := cfg.Enabled
	return api.APIConfig{
		Enabled:      &enabled,
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func newNotifier(cfg config.NotifyConfig) (notify.Notifier, error) {
	switch cfg.Backend {
	case "amqp":
		return notify.NewAMQPNotifier(cfg.AMQPURL)
	case "inprocess":
		return notify.NewInProcess(16), nil
	default:
		return nil, fmt.Errorf("unsupported notify backend: %s", cfg.Backend)
	}
}
