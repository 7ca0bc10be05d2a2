// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	_ "iot-hub/docs"
	"iot-hub/internal/config"
	"iot-hub/internal/discovery"
	internalDriver "iot-hub/internal/driver"
	"iot-hub/internal/events"
	"iot-hub/internal/journal"
	"iot-hub/internal/metrics"
	"iot-hub/internal/network"
	"iot-hub/internal/routes"
	"iot-hub/internal/service"
	"iot-hub/internal/transport"
	"iot-hub/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server

	// Core components
	bus       *events.Bus
	client    transport.Client
	registry  *internalDriver.Registry
	engine    *discovery.Engine
	journal   *journal.Journal
	collector *metrics.Collector
	promReg   *prometheus.Registry

	// Services
	deviceService    *service.DeviceService
	discoveryService *service.DiscoveryService

	router *routes.Router
}

// @title IoT Hub API
// @version 1.0.0
// @description Network device discovery hub: classifies IoT peripherals with protocol drivers and routes commands to them
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8090
// @BasePath /api/v1/iot
func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "iot-hub")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if err := app.initializeJournal(); err != nil {
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	if err := app.initializeDiscovery(); err != nil {
		return nil, fmt.Errorf("failed to initialize discovery: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeMetrics sets up the Prometheus registry and collectors
func (app *Application) initializeMetrics() error {
	if !app.config.Metrics.Enabled {
		app.logger.Info("Metrics disabled")
		return nil
	}

	app.promReg = prometheus.NewRegistry()
	app.collector = metrics.NewCollector(app.promReg)

	app.logger.Info("Metrics initialized", zap.String("path", app.config.Metrics.Path))
	return nil
}

// initializeJournal opens the event journal and wires it to the bus
func (app *Application) initializeJournal() error {
	app.bus = events.NewBus(app.logger)

	if !app.config.Journal.Enabled {
		app.logger.Info("Event journal disabled")
		return nil
	}

	j, err := journal.Open(app.config.Journal.Path, app.logger)
	if err != nil {
		return fmt.Errorf("failed to open event journal: %w", err)
	}

	j.Attach(app.bus)
	app.journal = j
	return nil
}

// initializeDiscovery sets up the transport, driver registry, client
// enumerator and discovery engine
func (app *Application) initializeDiscovery() error {
	app.client = transport.NewHTTPClient(app.config.Discovery.ProbeTimeout, app.logger)

	app.registry = internalDriver.NewRegistry(app.logger)
	internalDriver.RegisterBuiltinDrivers(app.registry, app.logger)

	var enumerator network.Enumerator
	switch app.config.Network.Enumerator {
	case "nmap":
		enumerator = network.NewNmapEnumerator(app.config.Network.Targets, app.config.Discovery.ProbeTimeout, app.logger)
	default:
		enumerator = network.NewARPEnumerator(app.config.Network.Interface, app.logger)
	}

	app.engine = discovery.NewEngine(
		enumerator,
		app.client,
		app.registry,
		app.bus,
		app.collector,
		discovery.Config{
			ScanInterval:     app.config.Discovery.ScanInterval,
			ProbeTimeout:     app.config.Discovery.ProbeTimeout,
			OfflineRetention: app.config.Discovery.OfflineRetention,
		},
		app.logger,
	)

	app.logger.Info("Discovery initialized",
		zap.String("enumerator", app.config.Network.Enumerator),
		zap.Int("registered_drivers", app.registry.Len()),
	)
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	app.deviceService = service.NewDeviceService(
		app.engine,
		app.registry,
		app.client,
		app.collector,
		app.logger,
	)

	app.discoveryService = service.NewDiscoveryService(app.engine, app.logger)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	app.router = routes.NewRouter(
		app.config,
		app.logger,
		app.deviceService,
		app.discoveryService,
		app.bus,
		app.journal,
		app.promReg,
	)

	router := app.router.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)

	return nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "iot-hub")
	serviceLogger.LogServiceStop("shutdown signal received")

	// Stop discovery first so no new events flow during teardown
	app.engine.Stop()

	if ws := app.router.WebSocketHandler(); ws != nil {
		ws.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if app.journal != nil {
		if err := app.journal.Close(); err != nil {
			app.logger.Error("Journal close error", zap.Error(err))
		} else {
			app.logger.Info("Event journal closed")
		}
	}

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	if app.config.Discovery.Enabled {
		app.engine.Start(app.config.Discovery.ScanInterval)
	}

	app.waitForShutdown()

	return nil
}
