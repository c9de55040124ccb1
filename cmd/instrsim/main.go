// instrsim - message-based instrument simulator
//
// This is the main entry point for the simulator daemon. It loads
// instrument definitions, opens the traffic history store, and exposes
// the simulated instruments over HTTP and MQTT:
//   - REST API for resource discovery, sessions, and query dispatch
//   - MQTT query/response bridge for broker-connected test harnesses
//   - Optional InfluxDB telemetry and SQLite traffic history
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/instrument-sim/migrations"

	"github.com/nerrad567/instrument-sim/internal/api"
	"github.com/nerrad567/instrument-sim/internal/bridge"
	"github.com/nerrad567/instrument-sim/internal/definition"
	"github.com/nerrad567/instrument-sim/internal/history"
	"github.com/nerrad567/instrument-sim/internal/infrastructure/config"
	"github.com/nerrad567/instrument-sim/internal/infrastructure/database"
	"github.com/nerrad567/instrument-sim/internal/infrastructure/influxdb"
	"github.com/nerrad567/instrument-sim/internal/infrastructure/logging"
	"github.com/nerrad567/instrument-sim/internal/infrastructure/mqtt"
	"github.com/nerrad567/instrument-sim/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// sessionMetricInterval is how often the open session count is written
// to InfluxDB.
const sessionMetricInterval = 30 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting instrsim",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Load instrument definitions
	loader := definition.NewLoader()
	loader.SetLogger(log)

	var set *definition.Set
	if len(cfg.Simulator.Definitions) > 0 {
		set, err = loader.LoadFiles(cfg.Simulator.Definitions)
	} else {
		set, err = loader.LoadBundled(cfg.Simulator.Bundled)
	}
	if err != nil {
		return fmt.Errorf("loading definitions: %w", err)
	}
	log.Info("definitions loaded", "resources", len(set.Resources()))

	// Session manager
	manager := session.NewManager(set)
	manager.SetLogger(log)
	defer manager.CloseAll()

	var observers []session.Observer

	// Traffic history (optional)
	var historyRepo *history.Repository
	if cfg.History.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", cfg.Database.Path)

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database migrations complete")

		historyRepo = history.NewRepository(db.DB, cfg.History.MaxEntries)
		recorder := history.NewRecorder(historyRepo)
		recorder.SetLogger(log)

		recorderDone := make(chan struct{})
		go func() {
			recorder.Run(ctx)
			close(recorderDone)
		}()
		// Wait for the recorder to drain before the database closes.
		defer func() { <-recorderDone }()

		observers = append(observers, recorder)
		log.Info("traffic history enabled", "max_entries", cfg.History.MaxEntries)
	} else {
		log.Info("traffic history disabled")
	}

	// InfluxDB telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		observers = append(observers, session.ObserverFunc(func(ex session.Exchange) {
			influxClient.WriteExchangeMetric(ex.Resource, ex.Device, ex.Replied, ex.Took)
		}))

		go sessionMetricLoop(ctx, influxClient, manager)
	} else {
		log.Info("InfluxDB disabled")
	}

	if len(observers) > 0 {
		manager.SetObserver(fanout(observers))
	}

	// HTTP API
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Set:     set,
		Manager: manager,
		History: historyRepo,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// MQTT bridge (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		queryBridge, bridgeErr := bridge.New(bridge.Options{
			Client:  mqttClient,
			Manager: manager,
			Topics:  mqttClient.Topics(),
			QoS:     byte(cfg.MQTT.QoS),
			Logger:  log,
		})
		if bridgeErr != nil {
			return fmt.Errorf("creating MQTT bridge: %w", bridgeErr)
		}
		if startErr := queryBridge.Start(); startErr != nil {
			return fmt.Errorf("starting MQTT bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping MQTT bridge")
			queryBridge.Stop()
		}()
	} else {
		log.Info("MQTT bridge disabled")
	}

	// Verify connections are healthy
	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("instrsim stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses INSTRSIM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("INSTRSIM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// fanout combines observers so each exchange reaches all of them.
func fanout(observers []session.Observer) session.Observer {
	if len(observers) == 1 {
		return observers[0]
	}
	return session.ObserverFunc(func(ex session.Exchange) {
		for _, o := range observers {
			o.Observe(ex)
		}
	})
}

// sessionMetricLoop periodically writes the open session count to InfluxDB.
func sessionMetricLoop(ctx context.Context, client *influxdb.Client, manager *session.Manager) {
	ticker := time.NewTicker(sessionMetricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client.WriteSessionCount(len(manager.Sessions()))
		}
	}
}

// healthCheck verifies the optional infrastructure connections are healthy.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
