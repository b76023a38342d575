// Gray Logic Timedata - historical telemetry service
//
// This is the main entry point of the timedata service. It ingests edge
// telemetry batches from MQTT into InfluxDB (an averaged tier and a daily
// MAX snapshot tier per timezone) and answers history queries over HTTP:
// averaged ranges, energy totals and energy per period, merged with live
// values for the current day.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"

	_ "github.com/nerrad567/gray-logic-timedata/migrations"

	"github.com/nerrad567/gray-logic-timedata/internal/api"
	"github.com/nerrad567/gray-logic-timedata/internal/availability"
	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/edge"
	"github.com/nerrad567/gray-logic-timedata/internal/history"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-timedata/internal/ingest"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configPathEnv     = "GRAYLOGIC_TIMEDATA_CONFIG"
	dotenvPath        = ".env"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until ctx is cancelled.
//
// Startup order:
//  1. Configuration and logging
//  2. SQLite edge directory (migrations, cache)
//  3. InfluxDB client, asynchronous writer and query backend
//  4. Availability registry, loaded from persisted markers
//  5. Ingestion router and MQTT subscriber
//  6. History service and HTTP API
//
// Shutdown runs in reverse: the API stops, MQTT stops delivering, the
// writer drains its queue, then storage is closed.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gray Logic Timedata",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", dotenvPath, err)
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"read_only", cfg.Timedata.ReadOnly,
	)
	pahomqtt.ERROR = log.Component("paho").StdLogger(slog.LevelError)
	pahomqtt.CRITICAL = log.Component("paho").StdLogger(slog.LevelError)

	defaultTZ, err := time.LoadLocation(cfg.Timedata.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("loading default timezone: %w", err)
	}
	zones, err := maxZones(cfg.Timedata)
	if err != nil {
		return err
	}

	reg := metrics.New()

	// Edge directory
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	schema, _ := db.SchemaVersion(ctx) //nolint:errcheck // Informational only
	log.Info("database ready", "path", cfg.Database.Path, "schema_version", schema)

	edges := edge.NewDirectory(edge.NewSQLiteRepository(db.DB, defaultTZ), defaultTZ)
	edges.SetLogger(log.Component("edges"))
	if refreshErr := edges.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading edge directory: %w", refreshErr)
	}

	// Storage
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
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
		"avg_bucket", cfg.InfluxDB.AvgBucket(),
		"max_bucket", cfg.InfluxDB.MaxBucket(),
	)

	writer := influxdb.NewAsyncWriter(influxClient, influxdb.WriterConfig{
		PoolSize:                  cfg.Timedata.WriterPoolSize,
		QueueCapacity:             cfg.Timedata.QueueCapacity,
		ReadOnly:                  cfg.Timedata.ReadOnly,
		AvailableSinceMeasurement: cfg.Timedata.AvailableSinceMeasurement,
	})
	writer.SetObserver(reg)
	reg.WatchQueue(writer.QueueLen)
	writer.Start(ctx)
	go superviseWriter(writer, log.Component("writer"))

	backend := influxdb.NewBackend(influxClient, influxdb.BackendConfig{
		AvgMeasurement:            cfg.Timedata.AvgMeasurement,
		AvailableSinceMeasurement: cfg.Timedata.AvailableSinceMeasurement,
	})

	registry := availability.NewRegistry(writer)
	registry.SetLogger(log.Component("availability"))
	if loadErr := registry.LoadFrom(ctx, backend); loadErr != nil {
		return loadErr
	}
	defer func() {
		log.Info("draining point writer", "queued", writer.QueueLen())
		if closeErr := writer.Close(); closeErr != nil {
			log.Error("error closing writer", "error", closeErr)
		}
		registry.Clear()
	}()

	// Ingestion
	router := ingest.NewRouter(ingest.Config{
		AvgMeasurement: cfg.Timedata.AvgMeasurement,
		MaxZones:       zones,
		MidnightWindow: time.Duration(cfg.Timedata.MidnightWindow) * time.Second,
	}, channel.DefaultAllowlist(), edges, registry, writer)
	router.SetLogger(log.Component("ingest"))
	router.SetObserver(reg)

	live := edge.NewLiveCache(time.Duration(cfg.Timedata.LiveMaxAge) * time.Second)

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetMessageObserver(reg.MessageHandled)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	subscriber := edge.NewSubscriber(mqttClient, router, live, byte(cfg.MQTT.QoS)) //nolint:gosec // QoS validated to 0-2
	subscriber.SetLogger(log.Component("subscriber"))
	if startErr := subscriber.Start(ctx); startErr != nil {
		return fmt.Errorf("starting edge subscriber: %w", startErr)
	}

	// Queries
	service := history.NewService(history.Config{
		MaxMeasurements: cfg.Timedata.MaxMeasurements,
	}, backend, registry, edges, live)
	service.SetObserver(reg)

	server, err := api.New(api.Deps{
		Config:         cfg.API,
		Metrics:        cfg.Metrics,
		Logger:         log.Component("api"),
		History:        service,
		Edges:          edges,
		Availability:   registry,
		MetricsHandler: reg.Handler(),
		Status: api.StatusSource{
			MQTT:     mqttClient,
			InfluxDB: influxClient,
			Writer:   writer,
			Database: db,
		},
		HealthChecks: []api.HealthCheck{
			{Name: "database", Check: db.HealthCheck},
			{Name: "mqtt", Check: mqttClient.HealthCheck},
			{Name: "influxdb", Check: influxClient.HealthCheck},
		},
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"edges", countEdges(ctx, edges),
		"timezones", cfg.Timedata.Timezones(),
	)

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_TIMEDATA_CONFIG if set, otherwise the default.
func getConfigPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// maxZones loads the timezone of every configured MAX measurement.
func maxZones(cfg config.TimedataConfig) ([]ingest.MaxZone, error) {
	zones := make([]ingest.MaxZone, 0, len(cfg.MaxMeasurements))
	for _, name := range cfg.Timezones() {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", name, err)
		}
		zones = append(zones, ingest.MaxZone{Location: loc, Measurement: cfg.MaxMeasurements[name]})
	}
	return zones, nil
}

// superviseWriter logs write failures until the writer is closed.
func superviseWriter(w *influxdb.AsyncWriter, log *logging.Logger) {
	for err := range w.Errors() {
		if errors.Is(err, influxdb.ErrQueueFull) {
			log.Warn("point dropped", "error", err)
			continue
		}
		log.Error("point write failed", "error", err)
	}
}

func countEdges(ctx context.Context, edges *edge.Directory) int {
	list, err := edges.List(ctx)
	if err != nil {
		return 0
	}
	return len(list)
}
