// SMS Bridge - device SMS gateway.
//
// This is the main entry point for the SMS bridge gateway. It exposes a
// device's SMS capability as an authenticated HTTP API and fans out
// live message and delivery events over a WebSocket channel, with a
// modem bridge reached over MQTT doing the actual sending/receiving.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/kestrelworks/smsbridge/migrations"

	"github.com/kestrelworks/smsbridge/internal/gateway"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/config"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/database"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/influxdb"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/logging"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/mqtt"
	"github.com/kestrelworks/smsbridge/internal/message"
	"github.com/kestrelworks/smsbridge/internal/transport"
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

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
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
	log.Info("starting SMS bridge",
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

	// Open the message store
	db, err := database.Open(database.Config{
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
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	store := message.NewSQLiteRepository(db.DB)

	// Connect to the MQTT broker and the modem bridge (optional:
	// without it the gateway degrades to a read-only inbox API)
	var (
		mqttClient  *mqtt.Client
		modemBridge *transport.Bridge
	)
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

		modemBridge, err = transport.NewBridge(mqttClient, log)
		if err != nil {
			return fmt.Errorf("starting modem bridge transport: %w", err)
		}
		defer func() {
			log.Info("stopping modem bridge transport")
			if closeErr := modemBridge.Close(); closeErr != nil {
				log.Error("error closing modem bridge", "error", closeErr)
			}
		}()
		log.Info("modem bridge transport ready")
	} else {
		log.Warn("MQTT disabled; send capability unavailable")
	}

	// Connect to InfluxDB (optional)
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
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the gateway server
	deps := gateway.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		EventPort: cfg.EventPort(),
		Logger:    log,
		Store:     store,
		Influx:    influxClient,
		Version:   version,
	}
	if modemBridge != nil {
		deps.Transport = modemBridge
	}

	server, err := gateway.New(deps)
	if err != nil {
		return fmt.Errorf("creating gateway server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting gateway server: %w", err)
	}
	defer func() {
		log.Info("stopping gateway server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing gateway server", "error", closeErr)
		}
	}()
	log.Info("gateway started",
		"api_port", cfg.API.Port,
		"event_port", cfg.EventPort(),
	)

	// Inbound messages flow from the modem bridge into the store and
	// out to event subscribers.
	if modemBridge != nil {
		modemBridge.SetInboundHandler(server.IngestInbound)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Gateway server (stops listeners, disconnects subscribers)
	// 2. InfluxDB (if enabled)
	// 3. Modem bridge and MQTT (if enabled)
	// 4. Database

	log.Info("SMS bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SMSBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SMSBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, server *gateway.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

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

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	return nil
}
