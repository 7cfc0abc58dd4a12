// Bluehood Core - Bluetooth presence monitor
//
// This is the main entry point for the bluehood daemon. It continuously
// scans for nearby Bluetooth devices (BLE and classic), resolves
// manufacturer identity without leaking full addresses externally,
// persists presence history, and raises alerts when watched devices
// come and go. A unix socket serves the control plane; an optional
// localhost HTTP mirror and MQTT/InfluxDB bridges feed other systems.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/bluehood-core/migrations"

	"github.com/nerrad567/bluehood-core/internal/api"
	"github.com/nerrad567/bluehood-core/internal/daemon"
	"github.com/nerrad567/bluehood-core/internal/device"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/config"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/database"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/bluehood-core/internal/notify"
	"github.com/nerrad567/bluehood-core/internal/oui"
	"github.com/nerrad567/bluehood-core/internal/scan"
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
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Bluehood Core",
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

	// Open database
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

	// Device repository
	repo := device.NewSQLiteRepository(db.DB)

	// Vendor resolution: local OUI database with online fallback
	localDB := oui.NewLocalDB(
		cfg.Vendor.DatabasePath,
		cfg.Vendor.DatabaseURL,
		time.Duration(cfg.Vendor.TimeoutSeconds)*time.Second,
	)
	localDB.SetLogger(log)

	resolver := oui.NewResolver(localDB, oui.Options{
		APIURL:         cfg.Vendor.APIURL,
		APIMinInterval: time.Duration(cfg.Vendor.APIMinIntervalSeconds) * time.Second,
		Timeout:        time.Duration(cfg.Vendor.TimeoutSeconds) * time.Second,
	})
	resolver.SetLogger(log)

	// Scan backends
	ble := scan.NewBLEBackend(cfg.ScanDuration())
	ble.SetLogger(log)

	backends := []scan.Backend{ble}
	if cfg.Scan.ClassicEnabled {
		classic := scan.NewClassicBackend(cfg.Scan.Adapter, cfg.Scan.InquiryLength)
		classic.SetLogger(log)
		backends = append(backends, classic)
	} else {
		log.Info("classic inquiry backend disabled")
	}

	scanner := scan.NewScanner(resolver, backends...)
	scanner.SetLogger(log)

	// Notification gateway
	sender := notify.NewNtfySender(cfg.Ntfy.BaseURL, time.Duration(cfg.Ntfy.TimeoutSeconds)*time.Second)
	sender.SetLogger(log)

	gateway := notify.NewGateway(repo, sender)
	gateway.SetLogger(log)

	// Daemon core
	d := daemon.New(cfg, repo, scanner, gateway)
	d.SetLogger(log)

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
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

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		mqttClient.SetLogger(log)

		d.SetPublisher(mqttClient)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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

		d.SetMetrics(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Localhost HTTP mirror (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log,
			Store:   repo,
			Runtime: d,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()

		// Mirror control-plane fanout events to WebSocket clients
		d.SetEventSink(apiServer.BroadcastEvent)
	} else {
		log.Info("HTTP API disabled")
	}

	// Start the daemon: scan loop, absence sweep, control-plane socket
	if startErr := d.Start(ctx); startErr != nil {
		return fmt.Errorf("starting daemon: %w", startErr)
	}
	defer d.Stop()

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: daemon, API, InfluxDB, MQTT,
	// database. The daemon releases its socket path before the stores
	// beneath it close.

	log.Info("Bluehood Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BLUEHOOD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BLUEHOOD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
