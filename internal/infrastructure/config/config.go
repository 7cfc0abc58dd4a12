package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Bluehood Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Socket    SocketConfig    `yaml:"socket"`
	Scan      ScanConfig      `yaml:"scan"`
	Vendor    VendorConfig    `yaml:"vendor"`
	Ntfy      NtfyConfig      `yaml:"ntfy"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// SocketConfig contains control-plane socket settings.
type SocketConfig struct {
	// Path is the filesystem path of the unix socket clients connect to.
	Path string `yaml:"path"`

	// Mode is the octal permission mode applied to the socket file.
	// Default 0666 so local TUI clients can connect without root.
	Mode uint32 `yaml:"mode"`
}

// ScanConfig contains Bluetooth scanning settings.
type ScanConfig struct {
	// Adapter is the local Bluetooth adapter to scan with (e.g. "hci0").
	// Empty means the platform default adapter.
	Adapter string `yaml:"adapter"`

	// IntervalSeconds is the pause between scan cycles.
	IntervalSeconds int `yaml:"interval_seconds"`

	// DurationSeconds is how long each BLE advertisement scan runs.
	DurationSeconds int `yaml:"duration_seconds"`

	// ClassicEnabled toggles the hcitool classic-inquiry backend.
	ClassicEnabled bool `yaml:"classic_enabled"`

	// InquiryLength is the classic inquiry length in 1.28s units.
	InquiryLength int `yaml:"inquiry_length"`

	// SightingRetentionDays is how long sighting history is kept.
	SightingRetentionDays int `yaml:"sighting_retention_days"`
}

// VendorConfig contains OUI vendor lookup settings.
type VendorConfig struct {
	// DatabasePath is where the offline OUI database file is cached.
	DatabasePath string `yaml:"database_path"`

	// DatabaseURL is the source for offline database updates.
	DatabaseURL string `yaml:"database_url"`

	// APIURL is the online fallback API base URL. Only the 3-byte
	// prefix of an address is ever appended to this URL.
	APIURL string `yaml:"api_url"`

	// APIMinIntervalSeconds is the minimum spacing between online
	// lookups, shared across all addresses.
	APIMinIntervalSeconds int `yaml:"api_min_interval_seconds"`

	// TimeoutSeconds is the per-request timeout for online lookups.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// NtfyConfig contains push notification delivery settings.
// Whether notifications fire at all, and to which topic, is runtime
// state stored in the settings table; this only covers the endpoint.
type NtfyConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BLUEHOOD_SECTION_KEY
// For example: BLUEHOOD_DATABASE_PATH, BLUEHOOD_SOCKET_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Read and parse YAML file. A missing file is not an error: the
	// daemon runs on defaults plus environment overrides.
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. The daemon can run
// with defaults alone; a config file is only needed to change them.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/bluehood.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Socket: SocketConfig{
			Path: "/tmp/bluehood.sock",
			Mode: 0o666,
		},
		Scan: ScanConfig{
			IntervalSeconds:       10,
			DurationSeconds:       5,
			ClassicEnabled:        true,
			InquiryLength:         8,
			SightingRetentionDays: 90,
		},
		Vendor: VendorConfig{
			DatabasePath:          "./data/mac-vendors.txt",
			DatabaseURL:           "https://standards-oui.ieee.org/oui/oui.txt",
			APIURL:                "https://api.macvendors.com",
			APIMinIntervalSeconds: 1,
			TimeoutSeconds:        5,
		},
		Ntfy: NtfyConfig{
			BaseURL:        "https://ntfy.sh",
			TimeoutSeconds: 10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "bluehood-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8460,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BLUEHOOD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("BLUEHOOD_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Control plane
	if v := os.Getenv("BLUEHOOD_SOCKET_PATH"); v != "" {
		cfg.Socket.Path = v
	}

	// Scanning
	if v := os.Getenv("BLUEHOOD_ADAPTER"); v != "" {
		cfg.Scan.Adapter = v
	}

	// MQTT
	if v := os.Getenv("BLUEHOOD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BLUEHOOD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BLUEHOOD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("BLUEHOOD_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Socket.Path == "" {
		errs = append(errs, "socket.path is required")
	}

	if c.Scan.IntervalSeconds < 1 {
		errs = append(errs, "scan.interval_seconds must be at least 1")
	}
	if c.Scan.DurationSeconds < 1 {
		errs = append(errs, "scan.duration_seconds must be at least 1")
	}
	if c.Scan.InquiryLength < 1 {
		errs = append(errs, "scan.inquiry_length must be at least 1")
	}

	if c.Vendor.APIMinIntervalSeconds < 1 {
		errs = append(errs, "vendor.api_min_interval_seconds must be at least 1")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ScanInterval returns the pause between scan cycles as a Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scan.IntervalSeconds) * time.Second
}

// ScanDuration returns the BLE scan window as a Duration.
func (c *Config) ScanDuration() time.Duration {
	return time.Duration(c.Scan.DurationSeconds) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
