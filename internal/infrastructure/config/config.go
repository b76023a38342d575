package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the timedata service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Timedata TimedataConfig `yaml:"timedata"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig contains SQLite database settings for the edge directory.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// ShareGroup, when set, subscribes to edge topics as a shared
	// subscription ($share/<group>/...) so replicas split the load.
	ShareGroup string `yaml:"share_group"`
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

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
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

// InfluxDBConfig contains InfluxDB connection settings.
//
// Storage tiers are addressed as "<database>/<retention_policy>" buckets,
// which also works against 1.x servers through the v2 compatibility API.
type InfluxDBConfig struct {
	URL                string `yaml:"url"`
	Token              string `yaml:"token"`
	Org                string `yaml:"org"`
	Database           string `yaml:"database"`
	AvgRetentionPolicy string `yaml:"avg_retention_policy"`
	MaxRetentionPolicy string `yaml:"max_retention_policy"`

	// Timeout bounds every HTTP request, in seconds.
	Timeout int `yaml:"timeout"`
}

// AvgBucket returns the bucket of the average tier.
func (c InfluxDBConfig) AvgBucket() string {
	return c.Database + "/" + c.AvgRetentionPolicy
}

// MaxBucket returns the bucket of the MAX tier.
func (c InfluxDBConfig) MaxBucket() string {
	return c.Database + "/" + c.MaxRetentionPolicy
}

// TimedataConfig contains ingestion and query settings.
type TimedataConfig struct {
	AvgMeasurement string `yaml:"avg_measurement"`

	// MaxMeasurements maps IANA timezone names to the measurement holding
	// the daily MAX snapshots taken at that timezone's midnight.
	MaxMeasurements map[string]string `yaml:"max_measurements"`

	AvailableSinceMeasurement string `yaml:"available_since_measurement"`

	// ReadOnly turns every write into a no-op.
	ReadOnly bool `yaml:"read_only"`

	WriterPoolSize int `yaml:"writer_pool_size"`
	QueueCapacity  int `yaml:"queue_capacity"`

	// DefaultTimezone is assigned to newly registered edges.
	DefaultTimezone string `yaml:"default_timezone"`

	// LiveMaxAge is how long a live snapshot stays valid, in seconds.
	// 0 disables expiry.
	LiveMaxAge int `yaml:"live_max_age"`

	// MidnightWindow is how long before local midnight MAX snapshots are
	// stored, in seconds.
	MidnightWindow int `yaml:"midnight_window"`
}

// Timezones returns the configured MAX timezone names, sorted.
func (c TimedataConfig) Timezones() []string {
	names := make([]string, 0, len(c.MaxMeasurements))
	for tz := range c.MaxMeasurements {
		names = append(names, tz)
	}
	slices.Sort(names)
	return names
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_TIMEDATA_SECTION_KEY
// For example: GRAYLOGIC_TIMEDATA_INFLUXDB_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/timedata.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-timedata",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 60,
				Idle:  60,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:                "http://localhost:8086",
			Org:                "graylogic",
			Database:           "timedata",
			AvgRetentionPolicy: "avg",
			MaxRetentionPolicy: "max",
			Timeout:            30,
		},
		Timedata: TimedataConfig{
			AvgMeasurement:            "data",
			MaxMeasurements:           map[string]string{"UTC": "data_max_utc"},
			AvailableSinceMeasurement: "availableSince",
			WriterPoolSize:            4,
			QueueCapacity:             10000,
			DefaultTimezone:           "UTC",
			LiveMaxAge:                300,
			MidnightWindow:            300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// envPrefix is prepended to every environment override.
const envPrefix = "GRAYLOGIC_TIMEDATA_"

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_TIMEDATA_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"DATABASE_PATH":    &cfg.Database.Path,
		"MQTT_HOST":        &cfg.MQTT.Broker.Host,
		"MQTT_USERNAME":    &cfg.MQTT.Auth.Username,
		"MQTT_PASSWORD":    &cfg.MQTT.Auth.Password,
		"MQTT_SHARE_GROUP": &cfg.MQTT.ShareGroup,
		"API_HOST":         &cfg.API.Host,
		"INFLUXDB_URL":     &cfg.InfluxDB.URL,
		"INFLUXDB_TOKEN":   &cfg.InfluxDB.Token,
		"INFLUXDB_ORG":     &cfg.InfluxDB.Org,
		"LOGGING_LEVEL":    &cfg.Logging.Level,
	}
	for key, target := range overrides {
		if v := os.Getenv(envPrefix + key); v != "" {
			*target = v
		}
	}

	if v := os.Getenv(envPrefix + "READ_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Timedata.ReadOnly = b
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	errs = append(errs, c.InfluxDB.validate()...)
	errs = append(errs, c.Timedata.validate()...)

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (c InfluxDBConfig) validate() []string {
	var errs []string
	required := []struct{ key, value string }{
		{"influxdb.url", c.URL},
		{"influxdb.org", c.Org},
		{"influxdb.database", c.Database},
		{"influxdb.avg_retention_policy", c.AvgRetentionPolicy},
		{"influxdb.max_retention_policy", c.MaxRetentionPolicy},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, r.key+" is required")
		}
	}
	return errs
}

func (c TimedataConfig) validate() []string {
	var errs []string

	if c.AvgMeasurement == "" {
		errs = append(errs, "timedata.avg_measurement is required")
	}
	if c.AvailableSinceMeasurement == "" {
		errs = append(errs, "timedata.available_since_measurement is required")
	}
	if len(c.MaxMeasurements) == 0 {
		errs = append(errs, "timedata.max_measurements needs at least one timezone")
	}
	for _, tz := range c.Timezones() {
		if _, err := time.LoadLocation(tz); err != nil {
			errs = append(errs, fmt.Sprintf("timedata.max_measurements: unknown timezone %q", tz))
		}
		if c.MaxMeasurements[tz] == "" {
			errs = append(errs, fmt.Sprintf("timedata.max_measurements: empty measurement for %q", tz))
		}
	}
	if _, ok := c.MaxMeasurements[c.DefaultTimezone]; !ok {
		errs = append(errs, fmt.Sprintf("timedata.default_timezone %q must be listed in timedata.max_measurements", c.DefaultTimezone))
	}
	if c.WriterPoolSize < 1 {
		errs = append(errs, "timedata.writer_pool_size must be at least 1")
	}
	if c.QueueCapacity < 1 {
		errs = append(errs, "timedata.queue_capacity must be at least 1")
	}
	if c.LiveMaxAge < 0 || c.MidnightWindow < 0 {
		errs = append(errs, "timedata.live_max_age and timedata.midnight_window must not be negative")
	}

	return errs
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
