package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/test.db"
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "timedata-test"
  qos: 1
  share_group: "ingest"
influxdb:
  url: "http://influx:8086"
  org: "openems"
  database: "fems"
  avg_retention_policy: "rp_avg"
  max_retention_policy: "rp_max"
timedata:
  max_measurements:
    UTC: "data_max_utc"
  read_only: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.ShareGroup != "ingest" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if got := cfg.InfluxDB.AvgBucket(); got != "fems/rp_avg" {
		t.Errorf("AvgBucket() = %q, want fems/rp_avg", got)
	}
	if got := cfg.InfluxDB.MaxBucket(); got != "fems/rp_max" {
		t.Errorf("MaxBucket() = %q, want fems/rp_max", got)
	}
	if !cfg.Timedata.ReadOnly {
		t.Error("Timedata.ReadOnly = false, want true")
	}
	// Untouched keys keep their defaults.
	if cfg.Timedata.AvgMeasurement != "data" || cfg.Timedata.QueueCapacity != 10000 {
		t.Errorf("Timedata defaults lost: %+v", cfg.Timedata)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, `
influxdb:
  database: ""
`))
	if err == nil || !strings.Contains(err.Error(), "influxdb.database is required") {
		t.Errorf("Load() error = %v, want influxdb.database error", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"invalid port low", func(c *Config) { c.API.Port = 0 }, "api.port"},
		{"invalid port high", func(c *Config) { c.API.Port = 70000 }, "api.port"},
		{"missing url", func(c *Config) { c.InfluxDB.URL = " " }, "influxdb.url"},
		{"missing max rp", func(c *Config) { c.InfluxDB.MaxRetentionPolicy = "" }, "influxdb.max_retention_policy"},
		{"no max measurements", func(c *Config) { c.Timedata.MaxMeasurements = nil }, "at least one timezone"},
		{"unknown timezone", func(c *Config) { c.Timedata.MaxMeasurements["Mars/Olympus"] = "data_max_mars" }, "unknown timezone"},
		{"default tz unlisted", func(c *Config) { c.Timedata.DefaultTimezone = "Etc/GMT+1" }, "default_timezone"},
		{"zero pool", func(c *Config) { c.Timedata.WriterPoolSize = 0 }, "writer_pool_size"},
		{"zero queue", func(c *Config) { c.Timedata.QueueCapacity = 0 }, "queue_capacity"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Path = ""
	cfg.API.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"database.path", "api.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("GRAYLOGIC_TIMEDATA_DATABASE_PATH", "/custom/path.db")
	t.Setenv("GRAYLOGIC_TIMEDATA_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAYLOGIC_TIMEDATA_MQTT_USERNAME", "testuser")
	t.Setenv("GRAYLOGIC_TIMEDATA_MQTT_PASSWORD", "testpass")
	t.Setenv("GRAYLOGIC_TIMEDATA_INFLUXDB_URL", "http://influx.example.com:8086")
	t.Setenv("GRAYLOGIC_TIMEDATA_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("GRAYLOGIC_TIMEDATA_READ_ONLY", "true")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Username != "testuser" || cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth = %+v", cfg.MQTT.Auth)
	}
	if cfg.InfluxDB.URL != "http://influx.example.com:8086" {
		t.Errorf("InfluxDB.URL = %q", cfg.InfluxDB.URL)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q", cfg.InfluxDB.Token)
	}
	if !cfg.Timedata.ReadOnly {
		t.Error("Timedata.ReadOnly = false, want true")
	}
}

func TestApplyEnvOverrides_InvalidBoolIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("GRAYLOGIC_TIMEDATA_READ_ONLY", "maybe")

	applyEnvOverrides(cfg)

	if cfg.Timedata.ReadOnly {
		t.Error("ReadOnly changed by an unparsable value")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig() is invalid: %v", err)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if got := cfg.Timedata.Timezones(); len(got) != 1 || got[0] != "UTC" {
		t.Errorf("Timezones() = %v", got)
	}
}
