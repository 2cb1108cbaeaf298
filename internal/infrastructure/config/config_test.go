package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validJWTSecret meets the 32-character minimum requirement.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

// writeConfigFile puts content into a temp config.yaml and returns its
// path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// validConfig returns a Config that passes Validate. Tests mutate
// single fields to exercise individual rules.
func validConfig() *Config {
	return &Config{
		Device: DeviceConfig{ID: "lock-001"},
		Lock: LockConfig{
			MaxFailedAttempts: 3,
			LockoutDuration:   300,
			AutoLockDelay:     300,
			TickInterval:      5,
		},
		Database: DatabaseConfig{Path: "/data/lockcore.db"},
		MQTT:     MQTTConfig{QoS: 1},
		API:      APIConfig{Port: 8080},
		Security: SecurityConfig{JWT: JWTConfig{Secret: validJWTSecret}},
	}
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfigFile(t, `
device:
  id: "test-lock"
lock:
  max_failed_attempts: 5
  lockout_duration: 120
database:
  path: "/tmp/test.db"
  wal_mode: true
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
security:
  jwt:
    secret: "`+validJWTSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "test-lock" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "test-lock")
	}
	if cfg.Lock.MaxFailedAttempts != 5 {
		t.Errorf("Lock.MaxFailedAttempts = %d, want 5", cfg.Lock.MaxFailedAttempts)
	}
	if cfg.Lock.LockoutDuration != 120 {
		t.Errorf("Lock.LockoutDuration = %d, want 120", cfg.Lock.LockoutDuration)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Lock.AutoLockDelay != 300 {
		t.Errorf("Lock.AutoLockDelay = %d, want default 300", cfg.Lock.AutoLockDelay)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoadFailures(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}

	bad := writeConfigFile(t, "invalid: [yaml: content")
	if _, err := Load(bad); err == nil {
		t.Error("Load() should fail for malformed YAML")
	}

	invalid := writeConfigFile(t, `
device:
  id: ""
database:
  path: "/tmp/test.db"
`)
	if _, err := Load(invalid); err == nil {
		t.Error("Load() should fail validation for empty device.id")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing device ID", func(c *Config) { c.Device.ID = "" }, true},
		{"zero max failed attempts", func(c *Config) { c.Lock.MaxFailedAttempts = 0 }, true},
		{"zero lockout duration", func(c *Config) { c.Lock.LockoutDuration = 0 }, true},
		{"zero auto lock delay", func(c *Config) { c.Lock.AutoLockDelay = 0 }, true},
		{"zero tick interval", func(c *Config) { c.Lock.TickInterval = 0 }, true},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"port too low", func(c *Config) { c.API.Port = 0 }, true},
		{"port too high", func(c *Config) { c.API.Port = 70000 }, true},
		{"missing JWT secret", func(c *Config) { c.Security.JWT.Secret = "" }, true},
		{"short JWT secret", func(c *Config) { c.Security.JWT.Secret = "short" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := validConfig()
	cfg.API.Timeouts = APITimeoutConfig{Read: 30, Write: 45, Idle: 60}

	checks := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"GetReadTimeout", cfg.GetReadTimeout(), 30 * time.Second},
		{"GetWriteTimeout", cfg.GetWriteTimeout(), 45 * time.Second},
		{"GetIdleTimeout", cfg.GetIdleTimeout(), 60 * time.Second},
		{"GetLockoutDuration", cfg.GetLockoutDuration(), 300 * time.Second},
		{"GetAutoLockDelay", cfg.GetAutoLockDelay(), 300 * time.Second},
		{"GetTickInterval", cfg.GetTickInterval(), 5 * time.Second},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s() = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("LOCKCORE_DATABASE_PATH", "/custom/path.db")
	t.Setenv("LOCKCORE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("LOCKCORE_MQTT_USERNAME", "testuser")
	t.Setenv("LOCKCORE_MQTT_PASSWORD", "testpass")
	t.Setenv("LOCKCORE_API_HOST", "192.168.1.1")
	t.Setenv("LOCKCORE_INFLUXDB_TOKEN", "influx-token")
	t.Setenv("LOCKCORE_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	got := map[string]string{
		"Database.Path":       cfg.Database.Path,
		"MQTT.Broker.Host":    cfg.MQTT.Broker.Host,
		"MQTT.Auth.Username":  cfg.MQTT.Auth.Username,
		"MQTT.Auth.Password":  cfg.MQTT.Auth.Password,
		"API.Host":            cfg.API.Host,
		"InfluxDB.Token":      cfg.InfluxDB.Token,
		"Security.JWT.Secret": cfg.Security.JWT.Secret,
	}
	want := map[string]string{
		"Database.Path":       "/custom/path.db",
		"MQTT.Broker.Host":    "mqtt.example.com",
		"MQTT.Auth.Username":  "testuser",
		"MQTT.Auth.Password":  "testpass",
		"API.Host":            "192.168.1.1",
		"InfluxDB.Token":      "influx-token",
		"Security.JWT.Secret": "jwt-secret",
	}
	for field, w := range want {
		if got[field] != w {
			t.Errorf("%s = %q, want %q", field, got[field], w)
		}
	}
}

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Device.ID == "" {
		t.Error("default Device.ID should not be empty")
	}
	if cfg.Database.Path == "" {
		t.Error("default Database.Path should not be empty")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("default MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("default API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Lock.MaxFailedAttempts != 3 {
		t.Errorf("default Lock.MaxFailedAttempts = %d, want 3", cfg.Lock.MaxFailedAttempts)
	}
	// Defaults deliberately omit the JWT secret; Validate must refuse
	// to run without one.
	if err := cfg.Validate(); err == nil {
		t.Error("defaults alone should not pass Validate")
	}
}
