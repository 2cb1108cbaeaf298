package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a lockcore instance. Values are
// resolved in three layers: hardcoded defaults, then the YAML file,
// then LOCKCORE_* environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Lock      LockConfig      `yaml:"lock"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// DeviceConfig identifies the physical lock this instance controls.
type DeviceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// LockConfig holds the state machine tunables. Durations are in
// seconds; use the Get* helpers for time.Duration values.
type LockConfig struct {
	// MaxFailedAttempts is the failed-authentication count that fires
	// the lockout event.
	MaxFailedAttempts int `yaml:"max_failed_attempts"`

	// LockoutDuration is how long a lockout lasts.
	LockoutDuration int `yaml:"lockout_duration"`

	// AutoLockDelay is how long after an unlock the auto-lock becomes
	// eligible.
	AutoLockDelay int `yaml:"auto_lock_delay"`

	// TickInterval is how often the runtime drives time-based
	// transitions.
	TickInterval int `yaml:"tick_interval"`

	// Seed fixes the environmental noise source. Zero seeds from the
	// clock.
	Seed int64 `yaml:"seed"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig tunes the reconnect backoff. MaxAttempts of zero
// means retry forever.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig holds the live event stream settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig holds the telemetry sink settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// JWTConfig holds token signing settings. TTLs are in minutes.
type JWTConfig struct {
	Secret          string `yaml:"secret"`
	AccessTokenTTL  int    `yaml:"access_token_ttl"`
	RefreshTokenTTL int    `yaml:"refresh_token_ttl"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// Load reads the YAML file at path over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if err := readYAML(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Device = DeviceConfig{ID: "lock-001", Name: "Front Door", Timezone: "UTC"}

	cfg.Lock.MaxFailedAttempts = 3
	cfg.Lock.LockoutDuration = 300
	cfg.Lock.AutoLockDelay = 300
	cfg.Lock.TickInterval = 5

	cfg.Database.Path = "./data/lockcore.db"
	cfg.Database.WALMode = true
	cfg.Database.BusyTimeout = 5

	cfg.MQTT.Broker = MQTTBrokerConfig{Host: "localhost", Port: 1883, ClientID: "lockcore"}
	cfg.MQTT.QoS = 1
	cfg.MQTT.Reconnect = MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 60}

	cfg.API.Host = "0.0.0.0"
	cfg.API.Port = 8080
	cfg.API.Timeouts = APITimeoutConfig{Read: 30, Write: 30, Idle: 60}

	cfg.WebSocket = WebSocketConfig{Path: "/ws", MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}

	cfg.Logging = LoggingConfig{Level: "info", Format: "json", Output: "stdout"}

	cfg.Security.JWT.AccessTokenTTL = 15
	cfg.Security.JWT.RefreshTokenTTL = 1440
	cfg.Security.RateLimit = RateLimitConfig{Enabled: true, RequestsPerMinute: 100}

	return cfg
}

// applyEnvOverrides lets deployment-specific values, secrets in
// particular, stay out of the YAML file. Variables follow the pattern
// LOCKCORE_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"LOCKCORE_DATABASE_PATH":  &cfg.Database.Path,
		"LOCKCORE_MQTT_HOST":      &cfg.MQTT.Broker.Host,
		"LOCKCORE_MQTT_USERNAME":  &cfg.MQTT.Auth.Username,
		"LOCKCORE_MQTT_PASSWORD":  &cfg.MQTT.Auth.Password,
		"LOCKCORE_API_HOST":       &cfg.API.Host,
		"LOCKCORE_INFLUXDB_TOKEN": &cfg.InfluxDB.Token,
		"LOCKCORE_JWT_SECRET":     &cfg.Security.JWT.Secret,
	}
	for name, target := range overrides {
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}
}

// minJWTSecretLength guards against weak HMAC keys. The API controls a
// physical lock; a guessable secret lets an attacker mint tokens and
// open doors.
const minJWTSecretLength = 32

// Validate reports every configuration problem at once rather than
// failing on the first.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Device.ID == "" {
		add("device.id is required")
	}
	if c.Database.Path == "" {
		add("database.path is required")
	}

	for name, v := range map[string]int{
		"lock.max_failed_attempts": c.Lock.MaxFailedAttempts,
		"lock.lockout_duration":    c.Lock.LockoutDuration,
		"lock.auto_lock_delay":     c.Lock.AutoLockDelay,
		"lock.tick_interval":       c.Lock.TickInterval,
	} {
		if v < 1 {
			add("%s must be at least 1", name)
		}
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		add("mqtt.qos must be 0, 1, or 2")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		add("api.port must be between 1 and 65535")
	}

	switch {
	case c.Security.JWT.Secret == "":
		add("security.jwt.secret is required (set LOCKCORE_JWT_SECRET environment variable)")
	case len(c.Security.JWT.Secret) < minJWTSecretLength:
		add("security.jwt.secret must be at least %d characters", minJWTSecretLength)
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// GetReadTimeout returns the API read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetLockoutDuration returns the lockout duration.
func (c *Config) GetLockoutDuration() time.Duration {
	return time.Duration(c.Lock.LockoutDuration) * time.Second
}

// GetAutoLockDelay returns the auto-lock delay.
func (c *Config) GetAutoLockDelay() time.Duration {
	return time.Duration(c.Lock.AutoLockDelay) * time.Second
}

// GetTickInterval returns the tick interval.
func (c *Config) GetTickInterval() time.Duration {
	return time.Duration(c.Lock.TickInterval) * time.Second
}
