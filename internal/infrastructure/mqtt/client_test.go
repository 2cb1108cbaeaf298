package mqtt

import (
	"strings"
	"sync"
	"testing"

	"github.com/quietroom/lockcore/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "lockcore-test",
			TLS:      false,
		},
		Auth: config.MQTTAuthConfig{
			Username: "",
			Password: "",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// =============================================================================
// Client Options
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("Servers = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://127.0.0.1:1883" {
		t.Errorf("broker URL = %q, want tcp://127.0.0.1:1883", got)
	}
	if opts.ClientID != "lockcore-test" {
		t.Errorf("ClientID = %q, want lockcore-test", opts.ClientID)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("scheme = %q, want ssl", got)
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig = nil, want configured")
	}
}

func TestBuildClientOptionsAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "lock"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if opts.Username != "lock" {
		t.Errorf("Username = %q, want lock", opts.Username)
	}
	if opts.Password != "secret" {
		t.Errorf("Password = %q, want secret", opts.Password)
	}
}

func TestLWTConfigured(t *testing.T) {
	cfg := testConfig()
	opts := buildClientOptions(cfg)

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != "lockcore/system/status" {
		t.Errorf("WillTopic = %q, want lockcore/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}
	payload := string(opts.WillPayload)
	if !strings.Contains(payload, `"status":"offline"`) {
		t.Errorf("will payload missing offline status: %s", payload)
	}
	if !strings.Contains(payload, `"reason":"unexpected_disconnect"`) {
		t.Errorf("will payload missing reason: %s", payload)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := statusJSON("online", "lockcore-test", "")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload = %s", online)
	}
	if !strings.Contains(online, `"client_id":"lockcore-test"`) {
		t.Errorf("online payload missing client ID: %s", online)
	}
	if strings.Contains(online, `"reason"`) {
		t.Errorf("online payload should omit empty reason: %s", online)
	}

	offline := statusJSON("offline", "lockcore-test", "graceful_shutdown")
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", offline)
	}
}

// =============================================================================
// Validation (no broker required)
// =============================================================================

func TestPublishValidation(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}

	if err := client.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("empty topic: err = %v, want ErrInvalidTopic", err)
	}

	if err := client.Publish("lockcore/state", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("invalid QoS: err = %v, want ErrInvalidQoS", err)
	}

	// Valid arguments on a disconnected client must fail fast.
	if err := client.Publish("lockcore/state", []byte("x"), 1, false); err != ErrNotConnected {
		t.Errorf("disconnected: err = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}

	if err := client.Subscribe("", 1, func(string, []byte) error { return nil }); err != ErrInvalidTopic {
		t.Errorf("empty topic: err = %v, want ErrInvalidTopic", err)
	}

	if err := client.Subscribe("lockcore/trigger/+", 3, func(string, []byte) error { return nil }); err != ErrInvalidQoS {
		t.Errorf("invalid QoS: err = %v, want ErrInvalidQoS", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

// =============================================================================
// Topic Builders
// =============================================================================

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"trigger keypad", topics.Trigger("keypad"), "lockcore/trigger/keypad"},
		{"trigger sensor", topics.Trigger("sensor"), "lockcore/trigger/sensor"},
		{"all triggers", topics.AllTriggers(), "lockcore/trigger/+"},
		{"state", topics.State(), "lockcore/state"},
		{"event", topics.Event("transition"), "lockcore/event/transition"},
		{"all events", topics.AllEvents(), "lockcore/event/+"},
		{"emergency fire", topics.Emergency("fire"), "lockcore/emergency/fire"},
		{"all emergencies", topics.AllEmergencies(), "lockcore/emergency/+"},
		{"system status", topics.SystemStatus(), "lockcore/system/status"},
		{"system time", topics.SystemTime(), "lockcore/system/time"},
		{"system shutdown", topics.SystemShutdown(), "lockcore/system/shutdown"},
		{"all topics", topics.AllTopics(), "lockcore/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

// =============================================================================
// Handler Wrapping
// =============================================================================

func TestSetLogger(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}

	logger := &captureLogger{}
	client.SetLogger(logger)

	if client.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger()")
	}

	client.SetLogger(nil)
	if client.getLogger() != nil {
		t.Error("getLogger() should be nil after SetLogger(nil)")
	}
}

// captureLogger implements Logger for testing.
type captureLogger struct {
	errors []string
	warns  []string
	mu     sync.Mutex
}

func (l *captureLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *captureLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}
