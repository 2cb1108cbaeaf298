package influxdb_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/quietroom/lockcore/internal/infrastructure/config"
	"github.com/quietroom/lockcore/internal/infrastructure/influxdb"
)

// testConfig matches the local dev stack in docker-compose.yml.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "lockcore-dev-token",
		Org:           "lockcore",
		Bucket:        "metrics",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// connectOrSkip returns a connected client, skipping the test when no
// local InfluxDB is reachable and RUN_INTEGRATION is unset.
func connectOrSkip(t *testing.T) *influxdb.Client {
	t.Helper()

	client, err := influxdb.Connect(testConfig())
	if err != nil {
		if os.Getenv("RUN_INTEGRATION") != "" {
			t.Fatalf("Connect() error = %v", err)
		}
		t.Skip("InfluxDB not available, skipping integration test")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// captureWriteError registers an error callback and returns a getter
// that is safe to call from the test goroutine.
func captureWriteError(client *influxdb.Client) func() error {
	var (
		mu       sync.Mutex
		writeErr error
	)
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})
	return func() error {
		mu.Lock()
		defer mu.Unlock()
		return writeErr
	}
}

func flushAndCheck(t *testing.T, client *influxdb.Client, lastErr func() error) {
	t.Helper()
	client.Flush()
	time.Sleep(100 * time.Millisecond) // let the error drain run
	if err := lastErr(); err != nil {
		t.Errorf("write error = %v", err)
	}
}

func TestConnect(t *testing.T) {
	client := connectOrSkip(t)
	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnectDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	if _, err := influxdb.Connect(cfg); !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnectUnreachableServer(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	if _, err := influxdb.Connect(cfg); err == nil {
		t.Fatal("Connect() should fail against an unreachable server")
	}
}

func TestConnectDefaultsBatchSettings(t *testing.T) {
	if _, err := influxdb.Connect(testConfig()); err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}

	for _, batch := range []int{0, -5} {
		cfg := testConfig()
		cfg.BatchSize = batch
		cfg.FlushInterval = batch

		client, err := influxdb.Connect(cfg)
		if err != nil {
			t.Fatalf("Connect() with batch size %d: error = %v", batch, err)
		}
		client.Close()
	}
}

func TestHealthCheck(t *testing.T) {
	client := connectOrSkip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	cancelled, cancel2 := context.WithCancel(context.Background())
	cancel2()
	if err := client.HealthCheck(cancelled); err == nil {
		t.Error("HealthCheck() should fail with a cancelled context")
	}
}

func TestWriteStateTransition(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := captureWriteError(client)

	client.WriteStateTransition("lock-test-001", "LOCKED", "UNLOCKED", "keypad")
	flushAndCheck(t, client, lastErr)
}

func TestWriteEnvironment(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := captureWriteError(client)

	client.WriteEnvironment("lock-test-002", 84.5, 22.1)
	flushAndCheck(t, client, lastErr)
}

func TestWriteTriggerResult(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := captureWriteError(client)

	client.WriteTriggerResult("lock-test-003", "keypad", "ok", true)
	flushAndCheck(t, client, lastErr)
}

func TestWritePoint(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := captureWriteError(client)

	client.WritePoint(
		"custom_measurement",
		map[string]string{"source": "test"},
		map[string]interface{}{"value": 99.9, "count": 5},
	)
	flushAndCheck(t, client, lastErr)
}

func TestWritePointWithTime(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := captureWriteError(client)

	client.WritePointWithTime(
		"custom_measurement",
		map[string]string{"source": "test-with-time"},
		map[string]interface{}{"value": 88.8},
		time.Now().Add(-time.Hour),
	)
	flushAndCheck(t, client, lastErr)
}

func TestClose(t *testing.T) {
	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}

	client.WriteEnvironment("lock-close-test", 80.0, 21.0)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}
