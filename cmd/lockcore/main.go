// Command lockcore runs the smart lock controller.
//
// It wires together the lock state machine, transition history, the
// emergency manager, the MQTT bridge, optional InfluxDB telemetry and
// the HTTP/WebSocket API, then runs until interrupted.
//
// Configuration is loaded from configs/config.yaml by default; set
// LOCKCORE_CONFIG to use a different path.
//
// Running "lockcore simulate" executes the built-in usage simulation
// against a fresh engine and prints the report to stdout instead of
// serving.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quietroom/lockcore/internal/api"
	"github.com/quietroom/lockcore/internal/emergency"
	"github.com/quietroom/lockcore/internal/history"
	"github.com/quietroom/lockcore/internal/infrastructure/config"
	"github.com/quietroom/lockcore/internal/infrastructure/database"
	"github.com/quietroom/lockcore/internal/infrastructure/influxdb"
	"github.com/quietroom/lockcore/internal/infrastructure/logging"
	"github.com/quietroom/lockcore/internal/infrastructure/mqtt"
	"github.com/quietroom/lockcore/internal/lock"
	"github.com/quietroom/lockcore/internal/simulator"

	// Register database migrations.
	_ "github.com/quietroom/lockcore/migrations"
)

// Build information, set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// defaultConfigPath is used when LOCKCORE_CONFIG is not set.
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "simulate" {
		err = runSimulation(ctx)
	} else {
		err = run(ctx)
	}
	if err != nil {
		logging.Default().Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// run starts all services and blocks until the context is cancelled.
//
// Startup order matters: config, logging, database, engine, history,
// MQTT, telemetry, emergency manager, API. Teardown runs in reverse
// via defers.
func run(ctx context.Context) error {
	bootLog := logging.Default()
	bootLog.Info("starting lockcore",
		"version", version,
		"commit", commit,
		"built", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"device", cfg.Device.ID,
	)

	// ─── Database ───

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing database", "error", err)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", db.Path())

	// ─── Lock engine ───

	engine := lock.New(lock.Config{
		MaxFailedAttempts: cfg.Lock.MaxFailedAttempts,
		LockoutDuration:   cfg.GetLockoutDuration(),
		AutoLockDelay:     cfg.GetAutoLockDelay(),
		Seed:              cfg.Lock.Seed,
	})
	engine.SetLogger(log.With("component", "lock"))

	repo := history.NewSQLiteRepository(db.DB)
	recorder := history.NewRecorder(repo, log.With("component", "history"))

	// ─── MQTT ───

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT broker: %w", err)
		}
		defer func() {
			if err := mqttClient.Close(); err != nil {
				log.Error("closing MQTT client", "error", err)
			}
		}()
		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			)
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// ─── InfluxDB (optional) ───

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			// Telemetry is best-effort; the lock keeps working without it.
			log.Warn("InfluxDB unavailable, telemetry disabled", "error", err)
		} else {
			defer func() {
				if err := influxClient.Close(); err != nil {
					log.Error("closing InfluxDB client", "error", err)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			log.Info("InfluxDB telemetry enabled", "url", cfg.InfluxDB.URL)
		}
	}

	// ─── Emergency manager ───

	emgr := emergency.NewManager(emergency.Config{
		Lock:   engine,
		Logger: log.With("component", "emergency"),
	})

	// ─── API server ───

	srv, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Logger:    log.With("component", "api"),
		Engine:    engine,
		Emergency: emgr,
		History:   repo,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	hub := srv.Hub()

	// ─── Notifier wiring ───
	//
	// The engine takes a single notifier, so fan transitions out to the
	// history recorder, the WebSocket hub, the MQTT state publisher and
	// InfluxDB telemetry.

	notifiers := []lock.Notifier{recorder, hub}
	if mqttClient != nil {
		notifiers = append(notifiers, &mqttStatePublisher{
			client:   mqttClient,
			deviceID: cfg.Device.ID,
			qos:      byte(cfg.MQTT.QoS),
			logger:   log.With("component", "mqtt-state"),
		})
	}
	if influxClient != nil {
		notifiers = append(notifiers, &influxTelemetry{
			client:   influxClient,
			deviceID: cfg.Device.ID,
		})
	}
	engine.SetNotifier(fanoutNotifier(notifiers))

	emergencyTargets := []emergency.Notifier{hub}
	if mqttClient != nil {
		emergencyTargets = append(emergencyTargets,
			emergency.NewMQTTNotifier(mqttClient, byte(cfg.MQTT.QoS), log.With("component", "emergency-mqtt")))
	}
	emgr.SetNotifier(emergencyFanout(emergencyTargets))

	// ─── Trigger bridge ───

	if mqttClient != nil {
		bridge := &triggerBridge{engine: engine, logger: log.With("component", "trigger-bridge")}
		if err := mqttClient.Subscribe(mqtt.Topics{}.AllTriggers(), byte(cfg.MQTT.QoS), bridge.handle); err != nil {
			return fmt.Errorf("subscribing to trigger topics: %w", err)
		}
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error("closing API server", "error", err)
		}
	}()

	// ─── Tick loop ───
	//
	// Drives time-based transitions: auto-lock, lockout expiry, battery
	// drain and sensor noise.

	go func() {
		ticker := time.NewTicker(cfg.GetTickInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if transitions := engine.Tick(now); len(transitions) > 0 {
					log.Debug("tick transitions", "count", len(transitions))
				}
			}
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient, srv); err != nil {
		return fmt.Errorf("startup health check: %w", err)
	}

	log.Info("lockcore running",
		"device", cfg.Device.ID,
		"state", engine.Status().CurrentState,
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// runSimulation loads config, builds a standalone engine and runs the
// comprehensive usage simulation, printing the report as JSON.
func runSimulation(ctx context.Context) error {
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("running simulation", "seed", cfg.Lock.Seed)

	engine := lock.New(lock.Config{
		MaxFailedAttempts: cfg.Lock.MaxFailedAttempts,
		LockoutDuration:   cfg.GetLockoutDuration(),
		AutoLockDelay:     cfg.GetAutoLockDelay(),
		Seed:              cfg.Lock.Seed,
	})

	sim := simulator.New(simulator.Config{
		Lock:   engine,
		Seed:   cfg.Lock.Seed,
		Logger: log.With("component", "simulator"),
	})

	report := sim.RunComprehensive()

	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(string(out))

	log.Info("simulation complete",
		"steps", report.TotalSteps,
		"accepted", report.Accepted,
		"rejected", report.Rejected,
		"final_state", report.FinalState,
	)
	return nil
}

// getConfigPath returns the config file path, honouring LOCKCORE_CONFIG.
func getConfigPath() string {
	if path := os.Getenv("LOCKCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all started services respond. Nil clients are
// skipped (disabled subsystems).
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, srv *api.Server) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	if err := srv.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// fanoutNotifier forwards each transition to every registered notifier.
type fanoutNotifier []lock.Notifier

func (f fanoutNotifier) NotifyTransition(t lock.Transition) {
	for _, n := range f {
		n.NotifyTransition(t)
	}
}

// emergencyFanout forwards emergency activations to every registered
// notifier.
type emergencyFanout []emergency.Notifier

func (f emergencyFanout) NotifyEmergency(rec emergency.Record, contacts []emergency.Contact) {
	for _, n := range f {
		n.NotifyEmergency(rec, contacts)
	}
}

// mqttStatePublisher publishes each transition to the event topic and
// keeps a retained status snapshot on the state topic.
type mqttStatePublisher struct {
	client   *mqtt.Client
	deviceID string
	qos      byte
	logger   *logging.Logger
}

// statePayload is the retained state document other systems read to
// learn the lock's current condition without subscribing to events.
type statePayload struct {
	DeviceID     string         `json:"device_id"`
	State        lock.State     `json:"state"`
	From         lock.State     `json:"previous_state"`
	BatteryLevel float64        `json:"battery_level"`
	Temperature  float64        `json:"temperature"`
	Sensors      lock.SensorSet `json:"sensors"`
	At           time.Time      `json:"at"`
}

// statePayloadFrom builds the retained snapshot from the transition
// alone. The engine delivers transitions while holding its mutex, so a
// notifier must never call back into it.
func statePayloadFrom(deviceID string, t lock.Transition) statePayload {
	return statePayload{
		DeviceID:     deviceID,
		State:        t.To,
		From:         t.From,
		BatteryLevel: t.BatteryLevel,
		Temperature:  t.Temperature,
		Sensors:      t.Sensors,
		At:           t.At,
	}
}

func (p *mqttStatePublisher) NotifyTransition(t lock.Transition) {
	event, err := json.Marshal(t)
	if err != nil {
		p.logger.Error("encoding transition", "error", err)
		return
	}
	if err := p.client.Publish(mqtt.Topics{}.Event(string(t.Event)), event, p.qos, false); err != nil {
		p.logger.Error("publishing transition", "error", err)
	}

	state, err := json.Marshal(statePayloadFrom(p.deviceID, t))
	if err != nil {
		p.logger.Error("encoding state snapshot", "error", err)
		return
	}
	if err := p.client.PublishRetained(mqtt.Topics{}.State(), state); err != nil {
		p.logger.Error("publishing state snapshot", "error", err)
	}
}

// influxTelemetry records transitions and environment readings as
// time-series points. Writes are asynchronous and best-effort.
type influxTelemetry struct {
	client   *influxdb.Client
	deviceID string
}

func (i *influxTelemetry) NotifyTransition(t lock.Transition) {
	i.client.WriteStateTransition(i.deviceID, string(t.From), string(t.To), string(t.Trigger))
	i.client.WriteEnvironment(i.deviceID, t.BatteryLevel, t.Temperature)
}

// triggerBridge dispatches MQTT trigger messages into the lock engine.
//
// The trigger kind is the final topic segment; the message payload is
// the trigger payload as JSON. An empty payload is allowed (system
// triggers such as a door sensor ping carry no fields).
type triggerBridge struct {
	engine *lock.Engine
	logger *logging.Logger
}

func (b *triggerBridge) handle(topic string, payload []byte) error {
	kind := lock.TriggerKind(topic[strings.LastIndex(topic, "/")+1:])
	if !kind.IsValid() {
		b.logger.Warn("ignoring unknown trigger kind", "topic", topic)
		return nil
	}

	var p lock.Payload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			b.logger.Warn("ignoring malformed trigger payload",
				"topic", topic,
				"error", err,
			)
			return nil
		}
	}

	result := b.engine.ProcessTrigger(kind, p)
	b.logger.Info("trigger processed",
		"kind", kind,
		"accepted", result.OK,
		"message", result.Message,
	)
	return nil
}
