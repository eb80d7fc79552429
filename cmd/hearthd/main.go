// Hearth - Home Command Dispatch & Device State Orchestration
//
// This is the main entry point for the hearthd daemon. Hearth reads
// commands from standard input, resolves them against the device
// registry, drives the matched hardware, and speaks the outcome. State
// changes are persisted to the JSON device store and fanned out to
// email, MQTT, and telemetry.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/betnix/hearth/internal/assistant"
	"github.com/betnix/hearth/internal/device"
	"github.com/betnix/hearth/internal/hardware"
	"github.com/betnix/hearth/internal/infrastructure/config"
	"github.com/betnix/hearth/internal/infrastructure/database"
	"github.com/betnix/hearth/internal/infrastructure/influxdb"
	"github.com/betnix/hearth/internal/infrastructure/logging"
	"github.com/betnix/hearth/internal/infrastructure/mqtt"
	"github.com/betnix/hearth/internal/notify"
	"github.com/betnix/hearth/internal/store"
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

// How often expired state history entries are pruned while running.
const historyPruneInterval = 24 * time.Hour

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
	log.Info("starting Hearth",
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

	// Device registry over the JSON store. A missing or corrupt store
	// degrades to an empty registry rather than refusing to start.
	deviceStore := store.NewDeviceStore(cfg.Store.DevicesPath)
	registry := device.NewRegistry(deviceStore)
	registry.SetLogger(log)

	// State history database. History is supplementary, so an unopenable
	// database downgrades to running without an audit trail.
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		log.Warn("state history unavailable", "path", cfg.Database.Path, "error", err)
	} else {
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		history := device.NewSQLiteStateHistoryRepository(db.DB)
		registry.SetHistory(history)
		log.Info("state history database connected", "path", cfg.Database.Path)

		if retention := cfg.HistoryRetention(); retention > 0 {
			pruneStateHistory(ctx, history, retention, log)
			go func() {
				ticker := time.NewTicker(historyPruneInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						pruneStateHistory(ctx, history, retention, log)
					}
				}
			}()
		}
	}

	// Hardware drivers behind a single dispatch manager.
	manager := hardware.NewManager()
	manager.Register(device.BackendKasa, hardware.NewKasaDriver(
		cfg.Hardware.Kasa.Port,
		cfg.KasaConnectTimeout(),
		cfg.KasaCommandTimeout(),
	))

	if cfg.Hardware.GPIO.Enabled {
		gpio := hardware.NewGPIODriver(cfg.Hardware.GPIO.Pins)
		if openErr := gpio.Open(); openErr != nil {
			log.Warn("gpio driver unavailable", "error", openErr)
		} else {
			defer func() {
				log.Info("releasing gpio pins")
				if closeErr := gpio.Close(); closeErr != nil {
					log.Error("error closing gpio", "error", closeErr)
				}
			}()
			manager.Register(device.BackendGPIO, gpio)
			log.Info("gpio driver initialised", "pins", len(cfg.Hardware.GPIO.Pins))
		}
	}
	registry.SetDriver(manager)

	// Email notification fanout.
	if cfg.Notify.Enabled {
		users, usersErr := store.NewUserStore(cfg.Store.UsersPath).LoadUsers()
		if usersErr != nil {
			log.Warn("user store unreadable, notifications disabled", "error", usersErr)
		} else {
			providers := make(map[string]notify.Provider, len(cfg.Notify.Providers))
			for domain, p := range cfg.Notify.Providers {
				providers[domain] = notify.Provider{Host: p.Host, Port: p.Port}
			}
			notifier := notify.NewNotifier(providers, users, cfg.NotifySendTimeout())
			notifier.SetLogger(log)
			registry.SetNotifier(notifier)
			log.Info("notification fanout initialised", "recipients", len(users))
		}
	} else {
		log.Info("notifications disabled")
	}

	// MQTT state publication (optional side channel).
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			log.Warn("MQTT unavailable, state publication disabled", "error", mqttErr)
		} else {
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			mqttClient.SetOnConnect(func() {
				log.Info("MQTT reconnected")
			})
			mqttClient.SetOnDisconnect(func(err error) {
				log.Warn("MQTT disconnected", "error", err)
			})
			registry.AddEventSink(&mqttStateSink{client: mqttClient, log: log})
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB telemetry (optional side channel).
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			log.Warn("InfluxDB unavailable, telemetry disabled", "error", influxErr)
		} else {
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			registry.AddEventSink(&influxStateSink{client: influxClient})
			log.Info("InfluxDB connected",
				"url", cfg.InfluxDB.URL,
				"org", cfg.InfluxDB.Org,
				"bucket", cfg.InfluxDB.Bucket,
			)
		}
	} else {
		log.Info("InfluxDB disabled")
	}

	// Populate the registry now that every collaborator is attached.
	registry.Load()
	log.Info("device registry initialised", "devices", registry.Count())

	// Speech output: console always, TTS engine when configured.
	speaker := buildSpeaker(cfg.Assistant.Speech.Command)

	// Conversational fallback for unmatched commands.
	var responder assistant.Responder
	if cfg.Assistant.Responder.URL != "" {
		responder = assistant.NewHTTPResponder(cfg.Assistant.Responder.URL, cfg.ResponderTimeout())
		log.Info("responder configured", "url", cfg.Assistant.Responder.URL)
	} else {
		responder = assistant.StaticResponder{}
	}

	// Assemble the assistant and its listener loop.
	a := assistant.NewAssistant(registry, responder, speaker)
	a.SetLogger(log)

	if cfg.Assistant.Greeting != "" {
		if sayErr := speaker.Say(ctx, cfg.Assistant.Greeting); sayErr != nil {
			log.Warn("greeting failed", "error", sayErr)
		}
	}

	listener := assistant.NewListener(a, cfg.Assistant.WakePhrase)
	listener.SetLogger(log)

	listenerDone := make(chan error, 1)
	go func() {
		listenerDone <- listener.Run(ctx, os.Stdin)
	}()

	log.Info("initialisation complete, listening for commands",
		"wake_phrase", cfg.Assistant.WakePhrase,
	)

	// Wait for a shutdown signal or end of input.
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
	case err := <-listenerDone:
		if err != nil && err != context.Canceled {
			log.Error("listener stopped", "error", err)
		} else {
			log.Info("input closed, shutting down")
		}
	}

	log.Info("Hearth stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HEARTH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// pruneStateHistory drops history entries older than the retention
// window. Pruning is housekeeping; failures are logged and ignored.
func pruneStateHistory(ctx context.Context, history *device.SQLiteStateHistoryRepository, retention time.Duration, log *logging.Logger) {
	pruned, err := history.PruneHistory(ctx, retention)
	if err != nil {
		log.Warn("pruning state history", "error", err)
		return
	}
	if pruned > 0 {
		log.Info("pruned state history", "entries", pruned, "retention", retention.String())
	}
}

// buildSpeaker assembles the speech output chain: console output always,
// plus an external TTS command when configured.
func buildSpeaker(ttsCommand string) assistant.Speaker {
	console := assistant.NewConsoleSpeaker(os.Stdout)
	if tts := assistant.NewExecSpeaker(ttsCommand); tts != nil {
		return assistant.MultiSpeaker{console, tts}
	}
	return console
}

// mqttStateSink adapts the infrastructure MQTT client to the registry's
// EventSink interface, publishing each state change retained to the
// device's canonical state topic.
type mqttStateSink struct {
	client *mqtt.Client
	log    *logging.Logger
}

// StateChanged implements device.EventSink.
func (s *mqttStateSink) StateChanged(ev device.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Error("encoding state event", "error", err)
		return
	}
	topic := mqtt.Topics{}.DeviceState(ev.Room, ev.Type)
	if err := s.client.PublishRetained(topic, payload); err != nil {
		s.log.Warn("publishing state event", "topic", topic, "error", err)
	}
}

// influxStateSink adapts the InfluxDB client to the registry's EventSink
// interface. Writes are non-blocking; failures surface via SetOnError.
type influxStateSink struct {
	client *influxdb.Client
}

// StateChanged implements device.EventSink.
func (s *influxStateSink) StateChanged(ev device.Event) {
	s.client.WriteStateChange(ev.Room, ev.Type, ev.On, ev.At)
}
