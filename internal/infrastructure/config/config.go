package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Hearth.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Hardware  HardwareConfig  `yaml:"hardware"`
	Notify    NotifyConfig    `yaml:"notify"`
	Assistant AssistantConfig `yaml:"assistant"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig contains the JSON file store locations.
//
// The device store is a mapping of room -> device type -> device entry;
// the user store is an ordered list of notification recipients. Both files
// are optional: a missing or unreadable file degrades to an empty
// collection at startup.
type StoreConfig struct {
	DevicesPath string `yaml:"devices_path"`
	UsersPath   string `yaml:"users_path"`
}

// DatabaseConfig contains SQLite settings for the state history database.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// HistoryRetentionDays bounds how long state history entries are
	// kept before being pruned. Zero disables pruning.
	HistoryRetentionDays int `yaml:"history_retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
// The broker is optional; when disabled, state-change events are simply
// not published.
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

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings for optional
// state-change telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// HardwareConfig contains settings for the hardware drivers.
type HardwareConfig struct {
	Kasa KasaConfig `yaml:"kasa"`
	GPIO GPIOConfig `yaml:"gpio"`
}

// KasaConfig contains settings for the networked smart-device driver.
type KasaConfig struct {
	// Port is the TCP port the smart home protocol listens on.
	Port int `yaml:"port"`

	// ConnectTimeout bounds the reachability check (seconds).
	ConnectTimeout int `yaml:"connect_timeout"`

	// CommandTimeout bounds a full control exchange (seconds).
	CommandTimeout int `yaml:"command_timeout"`
}

// GPIOConfig contains settings for the local-pin driver.
type GPIOConfig struct {
	Enabled bool `yaml:"enabled"`

	// Pins maps symbolic pin names (stored on devices) to BCM pin numbers.
	// Example: {front_door: 17, living_light: 27}
	Pins map[string]int `yaml:"pins"`
}

// NotifyConfig contains email notification settings.
type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`

	// Providers maps a recipient email domain to its SMTP endpoint.
	// A recipient whose domain is absent from this table is skipped.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// SendTimeout bounds a single delivery attempt (seconds).
	SendTimeout int `yaml:"send_timeout"`
}

// ProviderConfig is an SMTP submission endpoint for one email provider.
type ProviderConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AssistantConfig contains voice-assistant settings.
type AssistantConfig struct {
	// WakePhrase gates command handling; input without it is ignored.
	// Empty disables wake-phrase filtering (every line is a command).
	WakePhrase string `yaml:"wake_phrase"`

	// Greeting is spoken once at startup.
	Greeting string `yaml:"greeting"`

	Responder ResponderConfig `yaml:"responder"`
	Speech    SpeechConfig    `yaml:"speech"`
}

// ResponderConfig points at the external fallback text-generation service.
type ResponderConfig struct {
	// URL of the text-in/text-out endpoint. Empty selects the static
	// fallback reply.
	URL string `yaml:"url"`

	// Timeout bounds a generation request (seconds).
	Timeout int `yaml:"timeout"`
}

// SpeechConfig configures speech output.
type SpeechConfig struct {
	// Command is the external TTS command to pipe spoken text into
	// (e.g. "espeak"). Empty means console output only.
	Command string `yaml:"command"`
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
// Environment variables follow the pattern: HEARTH_SECTION_KEY
// For example: HEARTH_DATABASE_PATH, HEARTH_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

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

// Default returns a Config with sensible defaults.
//
// The notification provider table defaults to the well-known consumer
// providers; sites add their own under notify.providers.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			DevicesPath: "./data/devices.json",
			UsersPath:   "./data/users.json",
		},
		Database: DatabaseConfig{
			Path:                 "./data/hearth.db",
			WALMode:              true,
			BusyTimeout:          5,
			HistoryRetentionDays: 90,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hearth-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Hardware: HardwareConfig{
			Kasa: KasaConfig{
				Port:           9999,
				ConnectTimeout: 2,
				CommandTimeout: 5,
			},
			GPIO: GPIOConfig{
				Enabled: false,
				Pins:    map[string]int{},
			},
		},
		Notify: NotifyConfig{
			Enabled: true,
			Providers: map[string]ProviderConfig{
				"gmail.com":   {Host: "smtp.gmail.com", Port: 587},
				"betnix.com":  {Host: "smtp.betnix.com", Port: 587},
				"yahoo.com":   {Host: "smtp.mail.yahoo.com", Port: 587},
				"outlook.com": {Host: "smtp.office365.com", Port: 587},
				"hotmail.com": {Host: "smtp.live.com", Port: 587},
			},
			SendTimeout: 10,
		},
		Assistant: AssistantConfig{
			WakePhrase: "hey betnix",
			Greeting:   "Betnix Home Assistant ready. Say 'Hey Betnix' to start.",
			Responder: ResponderConfig{
				Timeout: 15,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HEARTH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Store
	if v := os.Getenv("HEARTH_STORE_DEVICES_PATH"); v != "" {
		cfg.Store.DevicesPath = v
	}
	if v := os.Getenv("HEARTH_STORE_USERS_PATH"); v != "" {
		cfg.Store.UsersPath = v
	}

	// Database
	if v := os.Getenv("HEARTH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("HEARTH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HEARTH_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("HEARTH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HEARTH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("HEARTH_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Assistant
	if v := os.Getenv("HEARTH_RESPONDER_URL"); v != "" {
		cfg.Assistant.Responder.URL = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Store.DevicesPath == "" {
		errs = append(errs, "store.devices_path is required")
	}
	if c.Store.UsersPath == "" {
		errs = append(errs, "store.users_path is required")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.HistoryRetentionDays < 0 {
		errs = append(errs, "database.history_retention_days must be non-negative")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	}

	if c.Hardware.Kasa.Port < 1 || c.Hardware.Kasa.Port > 65535 {
		errs = append(errs, "hardware.kasa.port must be between 1 and 65535")
	}
	if c.Hardware.Kasa.ConnectTimeout <= 0 {
		errs = append(errs, "hardware.kasa.connect_timeout must be positive")
	}

	for name, pin := range c.Hardware.GPIO.Pins {
		if pin < 0 {
			errs = append(errs, fmt.Sprintf("hardware.gpio.pins.%s must be non-negative", name))
		}
	}

	for domain, provider := range c.Notify.Providers {
		if provider.Host == "" {
			errs = append(errs, fmt.Sprintf("notify.providers.%s.host is required", domain))
		}
		if provider.Port < 1 || provider.Port > 65535 {
			errs = append(errs, fmt.Sprintf("notify.providers.%s.port must be between 1 and 65535", domain))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// KasaConnectTimeout returns the kasa reachability timeout as a Duration.
func (c *Config) KasaConnectTimeout() time.Duration {
	return time.Duration(c.Hardware.Kasa.ConnectTimeout) * time.Second
}

// KasaCommandTimeout returns the kasa control-exchange timeout as a Duration.
func (c *Config) KasaCommandTimeout() time.Duration {
	return time.Duration(c.Hardware.Kasa.CommandTimeout) * time.Second
}

// NotifySendTimeout returns the per-recipient delivery timeout as a Duration.
func (c *Config) NotifySendTimeout() time.Duration {
	return time.Duration(c.Notify.SendTimeout) * time.Second
}

// ResponderTimeout returns the fallback responder timeout as a Duration.
func (c *Config) ResponderTimeout() time.Duration {
	return time.Duration(c.Assistant.Responder.Timeout) * time.Second
}

// HistoryRetention returns the state history retention window as a
// Duration. Zero means entries are kept forever.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.Database.HistoryRetentionDays) * 24 * time.Hour
}
