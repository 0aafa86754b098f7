package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is everything a padlink process reads at startup: defaults,
// overlaid by the YAML file, overlaid by PADLINK_* environment
// variables.
type Config struct {
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Serial    SerialConfig    `yaml:"serial"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	History   HistoryConfig   `yaml:"history"`
	Database  DatabaseConfig  `yaml:"database"`
	Songs     SongsConfig     `yaml:"songs"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Watch     WatchConfig     `yaml:"watch"`
}

// APIConfig holds the HTTP listener settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig sets the server timeouts, in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig is the cross-origin allowlist for the HTTP API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig tunes the push connections.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// SerialConfig holds device connection settings.
type SerialConfig struct {
	// DefaultPort is used when a connect request does not name a port.
	DefaultPort string `yaml:"default_port"`
	DefaultBaud int    `yaml:"default_baud"`

	// ReadTimeoutMs bounds each blocking read; it is also the interval at
	// which the reader loop rechecks the connection handle, so disconnects
	// are observed within one timeout.
	ReadTimeoutMs int `yaml:"read_timeout_ms"`

	// AutoConnect opens DefaultPort at startup.
	AutoConnect bool `yaml:"auto_connect"`

	Pulse PulseConfig `yaml:"pulse"`
}

// PulseConfig controls press-pulse interpretation of a lone "1" line.
// When disabled, a single 0/1 character is a one-button state update.
type PulseConfig struct {
	Enabled bool `yaml:"enabled"`
	Button  int  `yaml:"button"`
}

// BroadcastConfig holds event fan-out settings.
type BroadcastConfig struct {
	// QueueSize bounds the reader-to-consumer hand-off queue.
	QueueSize int `yaml:"queue_size"`
	// SubscriberBuffer is the per-subscriber channel capacity.
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

// HistoryConfig sizes the in-memory ring of recent events.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// DatabaseConfig locates the SQLite file and sets its pragmas.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// SongsConfig locates the song library on disk.
type SongsConfig struct {
	Directory string `yaml:"directory"`
	MaxCount  int    `yaml:"max_count"`
}

// ArchiveConfig controls long-term event persistence.
type ArchiveConfig struct {
	Enabled       bool `yaml:"enabled"`
	RetentionDays int  `yaml:"retention_days"`
}

// UpstreamConfig gathers the outbound HTTP service settings.
type UpstreamConfig struct {
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Weather        WeatherConfig     `yaml:"weather"`
	Placeholder    PlaceholderConfig `yaml:"placeholder"`
	Gemini         GeminiConfig      `yaml:"gemini"`
	ElevenLabs     ElevenLabsConfig  `yaml:"elevenlabs"`
}

// WeatherConfig carries the OpenWeatherMap endpoint and key.
type WeatherConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// PlaceholderConfig carries the JSONPlaceholder endpoint.
type PlaceholderConfig struct {
	BaseURL string `yaml:"base_url"`
}

// GeminiConfig carries the Gemini endpoint, key and model selection.
type GeminiConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// ElevenLabsConfig carries the ElevenLabs endpoint and key.
type ElevenLabsConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// MQTTConfig wires the bridge to a broker. Disabled by default.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig identifies the broker endpoint.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig is optional username/password authentication.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig shapes the retry backoff, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig points telemetry at an InfluxDB 2.x bucket.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig selects level, format and destination for log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// WatchConfig controls configuration hot-reload.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load builds the configuration: defaults first, then the YAML file at
// path, then PADLINK_* environment overrides on top. The result is
// validated before it is returned.
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

// defaultConfig returns the baseline settings a bare padlink starts
// with. Everything optional (MQTT, InfluxDB, archive, pulse mode)
// starts disabled.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8001,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{
					"http://localhost:3000",
					"http://localhost:5173",
				},
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Serial: SerialConfig{
			DefaultBaud:   115200,
			ReadTimeoutMs: 100,
			Pulse: PulseConfig{
				Enabled: false,
				Button:  0,
			},
		},
		Broadcast: BroadcastConfig{
			QueueSize:        1000,
			SubscriberBuffer: 256,
		},
		History: HistoryConfig{
			Capacity: 200,
		},
		Database: DatabaseConfig{
			Path:        "./data/padlink.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Songs: SongsConfig{
			Directory: "./data/songs",
			MaxCount:  200,
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			RetentionDays: 30,
		},
		Upstream: UpstreamConfig{
			TimeoutSeconds: 10,
			Weather: WeatherConfig{
				BaseURL: "https://api.openweathermap.org",
			},
			Placeholder: PlaceholderConfig{
				BaseURL: "https://jsonplaceholder.typicode.com",
			},
			Gemini: GeminiConfig{
				BaseURL: "https://generativelanguage.googleapis.com",
				Model:   "gemini-3-flash-preview",
			},
			ElevenLabs: ElevenLabsConfig{
				BaseURL: "https://api.elevenlabs.io",
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "padlink-bridge",
			},
			QoS:         1,
			TopicPrefix: "padlink",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides lets the environment override file values. Names
// follow PADLINK_SECTION_KEY, e.g. PADLINK_DATABASE_PATH.
func applyEnvOverrides(cfg *Config) {
	envString("PADLINK_API_HOST", &cfg.API.Host)
	envInt("PADLINK_API_PORT", &cfg.API.Port)

	envString("PADLINK_SERIAL_PORT", &cfg.Serial.DefaultPort)
	envInt("PADLINK_SERIAL_BAUD", &cfg.Serial.DefaultBaud)

	envString("PADLINK_DATABASE_PATH", &cfg.Database.Path)
	envString("PADLINK_SONGS_DIRECTORY", &cfg.Songs.Directory)

	envString("PADLINK_MQTT_HOST", &cfg.MQTT.Broker.Host)
	envString("PADLINK_MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	envString("PADLINK_MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	envString("PADLINK_INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	// The unprefixed names are the ones the upstream services document,
	// kept as fallbacks for operator convenience.
	if v := firstEnv("PADLINK_WEATHER_API_KEY", "OPENWEATHER_API_KEY"); v != "" {
		cfg.Upstream.Weather.APIKey = v
	}
	if v := firstEnv("PADLINK_GEMINI_API_KEY", "GEMINI_API_KEY"); v != "" {
		cfg.Upstream.Gemini.APIKey = v
	}
	if v := firstEnv("PADLINK_ELEVENLABS_API_KEY", "ELEVENLABS_API_KEY"); v != "" {
		cfg.Upstream.ElevenLabs.APIKey = v
	}
}

// envString copies the named variable into dst when it is set.
func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// envInt parses the named variable into dst. Unset or non-numeric
// values leave dst alone.
func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// firstEnv returns the first non-empty value among the named variables.
func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate reports every problem it finds in one error rather than
// stopping at the first.
func (c *Config) Validate() error {
	var errs []string

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Serial.DefaultBaud <= 0 {
		errs = append(errs, "serial.default_baud must be positive")
	}
	if c.Serial.ReadTimeoutMs <= 0 {
		errs = append(errs, "serial.read_timeout_ms must be positive")
	}
	if c.Serial.Pulse.Button < 0 {
		errs = append(errs, "serial.pulse.button must not be negative")
	}

	if c.Broadcast.QueueSize < 1 {
		errs = append(errs, "broadcast.queue_size must be at least 1")
	}
	if c.Broadcast.SubscriberBuffer < 1 {
		errs = append(errs, "broadcast.subscriber_buffer must be at least 1")
	}

	if c.History.Capacity < 1 {
		errs = append(errs, "history.capacity must be at least 1")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Songs.Directory == "" {
		errs = append(errs, "songs.directory is required")
	}
	if c.Songs.MaxCount < 1 {
		errs = append(errs, "songs.max_count must be at least 1")
	}

	if c.Archive.Enabled && c.Archive.RetentionDays < 1 {
		errs = append(errs, "archive.retention_days must be at least 1 when the archive is enabled")
	}

	if c.Upstream.TimeoutSeconds < 1 {
		errs = append(errs, "upstream.timeout_seconds must be at least 1")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set PADLINK_INFLUXDB_TOKEN)")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout is API.Timeouts.Read as a time.Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout is API.Timeouts.Write as a time.Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout is API.Timeouts.Idle as a time.Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetSerialReadTimeout is Serial.ReadTimeoutMs as a time.Duration.
func (c *Config) GetSerialReadTimeout() time.Duration {
	return time.Duration(c.Serial.ReadTimeoutMs) * time.Millisecond
}

// GetUpstreamTimeout is Upstream.TimeoutSeconds as a time.Duration.
func (c *Config) GetUpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}
