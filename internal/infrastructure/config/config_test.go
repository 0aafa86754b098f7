package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
api:
  host: "0.0.0.0"
  port: 8001
serial:
  default_port: "/dev/ttyUSB0"
  default_baud: 115200
database:
  path: "/tmp/padlink-test.db"
  wal_mode: true
  busy_timeout: 5
songs:
  directory: "/tmp/padlink-songs"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, content)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Serial.DefaultPort != "/dev/ttyUSB0" {
		t.Errorf("Serial.DefaultPort = %q, want %q", cfg.Serial.DefaultPort, "/dev/ttyUSB0")
	}
	if cfg.Database.Path != "/tmp/padlink-test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/padlink-test.db")
	}

	// Unset sections keep their defaults.
	if cfg.Broadcast.QueueSize != 1000 {
		t.Errorf("Broadcast.QueueSize = %d, want default 1000", cfg.Broadcast.QueueSize)
	}
	if cfg.History.Capacity != 200 {
		t.Errorf("History.Capacity = %d, want default 200", cfg.History.Capacity)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() = nil error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, "invalid: [yaml: content")

	if _, err := Load(configPath); err == nil {
		t.Error("Load() = nil error for malformed YAML")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, "api:\n  port: 0\n")

	if _, err := Load(configPath); err == nil {
		t.Error("Load() = nil error for out-of-range port")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero baud",
			mutate:  func(c *Config) { c.Serial.DefaultBaud = 0 },
			wantErr: true,
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Serial.ReadTimeoutMs = 0 },
			wantErr: true,
		},
		{
			name:    "negative pulse button",
			mutate:  func(c *Config) { c.Serial.Pulse.Button = -1 },
			wantErr: true,
		},
		{
			name:    "zero queue size",
			mutate:  func(c *Config) { c.Broadcast.QueueSize = 0 },
			wantErr: true,
		},
		{
			name:    "zero history capacity",
			mutate:  func(c *Config) { c.History.Capacity = 0 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "zero song capacity",
			mutate:  func(c *Config) { c.Songs.MaxCount = 0 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: true,
		},
		{
			name: "influx enabled without token",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
				c.InfluxDB.Org = "padworks"
				c.InfluxDB.Bucket = "padlink"
			},
			wantErr: true,
		},
		{
			name: "archive enabled without retention",
			mutate: func(c *Config) {
				c.Archive.Enabled = true
				c.Archive.RetentionDays = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
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
		Serial:   SerialConfig{ReadTimeoutMs: 100},
		Upstream: UpstreamConfig{TimeoutSeconds: 10},
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
	if got := cfg.GetSerialReadTimeout(); got != 100*time.Millisecond {
		t.Errorf("GetSerialReadTimeout() = %v, want 100ms", got)
	}
	if got := cfg.GetUpstreamTimeout(); got != 10*time.Second {
		t.Errorf("GetUpstreamTimeout() = %v, want 10s", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("PADLINK_API_HOST", "192.168.1.1")
	t.Setenv("PADLINK_API_PORT", "9000")
	t.Setenv("PADLINK_SERIAL_PORT", "/dev/rfcomm0")
	t.Setenv("PADLINK_SERIAL_BAUD", "57600")
	t.Setenv("PADLINK_DATABASE_PATH", "/custom/path.db")
	t.Setenv("PADLINK_MQTT_HOST", "mqtt.example.com")
	t.Setenv("PADLINK_MQTT_USERNAME", "testuser")
	t.Setenv("PADLINK_MQTT_PASSWORD", "testpass")
	t.Setenv("PADLINK_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("PADLINK_WEATHER_API_KEY", "owm-key")

	applyEnvOverrides(cfg)

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.Serial.DefaultPort != "/dev/rfcomm0" {
		t.Errorf("Serial.DefaultPort = %q, want %q", cfg.Serial.DefaultPort, "/dev/rfcomm0")
	}
	if cfg.Serial.DefaultBaud != 57600 {
		t.Errorf("Serial.DefaultBaud = %d, want 57600", cfg.Serial.DefaultBaud)
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Upstream.Weather.APIKey != "owm-key" {
		t.Errorf("Upstream.Weather.APIKey = %q, want %q", cfg.Upstream.Weather.APIKey, "owm-key")
	}
}

func TestApplyEnvOverrides_FallbackKeyNames(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("OPENWEATHER_API_KEY", "owm-fallback")
	t.Setenv("GEMINI_API_KEY", "gem-fallback")
	t.Setenv("ELEVENLABS_API_KEY", "el-fallback")

	applyEnvOverrides(cfg)

	if cfg.Upstream.Weather.APIKey != "owm-fallback" {
		t.Errorf("Weather.APIKey = %q, want fallback value", cfg.Upstream.Weather.APIKey)
	}
	if cfg.Upstream.Gemini.APIKey != "gem-fallback" {
		t.Errorf("Gemini.APIKey = %q, want fallback value", cfg.Upstream.Gemini.APIKey)
	}
	if cfg.Upstream.ElevenLabs.APIKey != "el-fallback" {
		t.Errorf("ElevenLabs.APIKey = %q, want fallback value", cfg.Upstream.ElevenLabs.APIKey)
	}
}

func TestApplyEnvOverrides_PrefixedKeyWins(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("PADLINK_GEMINI_API_KEY", "prefixed")
	t.Setenv("GEMINI_API_KEY", "fallback")

	applyEnvOverrides(cfg)

	if cfg.Upstream.Gemini.APIKey != "prefixed" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Upstream.Gemini.APIKey, "prefixed")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.Port != 8001 {
		t.Errorf("defaultConfig API.Port = %d, want 8001", cfg.API.Port)
	}
	if cfg.Serial.DefaultBaud != 115200 {
		t.Errorf("defaultConfig Serial.DefaultBaud = %d, want 115200", cfg.Serial.DefaultBaud)
	}
	if cfg.History.Capacity != 200 {
		t.Errorf("defaultConfig History.Capacity = %d, want 200", cfg.History.Capacity)
	}
	if cfg.Songs.MaxCount != 200 {
		t.Errorf("defaultConfig Songs.MaxCount = %d, want 200", cfg.Songs.MaxCount)
	}
	if cfg.MQTT.Enabled {
		t.Error("defaultConfig MQTT should be disabled")
	}
	if cfg.Serial.Pulse.Enabled {
		t.Error("defaultConfig pulse mode should be disabled")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate cleanly, got %v", err)
	}
}

func writeConfigFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeConfigFile(t, configPath, "serial:\n  default_port: \"/dev/ttyUSB0\"\n")

	changed := make(chan *Config, 4)
	w, err := NewWatcher(configPath, func(c *Config) { changed <- c }, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close() //nolint:errcheck // test cleanup

	writeConfigFile(t, configPath, "serial:\n  default_port: \"/dev/rfcomm0\"\n")

	select {
	case cfg := <-changed:
		if cfg.Serial.DefaultPort != "/dev/rfcomm0" {
			t.Errorf("reloaded Serial.DefaultPort = %q, want %q", cfg.Serial.DefaultPort, "/dev/rfcomm0")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcher_KeepsOldConfigOnBadReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeConfigFile(t, configPath, "api:\n  port: 8001\n")

	changed := make(chan *Config, 4)
	failed := make(chan error, 4)
	w, err := NewWatcher(configPath,
		func(c *Config) { changed <- c },
		func(err error) { failed <- err },
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close() //nolint:errcheck // test cleanup

	writeConfigFile(t, configPath, "api:\n  port: 0\n")

	select {
	case err := <-failed:
		if err == nil {
			t.Error("expected non-nil reload error")
		}
	case cfg := <-changed:
		t.Errorf("invalid config was accepted: %+v", cfg.API)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload rejection")
	}
}

func TestNewWatcher_RequiresCallback(t *testing.T) {
	if _, err := NewWatcher("config.yaml", nil, nil); err == nil {
		t.Error("NewWatcher() expected error for nil onChange, got nil")
	}
}
