package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/padworks/padlink/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json to stdout", config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"text to stderr", config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{"zero config", config.LoggingConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if logger := New(tt.cfg, "1.0.0"); logger == nil {
				t.Fatal("New() = nil")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{name: "debug level", input: "debug", want: slog.LevelDebug},
		{name: "info level", input: "info", want: slog.LevelInfo},
		{name: "warn level", input: "warn", want: slog.LevelWarn},
		{name: "warning alias", input: "warning", want: slog.LevelWarn},
		{name: "error level", input: "error", want: slog.LevelError},
		{name: "unknown defaults to info", input: "bogus", want: slog.LevelInfo},
		{name: "empty defaults to info", input: "", want: slog.LevelInfo},
		{name: "case insensitive", input: "ERROR", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLevel(tt.input)
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "1.0.0")

	child := logger.With("component", "bridge")

	if child == nil {
		t.Fatal("expected non-nil child logger")
	}
	if child == logger {
		t.Error("expected child logger to be distinct from parent")
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer

	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := &Logger{Logger: slog.New(base)}

	logger.Component("broadcast").Info("consumer started")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if entry["component"] != "broadcast" {
		t.Errorf("expected component=broadcast, got %v", entry["component"])
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() = nil")
	}
}

func TestLogger_OutputContainsDefaultFields(t *testing.T) {
	var buf bytes.Buffer

	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler := base.WithAttrs([]slog.Attr{
		slog.String("service", "padlink"),
		slog.String("version", "test"),
	})

	logger := &Logger{Logger: slog.New(handler)}
	logger.Info("test message", "key", "value")

	output := buf.String()

	if !strings.Contains(output, "padlink") {
		t.Error("expected output to contain service field")
	}
	if !strings.Contains(output, "test") {
		t.Error("expected output to contain version field")
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if entry["msg"] != "test message" {
		t.Errorf("expected msg='test message', got %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key='value', got %v", entry["key"])
	}
}
