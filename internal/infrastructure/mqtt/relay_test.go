package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/padworks/padlink/internal/infrastructure/config"
)

// mockConnector records connection manager calls.
type mockConnector struct {
	mu          sync.Mutex
	connects    int
	disconnects int
	port        string
	baud        int
	err         error
}

func (m *mockConnector) Connect(port string, baud int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects++
	m.port = port
	m.baud = baud
	return m.err
}

func (m *mockConnector) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects++
	return m.err
}

func newTestRelay(t *testing.T, conn Connector) *Relay {
	t.Helper()

	client := &Client{
		cfg:    config.MQTTConfig{QoS: 1, TopicPrefix: "padlink"},
		topics: NewTopics("padlink"),
	}
	relay, err := NewRelay(client, conn)
	if err != nil {
		t.Fatalf("NewRelay() error = %v", err)
	}
	return relay
}

func TestNewRelayValidation(t *testing.T) {
	client := &Client{topics: NewTopics("padlink")}

	if _, err := NewRelay(nil, &mockConnector{}); err == nil {
		t.Error("NewRelay(nil, conn) expected error")
	}
	if _, err := NewRelay(client, nil); err == nil {
		t.Error("NewRelay(client, nil) expected error")
	}
}

func TestHandleConnectCommand(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		wantPort string
		wantBaud int
	}{
		{name: "empty payload uses defaults", payload: nil, wantPort: "", wantBaud: 0},
		{name: "whitespace payload uses defaults", payload: []byte("  \n"), wantPort: "", wantBaud: 0},
		{name: "explicit port and baud", payload: []byte(`{"port":"/dev/ttyUSB0","baud":9600}`), wantPort: "/dev/ttyUSB0", wantBaud: 9600},
		{name: "port only", payload: []byte(`{"port":"/dev/ttyACM1"}`), wantPort: "/dev/ttyACM1", wantBaud: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockConnector{}
			relay := newTestRelay(t, conn)

			if err := relay.handleConnectCommand("padlink/cmnd/connect", tt.payload); err != nil {
				t.Fatalf("handleConnectCommand() error = %v", err)
			}
			if conn.connects != 1 {
				t.Fatalf("connects = %d, want 1", conn.connects)
			}
			if conn.port != tt.wantPort {
				t.Errorf("port = %q, want %q", conn.port, tt.wantPort)
			}
			if conn.baud != tt.wantBaud {
				t.Errorf("baud = %d, want %d", conn.baud, tt.wantBaud)
			}
		})
	}
}

func TestHandleConnectCommandBadJSON(t *testing.T) {
	conn := &mockConnector{}
	relay := newTestRelay(t, conn)

	err := relay.handleConnectCommand("padlink/cmnd/connect", []byte(`{"port":`))
	if err == nil {
		t.Fatal("handleConnectCommand() expected error for malformed payload")
	}
	if conn.connects != 0 {
		t.Errorf("connects = %d, want 0 after decode failure", conn.connects)
	}
}

func TestHandleConnectCommandPropagatesError(t *testing.T) {
	wantErr := errors.New("already connected")
	conn := &mockConnector{err: wantErr}
	relay := newTestRelay(t, conn)

	if err := relay.handleConnectCommand("padlink/cmnd/connect", nil); !errors.Is(err, wantErr) {
		t.Errorf("handleConnectCommand() error = %v, want %v", err, wantErr)
	}
}

func TestHandleDisconnectCommand(t *testing.T) {
	conn := &mockConnector{}
	relay := newTestRelay(t, conn)

	if err := relay.handleDisconnectCommand("padlink/cmnd/disconnect", nil); err != nil {
		t.Fatalf("handleDisconnectCommand() error = %v", err)
	}
	if conn.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", conn.disconnects)
	}
}

func TestBuildEventPayload(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 123000000, time.UTC)

	payload, err := buildEventPayload("PRESS", 3, ts)
	if err != nil {
		t.Fatalf("buildEventPayload() error = %v", err)
	}

	want := `{"type":"PRESS","button":3,"ts":"2026-01-02T15:04:05.123Z"}`
	if string(payload) != want {
		t.Errorf("payload = %s, want %s", payload, want)
	}
}

func TestPublishEventDisconnected(t *testing.T) {
	relay := newTestRelay(t, &mockConnector{})

	if err := relay.PublishEvent("PRESS", 3); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishEvent() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishBridgeStateDisconnected(t *testing.T) {
	relay := newTestRelay(t, &mockConnector{})

	if err := relay.PublishBridgeState(true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishBridgeState() error = %v, want ErrNotConnected", err)
	}
}
