package mqtt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Connector is the subset of the serial connection manager the relay
// drives on behalf of remote commands.
type Connector interface {
	Connect(port string, baud int) error
	Disconnect() error
}

// Bridge state payloads published retained to Topics.BridgeState.
const (
	bridgeStateConnected    = "connected"
	bridgeStateDisconnected = "disconnected"
)

// connectCommand is the optional JSON payload of a connect command.
// Zero values fall through to the configured serial defaults.
type connectCommand struct {
	Port string `json:"port"`
	Baud int    `json:"baud"`
}

// Relay projects the pad bridge onto the broker: derived press/release
// events go out per button, serial connection transitions go out
// retained, and connect/disconnect commands come in and drive the same
// connection manager paths as the HTTP API.
type Relay struct {
	client *Client
	topics Topics
	qos    byte
	conn   Connector
}

// NewRelay creates a relay bound to a connected client and a connection
// manager.
func NewRelay(client *Client, conn Connector) (*Relay, error) {
	if client == nil {
		return nil, fmt.Errorf("mqtt: relay requires a client")
	}
	if conn == nil {
		return nil, fmt.Errorf("mqtt: relay requires a connector")
	}
	return &Relay{
		client: client,
		topics: client.Topics(),
		qos:    byte(client.cfg.QoS),
		conn:   conn,
	}, nil
}

// Start subscribes the command topics. Subscriptions survive broker
// reconnects via the client's restore mechanism.
func (r *Relay) Start() error {
	if err := r.client.Subscribe(r.topics.CommandConnect(), r.qos, r.handleConnectCommand); err != nil {
		return fmt.Errorf("subscribing connect command: %w", err)
	}
	if err := r.client.Subscribe(r.topics.CommandDisconnect(), r.qos, r.handleDisconnectCommand); err != nil {
		return fmt.Errorf("subscribing disconnect command: %w", err)
	}
	return nil
}

// PublishEvent publishes one derived press/release to the button's event
// topic. Events are not retained; late joiners read current state from
// the bridge state and snapshot surfaces instead.
func (r *Relay) PublishEvent(eventType string, button int) error {
	payload, err := buildEventPayload(eventType, button, time.Now().UTC())
	if err != nil {
		return err
	}
	return r.client.Publish(r.topics.Event(button), payload, r.qos, false)
}

// PublishBridgeState publishes the serial connection state, retained so
// integrations joining later see the current transition.
func (r *Relay) PublishBridgeState(connected bool) error {
	state := bridgeStateDisconnected
	if connected {
		state = bridgeStateConnected
	}
	return r.client.PublishString(r.topics.BridgeState(), state, r.qos, true)
}

// handleConnectCommand opens the serial device. An empty payload uses
// the configured defaults; otherwise the payload names port and baud.
func (r *Relay) handleConnectCommand(_ string, payload []byte) error {
	var cmd connectCommand
	if len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("decoding connect command: %w", err)
		}
	}
	return r.conn.Connect(cmd.Port, cmd.Baud)
}

// handleDisconnectCommand releases the serial device. The payload is
// ignored.
func (r *Relay) handleDisconnectCommand(_ string, _ []byte) error {
	return r.conn.Disconnect()
}

// buildEventPayload serializes the event wire shape published to
// integrations. The timestamp is stamped at publish time because
// derived events do not carry one.
func buildEventPayload(eventType string, button int, ts time.Time) ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Button int    `json:"button"`
		TS     string `json:"ts"`
	}{Type: eventType, Button: button, TS: ts.Format(time.RFC3339Nano)})
}
