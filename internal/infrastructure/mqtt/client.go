package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/padworks/padlink/internal/infrastructure/config"
)

// Broker interaction limits. Every paho token wait is bounded so a
// wedged broker degrades to an error instead of a stuck caller.
const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds of grace for in-flight packets
	defaultKeepAlive         = 60 * time.Second
	maxQoS                   = 2
)

// Availability payloads on Topics.Availability. Plain retained strings
// so dashboards and automations can template on them directly.
const (
	availabilityOnline  = "online"
	availabilityOffline = "offline"
)

// Logger is the narrow logging surface the client needs. logging.Logger
// satisfies it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler receives inbound messages. Paho invokes handlers on its
// own goroutines; a returned error is logged, never re-delivered.
type MessageHandler func(topic string, payload []byte) error

// subscription is remembered so a reconnection can re-establish it.
type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client is the padlink connection to the MQTT broker: bounded waits,
// automatic reconnection with re-subscription, and a retained
// availability topic flipped by the LWT when the process dies uncleanly.
// The zero value behaves as a disconnected client whose operations fail
// with ErrNotConnected.
type Client struct {
	paho   pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	mu           sync.Mutex
	connected    bool
	onConnect    func()
	onDisconnect func(err error)
	logger       Logger

	subMu sync.Mutex
	subs  map[string]subscription
}

// Connect dials the broker and blocks until the first connection attempt
// resolves. The session registers an LWT that publishes offline on the
// availability topic if the connection is ever lost without Close.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		topics: NewTopics(cfg.TopicPrefix),
		subs:   make(map[string]subscription),
	}

	opts := pahomqtt.NewClientOptions()
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)
	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetWill(c.topics.Availability(), availabilityOffline, 1, true)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) { c.brokerUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.brokerDown(err) })

	c.paho = pahomqtt.NewClient(opts)
	token := c.paho.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously; mark connected here so
	// a publish immediately after Connect does not race it.
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	return c, nil
}

// Topics returns the topic layout bound to the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

// brokerUp runs on every (re)connection: restores subscriptions, clears
// any retained offline the LWT left behind, then fires the callback.
func (c *Client) brokerUp() {
	c.mu.Lock()
	c.connected = true
	callback := c.onConnect
	c.mu.Unlock()

	c.subMu.Lock()
	for topic, sub := range c.subs {
		c.paho.Subscribe(topic, sub.qos, c.wrapHandler(sub.handler))
	}
	c.subMu.Unlock()

	c.paho.Publish(c.topics.Availability(), byte(c.cfg.QoS), true, availabilityOnline)

	if callback != nil {
		callback()
	}
}

// brokerDown runs when the connection drops. Paho keeps retrying in the
// background; delivery resumes through brokerUp.
func (c *Client) brokerDown(err error) {
	c.mu.Lock()
	c.connected = false
	callback := c.onDisconnect
	c.mu.Unlock()

	if callback != nil {
		callback(err)
	}
}

// Close publishes a clean offline on the availability topic, gives
// in-flight packets a moment to drain, and drops the connection. Closing
// a client that never connected is a no-op.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		token := c.paho.Publish(c.topics.Availability(), byte(c.cfg.QoS), true, availabilityOffline)
		token.WaitTimeout(defaultPublishTimeout)
	}
	c.paho.Disconnect(defaultDisconnectQuiesce)

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	return nil
}

// HealthCheck reports whether the broker connection is alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the last observed connection state.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()
	return connected && c.paho != nil && c.paho.IsConnected()
}

// SetOnConnect registers a callback fired on the initial connection and
// on every reconnection.
func (c *Client) SetOnConnect(callback func()) {
	c.mu.Lock()
	c.onConnect = callback
	c.mu.Unlock()
}

// SetOnDisconnect registers a callback fired when the connection drops;
// the error describes the cause.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.mu.Lock()
	c.onDisconnect = callback
	c.mu.Unlock()
}

// SetLogger attaches a logger for handler failures and recovered panics.
// Without one those are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// wrapHandler hardens a MessageHandler for paho's dispatch goroutines: a
// panicking or failing handler is contained and logged, never allowed to
// take the process down.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered", "topic", msg.Topic(), "panic", r)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler failed", "topic", msg.Topic(), "error", err)
			}
		}
	}
}
