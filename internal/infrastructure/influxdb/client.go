package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/padworks/padlink/internal/infrastructure/config"
)

// Probe timeouts. Writes themselves are asynchronous and carry no
// deadline; only connection probes block.
const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// Batching fallbacks for config values left at zero.
const (
	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds
)

// Client writes padlink telemetry to InfluxDB v2: orientation samples
// and periodic pipeline diagnostics. Writes are batched and
// non-blocking; batch failures surface through SetOnError. The zero
// value drops writes and fails health checks.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	mu        sync.Mutex
	connected bool
	onError   func(err error)
}

// Connect builds a batching client for the configured server and
// verifies it responds before handing it out. ErrDisabled distinguishes
// "not configured" from "unreachable" for callers.
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	// #nosec G115 -- both values forced positive above
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(flushInterval) * 1000) // flush_interval is seconds, the option takes ms

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	c := &Client{
		client:    client,
		writeAPI:  client.WriteAPI(cfg.Org, cfg.Bucket),
		connected: true,
	}
	go c.drainWriteErrors(c.writeAPI.Errors())

	return c, nil
}

// drainWriteErrors forwards async batch failures to the registered
// callback. The channel closes when the client does.
func (c *Client) drainWriteErrors(errs <-chan error) {
	for err := range errs {
		c.mu.Lock()
		callback := c.onError
		c.mu.Unlock()

		if callback != nil {
			callback(err)
		}
	}
}

// Close flushes pending writes and releases the connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck actively pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(pingCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected reports the last known connection state without touching
// the network; HealthCheck is the active probe.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetOnError registers a callback for asynchronous batch write failures.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	c.onError = callback
	c.mu.Unlock()
}

// Flush blocks until buffered points are written. No-op once closed or
// never connected.
func (c *Client) Flush() {
	if c.writeAPI == nil || !c.IsConnected() {
		return
	}
	c.writeAPI.Flush()
}
