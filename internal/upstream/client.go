package upstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/padworks/padlink/internal/infrastructure/config"
	"github.com/padworks/padlink/internal/infrastructure/logging"
)

// defaultTimeout applies when the configuration leaves the outbound
// timeout unset.
const defaultTimeout = 10 * time.Second

// Client calls the configured third-party services over one shared
// http.Client. Safe for concurrent use.
type Client struct {
	http *http.Client
	cfg  config.UpstreamConfig
	log  *logging.Logger
}

// NewClient creates an upstream client from the upstream configuration
// section.
func NewClient(cfg config.UpstreamConfig, log *logging.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http: &http.Client{Timeout: timeout},
		cfg:  cfg,
		log:  log.Component("upstream"),
	}
}

// do sends the request and verifies a 2xx status. The caller owns the
// response body. Error text names the host only, never the full URL,
// because several services carry credentials in the query string.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, req.URL.Host, resp.StatusCode)
	}
	return resp, nil
}

// doJSON sends the request and returns the verified JSON body, ready to
// embed in a response envelope untouched.
func (c *Client) doJSON(req *http.Request) (json.RawMessage, error) {
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrUpstream, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s returned a non-JSON body", ErrUpstream, req.URL.Host)
	}
	return json.RawMessage(body), nil
}
