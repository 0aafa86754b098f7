package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ProxyRequest describes one forwarded call.
type ProxyRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Params  map[string]any    `json:"params"`

	// JSONBody is sent as the request body with a JSON content type
	// when present.
	JSONBody map[string]any `json:"json_body"`
}

// Proxy forwards an arbitrary JSON API call and returns the upstream
// body. The method defaults to GET.
func (c *Client) Proxy(ctx context.Context, pr ProxyRequest) (json.RawMessage, error) {
	method := strings.ToUpper(strings.TrimSpace(pr.Method))
	if method == "" {
		method = http.MethodGet
	}

	endpoint, err := buildProxyURL(pr.URL, pr.Params)
	if err != nil {
		return nil, err
	}

	var body *bytes.Reader
	if pr.JSONBody != nil {
		payload, err := json.Marshal(pr.JSONBody)
		if err != nil {
			return nil, fmt.Errorf("encoding json_body: %w", err)
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building proxy request: %w", err)
	}
	for k, v := range pr.Headers {
		req.Header.Set(k, v)
	}
	if pr.JSONBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("proxying request", "method", method, "host", req.URL.Host)
	return c.doJSON(req)
}

// buildProxyURL appends the params map to the target URL's query
// string, preserving any query already present.
func buildProxyURL(target string, params map[string]any) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parsing proxy url: %w", err)
	}

	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, fmt.Sprint(v))
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
