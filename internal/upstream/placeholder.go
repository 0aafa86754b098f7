package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// defaultPostsLimit matches the demo frontend's page size.
const defaultPostsLimit = 10

// Posts fetches up to limit posts from JSONPlaceholder. Zero or
// negative limits fall back to the default page size.
func (c *Client) Posts(ctx context.Context, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = defaultPostsLimit
	}

	endpoint := strings.TrimRight(c.cfg.Placeholder.BaseURL, "/") + "/posts?_limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.doJSON(req)
}

// Users fetches the user directory from JSONPlaceholder.
func (c *Client) Users(ctx context.Context) (json.RawMessage, error) {
	endpoint := strings.TrimRight(c.cfg.Placeholder.BaseURL, "/") + "/users"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.doJSON(req)
}
