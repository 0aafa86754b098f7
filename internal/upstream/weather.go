package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Weather fetches current conditions for a city from OpenWeatherMap in
// metric units. apiKey overrides the configured key when non-empty;
// with neither present the call fails with ErrMissingKey.
func (c *Client) Weather(ctx context.Context, city, apiKey string) (json.RawMessage, error) {
	key := apiKey
	if key == "" {
		key = c.cfg.Weather.APIKey
	}
	if key == "" {
		return nil, ErrMissingKey
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", key)
	params.Set("units", "metric")

	endpoint := strings.TrimRight(c.cfg.Weather.BaseURL, "/") + "/data/2.5/weather?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.doJSON(req)
}
