package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// composeFormat is the only output format the pad frontend plays.
	composeFormat = "mp3_22050_32"

	// defaultComposeDurationMS matches the frontend's default clip length.
	defaultComposeDurationMS = 3000
)

type composeRequest struct {
	Prompt        string `json:"prompt"`
	MusicLengthMS int    `json:"music_length_ms"`
}

// Compose streams a generated music clip from ElevenLabs. The returned
// body is the raw audio stream; the caller must close it. contentType
// is taken from the upstream response, defaulting to audio/mpeg.
func (c *Client) Compose(ctx context.Context, prompt string, durationMS int) (body io.ReadCloser, contentType string, err error) {
	if c.cfg.ElevenLabs.APIKey == "" {
		return nil, "", ErrMissingKey
	}
	if durationMS <= 0 {
		durationMS = defaultComposeDurationMS
	}

	payload, err := json.Marshal(composeRequest{
		Prompt:        prompt,
		MusicLengthMS: durationMS,
	})
	if err != nil {
		return nil, "", fmt.Errorf("encoding compose request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.ElevenLabs.BaseURL, "/") +
		"/v1/music?output_format=" + composeFormat
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.cfg.ElevenLabs.APIKey)

	resp, err := c.do(req)
	if err != nil {
		return nil, "", err
	}

	contentType = resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return resp.Body, contentType, nil
}
