package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// keywordSystemPrompt steers the model toward short keyword lists the
// music composer accepts.
const keywordSystemPrompt = "You are an ElevenLabs song creator. " +
	"The user will describe the kind of music they want. " +
	"Respond with only concise keywords (no sentences) suitable for ElevenLabs music generation, " +
	"e.g. 'sad piano arcade music', 'upbeat electronic chiptune', etc. Keep it under 15 words."

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Keywords converts a free-form music description into concise keyword
// text via the Gemini generateContent endpoint. Empty model output
// falls back to the input unchanged.
func (c *Client) Keywords(ctx context.Context, input string) (string, error) {
	if c.cfg.Gemini.APIKey == "" {
		return "", ErrMissingKey
	}

	prompt := keywordSystemPrompt + "\n\nUser input: " + input
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding keyword request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.cfg.Gemini.BaseURL, "/"), c.cfg.Gemini.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.Gemini.APIKey)

	body, err := c.doJSON(req)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding generateContent response: %w", ErrUpstream, err)
	}

	text := firstCandidateText(parsed)
	if text == "" {
		return input, nil
	}
	return text, nil
}

// firstCandidateText joins the text parts of the first candidate.
func firstCandidateText(resp geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}
