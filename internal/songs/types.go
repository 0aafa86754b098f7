package songs

import "time"

// Song is one saved song's metadata. The audio itself lives on disk at
// the path the URL resolves to.
type Song struct {
	ID  string `json:"id"`
	URL string `json:"url"`

	// Prompt and DurationMS are nil for songs adopted from disk, where
	// the generation parameters are unknown.
	Prompt     *string `json:"prompt"`
	DurationMS *int64  `json:"duration_ms"`

	CreatedAt time.Time `json:"created_at"`
}
