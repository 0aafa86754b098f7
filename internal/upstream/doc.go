// Package upstream holds the clients for the third-party HTTP services
// padlink fronts: OpenWeatherMap, JSONPlaceholder, the Gemini keyword
// generator, the ElevenLabs music composer, and a generic JSON proxy.
//
// All calls share one http.Client with the configured timeout. Failures
// are wrapped in ErrUpstream so the HTTP layer can map them to 502
// uniformly; a missing API key is ErrMissingKey, which is the caller's
// mistake rather than the upstream's.
package upstream
