// Package tts adapts cloud text-to-speech backends behind one synthesis
// contract. Every backend failure is reported as an error value; nothing
// panics across this boundary.
package tts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"deck-tts/internal/domain"
)

// ProgressFunc receives fractional download progress in percent (0-100).
// Reports are best effort; callers must clamp.
type ProgressFunc func(pct int)

// Synthesizer turns text plus resolved settings into raw audio bytes.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, settings domain.ResolvedSettings, onProgress ProgressFunc) ([]byte, error)
}

// ErrMissingAPIKey is a precondition failure reported before any network call.
var ErrMissingAPIKey = errors.New("api key is not set in configuration")

// ProviderError carries provider and stage context for one failed call.
type ProviderError struct {
	Provider string
	Stage    string
	Message  string
	Err      error
}

// Error formats the failure for job rows and logs.
func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Stage, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

const requestTimeout = 120 * time.Second

// ForProvider returns the synthesizer registered under a provider id.
// Adding a backend means adding one table entry.
func ForProvider(name string) (Synthesizer, error) {
	factory, ok := providerTable[name]
	if !ok {
		return nil, fmt.Errorf("unknown TTS provider %q", name)
	}
	return factory(), nil
}

var providerTable = map[string]func() Synthesizer{
	"dashscope":  func() Synthesizer { return NewDashScope() },
	"openai":     func() Synthesizer { return NewOpenAI() },
	"elevenlabs": func() Synthesizer { return NewElevenLabs() },
}

// newHTTPClient builds the shared default client for provider calls.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// reportComplete emits the single completion signal for backends without
// an incremental progress source.
func reportComplete(onProgress ProgressFunc) {
	if onProgress != nil {
		onProgress(100)
	}
}
