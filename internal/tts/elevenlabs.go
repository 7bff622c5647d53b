package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"deck-tts/internal/domain"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// ElevenLabs synthesizes via the text-to-speech endpoint, which returns
// audio bytes in one shot.
type ElevenLabs struct {
	baseURL string
	client  httpDoer
}

// NewElevenLabs builds the production ElevenLabs synthesizer.
func NewElevenLabs() *ElevenLabs {
	return &ElevenLabs{baseURL: elevenLabsBaseURL, client: newHTTPClient()}
}

// Name returns the provider id.
func (e *ElevenLabs) Name() string { return "elevenlabs" }

// Synthesize posts the text to the voice endpoint and reads the audio body.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, settings domain.ResolvedSettings, onProgress ProgressFunc) ([]byte, error) {
	if settings.APIKey == "" {
		return nil, &ProviderError{Provider: e.Name(), Stage: "request", Message: ErrMissingAPIKey.Error(), Err: ErrMissingAPIKey}
	}

	body, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: settings.Model})
	if err != nil {
		return nil, &ProviderError{Provider: e.Name(), Stage: "request", Message: "marshal request", Err: err}
	}

	url := fmt.Sprintf("%s/%s", e.baseURL, settings.Voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: e.Name(), Stage: "request", Message: "create request", Err: err}
	}
	req.Header.Set("xi-api-key", settings.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: e.Name(), Stage: "synthesis", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: e.Name(),
			Stage:    "synthesis",
			Message:  apiErrorMessage(resp),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: e.Name(), Stage: "download", Message: "read audio", Err: err}
	}
	reportComplete(onProgress)
	return data, nil
}

// apiErrorMessage formats a non-200 response into one descriptive string.
func apiErrorMessage(resp *http.Response) string {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(bytes.TrimSpace(snippet)) == 0 {
		return fmt.Sprintf("API error (status=%d)", resp.StatusCode)
	}
	return fmt.Sprintf("API error (status=%d): %s", resp.StatusCode, bytes.TrimSpace(snippet))
}
