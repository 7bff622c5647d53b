package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"deck-tts/internal/domain"
)

const openAIEndpoint = "https://api.openai.com/v1/audio/speech"

type openAIRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// OpenAI synthesizes via the speech endpoint, which returns audio bytes
// directly. There is no incremental signal, so completion is reported as
// a single 100% progress event.
type OpenAI struct {
	endpoint string
	client   httpDoer
}

// NewOpenAI builds the production OpenAI synthesizer.
func NewOpenAI() *OpenAI {
	return &OpenAI{endpoint: openAIEndpoint, client: newHTTPClient()}
}

// Name returns the provider id.
func (o *OpenAI) Name() string { return "openai" }

// Synthesize posts the text and reads audio bytes from the response body.
func (o *OpenAI) Synthesize(ctx context.Context, text string, settings domain.ResolvedSettings, onProgress ProgressFunc) ([]byte, error) {
	if settings.APIKey == "" {
		return nil, &ProviderError{Provider: o.Name(), Stage: "request", Message: ErrMissingAPIKey.Error(), Err: ErrMissingAPIKey}
	}

	body, err := json.Marshal(openAIRequest{
		Model:          settings.Model,
		Input:          text,
		Voice:          settings.Voice,
		ResponseFormat: settings.Ext,
	})
	if err != nil {
		return nil, &ProviderError{Provider: o.Name(), Stage: "request", Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: o.Name(), Stage: "request", Message: "create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+settings.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: o.Name(), Stage: "synthesis", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: o.Name(),
			Stage:    "synthesis",
			Message:  apiErrorMessage(resp),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: o.Name(), Stage: "download", Message: "read audio", Err: err}
	}
	reportComplete(onProgress)
	return data, nil
}
