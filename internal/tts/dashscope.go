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

const dashScopeEndpoint = "https://dashscope.aliyuncs.com/api/v1/services/aigc/multimodal-generation/generation"

type dashScopeRequest struct {
	Model string         `json:"model"`
	Input dashScopeInput `json:"input"`
}

type dashScopeInput struct {
	Text         string `json:"text"`
	Voice        string `json:"voice"`
	LanguageType string `json:"language_type"`
}

type dashScopeResponse struct {
	Output struct {
		Audio struct {
			URL string `json:"url"`
		} `json:"audio"`
	} `json:"output"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DashScope synthesizes via the DashScope qwen-tts endpoint: one
// synchronous generation call returning an audio URL, then a layered
// streaming download with byte-level progress.
type DashScope struct {
	endpoint string
	client   httpDoer
	fallback httpDoer
}

// NewDashScope builds the production DashScope synthesizer.
func NewDashScope() *DashScope {
	return &DashScope{
		endpoint: dashScopeEndpoint,
		client:   newHTTPClient(),
		fallback: newHTTPClient(),
	}
}

// Name returns the provider id.
func (d *DashScope) Name() string { return "dashscope" }

// Synthesize calls the generation endpoint and downloads the result audio.
func (d *DashScope) Synthesize(ctx context.Context, text string, settings domain.ResolvedSettings, onProgress ProgressFunc) ([]byte, error) {
	if settings.APIKey == "" {
		return nil, &ProviderError{Provider: d.Name(), Stage: "request", Message: ErrMissingAPIKey.Error(), Err: ErrMissingAPIKey}
	}

	body, err := json.Marshal(dashScopeRequest{
		Model: settings.Model,
		Input: dashScopeInput{
			Text:         text,
			Voice:        settings.Voice,
			LanguageType: settings.LanguageType,
		},
	})
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Stage: "request", Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Stage: "request", Message: "create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+settings.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Stage: "synthesis", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Stage: "synthesis", Message: "read response", Err: err}
	}

	var decoded dashScopeResponse
	if resp.StatusCode != http.StatusOK {
		message := "unknown error"
		if json.Unmarshal(payload, &decoded) == nil && decoded.Message != "" {
			message = decoded.Message
		}
		return nil, &ProviderError{
			Provider: d.Name(),
			Stage:    "synthesis",
			Message:  fmt.Sprintf("API error (status=%d): %s", resp.StatusCode, message),
		}
	}

	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, &ProviderError{Provider: d.Name(), Stage: "synthesis", Message: "decode response", Err: err}
	}
	audioURL := decoded.Output.Audio.URL
	if audioURL == "" {
		return nil, &ProviderError{Provider: d.Name(), Stage: "synthesis", Message: "audio URL not found in API response"}
	}

	data, err := downloadAudio(ctx, d.client, d.fallback, audioURL, onProgress)
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Stage: "download", Message: err.Error(), Err: err}
	}
	return data, nil
}
