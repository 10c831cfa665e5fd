// Package ai wraps the Gemini REST API for voice-note transcription and
// text generation. Callers are expected to degrade gracefully when the
// collaborator is unreachable; this package only reports errors.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nirmaanhq/siteops-api/internal/config"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini generateContent endpoint
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	logger     *zap.Logger
}

// NewClient creates a new Gemini client. Returns nil when no API key is
// configured so callers can treat the collaborator as absent.
func NewClient(cfg *config.AIConfig, logger *zap.Logger) *Client {
	if cfg.APIKey == "" {
		logger.Warn("AI API key not configured, insights disabled")
		return nil
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText sends a plain text prompt and returns the first candidate
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})
}

// Transcribe sends base64-encoded audio with a transcription instruction
func (c *Client) Transcribe(ctx context.Context, audioBase64, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	return c.generate(ctx, generateRequest{
		Contents: []generateContent{{Parts: []generatePart{
			{Text: "Transcribe this site voice note verbatim."},
			{InlineData: &inlineData{MimeType: mimeType, Data: audioBase64}},
		}}},
	})
}

func (c *Client) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call AI service: %w", err)
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode AI response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if genResp.Error != nil {
			return "", fmt.Errorf("AI service error (%d): %s", genResp.Error.Code, genResp.Error.Message)
		}
		return "", fmt.Errorf("AI service returned status %d", resp.StatusCode)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("AI service returned no candidates")
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
