package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	systemInstruction = "You are a helpful customer support agent for RupayX, a fintech app. Keep answers short, professional, and friendly."

	msgNotConfigured = "AI Assistant is not configured (Missing API Key)."
	msgUnavailable   = "Sorry, I am having trouble connecting right now."
	msgEmpty         = "Sorry, I couldn't generate a response."
)

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewGeminiClient(baseURL, model, apiKey string) *GeminiClient {
	return &GeminiClient{
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Ask(ctx context.Context, prompt string) string {
	if c.apiKey == "" {
		return msgNotConfigured
	}

	reqBody := geminiRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		slog.Error("failed to encode assistant request", "error", err)
		return msgUnavailable
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("failed to build assistant request", "error", err)
		return msgUnavailable
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("assistant request failed", "error", err)
		return msgUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("assistant request rejected", "status", resp.StatusCode)
		return msgUnavailable
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		slog.Error("failed to decode assistant response", "error", err)
		return msgUnavailable
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return msgEmpty
	}

	answer := parsed.Candidates[0].Content.Parts[0].Text
	if answer == "" {
		return msgEmpty
	}
	return answer
}
