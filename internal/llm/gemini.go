package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"doc-llm-pipeline/constants"
)

// GeminiInvoker calls the generative language generateContent endpoint.
type GeminiInvoker struct {
	apiKey     string
	baseURL    string
	model      string
	sampleText string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGeminiInvoker(apiKey, baseURL, model, sampleText string, client *http.Client, logger *slog.Logger) *GeminiInvoker {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiInvoker{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		sampleText: sampleText,
		httpClient: client,
		logger:     logger,
	}
}

func (c *GeminiInvoker) Call(ctx context.Context) (RawOutput, error) {
	start := time.Now()
	c.logger.Info("llm.gemini.start", "model", c.model, "sample_len", len(c.sampleText))

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": tableDetectionPrompt(c.sampleText)}}},
		},
		"generationConfig": map[string]any{
			// Force JSON output; low temp for deterministic structure.
			"responseMimeType": "application/json",
			"temperature":      0.0,
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.baseURL, "/"), c.model, c.apiKey)

	raw, _, err := sendJSON(ctx, c.httpClient, endpoint, body, nil, c.logger)
	if err != nil {
		return RawOutput{}, &ProviderError{Provider: constants.ProviderGoogle, Err: err}
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		return RawOutput{}, &ProviderError{Provider: constants.ProviderGoogle, Err: fmt.Errorf("decode gemini response: %w", err)}
	}
	if len(gc.Candidates) == 0 || len(gc.Candidates[0].Content.Parts) == 0 {
		return RawOutput{}, &ProviderError{Provider: constants.ProviderGoogle, Err: fmt.Errorf("no candidates in gemini response")}
	}

	tables, err := parseTables(gc.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		c.logger.Error("llm.gemini.parse_failed", "model", c.model, "error", err)
		return RawOutput{}, &ProviderError{Provider: constants.ProviderGoogle, Err: err}
	}

	c.logger.Info("llm.gemini.ok",
		"model", c.model,
		"tables", len(tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return RawOutput{
		Provider: string(constants.ProviderGoogle),
		Model:    c.model,
		Tables:   tables,
	}, nil
}
