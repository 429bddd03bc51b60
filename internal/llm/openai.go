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

// OpenAIInvoker calls the chat/completions endpoint and parses the
// completion into raw tables.
type OpenAIInvoker struct {
	apiKey     string
	baseURL    string
	model      string
	sampleText string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewOpenAIInvoker(apiKey, baseURL, model, sampleText string, client *http.Client, logger *slog.Logger) *OpenAIInvoker {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIInvoker{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		sampleText: sampleText,
		httpClient: client,
		logger:     logger,
	}
}

func (c *OpenAIInvoker) Call(ctx context.Context) (RawOutput, error) {
	start := time.Now()
	c.logger.Info("llm.openai.start", "model", c.model, "sample_len", len(c.sampleText))

	body := map[string]any{
		"model":       c.model,
		"temperature": 0.0,
		"messages": []map[string]any{
			{"role": "user", "content": tableDetectionPrompt(c.sampleText)},
		},
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	raw, _, err := sendJSON(ctx, c.httpClient, endpoint, body, headers, c.logger)
	if err != nil {
		return RawOutput{}, &ProviderError{Provider: constants.ProviderOpenAI, Err: err}
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return RawOutput{}, &ProviderError{Provider: constants.ProviderOpenAI, Err: fmt.Errorf("decode openai response: %w", err)}
	}
	if len(cc.Choices) == 0 {
		return RawOutput{}, &ProviderError{Provider: constants.ProviderOpenAI, Err: fmt.Errorf("no choices in openai response")}
	}

	tables, err := parseTables(cc.Choices[0].Message.Content)
	if err != nil {
		c.logger.Error("llm.openai.parse_failed", "model", c.model, "error", err)
		return RawOutput{}, &ProviderError{Provider: constants.ProviderOpenAI, Err: err}
	}

	c.logger.Info("llm.openai.ok",
		"model", c.model,
		"tables", len(tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return RawOutput{
		Provider: string(constants.ProviderOpenAI),
		Model:    c.model,
		Tables:   tables,
	}, nil
}
