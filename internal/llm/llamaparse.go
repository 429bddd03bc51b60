package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doc-llm-pipeline/constants"
)

// LlamaParseInvoker uploads the document to LlamaParse, polls the parse job,
// and turns markdown blocks containing table delimiters into raw tables.
type LlamaParseInvoker struct {
	apiKey       string
	baseURL      string
	filePath     string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewLlamaParseInvoker(apiKey, baseURL, filePath string, client *http.Client, logger *slog.Logger) *LlamaParseInvoker {
	if baseURL == "" {
		baseURL = "https://api.cloud.llamaindex.ai/api/parsing"
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LlamaParseInvoker{
		apiKey:       apiKey,
		baseURL:      baseURL,
		filePath:     filePath,
		pollInterval: 2 * time.Second,
		httpClient:   client,
		logger:       logger,
	}
}

func (c *LlamaParseInvoker) Call(ctx context.Context) (RawOutput, error) {
	start := time.Now()
	c.logger.Info("llm.llamaparse.start", "file", filepath.Base(c.filePath))

	parseID, err := c.upload(ctx)
	if err != nil {
		return RawOutput{}, &ProviderError{Provider: constants.ProviderLlama, Err: err}
	}

	markdown, err := c.waitForResult(ctx, parseID)
	if err != nil {
		return RawOutput{}, &ProviderError{Provider: constants.ProviderLlama, Err: err}
	}

	tables := markdownTables(markdown)
	c.logger.Info("llm.llamaparse.ok",
		"parse_id", parseID,
		"tables", len(tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return RawOutput{
		Provider: string(constants.ProviderLlama),
		Model:    constants.ModelLlamaParse,
		Tables:   tables,
	}, nil
}

func (c *LlamaParseInvoker) upload(ctx context.Context) (string, error) {
	f, err := os.Open(c.filePath)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(c.filePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.baseURL, "/")+"/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("upload status %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("upload response missing id")
	}
	return out.ID, nil
}

func (c *LlamaParseInvoker) waitForResult(ctx context.Context, parseID string) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	jobURL := strings.TrimRight(c.baseURL, "/") + "/job/" + parseID

	for {
		var st struct {
			Status string `json:"status"`
		}
		if err := getJSON(ctx, c.httpClient, jobURL, headers, &st); err != nil {
			return "", fmt.Errorf("poll parse job: %w", err)
		}
		switch strings.ToUpper(st.Status) {
		case "SUCCESS", "COMPLETED":
			var res struct {
				Markdown string `json:"markdown"`
			}
			if err := getJSON(ctx, c.httpClient, jobURL+"/result/markdown", headers, &res); err != nil {
				return "", fmt.Errorf("fetch parse result: %w", err)
			}
			return res.Markdown, nil
		case "ERROR", "FAILED", "CANCELLED":
			return "", fmt.Errorf("parse job ended in status %s", st.Status)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// markdownTables splits markdown into blank-line blocks and keeps blocks
// containing the "|" table delimiter, one raw table per block.
func markdownTables(markdown string) []RawTable {
	blocks := strings.Split(markdown, "\n\n")
	tables := make([]RawTable, 0, len(blocks))
	for _, block := range blocks {
		if !strings.Contains(block, "|") {
			continue
		}
		lines := strings.Split(strings.TrimSpace(block), "\n")
		tables = append(tables, RawTable{Rows: lines})
	}
	return tables
}
