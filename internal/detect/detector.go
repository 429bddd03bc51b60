// Package detect decides whether a PDF is image-based ("scanned") from the
// amount of machine-extractable text per page.
package detect

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"doc-llm-pipeline/internal/common"
)

// Backend extracts per-page plain text from a document on disk.
type Backend interface {
	Name() string
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// Result is the detection outcome. PageCount and Pages retain enough to
// answer both "how many pages" and "what did each page contain".
type Result struct {
	IsScanned bool
	PageCount int
	Pages     []string
}

// Detector runs a primary extraction backend and falls back to a secondary
// one. It never returns an error: total failure degrades to the conservative
// "treat as scanned" default so routing picks the highest-capability provider.
type Detector struct {
	cfg       common.DetectConfig
	primary   Backend
	secondary Backend
	logger    *slog.Logger
}

// NewDetector wires the default backends: plain-text extraction first,
// content-stream scraping second.
func NewDetector(cfg common.DetectConfig, logger *slog.Logger) *Detector {
	return NewDetectorWithBackends(cfg, &plainTextBackend{}, &contentStreamBackend{}, logger)
}

func NewDetectorWithBackends(cfg common.DetectConfig, primary, secondary Backend, logger *slog.Logger) *Detector {
	if cfg.MinTextThreshold <= 0 {
		cfg.MinTextThreshold = 20
	}
	if cfg.EmptyPageRatio <= 0 {
		cfg.EmptyPageRatio = 0.7
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{cfg: cfg, primary: primary, secondary: secondary, logger: logger}
}

// Detect extracts per-page text and applies the empty-page ratio heuristic.
func (d *Detector) Detect(ctx context.Context, path string) Result {
	pages, err := d.primary.ExtractPages(ctx, path)
	if err != nil {
		d.logger.Warn("detect.primary_failed",
			"backend", d.primary.Name(), "path", path, "error", err)
		pages, err = d.secondary.ExtractPages(ctx, path)
	}
	if err != nil {
		d.logger.Error("detect.all_backends_failed",
			"backend", d.secondary.Name(), "path", path, "error", err)
		return Result{IsScanned: true}
	}

	empty := 0
	for _, page := range pages {
		if len(strings.TrimSpace(page)) < d.cfg.MinTextThreshold {
			empty++
		}
	}
	pageCount := len(pages)
	denom := pageCount
	if denom < 1 {
		denom = 1
	}
	isScanned := float32(empty)/float32(denom) >= d.cfg.EmptyPageRatio

	d.logger.Info("detect.ok",
		"path", path,
		"pages", pageCount,
		"empty_pages", empty,
		"is_scanned", isScanned,
	)
	return Result{IsScanned: isScanned, PageCount: pageCount, Pages: pages}
}

// Sample joins the first maxPages pages into a classifier sample capped at
// maxChars characters.
func Sample(pages []string, maxPages, maxChars int) string {
	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	joined := strings.TrimSpace(strings.Join(pages, " "))
	if maxChars > 0 && len(joined) > maxChars {
		// never split a multibyte rune at the cap
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(joined[cut]) {
			cut--
		}
		return joined[:cut]
	}
	return joined
}
