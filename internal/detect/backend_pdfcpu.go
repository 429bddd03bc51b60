package detect

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// contentStreamBackend scrapes string literals out of raw page content
// streams. Cruder than the text layer, but it survives documents the primary
// backend chokes on.
type contentStreamBackend struct{}

func (*contentStreamBackend) Name() string { return "pdf-content" }

// pdfStringLiteral matches ( ... ) literals in content streams, honoring
// escaped parens and backslashes.
var pdfStringLiteral = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

func (*contentStreamBackend) ExtractPages(_ context.Context, path string) ([]string, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf context: %w", err)
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for i := 1; i <= pdfCtx.PageCount; i++ {
		r, err := pdfcpu.ExtractPageContent(pdfCtx, i)
		if err != nil || r == nil {
			pages = append(pages, "")
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, scrapeText(string(content)))
	}
	return pages, nil
}

// scrapeText pulls the string literals shown by text operators and joins them.
func scrapeText(content string) string {
	matches := pdfStringLiteral.FindAllStringSubmatch(content, -1)
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		s := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`).Replace(m[1])
		if strings.TrimSpace(s) == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
