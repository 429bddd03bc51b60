package detect

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// plainTextBackend extracts each page's text layer directly.
type plainTextBackend struct{}

func (*plainTextBackend) Name() string { return "pdf-text" }

func (*plainTextBackend) ExtractPages(_ context.Context, path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// page-level failure counts as an empty page, not a backend failure
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
