package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"doc-llm-pipeline/internal/jobs"
)

func TestTablesXLSX(t *testing.T) {
	page := 2
	result := &jobs.Result{
		LLMProvider: "openai (stub)",
		LLMModel:    "gpt-4o-mini",
		PageCount:   3,
		Tables: []jobs.Table{
			{Title: "Stub Table", Page: &page, Rows: []string{"row1 col1 col2", "row2 col1 col2"}},
		},
	}

	svc := NewService(nil)
	b, err := svc.TablesXLSX("job-1", result)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Tables", "B1"); v != "openai (stub)" {
		t.Fatalf("provider cell = %q", v)
	}
	if v, _ := f.GetCellValue("Tables", "A6"); v != "Stub Table (page 2)" {
		t.Fatalf("table header cell = %q", v)
	}
	if v, _ := f.GetCellValue("Tables", "A7"); v != "row1 col1 col2" {
		t.Fatalf("row cell = %q", v)
	}
}

func TestTablesXLSX_NoTables(t *testing.T) {
	svc := NewService(nil)
	b, err := svc.TablesXLSX("job-1", &jobs.Result{LLMProvider: "google", LLMModel: "gemini-1.5-pro"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("empty workbook")
	}
}
