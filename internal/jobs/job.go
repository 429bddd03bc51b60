package jobs

import (
	"time"

	"doc-llm-pipeline/constants"
)

// Table is the uniform table schema every provider output is normalized into.
type Table struct {
	Title string   `json:"title"`
	Page  *int     `json:"page"`
	Rows  []string `json:"rows"`
}

// Result is attached to a job once it reaches a terminal state.
// Immutable after attachment.
type Result struct {
	Pages             []string `json:"pages"`
	PageCount         int      `json:"page_count"`
	IsScanned         bool     `json:"is_scanned"`
	LLMProvider       string   `json:"llm_provider"`
	LLMModel          string   `json:"llm_model"`
	Tables            []Table  `json:"tables"`
	TableCount        int      `json:"table_count"`
	TableTitles       []string `json:"table_titles"`
	UsedStub          bool     `json:"used_stub"`
	HasFinancialTerms bool     `json:"has_financial_terms"`
	ValidationPassed  bool     `json:"validation_passed"`
	Error             string   `json:"error,omitempty"`
}

// Job tracks one document-processing request from submission to terminal state.
type Job struct {
	ID        string              `json:"job_id"`
	FileID    string              `json:"file_id"`
	Status    constants.JobStatus `json:"status"`
	Result    *Result             `json:"result,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
