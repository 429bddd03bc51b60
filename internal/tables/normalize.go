// Package tables converts provider-specific table output into the uniform
// table schema.
package tables

import (
	"fmt"
	"strings"

	"doc-llm-pipeline/internal/jobs"
	"doc-llm-pipeline/internal/llm"
)

// Normalize maps raw provider tables into the uniform schema:
// blank rows are dropped, a missing title defaults to "Table (Page {i+1})",
// a missing page defaults to i+1 while that is a real page, else stays unset.
// Input order is preserved; malformed entries are defaulted, never rejected.
// Idempotent over already-normalized input.
func Normalize(raw []llm.RawTable, pageCount int) []jobs.Table {
	out := make([]jobs.Table, 0, len(raw))
	for i, rt := range raw {
		rows := make([]string, 0, len(rt.Rows))
		for _, row := range rt.Rows {
			if strings.TrimSpace(row) == "" {
				continue
			}
			rows = append(rows, row)
		}

		title := rt.Title
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("Table (Page %d)", i+1)
		}

		page := rt.Page
		if page == nil && i < pageCount {
			p := i + 1
			page = &p
		}

		out = append(out, jobs.Table{Title: title, Page: page, Rows: rows})
	}
	return out
}

// Titles returns the titles of tables in order, for cheap client consumption.
func Titles(ts []jobs.Table) []string {
	titles := make([]string, 0, len(ts))
	for _, t := range ts {
		titles = append(titles, t.Title)
	}
	return titles
}

// AllHaveRows reports whether every table kept at least one row after
// normalization. Vacuously true for an empty list.
func AllHaveRows(ts []jobs.Table) bool {
	for _, t := range ts {
		if len(t.Rows) == 0 {
			return false
		}
	}
	return true
}
