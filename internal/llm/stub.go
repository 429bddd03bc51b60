package llm

import (
	"context"

	"doc-llm-pipeline/constants"
)

// StubInvoker is the deterministic offline substitute used when a provider's
// credential is missing or its live call fails. The originally chosen
// provider name is kept, suffixed so callers can tell it apart.
type StubInvoker struct {
	Provider constants.Provider
	Model    string
}

func (s StubInvoker) Call(context.Context) (RawOutput, error) {
	return StubOutput(s.Provider, s.Model), nil
}

// StubOutput builds the synthetic single-table response for a provider/model.
func StubOutput(provider constants.Provider, model string) RawOutput {
	page := 1
	return RawOutput{
		Provider: string(provider) + constants.StubSuffix,
		Model:    model,
		Tables: []RawTable{{
			Title: "Stub Table",
			Page:  &page,
			Rows:  []string{"row1 col1 col2", "row2 col1 col2"},
		}},
	}
}
