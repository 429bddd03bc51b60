package llm

import (
	"context"
	"fmt"

	"doc-llm-pipeline/constants"
)

// RawTable is a provider's table output before normalization.
type RawTable struct {
	Title string   `json:"title,omitempty"`
	Page  *int     `json:"page,omitempty"`
	Rows  []string `json:"rows"`
}

// RawOutput is what every provider call resolves to. Provider carries the
// stub suffix when the output came from the offline fallback.
type RawOutput struct {
	Provider string
	Model    string
	Tables   []RawTable
}

// Invoker executes one extraction call against a provider.
type Invoker interface {
	Call(ctx context.Context) (RawOutput, error)
}

// Selection is the router's decision: which provider/model to use and the
// capability to execute it. Stub is true when the credential gate already
// substituted the offline generator.
type Selection struct {
	Provider constants.Provider
	Model    string
	Stub     bool
	Invoker  Invoker
}

// ProviderError wraps a failed live call. The coordinator, not the router,
// recovers from it by substituting the stub output.
type ProviderError struct {
	Provider constants.Provider
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
