package constants

// Provider identifies an extraction backend.
type Provider string

const (
	ProviderLlama  Provider = "llama"  // LlamaParse structured document parser
	ProviderOpenAI Provider = "openai" // OpenAI chat completions
	ProviderGoogle Provider = "google" // Gemini generative language
)

// StubSuffix tags provider strings whose output came from the offline stub.
const StubSuffix = " (stub)"

// Default model names per routing tier.
const (
	ModelLlamaParse = "llama-parse"
	ModelGeminiPro  = "gemini-1.5-pro"
	ModelGPT4o      = "gpt-4o"
	ModelGPT4oMini  = "gpt-4o-mini"
)
