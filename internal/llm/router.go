package llm

import (
	"log/slog"
	"net/http"

	"doc-llm-pipeline/constants"
	"doc-llm-pipeline/internal/classify"
	"doc-llm-pipeline/internal/common"
)

// Router maps document traits to a provider selection. It only decides and
// builds the capability; executing the call and recovering from its failure
// is the coordinator's job.
type Router struct {
	cfg        common.LLMConfig
	httpClient *http.Client
	logger     *slog.Logger
}

func NewRouter(cfg common.LLMConfig, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Select picks a provider/model in strict priority order:
//  1. file on disk and LlamaParse credential → structured document parser
//  2. long or scanned document → high-capacity general model
//  3. financial content → stronger general-purpose model
//  4. otherwise → cheaper general-purpose model
//
// A missing credential for the chosen provider substitutes the stub for the
// same provider/model; it never silently switches providers.
func (r *Router) Select(pageCount int, sampleText string, isScanned bool, filePath string) Selection {
	var provider constants.Provider
	var model string

	switch {
	case filePath != "" && r.cfg.LlamaKey != "":
		provider, model = constants.ProviderLlama, constants.ModelLlamaParse
	case pageCount > 10 || isScanned:
		provider, model = constants.ProviderGoogle, constants.ModelGeminiPro
	case classify.ContainsFinancialKeywords(sampleText):
		provider, model = constants.ProviderOpenAI, constants.ModelGPT4o
	default:
		provider, model = constants.ProviderOpenAI, constants.ModelGPT4oMini
	}

	if !r.hasCredential(provider) {
		r.logger.Warn("router.missing_credential", "provider", provider, "model", model)
		return Selection{
			Provider: provider,
			Model:    model,
			Stub:     true,
			Invoker:  StubInvoker{Provider: provider, Model: model},
		}
	}

	r.logger.Info("router.selected", "provider", provider, "model", model,
		"page_count", pageCount, "is_scanned", isScanned)
	return Selection{
		Provider: provider,
		Model:    model,
		Invoker:  r.invokerFor(provider, model, sampleText, filePath),
	}
}

func (r *Router) hasCredential(provider constants.Provider) bool {
	switch provider {
	case constants.ProviderOpenAI:
		return r.cfg.OpenAIKey != ""
	case constants.ProviderGoogle:
		return r.cfg.GoogleKey != ""
	case constants.ProviderLlama:
		return r.cfg.LlamaKey != ""
	}
	return false
}

func (r *Router) invokerFor(provider constants.Provider, model, sampleText, filePath string) Invoker {
	switch provider {
	case constants.ProviderLlama:
		return NewLlamaParseInvoker(r.cfg.LlamaKey, r.cfg.LlamaBaseURL, filePath, r.httpClient, r.logger)
	case constants.ProviderGoogle:
		return NewGeminiInvoker(r.cfg.GoogleKey, r.cfg.GoogleBaseURL, model, sampleText, r.httpClient, r.logger)
	default:
		return NewOpenAIInvoker(r.cfg.OpenAIKey, r.cfg.OpenAIBaseURL, model, sampleText, r.httpClient, r.logger)
	}
}
