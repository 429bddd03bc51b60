// Package pipeline coordinates one job's lifecycle: detection, provider
// routing, normalization, validation, and the terminal store write.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"doc-llm-pipeline/constants"
	"doc-llm-pipeline/internal/classify"
	"doc-llm-pipeline/internal/common"
	"doc-llm-pipeline/internal/detect"
	"doc-llm-pipeline/internal/jobs"
	"doc-llm-pipeline/internal/llm"
	"doc-llm-pipeline/internal/tables"
)

// DocumentDetector classifies a document as scanned or text-based.
type DocumentDetector interface {
	Detect(ctx context.Context, path string) detect.Result
}

// Selector decides which provider handles a document.
type Selector interface {
	Select(pageCount int, sampleText string, isScanned bool, filePath string) llm.Selection
}

// Processor runs the job state machine. Exactly one Processor execution may
// run per job id; the Runner enforces that.
type Processor struct {
	Logger    *slog.Logger
	Cfg       common.DetectConfig
	Delay     time.Duration // makes Validating observable; zero in tests
	Detector  DocumentDetector
	Router    Selector
	Store     jobs.Store
	Publisher jobs.Publisher
}

func NewProcessor(logger *slog.Logger, cfg *common.Config, det DocumentDetector, router Selector, store jobs.Store, pub jobs.Publisher) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if pub == nil {
		pub = jobs.NopPublisher{}
	}
	return &Processor{
		Logger:    logger,
		Cfg:       cfg.Detect,
		Delay:     cfg.LLM.ValidationDelay,
		Detector:  det,
		Router:    router,
		Store:     store,
		Publisher: pub,
	}
}

// Process drives jobID to a terminal state. It never returns an error:
// validation failures and unclassified errors both land in Failed with an
// error message on the result.
func (p *Processor) Process(ctx context.Context, jobID, filePath string) {
	defer func() {
		if r := recover(); r != nil {
			p.fail(jobID, common.NewAppError("PANIC", fmt.Sprintf("%v", r), common.ErrInternal))
		}
	}()

	if err := p.run(ctx, jobID, filePath); err != nil {
		p.Logger.Error("processor.failed", "job_id", jobID, "error", err)
		p.fail(jobID, err)
	}
}

func (p *Processor) run(ctx context.Context, jobID, filePath string) error {
	p.transition(jobID, constants.JobStatusInProgress, nil)

	det := p.Detector.Detect(ctx, filePath)
	p.Logger.Info("processor.detect.ok",
		"job_id", jobID, "pages", det.PageCount, "is_scanned", det.IsScanned)

	sample := detect.Sample(det.Pages, p.Cfg.SamplePages, p.Cfg.SampleMaxChars)
	financial := classify.ContainsFinancialKeywords(sample)

	sel := p.Router.Select(det.PageCount, sample, det.IsScanned, filePath)

	out, err := sel.Invoker.Call(ctx)
	if err != nil {
		// a failed live call never fails the job; substitute the stub for
		// the same provider/model
		p.Logger.Warn("processor.provider_call_failed",
			"job_id", jobID, "provider", sel.Provider, "model", sel.Model, "error", err)
		out = llm.StubOutput(sel.Provider, sel.Model)
	}

	normalized := tables.Normalize(out.Tables, det.PageCount)

	p.transition(jobID, constants.JobStatusValidating, nil)
	if p.Delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(p.Delay):
		}
	}

	result := &jobs.Result{
		Pages:             det.Pages,
		PageCount:         det.PageCount,
		IsScanned:         det.IsScanned,
		LLMProvider:       out.Provider,
		LLMModel:          out.Model,
		Tables:            normalized,
		TableCount:        len(normalized),
		TableTitles:       tables.Titles(normalized),
		UsedStub:          strings.Contains(out.Provider, constants.StubSuffix),
		HasFinancialTerms: financial,
	}

	if !tables.AllHaveRows(normalized) {
		verr := common.WrapError(common.ErrValidation, "table with zero rows after normalization")
		result.ValidationPassed = false
		result.Error = verr.Error()
		p.transition(jobID, constants.JobStatusFailed, result)
		return nil
	}

	result.ValidationPassed = true
	p.transition(jobID, constants.JobStatusCompleted, result)
	p.Logger.Info("processor.completed",
		"job_id", jobID,
		"provider", result.LLMProvider,
		"tables", result.TableCount,
		"used_stub", result.UsedStub,
	)
	return nil
}

// transition writes the status (and result, when given) and notifies
// subscribers. Terminal states are never left.
func (p *Processor) transition(jobID string, status constants.JobStatus, result *jobs.Result) {
	var update *jobs.Update
	err := p.Store.Update(jobID, func(j *jobs.Job) {
		if j.Status.IsTerminal() {
			return
		}
		j.Status = status
		if result != nil {
			j.Result = result
		}
		update = &jobs.Update{JobID: jobID, Status: status, Result: result}
	})
	if err != nil {
		p.Logger.Error("processor.transition_failed", "job_id", jobID, "status", status, "error", err)
		return
	}
	if update != nil {
		p.Publisher.Publish(*update)
	}
}

func (p *Processor) fail(jobID string, cause error) {
	p.transition(jobID, constants.JobStatusFailed, &jobs.Result{Error: cause.Error()})
}
