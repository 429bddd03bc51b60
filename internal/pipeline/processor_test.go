package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"doc-llm-pipeline/constants"
	"doc-llm-pipeline/internal/common"
	"doc-llm-pipeline/internal/detect"
	"doc-llm-pipeline/internal/jobs"
	"doc-llm-pipeline/internal/llm"
)

type fakeDetector struct {
	result detect.Result
}

func (f *fakeDetector) Detect(context.Context, string) detect.Result { return f.result }

type fakeSelector struct {
	selection llm.Selection
	gotPages  int
	gotSample string
}

func (f *fakeSelector) Select(pageCount int, sampleText string, _ bool, _ string) llm.Selection {
	f.gotPages = pageCount
	f.gotSample = sampleText
	return f.selection
}

type fakeInvoker struct {
	out llm.RawOutput
	err error
}

func (f *fakeInvoker) Call(context.Context) (llm.RawOutput, error) { return f.out, f.err }

type recordingPublisher struct {
	mu      sync.Mutex
	updates []jobs.Update
}

func (r *recordingPublisher) Publish(u jobs.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingPublisher) statuses() []constants.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]constants.JobStatus, 0, len(r.updates))
	for _, u := range r.updates {
		out = append(out, u.Status)
	}
	return out
}

func testConfig() *common.Config {
	return &common.Config{
		Detect: common.DetectConfig{
			MinTextThreshold: 20,
			EmptyPageRatio:   0.7,
			SamplePages:      3,
			SampleMaxChars:   5000,
		},
	}
}

func newProcessor(det detect.Result, sel llm.Selection, store jobs.Store, pub jobs.Publisher) *Processor {
	return NewProcessor(nil, testConfig(),
		&fakeDetector{result: det},
		&fakeSelector{selection: sel},
		store, pub)
}

func seedJob(store jobs.Store, id string) {
	store.Put(&jobs.Job{ID: id, FileID: "file-1", Status: constants.JobStatusInProgress})
}

func TestProcess_CompletesWithStub(t *testing.T) {
	store := jobs.NewMemoryStore()
	pub := &recordingPublisher{}
	seedJob(store, "job-1")

	sel := llm.Selection{
		Provider: constants.ProviderOpenAI,
		Model:    constants.ModelGPT4oMini,
		Stub:     true,
		Invoker:  llm.StubInvoker{Provider: constants.ProviderOpenAI, Model: constants.ModelGPT4oMini},
	}
	p := newProcessor(detect.Result{
		IsScanned: false,
		PageCount: 3,
		Pages:     []string{"page one text", "page two text", "page three text"},
	}, sel, store, pub)

	p.Process(context.Background(), "job-1", "/tmp/doc.pdf")

	job, _ := store.Get("job-1")
	if job.Status != constants.JobStatusCompleted {
		t.Fatalf("status = %s, want Completed", job.Status)
	}
	res := job.Result
	if res == nil {
		t.Fatal("expected result")
	}
	if res.IsScanned {
		t.Fatal("is_scanned should be false")
	}
	if !res.UsedStub || !strings.HasSuffix(res.LLMProvider, constants.StubSuffix) {
		t.Fatalf("expected stub-tagged provider, got %q used_stub=%v", res.LLMProvider, res.UsedStub)
	}
	if res.TableCount != 1 || res.Tables[0].Title != "Stub Table" {
		t.Fatalf("unexpected tables: %+v", res.Tables)
	}
	if !res.ValidationPassed {
		t.Fatal("validation should pass for the stub table")
	}

	want := []constants.JobStatus{
		constants.JobStatusInProgress,
		constants.JobStatusValidating,
		constants.JobStatusCompleted,
	}
	got := pub.statuses()
	if len(got) != len(want) {
		t.Fatalf("updates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("update %d = %s, want %s", i, got[i], want[i])
		}
	}
	last := pub.updates[len(pub.updates)-1]
	if last.Result == nil {
		t.Fatal("terminal update must carry the result payload")
	}
}

func TestProcess_StubSubstitutionOnCallFailure(t *testing.T) {
	store := jobs.NewMemoryStore()
	seedJob(store, "job-1")

	sel := llm.Selection{
		Provider: constants.ProviderGoogle,
		Model:    constants.ModelGeminiPro,
		Invoker:  &fakeInvoker{err: &llm.ProviderError{Provider: constants.ProviderGoogle, Err: errors.New("upstream 500")}},
	}
	p := newProcessor(detect.Result{PageCount: 2, Pages: []string{"a", "b"}, IsScanned: true},
		sel, store, jobs.NopPublisher{})

	p.Process(context.Background(), "job-1", "/tmp/doc.pdf")

	job, _ := store.Get("job-1")
	if job.Status != constants.JobStatusCompleted {
		t.Fatalf("status = %s, want Completed after stub substitution", job.Status)
	}
	if job.Result.LLMProvider != "google (stub)" {
		t.Fatalf("provider = %q, want google (stub)", job.Result.LLMProvider)
	}
	if !job.Result.UsedStub {
		t.Fatal("used_stub should be true")
	}
}

func TestProcess_ValidationFailureOnEmptyTable(t *testing.T) {
	store := jobs.NewMemoryStore()
	pub := &recordingPublisher{}
	seedJob(store, "job-1")

	sel := llm.Selection{
		Provider: constants.ProviderOpenAI,
		Model:    constants.ModelGPT4oMini,
		Invoker: &fakeInvoker{out: llm.RawOutput{
			Provider: "openai",
			Model:    constants.ModelGPT4oMini,
			Tables: []llm.RawTable{
				{Title: "Fine", Rows: []string{"row"}},
				{Title: "Hollow", Rows: []string{"   ", ""}},
			},
		}},
	}
	p := newProcessor(detect.Result{PageCount: 1, Pages: []string{"text"}}, sel, store, pub)

	p.Process(context.Background(), "job-1", "/tmp/doc.pdf")

	job, _ := store.Get("job-1")
	if job.Status != constants.JobStatusFailed {
		t.Fatalf("status = %s, want Failed", job.Status)
	}
	if job.Result == nil || job.Result.ValidationPassed {
		t.Fatal("result must record failed validation")
	}
	if job.Result.Error == "" {
		t.Fatal("failed job must carry an error message")
	}
	if !strings.Contains(job.Result.Error, common.ErrValidation.Error()) {
		t.Fatalf("error = %q, want it to name the validation failure", job.Result.Error)
	}

	statuses := pub.statuses()
	if statuses[len(statuses)-1] != constants.JobStatusFailed {
		t.Fatalf("last update = %s, want Failed", statuses[len(statuses)-1])
	}
}

func TestProcess_FinancialSampleClassified(t *testing.T) {
	store := jobs.NewMemoryStore()
	seedJob(store, "job-1")

	selector := &fakeSelector{selection: llm.Selection{
		Provider: constants.ProviderOpenAI,
		Model:    constants.ModelGPT4o,
		Invoker:  llm.StubInvoker{Provider: constants.ProviderOpenAI, Model: constants.ModelGPT4o},
	}}
	p := NewProcessor(nil, testConfig(),
		&fakeDetector{result: detect.Result{
			PageCount: 2,
			Pages:     []string{"the consolidated balance sheet", "notes"},
		}},
		selector, store, jobs.NopPublisher{})

	p.Process(context.Background(), "job-1", "/tmp/doc.pdf")

	job, _ := store.Get("job-1")
	if !job.Result.HasFinancialTerms {
		t.Fatal("expected has_financial_terms")
	}
	if selector.gotSample == "" || selector.gotPages != 2 {
		t.Fatalf("selector saw pages=%d sample=%q", selector.gotPages, selector.gotSample)
	}
}

func TestProcess_TerminalStateNotLeft(t *testing.T) {
	store := jobs.NewMemoryStore()
	store.Put(&jobs.Job{ID: "job-1", Status: constants.JobStatusCompleted,
		Result: &jobs.Result{ValidationPassed: true}})

	sel := llm.Selection{
		Provider: constants.ProviderOpenAI,
		Model:    constants.ModelGPT4oMini,
		Invoker:  &fakeInvoker{err: errors.New("boom")},
	}
	p := newProcessor(detect.Result{}, sel, store, jobs.NopPublisher{})
	p.Process(context.Background(), "job-1", "/tmp/doc.pdf")

	job, _ := store.Get("job-1")
	if job.Status != constants.JobStatusCompleted {
		t.Fatalf("terminal status mutated to %s", job.Status)
	}
}
