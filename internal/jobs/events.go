package jobs

import "doc-llm-pipeline/constants"

// Update is emitted once per status transition. Terminal transitions carry
// the full result payload.
type Update struct {
	JobID  string              `json:"job_id"`
	Status constants.JobStatus `json:"status"`
	Result *Result             `json:"result,omitempty"`
}

// Publisher delivers job updates to subscribers. Delivery is best-effort;
// a failing publisher must never affect job outcome.
type Publisher interface {
	Publish(update Update)
}

// NopPublisher discards all updates.
type NopPublisher struct{}

func (NopPublisher) Publish(Update) {}
