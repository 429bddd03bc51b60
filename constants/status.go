package constants

// JobStatus is the canonical status for a processing job.
type JobStatus string

// Stable values (these exact strings go over the wire).
const (
	JobStatusInProgress JobStatus = "In-Progress" // coordinator running
	JobStatusValidating JobStatus = "Validating"  // result under validation
	JobStatusCompleted  JobStatus = "Completed"   // terminal success
	JobStatusFailed     JobStatus = "Failed"      // terminal failure
)

// IsTerminal reports whether a status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
