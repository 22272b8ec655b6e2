package constants

// JobStatus is the canonical status for recorded extraction jobs.
type JobStatus string

// Stable values (store these exact strings in the job store). Jobs are
// recorded synchronously with the request, so RUNNING is the only
// non-terminal state.
const (
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOK      JobStatus = "OK"      // full pipeline completed
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
