package transcribe

import "strings"

// JobStatus is the closed set of job states this client understands.
// Anything else the service reports parses as JobUnknown; unknown statuses
// are treated as "still running" so that server-side additions never make
// the client misread a live job (polling continues until the await ceiling).
type JobStatus int

const (
	// JobUnknown is any status string this client does not recognize.
	JobUnknown JobStatus = iota

	// JobQueued means the job is waiting to be picked up.
	JobQueued

	// JobProcessing means the service is working on the job.
	JobProcessing

	// JobCompleted means the transcript is ready.
	JobCompleted

	// JobError means the job failed on the service side.
	JobError
)

// parseJobStatus maps a wire status string onto the closed JobStatus set.
func parseJobStatus(s string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "queued":
		return JobQueued
	case "processing":
		return JobProcessing
	case "completed":
		return JobCompleted
	case "error":
		return JobError
	default:
		return JobUnknown
	}
}

// String implements fmt.Stringer.
func (s JobStatus) String() string {
	switch s {
	case JobQueued:
		return "queued"
	case JobProcessing:
		return "processing"
	case JobCompleted:
		return "completed"
	case JobError:
		return "error"
	default:
		return "unknown"
	}
}

// terminal reports whether the job has reached a final state.
func (s JobStatus) terminal() bool {
	return s == JobCompleted || s == JobError
}

// FragmentStatus describes the outcome of transcribing one chunk.
type FragmentStatus int

const (
	// FragmentIncomplete is the zero value: no terminal outcome was observed
	// (canceled mid-wait, or the job's fate could not be determined).
	FragmentIncomplete FragmentStatus = iota

	// FragmentSuccess means the service returned a transcript for the chunk.
	FragmentSuccess

	// FragmentFailed means the chunk will never produce text: submission
	// failed, the job itself failed, or the wait expired mid-run.
	FragmentFailed
)

// String implements fmt.Stringer.
func (s FragmentStatus) String() string {
	switch s {
	case FragmentSuccess:
		return "success"
	case FragmentFailed:
		return "failed"
	default:
		return "incomplete"
	}
}

// Fragment is the transcription outcome for a single chunk. The client
// fills Text, Status and Err; Index is assigned by the caller, which owns
// chunk ordering.
type Fragment struct {
	Index  int
	Text   string
	Status FragmentStatus
	Err    error
}
