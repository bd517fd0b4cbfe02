package transcribe

import "errors"

// ErrJobFailed indicates the service reported a terminal error for a job.
var ErrJobFailed = errors.New("transcription job failed")

// ErrAwaitTimeout indicates a job did not reach a terminal status before
// the await ceiling expired.
var ErrAwaitTimeout = errors.New("transcription job did not finish in time")

// ErrUnknownStatus indicates the service reported a status this client
// does not recognize.
var ErrUnknownStatus = errors.New("unknown job status")

// ErrInvalidResponse indicates a service response could not be decoded.
var ErrInvalidResponse = errors.New("invalid service response")
