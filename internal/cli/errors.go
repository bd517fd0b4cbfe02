package cli

import "errors"

// Sentinels for failures the command layer itself detects. Everything a
// command runner returns wraps one of these or a domain sentinel, which
// is what main's exit code mapping keys on.

var (
	// ErrAPIKeyMissing means summarization was requested without
	// OPENAI_API_KEY in the environment.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrTranscribeURLMissing means no transcription endpoint is set,
	// neither in the config file nor as TRANSCRIBE_URL.
	ErrTranscribeURLMissing = errors.New("transcription service URL not configured")

	// ErrUnsupportedFormat rejects input files by extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFlags covers flag values and combinations that parse but
	// cannot work, like a zero chunk length.
	ErrInvalidFlags = errors.New("invalid flags")

	// ErrFileNotFound means the input path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPipelineFailed wraps failures past validation, from probing
	// through writing the transcript.
	ErrPipelineFailed = errors.New("transcription pipeline failed")
)
