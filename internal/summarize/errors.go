package summarize

import "errors"

// ErrEmptyTranscript indicates there was no text to summarize.
var ErrEmptyTranscript = errors.New("transcript is empty")

// ErrTranscriptTooLong indicates the transcript exceeds the input token budget.
var ErrTranscriptTooLong = errors.New("transcript exceeds input token budget")

// ErrNoSummary indicates the model returned an empty completion.
var ErrNoSummary = errors.New("model returned no summary")
