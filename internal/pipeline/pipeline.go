// Package pipeline orchestrates a transcription run: probe the source,
// split it into chunks, transcribe the chunks strictly in order, assemble
// the transcript, summarize it, and release the scratch space. The run
// advances through a fixed sequence of phases; only probing and splitting
// can fail the run as a whole, everything after degrades per fragment.
package pipeline

import "time"

// Phase names a stage of a pipeline run.
type Phase int

const (
	PhaseProbing Phase = iota
	PhaseSplitting
	PhaseTranscribing
	PhaseAssembling
	PhaseSummarizing
	PhaseCleanup
	PhaseDone
	PhaseFailed
)

// String returns the phase name used in log fields.
func (p Phase) String() string {
	switch p {
	case PhaseProbing:
		return "probing"
	case PhaseSplitting:
		return "splitting"
	case PhaseTranscribing:
		return "transcribing"
	case PhaseAssembling:
		return "assembling"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseCleanup:
		return "cleanup"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a single pipeline run.
type Options struct {
	// UseOutputDir redirects artifacts to OutputDir instead of the
	// source file's directory. OutputDir must be set when true.
	UseOutputDir bool
	OutputDir    string

	// SkipSummary omits the summarizing phase.
	SkipSummary bool

	// KeepTempFiles suppresses the chunk store release so chunk files
	// survive the run for inspection.
	KeepTempFiles bool

	// ChunkDelay paces chunk submissions: successive transcription calls
	// start at least this far apart. Zero disables pacing.
	ChunkDelay time.Duration

	// FocusPrompt, when non-empty, requests a second summary guided by
	// this prompt, written alongside the default one.
	FocusPrompt string
}

// Result reports what a run produced. It is created once when the run
// finishes and never mutated.
type Result struct {
	RunID string

	// Phase is the terminal phase: PhaseDone, or PhaseFailed when Err is set.
	Phase Phase

	// Artifact paths; empty when the artifact was not written.
	TranscriptPath     string
	SummaryPath        string
	FocusedSummaryPath string

	// ChunkCount is the number of chunks the source was split into.
	// SuccessCount and FailureCount cover the chunks that were attempted;
	// a cancelled run may leave chunks unattempted.
	ChunkCount   int
	SuccessCount int
	FailureCount int

	// Err is the fatal error, set exactly when Phase == PhaseFailed.
	Err error
}
