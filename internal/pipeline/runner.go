package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/RedAIToronto/voice/internal/audio"
	"github.com/RedAIToronto/voice/internal/format"
	"github.com/RedAIToronto/voice/internal/logging"
	"github.com/RedAIToronto/voice/internal/summarize"
	"github.com/RedAIToronto/voice/internal/transcribe"
)

// Artifact filename suffixes, appended to the source file's base name.
const (
	transcriptSuffix     = "_transcript.txt"
	summarySuffix        = "_summary.txt"
	focusedSummarySuffix = "_focused_summary.txt"
)

// Runner drives pipeline runs. A Runner is safe to reuse across runs;
// each run owns its own chunk store and never shares mutable state with
// another run.
type Runner struct {
	prober      audio.Prober
	splitter    audio.Splitter
	transcriber transcribe.Transcriber
	summarizer  summarize.Summarizer

	log       *logging.Logger
	tempDir   string
	files     fileWriter
	openStore storeOpener
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger for run progress and warnings.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = l
	}
}

// WithTempDir sets the base directory for per-run scratch directories.
// Default: the system temp directory.
func WithTempDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.tempDir = dir
	}
}

// WithFileWriter sets the artifact writer (for testing).
func WithFileWriter(w fileWriter) RunnerOption {
	return func(r *Runner) {
		r.files = w
	}
}

// WithStoreOpener sets the chunk store factory (for testing).
func WithStoreOpener(fn storeOpener) RunnerOption {
	return func(r *Runner) {
		r.openStore = fn
	}
}

// NewRunner creates a Runner from its collaborators. summarizer may be
// nil when no summarization backend is configured; runs then skip the
// summarizing phase with a warning unless SkipSummary already applies.
func NewRunner(
	prober audio.Prober,
	splitter audio.Splitter,
	transcriber transcribe.Transcriber,
	summarizer summarize.Summarizer,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		prober:      prober,
		splitter:    splitter,
		transcriber: transcriber,
		summarizer:  summarizer,
		log:         logging.New(os.Stderr),
		files:       osFileWriter{},
		openStore:   audio.OpenChunkStore,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline for one audio file. The returned Result is
// final: Err is set exactly when the run failed outright (probe or split
// failure, or cancellation before any fragment succeeded). Per-fragment
// transcription failures never fail the run; they are logged, counted,
// and their slots omitted from the transcript. The chunk store is
// released on every path unless KeepTempFiles is set.
func (r *Runner) Run(ctx context.Context, audioPath string, opts Options) Result {
	runID := uuid.NewString()
	log := r.log.WithRun(runID)

	res := Result{RunID: runID}

	// --- Probing ---

	probeLog := log.WithField("phase", PhaseProbing.String())
	probeLog.WithField("file", filepath.Base(audioPath)).Info("probing source audio")

	src, err := r.prober.Probe(ctx, audioPath)
	if err != nil {
		res.Phase = PhaseFailed
		res.Err = fmt.Errorf("probe %s: %w", filepath.Base(audioPath), err)
		probeLog.WithError(res.Err).Error("probe failed")
		return res
	}
	probeLog.WithFields(logrus.Fields{
		"duration": format.Duration(src.Duration),
		"format":   src.Format,
	}).Info("source probed")

	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		if fp, err := audio.FingerprintFile(audioPath); err == nil {
			probeLog.WithFields(logrus.Fields{
				"size":   format.Size(fp.SizeBytes),
				"blake3": fp.BLAKE3,
			}).Debug("source fingerprint")
		}
	}

	// --- Splitting ---

	splitLog := log.WithField("phase", PhaseSplitting.String())

	store, err := r.openStore(r.tempDir,
		audio.WithStoreRunID(runID),
		audio.WithStoreWarnFunc(func(msg string) { log.Warn(msg) }),
	)
	if err != nil {
		res.Phase = PhaseFailed
		res.Err = fmt.Errorf("open chunk store: %w", err)
		splitLog.WithError(res.Err).Error("split failed")
		return res
	}
	// Release is structural: it runs whatever path the run takes below.
	defer func() {
		cleanupLog := log.WithField("phase", PhaseCleanup.String())
		if opts.KeepTempFiles {
			cleanupLog.WithField("dir", store.Dir()).Info("keeping chunk files")
			return
		}
		if err := store.Release(); err != nil {
			cleanupLog.WithError(err).Warn("chunk release incomplete")
			return
		}
		cleanupLog.Debug("scratch directory released")
	}()

	chunks, err := r.splitter.Split(ctx, src, store)
	if err != nil {
		res.Phase = PhaseFailed
		res.Err = fmt.Errorf("split %s: %w", filepath.Base(audioPath), err)
		splitLog.WithError(res.Err).Error("split failed")
		return res
	}
	res.ChunkCount = len(chunks)
	splitLog.WithField("chunks", len(chunks)).Info("source split")

	// --- Transcribing ---

	transcribeLog := log.WithField("phase", PhaseTranscribing.String())

	var limiter *rate.Limiter
	if opts.ChunkDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.ChunkDelay), 1)
	}

	fragments := make([]transcribe.Fragment, 0, len(chunks))
	for _, chunk := range chunks {
		// Cancellation is observed between chunks; the fragments
		// gathered so far keep their status.
		if ctx.Err() != nil {
			transcribeLog.WithField("chunk", chunk.Index).Info("run cancelled, stopping before this chunk")
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				transcribeLog.WithField("chunk", chunk.Index).Info("run cancelled while pacing")
				break
			}
		}

		chunkLog := transcribeLog.WithField("chunk", chunk.Index)
		chunkLog.WithField("size", format.Size(chunk.Size)).Info("transcribing chunk")

		fragment := r.transcriber.Transcribe(ctx, chunk.Path)
		fragment.Index = chunk.Index
		fragments = append(fragments, fragment)

		if fragment.Status == transcribe.FragmentSuccess {
			chunkLog.WithField("status", fragment.Status.String()).Info("chunk transcribed")
		} else {
			chunkLog.WithField("status", fragment.Status.String()).
				WithError(fragment.Err).Warn("chunk not transcribed")
		}
	}

	for _, f := range fragments {
		if f.Status == transcribe.FragmentSuccess {
			res.SuccessCount++
		} else {
			res.FailureCount++
		}
	}

	if res.SuccessCount == 0 {
		if ctx.Err() != nil {
			res.Phase = PhaseFailed
			res.Err = fmt.Errorf("run cancelled with no transcribed chunks: %w", ctx.Err())
			return res
		}
		log.WithField("phase", PhaseDone.String()).Warn("no chunk produced text; no transcript written")
		res.Phase = PhaseDone
		return res
	}

	// --- Assembling ---

	assembleLog := log.WithField("phase", PhaseAssembling.String())

	transcript := assemble(fragments)
	if transcript == "" {
		assembleLog.Warn("assembled transcript is empty; nothing to write")
		res.Phase = PhaseDone
		return res
	}

	transcriptPath := artifactPath(audioPath, opts, transcriptSuffix)
	if r.persist(transcriptPath, transcript, assembleLog) {
		res.TranscriptPath = transcriptPath
		assembleLog.WithField("path", transcriptPath).Info("transcript written")
	}

	// --- Summarizing ---

	summarizeLog := log.WithField("phase", PhaseSummarizing.String())
	switch {
	case opts.SkipSummary:
		summarizeLog.Debug("summary skipped by option")
	case r.summarizer == nil:
		summarizeLog.Warn("no summarizer configured, skipping summary")
	case ctx.Err() != nil:
		summarizeLog.Info("run cancelled, skipping summary")
	default:
		if text, err := r.summarizer.Summarize(ctx, transcript, ""); err != nil {
			summarizeLog.WithError(err).Warn("summary failed, continuing without it")
		} else {
			path := artifactPath(audioPath, opts, summarySuffix)
			if r.persist(path, text, summarizeLog) {
				res.SummaryPath = path
				summarizeLog.WithField("path", path).Info("summary written")
			}
		}

		if opts.FocusPrompt != "" {
			if text, err := r.summarizer.Summarize(ctx, transcript, opts.FocusPrompt); err != nil {
				summarizeLog.WithError(err).Warn("focused summary failed, continuing without it")
			} else {
				path := artifactPath(audioPath, opts, focusedSummarySuffix)
				if r.persist(path, text, summarizeLog) {
					res.FocusedSummaryPath = path
					summarizeLog.WithField("path", path).Info("focused summary written")
				}
			}
		}
	}

	res.Phase = PhaseDone
	return res
}

// persist writes an artifact, creating the output directory if needed.
// Failures are logged and reported as false, never escalated: a missing
// artifact file must not undo the phases that already completed.
func (r *Runner) persist(path, content string, log *logrus.Entry) bool {
	if err := r.files.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.WithError(err).WithField("path", path).Warn("could not create output directory")
		return false
	}
	if err := r.files.WriteFile(path, []byte(content), 0o644); err != nil {
		log.WithError(err).WithField("path", path).Warn("could not write artifact")
		return false
	}
	return true
}

// assemble joins successful fragment texts in ascending index order with a
// blank line between fragments. Failed fragments leave no placeholder, and
// completion order does not matter.
func assemble(fragments []transcribe.Fragment) string {
	ordered := make([]transcribe.Fragment, len(fragments))
	copy(ordered, fragments)
	slices.SortFunc(ordered, func(a, b transcribe.Fragment) int {
		return cmp.Compare(a.Index, b.Index)
	})

	parts := make([]string, 0, len(ordered))
	for _, f := range ordered {
		if f.Status != transcribe.FragmentSuccess {
			continue
		}
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

// artifactPath derives an artifact path from the source file's base name.
// Artifacts sit next to the source unless UseOutputDir redirects them.
func artifactPath(audioPath string, opts Options, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	dir := filepath.Dir(audioPath)
	if opts.UseOutputDir && opts.OutputDir != "" {
		dir = opts.OutputDir
	}
	return filepath.Join(dir, base+suffix)
}
