package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RedAIToronto/voice/internal/config"
	"github.com/RedAIToronto/voice/internal/lang"
	"github.com/RedAIToronto/voice/internal/pipeline"
	"github.com/RedAIToronto/voice/internal/summarize"
)

// Environment variables holding secrets. Non-secret settings go through
// internal/config, which has env fallbacks of its own.
const (
	// EnvOpenAIAPIKey holds the key for the summarization backend.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	// EnvTranscribeAPIKey holds the bearer token for the transcription
	// service. Empty means unauthenticated (self-hosted services).
	EnvTranscribeAPIKey = "TRANSCRIBE_API_KEY"
)

// supportedFormats lists audio container formats the transcription service
// accepts for upload.
var supportedFormats = map[string]bool{
	".ogg":  true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".webm": true,
}

// supportedFormatsList renders the format set for error messages,
// sorted so the wording is stable.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// transcribeOptions holds validated options for the transcribe command.
type transcribeOptions struct {
	inputPath   string
	outputDir   string
	skipSummary bool
	keepTemp    bool
	chunkDelay  time.Duration
	focus       string
	language    string
}

// TranscribeCmd builds the transcribe command, which runs the full
// pipeline on one audio file.
func TranscribeCmd(env *Env) *cobra.Command {
	var (
		outputDir   string
		skipSummary bool
		keepTemp    bool
		chunkDelay  time.Duration
		focus       string
		language    string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe and summarize an audio file",
		Long: `Transcribe an audio file and summarize the result.

The audio is cut into fixed-length chunks, shrinking the length whenever a
chunk comes out over the transcription service's size limit. Chunks are sent
to the service one at a time, in order, and the pieces are joined into a
single transcript. Unless --skip-summary is set, the transcript is then
summarized with OpenAI.

Writes <name>_transcript.txt and <name>_summary.txt next to the input file,
or under --output-dir. With --focus, an additional <name>_focused_summary.txt
is generated from the given prompt.

Supported formats: ogg, mp3, wav, m4a, flac, mp4, mpeg, mpga, webm`,
		Example: `  voice transcribe standup.ogg
  voice transcribe meeting.mp3 -d ~/notes
  voice transcribe interview.wav --focus "action items and owners"
  voice transcribe lecture.m4a --language en --chunk-delay 2s
  voice transcribe huddle.ogg --skip-summary --keep-temp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseTranscribeOptions(args[0], outputDir, skipSummary, keepTemp, chunkDelay, focus, language)
			if err != nil {
				return err
			}
			return runTranscribe(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Directory for output files (default: next to input)")
	cmd.Flags().BoolVar(&skipSummary, "skip-summary", false, "Write the transcript only, no summary")
	cmd.Flags().BoolVar(&keepTemp, "keep-temp", false, "Keep chunk files for inspection")
	cmd.Flags().DurationVar(&chunkDelay, "chunk-delay", 0, "Minimum delay between chunk submissions (e.g. 2s)")
	cmd.Flags().StringVar(&focus, "focus", "", "Prompt for an additional focused summary")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Audio language hint (ISO 639-1 code, e.g., en, fr)")

	return cmd
}

// parseTranscribeOptions validates CLI inputs into transcribeOptions.
// All flag-level validation happens at the CLI boundary.
func parseTranscribeOptions(
	inputPath, outputDir string,
	skipSummary, keepTemp bool,
	chunkDelay time.Duration,
	focus, language string,
) (transcribeOptions, error) {
	if chunkDelay < 0 {
		return transcribeOptions{}, fmt.Errorf("%w: --chunk-delay must not be negative", ErrInvalidFlags)
	}
	if focus != "" && skipSummary {
		return transcribeOptions{}, fmt.Errorf("%w: --focus cannot be combined with --skip-summary", ErrInvalidFlags)
	}
	if err := lang.Validate(language); err != nil {
		return transcribeOptions{}, err
	}
	return transcribeOptions{
		inputPath:   inputPath,
		outputDir:   outputDir,
		skipSummary: skipSummary,
		keepTemp:    keepTemp,
		chunkDelay:  chunkDelay,
		focus:       focus,
		// Services take base codes only; pt-BR becomes pt.
		language: lang.BaseCode(language),
	}, nil
}

// runTranscribe executes the transcribe command with validated options.
// Validation order: file exists -> format -> config -> keys -> ffmpeg.
func runTranscribe(cmd *cobra.Command, env *Env, opts transcribeOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. File exists
	if _, err := os.Stat(opts.inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, opts.inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(opts.inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	// 3. Load config for output-dir, transcribe-url, ffmpeg-path
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	// 4. Output directory (flag wins over config)
	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	outputDir = config.ExpandPath(outputDir)

	// 5. Service URL and API keys
	baseURL := cfg.TranscribeURL
	if baseURL == "" {
		return fmt.Errorf("%w (set it with: voice config set %s <url>)",
			ErrTranscribeURLMissing, config.KeyTranscribeURL)
	}
	transcribeKey := env.Getenv(EnvTranscribeAPIKey)

	var openaiKey string
	if !opts.skipSummary {
		openaiKey = env.Getenv(EnvOpenAIAPIKey)
		if openaiKey == "" {
			return fmt.Errorf("%w (set it with: export %s=sk-..., or pass --skip-summary)",
				ErrAPIKeyMissing, EnvOpenAIAPIKey)
		}
	}

	// 6. FFmpeg present
	ffmpegPath, err := env.FFmpegResolver.Resolve(cfg.FFmpegPath)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	// === SETUP ===

	prober, err := env.ProberFactory.NewProber(ffmpegPath)
	if err != nil {
		return err
	}

	splitter, err := env.SplitterFactory.NewSplitter(ffmpegPath)
	if err != nil {
		return err
	}

	transcriber, err := env.TranscriberFactory.NewTranscriber(baseURL, transcribeKey, opts.language)
	if err != nil {
		return err
	}

	// The runner treats a nil summarizer as "no summary"; with skip-summary
	// there is no key to build one from anyway.
	var summarizer summarize.Summarizer
	if !opts.skipSummary {
		summarizer = env.SummarizerFactory.NewSummarizer(openaiKey)
	}

	runner := env.RunnerFactory.NewRunner(prober, splitter, transcriber, summarizer)

	// === RUN ===

	fmt.Fprintf(env.Stderr, "Transcribing %s...\n", filepath.Base(opts.inputPath))

	res := runner.Run(ctx, opts.inputPath, pipeline.Options{
		UseOutputDir:  outputDir != "",
		OutputDir:     outputDir,
		SkipSummary:   opts.skipSummary,
		KeepTempFiles: opts.keepTemp,
		ChunkDelay:    opts.chunkDelay,
		FocusPrompt:   opts.focus,
	})
	if res.Err != nil {
		return fmt.Errorf("%w: %w", ErrPipelineFailed, res.Err)
	}

	// === REPORT ===

	if res.FailureCount > 0 {
		fmt.Fprintf(env.Stderr, "Warning: %d of %d chunks failed to transcribe\n",
			res.FailureCount, res.ChunkCount)
	}

	if res.TranscriptPath != "" {
		fmt.Fprintf(env.Stdout, "Transcript: %s\n", res.TranscriptPath)
	} else {
		fmt.Fprintln(env.Stderr, "Warning: no transcript produced (no chunk transcribed successfully)")
	}
	if res.SummaryPath != "" {
		fmt.Fprintf(env.Stdout, "Summary: %s\n", res.SummaryPath)
	}
	if res.FocusedSummaryPath != "" {
		fmt.Fprintf(env.Stdout, "Focused summary: %s\n", res.FocusedSummaryPath)
	}

	// A cancelled run that still produced artifacts reports them above but
	// must exit as interrupted.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted after %d of %d chunks: %w",
			res.SuccessCount, res.ChunkCount, err)
	}
	return nil
}
