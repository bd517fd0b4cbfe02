package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RedAIToronto/voice/internal/apierr"
	"github.com/RedAIToronto/voice/internal/audio"
	"github.com/RedAIToronto/voice/internal/cli"
	"github.com/RedAIToronto/voice/internal/config"
	"github.com/RedAIToronto/voice/internal/ffmpeg"
	"github.com/RedAIToronto/voice/internal/interrupt"
	"github.com/RedAIToronto/voice/internal/lang"
	"github.com/RedAIToronto/voice/internal/summarize"
	"github.com/RedAIToronto/voice/internal/transcribe"
)

// Overridden by -ldflags on release builds.
var (
	version = "dev"
	commit  = "unknown"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitPipeline   = 5
	ExitInterrupt  = interrupt.ExitCode
)

func main() {
	// A .env next to the binary may carry OPENAI_API_KEY and friends.
	// Its absence is not an error.
	_ = godotenv.Load()

	// First Ctrl+C cancels the context so the run can keep finished
	// chunks; a second one force-exits.
	h, ctx := interrupt.NewHandler(context.Background())
	defer h.Stop()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "voice",
		Short:   "Split, transcribe, and summarize voice recordings",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Errors and usage are printed by us, not Cobra.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.TranscribeCmd(env))
	rootCmd.AddCommand(cli.SummarizeCmd(env))
	rootCmd.AddCommand(cli.ProbeCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes by sentinel class. Interrupt wins
// over everything: a run failed by Ctrl-C reports 130 even though the
// failure is also wrapped as a pipeline error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK

	case errors.Is(err, context.Canceled):
		return ExitInterrupt

	case isUsageError(err):
		return ExitUsage

	// Missing tools or credentials.
	case errors.Is(err, ffmpeg.ErrNotFound),
		errors.Is(err, cli.ErrAPIKeyMissing),
		errors.Is(err, cli.ErrTranscribeURLMissing):
		return ExitSetup

	// Bad input, flags, or local configuration.
	case errors.Is(err, cli.ErrFileNotFound),
		errors.Is(err, cli.ErrUnsupportedFormat),
		errors.Is(err, cli.ErrInvalidFlags),
		errors.Is(err, lang.ErrInvalid),
		errors.Is(err, audio.ErrFileNotFound),
		errors.Is(err, summarize.ErrEmptyTranscript),
		errors.Is(err, config.ErrInvalidKey),
		errors.Is(err, config.ErrInvalidSyntax),
		errors.Is(err, config.ErrNotDirectory),
		errors.Is(err, config.ErrNotWritable):
		return ExitValidation

	// Probing, splitting, transcription, or summarization failed after
	// validation passed.
	case errors.Is(err, cli.ErrPipelineFailed),
		errors.Is(err, audio.ErrProbeFailed),
		errors.Is(err, audio.ErrChunkingFailed),
		errors.Is(err, audio.ErrChunkPlan),
		errors.Is(err, audio.ErrShrinkFloor),
		errors.Is(err, transcribe.ErrJobFailed),
		errors.Is(err, transcribe.ErrAwaitTimeout),
		errors.Is(err, transcribe.ErrUnknownStatus),
		errors.Is(err, transcribe.ErrInvalidResponse),
		errors.Is(err, summarize.ErrTranscriptTooLong),
		errors.Is(err, summarize.ErrNoSummary),
		errors.Is(err, apierr.ErrRateLimit),
		errors.Is(err, apierr.ErrQuotaExceeded),
		errors.Is(err, apierr.ErrTimeout),
		errors.Is(err, apierr.ErrAuthFailed),
		errors.Is(err, apierr.ErrBadRequest),
		errors.Is(err, apierr.ErrServerError):
		return ExitPipeline
	}

	return ExitGeneral
}

// usagePatterns are fragments of Cobra's flag and argument parsing
// messages. Cobra reports these as plain errors with no sentinel to
// test against, so matching on message text is the only handle.
var usagePatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"unknown command",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"accepts ",
	"requires at least",
	"requires at most",
}

func isUsageError(err error) bool {
	msg := err.Error()
	for _, p := range usagePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
