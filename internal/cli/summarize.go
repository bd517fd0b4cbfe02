package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RedAIToronto/voice/internal/config"
	"github.com/RedAIToronto/voice/internal/summarize"
)

// summarizeOptions holds options for the summarize command.
type summarizeOptions struct {
	inputPath string
	outputDir string
	focus     string
}

// SummarizeCmd builds the summarize command, which condenses an
// existing transcript without touching any audio.
func SummarizeCmd(env *Env) *cobra.Command {
	var (
		outputDir string
		focus     string
	)

	cmd := &cobra.Command{
		Use:   "summarize <transcript-file>",
		Short: "Summarize an existing transcript",
		Long: `Summarize an existing transcript file with OpenAI.

This command takes a transcript produced earlier (typically with
--skip-summary, or one whose summary should be redone) and generates
a summary without re-transcribing the audio.

Writes <name>_summary.txt next to the input file, or under --output-dir.
With --focus, an additional <name>_focused_summary.txt is generated from
the given prompt. A trailing _transcript in the input name is dropped, so
memo_transcript.txt produces memo_summary.txt.`,
		Example: `  voice summarize memo_transcript.txt
  voice summarize standup_transcript.txt --focus "decisions and blockers"
  voice summarize notes.txt -d ~/summaries`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, env, summarizeOptions{
				inputPath: args[0],
				outputDir: outputDir,
				focus:     focus,
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Directory for output files (default: next to input)")
	cmd.Flags().StringVar(&focus, "focus", "", "Prompt for an additional focused summary")

	return cmd
}

// summaryArtifactPath derives the output path for a summary artifact.
// Example: "notes/memo_transcript.txt" + "_summary.txt" -> "notes/memo_summary.txt".
func summaryArtifactPath(inputPath, outputDir, suffix string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	base = strings.TrimSuffix(base, "_transcript")
	name := filepath.Base(base) + suffix
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(inputPath), name)
}

// runSummarize executes the summarize command. Unlike the in-pipeline
// summary phase, failures here are fatal: the summary is the whole point.
func runSummarize(cmd *cobra.Command, env *Env, opts summarizeOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. File exists and is readable
	// #nosec G304 -- inputPath is the user's own transcript file
	content, err := os.ReadFile(opts.inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, opts.inputPath)
		}
		return fmt.Errorf("cannot read transcript: %w", err)
	}

	// 2. Transcript not empty
	transcript := string(content)
	if strings.TrimSpace(transcript) == "" {
		return fmt.Errorf("%w: %s", summarize.ErrEmptyTranscript, opts.inputPath)
	}

	// 3. Load config for output-dir
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	outputDir = config.ExpandPath(outputDir)

	// 4. API key present
	openaiKey := env.Getenv(EnvOpenAIAPIKey)
	if openaiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}

	// === SUMMARIZE ===

	fmt.Fprintf(env.Stderr, "Summarizing %s...\n", filepath.Base(opts.inputPath))

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}

	summarizer := env.SummarizerFactory.NewSummarizer(openaiKey)

	summary, err := summarizer.Summarize(ctx, transcript, "")
	if err != nil {
		return fmt.Errorf("summarize %s: %w", filepath.Base(opts.inputPath), err)
	}
	summaryPath := summaryArtifactPath(opts.inputPath, outputDir, "_summary.txt")
	// #nosec G306 -- summary is the user's own artifact
	if err := os.WriteFile(summaryPath, []byte(summary), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	fmt.Fprintf(env.Stdout, "Summary: %s\n", summaryPath)

	if opts.focus != "" {
		focused, err := summarizer.Summarize(ctx, transcript, opts.focus)
		if err != nil {
			return fmt.Errorf("focused summary for %s: %w", filepath.Base(opts.inputPath), err)
		}
		focusedPath := summaryArtifactPath(opts.inputPath, outputDir, "_focused_summary.txt")
		// #nosec G306 -- summary is the user's own artifact
		if err := os.WriteFile(focusedPath, []byte(focused), 0o644); err != nil {
			return fmt.Errorf("write focused summary: %w", err)
		}
		fmt.Fprintf(env.Stdout, "Focused summary: %s\n", focusedPath)
	}

	return nil
}
