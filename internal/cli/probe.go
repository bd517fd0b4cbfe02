package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RedAIToronto/voice/internal/format"
)

// ProbeCmd builds the probe command, which inspects an audio file and
// reports what the pipeline would do with it, without transcribing anything.
func ProbeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <audio-file>",
		Short: "Inspect an audio file",
		Long: `Print what the pipeline would see for an audio file: container format,
decoded duration, size on disk, and the BLAKE3 content hash.

Useful for checking a file before a long transcription run, or for
verifying that two recordings are the same take.`,
		Example: `  voice probe memo.ogg
  voice probe ~/recordings/standup.mp3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, env, args[0])
		},
	}
}

// runProbe inspects inputPath and prints its properties to stdout.
func runProbe(cmd *cobra.Command, env *Env, inputPath string) error {
	ctx := cmd.Context()

	// 1. File exists
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	// 3. FFmpeg present (config may pin its path)
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	ffmpegPath, err := env.FFmpegResolver.Resolve(cfg.FFmpegPath)
	if err != nil {
		return err
	}

	prober, err := env.ProberFactory.NewProber(ffmpegPath)
	if err != nil {
		return err
	}

	src, err := prober.Probe(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("probe %s: %w", filepath.Base(inputPath), err)
	}

	fp, err := env.Fingerprint(inputPath)
	if err != nil {
		return fmt.Errorf("fingerprint %s: %w", filepath.Base(inputPath), err)
	}

	fmt.Fprintf(env.Stdout, "File:     %s\n", inputPath)
	fmt.Fprintf(env.Stdout, "Format:   %s\n", src.Format)
	fmt.Fprintf(env.Stdout, "Duration: %s\n", format.Duration(src.Duration))
	fmt.Fprintf(env.Stdout, "Size:     %s\n", format.Size(fp.SizeBytes))
	fmt.Fprintf(env.Stdout, "BLAKE3:   %s\n", fp.BLAKE3)
	return nil
}
