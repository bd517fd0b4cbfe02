package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/RedAIToronto/voice/internal/ffmpeg"
)

// Compile-time interface implementation check.
var _ Prober = (*FFmpegProber)(nil)

// Source describes a probed audio file. Immutable once probed: the
// splitter and pipeline only ever read it.
type Source struct {
	Path     string        // Absolute path to the audio file.
	Duration time.Duration // Total duration reported by FFmpeg.
	Format   string        // Extension token, e.g. "mp3", "ogg".
}

// String returns a human-readable representation for logging.
func (s Source) String() string {
	return fmt.Sprintf("%s (%s, %v)", filepath.Base(s.Path), s.Format, s.Duration.Round(time.Millisecond))
}

// Prober determines the duration and format of an audio file.
type Prober interface {
	// Probe inspects audioPath and returns its Source description.
	// A file that cannot be decoded or has no reported duration is an error.
	Probe(ctx context.Context, audioPath string) (Source, error)
}

// FFmpegProber probes audio files by parsing FFmpeg's stderr output.
// FFmpeg is used rather than ffprobe so a single binary suffices.
type FFmpegProber struct {
	ffmpegPath string

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	statter fileStatter
}

// ProberOption configures an FFmpegProber.
type ProberOption func(*FFmpegProber)

// WithProberCommandRunner sets the command runner for FFmpegProber.
func WithProberCommandRunner(r commandRunner) ProberOption {
	return func(p *FFmpegProber) {
		p.cmd = r
	}
}

// WithProberFileStatter sets the file statter for FFmpegProber.
func WithProberFileStatter(s fileStatter) ProberOption {
	return func(p *FFmpegProber) {
		p.statter = s
	}
}

// NewFFmpegProber creates an FFmpegProber using the given ffmpeg binary.
func NewFFmpegProber(ffmpegPath string, opts ...ProberOption) (*FFmpegProber, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	p := &FFmpegProber{
		ffmpegPath: ffmpegPath,
		cmd:        osSystem{},
		statter:    osSystem{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Probe inspects the audio file and returns its duration and format.
func (p *FFmpegProber) Probe(ctx context.Context, audioPath string) (Source, error) {
	if _, err := p.statter.Stat(audioPath); err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}

	// The -i flag with a null muxer prints file info including duration.
	args := []string{
		"-i", audioPath,
		"-f", "null", "-",
	}
	output, err := p.cmd.CombinedOutput(ctx, p.ffmpegPath, args)
	if err != nil {
		// FFmpeg returns non-zero even when it successfully reads file info,
		// so we try to parse the output anyway.
		if len(output) == 0 {
			return Source{}, fmt.Errorf("%w: %v", ErrProbeFailed, err)
		}
	}

	duration, err := parseDurationFromFFmpegOutput(string(output))
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	if duration <= 0 {
		return Source{}, fmt.Errorf("%w: reported duration is zero", ErrProbeFailed)
	}

	return Source{
		Path:     audioPath,
		Duration: duration,
		Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(audioPath)), "."),
	}, nil
}

// FFmpeg reports the source length on a "Duration:" header line and,
// while decoding, on "time=" progress lines.
var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	progressRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// parseDurationFromFFmpegOutput reads a duration out of FFmpeg's info
// output. The header line wins; without one, the last progress value
// stands in for it.
func parseDurationFromFFmpegOutput(output string) (time.Duration, error) {
	if m := durationRe.FindStringSubmatch(output); m != nil {
		return parseTimeComponents(m[1], m[2], m[3], m[4])
	}
	if all := progressRe.FindAllStringSubmatch(output, -1); len(all) > 0 {
		last := all[len(all)-1]
		return parseTimeComponents(last[1], last[2], last[3], last[4])
	}
	return 0, fmt.Errorf("no duration in ffmpeg output")
}

// parseTimeComponents converts the captured HH, MM, SS, and fraction
// fields to a Duration. The fraction carries anywhere from one digit
// (tenths) to six or more (microseconds); it is scaled to milliseconds,
// dropping whatever lies past the third digit.
func parseTimeComponents(hours, minutes, seconds, fractional string) (time.Duration, error) {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	ms, _ := strconv.Atoi(fractional)
	for n := len(fractional); n < 3; n++ {
		ms *= 10
	}
	for n := len(fractional); n > 3; n-- {
		ms /= 10
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
