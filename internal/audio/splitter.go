package audio

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/RedAIToronto/voice/internal/ffmpeg"
	"github.com/RedAIToronto/voice/internal/format"
)

// Compile-time interface implementation check.
var _ Splitter = (*AdaptiveSplitter)(nil)

// Chunk represents a segment of audio extracted from a larger file.
// Chunk files are owned by the ChunkStore that allocated them; the
// caller holds Chunk values for ordering and upload only.
type Chunk struct {
	Path      string        // Absolute path to the chunk file.
	Index     int           // Zero-based index for ordering.
	StartTime time.Duration // Start timestamp in the source audio.
	EndTime   time.Duration // End timestamp in the source audio.
	Size      int64         // File size in bytes, always under the size limit.
}

// Duration returns the length of this chunk.
func (c Chunk) Duration() time.Duration {
	return c.EndTime - c.StartTime
}

// String returns a human-readable representation for logging.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d: %s-%s (%s)",
		c.Index,
		format.Duration(c.StartTime),
		format.Duration(c.EndTime),
		format.Size(c.Size))
}

// Splitter cuts an audio source into sequential chunks that each satisfy
// the transcription service's file-size limit.
type Splitter interface {
	// Split cuts src into chunks allocated in store. Returned chunks are
	// indexed 0..n-1 and tile [0, src.Duration) without gaps or overlap.
	Split(ctx context.Context, src Source, store *ChunkStore) ([]Chunk, error)
}

// Default splitting parameters.
const (
	// defaultTargetChunkDuration is the initial chunk length. Ten minutes
	// keeps request counts low while staying well under typical limits.
	defaultTargetChunkDuration = 10 * time.Minute

	// defaultMaxChunkBytes is the per-chunk size ceiling.
	// Common API limit is 25MB; we use 20MB for VBR safety margin.
	defaultMaxChunkBytes = 20 * 1024 * 1024

	// defaultShrinkFactor reduces the chunk length when a slice comes out
	// oversized. 0.9 converges quickly without overshooting far below the
	// largest length that fits.
	defaultShrinkFactor = 0.9

	// defaultMinChunkDuration is the shrink floor. A source so dense that
	// one second of audio exceeds the size limit cannot be split usefully.
	defaultMinChunkDuration = time.Second

	// chunkExt is the container for extracted chunks.
	chunkExt = "ogg"
)

// WarnFunc is a callback for warning messages during splitting and cleanup.
// Set to nil to suppress warnings, or provide a custom handler.
type WarnFunc func(msg string)

// defaultWarnFunc writes warnings to stderr.
func defaultWarnFunc(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// AdaptiveSplitter cuts fixed-length chunks, shrinking the length and
// re-slicing whenever a chunk comes out over the size limit. A shrunk
// length persists for the following chunks: the bitrate that forced the
// shrink usually holds for the whole file, so re-probing from the target
// every time would redo the same failed slices. WithResetPerChunk
// restores the per-chunk reset for sources with isolated dense sections.
type AdaptiveSplitter struct {
	ffmpegPath    string
	target        time.Duration
	maxBytes      int64
	shrink        float64
	floor         time.Duration
	resetPerChunk bool
	warn          WarnFunc

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	files   fileRemover
	statter fileStatter
}

// AdaptiveSplitterOption configures an AdaptiveSplitter.
type AdaptiveSplitterOption func(*AdaptiveSplitter)

// WithTargetChunkDuration sets the initial chunk length.
// Default: 10min.
func WithTargetChunkDuration(d time.Duration) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.target = d
	}
}

// WithMaxChunkBytes sets the per-chunk size ceiling in bytes.
// Default: 20MB.
func WithMaxChunkBytes(n int64) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.maxBytes = n
	}
}

// WithShrinkFactor sets the multiplier applied to the chunk length after
// an oversized slice. Must be in (0, 1). Default: 0.9.
func WithShrinkFactor(f float64) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.shrink = f
	}
}

// WithMinChunkDuration sets the shrink floor.
// Default: 1s.
func WithMinChunkDuration(d time.Duration) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.floor = d
	}
}

// WithResetPerChunk makes each chunk restart from the target length
// instead of inheriting the previous chunk's shrunk length.
func WithResetPerChunk(reset bool) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.resetPerChunk = reset
	}
}

// WithSplitterWarnFunc sets a callback for warning messages.
// By default, warnings are written to stderr. Set to nil to suppress.
func WithSplitterWarnFunc(fn WarnFunc) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.warn = fn
	}
}

// WithSplitterCommandRunner sets the command runner for AdaptiveSplitter.
func WithSplitterCommandRunner(r commandRunner) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.cmd = r
	}
}

// WithSplitterFileRemover sets the file remover for AdaptiveSplitter.
func WithSplitterFileRemover(f fileRemover) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.files = f
	}
}

// WithSplitterFileStatter sets the file statter for AdaptiveSplitter.
func WithSplitterFileStatter(st fileStatter) AdaptiveSplitterOption {
	return func(s *AdaptiveSplitter) {
		s.statter = st
	}
}

// NewAdaptiveSplitter creates an AdaptiveSplitter with functional options.
func NewAdaptiveSplitter(ffmpegPath string, opts ...AdaptiveSplitterOption) (*AdaptiveSplitter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	s := &AdaptiveSplitter{
		ffmpegPath: ffmpegPath,
		target:     defaultTargetChunkDuration,
		maxBytes:   defaultMaxChunkBytes,
		shrink:     defaultShrinkFactor,
		floor:      defaultMinChunkDuration,
		warn:       defaultWarnFunc,
		cmd:        osSystem{},
		files:      osSystem{},
		statter:    osSystem{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.target <= 0 {
		s.target = defaultTargetChunkDuration
	}
	if s.maxBytes <= 0 {
		s.maxBytes = defaultMaxChunkBytes
	}
	if s.floor <= 0 {
		s.floor = defaultMinChunkDuration
	}
	if s.shrink <= 0 || s.shrink >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidShrinkFactor, s.shrink)
	}

	return s, nil
}

// Split cuts src into sequential chunks, advancing a cursor from zero to
// the total duration. Every accepted chunk is recorded in store.
func (s *AdaptiveSplitter) Split(ctx context.Context, src Source, store *ChunkStore) ([]Chunk, error) {
	var chunks []Chunk
	cursor := time.Duration(0)
	length := s.target

	for cursor < src.Duration {
		if s.resetPerChunk {
			length = s.target
		}

		chunk, nextLength, err := s.cutChunk(ctx, src, store, len(chunks), cursor, length)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, chunk)
		cursor = chunk.EndTime
		length = nextLength
	}

	return chunks, nil
}

// attemptState drives the shrink-and-retry loop for a single chunk.
type attemptState int

const (
	attemptSlicing attemptState = iota
	attemptShrinking
	attemptAccepted
	attemptAborted
)

// cutChunk runs the shrink-and-retry state machine for the chunk at cursor.
// It returns the accepted chunk and the length that produced it.
func (s *AdaptiveSplitter) cutChunk(ctx context.Context, src Source, store *ChunkStore, index int, cursor, length time.Duration) (Chunk, time.Duration, error) {
	state := attemptSlicing
	var chunk Chunk

	for {
		switch state {
		case attemptSlicing:
			end := min(cursor+length, src.Duration)
			if end-cursor <= 0 {
				return Chunk{}, 0, fmt.Errorf("%w: chunk %d at %s has non-positive span",
					ErrChunkPlan, index, format.Duration(cursor))
			}

			path := store.Allocate(index, chunkExt)
			if err := runExtractChunk(ctx, s.cmd, s.ffmpegPath, src.Path, path, cursor, end); err != nil {
				_ = s.files.Remove(path) // partial output, if any
				return Chunk{}, 0, err
			}

			info, err := s.statter.Stat(path)
			if err != nil {
				_ = s.files.Remove(path)
				return Chunk{}, 0, fmt.Errorf("%w: cannot stat chunk %d: %v", ErrChunkingFailed, index, err)
			}

			if info.Size() >= s.maxBytes {
				_ = s.files.Remove(path)
				state = attemptShrinking
				continue
			}

			store.Record(path)
			chunk = Chunk{
				Path:      path,
				Index:     index,
				StartTime: cursor,
				EndTime:   end,
				Size:      info.Size(),
			}
			state = attemptAccepted

		case attemptShrinking:
			length = time.Duration(float64(length) * s.shrink)
			if length <= s.floor {
				state = attemptAborted
				continue
			}
			if s.warn != nil {
				s.warn(fmt.Sprintf("Warning: chunk %d exceeds %s, retrying with %v slices",
					index, format.Size(s.maxBytes), length.Round(time.Millisecond)))
			}
			state = attemptSlicing

		case attemptAccepted:
			return chunk, length, nil

		case attemptAborted:
			return Chunk{}, 0, fmt.Errorf("%w: chunk %d still oversized at %v",
				ErrShrinkFloor, index, s.floor)
		}
	}
}

// chunkEncodingArgs is the FFmpeg encoder configuration for chunks.
// Chunks are re-encoded rather than stream-copied: a copy from a
// truncated source can carry the damage along, while a re-encode either
// produces a playable file or fails loudly. 16 kHz mono Vorbis at
// quality 2 (about 50 kbps) is plenty for speech.
func chunkEncodingArgs() []string {
	return []string{
		"-c:a", "libvorbis",
		"-ar", "16000",
		"-ac", "1",
		"-q:a", "2",
	}
}

// runExtractChunk cuts the span [start, end] out of audioPath into
// chunkPath, re-encoding on the way.
func runExtractChunk(ctx context.Context, cmd commandRunner, ffmpegPath, audioPath, chunkPath string, start, end time.Duration) error {
	args := append([]string{
		"-y",
		"-i", audioPath,
		"-ss", formatFFmpegTime(start),
		"-to", formatFFmpegTime(end),
	}, chunkEncodingArgs()...)
	args = append(args, chunkPath)

	if output, err := cmd.CombinedOutput(ctx, ffmpegPath, args); err != nil {
		return fmt.Errorf("%w: could not extract %s: %v\nffmpeg output: %s",
			ErrChunkingFailed, chunkPath, err, string(output))
	}
	return nil
}

// formatFFmpegTime renders a duration in the HH:MM:SS.mmm form FFmpeg
// takes for -ss and -to.
func formatFFmpegTime(d time.Duration) string {
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms % 60_000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s/1000, s%1000)
}
