package cli

import (
	"context"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RedAIToronto/voice/internal/audio"
	"github.com/RedAIToronto/voice/internal/config"
	"github.com/RedAIToronto/voice/internal/ffmpeg"
	"github.com/RedAIToronto/voice/internal/pipeline"
	"github.com/RedAIToronto/voice/internal/summarize"
	"github.com/RedAIToronto/voice/internal/transcribe"
)

// Env is the seam between the command runners and everything they drive.
// Runners take all their dependencies from here rather than from package
// globals, so tests swap in whatever they need via the With* options.
//
// The zero value is unusable; build one with DefaultEnv or NewEnv.
type Env struct {
	// Output streams and environment lookup.
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Constructors for the pieces a command assembles into a run.
	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	ProberFactory      ProberFactory
	SplitterFactory    SplitterFactory
	TranscriberFactory TranscriberFactory
	SummarizerFactory  SummarizerFactory
	RunnerFactory      RunnerFactory

	// Fingerprint hashes a source file for the probe command.
	Fingerprint func(path string) (audio.Fingerprint, error)
}

// FFmpegResolver locates the ffmpeg binary and sanity-checks its version.
type FFmpegResolver interface {
	Resolve(configuredPath string) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader reads the persisted settings file.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ProberFactory creates probers for source file inspection.
type ProberFactory interface {
	NewProber(ffmpegPath string) (audio.Prober, error)
}

// SplitterFactory creates splitters that cut sources into chunks.
type SplitterFactory interface {
	NewSplitter(ffmpegPath string) (audio.Splitter, error)
}

// TranscriberFactory creates transcription clients.
type TranscriberFactory interface {
	// NewTranscriber creates a client for the service at baseURL.
	// The apiKey and language may be empty.
	NewTranscriber(baseURL, apiKey, language string) (transcribe.Transcriber, error)
}

// SummarizerFactory creates summarization clients.
type SummarizerFactory interface {
	NewSummarizer(apiKey string) summarize.Summarizer
}

// PipelineRunner executes a full transcription run.
type PipelineRunner interface {
	Run(ctx context.Context, audioPath string, opts pipeline.Options) pipeline.Result
}

// RunnerFactory assembles a pipeline from its collaborators.
type RunnerFactory interface {
	NewRunner(
		prober audio.Prober,
		splitter audio.Splitter,
		transcriber transcribe.Transcriber,
		summarizer summarize.Summarizer,
	) PipelineRunner
}

// An EnvOption overrides one Env field.
type EnvOption func(*Env)

// WithStdout redirects command output.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr redirects warnings and progress messages.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv replaces the environment lookup.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithFFmpegResolver replaces the ffmpeg lookup.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader replaces the settings source.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithProberFactory replaces the prober constructor.
func WithProberFactory(f ProberFactory) EnvOption {
	return func(e *Env) {
		e.ProberFactory = f
	}
}

// WithSplitterFactory replaces the splitter constructor.
func WithSplitterFactory(f SplitterFactory) EnvOption {
	return func(e *Env) {
		e.SplitterFactory = f
	}
}

// WithTranscriberFactory replaces the transcription client constructor.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// WithSummarizerFactory replaces the summarizer constructor.
func WithSummarizerFactory(f SummarizerFactory) EnvOption {
	return func(e *Env) {
		e.SummarizerFactory = f
	}
}

// WithRunnerFactory replaces the pipeline assembly.
func WithRunnerFactory(f RunnerFactory) EnvOption {
	return func(e *Env) {
		e.RunnerFactory = f
	}
}

// WithFingerprint replaces the file hashing function.
func WithFingerprint(fn func(path string) (audio.Fingerprint, error)) EnvOption {
	return func(e *Env) {
		e.Fingerprint = fn
	}
}

// DefaultEnv returns an Env wired to the real implementations.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		FFmpegResolver:     &defaultFFmpegResolver{},
		ConfigLoader:       &defaultConfigLoader{},
		ProberFactory:      &defaultProberFactory{},
		SplitterFactory:    &defaultSplitterFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
		SummarizerFactory:  &defaultSummarizerFactory{},
		RunnerFactory:      &defaultRunnerFactory{},
		Fingerprint:        audio.FingerprintFile,
	}
}

// NewEnv returns DefaultEnv with opts applied on top.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// The default implementations are thin forwarders to the concrete packages.

type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(configuredPath string) (string, error) {
	return ffmpeg.Resolve(configuredPath)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.CheckVersion(ctx, ffmpegPath)
}

type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

type defaultProberFactory struct{}

func (defaultProberFactory) NewProber(ffmpegPath string) (audio.Prober, error) {
	return audio.NewFFmpegProber(ffmpegPath)
}

type defaultSplitterFactory struct{}

func (defaultSplitterFactory) NewSplitter(ffmpegPath string) (audio.Splitter, error) {
	return audio.NewAdaptiveSplitter(ffmpegPath)
}

type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(baseURL, apiKey, language string) (transcribe.Transcriber, error) {
	var opts []transcribe.ClientOption
	if language != "" {
		opts = append(opts, transcribe.WithLanguage(language))
	}
	return transcribe.NewClient(baseURL, apiKey, opts...)
}

type defaultSummarizerFactory struct{}

func (defaultSummarizerFactory) NewSummarizer(apiKey string) summarize.Summarizer {
	client := openai.NewClient(apiKey)
	return summarize.NewOpenAISummarizer(client)
}

type defaultRunnerFactory struct{}

func (defaultRunnerFactory) NewRunner(
	prober audio.Prober,
	splitter audio.Splitter,
	transcriber transcribe.Transcriber,
	summarizer summarize.Summarizer,
) PipelineRunner {
	return pipeline.NewRunner(prober, splitter, transcriber, summarizer)
}

// Conformance checks for the forwarders and the real runner.
var (
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ ProberFactory      = (*defaultProberFactory)(nil)
	_ SplitterFactory    = (*defaultSplitterFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ SummarizerFactory  = (*defaultSummarizerFactory)(nil)
	_ RunnerFactory      = (*defaultRunnerFactory)(nil)
	_ PipelineRunner     = (*pipeline.Runner)(nil)
)
