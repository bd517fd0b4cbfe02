package cli

import (
	"context"
	"sync"
	"time"

	"github.com/RedAIToronto/voice/internal/audio"
	"github.com/RedAIToronto/voice/internal/config"
	"github.com/RedAIToronto/voice/internal/pipeline"
	"github.com/RedAIToronto/voice/internal/summarize"
	"github.com/RedAIToronto/voice/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc      func(configuredPath string) (string, error)
	CheckVersionFunc func(ctx context.Context, ffmpegPath string)

	mu           sync.Mutex
	resolveCalls []string // configured paths passed
}

func (m *mockFFmpegResolver) Resolve(configuredPath string) (string, error) {
	m.mu.Lock()
	m.resolveCalls = append(m.resolveCalls, configuredPath)
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(configuredPath)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	if m.CheckVersionFunc != nil {
		m.CheckVersionFunc(ctx, ffmpegPath)
	}
}

func (m *mockFFmpegResolver) ResolveCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resolveCalls...)
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{TranscribeURL: "https://transcribe.test"}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock ProberFactory + Prober
// ---------------------------------------------------------------------------

type mockProberFactory struct {
	NewProberFunc func(ffmpegPath string) (audio.Prober, error)

	mu             sync.Mutex
	newProberCalls []string // ffmpeg paths passed
}

func (m *mockProberFactory) NewProber(ffmpegPath string) (audio.Prober, error) {
	m.mu.Lock()
	m.newProberCalls = append(m.newProberCalls, ffmpegPath)
	m.mu.Unlock()

	if m.NewProberFunc != nil {
		return m.NewProberFunc(ffmpegPath)
	}
	return &mockProber{}, nil
}

func (m *mockProberFactory) NewProberCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newProberCalls...)
}

type mockProber struct {
	ProbeFunc func(ctx context.Context, audioPath string) (audio.Source, error)

	mu         sync.Mutex
	probeCalls []string // audio paths passed
}

func (m *mockProber) Probe(ctx context.Context, audioPath string) (audio.Source, error) {
	m.mu.Lock()
	m.probeCalls = append(m.probeCalls, audioPath)
	m.mu.Unlock()

	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, audioPath)
	}
	return audio.Source{
		Path:     audioPath,
		Duration: 10 * time.Minute,
		Format:   "ogg",
	}, nil
}

func (m *mockProber) ProbeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.probeCalls...)
}

// ---------------------------------------------------------------------------
// Mock SplitterFactory + Splitter
// ---------------------------------------------------------------------------

type mockSplitterFactory struct {
	NewSplitterFunc func(ffmpegPath string) (audio.Splitter, error)

	mu               sync.Mutex
	newSplitterCalls []string // ffmpeg paths passed
}

func (m *mockSplitterFactory) NewSplitter(ffmpegPath string) (audio.Splitter, error) {
	m.mu.Lock()
	m.newSplitterCalls = append(m.newSplitterCalls, ffmpegPath)
	m.mu.Unlock()

	if m.NewSplitterFunc != nil {
		return m.NewSplitterFunc(ffmpegPath)
	}
	return &mockSplitter{}, nil
}

func (m *mockSplitterFactory) NewSplitterCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newSplitterCalls...)
}

type mockSplitter struct {
	SplitFunc func(ctx context.Context, src audio.Source, store *audio.ChunkStore) ([]audio.Chunk, error)
}

func (m *mockSplitter) Split(ctx context.Context, src audio.Source, store *audio.ChunkStore) ([]audio.Chunk, error) {
	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, src, store)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory + Transcriber
// ---------------------------------------------------------------------------

// transcriberArgs captures one NewTranscriber invocation.
type transcriberArgs struct {
	BaseURL  string
	APIKey   string
	Language string
}

type mockTranscriberFactory struct {
	NewTranscriberFunc func(baseURL, apiKey, language string) (transcribe.Transcriber, error)

	mu                  sync.Mutex
	newTranscriberCalls []transcriberArgs
}

func (m *mockTranscriberFactory) NewTranscriber(baseURL, apiKey, language string) (transcribe.Transcriber, error) {
	m.mu.Lock()
	m.newTranscriberCalls = append(m.newTranscriberCalls, transcriberArgs{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Language: language,
	})
	m.mu.Unlock()

	if m.NewTranscriberFunc != nil {
		return m.NewTranscriberFunc(baseURL, apiKey, language)
	}
	return &mockTranscriber{}, nil
}

func (m *mockTranscriberFactory) NewTranscriberCalls() []transcriberArgs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transcriberArgs(nil), m.newTranscriberCalls...)
}

type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioPath string) transcribe.Fragment

	mu              sync.Mutex
	transcribeCalls []string // audio paths passed
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) transcribe.Fragment {
	m.mu.Lock()
	m.transcribeCalls = append(m.transcribeCalls, audioPath)
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath)
	}
	return transcribe.Fragment{Text: "transcribed text", Status: transcribe.FragmentSuccess}
}

func (m *mockTranscriber) TranscribeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.transcribeCalls...)
}

// ---------------------------------------------------------------------------
// Mock SummarizerFactory + Summarizer
// ---------------------------------------------------------------------------

type mockSummarizerFactory struct {
	NewSummarizerFunc func(apiKey string) summarize.Summarizer

	mu                 sync.Mutex
	newSummarizerCalls []string // API keys passed
}

func (m *mockSummarizerFactory) NewSummarizer(apiKey string) summarize.Summarizer {
	m.mu.Lock()
	m.newSummarizerCalls = append(m.newSummarizerCalls, apiKey)
	m.mu.Unlock()

	if m.NewSummarizerFunc != nil {
		return m.NewSummarizerFunc(apiKey)
	}
	return &mockSummarizer{}
}

func (m *mockSummarizerFactory) NewSummarizerCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newSummarizerCalls...)
}

// summarizeCall captures one Summarize invocation.
type summarizeCall struct {
	Text   string
	Prompt string
}

type mockSummarizer struct {
	SummarizeFunc func(ctx context.Context, text, prompt string) (string, error)

	mu             sync.Mutex
	summarizeCalls []summarizeCall
}

func (m *mockSummarizer) Summarize(ctx context.Context, text, prompt string) (string, error) {
	m.mu.Lock()
	m.summarizeCalls = append(m.summarizeCalls, summarizeCall{Text: text, Prompt: prompt})
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text, prompt)
	}
	return "summary text", nil
}

func (m *mockSummarizer) SummarizeCalls() []summarizeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]summarizeCall(nil), m.summarizeCalls...)
}

// ---------------------------------------------------------------------------
// Mock RunnerFactory + PipelineRunner
// ---------------------------------------------------------------------------

// runnerArgs captures the collaborators passed to one NewRunner invocation.
type runnerArgs struct {
	Prober      audio.Prober
	Splitter    audio.Splitter
	Transcriber transcribe.Transcriber
	Summarizer  summarize.Summarizer
}

type mockRunnerFactory struct {
	NewRunnerFunc func(p audio.Prober, s audio.Splitter, tr transcribe.Transcriber, sum summarize.Summarizer) PipelineRunner

	mu             sync.Mutex
	newRunnerCalls []runnerArgs
}

func (m *mockRunnerFactory) NewRunner(
	p audio.Prober,
	s audio.Splitter,
	tr transcribe.Transcriber,
	sum summarize.Summarizer,
) PipelineRunner {
	m.mu.Lock()
	m.newRunnerCalls = append(m.newRunnerCalls, runnerArgs{
		Prober:      p,
		Splitter:    s,
		Transcriber: tr,
		Summarizer:  sum,
	})
	m.mu.Unlock()

	if m.NewRunnerFunc != nil {
		return m.NewRunnerFunc(p, s, tr, sum)
	}
	return &mockRunner{}
}

func (m *mockRunnerFactory) NewRunnerCalls() []runnerArgs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]runnerArgs(nil), m.newRunnerCalls...)
}

// runCall captures one pipeline Run invocation.
type runCall struct {
	AudioPath string
	Opts      pipeline.Options
}

type mockRunner struct {
	RunFunc func(ctx context.Context, audioPath string, opts pipeline.Options) pipeline.Result

	mu       sync.Mutex
	runCalls []runCall
}

func (m *mockRunner) Run(ctx context.Context, audioPath string, opts pipeline.Options) pipeline.Result {
	m.mu.Lock()
	m.runCalls = append(m.runCalls, runCall{AudioPath: audioPath, Opts: opts})
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, audioPath, opts)
	}
	return pipeline.Result{
		RunID:          "test-run",
		Phase:          pipeline.PhaseDone,
		TranscriptPath: "/out/memo_transcript.txt",
		SummaryPath:    "/out/memo_summary.txt",
		ChunkCount:     2,
		SuccessCount:   2,
	}
}

func (m *mockRunner) RunCalls() []runCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]runCall(nil), m.runCalls...)
}

// ---------------------------------------------------------------------------
// Compile-time interface compliance checks
// ---------------------------------------------------------------------------

var (
	_ FFmpegResolver         = (*mockFFmpegResolver)(nil)
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ ProberFactory          = (*mockProberFactory)(nil)
	_ SplitterFactory        = (*mockSplitterFactory)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ SummarizerFactory      = (*mockSummarizerFactory)(nil)
	_ RunnerFactory          = (*mockRunnerFactory)(nil)
	_ PipelineRunner         = (*mockRunner)(nil)
	_ audio.Prober           = (*mockProber)(nil)
	_ audio.Splitter         = (*mockSplitter)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
	_ summarize.Summarizer   = (*mockSummarizer)(nil)
)
