package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/RedAIToronto/voice/internal/audio"
	"github.com/RedAIToronto/voice/internal/config"
	"github.com/RedAIToronto/voice/internal/summarize"
	"github.com/RedAIToronto/voice/internal/transcribe"
)

// syncBuffer collects output from the pipeline's worker goroutines without
// tripping the race detector.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

var _ io.Writer = (*syncBuffer)(nil)

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testMocks holds every mock a command runner can touch, so a test can run
// a command and then assert on the calls it made.
type testMocks struct {
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	probers        *mockProberFactory
	splitters      *mockSplitterFactory
	transcribers   *mockTranscriberFactory
	summarizers    *mockSummarizerFactory
	runners        *mockRunnerFactory
	runner         *mockRunner
	summarizer     *mockSummarizer
}

func newTestMocks() *testMocks {
	m := &testMocks{
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		probers:        &mockProberFactory{},
		splitters:      &mockSplitterFactory{},
		transcribers:   &mockTranscriberFactory{},
		runner:         &mockRunner{},
		summarizer:     &mockSummarizer{},
	}
	// The factories hand out shared instances so tests can assert on
	// their calls after the command finishes.
	m.summarizers = &mockSummarizerFactory{
		NewSummarizerFunc: func(string) summarize.Summarizer {
			return m.summarizer
		},
	}
	m.runners = &mockRunnerFactory{
		NewRunnerFunc: func(audio.Prober, audio.Splitter, transcribe.Transcriber, summarize.Summarizer) PipelineRunner {
			return m.runner
		},
	}
	return m
}

// testEnv builds an Env wired entirely to mocks, with both output streams
// backed by syncBuffers. Tests reassign individual fields before running a
// command (env.Getenv = staticEnv(...)) and use the returned mocks for
// call assertions.
func testEnv() (*Env, *testMocks) {
	mocks := newTestMocks()

	env := &Env{
		Stdout:             &syncBuffer{},
		Stderr:             &syncBuffer{},
		Getenv:             defaultTestEnv,
		FFmpegResolver:     mocks.ffmpegResolver,
		ConfigLoader:       mocks.configLoader,
		ProberFactory:      mocks.probers,
		SplitterFactory:    mocks.splitters,
		TranscriberFactory: mocks.transcribers,
		SummarizerFactory:  mocks.summarizers,
		RunnerFactory:      mocks.runners,
		Fingerprint:        fakeFingerprint,
	}

	return env, mocks
}

// stdoutString returns what the command wrote to the Env's stdout buffer.
func stdoutString(t *testing.T, env *Env) string {
	t.Helper()
	buf, ok := env.Stdout.(*syncBuffer)
	if !ok {
		t.Fatalf("env.Stdout is %T, want *syncBuffer", env.Stdout)
	}
	return buf.String()
}

// stderrString returns what the command wrote to the Env's stderr buffer.
func stderrString(t *testing.T, env *Env) string {
	t.Helper()
	buf, ok := env.Stderr.(*syncBuffer)
	if !ok {
		t.Fatalf("env.Stderr is %T, want *syncBuffer", env.Stderr)
	}
	return buf.String()
}

// staticEnv builds a Getenv from a fixed map; absent keys read as unset.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv carries API keys for both backends so commands that only
// need credentials get past their checks.
func defaultTestEnv(key string) string {
	switch key {
	case EnvOpenAIAPIKey:
		return "test-openai-key"
	case EnvTranscribeAPIKey:
		return "test-transcribe-key"
	default:
		return ""
	}
}

// fakeFingerprint returns a fixed fingerprint without touching the file.
// SizeBytes matches the length of the fixture createTestAudioFile writes.
func fakeFingerprint(path string) (audio.Fingerprint, error) {
	return audio.Fingerprint{
		SizeBytes: 18,
		BLAKE3:    "0011223344556677001122334455667700112233445566770011223344556677",
	}, nil
}

// createTestAudioFile writes a small stand-in audio file under a per-test
// temp dir and returns its path. Commands only stat it, so the bytes need
// not be decodable.
func createTestAudioFile(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte("not really speech\n"), 0644); err != nil {
		t.Fatalf("writing stand-in audio file: %v", err)
	}
	return path
}

// createTestTranscript writes a transcript fixture and returns its path.
func createTestTranscript(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing transcript fixture: %v", err)
	}
	return path
}

// configWith returns a ConfigLoader that always returns the given config.
func configWith(cfg config.Config) *mockConfigLoader {
	return &mockConfigLoader{
		LoadFunc: func() (config.Config, error) {
			return cfg, nil
		},
	}
}
