package audio_test

// Shared mocks for the audio package tests. The fakeExtractRunner stands in
// for FFmpeg chunk extraction: it writes a real file whose size is
// proportional to the requested span, which lets splitter tests drive the
// shrink loop without running FFmpeg.

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/RedAIToronto/voice/internal/audio"
)

// Compile-time interface implementation checks.
var (
	_ audio.CommandRunner  = (*mockCommandRunner)(nil)
	_ audio.CommandRunner  = (*fakeExtractRunner)(nil)
	_ audio.TempDirCreator = (*mockTempDirCreator)(nil)
	_ audio.FileRemover    = (*mockFileRemover)(nil)
	_ audio.FileStatter    = (*mockFileStatter)(nil)
	_ audio.DirReader      = (*mockDirReader)(nil)
)

type mockCommandRunner struct {
	outputFunc func(ctx context.Context, name string, args []string) ([]byte, error)
	calls      []mockCall
}

type mockCall struct {
	name string
	args []string
}

func (m *mockCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	if m.outputFunc != nil {
		return m.outputFunc(ctx, name, args)
	}
	return nil, nil
}

// fakeExtractRunner mimics FFmpeg extraction: the last argument is the
// output path, -ss/-to give the span, and the written file holds
// span-seconds * bytesPerSecond bytes.
type fakeExtractRunner struct {
	bytesPerSecond float64
	err            error
	calls          []extractCall
}

type extractCall struct {
	start  time.Duration
	end    time.Duration
	output string
}

func (f *fakeExtractRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	if f.err != nil {
		return []byte("ffmpeg failed"), f.err
	}

	var start, end time.Duration
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "-ss":
			start = parseClock(args[i+1])
		case "-to":
			end = parseClock(args[i+1])
		}
	}
	output := args[len(args)-1]
	f.calls = append(f.calls, extractCall{start: start, end: end, output: output})

	size := int(float64(end-start) / float64(time.Second) * f.bytesPerSecond)
	if size < 1 {
		size = 1
	}
	if err := os.WriteFile(output, make([]byte, size), 0o644); err != nil {
		return nil, err
	}
	return nil, nil
}

// parseClock parses the HH:MM:SS.mmm format used for -ss/-to arguments.
func parseClock(s string) time.Duration {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	sec, _ := strconv.ParseFloat(parts[2], 64)
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second))
}

type mockTempDirCreator struct {
	dir string
	err error
}

func (m *mockTempDirCreator) MkdirTemp(dir, pattern string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.dir, nil
}

type mockFileRemover struct {
	removeFunc   func(name string) error
	removeAllErr error
	removed      []string
}

func (m *mockFileRemover) Remove(name string) error {
	m.removed = append(m.removed, name)
	if m.removeFunc != nil {
		return m.removeFunc(name)
	}
	return nil
}

func (m *mockFileRemover) RemoveAll(path string) error {
	return m.removeAllErr
}

type mockDirReader struct {
	err error
}

func (m *mockDirReader) ReadDir(name string) ([]os.DirEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return os.ReadDir(name)
}

type mockFileStatter struct {
	size int64
	err  error
}

func (m *mockFileStatter) Stat(name string) (os.FileInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &mockFileInfo{size: m.size}, nil
}

type mockFileInfo struct {
	size int64
}

func (m *mockFileInfo) Name() string       { return "fixture.ogg" }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return 0644 }
func (m *mockFileInfo) ModTime() time.Time { return time.Now() }
func (m *mockFileInfo) IsDir() bool        { return false }
func (m *mockFileInfo) Sys() any           { return nil }
