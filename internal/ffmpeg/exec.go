package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
)

// runFunc runs a binary and returns everything it printed.
type runFunc func(ctx context.Context, path string, args []string) (string, error)

// Executor invokes the ffmpeg binary and captures its output. The run
// function is swappable so tests never spawn real processes.
type Executor struct {
	run runFunc
}

// An ExecutorOption overrides part of an Executor.
type ExecutorOption func(*Executor)

// WithRunOutput replaces the process launcher (for testing).
func WithRunOutput(fn runFunc) ExecutorOption {
	return func(e *Executor) { e.run = fn }
}

// NewExecutor builds an Executor, applying any options over the default
// process launcher.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{run: runAndCapture}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOutput runs ffmpeg with args and returns its combined output.
// ffmpeg splits its writing between the two streams (-version goes to
// stdout, probe banners and diagnostics to stderr); both are captured.
func (e *Executor) RunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	return e.run(ctx, ffmpegPath, args)
}

// runAndCapture is the production run function. Captured output is
// returned even when ffmpeg exits non-zero, because several legitimate
// invocations do (probing a file with no output target, for one).
func runAndCapture(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}
