package ffmpeg

// Coverage Notes:
// - Executor tests inject a runFunc; only the runAndCapture tests spawn
//   a real process, and those use sh rather than a real ffmpeg.
// - parseMajor is tested directly: banner formats vary across ffmpeg
//   builds and the table is the easiest place to collect them.

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestExecutor_RunOutput(t *testing.T) {
	t.Parallel()

	t.Run("passes through the run function's output", func(t *testing.T) {
		t.Parallel()

		e := NewExecutor(WithRunOutput(func(ctx context.Context, path string, args []string) (string, error) {
			return "ffmpeg version 7.0", nil
		}))

		out, err := e.RunOutput(context.Background(), "/opt/ffmpeg", []string{"-version"})
		if err != nil {
			t.Fatalf("RunOutput() error = %v, want nil", err)
		}
		if out != "ffmpeg version 7.0" {
			t.Errorf("RunOutput() = %q, want the injected banner", out)
		}
	})

	t.Run("passes through the run function's error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("exec format error")
		e := NewExecutor(WithRunOutput(func(ctx context.Context, path string, args []string) (string, error) {
			return "", boom
		}))

		if _, err := e.RunOutput(context.Background(), "/opt/ffmpeg", nil); !errors.Is(err, boom) {
			t.Errorf("RunOutput() error = %v, want the injected error", err)
		}
	})

	t.Run("run function sees the binary path and args", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		var gotArgs []string
		e := NewExecutor(WithRunOutput(func(ctx context.Context, path string, args []string) (string, error) {
			gotPath, gotArgs = path, args
			return "", nil
		}))

		_, _ = e.RunOutput(context.Background(), "/usr/local/bin/ffmpeg", []string{"-hide_banner", "-version"})
		if gotPath != "/usr/local/bin/ffmpeg" {
			t.Errorf("path = %q, want %q", gotPath, "/usr/local/bin/ffmpeg")
		}
		if len(gotArgs) != 2 || gotArgs[0] != "-hide_banner" {
			t.Errorf("args = %v, want the caller's args", gotArgs)
		}
	})
}

func TestRunAndCapture(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	t.Run("captures both streams", func(t *testing.T) {
		t.Parallel()

		out, err := runAndCapture(context.Background(), "sh", []string{"-c", "echo to-stdout; echo to-stderr >&2"})
		if err != nil {
			t.Fatalf("runAndCapture() error = %v, want nil", err)
		}
		if !strings.Contains(out, "to-stdout") {
			t.Errorf("output %q is missing the stdout line", out)
		}
		if !strings.Contains(out, "to-stderr") {
			t.Errorf("output %q is missing the stderr line", out)
		}
	})

	t.Run("returns output alongside a non-zero exit", func(t *testing.T) {
		t.Parallel()

		out, err := runAndCapture(context.Background(), "sh", []string{"-c", "echo partial; exit 3"})
		if err == nil {
			t.Error("runAndCapture() error = nil, want exit error")
		}
		if !strings.Contains(out, "partial") {
			t.Errorf("output %q lost the text printed before the exit", out)
		}
	})

	t.Run("missing binary errors with empty output", func(t *testing.T) {
		t.Parallel()

		out, err := runAndCapture(context.Background(), "/no/such/ffmpeg", nil)
		if err == nil {
			t.Error("runAndCapture() error = nil, want error")
		}
		if out != "" {
			t.Errorf("output = %q, want empty", out)
		}
	})

	t.Run("cancelled context stops the process", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := runAndCapture(ctx, "sleep", []string{"30"}); err == nil {
			t.Error("runAndCapture() error = nil, want error from the cancelled run")
		}
	})
}

func TestVersionChecker_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		banner      string
		runErr      error
		wantOK      bool
		wantWarning string
	}{
		{
			name:   "current release passes quietly",
			banner: "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers",
			wantOK: true,
		},
		{
			name:   "floor version passes quietly",
			banner: "ffmpeg version 4.4.1 Copyright (c) 2000-2021 the FFmpeg developers",
			wantOK: true,
		},
		{
			name:        "older than the floor warns",
			banner:      "ffmpeg version 3.4.8 Copyright (c) 2000-2020 the FFmpeg developers",
			wantOK:      true,
			wantWarning: "Warning: found ffmpeg version 3, but 4 or newer is expected",
		},
		{
			name:   "nightly n-prefix parses",
			banner: "ffmpeg version n7.0.2-7 Copyright (c) 2000-2024 the FFmpeg developers",
			wantOK: true,
		},
		{
			name:   "unreadable banner is not a failure",
			banner: "bash: ffmpeg: something strange came back",
			wantOK: false,
		},
		{
			name:   "empty output cannot be checked",
			banner: "",
			wantOK: false,
		},
		{
			name:   "failed run with no output cannot be checked",
			banner: "",
			runErr: errors.New("exit status 127"),
			wantOK: false,
		},
		{
			name:   "failed run that still printed a banner is checked",
			banner: "ffmpeg version 5.1.4 Copyright (c) 2000-2023 the FFmpeg developers",
			runErr: errors.New("exit status 1"),
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var warnings strings.Builder
			checker := NewVersionChecker(
				WithVersionExecutor(NewExecutor(WithRunOutput(
					func(context.Context, string, []string) (string, error) {
						return tt.banner, tt.runErr
					}))),
				WithVersionStderr(&warnings),
			)

			ok := checker.Check(context.Background(), "/usr/bin/ffmpeg")
			if ok != tt.wantOK {
				t.Errorf("Check() = %v, want %v", ok, tt.wantOK)
			}

			got := warnings.String()
			if tt.wantWarning == "" && got != "" {
				t.Errorf("unexpected warning: %q", got)
			}
			if tt.wantWarning != "" && !strings.Contains(got, tt.wantWarning) {
				t.Errorf("warning = %q, want it to contain %q", got, tt.wantWarning)
			}
		})
	}
}

func TestParseMajor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		banner string
		want   int
		ok     bool
	}{
		{name: "release build", banner: "ffmpeg version 6.1.1 Copyright (c) 2000-2023", want: 6, ok: true},
		{name: "two digit major", banner: "ffmpeg version 10.0 Copyright", want: 10, ok: true},
		{name: "nightly n prefix", banner: "ffmpeg version n6.1.1-26 Copyright", want: 6, ok: true},
		{name: "bare major", banner: "ffmpeg version 7", want: 7, ok: true},
		{name: "git build has no leading number", banner: "ffmpeg version git-2020-08-31", ok: false},
		{name: "wrong tool", banner: "ffprobe version 6.1.1", ok: false},
		{name: "empty", banner: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := parseMajor(tt.banner)
			if ok != tt.ok {
				t.Fatalf("parseMajor(%q) ok = %v, want %v", tt.banner, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("parseMajor(%q) = %d, want %d", tt.banner, got, tt.want)
			}
		})
	}
}
