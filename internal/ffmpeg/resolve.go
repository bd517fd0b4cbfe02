package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// envFFmpegPath points at a user-chosen ffmpeg binary. It outranks the
// system PATH but not an explicitly configured path.
const envFFmpegPath = "FFMPEG_PATH"

// minFFmpegMajorVersion is the oldest major version the splitter's
// flags are known to work with (libvorbis quality modes in particular).
const minFFmpegMajorVersion = 4

// Resolver locates an existing ffmpeg binary. It never installs one:
// resolution stops at the configured path, FFMPEG_PATH, and the system
// PATH, in that order.
type Resolver struct {
	statter fileStatter
	env     envProvider
	goos    string
}

// A ResolverOption overrides part of a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter replaces filesystem stat calls.
func WithFileStatter(s fileStatter) ResolverOption {
	return func(r *Resolver) { r.statter = s }
}

// WithEnvProvider replaces environment and PATH lookups.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithPlatform overrides the target OS (for testing per-platform
// install hints).
func WithPlatform(goos string) ResolverOption {
	return func(r *Resolver) { r.goos = goos }
}

// NewResolver creates a Resolver, defaulting to the real filesystem,
// environment, and platform.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		statter: osFileStatter{},
		env:     osEnvProvider{},
		goos:    runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg, trying in order:
//  1. configuredPath (flag or config file)
//  2. the FFMPEG_PATH environment variable
//  3. the system PATH
//
// A location the user named explicitly must exist: missing means an
// error, not a fallthrough to the next source.
func (r *Resolver) Resolve(configuredPath string) (string, error) {
	if configuredPath != "" {
		if _, err := r.statter.Stat(configuredPath); err != nil {
			return "", fmt.Errorf("%w: configured path %q but binary not found", ErrNotFound, configuredPath)
		}
		return configuredPath, nil
	}

	if envPath := r.env.Getenv(envFFmpegPath); envPath != "" {
		if _, err := r.statter.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found", ErrNotFound, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.env.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w\n\n%s", ErrNotFound, r.installInstructions())
}

// installInstructions returns install hints for the resolver's platform.
func (r *Resolver) installInstructions() string {
	switch r.goos {
	case "darwin":
		return `Install it with:
  brew install ffmpeg

Static builds: https://evermeet.cx/ffmpeg/

Alternatively, point the FFMPEG_PATH environment variable at an ffmpeg binary.`
	case "linux":
		return `Install it with your package manager:
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Alternatively, point the FFMPEG_PATH environment variable at an ffmpeg binary.`
	case "windows":
		return `Install it with:
  winget install ffmpeg

Builds: https://www.gyan.dev/ffmpeg/builds/

Alternatively, point the FFMPEG_PATH environment variable at ffmpeg.exe.`
	default:
		return `Download ffmpeg from https://ffmpeg.org/download.html
or point the FFMPEG_PATH environment variable at an ffmpeg binary.`
	}
}

// VersionChecker warns when the located ffmpeg is older than the
// supported floor.
type VersionChecker struct {
	executor *Executor
	stderr   io.Writer
}

// A VersionCheckerOption overrides part of a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor replaces the executor that runs ffmpeg.
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionStderr redirects warning output (for testing).
func WithVersionStderr(w io.Writer) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.stderr = w }
}

// NewVersionChecker builds a VersionChecker, applying any options over
// the real executor and stderr.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: NewExecutor(),
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// Check runs `ffmpeg -version` and warns on stderr when the binary
// predates the supported floor. The result reports whether a version
// could be read at all; an unreadable one never blocks a run.
func (vc *VersionChecker) Check(ctx context.Context, ffmpegPath string) bool {
	out, err := vc.executor.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && out == "" {
		return false
	}

	banner, _, _ := strings.Cut(out, "\n")
	major, ok := parseMajor(banner)
	if !ok {
		return false
	}

	if major < minFFmpegMajorVersion {
		fmt.Fprintf(vc.stderr, "Warning: found ffmpeg version %d, but %d or newer is expected\n",
			major, minFFmpegMajorVersion)
	}
	return true
}

// parseMajor pulls the major version out of a banner line such as
// "ffmpeg version 6.1.1 Copyright ..." or "ffmpeg version n6.1.1-20".
func parseMajor(banner string) (int, bool) {
	rest, found := strings.CutPrefix(banner, "ffmpeg version ")
	if !found {
		return 0, false
	}
	rest = strings.TrimPrefix(rest, "n")

	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	major, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return major, true
}

// Resolve finds ffmpeg using a default Resolver.
func Resolve(configuredPath string) (string, error) {
	return NewResolver().Resolve(configuredPath)
}

// CheckVersion warns when the binary at ffmpegPath is older than the
// supported floor, using package defaults.
func CheckVersion(ctx context.Context, ffmpegPath string) {
	NewVersionChecker().Check(ctx, ffmpegPath)
}
