package audio

import (
	"context"
	"os"
	"os/exec"
)

// The package shells out to ffprobe/ffmpeg and touches the filesystem
// only through these seams, so tests can run with neither installed.

// commandRunner runs one external command to completion.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// The remaining seams mirror the os functions the prober, splitter,
// and chunk store call.

type tempDirCreator interface {
	MkdirTemp(dir, pattern string) (string, error)
}

type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

type fileRemover interface {
	Remove(name string) error
	RemoveAll(path string) error
}

type dirReader interface {
	ReadDir(name string) ([]os.DirEntry, error)
}

// osSystem backs every seam with the real OS.
type osSystem struct{}

var (
	_ commandRunner  = osSystem{}
	_ tempDirCreator = osSystem{}
	_ fileStatter    = osSystem{}
	_ fileRemover    = osSystem{}
	_ dirReader      = osSystem{}
)

func (osSystem) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are built by this package, not taken from input
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (osSystem) MkdirTemp(dir, pattern string) (string, error) { return os.MkdirTemp(dir, pattern) }

func (osSystem) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

func (osSystem) Remove(name string) error { return os.Remove(name) }

func (osSystem) RemoveAll(path string) error { return os.RemoveAll(path) }

func (osSystem) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }
