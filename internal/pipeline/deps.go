package pipeline

import (
	"os"

	"github.com/RedAIToronto/voice/internal/audio"
)

// fileWriter abstracts artifact persistence.
type fileWriter interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// storeOpener creates the per-run chunk scratch store.
type storeOpener func(baseDir string, opts ...audio.ChunkStoreOption) (*audio.ChunkStore, error)

// OS implementations (defaults).

type osFileWriter struct{}

func (osFileWriter) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (osFileWriter) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// Compile-time interface compliance check.
var _ fileWriter = osFileWriter{}
