package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ChunkStore owns the scratch directory for one run's chunk files.
// It tracks every artifact recorded with it and deletes exactly those on
// Release, never touching files it did not create. Release is idempotent
// so it can sit in a defer and also be called explicitly.
//
// A ChunkStore is not safe for concurrent use; the pipeline drives it
// from a single goroutine.
type ChunkStore struct {
	dir      string
	runID    string
	tracked  []string
	released bool
	warn     WarnFunc

	// Injectable dependencies (defaults to OS implementations).
	tempDir tempDirCreator
	files   fileRemover
	reader  dirReader
}

// ChunkStoreOption configures a ChunkStore.
type ChunkStoreOption func(*ChunkStore)

// WithStoreWarnFunc sets a callback for warning messages.
// By default, warnings are written to stderr. Set to nil to suppress.
func WithStoreWarnFunc(fn WarnFunc) ChunkStoreOption {
	return func(cs *ChunkStore) {
		cs.warn = fn
	}
}

// WithStoreRunID adopts an existing run identifier instead of generating
// one, so the scratch directory name matches the caller's log fields.
func WithStoreRunID(id string) ChunkStoreOption {
	return func(cs *ChunkStore) {
		if id != "" {
			cs.runID = id
		}
	}
}

// WithStoreTempDirCreator sets the temp directory creator for ChunkStore.
func WithStoreTempDirCreator(t tempDirCreator) ChunkStoreOption {
	return func(cs *ChunkStore) {
		cs.tempDir = t
	}
}

// WithStoreFileRemover sets the file remover for ChunkStore.
func WithStoreFileRemover(f fileRemover) ChunkStoreOption {
	return func(cs *ChunkStore) {
		cs.files = f
	}
}

// WithStoreDirReader sets the directory reader for ChunkStore.
func WithStoreDirReader(r dirReader) ChunkStoreOption {
	return func(cs *ChunkStore) {
		cs.reader = r
	}
}

// OpenChunkStore creates a fresh uniquely-named scratch directory under
// baseDir (the system temp directory when baseDir is empty).
func OpenChunkStore(baseDir string, opts ...ChunkStoreOption) (*ChunkStore, error) {
	cs := &ChunkStore{
		runID:   uuid.NewString(),
		warn:    defaultWarnFunc,
		tempDir: osSystem{},
		files:   osSystem{},
		reader:  osSystem{},
	}

	for _, opt := range opts {
		opt(cs)
	}

	short := cs.runID
	if len(short) > 8 {
		short = short[:8]
	}
	dir, err := cs.tempDir.MkdirTemp(baseDir, fmt.Sprintf("voice-%s-*", short))
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	cs.dir = dir

	return cs, nil
}

// RunID returns the unique identifier of this store's run.
func (cs *ChunkStore) RunID() string {
	return cs.runID
}

// Dir returns the scratch directory path.
func (cs *ChunkStore) Dir() string {
	return cs.dir
}

// Allocate returns the path for the chunk at index inside the scratch
// directory. It does not create the file; call Record once the file
// exists and should be owned by the store.
func (cs *ChunkStore) Allocate(index int, ext string) string {
	return filepath.Join(cs.dir, fmt.Sprintf("chunk_%03d.%s", index, ext))
}

// Record marks a created artifact as owned by this store. Paths outside
// the scratch directory are refused: the store must never end up deleting
// a file it does not own.
func (cs *ChunkStore) Record(path string) {
	if !strings.HasPrefix(path, cs.dir+string(filepath.Separator)) {
		if cs.warn != nil {
			cs.warn(fmt.Sprintf("Warning: refusing to track %s: outside scratch directory %s", path, cs.dir))
		}
		return
	}
	if slices.Contains(cs.tracked, path) {
		return
	}
	cs.tracked = append(cs.tracked, path)
}

// Release deletes all tracked artifacts and, if nothing else remains, the
// scratch directory itself. Unexpected files are warned about and left in
// place. Individual deletion failures are warned and counted but do not
// abort the release; if any occurred, the returned error wraps
// ErrReleaseIncomplete. Calling Release again is a no-op.
func (cs *ChunkStore) Release() error {
	if cs.released {
		return nil
	}
	cs.released = true

	failed := 0
	for _, path := range cs.tracked {
		if err := cs.files.Remove(path); err != nil && !os.IsNotExist(err) {
			failed++
			if cs.warn != nil {
				cs.warn(fmt.Sprintf("Warning: could not remove chunk file %s: %v", path, err))
			}
		}
	}

	entries, err := cs.reader.ReadDir(cs.dir)
	switch {
	case os.IsNotExist(err):
		// Directory already gone; nothing left to do.
	case err != nil:
		if cs.warn != nil {
			cs.warn(fmt.Sprintf("Warning: could not inspect scratch directory %s: %v", cs.dir, err))
		}
	case len(entries) == 0:
		if err := cs.files.Remove(cs.dir); err != nil && !os.IsNotExist(err) {
			if cs.warn != nil {
				cs.warn(fmt.Sprintf("Warning: could not remove scratch directory %s: %v", cs.dir, err))
			}
		}
	default:
		if cs.warn != nil {
			cs.warn(fmt.Sprintf("Warning: %d unexpected files in %s, leaving directory in place", len(entries), cs.dir))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d chunk files not removed: %w", failed, len(cs.tracked), ErrReleaseIncomplete)
	}
	return nil
}
