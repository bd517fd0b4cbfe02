package audio_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RedAIToronto/voice/internal/audio"
)

// ---------------------------------------------------------------------------
// FingerprintFile - Content hashing
// ---------------------------------------------------------------------------

func TestFingerprintFile(t *testing.T) {
	t.Parallel()

	t.Run("hashes content and records size", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "memo.ogg")
		content := []byte("OggS fake audio bytes")
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		fp, err := audio.FingerprintFile(path)
		if err != nil {
			t.Fatalf("FingerprintFile() error = %v", err)
		}
		if fp.SizeBytes != int64(len(content)) {
			t.Errorf("SizeBytes = %d, want %d", fp.SizeBytes, len(content))
		}
		// 32-byte digest, hex encoded.
		if len(fp.BLAKE3) != 64 {
			t.Errorf("BLAKE3 length = %d, want 64", len(fp.BLAKE3))
		}
	})

	t.Run("identical content yields identical hashes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := filepath.Join(dir, "a.ogg")
		b := filepath.Join(dir, "b.ogg")
		for _, path := range []string{a, b} {
			if err := os.WriteFile(path, []byte("same bytes"), 0o644); err != nil {
				t.Fatalf("WriteFile(%q) error = %v", path, err)
			}
		}

		fpA, err := audio.FingerprintFile(a)
		if err != nil {
			t.Fatalf("FingerprintFile(a) error = %v", err)
		}
		fpB, err := audio.FingerprintFile(b)
		if err != nil {
			t.Fatalf("FingerprintFile(b) error = %v", err)
		}
		if fpA.BLAKE3 != fpB.BLAKE3 {
			t.Errorf("hashes differ: %s vs %s", fpA.BLAKE3, fpB.BLAKE3)
		}
	})

	t.Run("different content yields different hashes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := filepath.Join(dir, "a.ogg")
		b := filepath.Join(dir, "b.ogg")
		if err := os.WriteFile(a, []byte("first recording"), 0o644); err != nil {
			t.Fatalf("WriteFile(a) error = %v", err)
		}
		if err := os.WriteFile(b, []byte("second recording"), 0o644); err != nil {
			t.Fatalf("WriteFile(b) error = %v", err)
		}

		fpA, err := audio.FingerprintFile(a)
		if err != nil {
			t.Fatalf("FingerprintFile(a) error = %v", err)
		}
		fpB, err := audio.FingerprintFile(b)
		if err != nil {
			t.Fatalf("FingerprintFile(b) error = %v", err)
		}
		if fpA.BLAKE3 == fpB.BLAKE3 {
			t.Errorf("distinct content produced the same hash %s", fpA.BLAKE3)
		}
	})

	t.Run("missing file reports ErrFileNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := audio.FingerprintFile(filepath.Join(t.TempDir(), "missing.ogg"))
		if !errors.Is(err, audio.ErrFileNotFound) {
			t.Errorf("FingerprintFile() error = %v, want ErrFileNotFound", err)
		}
	})
}
