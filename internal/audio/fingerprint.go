package audio

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// Fingerprint identifies a source file by content and size. The hash ties
// log lines and artifacts back to the exact audio that produced them even
// after the file is renamed or moved.
type Fingerprint struct {
	SizeBytes int64
	BLAKE3    string // Hex-encoded 256-bit digest.
}

// FingerprintFile hashes the file at path with BLAKE3 and records its size.
func FingerprintFile(path string) (Fingerprint, error) {
	f, err := os.Open(path) // #nosec G304 -- path is the user's own audio file
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat %s: %w", path, err)
	}

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	return Fingerprint{
		SizeBytes: info.Size(),
		BLAKE3:    hex.EncodeToString(h.Sum(nil)),
	}, nil
}
