// Package config persists user preferences under ~/.config/voice and
// resolves them against environment fallbacks. The file format is one
// key=value per line with # comments.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Keys the config file understands.
const (
	KeyOutputDir     = "output-dir"
	KeyTranscribeURL = "transcribe-url"
	KeyFFmpegPath    = "ffmpeg-path"
)

// Environment fallbacks, consulted when the file leaves a key unset.
const (
	EnvOutputDir     = "VOICE_OUTPUT_DIR"
	EnvTranscribeURL = "TRANSCRIBE_URL"
	EnvFFmpegPath    = "FFMPEG_PATH"
)

// Config holds the resolved settings. API keys are deliberately absent:
// secrets come from the environment at the CLI layer, never from a file
// on disk.
type Config struct {
	OutputDir     string
	TranscribeURL string
	FFmpegPath    string
}

// dir returns the configuration directory: $XDG_CONFIG_HOME/voice when
// set, ~/.config/voice otherwise.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "voice"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "voice"), nil
}

// path returns the config file location.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load resolves the configuration. File values win over environment
// fallbacks, and a missing file is not an error: everything simply
// falls through to the environment.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}

	data, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}

	return Config{
		OutputDir:     orEnv(data[KeyOutputDir], EnvOutputDir),
		TranscribeURL: orEnv(data[KeyTranscribeURL], EnvTranscribeURL),
		FFmpegPath:    orEnv(data[KeyFFmpegPath], EnvFFmpegPath),
	}, nil
}

// orEnv returns the file value, or the environment fallback when the
// file had nothing.
func orEnv(fromFile, envVar string) string {
	if fromFile != "" {
		return fromFile
	}
	return os.Getenv(envVar)
}

// parseFile reads a key=value file into a map. Blank lines and lines
// starting with # are skipped; any other line without '=' is malformed.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- path derives from the user config dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("line %d: %q: %w", n, line, ErrInvalidSyntax)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	return data, nil
}

// Save writes one key=value into the config file, creating the
// directory and file as needed. Other keys are preserved; comments are
// not.
func Save(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\n#") {
		return fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	// A value with a newline would come back as a different line on the
	// next parse.
	if strings.Contains(value, "\n") {
		return fmt.Errorf("value for %s contains a newline: %w", key, ErrInvalidSyntax)
	}

	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile rewrites the config file with keys in sorted order, so
// repeated saves produce identical files.
func writeFile(p string, data map[string]string) error {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, data[key])
	}

	// #nosec G306 -- user config, not a secret
	if err := os.WriteFile(p, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// Get reads one value from the config file. A missing file or key is
// an empty string, not an error.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns every pair in the config file. A missing file is an
// empty map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// EnsureOutputDir checks that d is usable as output-dir, creating it
// when missing. The write probe catches read-only mounts that a stat
// cannot.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output-dir cannot be empty")
	}

	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", d, ErrNotDirectory)
	}

	probe := filepath.Join(d, ".voice-write-test")
	f, err := os.Create(probe) // #nosec G304 -- probe sits inside the directory being checked
	if err != nil {
		return fmt.Errorf("%s: %w", d, ErrNotWritable)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(probe)
		return fmt.Errorf("%s: %w", d, ErrNotWritable)
	}
	_ = os.Remove(probe)

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory. Other
// uses of ~ (like ~user) pass through untouched.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
