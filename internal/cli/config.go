package cli

import (
	"fmt"
	"net/url"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/RedAIToronto/voice/internal/config"
)

// validConfigKeys is the closed set of keys `voice config` accepts.
var validConfigKeys = []string{
	config.KeyFFmpegPath,
	config.KeyOutputDir,
	config.KeyTranscribeURL,
}

// envFallbacks maps config keys to the environment variables consulted
// when the config file has no value.
var envFallbacks = map[string]string{
	config.KeyOutputDir:     config.EnvOutputDir,
	config.KeyTranscribeURL: config.EnvTranscribeURL,
	config.KeyFFmpegPath:    config.EnvFFmpegPath,
}

// ConfigCmd builds the `voice config` command tree.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage persistent settings",
		Long: `Manage persistent settings.

Settings live in ~/.config/voice/config; environment variables fill in
for keys the file does not set.

Supported settings:
  output-dir      Default directory for output files (env: VOICE_OUTPUT_DIR)
  transcribe-url  Transcription service base URL (env: TRANSCRIBE_URL)
  ffmpeg-path     FFmpeg binary to use (env: FFMPEG_PATH)

API keys are never stored in the config file; set OPENAI_API_KEY and
TRANSCRIBE_API_KEY in the environment instead.`,
		Example: `  voice config set transcribe-url https://transcribe.example.com
  voice config set output-dir ~/Documents/transcripts
  voice config get output-dir
  voice config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Long: `Store a setting in the config file.

Supported keys:
  output-dir      Default directory for output files
  transcribe-url  Transcription service base URL
  ffmpeg-path     FFmpeg binary to use

A missing output directory is created on the spot.`,
		Example: `  voice config set output-dir ~/Documents/transcripts
  voice config set transcribe-url http://localhost:8080`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Long: `Print one setting to stdout, or nothing if it is not set
anywhere.`,
		Example: `  voice config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every setting",
		Long: `Print every setting, including values supplied through the
environment.`,
		Example: `  voice config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

func runConfigSet(env *Env, key, value string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v): %w",
			key, validConfigKeys, config.ErrInvalidKey)
	}

	value, err := normalizeConfigValue(env, key, value)
	if err != nil {
		return err
	}
	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// normalizeConfigValue validates value for key and returns the form to
// persist. Paths are persisted expanded so the stored value does not
// depend on whose HOME later resolves it.
func normalizeConfigValue(env *Env, key, value string) (string, error) {
	switch key {
	case config.KeyOutputDir:
		expanded := config.ExpandPath(value)
		if err := config.EnsureOutputDir(expanded); err != nil {
			return "", fmt.Errorf("invalid output-dir: %w", err)
		}
		return expanded, nil

	case config.KeyTranscribeURL:
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", fmt.Errorf("invalid transcribe-url %q (need scheme and host, e.g. https://transcribe.example.com)", value)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("invalid transcribe-url scheme %q (use http or https)", u.Scheme)
		}
		return value, nil

	case config.KeyFFmpegPath:
		// A dangling path is allowed (the binary may be installed
		// later); it just earns a warning now.
		expanded := config.ExpandPath(value)
		if _, err := os.Stat(expanded); err != nil {
			fmt.Fprintf(env.Stderr, "Warning: %s does not exist yet\n", expanded)
		}
		return expanded, nil
	}

	return value, nil
}

func runConfigGet(env *Env, key string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v): %w",
			key, validConfigKeys, config.ErrInvalidKey)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(envFallbacks[key])
	}
	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}

	return nil
}

func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	// Fold in environment values for keys the file does not cover,
	// marked so the user can tell where each value came from.
	for key, envVar := range envFallbacks {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(envVar); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range validConfigKeys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, data[key])
	}

	return nil
}

func isValidConfigKey(key string) bool {
	return slices.Contains(validConfigKeys, key)
}
