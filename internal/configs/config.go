package configs

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
)

// DefaultConfigFile is looked up in the working directory when --config is not given.
const DefaultConfigFile = "keysweep.toml"

// Config is the on-disk search configuration.
type Config struct {
	Ciphertext CiphertextConfig `toml:"ciphertext"`
	Artifacts  ArtifactsConfig  `toml:"artifacts"`
	Candidates CandidatesConfig `toml:"candidates"`
	Scan       ScanConfig       `toml:"scan"`
	Match      MatchConfig      `toml:"match"`
	Output     OutputConfig     `toml:"output"`
}

type CiphertextConfig struct {
	// Value is the base64 ciphertext. Takes precedence over File.
	Value string `toml:"value"`
	File  string `toml:"file"`
}

type ArtifactsConfig struct {
	// Paths are files, directories or ** globs.
	Paths []string `toml:"paths"`
}

type CandidatesConfig struct {
	// Salt is hex encoded.
	Salt       string   `toml:"salt"`
	Passwords  []string `toml:"passwords"`
	Iterations int      `toml:"iterations"`
	PRF        string   `toml:"prf"`
}

type ScanConfig struct {
	// Workers of 0 means one per CPU.
	Workers    int    `toml:"workers"`
	BatchSize  int    `toml:"batch_size"`
	Timeout    string `toml:"timeout"`
	CollectAll bool   `toml:"collect_all"`
}

type MatchConfig struct {
	Heuristic string   `toml:"heuristic"`
	Markers   []string `toml:"markers"`
}

type OutputConfig struct {
	PreviewLength int    `toml:"preview_length"`
	Journal       string `toml:"journal"`
}

// DefaultSalt is the salt used by the Android dictionary build the tool was
// first pointed at.
const DefaultSalt = "052daeff36629cf42b02f8fc09059695df2dff54"

// DefaultPasswords are the package-derived guesses tried before any scan.
var DefaultPasswords = []string{
	"bestdict", "en.km.bestdict", "getData", "libgetData", "android", "123456", "",
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Candidates: CandidatesConfig{
			Salt:       DefaultSalt,
			Passwords:  append([]string(nil), DefaultPasswords...),
			Iterations: 1000,
			PRF:        "sha1",
		},
		Scan: ScanConfig{
			BatchSize: 4096,
			Timeout:   "0s",
		},
		Match: MatchConfig{
			Heuristic: "markup",
			Markers:   []string{"<div", "<b>", "<font", "<p", "span"},
		},
		Output: OutputConfig{
			PreviewLength: 150,
		},
	}
}

// LoadConfig reads the config at path on top of DefaultConfig. A missing
// file yields the defaults unless required is set. Unknown keys are returned
// for the caller to report.
func LoadConfig(path string, required bool) (*Config, []string, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if required {
			return nil, nil, fmt.Errorf("%w: config file %s not found", kerrors.ErrInvalidConfig, path)
		}
		return config, nil, nil
	}

	unknown, err := LoadTOML(path, config)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", kerrors.ErrInvalidConfig, path, err)
	}

	return config, unknown, nil
}

// SaveConfig writes the configuration to path.
func SaveConfig(path string, config *Config) error {
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks the fields that can be checked without touching the filesystem.
func (c *Config) Validate() error {
	if c.Ciphertext.Value == "" && c.Ciphertext.File == "" {
		return kerrors.ErrMissingCiphertext
	}
	if _, err := c.SaltBytes(); err != nil {
		return err
	}
	if c.Candidates.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be positive, got %d", kerrors.ErrInvalidConfig, c.Candidates.Iterations)
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", kerrors.ErrInvalidConfig, c.Scan.Workers)
	}
	if c.Scan.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size must be positive, got %d", kerrors.ErrInvalidConfig, c.Scan.BatchSize)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.MatchPatterns(); err != nil {
		return err
	}
	return nil
}

// CiphertextText returns the encoded ciphertext, reading it from File when
// no inline value is set.
func (c *Config) CiphertextText() (string, error) {
	if c.Ciphertext.Value != "" {
		return c.Ciphertext.Value, nil
	}
	if c.Ciphertext.File == "" {
		return "", kerrors.ErrMissingCiphertext
	}

	data, err := os.ReadFile(c.Ciphertext.File)
	if err != nil {
		return "", fmt.Errorf("failed to read ciphertext file: %w", err)
	}
	return string(data), nil
}

// SaltBytes decodes the hex salt. An empty salt is valid.
func (c *Config) SaltBytes() ([]byte, error) {
	salt, err := hex.DecodeString(strings.TrimSpace(c.Candidates.Salt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidSalt, err)
	}
	return salt, nil
}

// TimeoutDuration parses the scan timeout. Zero means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Scan.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Scan.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: timeout %q", kerrors.ErrInvalidConfig, c.Scan.Timeout)
	}
	return d, nil
}

// MatchPatterns returns the markers with Go escape sequences such as \x1f
// resolved, so binary signatures can be written in TOML strings.
func (c *Config) MatchPatterns() ([]string, error) {
	out := make([]string, 0, len(c.Match.Markers))
	for _, m := range c.Match.Markers {
		if !strings.Contains(m, `\`) {
			out = append(out, m)
			continue
		}
		s, err := strconv.Unquote(`"` + strings.ReplaceAll(m, `"`, `\"`) + `"`)
		if err != nil {
			return nil, fmt.Errorf("%w: marker %q: %v", kerrors.ErrInvalidConfig, m, err)
		}
		out = append(out, s)
	}
	return out, nil
}
