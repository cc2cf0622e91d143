package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	InboxDir string `toml:"inbox_dir"`
}

// Matching contains the detection engine parameters.
type Matching struct {
	// Threshold is the minimum fuzzy confidence (0-100) accepted as a match.
	Threshold float64 `toml:"threshold"`
	// MaxDistance is reserved for an edit-distance matching mode and is not
	// consulted by the current matcher.
	MaxDistance int `toml:"max_distance"`
	// ClusterWindowSeconds overrides the dedup cluster window. Zero uses the
	// spot duration.
	ClusterWindowSeconds float64 `toml:"cluster_window_seconds"`
	// Workers bounds per-recording fan-out. Zero uses the CPU count.
	Workers int `toml:"workers"`
	// SpotConcurrency bounds how many spots an analysis run processes at once.
	SpotConcurrency int `toml:"spot_concurrency"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunCompleted   bool   `toml:"run_completed"`
	Errors         bool   `toml:"errors"`
}

// Email contains SMTP settings for emailed run summaries.
type Email struct {
	Enabled      bool   `toml:"enabled"`
	SMTPServer   string `toml:"smtp_server"`
	SMTPPort     int    `toml:"smtp_port"`
	SMTPUser     string `toml:"smtp_user"`
	SMTPPassword string `toml:"smtp_password"`
	From         string `toml:"from"`
	To           string `toml:"to"`
}

// Watch contains configuration for the scheduled inbox scanner.
type Watch struct {
	Schedule         string `toml:"schedule"`
	SpotsSubdir      string `toml:"spots_subdir"`
	RecordingsSubdir string `toml:"recordings_subdir"`
	ProcessedSubdir  string `toml:"processed_subdir"`
}

// Config encapsulates all configuration values for spotwatch.
//
// Configuration sections by subsystem:
//   - Paths: database, log and inbox directories
//   - Matching: fuzzy threshold, dedup window and worker counts
//   - Logging: log format and level
//   - Notifications: ntfy push notification settings
//   - Email: SMTP run summaries
//   - Watch: cron schedule and inbox layout for the watcher
type Config struct {
	Paths         Paths         `toml:"paths"`
	Matching      Matching      `toml:"matching"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
	Email         Email         `toml:"email"`
	Watch         Watch         `toml:"watch"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("spotwatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The inbox is only
// created by the watcher, which owns it.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "spotwatch.db")
}

// LockPath returns the file locked for the duration of an analysis run.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "analysis.lock")
}

// WorkerCount returns the effective per-recording worker count.
func (c *Config) WorkerCount() int {
	if c.Matching.Workers > 0 {
		return c.Matching.Workers
	}
	return runtime.NumCPU()
}

// InboxDirs returns the spot, recording and processed directories under the inbox.
func (c *Config) InboxDirs() (spots, recordings, processed string) {
	base := c.Paths.InboxDir
	return filepath.Join(base, c.Watch.SpotsSubdir),
		filepath.Join(base, c.Watch.RecordingsSubdir),
		filepath.Join(base, c.Watch.ProcessedSubdir)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
