package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Config encapsulates all configuration values for scoreflow.
//
// The struct is built once at process start and handed to the daemon and the
// pipeline stages explicitly; stage logic never reads ambient environment
// state.
type Config struct {
	// ScratchRoot is the directory under which per-session workspaces are created.
	ScratchRoot string `toml:"scratch_root"`
	// LogDir holds the daemon log, the session ledger, and the instance lock.
	LogDir string `toml:"log_dir"`
	// APIBind is the host:port the HTTP API listens on.
	APIBind string `toml:"api_bind"`
	// APIToken is the bearer token required by /process-score and /api/* routes.
	APIToken string `toml:"api_token"`

	// OMRBinary is the optical-music-recognition engine command.
	OMRBinary string `toml:"omr_binary"`
	// OMRTimeout bounds a single OMR invocation, in seconds.
	OMRTimeout int `toml:"omr_timeout"`

	// RenderBinary is the score-rendering engine command.
	RenderBinary string `toml:"render_binary"`
	// RenderTimeout bounds a single render invocation, in seconds.
	RenderTimeout int `toml:"render_timeout"`
	// RenderConcurrency caps concurrent per-group render invocations.
	RenderConcurrency int `toml:"render_concurrency"`

	// CleanupGraceSeconds is how long a workspace survives after the response
	// has been handed off.
	CleanupGraceSeconds int `toml:"cleanup_grace_seconds"`
	// CleanupSweepSeconds is the reaper polling interval.
	CleanupSweepSeconds int `toml:"cleanup_sweep_seconds"`
	// CleanupMaxAgeSeconds is the age past which an unledgered workspace is
	// considered orphaned and removed.
	CleanupMaxAgeSeconds int `toml:"cleanup_max_age_seconds"`

	// DefaultMeasureCount is used when metadata extraction fails outright.
	DefaultMeasureCount int `toml:"default_measure_count"`

	LogFormat string `toml:"log_format"`
	LogLevel  string `toml:"log_level"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scoreflow/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found at the resolved path.
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
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// Sample returns the embedded sample configuration document.
func Sample() string {
	return sampleConfig
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

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// EnsureDirectories creates the scratch root and log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.ScratchRoot, c.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OMRTimeoutDuration returns the OMR invocation bound as a duration.
func (c *Config) OMRTimeoutDuration() time.Duration {
	return time.Duration(c.OMRTimeout) * time.Second
}

// RenderTimeoutDuration returns the render invocation bound as a duration.
func (c *Config) RenderTimeoutDuration() time.Duration {
	return time.Duration(c.RenderTimeout) * time.Second
}

// CleanupGrace returns the post-response workspace grace delay.
func (c *Config) CleanupGrace() time.Duration {
	return time.Duration(c.CleanupGraceSeconds) * time.Second
}

// CleanupSweepInterval returns the reaper polling interval.
func (c *Config) CleanupSweepInterval() time.Duration {
	return time.Duration(c.CleanupSweepSeconds) * time.Second
}

// CleanupMaxAge returns the orphan workspace age cutoff.
func (c *Config) CleanupMaxAge() time.Duration {
	return time.Duration(c.CleanupMaxAgeSeconds) * time.Second
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
