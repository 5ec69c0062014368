package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Arr contains connection settings for the managing service whose
// download queue is reconciled.
type Arr struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Kind    string `toml:"kind"`
}

// Store contains settings for the persistent tracking database.
type Store struct {
	Name     string `toml:"name"`
	StateDir string `toml:"state_dir"`
}

// Rules contains the eviction thresholds.
type Rules struct {
	StallThresholdHours int `toml:"stall_threshold_hours"`
	GracePeriodHours    int `toml:"grace_period_hours"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for sweeparr.
type Config struct {
	Arr           Arr           `toml:"arr"`
	Store         Store         `toml:"store"`
	Rules         Rules         `toml:"rules"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sweeparr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a configuration file was found at the resolved path.
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sweeparr.toml")
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

func (c *Config) normalize() error {
	c.Arr.BaseURL = strings.TrimRight(strings.TrimSpace(c.Arr.BaseURL), "/")
	c.Arr.APIKey = strings.TrimSpace(c.Arr.APIKey)
	c.Arr.Kind = strings.ToLower(strings.TrimSpace(c.Arr.Kind))
	c.Store.Name = strings.TrimSpace(c.Store.Name)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	stateDir := strings.TrimSpace(c.Store.StateDir)
	if stateDir == "" {
		stateDir = defaultStateDir
	}
	expanded, err := expandPath(stateDir)
	if err != nil {
		return err
	}
	c.Store.StateDir = expanded
	return nil
}

// EnsureDirectories creates the state directory backing the tracking store.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Store.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Store.StateDir, err)
	}
	return nil
}

// DatabasePath returns the SQLite file backing the store identifier.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Store.StateDir, c.Store.Name+".db")
}

// LockPath returns the lock file used to serialize passes against the store.
func (c *Config) LockPath() string {
	return filepath.Join(c.Store.StateDir, c.Store.Name+".lock")
}

// LogPath returns the log file a pass appends to.
func (c *Config) LogPath() string {
	return filepath.Join(c.Store.StateDir, "sweeparr.log")
}

// StallThreshold returns the unchanged-progress eviction threshold.
func (c *Config) StallThreshold() time.Duration {
	return time.Duration(c.Rules.StallThresholdHours) * time.Hour
}

// GracePeriod returns the allowed absence duration before eviction.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Rules.GracePeriodHours) * time.Hour
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
