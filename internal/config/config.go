package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains filesystem locations.
type Paths struct {
	LogosDir string `toml:"logos_dir"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Catalog contains configuration for the SportsGameOdds entity catalog.
type Catalog struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// LLM contains the matching service connection settings.
type LLM struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	Referer           string `toml:"referer"`
	Title             string `toml:"title"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RetryAttempts     int    `toml:"retry_attempts"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// Matching contains batch and confidence gating settings.
type Matching struct {
	BatchSize           int     `toml:"batch_size"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	MaxEntities         int     `toml:"max_entities"`
}

// Sport maps a local directory under the logo root to a catalog sport identifier.
type Sport struct {
	Dir     string `toml:"dir"`
	SportID string `toml:"sport_id"`
}

// Notifications contains the optional ntfy settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for logonorm.
//
// Configuration sections by subsystem:
//   - Paths: logo root, state directory, log directory
//   - Catalog: SportsGameOdds credentials and pacing
//   - LLM: AI matcher connection settings
//   - Matching: batch size, confidence threshold, roster cap
//   - Sports: ordered sport category map
//   - Notifications: ntfy topic for run summaries
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	LLM           LLM           `toml:"llm"`
	Matching      Matching      `toml:"matching"`
	Sports        []Sport       `toml:"sports"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/logonorm/config.toml")
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

		// A [[sports]] table in the file replaces the default map rather than appending to it.
		cfg.Sports = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if len(cfg.Sports) == 0 {
			cfg.Sports = DefaultSports()
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

	projectPath, err := filepath.Abs("logonorm.toml")
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

// EnsureDirectories creates the state and log directories. The logo root is
// never created; a missing logo root means there is nothing to resolve.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
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

// RunConfig is the explicit value the resolution pipeline is driven by.
type RunConfig struct {
	LogosDir            string
	CatalogEndpoint     string
	MatchingEndpoint    string
	BatchSize           int
	ConfidenceThreshold float64
	MaxEntities         int
	Sports              []Sport
}

// RunConfig projects the pipeline-facing settings.
func (c *Config) RunConfig() RunConfig {
	sports := make([]Sport, len(c.Sports))
	copy(sports, c.Sports)
	return RunConfig{
		LogosDir:            c.Paths.LogosDir,
		CatalogEndpoint:     c.Catalog.BaseURL,
		MatchingEndpoint:    c.LLM.BaseURL,
		BatchSize:           c.Matching.BatchSize,
		ConfidenceThreshold: c.Matching.ConfidenceThreshold,
		MaxEntities:         c.Matching.MaxEntities,
		Sports:              sports,
	}
}

// SportDir returns the absolute directory for a sport category.
func (c *Config) SportDir(s Sport) string {
	return filepath.Join(c.Paths.LogosDir, s.Dir)
}
