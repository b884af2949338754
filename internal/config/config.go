// Package config loads memscan's YAML configuration. A missing file yields the
// defaults; environment variables override whatever the file says.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"memscan/internal/scan"
)

const (
	// DefaultDir is the data directory under the user's home.
	DefaultDir = ".memscan"
	// ConfigFile is the file name inside the data directory.
	ConfigFile = "config.yaml"
)

// Config holds user preferences. Command-line flags take precedence.
type Config struct {
	Debug      bool   `yaml:"debug" json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
	DataDir    string `yaml:"dataDir,omitempty" json:"dataDir,omitempty" jsonschema:"title=Data Directory,description=Directory for memscan data and logs"`
	Type       string `yaml:"type" json:"type" jsonschema:"title=Value Type,description=Default value type to scan as,enum=i8,enum=i16,enum=i32,enum=i64,enum=u8,enum=u16,enum=u32,enum=u64,enum=f32,enum=f64"`
	MaxResults int    `yaml:"maxResults" json:"maxResults" jsonschema:"title=Max Results,description=Number of candidates to print before truncating,minimum=1"`
	PerLine    int    `yaml:"perLine" json:"perLine" jsonschema:"title=Values Per Line,description=Values per line in dumps,minimum=1"`
	NoColor    bool   `yaml:"noColor" json:"noColor" jsonschema:"title=No Color,description=Disable colored output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Type:       "i32",
		MaxResults: 50,
		PerLine:    16,
	}
}

// Loader resolves and reads the configuration file.
type Loader struct {
	dir string
}

// NewLoader picks the data directory: dataDir if given, then MEMSCAN_DATA_DIR,
// then ~/.memscan, then a temp directory when there is no home.
func NewLoader(dataDir string) *Loader {
	if dataDir != "" {
		return &Loader{dir: dataDir}
	}
	if dir := os.Getenv("MEMSCAN_DATA_DIR"); dir != "" {
		return &Loader{dir: dir}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return &Loader{dir: filepath.Join(home, DefaultDir)}
	}
	return &Loader{dir: filepath.Join(os.TempDir(), "memscan")}
}

// Dir returns the data directory.
func (l *Loader) Dir() string { return l.dir }

// Path returns the config file path, honoring MEMSCAN_CONFIG.
func (l *Loader) Path() string {
	if p := os.Getenv("MEMSCAN_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(l.dir, ConfigFile)
}

// Load reads path (or the default location when empty), applies environment
// overrides and validates the result. Only the default location may be
// missing; a file named by path or MEMSCAN_CONFIG must exist.
func (l *Loader) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = l.Path()
		explicit = os.Getenv("MEMSCAN_CONFIG") != ""
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if cfg.DataDir == "" {
		cfg.DataDir = l.dir
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to the default location, creating the data directory.
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(l.dir, ConfigFile), data, 0o644)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MEMSCAN_TYPE"); v != "" {
		cfg.Type = v
	}
	if v := os.Getenv("MEMSCAN_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MEMSCAN_MAX_RESULTS: %w", err)
		}
		cfg.MaxResults = n
	}
	if os.Getenv("MEMSCAN_NO_COLOR") != "" {
		cfg.NoColor = true
	}
	return nil
}

// Validate checks field ranges and the value type name.
func (c *Config) Validate() error {
	if _, err := scan.ParseKind(c.Type); err != nil {
		return err
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("maxResults must be positive, got %d", c.MaxResults)
	}
	if c.PerLine < 1 {
		return fmt.Errorf("perLine must be positive, got %d", c.PerLine)
	}
	return nil
}

// Kind returns the parsed default value type.
func (c *Config) Kind() scan.Kind {
	k, _ := scan.ParseKind(c.Type)
	return k
}
