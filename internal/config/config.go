package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the facet configuration.
type Config struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	Stages       []string      `yaml:"stages"`
	Extensions   []string      `yaml:"extensions,omitempty"`
	Include      []string      `yaml:"include,omitempty"`
	Exclude      []string      `yaml:"exclude,omitempty"`
	Outputs      []Output      `yaml:"outputs"`
	FailOn       string        `yaml:"failOn"`
	MaxFindings  int           `yaml:"maxFindings"`
	ContextLines int           `yaml:"contextLines"`
	MaxDiffBytes int           `yaml:"maxDiffBytes"`
	Cache        CacheConfig   `yaml:"cache"`
	Privacy      PrivacyConfig `yaml:"privacy"`
}

// Output is one configured report artifact. An empty path means stdout.
type Output struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path,omitempty"`
}

// CacheConfig controls provider-response caching.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// PrivacyConfig controls secret redaction before prompting.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:     "anthropic",
		Model:        "claude-sonnet-4-20250514",
		Stages:       []string{"security", "correctness", "performance", "maintainability"},
		Outputs:      []Output{{Format: "text"}},
		FailOn:       "none",
		MaxFindings:  50,
		ContextLines: 3,
		MaxDiffBytes: 500000,
		Exclude:      []string{"vendor/**", "**/*.gen.go", "**/dist/**"},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env*", "**/*secret*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for facet.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "facet"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "facet"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "facet"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "facet"), nil
	default:
		return filepath.Join(home, ".config", "facet"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only non-zero values
// should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if len(src.Stages) > 0 {
		dst.Stages = src.Stages
	}
	if len(src.Extensions) > 0 {
		dst.Extensions = src.Extensions
	}
	if len(src.Include) > 0 {
		dst.Include = src.Include
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if len(src.Outputs) > 0 {
		dst.Outputs = src.Outputs
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	if src.MaxFindings > 0 {
		dst.MaxFindings = src.MaxFindings
	}
	if src.ContextLines > 0 {
		dst.ContextLines = src.ContextLines
	}
	if src.MaxDiffBytes > 0 {
		dst.MaxDiffBytes = src.MaxDiffBytes
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("FACET_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("FACET_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("FACET_STAGES"); v != "" {
		cfg.Stages = splitList(v)
	}
	if v := os.Getenv("FACET_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("FACET_MAX_FINDINGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	if v := os.Getenv("FACET_CONTEXT_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLines = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["stages"]; ok && v != "" {
		cfg.Stages = splitList(v)
	}
	if v, ok := overrides["extensions"]; ok && v != "" {
		cfg.Extensions = splitList(v)
	}
	if v, ok := overrides["failOn"]; ok && v != "" {
		cfg.FailOn = v
	}
	if v, ok := overrides["maxFindings"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	if v, ok := overrides["contextLines"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLines = n
		}
	}
	if v, ok := overrides["maxDiffBytes"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDiffBytes = n
		}
	}
}

// SetField sets a single config field by key name. Returns error if key
// is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "stages":
		cfg.Stages = splitList(value)
	case "extensions":
		cfg.Extensions = splitList(value)
	case "failOn":
		cfg.FailOn = value
	case "maxFindings":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFindings must be an integer: %w", err)
		}
		cfg.MaxFindings = n
	case "contextLines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("contextLines must be an integer: %w", err)
		}
		cfg.ContextLines = n
	case "maxDiffBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxDiffBytes must be an integer: %w", err)
		}
		cfg.MaxDiffBytes = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
