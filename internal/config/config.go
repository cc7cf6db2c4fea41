// Package config loads xsdfold settings from files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/differ"
)

// EnvPrefix prefixes every environment override, e.g. XSDFOLD_OUTPUT_DIR.
const EnvPrefix = "XSDFOLD"

// Config holds application configuration.
type Config struct {
	Renames     map[string]string `mapstructure:"renames"`
	ReleasesDir string            `mapstructure:"releases_dir"`
	OutputDir   string            `mapstructure:"output_dir"`
	Format      string            `mapstructure:"format"`
	Constraint  string            `mapstructure:"constraint"`
	Log         LogConfig         `mapstructure:"log"`
	Parallelism int               `mapstructure:"parallelism"`
	Validate    bool              `mapstructure:"validate"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		ReleasesDir: "xsd",
		OutputDir:   "out",
		Format:      "json",
		Log:         LogConfig{Level: "warn", Format: "console"},
	}
}

// RenameTable returns the configured legacy -> canonical table, or the
// built-in one when none is configured.
func (c *Config) RenameTable() differ.RenameTable {
	if len(c.Renames) == 0 {
		return differ.NewRenameTable(differ.DefaultRenames())
	}
	return differ.NewRenameTable(c.Renames)
}

// Load reads the first config file found in the standard locations, then
// applies XSDFOLD_* environment overrides. Search order (highest precedence
// first):
// 1. ./.xsdfold.yaml or ./.xsdfold.yml
// 2. ~/.xsdfold.yaml or ~/.xsdfold.yml
// 3. $XDG_CONFIG_HOME/xsdfold/config.yaml (or ~/.config/xsdfold/config.yaml)
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFromFile reads path, then applies environment overrides.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is empty")
	}
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("releases_dir", def.ReleasesDir)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("format", def.Format)
	v.SetDefault("constraint", def.Constraint)
	v.SetDefault("validate", def.Validate)
	v.SetDefault("parallelism", def.Parallelism)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, ".xsdfold.yaml"), filepath.Join(cwd, ".xsdfold.yml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".xsdfold.yaml"), filepath.Join(home, ".xsdfold.yml"))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "xsdfold", "config.yaml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadRenameTable reads a YAML mapping of legacy names to canonical names.
func LoadRenameTable(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rename table: %w", err)
	}
	pairs := map[string]string{}
	if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("decode rename table %s: %w", path, err)
	}
	for legacy, canonical := range pairs {
		if strings.TrimSpace(legacy) == "" || strings.TrimSpace(canonical) == "" {
			return nil, fmt.Errorf("rename table %s: empty name in pair %q -> %q", path, legacy, canonical)
		}
	}
	return pairs, nil
}
