package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pthm/ocg/internal/clientgen"
	"github.com/pthm/ocg/pkg/discover"
)

const (
	maxWalkDepth = 25
)

// configNames are searched for in order in every directory.
var configNames = []string{"ocg.yaml", "ocg.yml"}

// Config represents the ocg configuration from ocg.yaml.
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" json:"generate"`
	Discover DiscoverConfig `mapstructure:"discover" json:"discover"`
	Log      LogConfig      `mapstructure:"log" json:"log"`
}

// GenerateConfig holds client generation settings.
type GenerateConfig struct {
	URL        string `mapstructure:"url" json:"url"`
	Lang       string `mapstructure:"lang" json:"lang"`
	Out        string `mapstructure:"out" json:"out"`
	Package    string `mapstructure:"package" json:"package"`
	ClientName string `mapstructure:"client_name" json:"client_name"`

	// Clean removes the language output directory before writing.
	Clean bool `mapstructure:"clean" json:"clean"`
}

// DiscoverConfig holds rpc.discover request settings.
type DiscoverConfig struct {
	Timeout time.Duration     `mapstructure:"timeout" json:"timeout"`
	Headers map[string]string `mapstructure:"headers" json:"headers,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Set up environment variable binding
	v.SetEnvPrefix("OCG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Discover.Timeout < 0 {
		return nil, configPath, fmt.Errorf("discover.timeout must not be negative, got %s", cfg.Discover.Timeout)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	// Generate defaults
	v.SetDefault("generate.url", "")
	v.SetDefault("generate.lang", "")
	v.SetDefault("generate.out", "./generated")
	v.SetDefault("generate.package", "")
	v.SetDefault("generate.client_name", "")
	v.SetDefault("generate.clean", false)

	// Discover defaults
	v.SetDefault("discover.timeout", discover.DefaultTimeout)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for ocg.yaml or ocg.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	// Auto-discovery: walk up to .git or maxWalkDepth
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Check for repo boundary (.git file or directory)
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break // Stop at repo root
		}

		// Move up
		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// DiscoverOptions returns the rpc.discover options for this configuration.
// A zero timeout disables the bound. Headers are applied in sorted key order.
func (c *Config) DiscoverOptions() []discover.Option {
	var opts []discover.Option
	if c.Discover.Timeout >= 0 {
		opts = append(opts, discover.WithTimeout(c.Discover.Timeout))
	}
	keys := make([]string, 0, len(c.Discover.Headers))
	for k := range c.Discover.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, discover.WithHeader(k, c.Discover.Headers[k]))
	}
	return opts
}

// ClientConfig returns the generator options for this configuration.
func (c *Config) ClientConfig() clientgen.Config {
	return clientgen.Config{
		Package:    c.Generate.Package,
		ClientName: c.Generate.ClientName,
	}
}
