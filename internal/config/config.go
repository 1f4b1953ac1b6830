// Package config loads insight configuration.
//
// Precedence (highest to lowest): flags > INSIGHT_* env vars > config file >
// defaults. The config file is YAML; when no path is given, insight.yaml or
// insight.yml in the working directory is used if present.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultDatabase   = "insight.db"
	DefaultMaxResults = 5000
	DefaultAddr       = ":4321"
	DefaultLogFormat  = "text"
	DefaultFormat     = "text"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "INSIGHT_"

// ValidFormats lists the accepted values of format and log_format.
var ValidFormats = []string{"text", "json"}

// Config holds every insight setting.
type Config struct {
	Database   string `koanf:"database"`
	MaxResults int    `koanf:"max_results"`
	Addr       string `koanf:"addr"`
	LogFormat  string `koanf:"log_format"`
	Verbose    bool   `koanf:"verbose"`
	Format     string `koanf:"format"`
}

// flagKeys maps flag names that differ from their config key.
var flagKeys = map[string]string{
	"db": "database",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > insight.yaml > insight.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"insight.yaml", "insight.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds a Config from defaults, the config file, the environment and
// explicitly set flags. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database":    DefaultDatabase,
		"max_results": DefaultMaxResults,
		"addr":        DefaultAddr,
		"log_format":  DefaultLogFormat,
		"verbose":     false,
		"format":      DefaultFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment: INSIGHT_MAX_RESULTS -> max_results
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Database == "" {
		errs = append(errs, errors.New("database must not be empty"))
	}
	if c.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("max_results must be positive, got %d", c.MaxResults))
	}
	if !slices.Contains(ValidFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("invalid log_format %q: must be one of %v", c.LogFormat, ValidFormats))
	}
	if !slices.Contains(ValidFormats, c.Format) {
		errs = append(errs, fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats))
	}
	return errors.Join(errs...)
}
