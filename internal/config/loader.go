package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration with the following priority (highest first):
//  1. Environment variables (CPPUML_*)
//  2. .cppuml.yml in dir
//  3. Default values
//
// A missing config file is not an error.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("CPPUML")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("parser", d.Parser)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("cacheSize", d.CacheSize)
	v.SetDefault("depth", d.Depth)
	v.SetDefault("kinds", d.Kinds)
	v.SetDefault("show", d.Show)
	v.SetDefault("multiplicity", d.Multiplicity)
	v.SetDefault("server", d.Server)
	v.SetDefault("format", d.Format)
	v.SetDefault("retries", d.Retries)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("graphPath", d.GraphPath)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("analysis.handleWrappers", d.Analysis.HandleWrappers)
}

// ErrExists is returned by Write when a config file is already present.
var ErrExists = errors.New("config: file already exists")

// Write stores cfg as .cppuml.yml in dir and returns the file path. An
// existing file is only replaced when force is set.
func Write(dir string, cfg *Config, force bool) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%w: %s", ErrExists, path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
