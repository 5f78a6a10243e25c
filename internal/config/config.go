package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dusk-indust/cppuml/internal/export"
	"github.com/dusk-indust/cppuml/internal/graph"
	"github.com/dusk-indust/cppuml/internal/parse"
)

// FileName is the project configuration file looked up in the project root.
const FileName = ".cppuml.yml"

// Config holds project-level settings loaded from .cppuml.yml and CPPUML_*
// environment variables.
type Config struct {
	Parser       string   `mapstructure:"parser" yaml:"parser"`
	Extensions   []string `mapstructure:"extensions" yaml:"extensions"`
	Exclude      []string `mapstructure:"exclude" yaml:"exclude"`
	Workers      int      `mapstructure:"workers" yaml:"workers"`
	CacheSize    int      `mapstructure:"cacheSize" yaml:"cacheSize"`
	Depth        int      `mapstructure:"depth" yaml:"depth"`
	Kinds        []string `mapstructure:"kinds" yaml:"kinds"`
	Show         []string `mapstructure:"show" yaml:"show"`
	Multiplicity bool     `mapstructure:"multiplicity" yaml:"multiplicity"`
	Server       string   `mapstructure:"server" yaml:"server"`
	Format       string   `mapstructure:"format" yaml:"format"`
	Retries      int      `mapstructure:"retries" yaml:"retries"`
	Timeout      string   `mapstructure:"timeout" yaml:"timeout"`
	GraphPath    string   `mapstructure:"graphPath" yaml:"graphPath"`
	Verbose      bool     `mapstructure:"verbose" yaml:"verbose,omitempty"`

	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
}

// AnalysisConfig tunes relationship inference.
type AnalysisConfig struct {
	// HandleWrappers lists template wrappers whose fields count as
	// aggregation. Empty uses graph.DefaultHandleWrappers.
	HandleWrappers []string `mapstructure:"handleWrappers" yaml:"handleWrappers,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Parser:     parse.BackendScanner,
		Extensions: []string{".h", ".hh", ".hpp", ".hxx", ".cpp", ".cc", ".cxx"},
		Exclude:    []string{"build/**", "**/third_party/**", ".git/**"},
		Workers:    0,
		CacheSize:  4096,
		Depth:      3,
		Server:     export.DefaultServer,
		Format:     export.FormatSVG,
		Retries:    2,
		Timeout:    "30s",
		GraphPath:  ".cppuml/graph.kuzu",
	}
}

// Validate checks field values that the rest of the program relies on.
func Validate(cfg *Config) error {
	var errs []error
	if _, err := parse.New(cfg.Parser); err != nil {
		errs = append(errs, err)
	}
	if cfg.Depth < 0 {
		errs = append(errs, fmt.Errorf("depth must be >= 0, got %d", cfg.Depth))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers))
	}
	if cfg.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries))
	}
	if _, err := ParseKinds(cfg.Kinds); err != nil {
		errs = append(errs, err)
	}
	for _, s := range cfg.Show {
		if s != export.ShowMembers && s != export.ShowMethods {
			errs = append(errs, fmt.Errorf("unknown display category %q (want %s or %s)", s, export.ShowMembers, export.ShowMethods))
		}
	}
	if !export.ValidFormat(cfg.Format) {
		errs = append(errs, fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, cfg.Format))
	}
	if _, err := time.ParseDuration(cfg.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("timeout: %w", err))
	}
	return errors.Join(errs...)
}

// ParseKinds converts relationship kind names into a filter. An empty list
// allows every kind.
func ParseKinds(names []string) (graph.KindSet, error) {
	set := graph.NewKindSet()
	for _, n := range names {
		k, ok := graph.ParseRelationKind(n)
		if !ok {
			return nil, fmt.Errorf("unknown relationship kind %q", n)
		}
		set[k] = true
	}
	return set, nil
}

// KindSet returns the configured relationship filter. Call Validate first.
func (c *Config) KindSet() graph.KindSet {
	set, _ := ParseKinds(c.Kinds)
	return set
}

// TimeoutDuration returns the render timeout, or zero when unset or invalid.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// AnalyzeOptions returns the analyzer settings.
func (c *Config) AnalyzeOptions() graph.AnalyzeOptions {
	return graph.AnalyzeOptions{HandleWrappers: c.Analysis.HandleWrappers}
}

// RenderOptions returns the serializer settings.
func (c *Config) RenderOptions() export.RenderOptions {
	return export.RenderOptions{Show: c.Show, Multiplicity: c.Multiplicity}
}

// RenderClient returns a PlantUML server client for the configured server.
func (c *Config) RenderClient() *export.RenderClient {
	return export.NewRenderClient(
		export.WithServer(c.Server),
		export.WithTimeout(c.TimeoutDuration()),
		export.WithRetries(c.Retries),
	)
}
