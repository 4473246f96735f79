// Package config handles the orchestrator's own configuration document.
// Projects keep a varlint.yaml next to their variant manifest; missing values
// fall back to the defaults below.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the file probed when no explicit path is given.
const DefaultConfigName = "varlint.yaml"

const defaultConfigYAML = `# varlint configuration
tool:
  name: spotbugs
  version: 4.8.6

# Directory receiving XML/HTML reports and logs.
reportDir: build/reports/analysis

# Render an HTML report next to each XML report.
htmlReport: true

# Source filter applied before artifact selection. Globs match
# slash-separated paths relative to each source root.
sourceFilter:
  include: ["**"]
  exclude: []

evaluation:
  maxViolations: 0
  failPriority: 2
`

// ToolConfig identifies the external analysis tool and how to invoke it.
type ToolConfig struct {
	Name string `yaml:"name"`
	// Version is the tool release the build pins; validated as a semantic
	// version so classpath resolution stays deterministic.
	Version string `yaml:"version"`
	// Command optionally overrides how the tool binary is launched. Empty
	// means no external binary is available: the analysis task still writes
	// an empty report for empty artifact sets and fails otherwise.
	Command []string `yaml:"command,omitempty"`
	// Classpath is the tool's own runtime classpath, needed by the HTML
	// renderer to resolve rule descriptions.
	Classpath []string `yaml:"classpath,omitempty"`
}

// FilterConfig narrows which sources count as "matched" for a variant.
type FilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// EvaluationConfig drives the final pass/fail step over the violation sink.
type EvaluationConfig struct {
	// MaxViolations is the number of violations tolerated before the
	// evaluation task fails the build.
	MaxViolations int `yaml:"maxViolations"`
	// FailPriority bounds which priorities count against MaxViolations.
	// Priority 1 is most severe; 0 disables the priority filter.
	FailPriority int `yaml:"failPriority"`
}

// Config is the runtime configuration for one tool configurator.
type Config struct {
	Tool         ToolConfig       `yaml:"tool"`
	ReportDir    string           `yaml:"reportDir"`
	HTMLReport   *bool            `yaml:"htmlReport,omitempty"`
	SourceFilter FilterConfig     `yaml:"sourceFilter"`
	Evaluation   EvaluationConfig `yaml:"evaluation"`
	// MaxParallel caps how many tasks the runner executes at once. Zero means
	// the runner picks a default.
	MaxParallel int `yaml:"maxParallel,omitempty"`
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads the configuration at path. A missing file yields the defaults,
// matching how a project without a varlint.yaml still gets analyzed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the document is usable before any task is registered.
func (c *Config) Validate() error {
	if c.Tool.Name == "" {
		return fmt.Errorf("config: tool name is required")
	}
	if c.Tool.Version != "" && !semver.IsValid(canonicalVersion(c.Tool.Version)) {
		return fmt.Errorf("config: tool version %q is not a semantic version", c.Tool.Version)
	}
	if c.ReportDir == "" {
		return fmt.Errorf("config: reportDir is required")
	}
	if c.Evaluation.MaxViolations < 0 {
		return fmt.Errorf("config: evaluation.maxViolations must be >= 0")
	}
	if c.Evaluation.FailPriority < 0 {
		return fmt.Errorf("config: evaluation.failPriority must be >= 0")
	}
	if c.MaxParallel < 0 {
		return fmt.Errorf("config: maxParallel must be >= 0")
	}
	return nil
}

// HTMLEnabled reports whether the HTML pipeline should exist at all.
// Unset defaults to true.
func (c *Config) HTMLEnabled() bool {
	if c.HTMLReport == nil {
		return true
	}
	return *c.HTMLReport
}

// SourceMatcher compiles the filter into a predicate over root-relative
// slash paths. No include globs means everything is included.
func (c *Config) SourceMatcher() func(rel string) bool {
	include := c.SourceFilter.Include
	exclude := c.SourceFilter.Exclude
	return func(rel string) bool {
		rel = strings.TrimPrefix(rel, "./")
		if len(include) > 0 && !matchesGlob(rel, include) {
			return false
		}
		return !matchesGlob(rel, exclude)
	}
}

// matchesGlob applies path.Match semantics, with "**" accepted as a
// match-everything marker since path.Match has no recursive wildcard.
func matchesGlob(rel string, globs []string) bool {
	for _, g := range globs {
		if g == "**" {
			return true
		}
		if strings.HasSuffix(g, "/**") {
			prefix := strings.TrimSuffix(g, "**")
			if rel == strings.TrimSuffix(g, "/**") || strings.HasPrefix(rel, prefix) {
				return true
			}
			continue
		}
		if ok, err := path.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
