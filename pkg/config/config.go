// Package config loads converge rule files.
//
// A rule file carries the same settings as the check command's flags. It is
// written in TOML or YAML, chosen by extension:
//
//	# .converge.toml
//	unique_versions = false
//	fail = true
//	excludes = ["commons-lang"]
//	includes = []
//
//	[resolve]
//	max_depth = 20
//	scopes = ["compile", "runtime"]
//	repository = "https://repo1.maven.org/maven2"
//	cache_ttl = "168h"
//	cache_url = "redis://localhost:6379/0"
//	requests_per_second = 20
//
// [Find] looks for .converge.toml, .converge.yaml and .converge.yml in a
// directory and its parents. Unknown keys are rejected so typos surface as
// INVALID_CONFIG errors.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/converge/pkg/convergence"
	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/integrations/maven"
	"github.com/matzehuels/converge/pkg/resolve"
)

// FileNames are the rule file names [Find] looks for, in order.
var FileNames = []string{".converge.toml", ".converge.yaml", ".converge.yml"}

// validScopes are the Maven scopes a resolve section may name.
var validScopes = []string{"compile", "runtime", "provided", "test", "system"}

// Config is the content of a rule file.
type Config struct {
	UniqueVersions bool     `toml:"unique_versions" yaml:"unique_versions"`
	Fail           *bool    `toml:"fail" yaml:"fail"` // nil means true
	Excludes       []string `toml:"excludes" yaml:"excludes"`
	Includes       []string `toml:"includes" yaml:"includes"`
	Resolve        Resolve  `toml:"resolve" yaml:"resolve"`

	path string
}

// Resolve configures tree resolution from POMs.
type Resolve struct {
	MaxDepth    int      `toml:"max_depth" yaml:"max_depth"`
	MaxNodes    int      `toml:"max_nodes" yaml:"max_nodes"`
	Concurrency int      `toml:"concurrency" yaml:"concurrency"`
	Scopes      []string `toml:"scopes" yaml:"scopes"`
	Repository  string   `toml:"repository" yaml:"repository"`
	CacheTTL    Duration `toml:"cache_ttl" yaml:"cache_ttl"`
	CacheURL    string   `toml:"cache_url" yaml:"cache_url"`

	// RequestsPerSecond caps repository requests; 0 means unlimited.
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no rule file exists.
func Default() *Config {
	return (&Config{}).WithDefaults()
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string { return c.path }

// FailOnViolation reports whether conflicts should fail the run.
func (c *Config) FailOnViolation() bool { return c.Fail == nil || *c.Fail }

// WithDefaults returns a copy with zero values replaced by defaults.
func (c *Config) WithDefaults() *Config {
	out := *c
	out.Excludes = slices.Clone(c.Excludes)
	out.Includes = slices.Clone(c.Includes)
	out.Resolve.Scopes = slices.Clone(c.Resolve.Scopes)

	r := &out.Resolve
	if r.MaxDepth <= 0 {
		r.MaxDepth = resolve.DefaultMaxDepth
	}
	if r.MaxNodes <= 0 {
		r.MaxNodes = resolve.DefaultMaxNodes
	}
	if r.Concurrency <= 0 {
		r.Concurrency = resolve.DefaultConcurrency
	}
	if len(r.Scopes) == 0 {
		r.Scopes = slices.Clone(resolve.DefaultScopes)
	}
	if r.Repository == "" {
		r.Repository = maven.DefaultRepository
	}
	if r.CacheTTL.Duration <= 0 {
		r.CacheTTL.Duration = resolve.DefaultCacheTTL
	}
	return &out
}

// Validate reports the first invalid setting as an INVALID_CONFIG error
// (INVALID_PATTERN for empty patterns).
func (c *Config) Validate() error {
	for _, list := range [][]string{c.Excludes, c.Includes} {
		for _, p := range list {
			if strings.TrimSpace(p) == "" {
				return errors.New(errors.ErrCodeInvalidPattern, "empty pattern in %s", c.describe())
			}
		}
	}
	r := c.Resolve
	if r.MaxDepth < 0 || r.MaxNodes < 0 || r.Concurrency < 0 || r.RequestsPerSecond < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "resolve limits must not be negative")
	}
	for _, s := range r.Scopes {
		if !slices.Contains(validScopes, s) {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown scope %q (valid: %s)", s, strings.Join(validScopes, ", "))
		}
	}
	if r.Repository != "" {
		if err := errors.ValidateURL(r.Repository); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "repository")
		}
	}
	if r.CacheURL != "" && !strings.HasPrefix(r.CacheURL, "redis://") && !strings.HasPrefix(r.CacheURL, "rediss://") {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_url must be a redis:// or rediss:// URL")
	}
	return nil
}

// CheckOptions returns the convergence options the configuration describes.
func (c *Config) CheckOptions() convergence.Options {
	return convergence.Options{
		Excludes:       slices.Clone(c.Excludes),
		Includes:       slices.Clone(c.Includes),
		UniqueVersions: c.UniqueVersions,
	}
}

// ResolveOptions returns the resolver options the configuration describes.
func (c *Config) ResolveOptions() resolve.Options {
	return resolve.Options{
		MaxDepth:    c.Resolve.MaxDepth,
		MaxNodes:    c.Resolve.MaxNodes,
		Scopes:      slices.Clone(c.Resolve.Scopes),
		Concurrency: c.Resolve.Concurrency,
	}
}

func (c *Config) describe() string {
	if c.path == "" {
		return "configuration"
	}
	return c.path
}

// Load reads a rule file. The format follows the extension: .toml, or
// .yaml/.yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		cfg, err = decodeTOML(data)
	case ".yaml", ".yml":
		cfg, err = decodeYAML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unsupported config format %q", path, ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	cfg.path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}

func decodeYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return &cfg, nil
}

// Find returns the first rule file found in dir or any of its parents, or
// "" if there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadOrDefault loads path, or the rule file found from dir when path is
// empty, or the defaults when neither exists. Defaults are always applied.
func LoadOrDefault(path, dir string) (*Config, error) {
	if path == "" {
		found, err := Find(dir)
		if err != nil {
			return nil, err
		}
		if found == "" {
			return Default(), nil
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.WithDefaults(), nil
}
