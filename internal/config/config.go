// Package config loads the dbpack command's project file.
//
// Configuration is loaded from a single file specified by:
//   - DBPACK_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There is no automatic discovery. Relative project paths are resolved
// against the directory containing the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/signature"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "DBPACK_CONFIG"

// ErrNoConfig is returned by Load when EnvVar is not set.
var ErrNoConfig = errors.New(EnvVar + " environment variable not set")

// Config lists the projects the command can pack.
type Config struct {
	// Concurrency limits how many projects are packed at once.
	// Default: 2
	Concurrency int `yaml:"concurrency"`

	// Defaults apply to every project that leaves a field unset.
	Defaults Defaults `yaml:"defaults"`

	// Projects are packed in file order.
	Projects []Project `yaml:"projects"`

	dir string
}

// Defaults holds project settings shared by all projects.
type Defaults struct {
	// Signature is a signature kind name: none, patch51 or bot_parts.
	// Default: none
	Signature string `yaml:"signature"`

	// Compression is none, zstd or lz4.
	// Default: none
	Compression string `yaml:"compression"`

	// MaxFileSize bounds verbatim items, in bytes. Zero disables the limit.
	MaxFileSize uint64 `yaml:"max_file_size"`
}

// Project describes one input tree and its output container.
type Project struct {
	Name        string `yaml:"name"`
	Input       string `yaml:"input"`
	Output      string `yaml:"output"`
	Signature   string `yaml:"signature,omitempty"`
	Compression string `yaml:"compression,omitempty"`
	MaxFileSize uint64 `yaml:"max_file_size,omitempty"`
	Debug       bool   `yaml:"debug,omitempty"`
}

// Default returns the configuration used before the file is applied.
func Default() *Config {
	return &Config{
		Concurrency: 2,
		Defaults: Defaults{
			Signature:   signature.None.String(),
			Compression: archive.CompressionNone.String(),
		},
	}
}

// Load loads configuration from the file named by DBPACK_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%w; set it to the path of your dbpack.yaml or use --config", ErrNoConfig)
	}
	return LoadFile(path)
}

// LoadFile loads and validates configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg.dir = abs
	return cfg, nil
}

// Parse decodes and validates configuration. Relative paths are left as is.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Projects {
		p := &c.Projects[i]
		if p.Signature == "" {
			p.Signature = c.Defaults.Signature
		}
		if p.Compression == "" {
			p.Compression = c.Defaults.Compression
		}
		if p.MaxFileSize == 0 {
			p.MaxFileSize = c.Defaults.MaxFileSize
		}
		if p.Output == "" && p.Input != "" {
			p.Output = filepath.Clean(p.Input) + ".package"
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		if p.Name == "" {
			return fmt.Errorf("project %d: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("project %q: duplicate name", p.Name)
		}
		seen[p.Name] = true
		if p.Input == "" {
			return fmt.Errorf("project %q: input is required", p.Name)
		}
		if _, err := signature.ParseKind(p.Signature); err != nil {
			return fmt.Errorf("project %q: %w", p.Name, err)
		}
		if _, err := archive.ParseCompression(p.Compression); err != nil {
			return fmt.Errorf("project %q: %w", p.Name, err)
		}
	}
	return nil
}

// Project returns the named project with its paths resolved.
func (c *Config) Project(name string) (Project, bool) {
	for _, p := range c.Projects {
		if p.Name == name {
			return c.resolve(p), true
		}
	}
	return Project{}, false
}

// Resolved returns every project with its paths resolved.
func (c *Config) Resolved() []Project {
	out := make([]Project, len(c.Projects))
	for i, p := range c.Projects {
		out[i] = c.resolve(p)
	}
	return out
}

func (c *Config) resolve(p Project) Project {
	if c.dir == "" {
		return p
	}
	if !filepath.IsAbs(p.Input) {
		p.Input = filepath.Join(c.dir, p.Input)
	}
	if !filepath.IsAbs(p.Output) {
		p.Output = filepath.Join(c.dir, p.Output)
	}
	return p
}

// SignatureKind returns the project's parsed signature kind.
func (p Project) SignatureKind() signature.Kind {
	k, _ := signature.ParseKind(p.Signature) //nolint:errcheck // checked by Validate
	return k
}

// CompressionAlgorithm returns the project's parsed compression.
func (p Project) CompressionAlgorithm() archive.Compression {
	c, _ := archive.ParseCompression(p.Compression) //nolint:errcheck // checked by Validate
	return c
}
