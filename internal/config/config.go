package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ghwiki/internal/navigation"
	"ghwiki/internal/theme"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultReadme    = "README.md"
	DefaultOutputDir = "wiki"
)

// ErrNoEntryPoints is returned when the configuration names no entry point.
var ErrNoEntryPoints = errors.New("no entry points configured")

type Config struct {
	Project struct {
		Name          string   `yaml:"name"`
		EntryPoints   []string `yaml:"entry_points"`
		Readme        string   `yaml:"readme"` // path or "none"
		EntryDocument string   `yaml:"entry_document"`
		Media         string   `yaml:"media"`
	} `yaml:"project"`
	Output struct {
		Dir   string `yaml:"dir"`
		Clean bool   `yaml:"clean"`
	} `yaml:"output"`
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))

	// 3. Override with Environment Variables if present
	if out := os.Getenv("GHWIKI_OUT"); out != "" {
		cfg.Output.Dir = out
	}
	if name := os.Getenv("GHWIKI_NAME"); name != "" {
		cfg.Project.Name = name
	}
	if readme := os.Getenv("GHWIKI_README"); readme != "" {
		cfg.Project.Readme = readme
	}

	if err := cfg.applyDefaults(path); err != nil {
		return nil, err
	}

	if len(cfg.Project.EntryPoints) == 0 {
		return nil, ErrNoEntryPoints
	}
	return &cfg, nil
}

// resolvePaths makes the relative paths of the YAML file relative to the
// directory holding it. Environment overrides stay relative to the working
// directory.
func (c *Config) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || p == navigation.ReadmeNone || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, ep := range c.Project.EntryPoints {
		c.Project.EntryPoints[i] = resolve(ep)
	}
	c.Project.Readme = resolve(c.Project.Readme)
	c.Project.Media = resolve(c.Project.Media)
	c.Output.Dir = resolve(c.Output.Dir)
}

// applyDefaults fills unset fields. A readme that was never configured is
// optional: when README.md is missing next to the config the readme page is
// disabled.
func (c *Config) applyDefaults(path string) error {
	if c.Project.Readme == "" {
		readme := filepath.Join(filepath.Dir(path), DefaultReadme)
		_, err := os.Stat(readme)
		switch {
		case err == nil:
			c.Project.Readme = readme
		case errors.Is(err, fs.ErrNotExist):
			c.Project.Readme = navigation.ReadmeNone
		default:
			return fmt.Errorf("stat default readme: %w", err)
		}
	}
	if c.Project.EntryDocument == "" {
		c.Project.EntryDocument = theme.WikiEntryDocument
	}
	if c.Output.Dir == "" {
		c.Output.Dir = filepath.Join(filepath.Dir(path), DefaultOutputDir)
	}
	if c.Project.Name == "" {
		abs, err := filepath.Abs(filepath.Dir(path))
		if err == nil {
			c.Project.Name = filepath.Base(abs)
		}
	}
	return nil
}

// HasReadme reports whether a readme page is generated.
func (c *Config) HasReadme() bool {
	return c.Project.Readme != navigation.ReadmeNone
}

// ThemeOptions are the options the wiki theme is created with.
func (c *Config) ThemeOptions() theme.Options {
	return theme.Options{
		EntryPoints:   c.Project.EntryPoints,
		EntryDocument: c.Project.EntryDocument,
		Readme:        c.Project.Readme,
	}
}

// ReadReadme returns the readme contents, or "" when the readme is disabled.
func (c *Config) ReadReadme() (string, error) {
	if !c.HasReadme() {
		return "", nil
	}
	data, err := os.ReadFile(c.Project.Readme)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
