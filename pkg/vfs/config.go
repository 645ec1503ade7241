package vfs

import (
	"fmt"
	"os"

	"github.com/gobeaver/beaver-kit/config"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/vfs/pkg/vfs/backend"
)

// EnvPrefix is prepended to the names of the environment variables read by LoadConfig.
const EnvPrefix = "VFS_"

// Config selects and prepares a backend.
type Config struct {
	// Backend is "stdfs" or "memfs".
	Backend string `env:"BACKEND,default:stdfs" yaml:"backend"`
	// LogLevel is a zerolog level name.
	LogLevel string `env:"LOG_LEVEL,default:warn" yaml:"log_level"`
	// Cwd, when set, becomes the backend's working directory. Memfs creates it first.
	Cwd string `env:"CWD" yaml:"cwd"`
}

// LoadConfig returns config loaded from the VFS_BACKEND, VFS_LOG_LEVEL and VFS_CWD
// environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile overlays the non-empty settings of a YAML file onto cfg.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if file.Backend != "" {
		cfg.Backend = file.Backend
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.Cwd != "" {
		cfg.Cwd = file.Cwd
	}
	return nil
}

// Kind parses the configured backend.
func (c *Config) Kind() (backend.Kind, error) {
	if c.Backend == "" {
		return backend.KindStdfs, nil
	}
	return backend.ParseKind(c.Backend)
}

// Level parses the configured log level.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.WarnLevel, nil
	}
	return LogLevelFromString(c.LogLevel)
}

// NewBackend builds the configured backend.
func (c *Config) NewBackend() (backend.VirtualFileSystem, error) {
	kind, err := c.Kind()
	if err != nil {
		return nil, err
	}
	b, err := backend.New(kind)
	if err != nil {
		return nil, err
	}
	if c.Cwd == "" {
		return b, nil
	}
	if kind == backend.KindMemfs {
		if _, err := b.MkdirP(c.Cwd); err != nil {
			return nil, fmt.Errorf("failed to create working directory: %w", err)
		}
	}
	if _, err := b.SetCwd(c.Cwd); err != nil {
		return nil, fmt.Errorf("failed to set working directory: %w", err)
	}
	return b, nil
}

// NewRegistry builds a registry holding the configured backend.
func (c *Config) NewRegistry() (*Registry, error) {
	b, err := c.NewBackend()
	if err != nil {
		return nil, err
	}
	return NewRegistry(b), nil
}

// Apply installs the configured backend and log level process-wide.
func (c *Config) Apply() error {
	level, err := c.Level()
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	b, err := c.NewBackend()
	if err != nil {
		return err
	}
	SetLogger(NewLogger(os.Stderr, level))
	Set(b)
	log := Logger()
	log.Debug().Str("backend", b.Kind().String()).Msg("configuration applied")
	return nil
}
