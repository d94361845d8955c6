package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ProjectConfigFile is the per-repository config file name.
const ProjectConfigFile = "shipwright.yaml"

// Loader loads [Config] with Viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader with defaults and environment overrides bound.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SHIPWRIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return &Loader{v: v}
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version_files", cfg.VersionFiles)
	v.SetDefault("workspace.file", cfg.Workspace.File)
	v.SetDefault("workspace.member", cfg.Workspace.Member)
	v.SetDefault("lockfile", cfg.Lockfile)
	v.SetDefault("docs.dir", cfg.Docs.Dir)
	v.SetDefault("docs.command", cfg.Docs.Command)
	v.SetDefault("docs.output", cfg.Docs.Output)
	v.SetDefault("git.remote", cfg.Git.Remote)
	v.SetDefault("git.tag_prefix", cfg.Git.TagPrefix)
	v.SetDefault("commits.prepare", cfg.Commits.Prepare)
	v.SetDefault("commits.include", cfg.Commits.Include)
	v.SetDefault("commits.exclude", cfg.Commits.Exclude)
	v.SetDefault("workflow.mode", cfg.Workflow.Mode)
	v.SetDefault("workflow.file", cfg.Workflow.File)
	v.SetDefault("workflow.repository", cfg.Workflow.Repository)
	v.SetDefault("workflow.token_env", cfg.Workflow.TokenEnv)
}

// Load discovers and reads the config file, if any, relative to the current
// directory and returns the merged configuration. See the package
// documentation for priority order.
func (l *Loader) Load() (*Config, error) {
	return l.LoadIn(".")
}

// LoadIn is [Loader.Load] with the project config file looked up in dir.
func (l *Loader) LoadIn(dir string) (*Config, error) {
	path := os.Getenv("SHIPWRIGHT_CONFIG_PATH")
	if path == "" {
		path = discover(dir)
	}
	if path == "" {
		return l.unmarshal()
	}
	return l.LoadFromFile(path)
}

// LoadFromFile reads the config file at path over the defaults.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return l.unmarshal()
}

// ConfigFileUsed returns the file the configuration was read from, or "".
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// discover returns the first existing config file in priority order.
func discover(dir string) string {
	project := ProjectConfigFile
	if dir != "" && dir != "." {
		project = filepath.Join(dir, ProjectConfigFile)
	}
	for _, candidate := range []string{project, UserConfigPath()} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		} else if !errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
	return ""
}
