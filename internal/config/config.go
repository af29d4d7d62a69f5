// Package config loads contractctl settings.
//
// Sources are applied in priority order:
//  1. Defaults
//  2. Config file (-config, CONTRACTCTL_CONFIG, or .contractctl.toml in the working directory)
//  3. Environment variables (CONTRACTCTL_*)
//  4. Command-line flags
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/xenon007/todo-contract/internal/fixtures"
	"github.com/xenon007/todo-contract/internal/util"
	"github.com/xenon007/todo-contract/schema"
)

// DefaultFile is looked up in the working directory when no file is named.
const DefaultFile = ".contractctl.toml"

// Config holds the resolved settings.
type Config struct {
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	DefaultKind string `toml:"default_kind"`
	FixtureDB   string `toml:"fixture_db"`

	// File is the config file that was read, if any.
	File string `toml:"-"`
}

func defaults() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		DefaultKind: "task",
		FixtureDB:   fixtures.MemoryPath,
	}
}

// Load registers the global flags on fs, parses args and resolves the config.
// The remaining positional arguments are available from fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	configFile := fs.String("config", "", "path to a TOML config file")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "log format: text or json")
	fixtureDB := fs.String("fixture-db", "", "SQLite path for the refs check (default in-memory)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := defaults()

	path := *configFile
	if path == "" {
		path = util.EnvOrDefault("CONTRACTCTL_CONFIG", "")
	}
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadEnv(cfg)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if set["log-format"] {
		cfg.LogFormat = *logFormat
	}
	if set["fixture-db"] {
		cfg.FixtureDB = *fixtureDB
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	cfg.File = path
	return nil
}

func loadEnv(cfg *Config) {
	cfg.LogLevel = util.EnvOrDefault("CONTRACTCTL_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = util.EnvOrDefault("CONTRACTCTL_LOG_FORMAT", cfg.LogFormat)
	cfg.DefaultKind = util.EnvOrDefault("CONTRACTCTL_DEFAULT_KIND", cfg.DefaultKind)
	cfg.FixtureDB = util.EnvOrDefault("CONTRACTCTL_FIXTURE_DB", cfg.FixtureDB)
}

func (c *Config) validate() error {
	if c.FixtureDB == "" {
		return errors.New("fixture_db must not be empty")
	}
	if _, err := schema.Definition(c.DefaultKind); err != nil {
		return fmt.Errorf("default_kind: %w", err)
	}
	return nil
}
